package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cohortlens/internal/explore"
)

var probabilityCmd = &cobra.Command{
	Use:     "probability",
	Aliases: []string{"prob"},
	Short:   "Estimate P(field > threshold) for both groups",
	Long: `Probability counts the members of each group whose field lies strictly above
the threshold, optionally within an age range, and samples a kernel density
curve of the field for display.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := resolveParams(cmd)
		if err != nil {
			return err
		}
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		rep, err := explore.Run(ds, p, explore.PartProbability)
		if err != nil {
			return err
		}
		return emit(rep, rep.Markdown())
	},
}

func init() {
	rootCmd.AddCommand(probabilityCmd)
	addGroupFlags(probabilityCmd)
	addProbabilityFlags(probabilityCmd)
}
