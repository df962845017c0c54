package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cohortlens/internal/explore"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a categorical field's distribution between two groups",
	Long: `Compare selects group A and group B, breaks a categorical field into its
merged buckets for each group, and prints both percentages per bucket with
per-bucket means of the chosen numeric fields.`,
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
		rep, err := explore.Run(ds, p, explore.PartDistribution|explore.PartHeatmap)
		if err != nil {
			return err
		}
		return emit(rep, rep.Markdown())
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	addGroupFlags(compareCmd)
	addDistributionFlags(compareCmd)
}
