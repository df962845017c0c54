package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cohortlens/internal/explore"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"pca"},
	Short:   "Project the dataset onto its first three principal components",
	Long: `Project standardizes the selected continuous fields over the whole dataset and
prints the explained variance, loadings and coordinates of each record along
the first three principal components.`,
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
		rep, err := explore.Run(ds, p, explore.PartProjection)
		if err != nil {
			return err
		}
		if wantJSON() && rep.Projection != nil {
			return emit(rep.Projection, "")
		}
		return emit(rep, rep.Markdown())
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	addProjectionFlags(projectCmd)
}
