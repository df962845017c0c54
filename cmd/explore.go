package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cohortlens/internal/explore"
)

var (
	expSkip  []string
	expSweep []float64
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Run every comparison for the current parameters",
	Long: `Explore runs the distribution comparison, per-bucket means, threshold
probability and projection in one pass. With --sweep, the probability
threshold is stepped through the given values while the other results are
reused.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := resolveParams(cmd)
		if err != nil {
			return err
		}
		parts, err := parseParts(expSkip)
		if err != nil {
			return err
		}
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		sess, err := explore.NewSession(ds, p)
		if err != nil {
			return err
		}
		rep, err := sess.Run(parts)
		if err != nil {
			return err
		}
		if len(expSweep) == 0 {
			return emit(rep, rep.Markdown())
		}

		reports := []*explore.Report{rep}
		var md strings.Builder
		md.WriteString(rep.Markdown())
		for _, thr := range expSweep {
			if err := sess.Update(func(p *explore.Params) { p.Threshold = thr }); err != nil {
				return err
			}
			r, err := sess.Run(explore.PartProbability)
			if err != nil {
				return err
			}
			reports = append(reports, r)
			md.WriteString("\n")
			md.WriteString(r.Markdown())
		}
		if debug {
			fmt.Fprintf(os.Stderr, "[debug] %d runs, %d served from cache\n", len(reports), sess.Hits())
		}
		return emit(reports, md.String())
	},
}

// parseParts turns --skip names into the remaining part set.
func parseParts(skip []string) (explore.Parts, error) {
	parts := explore.AllParts
	for _, s := range skip {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "distribution":
			parts &^= explore.PartDistribution
		case "heatmap":
			parts &^= explore.PartHeatmap
		case "probability":
			parts &^= explore.PartProbability
		case "projection":
			parts &^= explore.PartProjection
		default:
			return 0, fmt.Errorf("unknown part %q (use distribution|heatmap|probability|projection)", s)
		}
	}
	return parts, nil
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	addGroupFlags(exploreCmd)
	addDistributionFlags(exploreCmd)
	addProbabilityFlags(exploreCmd)
	addProjectionFlags(exploreCmd)
	exploreCmd.Flags().StringSliceVar(&expSkip, "skip", nil, "parts to skip: distribution|heatmap|probability|projection")
	exploreCmd.Flags().Float64SliceVar(&expSweep, "sweep", nil, "additional probability thresholds to evaluate (comma-separated)")
}
