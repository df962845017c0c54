package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/cohortlens/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set CohortLens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("dataset_path: %s\n", cfg.DatasetPath)
		if cfg.SchemaPath != "" {
			fmt.Printf("schema_path: %s\n", cfg.SchemaPath)
		}
		if cfg.Delimiter != "" {
			fmt.Printf("delimiter: %q\n", cfg.Delimiter)
		}
		if cfg.DecimalSeparator != "" {
			fmt.Printf("decimal_separator: %q\n", cfg.DecimalSeparator)
		}
		if cfg.ThousandsSeparator != "" {
			fmt.Printf("thousands_separator: %q\n", cfg.ThousandsSeparator)
		}
		if cfg.MaxRows > 0 {
			fmt.Printf("max_rows: %d\n", cfg.MaxRows)
		}
		fmt.Printf("output_format: %s\n", cfg.OutputFormat)
		p := cfg.Explore
		fmt.Printf("explore.group_field: %s\n", p.GroupField)
		fmt.Printf("explore.group_a: %s\n", formatGroup(p.GroupA.Name, p.GroupA.Values))
		fmt.Printf("explore.group_b: %s\n", formatGroup(p.GroupB.Name, p.GroupB.Values))
		fmt.Printf("explore.distribution_field: %s\n", p.DistributionField)
		fmt.Printf("explore.heatmap_fields: %s\n", strings.Join(p.HeatmapFields, ","))
		fmt.Printf("explore.probability_field: %s\n", p.ProbabilityField)
		fmt.Printf("explore.threshold: %g\n", p.Threshold)
		if p.AgeRange != nil {
			fmt.Printf("explore.age_range: %s [%g, %g]\n", p.AgeRange.Field, p.AgeRange.Min, p.AgeRange.Max)
		}
		fmt.Printf("explore.density_points: %d\n", p.DensityPoints)
		fmt.Printf("explore.projection_fields: %s\n", strings.Join(p.ProjectionFields, ","))
		fmt.Printf("explore.color_field: %s\n", p.ColorField)
		fmt.Printf("explore.shape_field: %s\n", p.ShapeField)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		p := &cfg.Explore
		switch key {
		case "dataset_path":
			cfg.DatasetPath = val
		case "schema_path":
			cfg.SchemaPath = val
		case "delimiter":
			cfg.Delimiter = val
		case "decimal_separator":
			cfg.DecimalSeparator = val
		case "thousands_separator":
			cfg.ThousandsSeparator = val
		case "max_rows":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for max_rows: %v", val)
			}
			cfg.MaxRows = i
		case "output_format":
			switch strings.ToLower(val) {
			case "markdown", "md":
				cfg.OutputFormat = "markdown"
			case "json":
				cfg.OutputFormat = "json"
			default:
				return fmt.Errorf("invalid output_format: %s (use markdown or json)", val)
			}
		case "explore.group_field":
			p.GroupField = val
		case "explore.group_a", "explore.group_b":
			g, err := parseGroup(val)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			if key == "explore.group_a" {
				p.GroupA = g
			} else {
				p.GroupB = g
			}
		case "explore.distribution_field":
			p.DistributionField = val
		case "explore.heatmap_fields":
			p.HeatmapFields = splitList(val)
		case "explore.probability_field":
			p.ProbabilityField = val
		case "explore.threshold":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for explore.threshold: %w", err)
			}
			p.Threshold = f
		case "explore.density_points":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for explore.density_points: %w", err)
			}
			p.DensityPoints = i
		case "explore.projection_fields":
			p.ProjectionFields = splitList(val)
		case "explore.color_field":
			p.ColorField = val
		case "explore.shape_field":
			p.ShapeField = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("invalid parameters: %w", err)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func formatGroup(name string, codes []float64) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = strconv.FormatFloat(c, 'g', -1, 64)
	}
	return name + "=" + strings.Join(parts, ",")
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
