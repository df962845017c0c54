package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cohortlens/internal/utils"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the dataset schema and its category mappings",
}

var schemaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List fields, roles and bucket labels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSchema(effectiveConfig())
		if err != nil {
			return err
		}
		var b strings.Builder
		b.WriteString("[FIELDS]\n")
		for _, f := range s.Fields() {
			if f.Mapping != nil {
				b.WriteString(fmt.Sprintf("- %s: %s (%s)\n", f.Name, f.Role, f.Mapping.Name))
			} else {
				b.WriteString(fmt.Sprintf("- %s: %s\n", f.Name, f.Role))
			}
		}
		b.WriteString("\n[MAPPINGS]\n")
		for _, m := range s.Mappings() {
			b.WriteString(fmt.Sprintf("- %s\n", m.Name))
			for _, bk := range m.Buckets {
				codes := make([]string, len(bk.Codes))
				for i, c := range bk.Codes {
					codes[i] = fmt.Sprintf("%g", c)
				}
				b.WriteString(fmt.Sprintf("  • %s %s: %s\n", bk.Key, bk.Label, strings.Join(codes, ", ")))
			}
		}
		fmt.Print(b.String())
		return nil
	},
}

var schemaExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the schema as YAML (editable and loadable with --schema)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSchema(effectiveConfig())
		if err != nil {
			return err
		}
		b, err := s.Encode()
		if err != nil {
			return err
		}
		if flagOutput == "" {
			fmt.Print(string(b))
			return nil
		}
		abs, err := utils.WriteOutput(flagOutput, b)
		if err != nil {
			return fmt.Errorf("write schema: %w", err)
		}
		fmt.Printf("✓ Wrote schema to %s\n", abs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaShowCmd)
	schemaCmd.AddCommand(schemaExportCmd)
}
