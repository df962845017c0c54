package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/cohortlens/internal/config"
	"github.com/KaramelBytes/cohortlens/internal/dataset"
	"github.com/KaramelBytes/cohortlens/internal/explore"
	"github.com/KaramelBytes/cohortlens/internal/schema"
	"github.com/KaramelBytes/cohortlens/internal/utils"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Input flags (override config if set)
	flagData      string
	flagSchema    string
	flagDelimiter string
	flagDecimal   string
	flagThousands string
	flagMaxRows   int
	// Output flags
	flagJSON   bool
	flagOutput string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "cohortlens",
	Short: "CohortLens: compare census cohorts by distribution, density and projection",
	Long: `CohortLens loads a processed census extract and compares two groups of records:
category distributions, per-bucket means, threshold probabilities with a kernel
density curve, and a three-component principal component projection.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.cohortlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagData, "data", "", "dataset CSV path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagSchema, "schema", "", "schema YAML path (default is the built-in census schema)")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	rootCmd.PersistentFlags().StringVar(&flagDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	rootCmd.PersistentFlags().StringVar(&flagThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	rootCmd.PersistentFlags().IntVar(&flagMaxRows, "max-rows", 0, "maximum rows to load (0 = unlimited)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "print JSON instead of Markdown")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "optional path to write the result")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("data") {
		cfg.DatasetPath = flagData
	}
	if f.Changed("schema") {
		cfg.SchemaPath = flagSchema
	}
	if f.Changed("delimiter") {
		cfg.Delimiter = flagDelimiter
	}
	if f.Changed("decimal") {
		cfg.DecimalSeparator = flagDecimal
	}
	if f.Changed("thousands") {
		cfg.ThousandsSeparator = flagThousands
	}
	if f.Changed("max-rows") && flagMaxRows >= 0 {
		cfg.MaxRows = flagMaxRows
	}
}

// effectiveConfig returns the loaded config, or flag values over defaults when
// loading failed.
func effectiveConfig() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	return &cfgpkg.Global{
		DatasetPath:        flagData,
		SchemaPath:         flagSchema,
		Delimiter:          flagDelimiter,
		DecimalSeparator:   flagDecimal,
		ThousandsSeparator: flagThousands,
		MaxRows:            flagMaxRows,
		OutputFormat:       "markdown",
		Explore:            explore.DefaultParams(),
	}
}

func loadSchema(c *cfgpkg.Global) (*schema.Schema, error) {
	if c.SchemaPath == "" {
		return schema.Census(), nil
	}
	s, err := schema.LoadFile(c.SchemaPath)
	if err != nil {
		return nil, err
	}
	if debug {
		fmt.Fprintf(os.Stderr, "[debug] schema %s: %d fields, %d mappings\n", c.SchemaPath, s.Len(), len(s.Mappings()))
	}
	return s, nil
}

func csvOptions(c *cfgpkg.Global) (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	opt.MaxRows = c.MaxRows
	switch c.Delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported delimiter: %s", c.Delimiter)
	}
	// Locale separators
	switch strings.ToLower(strings.TrimSpace(c.DecimalSeparator)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported decimal separator: %s (use '.'|'comma')", c.DecimalSeparator)
	}
	switch strings.ToLower(c.ThousandsSeparator) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported thousands separator: %s (use ','|'.'|'space')", c.ThousandsSeparator)
	}
	return opt, nil
}

// loadDataset reads and validates the configured dataset.
func loadDataset() (*dataset.Dataset, error) {
	c := effectiveConfig()
	if c.DatasetPath == "" {
		return nil, fmt.Errorf("no dataset: pass --data or set dataset_path")
	}
	s, err := loadSchema(c)
	if err != nil {
		return nil, err
	}
	opt, err := csvOptions(c)
	if err != nil {
		return nil, err
	}
	ds, err := dataset.LoadCSV(c.DatasetPath, s, opt)
	if err != nil {
		return nil, err
	}
	for _, w := range ds.Warnings {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", w)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if debug {
		fmt.Fprintf(os.Stderr, "[debug] loaded %d records from %s\n", ds.Len(), c.DatasetPath)
	}
	return ds, nil
}

// wantJSON reports whether output is JSON: --json when given, otherwise the
// configured output_format.
func wantJSON() bool {
	if rootCmd.PersistentFlags().Changed("json") {
		return flagJSON
	}
	return strings.EqualFold(effectiveConfig().OutputFormat, "json")
}

// emit writes v as Markdown or JSON to --output, or stdout when unset.
func emit(v any, md string) error {
	data := []byte(md)
	if wantJSON() {
		b, err := utils.PrettyJSON(v)
		if err != nil {
			return err
		}
		data = b
	}
	if flagOutput == "" {
		fmt.Println(string(data))
		return nil
	}
	abs, err := utils.WriteOutput(flagOutput, data)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("✓ Wrote %s\n", abs)
	return nil
}
