package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/cohortlens/internal/explore"
	"github.com/KaramelBytes/cohortlens/internal/utils"
)

// Global configuration structure.
type Global struct {
	// Input
	DatasetPath        string `mapstructure:"dataset_path" yaml:"dataset_path"`
	SchemaPath         string `mapstructure:"schema_path" yaml:"schema_path"`
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`
	MaxRows            int    `mapstructure:"max_rows" yaml:"max_rows"`

	// Output
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`

	// Default exploration parameters
	Explore explore.Params `mapstructure:"explore" yaml:"explore"`
}

// Dir returns ~/.cohortlens.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".cohortlens"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.cohortlens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("COHORTLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("dataset_path", "data_processada.csv")
	v.SetDefault("schema_path", "")
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("max_rows", 0)
	v.SetDefault("output_format", "markdown")
	setExploreDefaults(v, explore.DefaultParams())

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read; a present but malformed file is an error
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func setExploreDefaults(v *viper.Viper, p explore.Params) {
	v.SetDefault("explore.group_field", p.GroupField)
	v.SetDefault("explore.group_a.name", p.GroupA.Name)
	v.SetDefault("explore.group_a.values", p.GroupA.Values)
	v.SetDefault("explore.group_b.name", p.GroupB.Name)
	v.SetDefault("explore.group_b.values", p.GroupB.Values)
	v.SetDefault("explore.distribution_field", p.DistributionField)
	v.SetDefault("explore.heatmap_fields", p.HeatmapFields)
	v.SetDefault("explore.probability_field", p.ProbabilityField)
	if p.AgeRange != nil {
		v.SetDefault("explore.age_range.field", p.AgeRange.Field)
		v.SetDefault("explore.age_range.min", p.AgeRange.Min)
		v.SetDefault("explore.age_range.max", p.AgeRange.Max)
	}
	v.SetDefault("explore.threshold", p.Threshold)
	v.SetDefault("explore.density_points", p.DensityPoints)
	v.SetDefault("explore.projection_fields", p.ProjectionFields)
	v.SetDefault("explore.color_field", p.ColorField)
	v.SetDefault("explore.shape_field", p.ShapeField)
}
