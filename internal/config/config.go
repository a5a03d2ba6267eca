package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Split thresholds. Zero values defer to the data-derived defaults:
	// min_bin_size falls back to floor(sqrt(n)) and min_rise to
	// cohen * column stddev.
	Cohen      float64 `mapstructure:"cohen" yaml:"cohen"`
	Margin     float64 `mapstructure:"margin" yaml:"margin"`
	MinBinSize int     `mapstructure:"min_bin_size" yaml:"min_bin_size"`
	MinRise    float64 `mapstructure:"min_rise" yaml:"min_rise"`

	// I/O defaults
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	Trace     bool   `mapstructure:"trace" yaml:"trace"`

	// Where manifest.json lives
	ManifestDir string `mapstructure:"manifest_dir" yaml:"manifest_dir"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.bandcut/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".bandcut")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("BANDCUT")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("cohen", 0.3)
	v.SetDefault("margin", 1.05)
	v.SetDefault("min_bin_size", 0)
	v.SetDefault("min_rise", 0.0)
	v.SetDefault("delimiter", "")
	v.SetDefault("trace", false)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".bandcut")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve manifest_dir default: ~/.bandcut/runs
	if c.ManifestDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.ManifestDir = filepath.Join(home, ".bandcut", "runs")
	}
	return &c, nil
}
