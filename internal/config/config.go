package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Report rendering: text, markdown, json or yaml.
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`
	SampleRows   int    `mapstructure:"sample_rows" yaml:"sample_rows"`

	// Database sources
	DBTimeoutSec int    `mapstructure:"db_timeout_sec" yaml:"db_timeout_sec"`
	DBRowLimit   int    `mapstructure:"db_row_limit" yaml:"db_row_limit"`
	MigrateTable string `mapstructure:"migrate_table" yaml:"migrate_table"`

	// Export
	ExportEncoding string `mapstructure:"export_encoding" yaml:"export_encoding"`
	HandoffDir     string `mapstructure:"handoff_dir" yaml:"handoff_dir"`
}

// Keys lists the configuration keys accepted by Set, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var defaults = map[string]any{
	"log_level":       "warn",
	"log_format":      "text",
	"output_format":   "text",
	"sample_rows":     5,
	"db_timeout_sec":  30,
	"db_row_limit":    0,
	"migrate_table":   "datos_depurados",
	"export_encoding": "auto",
	"handoff_dir":     "",
}

// Dir returns ~/.datascrub.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".datascrub"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.datascrub/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
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

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("DATASCRUB")
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}

// Default returns the built-in defaults, ignoring files and environment.
func Default() *Global {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults; flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := newViper()

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
	// optional read
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Set assigns key from its string form, validating numbers.
func (c *Global) Set(key, value string) error {
	switch key {
	case "log_level":
		c.LogLevel = value
	case "log_format":
		c.LogFormat = value
	case "output_format":
		c.OutputFormat = value
	case "sample_rows":
		return setInt(&c.SampleRows, key, value)
	case "db_timeout_sec":
		return setInt(&c.DBTimeoutSec, key, value)
	case "db_row_limit":
		return setInt(&c.DBRowLimit, key, value)
	case "migrate_table":
		c.MigrateTable = value
	case "export_encoding":
		c.ExportEncoding = value
	case "handoff_dir":
		c.HandoffDir = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	var n int
	if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	if n < 0 {
		return fmt.Errorf("%s must not be negative", key)
	}
	*dst = n
	return nil
}
