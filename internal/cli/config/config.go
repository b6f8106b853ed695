package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/cfgschema/schemac/internal/compiler/merge"
	"github.com/cfgschema/schemac/internal/compiler/metadata"
	"github.com/cfgschema/schemac/internal/logging"
)

// FileName is the configuration file looked up in the working directory
const FileName = "schemac.yaml"

// EnvPrefix prefixes environment overrides, e.g. SCHEMAC_MERGE_ROOT_POLICY
const EnvPrefix = "SCHEMAC"

// Config represents the schemac configuration
type Config struct {
	Definitions string        `mapstructure:"definitions" yaml:"definitions"`
	Pattern     string        `mapstructure:"pattern" yaml:"pattern"`
	Include     IncludeConfig `mapstructure:"include" yaml:"include"`
	Merge       MergeConfig   `mapstructure:"merge" yaml:"merge"`
	Output      OutputConfig  `mapstructure:"output" yaml:"output"`
	Log         LogConfig     `mapstructure:"log" yaml:"log"`
	Serve       ServeConfig   `mapstructure:"serve" yaml:"serve"`
	Watch       WatchConfig   `mapstructure:"watch" yaml:"watch"`
}

// IncludeConfig controls include expansion
type IncludeConfig struct {
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`
	// Folder overrides the directory includes are resolved against
	Folder string `mapstructure:"folder" yaml:"folder,omitempty"`
}

// MergeConfig controls how documents are combined
type MergeConfig struct {
	RootPolicy string `mapstructure:"root_policy" yaml:"root_policy"`
}

// OutputConfig controls the schema dump written by build
type OutputConfig struct {
	Format   string `mapstructure:"format" yaml:"format"`
	Path     string `mapstructure:"path" yaml:"path"`
	Compress bool   `mapstructure:"compress" yaml:"compress,omitempty"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ServeConfig represents the HTTP view configuration
type ServeConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// WatchConfig represents watch mode configuration
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Definitions: "interface-definitions",
		Pattern:     "*.xml.in",
		Include:     IncludeConfig{MaxDepth: 32},
		Merge:       MergeConfig{RootPolicy: string(merge.RootPolicyRecursive)},
		Output:      OutputConfig{Format: string(metadata.FormatJSON)},
		Log:         LogConfig{Level: "info", Format: logging.FormatConsole},
		Serve:       ServeConfig{Addr: "127.0.0.1:8484"},
		Watch:       WatchConfig{Debounce: 100 * time.Millisecond},
	}
}

// Load loads the configuration from schemac.yaml in the working directory,
// or from configFile when it is not empty. Environment variables prefixed
// with SCHEMAC_ override file values.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	d := Default()
	v.SetDefault("definitions", d.Definitions)
	v.SetDefault("pattern", d.Pattern)
	v.SetDefault("include.max_depth", d.Include.MaxDepth)
	v.SetDefault("include.folder", d.Include.Folder)
	v.SetDefault("merge.root_policy", d.Merge.RootPolicy)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.compress", d.Output.Compress)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("serve.addr", d.Serve.Addr)
	v.SetDefault("watch.debounce", d.Watch.Debounce)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Save writes cfg as YAML to path
func Save(cfg *Config, path string) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Exists reports whether dir holds a schemac.yaml
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, FileName))
	return err == nil
}

// FindRoot walks up from the working directory to the first directory holding
// a schemac.yaml.
func FindRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found in any parent directory", FileName)
		}
		dir = parent
	}
}

// Validate checks every enumerated setting
func Validate(cfg *Config) error {
	if cfg.Definitions == "" {
		return fmt.Errorf("definitions must name a directory")
	}
	if cfg.Pattern == "" {
		return fmt.Errorf("pattern must not be empty")
	}
	if _, err := filepath.Match(cfg.Pattern, ""); err != nil {
		return fmt.Errorf("pattern %q is not a valid glob: %w", cfg.Pattern, err)
	}
	if cfg.Include.MaxDepth < 1 {
		return fmt.Errorf("include.max_depth must be at least 1, got: %d", cfg.Include.MaxDepth)
	}
	if _, err := merge.ParseRootPolicy(cfg.Merge.RootPolicy); err != nil {
		return fmt.Errorf("merge.root_policy: %w", err)
	}
	if _, err := metadata.ParseFormat(cfg.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if _, err := zapcore.ParseLevel(strings.ToLower(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if cfg.Log.Format != logging.FormatConsole && cfg.Log.Format != logging.FormatJSON {
		return fmt.Errorf("log.format must be %q or %q, got: %s", logging.FormatConsole, logging.FormatJSON, cfg.Log.Format)
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got: %s", cfg.Watch.Debounce)
	}
	return nil
}
