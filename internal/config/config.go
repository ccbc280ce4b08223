// Package config handles pktchain configuration loading using viper.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the top-level configuration.
// Maps to the `pktchain:` root key in YAML.
type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Decode  DecodeConfig  `mapstructure:"decode" yaml:"decode"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ─── Log ───

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string           `mapstructure:"level" yaml:"level"`     // trace / debug / info / warn / error
	Pattern string           `mapstructure:"pattern" yaml:"pattern"` // %time %level %field %msg %caller %func %goroutine %n
	Time    string           `mapstructure:"time" yaml:"time"`       // Go time layout
	Outputs LogOutputsConfig `mapstructure:"outputs" yaml:"outputs"`
}

// LogOutputsConfig contains log output destinations.
type LogOutputsConfig struct {
	Console ConsoleOutputConfig `mapstructure:"console" yaml:"console"`
	File    FileOutputConfig    `mapstructure:"file" yaml:"file"`
}

// ConsoleOutputConfig configures console log output.
type ConsoleOutputConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Stream  string `mapstructure:"stream" yaml:"stream"`   // stderr / stdout
}

// FileOutputConfig configures file log output.
type FileOutputConfig struct {
	Enabled  bool           `mapstructure:"enabled" yaml:"enabled"`
	Path     string         `mapstructure:"path" yaml:"path"`
	Rotation RotationConfig `mapstructure:"rotation" yaml:"rotation"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxAgeDays int  `mapstructure:"max_age_days" yaml:"max_age_days"`
	MaxBackups int  `mapstructure:"max_backups" yaml:"max_backups"`
	Compress   bool `mapstructure:"compress" yaml:"compress"`
}

// ─── Decode ───

// DecodeConfig contains defaults for the decode and roundtrip commands.
type DecodeConfig struct {
	Link      string `mapstructure:"link" yaml:"link"`             // ethernet / ip / llc / mpls; empty = from file link type
	Output    string `mapstructure:"output" yaml:"output"`         // text / yaml / json
	Pad       bool   `mapstructure:"pad" yaml:"pad"`               // pad re-serialized Ethernet frames to 60 bytes
	MaxFrames int    `mapstructure:"max_frames" yaml:"max_frames"` // 0 = unlimited
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Textfile  string `mapstructure:"textfile" yaml:"textfile"`   // node_exporter textfile collector target
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
}

// ─── Loading ───

// Accepted enum values.
var (
	LogLevels     = []string{"trace", "debug", "info", "warn", "error"}
	LinkTypes     = []string{"ethernet", "ip", "llc", "mpls"}
	OutputFormats = []string{"text", "yaml", "json"}
)

// configRoot is the top-level wrapper matching the YAML structure `pktchain: ...`.
type configRoot struct {
	Pktchain Config `mapstructure:"pktchain" yaml:"pktchain"`
}

// Load loads configuration from path. An empty path loads defaults and
// environment overrides only.
// The YAML file uses `pktchain:` as root key; env vars use the PKTCHAIN_ prefix
// (e.g., PKTCHAIN_LOG_LEVEL).
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// The `pktchain.` key prefix maps to `PKTCHAIN_` in env vars via the key
	// replacer (e.g., key "pktchain.log.level" → env "PKTCHAIN_LOG_LEVEL").
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Pktchain

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		// only reachable through a bad PKTCHAIN_* environment
		return &Config{Log: LogConfig{Level: "info"}}
	}
	return cfg
}

// setDefaults sets default values for configuration.
// All keys use "pktchain." prefix to match the YAML root wrapper.
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("pktchain.log.level", "info")
	v.SetDefault("pktchain.log.pattern", "%time [%level] %field %msg%n")
	v.SetDefault("pktchain.log.time", "2006-01-02 15:04:05.000")
	v.SetDefault("pktchain.log.outputs.console.enabled", true)
	v.SetDefault("pktchain.log.outputs.console.stream", "stderr")
	v.SetDefault("pktchain.log.outputs.file.enabled", false)
	v.SetDefault("pktchain.log.outputs.file.path", "pktchain.log")
	v.SetDefault("pktchain.log.outputs.file.rotation.max_size_mb", 100)
	v.SetDefault("pktchain.log.outputs.file.rotation.max_age_days", 30)
	v.SetDefault("pktchain.log.outputs.file.rotation.max_backups", 5)
	v.SetDefault("pktchain.log.outputs.file.rotation.compress", true)

	// Decode defaults
	v.SetDefault("pktchain.decode.link", "")
	v.SetDefault("pktchain.decode.output", "text")
	v.SetDefault("pktchain.decode.pad", false)
	v.SetDefault("pktchain.decode.max_frames", 0)

	// Metrics defaults
	v.SetDefault("pktchain.metrics.enabled", false)
	v.SetDefault("pktchain.metrics.textfile", "")
	v.SetDefault("pktchain.metrics.namespace", "pktchain")
}

// ValidateAndApplyDefaults validates configuration and applies runtime defaults.
func (cfg *Config) ValidateAndApplyDefaults() error {
	// ── Log validation ──
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if !slices.Contains(LogLevels, cfg.Log.Level) {
		return fmt.Errorf("invalid log level: %s (must be %s)", cfg.Log.Level, strings.Join(LogLevels, "/"))
	}
	if cfg.Log.Pattern == "" {
		return fmt.Errorf("log.pattern must not be empty")
	}
	if s := cfg.Log.Outputs.Console.Stream; s != "stderr" && s != "stdout" {
		return fmt.Errorf("invalid log.outputs.console.stream: %s (must be stderr/stdout)", s)
	}
	if cfg.Log.Outputs.File.Enabled && cfg.Log.Outputs.File.Path == "" {
		return fmt.Errorf("log.outputs.file.path is required when log.outputs.file.enabled=true")
	}

	// ── Decode validation ──
	if cfg.Decode.Link != "" && !slices.Contains(LinkTypes, cfg.Decode.Link) {
		return fmt.Errorf("invalid decode.link: %s (must be %s)", cfg.Decode.Link, strings.Join(LinkTypes, "/"))
	}
	if !slices.Contains(OutputFormats, cfg.Decode.Output) {
		return fmt.Errorf("invalid decode.output: %s (must be %s)", cfg.Decode.Output, strings.Join(OutputFormats, "/"))
	}
	if cfg.Decode.MaxFrames < 0 {
		return fmt.Errorf("decode.max_frames must be >= 0, got %d", cfg.Decode.MaxFrames)
	}

	// ── Metrics ──
	if cfg.Metrics.Enabled && cfg.Metrics.Textfile == "" {
		return fmt.Errorf("metrics.textfile is required when metrics.enabled=true")
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "pktchain"
	}

	return nil
}
