package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "pktchain.yml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}

func TestLoadValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
pktchain:
  log:
    level: "debug"
    outputs:
      console:
        stream: "stdout"
      file:
        enabled: true
        path: "/tmp/pktchain-test.log"
        rotation:
          max_size_mb: 10
  decode:
    link: "mpls"
    output: "yaml"
    pad: true
    max_frames: 50
  metrics:
    enabled: true
    textfile: "/tmp/pktchain.prom"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Log.Level)
	}
	if cfg.Log.Outputs.Console.Stream != "stdout" {
		t.Errorf("Expected console stream stdout, got %s", cfg.Log.Outputs.Console.Stream)
	}
	assert.True(t, cfg.Log.Outputs.File.Enabled)
	assert.Equal(t, 10, cfg.Log.Outputs.File.Rotation.MaxSizeMB)
	assert.Equal(t, 5, cfg.Log.Outputs.File.Rotation.MaxBackups, "default kept")
	assert.Equal(t, DecodeConfig{Link: "mpls", Output: "yaml", Pad: true, MaxFrames: 50}, cfg.Decode)
	assert.Equal(t, MetricsConfig{Enabled: true, Textfile: "/tmp/pktchain.prom", Namespace: "pktchain"}, cfg.Metrics)
}

func TestLoadDefaults(t *testing.T) {
	configPath := writeConfig(t, "pktchain: {}\n")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "%time [%level] %field %msg%n", cfg.Log.Pattern)
	assert.True(t, cfg.Log.Outputs.Console.Enabled)
	assert.Equal(t, "stderr", cfg.Log.Outputs.Console.Stream)
	assert.False(t, cfg.Log.Outputs.File.Enabled)
	assert.Equal(t, "text", cfg.Decode.Output)
	assert.Empty(t, cfg.Decode.Link)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "pktchain", cfg.Metrics.Namespace)

	assert.Equal(t, cfg, Default())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	configPath := writeConfig(t, `
pktchain:
  log:
    level: "info"
`)
	t.Setenv("PKTCHAIN_LOG_LEVEL", "trace")
	t.Setenv("PKTCHAIN_DECODE_OUTPUT", "json")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "trace", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Decode.Output)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"log level": `
pktchain:
  log:
    level: "verbose"
`,
		"console stream": `
pktchain:
  log:
    outputs:
      console:
        stream: "syslog"
`,
		"file without path": `
pktchain:
  log:
    outputs:
      file:
        enabled: true
        path: ""
`,
		"link": `
pktchain:
  decode:
    link: "ppp"
`,
		"output": `
pktchain:
  decode:
    output: "xml"
`,
		"max frames": `
pktchain:
  decode:
    max_frames: -1
`,
		"metrics without textfile": `
pktchain:
  metrics:
    enabled: true
`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestValidateNormalizesLevel(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "WARN"

	require.NoError(t, cfg.ValidateAndApplyDefaults())
	assert.Equal(t, "warn", cfg.Log.Level)
}
