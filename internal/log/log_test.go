package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/pktchain/internal/config"
)

func TestParseLevelValid(t *testing.T) {
	tests := []struct {
		input    string
		expected logrus.Level
	}{
		{"trace", logrus.TraceLevel},
		{"debug", logrus.DebugLevel},
		{"DEBUG", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := parseLevel(tt.input)
			if err != nil {
				t.Errorf("parseLevel(%q) returned error: %v", tt.input, err)
			}
			if level != tt.expected {
				t.Errorf("parseLevel(%q) = %v, expected %v", tt.input, level, tt.expected)
			}
		})
	}
}

func TestParseLevelInvalid(t *testing.T) {
	for _, input := range []string{"invalid", "fatal", ""} {
		t.Run(input, func(t *testing.T) {
			if _, err := parseLevel(input); err == nil {
				t.Errorf("parseLevel(%q) should return error, got nil", input)
			}
		})
	}
}

func TestFormatterPattern(t *testing.T) {
	f := &formatter{pattern: "%time [%level] %field %msg%n", time: "15:04:05"}
	entry := &logrus.Entry{
		Time:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "frame 7 truncated",
		Data:    logrus.Fields{"layer": "IPv4", "error": errors.New("short"), "frame": 7},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "03:04:05 [WARNING] error=short,frame=7,layer=IPv4 frame 7 truncated\n", string(out))
}

func TestFormatterLeavesMessagePlaceholders(t *testing.T) {
	f := &formatter{pattern: "%msg", time: time.RFC3339}

	out, err := f.Format(&logrus.Entry{Message: "100%time"})
	require.NoError(t, err)
	assert.Equal(t, "100%time", string(out))
}

func TestFormatterGoroutine(t *testing.T) {
	f := &formatter{pattern: "%goroutine", time: time.RFC3339}

	out, err := f.Format(&logrus.Entry{})
	require.NoError(t, err)
	assert.NotEqual(t, "unknown", string(out))
	assert.NotContains(t, string(out), "%")
}

func TestLogrusAdapterLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := newLogrusAdapter(&buf, &formatter{pattern: "[%level] %field %msg%n", time: time.RFC3339}, logrus.InfoLevel)

	l.Debug("hidden")
	l.WithField("layer", "UDP").WithError(errors.New("boom")).Warn("decode failed")
	l.WithFields(map[string]interface{}{"frames": 3}).Infof("read %d", 3)

	assert.False(t, l.IsDebugEnabled())
	assert.True(t, l.IsInfoEnabled())
	assert.Equal(t, "[WARNING] error=boom,layer=UDP decode failed\n[INFO] frames=3 read 3\n", buf.String())
}

func TestGetLoggerDefault(t *testing.T) {
	assert.NotNil(t, GetLogger())
	assert.True(t, GetLogger().IsInfoEnabled())
}

func TestInitFileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "pktchain.log")
	cfg := config.Default().Log
	cfg.Level = "debug"
	cfg.Pattern = "%level|%msg%n"
	cfg.Outputs.Console.Enabled = false
	cfg.Outputs.File = config.FileOutputConfig{Enabled: true, Path: logPath}

	require.NoError(t, Init(cfg))
	t.Cleanup(func() { _ = Close() })

	GetLogger().Debugf("decoded %d frames", 2)
	require.NoError(t, Close())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "debug|decoded 2 frames\n", strings.ToLower(string(content)))
}

func TestInitRejectsBadLevel(t *testing.T) {
	cfg := config.Default().Log
	cfg.Level = "loud"
	assert.Error(t, Init(cfg))

	cfg.Level = "info"
	cfg.Outputs.File = config.FileOutputConfig{Enabled: true}
	assert.Error(t, Init(cfg))
}
