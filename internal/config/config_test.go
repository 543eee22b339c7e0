package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "config.yaml",
			content: `
server:
  port: "9090"
analysis:
  healthy_probability: 0.25
  delay: 500ms
  persist: true
feedback:
  policy: strict
`,
		},
		{
			name: "toml",
			file: "config.toml",
			content: `
[server]
port = "9090"

[analysis]
healthy_probability = 0.25
delay = "500ms"
persist = true

[feedback]
policy = "strict"
`,
		},
		{
			name: "json",
			file: "config.json",
			content: `{
  "server": {"port": "9090"},
  "analysis": {"healthy_probability": 0.25, "delay": "500ms", "persist": true},
  "feedback": {"policy": "strict"}
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)

			assert.Equal(t, "9090", cfg.Server.Port)
			assert.Equal(t, 0.25, cfg.Analysis.HealthyProbability)
			assert.Equal(t, 500*time.Millisecond, cfg.Analysis.Delay.Duration)
			assert.True(t, cfg.Analysis.Persist)
			assert.Equal(t, "strict", cfg.Feedback.Policy)

			// Untouched keys keep their defaults.
			assert.Equal(t, "lymegrove.db", cfg.Database.Path)
			assert.Equal(t, "info@lymegrove.com", cfg.Intake.SupportEmail)
			assert.Equal(t, 2*time.Second, Default().Analysis.Delay.Duration)
		})
	}
}

func TestLoadConfigZeroProbabilityIsKept(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "c.yaml", "server:\n  port: \"1\"\nanalysis:\n  healthy_probability: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Analysis.HealthyProbability)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("LYMEGROVE_PORT", "7000")
	t.Setenv("LYMEGROVE_DB_PATH", "/tmp/x.db")
	t.Setenv("LYMEGROVE_AUTH_SECRET", "s3cret")
	t.Setenv("LYMEGROVE_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
	assert.Equal(t, "s3cret", cfg.Auth.Secret)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"no port", "c.yaml", "log:\n  level: info\n"},
		{"probability out of range", "c.yaml", "server:\n  port: \"1\"\nanalysis:\n  healthy_probability: 1.5\n"},
		{"bad duration", "c.yaml", "server:\n  port: \"1\"\nanalysis:\n  delay: soon\n"},
		{"bad policy", "c.yaml", "server:\n  port: \"1\"\nfeedback:\n  policy: lenient\n"},
		{"unknown extension", "c.ini", "port=1"},
		{"malformed json", "c.json", "{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("LYMEGROVE_CONFIG", "/etc/lymegrove.toml")
	assert.Equal(t, "/etc/lymegrove.toml", GetConfigPath())
}
