package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gamestory/internal/config"
	"github.com/Sumatoshi-tech/gamestory/pkg/plotpage"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".gamestory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())

	theme, err := cfg.Theme()
	require.NoError(t, err)
	assert.Equal(t, plotpage.ThemeLight, theme)
}

func TestLoadConfig_ValidFile_Unmarshals(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, `
dataset:
  path: data/games.csv
  columns:
    release_date: Released
story:
  path: story.yaml
render:
  theme: dark
  output_dir: out
server:
  host: 0.0.0.0
  port: 9090
  read_timeout: 2s
  metrics: false
logging:
  level: debug
  json: true
telemetry:
  environment: staging
  otlp_endpoint: localhost:4317
  otlp_insecure: true
  sample_ratio: 0.25
`))
	require.NoError(t, err)

	assert.Equal(t, "data/games.csv", cfg.Dataset.Path)
	assert.Equal(t, "Released", cfg.Columns().ReleaseDate)
	assert.Equal(t, "Name", cfg.Columns().Title)
	assert.Equal(t, "story.yaml", cfg.Story.Path)
	assert.Equal(t, "out", cfg.Render.OutputDir)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, config.DefaultServerWriteTimeout, cfg.Server.WriteTimeout)
	assert.False(t, cfg.Server.Metrics)
	assert.True(t, cfg.Logging.JSON)
	assert.Equal(t, "staging", cfg.Telemetry.Environment)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.True(t, cfg.Telemetry.OTLPInsecure)
	assert.InDelta(t, 0.25, cfg.Telemetry.SampleRatio, 0.001)

	theme, err := cfg.Theme()
	require.NoError(t, err)
	assert.Equal(t, plotpage.ThemeDark, theme)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("GAMESTORY_SERVER_PORT", "7070")
	t.Setenv("GAMESTORY_DATASET_COLUMNS_PUBLISHERS", "Publisher")

	cfg, err := config.LoadConfig(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "Publisher", cfg.Dataset.Columns.Publishers)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "port zero", body: "server:\n  port: 0\n", wantErr: config.ErrInvalidPort},
		{name: "port too large", body: "server:\n  port: 70000\n", wantErr: config.ErrInvalidPort},
		{name: "negative timeout", body: "server:\n  idle_timeout: -1s\n", wantErr: config.ErrInvalidTimeout},
		{name: "theme", body: "render:\n  theme: sepia\n", wantErr: config.ErrInvalidTheme},
		{name: "log level", body: "logging:\n  level: loud\n", wantErr: config.ErrInvalidLogLevel},
		{name: "sample ratio", body: "telemetry:\n  sample_ratio: 2\n", wantErr: config.ErrInvalidSampleRatio},
		{name: "blank column", body: "dataset:\n  columns:\n    title: \" \"\n", wantErr: config.ErrEmptyColumn},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tc.body))
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "server: [port"))
	require.Error(t, err)
}

func TestConfig_LogLevel(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Logging.Level = "WARN"

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, "WARN", level.String())
}
