package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := New()
	cfg, err := LoadFrom(v, "")
	require.NoError(t, err)

	assert.Equal(t, DefaultBaselinePath(), cfg.Baseline.Path)
	assert.Empty(t, cfg.Exclude)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, DefaultHistoryPath(), cfg.History.Path)
	assert.Equal(t, DefaultRetentionDays, cfg.History.RetentionDays)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, DefaultLogMaxSize, cfg.Logging.Rotation.MaxSize)
}

func TestDefaults(t *testing.T) {
	t.Setenv("FIXITY_WORKERS", "12")

	cfg := Defaults()
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultBaselinePath(), cfg.Baseline.Path)
	assert.True(t, cfg.History.Enabled)

	loaded, err := LoadFrom(New(), "")
	require.NoError(t, err)
	assert.Equal(t, 12, loaded.Workers)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
baseline:
  path: /srv/baseline.json
exclude:
  - node_modules
workers: 3
history:
  enabled: false
  retention_days: 7
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFrom(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/baseline.json", cfg.Baseline.Path)
	assert.Equal(t, []string{"node_modules"}, cfg.Exclude)
	assert.Equal(t, 3, cfg.Workers)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, 7, cfg.History.RetentionDays)
	assert.Equal(t, DefaultHistoryPath(), cfg.History.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := LoadFrom(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [unclosed\n"), 0o644))

	_, err := LoadFrom(New(), path)
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("FIXITY_BASELINE_PATH", "/env/baseline.json")
	t.Setenv("FIXITY_HISTORY_RETENTION_DAYS", "3")

	cfg, err := LoadFrom(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "/env/baseline.json", cfg.Baseline.Path)
	assert.Equal(t, 3, cfg.History.RetentionDays)
}

func TestLoad_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("FIXITY_BASELINE_PATH", "~/fixity/baseline.json")

	cfg, err := LoadFrom(New(), "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "fixity", "baseline.json"), cfg.Baseline.Path)
}

func TestLoggingConfig(t *testing.T) {
	t.Parallel()

	cfg := &Config{Logging: LoggingConfig{
		Level: "warn",
		Path:  "/tmp/fixity.log",
		Rotation: RotationConfig{
			MaxSize:    "1MB",
			MaxAge:     2,
			MaxBackups: 3,
			Daily:      false,
		},
		Components: map[string]string{"engine": "debug"},
	}}

	lc, err := cfg.LoggingConfig()
	require.NoError(t, err)
	assert.Equal(t, "warn", lc.Level)
	assert.Equal(t, "/tmp/fixity.log", lc.Path)
	assert.Equal(t, int64(1000*1000), lc.Rotation.MaxSize)
	assert.Equal(t, 2, lc.Rotation.MaxAge)
	assert.Equal(t, 3, lc.Rotation.MaxBackups)
	assert.False(t, lc.Rotation.Daily)
	assert.Equal(t, "debug", lc.Components["engine"])

	cfg.Logging.Rotation.MaxSize = "lots"
	_, err = cfg.LoggingConfig()
	assert.Error(t, err)
}

func TestWriteDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	wrote, err := WriteDefault(path)
	require.NoError(t, err)
	assert.True(t, wrote)

	cfg, err := LoadFrom(New(), path)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaselinePath(), cfg.Baseline.Path)
	assert.True(t, cfg.History.Enabled)

	require.NoError(t, os.WriteFile(path, []byte("workers: 9\n"), 0o644))
	wrote, err = WriteDefault(path)
	require.NoError(t, err)
	assert.False(t, wrote)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "workers: 9\n", string(data))
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"~", home},
		{"~/data", filepath.Join(home, "data")},
		{"~user/data", "~user/data"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
