package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xXAI-botXx/3xM/errors"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func testOptions(dir string) ConfigOptions {
	return ConfigOptions{
		BasePath:  dir,
		FileName:  "dataprep",
		FileType:  "yaml",
		EnvPrefix: "DATAPREP",
		Mode:      TestMode,
	}
}

func TestLoadDefaultsWithoutFiles(t *testing.T) {
	loader, err := NewLoader(testOptions(t.TempDir()))
	require.NoError(t, err)
	assert.Empty(t, loader.Files())

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{".png", ".jpg"}, cfg.Extensions)
	assert.Equal(t, []string{"rgb", "depth", "mask"}, cfg.Modalities)
	assert.Equal(t, 95, cfg.JPEGQuality)
	assert.Equal(t, "bilinear", cfg.Interpolation)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Quiet)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Log.LogInTerminal)
	assert.Equal(t, "local", cfg.Publish.Type)
	assert.Zero(t, cfg.Width)
}

func TestLayeredFiles(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "dataprep.yaml", "root: /data/3xm\nwidth: 1920\nheight: 1080\nworkers: 4\n")
	writeConfig(t, dir, "dataprep.local.yaml", "workers: 2\n")
	writeConfig(t, dir, "dataprep.test.yaml", "width: 800\nheight: 450\nlog:\n  level: debug\n")
	writeConfig(t, dir, "dataprep.production.yaml", "workers: 64\n")

	loader, err := NewLoader(testOptions(dir))
	require.NoError(t, err)
	assert.Len(t, loader.Files(), 3)

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "/data/3xm", cfg.Root)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 450, cfg.Height)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "message", cfg.Log.MessageKey)
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "dataprep.yaml", "workers: 4\n")
	t.Setenv("DATAPREP_WORKERS", "3")
	t.Setenv("DATAPREP_DELETE_ORIGINAL", "true")
	t.Setenv("DATAPREP_EXTENSIONS", ".png,.tif")
	t.Setenv("DATAPREP_LOG_LOG_IN_TERMINAL", "false")
	t.Setenv("DATAPREP_WATCH_QUIET", "2s")

	loader, err := NewLoader(testOptions(dir))
	require.NoError(t, err)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Workers)
	assert.True(t, cfg.DeleteOriginal)
	assert.Equal(t, []string{".png", ".tif"}, cfg.Extensions)
	assert.False(t, cfg.Log.LogInTerminal)
	assert.Equal(t, 2*time.Second, cfg.Watch.Quiet)
}

func TestFlagsOverrideFiles(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "dataprep.yaml", "width: 100\nheight: 100\n")

	loader, err := NewLoader(testOptions(dir))
	require.NoError(t, err)

	fs := pflag.NewFlagSet("prepare", pflag.ContinueOnError)
	fs.Int("width", 0, "")
	fs.Int("height", 0, "")
	fs.String("root", "", "")
	require.NoError(t, loader.BindFlags(fs, map[string]string{"width": "width", "height": "height", "root": "root"}))
	require.NoError(t, fs.Parse([]string{"--width=64", "--height=32"}))

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 32, cfg.Height)
	assert.Empty(t, cfg.Root)

	assert.Error(t, loader.BindFlags(fs, map[string]string{"missing": "x"}))
}

func TestExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	writeConfig(t, dir, "custom.yml", "root: ./ds\n")

	opts := testOptions(t.TempDir())
	opts.ConfigFile = path
	loader, err := NewLoader(opts)
	require.NoError(t, err)
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "./ds", cfg.Root)

	opts.ConfigFile = filepath.Join(dir, "missing.yaml")
	_, err = NewLoader(opts)
	assert.Equal(t, apperrors.ErrorTypeInvalid, apperrors.TypeOf(err))
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"negative workers", "workers: -1\n", "Workers"},
		{"width without height", "width: 10\n", "Width"},
		{"unknown modality", "modalities: [rgb, normals]\n", "Modalities[1]"},
		{"bad extension", "extensions: [png]\n", "Extensions[0]"},
		{"jpeg quality", "jpeg_quality: 101\n", "JPEGQuality"},
		{"interpolation", "interpolation: cubic\n", "Interpolation"},
		{"oss without bucket", "publish:\n  type: oss\n  endpoint: e\n  access_key_id: a\n  access_key_secret: s\n", "Publish.Bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "dataprep.yaml", tt.content)

			loader, err := NewLoader(testOptions(dir))
			require.NoError(t, err)
			_, err = loader.Load()
			require.Error(t, err)

			appErr := apperrors.FromError(err)
			assert.Equal(t, apperrors.ErrorTypeInvalid, appErr.Type)
			assert.Equal(t, tt.field, appErr.Details["field"])
		})
	}
}

func TestMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "dataprep.yaml", "root: [unclosed\n")

	_, err := NewLoader(testOptions(dir))
	assert.Equal(t, apperrors.ErrorTypeInvalid, apperrors.TypeOf(err))
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ProMode, ParseMode(" PROD "))
	assert.Equal(t, TestMode, ParseMode("testing"))
	assert.Equal(t, DevMode, ParseMode(""))
	assert.Equal(t, DevMode, ParseMode("staging"))

	t.Setenv(EnvModeKey, "production")
	assert.Equal(t, ProMode, ModeFromEnv())
}

func TestStructKeys(t *testing.T) {
	keys := structKeys(reflect.TypeOf(PrepConfig{}), "")
	assert.Contains(t, keys, "root")
	assert.Contains(t, keys, "watch.quiet")
	assert.Contains(t, keys, "log.log-in-terminal")
	assert.Contains(t, keys, "publish.bucket")
	assert.NotContains(t, keys, "log")
}

func TestWatchWithoutFiles(t *testing.T) {
	loader, err := NewLoader(testOptions(t.TempDir()))
	require.NoError(t, err)
	assert.False(t, loader.Watch(func(*PrepConfig, error) {}))
}
