package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := defaults()
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, uint32(8000), cfg.Server.Port)
	assert.Equal(t, "bilinear", cfg.Data.InterpolationMethod)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestMergeOverridesNonZeroFields(t *testing.T) {
	base := defaults()
	other := Config{
		Server: ServerConfig{Port: 9000, Workers: 4},
	}
	merged := merge(base, other)
	assert.Equal(t, uint32(9000), merged.Server.Port)
	assert.Equal(t, 4, merged.Server.Workers)
	assert.Equal(t, "127.0.0.1", merged.Server.Host, "unset fields keep the base value")
	assert.Equal(t, "bilinear", merged.Data.InterpolationMethod)
}

func TestMergePreservesDimensionAliases(t *testing.T) {
	base := defaults()
	other := Config{Data: DataConfig{DimensionAliases: map[string]string{"x": "lon"}}}
	merged := merge(base, other)
	assert.Equal(t, map[string]string{"x": "lon"}, merged.Data.DimensionAliases)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"server":{"host":"0.0.0.0","port":9090},"log_level":"debug"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := loadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, uint32(9090), cfg.Server.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := loadFromFile("/nonexistent/path/config.json")
	assert.Error(t, err)
}

func TestLoadFromFileInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := loadFromFile(path)
	assert.Error(t, err)
}

func TestValidateRejectsEmptyHost(t *testing.T) {
	cfg := defaults()
	cfg.Server.Host = "  "
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroPort(t *testing.T) {
	cfg := defaults()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := defaults()
	cfg.LogLevel = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownInterpolationMethod(t *testing.T) {
	cfg := defaults()
	cfg.Data.InterpolationMethod = "cubic-spline"
	assert.Error(t, cfg.Validate())
}

func TestValidateAcceptsAllKnownLogLevelsAndMethods(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error"} {
		cfg := defaults()
		cfg.LogLevel = level
		assert.NoError(t, cfg.Validate(), level)
	}
	for _, method := range []string{"nearest", "bilinear", "bicubic"} {
		cfg := defaults()
		cfg.Data.InterpolationMethod = method
		assert.NoError(t, cfg.Validate(), method)
	}
}
