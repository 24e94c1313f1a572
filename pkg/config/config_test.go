package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowscribe/flowscribe/pkg/config"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, ".flowscribe.yaml", "root: workflows\npattern: \"**/*.yml\"\nlog_level: debug\nbackup: true\n")

	cfg, err := config.Load(testContext(t), path)
	require.NoError(t, err)

	assert.Equal(t, "workflows", cfg.Root)
	assert.Equal(t, "**/*.yml", cfg.Pattern)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Backup)
}

func TestLoadYAMLRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, ".flowscribe.yaml", "root: workflows\nbogus: field\n")

	_, err := config.Load(testContext(t), path)
	require.Error(t, err)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, ".flowscribe.json", `{"root": "workflows", "log_level": "warn"}`)

	cfg, err := config.Load(testContext(t), path)
	require.NoError(t, err)

	assert.Equal(t, "workflows", cfg.Root)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "**/*.{yml,yaml}", cfg.Pattern, "missing fields take defaults")
}

func TestLoadHCL(t *testing.T) {
	path := writeConfig(t, ".flowscribe.hcl", "root = \"workflows\"\nbackup = true\n")

	cfg, err := config.Load(testContext(t), path)
	require.NoError(t, err)

	assert.Equal(t, "workflows", cfg.Root)
	assert.True(t, cfg.Backup)
}

func TestLoadBareFlowscribeTriesYAMLThenHCL(t *testing.T) {
	yamlPath := writeConfig(t, ".flowscribe", "root: workflows\n")
	cfg, err := config.Load(testContext(t), yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "workflows", cfg.Root)

	hclPath := writeConfig(t, ".flowscribe", "root = \"elsewhere\"\n")
	cfg, err = config.Load(testContext(t), hclPath)
	require.NoError(t, err)
	assert.Equal(t, "elsewhere", cfg.Root)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "config.toml", "root = \"x\"\n")

	_, err := config.Load(testContext(t), path)
	require.Error(t, err)
}

func TestLoadInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, ".flowscribe.yaml", "log_level: shouting\n")

	_, err := config.Load(testContext(t), path)
	require.Error(t, err)
}

func TestDiscoverDefaults(t *testing.T) {
	cfg, err := config.Discover(testContext(t), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Root)
	assert.Equal(t, "**/*.{yml,yaml}", cfg.Pattern)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Backup)
}

func TestDiscoverFindsConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".flowscribe.yml"), []byte("root: flows\n"), 0o644))

	cfg, err := config.Discover(testContext(t), dir)
	require.NoError(t, err)
	assert.Equal(t, "flows", cfg.Root)
}

func TestDiscoverEnvOverrides(t *testing.T) {
	t.Setenv("FLOWSCRIBE_ROOT", "/env/root")
	t.Setenv("FLOWSCRIBE_BACKUP", "true")

	cfg, err := config.Discover(testContext(t), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "/env/root", cfg.Root)
	assert.True(t, cfg.Backup)
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, config.Validate(cfg))

	cfg.Pattern = "[broken"
	require.Error(t, config.Validate(cfg))
}
