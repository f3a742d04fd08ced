package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	runCfg, err := cfg.RunConfig()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultMaxConcurrent, runCfg.MaxConcurrent)
	assert.Equal(t, domain.DefaultBatchDelay, runCfg.BatchDelay)
	assert.Equal(t, domain.DefaultStepTimeout, runCfg.StepTimeout)
	assert.True(t, runCfg.Headless)
	assert.Empty(t, runCfg.OutputDir)
}

func TestLoad_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoad_ParsesFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[run]
max_concurrent = 5
batch_delay = "500ms"
step_timeout = "1m30s"
output_dir = "/tmp/facturas"

[portal]
headless = false

[archive]
keep = 25
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, FileName), []byte(content), 0600))

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	runCfg, err := cfg.RunConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, runCfg.MaxConcurrent)
	assert.Equal(t, 500*time.Millisecond, runCfg.BatchDelay)
	assert.Equal(t, 90*time.Second, runCfg.StepTimeout)
	assert.Equal(t, "/tmp/facturas", runCfg.OutputDir)
	assert.False(t, runCfg.Headless)
	assert.Equal(t, 25, cfg.ArchiveKeep())
}

func TestLoad_RejectsMalformedTOML(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, FileName), []byte("[run\nmax"), 0600))

	_, err := Load(tmpDir)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestRunConfig_BadDuration(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	cfg.Run.BatchDelay = "quickly"
	_, err = cfg.RunConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	cfg.Run.BatchDelay = "1s"
	cfg.Run.StepTimeout = "whenever"
	_, err = cfg.RunConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestRunConfig_InvalidValuesRejected(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	cfg.Run.MaxConcurrent = -2
	_, err = cfg.RunConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSaveAndReload(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	headless := false
	cfg.Run.MaxConcurrent = 4
	cfg.Run.BatchDelay = "3s"
	cfg.Portal.Headless = &headless
	cfg.Archive.Keep = 10
	require.NoError(t, cfg.Save())

	info, err := os.Stat(cfg.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reloaded, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 4, reloaded.Run.MaxConcurrent)
	assert.Equal(t, "3s", reloaded.Run.BatchDelay)
	require.NotNil(t, reloaded.Portal.Headless)
	assert.False(t, *reloaded.Portal.Headless)
	assert.Equal(t, 10, reloaded.ArchiveKeep())
}

func TestPaths(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), cfg.Path())
	assert.Equal(t, filepath.Join(tmpDir, "issuers.json"), cfg.IssuersPath())
	assert.Equal(t, filepath.Join(tmpDir, "data", "runs.db"), cfg.DatabasePath())
}
