package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruce-hill/blangc/internal/config"
)

func TestHasSourceExt(t *testing.T) {
	assert.True(t, config.HasSourceExt("main.lang"))
	assert.False(t, config.HasSourceExt("main.go"))
}

func TestModulePathPrependsExtraDirs(t *testing.T) {
	path := config.ModulePath([]string{"/extra/one", "/extra/two"})
	require.True(t, len(path) >= 2)
	assert.Equal(t, "/extra/one", path[0])
	assert.Equal(t, "/extra/two", path[1])
}

func TestModulePathWithNoExtraStillIncludesDefault(t *testing.T) {
	path := config.ModulePath(nil)
	assert.Equal(t, config.DefaultModulePath(), path)
}

func TestFindProjectFileWalksUpward(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, config.ProjectFileName), []byte("module_paths: []\n"), 0o644))

	found := config.FindProjectFile(sub)
	assert.Equal(t, filepath.Join(root, config.ProjectFileName), found)
}

func TestFindProjectFileReturnsEmptyWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "", config.FindProjectFile(dir))
}

func TestLoadProjectReturnsZeroConfigWhenNoFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.LoadProject(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.ModulePaths)
}

func TestLoadProjectDecodesNearestFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ProjectFileName),
		[]byte("module_paths:\n  - ./vendor\ndefault_backend: native\n"), 0o644))
	cfg, err := config.LoadProject(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"./vendor"}, cfg.ModulePaths)
	assert.Equal(t, "native", cfg.DefaultBackend)
}
