package driver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruce-hill/blangc/internal/backend"
	"github.com/bruce-hill/blangc/internal/backend/vmbackend"
	"github.com/bruce-hill/blangc/internal/driver"
	"github.com/bruce-hill/blangc/internal/env"
)

func TestCompileSourceSucceeds(t *testing.T) {
	res := driver.CompileSource("<test>", "x := 1\n", driver.Options{})
	require.Empty(t, res.Diagnostics)
	require.NotNil(t, res.Module)
}

func TestCompileSourceReportsSyntaxDiagnostics(t *testing.T) {
	res := driver.CompileSource("<test>", "func add(x: Int\n", driver.Options{})
	require.NotEmpty(t, res.Diagnostics)
	assert.Equal(t, env.KindSyntax, res.Diagnostics[0].Kind)
	assert.Nil(t, res.Module)
}

func TestCompileSourceReportsTypeDiagnostics(t *testing.T) {
	res := driver.CompileSource("<test>", "x := y\n", driver.Options{})
	require.NotEmpty(t, res.Diagnostics)
	assert.Equal(t, env.KindType, res.Diagnostics[0].Kind)
}

func TestCompileFileReadsAndCompiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.lang")
	require.NoError(t, os.WriteFile(path, []byte("x := 1\n"), 0o644))

	res, ok := driver.CompileFile(path, driver.Options{})
	require.True(t, ok)
	require.NotNil(t, res.Module)
}

func TestCompileFileMissingReturnsFalse(t *testing.T) {
	_, ok := driver.CompileFile(filepath.Join(t.TempDir(), "missing.lang"), driver.Options{})
	assert.False(t, ok)
}

func TestCompileSourceSeedsDefineAsGlobalConstant(t *testing.T) {
	res := driver.CompileSource("<test>", "return count\n", driver.Options{Defines: map[string]string{"count": "7"}})
	require.Empty(t, res.Diagnostics)
	require.NotNil(t, res.Module)

	code, err := vmbackend.New().Run(res.Module)
	require.NoError(t, err)
	assert.Equal(t, 7, code)
}

func TestRunFileExecutesAndReturnsExitCode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.lang")
	require.NoError(t, os.WriteFile(path, []byte("return 9\n"), 0o644))

	code := driver.RunFile(path, vmbackend.New(), driver.Options{})
	assert.Equal(t, 9, code)
}

func TestRunFileReturnsOneOnCompileFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.lang")
	require.NoError(t, os.WriteFile(path, []byte("x := y\n"), 0o644))

	code := driver.RunFile(path, vmbackend.New(), driver.Options{})
	assert.Equal(t, 1, code)
}

func TestCompileFileToFailsForBackendWithoutAheadOfTimeSupport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.lang")
	require.NoError(t, os.WriteFile(path, []byte("x := 1\n"), 0o644))

	ok := driver.CompileFileTo(path, filepath.Join(dir, "out"), vmbackend.New(), backend.CompileOptions{}, driver.Options{})
	assert.False(t, ok, "vm backend has no ahead-of-time path")
}
