package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgsNoArgsStartsREPL(t *testing.T) {
	f, err := parseArgs(nil)
	require.NoError(t, err)
	assert.Empty(t, f.file)
	assert.False(t, f.help)
	assert.False(t, f.verbose)
}

func TestParseArgsHelpFlag(t *testing.T) {
	f, err := parseArgs([]string{"--help"})
	require.NoError(t, err)
	assert.True(t, f.help)

	f, err = parseArgs([]string{"-h"})
	require.NoError(t, err)
	assert.True(t, f.help)
}

func TestParseArgsVerboseAndCompile(t *testing.T) {
	f, err := parseArgs([]string{"-v", "-c", "prog.lang"})
	require.NoError(t, err)
	assert.True(t, f.verbose)
	assert.True(t, f.compile)
	assert.Equal(t, "prog.lang", f.file)
}

func TestParseArgsOutfile(t *testing.T) {
	f, err := parseArgs([]string{"-o", "out", "prog.lang"})
	require.NoError(t, err)
	assert.Equal(t, "out", f.outfile)
	assert.Equal(t, "prog.lang", f.file)
}

func TestParseArgsOutfileMissingValueIsError(t *testing.T) {
	_, err := parseArgs([]string{"-o"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-o requires an output path")
}

func TestParseArgsOptLevel(t *testing.T) {
	f, err := parseArgs([]string{"-O2", "prog.lang"})
	require.NoError(t, err)
	assert.Equal(t, 2, f.optLevel)
}

func TestParseArgsInvalidOptLevelIsError(t *testing.T) {
	_, err := parseArgs([]string{"-Ofoo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid -O level")
}

func TestParseArgsIncludeDirsAccumulate(t *testing.T) {
	f, err := parseArgs([]string{"-Ilib", "-Ivendor", "prog.lang"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lib", "vendor"}, f.includes)
}

func TestParseArgsDefines(t *testing.T) {
	f, err := parseArgs([]string{"-Vname=1", "prog.lang"})
	require.NoError(t, err)
	assert.Equal(t, "1", f.defines["name"])
}

func TestParseArgsInvalidDefineIsError(t *testing.T) {
	_, err := parseArgs([]string{"-Vnovalue"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected name=literal")
}

func TestParseArgsUnknownFlagIsError(t *testing.T) {
	_, err := parseArgs([]string{"--bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")
}

func TestParseArgsFileStopsFlagParsingAndCollectsProgArgs(t *testing.T) {
	f, err := parseArgs([]string{"prog.lang", "-v", "arg2"})
	require.NoError(t, err)
	assert.Equal(t, "prog.lang", f.file)
	assert.Equal(t, []string{"-v", "arg2"}, f.progArgs)
}

func TestParseArgsAsmOnly(t *testing.T) {
	f, err := parseArgs([]string{"--asm", "prog.lang"})
	require.NoError(t, err)
	assert.True(t, f.asmOnly)
}

func TestParseArgsBareDashIsTreatedAsFile(t *testing.T) {
	f, err := parseArgs([]string{"-"})
	require.NoError(t, err)
	assert.Equal(t, "-", f.file)
}
