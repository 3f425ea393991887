package env_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruce-hill/blangc/internal/env"
	"github.com/bruce-hill/blangc/internal/types"
)

func TestRegisterBuiltinsDefinesMathFunctions(t *testing.T) {
	e := env.New()
	env.RegisterBuiltins(e)
	for _, name := range []string{"sin", "cos", "tan", "sqrt", "floor", "ceil", "abs", "pow", "atan2", "is_terminal"} {
		b, ok := e.Lookup(name)
		require.True(t, ok, "builtin %q should be registered", name)
		assert.Equal(t, types.KindFunction, b.Type.Kind())
		assert.NotNil(t, b.Func)
	}
}

func TestRegisterBuiltinsSqrtCallable(t *testing.T) {
	e := env.New()
	env.RegisterBuiltins(e)
	b, ok := e.Lookup("sqrt")
	require.True(t, ok)
	fn := b.Func.(env.BuiltinFunc)
	result, err := fn([]interface{}{4.0})
	require.NoError(t, err)
	assert.Equal(t, 2.0, result)
}

func TestRegisterBuiltinsDefinesSay(t *testing.T) {
	e := env.New()
	env.RegisterBuiltins(e)
	b, ok := e.Lookup("say")
	require.True(t, ok)
	assert.Equal(t, types.KindFunction, b.Type.Kind())
	fn := b.Func.(env.BuiltinFunc)
	_, err := fn([]interface{}{"hello"})
	require.NoError(t, err)
}

func TestLoadAndDumpProjectConfig(t *testing.T) {
	cfg, err := env.LoadProjectConfig("module_paths:\n  - ./lib\ndefault_backend: vm\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"./lib"}, cfg.ModulePaths)
	assert.Equal(t, "vm", cfg.DefaultBackend)

	out, err := env.DumpProjectConfig(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "default_backend: vm")
}

func TestLoadProjectConfigInvalidYAML(t *testing.T) {
	_, err := env.LoadProjectConfig("not: [valid\n")
	assert.Error(t, err)
}

func TestFreshLabelIsUniqueAndPrefixed(t *testing.T) {
	a := env.FreshLabel("lambda")
	b := env.FreshLabel("lambda")
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "lambda$")
}

func TestWriteWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	n, err := env.Write(&buf, "hello")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", buf.String())
}
