package vmbackend_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruce-hill/blangc/internal/backend"
	"github.com/bruce-hill/blangc/internal/backend/vmbackend"
	"github.com/bruce-hill/blangc/internal/check"
	"github.com/bruce-hill/blangc/internal/env"
	"github.com/bruce-hill/blangc/internal/ir"
	"github.com/bruce-hill/blangc/internal/lower"
	"github.com/bruce-hill/blangc/internal/parser"
	"github.com/bruce-hill/blangc/internal/source"
)

func lowerSource(t *testing.T, text string) *ir.Module {
	t.Helper()
	f := source.New("<test>", text)
	body, diags := parser.Parse(f)
	require.Empty(t, diags, "unexpected parse diagnostics for %q", text)
	e := env.New()
	e.CurrentFile = f
	env.RegisterBuiltins(e)
	c := check.New(e)
	for _, stmt := range body.Statements {
		c.GetType(stmt)
	}
	require.Empty(t, c.Errors(), "unexpected check diagnostics for %q: %+v", text, c.Errors())
	return lower.New(e, c, "<test>").LowerProgram(body)
}

func TestRunReturnsExitCode(t *testing.T) {
	m := lowerSource(t, "return 42\n")
	vm := vmbackend.New()
	code, err := vm.Run(m)
	require.NoError(t, err)
	assert.Equal(t, 42, code)
}

func TestRunDefaultsToZeroExitCode(t *testing.T) {
	m := lowerSource(t, "x := 1\n")
	vm := vmbackend.New()
	code, err := vm.Run(m)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestRunArithmeticThenReturn(t *testing.T) {
	m := lowerSource(t, "x := 2\ny := 3\nreturn x * y + 1\n")
	vm := vmbackend.New()
	code, err := vm.Run(m)
	require.NoError(t, err)
	assert.Equal(t, 7, code)
}

func TestRunIfSelectsCorrectBranch(t *testing.T) {
	m := lowerSource(t, "if no:\n    return 1\nelse:\n    return 2\n")
	vm := vmbackend.New()
	code, err := vm.Run(m)
	require.NoError(t, err)
	assert.Equal(t, 2, code)
}

func TestRunWhileLoopAccumulates(t *testing.T) {
	m := lowerSource(t, "total := 0\ni := 0\nwhile i < 5:\n    total = total + i\n    i = i + 1\nreturn total\n")
	vm := vmbackend.New()
	code, err := vm.Run(m)
	require.NoError(t, err)
	assert.Equal(t, 10, code)
}

func TestRunFunctionCallReturnsComputedValue(t *testing.T) {
	m := lowerSource(t, "func add(x: Int64, y: Int64) -> Int64:\n    return x + y\nreturn add(3, 4)\n")
	vm := vmbackend.New()
	code, err := vm.Run(m)
	require.NoError(t, err)
	assert.Equal(t, 7, code)
}

func TestRunGlobalPersistsAcrossModuleInvocations(t *testing.T) {
	vm := vmbackend.New()
	m1 := lowerSource(t, "global counter := 1\n")
	_, err := vm.Run(m1)
	require.NoError(t, err)

	m2 := lowerSource(t, "global counter := 1\nreturn counter\n")
	code, err := vm.Run(m2)
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestCompileToFileIsUnsupported(t *testing.T) {
	m := lowerSource(t, "x := 1\n")
	vm := vmbackend.New()
	err := vm.CompileToFile(m, "/tmp/out", backend.CompileOptions{})
	assert.Error(t, err)
}

func TestNameIsVM(t *testing.T) {
	assert.Equal(t, "vm", vmbackend.New().Name())
}

func TestRunSayWritesToOutput(t *testing.T) {
	m := lowerSource(t, `say("hello")`+"\n")
	vm := vmbackend.New()
	var buf bytes.Buffer
	vm.SetOutput(&buf)
	_, err := vm.Run(m)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", buf.String())
}

func TestRunSayInterpolatesUnitSuffix(t *testing.T) {
	m := lowerSource(t, `say("$(3<s>)")`+"\n")
	vm := vmbackend.New()
	var buf bytes.Buffer
	vm.SetOutput(&buf)
	_, err := vm.Run(m)
	require.NoError(t, err)
	assert.Equal(t, "3<s>\n", buf.String())
}

func TestRunSayHonorsEndKeywordArg(t *testing.T) {
	m := lowerSource(t, "for i in 1..3:\n    say(\"x\", end=\",\")\n")
	vm := vmbackend.New()
	var buf bytes.Buffer
	vm.SetOutput(&buf)
	_, err := vm.Run(m)
	require.NoError(t, err)
	assert.Equal(t, "x,x,x,", buf.String())
}
