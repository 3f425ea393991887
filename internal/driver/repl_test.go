package driver_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruce-hill/blangc/internal/backend/vmbackend"
	"github.com/bruce-hill/blangc/internal/driver"
)

func TestEvalInputRunsExpressionAndReportsResult(t *testing.T) {
	r := driver.NewREPL(vmbackend.New())
	var out bytes.Buffer
	r.EvalInput("1 + 2\n", &out)
	assert.Contains(t, out.String(), "= 3")
}

func TestEvalInputGlobalPersistsAcrossInputs(t *testing.T) {
	r := driver.NewREPL(vmbackend.New())
	var out bytes.Buffer
	r.EvalInput("x := 5\n", &out)
	out.Reset()
	r.EvalInput("x + 1\n", &out)
	assert.Contains(t, out.String(), "= 6")
}

func TestEvalInputReportsSyntaxDiagnostic(t *testing.T) {
	r := driver.NewREPL(vmbackend.New())
	var out bytes.Buffer
	r.EvalInput("func add(x: Int\n", &out)
	assert.Contains(t, out.String(), "syntax error")
}

func TestEvalInputReportsTypeDiagnostic(t *testing.T) {
	r := driver.NewREPL(vmbackend.New())
	var out bytes.Buffer
	r.EvalInput("y + 1\n", &out)
	assert.Contains(t, out.String(), "type error")
}

func TestRunEvaluatesMultipleBlankSeparatedInputs(t *testing.T) {
	r := driver.NewREPL(vmbackend.New())
	var out bytes.Buffer
	in := strings.NewReader("x := 1\n\n1 + 1\n\n")
	r.Run(in, &out)
	assert.Contains(t, out.String(), "= 2")
}

func TestNewREPLRegistersBuiltins(t *testing.T) {
	r := driver.NewREPL(vmbackend.New())
	_, ok := r.Env.Lookup("sqrt")
	require.True(t, ok, "REPL environment should have builtins registered")
}
