package env

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/bruce-hill/blangc/internal/types"
	"github.com/bruce-hill/blangc/internal/units"
)

// StdoutIsTerminal reports whether w is a real terminal worth colorizing
// diagnostics and `say`/interpolation output for (spec.md §4.1's
// colorize flag, §4.5.5's "Strings print with color escapes when
// requested"). Grounded on funxy's internal/evaluator/builtins_term.go use
// of mattn/go-isatty.
func StdoutIsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// FreshLabel returns a process-unique synthetic name for an anonymous
// lambda, closure, or print-recursion table cell (spec.md §4.5.5's
// recursion map assigns "increasing indices"; we use a UUID suffix instead
// of a counter so labels stay unique across independently lowered
// compilation units sharing one backend session). Grounded on funxy's
// `uuid` virtual package (internal/modules/virtual_packages_data.go).
func FreshLabel(prefix string) string {
	return prefix + "$" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// ProjectConfig is the optional `blang.yml` project file (SPEC_FULL.md §1):
// per-project module search path entries and a default backend choice.
type ProjectConfig struct {
	ModulePaths    []string `yaml:"module_paths"`
	DefaultBackend string   `yaml:"default_backend"`
}

// LoadProjectConfig decodes a project config file, grounded on funxy's
// internal/evaluator/builtins_yaml.go use of yaml.Unmarshal/Marshal for a
// builtin `yaml` namespace; here the same library configures the compiler
// itself rather than the compiled program.
func LoadProjectConfig(text string) (*ProjectConfig, error) {
	var cfg ProjectConfig
	if err := yaml.Unmarshal([]byte(text), &cfg); err != nil {
		return nil, fmt.Errorf("invalid project config: %w", err)
	}
	return &cfg, nil
}

// DumpProjectConfig serializes cfg back to yaml, used by `blangc -V` style
// scripted test harnesses that want to snapshot the resolved config.
func DumpProjectConfig(cfg *ProjectConfig) (string, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// BuiltinFunc is the signature every backend-linked Go builtin implements.
// args/results are backend-representation values; the vm backend calls
// these directly. The native backend does not call them; it declares
// extern runtime symbols instead (see internal/backend/native).
type BuiltinFunc func(args []interface{}) (interface{}, error)

// RegisterBuiltins populates e's global table with the backend-linked
// functions: the 64-bit Num math routines (sin, cos, tan, sqrt, floor,
// ceil, abs, pow, atan2), is_terminal, and say. No allocator hooks and no
// Num32 variants are registered.
func RegisterBuiltins(e *Environment) {
	num64 := types.Num(64, units.None)
	num32 := types.Num(32, units.None)
	boolT := types.Bool()

	def := func(name string, argNames []string, argTypes []*types.Type, ret *types.Type, fn BuiltinFunc) {
		ft := types.Function(argNames, argTypes, make([]bool, len(argNames)), ret)
		e.Define(name, &Binding{Type: ft, IsGlobal: true, Symbol: name, Func: fn})
	}

	mathFn1 := func(f func(float64) float64) BuiltinFunc {
		return func(args []interface{}) (interface{}, error) { return f(args[0].(float64)), nil }
	}
	mathFn2 := func(f func(float64, float64) float64) BuiltinFunc {
		return func(args []interface{}) (interface{}, error) { return f(args[0].(float64), args[1].(float64)), nil }
	}

	for _, name := range []string{"sin", "cos", "tan", "sqrt", "floor", "ceil", "abs"} {
		f := map[string]func(float64) float64{
			"sin": math.Sin, "cos": math.Cos, "tan": math.Tan,
			"sqrt": math.Sqrt, "floor": math.Floor, "ceil": math.Ceil, "abs": math.Abs,
		}[name]
		def(name, []string{"x"}, []*types.Type{num64}, num64, mathFn1(f))
	}
	def("pow", []string{"base", "exp"}, []*types.Type{num64, num64}, num64, mathFn2(math.Pow))
	def("atan2", []string{"y", "x"}, []*types.Type{num64, num64}, num64, mathFn2(math.Atan2))
	_ = num32
	_ = boolT

	def("is_terminal", nil, nil, boolT, func(args []interface{}) (interface{}, error) {
		return StdoutIsTerminal(os.Stdout), nil
	})

	stringT := types.Array(types.Char())
	def("say", []string{"message"}, []*types.Type{stringT}, types.Void(), func(args []interface{}) (interface{}, error) {
		msg, _ := args[0].(string)
		end := "\n"
		if len(args) > 1 {
			if e, ok := args[1].(string); ok {
				end = e
			}
		}
		_, err := Write(os.Stdout, msg+end)
		return nil, err
	})
}

// Write is the backend-linked formatted-write primitive say()/print() lower
// onto (spec.md §4.6); it is a thin wrapper so the VM and native backends
// share one implementation.
func Write(w io.Writer, s string) (int, error) {
	return io.WriteString(w, s)
}
