package env

import (
	"strings"

	"github.com/bruce-hill/blangc/internal/types"
	"github.com/bruce-hill/blangc/internal/units"
)

// stringObj is the runtime representation the builtin String methods below
// operate over once the vm/native backends unbox a String array-of-char
// value; lowering is responsible for the array<->Go-string conversion.
type stringObj = string

// RegisterStringMethods installs the String type's per-type namespace
// (spec.md §4.6): uppercased, lowercased, trimmed, starts_with, ends_with,
// replace. Method calls desugar to a function call with the receiver as
// first argument, exactly as funxy desugars method calls in its analyzer.
func RegisterStringMethods(e *Environment, stringType *types.Type) {
	ns := e.NamespaceFor(stringType)
	boolT := types.Bool()
	intT := types.Int(64, units.None, false)

	method := func(name string, argNames []string, argTypes []*types.Type, ret *types.Type, fn BuiltinFunc) {
		ft := types.Function(append([]string{"self"}, argNames...), append([]*types.Type{stringType}, argTypes...), make([]bool, len(argNames)+1), ret)
		ns[name] = &Binding{Type: ft, Symbol: "String." + name, Func: fn}
	}

	method("uppercased", nil, nil, stringType, func(args []interface{}) (interface{}, error) {
		return strings.ToUpper(args[0].(stringObj)), nil
	})
	method("lowercased", nil, nil, stringType, func(args []interface{}) (interface{}, error) {
		return strings.ToLower(args[0].(stringObj)), nil
	})
	method("trimmed", []string{"chars", "trim_left", "trim_right"},
		[]*types.Type{stringType, boolT, boolT}, stringType,
		func(args []interface{}) (interface{}, error) {
			s := args[0].(stringObj)
			cutset := " \t\r\n"
			if len(args) > 1 && args[1] != nil {
				cutset = args[1].(stringObj)
			}
			left, right := true, true
			if len(args) > 2 && args[2] != nil {
				left = args[2].(bool)
			}
			if len(args) > 3 && args[3] != nil {
				right = args[3].(bool)
			}
			if left {
				s = strings.TrimLeft(s, cutset)
			}
			if right {
				s = strings.TrimRight(s, cutset)
			}
			return s, nil
		})
	method("starts_with", []string{"prefix"}, []*types.Type{stringType}, boolT,
		func(args []interface{}) (interface{}, error) {
			return strings.HasPrefix(args[0].(stringObj), args[1].(stringObj)), nil
		})
	method("ends_with", []string{"suffix"}, []*types.Type{stringType}, boolT,
		func(args []interface{}) (interface{}, error) {
			return strings.HasSuffix(args[0].(stringObj), args[1].(stringObj)), nil
		})
	method("replace", []string{"pattern", "replacement", "limit"},
		[]*types.Type{stringType, stringType, intT}, stringType,
		func(args []interface{}) (interface{}, error) {
			s, pattern, replacement := args[0].(stringObj), args[1].(stringObj), args[2].(stringObj)
			limit := -1
			if len(args) > 3 && args[3] != nil {
				limit = int(args[3].(int64))
			}
			return strings.Replace(s, pattern, replacement, limit), nil
		})
}
