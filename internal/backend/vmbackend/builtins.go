package vmbackend

import (
	"fmt"
	"sort"
)

// runtimeBuiltins are the backend-linked functions lowering emits calls to:
// string concatenation, equality/compare/hash fallbacks, array/table
// printing, and the bounds/match/doctest failure hooks (spec.md §4.5.1,
// §4.5.5, §4.8).
var runtimeBuiltins = map[string]func([]interface{}) (interface{}, error){
	"__string_concat": func(args []interface{}) (interface{}, error) {
		return fmt.Sprintf("%v%v", args[0], args[1]), nil
	},
	"__equal": func(args []interface{}) (interface{}, error) {
		return deepEqual(args[0], args[1]), nil
	},
	"__compare_scalar": func(args []interface{}) (interface{}, error) {
		a, b := args[0], args[1]
		switch {
		case asFloat(a) < asFloat(b):
			return int64(-1), nil
		case asFloat(a) > asFloat(b):
			return int64(1), nil
		default:
			return int64(0), nil
		}
	},
	"__hash_scalar": func(args []interface{}) (interface{}, error) {
		return int64(hashValue(args[0])), nil
	},
	"__print_scalar": func(args []interface{}) (interface{}, error) {
		return fmt.Sprintf("%v", args[0]), nil
	},
	"__print_array": func(args []interface{}) (interface{}, error) {
		items := arrayItems(args[0])
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = fmt.Sprintf("%v", it)
		}
		return "[" + joinComma(parts) + "]", nil
	},
	"__print_table": func(args []interface{}) (interface{}, error) {
		m, _ := args[0].(map[string]interface{})
		entries, _ := m["entries"].(map[interface{}]interface{})
		keys := make([]string, 0, len(entries))
		rendered := map[string]interface{}{}
		for k, v := range entries {
			ks := fmt.Sprintf("%v", k)
			keys = append(keys, ks)
			rendered[ks] = v
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %v", k, rendered[k])
		}
		return "{" + joinComma(parts) + "}", nil
	},
	"__print_tagged_union": func(args []interface{}) (interface{}, error) {
		m, _ := args[0].(map[string]interface{})
		return fmt.Sprintf("<tag %v>", m["tag"]), nil
	},
	"__print_pointer": func(args []interface{}) (interface{}, error) {
		return fmt.Sprintf("%p", args[0]), nil
	},
	"__index_fail": func(args []interface{}) (interface{}, error) {
		return nil, fmt.Errorf("index %v out of bounds (length %v)", args[0], args[1])
	},
	"__fail": func(args []interface{}) (interface{}, error) {
		msg := ""
		if len(args) > 0 {
			msg = fmt.Sprintf("%v", args[0])
		}
		return nil, fmt.Errorf("%s", msg)
	},
	"__unmatched": func(args []interface{}) (interface{}, error) {
		return nil, fmt.Errorf("no pattern matched")
	},
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

func deepEqual(a, b interface{}) bool {
	am, aok := a.(map[string]interface{})
	bm, bok := b.(map[string]interface{})
	if aok && bok {
		if len(am) != len(bm) {
			return false
		}
		for k, v := range am {
			if !deepEqual(v, bm[k]) {
				return false
			}
		}
		return true
	}
	if aArr, ok := a.([]interface{}); ok {
		bArr, ok2 := b.([]interface{})
		if !ok2 || len(aArr) != len(bArr) {
			return false
		}
		for i := range aArr {
			if !deepEqual(aArr[i], bArr[i]) {
				return false
			}
		}
		return true
	}
	return a == b
}

func hashValue(v interface{}) uint64 {
	switch x := v.(type) {
	case int64:
		return uint64(x)
	case float64:
		return uint64(x)
	case string:
		var h uint64 = 14695981039346656037
		for i := 0; i < len(x); i++ {
			h ^= uint64(x[i])
			h *= 1099511628211
		}
		return h
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return 0
	}
}
