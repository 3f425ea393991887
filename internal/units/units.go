// Package units implements the free abelian group over unit-of-measure
// atoms used by the Language's numeric types (spec.md §4.2).
package units

import (
	"sort"
	"strconv"
	"strings"
)

// Unit is the canonical, interned string form of a unit-of-measure
// expression, e.g. "m", "m^2/s", "". Equality is plain string equality,
// which is pointer-cheap once interned through Intern.
type Unit string

// None is the unit-less unit.
const None Unit = ""

// Percent is the display-only unit: a value typed with it is multiplied
// by 100 when printed (spec.md §4.2, confirmed by original_source's
// compile/print.c handling of "%").
const Percent Unit = "%"

type term struct {
	name string
	exp  int
}

var internTable = map[string]Unit{}

// Intern canonicalizes a raw unit expression (as lexed from "<...>"
// syntax) into its Unit form, normalizing duplicate atoms and ordering.
func Intern(raw string) Unit {
	if u, ok := internTable[raw]; ok {
		return u
	}
	norm := Normalize(raw)
	internTable[raw] = norm
	internTable[string(norm)] = norm
	return norm
}

// Normalize parses a raw unit expression "a*b^2/c" into canonical form.
func Normalize(raw string) Unit {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return None
	}
	if raw == string(Percent) {
		return Percent
	}
	terms := parseTerms(raw)
	return combine(terms)
}

func parseTerms(raw string) []term {
	terms := map[string]int{}
	sign := 1
	i := 0
	for i < len(raw) {
		switch raw[i] {
		case '*':
			sign = 1
			i++
			continue
		case '/':
			sign = -1
			i++
			continue
		case ' ':
			i++
			continue
		}
		j := i
		for j < len(raw) && raw[j] != '*' && raw[j] != '/' {
			j++
		}
		atom := raw[i:j]
		name, exp := splitExponent(atom)
		// "1" is the numerator placeholder combine writes for "1/s".
		if name != "" && name != "1" {
			terms[name] += sign * exp
		}
		i = j
	}
	out := make([]term, 0, len(terms))
	for name, exp := range terms {
		if exp != 0 {
			out = append(out, term{name: name, exp: exp})
		}
	}
	return out
}

func splitExponent(atom string) (string, int) {
	if idx := strings.IndexByte(atom, '^'); idx >= 0 {
		name := atom[:idx]
		expStr := atom[idx+1:]
		exp, err := strconv.Atoi(expStr)
		if err != nil {
			return name, 1
		}
		return name, exp
	}
	return atom, 1
}

func combine(terms []term) Unit {
	merged := map[string]int{}
	for _, t := range terms {
		merged[t.name] += t.exp
	}
	names := make([]string, 0, len(merged))
	for name, exp := range merged {
		if exp != 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var pos, neg []string
	for _, name := range names {
		exp := merged[name]
		if exp > 0 {
			pos = append(pos, formatTerm(name, exp))
		} else {
			neg = append(neg, formatTerm(name, -exp))
		}
	}
	var b strings.Builder
	b.WriteString(strings.Join(pos, "*"))
	if len(neg) > 0 {
		if len(pos) > 0 {
			b.WriteByte('/')
		} else {
			b.WriteString("1/")
		}
		b.WriteString(strings.Join(neg, "*"))
	}
	return Unit(b.String())
}

func formatTerm(name string, exp int) string {
	if exp == 1 {
		return name
	}
	return name + "^" + strconv.Itoa(exp)
}

// Mul returns the canonical form of u*v.
func Mul(u, v Unit) Unit {
	if u == Percent || v == Percent {
		// "%" is display-only; combining it with a real unit drops the marker.
		if u == Percent {
			return v
		}
		return u
	}
	return combine(append(parseTerms(string(u)), parseTerms(string(v))...))
}

// Div returns the canonical form of u/v.
func Div(u, v Unit) Unit {
	inverted := parseTerms(string(v))
	for i := range inverted {
		inverted[i].exp = -inverted[i].exp
	}
	return combine(append(parseTerms(string(u)), inverted...))
}

// Equal reports whether two canonical units denote the same dimension.
func Equal(u, v Unit) bool { return u == v }
