package types

import "github.com/bruce-hill/blangc/internal/units"

// CanPromote implements promote() from spec.md §4.5.6: implicit promotion
// is allowed only between equal types; numeric of lower priority to higher
// priority with matching units; a non-optional pointer to an optional
// pointer of the same pointee; and identical function types.
func CanPromote(from, to *Type) bool {
	if from.Equal(to) {
		return true
	}
	if from.IsNumeric() && to.IsNumeric() {
		return from.Priority() <= to.Priority() && units.Equal(from.Units, to.Units)
	}
	if from.kind == KindPointer && to.kind == KindPointer {
		if !from.Optional && to.Optional {
			return from.Pointed.Equal(to.Pointed)
		}
	}
	if from.kind == KindFunction && to.kind == KindFunction {
		return from.Equal(to)
	}
	return false
}

// PromotionMonotone checks property 4 of spec.md §8: if promote(a->b)
// succeeds, so does promote(a->c) whenever priority(b) <= priority(c) and
// units agree. Exposed for the property tests in internal/types.
func PromotionMonotone(a, b, c *Type) bool {
	if !CanPromote(a, b) {
		return true // vacuously true
	}
	if !a.IsNumeric() || !c.IsNumeric() {
		return true
	}
	if c.Priority() < b.Priority() || !units.Equal(b.Units, c.Units) {
		return true
	}
	return CanPromote(a, c)
}

// JoinOrNil implements type_or_type(a,b) from spec.md §4.4.2: the join of
// two types, or nil if no join exists.
func JoinOrNil(a, b *Type) *Type {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Equal(b) {
		return a
	}
	aGen, bGen := a.kind == KindGenerator, b.kind == KindGenerator
	if aGen || bGen {
		inner := JoinOrNil(Generated(a), Generated(b))
		if inner == nil {
			return nil
		}
		return Generator(inner)
	}
	if a.kind == KindAbort {
		return b
	}
	if b.kind == KindAbort {
		return a
	}
	if a.IsNumeric() && b.IsNumeric() && units.Equal(a.Units, b.Units) {
		if a.Priority() >= b.Priority() {
			return a
		}
		return b
	}
	if a.kind == KindPointer && b.kind == KindPointer && a.Pointed.Equal(b.Pointed) {
		return Pointer(a.Pointed, a.Optional || b.Optional, a.IsStack && b.IsStack)
	}
	return nil
}

// IsSubtype reports whether sub may be used wherever super is expected,
// for the purposes of equality checks (spec.md §4.4.2: "either side must
// be subtype of the other, or both numeric") and table default values.
func IsSubtype(sub, super *Type) bool {
	if sub.Equal(super) {
		return true
	}
	return CanPromote(sub, super)
}
