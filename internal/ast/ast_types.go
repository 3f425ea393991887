package ast

import "github.com/bruce-hill/blangc/internal/units"

// TypeName is a bare named type reference, e.g. `Int`, `MyStruct`.
type TypeName struct {
	Base
	Name string
}

func (n *TypeName) Accept(v Visitor) { v.VisitTypeName(n) }

// TypeArray is `[Item]`.
type TypeArray struct {
	Base
	Item Node
}

func (n *TypeArray) Accept(v Visitor) { v.VisitTypeArray(n) }

// TypePointer is `@Pointed` or `?Pointed` (Optional=true) per spec.md §3.3:
// Pointer{optional:true} is the sole representation of a possibly-absent value.
type TypePointer struct {
	Base
	Pointed  Node
	Optional bool
}

func (n *TypePointer) Accept(v Visitor) { v.VisitTypePointer(n) }

// TypeOptional wraps a pointer type as optional; valid only over TypePointer.
type TypeOptional struct {
	Base
	Type Node
}

func (n *TypeOptional) Accept(v Visitor) { v.VisitTypeOptional(n) }

// TypeFunction is `(ArgTypes...) -> Ret`.
type TypeFunction struct {
	Base
	ArgNames []string
	ArgTypes []Node
	Ret      Node
}

func (n *TypeFunction) Accept(v Visitor) { v.VisitTypeFunction(n) }

// TypeTuple is `(T1, T2, ...)`.
type TypeTuple struct {
	Base
	Members []Node
}

func (n *TypeTuple) Accept(v Visitor) { v.VisitTypeTuple(n) }

// TypeMeasure is `Type<units>`; valid only over a unit-less numeric Base
// type (spec.md §4.4.1).
type TypeMeasure struct {
	Base
	Type  Node
	Units units.Unit
}

func (n *TypeMeasure) Accept(v Visitor) { v.VisitTypeMeasure(n) }
