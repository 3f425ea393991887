package ast

// Declare is `name := value` (or `global name := value`).
type Declare struct {
	Base
	Var      Pattern // usually *Var, may be a destructuring pattern
	Value    Node
	IsGlobal bool
}

func (n *Declare) Accept(v Visitor) { v.VisitDeclare(n) }

// Assign is `lhs1, lhs2 = rhs1, rhs2`.
type Assign struct {
	Base
	LHS []Node
	RHS []Node
}

func (n *Assign) Accept(v Visitor) { v.VisitAssign(n) }

// Arg is one parameter in a function signature.
type Arg struct {
	Name    string
	Type    Node // type-as-syntax, or nil if to be inferred from Default
	Default Node // nil if required
}

// FunctionDef is a named function, bound in the enclosing scope under Name.
type FunctionDef struct {
	Base
	Name   string
	Args   []*Arg
	Ret    Node // type-as-syntax, or nil if inferred
	Body   *Block
}

func (n *FunctionDef) Accept(v Visitor) { v.VisitFunctionDef(n) }

// Lambda is an anonymous function expression.
type Lambda struct {
	Base
	Args []*Arg
	Body *Block
}

func (n *Lambda) Accept(v Visitor) { v.VisitLambda(n) }

// StructDef declares a named struct type.
type StructDef struct {
	Base
	Name   string
	Fields []*Arg // reuses Arg's {Name,Type,Default} shape for field decls
	Units  Node   // optional TypeMeasure-style unit annotation on the whole struct
}

func (n *StructDef) Accept(v Visitor) { v.VisitStructDef(n) }

// EnumVariant is one tag of an EnumDef: a name plus optional payload fields.
type EnumVariant struct {
	Name   string
	Fields []*Arg
}

// EnumDef declares a named tagged-union type.
type EnumDef struct {
	Base
	Name     string
	Variants []*EnumVariant
}

func (n *EnumDef) Accept(v Visitor) { v.VisitEnumDef(n) }

// Extern declares a backend-linked external symbol with an explicit type.
type Extern struct {
	Base
	Name string
	Type Node // type-as-syntax
}

func (n *Extern) Accept(v Visitor) { v.VisitExtern(n) }

// Use imports another compilation unit by module search path.
type Use struct {
	Base
	Path string
}

func (n *Use) Accept(v Visitor) { v.VisitUse(n) }

// DocTest wraps a top-level statement of a REPL input. Lowering runs it
// and, for an expression, prints its value as `= value`; neither the
// source line nor the type is printed, and Expect is not checked.
type DocTest struct {
	Base
	Expr       Node
	Expect     string // expected rendering from a trailing `// =>` comment, "" if none
	SkipSource bool   // true when the doctest's own source echo should be suppressed
}

func (n *DocTest) Accept(v Visitor) { v.VisitDocTest(n) }
