package ast

// Array is an array literal, optionally annotated with an item type (for
// the empty-array case where no item can be inferred).
type Array struct {
	Base
	Items    []Node
	ItemType Node // type-as-syntax, or nil
}

func (n *Array) Accept(v Visitor) { v.VisitArray(n) }

// Table is a table (hash map) literal, with optional fallback/default.
type Table struct {
	Base
	Entries  []*TableEntry
	Fallback Node // another table expression consulted on miss
	Default  Node // scalar value substituted on miss
}

func (n *Table) Accept(v Visitor) { v.VisitTable(n) }

// TableEntry is one `key => value` pair inside a Table literal.
type TableEntry struct {
	Base
	Key   Node
	Value Node
}

func (n *TableEntry) Accept(v Visitor) { v.VisitTableEntry(n) }

// Struct is a struct literal, optionally naming its type.
type Struct struct {
	Base
	TypeName string // "" if positional/anonymous
	Members  []*StructField
}

func (n *Struct) Accept(v Visitor) { v.VisitStruct(n) }

// StructField is `name=value` inside a Struct literal.
type StructField struct {
	Base
	Name  string // "" for positional members
	Value Node
}

func (n *StructField) Accept(v Visitor) { v.VisitStructField(n) }

// KeywordArg is `name=arg` inside a function call's argument list.
type KeywordArg struct {
	Base
	Name string
	Arg  Node
}

func (n *KeywordArg) Accept(v Visitor) { v.VisitKeywordArg(n) }
