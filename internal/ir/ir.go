// Package ir defines the backend-neutral intermediate representation that
// lowering (internal/lower) targets and backends (internal/backend/*)
// consume (spec.md §4.5, §6.3): typed values, basic blocks owned by
// functions, terminators, and the handful of constructor/access
// instructions every libgccjit-shaped backend must provide.
package ir

import "github.com/bruce-hill/blangc/internal/types"

// Value is anything an instruction can read: either the result of a prior
// instruction (an r-value) or the address of a storage location
// (an l-value), always carrying its Language-level Type.
type Value interface {
	ValueType() *types.Type
}

// Const is a literal r-value: int, long, double, pointer, string, null, or
// a boolean one/zero (spec.md §6.3's "r-value literals" list).
type Const struct {
	Type  *types.Type
	Int   int64
	Float float64
	Str   string
	IsNil bool
}

func (c *Const) ValueType() *types.Type { return c.Type }

// Local is a function-local storage slot; it is an l-value, so loads and
// stores both go through it explicitly rather than treating it as an
// SSA register.
type Local struct {
	Name string
	Type *types.Type
}

func (l *Local) ValueType() *types.Type { return l.Type }

// Global is a module-level storage slot (spec.md §4.7's REPL global
// promotion targets this).
type Global struct {
	Name string
	Type *types.Type
}

func (g *Global) ValueType() *types.Type { return g.Type }

// Param is one of a Function's arguments, referenced by position within
// the function body.
type Param struct {
	Name  string
	Type  *types.Type
	Index int
}

func (p *Param) ValueType() *types.Type { return p.Type }

// InstrResult is the r-value produced by executing an Instr; Instrs that
// produce no usable value (stores, appends) leave Type nil.
type InstrResult struct {
	Instr *Instr
	Type  *types.Type
}

func (r *InstrResult) ValueType() *types.Type { return r.Type }

// Op enumerates every instruction kind the IR supports. Backends switch on
// this the way lowering's emit functions construct it.
type Op int

const (
	OpLoad Op = iota
	OpStore
	OpBinary
	OpUnary
	OpCompare
	OpCall
	OpCallIndirect
	OpFieldAccess
	OpIndex
	OpDeref
	OpAddressOf
	OpStructNew
	OpUnionNew
	OpArrayNew
	OpArrayAppend
	OpTableNew
	OpTableGet
	OpTableSet
	OpCast
	OpBitcast
	OpPhi
)

// BinOp names a binary arithmetic/bitwise/logical operator.
type BinOp int

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinPow
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShr
	BinBitAnd
	BinBitOr
	BinBitXor
)

// CmpOp names a comparison operator; OpCompare instructions always
// produce a Bool value.
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

// UnOp names a unary operator.
type UnOp int

const (
	UnNeg UnOp = iota
	UnNot
	UnLen
)

// Instr is one instruction within a Block. Only the fields relevant to Op
// are populated; this mirrors the tagged-variant style used throughout the
// AST and Type packages rather than one struct type per opcode.
type Instr struct {
	Op       Op
	Result   *InstrResult // nil for void instructions (stores, sets)
	Type     *types.Type  // result type, mirrored onto Result.Type
	BinOp    BinOp
	CmpOp    CmpOp
	UnOp     UnOp
	Args     []Value
	Field    string
	FieldIdx int
	Callee   Value
	FuncName string // direct-call target, resolved at link time
}

// emit appends instr to b and returns its result value (nil if instr
// produces no value).
func (b *Block) emit(instr *Instr) Value {
	if instr.Type != nil {
		instr.Result = &InstrResult{Instr: instr, Type: instr.Type}
	}
	b.Instrs = append(b.Instrs, instr)
	if instr.Result != nil {
		return instr.Result
	}
	return nil
}

// Load reads the current value out of an l-value (Local, Global, or the
// result of FieldAccess/Index/Deref).
func (b *Block) Load(src Value) Value {
	return b.emit(&Instr{Op: OpLoad, Type: src.ValueType(), Args: []Value{src}})
}

// Store writes val into the l-value dst.
func (b *Block) Store(dst, val Value) {
	b.emit(&Instr{Op: OpStore, Args: []Value{dst, val}})
}

// Binary emits a binary arithmetic/bitwise/logical instruction.
func (b *Block) Binary(op BinOp, lhs, rhs Value, result *types.Type) Value {
	return b.emit(&Instr{Op: OpBinary, BinOp: op, Args: []Value{lhs, rhs}, Type: result})
}

// Unary emits a unary instruction.
func (b *Block) Unary(op UnOp, operand Value, result *types.Type) Value {
	return b.emit(&Instr{Op: OpUnary, UnOp: op, Args: []Value{operand}, Type: result})
}

// Compare emits a comparison, always yielding Bool.
func (b *Block) Compare(op CmpOp, lhs, rhs Value) Value {
	return b.emit(&Instr{Op: OpCompare, CmpOp: op, Args: []Value{lhs, rhs}, Type: types.Bool()})
}

// Call emits a direct call to a named function.
func (b *Block) Call(name string, args []Value, ret *types.Type) Value {
	return b.emit(&Instr{Op: OpCall, FuncName: name, Args: args, Type: ret})
}

// CallIndirect emits a call through a function-valued r-value (a closure
// or a function pointer loaded from a variable).
func (b *Block) CallIndirect(callee Value, args []Value, ret *types.Type) Value {
	return b.emit(&Instr{Op: OpCallIndirect, Callee: callee, Args: args, Type: ret})
}

// FieldAccess yields the l-value of a struct's field, given the struct's
// base address and the field's name/index.
func (b *Block) FieldAccess(base Value, field string, idx int, fieldType *types.Type) Value {
	return b.emit(&Instr{Op: OpFieldAccess, Args: []Value{base}, Field: field, FieldIdx: idx, Type: fieldType})
}

// Index yields the l-value of an array element at a (1-based, per spec.md
// §4.5.1) r-value index. Bounds checking is the caller's responsibility:
// lowering emits the compare+branch around this instruction explicitly so
// the failure block can carry the call-site span.
func (b *Block) Index(base, idx Value, itemType *types.Type) Value {
	return b.emit(&Instr{Op: OpIndex, Args: []Value{base, idx}, Type: itemType})
}

// Deref yields the l-value pointed to by a non-optional pointer value.
func (b *Block) Deref(ptr Value, pointed *types.Type) Value {
	return b.emit(&Instr{Op: OpDeref, Args: []Value{ptr}, Type: pointed})
}

// AddressOf yields a pointer r-value to an l-value (heap-allocates if the
// l-value is a freshly created local going on the heap; lowering decides).
func (b *Block) AddressOf(lvalue Value, ptrType *types.Type) Value {
	return b.emit(&Instr{Op: OpAddressOf, Args: []Value{lvalue}, Type: ptrType})
}

// StructNew constructs a struct r-value from its field values in
// declaration order.
func (b *Block) StructNew(fields []Value, structType *types.Type) Value {
	return b.emit(&Instr{Op: OpStructNew, Args: fields, Type: structType})
}

// UnionNew constructs a tagged union's payload union r-value, given the
// active field index and its value.
func (b *Block) UnionNew(activeIdx int, val Value, unionType *types.Type) Value {
	return b.emit(&Instr{Op: OpUnionNew, FieldIdx: activeIdx, Args: []Value{val}, Type: unionType})
}

// ArrayNew constructs an array r-value `{items,length,stride}` (spec.md
// §4.5.1) from its initial items.
func (b *Block) ArrayNew(items []Value, arrayType *types.Type) Value {
	return b.emit(&Instr{Op: OpArrayNew, Args: items, Type: arrayType})
}

// ArrayAppend appends val to the array l-value arr, reallocating and
// bumping length as spec.md §4.5.1 describes.
func (b *Block) ArrayAppend(arr, val Value) {
	b.emit(&Instr{Op: OpArrayAppend, Args: []Value{arr, val}})
}

// TableNew constructs an empty table r-value with the given fallback and
// default. Args is always exactly [fallback, def] so a backend can tell an
// absent fallback from an absent default; either position holds an IsNil
// Const when the literal didn't specify one (spec.md §4.5.2).
func (b *Block) TableNew(fallback, def Value, tableType *types.Type) Value {
	if fallback == nil {
		fallback = &Const{Type: tableType, IsNil: true}
	}
	if def == nil {
		def = &Const{Type: tableType.Value, IsNil: true}
	}
	return b.emit(&Instr{Op: OpTableNew, Args: []Value{fallback, def}, Type: tableType})
}

// TableGet looks up key in table, yielding an optional pointer to the
// value slot (spec.md §4.5.2).
func (b *Block) TableGet(table, key Value, valPtrType *types.Type) Value {
	return b.emit(&Instr{Op: OpTableGet, Args: []Value{table, key}, Type: valPtrType})
}

// TableSet inserts/overwrites key=>val in table.
func (b *Block) TableSet(table, key, val Value) {
	b.emit(&Instr{Op: OpTableSet, Args: []Value{table, key, val}})
}

// Cast emits a promoting/narrowing numeric (or subtype) conversion.
func (b *Block) Cast(val Value, to *types.Type) Value {
	return b.emit(&Instr{Op: OpCast, Args: []Value{val}, Type: to})
}

// Bitcast emits a same-size reinterpretation (pointer<->pointer, etc.).
func (b *Block) Bitcast(val Value, to *types.Type) Value {
	return b.emit(&Instr{Op: OpBitcast, Args: []Value{val}, Type: to})
}
