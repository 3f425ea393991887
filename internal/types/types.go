// Package types implements the Language's structural, hash-consed type
// system (spec.md §3.3): two types are equal iff they hash-cons to the same
// handle, so equality is always a pointer comparison once interned.
package types

import (
	"fmt"
	"strings"

	"github.com/bruce-hill/blangc/internal/units"
)

// Type is the hash-consed handle for every type in the system. Only the
// table in this package constructs Types, so identical structural shapes
// always produce the identical *Type pointer.
type Type struct {
	kind Kind
	key  string // canonical structural key used for hash-consing

	// Primitive payload
	Bits     int // Int{bits}, Num{bits}
	Units    units.Unit
	Unsigned bool

	// Composite payload
	Pointed   *Type // Pointer
	Optional  bool  // Pointer
	IsStack   bool  // Pointer
	Item      *Type // Array, Generator, Type(of)
	Key       *Type // Table
	Value     *Type // Table
	EntrySize int   // Table: entry byte size once lowered
	ValOffset int    // Table: value_offset once lowered

	Name       string   // Struct/TaggedUnion/Tag/Variant name ("" if anonymous)
	FieldNames []string // Struct/Union
	FieldTypes []*Type  // Struct/Union

	TagNames  []string // Tag
	TagValues []int    // Tag

	TagType  *Type // TaggedUnion
	Data     *Type // TaggedUnion: the Union of per-arm payloads

	ArgNames    []string // Function
	ArgTypes    []*Type  // Function
	ArgDefaults []bool   // Function: whether each arg has a default
	Ret         *Type    // Function

	VariantOf *Type // Variant
}

// Kind tags which variant a Type is.
type Kind int

const (
	KindBool Kind = iota
	KindVoid
	KindAbort
	KindChar
	KindInt
	KindNum
	KindRange
	KindPointer
	KindArray
	KindTable
	KindStruct
	KindUnion
	KindTag
	KindTaggedUnion
	KindFunction
	KindGenerator
	KindTypeOf
	KindVariant
	KindModule
)

var table = map[string]*Type{}

func intern(t *Type) *Type {
	if existing, ok := table[t.key]; ok {
		return existing
	}
	table[t.key] = t
	return t
}

// Priority returns the numeric-promotion priority used by promote() and
// the arithmetic rules of spec.md §4.4.2: Int8<Int16<Int32<Int64<Num32<Num64.
func (t *Type) Priority() int {
	switch t.kind {
	case KindInt:
		switch t.Bits {
		case 8:
			return 0
		case 16:
			return 1
		case 32:
			return 2
		case 64:
			return 3
		}
	case KindNum:
		if t.Bits == 32 {
			return 4
		}
		return 5
	}
	return -1
}

func (t *Type) Kind() Kind { return t.kind }
func (t *Type) IsNumeric() bool {
	return t.kind == KindInt || t.kind == KindNum
}

// Equal is identity equality, valid because every Type is hash-consed.
func (t *Type) Equal(other *Type) bool { return t == other }

var (
	boolType  = intern(&Type{kind: KindBool, key: "Bool"})
	voidType  = intern(&Type{kind: KindVoid, key: "Void"})
	abortType = intern(&Type{kind: KindAbort, key: "Abort"})
	charType  = intern(&Type{kind: KindChar, key: "Char"})
	rangeType = intern(&Type{kind: KindRange, key: "Range"})
	moduleTy  = intern(&Type{kind: KindModule, key: "Module"})
)

func Bool() *Type   { return boolType }
func Void() *Type   { return voidType }
func Abort() *Type  { return abortType }
func Char() *Type   { return charType }
func RangeT() *Type { return rangeType }
func Module() *Type { return moduleTy }

// Int returns the hash-consed Int{bits,units,unsigned} type.
func Int(bits int, u units.Unit, unsigned bool) *Type {
	key := fmt.Sprintf("Int(%d,%s,%v)", bits, u, unsigned)
	return intern(&Type{kind: KindInt, key: key, Bits: bits, Units: u, Unsigned: unsigned})
}

// Num returns the hash-consed Num{bits,units} type.
func Num(bits int, u units.Unit) *Type {
	key := fmt.Sprintf("Num(%d,%s)", bits, u)
	return intern(&Type{kind: KindNum, key: key, Bits: bits, Units: u})
}

// Pointer returns the hash-consed Pointer{pointed,optional,is_stack} type.
// Pointer{optional:true} is the only representation of a possibly-absent
// value (spec.md §3.3, §9): there is no separate "Option" type.
func Pointer(pointed *Type, optional, isStack bool) *Type {
	key := fmt.Sprintf("Pointer(%s,%v,%v)", pointed.key, optional, isStack)
	return intern(&Type{kind: KindPointer, key: key, Pointed: pointed, Optional: optional, IsStack: isStack})
}

// Array returns the hash-consed Array{item} type.
func Array(item *Type) *Type {
	key := fmt.Sprintf("Array(%s)", item.key)
	return intern(&Type{kind: KindArray, key: key, Item: item})
}

// Table returns the hash-consed Table{key,value} type.
func Table(key, value *Type) *Type {
	k := fmt.Sprintf("Table(%s,%s)", key.key, value.key)
	return intern(&Type{kind: KindTable, key: k, Key: key, Value: value})
}

// Struct returns the hash-consed Struct{name,fields,units} type.
func Struct(name string, fieldNames []string, fieldTypes []*Type, u units.Unit) *Type {
	var b strings.Builder
	fmt.Fprintf(&b, "Struct(%s;", name)
	for i, fn := range fieldNames {
		fmt.Fprintf(&b, "%s:%s,", fn, fieldTypes[i].key)
	}
	fmt.Fprintf(&b, ";%s)", u)
	return intern(&Type{kind: KindStruct, key: b.String(), Name: name, FieldNames: fieldNames, FieldTypes: fieldTypes, Units: u})
}

// Union returns the hash-consed Union{field_names,field_types} type used as
// the payload of a TaggedUnion.
func Union(fieldNames []string, fieldTypes []*Type) *Type {
	var b strings.Builder
	b.WriteString("Union(")
	for i, fn := range fieldNames {
		fmt.Fprintf(&b, "%s:%s,", fn, fieldTypes[i].key)
	}
	b.WriteString(")")
	return intern(&Type{kind: KindUnion, key: b.String(), FieldNames: fieldNames, FieldTypes: fieldTypes})
}

// Tag returns the hash-consed Tag{name,names,values} type: the set of named
// integer constants a TaggedUnion's discriminant ranges over.
func Tag(name string, names []string, values []int) *Type {
	key := fmt.Sprintf("Tag(%s;%v;%v)", name, names, values)
	return intern(&Type{kind: KindTag, key: key, Name: name, TagNames: names, TagValues: values})
}

// TaggedUnion returns the hash-consed TaggedUnion{name,tagType,data} type.
func TaggedUnion(name string, tagType, data *Type) *Type {
	key := fmt.Sprintf("TaggedUnion(%s;%s;%s)", name, tagType.key, data.key)
	return intern(&Type{kind: KindTaggedUnion, key: key, Name: name, TagType: tagType, Data: data})
}

// Function returns the hash-consed Function{args,ret} type.
func Function(argNames []string, argTypes []*Type, argDefaults []bool, ret *Type) *Type {
	var b strings.Builder
	b.WriteString("Function(")
	for i, t := range argTypes {
		fmt.Fprintf(&b, "%s:%s=%v,", argNames[i], t.key, argDefaults[i])
	}
	fmt.Fprintf(&b, ")->%s", ret.key)
	return intern(&Type{kind: KindFunction, key: b.String(), ArgNames: argNames, ArgTypes: argTypes, ArgDefaults: argDefaults, Ret: ret})
}

// Generator returns the hash-consed Generator<T> type, flattening nested
// generators so Generator<Generator<T>> never occurs (spec.md §3.3, §8.3).
func Generator(generated *Type) *Type {
	if generated.kind == KindGenerator {
		generated = generated.Item
	}
	key := fmt.Sprintf("Generator(%s)", generated.key)
	return intern(&Type{kind: KindGenerator, key: key, Item: generated})
}

// Generated returns the payload type of a Generator, or the type itself if
// it is not a Generator.
func Generated(t *Type) *Type {
	if t.kind == KindGenerator {
		return t.Item
	}
	return t
}

// TypeOf returns the hash-consed Type<of> type (the type of a type value).
func TypeOf(of *Type) *Type {
	var key string
	if of == nil {
		key = "Type(?)"
	} else {
		key = fmt.Sprintf("Type(%s)", of.key)
	}
	return intern(&Type{kind: KindTypeOf, key: key, Item: of})
}

// Variant returns the hash-consed Variant{name,variant_of} type used to tag
// one arm's payload struct within a TaggedUnion's Union.
func Variant(name string, variantOf *Type) *Type {
	key := fmt.Sprintf("Variant(%s,%s)", name, variantOf.key)
	return intern(&Type{kind: KindVariant, key: key, Name: name, VariantOf: variantOf})
}

// String renders a type in the Language's own surface syntax.
func (t *Type) String() string {
	switch t.kind {
	case KindBool:
		return "Bool"
	case KindVoid:
		return "Void"
	case KindAbort:
		return "Abort"
	case KindChar:
		return "Char"
	case KindRange:
		return "Range"
	case KindModule:
		return "Module"
	case KindInt:
		s := fmt.Sprintf("Int%d", t.Bits)
		if t.Unsigned {
			s = "U" + s
		}
		if t.Units != units.None {
			s += "<" + string(t.Units) + ">"
		}
		return s
	case KindNum:
		s := fmt.Sprintf("Num%d", t.Bits)
		if t.Units != units.None {
			s += "<" + string(t.Units) + ">"
		}
		return s
	case KindPointer:
		prefix := "@"
		if t.Optional {
			prefix = "?"
		}
		return prefix + t.Pointed.String()
	case KindArray:
		return "[" + t.Item.String() + "]"
	case KindTable:
		return "{" + t.Key.String() + "=>" + t.Value.String() + "}"
	case KindStruct:
		if t.Name != "" {
			return t.Name
		}
		var parts []string
		for i, fn := range t.FieldNames {
			parts = append(parts, fn+":"+t.FieldTypes[i].String())
		}
		return "{" + strings.Join(parts, ",") + "}"
	case KindUnion:
		var parts []string
		for i, fn := range t.FieldNames {
			parts = append(parts, fn+":"+t.FieldTypes[i].String())
		}
		return "Union(" + strings.Join(parts, "|") + ")"
	case KindTag:
		return t.Name
	case KindTaggedUnion:
		return t.Name
	case KindFunction:
		var parts []string
		for i, at := range t.ArgTypes {
			parts = append(parts, t.ArgNames[i]+":"+at.String())
		}
		return "(" + strings.Join(parts, ",") + ")->" + t.Ret.String()
	case KindGenerator:
		return "Generator<" + t.Item.String() + ">"
	case KindTypeOf:
		if t.Item == nil {
			return "Type"
		}
		return "Type<" + t.Item.String() + ">"
	case KindVariant:
		return t.Name
	}
	return "?"
}
