// Package types implements RocketLang's structural type descriptors: parsing
// type expressions, rendering them back to source syntax, structural
// compatibility checks, and value-to-type inference.
package types

// Kind tags the variant of a type descriptor.
type Kind int

const (
	KindPrimitive Kind = iota
	KindGeneric
	KindFunction
	KindResult
	KindMaybe
	KindCustom
	KindAny
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindGeneric:
		return "generic"
	case KindFunction:
		return "function"
	case KindResult:
		return "result"
	case KindMaybe:
		return "maybe"
	case KindCustom:
		return "custom"
	case KindAny:
		return "any"
	default:
		return "unknown"
	}
}

// Type is the shared behaviour of all type descriptors.
type Type interface {
	TypeKind() Kind
}

// Primitive names: the canonical forms every synonym resolves to.
const (
	PrimitiveNumber  = "number"
	PrimitiveText    = "text"
	PrimitiveBool    = "bool"
	PrimitiveNothing = "nothing"
)

// Generic heads.
const (
	GenericList    = "list"
	GenericMap     = "map"
	GenericChannel = "channel"
)

type PrimitiveType struct {
	Name string
}

func (PrimitiveType) TypeKind() Kind { return KindPrimitive }

type GenericType struct {
	Name string
	Args []Type
}

func (GenericType) TypeKind() Kind { return KindGeneric }

// Param is one ordered, named function parameter.
type Param struct {
	Name string
	Type Type
}

type FunctionType struct {
	Params []Param
	Return Type
	Async  bool
}

func (FunctionType) TypeKind() Kind { return KindFunction }

type ResultType struct {
	Value Type
	Err   Type // nil when unspecified
}

func (ResultType) TypeKind() Kind { return KindResult }

type MaybeType struct {
	Inner Type
}

func (MaybeType) TypeKind() Kind { return KindMaybe }

type CustomType struct {
	Name   string
	Fields map[string]Type // nil for opaque named types
}

func (CustomType) TypeKind() Kind { return KindCustom }

type AnyType struct{}

func (AnyType) TypeKind() Kind { return KindAny }

// Constructors.

func Number() Type  { return PrimitiveType{Name: PrimitiveNumber} }
func Text() Type    { return PrimitiveType{Name: PrimitiveText} }
func Bool() Type    { return PrimitiveType{Name: PrimitiveBool} }
func Nothing() Type { return PrimitiveType{Name: PrimitiveNothing} }
func Any() Type     { return AnyType{} }

func List(elem Type) Type {
	return GenericType{Name: GenericList, Args: []Type{elem}}
}

func Map(key, value Type) Type {
	return GenericType{Name: GenericMap, Args: []Type{key, value}}
}

func Channel(elem Type) Type {
	return GenericType{Name: GenericChannel, Args: []Type{elem}}
}

func Result(value, errType Type) Type {
	return ResultType{Value: value, Err: errType}
}

func Maybe(inner Type) Type {
	return MaybeType{Inner: inner}
}

func Custom(name string) Type {
	return CustomType{Name: name}
}
