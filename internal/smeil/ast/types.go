package ast

import "fmt"

// TypeKind distinguishes the Type variants of spec §3.
type TypeKind int

const (
	TypeIntrinsic TypeKind = iota
	TypeNamed
	TypeArray
	TypeBus
)

// IntrinsicKind enumerates the primitive type families of spec §6.1.
type IntrinsicKind int

const (
	IntBool IntrinsicKind = iota
	IntSigned               // iN
	IntUnsigned             // uN
	IntPlatformSigned       // int
	IntPlatformUnsigned     // uint
	IntFloat32              // f32
	IntFloat64              // f64
)

func (k IntrinsicKind) String() string {
	switch k {
	case IntBool:
		return "bool"
	case IntSigned:
		return "iN"
	case IntUnsigned:
		return "uN"
	case IntPlatformSigned:
		return "int"
	case IntPlatformUnsigned:
		return "uint"
	case IntFloat32:
		return "f32"
	case IntFloat64:
		return "f64"
	default:
		return "?intrinsic"
	}
}

// IsFloat reports whether the kind is one of the floating-point kinds.
func (k IntrinsicKind) IsFloat() bool { return k == IntFloat32 || k == IntFloat64 }

// IsSigned reports whether the kind is a signed numeric kind.
func (k IntrinsicKind) IsSigned() bool {
	return k == IntSigned || k == IntPlatformSigned || k == IntFloat32 || k == IntFloat64
}

// IsInt reports whether the kind is an integral kind (not bool, not float).
func (k IntrinsicKind) IsInt() bool {
	return k == IntSigned || k == IntUnsigned || k == IntPlatformSigned || k == IntPlatformUnsigned
}

// Type is the common interface for the Type node category.
type Type interface {
	Node
	TypeKind() TypeKind
	String() string
}

// IntrinsicType is e.g. i32, u8, bool, int, f64. Width is meaningful only
// for IntSigned/IntUnsigned; int and uint keep Width 0.
type IntrinsicType struct {
	Position
	Kind  IntrinsicKind
	Width int // bit width, for iN/uN; 0 if not yet resolved/not applicable
}

func (t *IntrinsicType) TypeKind() TypeKind { return TypeIntrinsic }
func (t *IntrinsicType) String() string {
	switch t.Kind {
	case IntBool, IntPlatformSigned, IntPlatformUnsigned, IntFloat32, IntFloat64:
		return t.Kind.String()
	case IntSigned:
		return fmt.Sprintf("i%d", t.Width)
	case IntUnsigned:
		return fmt.Sprintf("u%d", t.Width)
	default:
		return "?"
	}
}

// NamedType is a reference to a type declared elsewhere (TypeDef or enum).
type NamedType struct {
	Position
	Name []string // hierarchical identifier sequence, e.g. ["pkg", "Foo"]
}

func (t *NamedType) TypeKind() TypeKind { return TypeNamed }
func (t *NamedType) String() string {
	out := ""
	for i, p := range t.Name {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}

// ArrayType is `[size] Elem`. Size is a constant expression evaluated by
// the elaborator; it is stored unevaluated here.
type ArrayType struct {
	Position
	Size Expression
	Elem Type
}

func (t *ArrayType) TypeKind() TypeKind { return TypeArray }
func (t *ArrayType) String() string     { return fmt.Sprintf("[]%s", t.Elem.String()) }

// BusSignal is one `name: Type` entry of a bus shape, with optional
// initializer and optional range (for array-shaped signals).
type BusSignal struct {
	Name        string
	Type        Type
	Initializer Expression // nil if none
	Range       Expression // nil if none
}

// BusType is `{ f1:T1; f2:T2; }`.
type BusType struct {
	Position
	Signals []BusSignal
}

func (t *BusType) TypeKind() TypeKind { return TypeBus }
func (t *BusType) String() string {
	out := "{"
	for i, s := range t.Signals {
		if i > 0 {
			out += "; "
		}
		out += s.Name + ":" + s.Type.String()
	}
	return out + "}"
}
