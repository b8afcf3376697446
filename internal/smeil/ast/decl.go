package ast

// DeclKind distinguishes the Declaration variants of spec §3.
type DeclKind int

const (
	DeclVariable DeclKind = iota
	DeclConstant
	DeclBus
	DeclEnum
	DeclFunction
	DeclInstance
	DeclGenerator
	DeclTypeDef
)

// Declaration is the common interface for the Declaration node category.
type Declaration interface {
	Node
	DeclKind() DeclKind
	DeclName() string
}

// ParamDirection is the declared direction of a formal parameter: in, out,
// or const (spec §3 MappedParameter / §4.4 unification).
type ParamDirection int

const (
	DirIn ParamDirection = iota
	DirOut
	DirConst
)

func (d ParamDirection) String() string {
	switch d {
	case DirIn:
		return "in"
	case DirOut:
		return "out"
	case DirConst:
		return "const"
	default:
		return "?"
	}
}

// Param is one formal parameter of a process or network.
type Param struct {
	Position
	Name string
	Dir  ParamDirection
	Type Type
}

// VariableDecl is `var name : Type (= init)?;`.
type VariableDecl struct {
	Position
	Name string
	Type Type
	Init Expression // nil if none
}

func (d *VariableDecl) DeclKind() DeclKind { return DeclVariable }
func (d *VariableDecl) DeclName() string   { return d.Name }

// ConstantDecl is `const name : Type = init;` (or inferred-type form).
type ConstantDecl struct {
	Position
	Name string
	Type Type // nil if type is inferred from Init
	Init Expression
}

func (d *ConstantDecl) DeclKind() DeclKind { return DeclConstant }
func (d *ConstantDecl) DeclName() string   { return d.Name }

// BusDecl is `bus name : BusShape;` (a locally declared bus, as opposed to
// a bus-typed formal parameter).
type BusDecl struct {
	Position
	Name  string
	Shape *BusType
}

func (d *BusDecl) DeclKind() DeclKind { return DeclBus }
func (d *BusDecl) DeclName() string   { return d.Name }

// EnumMember is one member of an EnumDecl; Value is nil if unspecified, in
// which case the elaborator assigns one greater than the previous member's
// resolved value (spec §9 Open Question, resolved in SPEC_FULL.md).
type EnumMember struct {
	Name  string
	Value Expression
}

// EnumDecl is `enum name { m1 (= v1)?, m2, ... };`.
type EnumDecl struct {
	Position
	Name    string
	Members []EnumMember
}

func (d *EnumDecl) DeclKind() DeclKind { return DeclEnum }
func (d *EnumDecl) DeclName() string   { return d.Name }

// FunctionDecl is a module-level `function` declaration (non-entity,
// pure/compile-time callable).
type FunctionDecl struct {
	Position
	Name   string
	Params []Param
	Ret    Type
	Body   []Statement
}

func (d *FunctionDecl) DeclKind() DeclKind { return DeclFunction }
func (d *FunctionDecl) DeclName() string   { return d.Name }

// InstanceDecl is `instance Name of F(args...);`. Name is "_" for an
// anonymous instance (spec §4.3 step 4).
type InstanceDecl struct {
	Position
	Name   string
	Entity []string // hierarchical reference to the process/network being instantiated
	Args   []Expression
}

func (d *InstanceDecl) DeclKind() DeclKind { return DeclInstance }
func (d *InstanceDecl) DeclName() string   { return d.Name }
func (d *InstanceDecl) Anonymous() bool    { return d.Name == "_" }

// GeneratorDecl is `generate i = from to to { decls... };`.
type GeneratorDecl struct {
	Position
	Var   string
	From  Expression
	To    Expression
	Decls []Declaration
}

func (d *GeneratorDecl) DeclKind() DeclKind { return DeclGenerator }
func (d *GeneratorDecl) DeclName() string   { return "" }

// ConnectDecl is `src -> dst;` inside a network. It is not itself tagged
// with a DeclKind in spec §3 (only the categories listed there are
// Declaration variants); it is modeled as its own node, held directly by
// Network.
type ConnectDecl struct {
	Position
	Src Expression
	Dst Expression
}

// TypeDefDecl is `type name : Type;`.
type TypeDefDecl struct {
	Position
	Name string
	Type Type
}

func (d *TypeDefDecl) DeclKind() DeclKind { return DeclTypeDef }
func (d *TypeDefDecl) DeclName() string   { return d.Name }
