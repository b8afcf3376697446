package ir

import "github.com/dekarrin/smeilc/internal/smeil/ast"

// Direction classifies how a ProcessInstance uses a signal it can see,
// computed by the validator's Pass C (spec §4.4).
type Direction int

const (
	DirUnused Direction = iota
	DirRead
	DirWrite
	DirReadWrite
)

func (d Direction) String() string {
	switch d {
	case DirRead:
		return "read"
	case DirWrite:
		return "write"
	case DirReadWrite:
		return "read-write"
	default:
		return "unused"
	}
}

// MappedParameter pairs one formal parameter of an instantiated entity with
// the local name and argument it was given at instantiation, plus which
// direction the match was verified against (spec §3 "MappedParameter").
type MappedParameter struct {
	Formal    ast.Param
	LocalName string
	// Bus is set when the argument resolved to a bus symbol (a "bus
	// mapping"); Expr is set when the argument is a compile-time
	// expression (a "constant mapping", spec §4.3 step 4). Exactly one of
	// the two is non-nil.
	Bus  *BusInstance
	Expr ast.Expression
	// ConstValue is the evaluated form of Expr, filled in once evaluation
	// succeeds; nil until then.
	ConstValue *Value
	Dir        ast.ParamDirection
}

// SignalInstance is one signal of a BusInstance, resolved to a concrete
// intrinsic type (spec §3 invariant: "every SignalInstance.ResolvedType is
// an intrinsic, fully sized type").
type SignalInstance struct {
	ast.Position
	Name string
	// DeclaredType is the type as written in source, before Pass B
	// resolution (may be a NamedType referring to a TypeDef). ResolvedType
	// is nil until Pass B walks DeclaredType down to its intrinsic form.
	DeclaredType ast.Type
	ResolvedType *ast.IntrinsicType
	Initializer  *Value
	Direction    Direction
}

func (s *SignalInstance) SymbolKind() SymbolKind { return SymSignal }
func (s *SignalInstance) SymbolName() string     { return s.Name }

// BusInstance is a declared or parameter-bound bus, holding its resolved
// per-signal shape. Owner is the ProcessInstance or NetworkInstance this
// bus is reachable through (spec §3 invariant), except for the top-level
// network's I/O buses, whose Owner is that same top NetworkInstance.
type BusInstance struct {
	ast.Position
	Name    string
	Signals map[string]*SignalInstance
	Order   []string // signal names in declaration order, for deterministic emission
	Owner   Instance
}

func (b *BusInstance) SymbolKind() SymbolKind { return SymBus }
func (b *BusInstance) SymbolName() string     { return b.Name }

// Signal looks up one signal of the bus by name.
func (b *BusInstance) Signal(name string) (*SignalInstance, bool) {
	s, ok := b.Signals[name]
	return s, ok
}

// VariableInstance is a resolved `var` declaration, local to a process or
// (compile-time only, spec §4.3) a function body.
type VariableInstance struct {
	ast.Position
	Name         string
	DeclaredType ast.Type
	ResolvedType *ast.IntrinsicType
	Initializer  *Value
}

func (v *VariableInstance) SymbolKind() SymbolKind { return SymVariable }
func (v *VariableInstance) SymbolName() string     { return v.Name }

// ConstantInstance is a resolved `const` declaration, its value already
// evaluated by the elaborator's compile-time expression evaluator.
type ConstantInstance struct {
	ast.Position
	Name         string
	DeclaredType ast.Type
	ResolvedType *ast.IntrinsicType
	Value        Value
}

func (c *ConstantInstance) SymbolKind() SymbolKind { return SymConstant }
func (c *ConstantInstance) SymbolName() string     { return c.Name }

// ConnectEntry records one `src -> dst;` network connection, resolved to
// the exact source and destination signals it names (spec §3 invariant:
// "a ConnectEntry maps one source signal to exactly one destination signal
// with assignable types").
type ConnectEntry struct {
	ast.Position
	Src     *SignalInstance
	Dst     *SignalInstance
	SrcBus  *BusInstance
	DstBus  *BusInstance
}

// TypeDefSymbol adapts a module-level `type name : Type;` AST declaration
// to the Symbol interface so it can be bound in a Scope alongside Instance
// values (spec §3 "Scope: mapping from local identifier to symbol (an
// Instance or a TypeDef)").
type TypeDefSymbol struct{ Def *ast.TypeDefDecl }

func (t *TypeDefSymbol) SymbolKind() SymbolKind { return SymTypeDef }
func (t *TypeDefSymbol) SymbolName() string     { return t.Def.Name }

// EnumSymbol adapts an `enum name { ... };` AST declaration to the Symbol
// interface for the same reason as TypeDefSymbol.
type EnumSymbol struct{ Def *ast.EnumDecl }

func (e *EnumSymbol) SymbolKind() SymbolKind { return SymEnum }
func (e *EnumSymbol) SymbolName() string     { return e.Def.Name }

// Instance is the common interface over the elaborated tree's node kinds
// that can themselves be looked up as Symbols (everything but ConnectEntry
// and the scalar Signal/Variable/Constant leaves, which are Symbols but not
// containers).
type Instance interface {
	Symbol
	InstanceScope() *Scope
}

// ProcessInstance is one elaborated instantiation of a Process entity
// (spec §3). Its Stmts are a shared reference to Def.Stmts: "statements are
// kept as shared references to the defining Process; per-instance behavior
// is driven entirely by the instance's scope and mapped parameters"
// (spec §4.3 "Process body specialization").
type ProcessInstance struct {
	ast.Position
	Name    string
	Clocked bool
	Def     *ast.Process
	Params  []MappedParameter

	Buses     map[string]*BusInstance
	Variables map[string]*VariableInstance
	Constants map[string]*ConstantInstance

	scope *Scope

	// Directions is the per-process signal -> direction map computed by
	// the validator's Pass C, keyed by the bus-qualified signal name
	// ("busName.signalName").
	Directions map[string]Direction
}

func (p *ProcessInstance) SymbolKind() SymbolKind { return SymProcess }
func (p *ProcessInstance) SymbolName() string     { return p.Name }
func (p *ProcessInstance) InstanceScope() *Scope  { return p.scope }

// Stmts returns the shared statement list of the defining Process.
func (p *ProcessInstance) Stmts() []ast.Statement { return p.Def.Stmts }

// NewProcessInstance constructs a ProcessInstance with its scope chained to
// parent, per spec §4.3 step 1's "push a fresh scope" pattern (generalized
// here to processes as well as networks).
func NewProcessInstance(name string, clocked bool, def *ast.Process, parent *Scope) *ProcessInstance {
	return &ProcessInstance{
		Name:       name,
		Clocked:    clocked,
		Def:        def,
		Buses:      make(map[string]*BusInstance),
		Variables:  make(map[string]*VariableInstance),
		Constants:  make(map[string]*ConstantInstance),
		scope:      NewScope(parent),
		Directions: make(map[string]Direction),
	}
}

// NetworkInstance is one elaborated instantiation of a Network entity.
// Per spec §3, it holds child ProcessInstances, nested NetworkInstances,
// ConnectEntries, and its own constants.
type NetworkInstance struct {
	ast.Position
	Name   string
	Def    *ast.Network
	Params []MappedParameter

	Processes []*ProcessInstance
	Networks  []*NetworkInstance
	Buses     map[string]*BusInstance // buses declared or mapped directly at this network's level
	Constants map[string]*ConstantInstance
	Connects  []*ConnectEntry

	// Schedule is the topologically-sorted process execution order computed
	// by the validator's Pass C (spec §4.4); nil until validation runs.
	Schedule []*ProcessInstance

	scope *Scope
}

func (n *NetworkInstance) SymbolKind() SymbolKind { return SymNetwork }
func (n *NetworkInstance) SymbolName() string     { return n.Name }
func (n *NetworkInstance) InstanceScope() *Scope  { return n.scope }

// NewNetworkInstance constructs a NetworkInstance with its scope chained to
// parent (spec §4.3 step 1).
func NewNetworkInstance(name string, def *ast.Network, parent *Scope) *NetworkInstance {
	return &NetworkInstance{
		Name:      name,
		Def:       def,
		Buses:     make(map[string]*BusInstance),
		Constants: make(map[string]*ConstantInstance),
		scope:     NewScope(parent),
	}
}

// ModuleInstance holds one module's resolved declarations container: its
// module-level constants, type definitions, and enums, plus the module
// scope every top-level entity elaborates against (spec §3
// "ModuleInstance — holds its declarations container").
type ModuleInstance struct {
	ast.Position
	Name      string // derived from the module's file path
	Def       *ast.Module
	Constants map[string]*ConstantInstance
	TypeDefs  map[string]*ast.TypeDefDecl
	Enums     map[string]*ast.EnumDecl
	Functions map[string]*ast.FunctionDecl

	scope *Scope
}

func (m *ModuleInstance) SymbolKind() SymbolKind { return SymModule }
func (m *ModuleInstance) SymbolName() string     { return m.Name }
func (m *ModuleInstance) InstanceScope() *Scope  { return m.scope }

// NewModuleInstance constructs a ModuleInstance with a fresh root scope
// (spec §4.3 step 1: "push a fresh scope whose parent is the module
// scope" — the module scope itself has no parent).
func NewModuleInstance(name string, def *ast.Module) *ModuleInstance {
	return &ModuleInstance{
		Name:      name,
		Def:       def,
		Constants: make(map[string]*ConstantInstance),
		TypeDefs:  make(map[string]*ast.TypeDefDecl),
		Enums:     make(map[string]*ast.EnumDecl),
		Functions: make(map[string]*ast.FunctionDecl),
		scope:     NewScope(nil),
	}
}
