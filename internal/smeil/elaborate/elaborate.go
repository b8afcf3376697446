package elaborate

import (
	"fmt"
	"strings"

	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/ir"
)

// EntityResolver resolves a dotted entity reference (spec §4.3 step 4,
// `instance Name of F(args...)`) to the process or network it names.
// Exactly one of the two return values is non-nil when ok is true. The
// module loader is the production implementation, combining a module's own
// entities with whatever its imports bring into scope (spec §4.2).
type EntityResolver interface {
	ResolveEntity(path []string) (proc *ast.Process, net *ast.Network, ok bool)
}

// Builder runs the tree-construction algorithm of spec §4.3 over one
// compilation's worth of modules, producing the top network's instance
// tree. It holds no state across calls other than the anonymous-instance
// counters, so a fresh Builder per compilation is the expected usage
// (mirroring the teacher's tqw loaders, which are likewise single-use per
// load).
type Builder struct {
	resolver EntityResolver
	anonSeq  int
}

// NewBuilder constructs a Builder that resolves instantiated entities via
// resolver.
func NewBuilder(resolver EntityResolver) *Builder {
	return &Builder{resolver: resolver}
}

// ElaborateModule builds a ModuleInstance for mod: module-level type
// definitions, enums, and functions are registered as-is (they carry no
// further compile-time state), and module-level constants are evaluated in
// source order and bound into the module scope (spec §5: "within a module,
// declaration order defines scope visibility left-to-right, top-to-bottom").
func (b *Builder) ElaborateModule(mod *ast.Module) (*ir.ModuleInstance, error) {
	name := moduleName(mod.FilePath)
	inst := ir.NewModuleInstance(name, mod)
	scope := inst.InstanceScope()

	for _, d := range mod.Decls {
		switch decl := d.(type) {
		case *ast.TypeDefDecl:
			inst.TypeDefs[decl.Name] = decl
			if err := scope.Define(decl.Name, &ir.TypeDefSymbol{Def: decl}); err != nil {
				return nil, fmt.Errorf("%s: %w", decl.Pos(), err)
			}
		case *ast.EnumDecl:
			inst.Enums[decl.Name] = decl
			if err := scope.Define(decl.Name, &ir.EnumSymbol{Def: decl}); err != nil {
				return nil, fmt.Errorf("%s: %w", decl.Pos(), err)
			}
		case *ast.FunctionDecl:
			inst.Functions[decl.Name] = decl
		case *ast.ConstantDecl:
			if err := b.defineConstant(decl, scope, inst.Constants); err != nil {
				return nil, err
			}
		}
	}
	return inst, nil
}

func moduleName(filePath string) string {
	base := filePath
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base
}

// ElaborateTop runs the tree construction algorithm of spec §4.3 for the
// nominated top-level network, binding cliArgs (already parsed to literal
// Values per spec §4.2's bool>int>float>string precedence) to its
// non-bus-typed formal parameters positionally.
//
// The top network is never instantiated by an `instance ... of` declaration
// (there is no caller scope to supply bus arguments from), so a bus-typed
// top-level formal parameter cannot receive a "bus mapping" the way step 4
// describes for ordinary instantiation. Resolving the spec's Open Question
// on this point (SPEC_FULL.md): such a parameter is instead synthesized as
// a BusInstance owned directly by the top NetworkInstance, realizing spec
// §3's invariant that "top-level input/output buses ... are owned by the
// top-level NetworkInstance". Only the remaining, non-bus formal parameters
// consume cliArgs positionally.
func (b *Builder) ElaborateTop(modInst *ir.ModuleInstance, top *ast.Network, cliArgs []ir.Value) (*ir.NetworkInstance, error) {
	net := ir.NewNetworkInstance(top.Name, top, modInst.InstanceScope())
	scope := net.InstanceScope()

	params := make([]ir.MappedParameter, len(top.Params))
	argIdx := 0
	for i, f := range top.Params {
		mp := ir.MappedParameter{Formal: f, LocalName: f.Name, Dir: f.Dir}

		if bt, ok := f.Type.(*ast.BusType); ok {
			bus := newBusInstance(f.Position, f.Name, bt, net)
			net.Buses[f.Name] = bus
			mp.Bus = bus
			if err := scope.Define(f.Name, bus); err != nil {
				return nil, fmt.Errorf("%s: %w", f.Pos(), err)
			}
		} else {
			if argIdx >= len(cliArgs) {
				return nil, fmt.Errorf("%s: top network %q takes %d literal argument(s), %d given",
					top.Pos(), top.Name, countNonBusParams(top.Params), len(cliArgs))
			}
			v := cliArgs[argIdx]
			argIdx++
			mp.ConstValue = &v
			rt, _ := f.Type.(*ast.IntrinsicType)
			if err := scope.Define(f.Name, &ir.ConstantInstance{Position: f.Position, Name: f.Name, DeclaredType: f.Type, ResolvedType: rt, Value: v}); err != nil {
				return nil, fmt.Errorf("%s: %w", f.Pos(), err)
			}
		}
		params[i] = mp
	}
	if argIdx != len(cliArgs) {
		return nil, fmt.Errorf("%s: top network %q takes %d literal argument(s), %d given",
			top.Pos(), top.Name, countNonBusParams(top.Params), len(cliArgs))
	}
	net.Params = params

	if err := b.elaborateNetworkDecls(net, scope, top.Decls); err != nil {
		return nil, err
	}
	if err := b.elaborateConnects(net, top.Connect); err != nil {
		return nil, err
	}
	return net, nil
}

func countNonBusParams(params []ast.Param) int {
	n := 0
	for _, p := range params {
		if _, ok := p.Type.(*ast.BusType); !ok {
			n++
		}
	}
	return n
}

// elaborateNetworkDecls runs steps 2-4 of spec §4.3's algorithm over decls,
// binding new instances into net's containers but resolving names against
// scope — which differs from net.InstanceScope() inside a generate body
// (step 3), where each iteration gets its own derived scope.
func (b *Builder) elaborateNetworkDecls(net *ir.NetworkInstance, scope *ir.Scope, decls []ast.Declaration) error {
	// Step 2: evaluate every const declaration, in source order, before
	// anything else sees the network's scope.
	for _, d := range decls {
		if cd, ok := d.(*ast.ConstantDecl); ok {
			if err := b.defineConstant(cd, scope, net.Constants); err != nil {
				return err
			}
		}
	}

	// A network-local bus decl (as opposed to a bus-typed formal parameter)
	// wires two or more sibling instances to the same physical bus without
	// a connect statement; resolve these before instantiation so instance
	// arguments can name them (mirrors elaborateProcessLocals' BusDecl
	// handling, generalized to network scope).
	for _, d := range decls {
		if bd, ok := d.(*ast.BusDecl); ok {
			bus := newBusInstance(bd.Position, bd.Name, bd.Shape, net)
			net.Buses[bd.Name] = bus
			if err := scope.Define(bd.Name, bus); err != nil {
				return fmt.Errorf("%s: %w", bd.Pos(), err)
			}
		}
	}

	// Step 3: expand every generate block.
	for _, d := range decls {
		if gd, ok := d.(*ast.GeneratorDecl); ok {
			if err := b.expandGenerator(net, scope, gd); err != nil {
				return err
			}
		}
	}

	// Step 4: instantiate, in source order (for deterministic anonymous
	// naming and error reporting, spec §5).
	for _, d := range decls {
		if id, ok := d.(*ast.InstanceDecl); ok {
			if err := b.elaborateInstance(net, scope, id); err != nil {
				return err
			}
		}
	}

	return nil
}

func (b *Builder) defineConstant(cd *ast.ConstantDecl, scope *ir.Scope, out map[string]*ir.ConstantInstance) error {
	val, err := EvalConst(cd.Init, scope)
	if err != nil {
		return fmt.Errorf("%s: %w", cd.Pos(), err)
	}
	rt, _ := cd.Type.(*ast.IntrinsicType)
	ci := &ir.ConstantInstance{Position: cd.Position, Name: cd.Name, DeclaredType: cd.Type, ResolvedType: rt, Value: val}
	out[cd.Name] = ci
	if err := scope.Define(cd.Name, ci); err != nil {
		return fmt.Errorf("%s: %w", cd.Pos(), err)
	}
	return nil
}

// expandGenerator implements step 3: compute the bounds as constants, then
// instantiate the enclosed declarations once per value of the loop
// variable, bound in a scope derived from scope (spec §4.3).
func (b *Builder) expandGenerator(net *ir.NetworkInstance, scope *ir.Scope, gd *ast.GeneratorDecl) error {
	fromV, err := EvalConst(gd.From, scope)
	if err != nil {
		return fmt.Errorf("%s: generate bound: %w", gd.Pos(), err)
	}
	toV, err := EvalConst(gd.To, scope)
	if err != nil {
		return fmt.Errorf("%s: generate bound: %w", gd.Pos(), err)
	}
	from, to := fromV.AsInt(), toV.AsInt()

	for i := from; i <= to; i++ {
		iterScope := ir.NewScope(scope)
		if err := iterScope.Define(gd.Var, &ir.ConstantInstance{Position: gd.Position, Name: gd.Var, Value: ir.IntValue(i)}); err != nil {
			return fmt.Errorf("%s: %w", gd.Pos(), err)
		}
		if err := b.elaborateNetworkDecls(net, iterScope, gd.Decls); err != nil {
			return err
		}
	}
	return nil
}

// elaborateInstance implements step 4 for one `instance Name of F(args…);`
// declaration.
func (b *Builder) elaborateInstance(net *ir.NetworkInstance, scope *ir.Scope, id *ast.InstanceDecl) error {
	proc, network, ok := b.resolver.ResolveEntity(id.Entity)
	if !ok {
		return fmt.Errorf("%s: cannot resolve entity %q", id.Pos(), strings.Join(id.Entity, "."))
	}

	name := id.Name
	if id.Anonymous() {
		b.anonSeq++
		name = anonymousName(b.anonSeq)
	}

	if network != nil {
		child := ir.NewNetworkInstance(name, network, scope)
		params, err := b.mapParameters(network.Params, id.Args, scope, child.InstanceScope())
		if err != nil {
			return fmt.Errorf("%s: instance %q: %w", id.Pos(), name, err)
		}
		child.Params = params
		registerMappedBuses(params, child.Buses)
		if err := b.elaborateNetworkDecls(child, child.InstanceScope(), network.Decls); err != nil {
			return err
		}
		if err := b.elaborateConnects(child, network.Connect); err != nil {
			return err
		}
		net.Networks = append(net.Networks, child)
		return defineInScope(scope, name, child)
	}

	child := ir.NewProcessInstance(name, proc.Clocked, proc, scope)
	params, err := b.mapParameters(proc.Params, id.Args, scope, child.InstanceScope())
	if err != nil {
		return fmt.Errorf("%s: instance %q: %w", id.Pos(), name, err)
	}
	child.Params = params
	registerMappedBuses(params, child.Buses)
	if err := b.elaborateProcessLocals(child, proc.Decls); err != nil {
		return err
	}
	net.Processes = append(net.Processes, child)
	return defineInScope(scope, name, child)
}

// registerMappedBuses indexes every bus-mapped parameter into container
// (a ProcessInstance's or NetworkInstance's Buses map) under its local
// name, so a later `inst.paramName.signal` connect reference resolves the
// same way a locally-declared bus would (resolveSignalRef looks buses up
// through the owning Instance's Buses map, not its Scope).
func registerMappedBuses(params []ir.MappedParameter, container map[string]*ir.BusInstance) {
	for _, p := range params {
		if p.Bus != nil {
			container[p.LocalName] = p.Bus
		}
	}
}

func defineInScope(scope *ir.Scope, name string, sym ir.Symbol) error {
	if name == "" {
		return nil
	}
	return scope.Define(name, sym)
}

// mapParameters builds the MappedParameter list for one instantiation,
// classifying each argument as a bus mapping (a bare name that resolves to
// a BusInstance in the caller's scope) or a constant mapping (any other
// compile-time-evaluable expression), per spec §4.3 step 4.
func (b *Builder) mapParameters(formals []ast.Param, args []ast.Expression, callerScope, calleeScope *ir.Scope) ([]ir.MappedParameter, error) {
	if len(formals) != len(args) {
		return nil, fmt.Errorf("arity mismatch: %d formal parameter(s), %d argument(s)", len(formals), len(args))
	}

	out := make([]ir.MappedParameter, len(formals))
	for i, f := range formals {
		arg := args[i]
		mp := ir.MappedParameter{Formal: f, LocalName: f.Name, Dir: f.Dir}

		if bus, ok := resolveBareBus(arg, callerScope); ok {
			mp.Bus = bus
			out[i] = mp
			if err := defineInScope(calleeScope, f.Name, bus); err != nil {
				return nil, err
			}
			continue
		}

		val, err := EvalConst(arg, callerScope)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", f.Name, err)
		}
		mp.Expr = arg
		mp.ConstValue = &val
		out[i] = mp

		rt, _ := f.Type.(*ast.IntrinsicType)
		if err := defineInScope(calleeScope, f.Name, &ir.ConstantInstance{Position: f.Position, Name: f.Name, DeclaredType: f.Type, ResolvedType: rt, Value: val}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// resolveBareBus reports whether arg is a single, unindexed identifier that
// resolves to a BusInstance in scope.
func resolveBareBus(arg ast.Expression, scope *ir.Scope) (*ir.BusInstance, bool) {
	name, ok := arg.(*ast.NameExpr)
	if !ok || len(name.Segments) != 1 || name.Segments[0].Index != nil {
		return nil, false
	}
	sym, ok := scope.Lookup(name.Segments[0].Ident)
	if !ok {
		return nil, false
	}
	bus, ok := sym.(*ir.BusInstance)
	return bus, ok
}

// elaborateProcessLocals instantiates the local var/const/bus/enum
// declarations of a process's defining AST node into proc, once per
// ProcessInstance (spec §4.3 "Process body specialization": "Local buses
// declared inside a process are instantiated per ProcessInstance").
func (b *Builder) elaborateProcessLocals(proc *ir.ProcessInstance, decls []ast.Declaration) error {
	scope := proc.InstanceScope()
	for _, d := range decls {
		switch decl := d.(type) {
		case *ast.ConstantDecl:
			if err := b.defineConstant(decl, scope, proc.Constants); err != nil {
				return err
			}
		case *ast.VariableDecl:
			var init *ir.Value
			if decl.Init != nil {
				if v, err := EvalConst(decl.Init, scope); err == nil {
					init = &v
				}
			}
			rt, _ := decl.Type.(*ast.IntrinsicType)
			vi := &ir.VariableInstance{Position: decl.Position, Name: decl.Name, DeclaredType: decl.Type, ResolvedType: rt, Initializer: init}
			proc.Variables[decl.Name] = vi
			if err := scope.Define(decl.Name, vi); err != nil {
				return fmt.Errorf("%s: %w", decl.Pos(), err)
			}
		case *ast.BusDecl:
			bus := newBusInstance(decl.Position, decl.Name, decl.Shape, proc)
			proc.Buses[decl.Name] = bus
			if err := scope.Define(decl.Name, bus); err != nil {
				return fmt.Errorf("%s: %w", decl.Pos(), err)
			}
		case *ast.EnumDecl:
			if err := scope.Define(decl.Name, &ir.EnumSymbol{Def: decl}); err != nil {
				return fmt.Errorf("%s: %w", decl.Pos(), err)
			}
		}
	}
	return nil
}

// newBusInstance builds a BusInstance from a BusType shape, resolving the
// per-signal type only when it is already an intrinsic (named types are
// left for the validator's Pass B to resolve through the scope chain).
func newBusInstance(pos ast.Position, name string, shape *ast.BusType, owner ir.Instance) *ir.BusInstance {
	bus := &ir.BusInstance{
		Position: pos,
		Name:     name,
		Signals:  make(map[string]*ir.SignalInstance, len(shape.Signals)),
		Order:    make([]string, 0, len(shape.Signals)),
		Owner:    owner,
	}
	for _, sig := range shape.Signals {
		rt, _ := sig.Type.(*ast.IntrinsicType)
		bus.Signals[sig.Name] = &ir.SignalInstance{Position: pos, Name: sig.Name, DeclaredType: sig.Type, ResolvedType: rt}
		bus.Order = append(bus.Order, sig.Name)
	}
	return bus
}

// elaborateConnects implements step 5: resolve each `src -> dst;` to exact
// source/destination signals.
func (b *Builder) elaborateConnects(net *ir.NetworkInstance, connects []*ast.ConnectDecl) error {
	for _, c := range connects {
		srcBus, srcSig, err := resolveSignalRef(c.Src, net.InstanceScope())
		if err != nil {
			return fmt.Errorf("%s: connect source: %w", c.Pos(), err)
		}
		dstBus, dstSig, err := resolveSignalRef(c.Dst, net.InstanceScope())
		if err != nil {
			return fmt.Errorf("%s: connect destination: %w", c.Pos(), err)
		}
		net.Connects = append(net.Connects, &ir.ConnectEntry{
			Position: c.Position,
			Src:      srcSig, Dst: dstSig,
			SrcBus: srcBus, DstBus: dstBus,
		})
	}
	return nil
}

// resolveSignalRef walks a hierarchical name (e.g. `inst.bus.signal`) from
// scope down to the SignalInstance or BusInstance it names, per the member
// chain: Instance -> bus-or-child-instance -> ... -> Signal.
func resolveSignalRef(expr ast.Expression, scope *ir.Scope) (*ir.BusInstance, *ir.SignalInstance, error) {
	name, ok := expr.(*ast.NameExpr)
	if !ok || len(name.Segments) == 0 {
		return nil, nil, fmt.Errorf("%s: connect endpoint must be a name", expr.Pos())
	}

	sym, ok := scope.Lookup(name.Segments[0].Ident)
	if !ok {
		return nil, nil, fmt.Errorf("%s: undefined symbol %q", expr.Pos(), name.Segments[0].Ident)
	}

	var lastBus *ir.BusInstance
	cur := sym
	for _, seg := range name.Segments[1:] {
		switch c := cur.(type) {
		case *ir.ProcessInstance:
			bus, ok := c.Buses[seg.Ident]
			if !ok {
				return nil, nil, fmt.Errorf("%s: process %q has no bus %q", expr.Pos(), c.Name, seg.Ident)
			}
			lastBus = bus
			cur = bus
		case *ir.NetworkInstance:
			if bus, ok := c.Buses[seg.Ident]; ok {
				lastBus = bus
				cur = bus
				continue
			}
			next, ok := lookupChildInstance(c, seg.Ident)
			if !ok {
				return nil, nil, fmt.Errorf("%s: network %q has no member %q", expr.Pos(), c.Name, seg.Ident)
			}
			cur = next
		case *ir.BusInstance:
			sig, ok := c.Signal(seg.Ident)
			if !ok {
				return nil, nil, fmt.Errorf("%s: bus %q has no signal %q", expr.Pos(), c.Name, seg.Ident)
			}
			lastBus = c
			cur = sig
		default:
			return nil, nil, fmt.Errorf("%s: %q is not a bus or instance", expr.Pos(), seg.Ident)
		}
	}

	switch final := cur.(type) {
	case *ir.SignalInstance:
		return lastBus, final, nil
	case *ir.BusInstance:
		return final, nil, nil
	default:
		return nil, nil, fmt.Errorf("%s: connect endpoint does not name a bus or signal", expr.Pos())
	}
}

func lookupChildInstance(net *ir.NetworkInstance, name string) (ir.Instance, bool) {
	for _, p := range net.Processes {
		if p.Name == name {
			return p, true
		}
	}
	for _, n := range net.Networks {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}
