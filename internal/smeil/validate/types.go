package validate

import (
	"fmt"

	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/diag"
	"github.com/dekarrin/smeilc/internal/smeil/ir"
)

// TypeTable is the Expression -> Type side table spec §3 calls for
// ("Resolved types are not stored on the node itself ... the validator
// keeps a side table"), keyed by the expression node's own identity since
// ast nodes are immutable pointers once parsed.
type TypeTable struct {
	m map[ast.Expression]*ast.IntrinsicType
}

func newTypeTable() *TypeTable {
	return &TypeTable{m: make(map[ast.Expression]*ast.IntrinsicType)}
}

// Set records the resolved type of expr.
func (t *TypeTable) Set(expr ast.Expression, typ *ast.IntrinsicType) {
	t.m[expr] = typ
}

// Get returns the resolved type of expr, or nil if Pass B never typed it
// (e.g. a string-literal argument to trace/assert, which carries no HDL
// type).
func (t *TypeTable) Get(expr ast.Expression) *ast.IntrinsicType {
	return t.m[expr]
}

const maxNamedTypeDepth = 32

// resolveAndUnify implements Pass B (spec §4.4): resolve every declared
// type in the tree to its intrinsic form, then type every statement's
// expressions, checking assignability as it goes. Direction checking is
// deferred to Pass C (schedule.go), since "in"/"out" violations depend on
// the per-process read/write classification that pass computes.
func resolveAndUnify(top *ir.NetworkInstance, types *TypeTable, bag *diag.Bag) {
	resolveNetworkTypes(top, bag)
	typeNetworkStatements(top, types, bag)
}

func resolveNetworkTypes(net *ir.NetworkInstance, bag *diag.Bag) {
	scope := net.InstanceScope()
	for _, bus := range net.Buses {
		resolveBusTypes(bus, scope, bag)
	}
	for _, c := range net.Constants {
		resolveScalarType(&c.ResolvedType, c.DeclaredType, scope, bag, c.Position, "constant "+c.Name)
	}
	for _, proc := range net.Processes {
		resolveProcessTypes(proc, bag)
	}
	for _, child := range net.Networks {
		resolveNetworkTypes(child, bag)
	}
}

func resolveProcessTypes(proc *ir.ProcessInstance, bag *diag.Bag) {
	scope := proc.InstanceScope()
	for _, bus := range proc.Buses {
		resolveBusTypes(bus, scope, bag)
	}
	for _, v := range proc.Variables {
		resolveScalarType(&v.ResolvedType, v.DeclaredType, scope, bag, v.Position, "variable "+v.Name)
	}
	for _, c := range proc.Constants {
		resolveScalarType(&c.ResolvedType, c.DeclaredType, scope, bag, c.Position, "constant "+c.Name)
	}
}

func resolveBusTypes(bus *ir.BusInstance, scope *ir.Scope, bag *diag.Bag) {
	for _, name := range bus.Order {
		sig := bus.Signals[name]
		resolveScalarType(&sig.ResolvedType, sig.DeclaredType, scope, bag, sig.Position, "signal "+bus.Name+"."+sig.Name)
	}
}

// resolveScalarType fills *slot with the intrinsic form of declared,
// walking through NamedType indirections (spec §4.4: "Named types are
// resolved by walking the scope chain to a TypeDef"). A no-op if *slot is
// already set, which is the common case: the elaborator resolves a
// directly-intrinsic declaration on the spot, leaving only named-type
// declarations for this pass to finish.
func resolveScalarType(slot **ast.IntrinsicType, declared ast.Type, scope *ir.Scope, bag *diag.Bag, pos ast.Position, what string) {
	if *slot != nil || declared == nil {
		return
	}
	rt, err := resolveNamedChain(declared, scope)
	if err != nil {
		bag.AddError(diag.New(diag.CategoryType, diag.KindTypeMismatch, locOf(pos),
			fmt.Sprintf("%s: %s", what, err), ""))
		return
	}
	*slot = rt
}

func resolveNamedChain(t ast.Type, scope *ir.Scope) (*ast.IntrinsicType, error) {
	for depth := 0; depth < maxNamedTypeDepth; depth++ {
		switch cur := t.(type) {
		case *ast.IntrinsicType:
			return cur, nil
		case *ast.NamedType:
			if len(cur.Name) == 0 {
				return nil, fmt.Errorf("empty type name")
			}
			sym, ok := scope.Lookup(cur.Name[0])
			if !ok {
				return nil, fmt.Errorf("undefined type %q", cur.String())
			}
			def, ok := sym.(*ir.TypeDefSymbol)
			if !ok {
				return nil, fmt.Errorf("%q does not name a type", cur.String())
			}
			t = def.Def.Type
		default:
			return nil, fmt.Errorf("%s is not an intrinsic-resolvable type", t.String())
		}
	}
	return nil, fmt.Errorf("named type chain exceeds %d indirections (cycle?)", maxNamedTypeDepth)
}

func typeNetworkStatements(net *ir.NetworkInstance, types *TypeTable, bag *diag.Bag) {
	for _, proc := range net.Processes {
		typeProcessStatements(proc, types, bag)
	}
	for _, child := range net.Networks {
		typeNetworkStatements(child, types, bag)
	}
}

func typeProcessStatements(proc *ir.ProcessInstance, types *TypeTable, bag *diag.Bag) {
	typeStatements(proc.Stmts(), proc.InstanceScope(), types, bag)
}

func typeStatements(stmts []ast.Statement, scope *ir.Scope, types *TypeTable, bag *diag.Bag) {
	for _, s := range stmts {
		typeStatement(s, scope, types, bag)
	}
}

func typeStatement(s ast.Statement, scope *ir.Scope, types *TypeTable, bag *diag.Bag) {
	switch st := s.(type) {
	case *ast.AssignStmt:
		lhsT := typeExpr(st.LHS, scope, types, bag)
		rhsT := typeExpr(st.RHS, scope, types, bag)
		checkAssignable(lhsT, rhsT, st.Position, bag)
	case *ast.IfStmt:
		typeExpr(st.Cond, scope, types, bag)
		typeStatements(st.Body, scope, types, bag)
		for _, ei := range st.ElseIfs {
			typeExpr(ei.Cond, scope, types, bag)
			typeStatements(ei.Body, scope, types, bag)
		}
		typeStatements(st.Else, scope, types, bag)
	case *ast.ForStmt:
		typeExpr(st.From, scope, types, bag)
		typeExpr(st.To, scope, types, bag)
		inner := ir.NewScope(scope)
		_ = inner.Define(st.Var, &ir.ConstantInstance{
			Position:     st.Position,
			Name:         st.Var,
			ResolvedType: &ast.IntrinsicType{Kind: ast.IntPlatformSigned},
		})
		typeStatements(st.Body, inner, types, bag)
	case *ast.SwitchStmt:
		typeExpr(st.Value, scope, types, bag)
		for _, c := range st.Cases {
			if c.Value != nil {
				typeExpr(c.Value, scope, types, bag)
			}
			typeStatements(c.Body, scope, types, bag)
		}
	case *ast.FuncCallStmt:
		for _, a := range st.Args {
			typeExpr(a, scope, types, bag)
		}
	case *ast.TraceStmt:
		for _, a := range st.Args {
			typeExpr(a, scope, types, bag)
		}
	case *ast.AssertStmt:
		if ct := typeExpr(st.Cond, scope, types, bag); ct != nil && ct.Kind != ast.IntBool {
			bag.AddError(diag.New(diag.CategoryType, diag.KindTypeMismatch, locOf(st.Position),
				fmt.Sprintf("assert condition must be bool, not %s", ct.String()), ""))
		}
	case *ast.BreakStmt:
		// no expressions to type
	}
}

// typeExpr types expr bottom-up per spec §4.4's widening rules, recording
// the result in types. Returns nil for constructs this pass does not
// assign an HDL type to (e.g. a string-literal trace/assert argument).
func typeExpr(expr ast.Expression, scope *ir.Scope, types *TypeTable, bag *diag.Bag) *ast.IntrinsicType {
	if expr == nil {
		return nil
	}

	var t *ast.IntrinsicType
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		t = typeLiteral(e.Value)
	case *ast.NameExpr:
		t = typeName(e, scope, bag)
		for _, seg := range e.Segments {
			typeExpr(seg.Index, scope, types, bag)
		}
	case *ast.ParenExpr:
		t = typeExpr(e.Inner, scope, types, bag)
	case *ast.UnaryExpr:
		inner := typeExpr(e.Expr, scope, types, bag)
		if e.Op == ast.OpNot {
			t = &ast.IntrinsicType{Kind: ast.IntBool}
		} else {
			t = inner
		}
	case *ast.BinaryExpr:
		lt := typeExpr(e.Left, scope, types, bag)
		rt := typeExpr(e.Right, scope, types, bag)
		switch {
		case e.Op.IsComparison():
			t = &ast.IntrinsicType{Kind: ast.IntBool}
		case e.Op.IsShift():
			t = lt
		default:
			t = widerOf(lt, rt)
		}
	case *ast.TypeCastExpr:
		typeExpr(e.Expr, scope, types, bag)
		if it, ok := e.To.(*ast.IntrinsicType); ok {
			t = it
		} else if rt, err := resolveNamedChain(e.To, scope); err == nil {
			t = rt
		}
	}

	if t != nil {
		types.Set(expr, t)
	}
	return t
}

func typeLiteral(c *ast.Constant) *ast.IntrinsicType {
	switch c.Kind {
	case ast.ConstInteger:
		return &ast.IntrinsicType{Kind: ast.IntPlatformSigned}
	case ast.ConstFloating:
		return &ast.IntrinsicType{Kind: ast.IntFloat32}
	case ast.ConstBoolean:
		return &ast.IntrinsicType{Kind: ast.IntBool}
	default:
		return nil
	}
}

// typeName resolves a (possibly hierarchical) name to the signal, variable,
// or constant it denotes and returns its already-resolved type.
func typeName(e *ast.NameExpr, scope *ir.Scope, bag *diag.Bag) *ast.IntrinsicType {
	if len(e.Segments) == 0 {
		return nil
	}
	sym, ok := scope.Lookup(e.Segments[0].Ident)
	if !ok {
		bag.AddError(diag.New(diag.CategorySymbol, diag.KindUndefinedSymbol, locOf(e.Position),
			fmt.Sprintf("undefined symbol %q", e.Segments[0].Ident), ""))
		return nil
	}

	var cur ir.Symbol = sym
	for _, seg := range e.Segments[1:] {
		switch c := cur.(type) {
		case *ir.ProcessInstance:
			bus, ok := c.Buses[seg.Ident]
			if !ok {
				bag.AddError(diag.New(diag.CategorySymbol, diag.KindUndefinedSymbol, locOf(e.Position),
					fmt.Sprintf("process %q has no bus %q", c.Name, seg.Ident), ""))
				return nil
			}
			cur = bus
		case *ir.NetworkInstance:
			bus, ok := c.Buses[seg.Ident]
			if !ok {
				bag.AddError(diag.New(diag.CategorySymbol, diag.KindUndefinedSymbol, locOf(e.Position),
					fmt.Sprintf("network %q has no bus %q", c.Name, seg.Ident), ""))
				return nil
			}
			cur = bus
		case *ir.BusInstance:
			sig, ok := c.Signal(seg.Ident)
			if !ok {
				bag.AddError(diag.New(diag.CategorySymbol, diag.KindUndefinedSymbol, locOf(e.Position),
					fmt.Sprintf("bus %q has no signal %q", c.Name, seg.Ident), ""))
				return nil
			}
			cur = sig
		default:
			bag.AddError(diag.New(diag.CategorySymbol, diag.KindUndefinedSymbol, locOf(e.Position),
				fmt.Sprintf("%q is not a bus or instance", seg.Ident), ""))
			return nil
		}
	}

	switch final := cur.(type) {
	case *ir.SignalInstance:
		return final.ResolvedType
	case *ir.VariableInstance:
		return final.ResolvedType
	case *ir.ConstantInstance:
		return final.ResolvedType
	default:
		bag.AddError(diag.New(diag.CategorySymbol, diag.KindUndefinedSymbol, locOf(e.Position),
			fmt.Sprintf("%q does not name a value", e.String()), ""))
		return nil
	}
}

// widerOf picks the result type of an arithmetic binary op: float beats
// int, f64 beats f32, and otherwise the operand with the greater bit width
// wins (spec §4.4: "result type is the wider of the two operand types").
func widerOf(lt, rt *ast.IntrinsicType) *ast.IntrinsicType {
	if lt == nil {
		return rt
	}
	if rt == nil {
		return lt
	}
	if lt.Kind.IsFloat() || rt.Kind.IsFloat() {
		if lt.Kind == ast.IntFloat64 || rt.Kind == ast.IntFloat64 {
			return &ast.IntrinsicType{Kind: ast.IntFloat64}
		}
		return &ast.IntrinsicType{Kind: ast.IntFloat32}
	}
	if lt.Width >= rt.Width {
		return lt
	}
	return rt
}

// checkAssignable enforces spec §4.4's assignment rule: the RHS type must
// be assignable to the LHS type, with implicit widening allowed and
// implicit narrowing (including int-to-float direction reversed, i.e.
// float-to-int) rejected as requiring an explicit cast.
func checkAssignable(lhs, rhs *ast.IntrinsicType, pos ast.Position, bag *diag.Bag) {
	if lhs == nil || rhs == nil {
		return
	}
	if (lhs.Kind == ast.IntBool) != (rhs.Kind == ast.IntBool) {
		bag.AddError(diag.New(diag.CategoryType, diag.KindTypeMismatch, locOf(pos),
			fmt.Sprintf("cannot assign %s to %s", rhs.String(), lhs.String()), ""))
		return
	}
	if !lhs.Kind.IsFloat() && rhs.Kind.IsFloat() {
		bag.AddError(diag.New(diag.CategoryType, diag.KindTypeMismatch, locOf(pos),
			fmt.Sprintf("assigning %s to %s requires an explicit cast", rhs.String(), lhs.String()), ""))
		return
	}
	if !lhs.Kind.IsFloat() && !rhs.Kind.IsFloat() && lhs.Width > 0 && rhs.Width > lhs.Width {
		bag.AddError(diag.New(diag.CategoryType, diag.KindWidthOverflow, locOf(pos),
			fmt.Sprintf("assigning %s into narrower %s requires an explicit cast", rhs.String(), lhs.String()), ""))
	}
}
