package validate

import (
	"fmt"
	"strings"

	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/diag"
	"github.com/dekarrin/smeilc/internal/smeil/ir"
)

// signalAccess records, for one process, how it touches one signal and
// through which locally-visible bus it reached it.
type signalAccess struct {
	Bus *ir.BusInstance
	Dir ir.Direction
}

// scheduleNetwork implements Pass C (spec §4.4): classify every process's
// signal reads/writes, check those classifications against the bus
// directions declared on its formal parameters, build the combinational
// dependency graph, and topologically sort it into NetworkInstance.Schedule.
func scheduleNetwork(top *ir.NetworkInstance, bag *diag.Bag) {
	scheduleOneNetwork(top, bag)
}

func scheduleOneNetwork(net *ir.NetworkInstance, bag *diag.Bag) {
	accesses := make(map[*ir.ProcessInstance]map[*ir.SignalInstance]signalAccess, len(net.Processes))
	for _, proc := range net.Processes {
		acc := collectAccesses(proc)
		accesses[proc] = acc
		recordDirections(proc, acc)
		checkParamDirections(proc, acc, bag)
		warnIfIdentityProcess(proc, bag)
	}

	net.Schedule = topoSort(net, accesses, bag)

	for _, child := range net.Networks {
		scheduleOneNetwork(child, bag)
	}
}

// collectAccesses walks proc's statement tree and classifies every signal
// it touches as read, write, or read-write (an assignment's LHS is a
// write; every other occurrence, including the RHS of an assignment to a
// different signal, is a read).
func collectAccesses(proc *ir.ProcessInstance) map[*ir.SignalInstance]signalAccess {
	acc := make(map[*ir.SignalInstance]signalAccess)
	scope := proc.InstanceScope()

	mark := func(expr ast.Expression, write bool) {
		bus, sig := resolveSignalExpr(expr, scope)
		if sig == nil {
			return
		}
		d := ir.DirRead
		if write {
			d = ir.DirWrite
		}
		prev := acc[sig]
		acc[sig] = signalAccess{Bus: bus, Dir: combineDirection(prev.Dir, d)}
	}

	var walkExpr func(e ast.Expression)
	walkExpr = func(e ast.Expression) {
		if e == nil {
			return
		}
		switch v := e.(type) {
		case *ast.NameExpr:
			mark(e, false)
			for _, seg := range v.Segments {
				walkExpr(seg.Index)
			}
		case *ast.ParenExpr:
			walkExpr(v.Inner)
		case *ast.UnaryExpr:
			walkExpr(v.Expr)
		case *ast.BinaryExpr:
			walkExpr(v.Left)
			walkExpr(v.Right)
		case *ast.TypeCastExpr:
			walkExpr(v.Expr)
		}
	}

	var walkStmts func(stmts []ast.Statement)
	walkStmts = func(stmts []ast.Statement) {
		for _, s := range stmts {
			switch st := s.(type) {
			case *ast.AssignStmt:
				mark(st.LHS, true)
				walkExpr(st.RHS)
			case *ast.IfStmt:
				walkExpr(st.Cond)
				walkStmts(st.Body)
				for _, ei := range st.ElseIfs {
					walkExpr(ei.Cond)
					walkStmts(ei.Body)
				}
				walkStmts(st.Else)
			case *ast.ForStmt:
				walkExpr(st.From)
				walkExpr(st.To)
				walkStmts(st.Body)
			case *ast.SwitchStmt:
				walkExpr(st.Value)
				for _, c := range st.Cases {
					walkExpr(c.Value)
					walkStmts(c.Body)
				}
			case *ast.FuncCallStmt:
				for _, a := range st.Args {
					walkExpr(a)
				}
			case *ast.TraceStmt:
				for _, a := range st.Args {
					walkExpr(a)
				}
			case *ast.AssertStmt:
				walkExpr(st.Cond)
			}
		}
	}

	walkStmts(proc.Stmts())
	return acc
}

// resolveSignalExpr resolves expr to a bus-qualified signal it names,
// ignoring anything that isn't a simple (possibly bus-member) name — a
// reference to a plain VariableInstance or ConstantInstance has nothing
// for the schedule to track, so it's silently not a signal access.
func resolveSignalExpr(expr ast.Expression, scope *ir.Scope) (*ir.BusInstance, *ir.SignalInstance) {
	name, ok := expr.(*ast.NameExpr)
	if !ok || len(name.Segments) == 0 {
		return nil, nil
	}
	sym, ok := scope.Lookup(name.Segments[0].Ident)
	if !ok {
		return nil, nil
	}

	cur := sym
	var lastBus *ir.BusInstance
	for _, seg := range name.Segments[1:] {
		switch c := cur.(type) {
		case *ir.ProcessInstance:
			bus, ok := c.Buses[seg.Ident]
			if !ok {
				return nil, nil
			}
			lastBus = bus
			cur = bus
		case *ir.NetworkInstance:
			bus, ok := c.Buses[seg.Ident]
			if !ok {
				return nil, nil
			}
			lastBus = bus
			cur = bus
		case *ir.BusInstance:
			sig, ok := c.Signal(seg.Ident)
			if !ok {
				return nil, nil
			}
			lastBus = c
			cur = sig
		default:
			return nil, nil
		}
	}

	sig, ok := cur.(*ir.SignalInstance)
	if !ok {
		return nil, nil
	}
	return lastBus, sig
}

func combineDirection(existing, add ir.Direction) ir.Direction {
	if existing == ir.DirUnused {
		return add
	}
	if existing == add {
		return existing
	}
	return ir.DirReadWrite
}

// recordDirections folds proc's accesses into the signal's own (possibly
// multi-process) Direction and into proc.Directions, keyed by
// "busName.signalName" as ir.ProcessInstance documents.
func recordDirections(proc *ir.ProcessInstance, acc map[*ir.SignalInstance]signalAccess) {
	for sig, a := range acc {
		sig.Direction = combineDirection(sig.Direction, a.Dir)
		if a.Bus != nil {
			proc.Directions[a.Bus.Name+"."+sig.Name] = a.Dir
		}
	}
}

// checkParamDirections enforces spec §4.4: "writing to an in-direction bus
// signal or reading an out-direction bus's driven side within the same
// process is an error", checked against the direction declared on the bus
// formal parameter the process received it through.
func checkParamDirections(proc *ir.ProcessInstance, acc map[*ir.SignalInstance]signalAccess, bag *diag.Bag) {
	for _, mp := range proc.Params {
		if mp.Bus == nil {
			continue
		}
		for _, sigName := range mp.Bus.Order {
			sig := mp.Bus.Signals[sigName]
			a, ok := acc[sig]
			if !ok {
				continue
			}
			switch mp.Dir {
			case ast.DirIn:
				if a.Dir == ir.DirWrite || a.Dir == ir.DirReadWrite {
					bag.AddError(diag.New(diag.CategoryType, diag.KindDirectionMismatch, locOf(proc.Position),
						fmt.Sprintf("process %q: cannot write %s.%s, parameter %q is declared in",
							proc.Name, mp.Bus.Name, sig.Name, mp.LocalName), ""))
				}
			case ast.DirOut:
				if a.Dir == ir.DirRead || a.Dir == ir.DirReadWrite {
					bag.AddError(diag.New(diag.CategoryType, diag.KindDirectionMismatch, locOf(proc.Position),
						fmt.Sprintf("process %q: cannot read %s.%s, parameter %q is declared out",
							proc.Name, mp.Bus.Name, sig.Name, mp.LocalName), ""))
				}
			}
		}
	}
}

// warnIfIdentityProcess flags the optional "identity process folding" case
// of spec §4.4: a process whose entire body is a single direct
// signal-to-signal assignment does no computation and could be folded
// directly into the connect graph instead of scheduled as its own node.
func warnIfIdentityProcess(proc *ir.ProcessInstance, bag *diag.Bag) {
	stmts := proc.Stmts()
	if len(stmts) != 1 {
		return
	}
	as, ok := stmts[0].(*ast.AssignStmt)
	if !ok {
		return
	}
	if _, ok := as.LHS.(*ast.NameExpr); !ok {
		return
	}
	if _, ok := as.RHS.(*ast.NameExpr); !ok {
		return
	}
	bag.AddWarning(diag.New(diag.CategoryStruct, "", locOf(proc.Position),
		fmt.Sprintf("process %q is a pure passthrough and could be folded into its connect graph", proc.Name), ""))
}

// topoSort builds the combinational dependency graph (an edge p -> q when
// p writes a signal q reads) and runs Kahn's algorithm over it. Edges into
// a clocked process are omitted: a clocked process reads the previous
// tick's value of whatever it sees, so it never requires a same-tick
// ordering against its writers (spec §4.4).
func topoSort(net *ir.NetworkInstance, acc map[*ir.ProcessInstance]map[*ir.SignalInstance]signalAccess, bag *diag.Bag) []*ir.ProcessInstance {
	procs := net.Processes
	indeg := make(map[*ir.ProcessInstance]int, len(procs))
	adj := make(map[*ir.ProcessInstance][]*ir.ProcessInstance, len(procs))
	for _, p := range procs {
		indeg[p] = 0
	}

	addEdge := func(p, q *ir.ProcessInstance) {
		if p == q || q.Clocked {
			return
		}
		adj[p] = append(adj[p], q)
		indeg[q]++
	}

	// Direct dependency: p and q were both mapped the same BusInstance
	// (spec §4.3's "bus mapping"), so a write by p to a signal is visible
	// to q's read of the very same SignalInstance.
	for _, p := range procs {
		for sig, a := range acc[p] {
			if a.Dir != ir.DirWrite && a.Dir != ir.DirReadWrite {
				continue
			}
			for _, q := range procs {
				qa, ok := acc[q][sig]
				if !ok || (qa.Dir != ir.DirRead && qa.Dir != ir.DirReadWrite) {
					continue
				}
				addEdge(p, q)
			}
		}
	}

	// Connect-mediated dependency: a `src -> dst;` statement feeds whatever
	// wrote src into whatever reads dst, even though src and dst are
	// distinct SignalInstances (spec §3 ConnectEntry).
	for _, c := range net.Connects {
		if c.Src == nil || c.Dst == nil {
			continue
		}
		for _, p := range procs {
			pa, ok := acc[p][c.Src]
			if !ok || (pa.Dir != ir.DirWrite && pa.Dir != ir.DirReadWrite) {
				continue
			}
			for _, q := range procs {
				qa, ok := acc[q][c.Dst]
				if !ok || (qa.Dir != ir.DirRead && qa.Dir != ir.DirReadWrite) {
					continue
				}
				addEdge(p, q)
			}
		}
	}

	var queue []*ir.ProcessInstance
	for _, p := range procs {
		if indeg[p] == 0 {
			queue = append(queue, p)
		}
	}

	order := make([]*ir.ProcessInstance, 0, len(procs))
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		order = append(order, p)
		for _, q := range adj[p] {
			indeg[q]--
			if indeg[q] == 0 {
				queue = append(queue, q)
			}
		}
	}

	if len(order) != len(procs) {
		var stuck []string
		for _, p := range procs {
			if indeg[p] > 0 {
				stuck = append(stuck, p.Name)
			}
		}
		bag.AddError(diag.New(diag.CategoryStruct, diag.KindCycleInNetwork, locOf(net.Position),
			fmt.Sprintf("network %q: combinational cycle among process(es) %s", net.Name, strings.Join(stuck, ", ")), ""))
		return nil
	}
	return order
}
