package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/smeilc/internal/input"
	"github.com/dekarrin/smeilc/internal/smeil/ir"
	"github.com/dekarrin/smeilc/internal/smeil/loader"
	"github.com/dekarrin/smeilc/internal/smeil/validate"
	"github.com/spf13/pflag"
)

// runInspect loads and validates a program, then opens a read-only prompt
// for querying its resolved scopes and schedule, via an
// input.InteractiveCommandReader wrapping readline.
func runInspect(args []string) (int, error) {
	fs := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return ExitOptionError, err
	}

	positional := fs.Args()
	if len(positional) < 1 {
		return ExitOptionError, fmt.Errorf("inspect requires a filename")
	}
	filename := positional[0]
	topName := ""
	if len(positional) > 1 {
		topName = positional[1]
	}

	l := loader.New(loader.Project{}, "")
	defer l.Close()

	top, err := l.LoadProgram(filename, topName, nil)
	if err != nil {
		return ExitCompileError, err
	}

	bag, _ := validate.Validate(top)
	if bag.HasErrors() {
		return ExitCompileError, bag.First()
	}

	reader, err := input.NewInteractiveReader()
	if err != nil {
		return ExitOptionError, fmt.Errorf("create readline: %w", err)
	}
	defer reader.Close()
	reader.SetPrompt("smeilc> ")

	session := &inspectSession{top: top}

	for {
		line, err := reader.ReadCommand()
		if err != nil {
			// io.EOF (stdin closed) and readline's own interrupt error (^C)
			// both just end the session, not a real failure.
			return ExitSuccess, nil
		}
		if line == "quit" || line == "exit" {
			return ExitSuccess, nil
		}
		session.run(line)
	}
}

type inspectSession struct {
	top *ir.NetworkInstance
}

func (s *inspectSession) run(line string) {
	fields := strings.Fields(line)
	cmd := fields[0]
	var arg string
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch cmd {
	case "schedule":
		s.printSchedule()
	case "scope":
		s.printScope(arg)
	case "type":
		s.printType(arg)
	default:
		fmt.Printf("unrecognized command %q (try: schedule, scope <name>, type <signal>)\n", cmd)
	}
}

func (s *inspectSession) printSchedule() {
	if len(s.top.Schedule) == 0 {
		fmt.Println("(no schedule: validation did not complete or network has no processes)")
		return
	}
	for i, p := range s.top.Schedule {
		fmt.Printf("%d. %s\n", i+1, p.Name)
	}
}

func (s *inspectSession) printScope(name string) {
	if name == "" {
		fmt.Println("usage: scope <process-or-network-name>")
		return
	}
	inst := findInstance(s.top, name)
	if inst == nil {
		fmt.Printf("no process or network named %q\n", name)
		return
	}
	names := inst.InstanceScope().Names()
	sort.Strings(names)
	for _, n := range names {
		sym, _ := inst.InstanceScope().LookupLocal(n)
		fmt.Printf("%s: %s\n", n, sym.SymbolKind())
	}
}

func (s *inspectSession) printType(signalName string) {
	if signalName == "" {
		fmt.Println("usage: type <signal>")
		return
	}
	sig := findSignal(s.top, signalName)
	if sig == nil {
		fmt.Printf("no signal named %q\n", signalName)
		return
	}
	if sig.ResolvedType == nil {
		fmt.Println("(unresolved)")
		return
	}
	fmt.Println(sig.ResolvedType.String())
}

func findInstance(net *ir.NetworkInstance, name string) ir.Instance {
	if net.Name == name {
		return net
	}
	for _, p := range net.Processes {
		if p.Name == name {
			return p
		}
	}
	for _, child := range net.Networks {
		if found := findInstance(child, name); found != nil {
			return found
		}
	}
	return nil
}

func findSignal(net *ir.NetworkInstance, name string) *ir.SignalInstance {
	for _, bus := range net.Buses {
		if sig, ok := bus.Signal(name); ok {
			return sig
		}
	}
	for _, p := range net.Processes {
		for _, bus := range p.Buses {
			if sig, ok := bus.Signal(name); ok {
				return sig
			}
		}
	}
	for _, child := range net.Networks {
		if found := findSignal(child, name); found != nil {
			return found
		}
	}
	return nil
}
