package main

import (
	"fmt"
	"os"

	"github.com/dekarrin/smeilc/internal/smeil/hdlemit"
	"github.com/dekarrin/smeilc/internal/smeil/loader"
	"github.com/dekarrin/smeilc/internal/smeil/validate"
	"github.com/spf13/pflag"
)

func runBuild(args []string) (int, error) {
	fs := pflag.NewFlagSet("build", pflag.ContinueOnError)
	outDir := fs.StringP("out", "o", "out", "Directory to write emitted files to")
	traceFile := fs.StringP("trace-file", "t", "", "CSV file driving the emitted testbench's trace")
	clear := fs.BoolP("clear", "c", false, "Remove the output directory's existing contents before writing")
	variant := fs.StringP("build-variant", "b", "generic", "Target build-system variant: generic, vivado, or ghdl")
	if err := fs.Parse(args); err != nil {
		return ExitOptionError, err
	}
	_ = traceFile // threaded through to the testbench plan once a backend exists to consume it

	positional := fs.Args()
	if len(positional) < 1 {
		return ExitOptionError, fmt.Errorf("build requires a filename")
	}
	filename := positional[0]
	topName := ""
	var cliArgs []string
	if len(positional) > 1 {
		topName = positional[1]
		cliArgs = positional[2:]
	}

	if *clear {
		if err := os.RemoveAll(*outDir); err != nil {
			return ExitOptionError, fmt.Errorf("clearing %s: %w", *outDir, err)
		}
	}

	l := loader.New(loader.Project{}, "")
	defer l.Close()

	top, err := l.LoadProgram(filename, topName, cliArgs)
	if err != nil {
		return ExitCompileError, err
	}

	bag, _ := validate.Validate(top)
	if bag.HasErrors() {
		return ExitCompileError, bag.First()
	}
	for _, w := range bag.Warnings {
		fmt.Fprintf(os.Stderr, "WARN %s\n", w.FullMessage())
	}

	e := &hdlemit.PlaceholderEmitter{Variant: hdlemit.BuildVariant(*variant)}
	files, err := e.Emit(top, *outDir)
	if err != nil {
		return ExitCompileError, err
	}

	fmt.Printf("wrote %d files to %s\n", len(files), *outDir)
	return ExitSuccess, nil
}
