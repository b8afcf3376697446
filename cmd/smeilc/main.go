/*
Smeilc compiles SMEIL source into the intermediate form a VHDL backend
would consume.

Usage:

	smeilc build <filename> [top-network] [args...]
	smeilc inspect <filename> [top-network]
	smeilc serve

Build runs the full pipeline (tokenize, parse, load imports, elaborate,
validate, plan HDL emission) and writes the planned output tree. Inspect
runs the pipeline through validation only and drops into a read-only
prompt for querying the resulting scopes and schedule. Serve starts an
HTTP compile-as-a-service endpoint.

The flags for build are:

	-o, --out DIR
		Write emitted files to DIR. Defaults to "./out".

	-t, --trace-file FILE
		CSV file driving the emitted testbench's trace. Optional.

	-c, --clear
		Remove DIR's existing contents before writing.

	-b, --build-variant NAME
		Target build-system variant: generic, vivado, or ghdl. Defaults
		to generic.

Exit code 0 on success, 2 on option error, 3 on parse/validation error.
*/
package main

import (
	"fmt"
	"os"

	"github.com/dekarrin/smeilc/internal/version"
)

const (
	ExitSuccess = iota
	_
	ExitOptionError
	ExitCompileError
)

func main() {
	returnCode := ExitSuccess
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		}
		os.Exit(returnCode)
	}()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: smeilc <build|inspect|serve> ...")
		returnCode = ExitOptionError
		return
	}

	sub := os.Args[1]
	rest := os.Args[2:]

	var err error
	switch sub {
	case "-v", "--version", "version":
		fmt.Printf("smeilc %s\n", version.Current)
		return
	case "build":
		returnCode, err = runBuild(rest)
	case "inspect":
		returnCode, err = runInspect(rest)
	case "serve":
		returnCode, err = runServe(rest)
	case "-h", "--help", "help":
		fmt.Println("usage: smeilc <build|inspect|serve> ...")
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\nDo smeilc help for usage.\n", sub)
		returnCode = ExitOptionError
		return
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
	}
}
