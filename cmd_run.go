package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"wisp/vm"
)

// runCmd implements file execution ("run") and its debug-tracing
// counterpart ("debug"), following losp.rs's run_file exit codes: 0 on
// success, 65 on compile error, 70 on runtime error.
type runCmd struct {
	cmdName string
	debug   bool
}

func (r *runCmd) Name() string { return r.cmdName }

func (r *runCmd) Synopsis() string {
	if r.debug {
		return "Execute a source file with debug tracing on"
	}
	return "Execute a source file"
}

func (r *runCmd) Usage() string {
	return fmt.Sprintf("%s <path>:\n  Execute wisp source read from a file.\n", r.cmdName)
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read file: %s\n", err.Error())
		return subcommands.ExitFailure
	}

	machine := vm.New()
	result, ierr := vm.Interpret(machine, string(data), r.debug)
	switch result {
	case vm.ResultOK:
		return subcommands.ExitSuccess
	case vm.ResultCompileError:
		fmt.Fprintln(os.Stderr, ierr.Error())
		return subcommands.ExitStatus(65)
	case vm.ResultRuntimeError:
		fmt.Fprintln(os.Stderr, ierr.Error())
		return subcommands.ExitStatus(70)
	}
	return subcommands.ExitFailure
}
