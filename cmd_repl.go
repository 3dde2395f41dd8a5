package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"wisp/vm"
)

// replCmd implements the interactive REPL ("repl") and its debug-tracing
// counterpart ("depl"). An empty line, EOF, or Ctrl-C ends the session.
type replCmd struct {
	cmdName string
	debug   bool
}

func (r *replCmd) Name() string { return r.cmdName }

func (r *replCmd) Synopsis() string {
	if r.debug {
		return "Start an interactive REPL session with debug tracing on"
	}
	return "Start an interactive REPL session"
}

func (r *replCmd) Usage() string {
	return fmt.Sprintf("%s:\n  Start an interactive REPL session.\n", r.cmdName)
}

func (r *replCmd) SetFlags(f *flag.FlagSet) {}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to start REPL: %s\n", err.Error())
		return subcommands.ExitFailure
	}
	defer rl.Close()

	machine := vm.New()
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return subcommands.ExitSuccess
		}
		if line == "" {
			return subcommands.ExitSuccess
		}

		if _, ierr := vm.Interpret(machine, line, r.debug); ierr != nil {
			fmt.Println(ierr.Error())
		}
	}
}
