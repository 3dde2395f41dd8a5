package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&replCmd{cmdName: "repl", debug: false}, "")
	subcommands.Register(&replCmd{cmdName: "depl", debug: true}, "")
	subcommands.Register(&runCmd{cmdName: "run", debug: false}, "")
	subcommands.Register(&runCmd{cmdName: "debug", debug: true}, "")

	// Zero arguments starts the default REPL, matching the original losp
	// CLI's arg-count dispatch.
	if len(os.Args) < 2 {
		os.Args = append(os.Args, "repl")
	}

	flag.Parse()
	status := subcommands.Execute(context.Background())
	// Usage errors (unknown subcommand, missing file argument) exit 64.
	if status == subcommands.ExitUsageError {
		status = 64
	}
	os.Exit(int(status))
}
