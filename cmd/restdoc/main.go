package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	rderrors "restdoc/internal/errors"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		printFixes(stderr, err)
		return exitCode(err)
	}
	return 0
}

// exitCode is 2 for configuration errors and 1 for anything else.
func exitCode(err error) int {
	if rderrors.CodeOf(err) == rderrors.ConfigurationError {
		return 2
	}
	return 1
}

func printFixes(w io.Writer, err error) {
	var e *rderrors.Error
	if !errors.As(err, &e) {
		return
	}
	for _, fix := range e.SuggestedFixes {
		if fix.Command != "" {
			fmt.Fprintf(w, "  try: %s (%s)\n", fix.Command, fix.Description)
			continue
		}
		fmt.Fprintf(w, "  hint: %s\n", fix.Description)
	}
}
