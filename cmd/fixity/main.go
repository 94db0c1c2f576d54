// Package main provides the entry point for the fixity CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jamesainslie/fixity/pkg/fixity/logging"
)

// errChangesDetected is returned by verify when the directory differs from
// the baseline. It maps to exit status 1 and is not printed.
var errChangesDetected = errors.New("changes detected")

// Exit statuses.
const (
	exitOK      = 0
	exitChanges = 1
	exitError   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI with args and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)

	if cerr := logging.Close(); cerr != nil {
		fmt.Fprintf(stderr, "Warning: %v\n", cerr)
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errChangesDetected):
		return exitChanges
	default:
		printError(stderr, err)
		return exitError
	}
}

// printError writes err to w in the CLI's error format.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
}
