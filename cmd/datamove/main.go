package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/crestline-data/datamove/internal/cli"
	"github.com/crestline-data/datamove/pkg/datamove"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(datamove.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(datamove.ExitCodeForError(err))
	}
}
