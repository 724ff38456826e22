// ocitally - Oracle Cloud tenancy inventory exporter
// Sweep. Tally. Upload.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/yairfalse/ocitally/internal/emitter"
)

// Exit codes.
const (
	exitOK            = 0
	exitFailure       = 1
	exitPartialUpload = 2
)

func main() {
	os.Exit(execute())
}

func execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return exitOK
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, emitter.ErrPartialUpload):
		return exitPartialUpload
	default:
		return exitFailure
	}
}
