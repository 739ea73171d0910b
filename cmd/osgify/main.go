// Package main is the entry point for the osgify CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/osgify/cli/internal/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		// Only print if the command layer hasn't already printed it
		var exitErr *cmd.ExitError
		if !errors.As(err, &exitErr) || !exitErr.Printed {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cmd.ExitCodeFromError(err))
	}
}
