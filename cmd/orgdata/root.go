package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func withCode(code int, err error) error {
	return &cliError{code: code, err: err}
}

func exitCode(err error) int {
	var ce *cliError
	if ok := asCliError(err, &ce); ok {
		return ce.code
	}
	return exitError
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "orgdata",
		Short:         "Roster and hierarchy export tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newTreeCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitCode(err))
	}
}
