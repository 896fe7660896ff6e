package main

import (
	"bytes"

	"github.com/spf13/cobra"
)

// executeCommand runs a cobra command with the given arguments and returns
// everything it wrote to stdout/stderr.
func executeCommand(cmd *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}
