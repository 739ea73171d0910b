package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
)

// isolateHome points HOME at a temp dir and clears osgify environment
// overrides so tests never see the developer's configuration.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, env := range []string{"OSGIFY_CONFIG", "OSGIFY_STATE_DIR", "OSGIFY_OUTPUT", "OSGIFY_QUALIFIER_STRATEGY"} {
		t.Setenv(env, "")
	}
	return home
}

// execute runs cmd with args and discards cobra's own output.
func execute(cmd *cobra.Command, args ...string) error {
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return cmd.Execute()
}
