package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osgify/cli/internal/output"
	"github.com/osgify/cli/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show osgify version information.

Displays:
  - osgify version, commit, and build date
  - CUE SDK version used to validate build files`,
		RunE: runVersion,
	}
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.Get()

	output.Println(fmt.Sprintf("osgify version %s", info.Version))
	output.Println(fmt.Sprintf("  Commit:    %s", info.GitCommit))
	output.Println(fmt.Sprintf("  Built:     %s", info.BuildDate))
	output.Println(fmt.Sprintf("  Go:        %s", info.GoVersion))
	output.Println(fmt.Sprintf("  CUE SDK:   %s", info.CUESDKVersion))

	return nil
}
