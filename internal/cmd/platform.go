package cmd

import (
	"github.com/spf13/cobra"

	oerrors "github.com/osgify/cli/internal/errors"
	"github.com/osgify/cli/internal/output"
	"github.com/osgify/cli/internal/platform"
)

// NewPlatformCmd creates the platform command group.
func NewPlatformCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "platform",
		Short: "Inspect ws.os.arch platforms",
		Long: `Inspect the platforms bundles can be restricted to.

A platform is a ws.os.arch triple such as gtk.linux.x86_64. The native
platform is the host operating system; the running platform also reflects
the bit width of this process.`,
	}

	cmd.AddCommand(newPlatformDetectCmd("native", "Show the native platform of this host", platform.Native))
	cmd.AddCommand(newPlatformDetectCmd("running", "Show the platform of the running process", platform.Running))
	cmd.AddCommand(newPlatformListCmd())
	cmd.AddCommand(newPlatformFilterCmd())

	return cmd
}

func newPlatformDetectCmd(use, short string, detect func() (platform.Triple, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := detect()
			if err != nil {
				return oerrors.NewPlatformError(err.Error(), use)
			}
			output.Println(t.String())
			return nil
		},
	}
}

func newPlatformListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the supported platforms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl := output.NewTable("PLATFORM", "WS", "OS", "ARCH", "WUFF")
			for _, t := range platform.All() {
				wuff, err := t.WuffName()
				if err != nil {
					wuff = "-"
				}
				tbl.Row(t.String(), t.WS, t.OS, t.Arch, wuff)
			}
			output.Println(tbl.String())
			return nil
		},
	}
}

func newPlatformFilterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filter <ws.os.arch>",
		Short: "Print the Eclipse-PlatformFilter of a platform",
		Long: `Print the Eclipse-PlatformFilter header value for a platform.

Examples:
  osgify platform filter gtk.linux.x86_64
  # (& (osgi.ws=gtk) (osgi.os=linux) (osgi.arch=x86_64) )`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := platform.Parse(args[0])
			if err != nil {
				return oerrors.NewPlatformError(err.Error(), args[0])
			}
			output.Println(t.PlatformFilter())
			return nil
		},
	}
}
