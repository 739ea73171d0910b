package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/osgify/cli/internal/config"
	oerrors "github.com/osgify/cli/internal/errors"
	"github.com/osgify/cli/internal/output"
	"github.com/osgify/cli/internal/pipeline"
	"github.com/osgify/cli/internal/platform"
)

// NewWrapCmd creates the wrap command.
func NewWrapCmd() *cobra.Command {
	var bf BuildFlags

	var (
		groupFlag        string
		nameFlag         string
		versionFlag      string
		symbolicNameFlag string
		bundleNameFlag   string
		platformFlag     string
		instructionFlags []string
	)

	cmd := &cobra.Command{
		Use:   "wrap <jar>",
		Short: "Wrap a single jar into an OSGi bundle",
		Long: `Wrap a single jar without a build file.

Coordinates are derived from the file name unless given explicitly. bnd
instructions are passed as KEY=VALUE pairs and override the defaults
(Import-Package: *;resolution:=optional, Export-Package: *).

Examples:
  # Wrap a jar into ./bundles
  osgify wrap libs/commons-io-2.15.1.jar

  # Wrap with explicit identity and imports
  osgify wrap foo.jar --name foo --version 1.2.0 \
    --instruction 'Import-Package=org.slf4j;version="[1.7,2)",*'

  # Restrict the bundle to 64-bit GTK Linux
  osgify wrap swt.jar --platform gtk.linux.x86_64 -o dist`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := config.ArtifactEntry{
				Path:         absPath(args[0]),
				Group:        groupFlag,
				Name:         nameFlag,
				Version:      versionFlag,
				SymbolicName: symbolicNameFlag,
				BundleName:   bundleNameFlag,
				Platform:     platformFlag,
			}
			return runWrap(cmd, entry, instructionFlags, &bf)
		},
	}

	bf.AddTo(cmd)

	cmd.Flags().StringVar(&groupFlag, "group", "", "Artifact group")
	cmd.Flags().StringVar(&nameFlag, "name", "", "Artifact name (default: derived from the file name)")
	cmd.Flags().StringVar(&versionFlag, "version", "", "Artifact version (default: derived from the file name)")
	cmd.Flags().StringVar(&symbolicNameFlag, "symbolic-name", "", "Bundle-SymbolicName override")
	cmd.Flags().StringVar(&bundleNameFlag, "bundle-name", "", "Bundle-Name override")
	cmd.Flags().StringVar(&platformFlag, "platform", "", "Restrict the bundle to a ws.os.arch platform")
	cmd.Flags().StringArrayVarP(&instructionFlags, "instruction", "i", nil, "bnd instruction as KEY=VALUE (repeatable)")

	return cmd
}

func runWrap(cmd *cobra.Command, entry config.ArtifactEntry, rawInstructions []string, flags *BuildFlags) error {
	if _, err := os.Stat(entry.Path); os.IsNotExist(err) {
		return oerrors.NewNotFoundError("jar not found", entry.Path, "")
	}
	if entry.Platform != "" {
		if _, err := platform.Parse(entry.Platform); err != nil {
			return oerrors.NewPlatformError(err.Error(), entry.Platform)
		}
	}

	instructions, err := parseInstructions(rawInstructions)
	if err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	buildFile := &config.BuildFile{
		Dir:       wd,
		Artifacts: []config.ArtifactEntry{entry},
	}
	if len(instructions) > 0 {
		buildFile.Bnd = []config.BndEntry{{Instructions: instructions}}
	}
	buildFile.Merge(GetUserConfig())
	flags.Apply(cmd, buildFile)

	result, err := runPipeline(cmd, pipeline.Options{BuildFile: buildFile, NoReport: true}, "Wrapping "+entry.Path)
	if err != nil {
		return err
	}

	r := result.Bundles[0]
	for _, w := range r.Warnings {
		output.Warn(w)
	}
	output.Println(output.FormatBundleLine(r.Artifact.ID, bundleStatus(r)))
	if r.Target != "" {
		output.Println(output.FormatCheckmark(r.Target))
	} else if r.Reason != "" {
		output.Println(output.StyleDim.Render("  " + r.Reason))
	}

	if r.Err != nil {
		return NewExitError(r.Err, ExitSynthesisError)
	}
	return nil
}

// parseInstructions splits KEY=VALUE pairs. Only the first = separates.
func parseInstructions(raw []string) (map[string]string, error) {
	instructions := make(map[string]string, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &oerrors.DetailError{
				Type:    "validation failed",
				Message: fmt.Sprintf("invalid instruction %q", kv),
				Hint:    "Instructions are written KEY=VALUE, for example Bundle-Vendor=Acme",
				Cause:   oerrors.ErrValidation,
			}
		}
		instructions[key] = value
	}
	return instructions, nil
}
