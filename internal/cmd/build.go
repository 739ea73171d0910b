package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/osgify/cli/internal/config"
	oerrors "github.com/osgify/cli/internal/errors"
	"github.com/osgify/cli/internal/output"
	"github.com/osgify/cli/internal/pipeline"
	"github.com/osgify/cli/internal/synth"
)

// NewBuildCmd creates the build command.
func NewBuildCmd() *cobra.Command {
	var bf BuildFlags

	var (
		formatFlag      string
		copyBundlesFlag bool
		noReportFlag    bool
	)

	cmd := &cobra.Command{
		Use:   "build [build-file]",
		Short: "Build all bundles declared in a build file",
		Long: `Build every artifact declared in an osgify build file.

Jars are classified, sources are paired with their binaries, features are
assembled and all wrap-eligible jars are turned into bundles in parallel.
A report of the build is written to <output>/bundles.yaml.

Arguments:
  build-file    Path to the build file (default: ./osgify.yaml)

Examples:
  # Build using ./osgify.yaml
  osgify build

  # Build into a custom directory, stripping signatures
  osgify build ci/osgify.yaml -o dist/plugins --remove-signature

  # Show the result as a table
  osgify build --format table`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args, &bf, formatFlag, copyBundlesFlag, noReportFlag)
		},
	}

	bf.AddTo(cmd)

	cmd.Flags().StringVar(&formatFlag, "format", "",
		"Summary format: yaml, json, table (default: one line per bundle)")
	cmd.Flags().BoolVar(&copyBundlesFlag, "copy-bundles", false,
		"Copy jars that are already bundles into the output directory")
	cmd.Flags().BoolVar(&noReportFlag, "no-report", false,
		"Do not write the build report")

	return cmd
}

func runBuild(cmd *cobra.Command, args []string, flags *BuildFlags, format string, copyBundles, noReport bool) error {
	var summaryFormat output.OutputFormat
	if format != "" {
		f, ok := output.ParseOutputFormat(format)
		if !ok {
			return &oerrors.DetailError{
				Type:    "validation failed",
				Message: fmt.Sprintf("unknown format %q", format),
				Hint:    "Valid formats: yaml, json, table",
				Cause:   oerrors.ErrValidation,
			}
		}
		summaryFormat = f
	}

	path := config.DefaultBuildFile
	if len(args) > 0 {
		path = args[0]
	}

	buildFile, err := loadBuildFile(path)
	if err != nil {
		return err
	}
	buildFile.Merge(GetUserConfig())
	flags.Apply(cmd, buildFile)
	if copyBundles {
		buildFile.CopyBundles = true
	}

	output.Debug("building", "file", path, "artifacts", len(buildFile.Artifacts), "features", len(buildFile.Features))

	result, err := runPipeline(cmd, pipeline.Options{BuildFile: buildFile, NoReport: noReport}, "Building bundles...")
	if err != nil {
		return err
	}

	if err := printBuildResult(result, summaryFormat); err != nil {
		return err
	}

	return result.Err()
}

// loadBuildFile validates the build file against the schema and decodes it.
func loadBuildFile(path string) (*config.BuildFile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, oerrors.NewNotFoundError(
			"build file not found",
			path,
			"Create an osgify.yaml or pass the build file path as argument",
		)
	}

	validator, err := config.NewValidator()
	if err != nil {
		return nil, err
	}
	if err := validator.ValidateFile(path); err != nil {
		return nil, err
	}

	return config.LoadBuildFile(path)
}

// runPipeline runs a build with a spinner while stdout is a terminal.
func runPipeline(cmd *cobra.Command, opts pipeline.Options, title string) (*pipeline.Result, error) {
	ctx := cmd.Context()
	p := pipeline.New(opts)

	var result *pipeline.Result
	err := output.RunWithSpinner(ctx, func() error {
		var runErr error
		result, runErr = p.Run(ctx)
		return runErr
	}, output.WithTitle(title))
	if err != nil {
		return nil, err
	}
	return result, nil
}

func printBuildResult(result *pipeline.Result, format output.OutputFormat) error {
	switch format {
	case output.FormatYAML:
		data, err := result.Report.Marshal()
		if err != nil {
			return err
		}
		output.Print(string(data))
	case output.FormatJSON:
		data, err := result.Report.Marshal()
		if err != nil {
			return err
		}
		data, err = yaml.YAMLToJSON(data)
		if err != nil {
			return err
		}
		var indented any
		if err := json.Unmarshal(data, &indented); err != nil {
			return err
		}
		pretty, err := json.MarshalIndent(indented, "", "  ")
		if err != nil {
			return err
		}
		output.Println(string(pretty))
	case output.FormatTable:
		rows := make([]output.BundleStatus, 0, len(result.Bundles))
		for _, r := range result.Bundles {
			rows = append(rows, output.BundleStatus{
				ID:           r.Artifact.ID,
				SymbolicName: r.Artifact.SymbolicName(),
				Version:      r.Artifact.ModifiedVersion().String(),
				Status:       bundleStatus(r),
				Message:      resultMessage(r),
			})
		}
		output.Println(output.RenderBundleTable(rows))
	default:
		for _, r := range result.Bundles {
			output.Println(output.FormatBundleLine(r.Artifact.ID, bundleStatus(r)))
		}
		if result.ReportPath != "" {
			output.Println(output.FormatCheckmark("Report written to " + result.ReportPath))
		}
	}
	return nil
}

// bundleStatus maps a synthesis result to its display status.
func bundleStatus(r synth.Result) string {
	switch r.State {
	case synth.Wrapped:
		return output.StatusWrapped
	case synth.SkippedNotApplicable:
		if r.Target != "" {
			return output.StatusCopied
		}
		return output.StatusSkipped
	case synth.SkippedEmptyArchive:
		return output.StatusEmpty
	default:
		return output.StatusFailed
	}
}

func resultMessage(r synth.Result) string {
	switch {
	case r.Err != nil:
		return r.Err.Error()
	case r.Target != "":
		return filepath.Base(r.Target)
	default:
		return r.Reason
	}
}

func absPath(p string) string {
	p = config.ExpandTilde(p)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
