package cmd

import (
	"errors"
	"io/fs"

	"github.com/spf13/cobra"

	oerrors "github.com/osgify/cli/internal/errors"
	"github.com/osgify/cli/internal/output"
	"github.com/osgify/cli/internal/report"
)

// errReportsDiffer signals differences under --exit-code.
var errReportsDiffer = errors.New("reports differ")

// NewReportCmd creates the report command group.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Work with build reports",
	}

	cmd.AddCommand(NewReportDiffCmd())

	return cmd
}

// NewReportDiffCmd creates the report diff command.
func NewReportDiffCmd() *cobra.Command {
	var (
		colorFlag    string
		exitCodeFlag bool
	)

	cmd := &cobra.Command{
		Use:   "diff <old-report> <new-report>",
		Short: "Compare the reports of two builds",
		Long: `Compare two bundles.yaml reports.

Bundles are matched by artifact ID. Added and removed bundles are listed,
changed bundles are shown with a field-level diff.

Examples:
  osgify report diff previous/bundles.yaml bundles/bundles.yaml

  # Fail when anything changed
  osgify report diff a.yaml b.yaml --exit-code`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReportDiff(args[0], args[1], colorFlag, exitCodeFlag)
		},
	}

	cmd.Flags().StringVar(&colorFlag, "color", "auto", "Colorize the diff: auto, always, never")
	cmd.Flags().BoolVar(&exitCodeFlag, "exit-code", false, "Exit with status 1 when the reports differ")

	return cmd
}

func runReportDiff(oldPath, newPath, color string, exitCode bool) error {
	oldReport, err := loadReport(oldPath)
	if err != nil {
		return err
	}
	newReport, err := loadReport(newPath)
	if err != nil {
		return err
	}

	useColor := color == "always" || (color == "auto" && output.IsTTY())

	changes, err := report.Compare(oldReport, newReport, useColor)
	if err != nil {
		return err
	}

	modified := make([]output.ModifiedItem, 0, len(changes.Modified))
	for _, m := range changes.Modified {
		modified = append(modified, output.ModifiedItem{Name: m.ID, Diff: m.Diff})
	}
	output.Println(output.RenderDiff(changes.Added, changes.Removed, modified))

	if exitCode && !changes.Empty() {
		return &ExitError{Err: errReportsDiffer, Code: ExitGeneralError, Printed: true}
	}
	return nil
}

func loadReport(path string) (*report.Report, error) {
	r, err := report.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, oerrors.NewNotFoundError("report not found", path, "Reports are written to <output>/bundles.yaml by osgify build")
		}
		return nil, err
	}
	return r, nil
}
