package cmd

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osgify/cli/internal/report"
)

func writeReport(t *testing.T, dir string, r *report.Report) string {
	t.Helper()
	path := filepath.Join(dir, report.FileName)
	require.NoError(t, r.Write(path))
	return path
}

func TestReportDiff(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeReport(t, filepath.Join(dir, "old"), &report.Report{Bundles: []report.Bundle{
		{ID: "org.example:foo:1.2.0", SymbolicName: "org.example.foo", Version: "1.2.0.a", State: "wrapped"},
	}})
	samePath := writeReport(t, filepath.Join(dir, "same"), &report.Report{Bundles: []report.Bundle{
		{ID: "org.example:foo:1.2.0", SymbolicName: "org.example.foo", Version: "1.2.0.a", State: "wrapped"},
	}})
	newPath := writeReport(t, filepath.Join(dir, "new"), &report.Report{Bundles: []report.Bundle{
		{ID: "org.example:foo:1.2.0", SymbolicName: "org.example.foo", Version: "1.2.0.b", State: "wrapped"},
		{ID: "bar:1.0.0", SymbolicName: "bar", Version: "1.0.0", State: "skipped"},
	}})

	t.Run("identical reports", func(t *testing.T) {
		assert.NoError(t, execute(NewReportDiffCmd(), oldPath, samePath, "--exit-code", "--color", "never"))
	})

	t.Run("differences without exit code", func(t *testing.T) {
		assert.NoError(t, execute(NewReportDiffCmd(), oldPath, newPath, "--color", "never"))
	})

	t.Run("differences with exit code", func(t *testing.T) {
		err := execute(NewReportDiffCmd(), oldPath, newPath, "--exit-code", "--color", "never")
		require.Error(t, err)

		var exitErr *ExitError
		require.True(t, errors.As(err, &exitErr))
		assert.True(t, exitErr.Printed)
		assert.Equal(t, ExitGeneralError, ExitCodeFromError(err))
	})

	t.Run("missing report", func(t *testing.T) {
		err := execute(NewReportDiffCmd(), oldPath, filepath.Join(dir, "absent", report.FileName))
		require.Error(t, err)
		assert.Equal(t, ExitNotFound, ExitCodeFromError(err))
	})
}
