package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderDiff(t *testing.T) {
	t.Run("renders no changes message", func(t *testing.T) {
		result := RenderDiff(nil, nil, nil)
		assert.Equal(t, "No changes detected.", result)
	})

	t.Run("renders added bundles", func(t *testing.T) {
		result := stripAnsi(RenderDiff([]string{"org.example:foo:1.2.0"}, nil, nil))

		assert.Contains(t, result, "Added:")
		assert.Contains(t, result, "+ org.example:foo:1.2.0")
		assert.Contains(t, result, "1 added")
	})

	t.Run("renders removed bundles", func(t *testing.T) {
		result := stripAnsi(RenderDiff(nil, []string{"bar:1.0.0"}, nil))

		assert.Contains(t, result, "Removed:")
		assert.Contains(t, result, "- bar:1.0.0")
		assert.Contains(t, result, "1 removed")
	})

	t.Run("renders modified bundles", func(t *testing.T) {
		modified := []ModifiedItem{
			{Name: "foo:1.2.0", Diff: "version\n  ± value change\n    - 1.2.0.a\n    + 1.2.0.b"},
		}
		result := stripAnsi(RenderDiff(nil, nil, modified))

		assert.Contains(t, result, "Modified:")
		assert.Contains(t, result, "~ foo:1.2.0")
		assert.Contains(t, result, "    version")
		assert.Contains(t, result, "1 modified")
	})

	t.Run("renders all change types", func(t *testing.T) {
		result := stripAnsi(RenderDiff(
			[]string{"new:1.0.0"},
			[]string{"old:1.0.0"},
			[]ModifiedItem{{Name: "foo:1.2.0", Diff: "changed"}},
		))

		assert.Contains(t, result, "Added:")
		assert.Contains(t, result, "Removed:")
		assert.Contains(t, result, "Modified:")
		assert.Contains(t, result, "1 added, 1 removed, 1 modified")
	})
}

func TestDiffSummary(t *testing.T) {
	tests := []struct {
		name     string
		added    int
		removed  int
		modified int
		want     string
	}{
		{"no changes", 0, 0, 0, "No changes"},
		{"only added", 1, 0, 0, "1 added"},
		{"only removed", 0, 2, 0, "2 removed"},
		{"only modified", 0, 0, 3, "3 modified"},
		{"added and removed", 1, 2, 0, "1 added, 2 removed"},
		{"all types", 1, 2, 3, "1 added, 2 removed, 3 modified"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, diffSummary(tt.added, tt.removed, tt.modified))
		})
	}
}

func TestIndentDiff(t *testing.T) {
	t.Run("indents each line", func(t *testing.T) {
		assert.Equal(t, "    line1\n    line2\n    line3\n", IndentDiff("line1\nline2\nline3", "    "))
	})

	t.Run("skips empty lines", func(t *testing.T) {
		assert.Equal(t, "  line1\n  line2\n", IndentDiff("line1\n\nline2", "  "))
	})

	t.Run("returns empty for empty input", func(t *testing.T) {
		assert.Empty(t, IndentDiff("", "    "))
	})
}
