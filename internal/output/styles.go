package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Named constants for every ANSI 256 color used in the CLI;
// never use inline lipgloss.Color literals.
var (
	// ColorCyan is used for identifiable nouns: artifact IDs, symbolic names, paths.
	ColorCyan = lipgloss.Color("14")

	// colorGreen is used for the "wrapped" bundle status.
	colorGreen = lipgloss.Color("82")

	// ColorYellow is used for the "copied" bundle status.
	ColorYellow = lipgloss.Color("220")

	// colorRed is used for removed entries in diffs.
	colorRed = lipgloss.Color("196")

	// colorBoldRed is used for the "failed" bundle status (matches ERROR level).
	colorBoldRed = lipgloss.Color("204")

	// ColorGreenCheck is used for the completion checkmark (✔).
	ColorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")
)

// Semantic styles map domain concepts to visual presentation.
var (
	// StyleNoun styles identifiable nouns (artifact IDs, symbolic names, paths).
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleAction styles action verbs (wrapping, copying, assembling).
	StyleAction = lipgloss.NewStyle().Bold(true)

	// StyleDim styles structural chrome (scope prefixes, separators, timestamps).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Bundle status constants.
const (
	StatusWrapped = "wrapped"
	StatusCopied  = "copied"
	StatusSkipped = "skipped"
	StatusEmpty   = "empty"
	StatusValid   = "valid"
	StatusFailed  = "failed"
)

// statusStyle returns the lipgloss style for a given bundle status string.
// Unknown statuses return an unstyled default.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case StatusWrapped, StatusValid:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case StatusCopied:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusSkipped, StatusEmpty:
		return lipgloss.NewStyle().Faint(true)
	case StatusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(colorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minBundleColumnWidth is the minimum width for the bundle column before the
// status suffix. This keeps status words aligned.
const minBundleColumnWidth = 48

// FormatBundleLine renders an artifact ID with a right-aligned, color-coded
// status suffix.
//
// Format: b:<artifact-id>  <status>
//
// The "b:" prefix is dim, the ID is cyan, and the status uses statusStyle.
func FormatBundleLine(id, status string) string {
	padding := minBundleColumnWidth - len(id)
	if padding < 2 {
		padding = 2
	}

	prefix := StyleDim.Render("b:")
	styledID := StyleNoun.Render(id)
	styledStatus := statusStyle(status).Render(status)

	return prefix + styledID + strings.Repeat(" ", padding) + styledStatus
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}

// vetLabelWidth is the column the detail of a vet check starts at.
const vetLabelWidth = 30

// FormatVetCheck renders a passed check line for config vet output. The
// detail, when present, is aligned to a fixed column.
func FormatVetCheck(label, detail string) string {
	line := FormatCheckmark(label)
	if detail == "" {
		return line
	}
	padding := vetLabelWidth - len(label)
	if padding < 2 {
		padding = 2
	}
	return fmt.Sprintf("%s%s%s", line, strings.Repeat(" ", padding), StyleDim.Render(detail))
}
