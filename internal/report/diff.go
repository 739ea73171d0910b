package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gonvenience/ytbx"
	"github.com/homeport/dyff/pkg/dyff"
	"gopkg.in/yaml.v3"
)

// ModifiedBundle is a bundle present in both reports with differing entries.
type ModifiedBundle struct {
	ID   string
	Diff string
}

// Changes is the difference between two reports, keyed by bundle ID.
type Changes struct {
	Added    []string
	Removed  []string
	Modified []ModifiedBundle
}

// Empty reports whether the two reports describe the same bundles.
func (c *Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Modified) == 0
}

// Compare computes the bundle changes from old to new. Modified entries carry
// a dyff rendering of the changed fields.
func Compare(old, new *Report, useColor bool) (*Changes, error) {
	changes := &Changes{}

	for _, nb := range new.Bundles {
		ob, ok := old.Bundle(nb.ID)
		if !ok {
			changes.Added = append(changes.Added, nb.ID)
			continue
		}
		diff, err := diffEntries(ob, nb, useColor)
		if err != nil {
			return nil, fmt.Errorf("comparing %s: %w", nb.ID, err)
		}
		if diff != "" {
			changes.Modified = append(changes.Modified, ModifiedBundle{ID: nb.ID, Diff: diff})
		}
	}
	for _, ob := range old.Bundles {
		if _, ok := new.Bundle(ob.ID); !ok {
			changes.Removed = append(changes.Removed, ob.ID)
		}
	}
	return changes, nil
}

func diffEntries(old, new Bundle, useColor bool) (string, error) {
	oldYAML, err := yaml.Marshal(old)
	if err != nil {
		return "", err
	}
	newYAML, err := yaml.Marshal(new)
	if err != nil {
		return "", err
	}
	if bytes.Equal(oldYAML, newYAML) {
		return "", nil
	}
	return DiffYAML(oldYAML, newYAML, useColor)
}

// DiffYAML renders a human readable dyff report of two YAML documents. It
// returns "" when they do not differ.
func DiffYAML(from, to []byte, useColor bool) (string, error) {
	if len(from) == 0 && len(to) == 0 {
		return "", nil
	}

	fromInput, err := parseYAMLInput("old", from)
	if err != nil {
		return "", fmt.Errorf("parsing old YAML: %w", err)
	}
	toInput, err := parseYAMLInput("new", to)
	if err != nil {
		return "", fmt.Errorf("parsing new YAML: %w", err)
	}

	rep, err := dyff.CompareInputFiles(fromInput, toInput)
	if err != nil {
		return "", fmt.Errorf("comparing YAML: %w", err)
	}
	if len(rep.Diffs) == 0 {
		return "", nil
	}
	return renderDyffReport(rep, useColor)
}

func parseYAMLInput(name string, data []byte) (ytbx.InputFile, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ytbx.InputFile{Location: name}, nil
	}

	docs, err := ytbx.LoadYAMLDocuments(data)
	if err != nil {
		return ytbx.InputFile{}, err
	}
	return ytbx.InputFile{Location: name, Documents: docs}, nil
}

func renderDyffReport(rep dyff.Report, useColor bool) (string, error) {
	var buf bytes.Buffer

	writer := &dyff.HumanReport{
		Report:            rep,
		DoNotInspectCerts: true,
		NoTableStyle:      !useColor,
		OmitHeader:        true,
	}
	if err := writer.WriteReport(io.Writer(&buf)); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	lines := strings.Split(buf.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
