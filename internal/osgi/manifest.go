package osgi

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Manifest header names.
const (
	ManifestVersion       = "Manifest-Version"
	BundleManifestVersion = "Bundle-ManifestVersion"
	BundleSymbolicName    = "Bundle-SymbolicName"
	BundleVersion         = "Bundle-Version"
	BundleName            = "Bundle-Name"
	BundleVendor          = "Bundle-Vendor"
	ImportPackage         = "Import-Package"
	ExportPackage         = "Export-Package"
	EclipsePlatformFilter = "Eclipse-PlatformFilter"
	EclipseSourceBundle   = "Eclipse-SourceBundle"
	BndLastModified       = "Bnd-LastModified"
)

const (
	manifestMaxLineLength  = 72
	manifestSectionNameKey = "Name"
)

// ManifestPath is the location of the manifest inside a jar.
const ManifestPath = "META-INF/MANIFEST.MF"

// Attributes is an ordered set of manifest headers. Header lookup is case
// insensitive; the spelling of the first Set wins.
type Attributes struct {
	keys   []string
	values map[string]string
}

// NewAttributes creates an empty attribute set.
func NewAttributes() *Attributes {
	return &Attributes{values: make(map[string]string)}
}

// Get returns the value of a header.
func (a *Attributes) Get(name string) (string, bool) {
	v, ok := a.values[strings.ToLower(name)]
	return v, ok
}

// Value returns the value of a header or "".
func (a *Attributes) Value(name string) string {
	v, _ := a.Get(name)
	return v
}

// Set sets a header, keeping its position when it already exists.
func (a *Attributes) Set(name, value string) {
	key := strings.ToLower(name)
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, name)
	}
	a.values[key] = value
}

// Delete removes a header.
func (a *Attributes) Delete(name string) {
	key := strings.ToLower(name)
	if _, ok := a.values[key]; !ok {
		return
	}
	delete(a.values, key)
	for i, k := range a.keys {
		if strings.ToLower(k) == key {
			a.keys = append(a.keys[:i], a.keys[i+1:]...)
			break
		}
	}
}

// Names returns the header names in insertion order.
func (a *Attributes) Names() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Len returns the number of headers.
func (a *Attributes) Len() int {
	return len(a.keys)
}

// Clone returns a deep copy.
func (a *Attributes) Clone() *Attributes {
	c := NewAttributes()
	for _, k := range a.keys {
		c.Set(k, a.Value(k))
	}
	return c
}

// Section is a named per-entry manifest section.
type Section struct {
	Name       string
	Attributes *Attributes
}

// Manifest is a jar manifest: main attributes followed by per-entry sections.
type Manifest struct {
	Main     *Attributes
	Sections []Section
}

// NewManifest creates an empty manifest with Manifest-Version 1.0.
func NewManifest() *Manifest {
	m := &Manifest{Main: NewAttributes()}
	m.Main.Set(ManifestVersion, "1.0")
	return m
}

// IsBundle reports whether the manifest declares an OSGi bundle.
func (m *Manifest) IsBundle() bool {
	if m == nil || m.Main == nil {
		return false
	}
	return strings.TrimSpace(m.Main.Value(BundleSymbolicName)) != ""
}

// SymbolicName returns the Bundle-SymbolicName without directives.
func (m *Manifest) SymbolicName() string {
	bsn := m.Main.Value(BundleSymbolicName)
	name, _, _ := strings.Cut(bsn, ";")
	return strings.TrimSpace(name)
}

// SymbolicNameParameters returns the directives and attributes following the
// symbolic name, including the leading ';', or "" when there are none.
func (m *Manifest) SymbolicNameParameters() string {
	bsn := m.Main.Value(BundleSymbolicName)
	i := strings.Index(bsn, ";")
	if i < 0 {
		return ""
	}
	params := strings.TrimSpace(bsn[i+1:])
	if params == "" {
		return ""
	}
	return ";" + params
}

// ReadManifest parses a manifest. Both CRLF and LF line endings are accepted.
func ReadManifest(r io.Reader) (*Manifest, error) {
	m := &Manifest{Main: NewAttributes()}
	current := m.Main
	inMain := true

	var lastKey string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")

		if text == "" {
			lastKey = ""
			inMain = false
			current = nil
			continue
		}

		if strings.HasPrefix(text, " ") {
			switch {
			case lastKey == "" || current == nil:
				return nil, fmt.Errorf("manifest line %d: continuation without header", line)
			case lastKey == manifestSectionNameKey && !inMain:
				m.Sections[len(m.Sections)-1].Name += text[1:]
			default:
				current.Set(lastKey, current.Value(lastKey)+text[1:])
			}
			continue
		}

		name, value, ok := strings.Cut(text, ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("manifest line %d: invalid header %q", line, text)
		}
		value = strings.TrimPrefix(value, " ")

		if current == nil {
			if !strings.EqualFold(name, manifestSectionNameKey) {
				return nil, fmt.Errorf("manifest line %d: section must start with Name header", line)
			}
			m.Sections = append(m.Sections, Section{Name: value, Attributes: NewAttributes()})
			current = m.Sections[len(m.Sections)-1].Attributes
			lastKey = manifestSectionNameKey
			continue
		}

		current.Set(name, value)
		lastKey = name
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	return m, nil
}

// Bytes renders the manifest with CRLF line endings and 72-byte line wrapping.
// Manifest-Version is always written first.
func (m *Manifest) Bytes() []byte {
	var buf bytes.Buffer

	version := m.Main.Value(ManifestVersion)
	if version == "" {
		version = "1.0"
	}
	writeHeader(&buf, ManifestVersion, version)
	for _, k := range m.Main.keys {
		if strings.EqualFold(k, ManifestVersion) {
			continue
		}
		writeHeader(&buf, k, m.Main.Value(k))
	}
	buf.WriteString("\r\n")

	for _, s := range m.Sections {
		writeHeader(&buf, manifestSectionNameKey, s.Name)
		for _, k := range s.Attributes.keys {
			writeHeader(&buf, k, s.Attributes.Value(k))
		}
		buf.WriteString("\r\n")
	}

	return buf.Bytes()
}

// WriteTo writes the rendered manifest to w.
func (m *Manifest) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(m.Bytes())
	return int64(n), err
}

// writeHeader writes "name: value" split into lines of at most 72 bytes,
// never splitting a UTF-8 sequence.
func writeHeader(buf *bytes.Buffer, name, value string) {
	line := name + ": " + value
	limit := manifestMaxLineLength
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		buf.WriteString(line[:cut])
		buf.WriteString("\r\n ")
		line = line[cut:]
		limit = manifestMaxLineLength - 1
	}
	buf.WriteString(line)
	buf.WriteString("\r\n")
}
