package bnd

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/osgify/cli/internal/osgi"
)

// Instruction keys understood by the analyzer. Keys starting with '-' are
// directives and never end up as manifest headers.
const (
	NoExtraHeaders = "-noextraheaders"
	FailOK         = "-failok"

	// NoOverrideWarning lists headers, comma separated, that may replace the
	// values of an existing bundle without a warning.
	NoOverrideWarning = "-nooverridewarning"
)

// DefaultPackageMessage is the error text reported for classes in the
// default package.
const DefaultPackageMessage = "The default package '.' is not permitted by the Import-Package syntax"

// Analyzer is the manifest-calculation capability used to wrap a jar. The
// synthesizer supplies the jar and properties, asks for a manifest and saves
// the result; package analysis is left entirely to the implementation.
type Analyzer interface {
	// SetJar loads the jar to analyze.
	SetJar(path string) error
	// AddClasspath adds jars used to resolve references.
	AddClasspath(paths ...string)
	// SetProperty sets a single instruction.
	SetProperty(key, value string)
	// AddProperties sets every instruction of props; later values win.
	AddProperties(props *Properties)
	// Jar returns the loaded jar for in-place edits before CalcManifest.
	Jar() *Jar
	// CalcManifest calculates the manifest and installs it in the jar.
	CalcManifest() (*osgi.Manifest, error)
	// IsOK reports whether the analysis has no fatal errors.
	IsOK() bool
	// Errors returns the errors reported so far.
	Errors() []string
	// Warnings returns the warnings reported so far.
	Warnings() []string
	// Save writes the jar to target.
	Save(target string, compress bool) error
	// Close releases all resources.
	Close() error
}

// AnalyzerFactory creates a fresh Analyzer per wrap session.
type AnalyzerFactory func() Analyzer

// InstructionAnalyzer is the built-in Analyzer. It does not infer packages
// from bytecode: header instructions are written to the manifest verbatim on
// top of the jar's existing main attributes.
type InstructionAnalyzer struct {
	jar       *Jar
	classpath []string
	props     *Properties
	manifest  *osgi.Manifest
	errors    []string
	warnings  []string
	now       func() time.Time
}

// NewInstructionAnalyzer creates an InstructionAnalyzer.
func NewInstructionAnalyzer() *InstructionAnalyzer {
	return &InstructionAnalyzer{
		props: NewProperties(),
		now:   time.Now,
	}
}

// NewInstructionAnalyzerFactory returns an AnalyzerFactory for
// InstructionAnalyzer.
func NewInstructionAnalyzerFactory() AnalyzerFactory {
	return func() Analyzer { return NewInstructionAnalyzer() }
}

var errNoJar = errors.New("no jar set")

// SetJar loads the jar at path. Empty archives are rejected.
func (a *InstructionAnalyzer) SetJar(path string) error {
	j, err := OpenJar(path)
	if err != nil {
		return err
	}
	if j.Len() == 0 {
		return fmt.Errorf("jar %s is empty", path)
	}
	a.jar = j
	return nil
}

// AddClasspath records classpath jars. They are not inspected.
func (a *InstructionAnalyzer) AddClasspath(paths ...string) {
	a.classpath = append(a.classpath, paths...)
}

// SetProperty sets one instruction.
func (a *InstructionAnalyzer) SetProperty(key, value string) {
	a.props.Set(key, value)
}

// AddProperties sets every instruction of props.
func (a *InstructionAnalyzer) AddProperties(props *Properties) {
	a.props.Merge(props)
}

// Jar returns the loaded jar.
func (a *InstructionAnalyzer) Jar() *Jar {
	return a.jar
}

// CalcManifest merges the header instructions over the existing main
// attributes. Headers after Manifest-Version are written in sorted order.
func (a *InstructionAnalyzer) CalcManifest() (*osgi.Manifest, error) {
	if a.jar == nil {
		return nil, errNoJar
	}

	existing, err := a.jar.Manifest()
	if err != nil {
		a.errors = append(a.errors, err.Error())
		existing = nil
	}

	headers := osgi.NewAttributes()
	var sections []osgi.Section
	if existing != nil {
		headers = existing.Main.Clone()
		sections = existing.Sections
	}
	quiet := a.quietHeaders()
	for _, k := range a.props.Keys() {
		if strings.HasPrefix(k, "-") {
			continue
		}
		v := a.props.Value(k)
		if old, ok := headers.Get(k); ok && old != v && existing.IsBundle() && !quiet[strings.ToLower(k)] {
			a.warnings = append(a.warnings, fmt.Sprintf("header %s overrides existing value %q", k, old))
		}
		headers.Set(k, v)
	}

	if _, ok := headers.Get(osgi.BundleManifestVersion); !ok {
		headers.Set(osgi.BundleManifestVersion, "2")
	}
	if a.directive(NoExtraHeaders) {
		headers.Delete(osgi.BndLastModified)
	} else {
		headers.Set(osgi.BndLastModified, fmt.Sprintf("%d", a.now().UnixMilli()))
	}

	if strings.TrimSpace(headers.Value(osgi.BundleSymbolicName)) == "" {
		a.errors = append(a.errors, "Bundle-SymbolicName is not set")
	}
	if pkgs := a.defaultPackageClasses(); len(pkgs) > 0 {
		a.errors = append(a.errors, fmt.Sprintf("%s: classes %s", DefaultPackageMessage, strings.Join(pkgs, ", ")))
	}

	m := osgi.NewManifest()
	names := headers.Names()
	sort.Strings(names)
	for _, n := range names {
		if strings.EqualFold(n, osgi.ManifestVersion) {
			continue
		}
		m.Main.Set(n, headers.Value(n))
	}
	m.Sections = sections

	a.manifest = m
	a.jar.SetManifest(m)
	return m, nil
}

// defaultPackageClasses lists class files at the root of the jar.
func (a *InstructionAnalyzer) defaultPackageClasses() []string {
	var classes []string
	for _, name := range a.jar.Names() {
		if !strings.Contains(name, "/") && strings.HasSuffix(name, ".class") {
			classes = append(classes, name)
		}
	}
	return classes
}

func (a *InstructionAnalyzer) directive(key string) bool {
	v, ok := a.props.Get(key)
	if !ok {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

// quietHeaders returns the lower-cased headers listed in -nooverridewarning.
func (a *InstructionAnalyzer) quietHeaders() map[string]bool {
	quiet := make(map[string]bool)
	for _, h := range strings.Split(a.props.Value(NoOverrideWarning), ",") {
		if h = strings.TrimSpace(h); h != "" {
			quiet[strings.ToLower(h)] = true
		}
	}
	return quiet
}

// IsOK reports true when no error was reported, or -failok is set.
func (a *InstructionAnalyzer) IsOK() bool {
	return len(a.errors) == 0 || a.directive(FailOK)
}

// Errors returns a copy of the reported errors.
func (a *InstructionAnalyzer) Errors() []string {
	return append([]string(nil), a.errors...)
}

// Warnings returns a copy of the reported warnings.
func (a *InstructionAnalyzer) Warnings() []string {
	return append([]string(nil), a.warnings...)
}

// Save writes the jar with its calculated manifest to target.
func (a *InstructionAnalyzer) Save(target string, compress bool) error {
	if a.jar == nil {
		return errNoJar
	}
	if a.manifest == nil {
		if _, err := a.CalcManifest(); err != nil {
			return err
		}
	}
	if err := a.jar.WriteFile(target, compress); err != nil {
		a.errors = append(a.errors, err.Error())
		return fmt.Errorf("saving %s: %w", target, err)
	}
	return nil
}

// Close drops the loaded jar.
func (a *InstructionAnalyzer) Close() error {
	a.jar = nil
	a.manifest = nil
	return nil
}
