package synth

import (
	"strings"

	"github.com/osgify/cli/internal/bnd"
	"github.com/osgify/cli/internal/osgi"
)

// signatureDir is the jar directory holding signature files.
const signatureDir = "META-INF"

var signatureSuffixes = []string{".SF", ".RSA", ".DSA"}

// IsSignatureEntry reports whether name is a signature file directly inside
// META-INF. The suffix check is case-insensitive.
func IsSignatureEntry(name string) bool {
	rest, ok := strings.CutPrefix(name, signatureDir+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return false
	}
	upper := strings.ToUpper(rest)
	for _, suffix := range signatureSuffixes {
		if strings.HasSuffix(upper, suffix) {
			return true
		}
	}
	return false
}

// StripSignatures removes the signature files of j and the entry digests
// its manifest carries for them. It returns the removed entry names.
func StripSignatures(j *bnd.Jar) []string {
	var removed []string
	for _, name := range j.Directory(signatureDir) {
		if IsSignatureEntry(name) {
			j.Remove(name)
			removed = append(removed, name)
		}
	}
	if len(removed) == 0 {
		return nil
	}

	// Digest sections describe the signature that was just removed.
	m, err := j.Manifest()
	if err != nil || m == nil {
		return removed
	}
	sections := m.Sections[:0]
	for _, s := range m.Sections {
		for _, attr := range s.Attributes.Names() {
			if strings.HasSuffix(strings.ToLower(attr), "-digest") {
				s.Attributes.Delete(attr)
			}
		}
		if s.Attributes.Len() > 0 {
			sections = append(sections, s)
		}
	}
	m.Sections = sections
	j.SetManifest(m)
	return removed
}

// sourceBundleHeader renders the Eclipse-SourceBundle value pointing at the
// binary bundle.
func sourceBundleHeader(binarySymbolicName string, version osgi.Version) string {
	return binarySymbolicName + `;version="` + version.String() + `";roots:="."`
}
