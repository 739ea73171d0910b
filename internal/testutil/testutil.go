// Package testutil provides test helpers for building jars and reading them back.
package testutil

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/osgify/cli/internal/osgi"
)

// JarEntry is a file placed into a test jar.
type JarEntry struct {
	Name    string
	Content string
}

// fixtureTime is the modification time of every entry in a test jar.
var fixtureTime = time.Date(2014, time.March, 1, 12, 0, 0, 0, time.UTC)

// WriteFile creates a file with the given content in the specified directory.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// WriteJar creates a jar named name in dir holding the given entries in order.
func WriteJar(t *testing.T, dir, name string, entries ...JarEntry) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.Name, Method: zip.Deflate, Modified: fixtureTime})
		if err != nil {
			t.Fatalf("failed to add %s to jar: %v", e.Name, err)
		}
		if _, err := io.WriteString(w, e.Content); err != nil {
			t.Fatalf("failed to write %s to jar: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close jar: %v", err)
	}
	return WriteFile(t, dir, name, buf.String())
}

// PlainJar creates a library jar without OSGi headers.
func PlainJar(t *testing.T, dir, name string) string {
	t.Helper()
	return WriteJar(t, dir, name,
		JarEntry{Name: "META-INF/MANIFEST.MF", Content: "Manifest-Version: 1.0\r\nCreated-By: test\r\n\r\n"},
		JarEntry{Name: "org/example/foo/Foo.class", Content: "\xca\xfe\xba\xbe foo"},
		JarEntry{Name: "org/example/foo/util/Util.class", Content: "\xca\xfe\xba\xbe util"},
	)
}

// BundleJar creates a jar that already carries a Bundle-SymbolicName.
func BundleJar(t *testing.T, dir, name, symbolicName, version string) string {
	t.Helper()
	manifest := "Manifest-Version: 1.0\r\n" +
		"Bundle-ManifestVersion: 2\r\n" +
		"Bundle-SymbolicName: " + symbolicName + "\r\n" +
		"Bundle-Version: " + version + "\r\n" +
		"Export-Package: org.example.bundle\r\n\r\n"
	return WriteJar(t, dir, name,
		JarEntry{Name: "META-INF/MANIFEST.MF", Content: manifest},
		JarEntry{Name: "org/example/bundle/Bundle.class", Content: "\xca\xfe\xba\xbe bundle"},
	)
}

// ReadManifest returns the parsed manifest of the jar at path.
func ReadManifest(t *testing.T, path string) *osgi.Manifest {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open jar %s: %v", path, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != osgi.ManifestPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open manifest: %v", err)
		}
		defer rc.Close()
		m, err := osgi.ReadManifest(rc)
		if err != nil {
			t.Fatalf("failed to parse manifest: %v", err)
		}
		return m
	}
	t.Fatalf("jar %s has no manifest", path)
	return nil
}

// EntryNames returns the entry names of the jar at path.
func EntryNames(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open jar %s: %v", path, err)
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}
