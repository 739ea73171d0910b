package bnd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/osgify/cli/internal/osgi"
)

// manifestModTime is the timestamp of a synthesized manifest entry. A fixed
// value keeps repeated writes of the same jar byte identical.
var manifestModTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Entry is a single jar entry held in memory.
type Entry struct {
	Name     string
	Data     []byte
	Modified time.Time
	Method   uint16
}

// IsDir reports whether the entry is a directory.
func (e *Entry) IsDir() bool {
	return strings.HasSuffix(e.Name, "/")
}

// Jar is an in-memory jar archive with ordered entries.
type Jar struct {
	Source  string
	entries []*Entry
	index   map[string]int
}

// NewJar creates an empty jar.
func NewJar() *Jar {
	return &Jar{index: make(map[string]int)}
}

// OpenJar reads every entry of the archive at path into memory. The file
// handle is released before returning.
func OpenJar(path string) (*Jar, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening jar %s: %w", path, err)
	}
	defer r.Close()

	j := NewJar()
	j.Source = path
	for _, f := range r.File {
		data, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s from %s: %w", f.Name, path, err)
		}
		j.Put(&Entry{
			Name:     f.Name,
			Data:     data,
			Modified: f.Modified,
			Method:   f.Method,
		})
	}
	return j, nil
}

// ReadJarManifest reads only META-INF/MANIFEST.MF of the archive at path. It
// returns nil without error when the archive has no manifest.
func ReadJarManifest(path string) (*osgi.Manifest, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening jar %s: %w", path, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != osgi.ManifestPath {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading manifest of %s: %w", path, err)
		}
		m, err := osgi.ReadManifest(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parsing manifest of %s: %w", path, err)
		}
		return m, nil
	}
	return nil, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Len returns the number of entries.
func (j *Jar) Len() int {
	return len(j.entries)
}

// Names returns the entry names in archive order.
func (j *Jar) Names() []string {
	names := make([]string, 0, len(j.entries))
	for _, e := range j.entries {
		names = append(names, e.Name)
	}
	return names
}

// Get returns the named entry.
func (j *Jar) Get(name string) (*Entry, bool) {
	i, ok := j.index[name]
	if !ok {
		return nil, false
	}
	return j.entries[i], true
}

// Put adds or replaces an entry. A replaced entry keeps its position.
func (j *Jar) Put(e *Entry) {
	if i, ok := j.index[e.Name]; ok {
		j.entries[i] = e
		return
	}
	j.index[e.Name] = len(j.entries)
	j.entries = append(j.entries, e)
}

// Remove deletes the named entry and reports whether it existed.
func (j *Jar) Remove(name string) bool {
	i, ok := j.index[name]
	if !ok {
		return false
	}
	j.entries = append(j.entries[:i], j.entries[i+1:]...)
	delete(j.index, name)
	for k := i; k < len(j.entries); k++ {
		j.index[j.entries[k].Name] = k
	}
	return true
}

// Directory returns the names of the files directly inside dir, in archive
// order. Nested entries and directory entries are not included.
func (j *Jar) Directory(dir string) []string {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	var names []string
	for _, e := range j.entries {
		if !strings.HasPrefix(e.Name, prefix) || e.IsDir() {
			continue
		}
		if strings.Contains(e.Name[len(prefix):], "/") {
			continue
		}
		names = append(names, e.Name)
	}
	return names
}

// Manifest parses META-INF/MANIFEST.MF. It returns nil without error when the
// jar has no manifest.
func (j *Jar) Manifest() (*osgi.Manifest, error) {
	e, ok := j.Get(osgi.ManifestPath)
	if !ok {
		return nil, nil
	}
	m, err := osgi.ReadManifest(bytes.NewReader(e.Data))
	if err != nil {
		return nil, fmt.Errorf("parsing manifest of %s: %w", j.Source, err)
	}
	return m, nil
}

// SetManifest replaces the manifest entry.
func (j *Jar) SetManifest(m *osgi.Manifest) {
	j.Put(&Entry{
		Name:     osgi.ManifestPath,
		Data:     m.Bytes(),
		Modified: manifestModTime,
		Method:   zip.Deflate,
	})
}

// Write writes the jar to w. The META-INF/ directory and the manifest are
// written first, every other entry follows in archive order. With compress
// false all entries are stored.
func (j *Jar) Write(w io.Writer, compress bool) error {
	zw := zip.NewWriter(w)

	ordered := make([]*Entry, 0, len(j.entries))
	if e, ok := j.Get("META-INF/"); ok {
		ordered = append(ordered, e)
	}
	if e, ok := j.Get(osgi.ManifestPath); ok {
		ordered = append(ordered, e)
	}
	for _, e := range j.entries {
		if e.Name == "META-INF/" || e.Name == osgi.ManifestPath {
			continue
		}
		ordered = append(ordered, e)
	}

	for _, e := range ordered {
		method := zip.Store
		if compress && !e.IsDir() {
			method = zip.Deflate
		}
		hdr := &zip.FileHeader{
			Name:     e.Name,
			Method:   method,
			Modified: e.Modified,
		}
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("writing entry %s: %w", e.Name, err)
		}
		if e.IsDir() {
			continue
		}
		if _, err := fw.Write(e.Data); err != nil {
			return fmt.Errorf("writing entry %s: %w", e.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing jar: %w", err)
	}
	return nil
}

// WriteFile writes the jar to path, creating or truncating it.
func (j *Jar) WriteFile(path string, compress bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return j.Write(f, compress)
}
