package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/osgify/cli/internal/errors"
	"github.com/osgify/cli/internal/osgi"
	"github.com/osgify/cli/internal/testutil"
)

func TestParseInstructions(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "single pair",
			raw:  []string{"Bundle-Vendor=Acme"},
			want: map[string]string{"Bundle-Vendor": "Acme"},
		},
		{
			name: "value keeps later equals signs",
			raw:  []string{`Import-Package=org.slf4j;version="[1.7,2)",*`},
			want: map[string]string{"Import-Package": `org.slf4j;version="[1.7,2)",*`},
		},
		{
			name: "empty value",
			raw:  []string{"Bundle-Name="},
			want: map[string]string{"Bundle-Name": ""},
		},
		{
			name:    "missing separator",
			raw:     []string{"Bundle-Vendor"},
			wantErr: true,
		},
		{
			name:    "empty key",
			raw:     []string{"=Acme"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseInstructions(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, oerrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWrap_PlainJar(t *testing.T) {
	isolateHome(t)
	jar := testutil.PlainJar(t, t.TempDir(), "commons-io-2.15.1.jar")
	outDir := t.TempDir()

	require.NoError(t, execute(NewWrapCmd(), jar,
		"-o", outDir,
		"--symbolic-name", "org.apache.commons.io",
		"-i", "Bundle-Vendor=Apache",
	))

	matches, err := filepath.Glob(filepath.Join(outDir, "org.apache.commons.io_2.15.1.*.jar"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	mf := testutil.ReadManifest(t, matches[0])
	assert.Equal(t, "org.apache.commons.io", mf.Main.Value(osgi.BundleSymbolicName))
	assert.Equal(t, "Apache", mf.Main.Value(osgi.BundleVendor))
}

func TestWrap_MissingJar(t *testing.T) {
	isolateHome(t)

	err := execute(NewWrapCmd(), filepath.Join(t.TempDir(), "missing.jar"), "-o", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCodeFromError(err))
}

func TestWrap_InvalidPlatform(t *testing.T) {
	isolateHome(t)
	jar := testutil.PlainJar(t, t.TempDir(), "swt-4.30.jar")

	err := execute(NewWrapCmd(), jar, "-o", t.TempDir(), "--platform", "linux")
	require.Error(t, err)
	assert.Equal(t, ExitPlatformError, ExitCodeFromError(err))
}
