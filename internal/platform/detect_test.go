package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticProbe(p Probe) func() Probe {
	return func() Probe { return p }
}

func TestDetector_Native(t *testing.T) {
	tests := []struct {
		name  string
		probe Probe
		want  OS
	}{
		{"linux amd64", Probe{OSName: "Linux", OSArch: "amd64", DataModel: "64"}, LinuxX64},
		{"linux i386", Probe{OSName: "linux", OSArch: "i386", DataModel: "32"}, LinuxX86},
		{"aix x86_64", Probe{OSName: "AIX", OSArch: "x86_64", DataModel: "64"}, LinuxX64},
		{"mac", Probe{OSName: "Mac OS X", OSArch: "aarch64", DataModel: "64"}, MacX64},
		{"darwin", Probe{OSName: "darwin", OSArch: "arm64", DataModel: "64"}, MacX64},
		{"windows 64", Probe{OSName: "Windows 10", ProgramFilesX86: `C:\Program Files (x86)`, DataModel: "32"}, WinX64},
		{"windows 32", Probe{OSName: "windows", DataModel: "32"}, WinX86},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewDetector(staticProbe(tt.probe)).NativeOS()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetector_NativeUnsupported(t *testing.T) {
	_, err := NewDetector(staticProbe(Probe{OSName: "plan9", DataModel: "64"})).Native()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
	assert.Contains(t, err.Error(), "os.name")

	_, err = NewDetector(staticProbe(Probe{OSName: "linux", OSArch: "riscv64", DataModel: "64"})).Native()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
	assert.Contains(t, err.Error(), "os.arch")
}

func TestDetector_NativeIsCached(t *testing.T) {
	calls := 0
	d := NewDetector(func() Probe {
		calls++
		return Probe{OSName: "linux", OSArch: "amd64", DataModel: "64"}
	})

	first, err := d.Native()
	require.NoError(t, err)
	second, err := d.Native()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "probe should be read once for native detection")
}

func TestDetector_RunningDiffersFromNative(t *testing.T) {
	d := NewDetector(staticProbe(Probe{
		OSName:          "Windows 11",
		ProgramFilesX86: `C:\Program Files (x86)`,
		DataModel:       "32",
	}))

	native, err := d.NativeOS()
	require.NoError(t, err)
	running, err := d.RunningOS()
	require.NoError(t, err)

	assert.Equal(t, WinX64, native)
	assert.Equal(t, WinX86, running)
}

func TestDetector_RunningArchIndependentOfOS(t *testing.T) {
	d := NewDetector(staticProbe(Probe{OSName: "plan9", DataModel: "32"}))

	arch, err := d.RunningArch()
	require.NoError(t, err)
	assert.Equal(t, X86, arch)

	_, err = NewDetector(staticProbe(Probe{DataModel: "16"})).RunningArch()
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
}

func TestDetector_RunningMacAlwaysX64(t *testing.T) {
	got, err := NewDetector(staticProbe(Probe{OSName: "mac", DataModel: "32"})).Running()
	require.NoError(t, err)
	assert.Equal(t, FromOS(MacX64), got)
}

func TestDefault_IsProcessScoped(t *testing.T) {
	assert.Same(t, Default(), Default())
}
