package platform

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// Probe carries the host properties native platform detection is based on.
type Probe struct {
	// OSName is the host operating system name, e.g. "Linux" or "windows".
	OSName string
	// OSArch is the architecture token reported for the OS, e.g. "amd64".
	OSArch string
	// ProgramFilesX86 is the value of the ProgramFiles(x86) environment
	// variable. It is only set on 64-bit Windows.
	ProgramFilesX86 string
	// DataModel is the bit width of the running process, "32" or "64".
	DataModel string
}

// HostProbe reads the probe properties of the current process.
func HostProbe() Probe {
	return Probe{
		OSName:          runtime.GOOS,
		OSArch:          runtime.GOARCH,
		ProgramFilesX86: os.Getenv("ProgramFiles(x86)"),
		DataModel:       strconv.Itoa(strconv.IntSize),
	}
}

// Detector resolves the native and running platform from a Probe.
// Results are computed once and cached for the lifetime of the Detector.
type Detector struct {
	probe func() Probe

	nativeOnce sync.Once
	native     OS
	nativeErr  error

	runningOnce sync.Once
	running     OS
	runningErr  error
}

// NewDetector creates a Detector reading its properties from probe.
func NewDetector(probe func() Probe) *Detector {
	if probe == nil {
		probe = HostProbe
	}
	return &Detector{probe: probe}
}

// NativeOS returns the OS of the host. A 32-bit process on 64-bit Windows
// reports WinX64.
func (d *Detector) NativeOS() (OS, error) {
	d.nativeOnce.Do(func() {
		d.native, d.nativeErr = nativeOS(d.probe())
	})
	return d.native, d.nativeErr
}

// RunningOS returns the OS as seen by the running process. A 32-bit process
// on 64-bit Windows reports WinX86.
func (d *Detector) RunningOS() (OS, error) {
	d.runningOnce.Do(func() {
		d.running, d.runningErr = d.runningOS()
	})
	return d.running, d.runningErr
}

// Native returns the triple of the host platform.
func (d *Detector) Native() (Triple, error) {
	o, err := d.NativeOS()
	if err != nil {
		return Triple{}, err
	}
	return FromOS(o), nil
}

// Running returns the triple of the running process.
func (d *Detector) Running() (Triple, error) {
	o, err := d.RunningOS()
	if err != nil {
		return Triple{}, err
	}
	return FromOS(o), nil
}

// RunningArch returns the architecture of the running process. It only
// depends on the data model property, not on OS detection.
func (d *Detector) RunningArch() (Arch, error) {
	return runningArch(d.probe().DataModel)
}

func (d *Detector) runningOS() (OS, error) {
	native, err := d.NativeOS()
	if err != nil {
		return "", err
	}
	arch, err := d.RunningArch()
	if err != nil {
		return "", err
	}
	x86 := arch == X86
	switch {
	case native.IsWindows():
		if x86 {
			return WinX86, nil
		}
		return WinX64, nil
	case native.IsMac():
		return MacX64, nil
	default:
		if x86 {
			return LinuxX86, nil
		}
		return LinuxX64, nil
	}
}

func nativeOS(p Probe) (OS, error) {
	name := strings.ToLower(p.OSName)
	isWin := strings.Contains(name, "win")
	isMac := strings.Contains(name, "mac") || strings.Contains(name, "darwin")
	isLinux := strings.Contains(name, "nix") || strings.Contains(name, "nux") || strings.Contains(name, "aix")

	switch {
	case isMac:
		return MacX64, nil
	case isWin:
		if p.ProgramFilesX86 != "" {
			return WinX64, nil
		}
		return WinX86, nil
	case isLinux:
		switch p.OSArch {
		case "i386", "x86", "386":
			return LinuxX86, nil
		case "x86_64", "amd64":
			return LinuxX64, nil
		}
		return "", &UnsupportedPlatformError{Property: "os.arch", Value: p.OSArch}
	}
	return "", &UnsupportedPlatformError{Property: "os.name", Value: p.OSName}
}

func runningArch(dataModel string) (Arch, error) {
	switch dataModel {
	case "32":
		return X86, nil
	case "64":
		return X64, nil
	}
	return "", &UnsupportedPlatformError{Property: "data model", Value: dataModel}
}

var (
	defaultDetector     *Detector
	defaultDetectorOnce sync.Once
)

// Default returns the process-wide Detector backed by HostProbe.
func Default() *Detector {
	defaultDetectorOnce.Do(func() {
		defaultDetector = NewDetector(HostProbe)
	})
	return defaultDetector
}

// Native returns the host platform triple using the process-wide Detector.
func Native() (Triple, error) {
	return Default().Native()
}

// Running returns the running platform triple using the process-wide Detector.
func Running() (Triple, error) {
	return Default().Running()
}
