// Package platform models the windowing-system/OS/architecture triples that
// platform-specific bundles are built for, and detects the triple of the host.
package platform

import (
	"fmt"
	"strings"
)

// Arch is a processor architecture supported by platform fragments.
type Arch string

const (
	// X86 is a 32-bit x86 architecture.
	X86 Arch = "x86"
	// X64 is a 64-bit x86 architecture.
	X64 Arch = "x64"
)

// OS is an operating system together with its CPU architecture.
// The set of values is closed: not every OS/Arch combination is supported.
type OS string

const (
	WinX64   OS = "WIN_x64"
	WinX86   OS = "WIN_x86"
	LinuxX64 OS = "LINUX_x64"
	LinuxX86 OS = "LINUX_x86"
	MacX64   OS = "MAC_x64"
)

// oses lists every supported OS in declaration order.
var oses = []OS{WinX64, WinX86, LinuxX64, LinuxX86, MacX64}

// IsWindows reports whether o is a Windows variant.
func (o OS) IsWindows() bool { return o == WinX64 || o == WinX86 }

// IsLinux reports whether o is a Linux variant.
func (o OS) IsLinux() bool { return o == LinuxX64 || o == LinuxX86 }

// IsMac reports whether o is a Mac variant.
func (o OS) IsMac() bool { return o == MacX64 }

// Arch returns the architecture of o. Every OS maps to exactly one Arch.
func (o OS) Arch() Arch {
	switch o {
	case WinX64, LinuxX64, MacX64:
		return X64
	case WinX86, LinuxX86:
		return X86
	}
	return ""
}

// Valid reports whether o is one of the enumerated values.
func (o OS) Valid() bool {
	for _, known := range oses {
		if o == known {
			return true
		}
	}
	return false
}

// winMacLinux selects a value by OS family.
func winMacLinux[T any](o OS, win, mac, linux T) T {
	switch {
	case o.IsWindows():
		return win
	case o.IsMac():
		return mac
	default:
		return linux
	}
}

// Triple identifies a platform by windowing system, OS and architecture,
// the way platform-specific bundles are named ("ws.os.arch").
type Triple struct {
	WS   string
	OS   string
	Arch string
}

// FromOS converts an enumerated OS to its triple. The windowing system is
// derived from the OS and never set independently.
func FromOS(o OS) Triple {
	arch := "x86_64"
	if o.Arch() == X86 {
		arch = "x86"
	}
	return Triple{
		WS:   winMacLinux(o, "win32", "cocoa", "gtk"),
		OS:   winMacLinux(o, "win32", "macosx", "linux"),
		Arch: arch,
	}
}

// All returns the triple of every supported OS, in a fixed order.
func All() []Triple {
	triples := make([]Triple, 0, len(oses))
	for _, o := range oses {
		triples = append(triples, FromOS(o))
	}
	return triples
}

// Parse parses a "ws.os.arch" string.
func Parse(s string) (Triple, error) {
	pieces := strings.Split(s, ".")
	if len(pieces) != 3 {
		return Triple{}, &MalformedPlatformError{Input: s}
	}
	for _, p := range pieces {
		if p == "" {
			return Triple{}, &MalformedPlatformError{Input: s}
		}
	}
	return Triple{WS: pieces[0], OS: pieces[1], Arch: pieces[2]}, nil
}

// String returns "ws.os.arch".
func (t Triple) String() string {
	return t.WS + "." + t.OS + "." + t.Arch
}

// PlatformFilter returns the LDAP-style filter used as Eclipse-PlatformFilter
// in a bundle manifest.
func (t Triple) PlatformFilter() string {
	return "(& (osgi.ws=" + t.WS + ") (osgi.os=" + t.OS + ") (osgi.arch=" + t.Arch + ") )"
}

// Property is a single osgi.* platform property.
type Property struct {
	Key   string
	Value string
}

// Properties returns the platform properties in ws, os, arch order.
func (t Triple) Properties() []Property {
	return []Property{
		{Key: "osgi.ws", Value: t.WS},
		{Key: "osgi.os", Value: t.OS},
		{Key: "osgi.arch", Value: t.Arch},
	}
}

var wuffNames = map[Triple]string{
	{WS: "cocoa", OS: "macosx", Arch: "x86_64"}: "macosx-x86_64",
	{WS: "gtk", OS: "linux", Arch: "x86"}:       "linux-x86_32",
	{WS: "gtk", OS: "linux", Arch: "x86_64"}:    "linux-x86_64",
	{WS: "win32", OS: "win32", Arch: "x86"}:     "windows-x86_32",
	{WS: "win32", OS: "win32", Arch: "x86_64"}:  "windows-x86_64",
}

// WuffName returns the folder name the wuff toolchain uses for t.
func (t Triple) WuffName() (string, error) {
	name, ok := wuffNames[t]
	if !ok {
		return "", fmt.Errorf("no wuff folder name for platform %s: %w", t, ErrUnsupportedPlatform)
	}
	return name, nil
}
