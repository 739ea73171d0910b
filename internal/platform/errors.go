package platform

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedPlatform indicates the host platform is not one of the
	// enumerated platforms.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrMalformedPlatform indicates a platform string is not "ws.os.arch".
	ErrMalformedPlatform = errors.New("malformed platform string")
)

// UnsupportedPlatformError reports the probe property that could not be mapped.
type UnsupportedPlatformError struct {
	Property string
	Value    string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Property, e.Value)
}

// Unwrap returns ErrUnsupportedPlatform.
func (e *UnsupportedPlatformError) Unwrap() error {
	return ErrUnsupportedPlatform
}

// MalformedPlatformError reports an unparseable platform string.
type MalformedPlatformError struct {
	Input string
}

func (e *MalformedPlatformError) Error() string {
	return fmt.Sprintf("%q should have the form 'ws.os.arch'", e.Input)
}

// Unwrap returns ErrMalformedPlatform.
func (e *MalformedPlatformError) Unwrap() error {
	return ErrMalformedPlatform
}
