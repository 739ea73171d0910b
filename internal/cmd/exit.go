// Package cmd provides command implementations for the osgify CLI.
package cmd

// Process exit codes.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitValidationError indicates the build file or a feature graph is
	// invalid.
	ExitValidationError = 2

	// ExitSynthesisError indicates one or more bundles could not be produced.
	ExitSynthesisError = 3

	// ExitPermissionDenied indicates insufficient filesystem permissions.
	ExitPermissionDenied = 4

	// ExitNotFound indicates a jar, report or config file was not found.
	ExitNotFound = 5

	// ExitPlatformError indicates an unknown or unsupported platform.
	ExitPlatformError = 6
)

// ExitCodeName returns the name of the exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitSuccess:
		return "Success"
	case ExitGeneralError:
		return "General Error"
	case ExitValidationError:
		return "Validation Error"
	case ExitSynthesisError:
		return "Synthesis Error"
	case ExitPermissionDenied:
		return "Permission Denied"
	case ExitNotFound:
		return "Not Found"
	case ExitPlatformError:
		return "Platform Error"
	default:
		return "Unknown"
	}
}
