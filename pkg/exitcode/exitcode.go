// pkg/exitcode/exitcode.go - standardized exit codes for spruce.

package exitcode

import (
	"errors"

	"github.com/windowsadmins/spruce/pkg/deprecate"
	"github.com/windowsadmins/spruce/pkg/fileops"
	"github.com/windowsadmins/spruce/pkg/icons"
	"github.com/windowsadmins/spruce/pkg/recategorize"
	"github.com/windowsadmins/spruce/pkg/repo"
)

// Exit codes for spruce CLI
const (
	Success         = 0
	GeneralError    = 1
	ConfigError     = 2
	ValidationError = 3
	FileSystemError = 4
	Aborted         = 5
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case ValidationError:
		return "Validation error"
	case FileSystemError:
		return "File system error"
	case Aborted:
		return "Aborted"
	default:
		return "Unknown error"
	}
}

// ErrAborted is returned when the user declines a confirmation prompt.
var ErrAborted = errors.New("aborted")

// Coded attaches an explicit exit code to an error.
type Coded struct {
	Code int
	Err  error
}

func (e *Coded) Error() string { return e.Err.Error() }
func (e *Coded) Unwrap() error { return e.Err }

// WithCode wraps err so For reports code.
func WithCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &Coded{Code: code, Err: err}
}

// For maps an error to the exit code the CLI should return.
func For(err error) int {
	if err == nil {
		return Success
	}
	var coded *Coded
	if errors.As(err, &coded) {
		return coded.Code
	}

	var structErr *repo.StructureError
	var opErr *repo.FileOperationError
	var conflict *recategorize.ConflictError
	switch {
	case errors.Is(err, ErrAborted):
		return Aborted
	case errors.As(err, &conflict),
		errors.Is(err, deprecate.ErrNoSelection),
		errors.Is(err, icons.ErrConflictingModes):
		return ValidationError
	case errors.As(err, &structErr),
		errors.As(err, &opErr),
		errors.Is(err, fileops.ErrInsufficientSpace):
		return FileSystemError
	}
	return GeneralError
}
