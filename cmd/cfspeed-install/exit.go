package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/kavehtehrani/cfspeed-install/internal/binary"
	"github.com/kavehtehrani/cfspeed-install/internal/platform"
	"github.com/kavehtehrani/cfspeed-install/internal/release"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitGeneric     = 1 // configuration and usage errors
	ExitRetrieval   = 2 // version resolution or download
	ExitIntegrity   = 3
	ExitInstall     = 4 // extraction, locating or placing the binary
	ExitUnsupported = 5
	ExitInterrupted = 130
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// withExitCode wraps err in an ExitError carrying its classified code.
func withExitCode(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: classifyExitCode(err), Err: err}
}

// classifyExitCode maps an installer error to the process exit code.
// Interrupts win over the stage that happened to be running.
func classifyExitCode(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, platform.ErrUnsupportedPlatform):
		return ExitUnsupported
	case errors.Is(err, release.ErrVersionResolution), errors.Is(err, binary.ErrRetrieval):
		return ExitRetrieval
	case errors.Is(err, binary.ErrIntegrity):
		return ExitIntegrity
	case errors.Is(err, binary.ErrExtraction),
		errors.Is(err, binary.ErrBinaryNotFound),
		errors.Is(err, binary.ErrInstall):
		return ExitInstall
	default:
		return ExitGeneric
	}
}
