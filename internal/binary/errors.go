package binary

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinels wrapped by the stage error types.
var (
	ErrRetrieval      = errors.New("retrieval failed")
	ErrIntegrity      = errors.New("integrity check failed")
	ErrExtraction     = errors.New("extraction failed")
	ErrBinaryNotFound = errors.New("binary not found")
	ErrInstall        = errors.New("install failed")
)

// RetrievalError reports a failed download. StatusCode is zero when the
// request never produced a response.
type RetrievalError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *RetrievalError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download %s: HTTP %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *RetrievalError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRetrieval}
	}
	return []error{ErrRetrieval, e.Err}
}

// IntegrityError reports a digest mismatch or a sidecar without a usable entry.
type IntegrityError struct {
	File     string // artifact file name
	Expected string // expected hex digest (empty if no entry matched)
	Actual   string // computed hex digest (empty if not computed)
	Reason   string
}

func (e *IntegrityError) Error() string {
	if e.Expected != "" && e.Actual != "" {
		return fmt.Sprintf("%s for %s:\nexpected: %s\nactual:   %s", e.Reason, e.File, e.Expected, e.Actual)
	}
	return fmt.Sprintf("verify %s: %s", e.File, e.Reason)
}

func (e *IntegrityError) Unwrap() error {
	return ErrIntegrity
}

// ExtractionError reports a corrupt, unsupported or unsafe archive.
type ExtractionError struct {
	Archive string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Archive, e.Err)
}

func (e *ExtractionError) Unwrap() []error {
	return []error{ErrExtraction, e.Err}
}

// BinaryNotFoundError reports that no candidate path held the executable.
// Candidates and Listing are relative to the workspace.
type BinaryNotFoundError struct {
	Binary     string
	Candidates []string
	Listing    []string
}

func (e *BinaryNotFoundError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "binary %q not found in archive\nlooked for:\n", e.Binary)
	for _, c := range e.Candidates {
		fmt.Fprintf(&sb, "  %s\n", c)
	}
	sb.WriteString("workspace contents:")
	if len(e.Listing) == 0 {
		sb.WriteString(" (empty)")
	}
	for _, entry := range e.Listing {
		fmt.Fprintf(&sb, "\n  %s", entry)
	}
	return sb.String()
}

func (e *BinaryNotFoundError) Unwrap() error {
	return ErrBinaryNotFound
}

// InstallError reports a failure to place the binary at its destination.
type InstallError struct {
	Path string
	Err  error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("install %s: %v", e.Path, e.Err)
}

func (e *InstallError) Unwrap() []error {
	return []error{ErrInstall, e.Err}
}
