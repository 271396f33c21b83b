package binary

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// WorkspacePrefix starts the name of every workspace directory.
const WorkspacePrefix = "cfspeed-install-"

// Workspace is a temporary directory owned by a single run. Everything the
// run downloads or extracts lives below it, and Remove deletes it all.
type Workspace struct {
	path  string
	runID string

	once      sync.Once
	removeErr error
}

// NewWorkspace creates a uniquely named directory under root, or under the
// system temp directory when root is empty.
func NewWorkspace(root string) (*Workspace, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0755); err != nil {
			return nil, fmt.Errorf("create temp root: %w", err)
		}
	}

	runID := uuid.NewString()
	dir, err := os.MkdirTemp(root, WorkspacePrefix+runID[:8]+"-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	return &Workspace{path: dir, runID: runID}, nil
}

// Path returns the workspace directory.
func (w *Workspace) Path() string {
	return w.path
}

// RunID identifies the run in log records.
func (w *Workspace) RunID() string {
	return w.runID
}

// Join returns a path below the workspace.
func (w *Workspace) Join(elem ...string) string {
	return filepath.Join(append([]string{w.path}, elem...)...)
}

// List returns the workspace contents relative to its root.
func (w *Workspace) List() []string {
	return listTree(w.path)
}

// LocateBinary finds the extracted binary for a in the workspace. A
// BinaryNotFoundError carries List as the listing.
func (w *Workspace) LocateBinary(a *Artifact) (string, error) {
	return locate(w.path, a, w.List)
}

// Remove deletes the workspace and everything below it. It is safe to call
// more than once; later calls return the first result.
func (w *Workspace) Remove() error {
	w.once.Do(func() {
		if err := os.RemoveAll(w.path); err != nil {
			w.removeErr = fmt.Errorf("remove workspace %s: %w", w.path, err)
		}
	})
	return w.removeErr
}
