package binary

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// maxListingEntries caps the workspace listing attached to BinaryNotFoundError.
const maxListingEntries = 200

// LocateBinary finds the executable after extraction into root. Release
// packaging has varied between a {package}-{arch}-{os}/ directory and the
// archive root, so both are tried, nested first. Extend the candidate list
// if packaging changes again.
func LocateBinary(root string, a *Artifact) (string, error) {
	return locate(root, a, func() []string { return listTree(root) })
}

// locate tries the candidate paths below root. list is only called when
// none of them holds the binary.
func locate(root string, a *Artifact, list func() []string) (string, error) {
	candidates := []string{
		filepath.Join(a.NestedDir, a.BinaryName),
		a.BinaryName,
	}

	for _, rel := range candidates {
		path := filepath.Join(root, rel)
		info, err := os.Lstat(path)
		if err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}

	return "", &BinaryNotFoundError{
		Binary:     a.BinaryName,
		Candidates: candidates,
		Listing:    list(),
	}
}

// listTree returns the sorted paths below root, relative to it, with a
// trailing separator on directories.
func listTree(root string) []string {
	var entries []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			entries = append(entries, fmt.Sprintf("%s (unreadable: %v)", path, err))
			return nil
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if d.IsDir() {
			rel += string(filepath.Separator)
		}
		entries = append(entries, rel)
		return nil
	})
	if err != nil {
		entries = append(entries, fmt.Sprintf("(listing failed: %v)", err))
	}

	sort.Strings(entries)
	if len(entries) > maxListingEntries {
		more := len(entries) - maxListingEntries
		entries = append(entries[:maxListingEntries], fmt.Sprintf("... (%d more)", more))
	}
	return entries
}
