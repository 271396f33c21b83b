package binary

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArtifact(t *testing.T) *Artifact {
	t.Helper()
	a, err := NewArtifact(testBinary, DefaultPackageName, "v0.1.0", linuxX86, testBase)
	require.NoError(t, err)
	return a
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(filepath.Base(path)), 0755))
}

func TestLocateBinary(t *testing.T) {
	a := testArtifact(t)

	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{"nested", []string{filepath.Join(a.NestedDir, a.BinaryName)}, filepath.Join(a.NestedDir, a.BinaryName)},
		{"root", []string{a.BinaryName}, a.BinaryName},
		{"nested_wins_over_root", []string{a.BinaryName, filepath.Join(a.NestedDir, a.BinaryName)}, filepath.Join(a.NestedDir, a.BinaryName)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for _, f := range tt.files {
				touch(t, filepath.Join(root, f))
			}

			got, err := LocateBinary(root, a)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(root, tt.want), got)
		})
	}
}

func TestLocateBinary_NotFound(t *testing.T) {
	a := testArtifact(t)
	root := t.TempDir()
	touch(t, filepath.Join(root, "downloads", a.ArchiveName))
	touch(t, filepath.Join(root, "other-dir", a.BinaryName))
	// A directory with the binary's name is not the binary
	require.NoError(t, os.MkdirAll(filepath.Join(root, a.NestedDir, a.BinaryName), 0755))

	_, err := LocateBinary(root, a)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBinaryNotFound)

	var nfErr *BinaryNotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, a.BinaryName, nfErr.Binary)
	assert.Equal(t, []string{filepath.Join(a.NestedDir, a.BinaryName), a.BinaryName}, nfErr.Candidates)
	assert.Contains(t, nfErr.Listing, "downloads"+string(filepath.Separator))
	assert.Contains(t, nfErr.Listing, filepath.Join("downloads", a.ArchiveName))
	assert.Contains(t, nfErr.Listing, filepath.Join("other-dir", a.BinaryName))

	msg := err.Error()
	assert.Contains(t, msg, "looked for:")
	assert.Contains(t, msg, "workspace contents:")
	assert.Contains(t, msg, filepath.Join("other-dir", a.BinaryName))
}

func TestLocateBinary_SymlinkIgnored(t *testing.T) {
	a := testArtifact(t)
	root := t.TempDir()
	touch(t, filepath.Join(root, "real"))
	require.NoError(t, os.Symlink("real", filepath.Join(root, a.BinaryName)))

	_, err := LocateBinary(root, a)
	assert.ErrorIs(t, err, ErrBinaryNotFound)
}

func TestLocateBinary_EmptyWorkspace(t *testing.T) {
	_, err := LocateBinary(t.TempDir(), testArtifact(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(empty)")
}

func TestListTree_Capped(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < maxListingEntries+5; i++ {
		touch(t, filepath.Join(root, fmt.Sprintf("f%03d", i)))
	}

	listing := listTree(root)
	require.Len(t, listing, maxListingEntries+1)
	assert.Equal(t, "f000", listing[0])
	assert.Equal(t, "... (5 more)", listing[maxListingEntries])
}
