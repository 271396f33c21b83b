package testutil

import (
	"archive/tar"
	"bytes"
	"encoding/hex"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/mholt/archives"
	sha256 "github.com/minio/sha256-simd"
)

// Entry is one member of a fixture archive. A name ending in "/" is a
// directory; a non-empty Link makes a symlink.
type Entry struct {
	Name string
	Body string
	Mode int64
	Link string
}

// File returns a regular file entry with mode 0755.
func File(name, body string) Entry {
	return Entry{Name: name, Body: body, Mode: 0o755}
}

// BuildTar returns an uncompressed tar holding entries, in the given order.
func BuildTar(t *testing.T, entries ...Entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.Name, Mode: e.Mode}
		switch {
		case e.Link != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.Link
			if hdr.Mode == 0 {
				hdr.Mode = 0o777
			}
		case strings.HasSuffix(e.Name, "/"):
			hdr.Typeflag = tar.TypeDir
			if hdr.Mode == 0 {
				hdr.Mode = 0o755
			}
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.Body))
			if hdr.Mode == 0 {
				hdr.Mode = 0o644
			}
		}

		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write tar header %s: %v", e.Name, err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := io.WriteString(tw, e.Body); err != nil {
				t.Fatalf("write tar body %s: %v", e.Name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar writer: %v", err)
	}
	return buf.Bytes()
}

// BuildTarXz returns an xz-compressed tar holding entries.
func BuildTarXz(t *testing.T, entries ...Entry) []byte {
	t.Helper()
	return compress(t, archives.Xz{}, BuildTar(t, entries...))
}

// BuildTarGz returns a gzip-compressed tar holding entries.
func BuildTarGz(t *testing.T, entries ...Entry) []byte {
	t.Helper()
	return compress(t, archives.Gz{}, BuildTar(t, entries...))
}

func compress(t *testing.T, c archives.Compressor, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := c.OpenWriter(&buf)
	if err != nil {
		t.Fatalf("open compressor: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close compressor: %v", err)
	}
	return buf.Bytes()
}

// SHA256Hex returns the lowercase hex SHA-256 of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DigestLine formats a sha256sum text-mode line for name.
func DigestLine(data []byte, name string) string {
	return SHA256Hex(data) + "  " + name + "\n"
}

// Names returns the sorted entry names, handy for listing assertions.
func Names(entries ...Entry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}
