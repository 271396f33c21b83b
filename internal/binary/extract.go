package binary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/mholt/archives"
)

// MIME types reported by filetype for the supported containers.
const (
	mimeXz  = "application/x-xz"
	mimeGz  = "application/gzip"
	mimeTar = "application/x-tar"
)

// Extractor handles archive extraction
type Extractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract unpacks a tar archive (xz- or gzip-compressed, or plain) into
// destDir. The format is taken from the file's magic bytes, not its name.
// Entries that would land outside destDir fail the whole extraction.
func (e *Extractor) Extract(ctx context.Context, archivePath, destDir string) error {
	archiveName := filepath.Base(archivePath)

	kind, err := filetype.MatchFile(archivePath)
	if err != nil {
		return &ExtractionError{Archive: archiveName, Err: fmt.Errorf("detect format: %w", err)}
	}

	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return &ExtractionError{Archive: archiveName, Err: fmt.Errorf("open archive: %w", err)}
	}
	defer archiveFile.Close()

	var stream io.Reader = archiveFile
	switch kind.MIME.Value {
	case mimeXz, mimeGz:
		var decoder archives.Decompressor = archives.Xz{}
		if kind.MIME.Value == mimeGz {
			decoder = archives.Gz{}
		}
		decoderReader, err := decoder.OpenReader(archiveFile)
		if err != nil {
			return &ExtractionError{Archive: archiveName, Err: fmt.Errorf("open %s stream: %w", kind.Extension, err)}
		}
		defer decoderReader.Close()
		stream = decoderReader
	case mimeTar:
	default:
		format := kind.MIME.Value
		if kind == filetype.Unknown {
			format = "unknown"
		}
		return &ExtractionError{Archive: archiveName, Err: fmt.Errorf("unsupported archive format: %s", format)}
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return &ExtractionError{Archive: archiveName, Err: fmt.Errorf("create dest dir: %w", err)}
	}

	realDest, err := filepath.EvalSymlinks(destDir)
	if err != nil {
		return &ExtractionError{Archive: archiveName, Err: fmt.Errorf("resolve dest dir: %w", err)}
	}

	archive := archives.Tar{}
	if err := archive.Extract(ctx, stream, handleFile(destDir, realDest)); err != nil {
		return &ExtractionError{Archive: archiveName, Err: err}
	}

	return nil
}

// handleFile writes one archive entry below destDir. Names are checked
// lexically against destDir, then every write is checked again against
// realDest with symlinks on disk resolved, so links created by earlier
// entries cannot carry later ones outside.
func handleFile(destDir, realDest string) archives.FileHandler {
	cleanDest := filepath.Clean(destDir)

	return func(ctx context.Context, info archives.FileInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		target, err := safeJoin(cleanDest, info.NameInArchive)
		if err != nil {
			return err
		}

		switch {
		case info.IsDir():
			if err := ensureInside(realDest, target, info.NameInArchive); err != nil {
				return err
			}
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", info.NameInArchive, err)
			}
			return nil

		case info.Mode()&fs.ModeSymlink != 0:
			return writeSymlink(realDest, target, info)

		case info.Mode().IsRegular() && info.LinkTarget == "":
			return writeFile(realDest, target, info)

		default:
			// Hard links, devices and FIFOs have no place in a release archive
			return nil
		}
	}
}

func writeFile(realDest, target string, info archives.FileInfo) error {
	if err := ensureInside(realDest, filepath.Dir(target), info.NameInArchive); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", info.NameInArchive, err)
	}

	// Never write through a link or over a directory left by an earlier entry
	if existing, err := os.Lstat(target); err == nil && !existing.Mode().IsRegular() {
		return fmt.Errorf("illegal file path: %s (existing %s)", info.NameInArchive, existing.Mode().Type())
	}

	src, err := info.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", info.NameInArchive, err)
	}
	defer src.Close()

	// Owner must be able to read and write whatever the archive says
	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()|0600)
	if err != nil {
		return fmt.Errorf("create file %s: %w", info.NameInArchive, err)
	}

	if _, err := io.Copy(outFile, src); err != nil {
		outFile.Close()
		return fmt.Errorf("write file %s: %w", info.NameInArchive, err)
	}

	return outFile.Close()
}

func writeSymlink(realDest, target string, info archives.FileInfo) error {
	if filepath.IsAbs(info.LinkTarget) {
		return fmt.Errorf("illegal symlink %s -> %s", info.NameInArchive, info.LinkTarget)
	}

	parent, err := resolveOnDisk(filepath.Dir(target))
	if err != nil {
		return fmt.Errorf("resolve parent of %s: %w", info.NameInArchive, err)
	}
	if !withinDir(realDest, parent) {
		return fmt.Errorf("illegal file path: %s", info.NameInArchive)
	}

	resolved, err := resolveLink(parent, info.LinkTarget)
	if err != nil || !withinDir(realDest, resolved) {
		return fmt.Errorf("illegal symlink %s -> %s", info.NameInArchive, info.LinkTarget)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", info.NameInArchive, err)
	}

	if err := os.Symlink(info.LinkTarget, target); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("create symlink %s: %w", info.NameInArchive, err)
	}
	return nil
}

// ensureInside rejects path when, with symlinks on disk resolved, it is
// not below realDest.
func ensureInside(realDest, path, name string) error {
	resolved, err := resolveOnDisk(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", name, err)
	}
	if !withinDir(realDest, resolved) {
		return fmt.Errorf("illegal file path: %s", name)
	}
	return nil
}

// resolveOnDisk resolves symlinks in the longest existing prefix of path
// and appends the components that do not exist yet. path must be clean.
func resolveOnDisk(path string) (string, error) {
	var missing []string
	for {
		resolved, err := filepath.EvalSymlinks(path)
		if err == nil {
			return filepath.Join(append([]string{resolved}, missing...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		if _, lerr := os.Lstat(path); lerr == nil {
			// A dangling link cannot be resolved, so nothing may pass through it
			return "", fmt.Errorf("dangling symlink %s", path)
		}
		parent := filepath.Dir(path)
		if parent == path {
			return "", err
		}
		missing = append([]string{filepath.Base(path)}, missing...)
		path = parent
	}
}

// resolveLink follows link, relative to the real directory dir, one
// component at a time so that ".." applies after any symlink on the way.
func resolveLink(dir, link string) (string, error) {
	cur := dir
	for _, part := range strings.Split(filepath.ToSlash(link), "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			cur = filepath.Dir(cur)
		default:
			next, err := resolveOnDisk(filepath.Join(cur, part))
			if err != nil {
				return "", err
			}
			cur = next
		}
	}
	return cur, nil
}

// safeJoin joins name below destDir and rejects results outside it.
// Absolute names are treated as relative to destDir.
func safeJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	if !withinDir(destDir, target) {
		return "", fmt.Errorf("illegal file path: %s", name)
	}
	return target, nil
}

func withinDir(dir, target string) bool {
	return target == dir || strings.HasPrefix(target, dir+string(os.PathSeparator))
}
