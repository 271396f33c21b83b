package binary

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	sha256 "github.com/minio/sha256-simd"
)

// AlgorithmSHA256 names the only supported digest algorithm.
const AlgorithmSHA256 = "SHA-256"

// sha256HexLen is the length of a hex-encoded SHA-256 digest.
const sha256HexLen = 64

// DigestRecord is one entry of a digest sidecar.
// FileName is empty for a sidecar holding only a bare digest.
type DigestRecord struct {
	Hex      string
	FileName string
}

// Verification describes a successful integrity check.
type Verification struct {
	Algorithm string
	File      string
	Digest    string
}

// Verifier checks downloaded archives against their digest sidecar.
type Verifier struct{}

// NewVerifier creates a new verifier
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify checks archivePath against the sidecar at digestPath. The entry
// used is the one naming the archive's base name; a bare digest line also
// applies. A missing entry or a mismatch is an IntegrityError.
func (v *Verifier) Verify(archivePath, digestPath string) (*Verification, error) {
	fileName := filepath.Base(archivePath)

	sidecar, err := os.Open(digestPath)
	if err != nil {
		return nil, &IntegrityError{File: fileName, Reason: fmt.Sprintf("open digest file: %v", err)}
	}
	defer sidecar.Close()

	records, err := ParseDigests(sidecar)
	if err != nil {
		return nil, &IntegrityError{File: fileName, Reason: err.Error()}
	}

	record, ok := FindDigest(records, fileName)
	if !ok {
		return nil, &IntegrityError{
			File:   fileName,
			Reason: fmt.Sprintf("no digest entry for %s in %s", fileName, filepath.Base(digestPath)),
		}
	}

	actual, err := calculateSHA256(archivePath)
	if err != nil {
		return nil, &IntegrityError{File: fileName, Expected: record.Hex, Reason: fmt.Sprintf("calculate checksum: %v", err)}
	}

	// Compare checksums (case-insensitive)
	if !strings.EqualFold(actual, record.Hex) {
		return nil, &IntegrityError{
			File:     fileName,
			Expected: strings.ToLower(record.Hex),
			Actual:   actual,
			Reason:   "checksum mismatch",
		}
	}

	return &Verification{Algorithm: AlgorithmSHA256, File: fileName, Digest: actual}, nil
}

// ParseDigests reads a digest sidecar.
//
// Accepted line formats:
//
//	<hex>  <filename>         (sha256sum text mode)
//	<hex> *<filename>         (sha256sum binary mode)
//	<hex>                     (bare digest)
//	SHA256 (<filename>) = <hex>   (BSD tag format)
//
// Carriage returns are stripped and blank lines skipped, so CRLF and LF
// files parse identically. Lines whose digest is not 64 hex characters are
// ignored; an input with no valid line is an error.
func ParseDigests(r io.Reader) ([]DigestRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read digest file: %w", err)
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var records []DigestRecord
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		record, ok := parseDigestLine(line)
		if !ok {
			continue
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("digest file contains no SHA-256 entries")
	}

	return records, nil
}

func parseDigestLine(line string) (DigestRecord, bool) {
	if rest, ok := strings.CutPrefix(line, "SHA256 ("); ok {
		name, digest, found := strings.Cut(rest, ") = ")
		if !found || !isValidHexHash(strings.TrimSpace(digest)) {
			return DigestRecord{}, false
		}
		return DigestRecord{Hex: strings.TrimSpace(digest), FileName: name}, true
	}

	fields := strings.Fields(line)
	if !isValidHexHash(fields[0]) {
		return DigestRecord{}, false
	}

	// The name is everything after the digest, so names with spaces survive.
	name := strings.TrimSpace(line[len(fields[0]):])
	name = strings.TrimPrefix(name, "*")

	return DigestRecord{Hex: fields[0], FileName: name}, true
}

// FindDigest returns the record for fileName. Exact and base-name matches
// win over a bare digest line.
func FindDigest(records []DigestRecord, fileName string) (DigestRecord, bool) {
	var bare *DigestRecord
	for i := range records {
		r := records[i]
		if r.FileName == "" {
			if bare == nil {
				bare = &records[i]
			}
			continue
		}
		if r.FileName == fileName {
			return r, true
		}
		// Also check basename (for checksums like "dist/file.tar.xz")
		if path.Base(filepath.ToSlash(r.FileName)) == fileName {
			return r, true
		}
	}

	if bare != nil {
		return *bare, true
	}
	return DigestRecord{}, false
}

// calculateSHA256 calculates the SHA256 checksum of a file
func calculateSHA256(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func isValidHexHash(s string) bool {
	if len(s) != sha256HexLen {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
