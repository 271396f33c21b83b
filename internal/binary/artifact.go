package binary

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kavehtehrani/cfspeed-install/internal/platform"
)

const (
	// DefaultBinaryName is the executable inside the archive and at the destination.
	DefaultBinaryName = "cloudflare-speed-cli"
	// DefaultPackageName prefixes archive and nested directory names.
	DefaultPackageName = "cloudflare-speed-cli"
	// DefaultBaseURL is the release download root; the version is appended as a path segment.
	DefaultBaseURL = "https://github.com/kavehtehrani/cloudflare-speed-cli/releases/download"

	// ArchiveExt is the release archive format (xz-compressed tar).
	ArchiveExt = ".tar.xz"
	// DigestSuffix is appended to the archive URL to get the digest sidecar URL.
	DigestSuffix = ".sha256"
)

// Artifact describes the release archive for one version and platform.
// Every field is derived once by NewArtifact.
type Artifact struct {
	BinaryName  string
	PackageName string
	Version     string
	Triple      platform.Triple

	ArchiveName string // {package}_{arch}-{os}.tar.xz
	ArchiveURL  string // {base}/{version}/{ArchiveName}
	DigestURL   string // ArchiveURL + ".sha256"
	NestedDir   string // {package}-{arch}-{os}
}

// DigestName is the file name of the digest sidecar.
func (a *Artifact) DigestName() string {
	return a.ArchiveName + DigestSuffix
}

// NewArtifact builds the artifact description.
// Pattern: {base}/{version}/{package}_{arch}-{os}.tar.xz
func NewArtifact(binaryName, packageName, version string, triple platform.Triple, baseURL string) (*Artifact, error) {
	if binaryName == "" {
		return nil, fmt.Errorf("binary name is required")
	}
	if packageName == "" {
		return nil, fmt.Errorf("package name is required")
	}
	if version == "" {
		return nil, fmt.Errorf("version is required")
	}
	if triple.OS == platform.OSUnknown || triple.Arch == platform.ArchUnknown {
		return nil, fmt.Errorf("platform triple is required")
	}

	base := strings.TrimRight(baseURL, "/")
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid base URL: %q", baseURL)
	}

	archiveName := fmt.Sprintf("%s_%s%s", packageName, triple, ArchiveExt)
	// One prefix for both URLs keeps archive and digest on the same release.
	releaseURL := base + "/" + url.PathEscape(version)

	return &Artifact{
		BinaryName:  binaryName,
		PackageName: packageName,
		Version:     version,
		Triple:      triple,
		ArchiveName: archiveName,
		ArchiveURL:  releaseURL + "/" + archiveName,
		DigestURL:   releaseURL + "/" + archiveName + DigestSuffix,
		NestedDir:   fmt.Sprintf("%s-%s", packageName, triple),
	}, nil
}
