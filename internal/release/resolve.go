package release

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/mod/semver"

	"github.com/kavehtehrani/cfspeed-install/internal/logging"
)

// ErrVersionResolution is the sentinel wrapped by every VersionResolutionError.
var ErrVersionResolution = errors.New("version resolution failed")

// Version sources reported in VersionResolutionError.Source.
const (
	SourceOverride = "override"
	SourceLatest   = "latest release"
)

// VersionResolutionError reports an empty, malformed or unobtainable version.
type VersionResolutionError struct {
	Source string // SourceOverride or SourceLatest
	Value  string // offending value, if any
	Err    error  // underlying cause
}

func (e *VersionResolutionError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "resolve version from %s", e.Source)
	if e.Value != "" {
		fmt.Fprintf(&sb, " (%q)", e.Value)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *VersionResolutionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrVersionResolution}
	}
	return []error{ErrVersionResolution, e.Err}
}

// LatestFetcher returns the tag of the most recent published release.
type LatestFetcher interface {
	LatestTag(ctx context.Context) (string, error)
}

// Resolver picks the release version for a run.
type Resolver struct {
	latest LatestFetcher
	logger logging.Logger
}

// NewResolver creates a Resolver. latest is only consulted when no override is given.
func NewResolver(latest LatestFetcher, logger logging.Logger) *Resolver {
	return &Resolver{latest: latest, logger: logging.OrNop(logger)}
}

// Resolve returns override verbatim when it is non-empty, without network
// access. Otherwise it asks the latest-release endpoint. Either way the
// result must be a single token with no placeholder characters.
func (r *Resolver) Resolve(ctx context.Context, override string) (string, error) {
	if override != "" {
		if err := ValidateTag(override); err != nil {
			return "", &VersionResolutionError{Source: SourceOverride, Value: override, Err: err}
		}
		r.logger.Debug("using pinned version", "version", override)
		r.warnNonSemver(override)
		return override, nil
	}

	if r.latest == nil {
		return "", &VersionResolutionError{Source: SourceLatest, Err: errors.New("no release source configured")}
	}

	tag, err := r.latest.LatestTag(ctx)
	if err != nil {
		return "", &VersionResolutionError{Source: SourceLatest, Err: err}
	}

	if err := ValidateTag(tag); err != nil {
		return "", &VersionResolutionError{Source: SourceLatest, Value: tag, Err: err}
	}

	r.logger.Info("resolved latest release", "version", tag)
	r.warnNonSemver(tag)
	return tag, nil
}

// ValidateTag rejects values that cannot be a release tag: empty or
// whitespace-only, containing whitespace, or containing unexpanded
// template placeholders such as "${VERSION}" or "{{version}}".
func ValidateTag(tag string) error {
	if strings.TrimSpace(tag) == "" {
		return errors.New("version is empty")
	}
	if strings.IndexFunc(tag, unicode.IsSpace) >= 0 {
		return errors.New("version contains whitespace")
	}
	if strings.ContainsAny(tag, "${}") {
		return errors.New("version contains an unexpanded placeholder")
	}
	if strings.ContainsAny(tag, `/\?#`) {
		return errors.New("version contains URL path characters")
	}
	return nil
}

// warnNonSemver logs tags that are not semantic versions. Tags are opaque,
// so this never fails the run, but an odd tag is a likely cause of a 404.
func (r *Resolver) warnNonSemver(tag string) {
	candidate := tag
	if !strings.HasPrefix(candidate, "v") {
		candidate = "v" + candidate
	}
	if !semver.IsValid(candidate) {
		r.logger.Warn("release tag is not a semantic version", "version", tag)
	}
}
