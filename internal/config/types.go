package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/kavehtehrani/cfspeed-install/internal/binary"
	"github.com/kavehtehrani/cfspeed-install/internal/logging"
	"github.com/kavehtehrani/cfspeed-install/internal/release"
)

// Config is the effective installer configuration after all layers are
// merged.
type Config struct {
	// Version pins a release tag. Empty means the latest release.
	Version string `mapstructure:"version"`

	// InstallDir receives the binary. A leading ~ is expanded by Load.
	InstallDir string `mapstructure:"install_dir"`

	// BaseURL is the release download root.
	BaseURL string `mapstructure:"base_url"`

	// APIURL is the GitHub REST API root used for the latest-release lookup.
	APIURL string `mapstructure:"api_url"`

	// Repo is the GitHub repository as owner/name.
	Repo string `mapstructure:"repo"`

	// TempDir is the parent of the per-run workspace. Empty means os.TempDir().
	TempDir string `mapstructure:"temp_dir"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `mapstructure:"timeout"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	// GitHubToken authenticates API calls. Never written back out.
	GitHubToken string `mapstructure:"github_token"`

	// OS and Arch replace host detection when both are set.
	OS   string `mapstructure:"os"`
	Arch string `mapstructure:"arch"`

	// ConfigFile is the Lua file that was loaded, if any.
	ConfigFile string `mapstructure:"-"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		InstallDir: filepath.Join("~", ".local", "bin"),
		BaseURL:    binary.DefaultBaseURL,
		APIURL:     release.DefaultAPIBaseURL,
		Repo:       release.DefaultOwner + "/" + release.DefaultRepo,
		Timeout:    binary.DefaultTimeout,
		LogLevel:   "warn",
	}
}

// RepoParts splits Repo into owner and name. Call Validate first.
func (c *Config) RepoParts() (owner, name string) {
	owner, name, _ = strings.Cut(c.Repo, "/")
	return owner, name
}

// HasPlatformOverride reports whether OS and Arch replace host detection.
func (c *Config) HasPlatformOverride() bool {
	return c.OS != "" && c.Arch != ""
}

// Validate performs basic validation on a Config.
func (c *Config) Validate() error {
	if c.InstallDir == "" {
		return &ValidationError{Field: KeyInstallDir, Message: "cannot be empty"}
	}
	if !filepath.IsAbs(c.InstallDir) {
		return &ValidationError{Field: KeyInstallDir, Message: fmt.Sprintf("must be an absolute path (got: %s)", c.InstallDir)}
	}

	if c.TempDir != "" && !filepath.IsAbs(c.TempDir) {
		return &ValidationError{Field: KeyTempDir, Message: fmt.Sprintf("must be an absolute path (got: %s)", c.TempDir)}
	}

	if err := validateHTTPURL(c.BaseURL); err != nil {
		return &ValidationError{Field: KeyBaseURL, Message: err.Error()}
	}
	if err := validateHTTPURL(c.APIURL); err != nil {
		return &ValidationError{Field: KeyAPIURL, Message: err.Error()}
	}

	if !repoPattern.MatchString(c.Repo) {
		return &ValidationError{Field: KeyRepo, Message: fmt.Sprintf("invalid repository %q (expected: owner/name)", c.Repo)}
	}

	if c.Timeout <= 0 {
		return &ValidationError{Field: KeyTimeout, Message: fmt.Sprintf("must be positive (got: %s)", c.Timeout)}
	}

	if !logging.ValidLevel(c.LogLevel) {
		return &ValidationError{Field: KeyLogLevel, Message: fmt.Sprintf("unknown level %q (expected: debug, info, warn, error)", c.LogLevel)}
	}

	if (c.OS == "") != (c.Arch == "") {
		return &ValidationError{Field: KeyOS + "/" + KeyArch, Message: "must be set together"}
	}

	if c.Version != "" {
		if err := release.ValidateTag(c.Version); err != nil {
			return &ValidationError{Field: KeyVersion, Message: err.Error()}
		}
	}

	return nil
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

// repoPattern matches GitHub owner/name pairs.
var repoPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*/[A-Za-z0-9._-]+$`)

func validateHTTPURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("URL must use https:// or http:// scheme (got: %s)", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host: %s", raw)
	}

	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
