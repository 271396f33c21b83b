// Package testutil provides utilities for testing the installer in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// EnvPrefix is the prefix of every installer environment variable.
const EnvPrefix = "CLOUDFLARE_SPEED_CLI_"

// Env holds the isolated directories created by SetupTestEnv.
type Env struct {
	Root      string
	Home      string
	ConfigDir string
	TempDir   string
}

// InstallDir is where the installer places the binary for this environment.
func (e *Env) InstallDir() string {
	return filepath.Join(e.Home, ".local", "bin")
}

// SetupTestEnv creates isolated directories for one test and points HOME,
// XDG_CONFIG_HOME and TMPDIR at them. Installer variables inherited from the
// developer's shell are cleared, so tests never touch a real install or a
// real config file.
//
// Cleanup is handled by t.TempDir() and t.Setenv().
func SetupTestEnv(t *testing.T) *Env {
	t.Helper()

	root := t.TempDir()
	env := &Env{
		Root:      root,
		Home:      filepath.Join(root, "home"),
		ConfigDir: filepath.Join(root, "config"),
		TempDir:   filepath.Join(root, "tmp"),
	}

	for _, dir := range []string{env.Home, env.ConfigDir, env.TempDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	t.Setenv("HOME", env.Home)
	t.Setenv("XDG_CONFIG_HOME", env.ConfigDir)
	t.Setenv("TMPDIR", env.TempDir)
	t.Setenv("GITHUB_TOKEN", "")

	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, EnvPrefix) {
			// t.Setenv restores the original value after the test
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}

	return env
}
