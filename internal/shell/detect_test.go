package shell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectShell_FromEnv(t *testing.T) {
	tests := []struct {
		name      string
		shellEnv  string
		wantShell ShellType
	}{
		{"bash", "/bin/bash", ShellBash},
		{"zsh", "/usr/bin/zsh", ShellZsh},
		{"fish", "/usr/local/bin/fish", ShellFish},
		{"homebrew_zsh", "/opt/homebrew/bin/zsh", ShellZsh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SHELL", tt.shellEnv)

			result := DetectShell(context.Background())
			assert.Equal(t, tt.wantShell, result.Shell)
			assert.Equal(t, "$SHELL environment variable", result.Method)
			assert.Equal(t, "high", result.Confidence)
			assert.Equal(t, tt.shellEnv, result.ShellPath)
		})
	}
}

func TestDetectShell_UnsupportedEnvFallsBack(t *testing.T) {
	t.Setenv("SHELL", "/bin/ksh")

	result := DetectShell(context.Background())
	require.NotNil(t, result)
	// The parent process of the test binary may or may not be a shell
	assert.NotEqual(t, "$SHELL environment variable", result.Method)
	if result.Shell == ShellUnknown {
		assert.Equal(t, "none", result.Confidence)
	} else {
		assert.Equal(t, "parent process", result.Method)
	}
}

func TestParseShellFromPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want ShellType
	}{
		{"bash", "/bin/bash", ShellBash},
		{"zsh_uppercase", "/bin/ZSH", ShellZsh},
		{"login_shell", "-zsh", ShellZsh},
		{"fish", "fish", ShellFish},
		{"ksh", "/bin/ksh", ShellUnknown},
		{"sh", "/bin/sh", ShellUnknown},
		{"empty", "", ShellUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseShellFromPath(tt.path))
		})
	}
}

func TestValidateShell(t *testing.T) {
	for _, s := range GetSupportedShells() {
		assert.NoError(t, ValidateShell(s))
	}

	err := ValidateShell(ShellType("tcsh"))
	var unsupported *UnsupportedShellError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "unsupported shell: tcsh (supported: bash, zsh, fish)", err.Error())
}
