package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kavehtehrani/cfspeed-install/internal/shell"
	"github.com/kavehtehrani/cfspeed-install/internal/testutil"
)

func TestPrintPathHint(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	dir := env.InstallDir()

	tests := []struct {
		name    string
		pathEnv string
		shell   shell.ShellType
		want    []string
	}{
		{
			name:    "already_on_path",
			pathEnv: "/usr/bin:" + dir,
			shell:   shell.ShellBash,
		},
		{
			name:    "bash",
			pathEnv: "/usr/bin",
			shell:   shell.ShellBash,
			want:    []string{filepath.Join(env.Home, ".bashrc"), `export PATH="$HOME/.local/bin:$PATH"`},
		},
		{
			name:    "fish",
			pathEnv: "/usr/bin",
			shell:   shell.ShellFish,
			want:    []string{filepath.Join(env.ConfigDir, "fish", "config.fish"), "fish_add_path $HOME/.local/bin"},
		},
		{
			name:    "unknown_shell",
			pathEnv: "",
			shell:   shell.ShellUnknown,
			want:    []string{"your shell startup file", `export PATH="$HOME/.local/bin:$PATH"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printPathHint(&buf, dir, tt.pathEnv, tt.shell)

			if len(tt.want) == 0 {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), "is not on your PATH")
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestShortDigest(t *testing.T) {
	assert.Equal(t, "0123456789ab", shortDigest("0123456789abcdef"))
	assert.Equal(t, "abc", shortDigest("abc"))
}
