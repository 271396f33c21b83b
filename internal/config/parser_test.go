package config

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavehtehrani/cfspeed-install/internal/platform"
)

// mockDetector is a test implementation of platform.Detector.
type mockDetector struct {
	info *platform.Info
	err  error
}

func (m *mockDetector) Detect(ctx context.Context) (*platform.Info, error) {
	return m.info, m.err
}

func TestParser_ParseString_Minimal(t *testing.T) {
	values, err := NewParser(nil).ParseString(context.Background(), `install = { version = "v0.1.0" }`)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{KeyVersion: "v0.1.0"}, values)
}

func TestParser_ParseString_Full(t *testing.T) {
	luaCode := `
		install = {
			version = "v0.2.0",
			install_dir = "~/bin",
			base_url = "https://mirror.example.com/releases",
			api_url = "https://github.example.com/api/v3",
			repo = "someone/fork",
			temp_dir = "/var/tmp",
			timeout = "90s",
			log_level = "debug",
			log_file = "~/.cache/cfspeed-install.log",
			os = "linux",
			arch = "arm64",
		}
	`

	values, err := NewParser(nil).ParseString(context.Background(), luaCode)
	require.NoError(t, err)

	assert.Equal(t, "v0.2.0", values[KeyVersion])
	assert.Equal(t, "~/bin", values[KeyInstallDir])
	assert.Equal(t, "https://mirror.example.com/releases", values[KeyBaseURL])
	assert.Equal(t, "https://github.example.com/api/v3", values[KeyAPIURL])
	assert.Equal(t, "someone/fork", values[KeyRepo])
	assert.Equal(t, "/var/tmp", values[KeyTempDir])
	assert.Equal(t, 90*time.Second, values[KeyTimeout])
	assert.Equal(t, "debug", values[KeyLogLevel])
	assert.Equal(t, "~/.cache/cfspeed-install.log", values[KeyLogFile])
	assert.Equal(t, "linux", values[KeyOS])
	assert.Equal(t, "arm64", values[KeyArch])
}

func TestParser_ParseString_TimeoutSeconds(t *testing.T) {
	values, err := NewParser(nil).ParseString(context.Background(), `install = { timeout = 2.5 }`)
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, values[KeyTimeout])
}

func TestParser_ParseString_Errors(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		message string
	}{
		{"syntax_error", `install = {`, "Lua syntax error"},
		{"missing_table", `version = "v1"`, "missing or invalid 'install' table"},
		{"table_is_string", `install = "v1"`, "missing or invalid 'install' table"},
		{"unknown_field", `install = { instal_dir = "/x" }`, "unknown field in install table"},
		{"wrong_type", `install = { version = 1 }`, "invalid field type"},
		{"array_entry", `install = { "v0.1.0" }`, "invalid install table"},
		{"bad_duration", `install = { timeout = "soon" }`, "invalid timeout"},
		{"bool_timeout", `install = { timeout = true }`, "invalid field type"},
		{"runtime_error", `install = { version = nil .. "x" }`, "Lua syntax error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(nil).ParseString(context.Background(), tt.code)
			require.Error(t, err)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.message, parseErr.Message)
		})
	}
}

func TestParser_ParseString_UnknownFieldListsKnown(t *testing.T) {
	_, err := NewParser(nil).ParseString(context.Background(), `install = { colour = "red" }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"colour"`)
	assert.Contains(t, err.Error(), "install_dir")
	assert.Contains(t, err.Error(), "timeout")
}

func TestParser_ParseString_PlatformConditionals(t *testing.T) {
	luaCode := `
		install = {
			install_dir = platform.is_macos and "/opt/bin" or "/usr/local/bin",
			temp_dir = platform.when(platform.is_aarch64, "/arm-tmp"),
			version = platform.when(platform.triple == "x86_64-unknown-linux-musl", "v0.1.0"),
		}
	`

	tests := []struct {
		name       string
		kernel     string
		machine    string
		installDir string
		tempDir    interface{}
		version    interface{}
	}{
		{"linux_x86_64", "Linux", "x86_64", "/usr/local/bin", nil, "v0.1.0"},
		{"darwin_arm64", "Darwin", "arm64", "/opt/bin", "/arm-tmp", nil},
		{"unsupported_host", "FreeBSD", "riscv64", "/usr/local/bin", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector := &mockDetector{info: &platform.Info{Kernel: tt.kernel, Machine: tt.machine}}

			values, err := NewParser(detector).ParseString(context.Background(), luaCode)
			require.NoError(t, err)

			assert.Equal(t, tt.installDir, values[KeyInstallDir])
			assert.Equal(t, tt.tempDir, values[KeyTempDir])
			assert.Equal(t, tt.version, values[KeyVersion])
		})
	}
}

func TestParser_ParseString_PlatformReadOnly(t *testing.T) {
	detector := &mockDetector{info: &platform.Info{Kernel: "Linux", Machine: "x86_64"}}

	_, err := NewParser(detector).ParseString(context.Background(), `platform.os = "apple-darwin"; install = {}`)
	assert.Error(t, err)
}

func TestParser_ParseString_DetectorError(t *testing.T) {
	detector := &mockDetector{err: errors.New("no host info")}

	_, err := NewParser(detector).ParseString(context.Background(), `install = {}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "platform detection failed")
}

func TestParser_ParseString_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewParser(nil).ParseString(ctx, `while true do end`)
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "Lua execution aborted", parseErr.Message)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParser_ParseString_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := NewParser(nil).ParseString(ctx, `while true do end`)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "Lua execution aborted", parseErr.Message)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatError(t *testing.T) {
	err := &ParseError{
		File:    "/home/u/.config/cfspeed-install/install.lua",
		Message: "Lua syntax error",
		Detail:  "line 3: unexpected symbol\nstack traceback:\n\t[G]: ?",
	}

	short := FormatError(err, false)
	assert.Equal(t, "/home/u/.config/cfspeed-install/install.lua: Lua syntax error: line 3: unexpected symbol", short)

	verbose := FormatError(err, true)
	assert.True(t, strings.Contains(verbose, "Details:\n"))
	assert.Contains(t, verbose, "stack traceback")

	plain := errors.New("plain")
	assert.Equal(t, "plain", FormatError(plain, false))
}
