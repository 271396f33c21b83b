package platform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		kernel  string
		machine string
		want    string
	}{
		{"linux_x86_64", "Linux", "x86_64", "x86_64-unknown-linux-musl"},
		{"linux_amd64", "linux", "amd64", "x86_64-unknown-linux-musl"},
		{"linux_aarch64", "Linux", "aarch64", "aarch64-unknown-linux-musl"},
		{"linux_arm64", "linux", "arm64", "aarch64-unknown-linux-musl"},
		{"darwin_x86_64", "Darwin", "x86_64", "x86_64-apple-darwin"},
		{"darwin_arm64", "Darwin", "arm64", "aarch64-apple-darwin"},
		{"whitespace_trimmed", "  linux\n", " ARM64 ", "aarch64-unknown-linux-musl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.kernel, tt.machine)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
			assert.False(t, got.IsZero())
		})
	}
}

func TestResolve_AliasesNormalize(t *testing.T) {
	a, err := Resolve("linux", "arm64")
	require.NoError(t, err)
	b, err := Resolve("linux", "aarch64")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, Aarch64, a.Arch)
}

func TestResolve_Unsupported(t *testing.T) {
	tests := []struct {
		name      string
		kernel    string
		machine   string
		wantField string
		wantValue string
	}{
		{"windows", "windows", "x86_64", fieldOS, "windows"},
		{"mingw", "MINGW64_NT-10.0", "x86_64", fieldOS, "MINGW64_NT-10.0"},
		{"freebsd", "FreeBSD", "amd64", fieldOS, "FreeBSD"},
		{"empty_kernel", "", "x86_64", fieldOS, ""},
		{"armv7", "linux", "armv7l", fieldArch, "armv7l"},
		{"i686", "linux", "i686", fieldArch, "i686"},
		{"riscv", "darwin", "riscv64", fieldArch, "riscv64"},
		{"empty_machine", "linux", "", fieldArch, ""},
		{"no_prefix_match", "linux-gnu", "x86_64", fieldOS, "linux-gnu"},
		{"no_substring_match", "linux", "x86_64_v3", fieldArch, "x86_64_v3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.kernel, tt.machine)
			require.Error(t, err)
			assert.True(t, got.IsZero(), "no default triple on failure")

			var classErr *ClassificationError
			require.True(t, errors.As(err, &classErr))
			assert.Equal(t, tt.wantField, classErr.Field)
			assert.Equal(t, tt.wantValue, classErr.Value)
			assert.ErrorIs(t, err, ErrUnsupportedPlatform)
			assert.Contains(t, err.Error(), tt.wantValue)
		})
	}
}

func TestClassificationError_ListsSupported(t *testing.T) {
	_, err := Resolve("sunos", "x86_64")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "darwin, linux")
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "unknown", OSUnknown.String())
	assert.Equal(t, "unknown", ArchUnknown.String())
	assert.True(t, Triple{}.IsZero())
}
