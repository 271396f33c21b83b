package release

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	tag   string
	err   error
	calls int
}

func (f *fakeFetcher) LatestTag(ctx context.Context) (string, error) {
	f.calls++
	return f.tag, f.err
}

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (l *recordingLogger) Info(msg string, keysAndValues ...interface{})  {}
func (l *recordingLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.warnings = append(l.warnings, msg)
}
func (l *recordingLogger) Error(msg string, keysAndValues ...interface{}) {}

func TestResolver_OverrideNeverContactsEndpoint(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"tag_name":"v9.9.9"}`))
	}))
	defer server.Close()

	resolver := NewResolver(NewClient(WithBaseURL(server.URL)), nil)

	for _, override := range []string{"v0.1.0", "0.1.0", "nightly-2025-01-01"} {
		got, err := resolver.Resolve(context.Background(), override)
		require.NoError(t, err)
		assert.Equal(t, override, got, "override is used verbatim")
	}
	assert.Zero(t, hits.Load())
}

func TestResolver_Latest(t *testing.T) {
	fetcher := &fakeFetcher{tag: "v0.2.0"}
	got, err := NewResolver(fetcher, nil).Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "v0.2.0", got)
	assert.Equal(t, 1, fetcher.calls)
}

func TestResolver_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name       string
		override   string
		latest     string
		wantSource string
	}{
		{"override_whitespace_only", "   ", "", SourceOverride},
		{"override_placeholder_dollar", "$VERSION", "", SourceOverride},
		{"override_placeholder_braces", "{{version}}", "", SourceOverride},
		{"override_shell_expansion", "${VERSION}", "", SourceOverride},
		{"override_inner_space", "v0.1 .0", "", SourceOverride},
		{"override_trailing_newline", "v0.1.0\n", "", SourceOverride},
		{"override_path", "../v0.1.0", "", SourceOverride},
		{"latest_empty", "", "", SourceLatest},
		{"latest_whitespace", "", " \t", SourceLatest},
		{"latest_placeholder", "", "${TAG}", SourceLatest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &fakeFetcher{tag: tt.latest}
			got, err := NewResolver(fetcher, nil).Resolve(context.Background(), tt.override)
			require.Error(t, err)
			assert.Empty(t, got)

			var resErr *VersionResolutionError
			require.True(t, errors.As(err, &resErr))
			assert.Equal(t, tt.wantSource, resErr.Source)
			assert.ErrorIs(t, err, ErrVersionResolution)

			if tt.wantSource == SourceOverride {
				assert.Zero(t, fetcher.calls)
			}
		})
	}
}

func TestResolver_FetchFailureKeepsCause(t *testing.T) {
	cause := &StatusError{URL: "https://api.github.com/x", StatusCode: http.StatusServiceUnavailable}
	_, err := NewResolver(&fakeFetcher{err: cause}, nil).Resolve(context.Background(), "")
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrVersionResolution)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "503")
}

func TestResolver_NoFetcher(t *testing.T) {
	_, err := NewResolver(nil, nil).Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrVersionResolution)
}

func TestResolver_WarnsOnNonSemver(t *testing.T) {
	log := &recordingLogger{}
	resolver := NewResolver(&fakeFetcher{tag: "release-2025"}, log)

	got, err := resolver.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "release-2025", got)
	assert.Len(t, log.warnings, 1)

	log.warnings = nil
	_, err = resolver.Resolve(context.Background(), "0.4.2")
	require.NoError(t, err)
	assert.Empty(t, log.warnings, "bare semver without v prefix is accepted quietly")
}

func TestValidateTag(t *testing.T) {
	assert.NoError(t, ValidateTag("v0.1.0"))
	assert.NoError(t, ValidateTag("v1.0.0-rc.1+build.5"))
	assert.Error(t, ValidateTag(""))
	assert.Error(t, ValidateTag("v0.1.0?x=1"))
}
