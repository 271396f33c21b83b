package binary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadToFile(t *testing.T) {
	var userAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent.Store(r.Header.Get("User-Agent"))
		w.Write([]byte("archive bytes"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "nested", "file.tar.xz")
	d := NewDownloader(WithUserAgent("test-agent/1.0"))

	n, err := d.DownloadToFile(context.Background(), server.URL+"/file.tar.xz", dest)
	require.NoError(t, err)
	assert.Equal(t, int64(len("archive bytes")), n)
	assert.Equal(t, "test-agent/1.0", userAgent.Load())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "archive bytes", string(data))
	assert.NoFileExists(t, dest+".tmp")
}

func TestDownloadToFile_HTTPErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not_found", http.StatusNotFound},
		{"forbidden", http.StatusForbidden},
		{"server_error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			dest := filepath.Join(t.TempDir(), "file")
			url := server.URL + "/missing"
			_, err := NewDownloader().DownloadToFile(context.Background(), url, dest)
			require.Error(t, err)

			var retErr *RetrievalError
			require.ErrorAs(t, err, &retErr)
			assert.Equal(t, tt.status, retErr.StatusCode)
			assert.Equal(t, url, retErr.URL)
			assert.ErrorIs(t, err, ErrRetrieval)
			assert.Contains(t, err.Error(), url)

			assert.Equal(t, int32(1), hits.Load(), "downloads are attempted exactly once")
			assert.NoFileExists(t, dest)
			assert.NoFileExists(t, dest+".tmp")
		})
	}
}

func TestDownloadToFile_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL + "/file"
	server.Close()

	_, err := NewDownloader().DownloadToFile(context.Background(), url, filepath.Join(t.TempDir(), "file"))

	var retErr *RetrievalError
	require.ErrorAs(t, err, &retErr)
	assert.Zero(t, retErr.StatusCode)
	assert.ErrorIs(t, err, ErrRetrieval)
}

func TestDownloadToFile_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(t.TempDir(), "file")
	_, err := NewDownloader().DownloadToFile(ctx, server.URL, dest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NoFileExists(t, dest)
}

func TestDownloadToFile_CustomClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer server.Close()

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	_, err := NewDownloader(WithHTTPClient(client)).DownloadToFile(context.Background(), server.URL, filepath.Join(t.TempDir(), "f"))

	var retErr *RetrievalError
	require.ErrorAs(t, err, &retErr)
	assert.Equal(t, http.StatusFound, retErr.StatusCode)
}
