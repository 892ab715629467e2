package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"tokbarr/internal/models"

	"github.com/stretchr/testify/require"
)

func TestFetchFileWritesArtifact(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/download/dl-1/file", r.URL.Path)
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("video-bytes"))
	}))
	t.Cleanup(srv.Close)

	dest := filepath.Join(t.TempDir(), "out.mp4")
	c := New(srv.URL)
	require.NoError(t, c.FetchFile(context.Background(), "dl-1", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "video-bytes", string(data))
}

func TestFetchFileSurfacesServerDetail(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{Detail: "Download not completed yet"})
	}))
	t.Cleanup(srv.Close)

	dest := filepath.Join(t.TempDir(), "out.mp4")
	c := New(srv.URL)
	err := c.FetchFile(context.Background(), "dl-1", dest)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "Download not completed yet", apiErr.Detail)

	// No partial file left behind.
	_, statErr := os.Stat(dest)
	require.True(t, os.IsNotExist(statErr))
}

func TestDeleteDownloadErrorMapping(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{Detail: "Download not found"})
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL)
	err := c.DeleteDownload(context.Background(), "missing")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.Status)
}
