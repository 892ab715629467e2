package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"tokbarr/internal/database"
	"tokbarr/internal/database/repo"
	"tokbarr/internal/domain/consts"
	"tokbarr/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// stubQueue records enqueued downloads instead of running yt-dlp.
type stubQueue struct {
	mu       sync.Mutex
	enqueued []*models.Download
	quality  string
}

func (q *stubQueue) Enqueue(downloads []*models.Download, quality string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, downloads...)
	q.quality = quality
}

func (q *stubQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.enqueued)
}

// newTestServer wires a throwaway database and stub queue behind the router.
//
// The router injects package-level stores, so these tests do not run parallel.
func newTestServer(t *testing.T) (*httptest.Server, *repo.Store, *stubQueue, string) {
	t.Helper()

	dir := t.TempDir()
	db, err := database.InitDB(filepath.Join(dir, "tokbarr-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.DB.Close()
	})

	store := repo.InitStores(db.DB)
	queue := &stubQueue{}

	srv := httptest.NewServer(NewRouter(store, queue, dir))
	t.Cleanup(srv.Close)

	return srv, store, queue, dir
}

func postBatch(t *testing.T, srv *httptest.Server, req models.BatchRequest) *http.Response {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/download", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestStartBatchRejectsEmpty(t *testing.T) {
	srv, _, queue, _ := newTestServer(t)

	resp := postBatch(t, srv, models.BatchRequest{URLs: []string{}})
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Zero(t, queue.count())
}

func TestStartBatchCreatesPendingRows(t *testing.T) {
	srv, _, queue, _ := newTestServer(t)

	resp := postBatch(t, srv, models.BatchRequest{
		URLs: []string{
			"https://www.tiktok.com/@user/video/1",
			"https://www.tiktok.com/@user/video/2",
		},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var br models.BatchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&br))
	require.NotEmpty(t, br.BatchID)
	require.Equal(t, 2, br.TotalURLs)

	// Both rows exist as pending and went to the queue with the default quality.
	require.Equal(t, 2, queue.count())
	require.Equal(t, consts.QualityUltraHD, queue.quality)

	statusResp, err := http.Get(srv.URL + "/api/batch/" + br.BatchID + "/status")
	require.NoError(t, err)
	defer statusResp.Body.Close()
	require.Equal(t, http.StatusOK, statusResp.StatusCode)

	var bsr models.BatchStatusResponse
	require.NoError(t, json.NewDecoder(statusResp.Body).Decode(&bsr))
	require.Equal(t, br.BatchID, bsr.BatchID)
	require.Len(t, bsr.Downloads, 2)
	require.Equal(t, 2, bsr.StatusCounts[consts.DLStatusPending])
	require.False(t, bsr.StatusCounts.Quiescent())
}

func TestDownloadStatus(t *testing.T) {
	srv, store, _, _ := newTestServer(t)
	ctx := context.Background()

	d := &models.Download{
		ID:        uuid.NewString(),
		URL:       "https://www.tiktok.com/@user/video/8",
		Status:    consts.DLStatusPending,
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.DownloadStore().AddDownload(ctx, d))

	resp, err := http.Get(srv.URL + "/api/download/" + d.ID + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.Download
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, d.ID, got.ID)
	require.Equal(t, consts.DLStatusPending, got.Status)

	// Unknown ID
	resp, err = http.Get(srv.URL + "/api/download/" + uuid.NewString() + "/status")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBatchStatusNotFound(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/batch/" + uuid.NewString() + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDownloadFileStates(t *testing.T) {
	srv, store, _, dir := newTestServer(t)
	ctx := context.Background()

	// Unknown ID
	resp, err := http.Get(srv.URL + "/api/download/" + uuid.NewString() + "/file")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Pending download is not retrievable yet
	pending := &models.Download{
		ID:        uuid.NewString(),
		URL:       "https://www.tiktok.com/@user/video/3",
		Status:    consts.DLStatusPending,
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.DownloadStore().AddDownload(ctx, pending))

	resp, err = http.Get(srv.URL + "/api/download/" + pending.ID + "/file")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Completed download streams the artifact
	completed := &models.Download{
		ID:        uuid.NewString(),
		URL:       "https://www.tiktok.com/@user/video/4",
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.DownloadStore().AddDownload(ctx, completed))
	require.NoError(t, store.DownloadStore().UpdateDownloadStatuses(ctx, []models.StatusUpdate{
		{DownloadID: completed.ID, Status: consts.DLStatusCompleted, Filename: completed.ID + ".mp4"},
	}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, completed.ID+".mp4"), []byte("video-bytes"), 0o644))

	resp, err = http.Get(srv.URL + "/api/download/" + completed.ID + "/file")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Disposition"), completed.ID+".mp4")
}

func TestDeleteDownload(t *testing.T) {
	srv, store, _, dir := newTestServer(t)
	ctx := context.Background()

	d := &models.Download{
		ID:        uuid.NewString(),
		URL:       "https://www.tiktok.com/@user/video/5",
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.DownloadStore().AddDownload(ctx, d))
	require.NoError(t, store.DownloadStore().UpdateDownloadStatuses(ctx, []models.StatusUpdate{
		{DownloadID: d.ID, Status: consts.DLStatusCompleted, Filename: d.ID + ".mp4"},
	}))

	filePath := filepath.Join(dir, d.ID+".mp4")
	require.NoError(t, os.WriteFile(filePath, []byte("video-bytes"), 0o644))

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/download/"+d.ID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Row and file are both gone.
	_, found, err := store.DownloadStore().GetDownload(ctx, d.ID)
	require.NoError(t, err)
	require.False(t, found)
	_, err = os.Stat(filePath)
	require.True(t, os.IsNotExist(err))

	// A second delete reports not found.
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListDownloadsNewestFirst(t *testing.T) {
	srv, store, _, _ := newTestServer(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	older := &models.Download{ID: uuid.NewString(), URL: "https://www.tiktok.com/@u/video/6", CreatedAt: base}
	newer := &models.Download{ID: uuid.NewString(), URL: "https://www.tiktok.com/@u/video/7", CreatedAt: base.Add(time.Minute)}
	require.NoError(t, store.DownloadStore().AddDownload(ctx, older))
	require.NoError(t, store.DownloadStore().AddDownload(ctx, newer))

	resp, err := http.Get(srv.URL + "/api/downloads")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []models.Download
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 2)
	require.Equal(t, newer.ID, list[0].ID)
	require.Equal(t, older.ID, list[1].ID)
}
