package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
	"tokbarr/internal/domain/consts"
	"tokbarr/internal/logging"
	"tokbarr/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const programName = "Tokbarr"
const programVersion = "1.0"

// handleRoot returns the API banner.
func handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": programName + " API",
		"version": programVersion,
	})
}

// handleListDownloads lists the most recent download records, batch-agnostic.
func handleListDownloads(w http.ResponseWriter, r *http.Request) {
	downloads, err := ds.ListDownloads(r.Context(), consts.HistoryLimit)
	if err != nil {
		logging.E("Failed to list downloads: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, downloads)
}

// handleStartBatch creates a batch of pending downloads and enqueues them.
func handleStartBatch(w http.ResponseWriter, r *http.Request) {
	var req models.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "No URLs provided")
		return
	}

	if req.Quality == "" {
		req.Quality = consts.QualityUltraHD
	}

	now := time.Now()
	downloads := make([]*models.Download, 0, len(req.URLs))

	for _, u := range req.URLs {
		downloads = append(downloads, &models.Download{
			ID:        uuid.NewString(),
			URL:       u,
			Status:    consts.DLStatusPending,
			CreatedAt: now,
		})
	}

	b := &models.Batch{
		ID:        uuid.NewString(),
		TotalURLs: len(req.URLs),
		CreatedAt: now,
	}

	// Single transaction, a failed submit leaves no stranded pending rows.
	if err := bs.AddBatch(r.Context(), b, downloads); err != nil {
		logging.E("Failed to insert batch: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	dq.Enqueue(downloads, req.Quality)

	writeJSON(w, http.StatusOK, models.BatchResponse{
		BatchID:   b.ID,
		TotalURLs: b.TotalURLs,
		Message:   fmt.Sprintf("Started downloading %d videos", b.TotalURLs),
	})
}

// handleBatchStatus reports live per-item status and derived counts for a batch.
func handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	b, found, err := bs.GetBatch(r.Context(), id)
	if err != nil {
		logging.E("Failed to query batch %q: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Batch not found")
		return
	}

	downloads, counts, err := bs.BatchDownloads(r.Context(), id)
	if err != nil {
		logging.E("Failed to query downloads for batch %q: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, models.BatchStatusResponse{
		BatchID:      b.ID,
		TotalURLs:    b.TotalURLs,
		StatusCounts: counts,
		Downloads:    downloads,
	})
}

// handleDownloadStatus reports a single download record.
func handleDownloadStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, found, err := ds.GetDownload(r.Context(), id)
	if err != nil {
		logging.E("Failed to query download %q: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Download not found")
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// handleDownloadFile streams the completed artifact to the caller.
func handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, found, err := ds.GetDownload(r.Context(), id)
	if err != nil {
		logging.E("Failed to query download %q: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Download not found")
		return
	}

	if d.Status != consts.DLStatusCompleted {
		writeError(w, http.StatusBadRequest, "Download not completed yet")
		return
	}

	filePath := filepath.Join(downloadsDir, d.Filename)
	if _, err := os.Stat(filePath); err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Filename))
	http.ServeFile(w, r, filePath)
}

// handleDeleteDownload deletes a download record and its file.
func handleDeleteDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, found, err := ds.GetDownload(r.Context(), id)
	if err != nil {
		logging.E("Failed to query download %q: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Download not found")
		return
	}

	if d.Filename != "" {
		filePath := filepath.Join(downloadsDir, d.Filename)
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			logging.W("Could not remove file %q: %v", filePath, err)
		}
	}

	if err := ds.DeleteDownload(r.Context(), id); err != nil {
		logging.E("Failed to delete download %q: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Download deleted successfully"})
}
