// Package server sets up the Tokbarr server.
package server

import (
	"context"
	"errors"
	"net/http"
	"tokbarr/internal/contracts"
	"tokbarr/internal/domain/consts"
	"tokbarr/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

var (
	ds contracts.DownloadStore
	bs contracts.BatchStore
	dq contracts.DownloadQueue

	downloadsDir string
)

// NewRouter returns an http Handler serving the Tokbarr API.
func NewRouter(s contracts.Store, queue contracts.DownloadQueue, dlDir string) http.Handler {
	// Inject stores
	ds = s.DownloadStore()
	bs = s.BatchStore()
	dq = queue
	downloadsDir = dlDir

	// Initialize router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(allowCORS)

	// --- API Routes ---
	r.Route("/api", func(r chi.Router) {
		r.Get("/", handleRoot)
		r.Get("/downloads", handleListDownloads)

		r.Route("/download", func(r chi.Router) {
			r.Post("/", handleStartBatch)
			r.Get("/{id}/status", handleDownloadStatus)
			r.Get("/{id}/file", handleDownloadFile)
			r.Delete("/{id}", handleDeleteDownload)
		})

		r.Get("/batch/{id}/status", handleBatchStatus)
	})

	return r
}

// StartServer starts the HTTP server and shuts it down when ctx is cancelled.
func StartServer(ctx context.Context, addr string, s contracts.Store, queue contracts.DownloadQueue, dlDir string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: NewRouter(s, queue, dlDir),
	}

	errCh := make(chan error, 1)
	go func() {
		logging.S("Tokbarr web server running on http://localhost%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), consts.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// allowCORS opens the API up to browser front-ends on other origins.
func allowCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
