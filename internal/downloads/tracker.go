// Package downloads handles file downloading commands and operations.
package downloads

import (
	"context"
	"time"
	"tokbarr/internal/contracts"
	"tokbarr/internal/domain/consts"
	"tokbarr/internal/logging"
	"tokbarr/internal/models"
)

// DownloadTracker drains status updates into the download store.
type DownloadTracker struct {
	updates chan models.StatusUpdate
	done    chan struct{}
	dlStore contracts.DownloadStore
}

// NewDownloadTracker returns the model used for tracking downloads.
func NewDownloadTracker(store contracts.DownloadStore) *DownloadTracker {
	return &DownloadTracker{
		updates: make(chan models.StatusUpdate, 100),
		done:    make(chan struct{}),
		dlStore: store,
	}
}

// Start starts download tracking.
func (t *DownloadTracker) Start(ctx context.Context) {
	go t.processUpdates(ctx)
}

// Stop stops download tracking.
func (t *DownloadTracker) Stop() {
	close(t.done)
}

// sendUpdate pushes the update into the processing channel. Updates sent
// after Stop are dropped rather than blocking the sender.
func (t *DownloadTracker) sendUpdate(u models.StatusUpdate) {
	if u.DownloadID == "" {
		logging.E("Invalid status update, missing download ID: %+v", u)
		return
	}

	select {
	case t.updates <- u:
	case <-t.done:
		logging.W("Tracker stopped, dropping status update for download %s", u.DownloadID)
	}
}

// processUpdates processes download status updates.
func (t *DownloadTracker) processUpdates(ctx context.Context) {
	for {
		select {
		case <-t.done:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case update := <-t.updates:
					t.flushUpdates(ctx, []models.StatusUpdate{update})
				default:
					return
				}
			}

		case update := <-t.updates:
			logging.I("Status update for download %s (URL %q): %s",
				update.DownloadID, update.URL, update.Status)
			t.flushUpdates(ctx, []models.StatusUpdate{update})
		}
	}
}

// flushUpdates flushes pending download status updates to the database.
func (t *DownloadTracker) flushUpdates(ctx context.Context, updates []models.StatusUpdate) {
	if len(updates) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, consts.DatabaseTimeout)
	defer cancel()

	// Retry logic for transient failures
	backoff := consts.RetryBackoff
	maxRetries := consts.DefaultMaxRetries

	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := t.dlStore.UpdateDownloadStatuses(ctx, updates); err != nil {
			if attempt == maxRetries-1 {
				logging.E("Failed to update download statuses after %d attempts: %v", maxRetries, err)
				return
			}
			logging.W("Retrying update after failure (attempt %d/%d): %v",
				attempt+1, maxRetries, err)
			time.Sleep(backoff * time.Duration(attempt+1))
			continue
		}
		break
	}
	logging.D(2, "Successfully flushed %d status updates", len(updates))
}
