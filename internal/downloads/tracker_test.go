package downloads

import (
	"context"
	"sync"
	"testing"
	"time"

	"tokbarr/internal/domain/consts"
	"tokbarr/internal/models"

	"github.com/stretchr/testify/require"
)

// stubStore records flushed status updates without a real database.
type stubStore struct {
	mu      sync.Mutex
	updates []models.StatusUpdate
}

func (s *stubStore) AddDownload(ctx context.Context, d *models.Download) error { return nil }

func (s *stubStore) GetDownload(ctx context.Context, id string) (*models.Download, bool, error) {
	return nil, false, nil
}

func (s *stubStore) ListDownloads(ctx context.Context, limit int) ([]models.Download, error) {
	return nil, nil
}

func (s *stubStore) UpdateDownloadStatuses(ctx context.Context, updates []models.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, updates...)
	return nil
}

func (s *stubStore) DeleteDownload(ctx context.Context, id string) error { return nil }

func (s *stubStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

func TestTrackerFlushesUpdates(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	tracker := NewDownloadTracker(store)
	tracker.Start(context.Background())

	tracker.sendUpdate(models.StatusUpdate{
		DownloadID: "dl-1",
		Status:     consts.DLStatusDownloading,
	})

	require.Eventually(t, func() bool {
		return store.count() == 1
	}, time.Second, 5*time.Millisecond)

	tracker.Stop()
}

func TestSendUpdateAfterStopDoesNotBlock(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	tracker := NewDownloadTracker(store)
	tracker.Start(context.Background())
	tracker.Stop()

	// Well past the channel capacity; a blocked send would hang here.
	finished := make(chan struct{})
	go func() {
		for i := 0; i < 150; i++ {
			tracker.sendUpdate(models.StatusUpdate{
				DownloadID: "dl-late",
				Status:     consts.DLStatusCompleted,
			})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("sendUpdate blocked after tracker stop")
	}
}
