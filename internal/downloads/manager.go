package downloads

import (
	"context"
	"sync"
	"tokbarr/internal/contracts"
	"tokbarr/internal/logging"
	"tokbarr/internal/models"
	"tokbarr/internal/scraper"
)

// DownloadManager runs queued downloads through a bounded worker pool.
type DownloadManager struct {
	tracker      *DownloadTracker
	scraper      *scraper.Scraper
	downloadDir  string
	cookieSource string
	sem          chan struct{}
	wg           sync.WaitGroup
	ctx          context.Context
}

// NewDownloadManager builds the manager and starts its status tracker.
func NewDownloadManager(ctx context.Context, store contracts.DownloadStore, scr *scraper.Scraper, downloadDir, cookieSource string, workers int) *DownloadManager {
	if workers <= 0 {
		workers = 1
	}

	tracker := NewDownloadTracker(store)
	tracker.Start(ctx)

	return &DownloadManager{
		tracker:      tracker,
		scraper:      scr,
		downloadDir:  downloadDir,
		cookieSource: cookieSource,
		sem:          make(chan struct{}, workers),
		ctx:          ctx,
	}
}

// Enqueue schedules pending downloads for background processing.
func (m *DownloadManager) Enqueue(downloads []*models.Download, quality string) {
	for _, d := range downloads {
		d := d
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()

			select {
			case m.sem <- struct{}{}:
				defer func() { <-m.sem }()
			case <-m.ctx.Done():
				return
			}

			dl, err := NewVideoDownload(m.ctx, d, m.tracker, m.scraper, m.downloadDir, quality, m.cookieSource, nil)
			if err != nil {
				logging.E("Failed to create download job for %q: %v", d.URL, err)
				return
			}

			if err := dl.Execute(); err != nil {
				logging.E("Download failed for %q: %v", d.URL, err)
			}
		}()
	}
}

// Stop waits for in-flight downloads and flushes remaining status updates.
func (m *DownloadManager) Stop() {
	m.wg.Wait()
	m.tracker.Stop()
}
