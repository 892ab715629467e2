package downloads

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
	"tokbarr/internal/domain/consts"
	"tokbarr/internal/logging"
	"tokbarr/internal/models"
	"tokbarr/internal/scraper"
)

// Options configure a download operation.
type Options struct {
	MaxRetries    int
	RetryInterval time.Duration
}

var DefaultOptions = Options{
	MaxRetries:    consts.DefaultMaxRetries,
	RetryInterval: consts.RetryInterval,
}

// ongoingDownloads guards against the same URL downloading twice at once.
var ongoingDownloads sync.Map

// VideoDownload is a single download job flowing through the worker pool.
type VideoDownload struct {
	Download     *models.Download
	Quality      string
	DownloadDir  string
	CookieSource string
	DLTracker    *DownloadTracker
	Scraper      *scraper.Scraper
	Options      Options
	Context      context.Context

	// runCmd is swapped out in tests.
	runCmd func(*exec.Cmd) error
}

// NewVideoDownload creates a download operation with specified options.
func NewVideoDownload(ctx context.Context, d *models.Download, tracker *DownloadTracker, scr *scraper.Scraper, downloadDir, quality, cookieSource string, opts *Options) (*VideoDownload, error) {
	if d == nil {
		return nil, errors.New("download cannot be nil")
	}

	dl := &VideoDownload{
		Download:     d,
		Quality:      quality,
		DownloadDir:  downloadDir,
		CookieSource: cookieSource,
		DLTracker:    tracker,
		Scraper:      scr,
		Context:      ctx,
		runCmd:       (*exec.Cmd).Run,
	}

	if opts != nil {
		dl.Options = *opts
	} else {
		dl.Options = DefaultOptions
	}

	return dl, nil
}

// Execute performs the download with retries.
func (d *VideoDownload) Execute() error {
	if d.Download == nil {
		return errors.New("download model is nil")
	}

	if _, exists := ongoingDownloads.LoadOrStore(d.Download.URL, struct{}{}); exists {
		logging.I("Skipping duplicate download for: %s", d.Download.URL)
		return nil
	}
	defer ongoingDownloads.Delete(d.Download.URL)

	var lastErr error
	for attempt := 1; attempt <= d.Options.MaxRetries; attempt++ {
		logging.I("Starting video download attempt %d/%d for URL: %s",
			attempt, d.Options.MaxRetries, d.Download.URL)

		select {
		case <-d.Context.Done():
			logging.I("Context is done for download with URL %q", d.Download.URL)
			return d.failDownload(d.Context.Err())
		default:
			if err := d.downloadAttempt(); err != nil {
				lastErr = err
				logging.E("Download attempt %d failed: %v", attempt, err)

				if attempt < d.Options.MaxRetries {
					select {
					case <-d.Context.Done():
						return d.failDownload(d.Context.Err())
					case <-time.After(d.Options.RetryInterval):
						continue
					}
				}
			} else {
				logging.S("Successfully completed video download for URL: %s", d.Download.URL)
				return nil
			}
		}
	}

	err := fmt.Errorf("all %d download attempts failed for %s: %w",
		d.Options.MaxRetries, d.Download.URL, lastErr)
	return d.failDownload(err)
}

// downloadAttempt performs a single download attempt, moving the record from
// downloading to completed on success.
func (d *VideoDownload) downloadAttempt() error {
	d.DLTracker.sendUpdate(models.StatusUpdate{
		DownloadID: d.Download.ID,
		URL:        d.Download.URL,
		Status:     consts.DLStatusDownloading,
	})

	// Soft metadata pass before handing off to yt-dlp.
	var meta *scraper.PageMeta
	if d.Scraper != nil {
		var err error
		if meta, err = d.Scraper.ScrapeMeta(d.Download.URL); err != nil {
			logging.D(1, "Metadata scrape failed for %q: %v", d.Download.URL, err)
			meta = nil
		}
	}

	outputPath := filepath.Join(d.DownloadDir, d.Download.ID+".%(ext)s")
	cmd := buildVideoCommand(d.Context, d.Download.URL, outputPath, d.Quality, d.CookieSource)

	if err := d.runCmd(cmd); err != nil {
		return fmt.Errorf("yt-dlp failed: %w", err)
	}

	videoPath, err := findVideoFile(d.DownloadDir, d.Download.ID)
	if err != nil {
		return err
	}

	fi, err := os.Stat(videoPath)
	if err != nil {
		return fmt.Errorf("failed to stat downloaded file %q: %w", videoPath, err)
	}

	title, duration := readInfoJSON(d.DownloadDir, d.Download.ID)
	if title == "" && meta != nil {
		title = meta.Title
	}

	thumbnail := embedThumbnail(d.DownloadDir, d.Download.ID)
	if thumbnail == "" && meta != nil && meta.ThumbnailURL != "" {
		if thumbnail, err = d.Scraper.FetchThumbnailBase64(d.Context, meta.ThumbnailURL); err != nil {
			logging.W("Could not process thumbnail: %v", err)
			thumbnail = ""
		}
	}

	d.DLTracker.sendUpdate(models.StatusUpdate{
		DownloadID: d.Download.ID,
		URL:        d.Download.URL,
		Status:     consts.DLStatusCompleted,
		Filename:   filepath.Base(videoPath),
		FileSize:   fi.Size(),
		Title:      title,
		Duration:   duration,
		Thumbnail:  thumbnail,
	})

	return nil
}

// failDownload marks the record failed and returns the original error.
func (d *VideoDownload) failDownload(err error) error {
	d.DLTracker.sendUpdate(models.StatusUpdate{
		DownloadID: d.Download.ID,
		URL:        d.Download.URL,
		Status:     consts.DLStatusFailed,
		Error:      err,
	})
	return err
}
