// Package models holds data models for Tokbarr.
package models

import (
	"time"
	"tokbarr/internal/domain/consts"
)

// Download represents a single download record.
//
// A download is created as part of a batch but persists independently of it
// afterward, the history view is batch-agnostic.
type Download struct {
	ID          string          `json:"id"`
	URL         string          `json:"url"`
	Status      consts.DLStatus `json:"status"`
	Filename    string          `json:"filename,omitempty"`
	FileSize    int64           `json:"file_size,omitempty"`
	Title       string          `json:"title,omitempty"`
	Duration    float64         `json:"duration,omitempty"`
	Thumbnail   string          `json:"thumbnail,omitempty"` // base64 encoded image payload
	ErrorMsg    string          `json:"error_message,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// Batch groups downloads submitted together under one identifier.
type Batch struct {
	ID          string    `json:"batch_id"`
	TotalURLs   int       `json:"total_urls"`
	DownloadIDs []string  `json:"download_ids,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StatusCounts maps a status label to the number of batch items in it.
// Derived from the download rows, never authoritative on its own.
type StatusCounts map[consts.DLStatus]int

// Quiescent reports whether no item in the batch is pending or in progress.
func (sc StatusCounts) Quiescent() bool {
	return sc[consts.DLStatusPending] == 0 && sc[consts.DLStatusDownloading] == 0
}

// StatusUpdate models updates to the download status of a batch item.
type StatusUpdate struct {
	DownloadID string
	URL        string
	Status     consts.DLStatus
	Filename   string
	FileSize   int64
	Title      string
	Duration   float64
	Thumbnail  string
	Error      error
}
