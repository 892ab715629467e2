// Package contracts defines interfaces decoupling consumers from implementations.
package contracts

import (
	"context"
	"tokbarr/internal/models"
)

// Store grants access to the data stores.
type Store interface {
	DownloadStore() DownloadStore
	BatchStore() BatchStore
}

// DownloadStore performs download row operations.
type DownloadStore interface {
	AddDownload(ctx context.Context, d *models.Download) error
	GetDownload(ctx context.Context, id string) (*models.Download, bool, error)
	ListDownloads(ctx context.Context, limit int) ([]models.Download, error)
	UpdateDownloadStatuses(ctx context.Context, updates []models.StatusUpdate) error
	DeleteDownload(ctx context.Context, id string) error
}

// BatchStore performs batch row operations.
type BatchStore interface {
	AddBatch(ctx context.Context, b *models.Batch, downloads []*models.Download) error
	GetBatch(ctx context.Context, id string) (*models.Batch, bool, error)
	BatchDownloads(ctx context.Context, id string) ([]models.Download, models.StatusCounts, error)
}

// DownloadQueue accepts pending downloads for background processing.
type DownloadQueue interface {
	Enqueue(downloads []*models.Download, quality string)
}
