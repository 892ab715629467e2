package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"tokbarr/internal/domain/consts"
	"tokbarr/internal/logging"
	"tokbarr/internal/models"

	"github.com/Masterminds/squirrel"
)

// ErrDownloadNotFound is returned when a download row does not exist.
var ErrDownloadNotFound = errors.New("download not found")

type DownloadStore struct {
	DB *sql.DB
}

// GetDownloadStore returns a download store instance with injected database.
func GetDownloadStore(db *sql.DB) *DownloadStore {
	return &DownloadStore{
		DB: db,
	}
}

// downloadColumns is the scan order shared by every download query.
var downloadColumns = []string{
	consts.QDLID,
	consts.QDLURL,
	consts.QDLStatus,
	consts.QDLFilename,
	consts.QDLFileSize,
	consts.QDLTitle,
	consts.QDLDuration,
	consts.QDLThumbnail,
	consts.QDLErrorMsg,
	consts.QDLCreatedAt,
	consts.QDLCompletedAt,
}

// AddDownload inserts a new download row.
func (ds *DownloadStore) AddDownload(ctx context.Context, d *models.Download) error {
	if d.ID == "" {
		return errors.New("download ID must not be empty")
	}
	if d.Status == consts.DLStatusEmpty {
		d.Status = consts.DLStatusPending
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	query := squirrel.
		Insert(consts.DBDownloads).
		Columns(
			consts.QDLID,
			consts.QDLURL,
			consts.QDLStatus,
			consts.QDLCreatedAt,
		).
		Values(d.ID, d.URL, string(d.Status), d.CreatedAt).
		RunWith(ds.DB)

	if _, err := query.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to insert download with URL %q: %w", d.URL, err)
	}

	logging.D(1, "Inserted download %s for URL %q", d.ID, d.URL)
	return nil
}

// GetDownload retrieves a single download row by ID.
func (ds *DownloadStore) GetDownload(ctx context.Context, id string) (*models.Download, bool, error) {
	query := squirrel.
		Select(downloadColumns...).
		From(consts.DBDownloads).
		Where(squirrel.Eq{consts.QDLID: id}).
		RunWith(ds.DB)

	d, err := scanDownload(query.QueryRowContext(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to query download %q: %w", id, err)
	}
	return d, true, nil
}

// ListDownloads returns the newest download rows up to limit.
func (ds *DownloadStore) ListDownloads(ctx context.Context, limit int) ([]models.Download, error) {
	query := squirrel.
		Select(downloadColumns...).
		From(consts.DBDownloads).
		OrderBy(consts.QDLCreatedAt + " DESC").
		Limit(uint64(limit)).
		RunWith(ds.DB)

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query downloads: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.E("Failed to close rows for download list: %v", err)
		}
	}()

	return collectDownloads(rows)
}

// UpdateDownloadStatuses flushes a set of status updates into the downloads table.
//
// Completed and failed are terminal, rows already in a terminal status are
// left untouched so a late update can never move an item backwards.
func (ds *DownloadStore) UpdateDownloadStatuses(ctx context.Context, updates []models.StatusUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := ds.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.E("transaction rollback failed after original error %v: %v", err, rbErr)
			}
		}
	}()

	for _, u := range updates {
		query := squirrel.
			Update(consts.DBDownloads).
			Set(consts.QDLStatus, string(u.Status)).
			Where(squirrel.And{
				squirrel.Eq{consts.QDLID: u.DownloadID},
				squirrel.NotEq{consts.QDLStatus: []string{
					string(consts.DLStatusCompleted),
					string(consts.DLStatusFailed),
				}},
			})

		if u.Filename != "" {
			query = query.Set(consts.QDLFilename, u.Filename)
		}
		if u.FileSize > 0 {
			query = query.Set(consts.QDLFileSize, u.FileSize)
		}
		if u.Title != "" {
			query = query.Set(consts.QDLTitle, u.Title)
		}
		if u.Duration > 0 {
			query = query.Set(consts.QDLDuration, u.Duration)
		}
		if u.Thumbnail != "" {
			query = query.Set(consts.QDLThumbnail, u.Thumbnail)
		}
		if u.Error != nil {
			query = query.Set(consts.QDLErrorMsg, u.Error.Error())
		}
		if u.Status == consts.DLStatusCompleted {
			query = query.Set(consts.QDLCompletedAt, time.Now())
		}

		if _, err = query.RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to update status for download %q: %w", u.DownloadID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit status updates: %w", err)
	}
	return nil
}

// DeleteDownload removes a download row. Membership rows cascade.
func (ds *DownloadStore) DeleteDownload(ctx context.Context, id string) error {
	query := squirrel.
		Delete(consts.DBDownloads).
		Where(squirrel.Eq{consts.QDLID: id}).
		RunWith(ds.DB)

	res, err := query.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete download %q: %w", id, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrDownloadNotFound
	}

	logging.S("Deleted download with ID %q", id)
	return nil
}

// scanDownload scans one download row.
func scanDownload(row squirrel.RowScanner) (*models.Download, error) {
	var (
		d           models.Download
		status      string
		filename    sql.NullString
		fileSize    sql.NullInt64
		title       sql.NullString
		duration    sql.NullFloat64
		thumbnail   sql.NullString
		errorMsg    sql.NullString
		completedAt sql.NullTime
	)

	if err := row.Scan(
		&d.ID,
		&d.URL,
		&status,
		&filename,
		&fileSize,
		&title,
		&duration,
		&thumbnail,
		&errorMsg,
		&d.CreatedAt,
		&completedAt,
	); err != nil {
		return nil, err
	}

	d.Status = consts.DLStatus(status)
	d.Filename = filename.String
	d.FileSize = fileSize.Int64
	d.Title = title.String
	d.Duration = duration.Float64
	d.Thumbnail = thumbnail.String
	d.ErrorMsg = errorMsg.String
	if completedAt.Valid {
		t := completedAt.Time
		d.CompletedAt = &t
	}

	return &d, nil
}

// collectDownloads drains rows into download models.
func collectDownloads(rows *sql.Rows) ([]models.Download, error) {
	downloads := make([]models.Download, 0, consts.HistoryLimit)
	for rows.Next() {
		d, err := scanDownload(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan download row: %w", err)
		}
		downloads = append(downloads, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("download row iteration failed: %w", err)
	}
	return downloads, nil
}
