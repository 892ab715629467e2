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

// ErrBatchNotFound is returned when a batch row does not exist.
var ErrBatchNotFound = errors.New("batch not found")

type BatchStore struct {
	DB *sql.DB
}

// GetBatchStore returns a batch store instance with injected database.
func GetBatchStore(db *sql.DB) *BatchStore {
	return &BatchStore{
		DB: db,
	}
}

// AddBatch inserts the batch row, its download rows and the membership rows
// in one transaction. A failure partway through leaves nothing behind, a
// pending row must never exist without a worker ever picking it up.
func (bs *BatchStore) AddBatch(ctx context.Context, b *models.Batch, downloads []*models.Download) error {
	if b.ID == "" {
		return errors.New("batch ID must not be empty")
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}

	tx, err := bs.DB.BeginTx(ctx, nil)
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

	query := squirrel.
		Insert(consts.DBBatches).
		Columns(consts.QBatchID, consts.QBatchTotalURLs, consts.QBatchCreatedAt).
		Values(b.ID, b.TotalURLs, b.CreatedAt).
		RunWith(tx)

	if _, err = query.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to insert batch %q: %w", b.ID, err)
	}

	b.DownloadIDs = make([]string, 0, len(downloads))
	for _, d := range downloads {
		if d.ID == "" {
			err = errors.New("download ID must not be empty")
			return err
		}
		if d.Status == consts.DLStatusEmpty {
			d.Status = consts.DLStatusPending
		}
		if d.CreatedAt.IsZero() {
			d.CreatedAt = b.CreatedAt
		}

		dlQuery := squirrel.
			Insert(consts.DBDownloads).
			Columns(consts.QDLID, consts.QDLURL, consts.QDLStatus, consts.QDLCreatedAt).
			Values(d.ID, d.URL, string(d.Status), d.CreatedAt).
			RunWith(tx)

		if _, err = dlQuery.ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to insert download with URL %q: %w", d.URL, err)
		}

		memberQuery := squirrel.
			Insert(consts.DBBatchDownloads).
			Columns(consts.QBatchDLBatchID, consts.QBatchDLDownloadID).
			Values(b.ID, d.ID).
			RunWith(tx)

		if _, err = memberQuery.ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to link download %q to batch %q: %w", d.ID, b.ID, err)
		}

		b.DownloadIDs = append(b.DownloadIDs, d.ID)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch insert: %w", err)
	}

	logging.D(1, "Inserted batch %s with %d downloads", b.ID, b.TotalURLs)
	return nil
}

// GetBatch retrieves a batch row by ID.
func (bs *BatchStore) GetBatch(ctx context.Context, id string) (*models.Batch, bool, error) {
	var b models.Batch

	query := squirrel.
		Select(consts.QBatchID, consts.QBatchTotalURLs, consts.QBatchCreatedAt).
		From(consts.DBBatches).
		Where(squirrel.Eq{consts.QBatchID: id}).
		RunWith(bs.DB)

	if err := query.QueryRowContext(ctx).Scan(&b.ID, &b.TotalURLs, &b.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to query batch %q: %w", id, err)
	}
	return &b, true, nil
}

// BatchDownloads returns the downloads belonging to a batch along with
// per-status counts derived from the same rows.
func (bs *BatchStore) BatchDownloads(ctx context.Context, id string) ([]models.Download, models.StatusCounts, error) {
	cols := make([]string, 0, len(downloadColumns))
	for _, c := range downloadColumns {
		cols = append(cols, "d."+c)
	}

	query := squirrel.
		Select(cols...).
		From(consts.DBDownloads + " d").
		Join(consts.DBBatchDownloads + " bd ON bd." + consts.QBatchDLDownloadID + " = d." + consts.QDLID).
		Where(squirrel.Eq{"bd." + consts.QBatchDLBatchID: id}).
		OrderBy("d." + consts.QDLCreatedAt + " ASC").
		RunWith(bs.DB)

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query downloads for batch %q: %w", id, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.E("Failed to close rows for batch %q downloads: %v", id, err)
		}
	}()

	downloads, err := collectDownloads(rows)
	if err != nil {
		return nil, nil, err
	}

	counts := make(models.StatusCounts, 4)
	for _, d := range downloads {
		counts[d.Status]++
	}

	return downloads, counts, nil
}
