package database

import (
	"database/sql"
	"fmt"
)

// initDownloadsTable initializes the downloads table.
func initDownloadsTable(tx *sql.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS downloads (
        id TEXT PRIMARY KEY,
        url TEXT NOT NULL,
        status TEXT NOT NULL CHECK(status IN ('pending', 'downloading', 'completed', 'failed')),
        filename TEXT,
        file_size INTEGER,
        title TEXT,
        duration REAL,
        thumbnail TEXT,
        error_message TEXT,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        completed_at TIMESTAMP
    );
    CREATE INDEX IF NOT EXISTS idx_downloads_status ON downloads(status);
    CREATE INDEX IF NOT EXISTS idx_downloads_created_at ON downloads(created_at);
    `
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create downloads table: %w", err)
	}
	return nil
}

// initBatchesTable initializes the batches table.
func initBatchesTable(tx *sql.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS batches (
        id TEXT PRIMARY KEY,
        total_urls INTEGER NOT NULL,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );
    `
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create batches table: %w", err)
	}
	return nil
}

// initBatchDownloadsTable initializes the batch membership join table.
//
// Deleting a download removes the membership row but never the batch,
// history stays batch-agnostic.
func initBatchDownloadsTable(tx *sql.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS batch_downloads (
        batch_id TEXT NOT NULL REFERENCES batches(id),
        download_id TEXT NOT NULL REFERENCES downloads(id) ON DELETE CASCADE,
        PRIMARY KEY (batch_id, download_id)
    );
    CREATE INDEX IF NOT EXISTS idx_batch_downloads_batch ON batch_downloads(batch_id);
    `
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create batch_downloads table: %w", err)
	}
	return nil
}
