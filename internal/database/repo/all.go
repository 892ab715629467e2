// Package repo is used for performing database operations.
package repo

import (
	"database/sql"
	"tokbarr/internal/contracts"
)

type Store struct {
	db            *sql.DB
	downloadStore *DownloadStore
	batchStore    *BatchStore
}

// InitStores injects the database into the store methods.
func InitStores(db *sql.DB) *Store {
	return &Store{
		db:            db,
		downloadStore: GetDownloadStore(db),
		batchStore:    GetBatchStore(db),
	}
}

// DownloadStore with pointer receiver.
func (s *Store) DownloadStore() contracts.DownloadStore {
	return s.downloadStore
}

// BatchStore with pointer receiver.
func (s *Store) BatchStore() contracts.BatchStore {
	return s.batchStore
}
