package consts

// Tables
const (
	DBDownloads      = "downloads"
	DBBatches        = "batches"
	DBBatchDownloads = "batch_downloads"
)

// Downloads
const (
	QDLID          = "id"
	QDLURL         = "url"
	QDLStatus      = "status"
	QDLFilename    = "filename"
	QDLFileSize    = "file_size"
	QDLTitle       = "title"
	QDLDuration    = "duration"
	QDLThumbnail   = "thumbnail"
	QDLErrorMsg    = "error_message"
	QDLCreatedAt   = "created_at"
	QDLCompletedAt = "completed_at"
)

// Batches
const (
	QBatchID        = "id"
	QBatchTotalURLs = "total_urls"
	QBatchCreatedAt = "created_at"
)

// Batch downloads join
const (
	QBatchDLBatchID    = "batch_id"
	QBatchDLDownloadID = "download_id"
)

// DLStatus holds constant download status strings.
type DLStatus string

const (
	DLStatusEmpty       DLStatus = ""
	DLStatusPending     DLStatus = "pending"
	DLStatusDownloading DLStatus = "downloading"
	DLStatusCompleted   DLStatus = "completed"
	DLStatusFailed      DLStatus = "failed"
)

// Terminal returns true once a download can no longer change status.
func (s DLStatus) Terminal() bool {
	return s == DLStatusCompleted || s == DLStatusFailed
}
