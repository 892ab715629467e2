package models

// BatchRequest is the payload for starting a download batch.
type BatchRequest struct {
	URLs    []string `json:"urls"`
	Quality string   `json:"quality,omitempty"`
}

// BatchResponse acknowledges a created batch.
type BatchResponse struct {
	BatchID   string `json:"batch_id"`
	TotalURLs int    `json:"total_urls"`
	Message   string `json:"message"`
}

// BatchStatusResponse reports the live state of every download in a batch.
type BatchStatusResponse struct {
	BatchID      string       `json:"batch_id"`
	TotalURLs    int          `json:"total_urls"`
	StatusCounts StatusCounts `json:"status_counts"`
	Downloads    []Download   `json:"downloads"`
}

// ErrorResponse carries a failure detail back to the caller.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
