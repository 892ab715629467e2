package consts

import "time"

// Batch polling
const (
	PollInterval = 2 * time.Second
)

// Network timeouts
const (
	HTTPClientTimeout = 30 * time.Second
	ScrapeTimeout     = 15 * time.Second
	DatabaseTimeout   = 5 * time.Second
	ShutdownTimeout   = 10 * time.Second
)

// Retry configuration
const (
	DefaultMaxRetries = 3
	RetryInterval     = 5 * time.Second
	RetryBackoff      = 100 * time.Millisecond
)

// Download engine
const (
	DefaultWorkerCount = 3
	HistoryLimit       = 50
)
