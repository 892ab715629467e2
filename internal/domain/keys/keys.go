// Package keys holds Viper keys used across Tokbarr.
package keys

// Primary program
const (
	ServerAddr   string = "server-addr"
	ServerURL    string = "server-url"
	DownloadDir  string = "download-dir"
	DebugLevel   string = "debug-level"
	WorkerCount  string = "workers"
	CookieSource string = "cookie-source"
	CookiePath   string = "cookie-file"
)

// Batch submission
const (
	URLFile string = "url-file"
	Quality string = "quality"
)

// Client operations
const (
	SinceDate  string = "since"
	OutputFile string = "output"
	SkipPrompt string = "yes"
)
