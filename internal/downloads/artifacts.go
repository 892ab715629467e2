package downloads

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"tokbarr/internal/logging"
)

var videoExts = []string{".mp4", ".webm", ".mkv"}

var thumbnailExts = []string{".webp", ".jpg", ".jpeg", ".png"}

// findVideoFile locates the downloaded artifact for a download ID.
func findVideoFile(dir, id string) (string, error) {
	for _, ext := range videoExts {
		path := filepath.Join(dir, id+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("downloaded video file not found for ID %q", id)
}

// embedThumbnail reads the sidecar thumbnail yt-dlp wrote, returns it base64
// encoded, and removes the sidecar file. Missing sidecars are not an error.
func embedThumbnail(dir, id string) string {
	for _, ext := range thumbnailExts {
		path := filepath.Join(dir, id+ext)
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := os.Remove(path); err != nil {
			logging.W("Could not remove thumbnail sidecar %q: %v", path, err)
		}
		return base64.StdEncoding.EncodeToString(raw)
	}
	return ""
}

// infoJSON is the subset of the yt-dlp info sidecar Tokbarr cares about.
type infoJSON struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

// readInfoJSON parses the info sidecar for title and duration, then removes it.
func readInfoJSON(dir, id string) (title string, duration float64) {
	path := filepath.Join(dir, id+".info.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		logging.D(1, "No info sidecar for download %s: %v", id, err)
		return "", 0
	}

	var info infoJSON
	if err := json.Unmarshal(raw, &info); err != nil {
		logging.W("Could not parse info sidecar %q: %v", path, err)
	}

	if err := os.Remove(path); err != nil {
		logging.W("Could not remove info sidecar %q: %v", path, err)
	}

	return info.Title, info.Duration
}
