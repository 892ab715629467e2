// Package parsing provides parsing helpers for user input.
package parsing

import (
	"strings"
	"tokbarr/internal/domain/consts"
)

// FilterBatchURLs splits raw input into lines and keeps the non-empty ones
// containing the recognized platform marker. Client-side convenience only,
// the server is the authority on URL acceptance.
func FilterBatchURLs(input string) []string {
	lines := strings.Split(input, "\n")

	urls := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, consts.URLMarker) {
			urls = append(urls, line)
		}
	}
	return urls
}

// FilterURLList applies the same marker filter to an already-split list.
func FilterURLList(input []string) []string {
	urls := make([]string, 0, len(input))
	for _, u := range input {
		u = strings.TrimSpace(u)
		if u != "" && strings.Contains(u, consts.URLMarker) {
			urls = append(urls, u)
		}
	}
	return urls
}
