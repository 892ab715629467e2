// Package paths initializes Tokbarr's filepaths, directories, etc.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"tokbarr/internal/domain/consts"
)

const (
	tDir         = ".tokbarr"
	tDBFile      = "tokbarr.db"
	tLogFile     = "tokbarr.log"
	downloadsDir = "downloads"
)

// File and directory path strings.
var (
	HomeTokbarrDir string
	DBFilePath     string
	LogFilePath    string
	DownloadsDir   string
)

// InitProgFilesDirs initializes necessary program directories and filepaths.
func InitProgFilesDirs() error {
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		return errors.New("failed to get home directory")
	}

	// Home Tokbarr dir ~/.tokbarr
	HomeTokbarrDir = filepath.Join(userHomeDir, tDir)
	if _, err := os.Stat(HomeTokbarrDir); os.IsNotExist(err) {
		if err := os.MkdirAll(HomeTokbarrDir, consts.PermsHomeProgDir); err != nil {
			return fmt.Errorf("failed to make directories: %w", err)
		}
	}

	// Downloaded artifacts ~/.tokbarr/downloads
	DownloadsDir = filepath.Join(HomeTokbarrDir, downloadsDir)
	if _, err := os.Stat(DownloadsDir); os.IsNotExist(err) {
		if err := os.MkdirAll(DownloadsDir, consts.PermsGenericDir); err != nil {
			return fmt.Errorf("failed to make downloads directory: %w", err)
		}
	}

	// Main files
	DBFilePath = filepath.Join(HomeTokbarrDir, tDBFile)
	LogFilePath = filepath.Join(HomeTokbarrDir, tLogFile)

	return nil
}
