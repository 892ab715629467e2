package cfg

import (
	"context"
	"tokbarr/internal/database"
	"tokbarr/internal/database/repo"
	"tokbarr/internal/domain/consts"
	"tokbarr/internal/domain/keys"
	"tokbarr/internal/domain/paths"
	"tokbarr/internal/downloads"
	"tokbarr/internal/logging"
	"tokbarr/internal/scraper"
	"tokbarr/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd runs the Tokbarr API server and download workers.
func serveCmd(ctx context.Context) *cobra.Command {
	var (
		addr         string
		downloadDir  string
		cookieSource string
		cookieFile   string
		workers      int
	)

	srvCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Tokbarr server",
		Long:  "Serve the Tokbarr API and process submitted download batches.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if downloadDir == "" {
				downloadDir = paths.DownloadsDir
			}

			db, err := database.InitDB(paths.DBFilePath)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.DB.Close(); err != nil {
					logging.E("Failed to close database: %v", err)
				}
			}()

			store := repo.InitStores(db.DB)
			scr := scraper.NewScraper(cookieFile)

			manager := downloads.NewDownloadManager(ctx, store.DownloadStore(), scr, downloadDir, cookieSource, workers)
			defer manager.Stop()

			return server.StartServer(ctx, addr, store, manager, downloadDir)
		},
	}

	srvCmd.Flags().StringVarP(&addr, keys.ServerAddr, "a", ":8000", "Address to listen on")
	srvCmd.Flags().StringVar(&downloadDir, keys.DownloadDir, "", "Directory to store downloaded videos")
	srvCmd.Flags().StringVar(&cookieSource, keys.CookieSource, "", "Browser to pass to yt-dlp --cookies-from-browser")
	srvCmd.Flags().StringVar(&cookieFile, keys.CookiePath, "", "Browser cookie store file for metadata scraping")
	srvCmd.Flags().IntVarP(&workers, keys.WorkerCount, "w", consts.DefaultWorkerCount, "Concurrent download workers")

	for _, key := range []string{keys.ServerAddr, keys.DownloadDir, keys.CookieSource, keys.CookiePath, keys.WorkerCount} {
		if err := viper.BindPFlag(key, srvCmd.Flags().Lookup(key)); err != nil {
			logging.E("Failed to bind flag %q: %v", key, err)
		}
	}

	return srvCmd
}
