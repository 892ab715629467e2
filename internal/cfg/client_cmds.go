package cfg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"
	"tokbarr/internal/client"
	"tokbarr/internal/domain/consts"
	"tokbarr/internal/domain/keys"
	"tokbarr/internal/logging"
	"tokbarr/internal/models"
	"tokbarr/internal/parsing"

	"github.com/spf13/cobra"
)

// submitCmd submits a batch of URLs and polls it to completion.
func submitCmd(ctx context.Context) *cobra.Command {
	var (
		urlFile string
		quality string
	)

	subCmd := &cobra.Command{
		Use:   "submit [urls...]",
		Short: "Submit video URLs for downloading",
		Long:  "Submit a batch of video URLs, then poll the batch until every download settles.",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := append([]string(nil), args...)
			if urlFile != "" {
				data, err := os.ReadFile(urlFile)
				if err != nil {
					return fmt.Errorf("failed to read URL file %q: %w", urlFile, err)
				}
				raw = append(raw, parsing.FilterBatchURLs(string(data))...)
			}

			quiesced := make(chan struct{})
			hooks := client.PollerHooks{
				OnStatus: func(status *models.BatchStatusResponse) {
					fmt.Printf("\r%d pending, %d downloading, %d completed, %d failed   ",
						status.StatusCounts[consts.DLStatusPending],
						status.StatusCounts[consts.DLStatusDownloading],
						status.StatusCounts[consts.DLStatusCompleted],
						status.StatusCounts[consts.DLStatusFailed])
				},
				// Completion must not hinge on the history refresh, a
				// failed refresh would otherwise hang the command.
				OnQuiescent: func(string) {
					close(quiesced)
				},
			}

			poller := client.NewBatchPoller(client.New(serverURL()), hooks)
			defer poller.Close()

			batchID, err := poller.SubmitBatch(ctx, raw, quality)
			if err != nil {
				if errors.Is(err, client.ErrNoValidURLs) {
					return fmt.Errorf("no valid video URLs in input, URLs must contain %q", consts.URLMarker)
				}
				return err
			}

			fmt.Printf("Submitted batch %s\n", batchID)

			select {
			case <-quiesced:
				fmt.Println()
				logging.S("Batch %s finished", batchID)
				return nil
			case <-ctx.Done():
				fmt.Println()
				return ctx.Err()
			}
		},
	}

	subCmd.Flags().StringVarP(&urlFile, keys.URLFile, "f", "", "File containing one video URL per line")
	subCmd.Flags().StringVarP(&quality, keys.Quality, "q", consts.QualityUltraHD, "Download quality (ultra_hd, hd, standard)")

	return subCmd
}

// listCmd prints the recent download history.
func listCmd(ctx context.Context) *cobra.Command {
	var since string

	lsCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent downloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cutoff time.Time
			if since != "" {
				parsed, err := parsing.ParseWordDate(since)
				if err != nil {
					return fmt.Errorf("failed to parse date %q: %w", since, err)
				}
				cutoff = parsed
			}

			downloads, err := client.New(serverURL()).ListDownloads(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTATUS\tCREATED\tTITLE")
			for _, d := range downloads {
				if !cutoff.IsZero() && d.CreatedAt.Before(cutoff) {
					continue
				}
				title := d.Title
				if title == "" {
					title = d.URL
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					d.ID, d.Status, d.CreatedAt.Format("2006-01-02 15:04"), title)
			}
			return tw.Flush()
		},
	}

	lsCmd.Flags().StringVar(&since, keys.SinceDate, "", "Only show downloads created since this date")

	return lsCmd
}

// fetchCmd saves a completed download's video file locally.
func fetchCmd(ctx context.Context) *cobra.Command {
	var output string

	fCmd := &cobra.Command{
		Use:   "fetch <download-id>",
		Short: "Retrieve a completed download's file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if output == "" {
				output = id + ".mp4"
			}

			if err := client.New(serverURL()).FetchFile(ctx, id, output); err != nil {
				return err
			}
			logging.S("Saved download %s to %q", id, output)
			return nil
		},
	}

	fCmd.Flags().StringVarP(&output, keys.OutputFile, "o", "", "Output file path")

	return fCmd
}

// deleteCmd deletes a download record and its stored file.
func deleteCmd(ctx context.Context) *cobra.Command {
	var skipPrompt bool

	delCmd := &cobra.Command{
		Use:   "delete <download-id>",
		Short: "Delete a download and its file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			confirm := promptConfirm
			if skipPrompt {
				confirm = nil
			}

			poller := client.NewBatchPoller(client.New(serverURL()), client.PollerHooks{})
			defer poller.Close()

			if err := poller.DeleteItem(ctx, id, confirm); err != nil {
				if errors.Is(err, client.ErrDeleteDeclined) {
					fmt.Println("Aborted.")
					return nil
				}
				return err
			}
			logging.S("Deleted download %s", id)
			return nil
		},
	}

	delCmd.Flags().BoolVarP(&skipPrompt, keys.SkipPrompt, "y", false, "Delete without confirmation")

	return delCmd
}

// promptConfirm asks on stdin before a destructive action.
func promptConfirm(id string) bool {
	fmt.Printf("Delete download %s and its file? (y/N): ", id)

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
