package downloads

import (
	"context"
	"os/exec"
	"tokbarr/internal/domain/consts"
	"tokbarr/internal/logging"
)

const ytdlp = "yt-dlp"

// yt-dlp argument strings.
const (
	argFormat             = "-f"
	argOutput             = "-o"
	argMergeOutputFormat  = "--merge-output-format"
	argRestrictFilenames  = "--restrict-filenames"
	argNoPlaylist         = "--no-playlist"
	argWriteThumbnail     = "--write-thumbnail"
	argWriteInfoJSON      = "--write-info-json"
	argCookiesFromBrowser = "--cookies-from-browser"
)

// Format chains per quality preset. Ultra HD targets watermark-free 1080p+.
const (
	formatUltraHD  = "bestvideo[height>=1080][ext=mp4]+bestaudio[ext=m4a]/bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	formatHD       = "bestvideo[height<=1080][ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	formatStandard = "best[ext=mp4]/best"
)

// formatForQuality maps a quality preset onto a yt-dlp format chain.
func formatForQuality(quality string) string {
	switch quality {
	case consts.QualityHD:
		return formatHD
	case consts.QualityStandard:
		return formatStandard
	default:
		return formatUltraHD
	}
}

// buildVideoCommand builds the command to download a video using yt-dlp.
//
// outputPath is an output template of the form "<dir>/<id>.%(ext)s" so the
// artifact and its sidecars can be located by download ID afterwards.
func buildVideoCommand(ctx context.Context, url, outputPath, quality, cookieSource string) *exec.Cmd {
	args := make([]string, 0, 16)

	args = append(args,
		argFormat, formatForQuality(quality),
		argOutput, outputPath,
		argMergeOutputFormat, "mp4",
		argRestrictFilenames,
		argNoPlaylist,
		argWriteThumbnail,
		argWriteInfoJSON)

	if cookieSource != "" {
		args = append(args, argCookiesFromBrowser, cookieSource)
	}

	args = append(args, url)

	cmd := exec.CommandContext(ctx, ytdlp, args...)
	logging.D(1, "Built video download command for URL %q:\n%v", url, cmd.String())

	return cmd
}
