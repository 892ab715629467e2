package downloads

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"tokbarr/internal/domain/consts"

	"github.com/stretchr/testify/require"
)

func TestBuildVideoCommand(t *testing.T) {
	t.Parallel()

	cmd := buildVideoCommand(context.Background(),
		"https://www.tiktok.com/@user/video/1", "/tmp/dl/abc.%(ext)s", consts.QualityUltraHD, "")

	args := cmd.Args
	require.Contains(t, args[0], ytdlp)
	require.Contains(t, args, argRestrictFilenames)
	require.Contains(t, args, argNoPlaylist)
	require.Contains(t, args, argWriteThumbnail)
	require.Contains(t, args, argWriteInfoJSON)
	require.NotContains(t, args, argCookiesFromBrowser)

	// URL always comes last.
	require.Equal(t, "https://www.tiktok.com/@user/video/1", args[len(args)-1])
}

func TestBuildVideoCommandWithCookies(t *testing.T) {
	t.Parallel()

	cmd := buildVideoCommand(context.Background(),
		"https://www.tiktok.com/@user/video/2", "/tmp/dl/def.%(ext)s", consts.QualityStandard, "firefox")

	require.Contains(t, cmd.Args, argCookiesFromBrowser)
	require.Contains(t, cmd.Args, "firefox")
}

func TestFormatForQuality(t *testing.T) {
	t.Parallel()

	require.Equal(t, formatUltraHD, formatForQuality(consts.QualityUltraHD))
	require.Equal(t, formatHD, formatForQuality(consts.QualityHD))
	require.Equal(t, formatStandard, formatForQuality(consts.QualityStandard))

	// Unknown presets fall back to ultra HD.
	require.Equal(t, formatUltraHD, formatForQuality("potato"))
}

func TestFindVideoFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc.mp4"), []byte("video"), 0o644))

	path, err := findVideoFile(dir, "abc")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "abc.mp4"), path)

	_, err = findVideoFile(dir, "missing")
	require.Error(t, err)
}

func TestEmbedThumbnail(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	raw := []byte{0xFF, 0xD8, 0xFF}
	sidecar := filepath.Join(dir, "abc.jpg")
	require.NoError(t, os.WriteFile(sidecar, raw, 0o644))

	encoded := embedThumbnail(dir, "abc")
	require.Equal(t, base64.StdEncoding.EncodeToString(raw), encoded)

	// Sidecar is cleaned up after embedding.
	_, err := os.Stat(sidecar)
	require.True(t, os.IsNotExist(err))

	require.Empty(t, embedThumbnail(dir, "missing"))
}

func TestReadInfoJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sidecar := filepath.Join(dir, "abc.info.json")
	require.NoError(t, os.WriteFile(sidecar, []byte(`{"title":"dance clip","duration":14.2}`), 0o644))

	title, duration := readInfoJSON(dir, "abc")
	require.Equal(t, "dance clip", title)
	require.InDelta(t, 14.2, duration, 0.001)

	_, err := os.Stat(sidecar)
	require.True(t, os.IsNotExist(err))

	title, duration = readInfoJSON(dir, "missing")
	require.Empty(t, title)
	require.Zero(t, duration)
}
