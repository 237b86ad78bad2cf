package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"musicbot/config"
	"musicbot/internal/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const outputArgScript = `out=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-o" ]; then out="$arg"; fi
  prev="$arg"
done
`

func TestDownloadService_Success(t *testing.T) {
	binDir := t.TempDir()
	workDir := t.TempDir()
	script := outputArgScript + `mp3=$(echo "$out" | sed 's/%(ext)s/mp3/')
echo '[youtube] Extracting URL'
echo '[progress] {"status":"downloading","downloaded_bytes":0,"total_bytes":1000}'
echo '[progress] {"status":"downloading","downloaded_bytes":500,"total_bytes":1000,"speed":100,"eta":5}'
echo '[progress] {"status":"downloading","downloaded_bytes":1000,"total_bytes":1000}'
echo '[progress] {"status":"finished","downloaded_bytes":1000,"total_bytes":1000}'
echo '[progress] {"status":"finished","downloaded_bytes":1000,"total_bytes":1000}'
echo "[ExtractAudio] Destination: $mp3"
printf 'audio-bytes' > "$mp3"
`
	cfg := config.Config{YtDlpBinary: writeScript(t, binDir, "yt-dlp", script)}
	sink := &recordingSink{}

	path, err := NewDownloadService(cfg).Download(context.Background(), "https://www.youtube.com/watch?v=abc", workDir, "audio", sink)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(workDir, "audio.mp3"), path)
	assert.FileExists(t, path)

	require.Len(t, sink.events, 4)
	var percents []int
	for _, event := range sink.events[:3] {
		assert.Equal(t, progress.PhaseDownloading, event.Phase)
		percent, ok := event.Percent()
		require.True(t, ok)
		percents = append(percents, percent)
	}
	assert.Equal(t, []int{0, 50, 100}, percents)
	assert.Equal(t, progress.PhaseFinished, sink.events[3].Phase)
}

func TestDownloadService_LegacyProgressLines(t *testing.T) {
	binDir := t.TempDir()
	workDir := t.TempDir()
	script := outputArgScript + `mp3=$(echo "$out" | sed 's/%(ext)s/mp3/')
echo '[download]  25.0% of 4.00MiB at 1.00MiB/s ETA 00:03'
echo '[download] 100% of 4.00MiB'
printf 'audio' > "$mp3"
`
	cfg := config.Config{YtDlpBinary: writeScript(t, binDir, "yt-dlp", script)}
	sink := &recordingSink{}

	_, err := NewDownloadService(cfg).Download(context.Background(), "url", workDir, "audio", sink)
	require.NoError(t, err)

	require.Len(t, sink.events, 3)
	percent, _ := sink.events[0].Percent()
	assert.Equal(t, 25, percent)
	assert.Equal(t, "1.0 MiB/s", sink.events[0].FormatSpeed())
	assert.Equal(t, "0:03", sink.events[0].FormatETA())
	percent, _ = sink.events[1].Percent()
	assert.Equal(t, 100, percent)
	assert.Equal(t, progress.PhaseFinished, sink.events[2].Phase)
}

func TestDownloadService_FailureRemovesPartialFiles(t *testing.T) {
	binDir := t.TempDir()
	workDir := t.TempDir()
	script := outputArgScript + `part=$(echo "$out" | sed 's/%(ext)s/webm.part/')
printf 'partial' > "$part"
echo 'ERROR: Video unavailable' >&2
exit 1
`
	cfg := config.Config{YtDlpBinary: writeScript(t, binDir, "yt-dlp", script)}
	sink := &recordingSink{}

	_, err := NewDownloadService(cfg).Download(context.Background(), "url", workDir, "audio", sink)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransferFailure)
	assert.Contains(t, err.Error(), "Video unavailable")

	require.NotEmpty(t, sink.events)
	last := sink.events[len(sink.events)-1]
	assert.Equal(t, progress.PhaseErrored, last.Phase)
	assert.Equal(t, "Video unavailable", last.ErrorMessage)

	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloadService_OversizedOutputLineFails(t *testing.T) {
	script := "head -c 3000000 /dev/zero | tr '\\0' 'a'\necho\nexit 0\n"
	cfg := config.Config{YtDlpBinary: writeScript(t, t.TempDir(), "yt-dlp", script)}
	sink := &recordingSink{}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	started := time.Now()
	_, err := NewDownloadService(cfg).Download(ctx, "url", t.TempDir(), "audio", sink)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransferFailure)
	assert.Contains(t, err.Error(), "token too long")
	assert.Less(t, time.Since(started), 10*time.Second)
	require.NotEmpty(t, sink.events)
	assert.Equal(t, progress.PhaseErrored, sink.events[len(sink.events)-1].Phase)
}

func TestDownloadService_MissingOutput(t *testing.T) {
	cfg := config.Config{YtDlpBinary: writeScript(t, t.TempDir(), "yt-dlp", "exit 0\n")}
	sink := &recordingSink{}

	_, err := NewDownloadService(cfg).Download(context.Background(), "url", t.TempDir(), "audio", sink)
	assert.ErrorIs(t, err, ErrAssetMissing)
	assert.ErrorIs(t, err, ErrTransferFailure)
}

func TestDownloadService_MissingBinary(t *testing.T) {
	cfg := config.Config{YtDlpBinary: filepath.Join(t.TempDir(), "nope")}
	sink := &recordingSink{}

	_, err := NewDownloadService(cfg).Download(context.Background(), "url", t.TempDir(), "audio", sink)
	assert.ErrorIs(t, err, ErrBinaryNotFound)
	require.Len(t, sink.events, 1)
	assert.Equal(t, progress.PhaseErrored, sink.events[0].Phase)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"1.50MiB", 1.5 * 1024 * 1024, true},
		{"512KiB", 512 * 1024, true},
		{"10 B", 10, true},
		{"2MB", 2e6, true},
		{"lots", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseSize(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}
