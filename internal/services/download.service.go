package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"musicbot/config"
	"musicbot/internal/progress"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	progressLinePrefix = "[progress] "
	audioFormat        = "mp3"
	audioQuality       = "192K"
)

var (
	legacyProgressRe = regexp.MustCompile(
		`^\[download\]\s+([\d.]+)%\s+of\s+~?\s*([\d.]+\s*[KMGT]?i?B)(?:\s+at\s+([\d.]+\s*[KMGT]?i?B)/s)?(?:\s+ETA\s+([\d:]+))?`,
	)
	sizeRe = regexp.MustCompile(`^([\d.]+)\s*([KMGT]?i?B)$`)
)

// DownloadService fetches the best audio stream of a URL with yt-dlp and
// extracts it to mp3.
type DownloadService struct {
	binary string
	log    logger.Logger
}

func NewDownloadService(cfg config.Config) *DownloadService {
	return &DownloadService{
		binary: cfg.YtDlpBinary,
		log:    logger.New("downloadService"),
	}
}

// Download writes <dir>/<base>.mp3 and returns its path. Progress events are
// delivered to sink synchronously on the calling goroutine in the order the
// downloader printed them. Any failure removes the partial artifacts.
func (s *DownloadService) Download(ctx context.Context, url, dir, base string, sink progress.Sink) (string, error) {
	log := s.log.Function("Download")

	if _, err := exec.LookPath(s.binary); err != nil {
		sink.OnEvent(ctx, progress.Errored("downloader is not installed"))
		return "", log.Err("downloader binary not found", fmt.Errorf("%w: %s", ErrBinaryNotFound, s.binary))
	}

	expected := filepath.Join(dir, base+"."+audioFormat)
	args := []string{
		"--newline",
		"--no-playlist",
		"--no-colors",
		"--progress-template", "download:" + progressLinePrefix + "%(progress)j",
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", audioFormat,
		"--audio-quality", audioQuality,
		"-o", filepath.Join(dir, base+".%(ext)s"),
		url,
	}

	cmd := exec.CommandContext(ctx, s.binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", log.Err("failed to open stdout", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return "", log.Err("failed to open stderr", err)
	}

	if err := cmd.Start(); err != nil {
		sink.OnEvent(ctx, progress.Errored(err.Error()))
		return "", log.Err("failed to start downloader", fmt.Errorf("%w: %v", ErrTransferFailure, err))
	}

	stderr := &tailBuffer{limit: maxStderrBytes}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = io.Copy(stderr, stderrPipe)
	}()

	state := &downloadState{sink: sink, destination: expected}
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		state.handleLine(ctx, scanner.Text())
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		// yt-dlp blocks on a full pipe and never exits unless stdout is read.
		_, _ = io.Copy(io.Discard, stdout)
	}

	wg.Wait()
	waitErr := cmd.Wait()

	if waitErr != nil || scanErr != nil {
		message := lastLine(stderr.String())
		if message == "" && waitErr != nil {
			message = waitErr.Error()
		}
		if message == "" {
			message = scanErr.Error()
		}
		if ctx.Err() != nil {
			message = "download cancelled"
		}
		sink.OnEvent(ctx, progress.Errored(message))
		s.removeArtifacts(dir, base)

		cause := waitErr
		if cause == nil {
			cause = scanErr
		}
		return "", log.Err("downloader failed", fmt.Errorf("%w: %s: %v", ErrTransferFailure, message, cause), "url", url)
	}

	path := state.destination
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		sink.OnEvent(ctx, progress.Errored("downloaded file is missing"))
		s.removeArtifacts(dir, base)
		return "", log.Err("downloader produced no output", ErrAssetMissing, "path", path)
	}

	if !state.finished {
		sink.OnEvent(ctx, progress.Finished(info.Size()))
	}

	log.Info("Download completed", "path", path, "size", info.Size())
	return path, nil
}

func (s *DownloadService) removeArtifacts(dir, base string) {
	log := s.log.Function("removeArtifacts")

	matches, err := filepath.Glob(filepath.Join(dir, base+".*"))
	if err != nil {
		log.Er("failed to glob artifacts", err, "dir", dir)
		return
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			log.Er("failed to remove artifact", err, "path", match)
		}
	}
}

type downloadState struct {
	sink        progress.Sink
	destination string
	finished    bool
}

func (d *downloadState) handleLine(ctx context.Context, line string) {
	line = strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(line, progressLinePrefix):
		event, err := progress.ParseLine([]byte(strings.TrimPrefix(line, progressLinePrefix)))
		if err != nil {
			return
		}
		d.forward(ctx, event)
	case strings.HasPrefix(line, "[ExtractAudio] Destination:"):
		d.destination = strings.TrimSpace(strings.TrimPrefix(line, "[ExtractAudio] Destination:"))
	case strings.HasPrefix(line, "[download]"):
		if event, ok := parseLegacyProgress(line); ok {
			d.forward(ctx, event)
		}
	}
}

func (d *downloadState) forward(ctx context.Context, event progress.Event) {
	switch event.Phase {
	case progress.PhaseFinished:
		if d.finished {
			return
		}
		d.finished = true
	case progress.PhaseErrored:
		// process exit status decides failure
		return
	}
	d.sink.OnEvent(ctx, event)
}

// parseLegacyProgress reads the human readable "[download]  42.0% of 3.50MiB
// at 1.20MiB/s ETA 00:03" lines printed when no template is honoured.
func parseLegacyProgress(line string) (progress.Event, bool) {
	m := legacyProgressRe.FindStringSubmatch(line)
	if m == nil {
		return progress.Event{}, false
	}

	percent, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return progress.Event{}, false
	}
	total, ok := parseSize(m[2])
	if !ok {
		return progress.Event{}, false
	}

	raw := map[string]any{
		"status":           "downloading",
		"total_bytes":      total,
		"downloaded_bytes": total * percent / 100,
	}
	if m[3] != "" {
		if speed, ok := parseSize(m[3]); ok {
			raw["speed"] = speed
		}
	}
	if m[4] != "" {
		if eta, ok := parseClock(m[4]); ok {
			raw["eta"] = eta
		}
	}
	return progress.Normalize(raw), true
}

func parseSize(value string) (float64, bool) {
	m := sizeRe.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}

	multipliers := map[string]float64{
		"B": 1, "KiB": 1 << 10, "MiB": 1 << 20, "GiB": 1 << 30, "TiB": 1 << 40,
		"KB": 1e3, "MB": 1e6, "GB": 1e9, "TB": 1e12,
	}
	mult, ok := multipliers[m[2]]
	if !ok {
		return 0, false
	}
	return n * mult, true
}

func parseClock(value string) (float64, bool) {
	var total float64
	for _, part := range strings.Split(value, ":") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, false
		}
		total = total*60 + float64(n)
	}
	return total, true
}

func lastLine(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return strings.TrimPrefix(line, "ERROR: ")
		}
	}
	return ""
}
