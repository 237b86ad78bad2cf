package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"musicbot/config"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
)

const (
	WaveformSize   = "1000x300"
	WaveformColor  = "#1DB954"
	maxStderrBytes = 8 * 1024
)

// MediaService wraps the ffmpeg and ffprobe binaries.
type MediaService struct {
	ffmpeg  string
	ffprobe string
	log     logger.Logger
}

func NewMediaService(cfg config.Config) *MediaService {
	return &MediaService{
		ffmpeg:  cfg.FFmpegBinary,
		ffprobe: cfg.FFprobeBinary,
		log:     logger.New("mediaService"),
	}
}

// Duration probes the container duration in seconds.
func (s *MediaService) Duration(ctx context.Context, path string) (decimal.Decimal, error) {
	log := s.log.Function("Duration")

	out, err := s.run(ctx, s.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		path,
	)
	if err != nil {
		return decimal.Zero, log.Err("failed to probe duration", err, "path", path)
	}

	duration, err := decimal.NewFromString(strings.TrimSpace(out))
	if err != nil {
		return decimal.Zero, log.Err("failed to parse duration", err, "output", out)
	}
	if !duration.IsPositive() {
		return decimal.Zero, log.Error("probed duration is not positive", "duration", duration.String())
	}

	return duration, nil
}

// PreviewWindow returns the [start, end] window of length requested centred
// on the midpoint of total. Tracks no longer than requested are used whole.
func PreviewWindow(total, requested decimal.Decimal) (start, end decimal.Decimal) {
	if total.LessThanOrEqual(requested) {
		return decimal.Zero, total
	}

	two := decimal.NewFromInt(2)
	mid := total.Div(two)
	half := requested.Div(two)

	start = decimal.Max(decimal.Zero, mid.Sub(half))
	end = decimal.Min(total, mid.Add(half))
	return start, end
}

func SecondsDecimal(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(d.Milliseconds()).Div(decimal.NewFromInt(1000))
}

// Trim re-encodes the [start, end] window of input into output.
func (s *MediaService) Trim(ctx context.Context, input, output string, start, end decimal.Decimal) error {
	return s.Transcode(ctx, output,
		"-y",
		"-ss", start.StringFixed(3),
		"-t", end.Sub(start).StringFixed(3),
		"-i", input,
		"-vn",
		"-c:a", "libmp3lame",
		"-b:a", "192k",
		output,
	)
}

// Waveform renders a static waveform image of input.
func (s *MediaService) Waveform(ctx context.Context, input, output string) error {
	return s.Transcode(ctx, output,
		"-y",
		"-i", input,
		"-filter_complex", fmt.Sprintf("showwavespic=s=%s:colors=%s", WaveformSize, WaveformColor),
		"-frames:v", "1",
		output,
	)
}

// Transcode runs ffmpeg with args. The exit code is the only success signal;
// on failure the partial output is removed.
func (s *MediaService) Transcode(ctx context.Context, output string, args ...string) error {
	log := s.log.Function("Transcode")

	if _, err := s.run(ctx, s.ffmpeg, args...); err != nil {
		if rmErr := os.Remove(output); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Er("failed to remove partial output", rmErr, "output", output)
		}
		return log.Err("ffmpeg failed", err, "output", output)
	}

	return nil
}

func (s *MediaService) run(ctx context.Context, binary string, args ...string) (string, error) {
	if _, err := exec.LookPath(binary); err != nil {
		return "", fmt.Errorf("%w: %s", ErrBinaryNotFound, binary)
	}

	var stdout bytes.Buffer
	stderr := &tailBuffer{limit: maxStderrBytes}

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &TranscodeError{
				Tool:     binary,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		return "", fmt.Errorf("%w: %s: %v", ErrTransferFailure, binary, err)
	}

	return stdout.String(), nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	buf   []byte
	limit int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if len(b.buf) > b.limit {
		b.buf = b.buf[len(b.buf)-b.limit:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	return string(b.buf)
}
