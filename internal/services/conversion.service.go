package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"musicbot/config"
	"musicbot/internal/metrics"
	"musicbot/internal/progress"
	"musicbot/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/dhowden/tag"
	"github.com/shopspring/decimal"
)

type ConversionDirection string

const (
	MP3ToMP4 ConversionDirection = "mp3_to_mp4"
	MP4ToMP3 ConversionDirection = "mp4_to_mp3"
)

const (
	ConversionSuccessText = "Conversion completed successfully! 🎵"

	runDirPrefix = "convert-"

	// fallbackVideoSeconds bounds the generated video track when the input
	// duration cannot be probed; -shortest trims it to the audio.
	fallbackVideoSeconds = 3600
)

func ParseDirection(value string) (ConversionDirection, error) {
	switch ConversionDirection(strings.ToLower(value)) {
	case MP3ToMP4:
		return MP3ToMP4, nil
	case MP4ToMP3:
		return MP4ToMP3, nil
	default:
		return "", fmt.Errorf("unsupported conversion %q", value)
	}
}

func (d ConversionDirection) OutputExtension() string {
	if d == MP3ToMP4 {
		return ".mp4"
	}
	return ".mp3"
}

func (d ConversionDirection) InputExtension() string {
	if d == MP3ToMP4 {
		return ".mp3"
	}
	return ".mp4"
}

func (d ConversionDirection) Label() string {
	if d == MP3ToMP4 {
		return "MP3 → MP4"
	}
	return "MP4 → MP3"
}

type Transcoder interface {
	Duration(ctx context.Context, path string) (decimal.Decimal, error)
	Transcode(ctx context.Context, output string, args ...string) error
}

type ConversionRequest struct {
	Direction    ConversionDirection
	InputPath    string
	OriginalName string
}

type ConversionService struct {
	media   Transcoder
	workDir string
	log     logger.Logger
	wg      sync.WaitGroup
}

func NewConversionService(cfg config.Config, media Transcoder) *ConversionService {
	return &ConversionService{
		media:   media,
		workDir: cfg.WorkDir,
		log:     logger.New("conversionService"),
	}
}

// NewInputPath returns a path in a fresh directory for an uploaded input file.
func (s *ConversionService) NewInputPath(direction ConversionDirection) (string, error) {
	dir, err := os.MkdirTemp(s.workDir, runDirPrefix)
	if err != nil {
		return "", fmt.Errorf("%w: create work directory: %v", ErrTransferFailure, err)
	}
	return filepath.Join(dir, "input"+direction.InputExtension()), nil
}

// Convert transcodes inputPath and returns the output path. The input is
// always removed; a partial output is removed on failure.
func (s *ConversionService) Convert(ctx context.Context, direction ConversionDirection, inputPath string) (string, error) {
	log := s.log.Function("Convert").With("direction", direction)

	defer func() {
		if err := os.Remove(inputPath); err != nil && !os.IsNotExist(err) {
			log.Er("failed to remove input", err, "path", inputPath)
		}
	}()

	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	outputPath := base + "_converted" + direction.OutputExtension()

	var args []string
	switch direction {
	case MP3ToMP4:
		seconds := decimal.NewFromInt(fallbackVideoSeconds)
		if probed, err := s.media.Duration(ctx, inputPath); err == nil {
			seconds = probed.Ceil()
		} else {
			log.Warn("Falling back to default video length", "error", err)
		}
		args = []string{
			"-y",
			"-f", "lavfi",
			"-i", "color=c=blue:s=1280x720:d=" + seconds.String(),
			"-i", inputPath,
			"-c:v", "libx264",
			"-tune", "stillimage",
			"-c:a", "aac",
			"-b:a", "192k",
			"-pix_fmt", "yuv420p",
			"-shortest",
			outputPath,
		}
	case MP4ToMP3:
		args = []string{
			"-y",
			"-i", inputPath,
			"-vn",
			"-ar", "44100",
			"-ac", "2",
			"-b:a", "192k",
			"-f", "mp3",
			outputPath,
		}
	default:
		return "", log.Error("unsupported conversion direction")
	}

	if err := s.media.Transcode(ctx, outputPath, args...); err != nil {
		return "", wrapTransfer(err)
	}

	if info, err := os.Stat(outputPath); err != nil || info.Size() == 0 {
		_ = os.Remove(outputPath)
		return "", log.Err("converter produced no output", ErrAssetMissing, "path", outputPath)
	}

	return outputPath, nil
}

// Start runs a conversion on its own goroutine.
func (s *ConversionService) Start(ctx context.Context, req ConversionRequest, delivery AssetDelivery) <-chan error {
	done := make(chan error, 1)
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer close(done)
		done <- s.Run(ctx, req, delivery)
	}()

	return done
}

func (s *ConversionService) Wait() {
	s.wg.Wait()
}

// Run converts an uploaded file and delivers the result. The input is removed
// on every path, along with its directory when NewInputPath created it.
func (s *ConversionService) Run(ctx context.Context, req ConversionRequest, delivery AssetDelivery) error {
	log := s.log.Function("Run").With("direction", req.Direction)
	started := time.Now()

	metrics.PipelinesInFlight.WithLabelValues(metrics.PipelineConversion).Inc()
	defer metrics.PipelinesInFlight.WithLabelValues(metrics.PipelineConversion).Dec()

	defer s.cleanupInput(req.InputPath)

	presenter := progress.NewPresenter(delivery)
	presenter.Report(ctx, fmt.Sprintf("🔄 Converting %s...", req.Direction.Label()))

	title, artist := readTags(req.InputPath)
	displayName := displayBaseName(req.OriginalName, title, artist)

	err := s.convertAndDeliver(ctx, req, delivery, displayName, title, artist)
	metrics.ObservePipeline(metrics.PipelineConversion, started, err)

	if err != nil {
		if sendErr := delivery.SendText(ctx, fmt.Sprintf("❌ Conversion failed: %s.", FailureReason(err))); sendErr != nil {
			log.Er("failed to send failure message", sendErr)
		}
		return log.Err("conversion failed", err)
	}

	if sendErr := delivery.SendText(ctx, ConversionSuccessText); sendErr != nil {
		log.Er("failed to send success message", sendErr)
	}
	return nil
}

func (s *ConversionService) cleanupInput(inputPath string) {
	log := s.log.Function("cleanupInput")

	runDir := filepath.Dir(inputPath)
	if s.ownsRunDir(runDir) {
		if err := os.RemoveAll(runDir); err != nil {
			log.Er("failed to remove run directory", err, "dir", runDir)
		}
		return
	}
	if err := os.Remove(inputPath); err != nil && !os.IsNotExist(err) {
		log.Er("failed to remove input", err, "path", inputPath)
	}
}

// ownsRunDir reports whether dir is a run directory made by NewInputPath.
func (s *ConversionService) ownsRunDir(dir string) bool {
	workDir, err := filepath.Abs(s.workDir)
	if err != nil {
		return false
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return false
	}
	return filepath.Dir(dir) == workDir && strings.HasPrefix(filepath.Base(dir), runDirPrefix)
}

func (s *ConversionService) convertAndDeliver(
	ctx context.Context,
	req ConversionRequest,
	delivery AssetDelivery,
	displayName, title, artist string,
) error {
	outputPath, err := s.Convert(ctx, req.Direction, req.InputPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
			s.log.Function("convertAndDeliver").Er("failed to remove output", err, "path", outputPath)
		}
	}()

	fileName := displayName + req.Direction.OutputExtension()
	switch req.Direction {
	case MP3ToMP4:
		err = delivery.SendVideo(ctx, VideoAsset{Path: outputPath, FileName: fileName, Caption: displayName})
	default:
		err = delivery.SendAudio(ctx, AudioAsset{
			Path:      outputPath,
			FileName:  fileName,
			Title:     title,
			Performer: artist,
			Caption:   displayName,
		})
	}
	if err != nil {
		return fmt.Errorf("%w: deliver converted file: %v", ErrTransferFailure, err)
	}
	return nil
}

// readTags returns the embedded title and artist, if any.
func readTags(path string) (title, artist string) {
	file, err := os.Open(path)
	if err != nil {
		return "", ""
	}
	defer func() { _ = file.Close() }()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(metadata.Title()), strings.TrimSpace(metadata.Artist())
}

func displayBaseName(originalName, title, artist string) string {
	var name string
	switch {
	case title != "" && artist != "":
		name = fmt.Sprintf("%s - %s", title, artist)
	case title != "":
		name = title
	default:
		name = strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	}
	if cleaned := utils.CleanFilename(name); cleaned != "" {
		return cleaned
	}
	return "converted"
}
