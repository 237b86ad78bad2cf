package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"musicbot/config"
	"musicbot/internal/metrics"
	"musicbot/internal/models"
	"musicbot/internal/progress"
	"musicbot/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AcquisitionMode string

const (
	ModeFull    AcquisitionMode = "full"
	ModePreview AcquisitionMode = "preview"
)

const (
	DefaultPreviewDuration = 30 * time.Second

	DownloadSuccessText = "✅ Download completed! Enjoy your music! 🎵"
	PreviewSuccessText  = "✅ Preview ready! Use Download to get the full track."
	PreviewFinishedText = "Download finished. Cutting preview..."
)

type AcquisitionRequest struct {
	Platform        models.Platform
	TrackID         string
	Title           string
	Artist          string
	Mode            AcquisitionMode
	PreviewDuration time.Duration
}

type AudioAsset struct {
	Path      string
	FileName  string
	Title     string
	Performer string
	Caption   string
}

type ImageAsset struct {
	Path    string
	Caption string
}

type VideoAsset struct {
	Path     string
	FileName string
	Caption  string
}

// AssetDelivery is the outbound side of a pipeline run: one status message
// plus the produced assets and a final text.
type AssetDelivery interface {
	progress.StatusMessenger
	DeleteStatus(ctx context.Context, ref progress.StatusRef) error
	SendText(ctx context.Context, text string) error
	SendImage(ctx context.Context, asset ImageAsset) error
	SendAudio(ctx context.Context, asset AudioAsset) error
	SendVideo(ctx context.Context, asset VideoAsset) error
}

type Downloader interface {
	Download(ctx context.Context, url, dir, base string, sink progress.Sink) (string, error)
}

type MediaProcessor interface {
	Duration(ctx context.Context, path string) (decimal.Decimal, error)
	Trim(ctx context.Context, input, output string, start, end decimal.Decimal) error
	Waveform(ctx context.Context, input, output string) error
}

type TrackSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.Track, error)
}

type TrackResolver interface {
	ResolveTrack(ctx context.Context, id string) (models.Track, error)
}

type Outcome struct {
	Request  AcquisitionRequest
	Err      error
	Duration time.Duration
}

// AcquisitionService resolves, downloads and delivers tracks. Each run is
// strictly sequential and owns a private working directory.
type AcquisitionService struct {
	downloader      Downloader
	media           MediaProcessor
	audioSearch     TrackSearcher
	resolver        TrackResolver
	workDir         string
	previewDuration time.Duration
	progressStep    int
	log             logger.Logger
	wg              sync.WaitGroup
}

func NewAcquisitionService(
	cfg config.Config,
	downloader Downloader,
	media MediaProcessor,
	audioSearch TrackSearcher,
	resolver TrackResolver,
) *AcquisitionService {
	previewDuration := time.Duration(cfg.PreviewDurationSec) * time.Second
	if previewDuration <= 0 {
		previewDuration = DefaultPreviewDuration
	}

	return &AcquisitionService{
		downloader:      downloader,
		media:           media,
		audioSearch:     audioSearch,
		resolver:        resolver,
		workDir:         cfg.WorkDir,
		previewDuration: previewDuration,
		progressStep:    cfg.ProgressStep,
		log:             logger.New("acquisitionService"),
	}
}

// Start runs the pipeline on its own goroutine. The returned channel receives
// exactly one Outcome.
func (s *AcquisitionService) Start(ctx context.Context, req AcquisitionRequest, delivery AssetDelivery) <-chan Outcome {
	done := make(chan Outcome, 1)
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer close(done)

		started := time.Now()
		err := s.Run(ctx, req, delivery)
		done <- Outcome{Request: req, Err: err, Duration: time.Since(started)}
	}()

	return done
}

// Wait blocks until every started run has finished.
func (s *AcquisitionService) Wait() {
	s.wg.Wait()
}

// Run executes one acquisition. Failures are reported to the user through
// delivery and returned for logging; the terminal message is always sent last.
func (s *AcquisitionService) Run(ctx context.Context, req AcquisitionRequest, delivery AssetDelivery) error {
	log := s.log.Function("Run").With("platform", req.Platform, "trackID", req.TrackID, "mode", req.Mode)
	started := time.Now()

	metrics.PipelinesInFlight.WithLabelValues(metrics.PipelineAcquisition).Inc()
	defer metrics.PipelinesInFlight.WithLabelValues(metrics.PipelineAcquisition).Dec()

	presenterOpts := []progress.PresenterOption{progress.WithStep(s.progressStep)}
	if req.Mode == ModePreview {
		presenterOpts = append(presenterOpts, progress.WithFinishedText(PreviewFinishedText))
	}
	presenter := progress.NewPresenter(delivery, presenterOpts...)

	runDir := filepath.Join(s.workDir, uuid.NewString())
	err := os.MkdirAll(runDir, 0o755)
	if err == nil {
		defer func() {
			if rmErr := os.RemoveAll(runDir); rmErr != nil {
				log.Er("failed to remove run directory", rmErr, "dir", runDir)
			}
		}()
		err = s.execute(ctx, req, delivery, presenter, runDir)
	} else {
		err = fmt.Errorf("%w: create work directory: %v", ErrTransferFailure, err)
	}

	metrics.ObservePipeline(metrics.PipelineAcquisition, started, err)

	if err != nil {
		if sendErr := delivery.SendText(ctx, failureText(err)); sendErr != nil {
			log.Er("failed to send failure message", sendErr)
		}
		return log.Err("acquisition failed", err)
	}

	successText := DownloadSuccessText
	if req.Mode == ModePreview {
		successText = PreviewSuccessText
		if ref, ok := presenter.StatusMessage(); ok {
			if delErr := delivery.DeleteStatus(ctx, ref); delErr != nil {
				log.Er("failed to delete status message", delErr)
			}
		}
	}
	if sendErr := delivery.SendText(ctx, successText); sendErr != nil {
		log.Er("failed to send success message", sendErr)
	}

	log.Info("Acquisition completed", "duration", time.Since(started).String())
	return nil
}

func (s *AcquisitionService) execute(
	ctx context.Context,
	req AcquisitionRequest,
	delivery AssetDelivery,
	presenter *progress.Presenter,
	runDir string,
) error {
	track, err := s.resolve(ctx, req, presenter)
	if err != nil {
		return err
	}

	presenter.Report(ctx, fmt.Sprintf("⬇️ Downloading '%s'...", track.Title))
	fullPath, err := s.downloader.Download(ctx, track.URL(), runDir, "audio", presenter)
	if err != nil {
		return err
	}

	fileName := utils.CleanFilename(fmt.Sprintf("%s - %s", track.Title, track.Artist)) + ".mp3"

	if req.Mode != ModePreview {
		return s.deliverAudio(ctx, delivery, AudioAsset{
			Path:      fullPath,
			FileName:  fileName,
			Title:     track.Title,
			Performer: track.Artist,
		})
	}

	duration := req.PreviewDuration
	if duration <= 0 {
		duration = s.previewDuration
	}

	presenter.Report(ctx, "✂️ Creating preview...")
	previewPath, err := s.trimPreview(ctx, fullPath, runDir, duration)
	if err != nil {
		return err
	}

	presenter.Report(ctx, "🌊 Rendering waveform...")
	waveformPath := filepath.Join(runDir, "waveform.png")
	if err := s.media.Waveform(ctx, previewPath, waveformPath); err != nil {
		return fmt.Errorf("render waveform: %w", err)
	}

	if err := delivery.SendImage(ctx, ImageAsset{
		Path:    waveformPath,
		Caption: fmt.Sprintf("Waveform visualization for '%s' by %s", track.Title, track.Artist),
	}); err != nil {
		return fmt.Errorf("%w: deliver waveform: %v", ErrTransferFailure, err)
	}

	return s.deliverAudio(ctx, delivery, AudioAsset{
		Path:      previewPath,
		FileName:  fileName,
		Title:     track.Title + " (Preview)",
		Performer: track.Artist,
		Caption: fmt.Sprintf("▶️ %d-second preview of '%s' by %s",
			int(duration.Seconds()), track.Title, track.Artist),
	})
}

// resolve maps the request to a downloadable YouTube track. Spotify tracks are
// matched by searching YouTube for "title artists" and taking the top hit.
func (s *AcquisitionService) resolve(ctx context.Context, req AcquisitionRequest, reporter progress.Reporter) (models.Track, error) {
	switch req.Platform {
	case models.PlatformYouTube:
		return models.Track{
			ID:       req.TrackID,
			Title:    req.Title,
			Artist:   req.Artist,
			Platform: models.PlatformYouTube,
		}, nil
	case models.PlatformSpotify:
	default:
		return models.Track{}, fmt.Errorf("%w: unsupported platform %q", ErrResolutionFailure, req.Platform)
	}

	source, err := s.resolver.ResolveTrack(ctx, req.TrackID)
	if err != nil {
		return models.Track{}, fmt.Errorf("%w: %v", ErrResolutionFailure, err)
	}

	reporter.Report(ctx, fmt.Sprintf("🔍 Finding '%s' by %s on YouTube...", source.Title, source.Artist))

	query := fmt.Sprintf("%s %s", source.Title, source.Artist)
	matches, err := s.audioSearch.Search(ctx, query, 1)
	if err != nil {
		return models.Track{}, fmt.Errorf("%w: %v", ErrResolutionFailure, err)
	}
	if len(matches) == 0 {
		return models.Track{}, fmt.Errorf("%w for %q", ErrNoAudioSource, query)
	}

	return models.Track{
		ID:       matches[0].ID,
		Title:    source.Title,
		Artist:   source.Artist,
		Platform: models.PlatformYouTube,
	}, nil
}

func (s *AcquisitionService) trimPreview(ctx context.Context, fullPath, runDir string, duration time.Duration) (string, error) {
	log := s.log.Function("trimPreview")

	total, err := s.media.Duration(ctx, fullPath)
	if err != nil {
		return "", fmt.Errorf("probe duration: %w", wrapTransfer(err))
	}

	start, end := PreviewWindow(total, SecondsDecimal(duration))
	previewPath := filepath.Join(runDir, "preview.mp3")
	if err := s.media.Trim(ctx, fullPath, previewPath, start, end); err != nil {
		return "", fmt.Errorf("trim preview: %w", wrapTransfer(err))
	}

	if err := os.Remove(fullPath); err != nil {
		log.Er("failed to remove full download", err, "path", fullPath)
	}

	return previewPath, nil
}

func (s *AcquisitionService) deliverAudio(ctx context.Context, delivery AssetDelivery, asset AudioAsset) error {
	if err := delivery.SendAudio(ctx, asset); err != nil {
		return fmt.Errorf("%w: deliver audio: %v", ErrTransferFailure, err)
	}
	return nil
}

func wrapTransfer(err error) error {
	if errors.Is(err, ErrTransferFailure) || errors.Is(err, ErrBinaryNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrTransferFailure, err)
}

func failureText(err error) string {
	return fmt.Sprintf("❌ Download failed: %s.\nSorry about that, please try again later.", FailureReason(err))
}
