package jobController

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"musicbot/config"
	"musicbot/internal/events"
	. "musicbot/internal/models"
	"musicbot/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var ErrValidation = errors.New("validation error")

type acquisitionStarter interface {
	Start(ctx context.Context, req services.AcquisitionRequest, delivery services.AssetDelivery) <-chan services.Outcome
}

type conversionStarter interface {
	NewInputPath(direction services.ConversionDirection) (string, error)
	Start(ctx context.Context, req services.ConversionRequest, delivery services.AssetDelivery) <-chan error
}

type linkService interface {
	services.AssetPublisher
	Sign(jobID, fileName string) (string, error)
}

type DownloadRequest struct {
	Platform string `json:"platform" validate:"required,oneof=youtube spotify"`
	TrackID  string `json:"trackId"  validate:"required,max=128"`
	Title    string `json:"title"    validate:"max=300"`
	Artist   string `json:"artist"   validate:"max=300"`
	Preview  bool   `json:"preview"`
}

type ConversionRequest struct {
	Direction string `json:"direction" validate:"required,oneof=mp3_to_mp4 mp4_to_mp3"`
	FileName  string `json:"fileName"  validate:"required,max=255"`
}

// JobTicket identifies a started web job. Token authenticates the websocket
// stream for the job.
type JobTicket struct {
	JobID string `json:"jobId"`
	Token string `json:"token"`
}

type JobController struct {
	acquisition acquisitionStarter
	conversion  conversionStarter
	links       linkService
	bus         events.Publisher
	validate    *validator.Validate
	Config      config.Config
	log         logger.Logger
}

type JobControllerInterface interface {
	StartDownload(ctx context.Context, request *DownloadRequest) (*JobTicket, error)
	StartConversion(ctx context.Context, request *ConversionRequest, save func(path string) error) (*JobTicket, error)
}

func New(svc services.Service, bus events.Publisher, config config.Config) JobControllerInterface {
	return NewWithServices(svc.Acquisition, svc.Conversion, svc.FileLink, bus, config)
}

func NewWithServices(
	acquisition acquisitionStarter,
	conversion conversionStarter,
	links linkService,
	bus events.Publisher,
	config config.Config,
) JobControllerInterface {
	return &JobController{
		acquisition: acquisition,
		conversion:  conversion,
		links:       links,
		bus:         bus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		Config:      config,
		log:         logger.New("jobController"),
	}
}

// StartDownload runs the acquisition pipeline for the web. The job outlives
// the request, so its context keeps the request values but not its deadline.
func (jc *JobController) StartDownload(ctx context.Context, request *DownloadRequest) (*JobTicket, error) {
	log := jc.log.Function("StartDownload")

	if err := jc.validate.Struct(request); err != nil {
		return nil, errors.Join(ErrValidation, err)
	}

	ticket, err := jc.newTicket()
	if err != nil {
		return nil, err
	}

	mode := services.ModeFull
	if request.Preview {
		mode = services.ModePreview
	}

	delivery := services.NewJobDelivery(ticket.JobID, jc.bus, jc.links)
	done := jc.acquisition.Start(context.WithoutCancel(ctx), services.AcquisitionRequest{
		Platform: Platform(request.Platform),
		TrackID:  request.TrackID,
		Title:    request.Title,
		Artist:   request.Artist,
		Mode:     mode,
	}, delivery)

	go func() {
		outcome := <-done
		delivery.Complete(outcome.Err)
	}()

	log.Info("Download job started", "jobID", ticket.JobID, "platform", request.Platform, "mode", mode)
	return ticket, nil
}

// StartConversion allocates the pipeline input path, lets save write the
// upload there and starts the conversion.
func (jc *JobController) StartConversion(
	ctx context.Context,
	request *ConversionRequest,
	save func(path string) error,
) (*JobTicket, error) {
	log := jc.log.Function("StartConversion")

	if err := jc.validate.Struct(request); err != nil {
		return nil, errors.Join(ErrValidation, err)
	}
	direction, err := services.ParseDirection(request.Direction)
	if err != nil {
		return nil, errors.Join(ErrValidation, err)
	}

	inputPath, err := jc.conversion.NewInputPath(direction)
	if err != nil {
		return nil, log.Err("failed to prepare input path", err)
	}
	if err := save(inputPath); err != nil {
		_ = os.RemoveAll(filepath.Dir(inputPath))
		return nil, log.Err("failed to store upload", err, "fileName", request.FileName)
	}

	ticket, err := jc.newTicket()
	if err != nil {
		_ = os.RemoveAll(filepath.Dir(inputPath))
		return nil, err
	}

	delivery := services.NewJobDelivery(ticket.JobID, jc.bus, jc.links)
	done := jc.conversion.Start(context.WithoutCancel(ctx), services.ConversionRequest{
		Direction:    direction,
		InputPath:    inputPath,
		OriginalName: request.FileName,
	}, delivery)

	go func() {
		delivery.Complete(<-done)
	}()

	log.Info("Conversion job started", "jobID", ticket.JobID, "direction", direction)
	return ticket, nil
}

func (jc *JobController) newTicket() (*JobTicket, error) {
	jobID := uuid.NewString()
	token, err := jc.links.Sign(jobID, "")
	if err != nil {
		return nil, jc.log.Function("newTicket").Err("failed to sign job token", err)
	}
	return &JobTicket{JobID: jobID, Token: token}, nil
}
