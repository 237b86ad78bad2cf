package handlers

import (
	"errors"

	"musicbot/internal/app"
	jobController "musicbot/internal/controllers/jobs"

	"github.com/gofiber/fiber/v2"
)

const uploadField = "file"

type JobHandler struct {
	Handler
	jobController jobController.JobControllerInterface
}

func NewJobHandler(app *app.App, router fiber.Router) *JobHandler {
	return &JobHandler{
		Handler:       newHandler(app, router, "job_handler"),
		jobController: app.Controllers.Job,
	}
}

func (h *JobHandler) Register() {
	limited := h.router.Group("", h.middleware.JobLimit())
	limited.Post("/downloads", h.startDownload)
	limited.Post("/conversions", h.startConversion)
}

func (h *JobHandler) startDownload(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("startDownload")

	var request jobController.DownloadRequest
	if err := c.BodyParser(&request); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	ticket, err := h.jobController.StartDownload(c.UserContext(), &request)
	if err != nil {
		if errors.Is(err, jobController.ErrValidation) {
			return errorResponse(c, fiber.StatusBadRequest, err.Error())
		}
		log.Er("failed to start download", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to start download")
	}

	return c.Status(fiber.StatusAccepted).JSON(ticket)
}

func (h *JobHandler) startConversion(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("startConversion")

	upload, err := c.FormFile(uploadField)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "A file upload is required")
	}

	request := jobController.ConversionRequest{
		Direction: c.FormValue("direction"),
		FileName:  upload.Filename,
	}
	ticket, err := h.jobController.StartConversion(c.UserContext(), &request, func(path string) error {
		return c.SaveFile(upload, path)
	})
	if err != nil {
		if errors.Is(err, jobController.ErrValidation) {
			return errorResponse(c, fiber.StatusBadRequest, err.Error())
		}
		log.Er("failed to start conversion", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to start conversion")
	}

	return c.Status(fiber.StatusAccepted).JSON(ticket)
}
