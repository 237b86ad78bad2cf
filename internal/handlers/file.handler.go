package handlers

import (
	"musicbot/internal/app"
	"musicbot/internal/services"

	"github.com/gofiber/fiber/v2"
)

type fileResolver interface {
	Resolve(token string) (string, *services.FileClaims, error)
}

type FileHandler struct {
	Handler
	files fileResolver
}

func NewFileHandler(app *app.App, router fiber.Router) *FileHandler {
	return &FileHandler{
		Handler: newHandler(app, router, "file_handler"),
		files:   app.Services.FileLink,
	}
}

func (h *FileHandler) Register() {
	h.router.Get("/files/:token", h.download)
}

func (h *FileHandler) download(c *fiber.Ctx) error {
	path, claims, err := h.files.Resolve(c.Params("token"))
	if err != nil {
		h.log.TraceFromContext(c.UserContext()).Function("download").Info("Rejected file link", "error", err.Error())
		return errorResponse(c, fiber.StatusNotFound, "File not found or link expired")
	}
	return c.Download(path, claims.File)
}
