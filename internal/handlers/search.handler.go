package handlers

import (
	"errors"

	"musicbot/internal/app"
	searchController "musicbot/internal/controllers/search"
	"musicbot/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SearchHandler struct {
	Handler
	searchController searchController.SearchControllerInterface
}

func NewSearchHandler(app *app.App, router fiber.Router) *SearchHandler {
	return &SearchHandler{
		Handler:          newHandler(app, router, "search_handler"),
		searchController: app.Controllers.Search,
	}
}

func (h *SearchHandler) Register() {
	h.router.Get("/search", h.search)
}

// search is anonymous: web searches are neither recorded in history nor kept
// for selection.
func (h *SearchHandler) search(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("search")

	platform := models.Platform(c.Query("platform", string(models.PlatformYouTube)))
	tracks, err := h.searchController.Search(c.UserContext(), 0, platform, c.Query("q"))
	switch {
	case err == nil:
	case errors.Is(err, searchController.ErrEmptyQuery),
		errors.Is(err, searchController.ErrQueryTooLong),
		errors.Is(err, searchController.ErrInvalidPlatform):
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	default:
		log.Er("search failed", err, "platform", platform)
		return errorResponse(c, fiber.StatusBadGateway, "Search failed, please try again later")
	}

	if tracks == nil {
		tracks = []models.Track{}
	}
	return c.JSON(fiber.Map{
		"platform": platform,
		"tracks":   tracks,
	})
}
