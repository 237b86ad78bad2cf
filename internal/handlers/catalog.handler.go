package handlers

import (
	"context"
	"errors"

	"musicbot/internal/app"
	themeController "musicbot/internal/controllers/theme"
	"musicbot/internal/services"

	"github.com/gofiber/fiber/v2"
)

type lyricsSearcher interface {
	Search(ctx context.Context, title, artist string) (*services.Lyrics, error)
}

type trendingSource interface {
	Get(ctx context.Context) services.Trending
}

// CatalogHandler serves the read-only music data: lyrics, trending tracks and
// theme presets.
type CatalogHandler struct {
	Handler
	lyrics          lyricsSearcher
	trending        trendingSource
	themeController themeController.ThemeControllerInterface
}

func NewCatalogHandler(app *app.App, router fiber.Router) *CatalogHandler {
	return &CatalogHandler{
		Handler:         newHandler(app, router, "catalog_handler"),
		lyrics:          app.Services.Lyrics,
		trending:        app.Services.Trending,
		themeController: app.Controllers.Theme,
	}
}

func (h *CatalogHandler) Register() {
	h.router.Get("/lyrics", h.getLyrics)
	h.router.Get("/trending", h.getTrending)
	h.router.Get("/themes", h.getThemes)
}

func (h *CatalogHandler) getLyrics(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("getLyrics")

	title := c.Query("title")
	if title == "" {
		return errorResponse(c, fiber.StatusBadRequest, "title is required")
	}

	lyrics, err := h.lyrics.Search(c.UserContext(), title, c.Query("artist"))
	switch {
	case err == nil:
		return c.JSON(lyrics)
	case errors.Is(err, services.ErrLyricsNotFound):
		return errorResponse(c, fiber.StatusNotFound, "Lyrics not found")
	case errors.Is(err, services.ErrLyricsUnavailable):
		return errorResponse(c, fiber.StatusServiceUnavailable, "Lyrics search is not available")
	default:
		log.Er("lyrics search failed", err, "title", title)
		return errorResponse(c, fiber.StatusBadGateway, "Lyrics search failed")
	}
}

func (h *CatalogHandler) getTrending(c *fiber.Ctx) error {
	return c.JSON(h.trending.Get(c.UserContext()))
}

func (h *CatalogHandler) getThemes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"default": services.DefaultThemeName,
		"themes":  h.themeController.Presets(),
	})
}
