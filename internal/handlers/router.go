package handlers

import (
	"musicbot/internal/app"
	"musicbot/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func newHandler(app *app.App, router fiber.Router, file string) Handler {
	return Handler{
		middleware: app.Middleware,
		log:        logger.New("handlers").File(file),
		router:     router,
	}
}

func Router(router fiber.Router, app *app.App) (err error) {
	WebSocketHandler(router, app.Websocket)
	MetricsHandler(router)

	api := router.Group("/api", app.Middleware.TraceID())
	HealthHandler(api, app.Config)
	NewSearchHandler(app, api).Register()
	NewJobHandler(app, api).Register()
	NewFileHandler(app, api).Register()
	NewCatalogHandler(app, api).Register()

	return nil
}

func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   message,
		"traceId": middleware.GetTraceID(c),
	})
}
