package server

import (
	"context"
	"fmt"
	"time"

	"musicbot/internal/app"
	"musicbot/internal/handlers"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogs "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/helmet/v2"
)

const (
	SHUTDOWN_TIMEOUT = 10 * time.Second
	// Conversion uploads carry whole video files.
	BODY_LIMIT       = 200 * 1024 * 1024
)

type AppServer struct {
	FiberApp *fiber.App
	port     int
	log      logger.Logger
}

func New(app *app.App) (*AppServer, error) {
	log := logger.New("server").Function("New")
	log.Info("Initializing server")

	config := fiber.Config{
		ServerHeader: fmt.Sprintf(
			"MusicBot/%s",
			app.Config.GeneralVersion,
		),
		AppName:                  "musicbot_server",
		BodyLimit:                BODY_LIMIT,
		ReadBufferSize:           16384,
		WriteBufferSize:          16384,
		StreamRequestBody:        false,
		EnableSplittingOnParsers: true,
		EnableTrustedProxyCheck:  true,
		ReadTimeout:              2 * time.Minute,
		WriteTimeout:             2 * time.Minute,
		IdleTimeout:              120 * time.Second,
		DisableStartupMessage:    true,
		EnablePrintRoutes:        false,
	}

	if app.Config.Environment == "development" {
		log.Info("Enabling development mode")
		config.EnablePrintRoutes = true
	}

	server := fiber.New(config)

	server.Use(recover.New())
	server.Use(cors.New(cors.Config{
		AllowOrigins:  app.Config.CorsAllowOrigins,
		AllowMethods:  "GET, POST, OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, Upgrade, Connection, X-Trace-ID",
		MaxAge:        300,
		ExposeHeaders: "Upgrade, X-Trace-ID, Content-Disposition",
	}))

	server.Use(fiberLogs.New())
	server.Use(compress.New())

	server.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginEmbedderPolicy: "require-corp",
		CrossOriginOpenerPolicy:   "same-origin",
		// Download links are opened from the web client's origin.
		CrossOriginResourcePolicy: "cross-origin",
		OriginAgentCluster:        "?1",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
		ContentSecurityPolicy:     "",
	}))

	appServer := &AppServer{
		FiberApp: server,
		port:     app.Config.ServerPort,
		log:      logger.New("server"),
	}

	if err := handlers.Router(server, app); err != nil {
		return &AppServer{}, log.Err("failed to initialize handlers", err)
	}

	return appServer, nil
}

func (s *AppServer) String() string {
	return "HTTPServer"
}

// Serve listens until ctx is cancelled, then drains in-flight requests.
func (s *AppServer) Serve(ctx context.Context) error {
	log := s.log.Function("Serve")

	if s.port == 0 {
		return log.Error(
			"Fatal error: invalid port",
			"port", s.port,
		)
	}

	errs := make(chan error, 1)
	go func() {
		log.Info("Starting server", "port", s.port)
		errs <- s.FiberApp.Listen(fmt.Sprintf(":%d", s.port))
	}()

	select {
	case err := <-errs:
		if err != nil {
			return log.Err("server stopped unexpectedly", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := s.FiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Er("Server forced to shutdown", err)
	}
	<-errs

	log.Info("Server stopped")
	return nil
}
