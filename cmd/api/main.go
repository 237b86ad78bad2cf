package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"musicbot/internal/app"
	"musicbot/internal/server"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/thejerf/suture/v4"
)

func newSupervisor(log logger.Logger) *suture.Supervisor {
	return suture.New("musicbot", suture.Spec{
		EventHook: func(event suture.Event) {
			log.Function("supervisor").Warn("Supervisor event", "type", event.Type(), "event", event.String())
		},
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          server.SHUTDOWN_TIMEOUT,
	})
}

func main() {
	log := logger.New("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := app.New(ctx)
	if err != nil {
		os.Exit(1)
	}

	appServer, err := server.New(app)
	if err != nil {
		os.Exit(1)
	}

	supervisor := newSupervisor(log)
	supervisor.Add(appServer)
	supervisor.Add(app.Websocket)
	if app.Config.SchedulerEnabled {
		supervisor.Add(app.Services.Scheduler)
	}
	if app.Bot != nil {
		supervisor.Add(app.Bot)
	}

	if err := supervisor.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Er("supervisor stopped", err)
	}

	log.Info("shutting down gracefully, waiting for running jobs")
	if err := app.Close(); err != nil {
		log.Er("failed to close app", err)
	}
	log.Info("Graceful shutdown complete.")
}
