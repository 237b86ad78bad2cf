package app

import (
	"context"

	"musicbot/config"
	"musicbot/internal/bot"
	"musicbot/internal/controllers"
	"musicbot/internal/database"
	"musicbot/internal/events"
	"musicbot/internal/handlers/middleware"
	"musicbot/internal/jobs"
	"musicbot/internal/repositories"
	"musicbot/internal/services"
	"musicbot/internal/websockets"

	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database    database.DB
	Middleware  middleware.Middleware
	Websocket   *websockets.Manager
	EventBus    *events.EventBus
	Config      config.Config
	Services    services.Service
	Repos       repositories.Repository
	Controllers controllers.Controllers

	// Bot is nil when no Telegram token is configured.
	Bot *bot.Bot
}

func New(ctx context.Context) (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events, config)
	repos := repositories.New(db)

	svc, err := services.New(ctx, db, config, repos)
	if err != nil {
		return &App{}, log.Err("failed to create services", err)
	}

	ctrls := controllers.New(svc, repos, eventBus, config)
	websocket := websockets.New(eventBus, svc.FileLink, config)

	app := &App{
		Database:    db,
		Middleware:  middleware.New(config),
		Websocket:   websocket,
		EventBus:    eventBus,
		Config:      config,
		Services:    svc,
		Repos:       repos,
		Controllers: ctrls,
	}

	var notifier services.Notifier
	if config.TelegramBotToken != "" {
		telegramBot, err := bot.New(config, svc, ctrls, repos)
		if err != nil {
			return &App{}, log.Err("failed to create telegram bot", err)
		}
		app.Bot = telegramBot
		notifier = telegramBot
	} else {
		log.Warn("TELEGRAM_BOT_TOKEN not set, running the web front end only")
	}

	if err := jobs.RegisterAllJobs(svc.Scheduler, config, svc, notifier); err != nil {
		return &App{}, log.Err("failed to register jobs", err)
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.Services.Acquisition,
		a.Services.Conversion,
		a.Services.FileLink,
		a.Services.Scheduler,
		a.Controllers.Search,
		a.Controllers.Job,
		a.Repos.ChatState,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

// Close waits for running pipelines, then releases the connections.
func (a *App) Close() (err error) {
	a.Services.Wait()

	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
