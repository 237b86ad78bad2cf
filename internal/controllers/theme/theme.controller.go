package themeController

import (
	"context"
	"errors"

	"musicbot/config"
	. "musicbot/internal/models"
	"musicbot/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/go-playground/validator/v10"
)

var ErrValidation = errors.New("validation error")

type themeService interface {
	GetUserTheme(ctx context.Context, telegramID int64) *UserTheme
	SetUserTheme(ctx context.Context, telegramID int64, name string) (*UserTheme, error)
	UpdateThemeSettings(ctx context.Context, telegramID int64, settings ThemeSettings) (*UserTheme, error)
	FormatMessage(ctx context.Context, message string, telegramID int64) string
}

type ApplyThemeRequest struct {
	TelegramID int64  `json:"telegramId" validate:"required"`
	Theme      string `json:"theme"      validate:"required,oneof=default dark music forest ocean"`
}

type CustomThemeRequest struct {
	TelegramID int64 `json:"telegramId" validate:"required"`
	ThemeSettings
}

type ThemeController struct {
	themes   themeService
	validate *validator.Validate
	Config   config.Config
	log      logger.Logger
}

type ThemeControllerInterface interface {
	Presets() []services.ThemePreset
	Get(ctx context.Context, telegramID int64) *UserTheme
	Apply(ctx context.Context, request *ApplyThemeRequest) (*UserTheme, error)
	Customize(ctx context.Context, request *CustomThemeRequest) (*UserTheme, error)
	Format(ctx context.Context, telegramID int64, text string) string
}

func New(svc services.Service, config config.Config) ThemeControllerInterface {
	return NewWithService(svc.Theme, config)
}

func NewWithService(themes themeService, config config.Config) ThemeControllerInterface {
	return &ThemeController{
		themes:   themes,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		Config:   config,
		log:      logger.New("themeController"),
	}
}

func (tc *ThemeController) Presets() []services.ThemePreset {
	return services.PresetThemes()
}

func (tc *ThemeController) Get(ctx context.Context, telegramID int64) *UserTheme {
	return tc.themes.GetUserTheme(ctx, telegramID)
}

func (tc *ThemeController) Apply(ctx context.Context, request *ApplyThemeRequest) (*UserTheme, error) {
	if err := tc.validate.Struct(request); err != nil {
		return nil, errors.Join(ErrValidation, err)
	}
	return tc.themes.SetUserTheme(ctx, request.TelegramID, request.Theme)
}

func (tc *ThemeController) Customize(ctx context.Context, request *CustomThemeRequest) (*UserTheme, error) {
	log := tc.log.Function("Customize")

	if err := tc.validate.Struct(request); err != nil {
		return nil, errors.Join(ErrValidation, err)
	}

	theme, err := tc.themes.UpdateThemeSettings(ctx, request.TelegramID, request.ThemeSettings)
	if err != nil {
		return nil, log.Err("failed to customize theme", err, "telegramID", request.TelegramID)
	}
	return theme, nil
}

// Format replaces {emoji:name} placeholders using the user's emoji set.
func (tc *ThemeController) Format(ctx context.Context, telegramID int64, text string) string {
	return tc.themes.FormatMessage(ctx, text, telegramID)
}
