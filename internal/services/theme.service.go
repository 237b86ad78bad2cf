package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"musicbot/internal/models"
	"musicbot/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"gorm.io/datatypes"
)

const (
	DefaultThemeName = "default"
	fallbackEmoji    = "•"
)

var ErrUnknownTheme = errors.New("unknown theme")

type ThemePreset struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	AccentColor    string `json:"accentColor"`
	FontStyle      string `json:"fontStyle"`
	EmojiSet       string `json:"emojiSet"`
	Description    string `json:"description"`
}

var presetOrder = []string{"default", "dark", "music", "forest", "ocean"}

var presetThemes = map[string]ThemePreset{
	"default": {
		Key:            "default",
		Name:           "Default",
		PrimaryColor:   "#0088CC",
		SecondaryColor: "#FFFFFF",
		AccentColor:    "#27AE60",
		FontStyle:      "default",
		EmojiSet:       "default",
		Description:    "The default Telegram-style theme",
	},
	"dark": {
		Key:            "dark",
		Name:           "Dark Mode",
		PrimaryColor:   "#1E1E1E",
		SecondaryColor: "#333333",
		AccentColor:    "#7289DA",
		FontStyle:      "monospace",
		EmojiSet:       "minimal",
		Description:    "A sleek dark theme for night-time browsing",
	},
	"music": {
		Key:            "music",
		Name:           "Music Lover",
		PrimaryColor:   "#E91E63",
		SecondaryColor: "#F8BBD0",
		AccentColor:    "#9C27B0",
		FontStyle:      "rounded",
		EmojiSet:       "music",
		Description:    "Vibrant theme for music enthusiasts",
	},
	"forest": {
		Key:            "forest",
		Name:           "Forest",
		PrimaryColor:   "#2E7D32",
		SecondaryColor: "#C8E6C9",
		AccentColor:    "#FFC107",
		FontStyle:      "serif",
		EmojiSet:       "nature",
		Description:    "A calming nature-inspired theme",
	},
	"ocean": {
		Key:            "ocean",
		Name:           "Ocean",
		PrimaryColor:   "#0277BD",
		SecondaryColor: "#B3E5FC",
		AccentColor:    "#00BCD4",
		FontStyle:      "default",
		EmojiSet:       "sea",
		Description:    "Cool ocean vibes",
	},
}

var emojiSets = map[string]map[string]string{
	"default": {
		"music": "🎵", "search": "🔍", "download": "⬇️", "convert": "🔄", "lyrics": "📝",
		"trending": "📈", "recommend": "👍", "settings": "⚙️", "theme": "🎨",
		"success": "✅", "error": "❌", "warning": "⚠️", "info": "ℹ️",
	},
	"minimal": {
		"music": "♪", "search": "→", "download": "↓", "convert": "⇄", "lyrics": "✎",
		"trending": "↑", "recommend": "+", "settings": "◎", "theme": "◇",
		"success": "✓", "error": "×", "warning": "!", "info": "i",
	},
	"music": {
		"music": "🎧", "search": "🔍", "download": "📥", "convert": "🔁", "lyrics": "🎤",
		"trending": "🔥", "recommend": "🎯", "settings": "🎛️", "theme": "🎨",
		"success": "🎶", "error": "📛", "warning": "⚠️", "info": "💡",
	},
	"nature": {
		"music": "🍃", "search": "🔍", "download": "🌱", "convert": "🌿", "lyrics": "🌷",
		"trending": "☀️", "recommend": "🌟", "settings": "🌳", "theme": "🌈",
		"success": "🌺", "error": "🍂", "warning": "🌩️", "info": "💧",
	},
	"sea": {
		"music": "🐠", "search": "🔍", "download": "🌊", "convert": "🐙", "lyrics": "🐚",
		"trending": "🐬", "recommend": "⭐", "settings": "🧜‍♀️", "theme": "🐳",
		"success": "🐋", "error": "🦀", "warning": "🦑", "info": "🐟",
	},
}

var emojiPlaceholder = regexp.MustCompile(`\{emoji:(\w+)\}`)

// PresetThemes returns the built-in themes in display order.
func PresetThemes() []ThemePreset {
	presets := make([]ThemePreset, 0, len(presetOrder))
	for _, key := range presetOrder {
		presets = append(presets, presetThemes[key])
	}
	return presets
}

func LookupPreset(name string) (ThemePreset, bool) {
	preset, ok := presetThemes[name]
	return preset, ok
}

// EmojiFor resolves an emoji from a set, falling back to the default set and
// then to a bullet.
func EmojiFor(set, name string) string {
	if emoji, ok := emojiSets[set][name]; ok {
		return emoji
	}
	if emoji, ok := emojiSets[DefaultThemeName][name]; ok {
		return emoji
	}
	return fallbackEmoji
}

// FormatWithEmojiSet replaces {emoji:name} placeholders from one set.
func FormatWithEmojiSet(message, set string) string {
	return emojiPlaceholder.ReplaceAllStringFunc(message, func(match string) string {
		name := emojiPlaceholder.FindStringSubmatch(match)[1]
		return EmojiFor(set, name)
	})
}

func themeFromPreset(telegramID int64, preset ThemePreset) *models.UserTheme {
	theme := &models.UserTheme{TelegramID: telegramID}
	applyPreset(theme, preset)
	return theme
}

func applyPreset(theme *models.UserTheme, preset ThemePreset) {
	theme.ThemeName = preset.Key
	theme.PrimaryColor = preset.PrimaryColor
	theme.SecondaryColor = preset.SecondaryColor
	theme.AccentColor = preset.AccentColor
	theme.FontStyle = preset.FontStyle
	theme.EmojiSet = preset.EmojiSet
	theme.Settings = nil
}

type ThemeService struct {
	repo     repositories.ThemeRepository
	validate *validator.Validate
	log      logger.Logger
}

func NewThemeService(repo repositories.ThemeRepository) *ThemeService {
	return &ThemeService{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      logger.New("themeService"),
	}
}

// GetUserTheme returns the user's theme, creating the default theme on first
// use. Storage failures degrade to the default preset.
func (s *ThemeService) GetUserTheme(ctx context.Context, telegramID int64) *models.UserTheme {
	log := s.log.Function("GetUserTheme")

	theme, err := s.repo.GetByTelegramID(ctx, telegramID)
	switch {
	case err == nil:
		return theme
	case errors.Is(err, repositories.ErrThemeNotFound):
		theme = themeFromPreset(telegramID, presetThemes[DefaultThemeName])
		if err := s.repo.Save(ctx, theme); err != nil {
			log.Er("failed to create default theme", err, "telegramID", telegramID)
		} else {
			log.Info("Created default theme", "telegramID", telegramID)
		}
		return theme
	default:
		log.Er("failed to load theme, using default", err, "telegramID", telegramID)
		return themeFromPreset(telegramID, presetThemes[DefaultThemeName])
	}
}

func (s *ThemeService) SetUserTheme(ctx context.Context, telegramID int64, name string) (*models.UserTheme, error) {
	log := s.log.Function("SetUserTheme")

	preset, ok := presetThemes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}

	theme := s.GetUserTheme(ctx, telegramID)
	applyPreset(theme, preset)

	if err := s.repo.Save(ctx, theme); err != nil {
		return nil, log.Err("failed to save theme", err, "telegramID", telegramID, "theme", name)
	}

	log.Info("Theme updated", "telegramID", telegramID, "theme", name)
	return theme, nil
}

// UpdateThemeSettings applies a partial custom theme.
func (s *ThemeService) UpdateThemeSettings(
	ctx context.Context,
	telegramID int64,
	settings models.ThemeSettings,
) (*models.UserTheme, error) {
	log := s.log.Function("UpdateThemeSettings")

	if err := s.validate.Struct(settings); err != nil {
		return nil, err
	}

	theme := s.GetUserTheme(ctx, telegramID)
	settings.Apply(theme)

	raw, err := json.Marshal(settings)
	if err != nil {
		return nil, log.Err("failed to encode settings", err)
	}
	theme.Settings = datatypes.JSON(raw)

	if err := s.repo.Save(ctx, theme); err != nil {
		return nil, log.Err("failed to save custom theme", err, "telegramID", telegramID)
	}

	return theme, nil
}

// GetEmoji resolves an emoji from the user's set. A zero telegramID uses the
// default set.
func (s *ThemeService) GetEmoji(ctx context.Context, name string, telegramID int64) string {
	return EmojiFor(s.emojiSet(ctx, telegramID), name)
}

func (s *ThemeService) FormatMessage(ctx context.Context, message string, telegramID int64) string {
	if !emojiPlaceholder.MatchString(message) {
		return message
	}
	return FormatWithEmojiSet(message, s.emojiSet(ctx, telegramID))
}

func (s *ThemeService) emojiSet(ctx context.Context, telegramID int64) string {
	if telegramID == 0 {
		return DefaultThemeName
	}
	theme, err := s.repo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return DefaultThemeName
	}
	return theme.EmojiSet
}
