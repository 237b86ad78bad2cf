package models

import (
	"gorm.io/datatypes"
)

const CustomThemeName = "custom"

type UserTheme struct {
	BaseModel
	TelegramID     int64          `gorm:"type:bigint;uniqueIndex;not null" json:"telegramId"`
	ThemeName      string         `gorm:"type:text;not null"               json:"themeName"`
	PrimaryColor   string         `gorm:"type:text;not null"               json:"primaryColor"`
	SecondaryColor string         `gorm:"type:text;not null"               json:"secondaryColor"`
	AccentColor    string         `gorm:"type:text;not null"               json:"accentColor"`
	FontStyle      string         `gorm:"type:text;not null"               json:"fontStyle"`
	EmojiSet       string         `gorm:"type:text;not null"               json:"emojiSet"`
	Settings       datatypes.JSON `gorm:"type:jsonb"                       json:"settings,omitempty"`
}

// ThemeSettings is a partial update of a user's theme. Nil fields are kept.
type ThemeSettings struct {
	PrimaryColor   *string `json:"primaryColor,omitempty"   validate:"omitempty,hexcolor"`
	SecondaryColor *string `json:"secondaryColor,omitempty" validate:"omitempty,hexcolor"`
	AccentColor    *string `json:"accentColor,omitempty"    validate:"omitempty,hexcolor"`
	FontStyle      *string `json:"fontStyle,omitempty"      validate:"omitempty,oneof=default monospace rounded serif"`
	EmojiSet       *string `json:"emojiSet,omitempty"       validate:"omitempty,oneof=default minimal music nature sea"`
}

// Apply merges the settings into the theme and marks it as custom.
func (s ThemeSettings) Apply(theme *UserTheme) {
	if s.PrimaryColor != nil {
		theme.PrimaryColor = *s.PrimaryColor
	}
	if s.SecondaryColor != nil {
		theme.SecondaryColor = *s.SecondaryColor
	}
	if s.AccentColor != nil {
		theme.AccentColor = *s.AccentColor
	}
	if s.FontStyle != nil {
		theme.FontStyle = *s.FontStyle
	}
	if s.EmojiSet != nil {
		theme.EmojiSet = *s.EmojiSet
	}
	theme.ThemeName = CustomThemeName
}
