package bot

import (
	"fmt"
	"strconv"

	"musicbot/internal/models"
	"musicbot/internal/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	genresPerRow     = 3
	maxButtonLabel   = 60
	themeColorFields = 3
)

type colorOption struct {
	Name  string
	Value string
}

// colorOptions holds the palette offered per customizable color.
var colorOptions = map[string][]colorOption{
	"primary": {
		{"Blue", "#0088CC"}, {"Red", "#E91E63"}, {"Green", "#2E7D32"},
		{"Purple", "#9C27B0"}, {"Orange", "#FF9800"}, {"Black", "#1E1E1E"},
	},
	"secondary": {
		{"White", "#FFFFFF"}, {"Light Gray", "#F5F5F5"}, {"Dark Gray", "#333333"},
		{"Light Blue", "#E3F2FD"}, {"Light Pink", "#FCE4EC"}, {"Light Green", "#E8F5E9"},
	},
	"accent": {
		{"Cyan", "#00BCD4"}, {"Amber", "#FFC107"}, {"Lime", "#CDDC39"},
		{"Teal", "#009688"}, {"Pink", "#FF4081"}, {"Deep Purple", "#673AB7"},
	},
}

var colorLabels = map[string]string{
	"primary":   "🔵 Primary Color",
	"secondary": "⚪ Background Color",
	"accent":    "🟢 Accent Color",
}

type styleOption struct {
	ID    string
	Label string
}

var emojiSetOptions = []styleOption{
	{"default", "Default 🎵 🔍 ⬇️ 📝"},
	{"minimal", "Minimal ♪ → ↓ ✎"},
	{"music", "Music 🎧 🔍 📥 🎤"},
	{"nature", "Nature 🍃 🔍 🌱 🌷"},
	{"sea", "Ocean 🐠 🔍 🌊 🐚"},
}

var fontStyleOptions = []styleOption{
	{"default", "Default"},
	{"monospace", "Monospace"},
	{"serif", "Serif"},
	{"rounded", "Rounded"},
}

func platformKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("YouTube", mustCallback(actPlatform, string(models.PlatformYouTube))),
			tgbotapi.NewInlineKeyboardButtonData("Spotify", mustCallback(actPlatform, string(models.PlatformSpotify))),
		),
	)
}

func resultsKeyboard(tracks []models.Track) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(tracks)+1)
	for i, track := range tracks {
		label := truncateLabel(fmt.Sprintf("%s - %s", track.Title, track.Artist))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, mustCallback(actSelect, strconv.Itoa(i))),
		))
	}
	rows = append(rows, cancelRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func trackOptionsKeyboard(index int) tgbotapi.InlineKeyboardMarkup {
	i := strconv.Itoa(index)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("▶️ Preview (30s with waveform)", mustCallback(actPreview, i)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬇️ Download Full Song", mustCallback(actDownload, i)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📤 Share", mustCallback(actShare, i)),
		),
	)
}

func downloadKeyboard(index int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬇️ Download Full Song", mustCallback(actDownload, strconv.Itoa(index))),
		),
	)
}

func shareKeyboard(links services.ShareLinks) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🐦 Twitter", links.Twitter),
			tgbotapi.NewInlineKeyboardButtonURL("📘 Facebook", links.Facebook),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📱 WhatsApp", links.WhatsApp),
			tgbotapi.NewInlineKeyboardButtonURL("📢 Telegram", links.Telegram),
		),
	)
}

func convertKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("MP3 to MP4", mustCallback(actConvert, string(services.MP3ToMP4))),
			tgbotapi.NewInlineKeyboardButtonData("MP4 to MP3", mustCallback(actConvert, string(services.MP4ToMP3))),
		),
		cancelRow(),
	)
}

func subscribeMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Subscribe to Artist", mustCallback(actSubNew)),
			tgbotapi.NewInlineKeyboardButtonData("Manage Subscriptions", mustCallback(actSubManage)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Toggle Notifications", mustCallback(actSubToggle)),
		),
	)
}

func subscribePlatformKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Spotify", mustCallback(actSubPlatform, string(models.PlatformSpotify))),
			tgbotapi.NewInlineKeyboardButtonData("YouTube", mustCallback(actSubPlatform, string(models.PlatformYouTube))),
		),
		cancelRow(),
	)
}

func manageSubscriptionsKeyboard(subs []models.ArtistSubscription) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(subs)+1)
	for _, sub := range subs {
		label := truncateLabel(fmt.Sprintf("❌ %s (%s)", sub.ArtistName, sub.Platform.Label()))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, mustCallback(actUnsubscribe, sub.ID.String())),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Done", mustCallback(actSubDone)),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func genreKeyboard(genres []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(genres)/genresPerRow+2)
	var row []tgbotapi.InlineKeyboardButton
	for _, genre := range genres {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(genre, mustCallback(actGenre, genre)))
		if len(row) == genresPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔍 Based on a song", mustCallback(actCustomRec)),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// themeKeyboard lists the presets, marking current, plus the custom menus.
func themeKeyboard(presets []services.ThemePreset, current string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(presets)+3)
	for _, preset := range presets {
		label := "🎨 " + preset.Name
		if preset.Key == current {
			label += " ✓"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, mustCallback(actTheme, preset.Key)),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🖌️ Customize Colors", mustCallback(actThemeColors))),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("😀 Change Emoji Set", mustCallback(actThemeEmoji))),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔤 Change Font Style", mustCallback(actThemeFont))),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func themeColorsKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, themeColorFields+1)
	for _, field := range []string{"primary", "secondary", "accent"} {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(colorLabels[field], mustCallback(actThemeColor, field)),
		))
	}
	rows = append(rows, backToThemesRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func colorChoiceKeyboard(field string) tgbotapi.InlineKeyboardMarkup {
	options := colorOptions[field]
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(options)+1)
	for _, option := range options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s (%s)", option.Name, option.Value),
				mustCallback(actThemeSet, field, option.Value),
			),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("← Back to Colors", mustCallback(actThemeColors)),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// styleKeyboard builds the emoji set or font style chooser for setting.
func styleKeyboard(setting string, options []styleOption, current string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(options)+1)
	for _, option := range options {
		label := option.Label
		if option.ID == current {
			label += " ✓"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, mustCallback(actThemeSet, setting, option.ID)),
		))
	}
	rows = append(rows, backToThemesRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func backToThemesRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("← Back to Themes", mustCallback(actTheme)),
	)
}

func cancelRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Cancel", mustCallback(actCancel)),
	)
}

func truncateLabel(label string) string {
	runes := []rune(label)
	if len(runes) <= maxButtonLabel {
		return label
	}
	return string(runes[:maxButtonLabel-1]) + "…"
}
