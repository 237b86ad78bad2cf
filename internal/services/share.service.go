package services

import (
	"fmt"
	"net/url"
	"strings"

	"musicbot/internal/models"
)

type ShareLinks struct {
	Twitter  string `json:"twitter"`
	Facebook string `json:"facebook"`
	WhatsApp string `json:"whatsapp"`
	Telegram string `json:"telegram"`
	Direct   string `json:"direct"`
}

// GenerateShareLinks builds social share URLs for a catalog track.
func GenerateShareLinks(title, artist string, platform models.Platform, trackID string) ShareLinks {
	text := url.PathEscape(fmt.Sprintf("🎵 Listening to %s by %s", title, artist))
	direct := models.Track{ID: trackID, Platform: platform}.URL()
	encodedURL := url.QueryEscape(direct)

	return ShareLinks{
		Twitter:  fmt.Sprintf("https://twitter.com/intent/tweet?text=%s&url=%s", text, encodedURL),
		Facebook: "https://www.facebook.com/sharer/sharer.php?u=" + encodedURL,
		WhatsApp: fmt.Sprintf("https://wa.me/?text=%s%%20%s", text, encodedURL),
		Telegram: fmt.Sprintf("https://t.me/share/url?url=%s&text=%s", encodedURL, text),
		Direct:   direct,
	}
}

// ShareMessage lists every share link for one track.
func ShareMessage(title, artist string, links ShareLinks) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Share '%s' by %s:\n\n", title, artist)
	fmt.Fprintf(&b, "🐦 Twitter: %s\n\n", links.Twitter)
	fmt.Fprintf(&b, "📘 Facebook: %s\n\n", links.Facebook)
	fmt.Fprintf(&b, "📱 WhatsApp: %s\n\n", links.WhatsApp)
	fmt.Fprintf(&b, "📢 Telegram: %s\n\n", links.Telegram)
	fmt.Fprintf(&b, "🔗 Direct link: %s", links.Direct)
	return b.String()
}
