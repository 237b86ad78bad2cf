package models

import "fmt"

type Platform string

const (
	PlatformYouTube        Platform = "youtube"
	PlatformSpotify        Platform = "spotify"
	PlatformRecommendation Platform = "recommendation"
)

func ParsePlatform(value string) (Platform, error) {
	switch Platform(value) {
	case PlatformYouTube, PlatformSpotify:
		return Platform(value), nil
	default:
		return "", fmt.Errorf("unsupported platform %q", value)
	}
}

func (p Platform) Label() string {
	switch p {
	case PlatformYouTube:
		return "YouTube"
	case PlatformSpotify:
		return "Spotify"
	default:
		return string(p)
	}
}

// Track is a catalog search result. It is not persisted.
type Track struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Artist    string   `json:"artist"`
	Album     string   `json:"album,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	Platform  Platform `json:"platform"`
}

func (t Track) URL() string {
	switch t.Platform {
	case PlatformSpotify:
		return "https://open.spotify.com/track/" + t.ID
	default:
		return "https://www.youtube.com/watch?v=" + t.ID
	}
}

// ArtistResult is a catalog artist or channel matched by name.
type ArtistResult struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Platform Platform `json:"platform"`
}
