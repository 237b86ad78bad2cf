package models

import "time"

// ChatStep is what the bot is waiting for next in a chat.
type ChatStep string

const (
	StepIdle              ChatStep = ""
	StepAwaitingPlatform  ChatStep = "awaiting_platform"
	StepAwaitingQuery     ChatStep = "awaiting_query"
	StepAwaitingLyrics    ChatStep = "awaiting_lyrics"
	StepAwaitingArtist    ChatStep = "awaiting_artist"
	StepAwaitingConvert   ChatStep = "awaiting_convert_file"
	StepAwaitingRecommend ChatStep = "awaiting_recommend_query"
)

// ChatState is the per-chat conversation state. It lives in the session
// cache only.
type ChatState struct {
	Step      ChatStep  `json:"step,omitempty"`
	Platform  Platform  `json:"platform,omitempty"`
	Results   []Track   `json:"results,omitempty"`
	Direction string    `json:"direction,omitempty"`
	Artist    string    `json:"artist,omitempty"`
	Query     string    `json:"query,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Result returns the stored search result at index.
func (s *ChatState) Result(index int) (Track, bool) {
	if s == nil || index < 0 || index >= len(s.Results) {
		return Track{}, false
	}
	return s.Results[index], true
}
