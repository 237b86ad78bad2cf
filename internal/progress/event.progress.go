package progress

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

type Phase string

const (
	PhaseDownloading Phase = "downloading"
	PhaseFinished    Phase = "finished"
	PhaseErrored     Phase = "error"
)

const (
	BarWidth = 20
	unknown  = "Unknown"
)

// Event is a normalized transfer progress report. A zero BytesTotal means the
// total size is unknown.
type Event struct {
	Phase            Phase
	BytesTransferred int64
	BytesTotal       int64
	Speed            *float64
	ETA              *float64
	ErrorMessage     string
}

func Downloading(transferred, total int64) Event {
	return clamp(Event{Phase: PhaseDownloading, BytesTransferred: transferred, BytesTotal: total})
}

func Finished(total int64) Event {
	return Event{Phase: PhaseFinished, BytesTransferred: total, BytesTotal: total}
}

func Errored(message string) Event {
	return Event{Phase: PhaseErrored, ErrorMessage: message}
}

// Normalize converts a raw downloader progress dictionary into an Event. It
// never fails: malformed fields are treated as absent.
func Normalize(raw map[string]any) Event {
	event := Event{Phase: PhaseDownloading}

	switch strings.ToLower(asString(raw["status"])) {
	case "finished":
		event.Phase = PhaseFinished
	case "error":
		event.Phase = PhaseErrored
		event.ErrorMessage = asString(raw["error"])
		if event.ErrorMessage == "" {
			event.ErrorMessage = "download failed"
		}
	}

	if v, ok := asFloat(raw["downloaded_bytes"]); ok && v > 0 {
		event.BytesTransferred = int64(v)
	}

	if v, ok := asFloat(raw["total_bytes"]); ok && v > 0 {
		event.BytesTotal = int64(v)
	} else if v, ok := asFloat(raw["total_bytes_estimate"]); ok && v > 0 {
		event.BytesTotal = int64(v)
	}

	if v, ok := asFloat(raw["speed"]); ok && v >= 0 {
		event.Speed = &v
	}
	if v, ok := asFloat(raw["eta"]); ok && v >= 0 {
		event.ETA = &v
	}

	if event.Phase == PhaseFinished && event.BytesTotal == 0 {
		event.BytesTotal = event.BytesTransferred
	}

	return clamp(event)
}

// ParseLine decodes one JSON progress line as printed by the downloader.
func ParseLine(line []byte) (Event, error) {
	var raw map[string]any
	if err := json.Unmarshal(line, &raw); err != nil {
		return Event{}, fmt.Errorf("decode progress line: %w", err)
	}
	return Normalize(raw), nil
}

func clamp(e Event) Event {
	if e.BytesTransferred < 0 {
		e.BytesTransferred = 0
	}
	if e.BytesTotal < 0 {
		e.BytesTotal = 0
	}
	if e.BytesTotal > 0 && e.BytesTransferred > e.BytesTotal {
		e.BytesTransferred = e.BytesTotal
	}
	return e
}

// Percent returns floor(transferred/total*100) and false when the total is unknown.
func (e Event) Percent() (int, bool) {
	if e.BytesTotal <= 0 {
		return 0, false
	}
	return int(e.BytesTransferred * 100 / e.BytesTotal), true
}

func (e Event) FormatSpeed() string {
	if e.Speed == nil {
		return unknown
	}
	return FormatBytes(*e.Speed) + "/s"
}

func (e Event) FormatETA() string {
	if e.ETA == nil {
		return unknown
	}
	seconds := int(math.Round(*e.ETA))
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func FormatBytes(n float64) string {
	units := []string{"B", "KiB", "MiB", "GiB"}
	i := 0
	for n >= 1024 && i < len(units)-1 {
		n /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%.0f %s", n, units[i])
	}
	return fmt.Sprintf("%.1f %s", n, units[i])
}

func RenderBar(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * BarWidth / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", BarWidth-filled)
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

func asFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
