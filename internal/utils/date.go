package utils

import (
	"fmt"
	"time"
)

var releaseDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseReleaseDate accepts catalog release dates at year, month or day
// precision as well as full RFC3339 timestamps. The result is in UTC.
func ParseReleaseDate(value string) (time.Time, error) {
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized release date %q", value)
}

func FormatDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
