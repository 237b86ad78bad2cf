package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "reserved characters", input: `AC/DC: Back\In*Black?"<>|`, want: "AC_DC_ Back_In_Black_____"},
		{name: "trims spaces and dots", input: "  ..Song - Artist.. ", want: "Song - Artist"},
		{name: "plain", input: "Hello - World", want: "Hello - World"},
		{name: "only dots", input: " . . ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanFilename(tt.input))
		})
	}
}

func TestCleanFilename_Truncates(t *testing.T) {
	got := CleanFilename(strings.Repeat("é", 250))
	assert.Len(t, []rune(got), MaxFilenameLength)
}

func TestCleanUTF8(t *testing.T) {
	cleaned, changed := CleanUTF8("ok\x00go")
	assert.True(t, changed)
	assert.Equal(t, "okgo", cleaned)

	cleaned, changed = CleanUTF8("fine")
	assert.False(t, changed)
	assert.Equal(t, "fine", cleaned)
}

func TestChunkText(t *testing.T) {
	text := "line one\nline two\nline three"

	chunks := ChunkText(text, 18)
	assert.Equal(t, []string{"line one\nline two", "line three"}, chunks)

	assert.Equal(t, []string{text}, ChunkText(text, 4000))
	assert.Nil(t, ChunkText("   ", 10))
	assert.Equal(t, []string{"abcd", "ef"}, ChunkText("abcdef", 4))
}

func TestChunkText_KeepsStanzaBreakAtBoundary(t *testing.T) {
	chunks := ChunkText("aaaa\nbbbb\n\ncc", 9)
	assert.Equal(t, []string{"aaaa\nbbbb", "\ncc"}, chunks)
	assert.Equal(t, "aaaa\nbbbb\n\ncc", strings.Join(chunks, "\n"))
}

func TestChunkText_RespectsLimit(t *testing.T) {
	text := strings.Repeat("la la la la\n", 1000)
	for _, chunk := range ChunkText(text, 4000) {
		assert.LessOrEqual(t, len([]rune(chunk)), 4000)
	}
}

func TestSplitArtistTitle(t *testing.T) {
	artist, title, ok := SplitArtistTitle("Daft Punk - One More Time")
	assert.True(t, ok)
	assert.Equal(t, "Daft Punk", artist)
	assert.Equal(t, "One More Time", title)

	_, title, ok = SplitArtistTitle("Just A Title")
	assert.False(t, ok)
	assert.Equal(t, "Just A Title", title)
}

func TestParseReleaseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-05-17", time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)},
		{"2024-05", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"2024", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-05-17T10:00:00Z", time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseReleaseDate(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
			assert.Equal(t, tt.want.Format("2006-01-02"), FormatDay(got))
		})
	}

	_, err := ParseReleaseDate("soon")
	assert.Error(t, err)
}
