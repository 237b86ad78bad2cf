package utils

import (
	"strings"
	"unicode/utf8"
)

const MaxFilenameLength = 200

var filenameReplacer = strings.NewReplacer(
	"/", "_", "\\", "_", "*", "_", "?", "_", ":", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
)

// CleanUTF8 removes or replaces invalid UTF8 characters from a string
// Returns the cleaned string and a boolean indicating if cleaning was needed
func CleanUTF8(input string) (string, bool) {
	needsCleaning := strings.Contains(input, "\x00") || !utf8.ValidString(input)

	if !needsCleaning {
		return input, false
	}

	cleaned := strings.ToValidUTF8(input, "")
	cleaned = strings.ReplaceAll(cleaned, "\x00", "")

	return cleaned, true
}

// CleanFilename makes a display name safe for use as a file name: reserved
// characters become underscores, surrounding spaces and dots are trimmed and
// the result is capped at MaxFilenameLength characters.
func CleanFilename(name string) string {
	name, _ = CleanUTF8(name)
	name = filenameReplacer.Replace(name)
	name = strings.Trim(name, " .")

	runes := []rune(name)
	if len(runes) > MaxFilenameLength {
		name = string(runes[:MaxFilenameLength])
	}
	return name
}

// ChunkText splits text into pieces of at most limit runes, preferring line
// boundaries. Lines longer than limit are hard split. Blank lines are kept,
// including one that opens a chunk.
func ChunkText(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" || limit <= 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder
	currentLen, lines := 0, 0

	flush := func() {
		if strings.TrimSpace(current.String()) != "" {
			chunks = append(chunks, current.String())
		}
		current.Reset()
		currentLen, lines = 0, 0
	}

	for _, line := range strings.Split(text, "\n") {
		lineRunes := []rune(line)

		for len(lineRunes) > limit {
			flush()
			chunks = append(chunks, string(lineRunes[:limit]))
			lineRunes = lineRunes[limit:]
		}

		needed := len(lineRunes)
		if lines > 0 {
			needed++
		}
		if currentLen+needed > limit {
			flush()
			needed = len(lineRunes)
		}

		if lines > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(string(lineRunes))
		currentLen += needed
		lines++
	}
	flush()

	return chunks
}

// SplitArtistTitle splits "Artist - Title" video titles. ok is false when no
// separator is present.
func SplitArtistTitle(full string) (artist, title string, ok bool) {
	parts := strings.SplitN(full, " - ", 2)
	if len(parts) != 2 {
		return "", strings.TrimSpace(full), false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}
