package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"musicbot/config"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const songPage = `<html><body>
<div data-lyrics-container="true">[Verse 1]<br>Line one<br>Line two<br><br><br><br>[Chorus]<br>Hook line</div>
<div class="ad">Buy now</div>
<div data-lyrics-container="true">Outro line</div>
</body></html>`

func TestExtractLyrics(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(songPage))
	require.NoError(t, err)

	got := ExtractLyrics(doc)

	assert.Equal(t, "Line one\nLine two\n\nHook line\nOutro line", got)
	assert.NotContains(t, got, "Buy now")
}

func newGeniusServer(t *testing.T, hits string) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprintf(w, `{"response":{"hits":%s}}`, strings.ReplaceAll(hits, "{{base}}", server.URL))
		case "/song":
			_, _ = w.Write([]byte(songPage))
		case "/empty":
			_, _ = w.Write([]byte("<html><body>No lyrics here</body></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestLyricsService(baseURL string) *LyricsService {
	service := NewLyricsService(config.Config{GeniusAccessToken: "test-token"}, nil)
	service.baseURL = baseURL
	return service
}

func TestLyricsService_Search(t *testing.T) {
	tests := []struct {
		name    string
		hits    string
		wantErr error
		want    string
	}{
		{
			name: "song hit",
			hits: `[{"type":"song","result":{"title":"Hello","url":"{{base}}/song","primary_artist":{"name":"Adele"}}}]`,
			want: "Line one",
		},
		{
			name:    "no hits",
			hits:    `[]`,
			wantErr: ErrLyricsNotFound,
		},
		{
			name:    "page without lyrics",
			hits:    `[{"type":"song","result":{"title":"Hello","url":"{{base}}/empty","primary_artist":{"name":"Adele"}}}]`,
			wantErr: ErrLyricsNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newGeniusServer(t, tt.hits)
			service := newTestLyricsService(server.URL)

			lyrics, err := service.Search(context.Background(), "Hello", "Adele")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Hello", lyrics.Title)
			assert.Equal(t, "Adele", lyrics.Artist)
			assert.Contains(t, lyrics.Text, tt.want)
		})
	}
}

func TestLyricsService_NotFoundKeepsBreakerClosed(t *testing.T) {
	server := newGeniusServer(t, `[]`)
	service := newTestLyricsService(server.URL)

	for range breakerConsecutiveFailures + 1 {
		_, err := service.Search(context.Background(), "nothing", "")
		assert.ErrorIs(t, err, ErrLyricsNotFound)
	}
	assert.Equal(t, "closed", service.breaker.State().String())
}

func TestLyricsService_Disabled(t *testing.T) {
	service := NewLyricsService(config.Config{}, nil)

	_, err := service.Search(context.Background(), "Hello", "Adele")

	assert.ErrorIs(t, err, ErrLyricsUnavailable)
}

func TestChunkLyrics(t *testing.T) {
	lyrics := &Lyrics{Title: "Song", Artist: "Band", Text: strings.Repeat("la la la\n", 20)}

	chunks := ChunkLyrics(lyrics, 50)

	require.Greater(t, len(chunks), 1)
	assert.True(t, strings.HasPrefix(chunks[0], "🎵 Song by Band"))
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 50)
	}
}
