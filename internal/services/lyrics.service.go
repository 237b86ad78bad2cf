package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"musicbot/config"
	"musicbot/internal/constants"
	"musicbot/internal/database"
	"musicbot/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/PuerkitoBio/goquery"
	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
)

const GeniusAPIBaseURL = "https://api.genius.com"

var (
	ErrLyricsUnavailable = errors.New("lyrics service is not configured")
	ErrLyricsNotFound    = errors.New("no lyrics found")
)

var (
	sectionHeader = regexp.MustCompile(`^\[[^\]]*\]$`)
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

type Lyrics struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	URL         string `json:"url"`
	ArtImageURL string `json:"artImageUrl,omitempty"`
	Text        string `json:"text"`
}

type geniusSearchResponse struct {
	Response struct {
		Hits []struct {
			Type   string `json:"type"`
			Result struct {
				Title           string `json:"title"`
				URL             string `json:"url"`
				SongArtImageURL string `json:"song_art_image_url"`
				PrimaryArtist   struct {
					Name string `json:"name"`
				} `json:"primary_artist"`
			} `json:"result"`
		} `json:"hits"`
	} `json:"response"`
}

type LyricsService struct {
	client  *http.Client
	baseURL string
	token   string
	cache   database.CacheClient
	breaker *gobreaker.CircuitBreaker[any]
	log     logger.Logger
}

func NewLyricsService(cfg config.Config, cache database.CacheClient) *LyricsService {
	log := logger.New("lyricsService")
	if cfg.GeniusAccessToken == "" {
		log.Warn("GENIUS_ACCESS_TOKEN not set, lyrics disabled")
	}

	return &LyricsService{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: GeniusAPIBaseURL,
		token:   cfg.GeniusAccessToken,
		cache:   cache,
		breaker: newBreaker("genius", log),
		log:     log,
	}
}

func (s *LyricsService) Enabled() bool {
	return s.token != ""
}

// Search finds lyrics for a song. artist may be empty.
func (s *LyricsService) Search(ctx context.Context, title, artist string) (*Lyrics, error) {
	log := s.log.Function("Search")

	if !s.Enabled() {
		return nil, ErrLyricsUnavailable
	}

	query := strings.TrimSpace(title + " " + artist)
	if query == "" {
		return nil, ErrLyricsNotFound
	}

	cacheKey := strings.ToLower(query)
	var cached Lyrics
	found, err := database.NewCacheBuilder(s.cache, cacheKey).
		WithHash(constants.LyricsCachePrefix).
		WithContext(ctx).
		Get(&cached)
	if err != nil {
		log.Warn("failed to read lyrics cache", "query", query, "error", err)
	}
	if found {
		return &cached, nil
	}

	lyrics, err := guarded(s.breaker, "genius", func() (*Lyrics, error) {
		return s.fetch(ctx, query)
	})
	if err != nil {
		if errors.Is(err, ErrLyricsNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to fetch lyrics", err, "query", query)
	}

	if err := database.NewCacheBuilder(s.cache, cacheKey).
		WithHash(constants.LyricsCachePrefix).
		WithStruct(lyrics).
		WithTTL(constants.LyricsCacheExpiry).
		WithContext(ctx).
		Set(); err != nil {
		log.Warn("failed to cache lyrics", "query", query, "error", err)
	}

	return lyrics, nil
}

func (s *LyricsService) fetch(ctx context.Context, query string) (*Lyrics, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s", s.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("genius search returned status %d", resp.StatusCode)
	}

	var search geniusSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("decode genius search: %w", err)
	}

	for _, hit := range search.Response.Hits {
		if hit.Type != "song" || hit.Result.URL == "" {
			continue
		}
		text, err := s.scrape(ctx, hit.Result.URL)
		if err != nil {
			return nil, err
		}
		if text == "" {
			return nil, ErrLyricsNotFound
		}
		return &Lyrics{
			Title:       hit.Result.Title,
			Artist:      hit.Result.PrimaryArtist.Name,
			URL:         hit.Result.URL,
			ArtImageURL: hit.Result.SongArtImageURL,
			Text:        text,
		}, nil
	}

	return nil, ErrLyricsNotFound
}

func (s *LyricsService) scrape(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; musicbot)")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lyrics page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse lyrics page: %w", err)
	}

	return ExtractLyrics(doc), nil
}

// ExtractLyrics collects the lyric containers of a Genius song page with
// section headers removed.
func ExtractLyrics(doc *goquery.Document) string {
	var parts []string
	doc.Find(`div[data-lyrics-container="true"]`).Each(func(_ int, container *goquery.Selection) {
		container.Find("br").ReplaceWithHtml("\n")
		parts = append(parts, container.Text())
	})

	lines := strings.Split(strings.Join(parts, "\n"), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if sectionHeader.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}

	text := strings.Join(kept, "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// ChunkLyrics renders lyrics as chat sized messages, the first carrying a
// header.
func ChunkLyrics(lyrics *Lyrics, limit int) []string {
	header := fmt.Sprintf("🎵 %s by %s\n\n", lyrics.Title, lyrics.Artist)
	chunks := utils.ChunkText(header+lyrics.Text, limit)
	if len(chunks) == 0 {
		return []string{strings.TrimSpace(header)}
	}
	return chunks
}
