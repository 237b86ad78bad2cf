package searchController

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"musicbot/config"
	. "musicbot/internal/models"
	"musicbot/internal/repositories"
	"musicbot/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	MaxQueryLength      = 200
	DefaultHistoryLimit = 10
)

var (
	ErrEmptyQuery      = errors.New("search query is required")
	ErrQueryTooLong    = fmt.Errorf("search query exceeds %d characters", MaxQueryLength)
	ErrInvalidPlatform = errors.New("unsupported platform")
	ErrNoSelection     = errors.New("selected result is no longer available")
)

type SearchController struct {
	catalogs  map[Platform]services.TrackSearcher
	userRepo  repositories.UserRepository
	history   repositories.SearchHistoryRepository
	chatState repositories.ChatStateRepository
	Config    config.Config
	log       logger.Logger
}

type SearchControllerInterface interface {
	Search(ctx context.Context, telegramID int64, platform Platform, query string) ([]Track, error)
	History(ctx context.Context, telegramID int64, limit int) ([]SearchHistory, error)
	Selection(ctx context.Context, telegramID int64, index int) (Track, error)
}

func New(repos repositories.Repository, svc services.Service, config config.Config) SearchControllerInterface {
	return NewWithCatalogs(repos, map[Platform]services.TrackSearcher{
		PlatformYouTube: svc.YouTube,
		PlatformSpotify: svc.Spotify,
	}, config)
}

func NewWithCatalogs(
	repos repositories.Repository,
	catalogs map[Platform]services.TrackSearcher,
	config config.Config,
) SearchControllerInterface {
	return &SearchController{
		catalogs:  catalogs,
		userRepo:  repos.User,
		history:   repos.SearchHistory,
		chatState: repos.ChatState,
		Config:    config,
		log:       logger.New("searchController"),
	}
}

// Search queries one catalog. For chat users (telegramID != 0) the query is
// recorded and the results are kept in the chat state for later selection.
func (sc *SearchController) Search(
	ctx context.Context,
	telegramID int64,
	platform Platform,
	query string,
) ([]Track, error) {
	log := sc.log.Function("Search")

	query = strings.TrimSpace(query)
	switch {
	case query == "":
		return nil, ErrEmptyQuery
	case len([]rune(query)) > MaxQueryLength:
		return nil, ErrQueryTooLong
	}

	catalog, ok := sc.catalogs[platform]
	if !ok || catalog == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlatform, platform)
	}

	tracks, err := catalog.Search(ctx, query, services.SearchResultLimit)
	if err != nil {
		return nil, log.Err("catalog search failed", err, "platform", platform, "query", query)
	}

	if telegramID == 0 {
		return tracks, nil
	}

	sc.recordHistory(ctx, telegramID, platform, query)

	state := &ChatState{Platform: platform, Results: tracks}
	if err := sc.chatState.Save(ctx, telegramID, state); err != nil {
		log.Warn("failed to store search results", "telegramID", telegramID, "error", err)
	}

	return tracks, nil
}

func (sc *SearchController) recordHistory(ctx context.Context, telegramID int64, platform Platform, query string) {
	log := sc.log.Function("recordHistory")

	user, err := sc.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		log.Warn("search not recorded, unknown user", "telegramID", telegramID, "error", err)
		return
	}
	if err := sc.history.Record(ctx, user.ID, query, platform); err != nil {
		log.Warn("failed to record search", "telegramID", telegramID, "error", err)
	}
}

func (sc *SearchController) History(ctx context.Context, telegramID int64, limit int) ([]SearchHistory, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	user, err := sc.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return []SearchHistory{}, nil
		}
		return nil, err
	}

	return sc.history.ListRecent(ctx, user.ID, limit)
}

// Selection returns a result of the chat's last search by index.
func (sc *SearchController) Selection(ctx context.Context, telegramID int64, index int) (Track, error) {
	state, err := sc.chatState.Get(ctx, telegramID)
	if err != nil {
		return Track{}, err
	}
	track, ok := state.Result(index)
	if !ok {
		return Track{}, ErrNoSelection
	}
	return track, nil
}
