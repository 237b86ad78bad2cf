package repositories

import (
	"context"
	"time"

	"musicbot/internal/database"
	. "musicbot/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

const MAX_TRENDING_LIMIT = 50

type TrendingRepository interface {
	SaveSnapshot(ctx context.Context, capturedAt time.Time, tracks []Track) error
	Latest(ctx context.Context, platform Platform, limit int) ([]TrendingSong, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type trendingRepository struct {
	db  database.DB
	log logger.Logger
}

func NewTrendingRepository(db database.DB) TrendingRepository {
	return &trendingRepository{
		db:  db,
		log: logger.New("trendingRepository"),
	}
}

// SaveSnapshot stores one ranked chart capture. Ranks restart at 1 per platform.
func (r *trendingRepository) SaveSnapshot(ctx context.Context, capturedAt time.Time, tracks []Track) error {
	log := r.log.Function("SaveSnapshot")

	songs := SnapshotRows(capturedAt, tracks)
	if len(songs) == 0 {
		return nil
	}

	err := r.db.SQLWithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(songs, 100).Error
	})
	if err != nil {
		return log.Err("failed to save trending snapshot", err, "count", len(songs))
	}

	return nil
}

// Latest returns the most recent snapshot for a platform ordered by rank.
func (r *trendingRepository) Latest(ctx context.Context, platform Platform, limit int) ([]TrendingSong, error) {
	log := r.log.Function("Latest")

	var latest TrendingSong
	if err := r.db.SQLWithContext(ctx).
		Where("platform = ?", platform).
		Order("captured_at DESC").
		Limit(1).
		Find(&latest).Error; err != nil {
		return nil, log.Err("failed to find latest snapshot", err, "platform", platform)
	}
	if latest.ID == 0 {
		return []TrendingSong{}, nil
	}

	var songs []TrendingSong
	if err := r.db.SQLWithContext(ctx).
		Where("platform = ? AND captured_at = ?", platform, latest.CapturedAt).
		Order("rank ASC").
		Limit(clampLimit(limit, MAX_TRENDING_LIMIT)).
		Find(&songs).Error; err != nil {
		return nil, log.Err("failed to load snapshot", err, "platform", platform)
	}

	return songs, nil
}

func (r *trendingRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.SQLWithContext(ctx).
		Unscoped().
		Where("captured_at < ?", cutoff).
		Delete(&TrendingSong{})
	if result.Error != nil {
		return 0, r.log.Function("PruneBefore").Err("failed to prune trending songs", result.Error)
	}
	return result.RowsAffected, nil
}

// SnapshotRows converts chart tracks into rows sharing one capture time.
func SnapshotRows(capturedAt time.Time, tracks []Track) []TrendingSong {
	ranks := make(map[Platform]int)
	songs := make([]TrendingSong, 0, len(tracks))
	for _, track := range tracks {
		ranks[track.Platform]++
		songs = append(songs, TrendingSong{
			Title:      track.Title,
			Artist:     track.Artist,
			Platform:   track.Platform,
			TrackID:    track.ID,
			Rank:       ranks[track.Platform],
			CapturedAt: capturedAt,
		})
	}
	return songs
}
