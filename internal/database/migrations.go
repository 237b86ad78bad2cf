package database

import (
	"musicbot/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

// MigrationModels lists every persisted model in dependency order.
func MigrationModels() []any {
	return []any{
		&models.User{},
		&models.ArtistSubscription{},
		&models.SearchHistory{},
		&models.TrendingSong{},
		&models.UserTheme{},
	}
}

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	for _, model := range MigrationModels() {
		if err := db.SQL.AutoMigrate(model); err != nil {
			return log.Err("Failed to migrate model", err, "model", model)
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

// CreateIndexes creates indexes GORM tags cannot express.
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_trending_songs_platform_captured ON trending_songs(platform, captured_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_artist_subscriptions_platform_checked ON artist_subscriptions(platform, last_checked)",
	}

	for _, indexSQL := range indexes {
		if err := db.SQL.Exec(indexSQL).Error; err != nil {
			log.Warn("Failed to create index", "sql", indexSQL, "error", err)
		}
	}

	log.Info("Additional database indexes created")
	return nil
}
