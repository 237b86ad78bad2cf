package services

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"musicbot/config"

	logger "github.com/Bparsons0904/goLogger"
)

type FileCleanupService struct {
	workDir   string
	publicDir string
	log       logger.Logger
}

func NewFileCleanupService(config config.Config) *FileCleanupService {
	return &FileCleanupService{
		workDir:   config.WorkDir,
		publicDir: config.PublicDir,
		log:       logger.New("fileCleanupService"),
	}
}

// CleanupStale removes run directories and published files older than maxAge
// and returns how many top level entries were removed.
func (fcs *FileCleanupService) CleanupStale(ctx context.Context, maxAge time.Duration) (int, error) {
	log := fcs.log.Function("CleanupStale")
	cutoff := time.Now().Add(-maxAge)

	removed := 0
	for _, dir := range []string{fcs.workDir, fcs.publicDir} {
		if dir == "" {
			continue
		}
		count, err := fcs.cleanupDir(ctx, dir, cutoff)
		removed += count
		if err != nil {
			return removed, err
		}
	}

	log.Info("Stale file cleanup finished", "removed", removed, "cutoff", cutoff)
	return removed, nil
}

func (fcs *FileCleanupService) cleanupDir(ctx context.Context, dir string, cutoff time.Time) (int, error) {
	log := fcs.log.Function("cleanupDir")

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, log.Err("failed to read directory", err, "directory", dir)
	}

	removed := 0
	var firstErr error
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		entryPath := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(entryPath); err != nil {
			log.Er("failed to remove entry", err, "path", entryPath)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		removed++
	}

	if firstErr != nil {
		return removed, log.Err("failed to cleanup some files", firstErr, "directory", dir)
	}
	return removed, nil
}
