package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"musicbot/internal/progress"
	"musicbot/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

// consoleDelivery logs status text and copies assets into dir.
type consoleDelivery struct {
	dir  string
	next atomic.Int64
	log  logger.Logger
}

func newConsoleDelivery(dir string) *consoleDelivery {
	return &consoleDelivery{dir: dir, log: logger.New("fetch").File("delivery")}
}

func (d *consoleDelivery) SendStatus(_ context.Context, text string) (progress.StatusRef, error) {
	d.log.Info(text)
	return progress.StatusRef(d.next.Add(1)), nil
}

func (d *consoleDelivery) EditStatus(_ context.Context, _ progress.StatusRef, text string) error {
	d.log.Info(text)
	return nil
}

func (d *consoleDelivery) DeleteStatus(context.Context, progress.StatusRef) error {
	return nil
}

func (d *consoleDelivery) SendText(_ context.Context, text string) error {
	d.log.Info(text)
	return nil
}

func (d *consoleDelivery) SendImage(_ context.Context, asset services.ImageAsset) error {
	return d.keep(asset.Path, filepath.Base(asset.Path))
}

func (d *consoleDelivery) SendAudio(_ context.Context, asset services.AudioAsset) error {
	return d.keep(asset.Path, asset.FileName)
}

func (d *consoleDelivery) SendVideo(_ context.Context, asset services.VideoAsset) error {
	return d.keep(asset.Path, asset.FileName)
}

// keep copies the asset out of the run directory, which is removed when the
// pipeline finishes.
func (d *consoleDelivery) keep(path, name string) error {
	log := d.log.Function("keep")

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return log.Err("failed to create output directory", err, "dir", d.dir)
	}

	src, err := os.Open(path)
	if err != nil {
		return log.Err("failed to open asset", err, "path", path)
	}
	defer src.Close()

	target := filepath.Join(d.dir, filepath.Base(name))
	dst, err := os.Create(target)
	if err != nil {
		return log.Err("failed to create output file", err, "path", target)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return log.Err("failed to copy asset", err, "path", target)
	}
	if err := dst.Close(); err != nil {
		return log.Err("failed to close output file", err, "path", target)
	}

	log.Info("Saved", "path", target)
	return nil
}
