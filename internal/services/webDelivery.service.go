package services

import (
	"context"
	"path/filepath"
	"sync/atomic"

	"musicbot/internal/events"
	"musicbot/internal/progress"

	logger "github.com/Bparsons0904/goLogger"
)

// AssetPublisher stores a file for download and returns its link token.
type AssetPublisher interface {
	Publish(jobID, sourcePath, fileName string) (string, error)
}

// JobDelivery relays a pipeline run to web clients through the event bus.
// Assets are published to the public directory before the pipeline removes
// its copies.
type JobDelivery struct {
	jobID     string
	bus       events.Publisher
	publisher AssetPublisher
	nextRef   atomic.Int64
	log       logger.Logger
}

func NewJobDelivery(jobID string, bus events.Publisher, publisher AssetPublisher) *JobDelivery {
	return &JobDelivery{
		jobID:     jobID,
		bus:       bus,
		publisher: publisher,
		log:       logger.New("jobDelivery").With("jobID", jobID),
	}
}

func (d *JobDelivery) JobID() string {
	return d.jobID
}

func (d *JobDelivery) SendStatus(_ context.Context, text string) (progress.StatusRef, error) {
	ref := progress.StatusRef(d.nextRef.Add(1))
	return ref, d.publish(events.JOB_STATUS, map[string]any{"statusId": int(ref), "text": text})
}

func (d *JobDelivery) EditStatus(_ context.Context, ref progress.StatusRef, text string) error {
	return d.publish(events.JOB_STATUS, map[string]any{"statusId": int(ref), "text": text})
}

func (d *JobDelivery) DeleteStatus(_ context.Context, ref progress.StatusRef) error {
	return d.publish(events.JOB_STATUS, map[string]any{"statusId": int(ref), "deleted": true})
}

func (d *JobDelivery) SendText(_ context.Context, text string) error {
	return d.publish(events.JOB_MESSAGE, map[string]any{"text": text})
}

func (d *JobDelivery) SendImage(_ context.Context, asset ImageAsset) error {
	return d.publishAsset("image", asset.Path, filepath.Base(asset.Path), asset.Caption)
}

func (d *JobDelivery) SendAudio(_ context.Context, asset AudioAsset) error {
	return d.publishAsset("audio", asset.Path, asset.FileName, asset.Caption)
}

func (d *JobDelivery) SendVideo(_ context.Context, asset VideoAsset) error {
	return d.publishAsset("video", asset.Path, asset.FileName, asset.Caption)
}

// Complete signals the end of the job to subscribers.
func (d *JobDelivery) Complete(err error) {
	data := map[string]any{"success": err == nil}
	if err != nil {
		data["reason"] = FailureReason(err)
	}
	if pubErr := d.publish(events.JOB_COMPLETE, data); pubErr != nil {
		d.log.Function("Complete").Er("failed to publish completion", pubErr)
	}
}

func (d *JobDelivery) publishAsset(kind, path, fileName, caption string) error {
	token, err := d.publisher.Publish(d.jobID, path, fileName)
	if err != nil {
		return err
	}
	return d.publish(events.JOB_ASSET, map[string]any{
		"kind":     kind,
		"fileName": filepath.Base(fileName),
		"caption":  caption,
		"url":      "/api/files/" + token,
	})
}

func (d *JobDelivery) publish(messageType events.MessageType, data map[string]any) error {
	return d.bus.Publish(events.JOBS_CHANNEL, events.Event{
		Type:  messageType,
		JobID: d.jobID,
		Data:  data,
	})
}
