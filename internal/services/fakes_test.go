package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"musicbot/internal/progress"

	"github.com/stretchr/testify/require"
)

// writeScript creates an executable shell script standing in for an external tool.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

type recordingSink struct {
	events []progress.Event
}

func (s *recordingSink) OnEvent(_ context.Context, event progress.Event) {
	s.events = append(s.events, event)
}

type fakeDelivery struct {
	mu      sync.Mutex
	calls   []string
	audio   []AudioAsset
	images  []ImageAsset
	videos  []VideoAsset
	texts   []string
	deleted []progress.StatusRef
	sendErr error
}

func (d *fakeDelivery) record(call string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, call)
}

func (d *fakeDelivery) SendStatus(_ context.Context, text string) (progress.StatusRef, error) {
	d.record("status")
	return progress.StatusRef(7), nil
}

func (d *fakeDelivery) EditStatus(_ context.Context, _ progress.StatusRef, text string) error {
	d.record("edit")
	return nil
}

func (d *fakeDelivery) DeleteStatus(_ context.Context, ref progress.StatusRef) error {
	d.record("delete")
	d.deleted = append(d.deleted, ref)
	return nil
}

func (d *fakeDelivery) SendText(_ context.Context, text string) error {
	d.record("text")
	d.texts = append(d.texts, text)
	return nil
}

func (d *fakeDelivery) SendImage(_ context.Context, asset ImageAsset) error {
	d.record("image")
	if _, err := os.Stat(asset.Path); err != nil {
		return err
	}
	d.images = append(d.images, asset)
	return d.sendErr
}

func (d *fakeDelivery) SendAudio(_ context.Context, asset AudioAsset) error {
	d.record("audio")
	if _, err := os.Stat(asset.Path); err != nil {
		return err
	}
	d.audio = append(d.audio, asset)
	return d.sendErr
}

func (d *fakeDelivery) SendVideo(_ context.Context, asset VideoAsset) error {
	d.record("video")
	if _, err := os.Stat(asset.Path); err != nil {
		return err
	}
	d.videos = append(d.videos, asset)
	return d.sendErr
}

func (d *fakeDelivery) lastCall() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.calls) == 0 {
		return ""
	}
	return d.calls[len(d.calls)-1]
}

func (d *fakeDelivery) lastText() string {
	if len(d.texts) == 0 {
		return ""
	}
	return d.texts[len(d.texts)-1]
}
