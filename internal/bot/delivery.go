package bot

import (
	"context"
	"errors"
	"fmt"
	"os"

	"musicbot/internal/progress"
	"musicbot/internal/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// chatDelivery sends pipeline output to one chat.
type chatDelivery struct {
	sender *sender
	chatID int64
}

func newChatDelivery(s *sender, chatID int64) *chatDelivery {
	return &chatDelivery{sender: s, chatID: chatID}
}

func (d *chatDelivery) SendStatus(ctx context.Context, text string) (progress.StatusRef, error) {
	sent, err := d.sender.send(ctx, d.chatID, tgbotapi.NewMessage(d.chatID, text))
	if err != nil {
		return 0, err
	}
	return progress.StatusRef(sent.MessageID), nil
}

// EditStatus drops the edit when the chat is throttled rather than stall the
// caller.
func (d *chatDelivery) EditStatus(_ context.Context, ref progress.StatusRef, text string) error {
	err := d.sender.trySend(d.chatID, tgbotapi.NewEditMessageText(d.chatID, int(ref), text))
	if errors.Is(err, errThrottled) {
		return nil
	}
	return err
}

func (d *chatDelivery) DeleteStatus(ctx context.Context, ref progress.StatusRef) error {
	return d.sender.request(ctx, d.chatID, tgbotapi.NewDeleteMessage(d.chatID, int(ref)))
}

func (d *chatDelivery) SendText(ctx context.Context, text string) error {
	_, err := d.sender.send(ctx, d.chatID, tgbotapi.NewMessage(d.chatID, text))
	return err
}

func (d *chatDelivery) SendImage(ctx context.Context, asset services.ImageAsset) error {
	photo := tgbotapi.NewPhoto(d.chatID, tgbotapi.FilePath(asset.Path))
	photo.Caption = asset.Caption
	_, err := d.sender.send(ctx, d.chatID, photo)
	return err
}

func (d *chatDelivery) SendAudio(ctx context.Context, asset services.AudioAsset) error {
	file, err := os.Open(asset.Path)
	if err != nil {
		return fmt.Errorf("open audio: %w", err)
	}
	defer func() { _ = file.Close() }()

	audio := tgbotapi.NewAudio(d.chatID, tgbotapi.FileReader{Name: asset.FileName, Reader: file})
	audio.Title = asset.Title
	audio.Performer = asset.Performer
	audio.Caption = asset.Caption
	_, err = d.sender.send(ctx, d.chatID, audio)
	return err
}

func (d *chatDelivery) SendVideo(ctx context.Context, asset services.VideoAsset) error {
	file, err := os.Open(asset.Path)
	if err != nil {
		return fmt.Errorf("open video: %w", err)
	}
	defer func() { _ = file.Close() }()

	video := tgbotapi.NewVideo(d.chatID, tgbotapi.FileReader{Name: asset.FileName, Reader: file})
	video.Caption = asset.Caption
	_, err = d.sender.send(ctx, d.chatID, video)
	return err
}
