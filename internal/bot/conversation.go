package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"musicbot/internal/models"
	"musicbot/internal/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// uploadedFile is the file part of a message, whichever kind it was sent as.
type uploadedFile struct {
	FileID   string
	FileName string
	MimeType string
}

func fileFromMessage(message *tgbotapi.Message) (uploadedFile, bool) {
	switch {
	case message.Audio != nil:
		return uploadedFile{message.Audio.FileID, message.Audio.FileName, message.Audio.MimeType}, true
	case message.Video != nil:
		return uploadedFile{message.Video.FileID, message.Video.FileName, message.Video.MimeType}, true
	case message.Document != nil:
		return uploadedFile{message.Document.FileID, message.Document.FileName, message.Document.MimeType}, true
	default:
		return uploadedFile{}, false
	}
}

// matches reports whether the upload looks like the input of direction.
// Files without a name or type are given the benefit of the doubt.
func (f uploadedFile) matches(direction services.ConversionDirection) bool {
	if ext := strings.ToLower(filepath.Ext(f.FileName)); ext != "" {
		return ext == direction.InputExtension()
	}
	switch {
	case f.MimeType == "":
		return true
	case direction == services.MP3ToMP4:
		return strings.HasPrefix(f.MimeType, "audio/")
	default:
		return strings.HasPrefix(f.MimeType, "video/")
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	telegramID := chatID
	if message.From != nil {
		telegramID = message.From.ID
	}
	user := b.register(ctx, message.From)
	state := b.loadState(ctx, telegramID)
	text := strings.TrimSpace(message.Text)

	switch state.Step {
	case models.StepAwaitingConvert:
		b.convertUpload(ctx, chatID, telegramID, state, message)
	case models.StepAwaitingQuery:
		if text == "" {
			b.reply(ctx, chatID, fmt.Sprintf(platformChosenText, state.Platform.Label()))
			return
		}
		b.runSearch(ctx, chatID, telegramID, state.Platform, text)
	case models.StepAwaitingLyrics:
		if text == "" {
			b.reply(ctx, chatID, b.themed(ctx, telegramID, lyricsPromptText))
			return
		}
		b.findLyrics(ctx, chatID, telegramID, text)
	case models.StepAwaitingArtist:
		if text == "" {
			b.reply(ctx, chatID, subscribeArtistPrompt)
			return
		}
		b.askSubscribePlatform(ctx, chatID, telegramID, text)
	case models.StepAwaitingRecommend:
		if text == "" {
			b.reply(ctx, chatID, recommendPromptText)
			return
		}
		b.recommendFor(ctx, chatID, telegramID, user, text)
	case models.StepAwaitingPlatform:
		b.reply(ctx, chatID, b.themed(ctx, telegramID, choosePlatformText), withMarkup(platformKeyboard()))
	default:
		b.reply(ctx, chatID, unknownInputText)
	}
}

// convertUpload fetches the uploaded file into a fresh run directory and
// hands it to the conversion pipeline.
func (b *Bot) convertUpload(ctx context.Context, chatID, telegramID int64, state *models.ChatState, message *tgbotapi.Message) {
	log := b.log.Function("convertUpload")

	direction, err := services.ParseDirection(state.Direction)
	if err != nil {
		b.clearState(ctx, telegramID)
		b.reply(ctx, chatID, b.themed(ctx, telegramID, convertMenuText), withMarkup(convertKeyboard()))
		return
	}

	upload, ok := fileFromMessage(message)
	if !ok || !upload.matches(direction) {
		b.reply(ctx, chatID, convertInvalidText)
		return
	}
	b.clearState(ctx, telegramID)

	inputPath, err := b.deps.Conversion.NewInputPath(direction)
	if err != nil {
		log.Er("failed to prepare input path", err)
		b.reply(ctx, chatID, b.themed(ctx, telegramID, genericErrorText))
		return
	}

	if err := b.downloadFile(ctx, upload.FileID, inputPath); err != nil {
		log.Er("failed to download upload", err, "fileID", upload.FileID)
		_ = os.RemoveAll(filepath.Dir(inputPath))
		b.reply(ctx, chatID, b.themed(ctx, telegramID, convertTooBigText))
		return
	}

	done := b.deps.Conversion.Start(ctx, services.ConversionRequest{
		Direction:    direction,
		InputPath:    inputPath,
		OriginalName: upload.FileName,
	}, newChatDelivery(b.sender, chatID))
	if err := <-done; err != nil {
		log.Warn("Conversion finished with error", "telegramID", telegramID, "error", err)
	}
}

func (b *Bot) downloadFile(ctx context.Context, fileID, dst string) error {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return fmt.Errorf("resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("download file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download file: unexpected status %s", resp.Status)
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return fmt.Errorf("write file: %w", err)
	}
	return out.Close()
}
