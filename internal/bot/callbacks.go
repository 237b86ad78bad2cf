package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Telegram rejects inline buttons whose callback data exceeds 64 bytes.
const maxCallbackData = 64

const (
	actPlatform    = "platform"
	actSelect      = "select"
	actPreview     = "preview"
	actDownload    = "download"
	actShare       = "share"
	actConvert     = "convert"
	actSubNew      = "sub_new"
	actSubPlatform = "sub_platform"
	actSubManage   = "sub_manage"
	actSubToggle   = "sub_toggle"
	actUnsubscribe = "unsub"
	actSubDone     = "sub_done"
	actTheme       = "theme"
	actThemeColors = "theme_colors"
	actThemeColor  = "theme_color"
	actThemeEmoji  = "theme_emoji"
	actThemeFont   = "theme_font"
	actThemeSet    = "theme_set"
	actGenre       = "genre"
	actCustomRec   = "custom_rec"
	actCancel      = "cancel"
)

var (
	ErrEmptyCallback    = errors.New("empty callback data")
	ErrCallbackTooLong  = fmt.Errorf("callback data exceeds %d bytes", maxCallbackData)
	ErrCallbackArgument = errors.New("invalid callback argument")
)

// callback is parsed inline button data of the form "action[:arg[:arg]]".
type callback struct {
	Action string
	Args   []string
}

func parseCallback(data string) (callback, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return callback{}, ErrEmptyCallback
	}
	parts := strings.SplitN(data, ":", 3)
	return callback{Action: parts[0], Args: parts[1:]}, nil
}

func (c callback) arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// index reads argument 0 as a result position.
func (c callback) index() (int, error) {
	value, err := strconv.Atoi(c.arg(0))
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: %q", ErrCallbackArgument, c.arg(0))
	}
	return value, nil
}

func encodeCallback(action string, args ...string) (string, error) {
	data := strings.Join(append([]string{action}, args...), ":")
	if len(data) > maxCallbackData {
		return "", fmt.Errorf("%w: %q", ErrCallbackTooLong, data)
	}
	return data, nil
}

// mustCallback is for buttons built from fixed or bounded values.
func mustCallback(action string, args ...string) string {
	data, err := encodeCallback(action, args...)
	if err != nil {
		panic(err)
	}
	return data
}
