package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrResolutionFailure = errors.New("could not resolve an audio source")
	ErrNoAudioSource     = fmt.Errorf("%w: no matching audio found", ErrResolutionFailure)
	ErrTransferFailure   = errors.New("media transfer failed")
	ErrAssetMissing      = fmt.Errorf("%w: expected output file is missing", ErrTransferFailure)
	ErrBinaryNotFound    = errors.New("required binary not found")
	ErrServiceDisabled   = errors.New("service is not configured")
)

const maxStderrSummary = 120

// TranscodeError reports a media tool that exited unsuccessfully.
type TranscodeError struct {
	Tool     string
	ExitCode int
	Stderr   string
}

func (e *TranscodeError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Tool, e.ExitCode, stderr)
}

// Summary is the first line of stderr, shortened for display to users.
func (e *TranscodeError) Summary() string {
	line, _, _ := strings.Cut(strings.TrimSpace(e.Stderr), "\n")
	line = strings.TrimSpace(line)
	if runes := []rune(line); len(runes) > maxStderrSummary {
		line = string(runes[:maxStderrSummary]) + "…"
	}
	return line
}

func (e *TranscodeError) Unwrap() error {
	return ErrTransferFailure
}

// FailureReason maps pipeline errors to a short user facing explanation.
func FailureReason(err error) string {
	var transcodeErr *TranscodeError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoAudioSource):
		return "no matching audio was found on YouTube"
	case errors.Is(err, ErrResolutionFailure):
		return "the track could not be looked up"
	case errors.Is(err, ErrAssetMissing):
		return "the downloaded file was missing"
	case errors.As(err, &transcodeErr):
		if detail := transcodeErr.Summary(); detail != "" {
			return "audio processing failed (" + detail + ")"
		}
		return "audio processing failed"
	case errors.Is(err, ErrBinaryNotFound):
		return "the media tools are not installed"
	case errors.Is(err, ErrTransferFailure):
		return "the download did not complete"
	default:
		return "an unexpected error occurred"
	}
}
