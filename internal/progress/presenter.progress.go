package progress

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	DefaultStep  = 5
	FinishedText = "Download finished. Processing..."
)

// ErrMessageNotModified is returned by a StatusMessenger when an edit carries
// the same text as the message already shows.
var ErrMessageNotModified = errors.New("message is not modified")

type StatusRef int

// StatusMessenger owns the single mutable status message of one pipeline run.
type StatusMessenger interface {
	SendStatus(ctx context.Context, text string) (StatusRef, error)
	EditStatus(ctx context.Context, ref StatusRef, text string) error
}

type Sink interface {
	OnEvent(ctx context.Context, event Event)
}

// Reporter is a Sink that can also show free-form stage text.
type Reporter interface {
	Sink
	Report(ctx context.Context, text string)
}

// Presenter turns progress events into rate limited edits of one status
// message. It is owned by a single pipeline run and is not safe for
// concurrent use.
type Presenter struct {
	messenger    StatusMessenger
	log          logger.Logger
	step         int
	lastReported int
	status       *StatusRef
	finishedText string
}

type PresenterOption func(*Presenter)

// WithStatusMessage reuses an already visible message instead of sending a new one.
func WithStatusMessage(ref StatusRef) PresenterOption {
	return func(p *Presenter) {
		p.status = &ref
	}
}

func WithStep(step int) PresenterOption {
	return func(p *Presenter) {
		if step > 0 {
			p.step = step
		}
	}
}

func WithFinishedText(text string) PresenterOption {
	return func(p *Presenter) {
		p.finishedText = text
	}
}

func NewPresenter(messenger StatusMessenger, opts ...PresenterOption) *Presenter {
	p := &Presenter{
		messenger:    messenger,
		log:          logger.New("progress").File("presenter.progress"),
		step:         DefaultStep,
		lastReported: -1,
		finishedText: FinishedText,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Presenter) OnEvent(ctx context.Context, event Event) {
	switch event.Phase {
	case PhaseDownloading:
		percent, ok := event.Percent()
		if !ok || !p.shouldEmit(percent) {
			return
		}
		p.lastReported = percent
		p.deliver(ctx, FormatDownloading(percent, event))
	case PhaseFinished:
		p.deliver(ctx, p.finishedText)
	case PhaseErrored:
		p.deliver(ctx, FormatError(event.ErrorMessage))
	}
}

func (p *Presenter) Report(ctx context.Context, text string) {
	p.deliver(ctx, text)
}

func (p *Presenter) LastReportedPercent() int {
	return p.lastReported
}

func (p *Presenter) StatusMessage() (StatusRef, bool) {
	if p.status == nil {
		return 0, false
	}
	return *p.status, true
}

func (p *Presenter) shouldEmit(percent int) bool {
	if percent == 100 {
		return p.lastReported != 100
	}
	return percent >= p.lastReported+p.step
}

func (p *Presenter) deliver(ctx context.Context, text string) {
	log := p.log.Function("deliver")

	if p.status == nil {
		ref, err := p.messenger.SendStatus(ctx, text)
		if err != nil {
			log.Er("failed to send status message", err)
			return
		}
		p.status = &ref
		return
	}

	err := p.messenger.EditStatus(ctx, *p.status, text)
	if err == nil || errors.Is(err, ErrMessageNotModified) {
		return
	}
	log.Er("failed to edit status message", err, "statusMessage", int(*p.status))
}

func FormatDownloading(percent int, event Event) string {
	return fmt.Sprintf(
		"Downloading: %d%%\n[%s]\nSpeed: %s | ETA: %s",
		percent,
		RenderBar(percent),
		event.FormatSpeed(),
		event.FormatETA(),
	)
}

func FormatError(message string) string {
	return "❌ Error: " + message
}

// PercentSink adapts a percent-only callback to a Sink. It forwards every
// downloading event with a known total and reports 100 on finish.
type PercentSink func(percent int)

func (f PercentSink) OnEvent(_ context.Context, event Event) {
	switch event.Phase {
	case PhaseDownloading:
		if percent, ok := event.Percent(); ok {
			f(percent)
		}
	case PhaseFinished:
		f(100)
	}
}
