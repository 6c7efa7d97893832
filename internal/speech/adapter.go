// Package speech turns one spoken utterance into the answer of one interview
// question. Dictations run in the background and never block the caller.
package speech

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/interview/internal/answers"
	"github.com/abhisek/interview/internal/store"
)

// ErrClosed is the result of dictations started after Close.
var ErrClosed = errors.New("speech adapter closed")

// AnswerSetter receives successful transcripts. *answers.Store satisfies it.
type AnswerSetter interface {
	SetAnswer(number answers.Number, text string) bool
}

// Recorder receives one event per finished dictation. store.EventRepo
// satisfies it.
type Recorder interface {
	AppendDictation(ctx context.Context, data store.DictationEventData) error
}

// Result is the terminal outcome of a dictation.
type Result struct {
	ID         string
	Number     answers.Number
	Transcript string
	Err        error
}

// Dictation is one in-flight capture bound to a question number.
type Dictation struct {
	ID     string
	Number answers.Number

	done   chan struct{}
	result Result
}

// Done is closed once the dictation has finished.
func (d *Dictation) Done() <-chan struct{} { return d.done }

// Wait blocks until the dictation finishes and returns its result.
func (d *Dictation) Wait() Result {
	<-d.done
	return d.result
}

// Adapter starts dictations and routes transcripts to an AnswerSetter.
type Adapter struct {
	source      Source
	transcriber Transcriber
	answers     AnswerSetter
	opts        Options
	recorder    Recorder
	logger      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithOptions overrides DefaultOptions.
func WithOptions(o Options) AdapterOption {
	return func(a *Adapter) { a.opts = o }
}

// WithRecorder records each finished dictation.
func WithRecorder(r Recorder) AdapterOption {
	return func(a *Adapter) { a.recorder = r }
}

// WithLogger sets the logger used for dictation failures.
func WithLogger(l *slog.Logger) AdapterOption {
	return func(a *Adapter) { a.logger = l }
}

// NewAdapter creates an Adapter. It fails if the options ask for a
// recognition mode the adapter cannot provide.
func NewAdapter(source Source, transcriber Transcriber, setter AnswerSetter, opts ...AdapterOption) (*Adapter, error) {
	a := &Adapter{
		source:      source,
		transcriber: transcriber,
		answers:     setter,
		opts:        DefaultOptions(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.opts.Validate(); err != nil {
		return nil, err
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	return a, nil
}

// Options returns the options every dictation uses.
func (a *Adapter) Options() Options { return a.opts }

// StartDictation captures and transcribes one utterance for number in the
// background. The returned Dictation reports the outcome. On success the
// transcript is written to number's answer unchanged; on failure the answer
// is left alone and the error is only logged. Any number of dictations may
// be outstanding at once.
func (a *Adapter) StartDictation(ctx context.Context, number answers.Number) *Dictation {
	d := &Dictation{
		ID:     uuid.NewString(),
		Number: number,
		done:   make(chan struct{}),
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		d.result = Result{ID: d.ID, Number: number, Err: ErrClosed}
		close(d.done)
		return d
	}
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()
		defer close(d.done)
		d.result = a.run(ctx, d)
	}()
	return d
}

func (a *Adapter) run(parent context.Context, d *Dictation) Result {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	stop := context.AfterFunc(a.ctx, cancel)
	defer stop()

	start := time.Now()
	res := Result{ID: d.ID, Number: d.Number}

	audio, err := a.source.Capture(ctx)
	if err == nil {
		res.Transcript, err = a.transcriber.Transcribe(ctx, audio, a.opts)
	}
	res.Err = err

	if err != nil {
		a.logger.Warn("dictation failed",
			"dictation", d.ID,
			"question", int(d.Number),
			"transcriber", a.transcriber.Name(),
			"error", err,
		)
	} else if !a.answers.SetAnswer(d.Number, res.Transcript) {
		a.logger.Warn("dictation finished for unknown question", "dictation", d.ID, "question", int(d.Number))
	} else {
		a.logger.Debug("dictation applied", "dictation", d.ID, "question", int(d.Number), "chars", len(res.Transcript))
	}

	a.record(ctx, res, time.Since(start))
	return res
}

func (a *Adapter) record(ctx context.Context, res Result, latency time.Duration) {
	if a.recorder == nil {
		return
	}
	data := store.DictationEventData{
		DictationID:     res.ID,
		QuestionNumber:  int(res.Number),
		Locale:          a.opts.Locale.String(),
		Success:         res.Err == nil,
		TranscriptChars: len(res.Transcript),
		LatencyMs:       latency.Milliseconds(),
	}
	if res.Err != nil {
		data.ErrorMessage = res.Err.Error()
	}
	if err := a.recorder.AppendDictation(context.WithoutCancel(ctx), data); err != nil {
		a.logger.Warn("failed to record dictation event", "error", err)
	}
}

// Close cancels outstanding dictations and waits for them to finish.
// Dictations started afterwards fail with ErrClosed.
func (a *Adapter) Close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	a.cancel()
	a.wg.Wait()
}
