// Package submit sends a finished interview to the feedback service: the
// answers are turned into feedback, the feedback is stored, and the user is
// routed to the stored result. The two calls are retried together as one
// attempt.
package submit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/interview/internal/answers"
	"github.com/abhisek/interview/internal/feedback"
	"github.com/abhisek/interview/internal/store"
)

const tracerName = "github.com/abhisek/interview/internal/submit"

// FailureNotice is shown to the user once all attempts have failed.
const FailureNotice = "An error occurred while submitting feedback after multiple attempts"

// ErrInProgress is returned when a trigger arrives while another one is
// still attempting. The running trigger is unaffected.
var ErrInProgress = errors.New("submission already in progress")

// Remote is the pair of feedback service calls.
type Remote interface {
	Generate(ctx context.Context, key string, session answers.Session) (json.RawMessage, error)
	Persist(ctx context.Context, key string, generated json.RawMessage) (*feedback.Stored, error)
}

// Navigator routes the user to a view.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// Notifier shows the user a blocking message.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Recorder receives attempt and outcome events. store.EventRepo satisfies it.
type Recorder interface {
	AppendAttempt(ctx context.Context, data store.AttemptEventData) error
	AppendOutcome(ctx context.Context, data store.OutcomeEventData) error
}

// Config controls the retry budget.
type Config struct {
	// MaxAttempts is the number of full generate+persist sequences tried
	// before giving up. Values below 1 are treated as 1.
	MaxAttempts int
}

// DefaultConfig returns a Config with three attempts.
func DefaultConfig() Config {
	return Config{MaxAttempts: 3}
}

// Outcome describes how a trigger ended.
type Outcome struct {
	TriggerID  string
	State      State
	Attempts   int
	FeedbackID string
	Route      string

	// Err is the last attempt's error when State is StateFailed.
	Err error
}

// Route returns the result view path for a stored feedback id.
func Route(id string) string {
	return "/feedback/" + url.PathEscape(id)
}

// Pipeline runs submission triggers.
type Pipeline struct {
	remote   Remote
	nav      Navigator
	notify   Notifier
	recorder Recorder
	logger   *slog.Logger
	cfg      Config
	newID    func() string

	mu     sync.Mutex
	status Status
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder records attempts and outcomes.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithLogger sets the logger for attempt diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New creates a Pipeline.
func New(remote Remote, nav Navigator, notify Notifier, cfg Config, opts ...Option) *Pipeline {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	p := &Pipeline{
		remote: remote,
		nav:    nav,
		notify: notify,
		cfg:    cfg,
		newID:  uuid.NewString,
		status: Status{State: StateIdle},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	return p
}

// Status returns the state of the current or most recent trigger.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// MaxAttempts returns the retry budget after clamping.
func (p *Pipeline) MaxAttempts() int { return p.cfg.MaxAttempts }

func (p *Pipeline) setStatus(s Status) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()
}

// Submit runs one trigger against a copy of session taken now. Every
// attempt sends that same copy, whatever happens to the live answers
// meanwhile. On success the navigator receives the result route; after the
// last failed attempt the notifier receives FailureNotice. Attempt errors
// stay inside the pipeline: the only error returned is ErrInProgress.
func (p *Pipeline) Submit(ctx context.Context, session answers.Session) (*Outcome, error) {
	p.mu.Lock()
	if p.status.State == StateAttempting {
		p.mu.Unlock()
		p.logger.Info("submission already in progress, ignoring trigger")
		return nil, ErrInProgress
	}
	status := Begin()
	p.status = status
	p.mu.Unlock()

	snapshot := session.Clone()
	trigger := p.newID()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "submit.trigger",
		trace.WithAttributes(
			attribute.String("submit.trigger_id", trigger),
			attribute.Int("submit.questions", len(snapshot)),
			attribute.Int("submit.max_attempts", p.cfg.MaxAttempts),
		))
	defer span.End()

	var (
		stored  *feedback.Stored
		lastErr error
	)
	for status.State == StateAttempting {
		stored, lastErr = p.attempt(ctx, trigger, status.Attempt, snapshot)
		if lastErr != nil {
			p.logger.Warn("submission attempt failed",
				"trigger", trigger,
				"attempt", status.Attempt,
				"max_attempts", p.cfg.MaxAttempts,
				"error", lastErr,
			)
		}

		if lastErr != nil && ctx.Err() != nil {
			status = Status{State: StateFailed, Attempt: status.Attempt}
		} else {
			status = Next(status, lastErr, p.cfg.MaxAttempts)
		}

		if status.State == StateAttempting {
			p.logger.Info("retrying submission",
				"trigger", trigger,
				"attempt", status.Attempt,
				"max_attempts", p.cfg.MaxAttempts,
			)
		}
		p.setStatus(status)
	}

	outcome := &Outcome{
		TriggerID: trigger,
		State:     status.State,
		Attempts:  status.Attempt,
	}
	span.SetAttributes(
		attribute.String("submit.state", string(status.State)),
		attribute.Int("submit.attempts", status.Attempt),
	)

	if status.State == StateSucceeded {
		outcome.FeedbackID = stored.ID
		outcome.Route = Route(stored.ID)
		p.logger.Info("feedback stored", "trigger", trigger, "feedback_id", stored.ID, "attempts", status.Attempt)
		p.record(ctx, outcome, snapshot)
		p.nav.Navigate(outcome.Route)
		return outcome, nil
	}

	outcome.Err = lastErr
	span.SetStatus(codes.Error, "attempts exhausted")
	p.logger.Error("submission failed", "trigger", trigger, "attempts", status.Attempt, "error", lastErr)
	p.record(ctx, outcome, snapshot)
	p.notify.Notify(FailureNotice)
	return outcome, nil
}

// attempt runs generate then persist. Persist is only reached after a
// successful generate.
func (p *Pipeline) attempt(ctx context.Context, trigger string, n int, snapshot answers.Session) (_ *feedback.Stored, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "submit.attempt",
		trace.WithAttributes(attribute.Int("submit.attempt", n)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	start := time.Now()
	generated, err := p.remote.Generate(ctx, trigger, snapshot)
	p.recordStep(ctx, trigger, n, feedback.StepGenerate, http.StatusOK, start, err)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	stored, err := p.remote.Persist(ctx, trigger, generated)
	if err == nil && stored == nil {
		err = &feedback.InvalidResponseError{Step: feedback.StepPersist, Err: errors.New("no stored feedback returned")}
	}
	p.recordStep(ctx, trigger, n, feedback.StepPersist, http.StatusCreated, start, err)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (p *Pipeline) recordStep(ctx context.Context, trigger string, n int, step feedback.Step, okStatus int, start time.Time, err error) {
	if p.recorder == nil {
		return
	}
	data := store.AttemptEventData{
		TriggerID:  trigger,
		Attempt:    n,
		Step:       string(step),
		Success:    err == nil,
		StatusCode: okStatus,
		LatencyMs:  time.Since(start).Milliseconds(),
	}
	if err != nil {
		data.StatusCode = feedback.StatusCode(err)
		data.ErrorMessage = err.Error()
	}
	if recErr := p.recorder.AppendAttempt(context.WithoutCancel(ctx), data); recErr != nil {
		p.logger.Warn("failed to record attempt event", "error", recErr)
	}
}

func (p *Pipeline) record(ctx context.Context, o *Outcome, snapshot answers.Session) {
	if p.recorder == nil {
		return
	}
	data := store.OutcomeEventData{
		TriggerID:  o.TriggerID,
		State:      string(o.State),
		Attempts:   o.Attempts,
		Questions:  len(snapshot),
		Answered:   snapshot.Answered(),
		FeedbackID: o.FeedbackID,
		Route:      o.Route,
	}
	if o.Err != nil {
		data.ErrorMessage = o.Err.Error()
	}
	if err := p.recorder.AppendOutcome(context.WithoutCancel(ctx), data); err != nil {
		p.logger.Warn("failed to record outcome event", "error", err)
	}
}
