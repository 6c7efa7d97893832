package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhisek/interview/internal/store"
)

// LoggingProvider records every request as an event and logs failures.
type LoggingProvider struct {
	inner  Provider
	name   string
	events store.EventRepo
	logger *slog.Logger
}

// WithLogging wraps p. A nil events repo only logs; a nil logger discards.
func WithLogging(p Provider, name string, events store.EventRepo, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LoggingProvider{inner: p, name: name, events: events, logger: logger}
}

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	latency := time.Since(start)

	data := store.LLMRequestEventData{
		Provider:  l.name,
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: latency.Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		data.Model = resp.Model
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		l.logger.Warn("llm request failed",
			"provider", l.name,
			"model", data.Model,
			"purpose", data.Purpose,
			"latency", latency,
			"error", err,
		)
	} else {
		l.logger.Debug("llm request",
			"provider", l.name,
			"model", data.Model,
			"purpose", data.Purpose,
			"tokens", resp.Usage.Total(),
			"latency", latency,
		)
	}

	if l.events != nil {
		if logErr := l.events.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
			l.logger.Warn("failed to record LLM request event", "error", logErr)
		}
	}
	return resp, err
}
