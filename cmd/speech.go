package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/interview/internal/config"
	"github.com/abhisek/interview/internal/speech"
	"github.com/abhisek/interview/internal/store"
)

// newDictation wires the configured recorder and transcriber into an
// adapter that writes transcripts into setter.
func newDictation(ctx context.Context, cfg config.Config, setter speech.AnswerSetter, events store.EventRepo, logger *slog.Logger) (*speech.Adapter, error) {
	sc := cfg.Speech
	opts, err := sc.Options()
	if err != nil {
		return nil, err
	}

	var source speech.Source
	switch {
	case sc.File != "":
		source = speech.FileSource{Path: sc.File}
	case len(sc.Command) > 0:
		source = &speech.CommandSource{Name: sc.Command[0], Args: sc.Command[1:], Format: "wav"}
	case sc.Provider == "mock":
		source = speech.StaticSource{Data: []byte("RIFF"), Format: "wav"}
	default:
		source = speech.DefaultCommandSource()
	}

	var transcriber speech.Transcriber
	switch sc.Provider {
	case "openai":
		transcriber, err = speech.NewOpenAITranscriber(speech.OpenAIConfig{APIKey: sc.OpenAIKey, Model: sc.OpenAIModel})
	case "gemini":
		transcriber, err = speech.NewGeminiTranscriber(ctx, speech.GeminiConfig{APIKey: sc.GeminiKey, Model: sc.GeminiModel})
	case "mock":
		transcriber = speech.FixedTranscriber(sc.MockText)
	default:
		err = fmt.Errorf("unknown speech provider: %q", sc.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("speech provider: %w", err)
	}

	adapterOpts := []speech.AdapterOption{speech.WithOptions(opts), speech.WithLogger(logger)}
	if events != nil {
		adapterOpts = append(adapterOpts, speech.WithRecorder(events))
	}
	return speech.NewAdapter(source, transcriber, setter, adapterOpts...)
}
