package cmd

import (
	"encoding/json"
	"log/slog"

	"github.com/abhisek/interview/internal/answers"
	"github.com/abhisek/interview/internal/app"
	"github.com/abhisek/interview/internal/config"
	"github.com/abhisek/interview/internal/feedback"
	"github.com/abhisek/interview/internal/submit"
	"github.com/spf13/cobra"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, logFile, err := cfg.OpenLogFile()
	if err != nil {
		return err
	}
	defer logFile.Close()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	events := st.EventRepo()

	session := loadSession(cfg, logger)

	client := feedback.NewClient(cfg.API.Feedback(), cfg.API.Tokens())
	deps := app.Deps{
		Answers: session,
		Remote:  client,
		Submit:  submit.Config{MaxAttempts: cfg.API.MaxAttempts},
		Fetcher: client,
		Events:  events,
		Logger:  logger,
	}

	adapter, err := newDictation(ctx, cfg, session, events, logger)
	if err != nil {
		logger.Warn("dictation unavailable", "error", err)
	} else {
		defer adapter.Close()
		deps.Dictation = adapter
	}

	return app.Run(ctx, deps)
}

// loadSession reads the question file into a fresh answer store. A missing
// or malformed file starts the placeholder interview.
func loadSession(cfg config.Config, logger *slog.Logger) *answers.Store {
	var payload json.RawMessage
	if cfg.QuestionsFile != "" {
		raw, err := answers.LoadPayloadFile(cfg.QuestionsFile)
		if err != nil {
			logger.Warn("questions file not loaded", "path", cfg.QuestionsFile, "error", err)
		}
		payload = raw
	}
	session := answers.NewStore(logger)
	session.Initialize(payload)
	return session
}
