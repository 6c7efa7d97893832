package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/abhisek/interview/internal/config"
	"github.com/abhisek/interview/internal/devserver"
	"github.com/abhisek/interview/internal/llm"
	"github.com/abhisek/interview/internal/store"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local feedback service",
	Long: `Serve the generate, store and fetch endpoints the interview submits to.
Feedback comes from the configured LLM provider, or from a simple offline
heuristic when INTERVIEW_LLM_PROVIDER=mock. Documents are kept in the local
database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); cmd.Flags().Changed("addr") {
			cfg.Serve.Addr = addr
		}
		logger := cfg.NewLogger(os.Stderr)

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		gen, err := newGenerator(ctx, cfg, st.EventRepo(), logger)
		if err != nil {
			return err
		}

		srv := devserver.New(gen, st.FeedbackRepo(),
			devserver.WithToken(cfg.Serve.Token),
			devserver.WithLogger(logger))
		return srv.ListenAndServe(ctx, cfg.Serve.Addr)
	},
}

// newGenerator returns the feedback generator for the configured LLM
// provider. The mock provider has no canned answers, so it maps to the
// offline heuristic.
func newGenerator(ctx context.Context, cfg config.Config, events store.EventRepo, logger *slog.Logger) (devserver.Generator, error) {
	if cfg.LLM.Provider == "mock" {
		return devserver.OfflineGenerator{}, nil
	}
	provider, err := llm.NewProvider(ctx, cfg.LLM, events, logger)
	if err != nil {
		return nil, fmt.Errorf("LLM provider: %w", err)
	}
	return devserver.LLMGenerator{Provider: provider}, nil
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides INTERVIEW_SERVE_ADDR)")
}
