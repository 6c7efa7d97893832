package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/abhisek/interview/internal/config"
	"github.com/abhisek/interview/internal/store"
	"github.com/abhisek/interview/internal/telemetry"
	"github.com/spf13/cobra"
)

var shutdownTelemetry = func(context.Context) error { return nil }

var rootCmd = &cobra.Command{
	Use:   "interview",
	Short: "Practice interview answers and get feedback",
	Long: `Interview shows a set of questions, lets you type or dictate your answers,
and submits them to a feedback service that reviews and stores them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		shutdown, err := telemetry.Setup(cmd.Context(), "interview", version)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Tracing disabled:", err)
		}
		shutdownTelemetry = shutdown
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return shutdownTelemetry(context.Background())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("env-file", ".env", "Load INTERVIEW_* variables from this file if it exists")
	flags.String("db", "", "Path to SQLite database file (overrides INTERVIEW_DB env var)")
	flags.String("questions", "", "JSON or YAML question file (overrides INTERVIEW_QUESTIONS)")
	flags.String("api-url", "", "Feedback service base URL (overrides INTERVIEW_API_URL)")
	flags.Int("max-attempts", 0, "Submission attempts before giving up (overrides INTERVIEW_API_MAX_ATTEMPTS)")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the environment and .env file, then applies flags that
// were set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("questions") {
		cfg.QuestionsFile, _ = flags.GetString("questions")
	}
	if flags.Changed("db") {
		cfg.DBPath, _ = flags.GetString("db")
	}
	if flags.Changed("api-url") {
		cfg.API.URL, _ = flags.GetString("api-url")
	}
	if flags.Changed("max-attempts") {
		cfg.API.MaxAttempts, _ = flags.GetInt("max-attempts")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the configured database path (--db, then
// INTERVIEW_DB), falling back to the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

func openStore(cfg config.Config) (*store.Store, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}
