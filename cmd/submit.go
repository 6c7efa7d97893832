package cmd

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/abhisek/interview/internal/answers"
	"github.com/abhisek/interview/internal/feedback"
	"github.com/abhisek/interview/internal/submit"
	"github.com/spf13/cobra"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit answers without the TUI",
	Long: `Fill the interview from a YAML answers file and/or --answer flags, then run
the same generate and store sequence the TUI uses. Prints the feedback route
on success and exits non-zero when every attempt fails.`,
	Example: `  interview submit --questions q.json --answer 1="A lightweight thread."
  interview submit --questions q.json --answers answers.yaml`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().String("answers", "", "YAML file mapping question numbers to answers")
	submitCmd.Flags().StringArrayP("answer", "a", nil, "Answer as number=text (repeatable)")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)

	given := map[answers.Number]string{}
	if path, _ := cmd.Flags().GetString("answers"); path != "" {
		fromFile, err := answers.LoadAnswersFile(path)
		if err != nil {
			return err
		}
		maps.Copy(given, fromFile)
	}
	pairs, _ := cmd.Flags().GetStringArray("answer")
	fromFlags, err := answers.ParseAnswerArgs(pairs)
	if err != nil {
		return err
	}
	maps.Copy(given, fromFlags)

	session := loadSession(cfg, logger)
	for _, n := range slices.Sorted(maps.Keys(given)) {
		if !session.SetAnswer(n, given[n]) {
			return fmt.Errorf("question %d is not in the interview", n)
		}
	}

	opts := []submit.Option{submit.WithLogger(logger)}
	st, err := openStore(cfg)
	if err != nil {
		logger.Warn("submission history disabled", "error", err)
	} else {
		defer st.Close()
		opts = append(opts, submit.WithRecorder(st.EventRepo()))
	}

	out := cmd.OutOrStdout()
	pipeline := submit.New(
		feedback.NewClient(cfg.API.Feedback(), cfg.API.Tokens()),
		submit.NavigatorFunc(func(route string) { fmt.Fprintln(out, route) }),
		submit.NotifierFunc(func(msg string) { fmt.Fprintln(cmd.ErrOrStderr(), msg) }),
		submit.Config{MaxAttempts: cfg.API.MaxAttempts},
		opts...,
	)

	outcome, err := pipeline.Submit(ctx, session.Snapshot())
	if err != nil {
		return err
	}
	if outcome.State != submit.StateSucceeded {
		return fmt.Errorf("submission failed after %d attempt(s): %w", outcome.Attempts, outcome.Err)
	}
	return nil
}
