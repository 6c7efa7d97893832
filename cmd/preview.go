package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abhisek/interview/internal/devserver"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Answer the questions in the console and review them locally (no database)",
	Long: `Walk through the interview questions on the console, then generate feedback
with the configured LLM provider without calling the feedback service.

This is a stateless tool: nothing is stored and no events are recorded.
Useful for checking question files and prompt quality.`,
	RunE: runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)

	gen, err := newGenerator(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}

	session := loadSession(cfg, logger)
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	questions := session.Snapshot()
	for i, qa := range questions {
		fmt.Fprintf(out, "── Question %d/%d ──\n", i+1, len(questions))
		fmt.Fprintln(out, qa.Question)
		fmt.Fprint(out, "\nYour answer: ")
		if !scanner.Scan() {
			fmt.Fprintln(out, "\n(input closed)")
			break
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			fmt.Fprintln(out, "(skipped)")
		}
		session.SetAnswer(qa.Number, answer)
		fmt.Fprintln(out)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read answers: %w", err)
	}

	fmt.Fprintln(out, "Reviewing answers...")
	raw, err := gen.Generate(ctx, session.Snapshot())
	if err != nil {
		return fmt.Errorf("generate feedback: %w", err)
	}
	return printFeedback(out, raw)
}

// printFeedback renders the review shape, or the raw JSON when the
// generator returned something else.
func printFeedback(w io.Writer, raw json.RawMessage) error {
	var fb devserver.Feedback
	if err := json.Unmarshal(raw, &fb); err != nil || fb.Overall == "" {
		_, err := fmt.Fprintln(w, string(raw))
		return err
	}

	fmt.Fprintf(w, "\n── Score: %d/10 ──\n%s\n", fb.Score, fb.Overall)
	for _, a := range fb.Answers {
		fmt.Fprintf(w, "\nQuestion %d: %d/10\n", a.Number, a.Score)
		if a.Strengths != "" {
			fmt.Fprintf(w, "  + %s\n", a.Strengths)
		}
		if a.Improvement != "" {
			fmt.Fprintf(w, "  - %s\n", a.Improvement)
		}
	}
	return nil
}
