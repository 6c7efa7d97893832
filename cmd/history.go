package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/interview/internal/store"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent submissions and their attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		verbose, _ := cmd.Flags().GetBool("attempts")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.EventRepo()
		outcomes, err := repo.RecentOutcomes(ctx, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query outcomes: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(outcomes) == 0 {
			fmt.Fprintln(out, "No submissions yet.")
			return nil
		}

		fmt.Fprintf(out, "%-19s  %-10s  %-8s  %-8s  %s\n",
			"Timestamp", "State", "Answered", "Attempts", "Route")
		fmt.Fprintln(out, strings.Repeat("─", 80))

		for _, o := range outcomes {
			route := o.Route
			if route == "" {
				route = "-"
			}
			fmt.Fprintf(out, "%-19s  %-10s  %-8s  %-8d  %s\n",
				o.Timestamp.Local().Format("2006-01-02 15:04:05"),
				o.State,
				fmt.Sprintf("%d/%d", o.Answered, o.Questions),
				o.Attempts,
				route,
			)
			if !verbose {
				continue
			}

			attempts, err := repo.AttemptsForTrigger(ctx, o.TriggerID)
			if err != nil {
				return fmt.Errorf("query attempts: %w", err)
			}
			for _, a := range attempts {
				ok := "✓"
				detail := fmt.Sprintf("HTTP %d", a.StatusCode)
				if !a.Success {
					ok = "✗"
					if a.ErrorMessage != "" {
						detail = a.ErrorMessage
					}
				}
				fmt.Fprintf(out, "    #%d %-8s %s %-40s %dms\n",
					a.Attempt, a.Step, ok, truncate(detail, 40), a.LatencyMs)
			}
		}
		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of submissions to show")
	historyCmd.Flags().Bool("attempts", false, "Show every attempt under each submission")
}
