package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"quiz-attempt/internal/app"
	"quiz-attempt/internal/domain"
)

// NewLeaderboardCmd prints the ranking for a quiz.
func NewLeaderboardCmd(configPath, server *string) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard CODE",
		Short: "Show the leaderboard of a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := resultsCode(args[0])
			if err != nil {
				return err
			}
			rt, err := newRuntime(*configPath, *server)
			if err != nil {
				return err
			}
			defer rt.Close()

			entries, err := rt.client.Leaderboard(cmd.Context(), code)
			if err != nil {
				return fmt.Errorf("load leaderboard: %w", rt.describe(err))
			}
			return writeLeaderboard(cmd.OutOrStdout(), entries)
		},
	}
}

// NewSummaryCmd prints aggregate results for a quiz.
func NewSummaryCmd(configPath, server *string) *cobra.Command {
	return &cobra.Command{
		Use:   "summary CODE",
		Short: "Show total participants, highest and average score of a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := resultsCode(args[0])
			if err != nil {
				return err
			}
			rt, err := newRuntime(*configPath, *server)
			if err != nil {
				return err
			}
			defer rt.Close()

			summary, err := rt.client.Summary(cmd.Context(), code)
			if err != nil {
				return fmt.Errorf("load summary: %w", rt.describe(err))
			}
			writeSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

func resultsCode(raw string) (string, error) {
	code := app.NormalizeCode(raw)
	return code, app.ValidateCode(code)
}

func writeLeaderboard(out io.Writer, entries []domain.LeaderboardEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No submissions yet.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tNAME\tROLL NO\tSCORE")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%g\n", i+1, domain.PlainText(e.Name), domain.PlainText(e.RollNo), e.Score)
	}
	return tw.Flush()
}

func writeSummary(out io.Writer, s domain.Summary) {
	fmt.Fprintf(out, "Participants: %d\nHighest score: %g\nAverage score: %.2f\n", s.Total, s.Highest, s.Average)
}
