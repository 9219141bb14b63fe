package cli

import (
	"os"

	"github.com/spf13/cobra"

	"quiz-attempt/internal/config"
)

var (
	configPath string
	serverURL  string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = config.DefaultPath
	}

	cmd := &cobra.Command{
		Use:           "quiz-attempt",
		Short:         "Join and take a timed quiz from the terminal or a browser",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&serverURL, "server", "", "quiz service base URL (overrides config and QUIZ_API_URL)")
	cmd.AddCommand(NewJoinCmd(&configPath, &serverURL))
	cmd.AddCommand(NewAttemptCmd(&configPath, &serverURL))
	cmd.AddCommand(NewLeaderboardCmd(&configPath, &serverURL))
	cmd.AddCommand(NewSummaryCmd(&configPath, &serverURL))
	cmd.AddCommand(NewForgetCmd(&configPath, &serverURL))
	return cmd
}
