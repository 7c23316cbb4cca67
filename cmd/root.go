package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pathwise/pathwise/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "pathwise",
	Short: "Progress and assessment engine for learning paths",
	Long: "Pathwise tracks learner progress through learning paths and uses language models " +
		"to generate quizzes and grade written and spoken answers.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PATHWISE_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to a pathwise.yaml config file")
	rootCmd.PersistentFlags().String("log-mode", "", "Log format: dev or prod (default prod)")

	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(speakCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(enrollCmd)
	rootCmd.AddCommand(unenrollCmd)
	rootCmd.AddCommand(enrollmentsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then PATHWISE_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
