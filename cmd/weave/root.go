package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	flagBaseURL string
	flagUserID  string
)

var rootCmd = &cobra.Command{
	Use:   "weave",
	Short: "Terminal client for the TaskWeave multi-agent assistant",
	Long: `weave talks to a TaskWeave backend: it turns a request into a plan,
runs the study, meal and calendar agents on it, and shows the resulting
timeline.

With no arguments, launches the interactive TUI with a terminal, the
generated timeline, agent cards and your saved preferences.

Configuration is read from ~/.config/weave/config.yaml, a .weave.yaml in
the current directory or any parent, and TASKWEAVE_* environment variables.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Backend URL (overrides api.base_url)")
	rootCmd.PersistentFlags().StringVar(&flagUserID, "user", "", "User id (overrides user.id)")

	// Add subcommands
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(memoryCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
