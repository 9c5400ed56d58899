package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/taskweave/weave/internal/logging"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := logging.OpenOrNop(cfg.Log.File)
		defer logger.Close()

		client, err := newAPIClient(cfg, logger)
		if err != nil {
			return err
		}

		ctx, cancel := notifyContext(cmd.Context())
		defer cancel()

		resp, err := client.Health(ctx)
		if err != nil {
			printStatus("✗", client.BaseURL()+" unreachable", color.FgRed)
			return err
		}

		msg := client.BaseURL() + " " + resp.Status
		if resp.Version != "" {
			msg += " (version " + resp.Version + ")"
		}
		printStatus("✓", msg, color.FgGreen)
		return nil
	},
}
