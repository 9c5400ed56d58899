package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskweave/weave/internal/export"
	"github.com/taskweave/weave/internal/logging"
	"github.com/taskweave/weave/internal/shell"
	"github.com/taskweave/weave/internal/store"
)

var (
	planApply  bool
	planDryRun bool
	planOutput string
)

var planCmd = &cobra.Command{
	Use:   "plan <query>",
	Short: "Plan a request, run the agents and print the timeline",
	Long: `Plan sends the request to the planner, runs the agents on the resulting
subtasks and prints the generated timeline. Progress is written to stderr,
the timeline to stdout.

Examples:
  weave plan "Plan my Stanford CS midterms week"
  weave plan -o json "Plan my week" > timeline.json
  weave plan --apply --dry-run=false "Plan my week"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlan(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	planCmd.Flags().BoolVar(&planApply, "apply", false, "Apply the timeline to the calendar afterwards")
	planCmd.Flags().BoolVar(&planDryRun, "dry-run", true, "With --apply, only report what would be written")
	planCmd.Flags().StringVarP(&planOutput, "output", "o", "text", "Output format: text, json, yaml or toml")
}

func runPlan(ctx context.Context, query string) error {
	format, err := export.ParseFormat(planOutput)
	if err != nil {
		return err
	}

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

	ctx, cancel := notifyContext(ctx)
	defer cancel()

	st := store.New(cfg.User.ID)
	sh := shell.New(shell.Config{
		API:      client,
		Dispatch: printingDispatcher(st),
		State:    st,
		Logger:   logger,
	})

	if err := sh.Submit(ctx, query); err != nil {
		return fmt.Errorf("plan: %w", err)
	}

	if planApply {
		if err := sh.ApplyCalendar(ctx, planDryRun); err != nil {
			return fmt.Errorf("apply: %w", err)
		}
	}

	state := st.State()
	return export.WriteTimeline(os.Stdout, format, export.Timeline{
		TraceID: state.TraceID,
		Blocks:  state.Timeline,
	})
}

// printingDispatcher dispatches to st and echoes new session log lines to
// stderr. It must only be called from one goroutine at a time.
func printingDispatcher(st *store.Store) shell.Dispatcher {
	return func(a store.Action) {
		before := len(st.State().Logs)
		after := st.Dispatch(a)
		for _, entry := range after.Logs[before:] {
			printLogEntry(entry)
		}
	}
}
