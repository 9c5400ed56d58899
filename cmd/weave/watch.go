package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/taskweave/weave/internal/events"
	"github.com/taskweave/weave/internal/logging"
	"github.com/taskweave/weave/internal/stream"
)

var watchJSON bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print events pushed by the backend until interrupted",
	Long: `Watch connects to the backend's event stream and prints every event it
receives. With stream.auto_reconnect enabled (the default) it reconnects
after the configured delay; otherwise it exits when the connection drops.`,
	Args: cobra.NoArgs,
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
		backoff, err := stream.NewBackoff(cfg.Stream.Backoff, cfg.Stream.ReconnectDelay, cfg.Stream.MaxDelay)
		if err != nil {
			return err
		}

		ctx, cancel := notifyContext(cmd.Context())
		defer cancel()

		url := client.WebSocketURL()
		sc := stream.New(stream.Options{
			URL:           url,
			Backoff:       backoff,
			AutoReconnect: cfg.Stream.AutoReconnect,
			Logger:        logger,
			OnEvent: func(ev events.Event) {
				if err := printEvent(os.Stdout, ev, watchJSON); err != nil {
					logger.Log("print event: %v", err)
				}
			},
			OnReject: func(_ []byte, err error) {
				printStatus("⚠", fmt.Sprintf("Dropped frame: %v", err), color.FgYellow)
			},
			OnConnect: func() {
				printStatus("✓", "Connected to "+url, color.FgGreen)
			},
			OnDisconnect: func(err error) {
				msg := "Disconnected"
				if err != nil {
					msg += ": " + err.Error()
				}
				printStatus("✗", msg, color.FgRed)
				if !cfg.Stream.AutoReconnect {
					cancel()
				}
			},
		})

		if err := sc.Connect(); err != nil {
			return err
		}
		<-ctx.Done()
		return sc.Close()
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchJSON, "json", false, "Print each event as a JSON frame")
}

// printEvent writes one line describing ev.
func printEvent(w io.Writer, ev events.Event, asJSON bool) error {
	if asJSON {
		frame, err := events.Encode(ev)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(frame))
		return err
	}
	_, err := fmt.Fprintf(w, "%s %s\n", time.Now().Format("15:04:05"), describeEvent(ev))
	return err
}

// describeEvent renders an event as "TYPE details [trace=...]".
func describeEvent(ev events.Event) string {
	var detail string
	switch e := ev.(type) {
	case events.AgentLog:
		detail = fmt.Sprintf("%s: %s", e.Agent, e.Message)
		if e.Level != "" && !strings.EqualFold(e.Level, "INFO") {
			detail += " (" + strings.ToLower(e.Level) + ")"
		}
	case events.TimelineUpdate:
		detail = fmt.Sprintf("%d blocks", len(e.Blocks))
	case events.Error:
		detail = e.Message
		if e.Details != "" {
			detail += " (" + e.Details + ")"
		}
	case events.PlanComplete:
		detail = fmt.Sprintf("%d subtasks", len(e.Subtasks))
		if e.Rationale != "" {
			detail += ": " + e.Rationale
		}
	case events.AgentsSpawned:
		detail = strings.Join(e.AgentIDs, ", ")
	case events.AgentsComplete:
		detail = fmt.Sprintf("%d blocks", e.BlockCount)
	}

	line := string(ev.Type())
	if detail != "" {
		line += " " + detail
	}
	if trace := ev.TraceID(); trace != "" {
		line += " [trace=" + trace + "]"
	}
	return line
}
