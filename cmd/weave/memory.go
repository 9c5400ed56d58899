package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/taskweave/weave/internal/api"
	"github.com/taskweave/weave/internal/export"
	"github.com/taskweave/weave/internal/logging"
	"github.com/taskweave/weave/pkg/models"
)

// memoryClient is the part of the API client the memory commands use.
type memoryClient interface {
	GetMemory(ctx context.Context) (*api.MemoryResponse, error)
	UpsertMemory(ctx context.Context, prefs models.MemoryPrefs) (*api.MemoryResponse, error)
}

var (
	memoryOutput     string
	memoryFile       string
	memorySleepStart string
	memorySleepEnd   string
	memoryStudyBlock int
	memoryBreak      int
	memoryDietary    string
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Show or update your scheduling preferences",
}

var memoryGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the stored preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(memoryOutput)
		if err != nil {
			return err
		}
		return withClient(cmd.Context(), func(ctx context.Context, c memoryClient) error {
			resp, err := c.GetMemory(ctx)
			if err != nil {
				return err
			}
			return export.WritePrefs(os.Stdout, format, resp.Prefs)
		})
	},
}

var memorySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Replace the stored preferences",
	Long: `Set loads the stored preferences, applies a file and/or individual
fields, and saves the result. The server keeps one record per user and
overwrites it.

Examples:
  weave memory set --break 10 --dietary vegetarian
  weave memory set -f prefs.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(memoryOutput)
		if err != nil {
			return err
		}
		return withClient(cmd.Context(), func(ctx context.Context, c memoryClient) error {
			resp, err := c.GetMemory(ctx)
			if err != nil {
				return err
			}
			prefs := resp.Prefs

			if memoryFile != "" {
				if prefs, err = readPrefsFile(memoryFile, prefs.UserID); err != nil {
					return err
				}
			}
			applyPrefFlags(cmd, &prefs)

			if err := prefs.Validate(); err != nil {
				return fmt.Errorf("invalid preferences: %w", err)
			}

			saved, err := c.UpsertMemory(ctx, prefs)
			if err != nil {
				return err
			}
			if format == export.FormatText {
				printStatus("✓", "Preferences saved", color.FgGreen)
			}
			return export.WritePrefs(os.Stdout, format, saved.Prefs)
		})
	},
}

func init() {
	memoryCmd.PersistentFlags().StringVarP(&memoryOutput, "output", "o", "text", "Output format: text, json, yaml or toml")

	memorySetCmd.Flags().StringVarP(&memoryFile, "file", "f", "", "Read preferences from a .json, .yaml or .toml file")
	memorySetCmd.Flags().StringVar(&memorySleepStart, "sleep-start", "", "Bedtime (HH:MM)")
	memorySetCmd.Flags().StringVar(&memorySleepEnd, "sleep-end", "", "Wake-up time (HH:MM)")
	memorySetCmd.Flags().IntVar(&memoryStudyBlock, "study-block", 0,
		fmt.Sprintf("Study block length in minutes (%d-%d)", models.MinStudyBlockMinutes, models.MaxStudyBlockMinutes))
	memorySetCmd.Flags().IntVar(&memoryBreak, "break", 0,
		fmt.Sprintf("Break length in minutes (%d-%d)", models.MinBreakMinutes, models.MaxBreakMinutes))
	memorySetCmd.Flags().StringVar(&memoryDietary, "dietary", "", `Dietary preference ("" clears it)`)

	memoryCmd.AddCommand(memoryGetCmd)
	memoryCmd.AddCommand(memorySetCmd)
}

// applyPrefFlags overwrites the fields whose flags were given.
func applyPrefFlags(cmd *cobra.Command, prefs *models.MemoryPrefs) {
	flags := cmd.Flags()
	if flags.Changed("sleep-start") {
		prefs.SleepStart = memorySleepStart
	}
	if flags.Changed("sleep-end") {
		prefs.SleepEnd = memorySleepEnd
	}
	if flags.Changed("study-block") {
		prefs.StudyBlockMinutes = memoryStudyBlock
	}
	if flags.Changed("break") {
		prefs.BreakMinutes = memoryBreak
	}
	if flags.Changed("dietary") {
		prefs.SetDietary(strings.TrimSpace(memoryDietary))
	}
}

// readPrefsFile decodes a preferences file chosen by extension. The user id
// in the file is ignored in favour of userID.
func readPrefsFile(path, userID string) (models.MemoryPrefs, error) {
	format, err := formatForPath(path)
	if err != nil {
		return models.MemoryPrefs{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return models.MemoryPrefs{}, fmt.Errorf("open preferences: %w", err)
	}
	defer f.Close()

	prefs, err := export.ReadPrefs(f, format)
	if err != nil {
		return prefs, err
	}
	prefs.UserID = userID
	return prefs, nil
}

func formatForPath(path string) (export.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return export.FormatJSON, nil
	case ".yaml", ".yml":
		return export.FormatYAML, nil
	case ".toml":
		return export.FormatTOML, nil
	default:
		return "", fmt.Errorf("cannot tell format of %s (use .json, .yaml or .toml)", path)
	}
}

// withClient builds the backend client and runs fn with a signal-aware
// context.
func withClient(ctx context.Context, fn func(context.Context, memoryClient) error) error {
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
	return fn(ctx, client)
}
