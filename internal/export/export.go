// Package export renders timelines and preferences for the headless
// commands in text, JSON, YAML or TOML.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"

	"github.com/taskweave/weave/pkg/models"
)

// Format is an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatTOML}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json, yaml or toml)", s)
	}
}

// Timeline is the exported shape of a generated schedule.
type Timeline struct {
	TraceID string              `json:"trace_id,omitempty" yaml:"trace_id,omitempty" toml:"trace_id,omitempty"`
	Blocks  []models.EventBlock `json:"blocks" yaml:"blocks" toml:"blocks"`
}

// WriteTimeline renders t to w.
func WriteTimeline(w io.Writer, f Format, t Timeline) error {
	if t.Blocks == nil {
		t.Blocks = []models.EventBlock{}
	}
	if f == FormatText {
		return writeTimelineText(w, t)
	}
	return encode(w, f, t)
}

// WritePrefs renders p to w.
func WritePrefs(w io.Writer, f Format, p models.MemoryPrefs) error {
	if f == FormatText {
		return writePrefsText(w, p)
	}
	return encode(w, f, p)
}

// ReadPrefs decodes preferences written by WritePrefs in any structured format.
func ReadPrefs(r io.Reader, f Format) (models.MemoryPrefs, error) {
	var p models.MemoryPrefs
	data, err := io.ReadAll(r)
	if err != nil {
		return p, fmt.Errorf("read preferences: %w", err)
	}
	switch f {
	case FormatJSON:
		err = json.Unmarshal(data, &p)
	case FormatYAML:
		err = yaml.Unmarshal(data, &p)
	case FormatTOML:
		err = toml.Unmarshal(data, &p)
	default:
		return p, fmt.Errorf("cannot read preferences as %s", f)
	}
	if err != nil {
		return p, fmt.Errorf("decode %s preferences: %w", f, err)
	}
	return p, nil
}

func encode(w io.Writer, f Format, v any) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(v); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

func writeTimelineText(w io.Writer, t Timeline) error {
	if len(t.Blocks) == 0 {
		_, err := fmt.Fprintln(w, "No events generated.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, group := range models.GroupByDay(t.Blocks) {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintln(tw, group.Label)
		for _, b := range group.Blocks {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", TimeRange(b), b.Title, b.SourceAgent, b.Status)
		}
	}
	if t.TraceID != "" {
		fmt.Fprintf(tw, "\ntrace: %s\n", t.TraceID)
	}
	return tw.Flush()
}

func writePrefsText(w io.Writer, p models.MemoryPrefs) error {
	dietary := p.DietaryString()
	if dietary == "" {
		dietary = "(none)"
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "user_id:\t%s\n", p.UserID)
	fmt.Fprintf(tw, "sleep:\t%s - %s\n", p.SleepStart, p.SleepEnd)
	fmt.Fprintf(tw, "study_block_minutes:\t%d\n", p.StudyBlockMinutes)
	fmt.Fprintf(tw, "break_minutes:\t%d\n", p.BreakMinutes)
	fmt.Fprintf(tw, "dietary:\t%s\n", dietary)
	return tw.Flush()
}

// TimeRange formats a block as "Jan 2 15:04 → 16:30", falling back to the
// raw strings when they do not parse.
func TimeRange(b models.EventBlock) string {
	start, end := b.Start(), b.End()
	if start.IsZero() {
		return b.StartISO + " → " + b.EndISO
	}
	from := start.Format("Jan 2 15:04")
	switch {
	case end.IsZero():
		return from + " → " + b.EndISO
	case end.YearDay() == start.YearDay() && end.Year() == start.Year():
		return from + " → " + end.Format("15:04")
	default:
		return from + " → " + end.Format("Jan 2 15:04")
	}
}
