package models

import (
	"sort"
	"time"
)

// EventStatus represents whether a block has been written to a calendar.
type EventStatus string

const (
	// EventStatusProposed indicates the block was generated but not applied.
	EventStatusProposed EventStatus = "proposed"
	// EventStatusApplied indicates the block was written to the calendar.
	EventStatusApplied EventStatus = "applied"
)

// Valid returns true if the status is a known value.
func (s EventStatus) Valid() bool {
	return s == EventStatusProposed || s == EventStatusApplied
}

// EventBlock is one scheduled calendar-like item proposed or applied by an agent.
// Blocks are immutable once received; timelines are replaced wholesale.
type EventBlock struct {
	ID          string      `json:"id" yaml:"id" toml:"id"`
	Title       string      `json:"title" yaml:"title" toml:"title"`
	StartISO    string      `json:"start_iso" yaml:"start_iso" toml:"start_iso"`
	EndISO      string      `json:"end_iso" yaml:"end_iso" toml:"end_iso"`
	SourceAgent string      `json:"source_agent" yaml:"source_agent" toml:"source_agent"`
	Status      EventStatus `json:"status" yaml:"status" toml:"status"`
}

// Start parses StartISO. The zero time is returned when it cannot be parsed.
func (b EventBlock) Start() time.Time {
	return parseISO(b.StartISO)
}

// End parses EndISO. The zero time is returned when it cannot be parsed.
func (b EventBlock) End() time.Time {
	return parseISO(b.EndISO)
}

// isoLayouts are tried in order; the backend emits naive local timestamps.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseISO(s string) time.Time {
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// DayGroup is the set of blocks that start on the same calendar day.
type DayGroup struct {
	Day    time.Time
	Label  string
	Blocks []EventBlock
}

// GroupByDay groups blocks by their start day, preserving the order in which
// days first appear and the order of blocks within a day. Blocks whose start
// cannot be parsed are collected under an "Unscheduled" group at the end.
func GroupByDay(blocks []EventBlock) []DayGroup {
	var groups []DayGroup
	index := make(map[string]int)
	var unscheduled []EventBlock

	for _, b := range blocks {
		start := b.Start()
		if start.IsZero() {
			unscheduled = append(unscheduled, b)
			continue
		}
		key := start.Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
			groups = append(groups, DayGroup{Day: day, Label: start.Format("Monday, January 2")})
			i = len(groups) - 1
			index[key] = i
		}
		groups[i].Blocks = append(groups[i].Blocks, b)
	}

	if len(unscheduled) > 0 {
		groups = append(groups, DayGroup{Label: "Unscheduled", Blocks: unscheduled})
	}
	return groups
}

// SortByStart returns a copy of blocks ordered by start time. Unparseable
// starts sort last, keeping their relative order.
func SortByStart(blocks []EventBlock) []EventBlock {
	out := make([]EventBlock, len(blocks))
	copy(out, blocks)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := out[i].Start(), out[j].Start()
		if si.IsZero() {
			return false
		}
		if sj.IsZero() {
			return true
		}
		return si.Before(sj)
	})
	return out
}
