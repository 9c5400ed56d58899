package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/taskweave/weave/internal/events"
	"github.com/taskweave/weave/internal/export"
	"github.com/taskweave/weave/internal/store"
	"github.com/taskweave/weave/pkg/models"
)

// isolateConfig points config and state lookups at a temp dir.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_STATE_HOME", dir)
	t.Setenv("TASKWEAVE_API_BASE_URL", "")
	t.Chdir(dir)
	return dir
}

func TestDescribeEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   events.Event
		want string
	}{
		{"agent log", events.AgentLog{Agent: "study_agent", Message: "Blocking sessions", Level: "INFO"}, "AGENT_LOG study_agent: Blocking sessions"},
		{"agent log warning", events.AgentLog{Agent: "meal_agent", Message: "No recipes", Level: "WARNING"}, "AGENT_LOG meal_agent: No recipes (warning)"},
		{"timeline", events.TimelineUpdate{Blocks: make([]models.EventBlock, 4)}, "TIMELINE_UPDATE 4 blocks"},
		{"error", events.Error{Message: "boom", Details: "db down"}, "ERROR boom (db down)"},
		{"plan", events.PlanComplete{Subtasks: make([]models.Subtask, 2), Rationale: "split"}, "PLAN_COMPLETE 2 subtasks: split"},
		{"spawned", events.AgentsSpawned{AgentIDs: []string{"study_agent", "meal_agent"}}, "AGENTS_SPAWNED study_agent, meal_agent"},
		{"complete with trace", events.AgentsComplete{Meta: events.Meta{Trace: "tr-9"}, BlockCount: 3}, "AGENTS_COMPLETE 3 blocks [trace=tr-9]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeEvent(tt.ev); got != tt.want {
				t.Errorf("describeEvent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintEvent_JSON(t *testing.T) {
	var buf bytes.Buffer
	ev := events.AgentsComplete{Meta: events.Meta{Trace: "tr-1"}, BlockCount: 2}

	if err := printEvent(&buf, ev, true); err != nil {
		t.Fatalf("printEvent: %v", err)
	}

	decoded, err := events.Decode(bytes.TrimSpace(buf.Bytes()))
	if err != nil {
		t.Fatalf("output is not a valid frame: %v\n%s", err, buf.String())
	}
	if decoded.Type() != events.TypeAgentsComplete || decoded.TraceID() != "tr-1" {
		t.Errorf("unexpected round trip %#v", decoded)
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    export.Format
		wantErr bool
	}{
		{"prefs.json", export.FormatJSON, false},
		{"prefs.YAML", export.FormatYAML, false},
		{"dir/prefs.yml", export.FormatYAML, false},
		{"prefs.toml", export.FormatTOML, false},
		{"prefs.txt", "", true},
	}

	for _, tt := range tests {
		got, err := formatForPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("formatForPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("formatForPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestReadPrefsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")

	prefs := models.DefaultMemoryPrefs("someone_else")
	prefs.BreakMinutes = 20
	var buf bytes.Buffer
	if err := export.WritePrefs(&buf, export.FormatYAML, prefs); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := readPrefsFile(path, "demo_user_1")
	if err != nil {
		t.Fatalf("readPrefsFile: %v", err)
	}
	if got.UserID != "demo_user_1" {
		t.Errorf("user id should be overridden, got %q", got.UserID)
	}
	if got.BreakMinutes != 20 {
		t.Errorf("BreakMinutes = %d, want 20", got.BreakMinutes)
	}
}

func TestApplyPrefFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "set"}
	cmd.Flags().StringVar(&memorySleepStart, "sleep-start", "", "")
	cmd.Flags().StringVar(&memorySleepEnd, "sleep-end", "", "")
	cmd.Flags().IntVar(&memoryStudyBlock, "study-block", 0, "")
	cmd.Flags().IntVar(&memoryBreak, "break", 0, "")
	cmd.Flags().StringVar(&memoryDietary, "dietary", "", "")

	if err := cmd.Flags().Parse([]string{"--break", "10", "--dietary", " vegan "}); err != nil {
		t.Fatal(err)
	}

	prefs := models.DefaultMemoryPrefs("demo_user_1")
	applyPrefFlags(cmd, &prefs)

	if prefs.BreakMinutes != 10 {
		t.Errorf("BreakMinutes = %d, want 10", prefs.BreakMinutes)
	}
	if prefs.DietaryString() != "vegan" {
		t.Errorf("Dietary = %q, want vegan", prefs.DietaryString())
	}
	if prefs.StudyBlockMinutes != 90 || prefs.SleepStart != "23:00" {
		t.Errorf("unchanged fields were modified: %+v", prefs)
	}
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	isolateConfig(t)

	flagBaseURL, flagUserID = "https://weave.example.com", "flag_user"
	t.Cleanup(func() { flagBaseURL, flagUserID = "", "" })

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.API.BaseURL != "https://weave.example.com" || cfg.User.ID != "flag_user" {
		t.Errorf("flags not applied: %+v", cfg)
	}

	flagBaseURL = "ftp://nope"
	if _, err := loadConfig(); err == nil {
		t.Error("expected validation error for bad base url")
	}
}

func TestPrintingDispatcher(t *testing.T) {
	st := store.New("demo_user_1")
	dispatch := printingDispatcher(st)

	dispatch(store.LogAppended{Agent: models.SourceSystem, Message: "hello"})
	dispatch(store.SubmitStarted{Query: "Plan my week"})

	logs := st.State().Logs
	if len(logs) != 3 {
		t.Fatalf("expected 3 log lines, got %d", len(logs))
	}
	if logs[0].Message != "hello" {
		t.Errorf("first line = %q", logs[0].Message)
	}
}

func TestRunPlan(t *testing.T) {
	isolateConfig(t)

	var applied bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/plan":
			_, _ = w.Write([]byte(`{"subtasks":[{"id":"s1","agent":"study_agent","description":"review"}],"rationale":"one study block","trace_id":"tr-1"}`))
		case "/api/agents/run":
			var req struct {
				TraceID string `json:"trace_id"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.TraceID != "tr-1" {
				http.Error(w, `{"detail":"missing trace"}`, http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(`{"timeline":[{"id":"b1","title":"Review","start_iso":"2025-03-10T09:00:00","end_iso":"2025-03-10T10:00:00","source_agent":"study_agent","status":"proposed"}],"trace_id":"tr-1"}`))
		case "/api/tools/calendar/apply":
			applied = true
			_, _ = w.Write([]byte(`{"applied_count":1,"dry_run":true,"trace_id":"tr-1"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	flagBaseURL = srv.URL
	planApply, planDryRun, planOutput = true, true, "json"
	t.Cleanup(func() {
		flagBaseURL = ""
		planApply, planDryRun, planOutput = false, true, "text"
	})

	if err := runPlan(context.Background(), "Plan my Stanford CS midterms week"); err != nil {
		t.Fatalf("runPlan: %v", err)
	}
	if !applied {
		t.Error("expected calendar apply with --apply")
	}
}

func TestRunPlan_BackendError(t *testing.T) {
	isolateConfig(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"planner unavailable"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	flagBaseURL = srv.URL
	t.Cleanup(func() { flagBaseURL = "" })

	err := runPlan(context.Background(), "Plan my week")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "planner unavailable") {
		t.Errorf("error should carry the server detail, got %v", err)
	}
}
