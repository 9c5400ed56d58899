package api

import "github.com/taskweave/weave/pkg/models"

// PlanRequest is the body of POST /api/plan.
type PlanRequest struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
	DryRun bool   `json:"dry_run"`
}

// PlanResponse carries the planner's subtasks and the trace id to reuse for
// the follow-up run.
type PlanResponse struct {
	Subtasks  []models.Subtask `json:"subtasks"`
	Rationale string           `json:"rationale"`
	TraceID   string           `json:"trace_id"`
}

// AgentRunRequest is the body of POST /api/agents/run.
type AgentRunRequest struct {
	UserID   string           `json:"user_id"`
	Subtasks []models.Subtask `json:"subtasks"`
	TraceID  string           `json:"trace_id,omitempty"`
}

// AgentRunResponse is the merged timeline produced by the agents.
type AgentRunResponse struct {
	Timeline []models.EventBlock `json:"timeline"`
	TraceID  string              `json:"trace_id"`
}

// MemoryResponse wraps the preference record returned by both memory endpoints.
type MemoryResponse struct {
	Prefs   models.MemoryPrefs `json:"prefs"`
	TraceID string             `json:"trace_id"`
}

type memoryUpsertRequest struct {
	Prefs models.MemoryPrefs `json:"prefs"`
}

// CalendarApplyRequest is the body of POST /api/tools/calendar/apply.
type CalendarApplyRequest struct {
	UserID string              `json:"user_id"`
	Blocks []models.EventBlock `json:"blocks"`
	DryRun bool                `json:"dry_run"`
}

// CalendarApplyResponse reports how many blocks were processed.
type CalendarApplyResponse struct {
	AppliedCount int    `json:"applied_count"`
	DryRun       bool   `json:"dry_run"`
	TraceID      string `json:"trace_id"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
