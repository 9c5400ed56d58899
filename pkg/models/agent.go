package models

import "strings"

// AgentStatus represents the current state of an agent as shown to the user.
type AgentStatus string

const (
	// AgentStatusIdle indicates the agent has no request to work on.
	AgentStatusIdle AgentStatus = "idle"
	// AgentStatusRunning indicates a request is in flight.
	AgentStatusRunning AgentStatus = "running"
	// AgentStatusComplete indicates the last request finished.
	AgentStatusComplete AgentStatus = "complete"
)

// Valid returns true if the status is a known value.
func (s AgentStatus) Valid() bool {
	switch s {
	case AgentStatusIdle, AgentStatusRunning, AgentStatusComplete:
		return true
	default:
		return false
	}
}

// AgentType names one of the backend agents a subtask can be routed to.
type AgentType string

const (
	AgentStudy    AgentType = "study_agent"
	AgentMeal     AgentType = "meal_agent"
	AgentCalendar AgentType = "calendar_agent"
)

// DefaultAgentTypes is the fixed roster the backend runs.
var DefaultAgentTypes = []AgentType{AgentStudy, AgentMeal, AgentCalendar}

// AgentInfo represents one agent card.
type AgentInfo struct {
	// ID is the agent identifier (matches the AgentType value).
	ID string `json:"id"`
	// Name is the display name.
	Name string `json:"name"`
	// Status is the current state of the agent.
	Status AgentStatus `json:"status"`
	// LastAction is the most recent thing the agent reported, if any.
	LastAction string `json:"last_action,omitempty"`
	// Tokens is the token count reported for the agent, if known.
	Tokens *int64 `json:"tokens,omitempty"`
}

// DisplayName returns the name with underscores replaced by spaces.
func (a AgentInfo) DisplayName() string {
	return strings.ReplaceAll(a.Name, "_", " ")
}

// DefaultAgents returns a fresh idle roster.
func DefaultAgents() []AgentInfo {
	agents := make([]AgentInfo, 0, len(DefaultAgentTypes))
	for _, t := range DefaultAgentTypes {
		agents = append(agents, AgentInfo{
			ID:     string(t),
			Name:   string(t),
			Status: AgentStatusIdle,
		})
	}
	return agents
}

// WithStatus returns a copy of agents with every status set to s.
// The input slice is not modified.
func WithStatus(agents []AgentInfo, s AgentStatus) []AgentInfo {
	out := make([]AgentInfo, len(agents))
	for i, a := range agents {
		a.Status = s
		out[i] = a
	}
	return out
}

// Subtask is a unit of work the planner assigns to an agent.
type Subtask struct {
	ID          string    `json:"id"`
	Agent       AgentType `json:"agent"`
	Description string    `json:"description"`
}
