package models

import "testing"

func TestAgentStatus_Valid(t *testing.T) {
	tests := []struct {
		name   string
		status AgentStatus
		want   bool
	}{
		{"idle is valid", AgentStatusIdle, true},
		{"running is valid", AgentStatusRunning, true},
		{"complete is valid", AgentStatusComplete, true},
		{"empty string is invalid", AgentStatus(""), false},
		{"done is not an agent status", AgentStatus("done"), false},
		{"typo status is invalid", AgentStatus("runnning"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("AgentStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestDefaultAgents(t *testing.T) {
	agents := DefaultAgents()

	if len(agents) != 3 {
		t.Fatalf("expected 3 agents, got %d", len(agents))
	}
	want := []string{"study_agent", "meal_agent", "calendar_agent"}
	for i, a := range agents {
		if a.ID != want[i] {
			t.Errorf("agents[%d].ID = %q, want %q", i, a.ID, want[i])
		}
		if a.Status != AgentStatusIdle {
			t.Errorf("agents[%d].Status = %q, want idle", i, a.Status)
		}
	}
}

func TestWithStatus_DoesNotMutateInput(t *testing.T) {
	agents := DefaultAgents()

	running := WithStatus(agents, AgentStatusRunning)

	for i := range agents {
		if agents[i].Status != AgentStatusIdle {
			t.Errorf("input agents[%d] mutated to %q", i, agents[i].Status)
		}
		if running[i].Status != AgentStatusRunning {
			t.Errorf("running[%d].Status = %q, want running", i, running[i].Status)
		}
	}
}

func TestAgentInfo_DisplayName(t *testing.T) {
	a := AgentInfo{Name: "calendar_agent"}
	if got := a.DisplayName(); got != "calendar agent" {
		t.Errorf("DisplayName() = %q, want %q", got, "calendar agent")
	}
}
