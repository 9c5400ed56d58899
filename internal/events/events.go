// Package events decodes the JSON frames pushed by the TaskWeave backend over
// the /ws/events WebSocket into typed server events.
//
// Every frame has the shape {"type": ..., "payload": ..., "trace_id": ...}.
// The payload layout depends on the type, so Decode returns one concrete
// struct per tag. Frames with an unknown tag are rejected with
// ErrUnknownType rather than passed through untyped.
package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/taskweave/weave/pkg/models"
)

// Type is the discriminator of a server event.
type Type string

const (
	TypeAgentLog       Type = "AGENT_LOG"
	TypeTimelineUpdate Type = "TIMELINE_UPDATE"
	TypeError          Type = "ERROR"
	TypePlanComplete   Type = "PLAN_COMPLETE"
	TypeAgentsSpawned  Type = "AGENTS_SPAWNED"
	TypeAgentsComplete Type = "AGENTS_COMPLETE"
)

// Types lists every tag the decoder understands.
var Types = []Type{
	TypeAgentLog,
	TypeTimelineUpdate,
	TypeError,
	TypePlanComplete,
	TypeAgentsSpawned,
	TypeAgentsComplete,
}

var (
	// ErrMalformed is returned for frames that are not a valid envelope.
	ErrMalformed = errors.New("malformed event frame")
	// ErrUnknownType is returned for well-formed frames with an unrecognised tag.
	ErrUnknownType = errors.New("unknown event type")
)

// Event is implemented by every decoded server event.
type Event interface {
	Type() Type
	TraceID() string
}

// Meta carries the envelope fields shared by all events.
type Meta struct {
	Trace string
}

// TraceID returns the correlation id the server attached, or "".
func (m Meta) TraceID() string { return m.Trace }

// AgentLog is a progress line emitted by one backend agent.
type AgentLog struct {
	Meta    `json:"-"`
	Agent   string `json:"agent"`
	Message string `json:"message"`
	Level   string `json:"level"`
}

func (AgentLog) Type() Type { return TypeAgentLog }

// TimelineUpdate replaces the whole timeline for a user.
type TimelineUpdate struct {
	Meta   `json:"-"`
	UserID string              `json:"user_id"`
	Blocks []models.EventBlock `json:"blocks"`
}

func (TimelineUpdate) Type() Type { return TypeTimelineUpdate }

// Error is a domain error reported by the backend.
type Error struct {
	Meta    `json:"-"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (Error) Type() Type { return TypeError }

// PlanComplete is emitted once the planner has produced subtasks.
type PlanComplete struct {
	Meta      `json:"-"`
	Subtasks  []models.Subtask `json:"subtasks"`
	Rationale string           `json:"rationale"`
}

func (PlanComplete) Type() Type { return TypePlanComplete }

// AgentsSpawned lists the agents the backend started for a run.
type AgentsSpawned struct {
	Meta     `json:"-"`
	AgentIDs []string `json:"agent_ids"`
}

func (AgentsSpawned) Type() Type { return TypeAgentsSpawned }

// AgentsComplete signals that every agent of a run has finished.
type AgentsComplete struct {
	Meta       `json:"-"`
	BlockCount int `json:"block_count"`
}

func (AgentsComplete) Type() Type { return TypeAgentsComplete }

type envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload"`
	TraceID string          `json:"trace_id,omitempty"`
}

// Decode parses a single frame. Malformed frames wrap ErrMalformed and
// unknown tags wrap ErrUnknownType.
func Decode(frame []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	meta := Meta{Trace: env.TraceID}
	switch env.Type {
	case TypeAgentLog:
		ev := AgentLog{Level: "INFO"}
		if err := decodePayload(env, &ev); err != nil {
			return nil, err
		}
		ev.Meta = meta
		return ev, nil
	case TypeTimelineUpdate:
		var ev TimelineUpdate
		if err := decodePayload(env, &ev); err != nil {
			return nil, err
		}
		ev.Meta = meta
		return ev, nil
	case TypeError:
		var ev Error
		if err := decodePayload(env, &ev); err != nil {
			return nil, err
		}
		ev.Meta = meta
		return ev, nil
	case TypePlanComplete:
		var ev PlanComplete
		if err := decodePayload(env, &ev); err != nil {
			return nil, err
		}
		ev.Meta = meta
		return ev, nil
	case TypeAgentsSpawned:
		var ev AgentsSpawned
		if err := decodePayload(env, &ev); err != nil {
			return nil, err
		}
		ev.Meta = meta
		return ev, nil
	case TypeAgentsComplete:
		var ev AgentsComplete
		if err := decodePayload(env, &ev); err != nil {
			return nil, err
		}
		ev.Meta = meta
		return ev, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

func decodePayload(env envelope, dst any) error {
	if len(env.Payload) == 0 || bytes.Equal(env.Payload, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Payload, dst); err != nil {
		return fmt.Errorf("%w: %s payload: %v", ErrMalformed, env.Type, err)
	}
	return nil
}

// Encode renders ev back into the wire envelope.
func Encode(ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", ev.Type(), err)
	}
	return json.Marshal(envelope{
		Type:    ev.Type(),
		Payload: payload,
		TraceID: ev.TraceID(),
	})
}
