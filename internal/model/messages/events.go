package messages

import (
	"time"

	"github.com/agrimesh/fieldops/internal/model/entities"
)

// EventType discriminates broadcast events for subscribers.
type EventType string

const (
	EventReading          EventType = "reading"
	EventCommandSubmitted EventType = "command_submitted"
	EventCommandCompleted EventType = "command_completed"
	EventCommandFailed    EventType = "command_failed"
)

// Event is the envelope fanned out by the broadcast hub. Delivery is
// best-effort and ephemeral; there is no replay for late subscribers.
type Event struct {
	Type      EventType `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// CommandResultEvent is published after a command reaches a terminal state,
// strictly after the status update is durable.
type CommandResultEvent struct {
	CommandID   string                 `json:"command_id"`
	CommandType string                 `json:"command_type"`
	Zone        string                 `json:"zone"`
	Status      entities.CommandStatus `json:"status"`
	Result      string                 `json:"result"`
	RoverID     string                 `json:"rover_id,omitempty"`
	ExecutedAt  time.Time              `json:"executed_at"`
}

// NewReadingEvent wraps a stored reading for fan-out.
func NewReadingEvent(r entities.Reading) Event {
	return Event{Type: EventReading, Payload: r, Timestamp: time.Now().UTC()}
}

// NewCommandSubmittedEvent wraps a freshly admitted command for fan-out.
func NewCommandSubmittedEvent(c entities.Command) Event {
	return Event{Type: EventCommandSubmitted, Payload: c, Timestamp: time.Now().UTC()}
}

// NewCommandResultEvent wraps a terminal transition for fan-out. The event
// type follows the terminal status.
func NewCommandResultEvent(res CommandResultEvent) Event {
	t := EventCommandCompleted
	if res.Status == entities.StatusFailed {
		t = EventCommandFailed
	}
	return Event{Type: t, Payload: res, Timestamp: time.Now().UTC()}
}
