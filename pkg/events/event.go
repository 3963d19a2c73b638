package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "BOM_GENERATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewBomGeneratedEvent is emitted when a sourcing run produces a complete BOM.
func NewBomGeneratedEvent(sessionId uuid.UUID, itemCount int, totalCost float64) BaseEvent {
	return BaseEvent{
		Type: "BOM_GENERATED",
		Data: map[string]interface{}{
			"session_id": sessionId,
			"item_count": itemCount,
			"total_cost": totalCost,
		},
		OccurredAt: time.Now(),
	}
}

// NewPinmapGeneratedEvent is emitted when a pinmap is produced for a BOM.
func NewPinmapGeneratedEvent(sessionId uuid.UUID, connectionCount int) BaseEvent {
	return BaseEvent{
		Type: "PINMAP_GENERATED",
		Data: map[string]interface{}{
			"session_id":       sessionId,
			"connection_count": connectionCount,
		},
		OccurredAt: time.Now(),
	}
}
