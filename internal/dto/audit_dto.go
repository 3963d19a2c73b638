package dto

import "github.com/google/uuid"

// PublishAuditMessage is the internal bus payload for agent audit events.
type PublishAuditMessage struct {
	SessionId uuid.UUID              `json:"session_id"`
	EventType string                 `json:"event_type"`
	Payload   map[string]interface{} `json:"payload"`
}
