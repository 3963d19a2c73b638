package dto

import (
	"circuitech-be/pkg/agent"
)

// ConversationTurnDTO mirrors one stored chat turn.
type ConversationTurnDTO struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message string                 `json:"message" validate:"required"`
	History []ConversationTurnDTO  `json:"history" validate:"dive"`
	Context map[string]interface{} `json:"context,omitempty"`
}

type ChatResponse struct {
	SessionId string          `json:"session_id"`
	Reply     string          `json:"reply"`
	Bom       *agent.Response `json:"bom,omitempty"`
	Status    string          `json:"status"`
}

type SessionStateResponse struct {
	SessionId string                `json:"session_id"`
	History   []ConversationTurnDTO `json:"history"`
	Bom       []agent.BomItem       `json:"bom"`
}
