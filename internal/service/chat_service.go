package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"circuitech-be/internal/constant"
	"circuitech-be/internal/dto"
	"circuitech-be/internal/entity"
	"circuitech-be/internal/pkg/logger"
	"circuitech-be/internal/repository/contract"
	"circuitech-be/pkg/agent"
	"circuitech-be/pkg/events"
	"circuitech-be/pkg/llm"
	"circuitech-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// IChatService drives one design conversation turn and exposes the stored
// session state.
type IChatService interface {
	SendChat(ctx context.Context, sessionId uuid.UUID, request *dto.ChatRequest) (*dto.ChatResponse, error)
	GetSessionState(ctx context.Context, sessionId uuid.UUID) (*dto.SessionStateResponse, error)
}

type chatService struct {
	orchestrator     *agent.Orchestrator
	sessionRepo      contract.DesignSessionRepository
	publisherService IPublisherService
	eventPublisher   *nats.Publisher
	logger           logger.ILogger
}

func NewChatService(
	orchestrator *agent.Orchestrator,
	sessionRepo contract.DesignSessionRepository,
	publisherService IPublisherService,
	eventPublisher *nats.Publisher,
	sysLogger logger.ILogger,
) IChatService {
	return &chatService{
		orchestrator:     orchestrator,
		sessionRepo:      sessionRepo,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           sysLogger,
	}
}

// SendChat runs the agent over the caller-supplied history and message. On
// success the session is upserted with the extended history and, when a BOM
// was produced, the fresh item list. Agent failures yield a clarification
// reply with status "error" and leave the stored session untouched.
func (cs *chatService) SendChat(ctx context.Context, sessionId uuid.UUID, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	history := toAgentHistory(request.History)

	result, err := cs.orchestrator.Run(ctx, request.Message, history, request.Context)
	if err != nil {
		var agentErr *agent.AgentError
		if errors.As(err, &agentErr) {
			cs.logger.Warn("chat_service", "agent run failed", map[string]interface{}{
				"session_id": sessionId.String(),
				"stage":      string(agentErr.Stage),
				"kind":       string(agentErr.Kind),
			})
			return &dto.ChatResponse{
				SessionId: sessionId.String(),
				Reply:     fmt.Sprintf("I encountered an issue parsing that request. Could you clarify what you need? (Error: %s)", agentErr.Error()),
				Bom:       nil,
				Status:    "error",
			}, nil
		}
		return nil, err
	}

	newHistory := append(append([]dto.ConversationTurnDTO{}, request.History...),
		dto.ConversationTurnDTO{Role: constant.ChatMessageRoleUser, Content: request.Message},
		dto.ConversationTurnDTO{Role: constant.ChatMessageRoleAssistant, Content: result.Reply},
	)

	if err := cs.persistSession(ctx, sessionId, newHistory, result); err != nil {
		return nil, err
	}

	if result.IsReadyForBom {
		cs.publishBomGenerated(ctx, sessionId, result)
	}

	return &dto.ChatResponse{
		SessionId: sessionId.String(),
		Reply:     result.Reply,
		Bom:       result,
		Status:    "success",
	}, nil
}

func (cs *chatService) GetSessionState(ctx context.Context, sessionId uuid.UUID) (*dto.SessionStateResponse, error) {
	session, err := cs.sessionRepo.FindById(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	response := &dto.SessionStateResponse{
		SessionId: sessionId.String(),
		History:   []dto.ConversationTurnDTO{},
		Bom:       []agent.BomItem{},
	}
	if session == nil {
		return response, nil
	}

	if len(session.ChatHistory) > 0 {
		if err := json.Unmarshal(session.ChatHistory, &response.History); err != nil {
			return nil, fmt.Errorf("corrupt chat history for session %s: %w", sessionId, err)
		}
	}
	if len(session.Bom) > 0 {
		if err := json.Unmarshal(session.Bom, &response.Bom); err != nil {
			return nil, fmt.Errorf("corrupt bom for session %s: %w", sessionId, err)
		}
	}

	return response, nil
}

func (cs *chatService) persistSession(ctx context.Context, sessionId uuid.UUID, history []dto.ConversationTurnDTO, result *agent.Response) error {
	historyJson, err := json.Marshal(history)
	if err != nil {
		return err
	}

	items := result.Items
	if items == nil {
		items = []agent.BomItem{}
	}
	bomJson, err := json.Marshal(items)
	if err != nil {
		return err
	}

	session := &entity.DesignSession{
		Id:          sessionId,
		ChatHistory: datatypes.JSON(historyJson),
		Bom:         datatypes.JSON(bomJson),
		CreatedAt:   time.Now(),
	}
	return cs.sessionRepo.Upsert(ctx, session)
}

func (cs *chatService) publishBomGenerated(ctx context.Context, sessionId uuid.UUID, result *agent.Response) {
	msgPayload := dto.PublishAuditMessage{
		SessionId: sessionId,
		EventType: "BOM_GENERATED",
		Payload: map[string]interface{}{
			"item_count": len(result.Items),
			"total_cost": result.TotalCost,
		},
	}
	msgJson, err := json.Marshal(msgPayload)
	if err == nil {
		if err := cs.publisherService.Publish(ctx, msgJson); err != nil {
			cs.logger.Warn("chat_service", "failed to publish audit message", map[string]interface{}{
				"session_id": sessionId.String(),
				"error":      err.Error(),
			})
		}
	}

	// External bus is auxiliary; never fail the request over it.
	if cs.eventPublisher != nil {
		evt := events.NewBomGeneratedEvent(sessionId, len(result.Items), result.TotalCost)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.logger.Warn("chat_service", "failed to publish BOM_GENERATED event", map[string]interface{}{
				"session_id": sessionId.String(),
				"error":      err.Error(),
			})
		}
	}
}

func toAgentHistory(turns []dto.ConversationTurnDTO) []llm.Message {
	history := make([]llm.Message, 0, len(turns))
	for _, turn := range turns {
		history = append(history, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	return history
}
