package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"circuitech-be/internal/dto"
	"circuitech-be/internal/entity"
	"circuitech-be/internal/pkg/logger"
	"circuitech-be/pkg/agent"
	"circuitech-be/pkg/llm"
	"circuitech-be/pkg/parts"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Fakes
// ==========================

type scriptedLLM struct {
	responses []string
	calls     int
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if s.calls >= len(s.responses) {
		return "", errors.New("scriptedLLM: unexpected extra call")
	}
	out := s.responses[s.calls]
	s.calls++
	return out, nil
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, nil)
}

type staticSearch struct{}

func (staticSearch) Search(ctx context.Context, query string) ([]parts.PartCandidate, error) {
	return []parts.PartCandidate{{PartNumber: query, UnitPrice: 1.0}}, nil
}

type memorySessionRepo struct {
	sessions map[uuid.UUID]*entity.DesignSession
	upserts  int
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: map[uuid.UUID]*entity.DesignSession{}}
}

func (m *memorySessionRepo) FindById(ctx context.Context, id uuid.UUID) (*entity.DesignSession, error) {
	return m.sessions[id], nil
}

func (m *memorySessionRepo) Upsert(ctx context.Context, session *entity.DesignSession) error {
	m.upserts++
	m.sessions[session.Id] = session
	return nil
}

type recordingPublisher struct {
	payloads [][]byte
}

func (r *recordingPublisher) Publish(ctx context.Context, payload []byte) error {
	r.payloads = append(r.payloads, payload)
	return nil
}

// ==========================
// Chat Service Tests
// ==========================

func newChatServiceForTest(t *testing.T, llmResponses []string) (IChatService, *memorySessionRepo, *recordingPublisher) {
	repo := newMemorySessionRepo()
	pub := &recordingPublisher{}
	orch := agent.NewOrchestrator(&scriptedLLM{responses: llmResponses}, staticSearch{}, logger.NewTestLogger(t))
	svc := NewChatService(orch, repo, pub, nil, logger.NewTestLogger(t))
	return svc, repo, pub
}

func TestChatService_SendChat_Success(t *testing.T) {
	svc, repo, pub := newChatServiceForTest(t, []string{
		`{"isReadyForBom": true, "reply": "Here is your BOM.", "search_queries": ["part-a"]}`,
		`{"items": [{"partNumber": "part-a", "manufacturer": "ACME", "description": "widget", "quantity": 2, "estimatedCost": 1.0}]}`,
	})
	sessionId := uuid.New()

	res, err := svc.SendChat(context.Background(), sessionId, &dto.ChatRequest{
		Message: "build a widget board",
		History: []dto.ConversationTurnDTO{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}},
	})

	assert.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, sessionId.String(), res.SessionId)
	assert.Equal(t, "Here is your BOM.", res.Reply)
	assert.NotNil(t, res.Bom)
	assert.Equal(t, 2.0, res.Bom.TotalCost)

	// Session was upserted with the extended history.
	stored := repo.sessions[sessionId]
	assert.NotNil(t, stored)
	var history []dto.ConversationTurnDTO
	assert.NoError(t, json.Unmarshal(stored.ChatHistory, &history))
	assert.Len(t, history, 4)
	assert.Equal(t, "build a widget board", history[2].Content)
	assert.Equal(t, "Here is your BOM.", history[3].Content)

	// One audit message for the generated BOM.
	assert.Len(t, pub.payloads, 1)
	var audit dto.PublishAuditMessage
	assert.NoError(t, json.Unmarshal(pub.payloads[0], &audit))
	assert.Equal(t, "BOM_GENERATED", audit.EventType)
	assert.Equal(t, sessionId, audit.SessionId)
}

func TestChatService_SendChat_ClarificationPersistsHistoryOnly(t *testing.T) {
	svc, repo, pub := newChatServiceForTest(t, []string{
		`{"isReadyForBom": false, "reply": "What voltage?", "search_queries": []}`,
	})
	sessionId := uuid.New()

	res, err := svc.SendChat(context.Background(), sessionId, &dto.ChatRequest{Message: "vague idea"})

	assert.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, "What voltage?", res.Reply)

	stored := repo.sessions[sessionId]
	assert.NotNil(t, stored)
	var bom []agent.BomItem
	assert.NoError(t, json.Unmarshal(stored.Bom, &bom))
	assert.Empty(t, bom)

	// No BOM, no audit event.
	assert.Empty(t, pub.payloads)
}

func TestChatService_SendChat_AgentErrorLeavesSessionUntouched(t *testing.T) {
	svc, repo, pub := newChatServiceForTest(t, []string{"total garbage, not json"})
	sessionId := uuid.New()

	res, err := svc.SendChat(context.Background(), sessionId, &dto.ChatRequest{Message: "anything"})

	assert.NoError(t, err)
	assert.Equal(t, "error", res.Status)
	assert.Nil(t, res.Bom)
	assert.Contains(t, res.Reply, "I encountered an issue parsing that request")

	assert.Zero(t, repo.upserts)
	assert.Empty(t, pub.payloads)
}

func TestChatService_GetSessionState(t *testing.T) {
	svc, repo, _ := newChatServiceForTest(t, nil)
	sessionId := uuid.New()

	// Unknown session comes back empty, not as an error.
	state, err := svc.GetSessionState(context.Background(), sessionId)
	assert.NoError(t, err)
	assert.Empty(t, state.History)
	assert.Empty(t, state.Bom)

	repo.sessions[sessionId] = &entity.DesignSession{
		Id:          sessionId,
		ChatHistory: []byte(`[{"role": "user", "content": "hi"}]`),
		Bom:         []byte(`[{"partNumber": "part-a", "description": "widget", "quantity": 1, "estimatedCost": 0.5}]`),
	}

	state, err = svc.GetSessionState(context.Background(), sessionId)
	assert.NoError(t, err)
	assert.Len(t, state.History, 1)
	assert.Len(t, state.Bom, 1)
	assert.Equal(t, "part-a", state.Bom[0].PartNumber)
}
