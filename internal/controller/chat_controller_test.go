package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"circuitech-be/internal/dto"
	"circuitech-be/internal/pkg/ratelimit"
	"circuitech-be/internal/pkg/serverutils"
	"circuitech-be/pkg/agent"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubChatService struct {
	response *dto.ChatResponse
	err      error
}

func (s *stubChatService) SendChat(ctx context.Context, sessionId uuid.UUID, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	res := *s.response
	res.SessionId = sessionId.String()
	return &res, nil
}

func (s *stubChatService) GetSessionState(ctx context.Context, sessionId uuid.UUID) (*dto.SessionStateResponse, error) {
	return &dto.SessionStateResponse{SessionId: sessionId.String()}, nil
}

func newChatTestApp(svc *stubChatService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	limiter := ratelimit.NewLimiter(100, time.Minute)
	NewChatController(svc, limiter.Middleware()).RegisterRoutes(api)
	return app
}

func postChat(t *testing.T, app *fiber.App, sessionID string, body interface{}) (int, []byte) {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/api/chat/v1", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	respBody, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, respBody
}

func TestChatController_Chat(t *testing.T) {
	svc := &stubChatService{response: &dto.ChatResponse{Reply: "hello", Status: "success"}}
	app := newChatTestApp(svc)

	status, body := postChat(t, app, uuid.NewString(), dto.ChatRequest{Message: "hi"})
	assert.Equal(t, fiber.StatusOK, status)

	var res dto.ChatResponse
	assert.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, "hello", res.Reply)
	assert.Equal(t, "success", res.Status)
}

func TestChatController_Chat_MissingSessionHeader(t *testing.T) {
	app := newChatTestApp(&stubChatService{response: &dto.ChatResponse{}})

	status, _ := postChat(t, app, "", dto.ChatRequest{Message: "hi"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestChatController_Chat_EmptyMessageFailsValidation(t *testing.T) {
	app := newChatTestApp(&stubChatService{response: &dto.ChatResponse{}})

	status, _ := postChat(t, app, uuid.NewString(), dto.ChatRequest{Message: ""})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestChatController_GetSession(t *testing.T) {
	app := newChatTestApp(&stubChatService{response: &dto.ChatResponse{}})
	sessionID := uuid.NewString()

	req := httptest.NewRequest("GET", "/api/chat/v1/session", nil)
	req.Header.Set("X-Session-ID", sessionID)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var res dto.SessionStateResponse
	assert.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, sessionID, res.SessionId)
}

func TestErrorHandler_MapsAgentErrorKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        *agent.AgentError
		wantStatus int
	}{
		{"malformed output", &agent.AgentError{Stage: agent.StageExtraction, Kind: agent.KindMalformedModelOutput}, fiber.StatusUnprocessableEntity},
		{"validation", &agent.AgentError{Stage: agent.StageSynthesis, Kind: agent.KindValidationError}, fiber.StatusUnprocessableEntity},
		{"provider", &agent.AgentError{Stage: agent.StageSourcing, Kind: agent.KindProviderError}, fiber.StatusBadGateway},
		{"auth", &agent.AgentError{Stage: agent.StageSourcing, Kind: agent.KindAuthError}, fiber.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newChatTestApp(&stubChatService{err: tt.err})
			status, body := postChat(t, app, uuid.NewString(), dto.ChatRequest{Message: "hi"})
			assert.Equal(t, tt.wantStatus, status)
			assert.Contains(t, string(body), tt.err.Stage)
		})
	}
}
