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

type stubPinmapService struct {
	pinMap *agent.PinMap
	err    error
}

func (s *stubPinmapService) GeneratePinmap(ctx context.Context, sessionId uuid.UUID, request *dto.PinmapRequest) (*agent.PinMap, error) {
	return s.pinMap, s.err
}

func newPinmapTestApp(svc *stubPinmapService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	limiter := ratelimit.NewLimiter(100, time.Minute)
	NewPinmapController(svc, limiter.Middleware()).RegisterRoutes(api)
	return app
}

func postPinmap(t *testing.T, app *fiber.App, body interface{}) (int, []byte) {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/api/pinmap/v1", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", uuid.NewString())
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	respBody, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, respBody
}

func TestPinmapController_Generate(t *testing.T) {
	svc := &stubPinmapService{pinMap: &agent.PinMap{Connections: []agent.PinConnection{
		{SourcePart: "MCU", SourcePin: "3V3", TargetPart: "SENSOR", TargetPin: "VCC", SignalType: "Power"},
	}}}
	app := newPinmapTestApp(svc)

	status, body := postPinmap(t, app, dto.PinmapRequest{Items: []map[string]interface{}{{"partNumber": "MCU"}}})
	assert.Equal(t, fiber.StatusOK, status)

	var res agent.PinMap
	assert.NoError(t, json.Unmarshal(body, &res))
	assert.Len(t, res.Connections, 1)
}

func TestPinmapController_Generate_EmptyItemsFailValidation(t *testing.T) {
	app := newPinmapTestApp(&stubPinmapService{})

	status, _ := postPinmap(t, app, dto.PinmapRequest{Items: nil})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestPinmapController_Generate_AgentErrorMapped(t *testing.T) {
	app := newPinmapTestApp(&stubPinmapService{
		err: &agent.AgentError{Stage: agent.StagePinmap, Kind: agent.KindCompletionFailed},
	})

	status, body := postPinmap(t, app, dto.PinmapRequest{Items: []map[string]interface{}{{"partNumber": "MCU"}}})
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Contains(t, string(body), agent.StagePinmap)
}
