package service

import (
	"context"
	"encoding/json"
	"testing"

	"circuitech-be/internal/dto"
	"circuitech-be/internal/pkg/logger"
	"circuitech-be/pkg/agent"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPinmapService_GeneratePinmap(t *testing.T) {
	llmFake := &scriptedLLM{responses: []string{`{
		"connections": [
			{"source_part": "MCU", "source_pin": "3V3", "target_part": "SENSOR", "target_pin": "VCC", "signal_type": "Power"}
		]
	}`}}
	pub := &recordingPublisher{}
	svc := NewPinmapService(agent.NewPinmapAgent(llmFake), pub, nil, logger.NewTestLogger(t))
	sessionId := uuid.New()

	pinMap, err := svc.GeneratePinmap(context.Background(), sessionId, &dto.PinmapRequest{
		Items: []map[string]interface{}{{"partNumber": "MCU"}, {"partNumber": "SENSOR"}},
	})

	assert.NoError(t, err)
	assert.Len(t, pinMap.Connections, 1)

	assert.Len(t, pub.payloads, 1)
	var audit dto.PublishAuditMessage
	assert.NoError(t, json.Unmarshal(pub.payloads[0], &audit))
	assert.Equal(t, "PINMAP_GENERATED", audit.EventType)
}

func TestPinmapService_GeneratePinmap_ErrorPropagates(t *testing.T) {
	llmFake := &scriptedLLM{responses: []string{"not json"}}
	pub := &recordingPublisher{}
	svc := NewPinmapService(agent.NewPinmapAgent(llmFake), pub, nil, logger.NewTestLogger(t))

	_, err := svc.GeneratePinmap(context.Background(), uuid.New(), &dto.PinmapRequest{
		Items: []map[string]interface{}{{"partNumber": "MCU"}},
	})

	var agentErr *agent.AgentError
	assert.ErrorAs(t, err, &agentErr)
	assert.Equal(t, agent.StagePinmap, agentErr.Stage)
	assert.Empty(t, pub.payloads)
}
