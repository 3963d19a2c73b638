package service

import (
	"context"
	"encoding/json"

	"circuitech-be/internal/dto"
	"circuitech-be/internal/pkg/logger"
	"circuitech-be/pkg/agent"
	"circuitech-be/pkg/events"
	"circuitech-be/pkg/nats"

	"github.com/google/uuid"
)

type IPinmapService interface {
	GeneratePinmap(ctx context.Context, sessionId uuid.UUID, request *dto.PinmapRequest) (*agent.PinMap, error)
}

type pinmapService struct {
	pinmapAgent      *agent.PinmapAgent
	publisherService IPublisherService
	eventPublisher   *nats.Publisher
	logger           logger.ILogger
}

func NewPinmapService(
	pinmapAgent *agent.PinmapAgent,
	publisherService IPublisherService,
	eventPublisher *nats.Publisher,
	sysLogger logger.ILogger,
) IPinmapService {
	return &pinmapService{
		pinmapAgent:      pinmapAgent,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           sysLogger,
	}
}

func (ps *pinmapService) GeneratePinmap(ctx context.Context, sessionId uuid.UUID, request *dto.PinmapRequest) (*agent.PinMap, error) {
	pinMap, err := ps.pinmapAgent.Run(ctx, request.Items)
	if err != nil {
		ps.logger.Warn("pinmap_service", "pinmap generation failed", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
		return nil, err
	}

	msgPayload := dto.PublishAuditMessage{
		SessionId: sessionId,
		EventType: "PINMAP_GENERATED",
		Payload: map[string]interface{}{
			"connection_count": len(pinMap.Connections),
		},
	}
	if msgJson, err := json.Marshal(msgPayload); err == nil {
		if err := ps.publisherService.Publish(ctx, msgJson); err != nil {
			ps.logger.Warn("pinmap_service", "failed to publish audit message", map[string]interface{}{
				"session_id": sessionId.String(),
				"error":      err.Error(),
			})
		}
	}

	if ps.eventPublisher != nil {
		evt := events.NewPinmapGeneratedEvent(sessionId, len(pinMap.Connections))
		if err := ps.eventPublisher.Publish(ctx, evt); err != nil {
			ps.logger.Warn("pinmap_service", "failed to publish PINMAP_GENERATED event", map[string]interface{}{
				"session_id": sessionId.String(),
				"error":      err.Error(),
			})
		}
	}

	return pinMap, nil
}
