package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"circuitech-be/internal/dto"
	"circuitech-be/internal/entity"
	"circuitech-be/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	auditLogRepo contract.AuditLogRepository
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	auditLogRepo contract.AuditLogRepository,
) IConsumerService {
	return &consumerService{
		pubSub:       pubSub,
		topicName:    topicName,
		auditLogRepo: auditLogRepo,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishAuditMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal audit message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	detail, err := json.Marshal(payload.Payload)
	if err != nil {
		log.Printf("[ERROR] Failed to marshal audit payload for session %s: %v", payload.SessionId, err)
		msg.Ack()
		return
	}

	record := entity.AuditLog{
		Id:        uuid.New(),
		SessionId: payload.SessionId,
		EventType: payload.EventType,
		Payload:   datatypes.JSON(detail),
		CreatedAt: time.Now(),
	}

	if err := cs.auditLogRepo.Create(ctx, &record); err != nil {
		log.Printf("[ERROR] Failed to persist audit log for session %s: %v", payload.SessionId, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	msg.Ack()
}
