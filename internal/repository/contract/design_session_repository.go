package contract

import (
	"context"

	"circuitech-be/internal/entity"

	"github.com/google/uuid"
)

type DesignSessionRepository interface {
	FindById(ctx context.Context, id uuid.UUID) (*entity.DesignSession, error)
	Upsert(ctx context.Context, session *entity.DesignSession) error
}

type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	FindBySessionId(ctx context.Context, sessionId uuid.UUID) ([]*entity.AuditLog, error)
}
