package implementation

import (
	"context"

	"circuitech-be/internal/entity"
	"circuitech-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditLogRepositoryImpl struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) contract.AuditLogRepository {
	return &AuditLogRepositoryImpl{db: db}
}

func (r *AuditLogRepositoryImpl) Create(ctx context.Context, log *entity.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *AuditLogRepositoryImpl) FindBySessionId(ctx context.Context, sessionId uuid.UUID) ([]*entity.AuditLog, error) {
	var logs []*entity.AuditLog
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
