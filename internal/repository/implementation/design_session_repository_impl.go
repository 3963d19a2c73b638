package implementation

import (
	"context"
	"errors"
	"time"

	"circuitech-be/internal/entity"
	"circuitech-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DesignSessionRepositoryImpl struct {
	db *gorm.DB
}

func NewDesignSessionRepository(db *gorm.DB) contract.DesignSessionRepository {
	return &DesignSessionRepositoryImpl{db: db}
}

func (r *DesignSessionRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.DesignSession, error) {
	var session entity.DesignSession
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *DesignSessionRepositoryImpl) Upsert(ctx context.Context, session *entity.DesignSession) error {
	now := time.Now()
	session.UpdatedAt = &now
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"chat_history", "bom", "updated_at"}),
	}).Create(session).Error
}
