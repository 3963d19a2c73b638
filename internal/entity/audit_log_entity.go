package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog records one agent event (BOM generated, pinmap generated) for the
// admin trail. Written asynchronously by the consumer service.
type AuditLog struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId uuid.UUID `gorm:"type:uuid;index"`
	EventType string
	Payload   datatypes.JSON
	CreatedAt time.Time
}
