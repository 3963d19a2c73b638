package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DesignSession is the persisted state of one design conversation. The id is
// the caller-supplied session UUID; history and BOM are stored as JSON
// documents since their shape is owned by the agent, not the schema.
type DesignSession struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChatHistory datatypes.JSON
	Bom         datatypes.JSON
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
