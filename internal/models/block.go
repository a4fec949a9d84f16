package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReasonAutoBlock marks blocks created by the repeated-rejection rule
// rather than an explicit user action.
const ReasonAutoBlock = "auto_block_after_2_rejections"

// Block hides the blocked user from the blocker's discovery and room
// listings. Blocks are one-directional rows; visibility guards on the
// chat path check both directions. Rows are only ever created.
type Block struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BlockerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_blocks_pair" json:"blocker_id"`
	BlockedID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_blocks_pair" json:"blocked_id"`
	Reason    string    `gorm:"size:100" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func (Block) TableName() string {
	return "blocks"
}

func (b *Block) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
