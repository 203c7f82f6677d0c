package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StyleProfileRecord persists computed profiles for audit. The hot path reads
// from the in-process cache; rows here are written best-effort after compute.
type StyleProfileRecord struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CacheKey         string         `gorm:"index;not null"`
	DocTypes         datatypes.JSON `gorm:"type:jsonb"`
	MinFeedbackScore int            `gorm:"default:1"`
	Profile          datatypes.JSON `gorm:"type:jsonb"`
	SampleCount      int            `gorm:"default:0"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
}

func (StyleProfileRecord) TableName() string {
	return "style_profiles"
}
