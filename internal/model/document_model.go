package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Document struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title         string         `gorm:"not null"`
	Content       string         `gorm:"type:text"`
	DocType       string         `gorm:"index;not null"`
	Summary       string         `gorm:"type:text"`
	FeedbackScore int            `gorm:"default:3"` // 1..5, neutral until scored
	Approved      bool           `gorm:"default:false;index"`
	StyleMetadata datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
