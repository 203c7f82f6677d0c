package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title         string
	Content       string
	DocType       string
	Summary       string
	FeedbackScore int
	Approved      bool
	StyleMetadata map[string]interface{}
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
