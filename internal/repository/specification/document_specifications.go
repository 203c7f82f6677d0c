package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByDocType struct {
	DocType string
}

func (s ByDocType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("doc_type = ?", s.DocType)
}

type ByDocTypes struct {
	DocTypes []string
}

func (s ByDocTypes) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("doc_type IN ?", s.DocTypes)
}

type MinFeedbackScore struct {
	Score int
}

func (s MinFeedbackScore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("feedback_score >= ?", s.Score)
}

type ApprovedOnly struct{}

func (s ApprovedOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("approved = ?", true)
}

type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

type ByWorkflowStatus struct {
	Status string
}

func (s ByWorkflowStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type ByCacheKey struct {
	CacheKey string
}

func (s ByCacheKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("cache_key = ?", s.CacheKey)
}
