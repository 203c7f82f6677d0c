package mapper

import (
	"encoding/json"
	"time"

	"docgen-be/internal/entity"
	"docgen-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var deletedAt *time.Time
	if d.DeletedAt.Valid {
		t := d.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	var styleMetadata map[string]interface{}
	if len(d.StyleMetadata) > 0 {
		// Corrupt metadata degrades to nil rather than failing the read
		_ = json.Unmarshal(d.StyleMetadata, &styleMetadata)
	}

	return &entity.Document{
		Id:            d.Id,
		Title:         d.Title,
		Content:       d.Content,
		DocType:       d.DocType,
		Summary:       d.Summary,
		FeedbackScore: d.FeedbackScore,
		Approved:      d.Approved,
		StyleMetadata: styleMetadata,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
		IsDeleted:     d.DeletedAt.Valid,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if d.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *d.DeletedAt, Valid: true}
	} else if d.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	var styleMetadata datatypes.JSON
	if d.StyleMetadata != nil {
		if raw, err := json.Marshal(d.StyleMetadata); err == nil {
			styleMetadata = raw
		}
	}

	return &model.Document{
		Id:            d.Id,
		Title:         d.Title,
		Content:       d.Content,
		DocType:       d.DocType,
		Summary:       d.Summary,
		FeedbackScore: d.FeedbackScore,
		Approved:      d.Approved,
		StyleMetadata: styleMetadata,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
