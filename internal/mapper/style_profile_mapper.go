package mapper

import (
	"encoding/json"

	"docgen-be/internal/entity"
	"docgen-be/internal/model"

	"gorm.io/datatypes"
)

type StyleProfileMapper struct{}

func NewStyleProfileMapper() *StyleProfileMapper {
	return &StyleProfileMapper{}
}

type styleProfilePayload struct {
	Tone          string             `json:"tone"`
	ToneAnalysis  map[string]float64 `json:"tone_analysis"`
	Terminology   map[string]float64 `json:"terminology"`
	HeadingStyle  string             `json:"heading_style"`
	DocumentCount int                `json:"document_count"`
	IsDefault     bool               `json:"is_default"`
}

func (m *StyleProfileMapper) ToEntity(r *model.StyleProfileRecord) *entity.StyleProfile {
	if r == nil {
		return nil
	}

	var docTypes []string
	if len(r.DocTypes) > 0 {
		_ = json.Unmarshal(r.DocTypes, &docTypes)
	}

	var payload styleProfilePayload
	if len(r.Profile) > 0 {
		_ = json.Unmarshal(r.Profile, &payload)
	}

	return &entity.StyleProfile{
		Id:               r.Id,
		CacheKey:         r.CacheKey,
		DocTypes:         docTypes,
		MinFeedbackScore: r.MinFeedbackScore,
		Tone:             payload.Tone,
		ToneAnalysis:     payload.ToneAnalysis,
		Terminology:      payload.Terminology,
		HeadingStyle:     payload.HeadingStyle,
		DocumentCount:    payload.DocumentCount,
		IsDefault:        payload.IsDefault,
		CreatedAt:        r.CreatedAt,
	}
}

func (m *StyleProfileMapper) ToModel(p *entity.StyleProfile) *model.StyleProfileRecord {
	if p == nil {
		return nil
	}

	var docTypes datatypes.JSON
	if raw, err := json.Marshal(p.DocTypes); err == nil {
		docTypes = raw
	}

	var profile datatypes.JSON
	if raw, err := json.Marshal(styleProfilePayload{
		Tone:          p.Tone,
		ToneAnalysis:  p.ToneAnalysis,
		Terminology:   p.Terminology,
		HeadingStyle:  p.HeadingStyle,
		DocumentCount: p.DocumentCount,
		IsDefault:     p.IsDefault,
	}); err == nil {
		profile = raw
	}

	return &model.StyleProfileRecord{
		Id:               p.Id,
		CacheKey:         p.CacheKey,
		DocTypes:         docTypes,
		MinFeedbackScore: p.MinFeedbackScore,
		Profile:          profile,
		SampleCount:      p.DocumentCount,
		CreatedAt:        p.CreatedAt,
	}
}
