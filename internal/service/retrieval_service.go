// FILE: internal/service/retrieval_service.go
package service

import (
	"context"

	"docgen-be/internal/dto"
	"docgen-be/pkg/docgen/retrieval"
	"docgen-be/pkg/docgen/styleprofile"
)

type IRetrievalService interface {
	Search(ctx context.Context, req *dto.SearchChunksRequest) (*dto.SearchChunksResponse, error)
	BuildStyleProfile(ctx context.Context, req *dto.BuildStyleProfileRequest) (*dto.StyleProfileResponse, error)
}

type retrievalService struct {
	ranker       *retrieval.Ranker
	styleBuilder *styleprofile.Builder
}

func NewRetrievalService(ranker *retrieval.Ranker, styleBuilder *styleprofile.Builder) IRetrievalService {
	return &retrievalService{
		ranker:       ranker,
		styleBuilder: styleBuilder,
	}
}

func (s *retrievalService) Search(ctx context.Context, req *dto.SearchChunksRequest) (*dto.SearchChunksResponse, error) {
	result := s.ranker.Retrieve(ctx, req.Query, req.DocType, req.MinFeedbackScore, req.TopK)

	items := make([]dto.SearchChunkItem, 0, len(result.Chunks))
	for _, chunk := range result.Chunks {
		item := dto.SearchChunkItem{
			Content: chunk.Content,
			Score:   chunk.Score,
		}
		if title, ok := chunk.Metadata["document_title"].(string); ok {
			item.DocumentTitle = title
		}
		if docType, ok := chunk.DocType(); ok {
			item.DocType = docType
		}
		if score, ok := chunk.FeedbackScore(); ok {
			item.FeedbackScore = score
		}
		items = append(items, item)
	}

	return &dto.SearchChunksResponse{
		Status:       string(result.Status),
		Chunks:       items,
		TotalResults: result.TotalResults,
	}, nil
}

func (s *retrievalService) BuildStyleProfile(ctx context.Context, req *dto.BuildStyleProfileRequest) (*dto.StyleProfileResponse, error) {
	result := s.styleBuilder.Build(ctx, req.DocTypes, req.MinFeedbackScore)

	profile := result.Profile
	return &dto.StyleProfileResponse{
		Status:        string(result.Status),
		Tone:          profile.Tone,
		ToneAnalysis:  profile.ToneAnalysis,
		Terminology:   profile.Terminology,
		HeadingStyle:  profile.HeadingStyle,
		DocumentCount: result.DocumentCount,
		IsDefault:     profile.IsDefault,
		CacheHit:      result.CacheHit,
	}, nil
}
