// FILE: internal/service/review_service.go
package service

import (
	"context"
	"strings"

	"docgen-be/internal/dto"
	"docgen-be/pkg/docgen/compliance"
	"docgen-be/pkg/docgen/review"
	"docgen-be/pkg/docgen/styleprofile"
)

type IReviewService interface {
	Review(ctx context.Context, req *dto.ReviewDocumentRequest) (*dto.ReviewDocumentResponse, error)
	CheckCompliance(ctx context.Context, req *dto.ComplianceCheckRequest) (*dto.ComplianceCheckResponse, error)
}

type reviewService struct {
	editor       *review.Editor
	checker      *compliance.Checker
	styleBuilder *styleprofile.Builder
}

func NewReviewService(editor *review.Editor, checker *compliance.Checker, styleBuilder *styleprofile.Builder) IReviewService {
	return &reviewService{
		editor:       editor,
		checker:      checker,
		styleBuilder: styleBuilder,
	}
}

// Review runs a standalone editing pass against an already-written document,
// using the learned style profile for its type.
func (s *reviewService) Review(ctx context.Context, req *dto.ReviewDocumentRequest) (*dto.ReviewDocumentResponse, error) {
	reviewType := review.ReviewType(req.ReviewType)
	if reviewType == "" {
		reviewType = review.ReviewBoth
	}

	profileResult := s.styleBuilder.Build(ctx, []string{req.DocType}, 3)

	result := s.editor.Review(ctx, req.Content, req.DocType, profileResult.Profile, req.Feedback, reviewType)

	return &dto.ReviewDocumentResponse{
		Status:          string(result.Status),
		ImprovedContent: result.ImprovedContent,
		ChangesMade:     result.ChangesMade,
		DiffSummary:     result.DiffDetails.Summary,
		DiffLines:       result.DiffDetails.UnifiedDiff,
		WordCountBefore: result.OriginalWordCount,
		WordCountAfter:  result.FinalWordCount,
	}, nil
}

func (s *reviewService) CheckCompliance(ctx context.Context, req *dto.ComplianceCheckRequest) (*dto.ComplianceCheckResponse, error) {
	result := s.checker.Check(req.DocType, req.Content)

	return &dto.ComplianceCheckResponse{
		Compliant:        result.Compliant,
		RequiredSections: compliance.RequiredSections(req.DocType),
		MissingSections:  result.MissingSections,
		Issues:           result.Issues,
		WordCount:        len(strings.Fields(req.Content)),
	}, nil
}
