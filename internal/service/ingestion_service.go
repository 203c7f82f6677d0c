// FILE: internal/service/ingestion_service.go
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"docgen-be/internal/config"
	"docgen-be/internal/dto"
	"docgen-be/internal/entity"
	"docgen-be/internal/pkg/logger"
	"docgen-be/internal/pkg/serverutils"
	"docgen-be/internal/repository/unitofwork"
	"docgen-be/pkg/docgen/workflow"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

// doc type detection keywords, checked against filename then content
var docTypePatterns = []struct {
	docType  string
	keywords []string
}{
	{"SRS", []string{"srs", "software requirements", "requirements specification"}},
	{"SOW", []string{"sow", "statement of work", "scope of work"}},
	{"Proposal", []string{"proposal", "budget", "approach"}},
	{"Technical", []string{"technical", "architecture", "implementation"}},
	{"Business", []string{"business", "executive summary", "market analysis"}},
}

const defaultDocType = "General"

type IIngestionService interface {
	IngestContent(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error)
	IngestFile(ctx context.Context, filename string, data []byte, docType string, approved bool, feedbackScore int) (*dto.IngestDocumentResponse, error)

	// Ingest satisfies the workflow finalizer contract.
	Ingest(ctx context.Context, req workflow.IngestRequest) (uuid.UUID, error)
}

type ingestionService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	minFeedback      int
	maxFeedback      int
	log              logger.ILogger
}

func NewIngestionService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	pipeline config.PipelineConfig,
	log logger.ILogger,
) IIngestionService {
	min, max := feedbackBounds(pipeline.MinFeedbackScore, pipeline.MaxFeedbackScore)
	return &ingestionService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		minFeedback:      min,
		maxFeedback:      max,
		log:              log,
	}
}

func (s *ingestionService) IngestContent(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, serverutils.NewBadRequestError("document content is empty")
	}

	docType := req.DocType
	detected := false
	if docType == "" {
		docType = DetectDocType(req.Title, content)
		detected = true
	}

	title := req.Title
	if title == "" {
		title = firstHeading(content)
	}

	// Zero means unset and gets the neutral default; anything else is clamped
	// into bounds rather than rejected.
	feedbackScore := req.FeedbackScore
	if feedbackScore == 0 {
		feedbackScore = 3
	} else {
		feedbackScore = clampFeedbackScore(feedbackScore, s.minFeedback, s.maxFeedback)
	}

	doc := &entity.Document{
		Id:            uuid.New(),
		Title:         title,
		Content:       content,
		DocType:       docType,
		Summary:       extractSummary(content),
		FeedbackScore: feedbackScore,
		Approved:      req.Approved,
		StyleMetadata: BuildStyleMetadata(content),
		CreatedAt:     time.Now().UTC(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.queueEmbedding(ctx, doc.Id); err != nil {
		return nil, err
	}

	return &dto.IngestDocumentResponse{
		Id:       doc.Id,
		DocType:  docType,
		Detected: detected,
	}, nil
}

func (s *ingestionService) IngestFile(ctx context.Context, filename string, data []byte, docType string, approved bool, feedbackScore int) (*dto.IngestDocumentResponse, error) {
	content, err := ExtractText(filename, data)
	if err != nil {
		return nil, serverutils.NewBadRequestError(fmt.Sprintf("could not extract text from %s: %v", filename, err))
	}

	if docType == "" {
		docType = DetectDocType(filename, content)
	}

	return s.IngestContent(ctx, &dto.IngestDocumentRequest{
		Title:         strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)),
		Content:       content,
		DocType:       docType,
		Approved:      approved,
		FeedbackScore: feedbackScore,
	})
}

func (s *ingestionService) Ingest(ctx context.Context, req workflow.IngestRequest) (uuid.UUID, error) {
	res, err := s.IngestContent(ctx, &dto.IngestDocumentRequest{
		Title:         strings.TrimSuffix(req.Filename, filepath.Ext(req.Filename)),
		Content:       req.Content,
		DocType:       req.DocType,
		Approved:      req.Approved,
		FeedbackScore: req.FeedbackScore,
	})
	if err != nil {
		return uuid.Nil, err
	}
	return res.Id, nil
}

func (s *ingestionService) queueEmbedding(ctx context.Context, documentId uuid.UUID) error {
	payload := dto.PublishEmbedDocumentMessage{DocumentId: documentId}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, payloadJson)
}

// ExtractText pulls plain text out of an uploaded file. PDF pages go through
// the pdf reader; anything else must already be valid UTF-8 text.
func ExtractText(filename string, data []byte) (string, error) {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return extractPdfText(data)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("file is not valid UTF-8 text")
	}
	return string(data), nil
}

func extractPdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	content := strings.TrimSpace(sb.String())
	if content == "" {
		return "", io.ErrUnexpectedEOF
	}
	return content, nil
}

// DetectDocType scans the filename first, then the content, for type keywords.
// The filename wins because uploads are usually named after their template.
func DetectDocType(filename, content string) string {
	lowerName := strings.ToLower(filename)
	for _, pattern := range docTypePatterns {
		for _, kw := range pattern.keywords {
			if strings.Contains(lowerName, kw) {
				return pattern.docType
			}
		}
	}

	lowerContent := strings.ToLower(content)
	bestType := defaultDocType
	bestHits := 0
	for _, pattern := range docTypePatterns {
		hits := 0
		for _, kw := range pattern.keywords {
			hits += strings.Count(lowerContent, kw)
		}
		if hits > bestHits {
			bestHits = hits
			bestType = pattern.docType
		}
	}
	return bestType
}

// BuildStyleMetadata captures cheap structural stats at ingest time so the
// style profiler does not have to re-derive them per request.
func BuildStyleMetadata(content string) map[string]interface{} {
	lines := strings.Split(content, "\n")
	headings := 0
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			headings++
		}
	}
	return map[string]interface{}{
		"word_count":    len(strings.Fields(content)),
		"line_count":    len(lines),
		"heading_count": headings,
	}
}

func firstHeading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
	}
	return "Untitled Document"
}

// extractSummary takes the first non-heading paragraph, capped at 280 runes.
func extractSummary(content string) string {
	for _, block := range strings.Split(content, "\n\n") {
		trimmed := strings.TrimSpace(block)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		flattened := strings.Join(strings.Fields(trimmed), " ")
		runes := []rune(flattened)
		if len(runes) > 280 {
			return string(runes[:280])
		}
		return flattened
	}
	return ""
}
