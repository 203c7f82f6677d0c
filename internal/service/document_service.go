// FILE: internal/service/document_service.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"docgen-be/internal/config"
	"docgen-be/internal/dto"
	"docgen-be/internal/pkg/logger"
	"docgen-be/internal/repository/specification"
	"docgen-be/internal/repository/unitofwork"
	"docgen-be/pkg/events"
	pktNats "docgen-be/pkg/nats"
	"docgen-be/pkg/vector"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	List(ctx context.Context, docType string, approvedOnly bool, page, pageSize int) (*dto.ListDocumentsResponse, error)
	Update(ctx context.Context, req *dto.UpdateDocumentRequest) (*dto.ShowDocumentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateFeedback(ctx context.Context, req *dto.UpdateFeedbackRequest) (*dto.UpdateFeedbackResponse, error)
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	index            vector.Index
	eventPublisher   *pktNats.Publisher
	minFeedback      int
	maxFeedback      int
	log              logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	index vector.Index,
	eventPublisher *pktNats.Publisher,
	pipeline config.PipelineConfig,
	log logger.ILogger,
) IDocumentService {
	min, max := feedbackBounds(pipeline.MinFeedbackScore, pipeline.MaxFeedbackScore)
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		index:            index,
		eventPublisher:   eventPublisher,
		minFeedback:      min,
		maxFeedback:      max,
		log:              log,
	}
}

func (s *documentService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	return &dto.ShowDocumentResponse{
		Id:            doc.Id,
		Title:         doc.Title,
		Content:       doc.Content,
		DocType:       doc.DocType,
		Summary:       doc.Summary,
		FeedbackScore: doc.FeedbackScore,
		Approved:      doc.Approved,
		StyleMetadata: doc.StyleMetadata,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}, nil
}

func (s *documentService) List(ctx context.Context, docType string, approvedOnly bool, page, pageSize int) (*dto.ListDocumentsResponse, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	specs := []specification.Specification{}
	if docType != "" {
		specs = append(specs, specification.ByDocType{DocType: docType})
	}
	if approvedOnly {
		specs = append(specs, specification.ApprovedOnly{})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	total, err := uow.DocumentRepository().Count(ctx, specs...)
	if err != nil {
		return nil, err
	}

	pageSpecs := append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: pageSize, Offset: (page - 1) * pageSize},
	)
	docs, err := uow.DocumentRepository().FindAll(ctx, pageSpecs...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ListDocumentsItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, dto.ListDocumentsItem{
			Id:            doc.Id,
			Title:         doc.Title,
			DocType:       doc.DocType,
			FeedbackScore: doc.FeedbackScore,
			Approved:      doc.Approved,
			CreatedAt:     doc.CreatedAt,
			UpdatedAt:     doc.UpdatedAt,
		})
	}

	return &dto.ListDocumentsResponse{
		Documents: items,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
	}, nil
}

// Update replaces document fields in place. A content change invalidates the
// stored chunks, so the document is queued for re-chunking and re-embedding.
func (s *documentService) Update(ctx context.Context, req *dto.UpdateDocumentRequest) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	contentChanged := req.Content != "" && req.Content != doc.Content
	if req.Title != "" {
		doc.Title = req.Title
	}
	if req.DocType != "" {
		doc.DocType = req.DocType
	}
	if contentChanged {
		doc.Content = req.Content
		doc.Summary = extractSummary(req.Content)
		doc.StyleMetadata = BuildStyleMetadata(req.Content)
	}
	now := time.Now().UTC()
	doc.UpdatedAt = &now

	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return nil, err
	}

	if contentChanged {
		payload, err := json.Marshal(dto.PublishEmbedDocumentMessage{DocumentId: doc.Id})
		if err != nil {
			return nil, err
		}
		if err := s.publisherService.Publish(ctx, payload); err != nil {
			return nil, err
		}
	}

	return &dto.ShowDocumentResponse{
		Id:            doc.Id,
		Title:         doc.Title,
		Content:       doc.Content,
		DocType:       doc.DocType,
		Summary:       doc.Summary,
		FeedbackScore: doc.FeedbackScore,
		Approved:      doc.Approved,
		StyleMetadata: doc.StyleMetadata,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}, nil
}

// Delete removes the document and its chunks together so retrieval never sees
// orphaned embeddings.
func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if doc == nil {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *documentService) UpdateFeedback(ctx context.Context, req *dto.UpdateFeedbackRequest) (*dto.UpdateFeedbackResponse, error) {
	// Raw scores are clamped into bounds, never rejected: 8 persists as the
	// maximum, -3 as the minimum.
	score := clampFeedbackScore(req.Score, s.minFeedback, s.maxFeedback)

	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	if err := uow.DocumentRepository().UpdateFeedbackScore(ctx, req.Id, score); err != nil {
		return nil, err
	}

	// The fallback index carries feedback in chunk metadata, so it goes stale
	// unless refreshed here. Refresh is best effort; the DB row is the truth.
	if s.index != nil && !s.index.SupportsNativeFilter() {
		if err := s.refreshIndexFeedback(ctx, uow, doc.Id, doc.Title, doc.DocType, doc.Approved, score); err != nil {
			s.log.Warn("document", "Failed to refresh index feedback metadata", map[string]interface{}{
				"document_id": req.Id.String(),
				"error":       err.Error(),
			})
		}
	}

	// Feedback changes the retrieval ranking weights, so downstream consumers
	// get notified. Delivery failure does not fail the update.
	if s.eventPublisher != nil {
		evt := events.NewFeedbackUpdated(req.Id.String(), score)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("document", "Failed to publish FEEDBACK_UPDATED event", map[string]interface{}{
				"document_id": req.Id.String(),
				"error":       err.Error(),
			})
		}
	}

	return &dto.UpdateFeedbackResponse{Id: req.Id, Score: score}, nil
}

func (s *documentService) refreshIndexFeedback(ctx context.Context, uow unitofwork.UnitOfWork, docId uuid.UUID, title, docType string, approved bool, score int) error {
	chunks, err := uow.DocumentChunkRepository().FindAll(ctx, specification.FilterBy{Field: "document_id", Value: docId})
	if err != nil {
		return err
	}

	vecDocs := make([]vector.Document, 0, len(chunks))
	for _, chunk := range chunks {
		vecDocs = append(vecDocs, vector.Document{
			ID:        vector.ChunkKey(docId.String(), chunk.ChunkIndex),
			Content:   chunk.Content,
			Embedding: chunk.Embedding,
			Metadata: map[string]interface{}{
				vector.MetaDocumentId:    docId.String(),
				vector.MetaDocumentTitle: title,
				vector.MetaDocType:       docType,
				vector.MetaFeedbackScore: score,
				vector.MetaApproved:      approved,
				vector.MetaChunkIndex:    chunk.ChunkIndex,
			},
		})
	}
	if len(vecDocs) == 0 {
		return nil
	}
	return s.index.Upsert(ctx, vecDocs)
}
