// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"docgen-be/internal/config"
	"docgen-be/internal/dto"
	"docgen-be/internal/entity"
	"docgen-be/internal/pkg/logger"
	"docgen-be/internal/repository/specification"
	"docgen-be/internal/repository/unitofwork"
	"docgen-be/pkg/embedding"
	"docgen-be/pkg/events"
	pktNats "docgen-be/pkg/nats"
	"docgen-be/pkg/utils"
	"docgen-be/pkg/vector"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService is the embedding worker. It picks up queued document ids,
// chunks the content, embeds each chunk, and replaces the stored chunk set in
// one transaction. The fallback index is kept in sync when it cannot read the
// database itself.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	index             vector.Index
	eventPublisher    *pktNats.Publisher
	chunkSize         int
	chunkOverlap      int
	log               logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	index vector.Index,
	eventPublisher *pktNats.Publisher,
	pipeline config.PipelineConfig,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		index:             index,
		eventPublisher:    eventPublisher,
		chunkSize:         pipeline.ChunkSize,
		chunkOverlap:      pipeline.ChunkOverlap,
		log:               log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("consumer", "Failed to unmarshal embed message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed payloads would retry forever
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		cs.log.Error("consumer", "Failed to load document", map[string]interface{}{
			"document_id": payload.DocumentId.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}
	if doc == nil {
		// deleted between enqueue and processing
		msg.Ack()
		return
	}

	chunks := utils.SplitText(doc.Content, cs.chunkSize, cs.chunkOverlap)
	cs.log.Info("consumer", "Embedding document chunks", map[string]interface{}{
		"document_id": doc.Id.String(),
		"chunks":      len(chunks),
	})

	newChunks := make([]*entity.DocumentChunk, 0, len(chunks))
	indexDocs := make([]vector.Document, 0, len(chunks))

	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			cs.log.Error("consumer", "Embedding generation failed", map[string]interface{}{
				"document_id": doc.Id.String(),
				"chunk":       i,
				"error":       err.Error(),
			})
			msg.Nack()
			return
		}

		newChunks = append(newChunks, &entity.DocumentChunk{
			Id:         uuid.New(),
			DocumentId: doc.Id,
			ChunkIndex: i,
			Content:    chunk,
			Embedding:  res.Embedding.Values,
			CreatedAt:  time.Now().UTC(),
		})
		indexDocs = append(indexDocs, vector.Document{
			ID:        vector.ChunkKey(doc.Id.String(), i),
			Content:   chunk,
			Embedding: res.Embedding.Values,
			Metadata: map[string]interface{}{
				vector.MetaDocumentId:    doc.Id.String(),
				vector.MetaDocumentTitle: doc.Title,
				vector.MetaDocType:       doc.DocType,
				vector.MetaFeedbackScore: doc.FeedbackScore,
				vector.MetaApproved:      doc.Approved,
				vector.MetaChunkIndex:    i,
			},
		})
	}

	if err := uow.Begin(ctx); err != nil {
		cs.log.Error("consumer", "Failed to begin transaction", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		cs.log.Error("consumer", "Failed to delete stale chunks", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}

	if len(newChunks) > 0 {
		if err := uow.DocumentChunkRepository().CreateBulk(ctx, newChunks); err != nil {
			cs.log.Error("consumer", "Failed to store chunks", map[string]interface{}{"error": err.Error()})
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		cs.log.Error("consumer", "Failed to commit chunk replacement", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}

	// The SQL-backed index reads the rows just committed; the in-memory
	// fallback needs an explicit upsert.
	if cs.index != nil && !cs.index.SupportsNativeFilter() {
		if err := cs.index.Upsert(ctx, indexDocs); err != nil {
			cs.log.Warn("consumer", "Fallback index upsert failed", map[string]interface{}{"error": err.Error()})
		}
	}

	cs.publishIngested(ctx, doc, len(newChunks))

	cs.log.Info("consumer", "Document embedded", map[string]interface{}{
		"document_id": doc.Id.String(),
		"chunks":      len(newChunks),
	})
	msg.Ack()
}

func (cs *consumerService) publishIngested(ctx context.Context, doc *entity.Document, chunkCount int) {
	if cs.eventPublisher == nil {
		return
	}
	evt := events.NewDocumentIngested(doc.Id.String(), doc.DocType, chunkCount)
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		cs.log.Warn("consumer", "Failed to publish DOCUMENT_INGESTED event", map[string]interface{}{
			"document_id": doc.Id.String(),
			"error":       err.Error(),
		})
	}
}
