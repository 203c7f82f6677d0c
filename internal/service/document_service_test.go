// FILE: internal/service/document_service_test.go
package service

import (
	"context"
	"testing"

	"docgen-be/internal/config"
	"docgen-be/internal/dto"
	"docgen-be/internal/entity"
	"docgen-be/internal/pkg/logger"
	"docgen-be/internal/repository/contract"
	"docgen-be/internal/repository/specification"
	"docgen-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type fakeDocumentRepo struct {
	doc          *entity.Document
	created      []*entity.Document
	updatedId    uuid.UUID
	updatedScore int
}

func (r *fakeDocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	r.created = append(r.created, doc)
	return nil
}
func (r *fakeDocumentRepo) Update(ctx context.Context, doc *entity.Document) error { return nil }
func (r *fakeDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error         { return nil }
func (r *fakeDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	return r.doc, nil
}
func (r *fakeDocumentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	return nil, nil
}
func (r *fakeDocumentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}
func (r *fakeDocumentRepo) UpdateFeedbackScore(ctx context.Context, id uuid.UUID, score int) error {
	r.updatedId = id
	r.updatedScore = score
	return nil
}

type fakeUnitOfWork struct {
	docs *fakeDocumentRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }
func (u *fakeUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return u.docs
}
func (u *fakeUnitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository { return nil }
func (u *fakeUnitOfWork) StyleProfileRepository() contract.StyleProfileRepository   { return nil }
func (u *fakeUnitOfWork) WorkflowRepository() contract.WorkflowRepository           { return nil }

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, payload []byte) error { return nil }

func defaultBounds() config.PipelineConfig {
	return config.PipelineConfig{MinFeedbackScore: 1, MaxFeedbackScore: 5}
}

func TestUpdateFeedbackClampsOutOfRangeScores(t *testing.T) {
	tests := []struct {
		name  string
		score int
		want  int
	}{
		{"above maximum clamps to 5", 8, 5},
		{"below minimum clamps to 1", -3, 1},
		{"in range passes through", 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			repo := &fakeDocumentRepo{doc: &entity.Document{Id: id, Title: "Spec", DocType: "SRS"}}
			factory := &fakeUowFactory{uow: &fakeUnitOfWork{docs: repo}}
			svc := NewDocumentService(factory, noopPublisher{}, nil, nil, defaultBounds(), logger.NewNop())

			res, err := svc.UpdateFeedback(context.Background(), &dto.UpdateFeedbackRequest{Id: id, Score: tt.score})
			if err != nil {
				t.Fatalf("UpdateFeedback: %v", err)
			}
			if repo.updatedScore != tt.want {
				t.Errorf("persisted score = %d, want %d", repo.updatedScore, tt.want)
			}
			if res.Score != tt.want {
				t.Errorf("response score = %d, want %d", res.Score, tt.want)
			}
		})
	}
}

func TestIngestContentClampsFeedbackScore(t *testing.T) {
	tests := []struct {
		name  string
		score int
		want  int
	}{
		{"above maximum clamps to 5", 9, 5},
		{"below minimum clamps to 1", -2, 1},
		{"unset defaults to neutral 3", 0, 3},
		{"in range passes through", 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeDocumentRepo{}
			factory := &fakeUowFactory{uow: &fakeUnitOfWork{docs: repo}}
			svc := NewIngestionService(factory, noopPublisher{}, defaultBounds(), logger.NewNop())

			_, err := svc.IngestContent(context.Background(), &dto.IngestDocumentRequest{
				Title:         "Scope of Work",
				Content:       "# Scope of Work\n\nDeliverables and timeline.",
				DocType:       "SOW",
				FeedbackScore: tt.score,
			})
			if err != nil {
				t.Fatalf("IngestContent: %v", err)
			}
			if len(repo.created) != 1 {
				t.Fatalf("created %d documents, want 1", len(repo.created))
			}
			if got := repo.created[0].FeedbackScore; got != tt.want {
				t.Errorf("stored feedback score = %d, want %d", got, tt.want)
			}
		})
	}
}
