package implementation

import (
	"context"
	"testing"

	"docgen-be/internal/repository/specification"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock
}

func TestDocumentRepositoryFindOneNotFoundReturnsNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "documents"`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	doc, err := repo.FindOne(context.Background(), specification.ByID{ID: id})
	assert.NoError(t, err)
	assert.Nil(t, doc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryFindOneMapsRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "title", "doc_type", "feedback_score", "approved"}).
		AddRow(id, "SRS Document", "SRS", 4, true)

	mock.ExpectQuery(`SELECT \* FROM "documents"`).
		WithArgs(id, 1).
		WillReturnRows(rows)

	doc, err := repo.FindOne(context.Background(), specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "SRS Document", doc.Title)
	assert.Equal(t, "SRS", doc.DocType)
	assert.Equal(t, 4, doc.FeedbackScore)
	assert.True(t, doc.Approved)
}

func TestDocumentRepositoryUpdateFeedbackScore(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "documents" SET`).
		WithArgs(4, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateFeedbackScore(context.Background(), id, 4)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryCountWithSpecs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "documents"`).
		WithArgs("SRS").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.Count(context.Background(), specification.FilterBy{Field: "doc_type", Value: "SRS"})
	assert.NoError(t, err)
	assert.EqualValues(t, 7, count)
}
