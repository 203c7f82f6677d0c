package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newProbeDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestPgvectorAvailableWhenExtensionInstalled(t *testing.T) {
	db, mock := newProbeDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM pg_extension`).
		WithArgs("vector").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	assert.True(t, PgvectorAvailable(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgvectorAvailableWhenExtensionMissing(t *testing.T) {
	db, mock := newProbeDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM pg_extension`).
		WithArgs("vector").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	assert.False(t, PgvectorAvailable(db))
}

func TestPgvectorAvailableProbeFailure(t *testing.T) {
	db, mock := newProbeDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM pg_extension`).
		WithArgs("vector").
		WillReturnError(assert.AnError)

	assert.False(t, PgvectorAvailable(db))
}

func TestPgvectorAvailableNilDB(t *testing.T) {
	assert.False(t, PgvectorAvailable(nil))
}
