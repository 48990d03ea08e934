package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/quickcdn/qcdn/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func newRecord(owner string, size int64) *models.FileRecord {
	return &models.FileRecord{
		ID:         uuid.New(),
		Mimetype:   "application/octet-stream",
		Name:       "x.bin",
		Size:       size,
		Checksum:   "deadbeef",
		UploadTime: time.Now().UTC(),
		OwnerID:    owner,
	}
}

func TestFilesCreateAndGet(t *testing.T) {
	files := NewFiles(newTestDB(t))
	ctx := context.Background()

	rec := newRecord("alice", 42)
	require.NoError(t, files.Create(ctx, rec))

	got, err := files.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec.ID, got.ID)
	require.EqualValues(t, 42, got.Size)

	_, err = files.Get(ctx, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFilesCreateDuplicateID(t *testing.T) {
	files := NewFiles(newTestDB(t))
	ctx := context.Background()

	rec := newRecord("alice", 1)
	require.NoError(t, files.Create(ctx, rec))

	dup := newRecord("bob", 2)
	dup.ID = rec.ID
	require.ErrorIs(t, files.Create(ctx, dup), ErrDuplicateID)
}

func TestFilesSoftDeleteIsOneWay(t *testing.T) {
	files := NewFiles(newTestDB(t))
	ctx := context.Background()

	rec := newRecord("alice", 1)
	require.NoError(t, files.Create(ctx, rec))

	require.NoError(t, files.SoftDelete(ctx, rec.ID))

	// Invisible to every read path afterwards.
	_, err := files.Get(ctx, rec.ID)
	require.ErrorIs(t, err, ErrNotFound)

	all, err := files.ListAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)

	mine, err := files.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, mine)

	// Repeat delete: NotFound, never an un-delete.
	require.ErrorIs(t, files.SoftDelete(ctx, rec.ID), ErrNotFound)
	require.ErrorIs(t, files.SoftDelete(ctx, uuid.New()), ErrNotFound)
}

func TestFilesListByOwnerFilters(t *testing.T) {
	files := NewFiles(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, files.Create(ctx, newRecord("alice", 1)))
	require.NoError(t, files.Create(ctx, newRecord("alice", 2)))
	require.NoError(t, files.Create(ctx, newRecord("bob", 3)))

	mine, err := files.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 2)

	all, err := files.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestFilesQuotaUsed(t *testing.T) {
	files := NewFiles(newTestDB(t))
	ctx := context.Background()

	used, err := files.QuotaUsed(ctx, "alice")
	require.NoError(t, err)
	require.EqualValues(t, 0, used)

	a := newRecord("alice", 600)
	require.NoError(t, files.Create(ctx, a))
	require.NoError(t, files.Create(ctx, newRecord("alice", 150)))
	require.NoError(t, files.Create(ctx, newRecord("bob", 999)))

	used, err = files.QuotaUsed(ctx, "alice")
	require.NoError(t, err)
	require.EqualValues(t, 750, used)

	require.NoError(t, files.SoftDelete(ctx, a.ID))

	used, err = files.QuotaUsed(ctx, "alice")
	require.NoError(t, err)
	require.EqualValues(t, 150, used)
}

func TestFilesTotals(t *testing.T) {
	files := NewFiles(newTestDB(t))
	ctx := context.Background()

	count, total, largest, err := files.Totals(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
	require.Zero(t, total)
	require.Zero(t, largest)

	require.NoError(t, files.Create(ctx, newRecord("alice", 100)))
	require.NoError(t, files.Create(ctx, newRecord("bob", 400)))

	count, total, largest, err = files.Totals(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
	require.EqualValues(t, 500, total)
	require.EqualValues(t, 400, largest)
}
