package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/quickcdn/qcdn/internal/blob"
	"github.com/quickcdn/qcdn/internal/config"
	"github.com/quickcdn/qcdn/internal/models"
	"github.com/quickcdn/qcdn/internal/store"
)

func testConfig() config.Config {
	return config.Config{
		BaseURL:     "http://cdn.test",
		MaxFileSize: 1 << 20,
	}
}

func newTestService(t *testing.T, cfg config.Config) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))

	blobs, err := blob.NewDisk(afero.NewMemMapFs(), "data")
	require.NoError(t, err)

	return New(cfg, store.NewFiles(db), store.NewUsers(db), blobs, log.New(io.Discard))
}

func createUser(t *testing.T, svc *Service, name string, quota, sizeLimit int64, admin bool) *models.User {
	t.Helper()

	user := &models.User{
		ID:        uuid.New(),
		Name:      name,
		Token:     "token-" + name,
		Quota:     quota,
		SizeLimit: sizeLimit,
		Admin:     admin,
	}
	require.NoError(t, svc.users.Create(context.Background(), user))
	return user
}

func mustUpload(t *testing.T, svc *Service, caller Caller, name string, content []byte) *UploadResult {
	t.Helper()

	result, err := svc.Upload(context.Background(), UploadParams{
		Content: content,
		Name:    name,
		Caller:  caller,
	})
	require.NoError(t, err)
	return result
}

func freezeClock(svc *Service, at time.Time) {
	svc.now = func() time.Time { return at }
}
