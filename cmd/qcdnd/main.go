package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/quickcdn/qcdn/internal/api"
	"github.com/quickcdn/qcdn/internal/api/handlers"
	"github.com/quickcdn/qcdn/internal/api/middleware"
	"github.com/quickcdn/qcdn/internal/blob"
	"github.com/quickcdn/qcdn/internal/config"
	"github.com/quickcdn/qcdn/internal/service"
	"github.com/quickcdn/qcdn/internal/store"
)

// @title qcdn API
// @version 1.0
// @description Minimal content-storage service: upload, retrieve and delete files.
// @BasePath /
func main() {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}

	db, err := store.Connect(cfg.DBURL)
	if err != nil {
		logger.Fatal("database unavailable", "err", err)
	}

	blobs, err := newBlobStore(cfg)
	if err != nil {
		logger.Fatal("blob store unavailable", "err", err)
	}

	svc := service.New(cfg, store.NewFiles(db), store.NewUsers(db), blobs, logger)

	if err := svc.EnsureAdmin(context.Background(), cfg.BootstrapAdminToken); err != nil {
		logger.Fatal("admin bootstrap failed", "err", err)
	}

	h := handlers.New(svc, cfg, logger)
	auth := middleware.NewAuth(svc, cfg.JWTSecret)
	router := api.SetupRouter(h, auth, cfg, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
		// Timeouts prevent resource exhaustion from slow clients; the write
		// timeout leaves room for large downloads.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("starting qcdn server", "port", cfg.Port, "anonymous_mode", cfg.AnonymousMode)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server stopped", "err", err)
	}
}

func newLogger() *log.Logger {
	logger := log.New(os.Stderr)
	if os.Getenv("DEBUG") == "1" {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			Prefix:          "qcdn",
		})
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func newBlobStore(cfg config.Config) (blob.Store, error) {
	switch cfg.BlobBackend {
	case "s3":
		return blob.NewS3(
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.AccountID,
			cfg.S3.BucketName,
			cfg.S3.Region,
		), nil
	case "disk":
		return blob.NewDisk(afero.NewOsFs(), cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown BLOB_BACKEND %q", cfg.BlobBackend)
	}
}
