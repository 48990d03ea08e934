// Package service holds the file lifecycle and access-control core: the
// upload pipeline, retrieval/deletion pipeline, identity and quota checks,
// and the stats aggregator. The HTTP layer is a thin shell over these
// operations.
package service

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/quickcdn/qcdn/internal/blob"
	"github.com/quickcdn/qcdn/internal/config"
	"github.com/quickcdn/qcdn/internal/store"
)

// Service is the explicitly constructed application context: stores, blob
// backend, configured ceilings and mode flags. No package-level state.
type Service struct {
	cfg    config.Config
	files  *store.Files
	users  *store.Users
	blobs  blob.Store
	logger *log.Logger

	// now is swappable so expiry tests can move the clock.
	now func() time.Time
}

func New(cfg config.Config, files *store.Files, users *store.Users, blobs blob.Store, logger *log.Logger) *Service {
	return &Service{
		cfg:    cfg,
		files:  files,
		users:  users,
		blobs:  blobs,
		logger: logger,
		now:    time.Now,
	}
}

// AnonymousMode reports whether uploads are open to unauthenticated callers
// and guarded by per-file modify tokens.
func (s *Service) AnonymousMode() bool {
	return s.cfg.AnonymousMode
}

// MaxFileSize is the deployment-wide upload ceiling in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.cfg.MaxFileSize
}

// BaseURL prefixes generated download URLs.
func (s *Service) BaseURL() string {
	return s.cfg.BaseURL
}
