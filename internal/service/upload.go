package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/quickcdn/qcdn/internal/models"
	"github.com/quickcdn/qcdn/internal/utils"
)

// UploadParams is one upload request. Content is fully buffered; the HTTP
// layer bounds it with MaxBytesReader before it ever reaches the pipeline.
type UploadParams struct {
	Content    []byte
	Name       string
	ExpireTime string // optional RFC 3339 timestamp
	Caller     Caller
}

// UploadResult is the created record plus, in anonymous mode, the one-time
// modify token. The token is not retrievable after this.
type UploadResult struct {
	Record      models.FileRecord
	ModifyToken string
}

// Upload validates, derives metadata and persists a new file. Order of
// checks: shape validation, size limit, quota — all before any write. The
// metadata row commits before the blob bytes; a blob write failure leaves an
// orphaned row rather than losing accepted bytes.
func (s *Service) Upload(ctx context.Context, p UploadParams) (*UploadResult, error) {
	size := int64(len(p.Content))
	if size == 0 {
		return nil, fmt.Errorf("empty upload: %w", ErrBadRequest)
	}
	if size > s.cfg.MaxFileSize {
		return nil, fmt.Errorf("upload of %d bytes exceeds the global maximum of %d: %w",
			size, s.cfg.MaxFileSize, ErrBadRequest)
	}

	expire, err := parseExpireTime(p.ExpireTime)
	if err != nil {
		return nil, err
	}

	if !s.cfg.AnonymousMode && p.Caller.Anonymous() {
		return nil, fmt.Errorf("uploads require authentication: %w", ErrUnauthorized)
	}

	if limit := effectiveSizeLimit(p.Caller.User, s.cfg.MaxFileSize); size > limit {
		return nil, fmt.Errorf("upload of %d bytes exceeds the allowed %d: %w", size, limit, ErrTooLarge)
	}

	if user := p.Caller.User; user != nil && user.Quota != models.Unlimited {
		used, err := s.QuotaUsed(ctx, user)
		if err != nil {
			return nil, err
		}
		if used+size > user.Quota {
			return nil, fmt.Errorf("quota exceeded (%d of %d bytes used): %w", used, user.Quota, ErrForbidden)
		}
	}

	sum := sha256.Sum256(p.Content)
	rec := models.FileRecord{
		ID:         uuid.New(),
		Mimetype:   mimetype.Detect(p.Content).String(),
		Name:       displayName(p.Name),
		Size:       size,
		Checksum:   hex.EncodeToString(sum[:]),
		UploadTime: s.now().UTC(),
		ExpireTime: expire,
		OwnerID:    p.Caller.OwnerID(),
	}

	var modifyToken string
	if s.cfg.AnonymousMode {
		modifyToken, err = utils.GenerateSecureToken(utils.ModifyTokenLength)
		if err != nil {
			return nil, fmt.Errorf("generate modify token: %w", err)
		}
		rec.ModifyToken = modifyToken
	}

	if err := s.files.Create(ctx, &rec); err != nil {
		return nil, err
	}

	if _, err := s.blobs.Put(ctx, rec.ID.String(), bytes.NewReader(p.Content)); err != nil {
		// The row now points at missing bytes. Accepted failure mode; a
		// reconciliation sweep can pick these up.
		s.logger.Error("blob write failed after metadata commit, record orphaned",
			"id", rec.ID, "err", err)
		return nil, fmt.Errorf("store content: %w", err)
	}

	s.logger.Info("file uploaded",
		"id", rec.ID, "name", rec.Name, "size", rec.Size, "uploader", rec.OwnerID)

	return &UploadResult{Record: rec, ModifyToken: modifyToken}, nil
}

func parseExpireTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid expire_time %q: %w", raw, ErrBadRequest)
	}
	return &t, nil
}

// displayName strips any directory component from the caller-supplied name.
// The physical storage path is derived from the id, so this only guards the
// display value (and the Content-Disposition header built from it).
func displayName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
