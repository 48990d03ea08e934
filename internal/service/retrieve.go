package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/quickcdn/qcdn/internal/models"
	"github.com/quickcdn/qcdn/internal/store"
)

// GetInfo returns the live record under id. Public: existence and
// non-deletion are the only gates, expiry is not checked here.
func (s *Service) GetInfo(ctx context.Context, id string) (*models.FileRecord, error) {
	rec, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Download opens the stored bytes for a live, unexpired record. Expired
// records answer ErrGone even though the bytes may still exist on disk —
// expiry is a logical gate, not a purge.
func (s *Service) Download(ctx context.Context, id string) (io.ReadCloser, *models.FileRecord, error) {
	rec, err := s.lookup(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if rec.Expired(s.now()) {
		return nil, nil, fmt.Errorf("file %s expired: %w", id, ErrGone)
	}

	body, err := s.blobs.Open(ctx, rec.ID.String())
	if err != nil {
		s.logger.Error("blob missing or unreadable for live record", "id", rec.ID, "err", err)
		return nil, nil, fmt.Errorf("open content: %w", err)
	}
	return body, rec, nil
}

// DeleteAuth is the authorization context for a delete: the resolved caller
// plus an optional modify token presented with the request.
type DeleteAuth struct {
	Caller      Caller
	ModifyToken string
}

// Delete soft-deletes a record. Allowed for admins, the owner, or (in
// anonymous mode) a caller presenting the record's modify token. The blob is
// removed before the row is marked deleted: a stray file on disk beats a row
// that claims deletion while bytes still exist, and a failed removal is a
// server error, never a silent mark.
func (s *Service) Delete(ctx context.Context, id string, auth DeleteAuth) error {
	rec, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}

	if !s.mayDelete(rec, auth) {
		return fmt.Errorf("not permitted to delete file %s: %w", id, ErrForbidden)
	}

	if err := s.blobs.Delete(ctx, rec.ID.String()); err != nil {
		return fmt.Errorf("remove content: %w", err)
	}
	if err := s.files.SoftDelete(ctx, rec.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Raced another delete; the record is gone either way.
			return nil
		}
		return err
	}

	s.logger.Info("file deleted", "id", rec.ID, "name", rec.Name)
	return nil
}

func (s *Service) mayDelete(rec *models.FileRecord, auth DeleteAuth) bool {
	if auth.Caller.Admin() {
		return true
	}
	if u := auth.Caller.User; u != nil && u.ID.String() == rec.OwnerID {
		return true
	}
	if s.cfg.AnonymousMode && auth.ModifyToken != "" && rec.ModifyToken != "" {
		return subtle.ConstantTimeCompare([]byte(auth.ModifyToken), []byte(rec.ModifyToken)) == 1
	}
	return false
}

func (s *Service) lookup(ctx context.Context, id string) (*models.FileRecord, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("unknown file %q: %w", id, ErrNotFound)
	}
	rec, err := s.files.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("unknown file %q: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return rec, nil
}
