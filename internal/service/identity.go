package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/quickcdn/qcdn/internal/models"
	"github.com/quickcdn/qcdn/internal/store"
)

// Caller is a resolved identity: either an authenticated user or an
// anonymous caller identified by its network origin.
type Caller struct {
	User   *models.User
	Origin string // remote host, meaningful for anonymous callers
}

// Anonymous reports whether no account backs the caller.
func (c Caller) Anonymous() bool {
	return c.User == nil
}

// Admin reports whether the caller is an authenticated admin.
func (c Caller) Admin() bool {
	return c.User != nil && c.User.Admin
}

// OwnerID is the value stored on records this caller uploads: the user id,
// or the network origin for anonymous uploads.
func (c Caller) OwnerID() string {
	if c.User != nil {
		return c.User.ID.String()
	}
	return c.Origin
}

// ResolveCaller turns a bearer credential into a Caller. It fails closed:
// an empty or unknown credential yields an anonymous identity rather than
// an error, so public read paths keep working without authentication.
func (s *Service) ResolveCaller(ctx context.Context, credential, origin string) (Caller, error) {
	if credential == "" {
		return Caller{Origin: origin}, nil
	}
	user, err := s.users.GetByToken(ctx, credential)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Caller{Origin: origin}, nil
		}
		return Caller{}, fmt.Errorf("resolve caller: %w", err)
	}
	return Caller{User: user, Origin: origin}, nil
}

// ResolveSession turns a session-authenticated user id (from a verified JWT)
// into a Caller. Unknown ids fall back to anonymous, same as ResolveCaller.
func (s *Service) ResolveSession(ctx context.Context, userID, origin string) (Caller, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return Caller{Origin: origin}, nil
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Caller{Origin: origin}, nil
		}
		return Caller{}, fmt.Errorf("resolve session: %w", err)
	}
	return Caller{User: user, Origin: origin}, nil
}

// QuotaUsed is the live sum of sizes over the user's non-deleted files.
func (s *Service) QuotaUsed(ctx context.Context, user *models.User) (int64, error) {
	return s.files.QuotaUsed(ctx, user.ID.String())
}

// RemainingQuota returns the bytes left under the user's quota. unlimited
// is true when no quota applies.
func (s *Service) RemainingQuota(ctx context.Context, user *models.User) (remaining int64, unlimited bool, err error) {
	if user.Quota == models.Unlimited {
		return 0, true, nil
	}
	used, err := s.QuotaUsed(ctx, user)
	if err != nil {
		return 0, false, err
	}
	return user.Quota - used, false, nil
}

// effectiveSizeLimit is min(globalMax, user limit); an unlimited user limit
// leaves only the global ceiling.
func effectiveSizeLimit(user *models.User, globalMax int64) int64 {
	if user == nil || user.SizeLimit == models.Unlimited {
		return globalMax
	}
	return min(user.SizeLimit, globalMax)
}
