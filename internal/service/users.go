package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/quickcdn/qcdn/internal/models"
	"github.com/quickcdn/qcdn/internal/store"
	"github.com/quickcdn/qcdn/internal/utils"
)

// CreateUserParams describes a new account. Password is optional and only
// used by session-mode deployments.
type CreateUserParams struct {
	Name      string
	Quota     int64
	SizeLimit int64
	Password  string
	Admin     bool
}

// CreateUserResult carries the freshly minted bearer token; like the modify
// token, it is emitted once and not retrievable later.
type CreateUserResult struct {
	ID    uuid.UUID
	Token string
}

// CreateUser creates an account. Two independent grants: the caller is an
// admin, or the request came from a trusted local origin (the bootstrap
// path). Anyone else gets ErrForbidden.
func (s *Service) CreateUser(ctx context.Context, p CreateUserParams, caller Caller, trustedOrigin bool) (*CreateUserResult, error) {
	if !caller.Admin() && !trustedOrigin {
		return nil, fmt.Errorf("user creation is admin-only: %w", ErrForbidden)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("user name required: %w", ErrBadRequest)
	}
	if p.Quota < models.Unlimited || p.SizeLimit < models.Unlimited {
		return nil, fmt.Errorf("quota and size limit must be -1 or non-negative: %w", ErrBadRequest)
	}

	token, err := utils.GenerateSecureToken(utils.APITokenLength)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	user := models.User{
		ID:        uuid.New(),
		Name:      p.Name,
		Token:     token,
		Quota:     p.Quota,
		SizeLimit: p.SizeLimit,
		Admin:     p.Admin,
	}

	if p.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			return nil, fmt.Errorf("user %q already exists: %w", p.Name, ErrBadRequest)
		}
		return nil, err
	}

	s.logger.Info("user created", "id", user.ID, "name", user.Name, "admin", user.Admin)
	return &CreateUserResult{ID: user.ID, Token: token}, nil
}

// Login checks a name/password pair for session-mode deployments and
// returns the account. Wrong name and wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, name, password string) (*models.User, error) {
	user, err := s.users.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
		}
		return nil, err
	}
	if user.PasswordHash == "" {
		return nil, fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	}
	return user, nil
}

// Profile is the caller's own account view: limits, live usage and files.
type Profile struct {
	Name          string                  `json:"name"`
	Admin         bool                    `json:"admin"`
	Quota         int64                   `json:"quota"`
	QuotaNice     string                  `json:"quota_nice"`
	QuotaUsed     int64                   `json:"quota_used"`
	QuotaUsedNice string                  `json:"quota_used_nice"`
	SizeLimit     int64                   `json:"size_limit"`
	SizeLimitNice string                  `json:"size_limit_nice"`
	UploadCount   int                     `json:"upload_count"`
	Files         []models.FileRecordView `json:"files"`
}

// GetProfile assembles the profile for an authenticated caller.
func (s *Service) GetProfile(ctx context.Context, caller Caller) (*Profile, error) {
	user := caller.User
	if user == nil {
		return nil, fmt.Errorf("no account: %w", ErrUnauthorized)
	}

	files, err := s.files.ListByOwner(ctx, user.ID.String())
	if err != nil {
		return nil, err
	}

	var used int64
	views := make([]models.FileRecordView, 0, len(files))
	for _, f := range files {
		used += f.Size
		views = append(views, f.View(s.cfg.BaseURL))
	}

	return &Profile{
		Name:          user.Name,
		Admin:         user.Admin,
		Quota:         user.Quota,
		QuotaNice:     user.QuotaNice(),
		QuotaUsed:     used,
		QuotaUsedNice: humanize.Bytes(uint64(used)),
		SizeLimit:     user.SizeLimit,
		SizeLimitNice: user.SizeLimitNice(),
		UploadCount:   len(files),
		Files:         views,
	}, nil
}

// EnsureAdmin creates the bootstrap admin account with the configured token
// when the store has no users yet. Idempotent across restarts.
func (s *Service) EnsureAdmin(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	n, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	admin := models.User{
		ID:        uuid.New(),
		Name:      "admin",
		Token:     token,
		Quota:     models.Unlimited,
		SizeLimit: models.Unlimited,
		Admin:     true,
	}
	if err := s.users.Create(ctx, &admin); err != nil {
		return err
	}
	s.logger.Info("bootstrap admin created", "id", admin.ID)
	return nil
}
