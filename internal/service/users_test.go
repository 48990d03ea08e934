package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quickcdn/qcdn/internal/models"
)

func TestCreateUserGrants(t *testing.T) {
	svc := newTestService(t, testConfig())
	admin := createUser(t, svc, "boss", models.Unlimited, models.Unlimited, true)
	plain := createUser(t, svc, "alice", models.Unlimited, models.Unlimited, false)
	ctx := context.Background()

	params := CreateUserParams{Name: "bob", Quota: 1000, SizeLimit: models.Unlimited}

	// Non-admin, non-local: refused.
	_, err := svc.CreateUser(ctx, params, Caller{User: plain}, false)
	require.ErrorIs(t, err, ErrForbidden)

	// Admin grant.
	result, err := svc.CreateUser(ctx, params, Caller{User: admin}, false)
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	// Trusted-origin grant works without any credential at all.
	result, err = svc.CreateUser(ctx,
		CreateUserParams{Name: "carol", Quota: models.Unlimited, SizeLimit: models.Unlimited},
		Caller{Origin: "127.0.0.1"}, true)
	require.NoError(t, err)

	// The minted token resolves back to the account.
	caller, err := svc.ResolveCaller(ctx, result.Token, "h")
	require.NoError(t, err)
	require.False(t, caller.Anonymous())
	require.Equal(t, "carol", caller.User.Name)
}

func TestCreateUserValidation(t *testing.T) {
	svc := newTestService(t, testConfig())
	admin := createUser(t, svc, "boss", models.Unlimited, models.Unlimited, true)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserParams{Name: ""}, Caller{User: admin}, false)
	require.ErrorIs(t, err, ErrBadRequest)

	_, err = svc.CreateUser(ctx, CreateUserParams{Name: "x", Quota: -2}, Caller{User: admin}, false)
	require.ErrorIs(t, err, ErrBadRequest)

	_, err = svc.CreateUser(ctx, CreateUserParams{Name: "boss"}, Caller{User: admin}, false)
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestLogin(t *testing.T) {
	svc := newTestService(t, testConfig())
	admin := createUser(t, svc, "boss", models.Unlimited, models.Unlimited, true)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserParams{
		Name:      "dora",
		Quota:     models.Unlimited,
		SizeLimit: models.Unlimited,
		Password:  "hunter2",
	}, Caller{User: admin}, false)
	require.NoError(t, err)

	user, err := svc.Login(ctx, "dora", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "dora", user.Name)

	_, err = svc.Login(ctx, "dora", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Login(ctx, "nobody", "hunter2")
	require.ErrorIs(t, err, ErrUnauthorized)

	// Token-only accounts cannot log in with an empty password.
	_, err = svc.Login(ctx, "boss", "")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestGetProfile(t *testing.T) {
	svc := newTestService(t, testConfig())
	user := createUser(t, svc, "alice", 1000, models.Unlimited, false)
	caller := Caller{User: user}
	ctx := context.Background()

	_, err := svc.GetProfile(ctx, Caller{Origin: "198.51.100.7"})
	require.ErrorIs(t, err, ErrUnauthorized)

	mustUpload(t, svc, caller, "a.bin", make([]byte, 300))
	mustUpload(t, svc, caller, "b.bin", make([]byte, 200))

	profile, err := svc.GetProfile(ctx, caller)
	require.NoError(t, err)
	require.Equal(t, "alice", profile.Name)
	require.EqualValues(t, 500, profile.QuotaUsed)
	require.Equal(t, 2, profile.UploadCount)
	require.Len(t, profile.Files, 2)
	require.Equal(t, "1.0 kB", profile.QuotaNice)
	require.Equal(t, "unlimited", profile.SizeLimitNice)
}

func TestEnsureAdmin(t *testing.T) {
	svc := newTestService(t, testConfig())
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "bootstrap-token"))

	caller, err := svc.ResolveCaller(ctx, "bootstrap-token", "h")
	require.NoError(t, err)
	require.True(t, caller.Admin())

	// Second run is a no-op once accounts exist.
	require.NoError(t, svc.EnsureAdmin(ctx, "other-token"))
	caller, err = svc.ResolveCaller(ctx, "other-token", "h")
	require.NoError(t, err)
	require.True(t, caller.Anonymous())
}
