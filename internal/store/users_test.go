package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/quickcdn/qcdn/internal/models"
)

func TestUsersUniqueness(t *testing.T) {
	users := NewUsers(newTestDB(t))
	ctx := context.Background()

	alice := &models.User{ID: uuid.New(), Name: "alice", Token: "tok-a"}
	require.NoError(t, users.Create(ctx, alice))

	sameName := &models.User{ID: uuid.New(), Name: "alice", Token: "tok-b"}
	require.ErrorIs(t, users.Create(ctx, sameName), ErrDuplicateUser)

	sameToken := &models.User{ID: uuid.New(), Name: "bob", Token: "tok-a"}
	require.ErrorIs(t, users.Create(ctx, sameToken), ErrDuplicateUser)
}

func TestUsersLookups(t *testing.T) {
	users := NewUsers(newTestDB(t))
	ctx := context.Background()

	alice := &models.User{ID: uuid.New(), Name: "alice", Token: "tok-a", Quota: 500}
	require.NoError(t, users.Create(ctx, alice))

	byToken, err := users.GetByToken(ctx, "tok-a")
	require.NoError(t, err)
	require.Equal(t, alice.ID, byToken.ID)

	byName, err := users.GetByName(ctx, "alice")
	require.NoError(t, err)
	require.EqualValues(t, 500, byName.Quota)

	byID, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Name)

	_, err = users.GetByToken(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)

	n, err := users.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}
