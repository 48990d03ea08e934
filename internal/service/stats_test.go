package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quickcdn/qcdn/internal/models"
)

func TestStatsAdminOnly(t *testing.T) {
	svc := newTestService(t, testConfig())
	user := createUser(t, svc, "alice", models.Unlimited, models.Unlimited, false)
	ctx := context.Background()

	_, err := svc.GetStats(ctx, Caller{User: user})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetStats(ctx, Caller{Origin: "198.51.100.7"})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestStatsEmptyStoreReportsZero(t *testing.T) {
	svc := newTestService(t, testConfig())
	admin := createUser(t, svc, "boss", models.Unlimited, models.Unlimited, true)

	stats, err := svc.GetStats(context.Background(), Caller{User: admin})
	require.NoError(t, err)
	require.EqualValues(t, 0, stats.TotalFiles)
	require.EqualValues(t, 0, stats.TotalSize)
	require.EqualValues(t, 0, stats.LargestFile)
	require.EqualValues(t, testConfig().MaxFileSize, stats.MaximumAllowed)
}

func TestStatsIgnoresDeletedFiles(t *testing.T) {
	svc := newTestService(t, testConfig())
	admin := createUser(t, svc, "boss", models.Unlimited, models.Unlimited, true)
	caller := Caller{User: admin}
	ctx := context.Background()

	mustUpload(t, svc, caller, "a.bin", make([]byte, 100))
	big := mustUpload(t, svc, caller, "b.bin", make([]byte, 400))
	mustUpload(t, svc, caller, "c.bin", make([]byte, 250))

	stats, err := svc.GetStats(ctx, caller)
	require.NoError(t, err)
	require.EqualValues(t, 3, stats.TotalFiles)
	require.EqualValues(t, 750, stats.TotalSize)
	require.EqualValues(t, 400, stats.LargestFile)

	require.NoError(t, svc.Delete(ctx, big.Record.ID.String(), DeleteAuth{Caller: caller}))

	stats, err = svc.GetStats(ctx, caller)
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.TotalFiles)
	require.EqualValues(t, 350, stats.TotalSize)
	require.EqualValues(t, 250, stats.LargestFile)
}
