package blob

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestDiskRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := NewDisk(fs, "data")
	require.NoError(t, err)
	ctx := context.Background()

	content := []byte("hello blob")
	n, err := store.Put(ctx, "some-id", bytes.NewReader(content))
	require.NoError(t, err)
	require.EqualValues(t, len(content), n)

	// No temp leftovers after the rename.
	tmp, err := afero.Exists(fs, "data/some-id.tmp")
	require.NoError(t, err)
	require.False(t, tmp)

	body, err := store.Open(ctx, "some-id")
	require.NoError(t, err)
	got, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	require.Equal(t, content, got)
}

func TestDiskOpenMissing(t *testing.T) {
	store, err := NewDisk(afero.NewMemMapFs(), "data")
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "absent")
	require.ErrorIs(t, err, ErrMissing)
}

func TestDiskDeleteIdempotent(t *testing.T) {
	store, err := NewDisk(afero.NewMemMapFs(), "data")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Put(ctx, "id", bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "id"))
	_, err = store.Open(ctx, "id")
	require.ErrorIs(t, err, ErrMissing)

	// Deleting the already-absent blob is not an error.
	require.NoError(t, store.Delete(ctx, "id"))
}
