package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoboldt/juvem-sub001/pkg/config"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fsStore, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemory(),
		"fs":     fsStore,
	}
}

func TestStore_Lifecycle(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := "invoices/e1/RE-2024-00001.html"

			info, err := store.Put(ctx, key, bytes.NewReader([]byte("<html></html>")), PutOptions{
				ContentType: "text/html",
				Metadata:    map[string]string{"participation": "p1"},
			})
			require.NoError(t, err)
			assert.Equal(t, key, info.Key)
			assert.Equal(t, int64(13), info.Size)
			assert.NotEmpty(t, info.ETag)

			_, err = store.Put(ctx, key, bytes.NewReader([]byte("again")), PutOptions{})
			assert.True(t, errors.Is(err, ErrExists))

			got, rc, err := store.Get(ctx, key)
			require.NoError(t, err)
			body, err := io.ReadAll(rc)
			require.NoError(t, rc.Close())
			require.NoError(t, err)
			assert.Equal(t, "<html></html>", string(body))
			assert.Equal(t, "text/html", got.ContentType)
			assert.Equal(t, "p1", got.Metadata["participation"])

			_, err = store.Put(ctx, "invoices/e2/RE-2024-00001.html", bytes.NewReader([]byte("x")), PutOptions{})
			require.NoError(t, err)

			list, err := store.List(ctx, "invoices/e1/")
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, key, list[0].Key)

			all, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 2)

			ok, err := store.Delete(ctx, key)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = store.Delete(ctx, key)
			require.NoError(t, err)
			assert.False(t, ok)

			_, err = store.Head(ctx, key)
			assert.True(t, errors.Is(err, ErrNotFound))
			_, _, err = store.Get(ctx, key)
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestFilesystem_RejectsTraversal(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../escape", "/abs/path", "a/../../b"} {
		_, err := store.Put(context.Background(), key, bytes.NewReader(nil), PutOptions{})
		assert.Error(t, err, key)
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(context.Background(), config.BlobConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, s.Driver())

	s, err = Open(context.Background(), config.BlobConfig{Driver: "fs", FSRoot: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, s.Driver())

	_, err = Open(context.Background(), config.BlobConfig{Driver: "s3"})
	assert.Error(t, err)

	_, err = Open(context.Background(), config.BlobConfig{Driver: "ftp"})
	assert.Error(t, err)
}
