package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pavelpuchok/releasecourier/config"
	"github.com/pavelpuchok/releasecourier/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStorage(t *testing.T) (*storage.FileStorage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "last_sent_guids.json")
	s, err := storage.NewFileStorage(config.FileStorageConfig{FilePath: path})
	require.NoError(t, err)
	return s, path
}

func TestFileStorageMissingFileLoadsEmpty(t *testing.T) {
	s, _ := newFileStorage(t)

	state, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, state)

	_, err = s.LastNotified(context.Background(), "security")
	assert.ErrorIs(t, err, storage.ErrFeedNotFound)
}

func TestFileStorageRoundTrip(t *testing.T) {
	s, _ := newFileStorage(t)

	state := storage.StateMap{
		"security": "sec-17-9-1",
		"releases": "rel-17-9-0",
	}
	require.NoError(t, s.Save(state))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, state, loaded)
}

func TestFileStorageSetAndGet(t *testing.T) {
	s, _ := newFileStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SetLastNotified(ctx, "security", "sec-17-9-1"))

	id, err := s.LastNotified(ctx, "security")
	require.NoError(t, err)
	assert.Equal(t, "sec-17-9-1", id)

	_, err = s.LastNotified(ctx, "releases")
	assert.ErrorIs(t, err, storage.ErrFeedNotFound)

	// overwriting keeps a single marker per feed
	require.NoError(t, s.SetLastNotified(ctx, "security", "sec-17-9-2"))
	id, err = s.LastNotified(ctx, "security")
	require.NoError(t, err)
	assert.Equal(t, "sec-17-9-2", id)
}

func TestFileStorageMalformedFileStartsFresh(t *testing.T) {
	s, path := newFileStorage(t)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	state, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, state)

	require.NoError(t, s.SetLastNotified(context.Background(), "security", "sec-17-9-1"))
	id, err := s.LastNotified(context.Background(), "security")
	require.NoError(t, err)
	assert.Equal(t, "sec-17-9-1", id)
}

func TestMemoryStore(t *testing.T) {
	m := storage.NewMemory(storage.StateMap{"releases": "rel-1"})
	ctx := context.Background()

	id, err := m.LastNotified(ctx, "releases")
	require.NoError(t, err)
	assert.Equal(t, "rel-1", id)

	_, err = m.LastNotified(ctx, "security")
	assert.ErrorIs(t, err, storage.ErrFeedNotFound)

	require.NoError(t, m.SetLastNotified(ctx, "security", "sec-1"))
	assert.Equal(t, storage.StateMap{"releases": "rel-1", "security": "sec-1"}, m.State())
}
