package peers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	lite, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "peers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = lite.Close(ctx) })

	out := map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": lite,
	}
	if uri := os.Getenv("MONGODB_TEST_URI"); uri != "" {
		m, err := NewMongoStore(ctx, uri, "sync-module-test")
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = m.coll.Drop(ctx)
			_ = m.Close(ctx)
		})
		out["mongo"] = m
	}
	return out
}

func TestStore_InsertGetList(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Insert(ctx, Peer{URL: "http://p1"}))
			require.NoError(t, s.Insert(ctx, Peer{URL: "http://p2"}))

			ok, err := s.Exists(ctx, "http://p1")
			require.NoError(t, err)
			require.True(t, ok)

			p, err := s.Get(ctx, "http://p2")
			require.NoError(t, err)
			require.Equal(t, "http://p2", p.URL)

			list, err := s.List(ctx)
			require.NoError(t, err)
			require.Equal(t, []Peer{{URL: "http://p1"}, {URL: "http://p2"}}, list)
		})
	}
}

func TestStore_DuplicateInsert(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Insert(ctx, Peer{URL: "http://dup"}))
			err := s.Insert(ctx, Peer{URL: "http://dup"})
			require.ErrorIs(t, err, ErrDuplicatePeer)

			list, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 1)
		})
	}
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Insert(ctx, Peer{URL: "http://gone"}))
			require.NoError(t, s.Delete(ctx, "http://gone"))
			require.NoError(t, s.Delete(ctx, "http://gone"))
			require.NoError(t, s.Delete(ctx, "http://never-there"))

			_, err := s.Get(ctx, "http://gone")
			require.ErrorIs(t, err, ErrPeerNotFound)

			list, err := s.List(ctx)
			require.NoError(t, err)
			require.Empty(t, list)
		})
	}
}

func TestStoreError_MatchesUnavailable(t *testing.T) {
	cause := errors.New("connection reset")
	err := storeErr("find", cause)
	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "peer store find: connection reset", err.Error())
	require.NoError(t, storeErr("find", nil))
}
