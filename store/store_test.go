package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"lobby/config"
)

// fakeClock is a settable time source.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type backend struct {
	name    string
	store   Store
	advance func(time.Duration)
}

func backends(t *testing.T) []backend {
	t.Helper()
	ctx := context.Background()

	memClock := newFakeClock()
	mem := NewMemoryStore(WithClock(memClock.Now))

	sqlClock := newFakeClock()
	sqlite, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "kv.db"), WithClock(sqlClock.Now))
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rds := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	t.Cleanup(func() {
		require.NoError(t, sqlite.Close())
		require.NoError(t, rds.Close())
	})

	return []backend{
		{name: "memory", store: mem, advance: memClock.Advance},
		{name: "sqlite", store: sqlite, advance: sqlClock.Advance},
		{name: "redis", store: rds, advance: mr.FastForward},
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			_, err := b.store.Get(ctx, "absent")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, b.store.Set(ctx, "k", []byte("v1"), 0))
			got, err := b.store.Get(ctx, "k")
			require.NoError(t, err)
			require.Equal(t, []byte("v1"), got)

			require.NoError(t, b.store.Set(ctx, "k", []byte("v2"), 0))
			got, err = b.store.Get(ctx, "k")
			require.NoError(t, err)
			require.Equal(t, []byte("v2"), got, "Set should overwrite")

			require.NoError(t, b.store.Delete(ctx, "k"))
			_, err = b.store.Get(ctx, "k")
			require.ErrorIs(t, err, ErrNotFound)
			require.NoError(t, b.store.Delete(ctx, "k"), "Deleting a missing key is not an error")
		})
	}
}

func TestStoreExpiry(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			require.NoError(t, b.store.Set(ctx, "short", []byte("x"), time.Minute))
			require.NoError(t, b.store.Set(ctx, "forever", []byte("y"), 0))

			b.advance(59 * time.Second)
			_, err := b.store.Get(ctx, "short")
			require.NoError(t, err, "Entry should live until its ttl")

			b.advance(2 * time.Second)
			_, err = b.store.Get(ctx, "short")
			require.ErrorIs(t, err, ErrNotFound)

			b.advance(365 * 24 * time.Hour)
			_, err = b.store.Get(ctx, "forever")
			require.NoError(t, err)
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.Store = config.StoreMemory
	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)

	cfg.Store = config.StoreSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "lobby.db")
	s, err = Open(ctx, cfg)
	require.NoError(t, err)
	require.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	mr := miniredis.RunT(t)
	cfg.Store = config.StoreRedis
	cfg.RedisAddr = mr.Addr()
	s, err = Open(ctx, cfg)
	require.NoError(t, err)
	require.IsType(t, &RedisStore{}, s)
	require.NoError(t, s.Close())

	cfg.Store = "etcd"
	_, err = Open(ctx, cfg)
	require.Error(t, err)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", []byte("kept"), time.Hour))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("kept"), got)
}
