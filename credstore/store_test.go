package credstore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type conformanceStore interface {
	Create(ctx context.Context, identifier, passwordHash string) (UserRecord, error)
	GetByIdentifier(ctx context.Context, identifier string) (UserRecord, error)
	GetByID(ctx context.Context, userID string) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}

func newRedisStoreTest(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, "test"), mr
}

func storesUnderTest(t *testing.T) map[string]conformanceStore {
	t.Helper()
	redisStore, _ := newRedisStoreTest(t)
	return map[string]conformanceStore{
		"memory": NewMemoryStore(),
		"redis":  redisStore,
	}
}

func TestStoreCreateAndLookup(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			const hash = "$argon2id$v=19$m=8192,t=1,p=1$c2FsdHNhbHQ$ZGlnZXN0ZGlnZXN0ZGlnZXN0"

			rec, err := store.Create(ctx, "alice@example.com", hash)
			require.NoError(t, err)
			assert.NotEmpty(t, rec.ID)
			assert.Equal(t, "alice@example.com", rec.Identifier)
			assert.Equal(t, hash, rec.PasswordHash)
			assert.False(t, rec.CreatedAt.IsZero())

			got, err := store.GetByIdentifier(ctx, "alice@example.com")
			require.NoError(t, err)
			assert.Equal(t, rec.ID, got.ID)
			assert.Equal(t, hash, got.PasswordHash)
			assert.Equal(t, rec.CreatedAt.Unix(), got.CreatedAt.Unix())

			byID, err := store.GetByID(ctx, rec.ID)
			require.NoError(t, err)
			assert.Equal(t, "alice@example.com", byID.Identifier)
		})
	}
}

func TestStoreDuplicateIdentifier(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first, err := store.Create(ctx, "bob@example.com", "h1")
			require.NoError(t, err)

			_, err = store.Create(ctx, "bob@example.com", "h2")
			require.ErrorIs(t, err, ErrDuplicate)

			got, err := store.GetByIdentifier(ctx, "bob@example.com")
			require.NoError(t, err)
			assert.Equal(t, first.ID, got.ID)
			assert.Equal(t, "h1", got.PasswordHash)
		})
	}
}

func TestStoreNotFound(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := store.GetByIdentifier(ctx, "nobody@example.com")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = store.GetByID(ctx, "missing-id")
			assert.ErrorIs(t, err, ErrNotFound)

			err = store.UpdatePasswordHash(ctx, "missing-id", "h")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreUpdatePasswordHash(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec, err := store.Create(ctx, "carol@example.com", "old")
			require.NoError(t, err)

			require.NoError(t, store.UpdatePasswordHash(ctx, rec.ID, "new"))

			got, err := store.GetByIdentifier(ctx, "carol@example.com")
			require.NoError(t, err)
			assert.Equal(t, "new", got.PasswordHash)
			assert.Equal(t, "carol@example.com", got.Identifier)
		})
	}
}

func TestStoreConcurrentCreateSingleWinner(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var (
				wg      sync.WaitGroup
				winners atomic.Int32
				dups    atomic.Int32
			)
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := store.Create(ctx, "race@example.com", fmt.Sprintf("h%d", i))
					switch {
					case err == nil:
						winners.Add(1)
					case assert.ErrorIs(t, err, ErrDuplicate):
						dups.Add(1)
					}
				}(i)
			}
			wg.Wait()

			assert.EqualValues(t, 1, winners.Load())
			assert.EqualValues(t, 15, dups.Load())
		})
	}
}

func TestRedisStoreKeyLayout(t *testing.T) {
	store, mr := newRedisStoreTest(t)
	ctx := context.Background()

	rec, err := store.Create(ctx, "dave@example.com", "stored-hash")
	require.NoError(t, err)

	id, err := mr.Get("test:ident:dave@example.com")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, id)
	assert.Equal(t, "stored-hash", mr.HGet("test:user:"+rec.ID, "password_hash"))
	assert.Equal(t, "dave@example.com", mr.HGet("test:user:"+rec.ID, "identifier"))
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr := newRedisStoreTest(t)
	ctx := context.Background()
	mr.Close()

	_, err := store.Create(ctx, "erin@example.com", "h")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = store.GetByIdentifier(ctx, "erin@example.com")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = store.Ping(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRedisStoreCorruptCreatedAt(t *testing.T) {
	store, mr := newRedisStoreTest(t)
	ctx := context.Background()

	rec, err := store.Create(ctx, "frank@example.com", "h")
	require.NoError(t, err)
	mr.HSet("test:user:"+rec.ID, "created_at", "not-a-number")

	_, err = store.GetByID(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNewRedisStoreDefaultPrefix(t *testing.T) {
	store := NewRedisStore(nil, "")
	assert.Equal(t, "ak:ident:x", store.identKey("x"))
	assert.Equal(t, "ak:user:y", store.userKey("y"))
}

func TestMemoryStoreCanceledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Create(ctx, "x@example.com", "h")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, store.Len())
}
