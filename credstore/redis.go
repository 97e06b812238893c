package credstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	fieldIdentifier   = "identifier"
	fieldPasswordHash = "password_hash"
	fieldCreatedAt    = "created_at"
)

// createUserScript claims the identifier and writes the user hash in one step.
// KEYS[1] = identifier key
// KEYS[2] = user key
// ARGV[1] = user id
// ARGV[2] = identifier
// ARGV[3] = password hash
// ARGV[4] = created at (unix seconds)
//
// Returns 1 when created, 0 when the identifier is taken.
const createUserScript = `
if redis.call("SETNX", KEYS[1], ARGV[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[2], "identifier", ARGV[2], "password_hash", ARGV[3], "created_at", ARGV[4])
return 1
`

var createUserLua = redis.NewScript(createUserScript)

// updateHashScript replaces the hash only for an existing user.
// KEYS[1] = user key
// ARGV[1] = password hash
const updateHashScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "password_hash", ARGV[1])
return 1
`

var updateHashLua = redis.NewScript(updateHashScript)

// RedisStore keeps records in Redis. Key layout:
//
//	<prefix>:ident:<identifier> -> user id
//	<prefix>:user:<id>          -> hash {identifier, password_hash, created_at}
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a [RedisStore]. An empty prefix selects "ak".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ak"
	}
	return &RedisStore{
		redis:  client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *RedisStore) identKey(identifier string) string {
	return s.prefix + ":ident:" + identifier
}

func (s *RedisStore) userKey(userID string) string {
	return s.prefix + ":user:" + userID
}

// Create describes the create operation and its observable behavior.
//
//	Performance: 1 EVALSHA.
func (s *RedisStore) Create(ctx context.Context, identifier, passwordHash string) (UserRecord, error) {
	rec := UserRecord{
		ID:           uuid.NewString(),
		Identifier:   identifier,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC().Truncate(time.Second),
	}

	created, err := createUserLua.Run(ctx, s.redis,
		[]string{s.identKey(identifier), s.userKey(rec.ID)},
		rec.ID, identifier, passwordHash, rec.CreatedAt.Unix(),
	).Int()
	if err != nil {
		return UserRecord{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if created == 0 {
		return UserRecord{}, ErrDuplicate
	}
	return rec, nil
}

// GetByIdentifier describes the getbyidentifier operation and its observable behavior.
//
//	Performance: 1 GET + 1 HGETALL.
func (s *RedisStore) GetByIdentifier(ctx context.Context, identifier string) (UserRecord, error) {
	id, err := s.redis.Get(ctx, s.identKey(identifier)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return UserRecord{}, ErrNotFound
		}
		return UserRecord{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return s.GetByID(ctx, id)
}

// GetByID returns the record with the given user id.
func (s *RedisStore) GetByID(ctx context.Context, userID string) (UserRecord, error) {
	fields, err := s.redis.HGetAll(ctx, s.userKey(userID)).Result()
	if err != nil {
		return UserRecord{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(fields) == 0 {
		return UserRecord{}, ErrNotFound
	}

	rec := UserRecord{
		ID:           userID,
		Identifier:   fields[fieldIdentifier],
		PasswordHash: fields[fieldPasswordHash],
	}
	if raw := fields[fieldCreatedAt]; raw != "" {
		unix, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return UserRecord{}, fmt.Errorf("%w: corrupt created_at for %s", ErrUnavailable, userID)
		}
		rec.CreatedAt = time.Unix(unix, 0).UTC()
	}
	return rec, nil
}

// UpdatePasswordHash replaces the stored hash of an existing user.
func (s *RedisStore) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	updated, err := updateHashLua.Run(ctx, s.redis, []string{s.userKey(userID)}, passwordHash).Int()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return time.Since(start), nil
}
