package credstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps records in process memory. It is safe for concurrent use
// and intended for tests and single-process deployments.
type MemoryStore struct {
	mu           sync.RWMutex
	byID         map[string]UserRecord
	byIdentifier map[string]string
	now          func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:         make(map[string]UserRecord),
		byIdentifier: make(map[string]string),
		now:          time.Now,
	}
}

// Create stores a new record under a fresh UUID.
func (s *MemoryStore) Create(ctx context.Context, identifier, passwordHash string) (UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return UserRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byIdentifier[identifier]; ok {
		return UserRecord{}, ErrDuplicate
	}

	rec := UserRecord{
		ID:           uuid.NewString(),
		Identifier:   identifier,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
	}
	s.byID[rec.ID] = rec
	s.byIdentifier[identifier] = rec.ID
	return rec, nil
}

// GetByIdentifier returns the record registered under identifier.
func (s *MemoryStore) GetByIdentifier(ctx context.Context, identifier string) (UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return UserRecord{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byIdentifier[identifier]
	if !ok {
		return UserRecord{}, ErrNotFound
	}
	return s.byID[id], nil
}

// GetByID returns the record with the given user id.
func (s *MemoryStore) GetByID(ctx context.Context, userID string) (UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return UserRecord{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[userID]
	if !ok {
		return UserRecord{}, ErrNotFound
	}
	return rec, nil
}

// UpdatePasswordHash replaces the stored hash of an existing user.
func (s *MemoryStore) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[userID]
	if !ok {
		return ErrNotFound
	}
	rec.PasswordHash = passwordHash
	s.byID[userID] = rec
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
