package twofactor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRecord struct {
	pending  *SecondFactor
	active   *SecondFactor
	recovery map[string]struct{}
}

// MemoryStore implements Storage with in-process state. It serializes all
// transitions behind a single mutex, which satisfies the per-account
// promotion atomicity trivially. Suitable for tests and development; use
// the pgstore package in production.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*memoryRecord
	version  int64
}

// NewMemoryStore creates an empty in-memory second-factor store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[uuid.UUID]*memoryRecord),
	}
}

func (m *MemoryStore) record(accountID uuid.UUID) *memoryRecord {
	rec, ok := m.accounts[accountID]
	if !ok {
		rec = &memoryRecord{recovery: make(map[string]struct{})}
		m.accounts[accountID] = rec
	}
	return rec
}

func (m *MemoryStore) GetFactor(ctx context.Context, accountID uuid.UUID, status FactorStatus) (*SecondFactor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.accounts[accountID]
	if !ok {
		return nil, ErrFactorNotFound
	}

	var factor *SecondFactor
	switch status {
	case FactorStatusPending:
		factor = rec.pending
	case FactorStatusActive:
		factor = rec.active
	}
	if factor == nil {
		return nil, ErrFactorNotFound
	}

	factorCopy := *factor
	return &factorCopy, nil
}

func (m *MemoryStore) PutPending(ctx context.Context, factor *SecondFactor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.version++
	factorCopy := *factor
	factorCopy.Status = FactorStatusPending
	factorCopy.Version = m.version

	// Supersedes any prior pending factor; the active one is untouched.
	m.record(factor.AccountID).pending = &factorCopy
	return nil
}

func (m *MemoryStore) PromotePending(ctx context.Context, accountID uuid.UUID, version int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.accounts[accountID]
	if !ok || rec.pending == nil {
		return ErrFactorNotFound
	}
	if rec.pending.Version != version {
		return ErrConcurrentUpdate
	}

	promoted := *rec.pending
	promoted.Status = FactorStatusActive
	m.version++
	promoted.Version = m.version

	rec.active = &promoted
	rec.pending = nil
	rec.recovery = make(map[string]struct{})
	return nil
}

func (m *MemoryStore) DeletePending(ctx context.Context, accountID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.accounts[accountID]; ok {
		rec.pending = nil
	}
	return nil
}

func (m *MemoryStore) DeleteActive(ctx context.Context, accountID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.accounts[accountID]
	if !ok || rec.active == nil {
		return ErrFactorNotFound
	}

	rec.active = nil
	rec.recovery = make(map[string]struct{})
	return nil
}

func (m *MemoryStore) ReplaceRecoveryCodes(ctx context.Context, accountID uuid.UUID, hashes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.record(accountID)
	rec.recovery = make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		rec.recovery[h] = struct{}{}
	}
	return nil
}

func (m *MemoryStore) ConsumeRecoveryCode(ctx context.Context, accountID uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.accounts[accountID]
	if !ok {
		return ErrRecoveryCodeNotFound
	}
	if _, ok := rec.recovery[hash]; !ok {
		return ErrRecoveryCodeNotFound
	}
	delete(rec.recovery, hash)
	return nil
}

// PruneStalePending drops pending factors created before the cutoff,
// bounding the enroll-confirm window without a background goroutine.
func (m *MemoryStore) PruneStalePending(olderThan time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	pruned := 0
	for _, rec := range m.accounts {
		if rec.pending != nil && rec.pending.CreatedAt.Before(cutoff) {
			rec.pending = nil
			pruned++
		}
	}
	return pruned
}

// Compile-time interface assertion
var _ Storage = (*MemoryStore)(nil)
