package repository

import (
	"sync"

	"payments-backend/models"
)

// MemoryChargeRepository is a mutex-guarded in-memory implementation used
// by tests and local development without a database.
type MemoryChargeRepository struct {
	mu      sync.RWMutex
	charges map[string]models.Charge
}

func NewMemoryChargeRepository() *MemoryChargeRepository {
	return &MemoryChargeRepository{charges: make(map[string]models.Charge)}
}

func (r *MemoryChargeRepository) Create(charge *models.Charge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.charges[charge.ID] = *charge
	return nil
}

func (r *MemoryChargeRepository) GetByID(id string) (*models.Charge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	charge, ok := r.charges[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &charge, nil
}

// UpdateStatus holds the store lock for the whole read-modify-write, the
// in-memory equivalent of the row lock in the GORM implementation.
func (r *MemoryChargeRepository) UpdateStatus(id string, fn func(*models.Charge) error) (*models.Charge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	charge, ok := r.charges[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(&charge); err != nil {
		current := r.charges[id]
		return &current, err
	}
	r.charges[id] = charge
	return &charge, nil
}

func (r *MemoryChargeRepository) Count() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.charges)), nil
}

// MemoryIdempotencyRepository is the in-memory counterpart of the
// idempotency table, with the same first-writer-wins contract.
type MemoryIdempotencyRepository struct {
	mu      sync.RWMutex
	records map[string]models.IdempotencyRecord
}

func NewMemoryIdempotencyRepository() *MemoryIdempotencyRepository {
	return &MemoryIdempotencyRepository{records: make(map[string]models.IdempotencyRecord)}
}

func (r *MemoryIdempotencyRepository) Get(key string) (*models.IdempotencyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (r *MemoryIdempotencyRepository) Create(rec *models.IdempotencyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.IdempotencyKey]; ok {
		return ErrDuplicateKey
	}
	r.records[rec.IdempotencyKey] = *rec
	return nil
}
