package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"payments-backend/metrics"
	"payments-backend/models"
	"payments-backend/repository"

	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
)

// IdempotencyService guarantees at-most-once charge creation per
// idempotency key. The in-process map answers replays without touching
// storage; the singleflight group makes the check-and-create sequence a
// single critical section per key, so of N concurrent requests with the
// same unused key exactly one runs the create and the rest wait for its
// result. The durable record (unique key index) extends first-writer-wins
// across restarts and instances.
type IdempotencyService struct {
	repo    repository.IdempotencyRepository
	metrics metrics.Recorder
	logger  *slog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]*models.ChargeResponse
}

func NewIdempotencyService(repo repository.IdempotencyRepository, rec metrics.Recorder, logger *slog.Logger) *IdempotencyService {
	return &IdempotencyService{
		repo:    repo,
		metrics: rec,
		logger:  logger,
		cache:   make(map[string]*models.ChargeResponse),
	}
}

// Lookup returns the cached response for key, consulting memory first and
// falling back to the durable record (warming the map on a hit).
func (s *IdempotencyService) Lookup(key string) (*models.ChargeResponse, bool) {
	start := time.Now()
	resp, ok := s.lookup(key)
	s.metrics.IdempotencyCheck(time.Since(start), ok)
	if ok {
		s.logger.Info("idempotency key found in cache",
			"idempotency_key", key, "payment_id", resp.ID)
	}
	return resp, ok
}

func (s *IdempotencyService) lookup(key string) (*models.ChargeResponse, bool) {
	s.mu.RLock()
	resp, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return resp, true
	}

	rec, err := s.repo.Get(key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("idempotency record lookup failed", "idempotency_key", key, "error", err)
		}
		return nil, false
	}
	var cached models.ChargeResponse
	if err := json.Unmarshal(rec.Response, &cached); err != nil {
		s.logger.Error("idempotency record unreadable", "idempotency_key", key, "error", err)
		return nil, false
	}
	return s.remember(key, &cached), true
}

// Do runs fn at most once for key. The first caller executes fn and has
// its response cached; concurrent and later callers receive a replay of
// that response flagged is_idempotent. An fn error is shared with the
// waiters of the same flight and nothing is cached, so a later retry may
// attempt the create again.
func (s *IdempotencyService) Do(key string, fn func() (*models.ChargeResponse, error)) (*models.ChargeResponse, bool, error) {
	var ran bool
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		if resp, ok := s.Lookup(key); ok {
			return resp, nil
		}
		ran = true
		resp, err := fn()
		if err != nil {
			return nil, err
		}
		return s.store(key, resp), nil
	})
	if err != nil {
		return nil, false, err
	}
	resp := v.(*models.ChargeResponse)
	if !ran {
		return resp.Replay(), true, nil
	}
	return resp, false, nil
}

// store caches resp under key, memory and durable record both
// first-writer-wins. When another instance already wrote the record, the
// stored response wins over ours.
func (s *IdempotencyService) store(key string, resp *models.ChargeResponse) *models.ChargeResponse {
	blob, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("idempotency response marshal failed", "idempotency_key", key, "error", err)
		return s.remember(key, resp)
	}

	rec := &models.IdempotencyRecord{
		IdempotencyKey: key,
		ChargeID:       resp.ID,
		Response:       datatypes.JSON(blob),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Create(rec); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			if existing, err := s.repo.Get(key); err == nil {
				var cached models.ChargeResponse
				if err := json.Unmarshal(existing.Response, &cached); err == nil {
					return s.remember(key, &cached)
				}
			}
		} else {
			s.logger.Error("idempotency record write failed", "idempotency_key", key, "error", err)
		}
	} else {
		s.logger.Info("cached response for idempotency key",
			"idempotency_key", key, "payment_id", resp.ID)
	}
	return s.remember(key, resp)
}

// remember inserts into the in-process map unless a value is already
// present; the stored value is never overwritten.
func (s *IdempotencyService) remember(key string, resp *models.ChargeResponse) *models.ChargeResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.cache[key]; ok {
		return existing
	}
	s.cache[key] = resp
	return resp
}
