package services

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"payments-backend/metrics"
	"payments-backend/models"
	"payments-backend/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdempotencyService(repo repository.IdempotencyRepository) *IdempotencyService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewIdempotencyService(repo, metrics.NopRecorder{}, logger)
}

func TestDoRunsFunctionOncePerKey(t *testing.T) {
	svc := newIdempotencyService(repository.NewMemoryIdempotencyRepository())

	var calls atomic.Int64
	fn := func() (*models.ChargeResponse, error) {
		calls.Add(1)
		return &models.ChargeResponse{ID: "ch_1", Status: models.StatusSucceeded}, nil
	}

	first, replayed, err := svc.Do("k", fn)
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.False(t, first.IsIdempotent)

	second, replayed, err := svc.Do("k", fn)
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.True(t, second.IsIdempotent)
	assert.Equal(t, first.ID, second.ID)

	assert.Equal(t, int64(1), calls.Load())
}

func TestDoConcurrentCallersShareOneExecution(t *testing.T) {
	svc := newIdempotencyService(repository.NewMemoryIdempotencyRepository())

	var calls atomic.Int64
	const workers = 50

	var wg sync.WaitGroup
	ids := make([]string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, _, err := svc.Do("hot", func() (*models.ChargeResponse, error) {
				calls.Add(1)
				return &models.ChargeResponse{ID: "ch_hot"}, nil
			})
			assert.NoError(t, err)
			ids[i] = resp.ID
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load(), "exactly one caller may execute the create")
	for _, id := range ids {
		assert.Equal(t, "ch_hot", id)
	}
}

func TestDoDistinctKeysRunIndependently(t *testing.T) {
	svc := newIdempotencyService(repository.NewMemoryIdempotencyRepository())

	var calls atomic.Int64
	for _, key := range []string{"a", "b", "c"} {
		_, replayed, err := svc.Do(key, func() (*models.ChargeResponse, error) {
			calls.Add(1)
			return &models.ChargeResponse{ID: "ch_" + key}, nil
		})
		require.NoError(t, err)
		assert.False(t, replayed)
	}
	assert.Equal(t, int64(3), calls.Load())
}

func TestDoErrorIsNotCached(t *testing.T) {
	svc := newIdempotencyService(repository.NewMemoryIdempotencyRepository())

	boom := errors.New("gateway down")
	_, _, err := svc.Do("k", func() (*models.ChargeResponse, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	// A retry after a failure may attempt the create again.
	resp, replayed, err := svc.Do("k", func() (*models.ChargeResponse, error) {
		return &models.ChargeResponse{ID: "ch_retry"}, nil
	})
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, "ch_retry", resp.ID)
}

func TestLookupFallsBackToDurableRecord(t *testing.T) {
	repo := repository.NewMemoryIdempotencyRepository()

	first := newIdempotencyService(repo)
	created, _, err := first.Do("k", func() (*models.ChargeResponse, error) {
		return &models.ChargeResponse{ID: "ch_1", Amount: 100}, nil
	})
	require.NoError(t, err)

	// A fresh service with an empty in-process map simulates a restart;
	// the durable record still answers the replay.
	restarted := newIdempotencyService(repo)
	resp, replayed, err := restarted.Do("k", func() (*models.ChargeResponse, error) {
		t.Fatal("create must not run for a known key")
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.True(t, resp.IsIdempotent)
	assert.Equal(t, created.ID, resp.ID)
	assert.Equal(t, created.Amount, resp.Amount)
}

func TestLookupMissAndHit(t *testing.T) {
	svc := newIdempotencyService(repository.NewMemoryIdempotencyRepository())

	_, ok := svc.Lookup("nope")
	assert.False(t, ok)

	_, _, err := svc.Do("k", func() (*models.ChargeResponse, error) {
		return &models.ChargeResponse{ID: "ch_1"}, nil
	})
	require.NoError(t, err)

	resp, ok := svc.Lookup("k")
	require.True(t, ok)
	assert.Equal(t, "ch_1", resp.ID)
}
