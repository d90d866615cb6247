package storage

import (
	"context"
	"errors"
	"time"

	"github.com/existflow/eisenhower/internal/logger"
	"github.com/sony/gobreaker/v2"
)

// ErrUnavailable is returned while the breaker is open
var ErrUnavailable = errors.New("storage backend unavailable")

// BreakerStore fails fast after repeated backend failures so a dead
// remote store does not stall every save
type BreakerStore struct {
	inner Store
	cb    *gobreaker.CircuitBreaker[[]byte]
}

// BreakerSettings tunes NewBreakerStoreWith
type BreakerSettings struct {
	FailureThreshold uint32
	Timeout          time.Duration
}

// NewBreakerStore wraps inner with 5-failure / 30s defaults
func NewBreakerStore(inner Store, name string) *BreakerStore {
	return NewBreakerStoreWith(inner, name, BreakerSettings{FailureThreshold: 5, Timeout: 30 * time.Second})
}

// NewBreakerStoreWith wraps inner with explicit settings
func NewBreakerStoreWith(inner Store, name string, cfg BreakerSettings) *BreakerStore {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Storage circuit breaker state changed",
				logger.F("store", name),
				logger.F("from", from.String()),
				logger.F("to", to.String()))
		},
	}
	return &BreakerStore{inner: inner, cb: gobreaker.NewCircuitBreaker[[]byte](settings)}
}

func (b *BreakerStore) execute(op, key string, fn func() ([]byte, error)) ([]byte, error) {
	v, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, wrap(op, key, ErrUnavailable)
	}
	return v, err
}

// Get reads through the breaker
func (b *BreakerStore) Get(ctx context.Context, key string) ([]byte, error) {
	return b.execute("get", key, func() ([]byte, error) {
		return b.inner.Get(ctx, key)
	})
}

// Set writes through the breaker
func (b *BreakerStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.execute("set", key, func() ([]byte, error) {
		return nil, b.inner.Set(ctx, key, value)
	})
	return err
}

// Delete deletes through the breaker
func (b *BreakerStore) Delete(ctx context.Context, key string) error {
	_, err := b.execute("delete", key, func() ([]byte, error) {
		return nil, b.inner.Delete(ctx, key)
	})
	return err
}

// Close closes the wrapped store
func (b *BreakerStore) Close() error {
	return b.inner.Close()
}

// State reports the breaker state
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}
