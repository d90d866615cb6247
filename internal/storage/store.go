// Package storage provides the key-value stores the task blob and account
// data are persisted in.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by Get when the key holds no value
var ErrNotFound = errors.New("key not found")

// ErrQuotaExceeded is returned by stores with a size limit
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Store is a durable string-keyed blob store
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Error describes a failed store operation
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op, key string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Key: key, Err: err}
}

// Driver names accepted by Open
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Options selects and configures a backend
type Options struct {
	Driver     string // memory, sqlite, postgres or redis
	DSN        string // file path, postgres URL or redis URL
	Passphrase string // non-empty enables encryption at rest
	Breaker    bool   // wrap remote backends in a circuit breaker
}

// DefaultSQLitePath returns ~/.eisenhower/eisenhower.db
func DefaultSQLitePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".eisenhower", "eisenhower.db"), nil
}

// Open builds the store described by opts
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)

	switch opts.Driver {
	case DriverMemory:
		s = NewMemoryStore()
	case DriverSQLite, "":
		path := opts.DSN
		if path == "" {
			if path, err = DefaultSQLitePath(); err != nil {
				return nil, err
			}
		}
		s, err = OpenSQLite(ctx, path)
	case DriverPostgres:
		s, err = OpenPostgres(ctx, opts.DSN)
	case DriverRedis:
		s, err = OpenRedis(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if opts.Breaker && (opts.Driver == DriverPostgres || opts.Driver == DriverRedis) {
		s = NewBreakerStore(s, opts.Driver)
	}

	if opts.Passphrase != "" {
		sealed, err := NewSealedStore(ctx, s, opts.Passphrase)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s = sealed
	}

	return s, nil
}
