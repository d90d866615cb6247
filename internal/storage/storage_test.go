package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/existflow/eisenhower/internal/model"
	"github.com/existflow/eisenhower/internal/repository"
	"github.com/existflow/eisenhower/internal/storage"
	"github.com/existflow/eisenhower/internal/tasks"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the common Store contract against s
func exerciseStore(t *testing.T, s storage.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set(ctx, "k", []byte(`[{"id":"1"}]`)))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, string(got))

	require.NoError(t, s.Set(ctx, "k", []byte(`[]`)))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Delete(ctx, "k"), "deleting an absent key is not an error")
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, storage.NewMemoryStore())
}

func TestMemoryStore_Quota(t *testing.T) {
	s := storage.NewMemoryStore()
	s.MaxValueSize = 4

	err := s.Set(context.Background(), "k", []byte("too large"))

	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)
	var se *storage.Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "set", se.Op)
	assert.Equal(t, "k", se.Key)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()
	v := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", v))
	v[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "eisenhower.db")
	s, err := storage.OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "eisenhower.db")

	s, err := storage.OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = storage.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("EISENHOWER_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("EISENHOWER_TEST_POSTGRES_URL not set")
	}
	s, err := storage.OpenPostgres(context.Background(), url)
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("EISENHOWER_TEST_REDIS_URL")
	if url == "" {
		t.Skip("EISENHOWER_TEST_REDIS_URL not set")
	}
	s, err := storage.OpenRedis(context.Background(), url)
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestSealedStore(t *testing.T) {
	ctx := context.Background()
	inner := storage.NewMemoryStore()

	s, err := storage.NewSealedStore(ctx, inner, "correct horse")
	require.NoError(t, err)
	exerciseStore(t, s)

	require.NoError(t, s.Set(ctx, "secret", []byte("Buy milk")))
	raw, err := inner.Get(ctx, "secret")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Buy milk")

	_, err = inner.Get(ctx, storage.SaltKey)
	require.NoError(t, err, "salt persisted next to the data")

	// Same passphrase reopens, a different one cannot read.
	again, err := storage.NewSealedStore(ctx, inner, "correct horse")
	require.NoError(t, err)
	got, err := again.Get(ctx, "secret")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", string(got))

	_, err = storage.NewSealedStore(ctx, inner, "battery staple")
	assert.ErrorIs(t, err, storage.ErrDecrypt)
}

func TestSealedStore_WrongPassphraseKeepsData(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "sealed.db")

	s, err := storage.Open(ctx, storage.Options{Driver: storage.DriverSQLite, DSN: dsn, Passphrase: "correct horse"})
	require.NoError(t, err)
	svc := tasks.New(ctx, repository.New(s))
	_, err = svc.Create(ctx, model.TaskInput{Title: "Renew passport"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = storage.Open(ctx, storage.Options{Driver: storage.DriverSQLite, DSN: dsn, Passphrase: "typo horse"})
	require.ErrorIs(t, err, storage.ErrDecrypt)

	s, err = storage.Open(ctx, storage.Options{Driver: storage.DriverSQLite, DSN: dsn, Passphrase: "correct horse"})
	require.NoError(t, err)
	defer s.Close()
	loaded := tasks.New(ctx, repository.New(s)).All()
	require.Len(t, loaded, 1)
	assert.Equal(t, "Renew passport", loaded[0].Title)
}

func TestSealedStore_ValueBoundToKey(t *testing.T) {
	ctx := context.Background()
	inner := storage.NewMemoryStore()
	s, err := storage.NewSealedStore(ctx, inner, "pw")
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "a", []byte("value")))
	raw, _ := inner.Get(ctx, "a")
	require.NoError(t, inner.Set(ctx, "b", raw))

	_, err = s.Get(ctx, "b")
	assert.ErrorIs(t, err, storage.ErrDecrypt)
}

// failingStore fails every call
type failingStore struct{ calls int }

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.calls++
	return nil, errors.New("connection refused")
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	f.calls++
	return errors.New("connection refused")
}

func (f *failingStore) Delete(ctx context.Context, key string) error {
	f.calls++
	return errors.New("connection refused")
}

func (f *failingStore) Close() error { return nil }

func TestBreakerStore_OpensAfterFailures(t *testing.T) {
	ctx := context.Background()
	inner := &failingStore{}
	b := storage.NewBreakerStoreWith(inner, "test", storage.BreakerSettings{FailureThreshold: 3, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		require.Error(t, b.Set(ctx, "k", nil))
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	err := b.Set(ctx, "k", nil)
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	assert.Equal(t, 3, inner.calls, "open breaker does not reach the backend")
}

func TestBreakerStore_NotFoundIsNotAFailure(t *testing.T) {
	ctx := context.Background()
	b := storage.NewBreakerStoreWith(storage.NewMemoryStore(), "test", storage.BreakerSettings{FailureThreshold: 1, Timeout: time.Minute})

	_, err := b.Get(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, gobreaker.StateClosed, b.State())

	exerciseStore(t, b)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := storage.Open(ctx, storage.Options{Driver: storage.DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &storage.MemoryStore{}, s)

	s, err = storage.Open(ctx, storage.Options{Driver: storage.DriverSQLite, DSN: filepath.Join(t.TempDir(), "x.db"), Passphrase: "pw"})
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &storage.SealedStore{}, s)
	exerciseStore(t, s)

	_, err = storage.Open(ctx, storage.Options{Driver: "etcd"})
	assert.Error(t, err)
}
