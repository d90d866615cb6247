package repository_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/existflow/eisenhower/internal/logger"
	"github.com/existflow/eisenhower/internal/model"
	"github.com/existflow/eisenhower/internal/repository"
	"github.com/existflow/eisenhower/internal/storage"
	"github.com/existflow/eisenhower/internal/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTasks() []model.Task {
	created := time.Date(2024, 1, 10, 9, 30, 0, 123000000, time.UTC)
	due := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return []model.Task{
		{
			ID:          "a1",
			Title:       "Buy milk",
			Quadrant:    model.QuadrantNotUrgentNotImportant,
			Priority:    model.PriorityLow,
			Tags:        []string{},
			CreatedAt:   created,
			UpdatedAt:   created,
		},
		{
			ID:          "b2",
			Title:       "Ship release",
			Description: "v2.0",
			Quadrant:    model.QuadrantUrgentImportant,
			Priority:    model.PriorityHigh,
			DueDate:     &due,
			Completed:   true,
			Tags:        []string{"work", "work"},
			CreatedAt:   created,
			UpdatedAt:   created.Add(time.Hour),
		},
	}
}

func TestRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := repository.New(storage.NewMemoryStore())

	assert.Empty(t, repo.Load(ctx))
	want := sampleTasks()
	repo.Save(ctx, want)

	assert.Equal(t, want, repo.Load(ctx))
}

func TestRepository_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := storage.OpenSQLite(ctx, t.TempDir()+"/tasks.db")
	require.NoError(t, err)
	defer store.Close()

	repository.New(store).Save(ctx, sampleTasks())

	assert.Equal(t, sampleTasks(), repository.New(store).Load(ctx))
}

func TestRepository_SerializedLayout(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	repository.New(store).Save(ctx, sampleTasks()[1:])

	raw, err := store.Get(ctx, "eisenhower-matrix-tasks")
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "urgent-important", decoded[0]["quadrant"])
	assert.Equal(t, "2024-01-15T00:00:00Z", decoded[0]["dueDate"])
	assert.Equal(t, "2024-01-10T09:30:00.123Z", decoded[0]["createdAt"])
	assert.Equal(t, true, decoded[0]["completed"])
}

func TestRepository_FieldRepair(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	blob := `[
		{"id":"x","title":"Legacy","quadrant":"urgent-not-important",
		 "dueDate":"2024-02-01","createdAt":"2024-01-01T10:00:00.000Z","updatedAt":"2024-01-02T10:00:00.000Z"},
		{"id":"y","title":"Bad enums","quadrant":"someday","priority":"urgent","tags":[" a ",""],
		 "createdAt":"2024-01-05T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}
	]`
	require.NoError(t, store.Set(ctx, repository.StorageKey, []byte(blob)))

	loaded := repository.New(store).Load(ctx)
	require.Len(t, loaded, 2)

	legacy := loaded[0]
	assert.Equal(t, model.PriorityMedium, legacy.Priority)
	assert.False(t, legacy.Completed)
	assert.NotNil(t, legacy.Tags)
	assert.Empty(t, legacy.Tags)
	assert.Equal(t, model.QuadrantUrgentNotImportant, legacy.Quadrant)
	require.NotNil(t, legacy.DueDate)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *legacy.DueDate)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), legacy.CreatedAt)

	bad := loaded[1]
	assert.Equal(t, model.QuadrantUrgentImportant, bad.Quadrant)
	assert.Equal(t, model.PriorityMedium, bad.Priority)
	assert.Equal(t, []string{"a"}, bad.Tags)
	assert.Equal(t, bad.CreatedAt, bad.UpdatedAt, "updatedAt is never before createdAt")
}

func TestRepository_DropsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, repository.StorageKey,
		[]byte(`[{"id":"same","title":"first"},{"id":"same","title":"second"},{"title":"no id"}]`)))

	loaded := repository.New(store).Load(ctx)

	require.Len(t, loaded, 2)
	assert.Equal(t, "first", loaded[0].Title)
	assert.NotEmpty(t, loaded[1].ID)
}

func TestRepository_RepairedIDsAreStable(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, repository.StorageKey, []byte(`[{"title":"legacy"}]`)))

	first := repository.New(store).Load(ctx)
	require.Len(t, first, 1)
	second := repository.New(store).Load(ctx)
	require.Len(t, second, 1)

	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[0].CreatedAt, second[0].CreatedAt)

	data, err := store.Get(ctx, repository.StorageKey)
	require.NoError(t, err)
	assert.Contains(t, string(data), first[0].ID)
}

func TestRepository_RepairedTaskCanBeMutatedLater(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, repository.StorageKey, []byte(`[{"title":"legacy"}]`)))

	listed := tasks.New(ctx, repository.New(store)).All()
	require.Len(t, listed, 1)

	svc := tasks.New(ctx, repository.New(store))
	toggled, err := svc.ToggleComplete(ctx, listed[0].ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
}

func TestRepository_CleanLoadDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{MemoryStore: storage.NewMemoryStore()}
	repo := repository.New(store)
	repo.Save(ctx, sampleTasks())
	store.sets = 0

	repo.Load(ctx)
	assert.Zero(t, store.sets)
}

type countingStore struct {
	*storage.MemoryStore
	sets int
}

func (c *countingStore) Set(ctx context.Context, key string, value []byte) error {
	c.sets++
	return c.MemoryStore.Set(ctx, key, value)
}

func TestRepository_CorruptDataIsDiscarded(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, repository.StorageKey, []byte(`{not json`)))

	var buf bytes.Buffer
	log, err := logger.New(logger.Config{Level: logger.DEBUG, Output: &buf})
	require.NoError(t, err)

	loaded := repository.New(store, repository.WithLogger(log)).Load(ctx)

	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
	assert.Contains(t, buf.String(), "Discarding corrupt task data")
}

func TestRepository_SaveFailureIsAbsorbed(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	store.MaxValueSize = 10

	var buf bytes.Buffer
	log, err := logger.New(logger.Config{Level: logger.DEBUG, Output: &buf})
	require.NoError(t, err)
	repo := repository.New(store, repository.WithLogger(log))

	assert.NotPanics(t, func() { repo.Save(ctx, sampleTasks()) })
	assert.Contains(t, buf.String(), "Failed to save tasks")
	assert.Contains(t, buf.String(), "quota")
	assert.Empty(t, repo.Load(ctx))
}

func TestRepository_UserNamespace(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	alice := repository.New(store, repository.WithUser("alice"))
	assert.Equal(t, "eisenhower-matrix-tasks-alice", alice.Key())
	alice.Save(ctx, sampleTasks())

	assert.Empty(t, repository.New(store).Load(ctx))
	assert.Empty(t, repository.New(store, repository.WithUser("bob")).Load(ctx))
	assert.Len(t, alice.Load(ctx), 2)
}

func TestRepository_Clear(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	repo := repository.New(store)
	repo.Save(ctx, sampleTasks())

	repo.Clear(ctx)

	_, err := store.Get(ctx, repository.StorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Empty(t, repo.Load(ctx))
}
