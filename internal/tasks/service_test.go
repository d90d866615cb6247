package tasks_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/existflow/eisenhower/internal/model"
	"github.com/existflow/eisenhower/internal/repository"
	"github.com/existflow/eisenhower/internal/storage"
	"github.com/existflow/eisenhower/internal/tasks"
	"github.com/existflow/eisenhower/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock returns a fixed time until advanced
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// recordingRepo counts saves and keeps the last snapshot
type recordingRepo struct {
	initial []model.Task
	saves   int
	last    []model.Task
}

func (r *recordingRepo) Load(ctx context.Context) []model.Task { return r.initial }
func (r *recordingRepo) Save(ctx context.Context, ts []model.Task) {
	r.saves++
	r.last = ts
}

func newService(t *testing.T) (*tasks.Service, *recordingRepo, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	repo := &recordingRepo{}
	return tasks.New(context.Background(), repo, tasks.WithClock(clock.Now)), repo, clock
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc, repo, clock := newService(t)

	task, err := svc.Create(ctx, model.TaskInput{Title: "  Plan quarter ", Tags: []string{" okr "}})

	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Plan quarter", task.Title)
	assert.Equal(t, model.QuadrantUrgentImportant, task.Quadrant)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.False(t, task.Completed)
	assert.Equal(t, []string{"okr"}, task.Tags)
	assert.Equal(t, clock.Now(), task.CreatedAt)
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)

	assert.Equal(t, 1, repo.saves)
	require.Len(t, repo.last, 1)
	assert.Equal(t, task.ID, repo.last[0].ID)
}

func TestService_CreateRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService(t)

	_, err := svc.Create(ctx, model.TaskInput{Title: "", Quadrant: model.QuadrantUrgentImportant, Priority: model.PriorityMedium})

	require.Error(t, err)
	var fieldErrs validate.Errors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Contains(t, fieldErrs, validate.FieldTitle)
	assert.Equal(t, 0, svc.Len())
	assert.Equal(t, 0, repo.saves)
}

func TestService_IDsAreUnique(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		task, err := svc.Create(ctx, model.TaskInput{Title: fmt.Sprintf("task %d", i)})
		require.NoError(t, err)
		require.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
	}
}

func TestService_IDGeneratorCollisionsAreRetried(t *testing.T) {
	ctx := context.Background()
	ids := []string{"dup", "dup", "dup", "fresh"}
	n := 0
	svc := tasks.New(ctx, &recordingRepo{}, tasks.WithIDGenerator(func() string {
		id := ids[n]
		n++
		return id
	}))

	a, err := svc.Create(ctx, model.TaskInput{Title: "a"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, model.TaskInput{Title: "b"})
	require.NoError(t, err)

	assert.Equal(t, "dup", a.ID)
	assert.Equal(t, "fresh", b.ID)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svc, repo, clock := newService(t)
	orig, err := svc.Create(ctx, model.TaskInput{Title: "Draft", Priority: model.PriorityLow})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	title := "Final"
	prio := model.PriorityHigh
	updated, err := svc.Update(ctx, orig.ID, model.TaskPatch{Title: &title, Priority: &prio})

	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, model.PriorityHigh, updated.Priority)
	assert.Equal(t, orig.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(orig.UpdatedAt))
	assert.Equal(t, 2, repo.saves)
}

func TestService_UpdateValidationLeavesTaskUntouched(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService(t)
	orig, _ := svc.Create(ctx, model.TaskInput{Title: "Keep me"})

	empty := "   "
	_, err := svc.Update(ctx, orig.ID, model.TaskPatch{Title: &empty})

	var fieldErrs validate.Errors
	require.True(t, errors.As(err, &fieldErrs))
	got, _ := svc.Get(orig.ID)
	assert.Equal(t, orig, got)
	assert.Equal(t, 1, repo.saves)
}

func TestService_UpdateRejectsBlankEnums(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService(t)
	orig, err := svc.Create(ctx, model.TaskInput{
		Title:    "Sort photos",
		Quadrant: model.QuadrantNotUrgentNotImportant,
		Priority: model.PriorityLow,
	})
	require.NoError(t, err)

	blankQ, blankP := model.Quadrant(""), model.Priority("")
	_, err = svc.Update(ctx, orig.ID, model.TaskPatch{Quadrant: &blankQ, Priority: &blankP})

	var fieldErrs validate.Errors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Equal(t, "Quadrant is required", fieldErrs[validate.FieldQuadrant])
	assert.Equal(t, "Priority is required", fieldErrs[validate.FieldPriority])

	got, _ := svc.Get(orig.ID)
	assert.Equal(t, model.QuadrantNotUrgentNotImportant, got.Quadrant)
	assert.Equal(t, model.PriorityLow, got.Priority)
	assert.Equal(t, 1, repo.saves)
}

func TestService_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.Update(ctx, "nope", model.TaskPatch{})
	assert.ErrorIs(t, err, tasks.ErrNotFound)

	_, err = svc.ToggleComplete(ctx, "nope")
	assert.ErrorIs(t, err, tasks.ErrNotFound)

	_, err = svc.Move(ctx, "nope", model.QuadrantNotUrgentImportant)
	assert.ErrorIs(t, err, tasks.ErrNotFound)

	_, err = svc.Get("nope")
	assert.ErrorIs(t, err, tasks.ErrNotFound)
}

func TestService_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService(t)
	a, _ := svc.Create(ctx, model.TaskInput{Title: "a"})
	b, _ := svc.Create(ctx, model.TaskInput{Title: "b"})

	svc.Delete(ctx, a.ID)
	require.Equal(t, 1, svc.Len())
	saves := repo.saves

	assert.NotPanics(t, func() { svc.Delete(ctx, a.ID) })
	assert.Equal(t, 1, svc.Len())
	assert.Equal(t, b.ID, svc.All()[0].ID)
	assert.Equal(t, saves, repo.saves, "deleting an absent task does not write")
}

func TestService_TimestampsStrictlyIncrease(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t) // clock never advances
	task, _ := svc.Create(ctx, model.TaskInput{Title: "t"})

	prev := task.UpdatedAt
	steps := []func() (model.Task, error){
		func() (model.Task, error) { return svc.ToggleComplete(ctx, task.ID) },
		func() (model.Task, error) { return svc.Move(ctx, task.ID, model.QuadrantUrgentNotImportant) },
		func() (model.Task, error) {
			d := "more"
			return svc.Update(ctx, task.ID, model.TaskPatch{Description: &d})
		},
		func() (model.Task, error) { return svc.Move(ctx, task.ID, model.QuadrantUrgentNotImportant) },
	}
	for i, step := range steps {
		got, err := step()
		require.NoError(t, err)
		assert.True(t, got.UpdatedAt.After(prev), "step %d", i)
		assert.Equal(t, task.CreatedAt, got.CreatedAt, "step %d", i)
		prev = got.UpdatedAt
	}
}

func TestService_ToggleAndMove(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	task, _ := svc.Create(ctx, model.TaskInput{Title: "t"})

	got, err := svc.ToggleComplete(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	got, err = svc.ToggleComplete(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)

	got, err = svc.Move(ctx, task.ID, model.QuadrantNotUrgentNotImportant)
	require.NoError(t, err)
	assert.Equal(t, model.QuadrantNotUrgentNotImportant, got.Quadrant)

	_, err = svc.Move(ctx, task.ID, model.Quadrant("later"))
	var fieldErrs validate.Errors
	require.True(t, errors.As(err, &fieldErrs))
	got, _ = svc.Get(task.ID)
	assert.Equal(t, model.QuadrantNotUrgentNotImportant, got.Quadrant)
}

func TestService_Resolve(t *testing.T) {
	ctx := context.Background()
	ids := []string{"abc123", "abd456", "xyz789"}
	n := 0
	svc := tasks.New(ctx, &recordingRepo{}, tasks.WithIDGenerator(func() string {
		id := ids[n]
		n++
		return id
	}))
	for _, title := range []string{"one", "two", "three"} {
		_, err := svc.Create(ctx, model.TaskInput{Title: title})
		require.NoError(t, err)
	}

	got, err := svc.Resolve("abc")
	require.NoError(t, err)
	assert.Equal(t, "one", got.Title)

	got, err = svc.Resolve("xyz789")
	require.NoError(t, err)
	assert.Equal(t, "three", got.Title)

	_, err = svc.Resolve("ab")
	assert.ErrorIs(t, err, tasks.ErrAmbiguous)

	_, err = svc.Resolve("q")
	assert.ErrorIs(t, err, tasks.ErrNotFound)
}

func TestService_ReturnedTasksAreCopies(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	task, _ := svc.Create(ctx, model.TaskInput{Title: "t", Tags: []string{"a"}})

	task.Tags[0] = "mutated"
	all := svc.All()
	all[0].Title = "mutated"

	got, _ := svc.Get(task.ID)
	assert.Equal(t, "t", got.Title)
	assert.Equal(t, []string{"a"}, got.Tags)
}

func TestService_PersistsThroughRepository(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	svc := tasks.New(ctx, repository.New(store))
	a, err := svc.Create(ctx, model.TaskInput{Title: "survives reload", Quadrant: model.QuadrantNotUrgentImportant})
	require.NoError(t, err)
	_, err = svc.ToggleComplete(ctx, a.ID)
	require.NoError(t, err)

	reloaded := tasks.New(ctx, repository.New(store))
	require.Equal(t, 1, reloaded.Len())
	got, err := reloaded.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "survives reload", got.Title)
	assert.True(t, got.Completed)
	assert.Equal(t, model.QuadrantNotUrgentImportant, got.Quadrant)
}

func TestService_InMemoryStateSurvivesFailedSave(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	store.MaxValueSize = 1

	svc := tasks.New(ctx, repository.New(store))
	_, err := svc.Create(ctx, model.TaskInput{Title: "not persisted"})

	require.NoError(t, err)
	assert.Equal(t, 1, svc.Len())
	assert.Equal(t, 0, tasks.New(ctx, repository.New(store)).Len())
}
