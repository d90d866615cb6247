// Package tasks owns the in-memory task collection and its derived views.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/existflow/eisenhower/internal/logger"
	"github.com/existflow/eisenhower/internal/model"
	"github.com/existflow/eisenhower/internal/validate"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no task has the requested id
	ErrNotFound = errors.New("task not found")
	// ErrAmbiguous is returned by Resolve when a prefix matches several tasks
	ErrAmbiguous = errors.New("task id is ambiguous")
)

// Repository is the persistence the service writes through to
type Repository interface {
	Load(ctx context.Context) []model.Task
	Save(ctx context.Context, tasks []model.Task)
}

// Service is the authoritative task collection. It is single-writer and
// not safe for concurrent use; callers serialize access.
type Service struct {
	repo  Repository
	tasks []model.Task
	now   func() time.Time
	newID func() string
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator replaces the UUID generator
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		s.newID = gen
	}
}

// New creates a service and loads the current collection from repo
func New(ctx context.Context, repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tasks = repo.Load(ctx)
	if s.tasks == nil {
		s.tasks = []model.Task{}
	}
	return s
}

// All returns a copy of the collection in insertion order
func (s *Service) All() []model.Task {
	return cloneAll(s.tasks)
}

// Len returns the number of tasks
func (s *Service) Len() int {
	return len(s.tasks)
}

// Get returns the task with id
func (s *Service) Get(id string) (model.Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.tasks[i].Clone(), nil
}

// Resolve finds a task by full id or by a unique id prefix
func (s *Service) Resolve(ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	if i := s.indexOf(ref); i >= 0 {
		return s.tasks[i].Clone(), nil
	}

	match := -1
	for i, t := range s.tasks {
		if strings.HasPrefix(t.ID, ref) {
			if match >= 0 {
				return model.Task{}, fmt.Errorf("%w: %s", ErrAmbiguous, ref)
			}
			match = i
		}
	}
	if match < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return s.tasks[match].Clone(), nil
}

// Create validates input and appends a new task
func (s *Service) Create(ctx context.Context, input model.TaskInput) (model.Task, error) {
	res := validate.Task(input)
	if !res.Valid {
		return model.Task{}, res.Errors
	}

	now := s.now()
	t := model.Task{
		ID:          s.uniqueID(),
		Title:       res.Data.Title,
		Description: res.Data.Description,
		Quadrant:    res.Data.Quadrant,
		Priority:    res.Data.Priority,
		DueDate:     res.Data.DueDate,
		Completed:   false,
		Tags:        res.Data.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.tasks = append(s.tasks, t)
	s.persist(ctx)

	logger.Debug("Task created", logger.F("id", t.ID), logger.F("quadrant", t.Quadrant))
	return t.Clone(), nil
}

func (s *Service) uniqueID() string {
	for {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 {
			return id
		}
	}
}

// Update merges patch into the task with id and revalidates it
func (s *Service) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	errs := validate.Patch(patch)
	res := validate.Task(patch.Apply(s.tasks[i].Input()))
	for f, msg := range res.Errors {
		if _, ok := errs[f]; !ok {
			errs[f] = msg
		}
	}
	if len(errs) > 0 {
		return model.Task{}, errs
	}

	t := &s.tasks[i]
	t.Title = res.Data.Title
	t.Description = res.Data.Description
	t.Quadrant = res.Data.Quadrant
	t.Priority = res.Data.Priority
	t.DueDate = res.Data.DueDate
	t.Tags = res.Data.Tags
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	s.touch(t)
	s.persist(ctx)

	return t.Clone(), nil
}

// Delete removes the task with id; absent ids are ignored
func (s *Service) Delete(ctx context.Context, id string) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.persist(ctx)
}

// ToggleComplete flips the completed flag
func (s *Service) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	t := &s.tasks[i]
	t.Completed = !t.Completed
	s.touch(t)
	s.persist(ctx)

	return t.Clone(), nil
}

// Move puts the task into quadrant q
func (s *Service) Move(ctx context.Context, id string, q model.Quadrant) (model.Task, error) {
	if !q.IsValid() {
		return model.Task{}, validate.Errors{validate.FieldQuadrant: "Quadrant must be one of urgent-important, not-urgent-important, urgent-not-important, not-urgent-not-important"}
	}
	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	t := &s.tasks[i]
	t.Quadrant = q
	s.touch(t)
	s.persist(ctx)

	return t.Clone(), nil
}

// Clear removes every task
func (s *Service) Clear(ctx context.Context) {
	s.tasks = []model.Task{}
	s.persist(ctx)
}

// touch sets updatedAt to now, keeping it strictly increasing even when
// the clock has not advanced
func (s *Service) touch(t *model.Task) {
	now := s.now()
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Nanosecond)
	}
	t.UpdatedAt = now
}

func (s *Service) persist(ctx context.Context) {
	s.repo.Save(ctx, cloneAll(s.tasks))
}

func (s *Service) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
