// Package repository persists the whole task collection as one JSON blob.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/existflow/eisenhower/internal/logger"
	"github.com/existflow/eisenhower/internal/model"
	"github.com/existflow/eisenhower/internal/storage"
	"github.com/google/uuid"
)

// StorageKey is the key the task blob is stored under
const StorageKey = "eisenhower-matrix-tasks"

// KeyFor returns the storage key, namespaced when userID is set
func KeyFor(userID string) string {
	if userID == "" {
		return StorageKey
	}
	return StorageKey + "-" + userID
}

// Repository reads and writes the task collection. Storage faults never
// reach the caller: reads fall back to an empty list and failed writes are
// logged and dropped.
type Repository struct {
	store storage.Store
	key   string
	log   *logger.Logger
}

// Option configures a Repository
type Option func(*Repository)

// WithUser namespaces the blob by user id
func WithUser(userID string) Option {
	return func(r *Repository) {
		r.key = KeyFor(userID)
	}
}

// WithLogger sets the logger used for storage faults
func WithLogger(l *logger.Logger) Option {
	return func(r *Repository) {
		r.log = l
	}
}

// New creates a repository over store
func New(store storage.Store, opts ...Option) *Repository {
	r := &Repository{store: store, key: StorageKey}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.L()
	}
	r.log = r.log.WithFields(logger.F("key", r.key))
	return r
}

// Key returns the storage key in use
func (r *Repository) Key() string {
	return r.key
}

// storedTask mirrors model.Task with every field optional so older or
// hand-edited blobs can be repaired on load
type storedTask struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Quadrant    *string   `json:"quadrant"`
	Priority    *string   `json:"priority"`
	DueDate     *string   `json:"dueDate"`
	Completed   *bool     `json:"completed"`
	Tags        *[]string `json:"tags"`
	CreatedAt   *string   `json:"createdAt"`
	UpdatedAt   *string   `json:"updatedAt"`
}

// Load returns the stored tasks, or an empty list when the blob is absent
// or unreadable
func (r *Repository) Load(ctx context.Context) []model.Task {
	data, err := r.store.Get(ctx, r.key)
	if errors.Is(err, storage.ErrNotFound) {
		return []model.Task{}
	}
	if err != nil {
		r.log.Error("Failed to read tasks", logger.F("error", err))
		return []model.Task{}
	}

	var stored []storedTask
	if err := json.Unmarshal(data, &stored); err != nil {
		r.log.Warn("Discarding corrupt task data", logger.F("error", err), logger.F("bytes", len(data)))
		return []model.Task{}
	}

	now := time.Now()
	tasks := make([]model.Task, 0, len(stored))
	seen := make(map[string]bool, len(stored))
	dirty := false
	for i, st := range stored {
		t, repaired := repair(st, now)
		if seen[t.ID] {
			r.log.Warn("Dropping task with duplicate id", logger.F("id", t.ID), logger.F("index", i))
			dirty = true
			continue
		}
		seen[t.ID] = true
		tasks = append(tasks, t)
		dirty = dirty || repaired
	}

	// Generated ids and timestamps must survive the next load
	if dirty {
		r.log.Info("Writing back repaired tasks", logger.F("count", len(tasks)))
		r.Save(ctx, tasks)
	}

	r.log.Debug("Loaded tasks", logger.F("count", len(tasks)))
	return tasks
}

// repair converts a stored record into a task that satisfies the model
// invariants. It reports whether an id or timestamp had to be made up.
func repair(st storedTask, now time.Time) (model.Task, bool) {
	t := model.Task{
		ID:          strings.TrimSpace(st.ID),
		Title:       st.Title,
		Description: st.Description,
		Quadrant:    model.DefaultQuadrant,
		Priority:    model.DefaultPriority,
		Tags:        []string{},
	}
	repaired := false
	if t.ID == "" {
		t.ID = uuid.New().String()
		repaired = true
	}

	if st.Quadrant != nil {
		if q := model.Quadrant(*st.Quadrant); q.IsValid() {
			t.Quadrant = q
		}
	}
	if st.Priority != nil {
		if p := model.Priority(*st.Priority); p.IsValid() {
			t.Priority = p
		}
	}
	if st.Completed != nil {
		t.Completed = *st.Completed
	}
	if st.Tags != nil {
		for _, tag := range *st.Tags {
			if tag = strings.TrimSpace(tag); tag != "" {
				t.Tags = append(t.Tags, tag)
			}
		}
	}
	if st.DueDate != nil {
		if d, ok := parseTime(*st.DueDate); ok {
			t.DueDate = &d
		}
	}

	created, okCreated := time.Time{}, false
	if st.CreatedAt != nil {
		created, okCreated = parseTime(*st.CreatedAt)
	}
	updated, okUpdated := time.Time{}, false
	if st.UpdatedAt != nil {
		updated, okUpdated = parseTime(*st.UpdatedAt)
	}
	switch {
	case okCreated && okUpdated:
	case okCreated:
		updated = created
	case okUpdated:
		created = updated
	default:
		created, updated = now, now
	}
	repaired = repaired || !okCreated || !okUpdated
	if updated.Before(created) {
		updated = created
	}
	t.CreatedAt, t.UpdatedAt = created, updated

	return t, repaired
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTime accepts ISO-8601 timestamps and plain dates
func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Save overwrites the stored blob with tasks
func (r *Repository) Save(ctx context.Context, tasks []model.Task) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		r.log.Error("Failed to serialize tasks", logger.F("error", err))
		return
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		r.log.Error("Failed to save tasks", logger.F("error", err), logger.F("count", len(tasks)))
		return
	}
	r.log.Debug("Saved tasks", logger.F("count", len(tasks)), logger.F("bytes", len(data)))
}

// Clear removes the stored blob
func (r *Repository) Clear(ctx context.Context) {
	if err := r.store.Delete(ctx, r.key); err != nil {
		r.log.Error("Failed to clear tasks", logger.F("error", err))
	}
}
