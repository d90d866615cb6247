package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/existflow/eisenhower/internal/auth"
	"github.com/existflow/eisenhower/internal/config"
	"github.com/existflow/eisenhower/internal/logger"
	"github.com/existflow/eisenhower/internal/model"
	"github.com/existflow/eisenhower/internal/repository"
	"github.com/existflow/eisenhower/internal/storage"
	"github.com/existflow/eisenhower/internal/tasks"
)

// app is the wiring shared by every command: the store, the auth provider,
// the signed-in user and that user's task collection
type app struct {
	store    storage.Store
	provider auth.Provider
	user     *model.User
	tasks    *tasks.Service
}

// openStore opens the configured backend
func openStore(ctx context.Context) (storage.Store, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	store, err := storage.Open(ctx, storage.Options{
		Driver:     cfg.StorageDriver,
		DSN:        cfg.StorageDSN,
		Passphrase: cfg.Passphrase,
		Breaker:    cfg.Breaker,
	})
	if err != nil {
		logger.Error("Failed to open storage", logger.F("driver", cfg.StorageDriver), logger.F("error", err))
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return store, nil
}

func newProvider(store storage.Store) auth.Provider {
	if cfg.AuthMode == config.AuthRemote {
		return auth.NewRemote(cfg.ServerURL, store)
	}
	return auth.NewLocal(store, cfg.AuthDelay)
}

// openApp opens storage and loads the task collection of the current user,
// or the shared collection when nobody is signed in
func openApp(ctx context.Context) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	a := &app{store: store, provider: newProvider(store)}

	var opts []repository.Option
	user, err := a.provider.CurrentUser(ctx)
	switch {
	case err == nil:
		a.user = &user
		opts = append(opts, repository.WithUser(user.ID))
	case errors.Is(err, auth.ErrNotLoggedIn):
	default:
		logger.Warn("Failed to resolve current user", logger.F("error", err))
	}

	a.tasks = tasks.New(ctx, repository.New(store, opts...))
	return a, nil
}

// openAuth opens storage with only the auth provider wired
func openAuth(ctx context.Context) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	return &app{store: store, provider: newProvider(store)}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) userLabel() string {
	if a.user == nil {
		return ""
	}
	return a.user.Email
}

// resolve looks a task up by id prefix
func (a *app) resolve(ref string) (model.Task, error) {
	t, err := a.tasks.Resolve(ref)
	switch {
	case errors.Is(err, tasks.ErrAmbiguous):
		return model.Task{}, fmt.Errorf("%q matches more than one task, use a longer id", ref)
	case err != nil:
		return model.Task{}, fmt.Errorf("task not found: %s", ref)
	}
	return t, nil
}

// parseDue accepts today, tomorrow, +Nd or YYYY-MM-DD and returns midnight
// of that day in the local zone
func parseDue(s string, now time.Time) (time.Time, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case s == "today":
		return today, nil
	case s == "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case strings.HasPrefix(s, "+") && strings.HasSuffix(s, "d"):
		var n int
		if _, err := fmt.Sscanf(s, "+%dd", &n); err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("invalid due date %q", s)
		}
		return today.AddDate(0, 0, n), nil
	}

	d, err := time.ParseInLocation("2006-01-02", s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q (use today, tomorrow, +3d or 2024-01-15)", s)
	}
	return d, nil
}

// splitTags parses a comma separated tag list
func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		tags = append(tags, strings.TrimSpace(p))
	}
	return tags
}

// shortID returns the first 8 characters of an id
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
