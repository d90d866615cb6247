package auth

import (
	"context"
	"errors"
	"time"

	"github.com/existflow/eisenhower/internal/logger"
	"github.com/existflow/eisenhower/internal/model"
	"github.com/existflow/eisenhower/internal/storage"
)

// CurrentSessionKey holds the token of the signed-in session
const CurrentSessionKey = "eisenhower-matrix-current-session"

// DefaultDelay is the simulated round trip of the local provider
const DefaultDelay = 500 * time.Millisecond

// Provider signs users in and out. Every error carries a message fit to
// show the user.
type Provider interface {
	Login(ctx context.Context, email, password string) (model.User, error)
	Register(ctx context.Context, email, name, password string) (model.User, error)
	Logout(ctx context.Context) error
	// ResetPassword starts a reset and returns the token when the provider
	// exposes it (local and development servers)
	ResetPassword(ctx context.Context, email string) (string, error)
	ConfirmReset(ctx context.Context, token, newPassword string) error
	UpgradeAccount(ctx context.Context) (model.User, error)
	// CurrentUser returns ErrNotLoggedIn when nobody is signed in
	CurrentUser(ctx context.Context) (model.User, error)
}

// Local is a Provider backed by an Accounts directory in the same store.
// Each call waits for the configured delay first.
type Local struct {
	accounts *Accounts
	store    storage.Store
	delay    time.Duration
}

var _ Provider = (*Local)(nil)

// NewLocal creates a local provider
func NewLocal(store storage.Store, delay time.Duration, opts ...AccountsOption) *Local {
	return &Local{
		accounts: NewAccounts(store, opts...),
		store:    store,
		delay:    delay,
	}
}

// Accounts returns the underlying directory
func (l *Local) Accounts() *Accounts {
	return l.accounts
}

func (l *Local) wait(ctx context.Context) error {
	if l.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(l.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (l *Local) Login(ctx context.Context, email, password string) (model.User, error) {
	if err := l.wait(ctx); err != nil {
		return model.User{}, err
	}
	user, session, err := l.accounts.Login(ctx, email, password)
	if err != nil {
		return model.User{}, err
	}
	if err := l.store.Set(ctx, CurrentSessionKey, []byte(session.Token)); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (l *Local) Register(ctx context.Context, email, name, password string) (model.User, error) {
	if err := l.wait(ctx); err != nil {
		return model.User{}, err
	}
	user, session, err := l.accounts.Register(ctx, email, name, password)
	if err != nil {
		return model.User{}, err
	}
	if err := l.store.Set(ctx, CurrentSessionKey, []byte(session.Token)); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (l *Local) Logout(ctx context.Context) error {
	if err := l.wait(ctx); err != nil {
		return err
	}
	token, err := l.token(ctx)
	if err != nil {
		return err
	}
	if err := l.accounts.Logout(ctx, token); err != nil {
		logger.Warn("Failed to end session", logger.F("error", err))
	}
	return l.store.Delete(ctx, CurrentSessionKey)
}

func (l *Local) ResetPassword(ctx context.Context, email string) (string, error) {
	if err := l.wait(ctx); err != nil {
		return "", err
	}
	reset, err := l.accounts.RequestReset(ctx, email)
	if err != nil {
		return "", err
	}
	return reset.Token, nil
}

func (l *Local) ConfirmReset(ctx context.Context, token, newPassword string) error {
	if err := l.wait(ctx); err != nil {
		return err
	}
	return l.accounts.ConfirmReset(ctx, token, newPassword)
}

func (l *Local) UpgradeAccount(ctx context.Context) (model.User, error) {
	if err := l.wait(ctx); err != nil {
		return model.User{}, err
	}
	user, err := l.CurrentUser(ctx)
	if err != nil {
		return model.User{}, err
	}
	return l.accounts.Upgrade(ctx, user.ID)
}

func (l *Local) CurrentUser(ctx context.Context) (model.User, error) {
	token, err := l.token(ctx)
	if err != nil {
		return model.User{}, err
	}
	user, err := l.accounts.Authenticate(ctx, token)
	if errors.Is(err, ErrInvalidToken) {
		_ = l.store.Delete(ctx, CurrentSessionKey)
		return model.User{}, ErrNotLoggedIn
	}
	return user, err
}

func (l *Local) token(ctx context.Context) (string, error) {
	raw, err := l.store.Get(ctx, CurrentSessionKey)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && len(raw) == 0) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
