// Package auth provides account management and the login providers used by
// the CLI and the HTTP API.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/existflow/eisenhower/internal/logger"
	"github.com/existflow/eisenhower/internal/model"
	"github.com/existflow/eisenhower/internal/storage"
	"github.com/existflow/eisenhower/internal/validate"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Store keys for account data
const (
	UsersKey    = "eisenhower-matrix-users"
	SessionsKey = "eisenhower-matrix-sessions"
	ResetsKey   = "eisenhower-matrix-resets"
)

const (
	SessionTTL = 30 * 24 * time.Hour
	ResetTTL   = 15 * time.Minute
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrUnknownAccount     = errors.New("no account found with this email")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAlreadyPro         = errors.New("account is already on the pro plan")
)

// userRecord is the persisted form of a user, including the password hash
type userRecord struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Plan         model.Plan `json:"plan"`
	PasswordHash string     `json:"passwordHash"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

func (r userRecord) user() model.User {
	u := model.User{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		Plan:         r.Plan,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
	if r.LastLogin != nil {
		t := *r.LastLogin
		u.LastLogin = &t
	}
	return u
}

// Accounts is the account directory. It is safe for concurrent use.
type Accounts struct {
	mu    sync.Mutex
	store storage.Store
	now   func() time.Time
	cost  int
	log   *logger.Logger
}

// AccountsOption configures Accounts
type AccountsOption func(*Accounts)

// WithAccountsClock replaces time.Now
func WithAccountsClock(now func() time.Time) AccountsOption {
	return func(a *Accounts) {
		a.now = now
	}
}

// WithBcryptCost sets the bcrypt work factor
func WithBcryptCost(cost int) AccountsOption {
	return func(a *Accounts) {
		a.cost = cost
	}
}

// NewAccounts creates an account directory backed by store
func NewAccounts(store storage.Store, opts ...AccountsOption) *Accounts {
	a := &Accounts{
		store: store,
		now:   time.Now,
		cost:  bcrypt.DefaultCost,
		log:   logger.L().WithFields(logger.F("component", "accounts")),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register creates an account and opens a session for it
func (a *Accounts) Register(ctx context.Context, email, name, password string) (model.User, model.Session, error) {
	if err := validate.Registration(email, name, password); err != nil {
		return model.User{}, model.Session{}, err
	}
	email = validate.NormalizeEmail(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return model.User{}, model.Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	users, err := loadList[userRecord](ctx, a.store, UsersKey)
	if err != nil {
		return model.User{}, model.Session{}, err
	}
	if findUser(users, email) >= 0 {
		return model.User{}, model.Session{}, ErrEmailTaken
	}

	now := a.now()
	rec := userRecord{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		Plan:         model.PlanFree,
		PasswordHash: string(hash),
		CreatedAt:    now,
		LastLogin:    &now,
	}
	users = append(users, rec)
	if err := saveList(ctx, a.store, UsersKey, users); err != nil {
		return model.User{}, model.Session{}, err
	}

	session, err := a.createSession(ctx, rec.ID)
	if err != nil {
		return model.User{}, model.Session{}, err
	}

	a.log.Info("User registered", logger.F("user_id", rec.ID))
	return rec.user(), session, nil
}

// Login checks credentials, refreshes lastLogin and opens a session
func (a *Accounts) Login(ctx context.Context, email, password string) (model.User, model.Session, error) {
	email = validate.NormalizeEmail(email)

	a.mu.Lock()
	defer a.mu.Unlock()

	users, err := loadList[userRecord](ctx, a.store, UsersKey)
	if err != nil {
		return model.User{}, model.Session{}, err
	}
	i := findUser(users, email)
	if i < 0 {
		return model.User{}, model.Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(users[i].PasswordHash), []byte(password)); err != nil {
		return model.User{}, model.Session{}, ErrInvalidCredentials
	}

	now := a.now()
	users[i].LastLogin = &now
	if err := saveList(ctx, a.store, UsersKey, users); err != nil {
		return model.User{}, model.Session{}, err
	}

	session, err := a.createSession(ctx, users[i].ID)
	if err != nil {
		return model.User{}, model.Session{}, err
	}

	a.log.Info("User logged in", logger.F("user_id", users[i].ID))
	return users[i].user(), session, nil
}

// Authenticate returns the user owning a live session token
func (a *Accounts) Authenticate(ctx context.Context, token string) (model.User, error) {
	if token == "" {
		return model.User{}, ErrInvalidToken
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	sessions, err := loadList[model.Session](ctx, a.store, SessionsKey)
	if err != nil {
		return model.User{}, err
	}
	var session *model.Session
	for i := range sessions {
		if sessions[i].Token == token {
			session = &sessions[i]
			break
		}
	}
	if session == nil || session.IsExpired(a.now()) {
		return model.User{}, ErrInvalidToken
	}

	users, err := loadList[userRecord](ctx, a.store, UsersKey)
	if err != nil {
		return model.User{}, err
	}
	for _, u := range users {
		if u.ID == session.UserID {
			return u.user(), nil
		}
	}
	return model.User{}, ErrInvalidToken
}

// Logout ends a session. Unknown tokens are ignored.
func (a *Accounts) Logout(ctx context.Context, token string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	sessions, err := loadList[model.Session](ctx, a.store, SessionsKey)
	if err != nil {
		return err
	}
	kept := sessions[:0]
	for _, s := range sessions {
		if s.Token != token {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(sessions) {
		return nil
	}
	return saveList(ctx, a.store, SessionsKey, kept)
}

// RequestReset issues a single-use password reset token for email
func (a *Accounts) RequestReset(ctx context.Context, email string) (model.ResetToken, error) {
	email = validate.NormalizeEmail(email)

	a.mu.Lock()
	defer a.mu.Unlock()

	users, err := loadList[userRecord](ctx, a.store, UsersKey)
	if err != nil {
		return model.ResetToken{}, err
	}
	if findUser(users, email) < 0 {
		return model.ResetToken{}, ErrUnknownAccount
	}

	token, err := newToken()
	if err != nil {
		return model.ResetToken{}, err
	}
	now := a.now()
	reset := model.ResetToken{
		Email:     email,
		Token:     token,
		ExpiresAt: now.Add(ResetTTL),
		CreatedAt: now,
	}

	resets, err := loadList[model.ResetToken](ctx, a.store, ResetsKey)
	if err != nil {
		return model.ResetToken{}, err
	}
	live := resets[:0]
	for _, r := range resets {
		if !r.Used && !r.IsExpired(now) {
			live = append(live, r)
		}
	}
	live = append(live, reset)
	if err := saveList(ctx, a.store, ResetsKey, live); err != nil {
		return model.ResetToken{}, err
	}

	a.log.Info("Password reset requested", logger.F("email", email))
	return reset, nil
}

// ConfirmReset sets a new password using a reset token and ends every
// session of the account
func (a *Accounts) ConfirmReset(ctx context.Context, token, newPassword string) error {
	if errs := validate.Password(newPassword); len(errs) > 0 {
		return errs
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	resets, err := loadList[model.ResetToken](ctx, a.store, ResetsKey)
	if err != nil {
		return err
	}
	now := a.now()
	ri := -1
	for i := range resets {
		if resets[i].Token == token {
			ri = i
			break
		}
	}
	if ri < 0 || resets[ri].Used || resets[ri].IsExpired(now) {
		return ErrInvalidToken
	}

	users, err := loadList[userRecord](ctx, a.store, UsersKey)
	if err != nil {
		return err
	}
	ui := findUser(users, resets[ri].Email)
	if ui < 0 {
		return ErrUnknownAccount
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), a.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	users[ui].PasswordHash = string(hash)
	resets[ri].Used = true

	if err := saveList(ctx, a.store, UsersKey, users); err != nil {
		return err
	}
	if err := saveList(ctx, a.store, ResetsKey, resets); err != nil {
		return err
	}
	if err := a.dropSessions(ctx, users[ui].ID); err != nil {
		return err
	}

	a.log.Info("Password reset completed", logger.F("user_id", users[ui].ID))
	return nil
}

// Upgrade moves an account to the pro plan
func (a *Accounts) Upgrade(ctx context.Context, userID string) (model.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	users, err := loadList[userRecord](ctx, a.store, UsersKey)
	if err != nil {
		return model.User{}, err
	}
	for i := range users {
		if users[i].ID != userID {
			continue
		}
		if users[i].Plan == model.PlanPro {
			return model.User{}, ErrAlreadyPro
		}
		users[i].Plan = model.PlanPro
		if err := saveList(ctx, a.store, UsersKey, users); err != nil {
			return model.User{}, err
		}
		a.log.Info("Account upgraded", logger.F("user_id", userID))
		return users[i].user(), nil
	}
	return model.User{}, ErrUnknownAccount
}

// createSession must be called with mu held
func (a *Accounts) createSession(ctx context.Context, userID string) (model.Session, error) {
	token, err := newToken()
	if err != nil {
		return model.Session{}, err
	}
	now := a.now()
	session := model.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(SessionTTL),
		CreatedAt: now,
	}

	sessions, err := loadList[model.Session](ctx, a.store, SessionsKey)
	if err != nil {
		return model.Session{}, err
	}
	live := sessions[:0]
	for _, s := range sessions {
		if !s.IsExpired(now) {
			live = append(live, s)
		}
	}
	live = append(live, session)
	if err := saveList(ctx, a.store, SessionsKey, live); err != nil {
		return model.Session{}, err
	}
	return session, nil
}

// dropSessions must be called with mu held
func (a *Accounts) dropSessions(ctx context.Context, userID string) error {
	sessions, err := loadList[model.Session](ctx, a.store, SessionsKey)
	if err != nil {
		return err
	}
	kept := sessions[:0]
	for _, s := range sessions {
		if s.UserID != userID {
			kept = append(kept, s)
		}
	}
	return saveList(ctx, a.store, SessionsKey, kept)
}

func findUser(users []userRecord, email string) int {
	for i := range users {
		if users[i].Email == email {
			return i
		}
	}
	return -1
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func loadList[T any](ctx context.Context, store storage.Store, key string) ([]T, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func saveList[T any](ctx context.Context, store storage.Store, key string, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return store.Set(ctx, key, raw)
}
