package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/existflow/eisenhower/internal/auth"
	"github.com/existflow/eisenhower/internal/model"
	"github.com/existflow/eisenhower/internal/storage"
	"github.com/existflow/eisenhower/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newAccounts(t *testing.T) (*auth.Accounts, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	return auth.NewAccounts(storage.NewMemoryStore(),
		auth.WithAccountsClock(c.Now),
		auth.WithBcryptCost(bcrypt.MinCost),
	), c
}

func TestAccounts_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	acc, c := newAccounts(t)

	user, session, err := acc.Register(ctx, " Ada@Example.com ", "Ada", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, model.PlanFree, user.Plan)
	assert.Equal(t, c.Now(), user.CreatedAt)
	assert.Len(t, session.Token, 64)
	assert.Equal(t, c.Now().Add(auth.SessionTTL), session.ExpiresAt)

	c.t = c.t.Add(time.Hour)
	again, _, err := acc.Login(ctx, "ADA@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	require.NotNil(t, again.LastLogin)
	assert.Equal(t, c.Now(), *again.LastLogin)
}

func TestAccounts_RegisterErrors(t *testing.T) {
	ctx := context.Background()
	acc, _ := newAccounts(t)
	_, _, err := acc.Register(ctx, "ada@example.com", "Ada", "password123")
	require.NoError(t, err)

	_, _, err = acc.Register(ctx, "ADA@example.com", "Other", "password456")
	assert.ErrorIs(t, err, auth.ErrEmailTaken)

	_, _, err = acc.Register(ctx, "bob@example.com", "Bob", "short")
	var errs validate.Errors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, validate.FieldPassword)
}

func TestAccounts_LoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	acc, _ := newAccounts(t)
	_, _, err := acc.Register(ctx, "ada@example.com", "Ada", "password123")
	require.NoError(t, err)

	_, _, err = acc.Login(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, _, err = acc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAccounts_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	acc, c := newAccounts(t)
	user, session, err := acc.Register(ctx, "ada@example.com", "Ada", "password123")
	require.NoError(t, err)

	got, err := acc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	require.NoError(t, acc.Logout(ctx, session.Token))
	_, err = acc.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, session, err = acc.Login(ctx, "ada@example.com", "password123")
	require.NoError(t, err)
	c.t = c.t.Add(auth.SessionTTL + time.Second)
	_, err = acc.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = acc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAccounts_PasswordReset(t *testing.T) {
	ctx := context.Background()
	acc, _ := newAccounts(t)
	_, session, err := acc.Register(ctx, "ada@example.com", "Ada", "password123")
	require.NoError(t, err)

	_, err = acc.RequestReset(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, auth.ErrUnknownAccount)

	reset, err := acc.RequestReset(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, reset.Token)

	require.NoError(t, acc.ConfirmReset(ctx, reset.Token, "new-password"))
	assert.ErrorIs(t, acc.ConfirmReset(ctx, reset.Token, "another-one"), auth.ErrInvalidToken)

	_, err = acc.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken, "reset ends existing sessions")

	_, _, err = acc.Login(ctx, "ada@example.com", "password123")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, _, err = acc.Login(ctx, "ada@example.com", "new-password")
	assert.NoError(t, err)
}

func TestAccounts_ResetTokenExpires(t *testing.T) {
	ctx := context.Background()
	acc, c := newAccounts(t)
	_, _, err := acc.Register(ctx, "ada@example.com", "Ada", "password123")
	require.NoError(t, err)

	reset, err := acc.RequestReset(ctx, "ada@example.com")
	require.NoError(t, err)
	c.t = c.t.Add(auth.ResetTTL + time.Second)

	assert.ErrorIs(t, acc.ConfirmReset(ctx, reset.Token, "new-password"), auth.ErrInvalidToken)
}

func TestAccounts_Upgrade(t *testing.T) {
	ctx := context.Background()
	acc, _ := newAccounts(t)
	user, _, err := acc.Register(ctx, "ada@example.com", "Ada", "password123")
	require.NoError(t, err)

	up, err := acc.Upgrade(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PlanPro, up.Plan)

	_, err = acc.Upgrade(ctx, user.ID)
	assert.ErrorIs(t, err, auth.ErrAlreadyPro)

	_, err = acc.Upgrade(ctx, "missing")
	assert.ErrorIs(t, err, auth.ErrUnknownAccount)
}

func TestAccounts_PersistAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	_, _, err := auth.NewAccounts(store, auth.WithBcryptCost(bcrypt.MinCost)).
		Register(ctx, "ada@example.com", "Ada", "password123")
	require.NoError(t, err)

	_, _, err = auth.NewAccounts(store).Login(ctx, "ada@example.com", "password123")
	assert.NoError(t, err)
}

func TestLocal_Flow(t *testing.T) {
	ctx := context.Background()
	local := auth.NewLocal(storage.NewMemoryStore(), 0, auth.WithBcryptCost(bcrypt.MinCost))

	_, err := local.CurrentUser(ctx)
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)

	user, err := local.Register(ctx, "ada@example.com", "Ada", "password123")
	require.NoError(t, err)

	current, err := local.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)

	up, err := local.UpgradeAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.PlanPro, up.Plan)

	require.NoError(t, local.Logout(ctx))
	_, err = local.CurrentUser(ctx)
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)
	assert.ErrorIs(t, local.Logout(ctx), auth.ErrNotLoggedIn)
	_, err = local.UpgradeAccount(ctx)
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)

	_, err = local.Login(ctx, "ada@example.com", "password123")
	require.NoError(t, err)
	current, err = local.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.PlanPro, current.Plan)
}

func TestLocal_ResetThroughProvider(t *testing.T) {
	ctx := context.Background()
	local := auth.NewLocal(storage.NewMemoryStore(), 0, auth.WithBcryptCost(bcrypt.MinCost))
	_, err := local.Register(ctx, "ada@example.com", "Ada", "password123")
	require.NoError(t, err)

	token, err := local.ResetPassword(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NoError(t, local.ConfirmReset(ctx, token, "brand-new-pass"))

	_, err = local.CurrentUser(ctx)
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn, "the old session ended with the reset")

	_, err = local.Login(ctx, "ada@example.com", "brand-new-pass")
	assert.NoError(t, err)
}

func TestLocal_DelayHonoursContext(t *testing.T) {
	local := auth.NewLocal(storage.NewMemoryStore(), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := local.Login(ctx, "ada@example.com", "password123")
	assert.ErrorIs(t, err, context.Canceled)
}
