package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/existflow/eisenhower/internal/model"
	"github.com/existflow/eisenhower/internal/storage"
	"github.com/existflow/eisenhower/internal/validate"
)

// SessionResponse is returned by the register and login endpoints
type SessionResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      model.User `json:"user"`
}

// ResetResponse is returned by the password reset endpoint
type ResetResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// ErrorResponse is the body of a failed request
type ErrorResponse struct {
	Error  string            `json:"error,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Remote is a Provider talking to the HTTP API. The session token is kept
// in the local store.
type Remote struct {
	serverURL  string
	store      storage.Store
	httpClient *http.Client
}

var _ Provider = (*Remote)(nil)

// NewRemote creates a client for the server at serverURL
func NewRemote(serverURL string, store storage.Store) *Remote {
	return &Remote{
		serverURL:  strings.TrimRight(serverURL, "/"),
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ServerURL returns the base URL of the API
func (r *Remote) ServerURL() string {
	return r.serverURL
}

// Token returns the stored session token
func (r *Remote) Token(ctx context.Context) (string, error) {
	raw, err := r.store.Get(ctx, CurrentSessionKey)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && len(raw) == 0) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (r *Remote) Register(ctx context.Context, email, name, password string) (model.User, error) {
	var resp SessionResponse
	err := r.do(ctx, http.MethodPost, "/api/v1/register", "", map[string]string{
		"email":    email,
		"name":     name,
		"password": password,
	}, &resp)
	if err != nil {
		return model.User{}, err
	}
	if err := r.store.Set(ctx, CurrentSessionKey, []byte(resp.Token)); err != nil {
		return model.User{}, err
	}
	return resp.User, nil
}

func (r *Remote) Login(ctx context.Context, email, password string) (model.User, error) {
	var resp SessionResponse
	err := r.do(ctx, http.MethodPost, "/api/v1/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return model.User{}, err
	}
	if err := r.store.Set(ctx, CurrentSessionKey, []byte(resp.Token)); err != nil {
		return model.User{}, err
	}
	return resp.User, nil
}

func (r *Remote) Logout(ctx context.Context) error {
	token, err := r.Token(ctx)
	if err != nil {
		return err
	}
	err = r.do(ctx, http.MethodPost, "/api/v1/logout", token, nil, nil)
	if err != nil && !errors.Is(err, ErrNotLoggedIn) {
		return err
	}
	return r.store.Delete(ctx, CurrentSessionKey)
}

func (r *Remote) ResetPassword(ctx context.Context, email string) (string, error) {
	var resp ResetResponse
	err := r.do(ctx, http.MethodPost, "/api/v1/password/reset", "", map[string]string{
		"email": email,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (r *Remote) ConfirmReset(ctx context.Context, token, newPassword string) error {
	return r.do(ctx, http.MethodPost, "/api/v1/password/confirm", "", map[string]string{
		"token":    token,
		"password": newPassword,
	}, nil)
}

func (r *Remote) UpgradeAccount(ctx context.Context) (model.User, error) {
	token, err := r.Token(ctx)
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := r.do(ctx, http.MethodPost, "/api/v1/upgrade", token, nil, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (r *Remote) CurrentUser(ctx context.Context) (model.User, error) {
	token, err := r.Token(ctx)
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	err = r.do(ctx, http.MethodGet, "/api/v1/me", token, nil, &user)
	if errors.Is(err, ErrNotLoggedIn) {
		_ = r.store.Delete(ctx, CurrentSessionKey)
	}
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (r *Remote) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.serverURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeError maps an API failure back onto the package errors
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	var e ErrorResponse
	_ = json.Unmarshal(raw, &e)

	if len(e.Errors) > 0 {
		return validate.Errors(e.Errors)
	}
	if resp.StatusCode == http.StatusUnauthorized && e.Error != ErrInvalidCredentials.Error() {
		return ErrNotLoggedIn
	}
	for _, known := range []error{
		ErrInvalidCredentials, ErrEmailTaken, ErrUnknownAccount,
		ErrInvalidToken, ErrAlreadyPro,
	} {
		if e.Error == known.Error() {
			return known
		}
	}
	if e.Error != "" {
		return errors.New(e.Error)
	}
	return fmt.Errorf("request failed: %s", strings.TrimSpace(string(raw)))
}
