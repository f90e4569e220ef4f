// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/jeranaias/compass-tui/internal/api"
	"github.com/jeranaias/compass-tui/internal/model"
)

// Fallback messages when the backend gives no detail.
const (
	msgLoginFailed    = "Errore durante il login"
	msgRegisterFailed = "Errore durante la registrazione"
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager tracks the signed-in user.
type Manager struct {
	mu sync.RWMutex

	client *api.Client
	tokens api.TokenSource
	log    *zap.Logger

	user    *model.User
	lastErr string

	// Callbacks
	onChange []func(*model.User)
}

// NewManager creates a Manager. tokens is normally the client's token source.
func NewManager(client *api.Client, tokens api.TokenSource, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{client: client, tokens: tokens, log: log}
}

// OnChange registers fn to run whenever the current user changes (nil on
// logout).
func (m *Manager) OnChange(fn func(*model.User)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

func (m *Manager) setUser(u *model.User) {
	m.mu.Lock()
	m.user = u
	hooks := append([]func(*model.User){}, m.onChange...)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn(u)
	}
}

// =============================================================================
// SESSION STATE
// =============================================================================

// CurrentUser returns a copy of the signed-in user, or nil.
func (m *Manager) CurrentUser() *model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// IsAuthenticated reports whether an access token is stored. It does not
// check validity: an expired token reports true until a request fails.
func (m *Manager) IsAuthenticated() bool {
	return m.tokens != nil && m.tokens.AccessToken() != ""
}

// LastError returns the message of the most recent failed login or
// registration.
func (m *Manager) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) setLastError(msg string) {
	m.mu.Lock()
	m.lastErr = msg
	m.mu.Unlock()
}

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

// LoginResult is the outcome of Login.
type LoginResult struct {
	Success bool
	User    *model.User
	// Error is the message to show in the auth banner.
	Error string
	// Err wraps api.ErrAuth, api.ErrNetwork or a validation error.
	Err error
}

// Login posts the credentials form, stores the token pair and loads the
// current user.
func (m *Manager) Login(ctx context.Context, email, password string) LoginResult {
	m.setLastError("")

	creds := model.Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := model.Validate(creds); err != nil {
		m.setLastError(err.Error())
		return LoginResult{Error: err.Error(), Err: err}
	}

	form := url.Values{}
	form.Set("username", creds.Email)
	form.Set("password", creds.Password)

	var pair model.TokenPair
	if err := m.client.PostForm(ctx, "/auth/login", form, &pair); err != nil {
		return m.loginFailed(err)
	}
	if pair.AccessToken == "" {
		return m.loginFailed(&api.Error{Kind: api.ErrAuth, Path: "/auth/login", Detail: msgLoginFailed})
	}
	if err := m.tokens.Save(pair); err != nil {
		return m.loginFailed(fmt.Errorf("failed to store tokens: %w", err))
	}

	user, err := m.Refresh(ctx)
	if err != nil {
		_ = m.tokens.Clear()
		return m.loginFailed(err)
	}

	m.log.Info("signed in", zap.Int("user_id", user.ID), zap.String("role", string(user.Role)))
	return LoginResult{Success: true, User: user}
}

func (m *Manager) loginFailed(err error) LoginResult {
	msg := msgLoginFailed
	var apiErr *api.Error
	switch {
	case errors.As(err, &apiErr) && apiErr.Detail != "" && !errors.Is(err, api.ErrNetwork):
		msg = apiErr.Detail
	case errors.Is(err, api.ErrNetwork):
		msg = api.UserMessage(err)
	}
	m.log.Warn("sign in failed", zap.Error(err))
	m.setLastError(msg)
	return LoginResult{Error: msg, Err: err}
}

// RegisterResult is the outcome of Register.
type RegisterResult struct {
	Success bool
	User    *model.User
	Error   string
	// Fields carries per-field messages from client or backend validation.
	Fields map[string]string
	Err    error
}

// Register creates an account. It does not sign in.
func (m *Manager) Register(ctx context.Context, in model.RegisterInput) RegisterResult {
	m.setLastError("")
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	if err := model.Validate(in); err != nil {
		var fe model.FieldErrors
		errors.As(err, &fe)
		m.setLastError(err.Error())
		return RegisterResult{Error: err.Error(), Fields: fe, Err: err}
	}

	var user model.User
	if err := m.client.Post(ctx, "/auth/register", in, &user); err != nil {
		msg := api.Detail(err)
		if errors.Is(err, api.ErrNetwork) || errors.Is(err, api.ErrServer) {
			msg = msgRegisterFailed
		}
		m.setLastError(msg)
		return RegisterResult{Error: msg, Fields: api.FieldErrors(err), Err: err}
	}
	return RegisterResult{Success: true, User: &user}
}

// Logout clears the stored tokens and the in-memory user. No request is sent.
func (m *Manager) Logout() {
	if m.tokens != nil {
		if err := m.tokens.Clear(); err != nil {
			m.log.Warn("failed to clear tokens", zap.Error(err))
		}
	}
	m.setUser(nil)
}

// HandleSessionExpired is installed as the client's OnSessionExpired hook:
// tokens are already gone, so only the user is dropped.
func (m *Manager) HandleSessionExpired() {
	m.log.Info("session expired")
	m.setUser(nil)
}

// Restore loads the user for a stored token at startup. A failure other
// than a network error discards the stored session.
func (m *Manager) Restore(ctx context.Context) (*model.User, error) {
	if !m.IsAuthenticated() {
		return nil, nil
	}
	user, err := m.Refresh(ctx)
	if err != nil {
		if !errors.Is(err, api.ErrNetwork) {
			m.Logout()
		}
		return nil, err
	}
	return user, nil
}

// Refresh reloads the current user from GET /auth/me.
func (m *Manager) Refresh(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := m.client.Get(ctx, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	m.setUser(&user)
	return m.CurrentUser(), nil
}

// =============================================================================
// PROFILE AND PASSWORDS
// =============================================================================

// UpdateProfile sends PUT /users/me and replaces the current user.
func (m *Manager) UpdateProfile(ctx context.Context, in model.ProfileUpdate) (*model.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := model.Validate(in); err != nil {
		return nil, err
	}
	var user model.User
	if err := m.client.Put(ctx, "/users/me", in, &user); err != nil {
		return nil, err
	}
	m.setUser(&user)
	return m.CurrentUser(), nil
}

type messageBody struct {
	Message string `json:"message"`
}

// ChangePassword changes the signed-in user's password.
func (m *Manager) ChangePassword(ctx context.Context, in model.PasswordChange) (string, error) {
	if err := model.Validate(in); err != nil {
		return "", err
	}
	var out messageBody
	if err := m.client.Post(ctx, "/auth/change-password", in, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// RequestPasswordReset asks the backend to mail a reset token.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if !model.IsValidEmail(email) {
		return "", model.FieldErrors{"email": "Indirizzo email non valido"}
	}
	var out messageBody
	if err := m.client.Post(ctx, "/auth/request-password-reset", map[string]string{"email": email}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// ResetPassword sets a new password using a mailed reset token.
func (m *Manager) ResetPassword(ctx context.Context, in model.PasswordReset) (string, error) {
	if err := model.Validate(in); err != nil {
		return "", err
	}
	var out messageBody
	if err := m.client.Post(ctx, "/auth/reset-password", in, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// =============================================================================
// ROLES
// =============================================================================

// CanCreate reports whether the current user may create patterns.
func (m *Manager) CanCreate() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil && m.user.CanCreatePatterns()
}

// CanEdit reports whether the current user may edit or delete p.
func (m *Manager) CanEdit(p *model.Pattern) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil && p != nil && m.user.CanEditPattern(p)
}

// =============================================================================
// TOKEN EXPIRY
// =============================================================================

// TokenExpiry reads the exp claim of the stored access token. The token is
// not verified; the result is for display only.
func (m *Manager) TokenExpiry() (time.Time, bool) {
	if m.tokens == nil {
		return time.Time{}, false
	}
	return tokenExpiry(m.tokens.AccessToken())
}

func tokenExpiry(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
