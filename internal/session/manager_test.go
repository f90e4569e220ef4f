// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jeranaias/compass-tui/internal/api"
	"github.com/jeranaias/compass-tui/internal/apitest"
	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/storage"
)

func newTestManager(t *testing.T) (*Manager, *apitest.Server, *storage.TokenStore) {
	t.Helper()
	srv := apitest.New(t)
	tokens := storage.NewTokenStore(storage.NewMemory(), nil)
	client := api.New(tokens, api.Options{BaseURL: srv.APIURL(), Timeout: 2 * time.Second})
	mgr := NewManager(client, tokens, nil)
	client.SetSessionExpiredHook(mgr.HandleSessionExpired)
	return mgr, srv, tokens
}

func TestLogin(t *testing.T) {
	mgr, srv, tokens := newTestManager(t)
	srv.AddUser("anna@example.com", "anna", "secret123", model.RoleEditor)

	var notified *model.User
	mgr.OnChange(func(u *model.User) { notified = u })

	res := mgr.Login(context.Background(), " anna@example.com ", "secret123")
	if !res.Success {
		t.Fatalf("Login failed: %s (%v)", res.Error, res.Err)
	}
	if res.User == nil || res.User.Username != "anna" {
		t.Errorf("User = %+v, want anna", res.User)
	}
	if !mgr.IsAuthenticated() {
		t.Error("IsAuthenticated() = false after login")
	}
	if tokens.RefreshToken() == "" {
		t.Error("refresh token not stored")
	}
	if notified == nil || notified.Email != "anna@example.com" {
		t.Errorf("OnChange got %+v", notified)
	}
	if n := srv.Calls("GET", "/api/auth/me"); n != 1 {
		t.Errorf("/auth/me calls = %d, want 1", n)
	}
	if !mgr.CanCreate() {
		t.Error("editor should be able to create")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	mgr, srv, tokens := newTestManager(t)
	srv.AddUser("anna@example.com", "anna", "secret123", model.RoleViewer)

	res := mgr.Login(context.Background(), "anna@example.com", "wrong-pass1")
	if res.Success {
		t.Fatal("Login succeeded with wrong password")
	}
	if res.Error != "Email o password non corrette" {
		t.Errorf("Error = %q, want backend detail", res.Error)
	}
	if !errors.Is(res.Err, api.ErrAuth) {
		t.Errorf("Err = %v, want ErrAuth", res.Err)
	}
	if tokens.AccessToken() != "" {
		t.Error("tokens stored after failed login")
	}
	if mgr.CurrentUser() != nil {
		t.Error("CurrentUser() != nil after failed login")
	}
	if mgr.LastError() != res.Error {
		t.Errorf("LastError() = %q", mgr.LastError())
	}
	if n := srv.Calls("POST", "/api/auth/refresh"); n != 0 {
		t.Errorf("refresh calls = %d, want 0", n)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	mgr, srv, _ := newTestManager(t)
	srv.AddUser("off@example.com", "off", "secret123", model.RoleViewer)
	srv.SetActive("off@example.com", false)

	res := mgr.Login(context.Background(), "off@example.com", "secret123")
	if res.Success || res.Error != "Account disattivato" {
		t.Errorf("Login = %+v, want Account disattivato", res)
	}
}

func TestLoginInvalidEmailSkipsRequest(t *testing.T) {
	mgr, srv, _ := newTestManager(t)

	res := mgr.Login(context.Background(), "not-an-email", "x")
	if res.Success {
		t.Fatal("Login succeeded")
	}
	var fe model.FieldErrors
	if !errors.As(res.Err, &fe) || fe["email"] == "" {
		t.Errorf("Err = %v, want email field error", res.Err)
	}
	if n := srv.TotalCalls("/api/auth"); n != 0 {
		t.Errorf("auth calls = %d, want 0", n)
	}
}

func TestLoginServerDown(t *testing.T) {
	mgr, srv, _ := newTestManager(t)
	srv.Close()

	res := mgr.Login(context.Background(), "anna@example.com", "secret123")
	if res.Success {
		t.Fatal("Login succeeded against closed server")
	}
	if !errors.Is(res.Err, api.ErrNetwork) {
		t.Errorf("Err = %v, want ErrNetwork", res.Err)
	}
	if res.Error != "Cannot reach the server." {
		t.Errorf("Error = %q", res.Error)
	}
}

func TestRegister(t *testing.T) {
	mgr, srv, tokens := newTestManager(t)
	srv.AddUser("taken@example.com", "taken", "secret123", model.RoleViewer)

	tests := []struct {
		name    string
		in      model.RegisterInput
		success bool
		errMsg  string
		field   string
	}{
		{
			name:    "ok",
			in:      model.RegisterInput{Email: "new@example.com", Username: "newbie", Password: "secret123"},
			success: true,
		},
		{
			name:   "duplicate email",
			in:     model.RegisterInput{Email: "taken@example.com", Username: "other", Password: "secret123"},
			errMsg: "Email già registrata",
		},
		{
			name:   "duplicate username",
			in:     model.RegisterInput{Email: "x@example.com", Username: "taken", Password: "secret123"},
			errMsg: "Username già in uso",
		},
		{
			name:  "weak password",
			in:    model.RegisterInput{Email: "y@example.com", Username: "yyy", Password: "short"},
			field: "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mgr.Register(context.Background(), tt.in)
			if res.Success != tt.success {
				t.Fatalf("Success = %v, want %v (%s)", res.Success, tt.success, res.Error)
			}
			if tt.errMsg != "" && res.Error != tt.errMsg {
				t.Errorf("Error = %q, want %q", res.Error, tt.errMsg)
			}
			if tt.field != "" && res.Fields[tt.field] == "" {
				t.Errorf("Fields = %v, want entry for %s", res.Fields, tt.field)
			}
		})
	}

	if tokens.AccessToken() != "" {
		t.Error("Register must not sign in")
	}
}

func TestRestore(t *testing.T) {
	mgr, srv, tokens := newTestManager(t)
	srv.AddUser("anna@example.com", "anna", "secret123", model.RoleAdmin)

	u, err := mgr.Restore(context.Background())
	if u != nil || err != nil {
		t.Fatalf("Restore without token = %v, %v", u, err)
	}

	if err := tokens.Save(srv.IssueTokens("anna@example.com")); err != nil {
		t.Fatal(err)
	}
	u, err = mgr.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if u.Role != model.RoleAdmin {
		t.Errorf("Role = %s, want admin", u.Role)
	}
}

func TestRestoreDiscardsDeadSession(t *testing.T) {
	mgr, srv, tokens := newTestManager(t)
	srv.AddUser("anna@example.com", "anna", "secret123", model.RoleViewer)
	if err := tokens.Save(srv.IssueTokens("anna@example.com")); err != nil {
		t.Fatal(err)
	}
	srv.ExpireAccessTokens()
	srv.RevokeRefreshTokens()

	if _, err := mgr.Restore(context.Background()); !errors.Is(err, api.ErrAuth) {
		t.Fatalf("Restore err = %v, want ErrAuth", err)
	}
	if mgr.IsAuthenticated() {
		t.Error("session kept after failed restore")
	}
}

func TestSessionExpiredHookDropsUser(t *testing.T) {
	mgr, srv, _ := newTestManager(t)
	srv.AddUser("anna@example.com", "anna", "secret123", model.RoleViewer)
	if res := mgr.Login(context.Background(), "anna@example.com", "secret123"); !res.Success {
		t.Fatalf("Login: %s", res.Error)
	}

	srv.ExpireAccessTokens()
	srv.RevokeRefreshTokens()
	if _, err := mgr.Refresh(context.Background()); !errors.Is(err, api.ErrAuth) {
		t.Fatalf("Refresh err = %v, want ErrAuth", err)
	}
	if mgr.CurrentUser() != nil {
		t.Error("user kept after session expiry")
	}
}

func TestLogout(t *testing.T) {
	mgr, srv, tokens := newTestManager(t)
	srv.AddUser("anna@example.com", "anna", "secret123", model.RoleViewer)
	mgr.Login(context.Background(), "anna@example.com", "secret123")

	before := srv.TotalCalls("/api")
	mgr.Logout()

	if mgr.IsAuthenticated() || tokens.RefreshToken() != "" {
		t.Error("tokens kept after logout")
	}
	if mgr.CurrentUser() != nil {
		t.Error("user kept after logout")
	}
	if srv.TotalCalls("/api") != before {
		t.Error("Logout sent a request")
	}
}

func TestPasswordFlows(t *testing.T) {
	mgr, srv, _ := newTestManager(t)
	srv.AddUser("anna@example.com", "anna", "secret123", model.RoleViewer)
	mgr.Login(context.Background(), "anna@example.com", "secret123")
	ctx := context.Background()

	_, err := mgr.ChangePassword(ctx, model.PasswordChange{
		CurrentPassword: "nope", NewPassword: "newpass99", ConfirmPassword: "newpass99",
	})
	if api.Detail(err) != "Password attuale non corretta" {
		t.Errorf("wrong current password err = %v", err)
	}

	_, err = mgr.ChangePassword(ctx, model.PasswordChange{
		CurrentPassword: "secret123", NewPassword: "newpass99", ConfirmPassword: "different1",
	})
	var fe model.FieldErrors
	if !errors.As(err, &fe) || fe["confirm_password"] == "" {
		t.Errorf("mismatch err = %v, want confirm_password field error", err)
	}

	msg, err := mgr.ChangePassword(ctx, model.PasswordChange{
		CurrentPassword: "secret123", NewPassword: "newpass99", ConfirmPassword: "newpass99",
	})
	if err != nil || msg == "" {
		t.Fatalf("ChangePassword = %q, %v", msg, err)
	}
	if srv.Password("anna@example.com") != "newpass99" {
		t.Error("password not changed on the server")
	}

	if msg, err := mgr.RequestPasswordReset(ctx, "anna@example.com"); err != nil || msg == "" {
		t.Errorf("RequestPasswordReset = %q, %v", msg, err)
	}
	if _, err := mgr.RequestPasswordReset(ctx, "bad"); err == nil {
		t.Error("RequestPasswordReset accepted invalid email")
	}

	_, err = mgr.ResetPassword(ctx, model.PasswordReset{
		Token: "wrong", NewPassword: "another9", ConfirmPassword: "another9",
	})
	if !errors.Is(err, api.ErrValidation) {
		t.Errorf("bad reset token err = %v, want ErrValidation", err)
	}
	if _, err := mgr.ResetPassword(ctx, model.PasswordReset{
		Token: srv.ResetCode(), NewPassword: "another9", ConfirmPassword: "another9",
	}); err != nil {
		t.Errorf("ResetPassword: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	mgr, srv, _ := newTestManager(t)
	srv.AddUser("anna@example.com", "anna", "secret123", model.RoleViewer)
	mgr.Login(context.Background(), "anna@example.com", "secret123")

	u, err := mgr.UpdateProfile(context.Background(), model.ProfileUpdate{FullName: "Anna Bianchi", Bio: "DPO"})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if u.FullName != "Anna Bianchi" || mgr.CurrentUser().DisplayName() != "Anna Bianchi" {
		t.Errorf("user = %+v", u)
	}
}

func TestCanEdit(t *testing.T) {
	mgr, srv, _ := newTestManager(t)
	editor := srv.AddUser("ed@example.com", "ed", "secret123", model.RoleEditor)
	mgr.Login(context.Background(), "ed@example.com", "secret123")

	own := &model.Pattern{ID: 1, CreatedByID: &editor.ID}
	otherID := editor.ID + 100
	other := &model.Pattern{ID: 2, CreatedByID: &otherID}

	if !mgr.CanEdit(own) {
		t.Error("editor cannot edit own pattern")
	}
	if mgr.CanEdit(other) {
		t.Error("editor can edit someone else's pattern")
	}
	if mgr.CanEdit(nil) {
		t.Error("CanEdit(nil) = true")
	}

	mgr.Logout()
	if mgr.CanEdit(own) || mgr.CanCreate() {
		t.Error("anonymous user gets edit affordances")
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "anna@example.com",
		"exp": exp.Unix(),
	}).SignedString([]byte("test"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(10 * time.Minute).Truncate(time.Second)
	got, ok := tokenExpiry(signedToken(t, exp))
	if !ok || !got.Equal(exp) {
		t.Errorf("tokenExpiry = %v, %v, want %v", got, ok, exp)
	}

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		if _, ok := tokenExpiry(raw); ok {
			t.Errorf("tokenExpiry(%q) ok = true", raw)
		}
	}
}
