// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Role is the account role assigned by the backend.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// DisplayName returns the label shown in the user menu.
func (r Role) DisplayName() string {
	switch r {
	case RoleAdmin:
		return "Amministratore"
	case RoleEditor:
		return "Editor"
	case RoleViewer:
		return "Visualizzatore"
	default:
		return string(r)
	}
}

// User is the authenticated account as returned by /auth/me.
type User struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FullName  string `json:"full_name,omitempty"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      Role   `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt Time   `json:"created_at"`
	UpdatedAt Time   `json:"updated_at"`
	LastLogin Time   `json:"last_login"`
}

// DisplayName prefers the full name and falls back to the username.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// CanCreatePatterns reports whether the role may author patterns.
func (u *User) CanCreatePatterns() bool {
	return u != nil && (u.Role == RoleAdmin || u.Role == RoleEditor)
}

// CanEditPattern reports whether edit affordances should be shown for p.
// Editors are limited to their own patterns. This only drives what the UI
// offers; the backend re-checks every mutation.
func (u *User) CanEditPattern(p *Pattern) bool {
	if u == nil || p == nil {
		return false
	}
	switch u.Role {
	case RoleAdmin:
		return true
	case RoleEditor:
		return p.CreatedByID != nil && *p.CreatedByID == u.ID
	default:
		return false
	}
}

// ProfileUpdate is the payload of PUT /users/me. Empty fields are omitted.
type ProfileUpdate struct {
	FullName  string `json:"full_name,omitempty"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Email     string `json:"email,omitempty" validate:"omitempty,mailaddr"`
}

// RegisterInput is the payload of POST /auth/register.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,mailaddr"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,password"`
	FullName string `json:"full_name,omitempty"`
}

// Credentials are the fields of the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,mailaddr"`
	Password string `json:"password" validate:"required"`
}

// PasswordChange is the payload of POST /auth/change-password.
type PasswordChange struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// PasswordReset is the payload of POST /auth/reset-password.
type PasswordReset struct {
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// TokenPair is the body of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
}
