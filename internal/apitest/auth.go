// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package apitest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/compass-tui/internal/model"
)

type userKey struct{}

func withUser(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, userKey{}, id)
}

func userID(r *http.Request) int {
	id, _ := r.Context().Value(userKey{}).(int)
	return id
}

// AddUser registers an account and returns the stored user.
func (s *Server) AddUser(email, username, password string, role model.Role) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(email, username, password, role)
}

func (s *Server) addUserLocked(email, username, password string, role model.Role) model.User {
	now := model.Time{Time: time.Now().UTC()}
	u := model.User{
		ID:        s.nextUser,
		Email:     email,
		Username:  username,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextUser++
	s.accounts[strings.ToLower(email)] = &account{user: u, password: password}
	return u
}

func (s *Server) accountByID(id int) *account {
	for _, a := range s.accounts {
		if a.user.ID == id {
			return a
		}
	}
	return nil
}

// SetActive enables or disables an account.
func (s *Server) SetActive(email string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[strings.ToLower(email)]; ok {
		a.user.IsActive = active
	}
}

// Password returns the current password of an account.
func (s *Server) Password(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[strings.ToLower(email)]; ok {
		return a.password
	}
	return ""
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "Richiesta non valida")
		return
	}
	email := strings.ToLower(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[email]
	if !ok || a.password != password {
		writeDetail(w, http.StatusUnauthorized, "Email o password non corrette")
		return
	}
	if !a.user.IsActive {
		writeDetail(w, http.StatusForbidden, "Account disattivato")
		return
	}
	a.user.LastLogin = model.Time{Time: time.Now().UTC()}
	writeJSON(w, http.StatusOK, s.issue(a))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in model.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Richiesta non valida")
		return
	}
	if in.Email == "" || in.Username == "" || in.Password == "" {
		fields := map[string]string{}
		if in.Email == "" {
			fields["email"] = "field required"
		}
		if in.Username == "" {
			fields["username"] = "field required"
		}
		if in.Password == "" {
			fields["password"] = "field required"
		}
		writeFieldErrors(w, fields)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[strings.ToLower(in.Email)]; exists {
		writeDetail(w, http.StatusBadRequest, "Email già registrata")
		return
	}
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Username, in.Username) {
			writeDetail(w, http.StatusBadRequest, "Username già in uso")
			return
		}
	}
	s.addUserLocked(in.Email, in.Username, in.Password, model.RoleViewer)
	a := s.accounts[strings.ToLower(in.Email)]
	a.user.FullName = in.FullName
	writeJSON(w, http.StatusCreated, a.user)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Richiesta non valida")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.refresh[body.RefreshToken]
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Refresh token non valido")
		return
	}
	a := s.accountByID(uid)
	if a == nil {
		writeDetail(w, http.StatusUnauthorized, "Utente non trovato")
		return
	}
	access := s.signAccess(a.user.ID, a.user.Email)
	s.access[access] = a.user.ID
	writeJSON(w, http.StatusOK, model.TokenPair{AccessToken: access, TokenType: "bearer"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accountByID(userID(r))
	if a == nil {
		writeDetail(w, http.StatusNotFound, "Utente non trovato")
		return
	}
	writeJSON(w, http.StatusOK, a.user)
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var in model.ProfileUpdate
	if err := decodeJSON(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Richiesta non valida")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accountByID(userID(r))
	if a == nil {
		writeDetail(w, http.StatusNotFound, "Utente non trovato")
		return
	}
	if in.FullName != "" {
		a.user.FullName = in.FullName
	}
	if in.Bio != "" {
		a.user.Bio = in.Bio
	}
	if in.AvatarURL != "" {
		a.user.AvatarURL = in.AvatarURL
	}
	if in.Email != "" && !strings.EqualFold(in.Email, a.user.Email) {
		if _, taken := s.accounts[strings.ToLower(in.Email)]; taken {
			writeDetail(w, http.StatusBadRequest, "Email già registrata")
			return
		}
		delete(s.accounts, strings.ToLower(a.user.Email))
		a.user.Email = in.Email
		s.accounts[strings.ToLower(in.Email)] = a
	}
	a.user.UpdatedAt = model.Time{Time: time.Now().UTC()}
	writeJSON(w, http.StatusOK, a.user)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var in model.PasswordChange
	if err := decodeJSON(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Richiesta non valida")
		return
	}
	if in.NewPassword != in.ConfirmPassword {
		writeDetail(w, http.StatusBadRequest, "Le password non corrispondono")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accountByID(userID(r))
	if a == nil || a.password != in.CurrentPassword {
		writeDetail(w, http.StatusBadRequest, "Password attuale non corretta")
		return
	}
	a.password = in.NewPassword
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password aggiornata con successo"})
}

func (s *Server) handleRequestReset(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	_ = decodeJSON(r, &in)
	// The backend answers the same way whether or not the email exists.
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Se l'email è registrata, riceverai le istruzioni per reimpostare la password",
	})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var in model.PasswordReset
	if err := decodeJSON(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Richiesta non valida")
		return
	}
	if in.NewPassword != in.ConfirmPassword {
		writeDetail(w, http.StatusBadRequest, "Le password non corrispondono")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if in.Token != s.resetCode {
		writeDetail(w, http.StatusBadRequest, "Token non valido o scaduto")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reimpostata con successo"})
}
