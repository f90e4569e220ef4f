// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package newsletter

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/compass-tui/internal/api"
	"github.com/jeranaias/compass-tui/internal/model"
)

// Service calls the newsletter endpoints.
type Service struct {
	client *api.Client
	log    *zap.Logger
}

// NewService creates a Service.
func NewService(client *api.Client, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{client: client, log: log}
}

// checkEmail trims email and rejects malformed addresses without a request.
func checkEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", model.FieldErrors{"email": "L'email è obbligatoria"}
	}
	if !model.IsValidEmail(email) {
		return "", model.FieldErrors{"email": "Indirizzo email non valido"}
	}
	return email, nil
}

func emailQuery(email string) url.Values {
	q := url.Values{}
	q.Set("email", email)
	return q
}

// Subscribe registers email and triggers the verification mail.
func (s *Service) Subscribe(ctx context.Context, email string) (model.NewsletterResult, error) {
	email, err := checkEmail(email)
	if err != nil {
		return model.NewsletterResult{}, err
	}
	var out model.NewsletterResult
	if err := s.client.Post(ctx, "/newsletter/subscribe", map[string]string{"email": email}, &out); err != nil {
		return model.NewsletterResult{}, err
	}
	s.log.Info("newsletter subscription requested")
	return out, nil
}

// Verify confirms a subscription with the mailed token.
func (s *Service) Verify(ctx context.Context, email, token string) (model.NewsletterResult, error) {
	email = strings.TrimSpace(email)
	token = strings.TrimSpace(token)
	if email == "" || token == "" {
		return model.NewsletterResult{}, model.FieldErrors{"token": InvalidLinkMessage}
	}
	q := emailQuery(email)
	q.Set("token", token)
	var out model.NewsletterResult
	err := s.client.Do(ctx, api.Request{Method: http.MethodPost, Path: "/newsletter/verify", Query: q}, &out)
	if err != nil {
		return model.NewsletterResult{}, err
	}
	return out, nil
}

// Status reports the subscription state of email.
func (s *Service) Status(ctx context.Context, email string) (model.NewsletterStatus, error) {
	email, err := checkEmail(email)
	if err != nil {
		return model.NewsletterStatus{}, err
	}
	var out model.NewsletterStatus
	if err := s.client.Get(ctx, "/newsletter/status", emailQuery(email), &out); err != nil {
		return model.NewsletterStatus{}, err
	}
	if out.Email == "" && out.Subscribed {
		out.Email = email
	}
	return out, nil
}

// Unsubscribe cancels the subscription of email.
func (s *Service) Unsubscribe(ctx context.Context, email string) (model.NewsletterResult, error) {
	email, err := checkEmail(email)
	if err != nil {
		return model.NewsletterResult{}, err
	}
	var out model.NewsletterResult
	if err := s.client.Delete(ctx, "/newsletter/unsubscribe", emailQuery(email), &out); err != nil {
		return model.NewsletterResult{}, err
	}
	s.log.Info("newsletter subscription cancelled")
	return out, nil
}
