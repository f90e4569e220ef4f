// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// NewsletterStatus is the body of GET /newsletter/status. A subscribed=false
// body is a regular answer, not an error.
type NewsletterStatus struct {
	Email        string `json:"email,omitempty"`
	Subscribed   bool   `json:"subscribed"`
	IsActive     bool   `json:"is_active,omitempty"`
	IsVerified   bool   `json:"is_verified,omitempty"`
	SubscribedAt Time   `json:"subscribed_at"`
	Message      string `json:"message,omitempty"`
}

// NewsletterResult is the generic body of subscribe, verify and unsubscribe.
type NewsletterResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
