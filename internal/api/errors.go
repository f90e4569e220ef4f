// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// =============================================================================
// ERROR TAXONOMY
// =============================================================================

// Error kinds. Every error returned by Client wraps exactly one of these, so
// callers branch with errors.Is.
var (
	// ErrValidation covers 4xx responses other than 401/403/404.
	ErrValidation = errors.New("validation error")
	// ErrAuth covers 401 and 403.
	ErrAuth = errors.New("authentication error")
	// ErrNotFound covers 404.
	ErrNotFound = errors.New("not found")
	// ErrNetwork covers requests that produced no response (refused, timeout).
	ErrNetwork = errors.New("network error")
	// ErrServer covers 5xx.
	ErrServer = errors.New("server error")
)

// Error is the concrete error returned for failed requests.
type Error struct {
	Kind   error
	Status int    // 0 for network errors
	Method string
	Path   string
	Detail string
	// Fields maps a field name to its backend message for 422 payloads.
	Fields map[string]string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.Status)
	}
	if e.Method != "" {
		fmt.Fprintf(&b, " %s %s", e.Method, e.Path)
	}
	switch {
	case e.Detail != "":
		b.WriteString(": ")
		b.WriteString(e.Detail)
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// kindForStatus maps an HTTP status to its taxonomy sentinel.
func kindForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrAuth
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= 500:
		return ErrServer
	default:
		return ErrValidation
	}
}

// newStatusError builds an *Error from a non-2xx response body.
func newStatusError(method, path string, status int, body []byte) *Error {
	detail, fields := parseDetail(body)
	if detail == "" {
		detail = http.StatusText(status)
	}
	return &Error{
		Kind:   kindForStatus(status),
		Status: status,
		Method: method,
		Path:   path,
		Detail: detail,
		Fields: fields,
	}
}

// parseDetail understands FastAPI's two error shapes:
//
//	{"detail": "Email già registrata"}
//	{"detail": [{"loc": ["body", "title"], "msg": "field required"}]}
//
// plus the {"message": "..."} envelope of the response formatter.
func parseDetail(body []byte) (string, map[string]string) {
	if !gjson.ValidBytes(body) {
		return strings.TrimSpace(string(body)), nil
	}
	detail := gjson.GetBytes(body, "detail")
	switch {
	case detail.Type == gjson.String:
		return detail.String(), nil
	case detail.IsArray():
		fields := make(map[string]string)
		var msgs []string
		detail.ForEach(func(_, item gjson.Result) bool {
			msg := item.Get("msg").String()
			if msg == "" {
				return true
			}
			msgs = append(msgs, msg)
			if name := fieldName(item.Get("loc")); name != "" {
				if _, dup := fields[name]; !dup {
					fields[name] = msg
				}
			}
			return true
		})
		if len(fields) == 0 {
			fields = nil
		}
		return strings.Join(msgs, "; "), fields
	}
	if msg := gjson.GetBytes(body, "message"); msg.Type == gjson.String {
		return msg.String(), nil
	}
	if msg := gjson.GetBytes(body, "error.message"); msg.Type == gjson.String {
		return msg.String(), nil
	}
	return "", nil
}

// fieldName picks the last string element of a FastAPI loc path, skipping
// the "body"/"query" prefix.
func fieldName(loc gjson.Result) string {
	var name string
	loc.ForEach(func(_, part gjson.Result) bool {
		if part.Type == gjson.String {
			switch part.String() {
			case "body", "query", "path":
			default:
				name = part.String()
			}
		}
		return true
	})
	return name
}

// =============================================================================
// HELPERS
// =============================================================================

// IsCanceled reports whether err is the result of the caller cancelling the
// request (superseded autocomplete, closed screen).
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Status returns the HTTP status carried by err, or 0.
func Status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// Detail returns the backend detail message carried by err, or err.Error().
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Detail != "" {
		return e.Detail
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// FieldErrors returns the per-field messages carried by err (may be nil).
func FieldErrors(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// UserMessage turns err into the one-line text shown in toasts.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNetwork):
		return "Cannot reach the server."
	case errors.Is(err, ErrServer):
		return "Server error. Please try again later."
	case errors.Is(err, ErrAuth), errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound):
		if fields := FieldErrors(err); len(fields) > 0 {
			keys := make([]string, 0, len(fields))
			for k := range fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			parts := make([]string, 0, len(keys))
			for _, k := range keys {
				parts = append(parts, k+": "+fields[k])
			}
			return strings.Join(parts, "; ")
		}
		return Detail(err)
	default:
		return "An error occurred during the request."
	}
}
