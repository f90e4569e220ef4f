// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package newsletter

import (
	"context"
	"errors"
	"sync"

	"github.com/jeranaias/compass-tui/internal/api"
	"github.com/jeranaias/compass-tui/internal/model"
)

// State is a step of the manage-subscription flow.
type State int

const (
	StateIdle State = iota
	StateChecking
	StateNotFound
	StateConfirmed
	StateCancelling
	StateCancelled
	StateError
)

var stateNames = [...]string{"idle", "checking", "not-found", "confirmed", "cancelling", "cancelled", "error"}

// String returns the state name.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// ShowsForm reports whether the email form is displayed in this state.
func (s State) ShowsForm() bool {
	return s == StateIdle || s == StateChecking || s == StateNotFound || s == StateError
}

// User-facing messages.
const (
	CheckingMessage    = "Verifica iscrizione in corso..."
	FoundMessage       = "Email trovata. Sei iscritto alla nostra newsletter."
	NotFoundMessage    = "Questa email non risulta iscritta alla newsletter."
	CheckErrorMessage  = "Si è verificato un errore durante la verifica dell'iscrizione."
	CancellingMessage  = "Cancellazione in corso..."
	CancelledMessage   = "Iscrizione cancellata con successo. Non riceverai più le nostre newsletter."
	CancelErrorMessage = "Si è verificato un errore durante la cancellazione dell'iscrizione."
	InvalidLinkMessage = "Link di verifica non valido. Mancano parametri necessari."
	VerifyErrorMessage = "Si è verificato un errore durante la verifica. Link non valido o scaduto."
	VerifiedMessage    = "Email verificata con successo! Ora sei iscritto alla newsletter."
	SubscribedMessage  = "Ti abbiamo inviato una email di verifica. Per completare l'iscrizione, segui le istruzioni contenute nel messaggio."
	SubscribeError     = "Si è verificato un errore durante l'iscrizione. Riprova più tardi."
)

// Manage drives the manage-subscription screen.
type Manage struct {
	svc *Service

	mu      sync.Mutex
	state   State
	message string
	info    *model.NewsletterStatus
	fields  model.FieldErrors
}

// NewManage creates a Manage in StateIdle.
func NewManage(svc *Service) *Manage {
	return &Manage{svc: svc}
}

// State returns the current state.
func (m *Manage) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Message returns the text shown for the current state.
func (m *Manage) Message() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.message
}

// Info returns the subscription found by Check, or nil.
func (m *Manage) Info() *model.NewsletterStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.info == nil {
		return nil
	}
	cp := *m.info
	return &cp
}

// FieldErrors returns the inline form errors of the last Check.
func (m *Manage) FieldErrors() model.FieldErrors {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fields
}

func (m *Manage) set(state State, msg string) {
	m.mu.Lock()
	m.state, m.message = state, msg
	m.mu.Unlock()
}

// Check looks up email. A malformed address stays in the current state with
// a field error and sends nothing.
func (m *Manage) Check(ctx context.Context, email string) State {
	if _, err := checkEmail(email); err != nil {
		var fe model.FieldErrors
		errors.As(err, &fe)
		m.mu.Lock()
		m.fields = fe
		m.mu.Unlock()
		return m.State()
	}

	m.mu.Lock()
	m.state, m.message, m.fields, m.info = StateChecking, CheckingMessage, nil, nil
	m.mu.Unlock()

	st, err := m.svc.Status(ctx, email)
	switch {
	case err != nil:
		m.set(StateError, CheckErrorMessage)
	case !st.Subscribed:
		m.set(StateNotFound, NotFoundMessage)
	default:
		m.mu.Lock()
		m.state, m.message, m.info = StateConfirmed, FoundMessage, &st
		m.mu.Unlock()
	}
	return m.State()
}

// Unsubscribe cancels the subscription found by Check. It is a no-op
// outside StateConfirmed.
func (m *Manage) Unsubscribe(ctx context.Context) State {
	m.mu.Lock()
	if m.state != StateConfirmed || m.info == nil {
		st := m.state
		m.mu.Unlock()
		return st
	}
	email := m.info.Email
	m.state, m.message = StateCancelling, CancellingMessage
	m.mu.Unlock()

	if _, err := m.svc.Unsubscribe(ctx, email); err != nil {
		m.set(StateError, CancelErrorMessage)
		return StateError
	}
	m.mu.Lock()
	m.state, m.message, m.info = StateCancelled, CancelledMessage, nil
	m.mu.Unlock()
	return StateCancelled
}

// Reset returns to StateIdle.
func (m *Manage) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state, m.message, m.info, m.fields = StateIdle, "", nil, nil
}

// SubscribeMessage turns a Subscribe outcome into the text shown under the
// subscription form.
func SubscribeMessage(res model.NewsletterResult, err error) string {
	switch {
	case err == nil && res.Message != "":
		return res.Message
	case err == nil:
		return SubscribedMessage
	case errors.Is(err, api.ErrNetwork), errors.Is(err, api.ErrServer):
		return SubscribeError
	}
	var fe model.FieldErrors
	if errors.As(err, &fe) {
		return fe.Error()
	}
	if msg := api.UserMessage(err); msg != "" {
		return msg
	}
	return SubscribeError
}

// VerifyMessage turns a Verify outcome into the text shown on the
// verification screen.
func VerifyMessage(res model.NewsletterResult, err error) string {
	switch {
	case err == nil && res.Message != "":
		return res.Message
	case err == nil:
		return VerifiedMessage
	}
	var fe model.FieldErrors
	if errors.As(err, &fe) {
		return InvalidLinkMessage
	}
	if errors.Is(err, api.ErrValidation) {
		return api.Detail(err)
	}
	return VerifyErrorMessage
}
