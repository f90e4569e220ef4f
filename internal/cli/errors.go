// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/jeranaias/compass-tui/internal/api"
)

// Exit codes. Every failure maps to ExitError.
const (
	ExitSuccess = 0
	ExitError   = 1
)

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // e.g. "patterns"
	Action  string // e.g. "delete"
	Reason  string // user-facing reason
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ErrNotLoggedIn is returned by commands that need a session.
var ErrNotLoggedIn = errors.New("not logged in, run 'compass login' first")

// Message returns the one-line text shown for err.
func Message(err error) string {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.Reason != "" {
		return cmdErr.Reason
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return api.UserMessage(err)
	}
	return err.Error()
}

// usageError reports bad arguments.
func usageError(command, reason string) error {
	return &CommandError{Command: command, Action: "parse", Reason: reason}
}
