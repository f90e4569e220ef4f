// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"io"
	"time"

	"github.com/spf13/cobra"
)

// JSONResponse is the envelope printed by --json.
type JSONResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Error     *string     `json:"error"`
	Timestamp string      `json:"timestamp"`
	Command   string      `json:"command,omitempty"`
}

// NewJSONResponse creates a successful response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a failed response carrying the user-facing
// message of err.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	msg := Message(err)
	return &JSONResponse{
		Success:   false,
		Error:     &msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes r, indented, to w.
func (r *JSONResponse) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// emit prints data as a JSON envelope in --json mode and runs text
// otherwise.
func (r *env) emit(cmd *cobra.Command, data interface{}, text func(w io.Writer)) error {
	if r.opts.jsonOut {
		return NewJSONResponse(cmd.CommandPath(), data).Write(cmd.OutOrStdout())
	}
	text(cmd.OutOrStdout())
	return nil
}
