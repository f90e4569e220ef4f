// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ConfirmationOptions carries the flags that decide whether to prompt.
type ConfirmationOptions struct {
	// ConfirmFlag is set by --yes and skips the prompt.
	ConfirmFlag bool
	// JSONMode requires ConfirmFlag; there is nobody to answer a prompt.
	JSONMode bool
}

// RequireConfirmation asks before a destructive action.
//
// Confirmation flow:
//  1. --yes proceeds without prompting
//  2. --json without --yes is an error
//  3. otherwise the user answers y/N on the command's input
func RequireConfirmation(cmd *cobra.Command, action string, opts ConfirmationOptions) (bool, error) {
	if opts.ConfirmFlag {
		return true, nil
	}
	if opts.JSONMode {
		return false, fmt.Errorf("confirmation required: use --yes with --json")
	}
	answer, err := readLine(cmd.InOrStdin(), cmd.ErrOrStderr(),
		fmt.Sprintf("Are you sure you want to %s? [y/N]: ", action))
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes" || answer == "s" || answer == "si" || answer == "sì", nil
}
