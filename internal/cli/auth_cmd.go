// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jeranaias/compass-tui/internal/model"
)

func newLoginCmd(rt *env) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login [EMAIL]",
		Short: "Sign in and store the session",
		Long: `Sign in with email and password. The password is read without echo
when stdin is a terminal; --password is meant for scripts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			var email string
			if len(args) == 1 {
				email = args[0]
			} else if email, err = readLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "Email: "); err != nil {
				return err
			}
			if password == "" {
				if password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: "); err != nil {
					return err
				}
			}

			res := a.Session.Login(cmd.Context(), email, password)
			if !res.Success {
				return &CommandError{Command: "login", Action: "authenticate", Reason: res.Error, Err: res.Err}
			}
			return rt.emit(cmd, res.User, func(w io.Writer) {
				fmt.Fprintf(w, "%s Benvenuto, %s (%s)\n",
					SuccessStyle.Render("✓"), res.User.DisplayName(), res.User.Role.DisplayName())
			})
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(rt *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			a.Session.Logout()
			return rt.emit(cmd, map[string]bool{"logged_out": true}, func(w io.Writer) {
				fmt.Fprintln(w, "Disconnesso.")
			})
		},
	}
}

func newWhoamiCmd(rt *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			u := a.Session.CurrentUser()
			if u == nil {
				return ErrNotLoggedIn
			}
			return rt.emit(cmd, u, func(w io.Writer) { printUser(w, u) })
		},
	}
}

func printUser(w io.Writer, u *model.User) {
	fmt.Fprintln(w, TitleStyle.Render(u.DisplayName()))
	fmt.Fprintln(w, FormatKeyValue("Username", u.Username))
	fmt.Fprintln(w, FormatKeyValue("Email", u.Email))
	fmt.Fprintln(w, FormatKeyValue("Ruolo", u.Role.DisplayName()))
	if u.Bio != "" {
		fmt.Fprintln(w, FormatKeyValue("Bio", u.Bio))
	}
	if !u.CreatedAt.IsZero() {
		fmt.Fprintln(w, FormatKeyValue("Iscritto dal", u.CreatedAt.Display()))
	}
	if !u.LastLogin.IsZero() {
		fmt.Fprintln(w, FormatKeyValue("Ultimo accesso", u.LastLogin.Display()))
	}
}
