// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/newsletter"
)

func newNewsletterCmd(rt *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newsletter",
		Short: "Manage the newsletter subscription",
	}
	cmd.AddCommand(
		newNewsletterSubscribeCmd(rt),
		newNewsletterStatusCmd(rt),
		newNewsletterVerifyCmd(rt),
		newNewsletterUnsubscribeCmd(rt),
	)
	return cmd
}

func newNewsletterSubscribeCmd(rt *env) *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe EMAIL",
		Short: "Subscribe; a verification email follows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.Newsletter.Subscribe(cmd.Context(), args[0])
			msg := newsletter.SubscribeMessage(res, err)
			if err != nil {
				return &CommandError{Command: "newsletter", Action: "subscribe", Reason: msg, Err: err}
			}
			return rt.emit(cmd, res, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("✓"), msg)
			})
		},
	}
}

func newNewsletterVerifyCmd(rt *env) *cobra.Command {
	return &cobra.Command{
		Use:   "verify EMAIL TOKEN",
		Short: "Confirm a subscription with the token from the email",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var email, token string
			if len(args) > 0 {
				email = args[0]
			}
			if len(args) > 1 {
				token = args[1]
			}
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.Newsletter.Verify(cmd.Context(), email, token)
			msg := newsletter.VerifyMessage(res, err)
			if err != nil {
				return &CommandError{Command: "newsletter", Action: "verify", Reason: msg, Err: err}
			}
			return rt.emit(cmd, res, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("✓"), msg)
			})
		},
	}
}

// check runs the lookup step of the manage flow and turns every state but
// Confirmed into an error.
func check(cmd *cobra.Command, m *newsletter.Manage, email string) error {
	switch m.Check(cmd.Context(), email) {
	case newsletter.StateConfirmed:
		return nil
	case newsletter.StateNotFound:
		return &CommandError{Command: "newsletter", Action: "status", Reason: m.Message()}
	}
	if fe := m.FieldErrors(); len(fe) > 0 {
		return &CommandError{Command: "newsletter", Action: "status", Reason: fe.Error(), Err: fe}
	}
	return &CommandError{Command: "newsletter", Action: "status", Reason: m.Message(),
		Err: errors.New(m.State().String())}
}

func newNewsletterStatusCmd(rt *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status EMAIL",
		Short: "Show whether EMAIL is subscribed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			m := newsletter.NewManage(a.Newsletter)
			err = check(cmd, m, args[0])
			if err != nil && m.State() != newsletter.StateNotFound {
				return err
			}
			info := m.Info()
			if info == nil {
				info = &model.NewsletterStatus{Email: args[0]}
			}
			return rt.emit(cmd, info, func(w io.Writer) {
				if !info.Subscribed {
					fmt.Fprintln(w, WarningStyle.Render(m.Message()))
					return
				}
				fmt.Fprintln(w, SuccessStyle.Render(m.Message()))
				fmt.Fprintln(w, FormatKeyValue("Email", info.Email))
				fmt.Fprintln(w, FormatKeyValue("Attiva", yesNo(info.IsActive)))
				fmt.Fprintln(w, FormatKeyValue("Verificata", yesNo(info.IsVerified)))
				fmt.Fprintln(w, FormatKeyValue("Iscritto dal", info.SubscribedAt.Display()))
			})
		},
	}
}

func newNewsletterUnsubscribeCmd(rt *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "unsubscribe EMAIL",
		Short: "Cancel the subscription of EMAIL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			m := newsletter.NewManage(a.Newsletter)
			if err := check(cmd, m, args[0]); err != nil {
				return err
			}
			ok, err := RequireConfirmation(cmd, "unsubscribe "+args[0],
				ConfirmationOptions{ConfirmFlag: yes, JSONMode: rt.opts.jsonOut})
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.ErrOrStderr(), "Annullato.")
				return nil
			}
			if m.Unsubscribe(cmd.Context()) != newsletter.StateCancelled {
				return &CommandError{Command: "newsletter", Action: "unsubscribe", Reason: m.Message()}
			}
			return rt.emit(cmd, map[string]string{"unsubscribed": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("✓"), m.Message())
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "sì"
	}
	return "no"
}
