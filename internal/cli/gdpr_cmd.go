// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/reference"
)

func newGdprCmd(rt *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gdpr",
		Short: "Browse GDPR articles",
	}
	cmd.AddCommand(newGdprListCmd(rt), newGdprShowCmd(rt))
	return cmd
}

func newGdprListCmd(rt *env) *cobra.Command {
	var category, filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List articles grouped by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			all, err := a.Reference.GdprArticles(cmd.Context())
			if err != nil {
				return &CommandError{Command: "gdpr", Action: "list", Reason: reference.LoadErrorMessage, Err: err}
			}
			articles := reference.FilterArticles(all, category, filter)
			return rt.emit(cmd, articles, func(w io.Writer) {
				if len(articles) == 0 {
					fmt.Fprintln(w, DimStyle.Render("Nessun articolo trovato."))
					return
				}
				reference.SortByNumber(articles)
				printGroup := func(name string, group []model.GdprArticle) {
					if len(group) == 0 {
						return
					}
					fmt.Fprintln(w, SectionStyle.Render(name))
					for _, art := range group {
						fmt.Fprintf(w, "  %s %s\n", InfoStyle.Render(fmt.Sprintf("Art. %-4s", art.Number)), art.Title)
					}
				}
				for _, cat := range reference.Categories(articles) {
					printGroup(cat, reference.FilterArticles(articles, cat, ""))
				}
				var other []model.GdprArticle
				for _, art := range articles {
					if art.Category == "" {
						other = append(other, art)
					}
				}
				printGroup("Altro", other)
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only this category")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "match number, title or content")
	return cmd
}

func newGdprShowCmd(rt *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show NUMBER",
		Short: "Show an article and the patterns that implement it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			art, err := a.Reference.GdprByNumber(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res, err := a.Search.Search(cmd.Context(), "", 1, model.DefaultPageSize, model.Filters{GdprID: art.ID})
			if err != nil {
				return err
			}
			data := struct {
				Article  model.GdprArticle `json:"article"`
				Patterns []model.Pattern   `json:"patterns"`
			}{art, res.Items}
			return rt.emit(cmd, data, func(w io.Writer) {
				var b strings.Builder
				fmt.Fprintf(&b, "# Articolo %s: %s\n\n", art.Number, art.Title)
				if art.Category != "" {
					fmt.Fprintf(&b, "*%s*\n\n", art.Category)
				}
				body := art.Content
				if body == "" {
					body = art.Summary
				}
				b.WriteString(body)
				fmt.Fprint(w, renderMarkdown(b.String()))
				fmt.Fprintln(w, SectionStyle.Render(fmt.Sprintf("Pattern collegati (%d)", res.Total)))
				printPatternTable(w, res.Items)
			})
		},
	}
}
