// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/search"
)

func newSearchCmd(rt *env) *cobra.Command {
	var (
		page, size int
		complete   bool
		filters    filterFlags
	)
	cmd := &cobra.Command{
		Use:   "search [QUERY...]",
		Short: "Full-text search over patterns",
		Long: `Search patterns by text, optionally narrowed by taxonomy filters.
With --complete, print title suggestions for QUERY instead.`,
		Example: `  compass search consenso
  compass search "dati personali" --strategy Minimize --gdpr 5
  compass search --complete anon`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}

			if complete {
				if !a.Search.ShouldAutocomplete(query) {
					return usageError("search", fmt.Sprintf("--complete needs at least %d characters", a.Search.Options().MinChars))
				}
				sugs := a.Search.Autocomplete(cmd.Context(), query, 0)
				return rt.emit(cmd, sugs, func(w io.Writer) {
					for _, s := range sugs {
						fmt.Fprintf(w, "%s  %s\n", DimStyle.Render(fmt.Sprintf("%4d", s.ID)), s.Text())
					}
				})
			}

			f, err := filters.resolve(cmd.Context(), a)
			if err != nil {
				return err
			}
			if query == "" && f.IsZero() {
				return usageError("search", "give a query or at least one filter")
			}
			if size == 0 {
				size = a.Config.Search.DefaultPageSize
			}
			res, err := a.Search.Search(cmd.Context(), query, page, size, f)
			if err != nil {
				return &CommandError{Command: "search", Action: "query", Reason: search.ErrorMessage, Err: err}
			}
			return rt.emit(cmd, res, func(w io.Writer) {
				printResults(w, res, a.Config.Search.ExcerptLength)
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&size, "size", 0, fmt.Sprintf("page size, one of %v", model.PageSizes))
	cmd.Flags().BoolVar(&complete, "complete", false, "print autocomplete suggestions")
	filters.register(cmd.Flags())
	return cmd
}

func printResults(w io.Writer, res search.Results, excerpt int) {
	if res.Total == 0 {
		fmt.Fprintln(w, DimStyle.Render("Nessun risultato."))
		return
	}
	mark := func(s string) string { return HighlightStyle.Render(s) }
	dim := func(s string) string { return DimStyle.Render(s) }
	for _, p := range res.Items {
		fmt.Fprintf(w, "%s  %s  %s\n",
			DimStyle.Render(fmt.Sprintf("%4d", p.ID)),
			search.HighlightFunc(p.Title, res.Query, mark, nil),
			InfoStyle.Render(string(p.Strategy)+" · "+string(p.MVCComponent)),
		)
		if text := search.Excerpt(p.Description, excerpt); text != "" {
			fmt.Fprintf(w, "      %s\n", search.HighlightFunc(text, res.Query, mark, dim))
		}
	}
	from := (res.Page-1)*res.PageSize + 1
	to := from + len(res.Items) - 1
	fmt.Fprintln(w, DimStyle.Render(fmt.Sprintf("%d–%d of %d · pagina %d/%d", from, to, res.Total, res.Page, res.TotalPages)))
}

func newTrendingCmd(rt *env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "trending",
		Short: "Most viewed patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			items, err := a.Search.Trending(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return rt.emit(cmd, items, func(w io.Writer) {
				fmt.Fprintln(w, TitleStyle.Render("Pattern in evidenza"))
				printPatternTable(w, items)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", search.DefaultTrendingLimit, "number of patterns")
	return cmd
}
