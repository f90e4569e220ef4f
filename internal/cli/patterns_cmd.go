// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jeranaias/compass-tui/internal/api"
	"github.com/jeranaias/compass-tui/internal/app"
	"github.com/jeranaias/compass-tui/internal/markdown"
	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/patterns"
	"github.com/jeranaias/compass-tui/internal/ui/styles"
	"github.com/jeranaias/compass-tui/internal/util"
)

// =============================================================================
// FILTER FLAGS
// =============================================================================

// filterFlags are the taxonomy filters shared by "patterns list" and
// "search".
type filterFlags struct {
	strategy string
	mvc      string
	gdpr     string
	pbd      int
	iso      int
	vuln     int
}

func (f *filterFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.strategy, "strategy", "", "privacy strategy (Minimize, Hide, ...)")
	fs.StringVar(&f.mvc, "mvc", "", "MVC component (Model, View, Controller)")
	fs.StringVar(&f.gdpr, "gdpr", "", "GDPR article number")
	fs.IntVar(&f.pbd, "pbd", 0, "Privacy-by-Design principle id")
	fs.IntVar(&f.iso, "iso", 0, "ISO phase id")
	fs.IntVar(&f.vuln, "vuln", 0, "vulnerability id")
}

// resolve turns the flags into Filters. The GDPR flag takes an article
// number, which is looked up to get the article id.
func (f *filterFlags) resolve(ctx context.Context, a *app.App) (model.Filters, error) {
	var (
		out model.Filters
		err error
	)
	set := func(key model.FilterKey, value string) {
		if err == nil {
			out, err = out.Set(key, value)
		}
	}
	set(model.FilterStrategy, f.strategy)
	set(model.FilterMVCComponent, f.mvc)
	if f.pbd > 0 {
		set(model.FilterPbd, strconv.Itoa(f.pbd))
	}
	if f.iso > 0 {
		set(model.FilterIso, strconv.Itoa(f.iso))
	}
	if f.vuln > 0 {
		set(model.FilterVulnerability, strconv.Itoa(f.vuln))
	}
	if err != nil {
		return model.Filters{}, usageError("filters", err.Error())
	}
	if f.gdpr != "" {
		art, err := a.Reference.GdprByNumber(ctx, f.gdpr)
		if err != nil {
			return model.Filters{}, err
		}
		out.GdprID = art.ID
	}
	return out, nil
}

// =============================================================================
// PATTERNS
// =============================================================================

func newPatternsCmd(rt *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "patterns",
		Aliases: []string{"pattern", "p"},
		Short:   "List, show and edit privacy patterns",
	}
	cmd.AddCommand(
		newPatternsListCmd(rt),
		newPatternsShowCmd(rt),
		newPatternsCreateCmd(rt),
		newPatternsDeleteCmd(rt),
		newPatternsStatsCmd(rt),
		newPatternsRelatedCmd(rt),
	)
	return cmd
}

func parseID(command, s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, usageError(command, fmt.Sprintf("invalid pattern id %q", s))
	}
	return id, nil
}

func newPatternsListCmd(rt *env) *cobra.Command {
	var (
		page, size int
		filters    filterFlags
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List patterns, one page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			f, err := filters.resolve(cmd.Context(), a)
			if err != nil {
				return err
			}
			if size == 0 {
				size = a.Config.Search.DefaultPageSize
			}
			p, err := a.Patterns.List(cmd.Context(), page, size, f)
			if err != nil {
				return err
			}
			return rt.emit(cmd, p, func(w io.Writer) {
				printPatternTable(w, p.Items)
				fmt.Fprintln(w, DimStyle.Render(pageSummary(p)))
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&size, "size", 0, fmt.Sprintf("page size, one of %v", model.PageSizes))
	filters.register(cmd.Flags())
	return cmd
}

// pageSummary formats "1–10 of 42 · page 1/5".
func pageSummary(p patterns.Page) string {
	if p.Total == 0 {
		return "Nessun pattern trovato."
	}
	return fmt.Sprintf("%d–%d of %d · pagina %d/%d", p.From(), p.To(), p.Total, p.Page, p.TotalPages)
}

func printPatternTable(w io.Writer, items []model.Pattern) {
	for _, p := range items {
		fmt.Fprintf(w, "%s  %s  %s\n",
			DimStyle.Render(fmt.Sprintf("%4d", p.ID)),
			ValueStyle.Render(util.TruncateRunes(p.Title, 50)),
			InfoStyle.Render(string(p.Strategy)+" · "+string(p.MVCComponent)),
		)
	}
}

func newPatternsShowCmd(rt *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one pattern with its references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("patterns show", args[0])
			if err != nil {
				return err
			}
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			p, err := a.Patterns.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return rt.emit(cmd, p, func(w io.Writer) {
				fmt.Fprint(w, renderMarkdown(patternMarkdown(p)))
			})
		},
	}
}

// patternMarkdown lays a pattern out as one markdown document.
func patternMarkdown(p *model.Pattern) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	fmt.Fprintf(&b, "**Strategia:** %s · **Componente MVC:** %s\n\n", p.Strategy, p.MVCComponent)
	for _, s := range []struct{ title, body string }{
		{"Descrizione", p.Description},
		{"Contesto", p.Context},
		{"Problema", p.Problem},
		{"Soluzione", p.Solution},
		{"Conseguenze", p.Consequences},
	} {
		if strings.TrimSpace(s.body) == "" {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.title, s.body)
	}

	var refs []string
	for _, g := range p.GdprArticles {
		refs = append(refs, fmt.Sprintf("- GDPR Art. %s: %s", g.Number, g.Title))
	}
	for _, pr := range p.PbdPrinciples {
		refs = append(refs, "- PbD: "+pr.Name)
	}
	for _, ph := range p.IsoPhases {
		refs = append(refs, "- ISO: "+ph.Name)
	}
	for _, v := range p.Vulnerabilities {
		refs = append(refs, fmt.Sprintf("- Vulnerabilità: %s (%s)", v.Name, v.Severity))
	}
	if len(refs) > 0 {
		b.WriteString("## Riferimenti\n\n")
		b.WriteString(strings.Join(refs, "\n"))
		b.WriteString("\n\n")
	}

	if len(p.Examples) > 0 {
		b.WriteString("## Esempi di implementazione\n\n")
		for _, ex := range p.Examples {
			fmt.Fprintf(&b, "### %s\n\n```%s\n%s\n```\n\n", ex.Title, ex.Language, strings.TrimRight(ex.Description, "\n"))
		}
	}
	return b.String()
}

func renderMarkdown(src string) string {
	style := markdown.StyleAuto
	if !IsStdoutTTY() {
		style = markdown.StyleNoTTY
	}
	return markdown.NewRenderer(TerminalWidth()-2, style).Render(src)
}

// =============================================================================
// CREATE / DELETE
// =============================================================================

func newPatternsCreateCmd(rt *env) *cobra.Command {
	var (
		in       model.PatternInput
		strategy string
		mvc      string
		gdpr     []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a pattern (editor or admin)",
		Example: `  compass patterns create --title "Consenso granulare" --strategy Control --mvc View \
    --description "..." --context "..." --problem "..." --solution "..." \
    --consequences "..." --gdpr 6,7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			if !a.Session.IsAuthenticated() {
				return ErrNotLoggedIn
			}
			in.Strategy = model.Strategy(strategy)
			in.MVCComponent = model.MVCComponent(mvc)
			for _, number := range gdpr {
				art, err := a.Reference.GdprByNumber(cmd.Context(), strings.TrimSpace(number))
				if err != nil {
					return &CommandError{Command: "patterns", Action: "create",
						Reason: fmt.Sprintf("Articolo GDPR %s non trovato", number), Err: err}
				}
				in.GdprIDs = append(in.GdprIDs, art.ID)
			}
			p, err := a.Patterns.Create(cmd.Context(), in)
			if err != nil {
				return formErr("create", err)
			}
			return rt.emit(cmd, p, func(w io.Writer) {
				fmt.Fprintf(w, "%s Pattern creato: #%d %s\n", SuccessStyle.Render("✓"), p.ID, p.Title)
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&in.Title, "title", "", "title")
	fs.StringVar(&strategy, "strategy", "", "privacy strategy")
	fs.StringVar(&mvc, "mvc", "", "MVC component")
	fs.StringVar(&in.Description, "description", "", "description")
	fs.StringVar(&in.Context, "context", "", "context")
	fs.StringVar(&in.Problem, "problem", "", "problem")
	fs.StringVar(&in.Solution, "solution", "", "solution")
	fs.StringVar(&in.Consequences, "consequences", "", "consequences")
	fs.StringSliceVar(&gdpr, "gdpr", nil, "GDPR article numbers")
	return cmd
}

// formErr lists field errors one per line, sorted by field.
func formErr(action string, err error) error {
	fields := fieldErrorsOf(err)
	if len(fields) == 0 {
		return err
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("  %s: %s", name, fields[name]))
	}
	return &CommandError{Command: "patterns", Action: action,
		Reason: "dati non validi\n" + strings.Join(lines, "\n"), Err: err}
}

func fieldErrorsOf(err error) map[string]string {
	var fe model.FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return api.FieldErrors(err)
}

func newPatternsDeleteCmd(rt *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("patterns delete", args[0])
			if err != nil {
				return err
			}
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			if !a.Session.IsAuthenticated() {
				return ErrNotLoggedIn
			}
			ok, err := RequireConfirmation(cmd, fmt.Sprintf("delete pattern #%d", id),
				ConfirmationOptions{ConfirmFlag: yes, JSONMode: rt.opts.jsonOut})
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.ErrOrStderr(), "Annullato.")
				return nil
			}
			if err := a.Patterns.Remove(cmd.Context(), id); err != nil {
				return err
			}
			return rt.emit(cmd, map[string]int{"deleted": id}, func(w io.Writer) {
				fmt.Fprintf(w, "%s Pattern #%d eliminato\n", SuccessStyle.Render("✓"), id)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// =============================================================================
// AGGREGATES
// =============================================================================

func newPatternsStatsCmd(rt *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Pattern counts by strategy and MVC component",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			st, err := a.Patterns.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return rt.emit(cmd, st, func(w io.Writer) {
				fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("%d pattern", st.Total)))
				fmt.Fprintln(w, SectionStyle.Render("Strategie"))
				for _, s := range model.Strategies {
					printBar(w, string(s), st.Strategies[string(s)], st.Total)
				}
				fmt.Fprintln(w, SectionStyle.Render("Componenti MVC"))
				for _, c := range model.MVCComponents {
					printBar(w, string(c), st.MVCComponents[string(c)], st.Total)
				}
			})
		},
	}
}

func printBar(w io.Writer, label string, value, total int) {
	fmt.Fprintf(w, "%s %s %s\n", LabelStyle.Render(label), InfoStyle.Render(styles.RenderBar(30, value, total)), DimStyle.Render(strconv.Itoa(value)))
}

func newPatternsRelatedCmd(rt *env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "related ID",
		Short: "Patterns related to a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("patterns related", args[0])
			if err != nil {
				return err
			}
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			items, err := a.Patterns.Related(cmd.Context(), id, limit)
			if err != nil {
				return err
			}
			return rt.emit(cmd, items, func(w io.Writer) {
				if len(items) == 0 {
					fmt.Fprintln(w, DimStyle.Render("Nessun pattern correlato."))
					return
				}
				printPatternTable(w, items)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", patterns.DefaultRelatedLimit, "maximum number of patterns")
	return cmd
}
