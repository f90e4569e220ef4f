// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/compass-tui/internal/app"
	"github.com/jeranaias/compass-tui/internal/assistant"
	"github.com/jeranaias/compass-tui/internal/config"
	"github.com/jeranaias/compass-tui/internal/model"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI whose tab completion calls complete.
func NewChatCLI(complete func(string) []string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	if complete != nil {
		line.SetCompleter(complete)
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists history with 0600 permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// COMMANDS
// =============================================================================

func newChatCmd(rt *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [MESSAGE...]",
		Short: "Talk to the pattern assistant",
		Long: `Without arguments, start an interactive session with line editing and
history; Tab completes pattern titles. With a message, send it once and print
the reply. The transcript is shared with the TUI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			if !a.Session.IsAuthenticated() {
				return ErrNotLoggedIn
			}
			if len(args) > 0 {
				reply, err := a.Assistant.Send(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				return rt.emit(cmd, reply, func(w io.Writer) { printBotMessage(w, reply) })
			}
			return runChatREPL(cmd.Context(), a, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.AddCommand(newChatExportCmd(rt), newChatClearCmd(rt))
	return cmd
}

func newChatExportCmd(rt *env) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the transcript as markdown or HTML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := assistant.ParseFormat(format)
			if err != nil {
				return usageError("chat export", err.Error())
			}
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return a.Assistant.Export(cmd.OutOrStdout(), f)
			}
			file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
			if err != nil {
				return err
			}
			if err := a.Assistant.Export(file, f); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s Conversazione esportata in %s\n", SuccessStyle.Render("✓"), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "markdown or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newChatClearCmd(rt *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Reset the transcript to the welcome message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rt.App(cmd.Context())
			if err != nil {
				return err
			}
			var promptErr error
			cleared := a.Assistant.Clear(func() bool {
				ok, err := RequireConfirmation(cmd, "clear the conversation",
					ConfirmationOptions{ConfirmFlag: yes, JSONMode: rt.opts.jsonOut})
				promptErr = err
				return ok
			})
			if promptErr != nil {
				return promptErr
			}
			return rt.emit(cmd, map[string]bool{"cleared": cleared}, func(w io.Writer) {
				if cleared {
					fmt.Fprintln(w, "Conversazione cancellata.")
				} else {
					fmt.Fprintln(w, "Annullato.")
				}
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// =============================================================================
// REPL
// =============================================================================

const chatHelp = `Comandi:
  /help              questo aiuto
  /suggest TESTO     pattern che corrispondono a TESTO
  /pick N            mostra il suggerimento N
  /history           trascrizione completa
  /export FILE       esporta (.md o .html)
  /clear             cancella la conversazione
  /quit              esci
Tab completa i titoli dei pattern.`

// repl is the state of one interactive session.
type repl struct {
	ctx  context.Context
	app  *app.App
	out  io.Writer
	errw io.Writer

	mu          sync.Mutex
	suggestions []model.PatternSuggestion
	cancel      context.CancelFunc
}

func runChatREPL(ctx context.Context, a *app.App, out, errw io.Writer) error {
	r := &repl{ctx: ctx, app: a, out: out, errw: errw}
	in := NewChatCLI(r.complete)
	defer in.Close()

	// First Ctrl+C cancels the pending request.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)
	go func() {
		for range sigs {
			r.mu.Lock()
			if r.cancel != nil {
				r.cancel()
			}
			r.mu.Unlock()
		}
	}()

	fmt.Fprintln(out, TitleStyle.Render("Assistente Compliance Compass"))
	fmt.Fprintln(out, DimStyle.Render("/help per i comandi, Ctrl+D per uscire"))
	r.printTranscript()

	for {
		input, err := in.ReadInput("tu> ")
		if err != nil {
			// Ctrl+C at the prompt or Ctrl+D
			fmt.Fprintln(out)
			return nil
		}
		input = strings.TrimSpace(input)
		switch {
		case input == "":
			continue
		case strings.HasPrefix(input, "/"):
			if !r.command(input) {
				return nil
			}
		default:
			r.send(input)
		}
	}
}

// complete feeds liner's Tab completion from the suggestion endpoint.
func (r *repl) complete(line string) []string {
	if !r.app.Assistant.ShouldSuggest(line) {
		return nil
	}
	sugs := r.app.Assistant.Suggestions(r.ctx, line)
	out := make([]string, 0, len(sugs))
	for _, s := range sugs {
		out = append(out, s.Title)
	}
	return out
}

func (r *repl) send(text string) {
	ctx, cancel := context.WithCancel(r.ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()
		cancel()
	}()

	fmt.Fprint(r.errw, DimStyle.Render("..."))
	reply, err := r.app.Assistant.Send(ctx, text)
	fmt.Fprint(r.errw, "\r   \r")
	if err != nil && errors.Is(err, context.Canceled) {
		fmt.Fprintln(r.errw, WarningStyle.Render("[Annullato]"))
		return
	}
	printBotMessage(r.out, reply)
}

// command runs a slash command and reports whether the REPL continues.
func (r *repl) command(input string) bool {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "/quit", "/q", "/exit":
		return false
	case "/help", "/h":
		fmt.Fprintln(r.out, chatHelp)
	case "/history":
		r.printTranscript()
	case "/clear", "/c":
		r.app.Assistant.Clear(func() bool { return true })
		fmt.Fprintln(r.out, "Conversazione cancellata.")
	case "/export":
		r.export(arg)
	case "/suggest":
		r.suggest(arg)
	case "/pick":
		r.pick(arg)
	default:
		fmt.Fprintf(r.errw, "%s comando sconosciuto %s, prova /help\n", ErrorStyle.Render("[Errore]"), name)
	}
	return true
}

func (r *repl) export(path string) {
	if path == "" {
		fmt.Fprintln(r.errw, "Uso: /export FILE.md|FILE.html")
		return
	}
	format := assistant.FormatMarkdown
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".html" || ext == ".htm" {
		format = assistant.FormatHTML
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err == nil {
		err = r.app.Assistant.Export(f, format)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		fmt.Fprintf(r.errw, "%s %v\n", ErrorStyle.Render("[Errore]"), err)
		return
	}
	fmt.Fprintf(r.out, "%s Esportata in %s\n", SuccessStyle.Render("✓"), path)
}

func (r *repl) suggest(text string) {
	if !r.app.Assistant.ShouldSuggest(text) {
		fmt.Fprintln(r.errw, "Scrivi almeno qualche carattere in più.")
		return
	}
	sugs := r.app.Assistant.Suggestions(r.ctx, text)
	r.mu.Lock()
	r.suggestions = sugs
	r.mu.Unlock()
	if len(sugs) == 0 {
		fmt.Fprintln(r.out, DimStyle.Render("Nessun suggerimento."))
		return
	}
	for i, s := range sugs {
		fmt.Fprintf(r.out, "%s %s %s\n", InfoStyle.Render(fmt.Sprintf("%2d.", i+1)), s.Title, DimStyle.Render(s.Strategy))
	}
	fmt.Fprintln(r.out, DimStyle.Render("/pick N per aprirne uno"))
}

func (r *repl) pick(arg string) {
	n, err := strconv.Atoi(arg)
	r.mu.Lock()
	sugs := r.suggestions
	r.mu.Unlock()
	if err != nil || n < 1 || n > len(sugs) {
		fmt.Fprintln(r.errw, "Uso: /pick N, dopo /suggest")
		return
	}
	_, bot := r.app.Assistant.SelectSuggestion(sugs[n-1])
	printBotMessage(r.out, bot)
}

func (r *repl) printTranscript() {
	for _, m := range r.app.Assistant.Messages() {
		if m.Sender == model.SenderUser {
			fmt.Fprintf(r.out, "%s %s\n", InfoStyle.Render("tu>"), m.Content)
			continue
		}
		printBotMessage(r.out, m)
	}
}

func printBotMessage(w io.Writer, m model.ChatMessage) {
	if m.IsError {
		fmt.Fprintln(w, ErrorStyle.Render(m.Content))
		return
	}
	fmt.Fprint(w, renderMarkdown(m.Content))
	if label := assistant.SourceLabel(m); label != "" {
		fmt.Fprintln(w, DimStyle.Render(label))
	}
}
