// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/compass-tui/internal/assistant"
	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/ui/components"
	"github.com/jeranaias/compass-tui/internal/ui/router"
	"github.com/jeranaias/compass-tui/internal/ui/styles"
)

// =============================================================================
// CHAT
// =============================================================================

const clearChatModal = "clear-chat"

type chatReplyMsg struct {
	reply model.ChatMessage
	err   error
}

type chatSuggestDueMsg struct {
	partial string
}

type chatSuggestionsMsg struct {
	partial     string
	suggestions []model.PatternSuggestion
}

type chatExportedMsg struct {
	path string
	err  error
}

type chatScreen struct {
	base
	input       textinput.Model
	vp          viewport.Model
	spinner     components.Spinner
	modal       *components.Modal
	suggestions []model.PatternSuggestion
	sugCur      int
}

func newChatScreen(e *env) *chatScreen {
	in := textinput.New()
	in.Placeholder = "Chiedi qualcosa su privacy pattern o GDPR..."
	in.Prompt = "> "
	in.CharLimit = 2000
	in.Focus()
	sp := components.NewSpinner(styles.DotsSpinner)
	sp.SetMessage("L'assistente sta scrivendo")
	return &chatScreen{
		base:    base{env: e},
		input:   in,
		vp:      viewport.New(80, 20),
		spinner: sp,
		modal:   components.NewModal(e.theme),
		sugCur:  -1,
	}
}

func (s *chatScreen) Init() tea.Cmd {
	s.refresh()
	return textinput.Blink
}

func (s *chatScreen) SetSize(width, height int) {
	s.base.SetSize(width, height)
	s.input.Width = width - 4
	s.modal.SetSize(width, height)
	s.layout()
}

func (s *chatScreen) layout() {
	s.vp.Width = s.width
	h := s.height - 4 - len(s.suggestions)
	if h < 3 {
		h = 3
	}
	s.vp.Height = h
	s.refresh()
}

func (s *chatScreen) CapturesInput() bool { return true }

func (s *chatScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	if cmd, used := s.modal.Update(msg); used {
		return s, cmd
	}
	switch msg := msg.(type) {
	case components.ModalResultMsg:
		if msg.ID == clearChatModal && msg.Confirmed {
			s.env.Assistant.Clear(func() bool { return true })
			s.refresh()
			return s, toast(components.ToastKindInfo, "Conversazione cancellata")
		}
		return s, nil

	case chatReplyMsg:
		if !s.env.Assistant.Waiting() {
			s.spinner.Stop()
		}
		s.refresh()
		return s, nil

	case chatSuggestDueMsg:
		if msg.partial != s.input.Value() {
			return s, nil
		}
		ctx, sess := s.env.ctx(), s.env.Assistant
		return s, func() tea.Msg {
			return chatSuggestionsMsg{partial: msg.partial, suggestions: sess.Suggestions(ctx, msg.partial)}
		}

	case chatSuggestionsMsg:
		if msg.partial == s.input.Value() {
			s.suggestions, s.sugCur = msg.suggestions, -1
			s.layout()
		}
		return s, nil

	case chatExportedMsg:
		if msg.err != nil {
			return s, toast(components.ToastKindError, "Esportazione non riuscita: "+msg.err.Error())
		}
		return s, toast(components.ToastKindSuccess, "Conversazione esportata in "+msg.path)

	case tea.KeyMsg:
		if cmd, handled := s.handleKey(msg); handled {
			return s, cmd
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	cmds = append(cmds, cmd)
	if _, isKey := msg.(tea.KeyMsg); !isKey {
		s.vp, cmd = s.vp.Update(msg)
		cmds = append(cmds, cmd)
	}
	s.input, cmd = s.input.Update(msg)
	cmds = append(cmds, cmd)
	return s, tea.Batch(cmds...)
}

func (s *chatScreen) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "esc":
		if len(s.suggestions) > 0 {
			s.clearSuggestions()
			return nil, true
		}
		return back, true
	case "enter":
		if s.sugCur >= 0 && s.sugCur < len(s.suggestions) {
			s.env.Assistant.SelectSuggestion(s.suggestions[s.sugCur])
			s.input.Reset()
			s.clearSuggestions()
			s.refresh()
			return nil, true
		}
		return s.send(), true
	case "down":
		if len(s.suggestions) > 0 {
			s.sugCur = min(s.sugCur+1, len(s.suggestions)-1)
			return nil, true
		}
	case "up":
		if s.sugCur >= 0 {
			s.sugCur--
			return nil, true
		}
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		s.vp, cmd = s.vp.Update(msg)
		return cmd, true
	case "ctrl+l":
		s.modal.SetLabels("Cancella", "Annulla")
		s.modal.Show(clearChatModal, "Cancellare la conversazione?", "La cronologia della chat verrà eliminata.")
		return nil, true
	case "ctrl+e":
		return s.export(assistant.FormatMarkdown), true
	case "ctrl+x":
		return s.export(assistant.FormatHTML), true
	case "ctrl+o":
		return s.openSource(), true
	}

	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	after := s.input.Value()
	if after == before {
		return cmd, true
	}
	if !s.env.Assistant.ShouldSuggest(after) {
		s.env.Assistant.Debouncer().Cancel()
		s.clearSuggestions()
		return cmd, true
	}
	return tea.Batch(cmd, s.env.Assistant.Debouncer().Cmd(chatSuggestDueMsg{partial: after})), true
}

func (s *chatScreen) clearSuggestions() {
	if len(s.suggestions) == 0 {
		return
	}
	s.suggestions, s.sugCur = nil, -1
	s.layout()
}

// send appends the user message right away and fetches the reply.
func (s *chatScreen) send() tea.Cmd {
	text := strings.TrimSpace(s.input.Value())
	p, err := s.env.Assistant.Begin(text)
	if err != nil {
		return nil
	}
	s.input.Reset()
	s.env.Assistant.Debouncer().Cancel()
	s.clearSuggestions()
	s.refresh()
	ctx, sess := s.env.ctx(), s.env.Assistant
	return tea.Batch(s.spinner.Start(), func() tea.Msg {
		reply, err := sess.Reply(ctx, p)
		return chatReplyMsg{reply: reply, err: err}
	})
}

// export writes the transcript next to the working directory.
func (s *chatScreen) export(format assistant.Format) tea.Cmd {
	sess := s.env.Assistant
	return func() tea.Msg {
		name := "compass-chat-" + time.Now().Format("20060102-150405") + format.Extension()
		path, err := filepath.Abs(name)
		if err != nil {
			return chatExportedMsg{err: err}
		}
		f, err := os.Create(path)
		if err != nil {
			return chatExportedMsg{err: err}
		}
		if err := sess.Export(f, format); err != nil {
			f.Close()
			return chatExportedMsg{err: err}
		}
		return chatExportedMsg{path: path, err: f.Close()}
	}
}

// openSource follows the source link of the latest bot reply.
func (s *chatScreen) openSource() tea.Cmd {
	msgs := s.env.Assistant.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m.Sender != model.SenderBot {
			continue
		}
		switch {
		case m.Source == model.SourcePattern && m.PatternID != 0:
			return navigate(router.Path("/patterns/:id", m.PatternID))
		case m.Source == model.SourceGdpr && m.ArticleNumber != "":
			return navigate(router.Path("/gdpr/:number", m.ArticleNumber))
		}
		return nil
	}
	return nil
}

// refresh re-renders the transcript and scrolls to the bottom.
func (s *chatScreen) refresh() {
	t := s.theme()
	width := s.width - 4
	if width < 20 {
		width = 20
	}
	var b strings.Builder
	for _, m := range s.env.Assistant.Messages() {
		stamp := t.Muted.Render(m.Timestamp.Local().Format("15:04"))
		switch {
		case m.Sender == model.SenderUser:
			b.WriteString(t.UserBubble.MaxWidth(width).Render("Tu " + stamp + "\n" + m.Content))
		case m.IsError:
			b.WriteString(t.ErrorBubble.MaxWidth(width).Render(m.Content))
		default:
			body := s.env.md.Render(m.Content)
			if label := assistant.SourceLabel(m); label != "" {
				body += "\n" + t.Source.Render(label+"  (ctrl+o)")
			}
			b.WriteString(t.BotBubble.MaxWidth(width).Render("Assistente " + stamp + "\n" + body))
		}
		b.WriteString("\n\n")
	}
	s.vp.SetContent(b.String())
	s.vp.GotoBottom()
}

func (s *chatScreen) View() string {
	t := s.theme()
	if s.modal.IsVisible() {
		return s.modal.View()
	}
	var b strings.Builder
	b.WriteString(s.vp.View())
	b.WriteString("\n")
	if s.env.Assistant.Waiting() {
		b.WriteString(s.spinner.View(t))
	}
	b.WriteString("\n")
	for i, sug := range s.suggestions {
		line := fmt.Sprintf("%s  %s", sug.Title, t.Muted.Render(sug.Strategy))
		if i == s.sugCur {
			b.WriteString(t.SuggestionSelected.Render(line))
		} else {
			b.WriteString(t.Suggestion.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString(t.InputFocused.Width(s.width - 2).Render(s.input.View()))
	b.WriteString("\n")
	b.WriteString(t.Muted.Render("enter invia · ctrl+l cancella · ctrl+e esporta md · ctrl+x esporta html · pgup/pgdn scorri"))
	return b.String()
}
