// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/compass-tui/internal/api"
	"github.com/jeranaias/compass-tui/internal/config"
	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/search"
	"github.com/jeranaias/compass-tui/internal/storage"
	"github.com/jeranaias/compass-tui/internal/util"
)

// Fixed transcript texts.
const (
	WelcomeMessage = "Ciao! Sono l'assistente virtuale di Compliance Compass. Come posso aiutarti oggi con privacy e conformità?"
	ErrorMessage   = "Si è verificato un errore nella comunicazione con il chatbot. Riprova più tardi."
)

// ErrEmptyMessage is returned when sending a blank message.
var ErrEmptyMessage = errors.New("assistant: empty message")

// Options configures a Session.
type Options struct {
	// SuggestionMinChars is the input length that enables suggestions.
	SuggestionMinChars int
	Debounce           time.Duration
}

// OptionsFromConfig maps the assistant config section onto Options.
func OptionsFromConfig(c config.AssistantConfig) Options {
	return Options{SuggestionMinChars: c.SuggestionMinChars, Debounce: c.Debounce()}
}

// Pending is a user message already in the transcript whose reply has not
// arrived yet.
type Pending struct {
	Message model.ChatMessage
	History []model.HistoryEntry
}

// =============================================================================
// SESSION
// =============================================================================

// Session is the chat transcript plus the calls that extend it. It is safe
// for concurrent use.
type Session struct {
	client *api.Client
	kv     storage.KV
	log    *zap.Logger
	opts   Options
	now    func() time.Time

	suggestSeq api.Sequence
	debouncer  *search.Debouncer

	mu       sync.RWMutex
	messages []model.ChatMessage
	lastID   int64
	waiting  int
}

// NewSession creates a Session and restores the stored transcript.
func NewSession(client *api.Client, kv storage.KV, opts Options, log *zap.Logger) *Session {
	if opts.SuggestionMinChars <= 0 {
		opts.SuggestionMinChars = 3
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		client:    client,
		kv:        kv,
		log:       log,
		opts:      opts,
		now:       time.Now,
		debouncer: search.NewDebouncer(opts.Debounce),
	}
	s.Load()
	return s
}

// Debouncer returns the debouncer used for suggestion lookups.
func (s *Session) Debouncer() *search.Debouncer {
	return s.debouncer
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []model.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ChatMessage(nil), s.messages...)
}

// Len returns the number of transcript entries.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Waiting reports whether a reply is outstanding.
func (s *Session) Waiting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.waiting > 0
}

// nextID returns a millisecond timestamp id, bumped past the last one so
// ids increase strictly. Callers hold s.mu.
func (s *Session) nextID(t time.Time) int64 {
	id := t.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// appendLocked adds msg, assigns its id and persists. Callers hold s.mu.
func (s *Session) appendLocked(msg model.ChatMessage) model.ChatMessage {
	t := s.now()
	msg.ID = s.nextID(t)
	if msg.Timestamp.IsZero() {
		msg.Timestamp = t
	}
	s.messages = append(s.messages, msg)
	s.persistLocked()
	return msg
}

func (s *Session) welcome() model.ChatMessage {
	t := s.now()
	return model.ChatMessage{ID: s.nextID(t), Sender: model.SenderBot, Content: WelcomeMessage, Timestamp: t}
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Load replaces the in-memory transcript with the stored one. A missing,
// empty or unreadable transcript becomes the welcome message alone.
func (s *Session) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
	raw, err := s.kv.Get(storage.KeyChatConversation)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		s.log.Warn("failed to read chat transcript", zap.Error(err))
	default:
		var stored []model.ChatMessage
		if jerr := json.Unmarshal([]byte(raw), &stored); jerr != nil {
			s.log.Warn("discarding corrupt chat transcript", zap.Error(jerr))
		} else {
			s.messages = stored
		}
	}

	for _, m := range s.messages {
		if m.ID > s.lastID {
			s.lastID = m.ID
		}
	}
	if len(s.messages) == 0 {
		s.messages = []model.ChatMessage{s.welcome()}
		s.persistLocked()
	}
}

// persistLocked writes the transcript. Callers hold s.mu.
func (s *Session) persistLocked() {
	data, err := json.Marshal(s.messages)
	if err != nil {
		s.log.Error("failed to encode chat transcript", zap.Error(err))
		return
	}
	if err := s.kv.Set(storage.KeyChatConversation, string(data)); err != nil {
		s.log.Warn("failed to store chat transcript", zap.Error(err))
	}
}

// =============================================================================
// SENDING
// =============================================================================

// historyLocked converts the transcript to conversation_history. Inline
// error entries are not part of the conversation. Callers hold s.mu.
func (s *Session) historyLocked() []model.HistoryEntry {
	out := make([]model.HistoryEntry, 0, len(s.messages))
	for _, m := range s.messages {
		if m.IsError {
			continue
		}
		role := "assistant"
		if m.Sender == model.SenderUser {
			role = "user"
		}
		out = append(out, model.HistoryEntry{Role: role, Content: m.Content})
	}
	return out
}

// Begin appends the user message and returns it with the history that
// precedes it.
func (s *Session) Begin(text string) (Pending, error) {
	if strings.TrimSpace(text) == "" {
		return Pending{}, ErrEmptyMessage
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.historyLocked()
	msg := s.appendLocked(model.ChatMessage{Sender: model.SenderUser, Content: text})
	s.waiting++
	return Pending{Message: msg, History: history}, nil
}

// Reply posts a pending message and appends the bot reply. On failure an
// inline error entry is appended instead and returned with the error; the
// user message stays in the transcript.
func (s *Session) Reply(ctx context.Context, p Pending) (model.ChatMessage, error) {
	req := model.ChatRequest{Message: p.Message.Content, ConversationHistory: p.History}
	if req.ConversationHistory == nil {
		req.ConversationHistory = []model.HistoryEntry{}
	}

	var resp model.ChatResponse
	err := s.client.Post(ctx, "/chatbot/chat", req, &resp)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.waiting > 0 {
		s.waiting--
	}

	if err != nil {
		s.log.Warn("chat request failed", zap.Error(err))
		entry := s.appendLocked(model.ChatMessage{
			Sender:  model.SenderBot,
			Content: ErrorMessage,
			IsError: true,
		})
		return entry, err
	}

	msg := model.ChatMessage{
		Sender:        model.SenderBot,
		Content:       resp.Response,
		Source:        resp.Source,
		PatternTitle:  resp.PatternTitle,
		ArticleNumber: resp.ArticleNumber,
	}
	if resp.PatternID != nil {
		msg.PatternID = *resp.PatternID
	}
	if resp.ArticleID != nil {
		msg.ArticleID = *resp.ArticleID
	}
	return s.appendLocked(msg), nil
}

// Send is Begin followed by Reply.
func (s *Session) Send(ctx context.Context, text string) (model.ChatMessage, error) {
	p, err := s.Begin(text)
	if err != nil {
		return model.ChatMessage{}, err
	}
	return s.Reply(ctx, p)
}

// =============================================================================
// SUGGESTIONS
// =============================================================================

// ShouldSuggest reports whether partial is long enough for suggestions.
func (s *Session) ShouldSuggest(partial string) bool {
	return util.RuneLen(strings.TrimSpace(partial)) >= s.opts.SuggestionMinChars
}

// Suggestions returns patterns matching partial. Short input, errors and
// responses overtaken by a newer call yield nil.
func (s *Session) Suggestions(ctx context.Context, partial string) []model.PatternSuggestion {
	tag := s.suggestSeq.Next()
	if !s.ShouldSuggest(partial) {
		return nil
	}
	q := url.Values{}
	q.Set("query", strings.TrimSpace(partial))

	var out []model.PatternSuggestion
	err := s.client.Get(ctx, "/chatbot/suggestions", q, &out)
	if !s.suggestSeq.Latest(tag) {
		return nil
	}
	if err != nil {
		s.log.Debug("chat suggestions failed", zap.Error(err))
		return nil
	}
	return out
}

// SuggestionsAsync debounces lookups: fn receives the suggestions for the
// last partial of a burst.
func (s *Session) SuggestionsAsync(ctx context.Context, partial string, fn func([]model.PatternSuggestion)) {
	if !s.ShouldSuggest(partial) {
		s.debouncer.Cancel()
		s.suggestSeq.Next()
		fn(nil)
		return
	}
	s.debouncer.Call(func() {
		fn(s.Suggestions(ctx, partial))
	})
}

// SelectSuggestion appends a synthetic exchange describing sug without a
// round trip.
func (s *Session) SelectSuggestion(sug model.PatternSuggestion) (user, bot model.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user = s.appendLocked(model.ChatMessage{
		Sender:  model.SenderUser,
		Content: `Mostrami informazioni sul pattern "` + sug.Title + `"`,
	})

	var b strings.Builder
	fmt.Fprintf(&b, "## Pattern: %s\n\n%s\n\n**Strategia:** %s", sug.Title, sug.Description, sug.Strategy)
	if sug.MVCComponent != "" {
		fmt.Fprintf(&b, "\n**Componente MVC:** %s", sug.MVCComponent)
	}
	bot = s.appendLocked(model.ChatMessage{
		Sender:       model.SenderBot,
		Content:      b.String(),
		Source:       model.SourcePattern,
		PatternID:    sug.ID,
		PatternTitle: sug.Title,
	})
	return user, bot
}

// =============================================================================
// CLEAR
// =============================================================================

// Clear resets the transcript to the welcome message when confirm returns
// true. A nil confirm never clears.
func (s *Session) Clear(confirm func() bool) bool {
	if confirm == nil || !confirm() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = []model.ChatMessage{s.welcome()}
	s.persistLocked()
	s.log.Info("chat transcript cleared")
	return true
}
