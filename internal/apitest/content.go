// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package apitest

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jeranaias/compass-tui/internal/model"
)

// =============================================================================
// REFERENCE DATA
// =============================================================================

func (s *Server) seedReference() {
	s.gdpr = []model.GdprArticle{
		{ID: 1, Number: "5", Title: "Principi applicabili al trattamento di dati personali", Category: "Principi",
			Content: "I dati personali sono trattati in modo lecito, corretto e trasparente.", Summary: "Principi del trattamento"},
		{ID: 2, Number: "25", Title: "Protezione dei dati fin dalla progettazione e protezione per impostazione predefinita", Category: "Obblighi",
			Content: "Il titolare del trattamento mette in atto misure tecniche e organizzative adeguate.", Summary: "Privacy by design"},
		{ID: 3, Number: "32", Title: "Sicurezza del trattamento", Category: "Sicurezza",
			Content: "Il titolare e il responsabile mettono in atto misure adeguate a garantire un livello di sicurezza.", Summary: "Sicurezza"},
	}
	s.pbd = []model.PbdPrinciple{
		{ID: 1, Name: "Proattivo non reattivo", Description: "Prevenire, non correggere."},
		{ID: 2, Name: "Privacy come impostazione predefinita", Description: "Nessuna azione richiesta all'utente."},
	}
	s.iso = []model.IsoPhase{
		{ID: 1, Name: "Analisi dei requisiti", Standard: "ISO 9241-210"},
		{ID: 2, Name: "Progettazione", Standard: "ISO 9241-210"},
	}
	s.vulns = []model.Vulnerability{
		{ID: 1, Name: "Esposizione di dati sensibili", Severity: "High"},
		{ID: 2, Name: "Tracciamento non autorizzato", Severity: "Medium"},
	}
}

// SetGdprArticles replaces the GDPR article table.
func (s *Server) SetGdprArticles(items []model.GdprArticle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gdpr = items
}

func (s *Server) handleGdprList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	skip := intParam(q, "skip", 0)
	limit := intParam(q, "limit", 100)

	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.gdpr
	if skip > len(items) {
		skip = len(items)
	}
	items = items[skip:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	pages := 1
	if limit > 0 {
		pages = (len(items) + limit - 1) / limit
	}
	writeJSON(w, http.StatusOK, formatResponse(map[string]any{
		"items": items,
		"total": len(items),
		"page":  skip/max(limit, 1) + 1,
		"pages": pages,
	}))
}

func (s *Server) handleGdprByID(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.gdpr {
		if a.ID == id {
			writeJSON(w, http.StatusOK, formatResponse(a))
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{
		"status": "error", "error": "Articolo GDPR non trovato", "message": "Not Found",
	})
}

func (s *Server) handleGdprByNumber(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.gdpr {
		if a.Number == number {
			writeJSON(w, http.StatusOK, formatResponse(a))
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Articolo GDPR "+number+" non trovato")
}

func (s *Server) handlePbd(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.pbd)
}

func (s *Server) handleIso(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.iso)
}

func (s *Server) handleVulns(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.vulns)
}

// =============================================================================
// CHATBOT
// =============================================================================

// SetChatHandler installs the chatbot reply function.
func (s *Server) SetChatHandler(fn ChatHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = fn
}

// LastChat returns the last request posted to /chatbot/chat.
func (s *Server) LastChat() model.ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastChat
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Richiesta non valida")
		return
	}

	s.mu.Lock()
	s.lastChat = req
	fn := s.chat
	var match *model.Pattern
	for _, p := range s.sortedPatterns() {
		if strings.Contains(strings.ToLower(req.Message), strings.ToLower(p.Title)) {
			cp := p
			match = &cp
			break
		}
	}
	s.mu.Unlock()

	if fn != nil {
		resp, status := fn(req)
		if status >= 400 {
			writeDetail(w, status, "Errore del chatbot")
			return
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	if match != nil {
		id := match.ID
		writeJSON(w, http.StatusOK, model.ChatResponse{
			Response:     "## " + match.Title + "\n\n" + match.Description,
			Source:       "pattern",
			PatternID:    &id,
			PatternTitle: match.Title,
		})
		return
	}
	writeJSON(w, http.StatusOK, model.ChatResponse{
		Response: "Posso aiutarti con pattern di privacy e articoli del GDPR.",
		Source:   "general",
	})
}

func (s *Server) handleChatSuggestions(w http.ResponseWriter, r *http.Request) {
	term := strings.ToLower(r.URL.Query().Get("query"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.PatternSuggestion{}
	for _, p := range s.sortedPatterns() {
		if term != "" && strings.Contains(strings.ToLower(p.Title), term) {
			out = append(out, model.PatternSuggestion{
				ID:           p.ID,
				Title:        p.Title,
				Description:  p.Description,
				Strategy:     string(p.Strategy),
				MVCComponent: string(p.MVCComponent),
			})
		}
		if len(out) == 5 {
			break
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// NEWSLETTER
// =============================================================================

// VerificationToken returns the token mailed to email on subscribe.
func (s *Server) VerificationToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.subs[strings.ToLower(email)]; ok {
		return sub.token
	}
	return ""
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &in); err != nil || !model.IsValidEmail(in.Email) {
		writeFieldErrors(w, map[string]string{"email": "value is not a valid email address"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(in.Email)
	if sub, ok := s.subs[key]; ok && sub.active {
		if sub.verified {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Email già iscritta alla newsletter"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Email già registrata. Nuova email di verifica inviata."})
		return
	}
	s.subs[key] = &subscription{
		email:      in.Email,
		token:      "verify-" + strconv.Itoa(len(s.subs)+1),
		active:     true,
		subscribed: time.Now().UTC(),
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Iscrizione creata. Email di verifica inviata."})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[strings.ToLower(q.Get("email"))]
	if !ok || sub.token != q.Get("token") {
		writeDetail(w, http.StatusBadRequest, "Combinazione email/token non valida")
		return
	}
	if sub.verified {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Email già verificata"})
		return
	}
	sub.verified = true
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Email verificata con successo"})
}

func (s *Server) handleNewsletterStatus(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[strings.ToLower(email)]
	if !ok || !sub.active {
		writeJSON(w, http.StatusOK, map[string]any{"subscribed": false, "message": "Email non iscritta"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subscribed":    true,
		"email":         sub.email,
		"is_active":     sub.active,
		"is_verified":   sub.verified,
		"subscribed_at": sub.subscribed.Format(time.RFC3339),
		"message":       "Email trovata",
	})
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[strings.ToLower(email)]
	if !ok || !sub.active {
		writeDetail(w, http.StatusNotFound, "Email non trovata tra le iscrizioni")
		return
	}
	sub.active = false
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Iscrizione cancellata con successo"})
}
