// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/jeranaias/compass-tui/internal/markdown"
	"github.com/jeranaias/compass-tui/internal/model"
)

// Format is a transcript export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat accepts "markdown", "md" and "html".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md", "":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want markdown or html)", s)
}

// Extension returns the file extension for f.
func (f Format) Extension() string {
	if f == FormatHTML {
		return ".html"
	}
	return ".md"
}

const timeLayout = "2006-01-02 15:04"

func speaker(m model.ChatMessage) string {
	if m.Sender == model.SenderUser {
		return "Tu"
	}
	return "Assistente"
}

// SourceLabel returns the link hint shown under a bot reply, or "".
func SourceLabel(m model.ChatMessage) string {
	switch {
	case m.Source == model.SourcePattern && m.PatternID != 0:
		return fmt.Sprintf("Vedi pattern completo: /patterns/%d", m.PatternID)
	case m.Source == model.SourceGdpr && m.ArticleNumber != "":
		return "Vedi articolo GDPR: /gdpr/" + m.ArticleNumber
	}
	return ""
}

// Export writes the transcript to w.
func (s *Session) Export(w io.Writer, format Format) error {
	msgs := s.Messages()
	switch format {
	case FormatMarkdown:
		return exportMarkdown(w, msgs)
	case FormatHTML:
		return exportHTML(w, msgs)
	}
	return fmt.Errorf("unknown export format %q", format)
}

func exportMarkdown(w io.Writer, msgs []model.ChatMessage) error {
	var b strings.Builder
	b.WriteString("# Conversazione con l'assistente\n")
	for _, m := range msgs {
		fmt.Fprintf(&b, "\n### %s (%s)\n\n", speaker(m), m.Timestamp.Local().Format(timeLayout))
		b.WriteString(strings.TrimSpace(m.Content))
		b.WriteString("\n")
		if label := SourceLabel(m); label != "" {
			fmt.Fprintf(&b, "\n_%s_\n", label)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

var htmlDoc = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html lang="it">
<head>
<meta charset="utf-8">
<title>Conversazione con l'assistente</title>
</head>
<body>
<h1>Conversazione con l'assistente</h1>
{{- range .}}
<section class="message {{.Sender}}{{if .IsError}} error{{end}}">
<h3>{{.Speaker}} <small>{{.Time}}</small></h3>
{{.Body}}
{{- if .Source}}
<p class="source">{{.Source}}</p>
{{- end}}
</section>
{{- end}}
</body>
</html>
`))

type htmlEntry struct {
	Sender  string
	IsError bool
	Speaker string
	Time    string
	Body    template.HTML
	Source  string
}

func exportHTML(w io.Writer, msgs []model.ChatMessage) error {
	entries := make([]htmlEntry, 0, len(msgs))
	for _, m := range msgs {
		var body template.HTML
		if m.Sender == model.SenderBot {
			rendered, err := markdown.ToHTML(m.Content)
			if err != nil {
				return fmt.Errorf("failed to render message %d: %w", m.ID, err)
			}
			// ToHTML output is already sanitised.
			body = template.HTML(rendered)
		} else {
			body = template.HTML("<p>" + template.HTMLEscapeString(m.Content) + "</p>")
		}
		entries = append(entries, htmlEntry{
			Sender:  string(m.Sender),
			IsError: m.IsError,
			Speaker: speaker(m),
			Time:    m.Timestamp.Local().Format(timeLayout),
			Body:    body,
			Source:  SourceLabel(m),
		})
	}
	return htmlDoc.Execute(w, entries)
}
