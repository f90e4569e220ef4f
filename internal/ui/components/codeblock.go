// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// CodeBlock renders an implementation example with syntax highlighting.
type CodeBlock struct {
	Title    string
	Language string
	Code     string
	MaxWidth int
}

// NewCodeBlock creates a code block for an implementation example.
func NewCodeBlock(ex model.Example) CodeBlock {
	return CodeBlock{
		Title:    ex.Title,
		Language: ex.Language,
		Code:     ex.Description,
		MaxWidth: 80,
	}
}

// Render renders the block with line numbers and a language badge.
func (c CodeBlock) Render(theme *styles.Theme, dark bool) string {
	code := strings.TrimSpace(c.Code)
	lines := strings.Split(Highlight(code, c.Language, dark), "\n")

	lineNum := theme.Muted.Width(4).Align(lipgloss.Right).MarginRight(1)
	for i, line := range lines {
		lines[i] = lineNum.Render(strconv.Itoa(i+1)) + line
	}

	var header []string
	if c.Title != "" {
		header = append(header, theme.CardTitle.Render(c.Title))
	}
	if c.Language != "" {
		header = append(header, theme.CodeLangBadge.Render(c.Language))
	}
	content := strings.Join(lines, "\n")
	if len(header) > 0 {
		content = strings.Join(header, " ") + "\n" + content
	}

	maxWidth := c.MaxWidth - 4
	if maxWidth < 20 {
		maxWidth = 20
	}
	return theme.CodeBlock.MaxWidth(maxWidth).Render(content)
}

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// Highlight applies terminal syntax highlighting. language may be empty, in
// which case chroma guesses from the content. On any failure the code is
// returned unchanged.
func Highlight(code, language string, dark bool) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	styleName := "github"
	if dark {
		styleName = "monokai"
	}
	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

// DetectLanguage guesses the language of code, or returns "".
func DetectLanguage(code string) string {
	if lexer := lexers.Analyse(code); lexer != nil {
		return lexer.Config().Name
	}
	return ""
}
