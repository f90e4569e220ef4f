// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/compass-tui/internal/model"
	"github.com/jeranaias/compass-tui/internal/ui/styles"
)

// =============================================================================
// TOASTS
// =============================================================================

func TestToastManagerNewestFirstAndCap(t *testing.T) {
	m := NewToastManager()
	for i := 0; i < maxToasts+2; i++ {
		m.AddInfo("msg " + string(rune('a'+i)))
	}
	toasts := m.Toasts()
	if len(toasts) != maxToasts {
		t.Fatalf("len = %d, want %d", len(toasts), maxToasts)
	}
	if toasts[0].Message != "msg f" {
		t.Errorf("newest = %q, want msg f", toasts[0].Message)
	}
}

func TestToastManagerDedupAndExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewToastManager()
	m.now = func() time.Time { return now }

	id := m.AddError("Cannot reach the server.")
	if again := m.AddError("Cannot reach the server."); again != id || m.Len() != 1 {
		t.Errorf("duplicate toast stacked: id %d vs %d, len %d", again, id, m.Len())
	}
	m.AddSuccess("Pattern creato")

	now = now.Add(DefaultToastDuration)
	left := m.Tick()
	if len(left) != 1 || left[0].Kind != ToastKindError {
		t.Errorf("after 4s = %+v, want only the error toast", left)
	}

	now = now.Add(ErrorToastDuration)
	if left := m.Tick(); len(left) != 0 {
		t.Errorf("after 12s = %d toasts, want 0", len(left))
	}
}

func TestToastRemove(t *testing.T) {
	m := NewToastManager()
	a := m.AddWarning("a")
	m.AddInfo("b")
	m.Remove(a)
	if m.Len() != 1 || m.Toasts()[0].Message != "b" {
		t.Errorf("toasts = %+v", m.Toasts())
	}
	m.DismissNewest()
	if m.Len() != 0 {
		t.Errorf("Len = %d, want 0", m.Len())
	}
}

func TestRenderToastShowsIndicator(t *testing.T) {
	theme := styles.NewTheme("dark")
	now := time.Now()
	out := RenderToast(theme, Toast{Message: "boom", Kind: ToastKindError, CreatedAt: now, Duration: time.Second}, 80, now)
	if !strings.Contains(out, "[X]") || !strings.Contains(out, "boom") {
		t.Errorf("RenderToast = %q", out)
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("uno due tre quattro", 7)
	if got != "uno due\ntre\nquattro" {
		t.Errorf("wrapText = %q", got)
	}
}

// =============================================================================
// PAGINATION
// =============================================================================

func TestPaginationSummary(t *testing.T) {
	tests := []struct {
		page, size, total, shown int
		want                     string
	}{
		{1, 10, 42, 10, "1–10 of 42"},
		{5, 10, 42, 2, "41–42 of 42"},
		{2, 25, 42, 17, "26–42 of 42"},
		{1, 10, 0, 0, "0 of 0"},
	}
	for _, tt := range tests {
		p := NewPagination(tt.size)
		p.Set(tt.page, tt.size, tt.total, tt.shown)
		if got := p.Summary(); got != tt.want {
			t.Errorf("Summary(%d,%d,%d) = %q, want %q", tt.page, tt.size, tt.total, got, tt.want)
		}
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func runCmd(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestPaginationKeys(t *testing.T) {
	p := NewPagination(10)
	p.Set(1, 10, 42, 10)

	cmd, used := p.Update(keyMsg("right"))
	if !used {
		t.Fatal("right not handled")
	}
	if msg, _ := runCmd(cmd).(PageChangedMsg); msg != (PageChangedMsg{Page: 2, Size: 10}) {
		t.Errorf("right = %+v", msg)
	}

	// Already on the first page.
	if cmd, _ := p.Update(keyMsg("left")); cmd != nil {
		t.Error("left on page 1 should not change page")
	}

	cmd, _ = p.Update(keyMsg("s"))
	if msg, _ := runCmd(cmd).(PageChangedMsg); msg != (PageChangedMsg{Page: 1, Size: 25}) {
		t.Errorf("size cycle = %+v", msg)
	}

	p.Set(5, 10, 42, 2)
	if cmd, _ := p.Update(keyMsg("right")); cmd != nil {
		t.Error("right on last page should not change page")
	}

	p.SetDisabled(true)
	if _, used := p.Update(keyMsg("left")); used {
		t.Error("disabled pagination consumed a key")
	}
}

func TestPaginationSizeCycleWraps(t *testing.T) {
	p := NewPagination(100)
	if got := p.nextSize(); got != 10 {
		t.Errorf("nextSize after 100 = %d, want 10", got)
	}
	if p := NewPagination(7); p.Size != model.DefaultPageSize {
		t.Errorf("invalid size not replaced: %d", p.Size)
	}
}

// =============================================================================
// MODAL
// =============================================================================

func TestModalConfirmAndCancel(t *testing.T) {
	m := NewModal(styles.NewTheme("dark"))
	m.Show("delete-7", "Eliminare il pattern?", "L'operazione non è reversibile.")
	if !m.IsVisible() || !strings.Contains(m.View(), "Eliminare il pattern?") {
		t.Fatal("modal not shown")
	}

	// Cancel is preselected.
	cmd, used := m.Update(keyMsg("enter"))
	if !used {
		t.Fatal("enter not consumed")
	}
	if msg := runCmd(cmd).(ModalResultMsg); msg.Confirmed || msg.ID != "delete-7" {
		t.Errorf("enter on default = %+v", msg)
	}
	if m.IsVisible() {
		t.Error("modal still visible")
	}

	m.Show("delete-7", "t", "b")
	m.Update(keyMsg("right"))
	cmd, _ = m.Update(keyMsg("enter"))
	if msg := runCmd(cmd).(ModalResultMsg); !msg.Confirmed {
		t.Errorf("confirm = %+v", msg)
	}

	m.Show("x", "t", "b")
	cmd, _ = m.Update(keyMsg("esc"))
	if msg := runCmd(cmd).(ModalResultMsg); msg.Confirmed {
		t.Error("esc confirmed")
	}
}

func TestModalHiddenIgnoresKeys(t *testing.T) {
	m := NewModal(styles.NewTheme("dark"))
	if _, used := m.Update(keyMsg("y")); used {
		t.Error("hidden modal consumed a key")
	}
	if m.View() != "" {
		t.Error("hidden modal rendered")
	}
}

// =============================================================================
// CODE BLOCK
// =============================================================================

func TestCodeBlockKeepsCode(t *testing.T) {
	cb := NewCodeBlock(model.Example{Title: "Hash", Language: "python", Description: "import hashlib\nhashlib.sha256(b'x')"})
	out := cb.Render(styles.NewTheme("dark"), true)
	for _, want := range []string{"Hash", "python", "hashlib", "1", "2"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}
}

func TestHighlightUnknownLanguage(t *testing.T) {
	if got := Highlight("", "no-such-lang", false); strings.TrimSpace(got) != "" {
		t.Errorf("Highlight(empty) = %q", got)
	}
}
