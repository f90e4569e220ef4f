// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/jeranaias/compass-tui/internal/model"
)

func TestStrategyColorCoversEveryStrategy(t *testing.T) {
	seen := make(map[string]model.Strategy)
	for _, s := range model.Strategies {
		c := StrategyColor(s)
		if c == TextSecondary {
			t.Errorf("StrategyColor(%s) fell back to the default", s)
		}
		if prev, dup := seen[c.Dark]; dup {
			t.Errorf("%s and %s share color %s", prev, s, c.Dark)
		}
		seen[c.Dark] = s
	}
	if StrategyColor("Unknown") != TextSecondary {
		t.Error("unknown strategy should use TextSecondary")
	}
}

func TestSeverityColor(t *testing.T) {
	tests := []struct {
		severity string
		want     string
	}{
		{"High", Rose.Dark},
		{"Critical", Rose.Dark},
		{"Medium", Amber.Dark},
		{"Low", Emerald.Dark},
	}
	for _, tt := range tests {
		if got := SeverityColor(tt.severity).Dark; got != tt.want {
			t.Errorf("SeverityColor(%s) = %s, want %s", tt.severity, got, tt.want)
		}
	}
}

func TestLayoutMode(t *testing.T) {
	theme := NewTheme("dark")
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
	}
	for _, tt := range tests {
		theme.SetSize(tt.width, 30)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("width %d: mode = %v, want %v", tt.width, got, tt.want)
		}
	}
	if !theme.IsDark {
		t.Error("dark mode not forced")
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		width, value, total int
		want                string
	}{
		{10, 5, 10, "#####-----"},
		{10, 10, 10, "##########"},
		{10, 0, 10, "----------"},
		{10, 1, 100, "#---------"},
		{4, 9, 3, "####"},
		{0, 1, 1, ""},
	}
	for _, tt := range tests {
		if got := RenderBar(tt.width, tt.value, tt.total); got != tt.want {
			t.Errorf("RenderBar(%d, %d, %d) = %q, want %q", tt.width, tt.value, tt.total, got, tt.want)
		}
	}
}

func TestStatusRenderersKeepIndicator(t *testing.T) {
	if !strings.Contains(RenderError("boom"), "[X] boom") {
		t.Error("RenderError lost its indicator")
	}
	if !strings.Contains(RenderSuccess("ok"), "[OK] ok") {
		t.Error("RenderSuccess lost its indicator")
	}
}

func TestStrategyTag(t *testing.T) {
	theme := NewTheme("light")
	if got := theme.StrategyTag(""); got != "" {
		t.Errorf("StrategyTag(\"\") = %q", got)
	}
	if got := theme.StrategyTag(model.StrategyHide); !strings.Contains(got, "Hide") {
		t.Errorf("StrategyTag(Hide) = %q", got)
	}
}
