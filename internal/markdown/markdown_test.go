// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"strings"
	"testing"
)

func TestToHTMLBasic(t *testing.T) {
	got, err := ToHTML("**bold** and _it_\n\n- one\n- two")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<strong>bold</strong>", "<em>it</em>", "<li>one</li>"} {
		if !strings.Contains(got, want) {
			t.Errorf("ToHTML missing %q in %q", want, got)
		}
	}
}

func TestToHTMLStripsInjection(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		banned string
	}{
		{"script tag", "hi <script>alert(1)</script>", "<script"},
		{"img onerror", `<img src=x onerror="alert(1)">`, "onerror"},
		{"javascript link", "[x](javascript:alert(1))", "javascript:"},
		{"iframe", "<iframe src='https://evil'></iframe>", "<iframe"},
		{"style attr", `<p style="color:red">x</p>`, "style="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.src)
			if err != nil {
				t.Fatal(err)
			}
			if strings.Contains(strings.ToLower(got), tt.banned) {
				t.Errorf("ToHTML(%q) = %q still contains %q", tt.src, got, tt.banned)
			}
		})
	}
}

func TestToHTMLLinks(t *testing.T) {
	got, err := ToHTML("[docs](https://example.com/docs)")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `href="https://example.com/docs"`) {
		t.Errorf("link dropped: %q", got)
	}
	if !strings.Contains(got, "nofollow") || !strings.Contains(got, `target="_blank"`) {
		t.Errorf("link not hardened: %q", got)
	}
}

func TestToHTMLCodeLanguageClass(t *testing.T) {
	got, err := ToHTML("```python\nprint(1)\n```")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `class="language-python"`) {
		t.Errorf("language class dropped: %q", got)
	}
}

func TestSanitize(t *testing.T) {
	got := Sanitize(`<mark>x</mark><b onclick="x">y</b><code class="evil">z</code>`)
	if strings.Contains(got, "onclick") || strings.Contains(got, "evil") || strings.Contains(got, "<mark>") {
		t.Errorf("Sanitize = %q", got)
	}
}

func TestRendererNoTTY(t *testing.T) {
	r := NewRenderer(60, StyleNoTTY)
	got := r.Render("# Title\n\nSome **bold** text.")
	if !strings.Contains(got, "Title") || !strings.Contains(got, "bold") {
		t.Errorf("Render = %q", got)
	}
	if strings.Contains(got, "\x1b[") {
		t.Errorf("notty output contains escape codes: %q", got)
	}
}

func TestRendererWidthFloor(t *testing.T) {
	r := NewRenderer(5, StyleNoTTY)
	if r.Width() != 20 {
		t.Errorf("Width = %d, want 20", r.Width())
	}
	r.SetWidth(100)
	if r.Width() != 100 {
		t.Errorf("Width = %d after SetWidth", r.Width())
	}
}

func TestRendererUnknownStyleFallsBack(t *testing.T) {
	r := NewRenderer(40, "no-such-style")
	src := "plain *text*"
	if got := r.Render(src); got == "" {
		t.Error("Render returned empty output")
	}
}
