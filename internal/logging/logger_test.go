// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "compass.log")

	l, cleanup, err := New(Options{Level: "debug", JSON: true, File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("pattern list loaded", zap.Int("total", 42))
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"pattern list loaded"`) || !strings.Contains(out, `"total":42`) {
		t.Errorf("log output = %s", out)
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compass.log")

	l, cleanup, err := New(Options{Level: "warn", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("hidden")
	l.Warn("shown")
	cleanup()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(string(data), "shown") {
		t.Error("warn line missing")
	}
}

func TestNew_NoSinksIsNop(t *testing.T) {
	l, cleanup, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cleanup()
	if l.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger without sinks should be a no-op")
	}
}

func TestWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compass.log")
	l, cleanup, _ := New(Options{Level: "info", File: path})

	fmt.Fprintln(Writer(l, zapcore.InfoLevel), "from io.Writer")
	cleanup()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "from io.Writer") {
		t.Errorf("log output = %s", data)
	}
}
