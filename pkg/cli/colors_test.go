/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cli

import (
	"bytes"
	"strings"
	"testing"

	"craftwire/internal/chat"
)

func TestSetColorsEnabled(t *testing.T) {
	original := colorsEnabled
	defer SetColorsEnabled(original)

	SetColorsEnabled(false)
	if ColorsEnabled() {
		t.Error("Expected colors to be disabled")
	}

	SetColorsEnabled(true)
	if !ColorsEnabled() {
		t.Error("Expected colors to be enabled")
	}
}

func TestColorize(t *testing.T) {
	original := colorsEnabled
	defer SetColorsEnabled(original)

	SetColorsEnabled(true)
	if got, want := colorize(Red, "test"), Red+"test"+Reset; got != want {
		t.Errorf("colorize = %q, want %q", got, want)
	}
	if got := colorize("", "test"); got != "test" {
		t.Errorf("empty color should not wrap, got %q", got)
	}

	SetColorsEnabled(false)
	if got := colorize(Red, "test"); got != "test" {
		t.Errorf("Expected 'test' without colors, got '%s'", got)
	}
}

// captureOutput swaps Stdout and Stderr for buffers while f runs.
func captureOutput(t *testing.T, f func()) (stdout, stderr string) {
	t.Helper()
	oldOut, oldErr, oldColors := Stdout, Stderr, colorsEnabled
	var out, errOut bytes.Buffer
	Stdout, Stderr = &out, &errOut
	SetColorsEnabled(false)
	defer func() {
		Stdout, Stderr = oldOut, oldErr
		SetColorsEnabled(oldColors)
	}()
	f()
	return out.String(), errOut.String()
}

func TestMessages(t *testing.T) {
	tests := []struct {
		name       string
		fn         func()
		wantStdout string
		wantStderr string
	}{
		{"success", func() { Success("test message %s", "arg") }, IconSuccess + " test message arg\n", ""},
		{"info", func() { Info("info message") }, IconInfo + " info message\n", ""},
		{"warning", func() { Warning("warning %d", 2) }, IconWarning + " warning 2\n", ""},
		{"error", func() { Error("failed: %v", "boom") }, "", IconError + " failed: boom\n"},
		{"error with hint", func() { ErrorWithHint("refused", "is the server running?") }, "",
			IconError + " refused\n  " + IconArrow + " Hint: is the server running?\n"},
		{"key value", func() { KeyValue("Version", "1.19.2") }, "  Version: 1.19.2\n", ""},
		{"header", func() { Header("Server status") }, "Server status\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr := captureOutput(t, tt.fn)
			if stdout != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout, tt.wantStdout)
			}
			if stderr != tt.wantStderr {
				t.Errorf("stderr = %q, want %q", stderr, tt.wantStderr)
			}
		})
	}
}

func TestSeparator(t *testing.T) {
	stdout, _ := captureOutput(t, Separator)
	if got := strings.Count(stdout, "─"); got != 40 {
		t.Errorf("separator has %d runes, want 40", got)
	}
}

func TestIndent(t *testing.T) {
	if got, want := Indent("a\nb", 2), "  a\n  b"; got != want {
		t.Errorf("Indent = %q, want %q", got, want)
	}
}

func TestRenderChat(t *testing.T) {
	original := colorsEnabled
	defer SetColorsEnabled(original)

	msg := chat.Message{
		chat.Text("Your IP is ").WithColor("red"),
		chat.Text("10.0.0.1").WithColor("white").WithBold(true),
		{
			Text:  "parent ",
			Color: "gold",
			Extra: []chat.Component{
				chat.Text("child").WithItalic(true),
				chat.Text(" plain").WithColor("no_such_color"),
			},
		},
	}

	SetColorsEnabled(false)
	if got, want := RenderChat(msg), "Your IP is 10.0.0.1parent child plain"; got != want {
		t.Errorf("RenderChat without colors = %q, want %q", got, want)
	}

	SetColorsEnabled(true)
	want := BrightRed + "Your IP is " + Reset +
		BrightWhite + Bold + "10.0.0.1" + Reset +
		Yellow + "parent " + Reset +
		Yellow + Italic + "child" + Reset +
		" plain"
	if got := RenderChat(msg); got != want {
		t.Errorf("RenderChat = %q, want %q", got, want)
	}
}
