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

package logging

import (
	"bytes"
	"errors"
	"net"
	"strings"
	"testing"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level(%d).String() = %s, want %s", tt.level, got, tt.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DEBUG},
		{"debug", DEBUG},
		{"INFO", INFO},
		{"info", INFO},
		{"WARN", WARN},
		{"warn", WARN},
		{"WARNING", WARN},
		{"warning", WARN},
		{"ERROR", ERROR},
		{"error", ERROR},
		{" Warning ", WARN},
		{"trace", DEBUG},
		{"unknown", INFO}, // default
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%s) = %d, want %d", tt.input, got, tt.expected)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != INFO {
		t.Errorf("Expected default level INFO, got %d", cfg.Level)
	}
	if cfg.JSONMode {
		t.Error("Expected JSONMode to be false by default")
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger("test-component")
	if logger == nil {
		t.Fatal("Expected non-nil logger")
	}
	if logger.Component() != "test-component" {
		t.Errorf("Expected component 'test-component', got %s", logger.Component())
	}
}

func TestLoggerOutput(t *testing.T) {
	var buf bytes.Buffer
	SetGlobalOutput(&buf)
	SetGlobalLevel(DEBUG)
	defer func() {
		SetGlobalLevel(INFO)
	}()

	logger := NewLogger("test")
	logger.Info("test message", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("Expected output to contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, "[test]") {
		t.Errorf("Expected output to contain '[test]', got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("Expected output to contain 'key=value', got: %s", output)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetGlobalOutput(&buf)
	SetGlobalLevel(WARN)
	defer func() {
		SetGlobalLevel(INFO)
	}()

	logger := NewLogger("test")
	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	if strings.Contains(output, "debug message") {
		t.Error("Debug message should be filtered")
	}
	if strings.Contains(output, "info message") {
		t.Error("Info message should be filtered")
	}
	if !strings.Contains(output, "warn message") {
		t.Error("Warn message should be present")
	}
	if !strings.Contains(output, "error message") {
		t.Error("Error message should be present")
	}
}

func TestLoggerJSONMode(t *testing.T) {
	var buf bytes.Buffer
	SetGlobalOutput(&buf)
	SetGlobalLevel(INFO)
	SetJSONMode(true)
	defer func() {
		SetJSONMode(false)
	}()

	logger := NewLogger("test")
	logger.Info("json test", "foo", "bar")

	output := buf.String()
	if !strings.Contains(output, `"message":"json test"`) {
		t.Errorf("Expected JSON output with message field, got: %s", output)
	}
	if !strings.Contains(output, `"component":"test"`) {
		t.Errorf("Expected JSON output with component field, got: %s", output)
	}
}

func TestLoggerAllLevels(t *testing.T) {
	var buf bytes.Buffer
	SetGlobalOutput(&buf)
	SetGlobalLevel(DEBUG)
	defer func() {
		SetGlobalLevel(INFO)
	}()

	logger := NewLogger("test")
	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	output := buf.String()
	if !strings.Contains(output, "DEBUG") {
		t.Error("Expected DEBUG in output")
	}
	if !strings.Contains(output, "INFO") {
		t.Error("Expected INFO in output")
	}
	if !strings.Contains(output, "WARN") {
		t.Error("Expected WARN in output")
	}
	if !strings.Contains(output, "ERROR") {
		t.Error("Expected ERROR in output")
	}
}

func withOutput(t *testing.T, cfg Config) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	cfg.Output = &buf
	Configure(cfg)
	t.Cleanup(func() { Configure(DefaultConfig()) })
	return &buf
}

func TestLoggerFieldOrder(t *testing.T) {
	buf := withOutput(t, Config{Level: INFO, NoColor: true})

	NewLogger("server").Info("Closed connection", "zeta", 1, "alpha", 2, "reason", "peer went away")

	line := buf.String()
	want := `[INFO ] [server] Closed connection zeta=1 alpha=2 reason="peer went away"`
	if !strings.Contains(line, want) {
		t.Errorf("line = %q, want it to contain %q", line, want)
	}
	if strings.Contains(line, "\033[") {
		t.Errorf("NoColor output contains escape codes: %q", line)
	}
}

func TestLoggerWith(t *testing.T) {
	buf := withOutput(t, Config{Level: DEBUG, JSONMode: true})

	base := NewLogger("driver")
	child := base.With("connection_id", "abcd")
	child.Debug("Packet", "packet", "Handshake", "err", errors.New("boom"))
	base.Info("plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	want := `"fields":{"connection_id":"abcd","packet":"Handshake","err":"boom"}`
	if !strings.Contains(lines[0], want) {
		t.Errorf("line = %s, want it to contain %s", lines[0], want)
	}
	if strings.Contains(lines[1], "fields") {
		t.Errorf("parent logger picked up child fields: %s", lines[1])
	}
}

func TestLoggerOddArgs(t *testing.T) {
	buf := withOutput(t, Config{Level: INFO, NoColor: true})

	NewLogger("x").Info("msg", "k", "v", "dangling")
	if !strings.Contains(buf.String(), "k=v extra=dangling") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestConnectionLogger(t *testing.T) {
	buf := withOutput(t, Config{Level: DEBUG, NoColor: true})

	remote := &net.TCPAddr{IP: net.IPv4(10, 0, 0, 7), Port: 50123}
	local := &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 25565}
	cl := NewConnectionLogger(NewLogger("server"))

	id := cl.LogNewConnection(remote, local, "tcp")
	if len(id) != 16 {
		t.Errorf("connection id %q has length %d, want 16", id, len(id))
	}
	cl.LogConnectionLost(id, remote, errors.New("unexpected EOF"))
	cl.LogConnectionError(id, remote, errors.New("bad frame"))

	out := buf.String()
	for _, want := range []string{
		"New connection connection_id=" + id,
		"Lost connection connection_id=" + id,
		"Error occurred while communicating with 10.0.0.7:50123",
		`error="bad frame"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestErrorLoggerRecover(t *testing.T) {
	buf := withOutput(t, Config{Level: INFO, NoColor: true})
	el := NewErrorLogger(NewLogger("driver"))

	run := func() (err error) {
		defer el.Recover("serve", &err)
		panic("kaboom")
	}
	err := run()
	if err == nil || err.Error() != "panic in serve: kaboom" {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(buf.String(), "Panic recovered operation=serve panic_value=kaboom") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestMaskIP(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"192.168.1.20:25565", "192.168.*.*:25565"},
		{"[2001:db8::1]:80", "2001:db8:*:80"},
		{"localhost:80", "localhost:80"},
		{"garbage", "unknown"},
	}
	for _, tt := range tests {
		if got := MaskIP(tt.in); got != tt.want {
			t.Errorf("MaskIP(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
