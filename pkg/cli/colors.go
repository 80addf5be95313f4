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
/*
Package cli provides shared terminal helpers for the craftwire tools.

COLORS:
=======
ANSI escape codes for terminal text formatting, plus a renderer that
turns chat messages (status descriptions, disconnect reasons) into
colored terminal text.

USAGE:
======

	cli.Success("connected to %s", addr)
	cli.KeyValue("Latency", rtt)
	fmt.Println(cli.RenderChat(reason))

Colors are disabled when NO_COLOR is set or stdout is not a terminal.
*/
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ANSI color codes for terminal output.
const (
	Reset         = "\033[0m"
	Bold          = "\033[1m"
	Dim           = "\033[2m"
	Italic        = "\033[3m"
	Underline     = "\033[4m"
	Blink         = "\033[5m"
	Strikethrough = "\033[9m"

	// Foreground colors
	Black   = "\033[30m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	// Bright foreground colors
	BrightBlack   = "\033[90m"
	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
	BrightWhite   = "\033[97m"
)

// Icons for CLI output
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "⚠"
	IconInfo    = "ℹ"
	IconArrow   = "→"
	IconDot     = "●"
)

var colorsEnabled = true

// Output destinations; tests swap them.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
	}
	if fileInfo, err := os.Stdout.Stat(); err != nil || (fileInfo.Mode()&os.ModeCharDevice) == 0 {
		colorsEnabled = false
	}
}

// SetColorsEnabled enables or disables color output.
func SetColorsEnabled(enabled bool) {
	colorsEnabled = enabled
}

// ColorsEnabled reports whether color output is on.
func ColorsEnabled() bool {
	return colorsEnabled
}

func colorize(color, text string) string {
	if !colorsEnabled || color == "" {
		return text
	}
	return color + text + Reset
}

// Success prints a success message.
func Success(format string, args ...interface{}) {
	fmt.Fprintln(Stdout, colorize(Green, IconSuccess+" "+fmt.Sprintf(format, args...)))
}

// Error prints an error message.
func Error(format string, args ...interface{}) {
	fmt.Fprintln(Stderr, colorize(Red, IconError+" "+fmt.Sprintf(format, args...)))
}

// ErrorWithHint prints an error message with a helpful hint.
func ErrorWithHint(message string, hint string) {
	fmt.Fprintln(Stderr, colorize(Red, IconError+" "+message))
	if hint != "" {
		fmt.Fprintln(Stderr, colorize(Dim, "  "+IconArrow+" Hint: "+hint))
	}
}

// Warning prints a warning message.
func Warning(format string, args ...interface{}) {
	fmt.Fprintln(Stdout, colorize(Yellow, IconWarning+" "+fmt.Sprintf(format, args...)))
}

// Info prints an info message.
func Info(format string, args ...interface{}) {
	fmt.Fprintln(Stdout, colorize(Cyan, IconInfo+" "+fmt.Sprintf(format, args...)))
}

// Header prints a header/title.
func Header(text string) {
	fmt.Fprintln(Stdout, colorize(Bold+Cyan, text))
}

// KeyValue prints a key-value pair.
func KeyValue(key string, value interface{}) {
	fmt.Fprintf(Stdout, "  %s: %v\n", colorize(Dim, key), value)
}

// Separator prints a horizontal line.
func Separator() {
	fmt.Fprintln(Stdout, colorize(Dim, strings.Repeat("─", 40)))
}

// Indent prefixes every line of text with n spaces.
func Indent(text string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}
