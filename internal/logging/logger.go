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
Package logging provides the structured logger used by every craftwire
component.

A Logger is created per component with NewLogger and reads the global
configuration (level, output, JSON mode) on every call, so the process can
reconfigure logging after the loggers have been handed out. Key/value
arguments keep their call-site order in both output formats.

TEXT FORMAT:
============

	2006-01-02T15:04:05.000Z [INFO ] [server] Closed connection remote=1.2.3.4:5 state=Status

JSON FORMAT:
============

	{"timestamp":"...","level":"INFO","component":"server","message":"Closed connection","fields":{"remote":"1.2.3.4:5"}}
*/
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Level represents the severity of a log message.
type Level int

const (
	// DEBUG level for detailed debugging information.
	DEBUG Level = iota
	// INFO level for general operational information.
	INFO
	// WARN level for warning conditions.
	WARN
	// ERROR level for error conditions.
	ERROR
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name case-insensitively. Unknown names map to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "TRACE":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Field is a single key/value pair attached to an entry.
type Field struct {
	Key   string
	Value interface{}
}

// Fields keeps entry fields in the order they were supplied.
type Fields []Field

// MarshalJSON encodes the fields as a JSON object preserving order.
// Later duplicates are still written; JSON readers take the last one.
func (f Fields) MarshalJSON() ([]byte, error) {
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)

	stream.WriteObjectStart()
	for i, field := range f {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(field.Key)
		stream.WriteVal(jsonValue(field.Value))
	}
	stream.WriteObjectEnd()
	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

// jsonValue renders errors and stringers as text so they do not collapse to {}.
func jsonValue(v interface{}) interface{} {
	switch x := v.(type) {
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	default:
		return v
	}
}

// Entry represents a single log entry with all its metadata.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Component string    `json:"component"`
	Message   string    `json:"message"`
	Fields    Fields    `json:"fields,omitempty"`
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Logger provides structured logging for one component. Fields bound with
// With are prepended to every entry.
type Logger struct {
	component string
	bound     Fields
	mu        *sync.Mutex
}

// Config holds logger configuration options.
type Config struct {
	Level    Level
	Output   io.Writer
	JSONMode bool
	// NoColor disables ANSI level colors in text mode.
	NoColor bool
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:    INFO,
		Output:   os.Stdout,
		JSONMode: false,
	}
}

var (
	globalConfig = DefaultConfig()
	globalMu     sync.RWMutex
	// writeMu serializes writes so concurrent entries never interleave.
	writeMu sync.Mutex
)

// Configure replaces the whole global configuration.
func Configure(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = cfg
}

// SetGlobalLevel sets the global log level.
func SetGlobalLevel(level Level) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.Level = level
}

// SetGlobalOutput sets the global log output.
func SetGlobalOutput(w io.Writer) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.Output = w
}

// SetJSONMode enables or disables JSON output mode.
func SetJSONMode(enabled bool) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.JSONMode = enabled
}

// NewLogger creates a new Logger for the specified component.
func NewLogger(component string) *Logger {
	return &Logger{component: component, mu: &writeMu}
}

// Component returns the component name.
func (l *Logger) Component() string {
	return l.component
}

// With returns a child logger that adds the key/value pairs to every entry.
func (l *Logger) With(args ...interface{}) *Logger {
	bound := make(Fields, 0, len(l.bound)+len(args)/2)
	bound = append(bound, l.bound...)
	bound = appendArgs(bound, args)
	return &Logger{component: l.component, bound: bound, mu: l.mu}
}

// Enabled reports whether entries at level would be written.
func (l *Logger) Enabled(level Level) bool {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return level >= globalConfig.Level
}

func appendArgs(dst Fields, args []interface{}) Fields {
	for i := 0; i < len(args)-1; i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("arg%d", i)
		}
		dst = append(dst, Field{Key: key, Value: args[i+1]})
	}
	if len(args)%2 != 0 {
		dst = append(dst, Field{Key: "extra", Value: args[len(args)-1]})
	}
	return dst
}

// log writes a log entry at the specified level.
func (l *Logger) log(level Level, msg string, args ...interface{}) {
	globalMu.RLock()
	cfg := globalConfig
	globalMu.RUnlock()

	if level < cfg.Level {
		return
	}

	entry := Entry{
		Timestamp: time.Now().UTC(),
		Level:     level.String(),
		Component: l.component,
		Message:   msg,
	}
	if len(l.bound) > 0 || len(args) > 0 {
		entry.Fields = make(Fields, 0, len(l.bound)+len(args)/2+1)
		entry.Fields = append(entry.Fields, l.bound...)
		entry.Fields = appendArgs(entry.Fields, args)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if cfg.JSONMode {
		writeJSON(cfg.Output, entry)
	} else {
		writeText(cfg.Output, entry, !cfg.NoColor)
	}
}

func writeJSON(w io.Writer, entry Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(w, "ERROR: failed to marshal log entry: %v\n", err)
		return
	}
	data = append(data, '\n')
	_, _ = w.Write(data)
}

const resetColor = "\033[0m"

func levelColor(level string) string {
	switch level {
	case "DEBUG":
		return "\033[36m"
	case "INFO":
		return "\033[32m"
	case "WARN":
		return "\033[33m"
	case "ERROR":
		return "\033[31m"
	default:
		return resetColor
	}
}

func writeText(w io.Writer, entry Entry, color bool) {
	var sb strings.Builder
	sb.WriteString(entry.Timestamp.Format("2006-01-02T15:04:05.000Z"))
	sb.WriteByte(' ')
	if color {
		sb.WriteString(levelColor(entry.Level))
	}
	fmt.Fprintf(&sb, "[%-5s]", entry.Level)
	if color {
		sb.WriteString(resetColor)
	}
	fmt.Fprintf(&sb, " [%s] %s", entry.Component, entry.Message)

	for _, f := range entry.Fields {
		fmt.Fprintf(&sb, " %s=%v", f.Key, textValue(f.Value))
	}
	sb.WriteByte('\n')
	_, _ = io.WriteString(w, sb.String())
}

// textValue quotes strings containing spaces so the line stays parseable.
func textValue(v interface{}) interface{} {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case error:
		s = x.Error()
	default:
		return v
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// Debug logs a message at DEBUG level.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(DEBUG, msg, args...)
}

// Info logs a message at INFO level.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(INFO, msg, args...)
}

// Warn logs a message at WARN level.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(WARN, msg, args...)
}

// Error logs a message at ERROR level.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(ERROR, msg, args...)
}
