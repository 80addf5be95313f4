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
Connection and protocol logging helpers.

CONNECTION LOGGING:
===================
- New connection: remote and local address, transport (tcp or ws), connection ID
- Connection closed: reason, duration
- Connection lost: the peer vanished in the middle of a frame

PROTOCOL LOGGING:
=================
- State transitions driven by the handshake
- Packet traces at DEBUG level (name and body size, never the payload)
- Decode errors with the full error path

CORRELATION:
============
Each connection gets a short hexadecimal ID; every helper that takes a
connection ID writes it as the first field.
*/
package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"runtime/debug"
	"strings"
	"time"
)

// ConnectionLogger logs connection lifecycle events.
type ConnectionLogger struct {
	logger *Logger
}

// NewConnectionLogger creates a new connection logger
func NewConnectionLogger(logger *Logger) *ConnectionLogger {
	return &ConnectionLogger{logger: logger}
}

// LogNewConnection logs an accepted connection and returns its ID.
func (cl *ConnectionLogger) LogNewConnection(remote, local net.Addr, transport string) string {
	id := GenerateConnectionID(remote, local)
	cl.logger.Debug("New connection",
		"connection_id", id,
		"remote_addr", addrString(remote),
		"local_addr", addrString(local),
		"transport", transport,
	)
	return id
}

// LogConnectionClosed logs an orderly close.
func (cl *ConnectionLogger) LogConnectionClosed(id string, remote net.Addr, reason string, duration time.Duration) {
	cl.logger.Info("Closed connection",
		"connection_id", id,
		"remote_addr", addrString(remote),
		"reason", reason,
		"duration_ms", duration.Milliseconds(),
	)
}

// LogConnectionLost logs a peer that disconnected while a frame was pending.
func (cl *ConnectionLogger) LogConnectionLost(id string, remote net.Addr, err error) {
	cl.logger.Info("Lost connection",
		"connection_id", id,
		"remote_addr", addrString(remote),
		"error", errString(err),
	)
}

// LogConnectionError logs a connection that ended with an error.
func (cl *ConnectionLogger) LogConnectionError(id string, remote net.Addr, err error) {
	cl.logger.Warn(fmt.Sprintf("Error occurred while communicating with %s", addrString(remote)),
		"connection_id", id,
		"error", errString(err),
	)
}

// ProtocolLogger traces protocol activity for one server.
type ProtocolLogger struct {
	logger *Logger
}

// NewProtocolLogger creates a new protocol logger
func NewProtocolLogger(logger *Logger) *ProtocolLogger {
	return &ProtocolLogger{logger: logger}
}

// LogStateTransition logs a connection moving between protocol states.
func (pl *ProtocolLogger) LogStateTransition(id string, from, to fmt.Stringer) {
	pl.logger.Debug("State transition",
		"connection_id", id,
		"from", from.String(),
		"to", to.String(),
	)
}

// LogPacket traces a decoded or sent packet. Only the size is logged.
func (pl *ProtocolLogger) LogPacket(id string, direction, state fmt.Stringer, name string, size int) {
	if !pl.logger.Enabled(DEBUG) {
		return
	}
	pl.logger.Debug("Packet",
		"connection_id", id,
		"direction", direction.String(),
		"state", state.String(),
		"packet", name,
		"size_bytes", size,
	)
}

// LogSent traces an outbound packet.
func (pl *ProtocolLogger) LogSent(id string, state fmt.Stringer, name string) {
	pl.logger.Debug("Sent packet",
		"connection_id", id,
		"state", state.String(),
		"packet", name,
	)
}

// LogDecodeError logs a frame or packet that failed to decode.
func (pl *ProtocolLogger) LogDecodeError(id string, state fmt.Stringer, err error) {
	pl.logger.Warn("Failed to decode packet",
		"connection_id", id,
		"state", state.String(),
		"error", errString(err),
	)
}

// ErrorLogger provides detailed error logging
type ErrorLogger struct {
	logger *Logger
}

// NewErrorLogger creates a new error logger
func NewErrorLogger(logger *Logger) *ErrorLogger {
	return &ErrorLogger{logger: logger}
}

// LogError logs errors with context
func (el *ErrorLogger) LogError(err error, operation string, context map[string]interface{}) {
	fields := make([]interface{}, 0, len(context)*2+4)
	fields = append(fields, "operation", operation)
	fields = append(fields, "error", errString(err))

	for k, v := range context {
		fields = append(fields, k, v)
	}

	el.logger.Error("Operation failed", fields...)
}

// LogRecovery logs panic recovery
func (el *ErrorLogger) LogRecovery(panicValue interface{}, stack string, operation string) {
	el.logger.Error("Panic recovered",
		"operation", operation,
		"panic_value", fmt.Sprintf("%v", panicValue),
		"stack_trace", stack,
	)
}

// Recover is meant to be deferred. It logs a panic with its stack and
// stores it as an error in *errp when errp is non-nil.
func (el *ErrorLogger) Recover(operation string, errp *error) {
	r := recover()
	if r == nil {
		return
	}
	el.LogRecovery(r, string(debug.Stack()), operation)
	if errp != nil {
		*errp = fmt.Errorf("panic in %s: %v", operation, r)
	}
}

// GenerateConnectionID generates a short unique ID for a connection.
func GenerateConnectionID(remote, local net.Addr) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s-%s-%d",
		addrString(remote),
		addrString(local),
		time.Now().UnixNano())))
	return hex.EncodeToString(hash[:8])
}

// MaskIP partially masks IP addresses for privacy
func MaskIP(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "unknown"
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return addr
	}

	if ip.To4() != nil {
		parts := strings.Split(host, ".")
		if len(parts) == 4 {
			return fmt.Sprintf("%s.%s.*.*:%s", parts[0], parts[1], port)
		}
	} else {
		parts := strings.Split(host, ":")
		if len(parts) > 2 {
			return fmt.Sprintf("%s:%s:*:%s", parts[0], parts[1], port)
		}
	}

	return addr
}

func addrString(a net.Addr) string {
	if a == nil {
		return "unknown"
	}
	return a.String()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
