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

package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrIncomplete reports that more input is needed. Only the framing layer
// ever sees it; inside a frame a short read is a truncation error.
var ErrIncomplete = errors.New("incomplete input")

// Malformed-input errors. Every *Error returned by this package wraps one of
// these, so callers can classify failures with errors.Is.
var (
	ErrVarIntTooBig   = errors.New("VarInt is too big")
	ErrVarLongTooBig  = errors.New("VarLong is too big")
	ErrNegative       = errors.New("negative value")
	ErrTruncated      = errors.New("unexpected end-of-stream")
	ErrInvalidBool    = errors.New("invalid boolean")
	ErrInvalidUTF8    = errors.New("invalid UTF-8")
	ErrStringTooLong  = errors.New("string too long")
	ErrArrayTooLong   = errors.New("array too long")
	ErrTrailingBytes  = errors.New("trailing bytes")
	ErrInvalidJSON    = errors.New("invalid JSON")
	ErrOversized      = errors.New("oversized value")
	ErrUnknownVariant = errors.New("unknown variant")
)

// PathPart is one step of an error path: a field name or an element index.
type PathPart struct {
	Name  string
	Index int
}

func (p PathPart) String() string {
	if p.Name != "" {
		return p.Name
	}
	return strconv.Itoa(p.Index)
}

// Error describes a decode or encode failure.
type Error struct {
	// Kind names the outermost value being read ("Handshake", "VarInt", ...).
	Kind string

	// Path holds the failing location, innermost part first.
	Path []PathPart

	// Offset is the failure position relative to the frame body start, or
	// -1 when the failure is not tied to a position (encoding).
	Offset int

	// Err is the sentinel (or foreign error) classifying the failure.
	Err error

	// Msg is the human-readable detail.
	Msg string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("error while ")
	if e.Offset < 0 {
		b.WriteString("writing")
	} else {
		b.WriteString("reading")
	}
	if e.Kind != "" {
		b.WriteString(" ")
		b.WriteString(e.Kind)
	}
	if len(e.Path) > 0 {
		b.WriteString(" at `")
		b.WriteString(e.FieldPath())
		b.WriteString("`")
	}
	if e.Offset >= 0 {
		b.WriteString(" (")
		b.WriteString(FormatLocation(e.Offset))
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// FieldPath renders Path outermost-first, joined with dots.
func (e *Error) FieldPath() string {
	parts := make([]string, 0, len(e.Path))
	for i := len(e.Path) - 1; i >= 0; i-- {
		parts = append(parts, e.Path[i].String())
	}
	return strings.Join(parts, ".")
}

// FormatLocation renders a frame body offset the way errors print it.
func FormatLocation(offset int) string {
	return fmt.Sprintf("%d byte(s) from the packet frame start", offset)
}

func newError(offset int, sentinel error, format string, args ...interface{}) *Error {
	return &Error{
		Offset: offset,
		Err:    sentinel,
		Msg:    fmt.Sprintf(format, args...),
	}
}

// Errorf builds an *Error at offset wrapping sentinel. Types defined outside
// this package use it to report failures in the same shape.
func Errorf(offset int, sentinel error, format string, args ...interface{}) error {
	return newError(offset, sentinel, format, args...)
}

// asError converts err into an *Error, keeping foreign errors reachable
// through Unwrap.
func asError(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return &Error{Offset: -1, Err: err, Msg: err.Error()}
}

// WithField records that err happened while reading the named field.
func WithField(err error, name string) error {
	if err == nil {
		return nil
	}
	pe := asError(err)
	pe.Path = append(pe.Path, PathPart{Name: name})
	return pe
}

// WithIndex records that err happened while reading element i.
func WithIndex(err error, i int) error {
	if err == nil {
		return nil
	}
	pe := asError(err)
	pe.Path = append(pe.Path, PathPart{Index: i})
	return pe
}

// WithKind tags err with the kind of value being read. Outer calls
// overwrite inner ones, so the outermost kind is what gets reported.
func WithKind(err error, kind string) error {
	if err == nil {
		return nil
	}
	pe := asError(err)
	pe.Kind = kind
	return pe
}
