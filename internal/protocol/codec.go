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

// Session owns one backing buffer for the duration of a decode. Every
// Summary remembers the session that produced it, which is what ties a
// validated summary to the exact bytes it validated.
type Session struct {
	buf []byte
}

// NewSession starts a decode session over b. b must not be modified while
// summaries or views produced from the session are in use.
func NewSession(b []byte) *Session {
	return &Session{buf: b}
}

// Cursor returns a cursor at the start of the session buffer.
func (s *Session) Cursor() *Cursor {
	return &Cursor{sess: s}
}

// Len returns the size of the session buffer.
func (s *Session) Len() int {
	return len(s.buf)
}

// Summary is the validated proof that the bytes in [Start, End) decode as a
// particular type. It is cheap to copy and only meaningful to the type that
// produced it.
type Summary struct {
	sess  *Session
	start int
	end   int
	data  interface{}
}

// Summary closes a summary that began at start and ends at the cursor.
// data is type-specific state the view needs later.
func (c *Cursor) Summary(start int, data interface{}) Summary {
	return Summary{sess: c.sess, start: start, end: c.pos, data: data}
}

// Start returns the offset the summarized value begins at.
func (s Summary) Start() int { return s.start }

// End returns the offset just past the summarized value.
func (s Summary) End() int { return s.end }

// Len returns the encoded size of the summarized value.
func (s Summary) Len() int { return s.end - s.start }

// Data returns the type-specific state stored by Summarize.
func (s Summary) Data() interface{} { return s.data }

// Raw returns the encoded bytes of the summarized value.
func (s Summary) Raw() []byte {
	return s.sess.buf[s.start:s.end:s.end]
}

// Cursor returns a new cursor positioned at the start of the value.
func (s Summary) Cursor() *Cursor {
	if s.sess == nil {
		panic("protocol: view of an empty summary")
	}
	return &Cursor{sess: s.sess, pos: s.start}
}

// Type is a wire type under the two-phase contract.
//
// Summarize validates the bytes at the cursor, advances the cursor past
// them and returns a Summary. View rebuilds the value from a Summary without
// validating again; it must only be given summaries this type produced.
// Encode writes v in wire form.
type Type[V any] interface {
	Kind() string
	Summarize(c *Cursor) (Summary, error)
	View(s Summary) V
	Encode(e *Encoder, v V) error
}

// Decode summarizes and views a single value.
func Decode[V any](c *Cursor, t Type[V]) (V, error) {
	s, err := t.Summarize(c)
	if err != nil {
		var zero V
		return zero, err
	}
	return t.View(s), nil
}

// DecodeBytes decodes b as exactly one value of type t.
func DecodeBytes[V any](b []byte, t Type[V]) (V, error) {
	c := NewCursor(b)
	v, err := Decode(c, t)
	if err != nil {
		return v, err
	}
	if err := c.Finish(); err != nil {
		var zero V
		return zero, WithKind(err, t.Kind())
	}
	return v, nil
}

// SimpleType is a wire type that validates and produces its value in a
// single pass, so it needs no state between the two phases.
type SimpleType[V any] interface {
	Kind() string
	DecodeSimple(c *Cursor) (V, error)
	Encode(e *Encoder, v V) error
}

// Simple lifts a SimpleType into the two-phase contract. Its summaries only
// record offsets; View decodes the bytes again, which validation has already
// proven will succeed.
func Simple[V any](t SimpleType[V]) Type[V] {
	return simple[V]{t}
}

type simple[V any] struct {
	SimpleType[V]
}

func (t simple[V]) Summarize(c *Cursor) (Summary, error) {
	start := c.pos
	if _, err := t.DecodeSimple(c); err != nil {
		c.pos = start
		return Summary{}, WithKind(err, t.Kind())
	}
	return c.Summary(start, nil), nil
}

func (t simple[V]) View(s Summary) V {
	v, err := t.DecodeSimple(s.Cursor())
	if err != nil {
		panic("protocol: " + t.Kind() + " view over unvalidated bytes: " + err.Error())
	}
	return v
}
