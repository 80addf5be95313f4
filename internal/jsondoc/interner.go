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

package jsondoc

import "hash/maphash"

// Intern is a handle to a string stored in an Interner.
type Intern uint32

type span struct {
	off, len int
}

// Interner stores every distinct string once in a single growable buffer.
// Interners are scoped to one document and never shared.
type Interner struct {
	buf     []byte
	entries []span
	index   map[uint64][]Intern
	seed    maphash.Seed
}

// NewInterner returns an empty interner.
func NewInterner() *Interner {
	return &Interner{
		index: make(map[uint64][]Intern),
		seed:  maphash.MakeSeed(),
	}
}

// Len returns the number of distinct strings.
func (in *Interner) Len() int {
	return len(in.entries)
}

// Intern returns the handle for s, adding it if it is new.
func (in *Interner) Intern(s string) Intern {
	b := in.Begin()
	b.WriteString(s)
	return b.Finish()
}

// Find returns the handle for s without adding it.
func (in *Interner) Find(s string) (Intern, bool) {
	h := maphash.String(in.seed, s)
	for _, id := range in.index[h] {
		if in.Decode(id) == s {
			return id, true
		}
	}
	return 0, false
}

// Decode returns the text of id.
func (in *Interner) Decode(id Intern) string {
	e := in.entries[id]
	return string(in.buf[e.off : e.off+e.len])
}

// Begin starts building a string in place at the end of the buffer.
func (in *Interner) Begin() *Builder {
	return &Builder{in: in, start: len(in.buf)}
}

// Builder appends the text of one string before it is interned. A builder
// that is not finished must be aborted.
type Builder struct {
	in    *Interner
	start int
}

// WriteString appends s.
func (b *Builder) WriteString(s string) {
	b.in.buf = append(b.in.buf, s...)
}

// WriteRune appends r.
func (b *Builder) WriteRune(r rune) {
	b.in.buf = append(b.in.buf, string(r)...)
}

// Text returns the text written so far.
func (b *Builder) Text() string {
	return string(b.in.buf[b.start:])
}

// Finish interns the built text. If an equal string is already interned the
// new bytes are dropped and the existing handle is returned.
func (b *Builder) Finish() Intern {
	in := b.in
	text := in.buf[b.start:]
	h := maphash.Bytes(in.seed, text)
	for _, id := range in.index[h] {
		e := in.entries[id]
		if string(in.buf[e.off:e.off+e.len]) == string(text) {
			in.buf = in.buf[:b.start]
			return id
		}
	}
	id := Intern(len(in.entries))
	in.entries = append(in.entries, span{off: b.start, len: len(text)})
	in.index[h] = append(in.index[h], id)
	return id
}

// Abort discards the built text.
func (b *Builder) Abort() {
	b.in.buf = b.in.buf[:b.start]
}
