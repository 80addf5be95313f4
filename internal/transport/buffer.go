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

package transport

import "io"

// minRead is the smallest free space offered to a single Read call.
const minRead = 512

// Buffer is a receive buffer with a read offset. Consumed bytes are dropped
// lazily: the unread tail is moved to the front only when more room is
// needed.
type Buffer struct {
	data []byte
	off  int
}

// NewBuffer returns a buffer that starts out using b as storage.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{data: b[:0]}
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int { return len(b.data) - b.off }

// Bytes returns the unread bytes.
func (b *Buffer) Bytes() []byte { return b.data[b.off:] }

// Cap returns how many unread bytes fit without reallocating.
func (b *Buffer) Cap() int { return cap(b.data) - b.off }

// Reserve makes room for at least n unread bytes in total.
func (b *Buffer) Reserve(n int) {
	unread := b.Len()
	if n < unread {
		n = unread
	}
	if cap(b.data)-b.off >= n {
		return
	}
	if cap(b.data) >= n {
		copy(b.data, b.data[b.off:])
		b.data = b.data[:unread]
		b.off = 0
		return
	}
	grown := make([]byte, unread, max(n, 2*cap(b.data)))
	copy(grown, b.data[b.off:])
	b.data = grown
	b.off = 0
}

// Write appends p.
func (b *Buffer) Write(p []byte) (int, error) {
	b.Reserve(b.Len() + len(p))
	b.data = append(b.data, p...)
	return len(p), nil
}

// Fill performs a single Read from r into the free space.
func (b *Buffer) Fill(r io.Reader) (int, error) {
	if cap(b.data)-len(b.data) < minRead {
		b.Reserve(b.Len() + minRead)
	}
	end := len(b.data)
	n, err := r.Read(b.data[end:cap(b.data)])
	if n < 0 {
		n = 0
	}
	b.data = b.data[:end+n]
	return n, err
}

// Consume drops n unread bytes.
func (b *Buffer) Consume(n int) {
	b.off += n
	if b.off >= len(b.data) {
		b.data = b.data[:0]
		b.off = 0
	}
}

// Reset drops every byte.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.off = 0
}
