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

// Cursor is a forward-only read position over a Session's buffer.
//
// Reads never panic on short input: they report ok=false and leave the
// position where it was, and the caller decides whether that means
// "wait for more data" or "truncated".
type Cursor struct {
	sess *Session
	pos  int
}

// NewCursor returns a cursor at the start of b, backed by a fresh Session.
func NewCursor(b []byte) *Cursor {
	return NewSession(b).Cursor()
}

// Session returns the session the cursor reads from.
func (c *Cursor) Session() *Session {
	return c.sess
}

// Pos returns the current offset from the start of the buffer.
func (c *Cursor) Pos() int {
	return c.pos
}

// SetPos moves the cursor to an absolute offset. It panics if p is outside
// the buffer.
func (c *Cursor) SetPos(p int) {
	if p < 0 || p > len(c.sess.buf) {
		panic("protocol: cursor position out of range")
	}
	c.pos = p
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.sess.buf) - c.pos
}

// Rest returns the unread bytes without consuming them.
func (c *Cursor) Rest() []byte {
	return c.sess.buf[c.pos:]
}

// Clone returns an independent cursor at the same position.
func (c *Cursor) Clone() *Cursor {
	return &Cursor{sess: c.sess, pos: c.pos}
}

// ReadByte reads a single byte.
func (c *Cursor) ReadByte() (byte, bool) {
	if c.pos >= len(c.sess.buf) {
		return 0, false
	}
	b := c.sess.buf[c.pos]
	c.pos++
	return b, true
}

// ReadFixed reads exactly n bytes for a fixed-size value.
func (c *Cursor) ReadFixed(n int) ([]byte, bool) {
	return c.ReadSlice(n)
}

// ReadSlice reads n bytes. The returned slice aliases the session buffer.
func (c *Cursor) ReadSlice(n int) ([]byte, bool) {
	if n < 0 || n > c.Remaining() {
		return nil, false
	}
	b := c.sess.buf[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return b, true
}

// ReadVarInt reads a VarInt. Inside a frame a short read is a truncation.
func (c *Cursor) ReadVarInt() (int32, error) {
	v, n, err := DecodeVarInt(c.Rest())
	switch err {
	case nil:
		c.pos += n
		return v, nil
	case ErrIncomplete:
		return 0, newError(c.pos, ErrTruncated, "unexpected end-of-stream while reading VarInt (%s)", FormatLocation(len(c.sess.buf)))
	default:
		return 0, newError(c.pos, err, "VarInt is too long to fit an i32")
	}
}

// ReadVarLong reads a VarLong.
func (c *Cursor) ReadVarLong() (int64, error) {
	v, n, err := DecodeVarLong(c.Rest())
	switch err {
	case nil:
		c.pos += n
		return v, nil
	case ErrIncomplete:
		return 0, newError(c.pos, ErrTruncated, "unexpected end-of-stream while reading VarLong (%s)", FormatLocation(len(c.sess.buf)))
	default:
		return 0, newError(c.pos, err, "VarLong is too long to fit an i64")
	}
}

// ReadLength reads a VarInt length prefix and rejects negative values.
func (c *Cursor) ReadLength() (int, error) {
	start := c.pos
	n, err := c.ReadVarInt()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, newError(start, ErrNegative, "negative length %d", n)
	}
	return int(n), nil
}

// Skip moves the cursor past the value described by s. The cursor must read
// the same session s was produced from.
func (c *Cursor) Skip(s Summary) {
	if s.sess != c.sess {
		panic("protocol: summary used with a cursor over a different session")
	}
	c.pos = s.end
}

// Finish reports an error if any bytes are left unread.
func (c *Cursor) Finish() error {
	if n := c.Remaining(); n > 0 {
		return newError(c.pos, ErrTrailingBytes, "expected end of buffer but %d byte(s) are remaining", n)
	}
	return nil
}

// Location describes the cursor position for error messages.
func (c *Cursor) Location() string {
	return FormatLocation(c.pos)
}

// truncated builds the error for a fixed-size read that ran out of bytes.
func (c *Cursor) truncated(kind string, want int) *Error {
	return newError(c.pos, ErrTruncated, "unexpected end-of-stream while reading %s: expected %d byte(s), got %d", kind, want, c.Remaining())
}
