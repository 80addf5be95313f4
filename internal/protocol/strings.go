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
	"unicode/utf16"
	"unicode/utf8"
)

// CountMode selects how a string's length bound is measured.
type CountMode int

const (
	// CountRunes bounds the number of Unicode codepoints.
	CountRunes CountMode = iota
	// CountUTF16 bounds the number of UTF-16 code units, so characters
	// outside the BMP count twice.
	CountUTF16
)

// StringType is a VarInt-length-prefixed UTF-8 string with an optional
// upper bound on its length in characters.
type StringType struct {
	max  int
	mode CountMode
}

// String returns a string type bounded to max codepoints. max <= 0 means
// unbounded.
func String(max int) StringType {
	return StringType{max: max}
}

// StringUTF16 returns a string type bounded to max UTF-16 code units.
func StringUTF16(max int) StringType {
	return StringType{max: max, mode: CountUTF16}
}

// Identifier is a namespaced resource location such as "minecraft:brand".
var Identifier = String(MaxIdentifierLen)

// Max returns the character bound, or 0 when unbounded.
func (t StringType) Max() int { return t.max }

func (StringType) Kind() string { return "string" }

// Summarize validates the string. A declared byte length larger than four
// bytes per allowed character is rejected before the payload is read.
func (t StringType) Summarize(c *Cursor) (Summary, error) {
	start := c.pos
	b, err := t.read(c)
	if err != nil {
		return Summary{}, WithKind(err, t.Kind())
	}
	if !utf8.Valid(b) {
		return Summary{}, WithKind(newError(c.pos-len(b), ErrInvalidUTF8, "string is not valid UTF-8"), t.Kind())
	}
	if t.max > 0 {
		if n := t.count(b); n > t.max {
			return Summary{}, WithKind(newError(start, ErrStringTooLong,
				"string is %d character(s) long, which exceeds the maximum of %d", n, t.max), t.Kind())
		}
	}
	return c.Summary(start, nil), nil
}

// View re-reads the validated bytes and copies them into a string.
func (t StringType) View(s Summary) string {
	b, err := t.read(s.Cursor())
	if err != nil {
		panic("protocol: string view over unvalidated bytes: " + err.Error())
	}
	return string(b)
}

// ViewBytes returns the validated UTF-8 payload without copying.
func (t StringType) ViewBytes(s Summary) []byte {
	b, err := t.read(s.Cursor())
	if err != nil {
		panic("protocol: string view over unvalidated bytes: " + err.Error())
	}
	return b
}

func (t StringType) Encode(e *Encoder, v string) error {
	if !utf8.ValidString(v) {
		return WithKind(newError(-1, ErrInvalidUTF8, "string is not valid UTF-8"), t.Kind())
	}
	if t.max > 0 {
		if n := t.countString(v); n > t.max {
			return WithKind(newError(-1, ErrOversized,
				"string is %d character(s) long, which exceeds the maximum of %d", n, t.max), t.Kind())
		}
	}
	if err := e.WriteLength(len(v)); err != nil {
		return WithKind(err, t.Kind())
	}
	e.buf = append(e.buf, v...)
	return nil
}

func (t StringType) read(c *Cursor) ([]byte, error) {
	start := c.pos
	n, err := c.ReadLength()
	if err != nil {
		return nil, err
	}
	if t.max > 0 && n > t.max*utf8.UTFMax {
		return nil, newError(start, ErrStringTooLong,
			"string byte length %d exceeds the maximum of %d byte(s) for %d character(s)", n, t.max*utf8.UTFMax, t.max)
	}
	b, ok := c.ReadSlice(n)
	if !ok {
		return nil, newError(c.pos, ErrTruncated,
			"unexpected end-of-stream while reading string: expected %d byte(s), got %d", n, c.Remaining())
	}
	return b, nil
}

func (t StringType) count(b []byte) int {
	if t.mode == CountUTF16 {
		return utf16Len(b)
	}
	return utf8.RuneCount(b)
}

func (t StringType) countString(s string) int {
	if t.mode == CountUTF16 {
		n := 0
		for _, r := range s {
			n += utf16.RuneLen(r)
		}
		return n
	}
	return utf8.RuneCountInString(s)
}

func utf16Len(b []byte) int {
	n := 0
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		n += utf16.RuneLen(r)
		b = b[size:]
	}
	return n
}
