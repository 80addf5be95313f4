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
	"encoding/binary"
	"math"
)

// Encoder accumulates the wire form of a packet body.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an encoder with room for capacity bytes.
func NewEncoder(capacity int) *Encoder {
	return &Encoder{buf: make([]byte, 0, capacity)}
}

// Bytes returns the encoded bytes. The slice is reused after Reset.
func (e *Encoder) Bytes() []byte { return e.buf }

// Len returns the number of encoded bytes.
func (e *Encoder) Len() int { return len(e.buf) }

// Reset empties the encoder, keeping its capacity.
func (e *Encoder) Reset() { e.buf = e.buf[:0] }

// WriteByte appends a single byte. It never fails.
func (e *Encoder) WriteByte(b byte) error {
	e.buf = append(e.buf, b)
	return nil
}

// Write appends raw bytes. It never fails.
func (e *Encoder) Write(p []byte) (int, error) {
	e.buf = append(e.buf, p...)
	return len(p), nil
}

// WriteBool appends 0x01 or 0x00.
func (e *Encoder) WriteBool(v bool) {
	if v {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
}

// WriteVarInt appends a VarInt.
func (e *Encoder) WriteVarInt(v int32) {
	e.buf = AppendVarInt(e.buf, v)
}

// WriteVarLong appends a VarLong.
func (e *Encoder) WriteVarLong(v int64) {
	e.buf = AppendVarLong(e.buf, v)
}

// WriteUint16 appends v big-endian.
func (e *Encoder) WriteUint16(v uint16) {
	e.buf = binary.BigEndian.AppendUint16(e.buf, v)
}

// WriteUint32 appends v big-endian.
func (e *Encoder) WriteUint32(v uint32) {
	e.buf = binary.BigEndian.AppendUint32(e.buf, v)
}

// WriteUint64 appends v big-endian.
func (e *Encoder) WriteUint64(v uint64) {
	e.buf = binary.BigEndian.AppendUint64(e.buf, v)
}

// WriteFloat32 appends the IEEE 754 bits of v.
func (e *Encoder) WriteFloat32(v float32) {
	e.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 appends the IEEE 754 bits of v.
func (e *Encoder) WriteFloat64(v float64) {
	e.WriteUint64(math.Float64bits(v))
}

// WriteLength appends a length prefix. Lengths that do not fit a VarInt are
// a programming error and are reported as ErrOversized.
func (e *Encoder) WriteLength(n int) error {
	if n < 0 || n > math.MaxInt32 {
		return newError(-1, ErrOversized, "length %d does not fit a VarInt", n)
	}
	e.WriteVarInt(int32(n))
	return nil
}

// WriteByteArray appends a length-prefixed byte array.
func (e *Encoder) WriteByteArray(p []byte) error {
	if err := e.WriteLength(len(p)); err != nil {
		return err
	}
	e.buf = append(e.buf, p...)
	return nil
}
