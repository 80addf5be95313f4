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

	"github.com/google/uuid"
)

// fixed is a big-endian number of a known width.
type fixed[V any] struct {
	kind string
	size int
	get  func(b []byte) V
	put  func(e *Encoder, v V)
}

func (f fixed[V]) Kind() string { return f.kind }

func (f fixed[V]) DecodeSimple(c *Cursor) (V, error) {
	b, ok := c.ReadFixed(f.size)
	if !ok {
		var zero V
		return zero, c.truncated(f.kind, f.size)
	}
	return f.get(b), nil
}

func (f fixed[V]) Encode(e *Encoder, v V) error {
	f.put(e, v)
	return nil
}

// Fixed-width numeric types.
var (
	Int8 = Simple[int8](fixed[int8]{"i8", 1,
		func(b []byte) int8 { return int8(b[0]) },
		func(e *Encoder, v int8) { e.buf = append(e.buf, byte(v)) }})

	Uint8 = Simple[uint8](fixed[uint8]{"u8", 1,
		func(b []byte) uint8 { return b[0] },
		func(e *Encoder, v uint8) { e.buf = append(e.buf, v) }})

	Int16 = Simple[int16](fixed[int16]{"i16", 2,
		func(b []byte) int16 { return int16(binary.BigEndian.Uint16(b)) },
		func(e *Encoder, v int16) { e.WriteUint16(uint16(v)) }})

	Uint16 = Simple[uint16](fixed[uint16]{"u16", 2,
		binary.BigEndian.Uint16,
		(*Encoder).WriteUint16})

	Int32 = Simple[int32](fixed[int32]{"i32", 4,
		func(b []byte) int32 { return int32(binary.BigEndian.Uint32(b)) },
		func(e *Encoder, v int32) { e.WriteUint32(uint32(v)) }})

	Uint32 = Simple[uint32](fixed[uint32]{"u32", 4,
		binary.BigEndian.Uint32,
		(*Encoder).WriteUint32})

	Int64 = Simple[int64](fixed[int64]{"i64", 8,
		func(b []byte) int64 { return int64(binary.BigEndian.Uint64(b)) },
		func(e *Encoder, v int64) { e.WriteUint64(uint64(v)) }})

	Uint64 = Simple[uint64](fixed[uint64]{"u64", 8,
		binary.BigEndian.Uint64,
		(*Encoder).WriteUint64})

	Float32 = Simple[float32](fixed[float32]{"f32", 4,
		func(b []byte) float32 { return math.Float32frombits(binary.BigEndian.Uint32(b)) },
		(*Encoder).WriteFloat32})

	Float64 = Simple[float64](fixed[float64]{"f64", 8,
		func(b []byte) float64 { return math.Float64frombits(binary.BigEndian.Uint64(b)) },
		(*Encoder).WriteFloat64})

	// UUID is the 128-bit big-endian integer used for player ids.
	UUID = Simple[uuid.UUID](fixed[uuid.UUID]{"u128", 16,
		func(b []byte) uuid.UUID { return uuid.UUID(b) },
		func(e *Encoder, v uuid.UUID) { e.buf = append(e.buf, v[:]...) }})
)

// Bool is a single 0x00 / 0x01 byte.
var Bool = Simple[bool](boolType{})

type boolType struct{}

func (boolType) Kind() string { return "bool" }

func (boolType) DecodeSimple(c *Cursor) (bool, error) {
	start := c.pos
	b, ok := c.ReadByte()
	if !ok {
		return false, c.truncated("bool", 1)
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, newError(start, ErrInvalidBool, "invalid variant for boolean: expected 0 or 1, got %d", b)
}

func (boolType) Encode(e *Encoder, v bool) error {
	e.WriteBool(v)
	return nil
}

// VarInt is the 32-bit variable-length integer.
var VarInt = Simple[int32](varIntType{})

type varIntType struct{}

func (varIntType) Kind() string { return "VarInt" }

func (varIntType) DecodeSimple(c *Cursor) (int32, error) { return c.ReadVarInt() }

func (varIntType) Encode(e *Encoder, v int32) error {
	e.WriteVarInt(v)
	return nil
}

// VarLong is the 64-bit variable-length integer.
var VarLong = Simple[int64](varLongType{})

type varLongType struct{}

func (varLongType) Kind() string { return "VarLong" }

func (varLongType) DecodeSimple(c *Cursor) (int64, error) { return c.ReadVarLong() }

func (varLongType) Encode(e *Encoder, v int64) error {
	e.WriteVarLong(v)
	return nil
}

// VarUint is a VarInt that must not be negative.
var VarUint = Simple[uint32](varUintType{})

type varUintType struct{}

func (varUintType) Kind() string { return "VarUint" }

func (varUintType) DecodeSimple(c *Cursor) (uint32, error) {
	start := c.pos
	v, err := c.ReadVarInt()
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, newError(start, ErrNegative, "VarUint cannot be negative, got %d", v)
	}
	return uint32(v), nil
}

func (varUintType) Encode(e *Encoder, v uint32) error {
	if v > math.MaxInt32 {
		return newError(-1, ErrOversized, "attempted to send oversized VarUint %d", v)
	}
	e.WriteVarInt(int32(v))
	return nil
}
