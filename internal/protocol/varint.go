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

// DecodeVarInt decodes a 32-bit VarInt from the front of b.
//
// RETURNS:
//   - the value and the number of bytes consumed on success
//   - ErrIncomplete when b ends before the final byte of the VarInt
//   - ErrVarIntTooBig when the encoding runs past MaxVarIntLen bytes
//
// The groups are accumulated into an unsigned value and reinterpreted as
// two's complement only at the end, so negative values always take 5 bytes.
func DecodeVarInt(b []byte) (int32, int, error) {
	var acc uint32
	for i := 0; i < MaxVarIntLen; i++ {
		if i >= len(b) {
			return 0, 0, ErrIncomplete
		}
		c := b[i]
		acc |= uint32(c&0x7F) << (7 * i)
		if c&0x80 == 0 {
			return int32(acc), i + 1, nil
		}
	}
	return 0, 0, ErrVarIntTooBig
}

// DecodeVarLong decodes a 64-bit VarLong from the front of b.
// See DecodeVarInt for the return contract.
func DecodeVarLong(b []byte) (int64, int, error) {
	var acc uint64
	for i := 0; i < MaxVarLongLen; i++ {
		if i >= len(b) {
			return 0, 0, ErrIncomplete
		}
		c := b[i]
		acc |= uint64(c&0x7F) << (7 * i)
		if c&0x80 == 0 {
			return int64(acc), i + 1, nil
		}
	}
	return 0, 0, ErrVarLongTooBig
}

// AppendVarInt appends the VarInt encoding of v to dst.
func AppendVarInt(dst []byte, v int32) []byte {
	u := uint32(v)
	for u >= 0x80 {
		dst = append(dst, byte(u)|0x80)
		u >>= 7
	}
	return append(dst, byte(u))
}

// AppendVarLong appends the VarLong encoding of v to dst.
func AppendVarLong(dst []byte, v int64) []byte {
	u := uint64(v)
	for u >= 0x80 {
		dst = append(dst, byte(u)|0x80)
		u >>= 7
	}
	return append(dst, byte(u))
}

// VarIntLen returns the encoded size of v in bytes.
func VarIntLen(v int32) int {
	u := uint32(v)
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}
	return n
}

// VarLongLen returns the encoded size of v in bytes.
func VarLongLen(v int64) int {
	u := uint64(v)
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}
	return n
}
