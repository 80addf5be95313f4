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
Package protocol implements the wire codec for the craftwire protocol.

PROTOCOL OVERVIEW:
==================
The protocol is a stateful, length-prefixed request/response protocol. Every
packet travels inside a frame, and every frame body starts with the packet id
followed by the packet's fields in declaration order:

	+----------------+------------------+---------+---------+-----+
	| VarInt frame   | VarInt packet id | field 1 | field 2 | ... |
	| length         |                  |         |         |     |
	+----------------+------------------+---------+---------+-----+

Framing lives in internal/transport; this package only sees frame bodies.

WIRE TYPES:
===========
  - VarInt / VarLong: 7 data bits per byte, least-significant group first,
    high bit set on every byte except the last. At most 5 / 10 bytes.
  - Fixed integers: big-endian, i8 through u64, plus the 128-bit UUID.
  - Boolean: a single byte, 0x00 or 0x01.
  - String: VarInt byte length followed by UTF-8, optionally bounded by a
    maximum number of codepoints.
  - Optional<T>: boolean flag followed by T when the flag is set.
  - Byte array: VarInt length followed by raw bytes.
  - Trailing bytes: everything up to the end of the frame.
  - Array<T>: VarInt element count followed by the elements.
  - JSON<T>: a string holding a JSON document that must match schema T.

DECODING MODEL:
===============
Decoding is two-phase. Summarize walks the bytes once, proves they are well
formed and returns a Summary. View turns a Summary back into a typed value
without validating again. A Summary carries the Session it was produced from,
so a view can never be built over a buffer other than the one that was
validated.

	sess := protocol.NewSession(body)
	c := sess.Cursor()
	sum, err := protocol.String(255).Summarize(c)
	if err != nil {
	    return err
	}
	addr := protocol.String(255).View(sum)

ERROR REPORTING:
================
Decode failures are returned as *Error. An Error carries the byte offset of
the failure relative to the frame body, the dotted path of fields from the
outermost record down to the failing value, and the kind of the outermost
value being read:

	error while reading Handshake at `server_addr` (3 byte(s) from the packet frame start): ...
*/
package protocol

// Protocol limits.
const (
	// MaxVarIntLen is the longest legal encoding of a 32-bit VarInt.
	MaxVarIntLen = 5

	// MaxVarLongLen is the longest legal encoding of a 64-bit VarLong.
	MaxVarLongLen = 10

	// MaxIdentifierLen bounds namespaced identifiers, in codepoints.
	MaxIdentifierLen = 32767

	// MaxChatLen bounds JSON chat payloads, in codepoints.
	MaxChatLen = 262144

	// MaxArrayLen bounds the element count of arrays with no declared
	// maximum. It matches the largest frame body.
	MaxArrayLen = 1 << 21
)
