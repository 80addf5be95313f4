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

// ByteArray is a VarInt-length-prefixed run of raw bytes. Views alias the
// session buffer; copy them before the buffer is reused.
var ByteArray Type[[]byte] = Simple[[]byte](byteArrayType{})

type byteArrayType struct{}

func (byteArrayType) Kind() string { return "byte array" }

func (byteArrayType) DecodeSimple(c *Cursor) ([]byte, error) {
	n, err := c.ReadLength()
	if err != nil {
		return nil, err
	}
	b, ok := c.ReadSlice(n)
	if !ok {
		return nil, newError(c.pos, ErrTruncated,
			"unexpected end-of-stream while reading byte array: expected %d byte(s), got %d", n, c.Remaining())
	}
	return b, nil
}

func (byteArrayType) Encode(e *Encoder, v []byte) error {
	return e.WriteByteArray(v)
}

// TrailingBytes consumes everything up to the end of the frame.
var TrailingBytes Type[[]byte] = Simple[[]byte](trailingType{})

type trailingType struct{}

func (trailingType) Kind() string { return "trailing byte array" }

func (trailingType) DecodeSimple(c *Cursor) ([]byte, error) {
	b, _ := c.ReadSlice(c.Remaining())
	return b, nil
}

func (trailingType) Encode(e *Encoder, v []byte) error {
	e.buf = append(e.buf, v...)
	return nil
}
