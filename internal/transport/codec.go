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
Package transport implements length-prefixed packet framing.

FRAME FORMAT:
=============

	+----------------+---------------------------+
	| Length (VarInt)| Body (Length bytes)       |
	+----------------+---------------------------+

The body is one packet: a VarInt packet id followed by its fields.

DECODING:
=========
Decode works over a growable receive Buffer and never blocks:

 1. Decode the length prefix. A short prefix means "need more input" and
    leaves the buffer untouched.
 2. Reject a declared length above the configured maximum before any body
    byte is consumed. The maximum can never exceed HardMaxFrameLen.
 3. Reserve room for the whole frame so the buffer grows once.
 4. If the body is not fully buffered yet, report "need more input".
 5. Slice the body out of the buffer without copying and consume it.

COMPRESSION:
============
A codec is either plain or compressed for its whole life, decided by the
compression threshold it was built with. Compressed framing is not
implemented and fails with ErrCompressionUnsupported.
*/
package transport

import (
	"errors"

	"craftwire/internal/protocol"
)

// HardMaxFrameLen is the largest frame body any codec accepts or produces.
const HardMaxFrameLen = 1 << 21

var (
	// ErrFrameTooLarge is returned for a declared frame length above the
	// receive limit, or an outbound body above HardMaxFrameLen.
	ErrFrameTooLarge = errors.New("frame too large")

	// ErrCompressionUnsupported is returned by codecs built with a
	// non-negative compression threshold.
	ErrCompressionUnsupported = errors.New("compressed framing is not supported")
)

// Config configures a Codec.
type Config struct {
	// MaxFrameLen bounds inbound frame bodies. Zero or anything above
	// HardMaxFrameLen means HardMaxFrameLen.
	MaxFrameLen int

	// CompressionThreshold enables compressed framing when >= 0.
	CompressionThreshold int
}

// DefaultConfig returns a plain codec configuration with the hard limit.
func DefaultConfig() Config {
	return Config{
		MaxFrameLen:          HardMaxFrameLen,
		CompressionThreshold: -1,
	}
}

// Codec frames and unframes packet bodies.
type Codec struct {
	maxRecvLen int
	threshold  int
}

// NewCodec builds a codec from cfg.
func NewCodec(cfg Config) *Codec {
	c := &Codec{threshold: cfg.CompressionThreshold}
	c.SetMaxRecvLen(cfg.MaxFrameLen)
	return c
}

// SetMaxRecvLen changes the inbound limit, clamped to HardMaxFrameLen.
func (c *Codec) SetMaxRecvLen(n int) {
	if n <= 0 || n > HardMaxFrameLen {
		n = HardMaxFrameLen
	}
	c.maxRecvLen = n
}

// MaxRecvLen returns the inbound limit.
func (c *Codec) MaxRecvLen() int { return c.maxRecvLen }

// Compressed reports whether the codec was built for compressed framing.
func (c *Codec) Compressed() bool { return c.threshold >= 0 }

// Frame is one decoded frame.
type Frame struct {
	// Body aliases the receive buffer and stays valid until the buffer is
	// read into or decoded from again.
	Body []byte
}

// Clone returns a frame whose body no longer aliases the receive buffer.
func (f Frame) Clone() Frame {
	return Frame{Body: append([]byte(nil), f.Body...)}
}

// Len returns the body length.
func (f Frame) Len() int { return len(f.Body) }

// Decode takes one frame off the front of buf. ok is false when more input
// is needed, in which case buf holds everything it held before.
func (c *Codec) Decode(buf *Buffer) (f Frame, ok bool, err error) {
	if c.Compressed() {
		return Frame{}, false, protocol.WithKind(protocol.Errorf(0, ErrCompressionUnsupported,
			"compressed frames are not supported (threshold %d)", c.threshold), "frame")
	}

	b := buf.Bytes()
	n, hdr, err := protocol.DecodeVarInt(b)
	switch {
	case errors.Is(err, protocol.ErrIncomplete):
		return Frame{}, false, nil
	case err != nil:
		return Frame{}, false, protocol.WithKind(protocol.Errorf(0, err, "frame length VarInt is too long to fit an i32"), "frame")
	case n < 0:
		return Frame{}, false, protocol.WithKind(protocol.Errorf(0, protocol.ErrNegative, "negative frame length %d", n), "frame")
	case int(n) > c.maxRecvLen:
		return Frame{}, false, protocol.WithKind(protocol.Errorf(0, ErrFrameTooLarge,
			"frame of length %d exceeds the maximum of %d", n, c.maxRecvLen), "frame")
	}

	total := hdr + int(n)
	buf.Reserve(total)
	if len(b) < total {
		return Frame{}, false, nil
	}
	body := b[hdr:total:total]
	buf.Consume(total)
	return Frame{Body: body}, true, nil
}

// Encode appends the framed body to dst.
func (c *Codec) Encode(dst, body []byte) ([]byte, error) {
	if c.Compressed() {
		return dst, protocol.WithKind(protocol.Errorf(-1, ErrCompressionUnsupported,
			"compressed frames are not supported (threshold %d)", c.threshold), "frame")
	}
	if len(body) > HardMaxFrameLen {
		return dst, protocol.WithKind(protocol.Errorf(-1, ErrFrameTooLarge,
			"Attempted to send packet of size %d, which is too big!", len(body)), "frame")
	}
	dst = protocol.AppendVarInt(dst, int32(len(body)))
	return append(dst, body...), nil
}
