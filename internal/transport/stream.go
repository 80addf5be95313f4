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

import (
	"errors"
	"io"

	"craftwire/internal/performance"
	"craftwire/internal/protocol"
)

// Observer is notified of every frame a Stream moves. n is the frame body
// length.
type Observer interface {
	FrameRead(n int)
	FrameWritten(n int)
}

// Stream reads and writes frames over a byte stream. A Stream is owned by
// one goroutine; frames are handled strictly in the order they arrive.
type Stream struct {
	rw       io.ReadWriter
	codec    *Codec
	buf      *Buffer
	enc      *protocol.Encoder
	out      []byte
	pool     *performance.BufferPool
	observer Observer
}

// NewStream wraps rw. The receive buffer starts out in a pooled chunk that
// Release hands back.
func NewStream(rw io.ReadWriter, codec *Codec) *Stream {
	pool := performance.GetBufferPool(performance.SmallBufferSize)
	return &Stream{
		rw:    rw,
		codec: codec,
		buf:   NewBuffer(pool.Get()),
		enc:   protocol.NewEncoder(256),
		pool:  pool,
	}
}

// SetObserver installs o; nil removes it.
func (s *Stream) SetObserver(o Observer) { s.observer = o }

// Codec returns the stream's codec.
func (s *Stream) Codec() *Codec { return s.codec }

// Buffered returns the number of received bytes not yet decoded.
func (s *Stream) Buffered() int { return s.buf.Len() }

// ReadFrame blocks until a whole frame is buffered. It returns io.EOF when
// the peer closes between frames and io.ErrUnexpectedEOF when it closes in
// the middle of one. The frame body is valid until the next ReadFrame.
func (s *Stream) ReadFrame() (Frame, error) {
	for {
		f, ok, err := s.codec.Decode(s.buf)
		if err != nil {
			return Frame{}, err
		}
		if ok {
			if s.observer != nil {
				s.observer.FrameRead(f.Len())
			}
			return f, nil
		}

		n, err := s.buf.Fill(s.rw)
		if n > 0 {
			continue
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			if s.buf.Len() == 0 {
				return Frame{}, io.EOF
			}
			return Frame{}, io.ErrUnexpectedEOF
		}
		return Frame{}, err
	}
}

// WriteFrame frames body and writes it out in one call.
func (s *Stream) WriteFrame(body []byte) error {
	out, err := s.codec.Encode(s.out[:0], body)
	if err != nil {
		return err
	}
	s.out = out
	if _, err := s.rw.Write(out); err != nil {
		return err
	}
	if s.observer != nil {
		s.observer.FrameWritten(len(body))
	}
	return nil
}

// WriteBody encodes a body with fn and writes it as one frame.
func (s *Stream) WriteBody(fn func(e *protocol.Encoder) error) error {
	s.enc.Reset()
	if err := fn(s.enc); err != nil {
		return err
	}
	return s.WriteFrame(s.enc.Bytes())
}

// Release returns the initial receive chunk to its pool if the buffer never
// outgrew it. The stream must not be used afterwards.
func (s *Stream) Release() {
	if s.buf == nil {
		return
	}
	if data := s.buf.data; cap(data) == performance.SmallBufferSize {
		s.pool.Put(data[:cap(data)])
	}
	s.buf = nil
}
