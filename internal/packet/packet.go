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

package packet

import (
	"craftwire/internal/protocol"
)

// Packet is a decoded packet or one ready to send.
type Packet interface {
	ID() int32
	State() State
	Bound() Direction
	Name() string

	// EncodeBody writes the fields, without the id.
	EncodeBody(e *protocol.Encoder) error
}

type shape struct {
	rec   *protocol.Record
	build func(v protocol.RecordView) Packet
}

// lookup returns the shape for an id. The switch is the whole catalog.
func lookup(state State, dir Direction, id int32) (shape, bool) {
	switch dir {
	case ServerBound:
		switch state {
		case Handshake:
			switch id {
			case 0x00:
				return shape{handshakeRecord, buildHandshake}, true
			}
		case Status:
			switch id {
			case 0x00:
				return shape{statusRequestRecord, buildStatusRequest}, true
			case 0x01:
				return shape{pingRequestRecord, buildPingRequest}, true
			}
		case Login:
			switch id {
			case 0x00:
				return shape{loginStartRecord, buildLoginStart}, true
			case 0x01:
				return shape{encryptionResponseRecord, buildEncryptionResponse}, true
			case 0x02:
				return shape{pluginResponseRecord, buildLoginPluginResponse}, true
			}
		}
	case ClientBound:
		switch state {
		case Status:
			switch id {
			case 0x00:
				return shape{statusResponseRecord, buildStatusResponse}, true
			case 0x01:
				return shape{pingResponseRecord, buildPingResponse}, true
			}
		case Login:
			switch id {
			case 0x00:
				return shape{disconnectRecord, buildDisconnect}, true
			case 0x01:
				return shape{encryptionRequestRecord, buildEncryptionRequest}, true
			case 0x02:
				return shape{loginSuccessRecord, buildLoginSuccess}, true
			case 0x03:
				return shape{setCompressionRecord, buildSetCompression}, true
			case 0x04:
				return shape{pluginRequestRecord, buildLoginPluginRequest}, true
			}
		}
	}
	return shape{}, false
}

// Name returns the name of the packet with the given id, if there is one.
func Name(state State, dir Direction, id int32) (string, bool) {
	s, ok := lookup(state, dir, id)
	if !ok {
		return "", false
	}
	return s.rec.Kind(), true
}

// Decode parses one frame body received in state.
func Decode(state State, dir Direction, body []byte) (Packet, error) {
	if state == Play {
		return nil, protocol.WithKind(protocol.Errorf(0, ErrUnsupportedState,
			"packets in state %s are not supported", state), "packet")
	}

	c := protocol.NewCursor(body)
	uid, err := protocol.Decode(c, protocol.VarUint)
	if err != nil {
		return nil, protocol.WithKind(err, "packet id")
	}
	id := int32(uid)
	s, ok := lookup(state, dir, id)
	if !ok {
		return nil, protocol.WithKind(protocol.Errorf(0, ErrUnknownPacket,
			"unknown %s packet id 0x%02x for state %s", dir, id, state), "packet")
	}

	view, err := protocol.Decode[protocol.RecordView](c, s.rec)
	if err != nil {
		return nil, err
	}
	if err := c.Finish(); err != nil {
		return nil, protocol.WithKind(err, s.rec.Kind())
	}
	return s.build(view), nil
}

// Encode writes the id and fields of p.
func Encode(e *protocol.Encoder, p Packet) error {
	e.WriteVarInt(p.ID())
	return p.EncodeBody(e)
}

// Marshal returns the body of p: its id followed by its fields.
func Marshal(p Packet) ([]byte, error) {
	e := protocol.NewEncoder(64)
	if err := Encode(e, p); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// cloneBytes copies a view that aliases the frame body.
func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append(make([]byte, 0, len(b)), b...)
}
