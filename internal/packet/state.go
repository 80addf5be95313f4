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
Package packet declares the packet catalog and dispatches frame bodies to it.

CATALOG:
========
Every connection state has a closed set of packets per direction.
Server-bound and client-bound ids are separate spaces:

	State      | Dir | Id | Packet
	-----------|-----|----|---------------------
	Handshake  | in  | 0  | Handshake
	Status     | in  | 0  | StatusRequest
	Status     | in  | 1  | PingRequest
	Status     | out | 0  | StatusResponse
	Status     | out | 1  | PingResponse
	Login      | in  | 0  | LoginStart
	Login      | in  | 1  | EncryptionResponse
	Login      | in  | 2  | LoginPluginResponse
	Login      | out | 0  | Disconnect
	Login      | out | 1  | EncryptionRequest
	Login      | out | 2  | LoginSuccess
	Login      | out | 3  | SetCompression
	Login      | out | 4  | LoginPluginRequest

Play is a known state with no packets yet; anything received in it fails
with ErrUnsupportedState.

DISPATCH:
=========
Decode reads the VarInt id, picks the shape for (state, direction, id) with
a plain switch, validates the rest of the body against the shape's record
and requires the body to end exactly where the record does.
*/
package packet

import (
	"errors"
	"fmt"

	"craftwire/internal/protocol"
)

var (
	// ErrUnknownPacket is returned for an id with no shape in the current
	// state and direction.
	ErrUnknownPacket = errors.New("unknown packet")

	// ErrInvalidNextState is returned for a handshake asking for a state
	// other than Status or Login.
	ErrInvalidNextState = errors.New("invalid next state")

	// ErrUnsupportedState is returned for traffic in a state that has no
	// packets.
	ErrUnsupportedState = errors.New("unsupported state")
)

// State is a connection state.
type State int32

const (
	Handshake State = iota
	Status
	Login
	Play
)

func (s State) String() string {
	switch s {
	case Handshake:
		return "Handshake"
	case Status:
		return "Status"
	case Login:
		return "Login"
	case Play:
		return "Play"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// NextState maps a handshake next_state value to the state it selects.
func NextState(v int32) (State, error) {
	switch v {
	case 1:
		return Status, nil
	case 2:
		return Login, nil
	}
	return 0, protocol.WithKind(protocol.Errorf(-1, ErrInvalidNextState,
		"invalid next state %d, expected 1 (Status) or 2 (Login)", v), "Handshake")
}

// Direction says which peer sends a packet.
type Direction uint8

const (
	// ServerBound packets are sent by the client.
	ServerBound Direction = iota
	// ClientBound packets are sent by the server.
	ClientBound
)

func (d Direction) String() string {
	if d == ClientBound {
		return "clientbound"
	}
	return "serverbound"
}
