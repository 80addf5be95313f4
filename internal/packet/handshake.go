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

import "craftwire/internal/protocol"

// MaxServerAddrLen bounds the server address a client says it dialed.
const MaxServerAddrLen = 255

var (
	handshakeVersion   = protocol.NewField("version", protocol.VarInt)
	handshakeAddr      = protocol.NewField[string]("server_addr", protocol.String(MaxServerAddrLen))
	handshakePort      = protocol.NewField("port", protocol.Uint16)
	handshakeNextState = protocol.NewField("next_state", protocol.VarInt)

	handshakeRecord = protocol.NewRecord("Handshake",
		handshakeVersion, handshakeAddr, handshakePort, handshakeNextState)
)

// HandshakePacket opens every connection and selects the next state.
type HandshakePacket struct {
	Version    int32
	ServerAddr string
	Port       uint16
	NextState  int32
}

func buildHandshake(v protocol.RecordView) Packet {
	return &HandshakePacket{
		Version:    handshakeVersion.Get(v),
		ServerAddr: handshakeAddr.Get(v),
		Port:       handshakePort.Get(v),
		NextState:  handshakeNextState.Get(v),
	}
}

func (*HandshakePacket) ID() int32        { return 0x00 }
func (*HandshakePacket) State() State     { return Handshake }
func (*HandshakePacket) Bound() Direction { return ServerBound }
func (*HandshakePacket) Name() string     { return "Handshake" }

func (p *HandshakePacket) EncodeBody(e *protocol.Encoder) error {
	return handshakeRecord.Build(e,
		handshakeVersion.Value(p.Version),
		handshakeAddr.Value(p.ServerAddr),
		handshakePort.Value(p.Port),
		handshakeNextState.Value(p.NextState),
	)
}

// Next returns the state the handshake asks for.
func (p *HandshakePacket) Next() (State, error) {
	return NextState(p.NextState)
}
