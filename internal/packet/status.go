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

// MaxStatusLen bounds the status JSON document.
const MaxStatusLen = 32767

var (
	statusRequestRecord = protocol.NewRecord("StatusRequest")

	pingRequestPayload = protocol.NewField("payload", protocol.Int64)
	pingRequestRecord  = protocol.NewRecord("PingRequest", pingRequestPayload)

	statusResponseJSON   = protocol.NewField[string]("json_resp", protocol.String(MaxStatusLen))
	statusResponseRecord = protocol.NewRecord("StatusResponse", statusResponseJSON)

	pingResponsePayload = protocol.NewField("payload", protocol.Int64)
	pingResponseRecord  = protocol.NewRecord("PingResponse", pingResponsePayload)
)

// StatusRequest asks for the server list entry.
type StatusRequest struct{}

func buildStatusRequest(protocol.RecordView) Packet { return &StatusRequest{} }

func (*StatusRequest) ID() int32        { return 0x00 }
func (*StatusRequest) State() State     { return Status }
func (*StatusRequest) Bound() Direction { return ServerBound }
func (*StatusRequest) Name() string     { return "StatusRequest" }

func (*StatusRequest) EncodeBody(e *protocol.Encoder) error {
	return statusRequestRecord.Build(e)
}

// PingRequest carries a payload the server echoes back.
type PingRequest struct {
	Payload int64
}

func buildPingRequest(v protocol.RecordView) Packet {
	return &PingRequest{Payload: pingRequestPayload.Get(v)}
}

func (*PingRequest) ID() int32        { return 0x01 }
func (*PingRequest) State() State     { return Status }
func (*PingRequest) Bound() Direction { return ServerBound }
func (*PingRequest) Name() string     { return "PingRequest" }

func (p *PingRequest) EncodeBody(e *protocol.Encoder) error {
	return pingRequestRecord.Build(e, pingRequestPayload.Value(p.Payload))
}

// StatusResponse carries the server list entry as JSON text.
type StatusResponse struct {
	JSON string
}

func buildStatusResponse(v protocol.RecordView) Packet {
	return &StatusResponse{JSON: statusResponseJSON.Get(v)}
}

func (*StatusResponse) ID() int32        { return 0x00 }
func (*StatusResponse) State() State     { return Status }
func (*StatusResponse) Bound() Direction { return ClientBound }
func (*StatusResponse) Name() string     { return "StatusResponse" }

func (p *StatusResponse) EncodeBody(e *protocol.Encoder) error {
	return statusResponseRecord.Build(e, statusResponseJSON.Value(p.JSON))
}

// PingResponse echoes a PingRequest payload.
type PingResponse struct {
	Payload int64
}

func buildPingResponse(v protocol.RecordView) Packet {
	return &PingResponse{Payload: pingResponsePayload.Get(v)}
}

func (*PingResponse) ID() int32        { return 0x01 }
func (*PingResponse) State() State     { return Status }
func (*PingResponse) Bound() Direction { return ClientBound }
func (*PingResponse) Name() string     { return "PingResponse" }

func (p *PingResponse) EncodeBody(e *protocol.Encoder) error {
	return pingResponseRecord.Build(e, pingResponsePayload.Value(p.Payload))
}
