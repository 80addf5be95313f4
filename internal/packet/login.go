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
	"github.com/google/uuid"

	"craftwire/internal/chat"
	"craftwire/internal/protocol"
)

// Login field limits.
const (
	MaxUsernameLen      = 16
	MaxServerIDLen      = 20
	MaxPropertyValueLen = 32767
)

var (
	loginStartName = protocol.NewField[string]("name", protocol.String(MaxUsernameLen))
	loginStartUUID = protocol.NewField("player_uuid", protocol.Type[protocol.Option[uuid.UUID]](protocol.Optional(protocol.UUID)))
	loginStartRecord = protocol.NewRecord("LoginStart", loginStartName, loginStartUUID)

	encryptionResponseSecret = protocol.NewField("shared_secret", protocol.ByteArray)
	encryptionResponseToken  = protocol.NewField("verify_token", protocol.ByteArray)
	encryptionResponseRecord = protocol.NewRecord("EncryptionResponse", encryptionResponseSecret, encryptionResponseToken)

	pluginResponseID     = protocol.NewField("message_id", protocol.VarInt)
	pluginResponseData   = protocol.NewField("data", protocol.Type[protocol.Option[[]byte]](protocol.Optional(protocol.TrailingBytes)))
	pluginResponseRecord = protocol.NewRecord("LoginPluginResponse", pluginResponseID, pluginResponseData)

	disconnectReason = protocol.NewField[chat.MessageView]("reason", chat.Field)
	disconnectRecord = protocol.NewRecord("Disconnect", disconnectReason)

	encryptionRequestServerID = protocol.NewField[string]("server_id", protocol.String(MaxServerIDLen))
	encryptionRequestKey      = protocol.NewField("public_key", protocol.ByteArray)
	encryptionRequestToken    = protocol.NewField("verify_token", protocol.ByteArray)
	encryptionRequestRecord   = protocol.NewRecord("EncryptionRequest",
		encryptionRequestServerID, encryptionRequestKey, encryptionRequestToken)

	loginSuccessUUID       = protocol.NewField("uuid", protocol.UUID)
	loginSuccessUsername   = protocol.NewField[string]("username", protocol.String(MaxUsernameLen))
	loginSuccessProperties = protocol.NewField[protocol.List[Property]]("properties", protocol.Array[Property](propertyType{}, 0))
	loginSuccessRecord     = protocol.NewRecord("LoginSuccess",
		loginSuccessUUID, loginSuccessUsername, loginSuccessProperties)

	setCompressionThreshold = protocol.NewField("threshold", protocol.VarInt)
	setCompressionRecord    = protocol.NewRecord("SetCompression", setCompressionThreshold)

	pluginRequestID      = protocol.NewField("message_id", protocol.VarInt)
	pluginRequestChannel = protocol.NewField[string]("channel", protocol.Identifier)
	pluginRequestData    = protocol.NewField("data", protocol.TrailingBytes)
	pluginRequestRecord  = protocol.NewRecord("LoginPluginRequest",
		pluginRequestID, pluginRequestChannel, pluginRequestData)
)

// LoginStart begins a login with the player's name.
type LoginStart struct {
	Username   string
	PlayerUUID protocol.Option[uuid.UUID]
}

func buildLoginStart(v protocol.RecordView) Packet {
	return &LoginStart{
		Username:   loginStartName.Get(v),
		PlayerUUID: loginStartUUID.Get(v),
	}
}

func (*LoginStart) ID() int32        { return 0x00 }
func (*LoginStart) State() State     { return Login }
func (*LoginStart) Bound() Direction { return ServerBound }
func (*LoginStart) Name() string     { return "LoginStart" }

func (p *LoginStart) EncodeBody(e *protocol.Encoder) error {
	return loginStartRecord.Build(e,
		loginStartName.Value(p.Username),
		loginStartUUID.Value(p.PlayerUUID),
	)
}

// EncryptionResponse answers an EncryptionRequest.
type EncryptionResponse struct {
	SharedSecret []byte
	VerifyToken  []byte
}

func buildEncryptionResponse(v protocol.RecordView) Packet {
	return &EncryptionResponse{
		SharedSecret: cloneBytes(encryptionResponseSecret.Get(v)),
		VerifyToken:  cloneBytes(encryptionResponseToken.Get(v)),
	}
}

func (*EncryptionResponse) ID() int32        { return 0x01 }
func (*EncryptionResponse) State() State     { return Login }
func (*EncryptionResponse) Bound() Direction { return ServerBound }
func (*EncryptionResponse) Name() string     { return "EncryptionResponse" }

func (p *EncryptionResponse) EncodeBody(e *protocol.Encoder) error {
	return encryptionResponseRecord.Build(e,
		encryptionResponseSecret.Value(p.SharedSecret),
		encryptionResponseToken.Value(p.VerifyToken),
	)
}

// LoginPluginResponse answers a LoginPluginRequest. Data is absent when
// the client did not understand the channel.
type LoginPluginResponse struct {
	MessageID int32
	Data      protocol.Option[[]byte]
}

func buildLoginPluginResponse(v protocol.RecordView) Packet {
	data := pluginResponseData.Get(v)
	data.Value = cloneBytes(data.Value)
	return &LoginPluginResponse{
		MessageID: pluginResponseID.Get(v),
		Data:      data,
	}
}

func (*LoginPluginResponse) ID() int32        { return 0x02 }
func (*LoginPluginResponse) State() State     { return Login }
func (*LoginPluginResponse) Bound() Direction { return ServerBound }
func (*LoginPluginResponse) Name() string     { return "LoginPluginResponse" }

func (p *LoginPluginResponse) EncodeBody(e *protocol.Encoder) error {
	return pluginResponseRecord.Build(e,
		pluginResponseID.Value(p.MessageID),
		pluginResponseData.Value(p.Data),
	)
}

// Disconnect ends a login with a chat message shown to the player.
type Disconnect struct {
	Reason chat.MessageView
}

// NewDisconnect builds a Disconnect from an owned message.
func NewDisconnect(reason chat.Message) (*Disconnect, error) {
	view, err := chat.ViewOf(reason)
	if err != nil {
		return nil, err
	}
	return &Disconnect{Reason: view}, nil
}

func buildDisconnect(v protocol.RecordView) Packet {
	return &Disconnect{Reason: disconnectReason.Get(v)}
}

func (*Disconnect) ID() int32        { return 0x00 }
func (*Disconnect) State() State     { return Login }
func (*Disconnect) Bound() Direction { return ClientBound }
func (*Disconnect) Name() string     { return "Disconnect" }

func (p *Disconnect) EncodeBody(e *protocol.Encoder) error {
	return disconnectRecord.Build(e, disconnectReason.Value(p.Reason))
}

// EncryptionRequest starts encryption.
type EncryptionRequest struct {
	ServerID    string
	PublicKey   []byte
	VerifyToken []byte
}

func buildEncryptionRequest(v protocol.RecordView) Packet {
	return &EncryptionRequest{
		ServerID:    encryptionRequestServerID.Get(v),
		PublicKey:   cloneBytes(encryptionRequestKey.Get(v)),
		VerifyToken: cloneBytes(encryptionRequestToken.Get(v)),
	}
}

func (*EncryptionRequest) ID() int32        { return 0x01 }
func (*EncryptionRequest) State() State     { return Login }
func (*EncryptionRequest) Bound() Direction { return ClientBound }
func (*EncryptionRequest) Name() string     { return "EncryptionRequest" }

func (p *EncryptionRequest) EncodeBody(e *protocol.Encoder) error {
	return encryptionRequestRecord.Build(e,
		encryptionRequestServerID.Value(p.ServerID),
		encryptionRequestKey.Value(p.PublicKey),
		encryptionRequestToken.Value(p.VerifyToken),
	)
}

// LoginSuccess completes a login.
type LoginSuccess struct {
	UUID       uuid.UUID
	Username   string
	Properties []Property
}

func buildLoginSuccess(v protocol.RecordView) Packet {
	return &LoginSuccess{
		UUID:       loginSuccessUUID.Get(v),
		Username:   loginSuccessUsername.Get(v),
		Properties: loginSuccessProperties.Get(v).Slice(),
	}
}

func (*LoginSuccess) ID() int32        { return 0x02 }
func (*LoginSuccess) State() State     { return Login }
func (*LoginSuccess) Bound() Direction { return ClientBound }
func (*LoginSuccess) Name() string     { return "LoginSuccess" }

func (p *LoginSuccess) EncodeBody(e *protocol.Encoder) error {
	return loginSuccessRecord.Build(e,
		loginSuccessUUID.Value(p.UUID),
		loginSuccessUsername.Value(p.Username),
		loginSuccessProperties.Value(protocol.ListOf(p.Properties...)),
	)
}

// SetCompression switches the connection to compressed framing.
type SetCompression struct {
	Threshold int32
}

func buildSetCompression(v protocol.RecordView) Packet {
	return &SetCompression{Threshold: setCompressionThreshold.Get(v)}
}

func (*SetCompression) ID() int32        { return 0x03 }
func (*SetCompression) State() State     { return Login }
func (*SetCompression) Bound() Direction { return ClientBound }
func (*SetCompression) Name() string     { return "SetCompression" }

func (p *SetCompression) EncodeBody(e *protocol.Encoder) error {
	return setCompressionRecord.Build(e, setCompressionThreshold.Value(p.Threshold))
}

// LoginPluginRequest asks the client about a custom channel.
type LoginPluginRequest struct {
	MessageID int32
	Channel   string
	Data      []byte
}

func buildLoginPluginRequest(v protocol.RecordView) Packet {
	return &LoginPluginRequest{
		MessageID: pluginRequestID.Get(v),
		Channel:   pluginRequestChannel.Get(v),
		Data:      cloneBytes(pluginRequestData.Get(v)),
	}
}

func (*LoginPluginRequest) ID() int32        { return 0x04 }
func (*LoginPluginRequest) State() State     { return Login }
func (*LoginPluginRequest) Bound() Direction { return ClientBound }
func (*LoginPluginRequest) Name() string     { return "LoginPluginRequest" }

func (p *LoginPluginRequest) EncodeBody(e *protocol.Encoder) error {
	return pluginRequestRecord.Build(e,
		pluginRequestID.Value(p.MessageID),
		pluginRequestChannel.Value(p.Channel),
		pluginRequestData.Value(p.Data),
	)
}
