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

package server

import (
	"crypto/md5"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	"craftwire/internal/chat"
	"craftwire/internal/config"
	"craftwire/internal/logging"
	"craftwire/internal/packet"
	"craftwire/internal/protocol"
	"craftwire/internal/transport"
)

// driver runs the protocol state machine for one connection.
type driver struct {
	srv    *Server
	conn   net.Conn
	id     string
	stream *transport.Stream
	state  packet.State
	log    *logging.Logger
}

func newDriver(s *Server, conn net.Conn, id string) *driver {
	codec := transport.NewCodec(s.config.TransportConfig())
	stream := transport.NewStream(conn, codec)
	stream.SetObserver(s.recorder)
	return &driver{
		srv:    s,
		conn:   conn,
		id:     id,
		stream: stream,
		state:  packet.Handshake,
		log:    s.logger.With("connection_id", id),
	}
}

// run reads and handles frames until the peer leaves, a login ends the
// connection, or an error occurs. A nil return means the server chose to
// close.
func (d *driver) run() (err error) {
	defer d.stream.Release()
	defer d.srv.errLogger.Recover("connection "+d.id, &err)

	for {
		if d.srv.readTimeout > 0 {
			if err := d.conn.SetReadDeadline(time.Now().Add(d.srv.readTimeout)); err != nil {
				return err
			}
		}
		frame, err := d.stream.ReadFrame()
		if err != nil {
			if kind := errorKind(err); kind != "" {
				d.srv.recorder.DecodeError(kind)
			}
			return err
		}
		done, err := d.handleFrame(frame.Body)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// handleFrame decodes one frame in the current state and reacts to it.
func (d *driver) handleFrame(body []byte) (done bool, err error) {
	p, err := packet.Decode(d.state, packet.ServerBound, body)
	if err != nil {
		d.srv.recorder.DecodeError(errorKind(err))
		d.srv.protoLogger.LogDecodeError(d.id, d.state, err)
		return false, err
	}
	d.srv.recorder.PacketDecoded(d.state.String(), p.Name())
	d.srv.protoLogger.LogPacket(d.id, packet.ServerBound, d.state, p.Name(), len(body))

	switch p := p.(type) {
	case *packet.HandshakePacket:
		next, err := p.Next()
		if err != nil {
			d.srv.recorder.DecodeError(errorKind(err))
			return false, err
		}
		d.log.Debug("Received handshake",
			"version", p.Version, "server_addr", p.ServerAddr, "port", p.Port, "next_state", next)
		d.transition(next)
		return false, nil

	case *packet.StatusRequest:
		d.log.Info("Received status request")
		return false, d.send(&packet.StatusResponse{JSON: d.srv.statusJSON})

	case *packet.PingRequest:
		d.log.Info("Received ping request", "payload", p.Payload)
		return false, d.send(&packet.PingResponse{Payload: p.Payload})

	case *packet.LoginStart:
		player, supplied := p.PlayerUUID.Get()
		if !supplied {
			player = OfflineUUID(p.Username)
		}
		d.log.Info("Received login start request",
			"name", p.Username, "uuid", player.String(), "uuid_supplied", supplied)
		return true, d.disconnect(LoginDisconnect(d.srv.config.Login.DisconnectTemplate, d.conn.RemoteAddr()))

	case *packet.EncryptionResponse:
		d.log.Info("Received encryption response",
			"shared_secret_len", len(p.SharedSecret), "verify_token_len", len(p.VerifyToken))
		return true, d.disconnect(unsupported("encryption"))

	case *packet.LoginPluginResponse:
		_, hasData := p.Data.Get()
		d.log.Info("Received login plugin response", "message_id", p.MessageID, "has_data", hasData)
		return true, d.disconnect(unsupported("login plugins"))
	}

	// Decode only returns server-bound packets of the current state.
	return false, protocol.Errorf(0, packet.ErrUnknownPacket, "unhandled packet %s", p.Name())
}

func (d *driver) transition(next packet.State) {
	d.srv.protoLogger.LogStateTransition(d.id, d.state, next)
	d.srv.recorder.StateTransition(next.String())
	d.state = next
}

func (d *driver) send(p packet.Packet) error {
	err := d.stream.WriteBody(func(e *protocol.Encoder) error {
		return packet.Encode(e, p)
	})
	if err == nil {
		d.srv.protoLogger.LogSent(d.id, d.state, p.Name())
	}
	return err
}

func (d *driver) disconnect(reason chat.Message) error {
	p, err := packet.NewDisconnect(reason)
	if err != nil {
		return err
	}
	return d.send(p)
}

// errorKind returns the kind tag of a decode error, or "" for other errors.
func errorKind(err error) string {
	var perr *protocol.Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return ""
}

// LoginDisconnect renders the login disconnect template for remote. The text
// before config.AddrPlaceholder is red, the address white and bold. After the
// address, the text up to the first newline stays red and the rest is dark
// red italic.
func LoginDisconnect(template string, remote net.Addr) chat.Message {
	before, after, found := strings.Cut(template, config.AddrPlaceholder)
	if !found {
		return chat.Message{chat.Text(template).WithColor("red")}
	}

	addr := "unknown"
	if remote != nil {
		addr = remote.String()
	}
	msg := chat.Message{
		chat.Text(before).WithColor("red"),
		chat.Text(addr).WithColor("white").WithBold(true),
	}
	head, tail := after, ""
	if i := strings.IndexByte(after, '\n'); i >= 0 {
		head, tail = after[:i], after[i:]
	}
	if head != "" {
		msg = append(msg, chat.Text(head).WithColor("red"))
	}
	if tail != "" {
		msg = append(msg, chat.Text(tail).WithColor("dark_red").WithItalic(true))
	}
	return msg
}

func unsupported(what string) chat.Message {
	return chat.Message{chat.Text("This server does not support " + what + ".").WithColor("red")}
}

// OfflineUUID derives the name-based (version 3) UUID offline-mode servers
// assign to a player name.
func OfflineUUID(name string) uuid.UUID {
	sum := md5.Sum([]byte("OfflinePlayer:" + name))
	sum[6] = sum[6]&0x0f | 0x30
	sum[8] = sum[8]&0x3f | 0x80
	return uuid.UUID(sum)
}
