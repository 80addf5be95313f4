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
Package client provides the craftwire Go client library.

A Client owns one connection and walks it through the handshake into
either the Status or the Login state, the same way a game client does
when it refreshes a server list entry or joins.

QUICK START:
============

	c, err := client.NewClient("localhost:8080")
	defer c.Close()

	status, err := c.Status()
	rtt, err := c.Ping(time.Now().UnixMilli())

	// Login needs its own connection.
	c2, _ := client.NewClient("localhost:8080")
	result, err := c2.Login("Steve", nil)
	fmt.Println(result.Reason.PlainText())

WEBSOCKET:
==========
Addresses starting with ws:// or wss:// are dialled through the WebSocket
gateway; everything else is plain TCP.

THREAD SAFETY:
==============
A Client serializes its operations. Use one Client per goroutine for
concurrent probes, as Probe does.
*/
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"craftwire/internal/chat"
	"craftwire/internal/jsondoc"
	"craftwire/internal/packet"
	"craftwire/internal/protocol"
	"craftwire/internal/server/ws"
	"craftwire/internal/transport"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultProtocolVersion is announced in the handshake unless overridden.
const DefaultProtocolVersion int32 = 760

var (
	// ErrWrongState is returned when an operation does not fit the
	// connection's current state.
	ErrWrongState = errors.New("client: operation not valid in current state")
	// ErrPingMismatch is returned when a pong echoes a different payload.
	ErrPingMismatch = errors.New("client: ping payload mismatch")
	// ErrUnexpectedPacket is returned for a valid packet the client cannot act on.
	ErrUnexpectedPacket = errors.New("client: unexpected packet")
)

// ClientOptions configures the client connection.
type ClientOptions struct {
	// Connection behavior
	MaxRetries     int // Maximum connection attempts (default: 3)
	RetryDelayMs   int // Delay between attempts in milliseconds (default: 500)
	ConnectTimeout int // Connection timeout in seconds (default: 10)
	IOTimeout      int // Per-operation read/write timeout in seconds (default: 10)

	// Handshake fields
	ProtocolVersion int32  // default DefaultProtocolVersion
	ServerHost      string // defaults to the host part of the address
	ServerPort      uint16 // defaults to the port part of the address
}

// Client is one protocol connection.
type Client struct {
	addr   string
	opts   ClientOptions
	conn   net.Conn
	stream *transport.Stream
	state  packet.State
	mu     sync.Mutex
}

// Version is the version block of a status response.
type Version struct {
	Name     string `json:"name"`
	Protocol int32  `json:"protocol"`
}

// PlayerSample is one entry of the players.sample list.
type PlayerSample struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Players is the players block of a status response.
type Players struct {
	Max    int            `json:"max"`
	Online int            `json:"online"`
	Sample []PlayerSample `json:"sample,omitempty"`
}

// StatusResult is a decoded status response. Raw holds the JSON text as
// received; Description is nil when the server sent none.
type StatusResult struct {
	Raw         string
	Version     Version
	Players     Players
	Description chat.Message
}

// LoginResult is the server's answer to LoginStart.
type LoginResult struct {
	// Reason is set when the server disconnected the login.
	Reason chat.Message
	// Success is set when the server accepted the login.
	Success *packet.LoginSuccess
}

// NewClient creates a new client connected to the specified address.
func NewClient(addr string) (*Client, error) {
	return NewClientWithOptions(addr, ClientOptions{})
}

// NewClientWithOptions creates a new client with custom options.
func NewClientWithOptions(addr string, opts ClientOptions) (*Client, error) {
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryDelayMs == 0 {
		opts.RetryDelayMs = 500
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 10
	}
	if opts.IOTimeout == 0 {
		opts.IOTimeout = 10
	}
	if opts.ProtocolVersion == 0 {
		opts.ProtocolVersion = DefaultProtocolVersion
	}
	if opts.ServerHost == "" || opts.ServerPort == 0 {
		host, port := splitTarget(addr)
		if opts.ServerHost == "" {
			opts.ServerHost = host
		}
		if opts.ServerPort == 0 {
			opts.ServerPort = port
		}
	}

	c := &Client{addr: addr, opts: opts, state: packet.Handshake}
	if err := c.connectWithRetry(); err != nil {
		return nil, err
	}
	return c, nil
}

// splitTarget extracts the host and port announced in the handshake.
func splitTarget(addr string) (string, uint16) {
	hostport := addr
	if u, err := url.Parse(addr); err == nil && (u.Scheme == "ws" || u.Scheme == "wss") {
		hostport = u.Host
	}
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return hostport, 0
	}
	port, _ := strconv.ParseUint(portStr, 10, 16)
	return host, uint16(port)
}

func isWebSocket(addr string) bool {
	return strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://")
}

// connectWithRetry dials the address, retrying on failure.
func (c *Client) connectWithRetry() error {
	var lastErr error
	for attempt := 0; attempt < c.opts.MaxRetries; attempt++ {
		if err := c.connect(); err != nil {
			lastErr = err
			if attempt < c.opts.MaxRetries-1 {
				time.Sleep(time.Duration(c.opts.RetryDelayMs) * time.Millisecond)
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("failed to connect after %d attempts: %w", c.opts.MaxRetries, lastErr)
}

func (c *Client) connect() error {
	timeout := time.Duration(c.opts.ConnectTimeout) * time.Second

	var conn net.Conn
	var err error
	if isWebSocket(c.addr) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		conn, err = ws.Dial(ctx, c.addr, nil)
		cancel()
	} else {
		conn, err = net.DialTimeout("tcp", c.addr, timeout)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.addr, err)
	}

	c.conn = conn
	c.stream = transport.NewStream(conn, transport.NewCodec(transport.DefaultConfig()))
	return nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	c.stream.Release()
	err := c.conn.Close()
	c.conn = nil
	return err
}

// State returns the connection state.
func (c *Client) State() packet.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Addr returns the address the client dialled.
func (c *Client) Addr() string {
	return c.addr
}

func (c *Client) deadline() {
	c.conn.SetDeadline(time.Now().Add(time.Duration(c.opts.IOTimeout) * time.Second))
}

func (c *Client) send(p packet.Packet) error {
	if c.conn == nil {
		return net.ErrClosed
	}
	c.deadline()
	err := c.stream.WriteBody(func(e *protocol.Encoder) error {
		return packet.Encode(e, p)
	})
	if err != nil {
		return fmt.Errorf("send %s: %w", p.Name(), err)
	}
	return nil
}

func (c *Client) recv() (packet.Packet, error) {
	if c.conn == nil {
		return nil, net.ErrClosed
	}
	c.deadline()
	frame, err := c.stream.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	p, err := packet.Decode(c.state, packet.ClientBound, frame.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s packet: %w", c.state, err)
	}
	return p, nil
}

// handshake moves a fresh connection into next.
func (c *Client) handshake(next packet.State) error {
	if c.state != packet.Handshake {
		return fmt.Errorf("%w: handshake in %s", ErrWrongState, c.state)
	}
	var intent int32
	switch next {
	case packet.Status:
		intent = 1
	case packet.Login:
		intent = 2
	default:
		return fmt.Errorf("%w: cannot hand over to %s", ErrWrongState, next)
	}
	err := c.send(&packet.HandshakePacket{
		Version:    c.opts.ProtocolVersion,
		ServerAddr: c.opts.ServerHost,
		Port:       c.opts.ServerPort,
		NextState:  intent,
	})
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// Status requests the server status. A fresh connection is handed over to
// the Status state first.
func (c *Client) Status() (*StatusResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == packet.Handshake {
		if err := c.handshake(packet.Status); err != nil {
			return nil, err
		}
	}
	if c.state != packet.Status {
		return nil, fmt.Errorf("%w: status in %s", ErrWrongState, c.state)
	}
	if err := c.send(&packet.StatusRequest{}); err != nil {
		return nil, err
	}
	p, err := c.recv()
	if err != nil {
		return nil, err
	}
	resp, ok := p.(*packet.StatusResponse)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedPacket, p.Name())
	}
	return ParseStatus(resp.JSON)
}

// Ping sends payload and waits for it to come back, returning the round
// trip time. A fresh connection is handed over to the Status state first.
func (c *Client) Ping(payload int64) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == packet.Handshake {
		if err := c.handshake(packet.Status); err != nil {
			return 0, err
		}
	}
	if c.state != packet.Status {
		return 0, fmt.Errorf("%w: ping in %s", ErrWrongState, c.state)
	}

	start := time.Now()
	if err := c.send(&packet.PingRequest{Payload: payload}); err != nil {
		return 0, err
	}
	p, err := c.recv()
	if err != nil {
		return 0, err
	}
	rtt := time.Since(start)
	pong, ok := p.(*packet.PingResponse)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnexpectedPacket, p.Name())
	}
	if pong.Payload != payload {
		return 0, fmt.Errorf("%w: sent %d, got %d", ErrPingMismatch, payload, pong.Payload)
	}
	return rtt, nil
}

// Login starts a login as name. id may be nil. The connection must be
// fresh. Encryption and compression requests are reported as errors.
func (c *Client) Login(name string, id *uuid.UUID) (*LoginResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.handshake(packet.Login); err != nil {
		return nil, err
	}
	start := &packet.LoginStart{Username: name, PlayerUUID: protocol.None[uuid.UUID]()}
	if id != nil {
		start.PlayerUUID = protocol.Some(*id)
	}
	if err := c.send(start); err != nil {
		return nil, err
	}

	p, err := c.recv()
	if err != nil {
		return nil, err
	}
	switch p := p.(type) {
	case *packet.Disconnect:
		reason, err := p.Reason.Reify()
		if err != nil {
			return nil, fmt.Errorf("disconnect reason: %w", err)
		}
		return &LoginResult{Reason: reason}, nil
	case *packet.LoginSuccess:
		c.state = packet.Play
		return &LoginResult{Success: p}, nil
	default:
		return nil, fmt.Errorf("%w: %s is not supported", ErrUnexpectedPacket, p.Name())
	}
}

// statusDocument mirrors the status JSON. Description may be a string, an
// object or an array, so it is decoded separately.
type statusDocument struct {
	Version     Version             `json:"version"`
	Players     Players             `json:"players"`
	Description jsoniter.RawMessage `json:"description"`
}

// ParseStatus decodes a status response body.
func ParseStatus(text string) (*StatusResult, error) {
	var doc statusDocument
	if err := json.UnmarshalFromString(text, &doc); err != nil {
		return nil, fmt.Errorf("parse status: %w", err)
	}
	res := &StatusResult{
		Raw:     text,
		Version: doc.Version,
		Players: doc.Players,
	}
	if len(doc.Description) > 0 && string(doc.Description) != "null" {
		desc, err := parseChat(doc.Description)
		if err != nil {
			return nil, fmt.Errorf("parse status description: %w", err)
		}
		res.Description = desc
	}
	return res, nil
}

func parseChat(raw []byte) (chat.Message, error) {
	d, err := jsondoc.Parse(raw)
	if err != nil {
		return nil, err
	}
	view, err := chat.Schema.Shortcut(d, d.Root())
	if err != nil {
		return nil, err
	}
	return view.Reify()
}
