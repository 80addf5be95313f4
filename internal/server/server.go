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
Package server implements the craftwire TCP server that handles client connections.

ARCHITECTURE OVERVIEW:
======================
The server accepts TCP connections, hands each one to a connection driver
and logs the outcome. The driver owns the protocol state machine:

	Handshake --next_state=1--> Status   (StatusRequest, PingRequest)
	          --next_state=2--> Login    (LoginStart, EncryptionResponse, LoginPluginResponse)

Every Login packet is answered with a Disconnect and the connection is
closed. Play is never entered.

CONNECTION FLOW:
================
1. Client connects (plain TCP, or a WebSocket through ServeConn)
2. Server spawns a goroutine for the connection
3. The driver reads frames in a loop and dispatches them for the current state
4. Any decode error is fatal: the connection is closed and the error logged
5. The outcome is logged as closed, lost or failed

THREAD SAFETY:
==============
- Connections share no mutable protocol state
- Frames of one connection are handled strictly in arrival order
- Stop closes the listener and every open connection, then waits for the
  handlers to return
*/
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"craftwire/internal/config"
	"craftwire/internal/logging"
	"craftwire/internal/performance"
	"craftwire/internal/transport"
)

// Transport names used in logs and metrics.
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "ws"
)

// Connection outcomes reported to the Recorder.
const (
	OutcomeClosed = "closed"
	OutcomeLost   = "lost"
	OutcomeError  = "error"
)

// Recorder receives connection and packet statistics. *metrics.Metrics
// implements it.
type Recorder interface {
	transport.Observer
	ConnectionOpened(transport string)
	ConnectionClosed(transport, outcome string)
	PacketDecoded(state, name string)
	DecodeError(kind string)
	StateTransition(state string)
}

type nopRecorder struct{}

func (nopRecorder) FrameRead(int)                   {}
func (nopRecorder) FrameWritten(int)                {}
func (nopRecorder) ConnectionOpened(string)         {}
func (nopRecorder) ConnectionClosed(string, string) {}
func (nopRecorder) PacketDecoded(string, string)    {}
func (nopRecorder) DecodeError(string)              {}
func (nopRecorder) StateTransition(string)          {}

// Server accepts connections and runs the protocol driver on each.
type Server struct {
	config      *config.Config
	statusJSON  string
	readTimeout time.Duration

	logger      *logging.Logger
	connLogger  *logging.ConnectionLogger
	protoLogger *logging.ProtocolLogger
	errLogger   *logging.ErrorLogger
	recorder    Recorder

	mu      sync.RWMutex
	ln      net.Listener
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	conns  sync.Map // net.Conn -> time.Time
	active atomic.Int64
}

// NewServer creates a server for cfg. The status response body is resolved
// once here.
func NewServer(cfg *config.Config) (*Server, error) {
	statusJSON, err := cfg.Status.ResponseJSON()
	if err != nil {
		return nil, fmt.Errorf("build status response: %w", err)
	}

	logger := logging.NewLogger("server")
	return &Server{
		config:      cfg,
		statusJSON:  statusJSON,
		readTimeout: time.Duration(cfg.Protocol.ReadTimeoutSeconds) * time.Second,
		logger:      logger,
		connLogger:  logging.NewConnectionLogger(logger),
		protoLogger: logging.NewProtocolLogger(logging.NewLogger("protocol")),
		errLogger:   logging.NewErrorLogger(logger),
		recorder:    nopRecorder{},
		stopCh:      make(chan struct{}),
	}, nil
}

// SetRecorder installs r; nil restores the no-op recorder. Call before Start.
func (s *Server) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	s.recorder = r
}

// Start binds the configured address and accepts connections in the background.
func (s *Server) Start() error {
	opts := performance.SocketOptions{
		ReusePort:   s.config.Performance.ReusePort,
		NoDelay:     s.config.Performance.NoDelay,
		KeepAlive:   performance.DefaultSocketOptions().KeepAlive,
		ReadBuffer:  s.config.Performance.ReadBuffer,
		WriteBuffer: s.config.Performance.WriteBuffer,
	}
	ln, err := performance.Listen(context.Background(), s.config.BindAddr, opts)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections from ln in the background.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	select {
	case <-s.stopCh:
		s.mu.Unlock()
		return fmt.Errorf("server stopped")
	default:
	}
	s.ln = ln
	s.running = true
	s.mu.Unlock()

	if s.config.CompressionEnabled() {
		s.logger.Warn("Compression threshold set but compressed framing is not supported; every frame will be rejected",
			"threshold", s.config.Protocol.CompressionThreshold)
	}
	s.logger.Info("Server started", "addr", ln.Addr().String())

	go s.acceptLoop(ln)
	return nil
}

// Addr returns the listener address, or nil if not started.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Listening reports whether the accept loop is running.
func (s *Server) Listening() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// ActiveConnections returns the number of connections being served.
func (s *Server) ActiveConnections() int {
	return int(s.active.Load())
}

// Stop stops accepting, closes every open connection and waits for the
// handlers to finish. It is idempotent.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	err := s.ln.Close()
	s.mu.Unlock()

	s.conns.Range(func(key, _ interface{}) bool {
		key.(net.Conn).Close()
		return true
	})
	s.wg.Wait()

	s.logger.Info("Server stopped")
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	return err
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Error("Accept error", "error", err)
			continue
		}
		if !s.track(conn) {
			conn.Close()
			return
		}
		performance.TuneConn(conn, s.socketOptions())
		go func() {
			defer s.wg.Done()
			s.handleConn(conn, TransportTCP)
		}()
	}
}

func (s *Server) socketOptions() performance.SocketOptions {
	return performance.SocketOptions{
		NoDelay:     s.config.Performance.NoDelay,
		KeepAlive:   performance.DefaultSocketOptions().KeepAlive,
		ReadBuffer:  s.config.Performance.ReadBuffer,
		WriteBuffer: s.config.Performance.WriteBuffer,
	}
}

// ServeConn runs the driver on a connection accepted elsewhere, such as a
// WebSocket gateway, and blocks until it ends. The connection is closed on
// return.
func (s *Server) ServeConn(conn net.Conn, transportName string) {
	if !s.track(conn) {
		conn.Close()
		return
	}
	defer s.wg.Done()
	s.handleConn(conn, transportName)
}

// track registers conn with the wait group and the open connection set. It
// holds the read lock so that Stop, which closes everything in the set after
// taking the write lock, either sees conn or makes track fail.
func (s *Server) track(conn net.Conn) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return false
	}
	s.wg.Add(1)
	s.conns.Store(conn, time.Now())
	return true
}

func (s *Server) handleConn(conn net.Conn, transportName string) {
	defer conn.Close()

	start := time.Now()
	defer s.conns.Delete(conn)
	s.active.Add(1)
	defer s.active.Add(-1)

	s.recorder.ConnectionOpened(transportName)
	id := s.connLogger.LogNewConnection(conn.RemoteAddr(), conn.LocalAddr(), transportName)

	d := newDriver(s, conn, id)
	err := d.run()

	outcome := s.logOutcome(id, conn.RemoteAddr(), err, time.Since(start), d)
	s.recorder.ConnectionClosed(transportName, outcome)
}

func (s *Server) logOutcome(id string, remote net.Addr, err error, elapsed time.Duration, d *driver) string {
	switch {
	case err == nil:
		s.connLogger.LogConnectionClosed(id, remote, "server_disconnect", elapsed)
		return OutcomeClosed
	case errors.Is(err, io.EOF):
		s.connLogger.LogConnectionClosed(id, remote, "client_disconnect", elapsed)
		return OutcomeClosed
	case s.stopping() && (errors.Is(err, net.ErrClosed) || errors.Is(err, os.ErrDeadlineExceeded)):
		s.connLogger.LogConnectionClosed(id, remote, "shutdown", elapsed)
		return OutcomeClosed
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.connLogger.LogConnectionLost(id, remote, err)
		return OutcomeLost
	default:
		s.connLogger.LogConnectionError(id, remote, fmt.Errorf("in state %s: %w", d.state, err))
		return OutcomeError
	}
}

func (s *Server) stopping() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

// Run starts the server and the given side services, blocks until stop is
// closed or one of them fails, then shuts everything down.
func Run(stop <-chan struct{}, s *Server, services ...Service) error {
	if err := s.Start(); err != nil {
		return err
	}

	var g errgroup.Group
	for _, svc := range services {
		svc := svc
		g.Go(svc.Start)
	}
	startErr := g.Wait()

	if startErr == nil {
		<-stop
	}

	var stopGroup errgroup.Group
	for _, svc := range services {
		svc := svc
		stopGroup.Go(svc.Stop)
	}
	stopGroup.Go(s.Stop)
	if err := stopGroup.Wait(); err != nil && startErr == nil {
		return err
	}
	return startErr
}

// Service is a side listener started and stopped alongside the server.
type Service interface {
	Start() error
	Stop() error
}
