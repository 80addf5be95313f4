// Package ws provides a WebSocket gateway for craftwire.
//
// The gateway lets browser-based and other WebSocket clients speak the same
// framed protocol as TCP clients. Binary WebSocket messages carry the raw
// byte stream: message boundaries carry no meaning, so a frame may span
// several messages and one message may hold several frames. The server
// writes exactly one frame per message.
//
// Each upgraded connection is adapted to a net.Conn and handed to a
// ConnHandler, which runs the ordinary connection driver on it.
//
// # Close handling
//
// A close frame from the peer, or the underlying connection going away,
// reads as io.EOF. Text messages are a protocol error.
package ws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"craftwire/internal/config"
	"craftwire/internal/logging"

	"github.com/gorilla/websocket"
	"github.com/scylladb/go-set/strset"
)

// Default configuration values for WebSocket gateway
const (
	// DefaultReadBufferSize is the default size of the read buffer
	DefaultReadBufferSize = 4096
	// DefaultWriteBufferSize is the default size of the write buffer
	DefaultWriteBufferSize = 4096
	// DefaultPingInterval is the interval for sending ping frames
	DefaultPingInterval = 30 * time.Second
	// DefaultWriteTimeout is the timeout for control frames
	DefaultWriteTimeout = 10 * time.Second
)

// ErrTextMessage is returned when a peer sends a text message.
var ErrTextMessage = errors.New("ws: text messages are not supported, use binary messages")

// ConnHandler serves one connection and returns when it ends.
type ConnHandler interface {
	ServeConn(conn net.Conn, transport string)
}

// createUpgrader creates a WebSocket upgrader with the given configuration.
// If allowedOrigins is empty or contains "*", all origins are allowed.
func createUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := strset.New(allowedOrigins...)
	allowAll := allowed.IsEmpty() || allowed.Has("*")

	return websocket.Upgrader{
		ReadBufferSize:  DefaultReadBufferSize,
		WriteBufferSize: DefaultWriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			if allowAll {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				// not a browser
				return true
			}
			if allowed.Has(origin) {
				return true
			}
			match := false
			allowed.Each(func(a string) bool {
				match = strings.HasSuffix(origin, a)
				return !match
			})
			return match
		},
		EnableCompression: true,
	}
}

// Conn adapts a WebSocket connection to net.Conn.
//
// Reads may be issued from one goroutine and writes from another; the ping
// loop only uses control frames, which gorilla allows concurrently.
type Conn struct {
	ws     *websocket.Conn
	reader io.Reader

	writeMu sync.Mutex

	closeOnce  sync.Once
	pingTicker *time.Ticker
	done       chan struct{}
}

var _ net.Conn = (*Conn)(nil)

// NewConn wraps ws. A positive pingInterval starts a keepalive loop that
// stops on Close.
func NewConn(ws *websocket.Conn, pingInterval time.Duration) *Conn {
	c := &Conn{
		ws:   ws,
		done: make(chan struct{}),
	}
	if pingInterval > 0 {
		c.pingTicker = time.NewTicker(pingInterval)
		go c.pingLoop()
	}
	return c
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (c *Conn) pingLoop() {
	for {
		select {
		case <-c.done:
			return
		case <-c.pingTicker.C:
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(DefaultWriteTimeout))
			if err != nil {
				return
			}
		}
	}
}

// Read reads stream bytes from consecutive binary messages.
func (c *Conn) Read(p []byte) (int, error) {
	for {
		if c.reader == nil {
			mt, r, err := c.ws.NextReader()
			if err != nil {
				return 0, translateError(err)
			}
			if mt != websocket.BinaryMessage {
				return 0, ErrTextMessage
			}
			c.reader = r
		}
		n, err := c.reader.Read(p)
		if errors.Is(err, io.EOF) {
			c.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, translateError(err)
	}
}

// Write sends p as one binary message.
func (c *Conn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, translateError(err)
	}
	return len(p), nil
}

// Close sends a normal close frame and closes the connection.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		if c.pingTicker != nil {
			c.pingTicker.Stop()
		}
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) LocalAddr() net.Addr  { return c.ws.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr { return c.ws.RemoteAddr() }

func (c *Conn) SetDeadline(t time.Time) error {
	if err := c.ws.SetReadDeadline(t); err != nil {
		return err
	}
	return c.ws.SetWriteDeadline(t)
}

func (c *Conn) SetReadDeadline(t time.Time) error  { return c.ws.SetReadDeadline(t) }
func (c *Conn) SetWriteDeadline(t time.Time) error { return c.ws.SetWriteDeadline(t) }

// translateError maps close frames and abrupt closes to io.EOF so the frame
// reader can tell a clean close from a lost connection.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		switch ce.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway,
			websocket.CloseNoStatusReceived, websocket.CloseAbnormalClosure:
			return io.EOF
		}
		return fmt.Errorf("ws: closed by peer: %w", err)
	}
	if errors.Is(err, websocket.ErrCloseSent) {
		return net.ErrClosed
	}
	return err
}

// Dial opens a client connection to a gateway URL such as ws://host:8081/ws.
func Dial(ctx context.Context, url string, header http.Header) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	return NewConn(ws, 0), nil
}

// Gateway accepts WebSocket connections and hands them to a ConnHandler.
type Gateway struct {
	config   config.WSConfig
	handler  ConnHandler
	logger   *logging.Logger
	server   *http.Server
	ln       net.Listener
	upgrader websocket.Upgrader
}

// NewGateway creates a new WebSocket gateway.
func NewGateway(cfg config.WSConfig, h ConnHandler, logger *logging.Logger) *Gateway {
	if cfg.Path == "" {
		cfg.Path = "/ws"
	}
	return &Gateway{
		config:   cfg,
		handler:  h,
		logger:   logger,
		upgrader: createUpgrader(cfg.AllowedOrigins),
	}
}

// Handler returns the HTTP handler serving the gateway path.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(g.config.Path, g.handleWebSocket)
	return mux
}

// Start starts the WebSocket gateway.
func (g *Gateway) Start() error {
	if !g.config.Enabled {
		g.logger.Info("WebSocket gateway disabled")
		return nil
	}
	ln, err := net.Listen("tcp", g.config.Addr)
	if err != nil {
		return fmt.Errorf("ws: listen: %w", err)
	}
	g.ln = ln
	g.server = &http.Server{
		Handler:           g.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.logger.Info("WebSocket gateway listening", "addr", ln.Addr().String(), "path", g.config.Path)
	go func() {
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("WebSocket server failed", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (g *Gateway) Addr() net.Addr {
	if g.ln == nil {
		return nil
	}
	return g.ln.Addr()
}

// Stop stops the WebSocket gateway. Upgraded connections are owned by the
// handler and closed by it.
func (g *Gateway) Stop() error {
	if g.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.server.Shutdown(ctx)
}

func (g *Gateway) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		g.logger.Warn("WebSocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}
	conn := NewConn(ws, DefaultPingInterval)
	g.handler.ServeConn(conn, "ws")
}
