package ws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"craftwire/internal/config"
	"craftwire/internal/logging"
	"craftwire/internal/packet"
	"craftwire/internal/protocol"
	"craftwire/internal/server"
	"craftwire/internal/transport"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
)

func newTestGateway(t *testing.T, statusJSON string) (*httptest.Server, *server.Server) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.BindAddr = "127.0.0.1:0"
	cfg.Protocol.ReadTimeoutSeconds = 5
	cfg.Status.JSON = statusJSON
	srv, err := server.NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ln, err := net.Listen("tcp", cfg.BindAddr)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	if err := srv.Serve(ln); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	gw := NewGateway(config.WSConfig{Enabled: true, Path: "/ws"}, srv, logging.NewLogger("test"))
	hs := httptest.NewServer(gw.Handler())
	t.Cleanup(hs.Close)
	return hs, srv
}

func wsURL(hs *httptest.Server) string {
	return "ws" + strings.TrimPrefix(hs.URL, "http") + "/ws"
}

// encodeFrames returns the framed bytes of pks back to back.
func encodeFrames(t *testing.T, pks ...packet.Packet) []byte {
	t.Helper()
	var buf bytes.Buffer
	s := transport.NewStream(&buf, transport.NewCodec(transport.DefaultConfig()))
	for _, pk := range pks {
		err := s.WriteBody(func(e *protocol.Encoder) error { return packet.Encode(e, pk) })
		if err != nil {
			t.Fatalf("encode %s: %v", pk.Name(), err)
		}
	}
	return buf.Bytes()
}

func TestGateway_StatusAndPing(t *testing.T) {
	statusJSON := `{"description":{"text":"over websocket"}}`
	hs, _ := newTestGateway(t, statusJSON)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := Dial(ctx, wsURL(hs), nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	s := transport.NewStream(conn, transport.NewCodec(transport.DefaultConfig()))
	send := func(pk packet.Packet) {
		t.Helper()
		err := s.WriteBody(func(e *protocol.Encoder) error { return packet.Encode(e, pk) })
		if err != nil {
			t.Fatalf("send %s: %v", pk.Name(), err)
		}
	}
	recv := func() packet.Packet {
		t.Helper()
		f, err := s.ReadFrame()
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
		pk, err := packet.Decode(packet.Status, packet.ClientBound, f.Body)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		return pk
	}

	send(&packet.HandshakePacket{Version: 760, ServerAddr: "localhost", Port: 8081, NextState: 1})
	send(&packet.StatusRequest{})
	if diff := cmp.Diff(&packet.StatusResponse{JSON: statusJSON}, recv()); diff != "" {
		t.Errorf("status response mismatch (-want +got):\n%s", diff)
	}

	send(&packet.PingRequest{Payload: 42})
	if diff := cmp.Diff(&packet.PingResponse{Payload: 42}, recv()); diff != "" {
		t.Errorf("ping response mismatch (-want +got):\n%s", diff)
	}
}

func TestGateway_FramesSpanMessages(t *testing.T) {
	hs, _ := newTestGateway(t, `{}`)

	raw, _, err := websocket.DefaultDialer.Dial(wsURL(hs), nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer raw.Close()
	raw.SetReadDeadline(time.Now().Add(5 * time.Second))

	data := encodeFrames(t,
		&packet.HandshakePacket{Version: 760, ServerAddr: "localhost", Port: 8081, NextState: 1},
		&packet.StatusRequest{},
	)
	// Split mid-frame and send one byte on its own.
	for _, chunk := range [][]byte{data[:3], data[3:4], data[4:]} {
		if err := raw.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	mt, msg, err := raw.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if mt != websocket.BinaryMessage {
		t.Fatalf("message type = %d, want binary", mt)
	}

	s := transport.NewStream(bytes.NewBuffer(msg), transport.NewCodec(transport.DefaultConfig()))
	f, err := s.ReadFrame()
	if err != nil {
		t.Fatalf("one message should hold exactly one frame: %v", err)
	}
	pk, err := packet.Decode(packet.Status, packet.ClientBound, f.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(&packet.StatusResponse{JSON: `{}`}, pk); diff != "" {
		t.Errorf("status response mismatch (-want +got):\n%s", diff)
	}
	if s.Buffered() != 0 {
		t.Errorf("message carried %d extra bytes", s.Buffered())
	}
}

func TestGateway_TextMessageClosesConnection(t *testing.T) {
	hs, srv := newTestGateway(t, `{}`)

	raw, _, err := websocket.DefaultDialer.Dial(wsURL(hs), nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer raw.Close()
	raw.SetReadDeadline(time.Now().Add(5 * time.Second))

	if err := raw.WriteMessage(websocket.TextMessage, []byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err = raw.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected a normal close from the server, got %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for srv.ActiveConnections() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("connection still tracked after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCreateUpgrader_CheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no restrictions", nil, "https://evil.example", true},
		{"wildcard", []string{"*"}, "https://evil.example", true},
		{"no origin header", []string{"https://app.example"}, "", true},
		{"exact match", []string{"https://app.example"}, "https://app.example", true},
		{"suffix match", []string{"app.example"}, "https://play.app.example", true},
		{"rejected", []string{"https://app.example"}, "https://evil.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := createUpgrader(tt.allowed)
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := u.CheckOrigin(r); got != tt.want {
				t.Errorf("CheckOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"normal closure", &websocket.CloseError{Code: websocket.CloseNormalClosure}, io.EOF},
		{"going away", &websocket.CloseError{Code: websocket.CloseGoingAway}, io.EOF},
		{"abnormal closure", &websocket.CloseError{Code: websocket.CloseAbnormalClosure}, io.EOF},
		{"close sent", websocket.ErrCloseSent, net.ErrClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translateError(tt.in); !errors.Is(got, tt.want) {
				t.Errorf("translateError(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	policy := &websocket.CloseError{Code: websocket.ClosePolicyViolation, Text: "nope"}
	got := translateError(policy)
	if errors.Is(got, io.EOF) {
		t.Errorf("policy violation should not read as a clean close")
	}
	var ce *websocket.CloseError
	if !errors.As(got, &ce) || ce.Code != websocket.ClosePolicyViolation {
		t.Errorf("translateError lost the close code: %v", got)
	}

	plain := fmt.Errorf("boom")
	if got := translateError(plain); got != plain {
		t.Errorf("translateError(%v) = %v, want it unchanged", plain, got)
	}
}

func TestGateway_Disabled(t *testing.T) {
	gw := NewGateway(config.WSConfig{}, nil, logging.NewLogger("test"))
	if err := gw.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if gw.Addr() != nil {
		t.Errorf("disabled gateway should not listen")
	}
	if err := gw.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
}
