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

package performance

import (
	"context"
	"net"
	"syscall"
	"time"
)

// SocketOptions tunes listeners and accepted connections.
type SocketOptions struct {
	ReusePort   bool
	NoDelay     bool
	KeepAlive   time.Duration
	ReadBuffer  int
	WriteBuffer int
}

// DefaultSocketOptions returns the options used when nothing is configured.
func DefaultSocketOptions() SocketOptions {
	return SocketOptions{
		NoDelay:   true,
		KeepAlive: 30 * time.Second,
	}
}

// Listen opens a TCP listener on addr with opts applied to the socket
// before it is bound.
func Listen(ctx context.Context, addr string, opts SocketOptions) (net.Listener, error) {
	lc := net.ListenConfig{
		KeepAlive: opts.KeepAlive,
		Control: func(network, address string, c syscall.RawConn) error {
			if !opts.ReusePort {
				return nil
			}
			var serr error
			err := c.Control(func(fd uintptr) {
				serr = setReusePort(fd)
			})
			if err != nil {
				return err
			}
			return serr
		},
	}
	return lc.Listen(ctx, "tcp", addr)
}

// TuneConn applies per-connection options. Connections that are not TCP
// are left alone.
func TuneConn(conn net.Conn, opts SocketOptions) {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	tcpConn.SetNoDelay(opts.NoDelay)
	if opts.KeepAlive > 0 {
		tcpConn.SetKeepAlive(true)
		tcpConn.SetKeepAlivePeriod(opts.KeepAlive)
	}
	if opts.ReadBuffer > 0 {
		tcpConn.SetReadBuffer(opts.ReadBuffer)
	}
	if opts.WriteBuffer > 0 {
		tcpConn.SetWriteBuffer(opts.WriteBuffer)
	}
	if opts.NoDelay {
		if raw, err := tcpConn.SyscallConn(); err == nil {
			raw.Control(func(fd uintptr) {
				setQuickAck(fd)
			})
		}
	}
}

// ReusePortSupported reports whether SO_REUSEPORT is available.
func ReusePortSupported() bool {
	return reusePortSupported()
}
