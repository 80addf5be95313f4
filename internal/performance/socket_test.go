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
	"io"
	"net"
	"testing"
	"time"
)

func TestGetBufferPool(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{0, SmallBufferSize},
		{SmallBufferSize, SmallBufferSize},
		{SmallBufferSize + 1, MediumBufferSize},
		{MediumBufferSize, MediumBufferSize},
		{1 << 21, LargeBufferSize},
	}

	for _, tt := range tests {
		if got := GetBufferPool(tt.size).Size(); got != tt.want {
			t.Errorf("GetBufferPool(%d).Size() = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestBufferPoolPut(t *testing.T) {
	pool := NewBufferPool(64)
	buf := pool.Get()
	if len(buf) != 64 {
		t.Fatalf("len(Get()) = %d, want 64", len(buf))
	}
	pool.Put(buf[:10])
	pool.Put(make([]byte, 8))

	if got := pool.Get(); len(got) != 64 {
		t.Errorf("len(Get()) after Put = %d, want 64", len(got))
	}
}

func TestListenAndTune(t *testing.T) {
	opts := DefaultSocketOptions()
	opts.ReadBuffer = 64 * 1024
	opts.WriteBuffer = 64 * 1024

	ln, err := Listen(context.Background(), "127.0.0.1:0", opts)
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	done := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			done <- err
			return
		}
		defer conn.Close()
		TuneConn(conn, opts)
		_, err = conn.Write([]byte("ok"))
		done <- err
	}()

	conn, err := net.DialTimeout("tcp", ln.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	buf := make([]byte, 2)
	if _, err := io.ReadFull(conn, buf); err != nil {
		t.Fatalf("ReadFull() error = %v", err)
	}
	if string(buf) != "ok" {
		t.Errorf("read %q, want %q", buf, "ok")
	}
	if err := <-done; err != nil {
		t.Errorf("server side error = %v", err)
	}
}

func TestListenReusePort(t *testing.T) {
	if !ReusePortSupported() {
		t.Skip("SO_REUSEPORT not supported on this platform")
	}
	opts := SocketOptions{ReusePort: true}

	first, err := Listen(context.Background(), "127.0.0.1:0", opts)
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer first.Close()

	second, err := Listen(context.Background(), first.Addr().String(), opts)
	if err != nil {
		t.Fatalf("second Listen() on %s error = %v", first.Addr(), err)
	}
	second.Close()
}

func TestTuneConnIgnoresNonTCP(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	TuneConn(a, DefaultSocketOptions())
}
