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
package client

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"craftwire/internal/chat"
)

// ProbeResult collects what a server reveals to an anonymous client.
type ProbeResult struct {
	Status *StatusResult
	RTT    time.Duration
	// LoginReason is the disconnect message shown on login, if any.
	LoginReason chat.Message
}

// Probe queries status and ping on one connection while attempting a login
// as name on a second, and returns once both finish. The first failure
// cancels the other probe by closing its connection.
func Probe(ctx context.Context, addr, name string, opts ClientOptions) (*ProbeResult, error) {
	g, ctx := errgroup.WithContext(ctx)
	var res ProbeResult

	g.Go(func() error {
		c, err := NewClientWithOptions(addr, opts)
		if err != nil {
			return err
		}
		defer c.Close()
		stop := closeOnDone(ctx, c)
		defer stop()

		if res.Status, err = c.Status(); err != nil {
			return err
		}
		res.RTT, err = c.Ping(time.Now().UnixMilli())
		return err
	})

	g.Go(func() error {
		c, err := NewClientWithOptions(addr, opts)
		if err != nil {
			return err
		}
		defer c.Close()
		stop := closeOnDone(ctx, c)
		defer stop()

		lr, err := c.Login(name, nil)
		if err != nil {
			return err
		}
		res.LoginReason = lr.Reason
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &res, nil
}

// closeOnDone closes c when ctx ends, unblocking any pending read. The
// returned func stops the watcher.
func closeOnDone(ctx context.Context, c *Client) func() {
	conn := c.conn
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	return func() { close(done) }
}
