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
package main

import (
	"bytes"
	"net"
	"strings"
	"testing"

	"craftwire/internal/config"
	"craftwire/internal/server"
	"craftwire/pkg/cli"
)

func startServer(t *testing.T) string {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.BindAddr = "127.0.0.1:0"
	cfg.Status.Description = "cli test"
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
	return srv.Addr().String()
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	oldOut, oldErr := cli.Stdout, cli.Stderr
	cli.Stdout, cli.Stderr = &out, &errOut
	defer func() { cli.Stdout, cli.Stderr = oldOut, oldErr }()

	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return out.String() + errOut.String(), err
}

func TestCommands(t *testing.T) {
	addr := startServer(t)
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"status", []string{"status", "-a", addr}, []string{"1.19.2 (protocol 760)", "0/20", "cli test"}},
		{"raw status", []string{"status", "--raw", "-a", addr}, []string{`"description":{"text":"cli test"}`}},
		{"ping", []string{"ping", "-a", addr, "-c", "2", "-i", "1ms"}, []string{"reply from " + addr, "average"}},
		{"login", []string{"login", "Steve", "-a", addr}, []string{"disconnected by server", "Your IP is "}},
		{"probe", []string{"probe", "-a", addr}, []string{"cli test", "Ping:", "Your IP is "}},
		{"version", []string{"version", "-s"}, []string{"0.4.0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("execute %v: %v\n%s", tt.args, err, out)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	closed := ln.Addr().String()
	ln.Close()

	tests := []struct {
		name string
		args []string
	}{
		{"unreachable", []string{"status", "-a", closed, "-t", "1"}},
		{"bad uuid", []string{"login", "Steve", "--uuid", "nope", "-a", closed}},
		{"zero count", []string{"ping", "-c", "0", "-a", closed}},
		{"missing name", []string{"login", "-a", closed}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Fatalf("expected an error for %v", tt.args)
			}
		})
	}
}
