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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"craftwire/pkg/cli"
	"craftwire/pkg/client"
)

// errReported marks an error that was already printed.
var errReported = errors.New("error already reported")

func statusCmd(opts *globalOptions) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Fetch the server status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.dial()
			if err != nil {
				return err
			}
			defer c.Close()

			st, err := c.Status()
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}
			if raw {
				fmt.Fprintln(cli.Stdout, st.Raw)
				return nil
			}
			printStatus(opts.addr, st)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the status JSON as received")
	return cmd
}

func printStatus(addr string, st *client.StatusResult) {
	cli.Header(addr)
	cli.KeyValue("Version", fmt.Sprintf("%s (protocol %d)", st.Version.Name, st.Version.Protocol))
	cli.KeyValue("Players", fmt.Sprintf("%d/%d", st.Players.Online, st.Players.Max))
	for _, p := range st.Players.Sample {
		fmt.Fprintf(cli.Stdout, "    %s %s\n", cli.IconDot, p.Name)
	}
	if st.Description != nil {
		cli.KeyValue("Description", "")
		fmt.Fprintln(cli.Stdout, cli.Indent(cli.RenderChat(st.Description), 4))
	}
}

func pingCmd(opts *globalOptions) *cobra.Command {
	var count int
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Measure round trip time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			c, err := opts.dial()
			if err != nil {
				return err
			}
			defer c.Close()

			var total time.Duration
			for i := 0; i < count; i++ {
				if i > 0 {
					time.Sleep(interval)
				}
				rtt, err := c.Ping(time.Now().UnixMilli())
				if err != nil {
					return fmt.Errorf("ping %d: %w", i+1, err)
				}
				total += rtt
				cli.Success("reply from %s: time=%s", opts.addr, rtt.Round(time.Microsecond))
			}
			if count > 1 {
				cli.Info("average %s over %d pings", (total / time.Duration(count)).Round(time.Microsecond), count)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "c", 1, "number of pings")
	cmd.Flags().DurationVarP(&interval, "interval", "i", time.Second, "delay between pings")
	return cmd
}

func loginCmd(opts *globalOptions) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "login <name>",
		Short: "Attempt a login and show the server's answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var player *uuid.UUID
			if id != "" {
				u, err := uuid.Parse(id)
				if err != nil {
					return fmt.Errorf("--uuid: %w", err)
				}
				player = &u
			}

			c, err := opts.dial()
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := c.Login(args[0], player)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if res.Success != nil {
				cli.Success("logged in as %s (%s)", res.Success.Username, res.Success.UUID)
				return nil
			}
			cli.Warning("disconnected by server:")
			fmt.Fprintln(cli.Stdout, cli.Indent(cli.RenderChat(res.Reason), 4))
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "uuid", "", "player UUID to send with the login")
	return cmd
}

func probeCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe [name]",
		Short: "Run status, ping and login at once",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "craftwire"
			if len(args) == 1 {
				name = args[0]
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(opts.timeout)*time.Second*2)
			defer cancel()

			res, err := client.Probe(ctx, opts.addr, name, opts.clientOptions())
			if err != nil {
				return fmt.Errorf("probe: %w", err)
			}
			printStatus(opts.addr, res.Status)
			cli.KeyValue("Ping", res.RTT.Round(time.Microsecond))
			if res.LoginReason != nil {
				cli.KeyValue("Login", "")
				fmt.Fprintln(cli.Stdout, cli.Indent(cli.RenderChat(res.LoginReason), 4))
			}
			return nil
		},
	}
	return cmd
}
