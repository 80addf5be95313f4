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
// Command craftwire-cli talks to a craftwire server (or any server speaking
// the same protocol) from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"craftwire/internal/banner"
	"craftwire/pkg/cli"
	"craftwire/pkg/client"
)

// Environment variable consulted for the default server address.
const envAddr = "CRAFTWIRE_ADDR"

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	addr     string
	timeout  int
	protocol int32
	noColor  bool
}

func (g *globalOptions) clientOptions() client.ClientOptions {
	return client.ClientOptions{
		MaxRetries:      1,
		ConnectTimeout:  g.timeout,
		IOTimeout:       g.timeout,
		ProtocolVersion: g.protocol,
	}
}

func (g *globalOptions) dial() (*client.Client, error) {
	c, err := client.NewClientWithOptions(g.addr, g.clientOptions())
	if err != nil {
		cli.ErrorWithHint(err.Error(), "is the server running at "+g.addr+"?")
		return nil, errReported
	}
	return c, nil
}

func defaultAddr() string {
	if a := os.Getenv(envAddr); a != "" {
		return a
	}
	return "localhost:8080"
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "craftwire-cli",
		Short: "Query and probe craftwire servers",
		Long: `craftwire-cli speaks the server's wire protocol directly.

It can fetch the status shown in a server list, measure ping, and
attempt a login to see how the server answers. Addresses starting
with ws:// go through the WebSocket gateway.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				cli.SetColorsEnabled(false)
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.addr, "addr", "a", defaultAddr(), "server address (host:port or ws://host:port/path), env "+envAddr)
	flags.IntVarP(&opts.timeout, "timeout", "t", 5, "connect and I/O timeout in seconds")
	flags.Int32Var(&opts.protocol, "protocol", client.DefaultProtocolVersion, "protocol version announced in the handshake")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(
		statusCmd(opts),
		pingCmd(opts),
		loginCmd(opts),
		probeCmd(opts),
		versionCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if err != errReported {
			cli.Error("%s", err)
		}
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Fprintln(cli.Stdout, banner.Version)
				return
			}
			banner.PrintCompact(cli.Stdout)
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")
	return cmd
}
