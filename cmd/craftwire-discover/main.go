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
craftwire-discover - LAN Server Discovery Tool

This tool finds craftwire servers on the local network using mDNS
(Bonjour/Avahi). With --status it also queries each server.

Usage:

	craftwire-discover                  # Discover servers (3 second timeout)
	craftwire-discover --timeout 10     # Custom timeout in seconds
	craftwire-discover --status         # Also fetch status and ping
	craftwire-discover --json           # Output as JSON
	craftwire-discover --quiet          # Only output addresses (for scripting)
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"

	"craftwire/internal/banner"
	"craftwire/internal/config"
	"craftwire/internal/discovery"
	"craftwire/pkg/cli"
	"craftwire/pkg/client"
)

// maxParallelQueries bounds concurrent status queries with --status.
const maxParallelQueries = 8

// server is one discovered instance plus its optional live status.
type server struct {
	discovery.Instance
	Status *client.StatusResult
	RTT    time.Duration
	Err    error
}

func main() {
	timeout := flag.Int("timeout", 3, "Discovery timeout in seconds")
	service := flag.String("service", config.DefaultConfig().Discovery.ServiceName, "mDNS service name")
	withStatus := flag.Bool("status", false, "Query status and ping of each server")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	quiet := flag.Bool("quiet", false, "Only output server addresses (for scripting)")
	version := flag.Bool("version", false, "Show version information")
	flag.BoolVar(quiet, "q", false, "Only output server addresses (for scripting)")
	flag.BoolVar(version, "v", false, "Show version information")
	flag.Parse()

	if *version {
		banner.PrintCompact(os.Stdout)
		return
	}

	human := !*quiet && !*jsonOutput
	if human {
		printBanner(os.Stdout)
		cli.Info("Scanning for %s on the network (timeout: %ds)...", *service, *timeout)
		fmt.Println()
	}

	ctx, stop := context.WithTimeout(context.Background(), time.Duration(*timeout+1)*time.Second)
	defer stop()
	found, err := discovery.Browse(ctx, *service, time.Duration(*timeout)*time.Second)
	if err != nil {
		if !*quiet {
			cli.Error("Discovery failed: %v", err)
		}
		os.Exit(1)
	}

	servers := make([]server, len(found))
	for i, inst := range found {
		servers[i] = server{Instance: inst}
	}
	if *withStatus {
		queryAll(context.Background(), servers, *timeout)
	}

	switch {
	case *jsonOutput:
		outputJSON(os.Stdout, servers)
	case *quiet:
		outputQuiet(os.Stdout, servers)
	case len(servers) == 0:
		printTroubleshooting(os.Stdout)
	default:
		outputHuman(os.Stdout, servers)
	}
}

// queryAll fills in status and ping for every server. Failures are kept per
// server so one unreachable entry does not hide the rest.
func queryAll(ctx context.Context, servers []server, timeout int) {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelQueries)
	for i := range servers {
		s := &servers[i]
		if s.Addr == "" {
			continue
		}
		g.Go(func() error {
			c, err := client.NewClientWithOptions(s.Addr, client.ClientOptions{
				MaxRetries:     1,
				ConnectTimeout: timeout,
				IOTimeout:      timeout,
			})
			if err != nil {
				s.Err = err
				return nil
			}
			defer c.Close()
			if s.Status, s.Err = c.Status(); s.Err != nil {
				return nil
			}
			s.RTT, s.Err = c.Ping(time.Now().UnixMilli())
			return nil
		})
	}
	g.Wait()
}

func printBanner(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.Cyan+cli.Bold)
	for _, line := range banner.GetBannerLines() {
		fmt.Fprintln(w, "  "+line)
	}
	fmt.Fprintln(w, cli.Reset)
	fmt.Fprintln(w, cli.Green+cli.Bold+"  craftwire Discover"+cli.Reset+" "+cli.Dim+"v"+banner.Version+cli.Reset)
	fmt.Fprintln(w, cli.Dim+"  LAN Server Discovery Tool"+cli.Reset)
	fmt.Fprintln(w)
}

func printTroubleshooting(w io.Writer) {
	cli.Warning("No servers found on the network.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.Bold+cli.Cyan+"TROUBLESHOOTING"+cli.Reset)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "    "+cli.Yellow+"•"+cli.Reset+" servers are not running with discovery.enabled")
	fmt.Fprintln(w, "    "+cli.Yellow+"•"+cli.Reset+" mDNS is blocked by a firewall (UDP port 5353)")
	fmt.Fprintln(w, "    "+cli.Yellow+"•"+cli.Reset+" servers are on a different network segment")
	fmt.Fprintln(w)
}

type jsonServer struct {
	Name        string `json:"name"`
	Addr        string `json:"addr"`
	Version     string `json:"version,omitempty"`
	Protocol    int32  `json:"protocol,omitempty"`
	WSPath      string `json:"ws_path,omitempty"`
	Description string `json:"description,omitempty"`
	Online      *int   `json:"online,omitempty"`
	Max         *int   `json:"max,omitempty"`
	PingMillis  *int64 `json:"ping_ms,omitempty"`
	Error       string `json:"error,omitempty"`
}

func toJSON(s server) jsonServer {
	out := jsonServer{
		Name:     s.Name,
		Addr:     s.Addr,
		Version:  s.Version,
		Protocol: s.Protocol,
		WSPath:   s.WSPath,
	}
	if s.Status != nil {
		out.Description = s.Status.Description.PlainText()
		out.Online = &s.Status.Players.Online
		out.Max = &s.Status.Players.Max
	}
	if s.RTT > 0 {
		ms := s.RTT.Milliseconds()
		out.PingMillis = &ms
	}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	return out
}

func outputJSON(w io.Writer, servers []server) {
	out := make([]jsonServer, len(servers))
	for i, s := range servers {
		out[i] = toJSON(s)
	}
	data, _ := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(out, "", "  ")
	fmt.Fprintln(w, string(data))
}

func outputQuiet(w io.Writer, servers []server) {
	addrs := make([]string, 0, len(servers))
	for _, s := range servers {
		if s.Addr != "" {
			addrs = append(addrs, s.Addr)
		}
	}
	fmt.Fprintln(w, strings.Join(addrs, ","))
}

func outputHuman(w io.Writer, servers []server) {
	cli.Success("Found %d server(s)", len(servers))
	fmt.Fprintln(w)

	for i, s := range servers {
		fmt.Fprintf(w, "  %s[%d]%s %s%s%s\n",
			cli.Dim, i+1, cli.Reset,
			cli.Bold+cli.Cyan, s.Name, cli.Reset)
		fmt.Fprintf(w, "      %sAddress:%s  %s%s%s\n", cli.Dim, cli.Reset, cli.Green, s.Addr, cli.Reset)
		if s.Version != "" {
			fmt.Fprintf(w, "      %sVersion:%s  %s (protocol %d)\n", cli.Dim, cli.Reset, s.Version, s.Protocol)
		}
		if s.WSPath != "" {
			fmt.Fprintf(w, "      %sWebSocket:%s %s\n", cli.Dim, cli.Reset, s.WSPath)
		}
		switch {
		case s.Err != nil:
			fmt.Fprintf(w, "      %sStatus:%s   %s%s%s\n", cli.Dim, cli.Reset, cli.Red, s.Err, cli.Reset)
		case s.Status != nil:
			fmt.Fprintf(w, "      %sPlayers:%s  %d/%d\n", cli.Dim, cli.Reset, s.Status.Players.Online, s.Status.Players.Max)
			fmt.Fprintf(w, "      %sPing:%s     %s\n", cli.Dim, cli.Reset, s.RTT.Round(time.Microsecond))
			if s.Status.Description != nil {
				fmt.Fprintln(w, cli.Indent(cli.RenderChat(s.Status.Description), 6))
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, cli.Dim+"  Tip: Use --json for machine-readable output"+cli.Reset)
	fmt.Fprintln(w)
}
