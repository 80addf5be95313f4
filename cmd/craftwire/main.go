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
craftwire Server - Main Entry Point.

USAGE:
======

	craftwire [options]

OPTIONS:
========

	-config string     Path to configuration file (JSON or YAML)
	-bind string       Listener address, overrides the configuration
	-log-level string  Log level, overrides the configuration
	-json-logs         Emit JSON log lines
	-quiet             Skip banner and config display
	-version           Show version information

Configuration is layered: defaults, then the file, then CRAFTWIRE_*
environment variables, then flags.

STARTUP SEQUENCE:
=================
1. Parse flags and load configuration
2. Initialize logging
3. Start the protocol listener
4. Start WebSocket gateway, metrics, health, gRPC health and mDNS
5. Wait for shutdown signal
*/
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"craftwire/internal/banner"
	"craftwire/internal/config"
	"craftwire/internal/discovery"
	"craftwire/internal/health"
	"craftwire/internal/logging"
	"craftwire/internal/metrics"
	"craftwire/internal/server"
	grpcserver "craftwire/internal/server/grpc"
	"craftwire/internal/server/ws"
)

// Health thresholds.
const (
	connectionsDegraded = 4096
	heapDegraded        = 0.9
)

func printHelp() {
	banner.PrintTo(os.Stdout)
	fmt.Println("\033[1;36mUsage:\033[0m")
	fmt.Println("  craftwire [options]")
	fmt.Println()
	fmt.Println("\033[1;36mOptions:\033[0m")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("\033[1;36mEnvironment Variables:\033[0m")
	fmt.Println("  " + config.EnvBindAddr + "              Listener address (default: 0.0.0.0:8080)")
	fmt.Println("  " + config.EnvLogLevel + "              Log level: debug, info, warn, error")
	fmt.Println("  " + config.EnvStatusJSON + "            Status response body")
	fmt.Println("  " + config.EnvWSEnabled + "             Enable the WebSocket gateway")
	fmt.Println("  " + config.EnvDiscoveryEnabled + "      Announce over mDNS")
	fmt.Println()
	fmt.Println("\033[1;36mExamples:\033[0m")
	fmt.Println("  # Start with default settings")
	fmt.Println("  craftwire")
	fmt.Println()
	fmt.Println("  # Start with a YAML config and debug logs")
	fmt.Println("  craftwire -config /etc/craftwire/craftwire.yaml -log-level debug")
	fmt.Println()
}

func main() {
	configPath := flag.String("config", "", "Path to configuration file (JSON or YAML)")
	bindAddr := flag.String("bind", "", "Listener address, overrides the configuration")
	logLevel := flag.String("log-level", "", "Log level, overrides the configuration")
	jsonLogs := flag.Bool("json-logs", false, "Emit JSON log lines")
	quietMode := flag.Bool("quiet", false, "Skip banner and config display, output logs only")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = printHelp
	flag.Parse()

	if *showVersion {
		banner.PrintCompact(os.Stdout)
		return
	}

	cfgMgr := config.Global()
	if *configPath != "" {
		if err := cfgMgr.LoadFromFile(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config file: %v\n", err)
			os.Exit(1)
		}
	}
	cfgMgr.LoadFromEnv()
	cfg := cfgMgr.Get()
	if *bindAddr != "" {
		cfg.BindAddr = *bindAddr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *jsonLogs {
		cfg.LogJSON = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	cfgMgr.Set(cfg)

	if !*quietMode {
		banner.PrintServerWithConfig(cfg)
	}

	logging.Configure(logging.Config{
		Level:    logging.ParseLevel(cfg.LogLevel),
		Output:   os.Stdout,
		JSONMode: cfg.LogJSON,
	})
	logger := logging.NewLogger("main")
	logger.Info("Starting craftwire", "version", banner.Version, "protocol", cfg.Status.ProtocolVersion)

	if err := run(cfg, logger, shutdownSignal()); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Shutdown complete")
}

// shutdownSignal returns a channel closed on SIGINT or SIGTERM.
func shutdownSignal() <-chan struct{} {
	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.NewLogger("main").Info("Shutting down...", "signal", sig.String())
		close(stop)
	}()
	return stop
}

func run(cfg *config.Config, logger *logging.Logger, stop <-chan struct{}) error {
	srv, err := server.NewServer(cfg)
	if err != nil {
		return err
	}
	m := metrics.Get()
	srv.SetRecorder(m)

	checker := health.NewChecker(banner.Version)
	checker.RegisterCheck("listener", health.ListenerCheck(srv.Listening))
	checker.RegisterCheck("connections", health.ConnectionsCheck(connectionsDegraded, srv.ActiveConnections))
	checker.RegisterCheck("memory", health.MemoryCheck(heapDegraded, health.HeapUsage))

	services := []server.Service{
		ws.NewGateway(cfg.WS, srv, logging.NewLogger("ws")),
		metrics.NewServer(cfg.Observability.Metrics, m),
		health.NewServer(cfg.Observability.Health, checker),
		grpcserver.NewServer(cfg.Observability.GRPC, checker, logging.NewLogger("grpc")),
		discovery.NewService(cfg, func() int {
			if addr, ok := srv.Addr().(*net.TCPAddr); ok {
				return addr.Port
			}
			return 0
		}),
	}
	return server.Run(stop, srv, services...)
}
