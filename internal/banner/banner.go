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
Package banner provides the startup banner display for craftwire.

OVERVIEW:
=========
Displays an ASCII art banner with version information when
the server or CLI starts. Uses ANSI escape codes for colors.

USAGE:
======

	banner.PrintTo(writer)             // Plain banner
	banner.PrintServerWithConfig(cfg)  // Server banner with configuration
	banner.PrintCLI()                  // CLI banner

The banner text is embedded at compile time from banner.txt.
*/
package banner

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"craftwire/internal/config"
)

//go:embed banner.txt
var bannerText string

// ANSI escape codes for terminal text formatting.
const (
	AnsiRed    = "\033[31m"
	AnsiGreen  = "\033[32m"
	AnsiYellow = "\033[33m"
	AnsiCyan   = "\033[36m"
	AnsiReset  = "\033[0m"
	AnsiBold   = "\033[1m"
	AnsiDim    = "\033[2m"
)

// Version information
const (
	Version   = "0.4.0"
	Copyright = "Copyright (c) 2026 Firefly Software Solutions Inc."
	License   = "Licensed under Apache License 2.0"
)

const lineWidth = 78

// GetBanner returns the raw ASCII banner text.
func GetBanner() string {
	return bannerText
}

// GetBannerLines returns the banner as individual lines.
func GetBannerLines() []string {
	return strings.Split(strings.TrimRight(bannerText, "\n"), "\n")
}

func printArt(w io.Writer, title, tagline string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, AnsiCyan+AnsiBold)
	for _, line := range GetBannerLines() {
		fmt.Fprintln(w, "  "+line)
	}
	fmt.Fprintln(w, AnsiReset)
	fmt.Fprintln(w, AnsiGreen+AnsiBold+"  "+title+AnsiReset+" "+AnsiDim+"v"+Version+AnsiReset)
	if tagline != "" {
		fmt.Fprintln(w, AnsiDim+"  "+tagline+AnsiReset)
	}
	fmt.Fprintln(w)
}

// PrintTo writes the banner to the specified writer.
func PrintTo(w io.Writer) {
	printArt(w, "craftwire", "Block game wire protocol server")
	fmt.Fprintln(w, AnsiDim+"  "+Copyright+AnsiReset)
	fmt.Fprintln(w)
}

// PrintCompact prints a one-line banner.
func PrintCompact(w io.Writer) {
	fmt.Fprintln(w, AnsiCyan+AnsiBold+"craftwire"+AnsiReset+" v"+Version)
}

// PrintCLI prints the banner suitable for CLI startup.
func PrintCLI() {
	printArt(os.Stdout, "craftwire CLI", "")
}

// PrintServerWithConfig prints the server banner with the effective
// configuration.
func PrintServerWithConfig(cfg *config.Config) {
	PrintServerWithConfigTo(os.Stdout, cfg)
}

// PrintServerWithConfigTo writes the server banner with configuration to the specified writer.
func PrintServerWithConfigTo(w io.Writer, cfg *config.Config) {
	printArt(w, "craftwire Server", "Block game wire protocol server")

	printConfigSource(w, cfg)
	printCompactConfig(w, cfg)

	fmt.Fprintln(w, AnsiDim+"  "+Copyright+AnsiReset)
	fmt.Fprintln(w)

	printLogSeparator(w)
}

func printLogSeparator(w io.Writer) {
	arrow := "v"
	text := " LOGS START HERE "
	padding := (lineWidth - len(text) - 4) / 2 // 4 for arrows on each side
	if padding < 0 {
		padding = 0
	}
	line := strings.Repeat("-", padding)
	fmt.Fprintf(w, "  %s%s %s%s%s %s%s\n",
		AnsiYellow, arrow+arrow+line,
		AnsiBold, text, AnsiReset+AnsiYellow,
		line+arrow+arrow, AnsiReset)
	fmt.Fprintln(w)
}

func printConfigSource(w io.Writer, cfg *config.Config) {
	fmt.Fprint(w, "  "+AnsiDim+"Config: "+AnsiReset)
	if cfg.ConfigFile != "" {
		fmt.Fprintln(w, AnsiYellow+cfg.ConfigFile+AnsiReset)
	} else {
		fmt.Fprintln(w, AnsiDim+"defaults + environment"+AnsiReset)
	}
	fmt.Fprintln(w)
}

func printCompactConfig(w io.Writer, cfg *config.Config) {
	printSectionHeader(w, "Server")
	printRow3(w,
		fmtKV("Listen", AnsiGreen+cfg.BindAddr+AnsiReset),
		fmtKV("Log", cfg.LogLevel),
		fmtKV("Timeout", fmt.Sprintf("%ds", cfg.Protocol.ReadTimeoutSeconds)))
	fmt.Fprintln(w)

	printSectionHeader(w, "Protocol")
	printProtocolInfo(w, cfg)
	fmt.Fprintln(w)

	printSectionHeader(w, "Features")
	printFeaturesInfo(w, cfg)
	fmt.Fprintln(w)

	printSectionHeader(w, "Endpoints")
	printEndpointsInfo(w, cfg)
	fmt.Fprintln(w)

	printSectionHeader(w, "Performance")
	printPerformanceInfo(w, cfg)
	fmt.Fprintln(w)
}

func printSectionHeader(w io.Writer, title string) {
	titleLen := len(title) + 4 // "[ title ]"
	leftPad := 2
	rightPad := lineWidth - leftPad - titleLen
	if rightPad < 0 {
		rightPad = 0
	}
	fmt.Fprintf(w, "  %s[ %s%s%s ]%s%s\n",
		AnsiDim+strings.Repeat("-", leftPad),
		AnsiReset+AnsiCyan+AnsiBold, title, AnsiReset+AnsiDim,
		strings.Repeat("-", rightPad),
		AnsiReset)
}

func fmtKV(key, value string) string {
	return fmt.Sprintf("%s%s:%s %s", AnsiDim, key, AnsiReset, value)
}

func printRow3(w io.Writer, col1, col2, col3 string) {
	fmt.Fprintf(w, "  %-32s %-26s %s\n", col1, col2, col3)
}

func formatBytes(bytes int64) string {
	if bytes == 0 {
		return "default"
	}
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.0f%cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func printProtocolInfo(w io.Writer, cfg *config.Config) {
	compress := AnsiDim + "off" + AnsiReset
	if cfg.CompressionEnabled() {
		compress = AnsiYellow + fmt.Sprintf("%d (unsupported)", cfg.Protocol.CompressionThreshold) + AnsiReset
	}
	printRow3(w,
		fmtKV("Version", fmt.Sprintf("%s (%d)", cfg.Status.VersionName, cfg.Status.ProtocolVersion)),
		fmtKV("Max frame", formatBytes(int64(cfg.Protocol.MaxFrameLen))),
		fmtKV("Compress", compress))

	status := "generated"
	if cfg.Status.JSON != "" {
		status = "custom"
	}
	printRow3(w,
		fmtKV("Status", status),
		fmtKV("Players", fmt.Sprintf("%d", cfg.Status.MaxPlayers)),
		"")
}

func printFeaturesInfo(w io.Writer, cfg *config.Config) {
	var enabled, disabled []string
	add := func(name string, on bool) {
		if on {
			enabled = append(enabled, name)
		} else {
			disabled = append(disabled, name)
		}
	}
	add("WebSocket", cfg.WS.Enabled)
	add("Metrics", cfg.Observability.Metrics.Enabled)
	add("Health", cfg.Observability.Health.Enabled)
	add("gRPC", cfg.Observability.GRPC.Enabled)
	add("mDNS", cfg.Discovery.Enabled)

	if len(enabled) > 0 {
		fmt.Fprintf(w, "  %sEnabled:%s  %s%s%s\n", AnsiDim, AnsiReset, AnsiGreen, strings.Join(enabled, ", "), AnsiReset)
	}
	if len(disabled) > 0 {
		fmt.Fprintf(w, "  %sDisabled:%s %s\n", AnsiDim, AnsiReset, AnsiDim+strings.Join(disabled, ", ")+AnsiReset)
	}
}

func printEndpointsInfo(w io.Writer, cfg *config.Config) {
	endpoints := []string{fmtKV("Client", AnsiGreen+cfg.BindAddr+AnsiReset)}
	if cfg.WS.Enabled {
		endpoints = append(endpoints, fmtKV("WebSocket", cfg.WS.Addr+cfg.WS.Path))
	}
	if cfg.Observability.Health.Enabled {
		endpoints = append(endpoints, fmtKV("Health", cfg.Observability.Health.Addr))
	}
	if cfg.Observability.Metrics.Enabled {
		endpoints = append(endpoints, fmtKV("Metrics", cfg.Observability.Metrics.Addr))
	}
	if cfg.Observability.GRPC.Enabled {
		endpoints = append(endpoints, fmtKV("gRPC", cfg.Observability.GRPC.Addr))
	}

	// Print in rows of 3
	for i := 0; i < len(endpoints); i += 3 {
		col1 := endpoints[i]
		col2 := ""
		col3 := ""
		if i+1 < len(endpoints) {
			col2 = endpoints[i+1]
		}
		if i+2 < len(endpoints) {
			col3 = endpoints[i+2]
		}
		printRow3(w, col1, col2, col3)
	}
}

func printPerformanceInfo(w io.Writer, cfg *config.Config) {
	var opts []string
	if cfg.Performance.NoDelay {
		opts = append(opts, "NoDelay")
	}
	if cfg.Performance.ReusePort {
		opts = append(opts, "ReusePort")
	}
	if len(opts) == 0 {
		opts = append(opts, AnsiDim+"none"+AnsiReset)
	}
	printRow3(w,
		fmtKV("Socket", strings.Join(opts, "+")),
		fmtKV("RcvBuf", formatBytes(int64(cfg.Performance.ReadBuffer))),
		fmtKV("SndBuf", formatBytes(int64(cfg.Performance.WriteBuffer))))
	printRow3(w,
		fmtKV("CPUs", fmt.Sprintf("%d", runtime.NumCPU())),
		fmtKV("GOMAXPROCS", fmt.Sprintf("%d", runtime.GOMAXPROCS(0))),
		"")
}
