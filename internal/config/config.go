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
Package config provides configuration management for craftwire.

CONFIGURATION SOURCES (in order of precedence):
===============================================
1. Command-line flags (highest priority)
2. Environment variables (CRAFTWIRE_* prefix)
3. Configuration file (YAML when the name ends in .yaml or .yml, JSON otherwise)
4. Default values (lowest priority)

CONFIGURATION CATEGORIES:
=========================
- Network: bind_addr, ws
- Protocol: max_frame_len, compression_threshold, read_timeout_seconds
- Responses: status, login
- Logging: log_level, log_json
- Observability: metrics, health, grpc
- Discovery: mDNS announcement
- Performance: listener socket options

EXAMPLE CONFIGURATION FILE:
===========================

	bind_addr: 0.0.0.0:25565
	log_level: debug
	status:
	  version_name: "1.19.2"
	  protocol_version: 760
	  max_players: 20
	  description: "A craftwire server"
	ws:
	  enabled: true
	  addr: ":8081"

ENVIRONMENT VARIABLES:
======================
Every setting has a CRAFTWIRE_ variable.
Example: CRAFTWIRE_BIND_ADDR=":25565" CRAFTWIRE_LOG_LEVEL="debug"
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"craftwire/internal/jsondoc"
	"craftwire/internal/transport"
)

// Environment variable names
const (
	EnvBindAddr             = "CRAFTWIRE_BIND_ADDR"
	EnvLogLevel             = "CRAFTWIRE_LOG_LEVEL"
	EnvLogJSON              = "CRAFTWIRE_LOG_JSON"
	EnvMaxFrameLen          = "CRAFTWIRE_MAX_FRAME_LEN"
	EnvCompressionThreshold = "CRAFTWIRE_COMPRESSION_THRESHOLD"
	EnvReadTimeout          = "CRAFTWIRE_READ_TIMEOUT_SECONDS"

	EnvStatusJSON            = "CRAFTWIRE_STATUS_JSON"
	EnvStatusVersionName     = "CRAFTWIRE_STATUS_VERSION_NAME"
	EnvStatusProtocolVersion = "CRAFTWIRE_STATUS_PROTOCOL_VERSION"
	EnvStatusMaxPlayers      = "CRAFTWIRE_STATUS_MAX_PLAYERS"
	EnvStatusDescription     = "CRAFTWIRE_STATUS_DESCRIPTION"
	EnvDisconnectTemplate    = "CRAFTWIRE_LOGIN_DISCONNECT_TEMPLATE"

	EnvWSEnabled        = "CRAFTWIRE_WS_ENABLED"
	EnvWSAddr           = "CRAFTWIRE_WS_ADDR"
	EnvWSPath           = "CRAFTWIRE_WS_PATH"
	EnvWSAllowedOrigins = "CRAFTWIRE_WS_ALLOWED_ORIGINS"

	EnvMetricsEnabled = "CRAFTWIRE_METRICS_ENABLED"
	EnvMetricsAddr    = "CRAFTWIRE_METRICS_ADDR"
	EnvHealthEnabled  = "CRAFTWIRE_HEALTH_ENABLED"
	EnvHealthAddr     = "CRAFTWIRE_HEALTH_ADDR"
	EnvGRPCEnabled    = "CRAFTWIRE_GRPC_ENABLED"
	EnvGRPCAddr       = "CRAFTWIRE_GRPC_ADDR"

	EnvDiscoveryEnabled  = "CRAFTWIRE_DISCOVERY_ENABLED"
	EnvDiscoveryService  = "CRAFTWIRE_DISCOVERY_SERVICE_NAME"
	EnvDiscoveryInstance = "CRAFTWIRE_DISCOVERY_INSTANCE"

	EnvReusePort   = "CRAFTWIRE_REUSE_PORT"
	EnvNoDelay     = "CRAFTWIRE_NO_DELAY"
	EnvReadBuffer  = "CRAFTWIRE_READ_BUFFER"
	EnvWriteBuffer = "CRAFTWIRE_WRITE_BUFFER"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// AddrPlaceholder is replaced by the peer address in the login disconnect template.
const AddrPlaceholder = "{addr}"

// ProtocolConfig controls the frame codec.
type ProtocolConfig struct {
	MaxFrameLen int `json:"max_frame_len" yaml:"max_frame_len"`
	// CompressionThreshold < 0 disables compression. Any other value selects
	// the compressed frame format, which is not supported yet.
	CompressionThreshold int `json:"compression_threshold" yaml:"compression_threshold"`
	ReadTimeoutSeconds   int `json:"read_timeout_seconds" yaml:"read_timeout_seconds"`
}

// StatusConfig describes the server list response.
type StatusConfig struct {
	// JSON, when set, is sent verbatim and the other fields are ignored.
	JSON            string `json:"json" yaml:"json"`
	VersionName     string `json:"version_name" yaml:"version_name"`
	ProtocolVersion int32  `json:"protocol_version" yaml:"protocol_version"`
	MaxPlayers      int    `json:"max_players" yaml:"max_players"`
	Description     string `json:"description" yaml:"description"`
}

// LoginConfig controls the login phase.
type LoginConfig struct {
	DisconnectTemplate string `json:"disconnect_template" yaml:"disconnect_template"`
}

// WSConfig controls the WebSocket gateway.
type WSConfig struct {
	Enabled        bool     `json:"enabled" yaml:"enabled"`
	Addr           string   `json:"addr" yaml:"addr"`
	Path           string   `json:"path" yaml:"path"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
}

// EndpointConfig is an optional listener.
type EndpointConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

// ObservabilityConfig groups the side listeners.
type ObservabilityConfig struct {
	Metrics EndpointConfig `json:"metrics" yaml:"metrics"`
	Health  EndpointConfig `json:"health" yaml:"health"`
	GRPC    EndpointConfig `json:"grpc" yaml:"grpc"`
}

// DiscoveryConfig controls the mDNS announcement.
type DiscoveryConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	ServiceName string `json:"service_name" yaml:"service_name"`
	Instance    string `json:"instance" yaml:"instance"`
}

// PerformanceConfig holds listener socket options.
type PerformanceConfig struct {
	ReusePort   bool `json:"reuse_port" yaml:"reuse_port"`
	NoDelay     bool `json:"no_delay" yaml:"no_delay"`
	ReadBuffer  int  `json:"read_buffer" yaml:"read_buffer"`
	WriteBuffer int  `json:"write_buffer" yaml:"write_buffer"`
}

// Config holds the configuration for craftwire.
type Config struct {
	BindAddr string `json:"bind_addr" yaml:"bind_addr"`

	// Logging
	LogLevel string `json:"log_level" yaml:"log_level"`
	LogJSON  bool   `json:"log_json" yaml:"log_json"`

	Protocol ProtocolConfig `json:"protocol" yaml:"protocol"`
	Status   StatusConfig   `json:"status" yaml:"status"`
	Login    LoginConfig    `json:"login" yaml:"login"`
	WS       WSConfig       `json:"ws" yaml:"ws"`

	Observability ObservabilityConfig `json:"observability" yaml:"observability"`
	Discovery     DiscoveryConfig     `json:"discovery" yaml:"discovery"`
	Performance   PerformanceConfig   `json:"performance" yaml:"performance"`

	// Metadata
	ConfigFile string `json:"-" yaml:"-"`
}

// DefaultConfig returns defaults.
func DefaultConfig() *Config {
	hostname, _ := os.Hostname()
	return &Config{
		BindAddr: "0.0.0.0:8080",
		LogLevel: "info",
		Protocol: ProtocolConfig{
			MaxFrameLen:          transport.HardMaxFrameLen,
			CompressionThreshold: -1,
			ReadTimeoutSeconds:   30,
		},
		Status: StatusConfig{
			VersionName:     "1.19.2",
			ProtocolVersion: 760,
			MaxPlayers:      20,
			Description:     "A craftwire server",
		},
		Login: LoginConfig{
			DisconnectTemplate: "Your IP is " + AddrPlaceholder + ".\n\nRun.",
		},
		WS: WSConfig{
			Addr: ":8081",
			Path: "/ws",
		},
		Observability: ObservabilityConfig{
			Metrics: EndpointConfig{Addr: ":9100"},
			Health:  EndpointConfig{Addr: ":9101"},
			GRPC:    EndpointConfig{Addr: ":9102"},
		},
		Discovery: DiscoveryConfig{
			ServiceName: "_craftwire._tcp",
			Instance:    hostname,
		},
		Performance: PerformanceConfig{
			NoDelay: true,
		},
	}
}

// Manager holds the process configuration.
type Manager struct {
	mu     sync.RWMutex
	config *Config
}

// NewManager returns a manager seeded with DefaultConfig.
func NewManager() *Manager {
	return &Manager{config: DefaultConfig()}
}

var globalManager = NewManager()

// Global returns the global manager.
func Global() *Manager {
	return globalManager
}

// Get returns a copy of current config.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := *m.config
	cfg.WS.AllowedOrigins = append([]string(nil), m.config.WS.AllowedOrigins...)
	return &cfg
}

// Set updates the config.
func (m *Manager) Set(cfg *Config) {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
}

// LoadFromFile loads configuration from a YAML or JSON file on top of the defaults.
func (m *Manager) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.ConfigFile = path
	m.Set(cfg)
	return nil
}

// LoadFromEnv loads configuration from environment variables.
// Malformed numbers and booleans are ignored.
func (m *Manager) LoadFromEnv() {
	cfg := m.Get()

	envString(EnvBindAddr, &cfg.BindAddr)
	envString(EnvLogLevel, &cfg.LogLevel)
	envBool(EnvLogJSON, &cfg.LogJSON)
	envInt(EnvMaxFrameLen, &cfg.Protocol.MaxFrameLen)
	envInt(EnvCompressionThreshold, &cfg.Protocol.CompressionThreshold)
	envInt(EnvReadTimeout, &cfg.Protocol.ReadTimeoutSeconds)

	envString(EnvStatusJSON, &cfg.Status.JSON)
	envString(EnvStatusVersionName, &cfg.Status.VersionName)
	if v := os.Getenv(EnvStatusProtocolVersion); v != "" {
		if i, err := strconv.ParseInt(v, 10, 32); err == nil {
			cfg.Status.ProtocolVersion = int32(i)
		}
	}
	envInt(EnvStatusMaxPlayers, &cfg.Status.MaxPlayers)
	envString(EnvStatusDescription, &cfg.Status.Description)
	envString(EnvDisconnectTemplate, &cfg.Login.DisconnectTemplate)

	envBool(EnvWSEnabled, &cfg.WS.Enabled)
	envString(EnvWSAddr, &cfg.WS.Addr)
	envString(EnvWSPath, &cfg.WS.Path)
	if v := os.Getenv(EnvWSAllowedOrigins); v != "" {
		cfg.WS.AllowedOrigins = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.WS.AllowedOrigins = append(cfg.WS.AllowedOrigins, p)
			}
		}
	}

	envBool(EnvMetricsEnabled, &cfg.Observability.Metrics.Enabled)
	envString(EnvMetricsAddr, &cfg.Observability.Metrics.Addr)
	envBool(EnvHealthEnabled, &cfg.Observability.Health.Enabled)
	envString(EnvHealthAddr, &cfg.Observability.Health.Addr)
	envBool(EnvGRPCEnabled, &cfg.Observability.GRPC.Enabled)
	envString(EnvGRPCAddr, &cfg.Observability.GRPC.Addr)

	envBool(EnvDiscoveryEnabled, &cfg.Discovery.Enabled)
	envString(EnvDiscoveryService, &cfg.Discovery.ServiceName)
	envString(EnvDiscoveryInstance, &cfg.Discovery.Instance)

	envBool(EnvReusePort, &cfg.Performance.ReusePort)
	envBool(EnvNoDelay, &cfg.Performance.NoDelay)
	envInt(EnvReadBuffer, &cfg.Performance.ReadBuffer)
	envInt(EnvWriteBuffer, &cfg.Performance.WriteBuffer)

	m.Set(cfg)
}

func envString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func envBool(name string, dst *bool) {
	if v := os.Getenv(name); v != "" {
		*dst = strings.ToLower(v) == "true" || v == "1"
	}
}

func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.BindAddr == "" {
		return fmt.Errorf("bind_addr is required")
	}
	if c.Protocol.MaxFrameLen <= 0 || c.Protocol.MaxFrameLen > transport.HardMaxFrameLen {
		return fmt.Errorf("protocol.max_frame_len must be between 1 and %d, got %d",
			transport.HardMaxFrameLen, c.Protocol.MaxFrameLen)
	}
	if c.Protocol.ReadTimeoutSeconds < 0 {
		return fmt.Errorf("protocol.read_timeout_seconds must be non-negative")
	}
	if c.Status.JSON != "" {
		if _, err := jsondoc.Parse([]byte(c.Status.JSON)); err != nil {
			return fmt.Errorf("status.json is not a valid JSON document: %w", err)
		}
	}
	if c.Status.MaxPlayers < 0 {
		return fmt.Errorf("status.max_players must be non-negative")
	}
	if c.WS.Enabled {
		if c.WS.Addr == "" {
			return fmt.Errorf("ws.addr is required when the WebSocket gateway is enabled")
		}
		if !strings.HasPrefix(c.WS.Path, "/") {
			return fmt.Errorf("ws.path must start with '/'")
		}
	}
	for name, ep := range map[string]EndpointConfig{
		"metrics": c.Observability.Metrics,
		"health":  c.Observability.Health,
		"grpc":    c.Observability.GRPC,
	} {
		if ep.Enabled && ep.Addr == "" {
			return fmt.Errorf("observability.%s.addr is required when enabled", name)
		}
	}
	if c.Discovery.Enabled && c.Discovery.ServiceName == "" {
		return fmt.Errorf("discovery.service_name is required when discovery is enabled")
	}
	if c.Performance.ReadBuffer < 0 || c.Performance.WriteBuffer < 0 {
		return fmt.Errorf("performance buffer sizes must be non-negative")
	}
	return nil
}

// CompressionEnabled reports whether the configured threshold selects the
// compressed frame format.
func (c *Config) CompressionEnabled() bool {
	return c.Protocol.CompressionThreshold >= 0
}

// TransportConfig returns the frame codec settings.
func (c *Config) TransportConfig() transport.Config {
	return transport.Config{
		MaxFrameLen:          c.Protocol.MaxFrameLen,
		CompressionThreshold: c.Protocol.CompressionThreshold,
	}
}

type statusDocument struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int32  `json:"protocol"`
	} `json:"version"`
	Players struct {
		Max    int `json:"max"`
		Online int `json:"online"`
	} `json:"players"`
	Description struct {
		Text string `json:"text"`
	} `json:"description"`
}

// ResponseJSON returns the StatusResponse body: JSON verbatim when set,
// otherwise a document built from the other fields.
func (s StatusConfig) ResponseJSON() (string, error) {
	if s.JSON != "" {
		return s.JSON, nil
	}
	var doc statusDocument
	doc.Version.Name = s.VersionName
	doc.Version.Protocol = s.ProtocolVersion
	doc.Players.Max = s.MaxPlayers
	doc.Description.Text = s.Description
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
