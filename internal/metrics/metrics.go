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
Package metrics provides Prometheus metrics for craftwire.

METRIC CATEGORIES:
==================
- Connections: active and total per transport, outcomes
- Frames: count and bytes in each direction, frame size histogram
- Packets: decoded packets per state and name
- Errors: decode failures by error kind

PROMETHEUS ENDPOINT:
====================
Metrics are exposed at /metrics in Prometheus text format.

EXAMPLE METRICS:
================

	craftwire_connections_active{transport="tcp"} 3
	craftwire_frames_total{direction="serverbound"} 1042
	craftwire_packets_total{state="Status",packet="PingRequest"} 17
	craftwire_decode_errors_total{kind="Handshake"} 2
*/
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"craftwire/internal/config"
	"craftwire/internal/logging"
)

const namespace = "craftwire"

// Metrics holds all craftwire collectors.
type Metrics struct {
	registry *prometheus.Registry

	connectionsActive *prometheus.GaugeVec
	connectionsTotal  *prometheus.CounterVec
	connectionsClosed *prometheus.CounterVec

	framesTotal *prometheus.CounterVec
	bytesTotal  *prometheus.CounterVec
	frameSize   *prometheus.HistogramVec

	packetsTotal     *prometheus.CounterVec
	decodeErrors     *prometheus.CounterVec
	stateTransitions *prometheus.CounterVec
}

// New creates a Metrics instance registered on its own registry, with the
// Go runtime and process collectors included.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newMetrics(reg)
}

func newMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		connectionsActive: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Currently open connections",
		}, []string{"transport"}),
		connectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Accepted connections",
		}, []string{"transport"}),
		connectionsClosed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_closed_total",
			Help:      "Finished connections by outcome (closed, lost, error)",
		}, []string{"transport", "outcome"}),

		framesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames read or written",
		}, []string{"direction"}),
		bytesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_bytes_total",
			Help:      "Frame body bytes read or written",
		}, []string{"direction"}),
		frameSize: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_size_bytes",
			Help:      "Frame body size distribution",
			Buckets:   prometheus.ExponentialBuckets(8, 4, 9),
		}, []string{"direction"}),

		packetsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_total",
			Help:      "Decoded server-bound packets",
		}, []string{"state", "packet"}),
		decodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Frames or packets that failed to decode, by error kind",
		}, []string{"kind"}),
		stateTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Protocol state transitions by target state",
		}, []string{"state"}),
	}
}

var (
	globalMetrics     *Metrics
	globalMetricsOnce sync.Once
)

// Get returns the process-wide metrics instance.
func Get() *Metrics {
	globalMetricsOnce.Do(func() {
		globalMetrics = New()
	})
	return globalMetrics
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ConnectionOpened records a new connection.
func (m *Metrics) ConnectionOpened(transport string) {
	m.connectionsActive.WithLabelValues(transport).Inc()
	m.connectionsTotal.WithLabelValues(transport).Inc()
}

// ConnectionClosed records a finished connection.
func (m *Metrics) ConnectionClosed(transport, outcome string) {
	m.connectionsActive.WithLabelValues(transport).Dec()
	m.connectionsClosed.WithLabelValues(transport, outcome).Inc()
}

// PacketDecoded records a decoded server-bound packet.
func (m *Metrics) PacketDecoded(state, name string) {
	m.packetsTotal.WithLabelValues(state, name).Inc()
}

// DecodeError records a decode failure of the given kind.
func (m *Metrics) DecodeError(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	m.decodeErrors.WithLabelValues(kind).Inc()
}

// StateTransition records a connection entering state.
func (m *Metrics) StateTransition(state string) {
	m.stateTransitions.WithLabelValues(state).Inc()
}

// FrameRead implements transport.Observer.
func (m *Metrics) FrameRead(n int) {
	m.frame("serverbound", n)
}

// FrameWritten implements transport.Observer.
func (m *Metrics) FrameWritten(n int) {
	m.frame("clientbound", n)
}

func (m *Metrics) frame(direction string, n int) {
	m.framesTotal.WithLabelValues(direction).Inc()
	m.bytesTotal.WithLabelValues(direction).Add(float64(n))
	m.frameSize.WithLabelValues(direction).Observe(float64(n))
}

// Handler returns the /metrics handler for this instance.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Server provides an HTTP server for Prometheus metrics.
type Server struct {
	config  config.EndpointConfig
	metrics *Metrics
	server  *http.Server
	ln      net.Listener
	logger  *logging.Logger
}

// NewServer creates a new metrics server.
func NewServer(cfg config.EndpointConfig, m *Metrics) *Server {
	return &Server{
		config:  cfg,
		metrics: m,
		logger:  logging.NewLogger("metrics"),
	}
}

// Start starts the metrics HTTP server.
func (s *Server) Start() error {
	if !s.config.Enabled {
		s.logger.Info("Metrics server disabled")
		return nil
	}

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.Handler())

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.logger.Info("Starting metrics server", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Stop stops the metrics HTTP server.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("Stopping metrics server")
	return s.server.Shutdown(ctx)
}
