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
Package health provides liveness and readiness checks for craftwire.

ENDPOINTS:
==========
- /health        full report with every registered check
- /health/live   200 while the process is running
- /health/ready  200 only when no check is unhealthy

STATUS AGGREGATION:
===================
The overall status is the worst individual status: unhealthy beats
degraded, degraded beats healthy. Degraded still counts as ready.
*/
package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"craftwire/internal/config"
	"craftwire/internal/logging"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Status is the state of one check or of the whole process.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) rank() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// CheckResult is the outcome of a single check.
type CheckResult struct {
	Status   Status                 `json:"status"`
	Message  string                 `json:"message,omitempty"`
	Details  map[string]interface{} `json:"details,omitempty"`
	Duration time.Duration          `json:"duration_ns"`
}

// CheckFunc runs a check.
type CheckFunc func() CheckResult

// Response is the aggregated report.
type Response struct {
	Status    Status                 `json:"status"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Checker runs the registered checks.
type Checker struct {
	version string
	started time.Time

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewChecker creates a checker reporting the given version.
func NewChecker(version string) *Checker {
	return &Checker{
		version: version,
		started: time.Now(),
		checks:  make(map[string]CheckFunc),
	}
}

// RegisterCheck adds or replaces a named check.
func (c *Checker) RegisterCheck(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = fn
}

// Names returns the registered check names in sorted order.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunCheck runs a single check. ok is false when no check has that name.
func (c *Checker) RunCheck(name string) (CheckResult, bool) {
	c.mu.RLock()
	fn, ok := c.checks[name]
	c.mu.RUnlock()
	if !ok {
		return CheckResult{}, false
	}
	return run(fn), true
}

func run(fn CheckFunc) (res CheckResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = CheckResult{Status: StatusUnhealthy, Message: fmt.Sprintf("check panicked: %v", r)}
		}
		res.Duration = time.Since(start)
	}()
	return fn()
}

// RunChecks runs every check and aggregates the result.
func (c *Checker) RunChecks() Response {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	c.mu.RUnlock()

	resp := Response{
		Status:    StatusHealthy,
		Version:   c.version,
		Uptime:    time.Since(c.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]CheckResult, len(checks)),
	}
	for name, fn := range checks {
		res := run(fn)
		resp.Checks[name] = res
		if res.Status.rank() > resp.Status.rank() {
			resp.Status = res.Status
		}
	}
	return resp
}

// IsHealthy reports whether every check is healthy.
func (c *Checker) IsHealthy() bool {
	return c.RunChecks().Status == StatusHealthy
}

// IsReady reports whether no check is unhealthy.
func (c *Checker) IsReady() bool {
	return c.RunChecks().Status != StatusUnhealthy
}

// ListenerCheck is unhealthy while listening returns false.
func ListenerCheck(listening func() bool) CheckFunc {
	return func() CheckResult {
		if !listening() {
			return CheckResult{Status: StatusUnhealthy, Message: "listener is not accepting connections"}
		}
		return CheckResult{Status: StatusHealthy}
	}
}

// ConnectionsCheck is degraded once the open connection count reaches max.
// A max of zero disables the limit.
func ConnectionsCheck(max int, count func() int) CheckFunc {
	return func() CheckResult {
		n := count()
		res := CheckResult{
			Status:  StatusHealthy,
			Details: map[string]interface{}{"connections": n, "max": max},
		}
		if max > 0 && n >= max {
			res.Status = StatusDegraded
			res.Message = fmt.Sprintf("%d open connections (limit %d)", n, max)
		}
		return res
	}
}

// MemoryCheck is degraded when usage (percent) exceeds threshold.
func MemoryCheck(threshold float64, usage func() float64) CheckFunc {
	return func() CheckResult {
		u := usage()
		res := CheckResult{
			Status:  StatusHealthy,
			Details: map[string]interface{}{"usage_percent": u},
		}
		if u > threshold {
			res.Status = StatusDegraded
			res.Message = fmt.Sprintf("memory usage %.1f%% above %.1f%%", u, threshold)
		}
		return res
	}
}

// HeapUsage returns the in-use share of heap memory obtained from the OS.
func HeapUsage() float64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if ms.HeapSys == 0 {
		return 0
	}
	return float64(ms.HeapInuse) / float64(ms.HeapSys) * 100
}

// Server exposes the checker over HTTP.
type Server struct {
	config  config.EndpointConfig
	checker *Checker
	server  *http.Server
	ln      net.Listener
	logger  *logging.Logger
}

// NewServer creates a health server.
func NewServer(cfg config.EndpointConfig, checker *Checker) *Server {
	return &Server{
		config:  cfg,
		checker: checker,
		logger:  logging.NewLogger("health"),
	}
}

// Handler returns the HTTP handler serving the health endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/live", s.handleLive)
	mux.HandleFunc("/health/ready", s.handleReady)
	return mux
}

// Start starts the HTTP listener.
func (s *Server) Start() error {
	if !s.config.Enabled {
		s.logger.Info("Health server disabled")
		return nil
	}
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.logger.Info("Starting health server", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Health server error", "error", err)
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

// Stop stops the HTTP listener.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("Stopping health server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := s.checker.RunChecks()
	code := http.StatusOK
	if resp.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]Status{"status": StatusHealthy})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := s.checker.RunChecks()
	if resp.Status == StatusUnhealthy {
		writeJSON(w, http.StatusServiceUnavailable, map[string]Status{"status": resp.Status})
		return
	}
	writeJSON(w, http.StatusOK, map[string]Status{"status": resp.Status})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
