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
// Package discovery announces a craftwire listener over multicast DNS and
// browses the local network for other servers.
//
// Each announcement carries TXT records describing the server:
//
//	version=1.19.2
//	protocol=760
//	transport=tcp
//	ws=/ws            (only when the WebSocket gateway is enabled)
//
// Unknown keys are preserved in Instance.Fields.
package discovery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"craftwire/internal/config"
	"craftwire/internal/logging"

	"github.com/hashicorp/mdns"
)

// DefaultBrowseTimeout bounds a Browse call when the caller passes zero.
const DefaultBrowseTimeout = 2 * time.Second

// Instance is a server found on the network.
type Instance struct {
	Name     string
	Host     string
	Addr     string
	Port     int
	Version  string
	Protocol int32
	WSPath   string
	Fields   map[string]string
}

// Announcer advertises one service instance until Stop is called.
type Announcer struct {
	server *mdns.Server
	logger *logging.Logger
}

// TXTRecords renders the TXT records describing cfg.
func TXTRecords(cfg *config.Config) []string {
	txt := []string{
		"version=" + cfg.Status.VersionName,
		"protocol=" + strconv.Itoa(int(cfg.Status.ProtocolVersion)),
		"transport=tcp",
	}
	if cfg.WS.Enabled {
		txt = append(txt, "ws="+cfg.WS.Path)
	}
	return txt
}

// Announce starts advertising the listener on port. It returns nil and no
// error when discovery is disabled.
func Announce(cfg *config.Config, port int) (*Announcer, error) {
	logger := logging.NewLogger("discovery")
	if !cfg.Discovery.Enabled {
		logger.Debug("Discovery disabled")
		return nil, nil
	}

	instance := cfg.Discovery.Instance
	if instance == "" {
		instance, _ = os.Hostname()
	}
	svc, err := mdns.NewMDNSService(instance, cfg.Discovery.ServiceName, "", "", port, nil, TXTRecords(cfg))
	if err != nil {
		return nil, fmt.Errorf("discovery: build service: %w", err)
	}
	srv, err := mdns.NewServer(&mdns.Config{
		Zone:   svc,
		Logger: stdLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("discovery: start responder: %w", err)
	}

	logger.Info("Announcing service", "service", cfg.Discovery.ServiceName, "instance", instance, "port", port)
	return &Announcer{server: srv, logger: logger}, nil
}

// Stop withdraws the announcement. It is safe on a nil Announcer.
func (a *Announcer) Stop() error {
	if a == nil {
		return nil
	}
	a.logger.Debug("Stopping announcement")
	return a.server.Shutdown()
}

// Browse queries the network for service and returns the instances that
// answered before timeout elapsed or ctx was cancelled, sorted by name.
func Browse(ctx context.Context, service string, timeout time.Duration) ([]Instance, error) {
	if service == "" {
		return nil, errors.New("discovery: service name is required")
	}
	if timeout <= 0 {
		timeout = DefaultBrowseTimeout
	}

	entries := make(chan *mdns.ServiceEntry, 16)
	seen := make(map[string]Instance)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			inst := FromEntry(e)
			seen[inst.Name] = inst
		}
	}()

	params := mdns.DefaultParams(service)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	params.Logger = stdLogger(logging.NewLogger("discovery"))
	err := mdns.QueryContext(ctx, params)
	close(entries)
	<-done
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("discovery: query %s: %w", service, err)
	}

	out := make([]Instance, 0, len(seen))
	for _, inst := range seen {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// FromEntry converts an mDNS answer.
func FromEntry(e *mdns.ServiceEntry) Instance {
	inst := parseInfo(e.InfoFields)
	inst.Name = e.Name
	inst.Host = strings.TrimSuffix(e.Host, ".")
	inst.Port = e.Port

	var ip net.IP
	switch {
	case e.AddrV4 != nil:
		ip = e.AddrV4
	case e.AddrV6 != nil:
		ip = e.AddrV6
	}
	host := inst.Host
	if ip != nil {
		host = ip.String()
	}
	if host != "" {
		inst.Addr = net.JoinHostPort(host, strconv.Itoa(e.Port))
	}
	return inst
}

// parseInfo reads key=value TXT records. Records without '=' become keys
// with an empty value; a malformed protocol number is kept only in Fields.
func parseInfo(fields []string) Instance {
	inst := Instance{Fields: make(map[string]string, len(fields))}
	for _, f := range fields {
		k, v, _ := strings.Cut(f, "=")
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		inst.Fields[k] = v
		switch k {
		case "version":
			inst.Version = v
		case "protocol":
			if n, err := strconv.ParseInt(v, 10, 32); err == nil {
				inst.Protocol = int32(n)
			}
		case "ws":
			inst.WSPath = v
		}
	}
	return inst
}

// logWriter forwards the mdns package's log lines at debug level.
type logWriter struct {
	logger *logging.Logger
}

func (w logWriter) Write(p []byte) (int, error) {
	w.logger.Debug(string(bytes.TrimSpace(p)))
	return len(p), nil
}

func stdLogger(l *logging.Logger) *log.Logger {
	return log.New(logWriter{logger: l}, "", 0)
}

// Service announces the server once it is listening. It fits the start and
// stop sequence of the server's side services.
type Service struct {
	cfg  *config.Config
	port func() int
	a    *Announcer
}

// NewService returns a Service that reads the bound port from port at Start.
func NewService(cfg *config.Config, port func() int) *Service {
	return &Service{cfg: cfg, port: port}
}

// Start begins the announcement.
func (s *Service) Start() error {
	a, err := Announce(s.cfg, s.port())
	if err != nil {
		return err
	}
	s.a = a
	return nil
}

// Stop withdraws the announcement.
func (s *Service) Stop() error {
	return s.a.Stop()
}
