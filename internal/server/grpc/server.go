package grpc

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"craftwire/internal/config"
	healthcheck "craftwire/internal/health"
	"craftwire/internal/logging"
)

// DefaultSyncInterval is how often check results are pushed to the gRPC
// health service.
const DefaultSyncInterval = 5 * time.Second

// Server serves the standard gRPC health protocol backed by a health checker,
// plus server reflection for grpcurl and similar tools.
//
// The empty service name reports the aggregate status. Every registered check
// is also exposed as its own service name.
type Server struct {
	config   config.EndpointConfig
	checker  *healthcheck.Checker
	health   *health.Server
	gs       *grpc.Server
	logger   *logging.Logger
	interval time.Duration

	mu     sync.Mutex
	stopCh chan struct{}
	done   chan struct{}
}

// NewServer creates a new gRPC server.
func NewServer(cfg config.EndpointConfig, checker *healthcheck.Checker, logger *logging.Logger) *Server {
	s := &Server{
		config:   cfg,
		checker:  checker,
		health:   health.NewServer(),
		logger:   logger,
		interval: DefaultSyncInterval,
	}

	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.unaryRecoveryInterceptor, s.unaryLoggingInterceptor),
		grpc.ChainStreamInterceptor(s.streamRecoveryInterceptor),
	)
	healthpb.RegisterHealthServer(gs, s.health)
	reflection.Register(gs)
	s.gs = gs

	return s
}

// SetSyncInterval changes the status refresh period. Call before Start.
func (s *Server) SetSyncInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

// Sync runs the checks once and publishes the results.
func (s *Server) Sync() {
	resp := s.checker.RunChecks()
	s.health.SetServingStatus("", servingStatus(resp.Status))
	for name, res := range resp.Checks {
		s.health.SetServingStatus(name, servingStatus(res.Status))
	}
}

func servingStatus(st healthcheck.Status) healthpb.HealthCheckResponse_ServingStatus {
	if st == healthcheck.StatusUnhealthy {
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	if !s.config.Enabled {
		s.logger.Info("gRPC server disabled")
		return nil
	}
	lis, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.logger.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.Serve(lis)
}

// Serve serves on lis in the background and starts the sync loop.
func (s *Server) Serve(lis net.Listener) error {
	s.mu.Lock()
	if s.stopCh != nil {
		s.mu.Unlock()
		return fmt.Errorf("gRPC server already started")
	}
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.Sync()
	go s.syncLoop()
	go func() {
		if err := s.gs.Serve(lis); err != nil {
			s.logger.Error("gRPC server failed", "error", err)
		}
	}()

	return nil
}

func (s *Server) syncLoop() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.Sync()
		}
	}
}

// Stop marks every service as not serving and stops the server.
func (s *Server) Stop() error {
	s.mu.Lock()
	stopCh, done := s.stopCh, s.done
	s.stopCh = nil
	s.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-done
	}
	s.health.Shutdown()
	if s.gs != nil {
		s.gs.GracefulStop()
	}
	return nil
}

func (s *Server) unaryLoggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug("gRPC call",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, err
}

func (s *Server) unaryRecoveryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.NewErrorLogger(s.logger).LogRecovery(r, string(debug.Stack()), info.FullMethod)
			err = status.Error(codes.Internal, "internal error")
		}
	}()
	return handler(ctx, req)
}

func (s *Server) streamRecoveryInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.NewErrorLogger(s.logger).LogRecovery(r, string(debug.Stack()), info.FullMethod)
			err = status.Error(codes.Internal, "internal error")
		}
	}()
	return handler(srv, ss)
}
