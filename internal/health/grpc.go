package health

import (
	"context"
	"fmt"
	"net"
	"time"

	"cyber-dashboard/internal/model"
	"cyber-dashboard/internal/session"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported for the dataset.
const ServiceName = "cyberdashboard.Dataset"

// Server exposes grpc.health.v1 with the dataset session status.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	logger *logrus.Logger
}

func NewServer(logger *logrus.Logger) *Server {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	return &Server{grpc: gs, health: hs, logger: logger}
}

// StatusFor maps a session status onto a serving status.
func StatusFor(status session.Status) healthpb.HealthCheckResponse_ServingStatus {
	if status == session.StatusReady {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}

// Observe is a session.Observer keeping the health status in sync with loads.
func (s *Server) Observe(info session.Info, _ model.AttackStats, _ time.Duration) {
	status := StatusFor(info.Status)
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	s.logger.Debugf("gRPC health set to %s for session %s", status, info.ID)
}

// Health returns the underlying health service.
func (s *Server) Health() healthpb.HealthServer {
	return s.health
}

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.ServeListener(ctx, lis)
}

// ServeListener serves on lis until ctx is cancelled.
func (s *Server) ServeListener(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		s.health.Shutdown()
		s.grpc.GracefulStop()
	}()

	s.logger.Infof("gRPC health server listening on %s", lis.Addr())
	if err := s.grpc.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("gRPC health server failed: %w", err)
	}
	return nil
}
