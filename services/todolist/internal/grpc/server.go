package grpc

import (
	"context"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// ServiceName - имя сервиса в grpc.health.v1
const ServiceName = "todolist.TaskStore"

const healthCheckMethod = "/grpc.health.v1.Health/Check"

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server отдаёт grpc.health.v1 со статусом хранилища задач
type Server struct {
	grpc    *grpc.Server
	health  *health.Server
	store   Pinger
	timeout time.Duration
	logger  *logrus.Logger
}

func NewServer(store Pinger, timeout time.Duration, logger *logrus.Logger) *Server {
	s := &Server{
		health:  health.NewServer(),
		store:   store,
		timeout: timeout,
		logger:  logger,
	}
	s.grpc = grpc.NewServer(grpc.UnaryInterceptor(s.interceptor))
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)
	return s
}

// Refresh пингует хранилище и обновляет статус
func (s *Server) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := s.store.Ping(ctx); err != nil {
		s.logger.WithError(err).WithField("component", "grpc_server").Warn("store ping failed")
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
	return st
}

func (s *Server) interceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	var requestID string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get("x-request-id"); len(values) > 0 {
			requestID = values[0]
		}
	}

	if info.FullMethod == healthCheckMethod {
		s.Refresh(ctx)
	}

	start := time.Now()
	resp, err := handler(ctx, req)

	s.logger.WithFields(logrus.Fields{
		"component":   "grpc_server",
		"request_id":  requestID,
		"method":      info.FullMethod,
		"code":        status.Code(err).String(),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("grpc call completed")
	return resp, err
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Shutdown переводит статус в NOT_SERVING и дожидается активных вызовов.
// Открытые стримы Health/Watch не завершаются сами, поэтому по истечении ctx
// оставшиеся соединения закрываются принудительно.
func (s *Server) Shutdown(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.WithField("component", "grpc_server").Warn("graceful stop timed out, forcing stop")
		s.grpc.Stop()
		<-done
	}
}
