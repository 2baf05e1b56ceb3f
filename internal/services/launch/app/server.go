package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	platformgrpc "github.com/vestige-labs/vestige/internal/platform/grpc"
	"github.com/vestige-labs/vestige/internal/platform/logging"
	"github.com/vestige-labs/vestige/internal/platform/timeouts"
	"github.com/vestige-labs/vestige/internal/services/launch/api/explorer"
	launchgrpc "github.com/vestige-labs/vestige/internal/services/launch/api/grpc"
	"github.com/vestige-labs/vestige/internal/services/launch/api/launchv1"
	"github.com/vestige-labs/vestige/internal/services/launch/walletauth"
)

// Server hosts the launch gRPC API and, optionally, the HTTP explorer.
type Server struct {
	listener     net.Listener
	grpcServer   *grpc.Server
	health       *health.Server
	httpListener net.Listener
	httpServer   *http.Server
	parts        components
	logger       *zap.Logger
}

// New wires the components and opens both listeners.
func New(cfg Config) (*Server, error) {
	logger := logging.OrNop(cfg.Logger)
	parts, err := build(cfg)
	if err != nil {
		return nil, err
	}

	launchService, err := launchgrpc.NewLaunchService(parts.protocol)
	if err != nil {
		_ = parts.close()
		return nil, err
	}
	executorService, err := launchgrpc.NewExecutorService(parts.executor)
	if err != nil {
		_ = parts.close()
		return nil, err
	}

	listener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		_ = parts.close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
	}
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(launchgrpc.UnaryServerInterceptor(nil, launchgrpc.ActorAuth{
			Verifier:         walletauth.NewVerifier(cfg.Clock),
			AllowActorHeader: cfg.AllowActorHeader,
		})),
	)
	launchgrpc.RegisterLaunchService(grpcServer, launchService)
	launchgrpc.RegisterExecutorService(grpcServer, executorService)
	healthServer := platformgrpc.RegisterHealth(grpcServer, launchv1.LaunchServiceName, launchv1.ExecutorServiceName)

	s := &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		parts:      parts,
		logger:     logger.Named("server"),
	}
	if cfg.ExplorerAddr != "" {
		httpListener, err := net.Listen("tcp", cfg.ExplorerAddr)
		if err != nil {
			_ = listener.Close()
			_ = parts.close()
			return nil, fmt.Errorf("listen on %s: %w", cfg.ExplorerAddr, err)
		}
		if cfg.MaxExplorerConns > 0 {
			httpListener = netutil.LimitListener(httpListener, cfg.MaxExplorerConns)
		}
		s.httpListener = httpListener
		s.httpServer = &http.Server{
			Handler:           explorer.New(parts.protocol, logger),
			ReadHeaderTimeout: timeouts.ReadHeader,
		}
	}
	return s, nil
}

// Addr returns the gRPC listen address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// ExplorerAddr returns the explorer listen address, or "" when the
// explorer is disabled.
func (s *Server) ExplorerAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// Run builds a server from cfg and serves until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve blocks until ctx ends or a listener fails, then stops both
// servers and closes the stores.
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		if err := s.parts.close(); err != nil {
			s.logger.Warn("close stores", zap.Error(err))
		}
	}()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.logger.Info("gRPC listening", zap.String("addr", s.Addr()))
		if err := s.grpcServer.Serve(s.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}
		return nil
	})
	if s.httpServer != nil {
		group.Go(func() error {
			s.logger.Info("explorer listening", zap.String("addr", s.ExplorerAddr()))
			if err := s.httpServer.Serve(s.httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve explorer: %w", err)
			}
			return nil
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		s.shutdown()
		return nil
	})
	return group.Wait()
}

func (s *Server) shutdown() {
	s.health.Shutdown()
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warn("explorer shutdown", zap.Error(err))
		}
	}
	s.grpcServer.GracefulStop()
}
