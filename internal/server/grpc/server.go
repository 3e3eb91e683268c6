// Package grpc exposes the credential service as authkeeper.AuthService over
// gRPC, using a JSON codec for messages.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"google.golang.org/grpc"
)

// Credentials is the part of services.CredentialService the transport uses.
type Credentials interface {
	Register(ctx context.Context, email, username, password string) (*models.Identity, error)
	Login(ctx context.Context, email, password string) (*services.AccessToken, error)
}

type GRPCServer struct {
	address     string
	credentials Credentials
	guard       services.Authenticator
	logger      logging.Logger
}

func NewGRPCServer(address string, l logging.Logger, credentials Credentials, guard services.Authenticator) *GRPCServer {
	return &GRPCServer{
		address:     address,
		credentials: credentials,
		guard:       guard,
		logger:      l.With("module", "grpc_server"),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ForceServerCodec(api.JSONCodec{}),
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor),
	)
	srv.RegisterService(&AuthServiceDesc, s)
	return srv
}

// Run listens on the configured address and serves until ctx is cancelled,
// then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled or serving fails.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	err := srv.Serve(lis)
	cancel()
	<-stopped
	return err
}
