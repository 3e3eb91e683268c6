// Package client talks to authkeeper.AuthService over gRPC and keeps the
// access token obtained at login for later calls.
package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewAuthKeeperClient connects lazily to endpointURL. Extra dial options are
// appended to the defaults (insecure transport, JSON codec, token interceptor).
func NewAuthKeeperClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(api.JSONCodec{})),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

func (s *GRPCClient) IsLoggedIn() bool {
	return s.token() != ""
}

func (s *GRPCClient) Register(ctx context.Context, email, username, password string) (*api.UserResponse, error) {
	req := &api.RegisterRequest{Email: email, Username: username, Password: password}
	resp := &api.RegisterResponse{}

	if err := s.conn.Invoke(ctx, api.MethodRegister, req, resp); err != nil {
		return nil, s.mapError(err)
	}
	return &resp.User, nil
}

// Login exchanges credentials for an access token and keeps it for
// subsequent calls.
func (s *GRPCClient) Login(ctx context.Context, email, password string) (*api.TokenResponse, error) {
	req := &api.LoginRequest{Email: email, Password: password}
	resp := &api.TokenResponse{}

	if err := s.conn.Invoke(ctx, api.MethodLogin, req, resp); err != nil {
		return nil, s.mapError(err)
	}

	s.setToken(resp.AccessToken)
	return resp, nil
}

func (s *GRPCClient) Me(ctx context.Context) (*api.UserResponse, error) {
	if !s.IsLoggedIn() {
		return nil, ErrNotLoggedIn
	}

	resp := &api.UserResponse{}
	if err := s.conn.Invoke(ctx, api.MethodMe, &api.MeRequest{}, resp); err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp := &api.PingResponse{}
	if err := s.conn.Invoke(ctx, api.MethodPing, &api.PingRequest{}, resp); err != nil {
		return s.mapError(err)
	}
	if resp.Status != "ok" {
		return ErrUnavailable
	}
	return nil
}

// Logout forgets the access token. The token itself stays valid until it
// expires.
func (s *GRPCClient) Logout() {
	s.setToken("")
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// mapError turns a gRPC status into one of the package errors, keeping the
// server's message.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrConflict, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
