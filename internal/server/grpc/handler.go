package grpc

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/common"
)

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	req.Normalize()
	if err := api.Validate(req); err != nil {
		return nil, toStatus(err)
	}

	identity, err := s.credentials.Register(ctx, req.Email, req.Username, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.RegisterResponse{Message: api.MessageAccountCreated, User: api.NewUserResponse(identity)}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.TokenResponse, error) {
	if err := api.Validate(req); err != nil {
		return nil, toStatus(err)
	}

	token, err := s.credentials.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.TokenResponse{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresIn:   int64(token.ExpiresIn.Seconds()),
	}, nil
}

func (s *GRPCServer) Me(ctx context.Context, _ *api.MeRequest) (*api.UserResponse, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, toStatus(common.ErrNoCredential)
	}
	resp := api.NewUserResponse(identity)
	return &resp, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "ok"}, nil
}
