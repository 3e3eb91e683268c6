package grpc

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"google.golang.org/grpc"
)

// AuthServiceServer is the server API for the authkeeper.AuthService service.
type AuthServiceServer interface {
	Register(context.Context, *api.RegisterRequest) (*api.RegisterResponse, error)
	Login(context.Context, *api.LoginRequest) (*api.TokenResponse, error)
	Me(context.Context, *api.MeRequest) (*api.UserResponse, error)
	Ping(context.Context, *api.PingRequest) (*api.PingResponse, error)
}

// AuthServiceDesc describes authkeeper.AuthService for grpc.Server.RegisterService.
var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: api.ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(api.MethodRegister, AuthServiceServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(api.MethodLogin, AuthServiceServer.Login)},
		{MethodName: "Me", Handler: unaryHandler(api.MethodMe, AuthServiceServer.Me)},
		{MethodName: "Ping", Handler: unaryHandler(api.MethodPing, AuthServiceServer.Ping)},
	},
	Streams: []grpc.StreamDesc{},
}

// unaryHandler decodes Req, then calls the method through the interceptor
// chain when there is one.
func unaryHandler[Req, Resp any](fullMethod string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuthServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
