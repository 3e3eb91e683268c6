// Package http serves the credential service as JSON over HTTP with gin.
//
// Routes:
//
//	POST /auth/register  201 {message, user}
//	POST /auth/login     200 {access_token, token_type, expires_in}
//	GET  /auth/me        200 user, bearer token required
//	GET  /health         200 {"status":"ok"}
//
// Errors are returned as {"detail": "..."}.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// Credentials is the part of services.CredentialService the transport uses.
type Credentials interface {
	Register(ctx context.Context, email, username, password string) (*models.Identity, error)
	Login(ctx context.Context, email, password string) (*services.AccessToken, error)
}

type HTTPServer struct {
	address     string
	credentials Credentials
	guard       services.Authenticator
	logger      logging.Logger
	router      *gin.Engine
}

func NewHTTPServer(address string, l logging.Logger, credentials Credentials, guard services.Authenticator) (*HTTPServer, error) {
	s := &HTTPServer{
		address:     address,
		credentials: credentials,
		guard:       guard,
		logger:      l.With("module", "http_server"),
	}

	router := gin.New()
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}
	router.Use(gin.Recovery(), s.loggingMiddleware())
	s.router = router
	s.setUpRoutes()

	return s, nil
}

func (s *HTTPServer) setUpRoutes() {
	s.router.GET("/health", s.health)

	authGroup := s.router.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.GET("/me", s.authMiddleware(), s.me)
}

// Handler returns the router, for mounting or tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve handles requests on lis until ctx is cancelled, then shuts down,
// letting in-flight requests finish within shutdownTimeout.
func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
		cancel()
		<-shutdownErr
		return err
	}

	return <-shutdownErr
}
