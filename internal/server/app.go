// Package server wires configuration, storage, the credential service and
// both transports into a runnable application.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/authkeeper/internal/server/grpc"
	hs "github.com/dmitrijs2005/authkeeper/internal/server/http"
)

// logOutput is where the application logger writes.
var logOutput io.Writer = os.Stdout

type App struct {
	config     *config.Config
	logger     logging.Logger
	repos      repomanager.RepositoryManager
	grpcServer *gs.GRPCServer
	httpServer *hs.HTTPServer
}

// NewApp validates c and builds every component. A missing signing secret or
// an unreachable database fails here, before anything is served.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(logOutput, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	if c.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	repos, err := openStorage(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenService([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("token service init error: %w", err)
	}
	guard := auth.NewGuard(tokens, repos.Identities())

	credentials, err := services.NewCredentialService(repos, auth.NewArgon2idHasher(), tokens, guard, logger)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	app := &App{
		config:     c,
		logger:     logger,
		repos:      repos,
		grpcServer: gs.NewGRPCServer(c.EndpointAddrGRPC, logger, credentials, guard),
	}

	// an empty HTTP address leaves only gRPC
	if c.EndpointAddrHTTP != "" {
		app.httpServer, err = hs.NewHTTPServer(c.EndpointAddrHTTP, logger, credentials, guard)
		if err != nil {
			_ = repos.Close()
			return nil, fmt.Errorf("http server init error: %w", err)
		}
	}

	return app, nil
}

func openStorage(ctx context.Context, c *config.Config, logger logging.Logger) (repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database configured, identities are kept in memory")
		return repomanager.NewMemoryRepositoryManager(), nil
	}

	repos, err := repomanager.NewPostgresRepositoryManager(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}
	return repos, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case sig := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", sig.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves gRPC and HTTP until ctx is cancelled, a termination signal
// arrives, or either server fails. Storage is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(ctx, cancelFunc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.grpcServer.Run(gctx)
	})
	if app.httpServer != nil {
		g.Go(func() error {
			return app.httpServer.Run(gctx)
		})
	}

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped with error", "error", err)
	}

	if cerr := app.repos.Close(); cerr != nil {
		app.logger.Error(ctx, "storage close error", "error", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
