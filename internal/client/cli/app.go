// Package cli implements the interactive authkeeper client: a small REPL
// that registers, logs in and queries the current identity over gRPC.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/config"
)

// AuthClient is the server API the commands use. *client.GRPCClient
// implements it.
type AuthClient interface {
	Register(ctx context.Context, email, username, password string) (*api.UserResponse, error)
	Login(ctx context.Context, email, password string) (*api.TokenResponse, error)
	Me(ctx context.Context) (*api.UserResponse, error)
	Ping(ctx context.Context) error
	Logout()
	IsLoggedIn() bool
	Close() error
}

type App struct {
	config    *config.Config
	client    AuthClient
	reader    *bufio.Reader
	out       io.Writer
	userEmail string
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewAuthKeeperClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	return &App{config: c, client: apiClient, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	fmt.Fprintln(a.out, "Welcome to authkeeper CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

func (a *App) isLoggedIn() bool {
	return a.client.IsLoggedIn()
}

func (a *App) getStatus() string {
	if a.isLoggedIn() && a.userEmail != "" {
		return "(" + a.userEmail + ")"
	}
	return ""
}

// withTimeout bounds a single server call by the configured request timeout.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
