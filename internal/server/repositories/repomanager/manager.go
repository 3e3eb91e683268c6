package repomanager

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/identities"
)

// RepositoryManager hands out identity repositories bound to the configured
// storage and prepares that storage for use.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Identities() identities.Repository
	// WithinTx runs fn with a repository whose calls share one transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo identities.Repository) error) error
	Close() error
}
