// Package identities stores registered identities. Lookups return
// common.ErrorNotFound when nothing matches; Insert reports a taken email or
// username as *common.ConflictError.
package identities

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	FindByUsername(ctx context.Context, username string) (*models.Identity, error)
	FindByID(ctx context.Context, id string) (*models.Identity, error)
	Insert(ctx context.Context, email, username, passwordHash string) (*models.Identity, error)
}
