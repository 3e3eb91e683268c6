package repomanager

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/identities"
)

// MemoryRepositoryManager serves a single in-memory identity repository.
// The repository serializes its own writes, so WithinTx only forwards.
type MemoryRepositoryManager struct {
	repo *identities.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{repo: identities.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) Identities() identities.Repository {
	return m.repo
}

func (m *MemoryRepositoryManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repo identities.Repository) error) error {
	return fn(ctx, m.repo)
}

func (m *MemoryRepositoryManager) RunMigrations(ctx context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close() error { return nil }
