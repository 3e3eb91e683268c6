package identities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Unique constraint names created by the migrations.
const (
	constraintEmail    = "identities_email_key"
	constraintUsername = "identities_username_key"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, email, username, passwordHash string) (*models.Identity, error) {
	query :=
		`INSERT INTO identities (email, username, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	identity := &models.Identity{Email: email, Username: username, PasswordHash: passwordHash}

	err := r.db.QueryRowContext(ctx, query, email, username, passwordHash).Scan(&identity.ID, &identity.CreatedAt)
	if err != nil {
		if field, ok := uniqueViolationField(err); ok {
			return nil, &common.ConflictError{Field: field}
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return identity, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	query :=
		`SELECT id, email, username, password_hash, created_at FROM identities
		 WHERE email = $1
		 `
	return r.findOne(ctx, query, email)
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.Identity, error) {
	query :=
		`SELECT id, email, username, password_hash, created_at FROM identities
		 WHERE username = $1
		 `
	return r.findOne(ctx, query, username)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	// ids are UUIDs; anything else cannot exist and would fail the cast in SQL
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query :=
		`SELECT id, email, username, password_hash, created_at FROM identities
		 WHERE id = $1
		 `
	return r.findOne(ctx, query, id)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*models.Identity, error) {
	identity := &models.Identity{}

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&identity.ID, &identity.Email, &identity.Username, &identity.PasswordHash, &identity.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return identity, nil
}

func uniqueViolationField(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return "", false
	}

	switch pgErr.ConstraintName {
	case constraintEmail:
		return common.FieldEmail, true
	case constraintUsername:
		return common.FieldUsername, true
	default:
		return "", false
	}
}
