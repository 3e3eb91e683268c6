// Package services contains server-side business logic. CredentialService
// registers identities, exchanges email and password for an access token,
// and resolves the identity behind a token.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/identities"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

// dummyPassword is hashed once at construction. Login verifies against that
// hash when the account does not exist.
const dummyPassword = "authkeeper-timing-equalizer"

// TokenIssuer mints access tokens for an identity ID.
type TokenIssuer interface {
	Issue(subject string) (string, error)
	TTL() time.Duration
}

// Authenticator resolves a raw bearer token to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*models.Identity, error)
}

// AccessToken is the result of a successful login.
type AccessToken struct {
	Token     string
	TokenType string
	ExpiresIn time.Duration
}

type CredentialService struct {
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	tokens      TokenIssuer
	guard       Authenticator
	logger      logging.Logger
	dummyHash   string
}

func NewCredentialService(m repomanager.RepositoryManager, hasher auth.PasswordHasher, tokens TokenIssuer,
	guard Authenticator, logger logging.Logger) (*CredentialService, error) {

	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("error preparing dummy hash: %w", err)
	}

	return &CredentialService{
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		guard:       guard,
		logger:      logger.With("module", "credentials"),
		dummyHash:   dummy,
	}, nil
}

// Register creates a new identity. A taken email is reported before a taken
// username; either way nothing is written and a *common.ConflictError is
// returned. The password is hashed before the transaction opens; uniqueness
// is checked again inside it.
func (s *CredentialService) Register(ctx context.Context, email, username, password string) (*models.Identity, error) {
	if err := checkFree(ctx, s.repomanager.Identities(), email, username); err != nil {
		return nil, s.registerFailed(ctx, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, s.registerFailed(ctx, fmt.Errorf("error hashing password: %w", err))
	}

	var created *models.Identity
	err = s.repomanager.WithinTx(ctx, func(ctx context.Context, repo identities.Repository) error {
		if err := checkFree(ctx, repo, email, username); err != nil {
			return err
		}

		created, err = repo.Insert(ctx, email, username, hash)
		return err
	})
	if err != nil {
		return nil, s.registerFailed(ctx, err)
	}

	s.logger.Info(ctx, "identity registered", "id", created.ID, "username", created.Username)
	return created, nil
}

func (s *CredentialService) registerFailed(ctx context.Context, err error) error {
	var conflict *common.ConflictError
	if errors.As(err, &conflict) {
		s.logger.Info(ctx, "registration rejected", "field", conflict.Field)
		return conflict
	}
	s.logger.Error(ctx, "registration failed", "error", err)
	return err
}

func checkFree(ctx context.Context, repo identities.Repository, email, username string) error {
	if err := ensureFree(ctx, repo.FindByEmail, email, common.FieldEmail); err != nil {
		return err
	}
	return ensureFree(ctx, repo.FindByUsername, username, common.FieldUsername)
}

func ensureFree(ctx context.Context, find func(context.Context, string) (*models.Identity, error), value, field string) error {
	_, err := find(ctx, value)
	switch {
	case err == nil:
		return &common.ConflictError{Field: field}
	case errors.Is(err, common.ErrorNotFound):
		return nil
	default:
		return fmt.Errorf("error checking %s: %w", field, err)
	}
}

// Login checks email and password and issues an access token. An unknown
// email and a wrong password produce the same *common.UnauthenticatedError.
func (s *CredentialService) Login(ctx context.Context, email, password string) (*AccessToken, error) {
	identity, err := s.repomanager.Identities().FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "login lookup failed", "error", err)
			return nil, fmt.Errorf("error looking up identity: %w", err)
		}
		s.hasher.Verify(password, s.dummyHash)
		s.logger.Info(ctx, "login rejected")
		return nil, common.NewUnauthenticated(common.ReasonWrongCredentials, nil)
	}

	if !s.hasher.Verify(password, identity.PasswordHash) {
		s.logger.Info(ctx, "login rejected")
		return nil, common.NewUnauthenticated(common.ReasonWrongCredentials, nil)
	}

	token, err := s.tokens.Issue(identity.ID)
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "id", identity.ID, "error", err)
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	s.logger.Debug(ctx, "login succeeded", "id", identity.ID)
	return &AccessToken{Token: token, TokenType: common.TokenTypeBearer, ExpiresIn: s.tokens.TTL()}, nil
}

// Me returns the identity the token was issued for.
func (s *CredentialService) Me(ctx context.Context, rawToken string) (*models.Identity, error) {
	return s.guard.Authenticate(ctx, rawToken)
}
