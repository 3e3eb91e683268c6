package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// TokenVerifier recovers the subject of a bearer token.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// IdentityFinder resolves an identity by its ID. It returns
// common.ErrorNotFound when no such identity exists.
type IdentityFinder interface {
	FindByID(ctx context.Context, id string) (*models.Identity, error)
}

// Guard maps a raw bearer credential to a stored identity.
//
// Outcomes of Authenticate:
//   - common.ErrNoCredential: nothing to verify;
//   - *common.UnauthenticatedError: bad token or unknown subject;
//   - any other error: the repository failed;
//   - an identity on success.
type Guard struct {
	tokens     TokenVerifier
	identities IdentityFinder
}

func NewGuard(tokens TokenVerifier, identities IdentityFinder) *Guard {
	return &Guard{tokens: tokens, identities: identities}
}

// Authenticate runs a single extract → verify → resolve pass.
func (g *Guard) Authenticate(ctx context.Context, rawToken string) (*models.Identity, error) {
	if rawToken == "" {
		return nil, common.ErrNoCredential
	}

	subject, err := g.tokens.Verify(rawToken)
	if err != nil {
		return nil, common.NewUnauthenticated(common.ReasonInvalidToken, err)
	}

	identity, err := g.identities.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// same caller-visible reason as a bad token
			return nil, common.NewUnauthenticated(common.ReasonInvalidToken, common.ErrUserNotFound)
		}
		return nil, fmt.Errorf("error resolving identity: %w", err)
	}

	return identity, nil
}

// AuthenticateHeader extracts a bearer token from an Authorization value and
// authenticates it.
func (g *Guard) AuthenticateHeader(ctx context.Context, header string) (*models.Identity, error) {
	token, err := ExtractBearer(header)
	if err != nil {
		return nil, err
	}
	return g.Authenticate(ctx, token)
}

// ExtractBearer returns the token from a "Bearer <token>" value. The scheme is
// matched case-insensitively. Anything else is common.ErrNoCredential.
func ExtractBearer(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", common.ErrNoCredential
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", common.ErrNoCredential
	}

	return token, nil
}
