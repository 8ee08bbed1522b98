package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/flicky/storefront-gateway/internal/model"
)

var ErrIdentityIncomplete = errors.New("identity payload has no email")

type IdentityAPI interface {
	OAuthUserInfo(ctx context.Context, cookies []*http.Cookie) (*model.OAuthIdentity, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
}

// IdentityService resolves the session's external identity to the internal
// user record, joined by email.
type IdentityService struct {
	api IdentityAPI
}

func NewIdentityService(api IdentityAPI) *IdentityService {
	return &IdentityService{api: api}
}

// Resolve returns the internal user for an authenticated session. Any failure
// at either step yields no user; callers treat that as "not ready" and must
// not issue dependent fetches.
func (s *IdentityService) Resolve(ctx context.Context, cookies []*http.Cookie) (*model.User, error) {
	identity, err := s.api.OAuthUserInfo(ctx, cookies)
	if err != nil {
		return nil, fmt.Errorf("fetch identity: %w", err)
	}
	if identity.Email == "" {
		return nil, ErrIdentityIncomplete
	}

	user, err := s.api.UserByEmail(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("map identity to user: %w", err)
	}
	return user, nil
}
