package workflow

import (
	"context"
	"errors"
	"net/http"

	"care_wallet/internal/domain"
	"care_wallet/internal/gateway"
)

// ErrLoginRequired means the caller must be sent to the login screen.
var ErrLoginRequired = errors.New("login required")

// IdentityLoader resolves a token to a user. gateway.Client implements it.
type IdentityLoader interface {
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
}

// RequireIdentity gates a screen on a signed-in user. A missing token or a
// 401 from the server yields ErrLoginRequired; other failures are returned
// as they are.
func RequireIdentity(ctx context.Context, loader IdentityLoader, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrLoginRequired
	}
	user, err := loader.CurrentUser(ctx, token)
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) && gwErr.Status == http.StatusUnauthorized {
		return nil, ErrLoginRequired
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrLoginRequired
	}
	return user, nil
}
