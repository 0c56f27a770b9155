package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/listenupapp/listenup-library/internal/domain"
	domainerrors "github.com/listenupapp/listenup-library/internal/errors"
	"github.com/listenupapp/listenup-library/internal/store"
)

// UserIDHeader carries the requesting user's id, set by the authenticating
// proxy in front of the server.
const UserIDHeader = "X-User-ID"

// resolveUser loads the requesting user. A missing header or an unknown
// user is a 401.
func (s *Server) resolveUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domainerrors.Unauthorized("missing " + UserIDHeader + " header")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("unknown user")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
