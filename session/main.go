// Package session supplies the identity of the signed-in user that the diagnostics run as.
package session

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNoIdentity is returned when there is no signed-in user.
var ErrNoIdentity = errors.New("no signed-in user")

// Identity is the signed-in user. Email may be empty.
type Identity struct {
	UserID string
	Email  string
}

// Source supplies the current identity.
type Source interface {
	Current(ctx context.Context) (*Identity, error)
}

// StaticSource is an identity that was configured directly.
type StaticSource struct {
	UserID string
	Email  string
}

// Current returns the configured identity, or ErrNoIdentity if no user ID was configured.
func (s *StaticSource) Current(_ context.Context) (*Identity, error) {
	if s.UserID == "" {
		return nil, ErrNoIdentity
	}
	return &Identity{UserID: s.UserID, Email: s.Email}, nil
}
