// Package session issues and validates the opaque per-player credentials
// that gate every mutating room action. Tokens are scoped to one
// (player, room) pair, expire after 24h, and re-issuing overwrites the
// previous token for the pair.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NikhilRaikwar/DrawParty/domain"
)

const TokenTTL = 24 * time.Hour

type TokenManager interface {
	Generate(playerID, roomID string, ttl time.Duration) (string, error)
	Verify(token string) (playerID, roomID string, err error)
}

type Store interface {
	PutSession(ctx context.Context, s domain.Session) error
	GetSession(ctx context.Context, roomID, playerID string) (domain.Session, error)
}

type Authority struct {
	tokens TokenManager
	store  Store
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthority(tokens TokenManager, store Store) *Authority {
	return &Authority{tokens: tokens, store: store, ttl: TokenTTL, now: time.Now}
}

// Issue creates a fresh token for the pair, overwriting any prior one.
func (a *Authority) Issue(ctx context.Context, playerID, roomID string) (string, error) {
	token, err := a.tokens.Generate(playerID, roomID, a.ttl)
	if err != nil {
		return "", err
	}
	err = a.store.PutSession(ctx, domain.Session{
		RoomID:    roomID,
		PlayerID:  playerID,
		Token:     token,
		ExpiresAt: a.now().Add(a.ttl),
	})
	if err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return token, nil
}

// Validate checks signature, expiry, claim/argument match, and that the
// presented token is the pair's active one. A token invalidated by a
// later re-join fails here even though its signature still verifies.
func (a *Authority) Validate(ctx context.Context, roomID, playerID, token string) error {
	if token == "" {
		return domain.ErrInvalidSession
	}

	claimPlayer, claimRoom, err := a.tokens.Verify(token)
	if err != nil {
		return domain.ErrInvalidSession
	}
	if claimPlayer != playerID || claimRoom != roomID {
		return domain.ErrInvalidSession
	}

	stored, err := a.store.GetSession(ctx, roomID, playerID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.ErrInvalidSession
		}
		return err
	}
	if stored.Token != token || a.now().After(stored.ExpiresAt) {
		return domain.ErrInvalidSession
	}
	return nil
}
