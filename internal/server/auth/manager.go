package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/dzakcloud/internal/common"
)

// TokenManager issues tokens and verifies them against the revocation store.
type TokenManager struct {
	secret   []byte
	validity time.Duration
	store    RevocationStore
}

func NewTokenManager(secret []byte, validity time.Duration, store RevocationStore) *TokenManager {
	return &TokenManager{secret: secret, validity: validity, store: store}
}

func (m *TokenManager) Issue(userID int64) (string, error) {
	return GenerateToken(userID, m.secret, m.validity)
}

// Verify returns the token's identity unless it is malformed, expired or
// revoked.
func (m *TokenManager) Verify(ctx context.Context, token string) (*TokenInfo, error) {
	info, err := ParseToken(token, m.secret)
	if err != nil {
		return nil, err
	}

	revoked, err := m.store.IsRevoked(ctx, info.JTI)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, common.ErrTokenRevoked
	}
	return info, nil
}

// Revoke blacklists the token until its expiry. Tokens that no longer verify
// need no revocation and are ignored.
func (m *TokenManager) Revoke(ctx context.Context, token string) error {
	info, err := ParseToken(token, m.secret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) || errors.Is(err, common.ErrInvalidToken) {
			return nil
		}
		return err
	}
	return m.store.Revoke(ctx, info.JTI, info.ExpiresAt)
}
