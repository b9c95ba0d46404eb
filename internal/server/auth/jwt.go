// Package auth issues and verifies the signed access tokens handed out on
// register and login, and tracks tokens revoked by logout.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/dzakcloud/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims holds the registered claims plus the numeric user id rendered as
// a decimal string.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// TokenInfo is what a verified token tells us.
type TokenInfo struct {
	UserID    int64
	JTI       string
	ExpiresAt time.Time
}

func GenerateToken(userID int64, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: strconv.FormatInt(userID, 10),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies signature and expiry. Expired tokens yield
// common.ErrTokenExpired; anything else wrong yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*TokenInfo, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.ExpiresAt == nil {
		return nil, common.ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	return &TokenInfo{
		UserID:    userID,
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
