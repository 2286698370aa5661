// file: service/token_codec.go

package service

import (
	"errors"
	"time"

	"github.com/SOUROVSARKERTEC12/file-auth-management/logger"
	"github.com/SOUROVSARKERTEC12/file-auth-management/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any signature, payload or expiry failure.
// Callers never learn which check failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenPair is the transient result of minting tokens. It is never persisted
// as a whole; only the refresh half is stored, by the token repository.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenCodec signs and verifies bearer tokens. It is built once at startup
// from the process-wide secret and the two TTLs, and never mutated after.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenCodec creates a TokenCodec.
func NewTokenCodec(secret string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Sign mints a token for the user with the given lifetime. Every token gets
// a fresh jti, so two pairs minted for the same user in the same second are
// still distinct values.
func (c *TokenCodec) Sign(user *model.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &model.AppClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Failed to sign token")
		return "", err
	}
	return signed, nil
}

// SignPair mints an access/refresh token pair for the user.
func (c *TokenCodec) SignPair(user *model.User) (*TokenPair, error) {
	accessToken, err := c.Sign(user, c.accessTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := c.Sign(user, c.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Verify parses and validates a token and returns its claims. There is no
// soft mode: a bad signature, a malformed payload and a past expiry all come
// back as ErrInvalidToken.
func (c *TokenCodec) Verify(tokenString string) (*model.AppClaims, error) {
	claims := &model.AppClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
