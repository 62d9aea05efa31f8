package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "taskflow-backend/internal/common/errors"
	"taskflow-backend/internal/models"
)

// Claims is the token payload. The registered ID claim carries the
// server-side session identifier so that logout can revoke the token
// before it expires.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// TokenManager issues and verifies signed bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

func NewTokenManager(secret string, ttlHours int, issuer string) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    time.Duration(ttlHours) * time.Hour,
		issuer: issuer,
	}
}

// Generate signs a token for the user bound to the given session.
func (m *TokenManager) Generate(user *models.User, sessionID string) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    m.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID: user.ID,
		Email:  user.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies the signature and expiry and returns the claims.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.NewTokenInvalidError("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, apperrors.NewTokenInvalidError(err.Error())
	}
	if !token.Valid {
		return nil, apperrors.NewTokenInvalidError("token is not valid")
	}
	return claims, nil
}

// TTL exposes the configured token lifetime so session records can
// share the same expiry.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}
