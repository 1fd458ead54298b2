package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/evanmh/stocktrack/internal/model"
)

// Issuer identifies tokens minted by this service. Tokens carrying any
// other issuer are rejected even when the signature checks out.
const Issuer = "stocktrack"

// TokenExpiry is the default token lifetime.
const TokenExpiry = 7 * 24 * time.Hour

// Claims carries the authenticated user's identity and role.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken mints a signed JWT for a user. Each token gets a unique
// JTI so individual tokens stay distinguishable in logs.
func GenerateToken(secret string, userID int64, username, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a token, returning its claims. The
// signing method, issuer, and expiry are all enforced by the parser; the
// role is additionally checked against the known role set so a token from
// an old database cannot smuggle in a role the service no longer has.
func ValidateToken(secret, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	switch claims.Role {
	case model.RoleAdmin, model.RoleUser:
	default:
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}

	return claims, nil
}
