// Package auth implements password hashing and JWT issuance for the API.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hamawards/internal/common"
)

// Claims is the JWT payload. Role and Callsign are embedded so handlers can
// authorize without a user lookup on every request.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"uid"`
	Callsign string `json:"callsign"`
	Role     string `json:"role"`
}

// GenerateToken creates a signed JWT for the given user valid for the
// given duration.
func GenerateToken(secretKey string, userID int64, callsign, role string, validity time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:   userID,
		Callsign: callsign,
		Role:     role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}

	return signed, nil
}

// ParseToken validates a token string and returns its claims. Expired,
// malformed or wrongly signed tokens all come back as ErrInvalidToken.
func ParseToken(secretKey, tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
