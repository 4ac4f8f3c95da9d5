// Package jwt signs and verifies the session cookie value.
// The cookie only carries the session id and the account id; everything else
// lives in the server-side session record.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Errors
var (
	ErrInvalidToken = errors.New("invalid token")     // bad signature, algorithm or shape
	ErrExpiredToken = errors.New("token has expired") // past exp
)

const issuer = "mindweaver"

// SessionClaims is the cookie payload.
// RegisteredClaims.ID carries the session id.
type SessionClaims struct {
	AccountID int64 `json:"uid"` // account the session belongs to
	jwt.RegisteredClaims
}

// SessionID returns the server-side session id.
func (c *SessionClaims) SessionID() string {
	return c.ID
}

// JWTService signs and verifies session tokens.
type JWTService struct {
	secret []byte        // HMAC key
	expire time.Duration // token lifetime, same as the session TTL
}

// NewJWTService creates a JWTService.
// Parameters:
//   - secret: signing key
//   - expire: token lifetime
//
// Returns:
//   - *JWTService: service instance
func NewJWTService(secret string, expire time.Duration) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		expire: expire,
	}
}

// GenerateSessionToken signs a token for a new session.
// Parameters:
//   - sessionID: server-side session id, becomes the jti claim
//   - accountID: owning account
//   - now: issue time
//
// Returns:
//   - string: signed token
//   - time.Time: expiry
//   - error: signing error
func (s *JWTService) GenerateSessionToken(sessionID string, accountID int64, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.expire)
	claims := SessionClaims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   "session",
		},
	}

	// HS256: HMAC SHA-256
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateSessionToken verifies signature and expiry.
// Parameters:
//   - tokenString: cookie value
//
// Returns:
//   - *SessionClaims: payload
//   - error: ErrExpiredToken or ErrInvalidToken
func (s *JWTService) ValidateSessionToken(tokenString string) (*SessionClaims, error) {
	return s.parse(tokenString)
}

// ParseIgnoringExpiry verifies the signature only.
// Logout uses it so an expired cookie can still name the record to delete.
func (s *JWTService) ParseIgnoringExpiry(tokenString string) (*SessionClaims, error) {
	return s.parse(tokenString, jwt.WithoutClaimsValidation())
}

func (s *JWTService) parse(tokenString string, opts ...jwt.ParserOption) (*SessionClaims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
