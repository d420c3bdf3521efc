// Package jwt issues and verifies the operator's access and refresh tokens
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrWrongType    = errors.New("token has the wrong type")
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	// Issuer and Audience pin tokens to this gateway
	Issuer   = "property-registry"
	Audience = "property-registry-operator"
)

// Claims identifies an operator session. Subject carries the operator name.
type Claims struct {
	Role      string `json:"role"`
	SessionID string `json:"sid"`
	Type      string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is returned on login and refresh
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// JWTService signs HS256 tokens with one shared secret
type JWTService struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	parser        *jwt.Parser
}

var signJWTToken = func(token *jwt.Token, secret []byte) (string, error) {
	return token.SignedString(secret)
}

func NewJWTService(secret string, accessExpiry, refreshExpiry time.Duration) *JWTService {
	return &JWTService{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(Issuer),
			jwt.WithAudience(Audience),
			jwt.WithExpirationRequired(),
		),
	}
}

// RefreshExpiry is how long a session outlives its last refresh
func (s *JWTService) RefreshExpiry() time.Duration {
	return s.refreshExpiry
}

// GenerateTokenPair issues access and refresh tokens bound to one session
func (s *JWTService) GenerateTokenPair(subject, role, sessionID string) (*TokenPair, error) {
	now := time.Now()
	pair := &TokenPair{ExpiresAt: now.Add(s.accessExpiry)}

	var err error
	if pair.AccessToken, err = s.sign(subject, role, sessionID, TypeAccess, now, s.accessExpiry); err != nil {
		return nil, err
	}
	if pair.RefreshToken, err = s.sign(subject, role, sessionID, TypeRefresh, now, s.refreshExpiry); err != nil {
		return nil, err
	}
	return pair, nil
}

// Verify checks signature, issuer, audience and expiry, then requires the
// token to be of tokenType
func (s *JWTService) Verify(tokenString, tokenType string) (*Claims, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	case claims.Type != tokenType:
		return nil, ErrWrongType
	}
	return claims, nil
}

func (s *JWTService) sign(subject, role, sessionID, tokenType string, now time.Time, expiry time.Duration) (string, error) {
	claims := &Claims{
		Role:      role,
		SessionID: sessionID,
		Type:      tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return signJWTToken(jwt.NewWithClaims(jwt.SigningMethodHS256, claims), s.secret)
}
