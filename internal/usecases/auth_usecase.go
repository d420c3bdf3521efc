package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"property-registry.backend/internal/domain/entities"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/pkg/crypto"
	"property-registry.backend/pkg/jwt"
	"property-registry.backend/pkg/redis"
)

// SessionStore keeps server-side operator sessions. *redis.SessionStore implements it.
type SessionStore interface {
	Save(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error
	Load(ctx context.Context, sessionID string) (*redis.SessionData, error)
	Revoke(ctx context.Context, sessionID string) error
}

var newSessionID = crypto.NewSessionID

// AuthUsecase signs the single gateway operator in and out
type AuthUsecase struct {
	operator     string
	passwordHash string
	jwtService   *jwt.JWTService
	sessions     SessionStore
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(operator, passwordHash string, jwtService *jwt.JWTService, sessions SessionStore) *AuthUsecase {
	return &AuthUsecase{
		operator:     operator,
		passwordHash: passwordHash,
		jwtService:   jwtService,
		sessions:     sessions,
	}
}

// Login checks the operator password and opens a session
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	if !crypto.VerifyOperator(input.Username, input.Password, u.operator, u.passwordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	sessionID, err := newSessionID()
	if err != nil {
		return nil, err
	}
	session := &redis.SessionData{
		Subject:   u.operator,
		Role:      entities.OperatorRole,
		CreatedAt: time.Now().UTC(),
	}
	if err := u.sessions.Save(ctx, sessionID, session, u.jwtService.RefreshExpiry()); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return u.issue(sessionID, session)
}

// Refresh rotates the token pair of a live session and extends it
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*entities.AuthResponse, error) {
	claims, err := u.jwtService.Verify(refreshToken, jwt.TypeRefresh)
	if err != nil {
		return nil, tokenError(err)
	}
	session, err := u.loadSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if err := u.sessions.Save(ctx, claims.SessionID, session, u.jwtService.RefreshExpiry()); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return u.issue(claims.SessionID, session)
}

// Authenticate validates an access token against its session
func (u *AuthUsecase) Authenticate(ctx context.Context, accessToken string) (*jwt.Claims, error) {
	claims, err := u.jwtService.Verify(accessToken, jwt.TypeAccess)
	if err != nil {
		return nil, tokenError(err)
	}
	if _, err := u.loadSession(ctx, claims.SessionID); err != nil {
		return nil, err
	}
	return claims, nil
}

// Logout revokes the session; its tokens stop working immediately
func (u *AuthUsecase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domainerrors.ErrUnauthorized
	}
	return u.sessions.Revoke(ctx, sessionID)
}

func (u *AuthUsecase) issue(sessionID string, session *redis.SessionData) (*entities.AuthResponse, error) {
	pair, err := u.jwtService.GenerateTokenPair(session.Subject, session.Role, sessionID)
	if err != nil {
		return nil, err
	}
	return &entities.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
		Operator:     session.Subject,
	}, nil
}

func (u *AuthUsecase) loadSession(ctx context.Context, sessionID string) (*redis.SessionData, error) {
	session, err := u.sessions.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, redis.ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: session revoked or expired", domainerrors.ErrUnauthorized)
		}
		return nil, err
	}
	return session, nil
}

func tokenError(err error) error {
	if errors.Is(err, jwt.ErrExpiredToken) {
		return domainerrors.ErrTokenExpired
	}
	return fmt.Errorf("%w: %v", domainerrors.ErrUnauthorized, err)
}
