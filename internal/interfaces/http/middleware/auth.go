package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/internal/interfaces/http/response"
	"property-registry.backend/pkg/jwt"
	"property-registry.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// OperatorKey is the context key for the operator name
	OperatorKey = "operator"
	// OperatorRoleKey is the context key for the operator role
	OperatorRoleKey = "operatorRole"
	// SessionIDKey is the context key for the server-side session id
	SessionIDKey = "sessionId"
)

// Authenticator validates an access token against its session
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*jwt.Claims, error)
}

// AuthMiddleware requires a valid operator access token
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header is required")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, "Invalid authorization format. Use: Bearer <token>")
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			logger.Warn(c.Request.Context(), "Rejected operator token",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			response.Abort(c, err)
			return
		}

		c.Set(OperatorKey, claims.Subject)
		c.Set(OperatorRoleKey, claims.Role)
		c.Set(SessionIDKey, claims.SessionID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	logger.Warn(c.Request.Context(), "Rejected request", zap.String("path", c.Request.URL.Path), zap.String("reason", message))
	response.Abort(c, domainerrors.Unauthorized(message))
}

// GetOperator gets the operator name from context
func GetOperator(c *gin.Context) (string, bool) {
	return c.GetString(OperatorKey), c.GetString(OperatorKey) != ""
}

// GetSessionID gets the session id from context
func GetSessionID(c *gin.Context) (string, bool) {
	return c.GetString(SessionIDKey), c.GetString(SessionIDKey) != ""
}

// RequireRole creates a middleware that requires one of the given operator roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(OperatorRoleKey)
		if role == "" {
			response.Abort(c, domainerrors.Unauthorized("operator role not found"))
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Abort(c, domainerrors.Forbidden("insufficient permissions"))
	}
}
