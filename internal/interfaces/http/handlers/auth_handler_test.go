package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"property-registry.backend/internal/domain/entities"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/internal/interfaces/http/middleware"
)

func authRouter(svc *authServiceMock, sessionID string) *gin.Engine {
	h := &AuthHandler{authUsecase: svc}
	r := newTestRouter()
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	r.POST("/auth/logout", func(c *gin.Context) {
		if sessionID != "" {
			c.Set(middleware.SessionIDKey, sessionID)
		}
		c.Next()
	}, h.Logout)
	return r
}

func TestAuthHandler_Login(t *testing.T) {
	svc := &authServiceMock{}
	good := &entities.LoginInput{Username: "operator", Password: "secret"}
	svc.On("Login", mock.Anything, good).Return(&entities.AuthResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Minute),
		Operator:     "operator",
	}, nil)
	svc.On("Login", mock.Anything, &entities.LoginInput{Username: "operator", Password: "wrong"}).Return(nil, domainerrors.ErrInvalidCredentials)
	r := authRouter(svc, "")

	rec := doJSON(r, http.MethodPost, "/auth/login", good)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"accessToken":"access"`)

	rec = doJSON(r, http.MethodPost, "/auth/login", &entities.LoginInput{Username: "operator", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid username or password")

	rec = doJSON(r, http.MethodPost, "/auth/login", map[string]string{"username": "operator"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Refresh(t *testing.T) {
	svc := &authServiceMock{}
	svc.On("Refresh", mock.Anything, "refresh").Return(&entities.AuthResponse{AccessToken: "next"}, nil)
	svc.On("Refresh", mock.Anything, "stale").Return(nil, domainerrors.ErrTokenExpired)
	r := authRouter(svc, "")

	rec := doJSON(r, http.MethodPost, "/auth/refresh", entities.RefreshInput{RefreshToken: "refresh"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"accessToken":"next"`)

	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodPost, "/auth/refresh", entities.RefreshInput{RefreshToken: "stale"}).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/auth/refresh", map[string]string{}).Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	svc := &authServiceMock{}
	svc.On("Logout", mock.Anything, "sess-1").Return(nil).Once()

	rec := doJSON(authRouter(svc, "sess-1"), http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(authRouter(svc, ""), http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertExpectations(t)
}
