package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/pkg/logger"
)

// requestIDKey mirrors the gin context key set by the request id middleware
const requestIDKey = "request_id"

// ErrorBody is the JSON envelope of every failed request
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error writes err as an ErrorBody. Status and code come from
// domainerrors.ToAppError; internal details of 5xx errors are logged, not
// returned.
func Error(c *gin.Context, err error) {
	appErr := domainerrors.ToAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "Request failed",
			zap.String("code", appErr.Code),
			zap.Error(err),
		)
	}
	c.JSON(appErr.Status, ErrorBody{
		Code:      appErr.Code,
		Message:   appErr.Message,
		RequestID: c.GetString(requestIDKey),
	})
}

// Abort stops the handler chain and writes err
func Abort(c *gin.Context, err error) {
	c.Abort()
	Error(c, err)
}
