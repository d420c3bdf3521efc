package middleware

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"property-registry.backend/pkg/logger"
)

// LoggerMiddleware writes one access log line per request, tagged with the
// authenticated operator and whether the response was an idempotent replay
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		logger.LogRequest(c.Request.Context(), logger.Request{
			Method:   c.Request.Method,
			Path:     path,
			Status:   c.Writer.Status(),
			Latency:  time.Since(start),
			ClientIP: c.ClientIP(),
			Operator: c.GetString(OperatorKey),
			Replayed: c.Writer.Header().Get(IdempotencyHitHeader) == "true",
		})
	}
}

// CurrentAccount reports the active wallet account
type CurrentAccount interface {
	Current() (common.Address, bool)
}

// AccountContextMiddleware tags the request context with the active wallet
// account so every log line of the request carries it
func AccountContextMiddleware(session CurrentAccount) gin.HandlerFunc {
	return func(c *gin.Context) {
		if account, ok := session.Current(); ok {
			ctx := context.WithValue(c.Request.Context(), logger.AccountKey, account.Hex())
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
