package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/assetvault/internal/common"
	"github.com/dmitrijs2005/assetvault/internal/logging"
	"github.com/dmitrijs2005/assetvault/internal/server/auth"
	"github.com/gin-gonic/gin"
)

// BearerAuth resolves the caller from "Authorization: Bearer <jwt>" and
// stores the user id in the request context. Requests without a valid
// token continue anonymously; resolvers reject them where identity is needed.
func BearerAuth(secret []byte, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(common.AuthorizationHeaderName))
		if !ok {
			c.Next()
			return
		}

		userID, err := auth.GetUserIDFromToken(token, secret)
		if err != nil {
			log.Debug(c.Request.Context(), "rejected bearer token", "error", err)
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(auth.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// LimitBody caps the request body size.
func LimitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error(c.Request.Context(), "request", args...)
			return
		}
		log.Info(c.Request.Context(), "request", args...)
	}
}
