package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/faizan/audiobits/logger"
	"github.com/faizan/audiobits/registry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey = "request_id"
	principalKey = "principal"
)

// TokenVerifier resolves a bearer token to the calling principal.
type TokenVerifier interface {
	Verify(token string) (registry.Principal, error)
}

// RequestID uses the X-Request-ID header if present, otherwise a new UUID,
// and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger attaches a request-scoped logger to the request context and
// logs each completed request.
func RequestLogger(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		log := base.With(slog.String("request_id", GetRequestID(c)))
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))

		c.Next()

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		}
		level := slog.LevelInfo
		if len(c.Errors) > 0 {
			level = slog.LevelError
			attrs = append(attrs, slog.String("error", c.Errors.String()))
		}
		log.LogAttrs(c.Request.Context(), level, "request", attrs...)
	}
}

// Authenticate requires a valid bearer token and stores its principal.
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			failure(c, http.StatusUnauthorized, ErrorInfo{Name: nameUnauthorized, Message: "bearer token required"})
			return
		}
		principal, err := verifier.Verify(token)
		if err != nil {
			failure(c, http.StatusUnauthorized, ErrorInfo{Name: nameUnauthorized, Message: "invalid token"})
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

func getPrincipal(c *gin.Context) registry.Principal {
	p, _ := c.Get(principalKey)
	principal, _ := p.(registry.Principal)
	return principal
}
