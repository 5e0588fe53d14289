package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Makiato1999/CareMate-Backend/internal/config"
	"github.com/Makiato1999/CareMate-Backend/internal/model"
	"github.com/Makiato1999/CareMate-Backend/internal/token"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	authUserKey  = "auth_user"
	requestIDKey = "request_id"
)

// AuthMiddleware validates the session token on every request and attaches
// the resolved identity to the gin context. OPTIONS requests always pass so
// CORS preflights are never rejected. Header name and token prefix come from
// configuration.
func AuthMiddleware(tokens *token.Manager, cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		header := c.GetHeader(cfg.Header)
		if !strings.HasPrefix(header, cfg.TokenPrefix) {
			abortUnauthorized(c)
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(header, cfg.TokenPrefix))
		if raw == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		userID, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(authUserKey, &model.AuthUser{
			UserID:   userID,
			UserType: claims.UserType,
		})
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
		Code:    http.StatusUnauthorized,
		Message: "unauthorized",
	})
}

func GetAuthUser(c *gin.Context) *model.AuthUser {
	if value, ok := c.Get(authUserKey); ok {
		if user, ok := value.(*model.AuthUser); ok {
			return user
		}
	}
	return nil
}

// RequestIDMiddleware assigns each request a uuid, echoed in X-Request-Id.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header("X-Request-Id", requestID)
		c.Next()
	}
}

// RequestLogger emits one structured log line per request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		durationMs := float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond)
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", durationMs,
			"request_id", c.GetString(requestIDKey),
		)
	}
}

func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
