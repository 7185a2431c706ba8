// Package middleware provides the gin middleware applied by the HTTP layer.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harborview-stays/service-reservations/internal/domain/access"
	"github.com/harborview-stays/service-reservations/internal/platform/auth"
)

const (
	actorKey     = "actor"
	requestIDKey = "request_id"
)

// RecoveryMiddleware recovers from panics and logs them with the request path.
func RecoveryMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   gin.H{"code": "INTERNAL", "message": "internal server error"},
				})
			}
		}()
		c.Next()
	}
}

// LoggerMiddleware logs each request with method, path, status and latency.
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
	}
}

// RequestIDMiddleware attaches a request ID, honoring an inbound X-Request-ID.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// CORSMiddleware applies a permissive CORS policy for the public site.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// SecurityHeadersMiddleware sets standard hardening headers.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("Referrer-Policy", "no-referrer")
		c.Next()
	}
}

// AuthMiddleware requires a valid bearer token and resolves the actor from it.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := actorFromHeader(c, jwtManager)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": err.Error()},
			})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves an actor when a bearer token is present but
// lets anonymous requests through. Used by the public booking flow, where a
// reservation created without a token carries no creator.
func OptionalAuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if actor, err := actorFromHeader(c, jwtManager); err == nil {
				c.Set(actorKey, actor)
			}
		}
		c.Next()
	}
}

func actorFromHeader(c *gin.Context, jwtManager *auth.JWTManager) (access.Actor, error) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return access.Actor{}, errUnauthorized
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")

	claims, err := jwtManager.VerifyAccessToken(tokenString)
	if err != nil {
		return access.Actor{}, errUnauthorized
	}

	role, err := access.ParseRole(claims.Role)
	if err != nil {
		return access.Actor{}, errUnauthorized
	}
	return access.Actor{ID: claims.UserID, Role: role}, nil
}

var errUnauthorized = unauthorizedError{}

type unauthorizedError struct{}

func (unauthorizedError) Error() string { return "missing or invalid credentials" }

// GetActor returns the actor resolved by the auth middleware, if any.
func GetActor(c *gin.Context) (access.Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return access.Actor{}, false
	}
	actor, ok := v.(access.Actor)
	return actor, ok
}

// ActorPtr returns a pointer to the resolved actor, or nil for anonymous
// requests behind OptionalAuthMiddleware.
func ActorPtr(c *gin.Context) *access.Actor {
	actor, ok := GetActor(c)
	if !ok {
		return nil
	}
	return &actor
}
