package middleware

import (
	"net/http"
	"strings"
	"time"

	"beatsbook/internal/shared/config"
	"beatsbook/internal/shared/utils/response"
	"beatsbook/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Context keys set by JWTAuth for downstream handlers.
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// JWTAuthWithConfig validates the Authorization bearer token and stores the
// authenticated user's identity on the request context.
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header required", nil, nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.RespondJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization header format", nil, nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})
		if err != nil || !token.Valid {
			response.RespondJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.RespondJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token claims", nil, nil)
			c.Abort()
			return
		}

		// Refresh tokens must not be accepted on API routes.
		if tokenType, _ := claims["type"].(string); tokenType != "access" {
			response.RespondJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token type", nil, nil)
			c.Abort()
			return
		}

		userID, _ := claims["user_id"].(string)
		if _, err := uuid.Parse(userID); err != nil {
			response.RespondJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token subject", nil, nil)
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		if email, ok := claims["email"].(string); ok {
			c.Set(ContextEmail, email)
		}
		if role, ok := claims["role"].(string); ok {
			c.Set(ContextRole, role)
		}

		c.Next()
	}
}

// RequireRoles allows only users whose role claim matches one of the given roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			response.RespondJSON(c, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions", nil, nil)
			c.Abort()
			return
		}

		roleStr, _ := role.(string)
		for _, allowed := range roles {
			if roleStr == allowed {
				c.Next()
				return
			}
		}

		response.RespondJSON(c, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions", nil, nil)
		c.Abort()
	}
}

// CurrentUserID returns the authenticated user's ID from the context.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, false
	}
	idStr, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// RequestLogger logs every request with its latency after the handler runs.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.LogHTTPRequest(c, time.Since(start))
	}
}

// RequestID attaches a request ID to every request for log correlation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}
