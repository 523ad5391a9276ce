package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stylianoueleni/festival-engine/pkg/response"
)

const (
	// ContextKeyUserID is the gin context key holding the authenticated
	// visitor id.
	ContextKeyUserID = "user_id"
	// ContextKeyRole is the gin context key holding the caller's role.
	ContextKeyRole = "role"
)

// Claims is the JWT payload issued to visitors and staff.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// AuthConfig holds configuration for the auth middleware
type AuthConfig struct {
	// Secret is the HMAC signing secret
	Secret string
	// HeaderFallback allows X-User-ID without a token. Load testing only.
	HeaderFallback bool
}

// AuthMiddleware validates the Bearer token and stores the caller's
// identity in the gin context.
func AuthMiddleware(cfg *AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if cfg.HeaderFallback {
				if userID := c.GetHeader("X-User-ID"); userID != "" {
					c.Set(ContextKeyUserID, userID)
					c.Next()
					return
				}
			}
			response.Error(c, http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header is required", "")
			c.Abort()
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid authorization header format", "")
			c.Abort()
			return
		}
		token := authHeader[len(bearerPrefix):]

		claims, err := ParseToken(token, cfg.Secret)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token", "")
			c.Abort()
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		if claims.Role != "" {
			c.Set(ContextKeyRole, claims.Role)
		}
		c.Next()
	}
}

// ParseToken validates an HMAC-signed token and returns its claims.
func ParseToken(token, secret string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// IssueToken signs a token for the given user. Used by tests and tooling.
func IssueToken(userID, role, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GetUserID extracts the authenticated user id from the gin context.
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(ContextKeyUserID)
	return userID, userID != ""
}
