package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/SaicharanT-tech/eventra/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextKeyUserID     = "user_id"
	ContextKeyRole       = "role"
	ContextKeyName       = "name"
	ContextKeyDepartment = "department"

	bearerPrefix = "Bearer "
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims is the access token payload. Tokens are issued by the identity
// provider; this service only verifies them.
type Claims struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name,omitempty"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	jwt.RegisteredClaims
}

// AuthConfig configures token verification
type AuthConfig struct {
	Secret string
	Issuer string
}

// JWTAuth verifies an HS256 bearer token and stores the actor in the gin context
func JWTAuth(cfg *AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Err("MISSING_TOKEN", "Authorization header is required"))
			return
		}
		if !strings.HasPrefix(header, bearerPrefix) || len(header) <= len(bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Err("INVALID_TOKEN", "Invalid authorization header format"))
			return
		}

		claims, err := ParseToken(cfg, header[len(bearerPrefix):])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Err("INVALID_TOKEN", "Invalid or expired token"))
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRole, claims.Role)
		c.Set(ContextKeyName, claims.Name)
		c.Set(ContextKeyDepartment, claims.Department)
		c.Next()
	}
}

// ParseToken validates signature, expiry and issuer and returns the claims
func ParseToken(cfg *AuthConfig, tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SignToken mints an HS256 token. Used by dev tooling and tests.
func SignToken(cfg *AuthConfig, claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.Subject = claims.UserID
	claims.Issuer = cfg.Issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}

// RequireRoles rejects actors whose role is not listed
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Err("UNAUTHORIZED", "User role not found in context"))
			return
		}
		if _, ok := allowed[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Err("FORBIDDEN", "Access denied for role "+role))
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user id
func GetUserID(c *gin.Context) (string, bool) {
	return getString(c, ContextKeyUserID)
}

// GetRole returns the authenticated role
func GetRole(c *gin.Context) (string, bool) {
	return getString(c, ContextKeyRole)
}

func getString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
