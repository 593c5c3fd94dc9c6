// middleware/jwt_middleware.go
package middleware

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Context keys set by JWTMiddleware
const (
	ContextUserID   = "userId"
	ContextUserType = "userType"
	ContextEmail    = "email"
)

// Token types. Only access tokens open protected routes.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	// ErrMissingSecret is returned when JWT_SECRET is not configured
	ErrMissingSecret = errors.New("JWT_SECRET environment variable is required")

	// ErrInvalidRefreshToken is returned by ParseRefresh
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// JwtCustomClaims for JWT token
type JwtCustomClaims struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	UserType  string `json:"userType"`
	TokenType string `json:"tokenType"`
	jwt.StandardClaims
}

// GetJWTSecret returns the JWT secret from environment variables
func GetJWTSecret() (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", ErrMissingSecret
	}
	return secret, nil
}

// TokenIssuer signs access and refresh tokens with a shared HMAC secret
type TokenIssuer struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewTokenIssuer returns an issuer with 24h access and 30 day refresh tokens
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{
		Secret:     []byte(secret),
		AccessTTL:  24 * time.Hour,
		RefreshTTL: 30 * 24 * time.Hour,
	}
}

// Issue generates a new access token and refresh token
func (ti *TokenIssuer) Issue(userID, email, userType string) (string, string, error) {
	if len(ti.Secret) == 0 {
		return "", "", ErrMissingSecret
	}
	now := time.Now()

	access, err := ti.sign(userID, email, userType, TokenTypeAccess, now, ti.AccessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := ti.sign(userID, email, userType, TokenTypeRefresh, now, ti.RefreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// ParseRefresh verifies a refresh token and returns its user ID. Access
// tokens are rejected.
func (ti *TokenIssuer) ParseRefresh(tokenString string) (string, error) {
	if len(ti.Secret) == 0 {
		return "", ErrMissingSecret
	}
	claims := &JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ti.Secret, nil
	})
	if err != nil || !token.Valid || claims.TokenType != TokenTypeRefresh || claims.UserID == "" {
		return "", ErrInvalidRefreshToken
	}
	return claims.UserID, nil
}

func (ti *TokenIssuer) sign(userID, email, userType, tokenType string, now time.Time, ttl time.Duration) (string, error) {
	claims := &JwtCustomClaims{
		UserID:    userID,
		Email:     email,
		UserType:  userType,
		TokenType: tokenType,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.Secret)
}

// JWTMiddleware returns a configured JWT middleware
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	if secret == "" {
		log.Printf("Warning: JWT_SECRET environment variable is not set")
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return echo.NewHTTPError(echo.ErrUnauthorized.Code, "JWT configuration error")
			}
		}
	}

	verify := middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey: []byte(secret),
		Claims:     &JwtCustomClaims{},
		SuccessHandler: func(c echo.Context) {
			user := c.Get("user").(*jwt.Token)
			claims := user.Claims.(*JwtCustomClaims)

			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextUserType, claims.UserType)
			c.Set(ContextEmail, claims.Email)
		},
		ErrorHandler: func(err error) error {
			log.Printf("JWT middleware error: %v", err)
			return echo.NewHTTPError(echo.ErrUnauthorized.Code, "Please provide valid credentials")
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(func(c echo.Context) error {
			// Refresh tokens are only good for POST /api/auth/refresh
			if claims := GetUserFromToken(c); claims == nil || claims.TokenType != TokenTypeAccess {
				return echo.NewHTTPError(echo.ErrUnauthorized.Code, "Please provide valid credentials")
			}
			return next(c)
		})
	}
}

// GetUserFromToken extracts user information from JWT token
func GetUserFromToken(c echo.Context) *JwtCustomClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok {
		return nil
	}
	return claims
}

// GetUserIDFromToken returns the authenticated user ID or ""
func GetUserIDFromToken(c echo.Context) string {
	if userID, ok := c.Get(ContextUserID).(string); ok && userID != "" {
		return userID
	}
	if claims := GetUserFromToken(c); claims != nil {
		return claims.UserID
	}
	return ""
}

// ExtractUserType safely extracts the user type from the context
func ExtractUserType(c echo.Context) string {
	if userType, ok := c.Get(ContextUserType).(string); ok && userType != "" {
		return userType
	}
	if claims := GetUserFromToken(c); claims != nil {
		return claims.UserType
	}
	return ""
}
