package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/calmpath-backend/internal/http/response"
	"github.com/yungbote/calmpath-backend/internal/platform/identity"
	"github.com/yungbote/calmpath-backend/internal/platform/logger"
)

// Claims is the access token payload. Subject carries the user id; sid, when present,
// names the login session so a second stream from the same login replaces the first.
type Claims struct {
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	log          *logger.Logger
	jwtSecretKey []byte
}

func NewAuthMiddleware(log *logger.Logger, jwtSecretKey string) *AuthMiddleware {
	middlewareLogger := log.With("Middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, jwtSecretKey: []byte(jwtSecretKey)}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid token"))
			return
		}
		who, err := am.Identify(tokenString)
		if err != nil {
			am.log.Debug("Rejected access token", "error", err)
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", errors.New("invalid or expired token"))
			return
		}
		c.Request = c.Request.WithContext(identity.WithIdentity(c.Request.Context(), who))
		c.Next()
	}
}

// Identify verifies an HS256 access token and resolves the caller it names.
func (am *AuthMiddleware) Identify(tokenString string) (identity.Identity, error) {
	if len(am.jwtSecretKey) == 0 {
		return identity.Identity{}, errors.New("jwt secret not configured")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return am.jwtSecretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return identity.Identity{}, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return identity.Identity{}, errors.New("invalid or expired JWT token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return identity.Identity{}, fmt.Errorf("invalid user id in token: %q", claims.Subject)
	}
	who := identity.Identity{UserID: userID}
	if sid := strings.TrimSpace(claims.SessionID); sid != "" {
		sessionID, err := uuid.Parse(sid)
		if err != nil {
			return identity.Identity{}, fmt.Errorf("invalid session id in token: %q", sid)
		}
		who.SessionID = sessionID
	}
	return who, nil
}

func extractTokenFromAll(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
