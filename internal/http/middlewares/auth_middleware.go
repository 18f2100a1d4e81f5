package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/listinghub/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	msgAuthRequired = "Authorization required"
	msgInvalidToken = "Invalid or expired token"
)

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	tokens TokenVerifier
}

func NewAuthMiddleware(tokens TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth admits requests carrying "Authorization: Bearer <token>" with a
// valid token and attaches the caller's identity. Nothing is attached on failure.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")

		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || scheme != "Bearer" {
			abort(c, http.StatusUnauthorized, msgAuthRequired)
			return
		}

		raw = strings.TrimSpace(raw)
		if raw == "" {
			abort(c, http.StatusUnauthorized, msgAuthRequired)
			return
		}

		claims, err := m.tokens.Verify(raw)
		if err != nil {
			abort(c, http.StatusUnauthorized, msgInvalidToken)
			return
		}

		c.Set(CtxUserID, claims.Identity().ID)

		c.Next()
	}
}

func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id != 0
}
