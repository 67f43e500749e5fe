package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clothstore/storefront/internal/models"
)

// Verifier resolves a bearer token to an authenticated principal. The
// identity service owns credentials; the core only consumes the result.
type Verifier interface {
	Verify(ctx context.Context, token string) (*models.Principal, error)
}

const principalKey = "principal"

// Middleware authenticates the request and stores the principal in the
// request context.
func Middleware(verifier Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		principal, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(principalKey, *principal)
		c.Next()
	}
}

// RequireAdmin gates administrative routes.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok || !principal.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the authenticated principal set by Middleware.
func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	principal, ok := v.(models.Principal)
	return principal, ok
}

// SetPrincipal is a test hook for handler tests that bypass Middleware.
func SetPrincipal(c *gin.Context, p models.Principal) {
	c.Set(principalKey, p)
}
