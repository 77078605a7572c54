package api

import (
	"strings"

	"github.com/avelichko/ridepool/internal/apperrors"
	"github.com/avelichko/ridepool/internal/auth"
	"github.com/avelichko/ridepool/internal/domain"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// RequireAuth resolves the bearer token to a Principal once and makes
// it available to handlers. Everything past this middleware can rely
// on a valid caller identity.
func RequireAuth(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}
		principal, err := tokens.Parse(token)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

func currentPrincipal(c *gin.Context) domain.Principal {
	v, _ := c.Get(principalKey)
	principal, _ := v.(domain.Principal)
	return principal
}
