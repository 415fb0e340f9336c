package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"titlehub/internal/api/access"
)

// ActorKey is where the resolved actor lives in the gin context.
const ActorKey = "actor"

// TokenValidator is the slice of the auth service the middleware needs.
type TokenValidator interface {
	ValidateActor(tokenString string) (access.Actor, error)
}

// Authenticate resolves the bearer token into an actor. Requests without
// an Authorization header pass through as anonymous; the permission
// check in each service decides whether that is enough. A header that is
// present but invalid is rejected here, so a bad credential never
// silently downgrades to anonymous.
func Authenticate(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		actor, err := tokens.ValidateActor(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(ActorKey, actor)
		c.Next()
	}
}
