package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recruitbase/recruitbase/internal/auth"
)

// Context keys populated by AuthMiddleware.
const (
	UserIDKey         = "user_id"
	UserNameKey       = "user_name"
	OrganizationIDKey = "organization_id"
)

// AuthMiddleware validates the Bearer JWT and populates the actor identity in
// the gin context. Validation is entirely stateless (a cryptographic check
// against the JWT secret, no database round-trip) because the claims
// carry everything the audited endpoints need: user id, display name, and
// organization id.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
			})
			return
		}

		claims, err := auth.ValidateJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserNameKey, claims.UserName)
		c.Set(OrganizationIDKey, claims.OrganizationID)

		c.Next()
	}
}
