package middleware

import (
	"net/http"
	"strings"

	"github.com/chachabrian/homefix-backend/internal/apperror"
	"github.com/chachabrian/homefix-backend/internal/models"
	"github.com/chachabrian/homefix-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

const (
	UserIDKey   = "userId"
	UserTypeKey = "userType"
)

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "kind": apperror.KindUnauthorized})
}

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		// First try to get token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// If not found in header, try query parameter (for WebSocket)
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			unauthorized(c, "Authorization header or token query parameter required")
			return
		}

		claims, err := utils.ValidateToken(tokenString, secret)
		if err != nil {
			unauthorized(c, "Invalid token")
			return
		}

		role := models.Role(claims.Role)
		if !role.Valid() {
			unauthorized(c, "Invalid token claims")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserTypeKey, role)
		c.Next()
	}
}

// Actor returns the authenticated caller set by AuthMiddleware.
func Actor(c *gin.Context) (models.Actor, bool) {
	id, ok := c.Get(UserIDKey)
	if !ok {
		return models.Actor{}, false
	}
	role, ok := c.Get(UserTypeKey)
	if !ok {
		return models.Actor{}, false
	}
	return models.Actor{ID: id.(uint), Role: role.(models.Role)}, true
}

// RequireRole rejects callers whose role is not one of roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := Actor(c)
		if !ok {
			unauthorized(c, "Unauthorized")
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Only " + joinRoles(roles) + " can access this resource",
			"kind":  apperror.KindForbidden,
		})
	}
}

func joinRoles(roles []models.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r) + "s"
	}
	return strings.Join(names, " and ")
}
