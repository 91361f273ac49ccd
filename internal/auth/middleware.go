package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ContextKeyOperatorID = "operator_id"
	ContextKeyEmail      = "operator_email"
	ContextKeyRole       = "operator_role"
	ContextKeyClaims     = "operator_claims"
)

// Middleware creates a JWT authentication middleware.
func Middleware(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "UNAUTHORIZED",
				"message": "missing authorization header",
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "UNAUTHORIZED",
				"message": "invalid authorization header format",
			})
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "UNAUTHORIZED",
				"message": err.Error(),
			})
			return
		}

		c.Set(ContextKeyOperatorID, claims.OperatorID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRole, claims.Role)
		c.Set(ContextKeyClaims, claims)

		c.Next()
	}
}

// GetOperatorID extracts the operator ID from the Gin context.
func GetOperatorID(c *gin.Context) string {
	if v, exists := c.Get(ContextKeyOperatorID); exists {
		return v.(string)
	}
	return ""
}

// GetClaims extracts the full operator claims from the Gin context.
func GetClaims(c *gin.Context) *OperatorClaims {
	if v, exists := c.Get(ContextKeyClaims); exists {
		return v.(*OperatorClaims)
	}
	return nil
}

// IsAdmin checks if the current operator has the admin role.
func IsAdmin(c *gin.Context) bool {
	if v, exists := c.Get(ContextKeyRole); exists {
		return v.(string) == "admin"
	}
	return false
}
