package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// ContextOrganizationID is the gin context key holding the caller's tenant.
const ContextOrganizationID = "organizationID"

// AuthMiddleware validates the bearer token and extracts the caller's
// organization. Every route behind it is tenant-scoped.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "malformed authorization header"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			c.Abort()
			return
		}
		organizationID, ok := claims["organization_id"].(string)
		if !ok || organizationID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token is missing the organization claim"})
			c.Abort()
			return
		}

		c.Set(ContextOrganizationID, organizationID)
		c.Next()
	}
}

// OrganizationID reads the tenant set by AuthMiddleware.
func OrganizationID(c *gin.Context) string {
	return c.GetString(ContextOrganizationID)
}
