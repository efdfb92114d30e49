package common

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AccountIDKey is the gin context key holding the acting account id
const AccountIDKey = "account_id"

// AuthMiddleware resolves the acting account from a Bearer token issued by
// the managed auth provider. The token's "sub" claim is the account id.
// When secret is empty, auth is disabled and handlers fall back to the
// owner_id supplied in the request.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token required"})
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has no subject"})
			return
		}

		c.Set(AccountIDKey, sub)
		c.Next()
	}
}

// ResolveOwnerID returns the owner id a handler should act on: the
// authenticated account when auth is enabled, the request value otherwise.
func ResolveOwnerID(c *gin.Context, requested string) string {
	if acct, exists := c.Get(AccountIDKey); exists {
		if s, ok := acct.(string); ok && s != "" {
			return s
		}
	}
	return requested
}
