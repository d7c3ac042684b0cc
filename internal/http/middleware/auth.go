package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const ownerKey = "owner"

// TokenParser turns a bearer token into an owner identity.
type TokenParser interface {
	Parse(token string) (string, error)
}

// AuthOptional reads a bearer token when one is sent. Requests without a token
// continue anonymously; a token that does not verify is rejected.
func AuthOptional(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.Next()
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			abortUnauthorized(c, "authorization header must be a bearer token")
			return
		}
		owner, err := tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		c.Set(ownerKey, owner)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      msg,
		"code":       "unauthorized",
		"request_id": GetRequestID(c),
	})
}

// GetOwner returns the authenticated owner, or "" for anonymous requests.
func GetOwner(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(ownerKey)
}
