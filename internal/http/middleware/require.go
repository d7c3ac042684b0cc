package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireOwner rejects anonymous requests. It must run after AuthOptional.
//
//	r.GET("/me", RequireOwner(), handler)
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetOwner(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      "sign in required",
				"code":       "unauthorized",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}
