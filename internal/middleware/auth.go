// Package middleware holds the gin middleware shared by the HTTP routes.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/culinara/culinara/internal/feed"
)

const viewerKey = "culinara.viewer"

// Principal resolves the optional bearer token into a feed viewer. Requests
// without an Authorization header continue anonymously; a header that does
// not carry a valid HS256 token signed with secret is rejected with 401.
func Principal(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		scheme, tokenString, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			abortUnauthorized(c, "Invalid authorization header format.")
			return
		}
		if secret == "" {
			abortUnauthorized(c, "Invalid or expired token.")
			return
		}

		token, err := jwt.Parse(strings.TrimSpace(tokenString), func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			abortUnauthorized(c, "Invalid or expired token.")
			return
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			abortUnauthorized(c, "Token contained no recognizable user identification.")
			return
		}

		c.Set(viewerKey, &feed.Viewer{UserID: sub})
		c.Next()
	}
}

// ViewerFrom returns the authenticated viewer, or nil for anonymous requests
func ViewerFrom(c *gin.Context) *feed.Viewer {
	if v, ok := c.Get(viewerKey); ok {
		if viewer, ok := v.(*feed.Viewer); ok {
			return viewer
		}
	}
	return nil
}

func abortUnauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}
