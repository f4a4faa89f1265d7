package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/timmy/vidfeed/internal/logger"
)

const viewerKey = "viewer_id"

var errMissingSubject = errors.New("token has no subject")

// OptionalAuth resolves the viewer from an HS256 bearer token. Requests
// without an Authorization header proceed anonymously; a malformed or
// invalid token is rejected with 401. An empty secret disables auth and
// every request is anonymous.
func OptionalAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || secret == "" {
			c.Next()
			return
		}

		const prefix = "Bearer "
		if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed authorization header"})
			return
		}

		viewerID, err := parseViewer(strings.TrimSpace(header[len(prefix):]), key)
		if err != nil {
			logger.CtxDebug(c.Request.Context(), "[Auth] rejected token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(viewerKey, viewerID)
		c.Request = c.Request.WithContext(logger.SetViewerID(c.Request.Context(), viewerID))
		c.Next()
	}
}

func parseViewer(token string, key []byte) (string, error) {
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errMissingSubject
	}
	return sub, nil
}

// ViewerID returns the authenticated viewer, or nil for anonymous requests.
func ViewerID(c *gin.Context) *string {
	v := c.GetString(viewerKey)
	if v == "" {
		return nil
	}
	return &v
}
