package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const sessionCookie = "session"

// Guest rejects callers who are already authenticated. The reset endpoints
// are for people locked out of their account; a live session means the
// request is at best a mistake.
//
// A session is recognized as a valid HMAC JWT in either the Authorization
// header or the session cookie. Anything unparseable counts as
// unauthenticated and is let through.
func Guest(jwtKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if hasValidSession(c, jwtKey) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

func hasValidSession(c *gin.Context, jwtKey []byte) bool {
	raw := ""
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		raw = strings.TrimPrefix(header, "Bearer ")
	} else if cookie, err := c.Cookie(sessionCookie); err == nil {
		raw = cookie
	}
	if raw == "" {
		return false
	}

	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtKey, nil
	})
	return err == nil && parsed.Valid
}
