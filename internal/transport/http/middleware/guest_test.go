package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ErlanBelekov/account-recovery/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var guestTestKey = []byte("guest-test-secret-at-least-32-chr!!")

func newGuestEngine() *gin.Engine {
	r := gin.New()
	r.POST("/requestResetPassword", middleware.Guest(guestTestKey), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func signSession(t *testing.T, key []byte) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": "user-1",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign session: %v", err)
	}
	return signed
}

func TestGuest_UnauthenticatedRequestPasses(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requestResetPassword", nil)
	newGuestEngine().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestGuest_BearerSessionRejected(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requestResetPassword", nil)
	req.Header.Set("Authorization", "Bearer "+signSession(t, guestTestKey))
	newGuestEngine().ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestGuest_CookieSessionRejected(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requestResetPassword", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: signSession(t, guestTestKey)})
	newGuestEngine().ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestGuest_ForgedSessionPasses(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requestResetPassword", nil)
	req.Header.Set("Authorization", "Bearer "+signSession(t, []byte("some-other-key-entirely-32-chars!!")))
	newGuestEngine().ServeHTTP(w, req)

	// An unverifiable token is just an unauthenticated caller.
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
