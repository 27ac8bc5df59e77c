package handler_test

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/ErlanBelekov/account-recovery/internal/domain"
	"github.com/ErlanBelekov/account-recovery/internal/transport/http/handler"
	"github.com/ErlanBelekov/account-recovery/web"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeRecovery implements the unexported recoveryUsecaser interface via
// method matching.
type fakeRecovery struct {
	requestReset func(ctx context.Context, email, clientIP string) error
	checkToken   func(ctx context.Context, rawToken string) error
	confirmReset func(ctx context.Context, rawToken, password, confirm, clientIP string) error
}

func (f *fakeRecovery) RequestReset(ctx context.Context, email, clientIP string) error {
	return f.requestReset(ctx, email, clientIP)
}

func (f *fakeRecovery) CheckToken(ctx context.Context, rawToken string) error {
	return f.checkToken(ctx, rawToken)
}

func (f *fakeRecovery) ConfirmReset(ctx context.Context, rawToken, password, confirm, clientIP string) error {
	return f.confirmReset(ctx, rawToken, password, confirm, clientIP)
}

func newTestEngine(uc *fakeRecovery) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := handler.NewRecoveryHandler(uc, logger)

	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.ParseFS(web.Templates, "templates/*.html")))
	r.GET("/forgot", h.ForgotPage)
	r.POST("/requestResetPassword", h.RequestReset)
	r.GET("/resetPassword/:resetToken", h.ResetPage)
	r.POST("/resetPassword", h.ConfirmReset)
	return r
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	return w
}

// ---- ForgotPage ----

func TestForgotPage_RendersForm(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/forgot", nil)
	newTestEngine(&fakeRecovery{}).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `action="/requestResetPassword"`) {
		t.Error("forgot page does not contain the request form")
	}
}

// ---- RequestReset ----

func TestRequestReset_InvalidEmail_Returns400(t *testing.T) {
	uc := &fakeRecovery{}
	w := postForm(newTestEngine(uc), "/requestResetPassword",
		url.Values{"email": {"not-an-email"}})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRequestReset_Success_ShowsCheckEmail(t *testing.T) {
	uc := &fakeRecovery{
		requestReset: func(_ context.Context, _, _ string) error { return nil },
	}
	w := postForm(newTestEngine(uc), "/requestResetPassword",
		url.Values{"email": {"a@x.com"}})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Please check your email at a@x.com") {
		t.Errorf("body missing check-your-email notice: %s", w.Body.String())
	}
}

func TestRequestReset_UnknownAccount_SaysSo(t *testing.T) {
	uc := &fakeRecovery{
		requestReset: func(_ context.Context, _, _ string) error {
			return domain.ErrAccountNotFound
		},
	}
	w := postForm(newTestEngine(uc), "/requestResetPassword",
		url.Values{"email": {"unknown@x.com"}})

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "We couldn&#39;t find an account with that email!") &&
		!strings.Contains(w.Body.String(), "We couldn't find an account with that email!") {
		t.Errorf("body missing no-account message: %s", w.Body.String())
	}
}

func TestRequestReset_Throttled_Returns429(t *testing.T) {
	uc := &fakeRecovery{
		requestReset: func(_ context.Context, _, _ string) error {
			return domain.ErrThrottled
		},
	}
	w := postForm(newTestEngine(uc), "/requestResetPassword",
		url.Values{"email": {"a@x.com"}})

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
}

func TestRequestReset_DeliveryFailure_GenericError(t *testing.T) {
	uc := &fakeRecovery{
		requestReset: func(_ context.Context, _, _ string) error {
			return domain.ErrDeliveryFailed
		},
	}
	w := postForm(newTestEngine(uc), "/requestResetPassword",
		url.Values{"email": {"a@x.com"}})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "An unexpected error happened!") {
		t.Errorf("body missing generic error: %s", body)
	}
	if strings.Contains(body, "delivery") {
		t.Error("transport internals leaked to the client")
	}
}

// ---- ResetPage ----

func TestResetPage_ValidToken_RendersForm(t *testing.T) {
	uc := &fakeRecovery{
		checkToken: func(_ context.Context, _ string) error { return nil },
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/resetPassword/sometoken", nil)
	newTestEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `value="sometoken"`) {
		t.Error("reset form does not carry the token")
	}
}

func TestResetPage_InvalidToken_RendersError(t *testing.T) {
	uc := &fakeRecovery{
		checkToken: func(_ context.Context, _ string) error {
			return domain.ErrTokenInvalid
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/resetPassword/garbage", nil)
	newTestEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Token is not valid!") {
		t.Errorf("body missing invalid-token message: %s", w.Body.String())
	}
}

// ---- ConfirmReset ----

func confirmForm(token, password, confirm string) url.Values {
	return url.Values{
		"token":           {token},
		"password":        {password},
		"confirmPassword": {confirm},
	}
}

func TestConfirmReset_Success(t *testing.T) {
	uc := &fakeRecovery{
		confirmReset: func(_ context.Context, _, _, _, _ string) error { return nil },
	}
	w := postForm(newTestEngine(uc), "/resetPassword",
		confirmForm("tok", "longenough1", "longenough1"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Successfully reset your password!") {
		t.Errorf("body missing success message: %s", w.Body.String())
	}
}

func TestConfirmReset_ShortPassword_NamesTheRule(t *testing.T) {
	uc := &fakeRecovery{
		confirmReset: func(_ context.Context, _, _, _, _ string) error {
			return domain.ErrPasswordTooShort
		},
	}
	w := postForm(newTestEngine(uc), "/resetPassword",
		confirmForm("tok", "short", "short"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Your password must be 8 characters long!") {
		t.Errorf("body missing length rule: %s", body)
	}
	if !strings.Contains(body, `value="tok"`) {
		t.Error("form lost the token on re-display")
	}
}

func TestConfirmReset_Mismatch_NamesTheRule(t *testing.T) {
	uc := &fakeRecovery{
		confirmReset: func(_ context.Context, _, _, _, _ string) error {
			return domain.ErrPasswordMismatch
		},
	}
	w := postForm(newTestEngine(uc), "/resetPassword",
		confirmForm("tok", "longenough1", "different1"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Passwords do not match!") {
		t.Errorf("body missing mismatch rule: %s", w.Body.String())
	}
}

func TestConfirmReset_InvalidToken_UniformMessage(t *testing.T) {
	uc := &fakeRecovery{
		confirmReset: func(_ context.Context, _, _, _, _ string) error {
			return domain.ErrTokenInvalid
		},
	}
	w := postForm(newTestEngine(uc), "/resetPassword",
		confirmForm("expired", "longenough1", "longenough1"))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid reset token or token has expired!") {
		t.Errorf("body missing uniform token message: %s", w.Body.String())
	}
}

func TestConfirmReset_InternalError_Generic(t *testing.T) {
	uc := &fakeRecovery{
		confirmReset: func(_ context.Context, _, _, _, _ string) error {
			return errors.New("pg: connection refused")
		},
	}
	w := postForm(newTestEngine(uc), "/resetPassword",
		confirmForm("tok", "longenough1", "longenough1"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "pg:") {
		t.Error("internal error leaked to the client")
	}
}
