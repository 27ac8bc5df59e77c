package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/account-recovery/internal/domain"
	"github.com/gin-gonic/gin"
)

// recoveryUsecaser is the subset of RecoveryUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type recoveryUsecaser interface {
	RequestReset(ctx context.Context, email, clientIP string) error
	CheckToken(ctx context.Context, rawToken string) error
	ConfirmReset(ctx context.Context, rawToken, password, confirm, clientIP string) error
}

type RecoveryHandler struct {
	recovery recoveryUsecaser
	logger   *slog.Logger
}

func NewRecoveryHandler(recovery recoveryUsecaser, logger *slog.Logger) *RecoveryHandler {
	return &RecoveryHandler{
		recovery: recovery,
		logger:   logger.With("component", "recovery_handler"),
	}
}

// GET /forgot
func (h *RecoveryHandler) ForgotPage(c *gin.Context) {
	c.HTML(http.StatusOK, "forgot.html", gin.H{})
}

type requestResetForm struct {
	Email string `form:"email" binding:"required,email"`
}

// POST /requestResetPassword
// Guest-only and rate-limited. The response deliberately confirms whether
// the email is registered.
func (h *RecoveryHandler) RequestReset(c *gin.Context) {
	var form requestResetForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "forgot.html", gin.H{"Error": errInvalidEmail})
		return
	}

	err := h.recovery.RequestReset(c.Request.Context(), form.Email, c.ClientIP())
	switch {
	case err == nil:
		c.HTML(http.StatusOK, "success.html", gin.H{"Message": msgCheckEmail + form.Email})
	case errors.Is(err, domain.ErrThrottled):
		c.HTML(http.StatusTooManyRequests, "error.html", gin.H{"Error": errTooManyRequests})
	case errors.Is(err, domain.ErrAccountNotFound):
		c.HTML(http.StatusNotFound, "forgot.html", gin.H{"Error": errNoAccount})
	default:
		// Covers delivery failures too; the cause stays in the log.
		h.logger.Error("request reset", "error", err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": errUnexpected})
	}
}

// GET /resetPassword/:resetToken
// Validates the token before showing the password form.
func (h *RecoveryHandler) ResetPage(c *gin.Context) {
	rawToken := c.Param("resetToken")

	if err := h.recovery.CheckToken(c.Request.Context(), rawToken); err != nil {
		if !errors.Is(err, domain.ErrTokenInvalid) {
			h.logger.Error("check token", "error", err)
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": errUnexpected})
			return
		}
		c.HTML(http.StatusUnauthorized, "error.html", gin.H{"Error": errTokenNotValid})
		return
	}

	c.HTML(http.StatusOK, "reset_password.html", gin.H{"Token": rawToken})
}

type confirmResetForm struct {
	Token           string `form:"token" binding:"required"`
	Password        string `form:"password" binding:"required"`
	ConfirmPassword string `form:"confirmPassword" binding:"required"`
}

// POST /resetPassword
// Policy violations name the broken rule; every token problem maps to the
// one uniform message, re-displayed on the form with the token kept.
func (h *RecoveryHandler) ConfirmReset(c *gin.Context) {
	var form confirmResetForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "error.html", gin.H{"Error": errTokenInvalid})
		return
	}

	err := h.recovery.ConfirmReset(c.Request.Context(),
		form.Token, form.Password, form.ConfirmPassword, c.ClientIP())
	switch {
	case err == nil:
		c.HTML(http.StatusOK, "success.html", gin.H{"Message": msgResetComplete})
	case errors.Is(err, domain.ErrPasswordTooShort):
		c.HTML(http.StatusBadRequest, "reset_password.html", gin.H{
			"Token": form.Token, "Error": errPasswordShort,
		})
	case errors.Is(err, domain.ErrPasswordMismatch):
		c.HTML(http.StatusBadRequest, "reset_password.html", gin.H{
			"Token": form.Token, "Error": errPasswordsDiffer,
		})
	case errors.Is(err, domain.ErrTokenInvalid):
		c.HTML(http.StatusUnauthorized, "reset_password.html", gin.H{
			"Token": form.Token, "Error": errTokenInvalid,
		})
	default:
		h.logger.Error("confirm reset", "error", err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": errUnexpected})
	}
}
