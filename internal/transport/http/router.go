package httptransport

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/account-recovery/internal/transport/http/handler"
	"github.com/ErlanBelekov/account-recovery/internal/transport/http/middleware"
	"github.com/ErlanBelekov/account-recovery/web"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, recoveryHandler *handler.RecoveryHandler, jwtKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.SetHTMLTemplate(template.Must(template.ParseFS(web.Templates, "templates/*.html")))

	guest := middleware.Guest(jwtKey)

	r.GET("/forgot", recoveryHandler.ForgotPage)
	r.POST("/requestResetPassword", guest, recoveryHandler.RequestReset)
	r.GET("/resetPassword/:resetToken", recoveryHandler.ResetPage)
	r.POST("/resetPassword", guest, recoveryHandler.ConfirmReset)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "up"})
	})

	return r
}
