package auth

import (
	"log/slog"

	"prism/internal/devices"

	"github.com/gin-gonic/gin"
)

func SetupRouter(svc Service, deviceSvc devices.Service, log *slog.Logger) *gin.Engine {
	r := gin.Default()
	h := NewHandler(svc, deviceSvc, log)

	r.GET("/health", h.Health)

	a := r.Group("/auth")
	{
		a.POST("/register", h.Register)
		a.POST("/verify-otp", h.VerifyOTP)
		a.POST("/login", h.Login)
		a.POST("/verify-2fa", h.Verify2FA)
		a.POST("/refresh", h.Refresh)
		a.POST("/password-reset", h.RequestPasswordReset)
		a.POST("/password-reset/confirm", h.ConfirmPasswordReset)
		a.POST("/logout", h.Logout)
		a.POST("/logout-others", h.LogoutOthers)
		a.GET("/devices", h.ListDevices)
		a.DELETE("/devices/:device_id", h.LogoutDevice)
	}

	return r
}
