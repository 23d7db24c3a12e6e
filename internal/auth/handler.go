package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"prism/internal/devices"
	"prism/internal/users"

	"github.com/gin-gonic/gin"
)

// Handler exposes the authentication HTTP API.
type Handler struct {
	service Service
	devices devices.Service
	log     *slog.Logger
}

// NewHandler creates an authentication handler.
func NewHandler(service Service, deviceSvc devices.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, devices: deviceSvc, log: log}
}

func deviceInfo(c *gin.Context) devices.Info {
	return devices.Info{
		DeviceName: c.GetHeader("X-Device-Name"),
		OS:         c.GetHeader("X-Device-OS"),
		Browser:    c.Request.UserAgent(),
		IPAddress:  c.ClientIP(),
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, users.ErrUsernameExists):
		c.JSON(http.StatusConflict, gin.H{"detail": "Username already taken"})
	case errors.Is(err, users.ErrEmailExists):
		c.JSON(http.StatusConflict, gin.H{"detail": "Email already registered"})
	case errors.Is(err, users.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
	case errors.Is(err, ErrInvalidCode):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid or expired code"})
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid email or password"})
	case errors.Is(err, ErrNotVerified):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Email not verified"})
	case errors.Is(err, ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Token expired"})
	case errors.Is(err, ErrTokenInvalid), errors.Is(err, ErrSessionRevoked):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token"})
	case errors.Is(err, devices.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Device session not found"})
	default:
		h.log.Error("auth request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	u, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"detail":  "Verification code sent",
		"user_id": u.ID,
	})
}

// VerifyOTP handles POST /auth/verify-otp.
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if err := h.service.VerifyRegistration(c.Request.Context(), req.Email, req.Code); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Email verified"})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	result, err := h.service.Login(c.Request.Context(), req, deviceInfo(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if result.TwoFactorRequired {
		c.JSON(http.StatusOK, gin.H{
			"detail":              "Verification code sent",
			"two_factor_required": true,
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Verify2FA handles POST /auth/verify-2fa.
func (h *Handler) Verify2FA(c *gin.Context) {
	var req Verify2FARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	result, err := h.service.Verify2FA(c.Request.Context(), req.Email, req.Code, deviceInfo(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Refresh handles POST /auth/refresh.
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// RequestPasswordReset handles POST /auth/password-reset.
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if err := h.service.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "If the email exists, a reset code was sent"})
}

// ConfirmPasswordReset handles POST /auth/password-reset/confirm.
func (h *Handler) ConfirmPasswordReset(c *gin.Context) {
	var req ResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if err := h.service.ConfirmPasswordReset(c.Request.Context(), req); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Password updated"})
}

// Logout handles POST /auth/logout for the current device session.
func (h *Handler) Logout(c *gin.Context) {
	token := c.GetHeader("X-Session-Token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
		return
	}

	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Logged out"})
}

// LogoutOthers handles POST /auth/logout-others. The current device
// session stays open; every other one is closed.
func (h *Handler) LogoutOthers(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	token := c.GetHeader("X-Session-Token")
	if userID == "" || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
		return
	}

	closed, err := h.service.LogoutOthers(c.Request.Context(), userID, token)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Logged out other devices", "closed": closed})
}

// ListDevices handles GET /auth/devices.
func (h *Handler) ListDevices(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
		return
	}

	list, err := h.devices.List(c.Request.Context(), userID, c.GetHeader("X-Session-Token"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if list == nil {
		list = []devices.Device{}
	}
	c.JSON(http.StatusOK, gin.H{"devices": list})
}

// LogoutDevice handles DELETE /auth/devices/:device_id.
func (h *Handler) LogoutDevice(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
		return
	}

	deviceID, err := strconv.ParseInt(c.Param("device_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid device id"})
		return
	}

	if err := h.devices.Logout(c.Request.Context(), userID, deviceID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Device logged out"})
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
