package handlers

import (
	"encoding/hex"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"smartcampus/portal/internal/middleware"
	"smartcampus/portal/internal/models"
	"smartcampus/portal/internal/security"
	"smartcampus/portal/internal/service"
)

const msgTooManyAttempts = "Trop de tentatives, réessayez plus tard"

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceID   string `json:"deviceId" binding:"max=128"`
	DeviceName string `json:"deviceName" binding:"max=128"`
}

type loginNFCRequest struct {
	Token      string `json:"token"`
	DeviceID   string `json:"deviceId" binding:"max=128"`
	DeviceName string `json:"deviceName" binding:"max=128"`
}

type loginResponse struct {
	Success      bool         `json:"success"`
	User         models.User  `json:"user"`
	Card         *models.Card `json:"card,omitempty"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	DeviceID     string       `json:"deviceId"`
	ExpiresAt    time.Time    `json:"expiresAt"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	key := "pwd:" + strings.ToLower(strings.TrimSpace(req.Email)) + "|" + c.ClientIP()
	if !h.allowAttempt(c, key) {
		return
	}

	result := h.auth.LoginWithCredentials(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	h.finishLogin(c, key, result, models.LoginMethodCredentials, req.DeviceID, req.DeviceName)
}

// LoginNFC exchanges a card token read by the client device.
func (h HandlerSet) LoginNFC(c *gin.Context) {
	var req loginNFCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	token := strings.TrimSpace(req.Token)
	key := "nfc:" + hex.EncodeToString(security.HashRefreshToken(token)[:8]) + "|" + c.ClientIP()
	if !h.allowAttempt(c, key) {
		return
	}

	result := h.auth.LoginWithCardToken(c.Request.Context(), token)
	h.finishLogin(c, key, result, models.LoginMethodNFC, req.DeviceID, req.DeviceName)
}

func (h HandlerSet) allowAttempt(c *gin.Context, key string) bool {
	ok, wait, err := h.throttle.Allow(c.Request.Context(), key)
	if err != nil {
		h.log.Warn().Err(err).Msg("login throttle unavailable")
		return true
	}
	if !ok {
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		fail(c, http.StatusTooManyRequests, msgTooManyAttempts)
		return false
	}
	return true
}

func (h HandlerSet) finishLogin(c *gin.Context, key string, result service.LoginResult, method models.LoginMethod, deviceID, deviceName string) {
	if !result.Success {
		status := http.StatusUnauthorized
		if result.Kind == service.FailureValidation {
			status = http.StatusBadRequest
		}
		fail(c, status, result.Error)
		return
	}
	if result.User == nil {
		h.log.Error().Str("method", string(method)).Msg("campus login succeeded without a user")
		fail(c, http.StatusBadGateway, "Erreur de connexion")
		return
	}

	if err := h.throttle.Reset(c.Request.Context(), key); err != nil {
		h.log.Debug().Err(err).Msg("reset login throttle failed")
	}

	tokens, err := h.sessions.Establish(c.Request.Context(), service.EstablishInput{
		User:       *result.User,
		Card:       result.Card,
		Method:     method,
		DeviceID:   deviceID,
		DeviceName: deviceName,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
	})
	if err != nil {
		h.log.Error().Err(err).Int("user_id", result.User.ID).Msg("create session failed")
		fail(c, http.StatusInternalServerError, "session_unavailable")
		return
	}

	sendTokens(c, tokens)
}

func (h HandlerSet) Register(c *gin.Context) {
	var form service.RegisterForm
	if err := c.ShouldBindJSON(&form); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	result := h.auth.Register(c.Request.Context(), form)
	switch {
	case result.Success:
		c.JSON(http.StatusCreated, result)
	case result.Kind == service.FailureValidation:
		c.JSON(http.StatusBadRequest, result)
	case result.Kind == service.FailureRejected:
		c.JSON(http.StatusUnprocessableEntity, result)
	default:
		c.JSON(http.StatusBadGateway, result)
	}
}

type refreshRequest struct {
	UserID       int    `json:"userId" binding:"required"`
	DeviceID     string `json:"deviceId" binding:"required"`
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (h HandlerSet) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.sessions.Refresh(c.Request.Context(), service.RefreshInput{
		UserID:       req.UserID,
		DeviceID:     req.DeviceID,
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		if isAuthError(err) {
			fail(c, http.StatusUnauthorized, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("refresh session failed")
		fail(c, http.StatusInternalServerError, "session_unavailable")
		return
	}

	sendTokens(c, tokens)
}

// Logout drops the session the bearer token belongs to.
func (h HandlerSet) Logout(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), session.UserID, session.DeviceID); err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.Status(http.StatusNoContent)
}

func sendTokens(c *gin.Context, tokens service.Tokens) {
	c.JSON(http.StatusOK, loginResponse{
		Success:      true,
		User:         tokens.User,
		Card:         tokens.Card,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		DeviceID:     tokens.DeviceID,
		ExpiresAt:    tokens.ExpiresAt,
	})
}

func isAuthError(err error) bool {
	return errors.Is(err, service.ErrUnauthorized) ||
		errors.Is(err, service.ErrSessionExpired) ||
		errors.Is(err, service.ErrDeviceMismatch)
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}
