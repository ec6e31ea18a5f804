package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smartcampus/portal/internal/middleware"
	"smartcampus/portal/internal/models"
	"smartcampus/portal/internal/service"
)

type cardResponse struct {
	ID             int              `json:"id"`
	NumCarte       string           `json:"numCarte"`
	Etat           models.CardState `json:"etat"`
	DateActivation *string          `json:"dateActivation,omitempty"`
	DateExpiration *string          `json:"dateExpiration,omitempty"`
}

type meResponse struct {
	User        models.User        `json:"user"`
	Card        *cardResponse      `json:"card,omitempty"`
	Initials    string             `json:"initials"`
	AvatarColor string             `json:"avatarColor"`
	Method      models.LoginMethod `json:"loginMethod"`
}

func (h HandlerSet) Me(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	user := session.User
	resp := meResponse{
		User:        user,
		Initials:    service.Initials(user.Firstname, user.Lastname),
		AvatarColor: service.AvatarColor(user.Firstname + " " + user.Lastname),
		Method:      session.Method,
	}
	if card := session.Card; card != nil {
		resp.Card = &cardResponse{
			ID:             card.ID,
			NumCarte:       service.MaskCardNumber(card.NumCarte),
			Etat:           card.Etat,
			DateActivation: card.DateActivation,
			DateExpiration: card.DateExpiration,
		}
	}

	c.JSON(http.StatusOK, resp)
}

type sessionResponse struct {
	ID         string             `json:"id"`
	DeviceID   string             `json:"deviceId"`
	DeviceName string             `json:"deviceName"`
	Method     models.LoginMethod `json:"loginMethod"`
	IPAddress  string             `json:"ipAddress"`
	UserAgent  string             `json:"userAgent"`
	LastSeenAt time.Time          `json:"lastSeenAt"`
	ExpiresAt  time.Time          `json:"expiresAt"`
	Current    bool               `json:"current"`
}

func (h HandlerSet) ListSessions(c *gin.Context) {
	current, ok := middleware.CurrentSession(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessions, err := h.sessions.Sessions(c.Request.Context(), current.UserID)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		resp = append(resp, sessionResponse{
			ID:         session.ID,
			DeviceID:   session.DeviceID,
			DeviceName: session.DeviceName,
			Method:     session.Method,
			IPAddress:  session.IPAddress,
			UserAgent:  session.UserAgent,
			LastSeenAt: session.LastSeenAt,
			ExpiresAt:  session.ExpiresAt,
			Current:    session.ID == current.ID,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": resp,
	})
}

func (h HandlerSet) RevokeSession(c *gin.Context) {
	current, ok := middleware.CurrentSession(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	deviceID := c.Param("deviceId")
	if err := h.sessions.Revoke(c.Request.Context(), current, deviceID); err != nil {
		if errors.Is(err, service.ErrRevokeCurrentDevice) {
			fail(c, http.StatusBadRequest, "cannot_revoke_current_device")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.Status(http.StatusNoContent)
}
