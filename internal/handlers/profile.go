package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartcampus/portal/internal/middleware"
	"smartcampus/portal/internal/models"
	"smartcampus/portal/internal/service"
)

type profileRequest struct {
	Firstname *string `json:"firstname" binding:"omitempty,min=1,max=100"`
	Lastname  *string `json:"lastname" binding:"omitempty,min=1,max=100"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Telephone *string `json:"telephone" binding:"omitempty,max=32"`
}

func (h HandlerSet) GetProfile(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.profiles.Get(c.Request.Context(), session.UserID)
	if err != nil {
		h.upstreamFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h HandlerSet) UpdateProfile(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.profiles.Update(c.Request.Context(), session.UserID, models.ProfileUpdate{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Telephone: req.Telephone,
	})
	if err != nil {
		h.upstreamFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// upstreamFailure maps campus API failures: a success=false answer is a 422,
// anything else a 502.
func (h HandlerSet) upstreamFailure(c *gin.Context, err error) {
	var rej *service.RejectedError
	if errors.As(err, &rej) {
		fail(c, http.StatusUnprocessableEntity, rej.Message)
		return
	}
	h.log.Warn().Err(err).Str("path", c.FullPath()).Msg("campus api call failed")
	fail(c, http.StatusBadGateway, err.Error())
}
