package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartcampus/portal/internal/media/sniffer"
	"smartcampus/portal/internal/middleware"
	"smartcampus/portal/internal/service"
)

func (h HandlerSet) UploadAvatar(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	if limit := h.cfg.Storage.MaxAvatarSize; limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+(1<<16))
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "file_required")
		return
	}
	defer file.Close()

	user, err := h.profiles.UploadAvatar(c.Request.Context(), session.UserID, service.AvatarUpload{
		Data:         file,
		DeclaredType: sniffer.DeclaredType(http.Header(header.Header)),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAvatarTooLarge):
			fail(c, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrAvatarEmpty),
			errors.Is(err, service.ErrAvatarUnsupported),
			errors.Is(err, service.ErrAvatarMismatch):
			fail(c, http.StatusBadRequest, err.Error())
		default:
			h.log.Error().Err(err).Int("user_id", session.UserID).Msg("avatar upload failed")
			h.upstreamFailure(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
