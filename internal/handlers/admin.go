package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) AdminClasses(c *gin.Context) {
	items, err := h.reference.Classes(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.upstreamFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "classes": items, "total": len(items)})
}

func (h HandlerSet) AdminFilieres(c *gin.Context) {
	items, err := h.reference.Filieres(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.upstreamFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "filieres": items, "total": len(items)})
}

func (h HandlerSet) AdminMatieres(c *gin.Context) {
	items, err := h.reference.Matieres(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.upstreamFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "matieres": items, "total": len(items)})
}
