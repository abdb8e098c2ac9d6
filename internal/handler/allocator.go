package handler

import (
	"net/http"

	"github.com/dompetkeluarga/backend/internal/service"
	"github.com/gin-gonic/gin"
)

func (h *Handler) allocatorState(c *gin.Context) {
	st, err := h.allocator.State(userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":          st,
		"totalAllocated": st.TotalAllocated(),
		"remaining":      st.Remaining(),
	})
}

func (h *Handler) saveAllocatorState(c *gin.Context) {
	var st service.AllocatorState
	if err := c.ShouldBindJSON(&st); err != nil {
		badRequest(c, err)
		return
	}
	saved, err := h.allocator.SaveState(userID(c), st)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) resetAllocatorState(c *gin.Context) {
	if err := h.allocator.ResetState(userID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) allocatorTemplates(c *gin.Context) {
	templates, err := h.allocator.Templates(userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if templates == nil {
		templates = []service.AllocatorTemplate{}
	}
	c.JSON(http.StatusOK, templates)
}

func (h *Handler) saveAllocatorTemplate(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tpl, err := h.allocator.SaveTemplate(userID(c), req.Name)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

func (h *Handler) deleteAllocatorTemplate(c *gin.Context) {
	if err := h.allocator.DeleteTemplate(userID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) loadAllocatorTemplate(c *gin.Context) {
	st, err := h.allocator.LoadTemplate(userID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) applyAllocatorBudget(c *gin.Context) {
	applied, err := h.allocator.ApplyToBudget(c.Request.Context(), userID(c))
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}
