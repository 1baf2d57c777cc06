package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/campus-event-backend/middleware"
	"github.com/sharath018/campus-event-backend/utils"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// List godoc
// @Summary      List the caller's notifications
// @Tags         notifications
// @Produce      json
// @Param        unread query bool false "Unread only"
// @Success      200 {object} utils.Envelope
// @Security     BearerAuth
// @Router       /notifications [get]
func (h *Handler) List(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		utils.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	items, unread, err := h.svc.List(c.Request.Context(), user.ID, c.Query("unread") == "true", limit)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.Success(c, gin.H{"notifications": items, "unread": unread})
}

// MarkRead godoc
// @Summary      Mark one notification read
// @Tags         notifications
// @Param        id path int true "Notification ID"
// @Success      200 {object} utils.Envelope
// @Security     BearerAuth
// @Router       /notifications/{id}/read [put]
func (h *Handler) MarkRead(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		utils.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid notification id")
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), user.ID, uint(id)); err != nil {
		if errors.Is(err, ErrNotFound) {
			utils.Error(c, http.StatusNotFound, err.Error())
			return
		}
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.SuccessMessage(c, "Notification marked read", nil)
}

// MarkAllRead godoc
// @Summary      Mark all notifications read
// @Tags         notifications
// @Success      200 {object} utils.Envelope
// @Security     BearerAuth
// @Router       /notifications/read-all [put]
func (h *Handler) MarkAllRead(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		utils.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := h.svc.MarkAllRead(c.Request.Context(), user.ID); err != nil {
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.SuccessMessage(c, "All notifications marked read", nil)
}
