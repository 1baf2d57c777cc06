package stats

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/campus-event-backend/internal/event"
	"github.com/sharath018/campus-event-backend/middleware"
	"github.com/sharath018/campus-event-backend/utils"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Dashboard godoc
// @Summary      Admin dashboard overview
// @Tags         stats
// @Produce      json
// @Success      200 {object} utils.Envelope
// @Security     BearerAuth
// @Router       /admin/stats [get]
func (h *Handler) Dashboard(c *gin.Context) {
	dashboard, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.Success(c, dashboard)
}

// EventStats godoc
// @Summary      Per-event registration statistics
// @Tags         stats
// @Produce      json
// @Param        id path int true "Event ID"
// @Success      200 {object} utils.Envelope
// @Security     BearerAuth
// @Router       /events/{id}/stats [get]
func (h *Handler) EventStats(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		utils.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid event id")
		return
	}

	out, err := h.svc.EventStats(c.Request.Context(), &user, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, event.ErrNotFound):
			utils.Error(c, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrForbidden):
			utils.Error(c, http.StatusForbidden, err.Error())
		default:
			utils.Error(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	utils.Success(c, out)
}

// RecentActivity godoc
// @Summary      Newest users and events
// @Tags         stats
// @Produce      json
// @Param        limit query int false "Row limit"
// @Success      200 {object} utils.Envelope
// @Security     BearerAuth
// @Router       /admin/stats/recent [get]
func (h *Handler) RecentActivity(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	out, err := h.svc.RecentActivity(c.Request.Context(), limit)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.Success(c, out)
}
