package event

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/campus-event-backend/internal/auth"
	"github.com/sharath018/campus-event-backend/middleware"
	"github.com/sharath018/campus-event-backend/utils"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrFieldLocked), errors.Is(err, ErrFormLocked):
		return http.StatusConflict
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNeedReason), errors.Is(err, ErrBadApproval):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// CreateEvent godoc
// @Summary      Create an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request body CreateEventRequest true "Event details"
// @Success      201 {object} utils.Envelope
// @Security     BearerAuth
// @Router       /events [post]
func (h *Handler) CreateEvent(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		utils.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	e, err := h.svc.CreateEvent(c.Request.Context(), &user, req, middleware.GetIPFromContext(c))
	if err != nil {
		utils.Error(c, statusFor(err), err.Error())
		return
	}
	utils.Created(c, e)
}

// GetEvent godoc
// @Summary      Get one event
// @Tags         events
// @Produce      json
// @Param        id path int true "Event ID"
// @Success      200 {object} utils.Envelope
// @Router       /events/{id} [get]
func (h *Handler) GetEvent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid event id")
		return
	}

	var actor *auth.User
	if user, ok := middleware.GetUserFromContext(c); ok {
		actor = &user
	}

	e, err := h.svc.GetEvent(c.Request.Context(), actor, uint(id))
	if err != nil {
		utils.Error(c, statusFor(err), err.Error())
		return
	}
	utils.Success(c, e)
}

// UpdateEvent godoc
// @Summary      Update an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        id path int true "Event ID"
// @Param        request body UpdateEventRequest true "Fields to change"
// @Success      200 {object} utils.Envelope
// @Security     BearerAuth
// @Router       /events/{id} [put]
func (h *Handler) UpdateEvent(c *gin.Context) {
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

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	e, err := h.svc.UpdateEvent(c.Request.Context(), &user, uint(id), req, middleware.GetIPFromContext(c))
	if err != nil {
		utils.Error(c, statusFor(err), err.Error())
		return
	}
	utils.SuccessMessage(c, "Event updated", e)
}

// DeleteEvent godoc
// @Summary      Delete an event and its registrations
// @Tags         events
// @Param        id path int true "Event ID"
// @Success      200 {object} utils.Envelope
// @Security     BearerAuth
// @Router       /events/{id} [delete]
func (h *Handler) DeleteEvent(c *gin.Context) {
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

	if err := h.svc.DeleteEvent(c.Request.Context(), &user, uint(id), middleware.GetIPFromContext(c)); err != nil {
		utils.Error(c, statusFor(err), err.Error())
		return
	}
	utils.SuccessMessage(c, "Event deleted", nil)
}

// PublishEvent godoc
// @Summary      Submit a draft event for approval
// @Tags         events
// @Param        id path int true "Event ID"
// @Success      200 {object} utils.Envelope
// @Security     BearerAuth
// @Router       /events/{id}/publish [post]
func (h *Handler) PublishEvent(c *gin.Context) {
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

	e, err := h.svc.PublishEvent(c.Request.Context(), &user, uint(id), middleware.GetIPFromContext(c))
	if err != nil {
		utils.Error(c, statusFor(err), err.Error())
		return
	}
	utils.SuccessMessage(c, "Event submitted for review", e)
}

// ReviewEvent godoc
// @Summary      Approve or reject a pending event
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path int true "Event ID"
// @Param        request body ApproveEventRequest true "Review decision"
// @Success      200 {object} utils.Envelope
// @Security     BearerAuth
// @Router       /admin/events/{id}/review [put]
func (h *Handler) ReviewEvent(c *gin.Context) {
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

	var req ApproveEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	e, err := h.svc.ReviewEvent(c.Request.Context(), &user, uint(id), req, middleware.GetIPFromContext(c))
	if err != nil {
		utils.Error(c, statusFor(err), err.Error())
		return
	}
	utils.SuccessMessage(c, "Event "+req.Status, e)
}

// ListEvents godoc
// @Summary      List events with filters
// @Tags         events
// @Produce      json
// @Param        category query string false "Category"
// @Param        status query string false "Approval status (organizer/admin only)"
// @Param        search query string false "Substring or fuzzy search"
// @Param        trending query bool false "Top events of the last 24h"
// @Success      200 {object} utils.Envelope
// @Router       /events [get]
func (h *Handler) ListEvents(c *gin.Context) {
	var actor *auth.User
	if user, ok := middleware.GetUserFromContext(c); ok {
		actor = &user
	}

	q := ListQuery{
		Category:  c.Query("category"),
		Status:    strings.ToLower(c.Query("status")),
		Search:    c.Query("search"),
		Trending:  c.Query("trending") == "true",
		TeamsOnly: c.Query("teams") == "true",
		SortBy:    c.Query("sort_by"),
		Order:     c.Query("order"),
	}

	if clubs := c.Query("clubs"); clubs != "" {
		q.ClubNames = strings.Split(clubs, ",")
	}
	if raw := c.Query("organizer_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			oid := uint(id)
			q.Organizer = &oid
		}
	}
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			q.FromDate = &t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			q.ToDate = &t
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			q.Limit = n
		}
	}
	if raw := c.Query("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 1 {
			if q.Limit <= 0 {
				q.Limit = 20
			}
			q.Offset = (n - 1) * q.Limit
		}
	}

	events, total, err := h.svc.ListEvents(c.Request.Context(), actor, q)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.Success(c, gin.H{"events": events, "total": total})
}

// MyEvents godoc
// @Summary      List the calling organizer's events
// @Tags         events
// @Produce      json
// @Success      200 {object} utils.Envelope
// @Security     BearerAuth
// @Router       /events/mine [get]
func (h *Handler) MyEvents(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		utils.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	oid := user.ID
	q := ListQuery{
		Organizer: &oid,
		Status:    strings.ToLower(c.Query("status")),
		SortBy:    "created_at",
		Order:     "desc",
		Limit:     100,
	}

	events, total, err := h.svc.ListEvents(c.Request.Context(), &user, q)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.Success(c, gin.H{"events": events, "total": total})
}
