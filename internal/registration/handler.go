package registration

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

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrVariantNotFound), errors.Is(err, event.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNotEligible):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyRegistered):
		return http.StatusConflict
	case errors.Is(err, ErrNotApproved), errors.Is(err, ErrDeadlinePassed),
		errors.Is(err, ErrFull), errors.Is(err, ErrOutOfStock),
		errors.Is(err, ErrPurchaseLimit), errors.Is(err, ErrTeamMismatch),
		errors.Is(err, ErrMerchIndividual), errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrEventOver), errors.Is(err, ErrBadStatus),
		errors.Is(err, ErrBadPayment), errors.Is(err, ErrNotConfirmed),
		errors.Is(err, ErrAlreadyCheckedIn), errors.Is(err, ErrMissingField):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Register godoc
// @Summary      Register for an event
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration details"
// @Success      201 {object} utils.Envelope
// @Security     BearerAuth
// @Router       /registrations [post]
func (h *Handler) Register(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		utils.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	reg, err := h.svc.Register(c.Request.Context(), &user, req, middleware.GetIPFromContext(c))
	if err != nil {
		utils.Error(c, statusFor(err), err.Error())
		return
	}
	utils.Created(c, reg)
}

// GetRegistration godoc
// @Summary      Get one registration
// @Tags         registrations
// @Produce      json
// @Param        id path int true "Registration ID"
// @Success      200 {object} utils.Envelope
// @Security     BearerAuth
// @Router       /registrations/{id} [get]
func (h *Handler) GetRegistration(c *gin.Context) {
	h.withRegistration(c, func(c *gin.Context, id uint) (*Registration, error) {
		user, _ := middleware.GetUserFromContext(c)
		return h.svc.GetRegistration(c.Request.Context(), &user, id)
	})
}

// withRegistration factors the id-parse / call / respond shape shared
// by the single-registration endpoints.
func (h *Handler) withRegistration(c *gin.Context, fn func(*gin.Context, uint) (*Registration, error)) {
	if _, ok := middleware.GetUserFromContext(c); !ok {
		utils.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid registration id")
		return
	}
	reg, err := fn(c, uint(id))
	if err != nil {
		utils.Error(c, statusFor(err), err.Error())
		return
	}
	utils.Success(c, reg)
}

// Cancel godoc
// @Summary      Cancel own registration
// @Tags         registrations
// @Param        id path int true "Registration ID"
// @Success      200 {object} utils.Envelope
// @Security     BearerAuth
// @Router       /registrations/{id}/cancel [put]
func (h *Handler) Cancel(c *gin.Context) {
	h.withRegistration(c, func(c *gin.Context, id uint) (*Registration, error) {
		user, _ := middleware.GetUserFromContext(c)
		return h.svc.Cancel(c.Request.Context(), &user, id, middleware.GetIPFromContext(c))
	})
}

// UpdateStatus godoc
// @Summary      Update registration status
// @Tags         registrations
// @Accept       json
// @Param        id path int true "Registration ID"
// @Param        request body UpdateStatusRequest true "New status"
// @Success      200 {object} utils.Envelope
// @Security     BearerAuth
// @Router       /registrations/{id}/status [put]
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	h.withRegistration(c, func(c *gin.Context, id uint) (*Registration, error) {
		user, _ := middleware.GetUserFromContext(c)
		return h.svc.UpdateStatus(c.Request.Context(), &user, id, req.Status, middleware.GetIPFromContext(c))
	})
}

// UpdatePayment godoc
// @Summary      Update payment status
// @Tags         registrations
// @Accept       json
// @Param        id path int true "Registration ID"
// @Param        request body UpdatePaymentRequest true "Payment update"
// @Success      200 {object} utils.Envelope
// @Security     BearerAuth
// @Router       /registrations/{id}/payment [put]
func (h *Handler) UpdatePayment(c *gin.Context) {
	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	h.withRegistration(c, func(c *gin.Context, id uint) (*Registration, error) {
		user, _ := middleware.GetUserFromContext(c)
		return h.svc.UpdatePayment(c.Request.Context(), &user, id, req, middleware.GetIPFromContext(c))
	})
}

// CheckIn godoc
// @Summary      Check a participant in
// @Tags         registrations
// @Param        id path int true "Registration ID"
// @Success      200 {object} utils.Envelope
// @Security     BearerAuth
// @Router       /registrations/{id}/checkin [put]
func (h *Handler) CheckIn(c *gin.Context) {
	h.withRegistration(c, func(c *gin.Context, id uint) (*Registration, error) {
		user, _ := middleware.GetUserFromContext(c)
		return h.svc.CheckIn(c.Request.Context(), &user, id, middleware.GetIPFromContext(c))
	})
}

// ListByEvent godoc
// @Summary      List an event's registrations
// @Tags         registrations
// @Produce      json
// @Param        id path int true "Event ID"
// @Param        status query string false "Registration status"
// @Param        payment_status query string false "Payment status"
// @Param        checked_in query bool false "Check-in filter"
// @Success      200 {object} utils.Envelope
// @Security     BearerAuth
// @Router       /events/{id}/registrations [get]
func (h *Handler) ListByEvent(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		utils.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid event id")
		return
	}

	q := ListQuery{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		Search:        c.Query("search"),
	}
	if raw := c.Query("checked_in"); raw != "" {
		v := raw == "true"
		q.CheckedIn = &v
	}
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			q.Limit = n
		}
	}
	if raw := c.Query("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 1 {
			if q.Limit <= 0 {
				q.Limit = 50
			}
			q.Offset = (n - 1) * q.Limit
		}
	}

	regs, total, err := h.svc.ListByEvent(c.Request.Context(), &user, uint(eventID), q)
	if err != nil {
		utils.Error(c, statusFor(err), err.Error())
		return
	}
	utils.Success(c, gin.H{"registrations": regs, "total": total})
}

// MyRegistrations godoc
// @Summary      List the caller's registrations
// @Tags         registrations
// @Produce      json
// @Success      200 {object} utils.Envelope
// @Security     BearerAuth
// @Router       /registrations/mine [get]
func (h *Handler) MyRegistrations(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		utils.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	regs, err := h.svc.MyRegistrations(c.Request.Context(), &user)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.Success(c, regs)
}
