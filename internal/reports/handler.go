package reports

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

func (h *Handler) respondFile(c *gin.Context, f *File) {
	c.Header("Content-Disposition", `attachment; filename="`+f.Name+`"`)
	c.Data(http.StatusOK, f.ContentType, f.Content)
}

// ExportRegistrations godoc
// @Summary      Export an event's registrations
// @Tags         reports
// @Produce      octet-stream
// @Param        id path int true "Event ID"
// @Param        format query string false "csv (default), xlsx or pdf"
// @Success      200 {file} binary
// @Security     BearerAuth
// @Router       /events/{id}/registrations/export [get]
func (h *Handler) ExportRegistrations(c *gin.Context) {
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

	f, err := h.svc.RegistrationsReport(c.Request.Context(), &user, uint(id), c.Query("format"))
	if err != nil {
		switch {
		case errors.Is(err, event.ErrNotFound):
			utils.Error(c, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrForbidden):
			utils.Error(c, http.StatusForbidden, err.Error())
		default:
			utils.Error(c, http.StatusBadRequest, err.Error())
		}
		return
	}
	h.respondFile(c, f)
}

// ExportEventsSummary godoc
// @Summary      Export the events summary
// @Tags         reports
// @Produce      octet-stream
// @Param        format query string false "csv (default), xlsx or pdf"
// @Success      200 {file} binary
// @Security     BearerAuth
// @Router       /admin/reports/events [get]
func (h *Handler) ExportEventsSummary(c *gin.Context) {
	f, err := h.svc.EventsSummaryReport(c.Request.Context(), c.Query("format"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	h.respondFile(c, f)
}
