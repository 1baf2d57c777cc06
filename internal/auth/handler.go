package auth

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/campus-event-backend/utils"
)

type Handler struct{ service Service }

func NewHandler(s Service) *Handler { return &Handler{s} }

// ===============================
// Registration (participants)
// ===============================

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.Register(req)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	utils.Created(c, ToUserResponse(user))
}

// ===============================
// Login / Refresh
// ===============================

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	tokens, user, err := h.service.Login(req)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, err.Error())
		return
	}

	utils.Success(c, gin.H{
		"tokens": tokens,
		"user":   ToUserResponse(user),
	})
}

func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, err := h.service.Refresh(req.RefreshToken)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, err.Error())
		return
	}

	utils.Success(c, gin.H{"accessToken": accessToken})
}

func (h *Handler) Me(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Error(c, http.StatusUnauthorized, "unauthenticated")
		return
	}
	user, ok := userVal.(User)
	if !ok {
		utils.Error(c, http.StatusUnauthorized, "invalid user object")
		return
	}
	utils.Success(c, ToUserResponse(&user))
}

// ===============================
// Admin: organizer provisioning
// ===============================

func (h *Handler) ProvisionOrganizer(c *gin.Context) {
	var req ProvisionOrganizerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.ProvisionOrganizer(req)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	// Credentials are delivered by mail; the response only confirms the account.
	utils.Created(c, ToUserResponse(user))
}

func (h *Handler) ListOrganizers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	users, total, err := h.service.ListUsersByRole(RoleOrganizer, limit, (page-1)*limit)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}

	utils.Success(c, gin.H{"organizers": responses, "total": total, "page": page})
}

func (h *Handler) UpdateUserStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid user id")
		return
	}

	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.SetUserActive(uint(id), *req.Active); err != nil {
		utils.Error(c, http.StatusNotFound, err.Error())
		return
	}

	utils.SuccessMessage(c, "user status updated", nil)
}
