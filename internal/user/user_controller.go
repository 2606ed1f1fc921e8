package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JayPadhiyar-42/scorepact/internal/middleware"
	"github.com/JayPadhiyar-42/scorepact/pkg/responses"
)

// UserController handles user preference endpoints
type UserController struct {
	repo UserRepository
}

// NewUserController creates a new user controller
func NewUserController(repo UserRepository) *UserController {
	return &UserController{repo: repo}
}

// UpdatePreferencesRequest defines the payload for updating approval preferences
type UpdatePreferencesRequest struct {
	AutoApproveEnabled  *bool `json:"auto_approve_enabled" binding:"required"`
	TimeoutMinutes      int   `json:"timeout_minutes" binding:"required,min=1,max=60"`
	NotifyOnAutoApprove *bool `json:"notify_on_auto_approve" binding:"required"`
}

// GetApprovalPreferences returns the caller's approval preferences
func (uc *UserController) GetApprovalPreferences(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	u, err := uc.repo.GetByID(userID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}

	responses.SendSuccess(c, http.StatusOK, "", gin.H{
		"auto_approve_enabled":   u.AutoApproveEnabled,
		"timeout_minutes":        u.TimeoutMinutes,
		"notify_on_auto_approve": u.NotifyOnAutoApprove,
	})
}

// UpdateApprovalPreferences updates the caller's approval preferences
func (uc *UserController) UpdateApprovalPreferences(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}

	u, err := uc.repo.UpdatePreferences(userID, *req.AutoApproveEnabled, req.TimeoutMinutes, *req.NotifyOnAutoApprove)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Preferences updated successfully", gin.H{
		"auto_approve_enabled":   u.AutoApproveEnabled,
		"timeout_minutes":        u.TimeoutMinutes,
		"notify_on_auto_approve": u.NotifyOnAutoApprove,
	})
}
