package approval

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/JayPadhiyar-42/scorepact/internal/match"
	"github.com/JayPadhiyar-42/scorepact/internal/middleware"
	"github.com/JayPadhiyar-42/scorepact/pkg/responses"
	"github.com/JayPadhiyar-42/scorepact/pkg/rmiddleware"
)

// ApprovalController handles approval request endpoints
type ApprovalController struct {
	svc *Service
	db  *gorm.DB
}

// NewApprovalController creates a new approval controller
func NewApprovalController(svc *Service, db *gorm.DB) *ApprovalController {
	return &ApprovalController{svc: svc, db: db}
}

// RequestTransitionRequest defines the payload for requesting a transition
type RequestTransitionRequest struct {
	Type match.TransitionType `json:"type" binding:"required,oneof=start_scoring start_second_innings final_score"`
}

// RespondRequest defines the payload for resolving an approval request
type RespondRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

// RequestTransition opens an approval request for a lifecycle transition
func (ac *ApprovalController) RequestTransition(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	matchID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RequestTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}

	request, err := ac.svc.Create(matchID, req.Type, userID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}

	responses.SendSuccess(c, http.StatusCreated, "Approval requested", gin.H{"request": request})
}

// Respond resolves a pending approval request
func (ac *ApprovalController) Respond(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}

	isAdmin := rmiddleware.IsAdmin(c, ac.db)
	request, err := ac.svc.Respond(requestID, userID, *req.Approve, isAdmin)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}

	message := "Approval request rejected"
	if *req.Approve {
		message = "Approval request approved"
	}
	responses.SendSuccess(c, http.StatusOK, message, gin.H{"request": request})
}

// GetMatchApprovals lists approval requests for a match
func (ac *ApprovalController) GetMatchApprovals(c *gin.Context) {
	matchID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var requests []ApprovalRequest
	err := ac.db.Where("match_id = ?", matchID).Order("created_at desc").Find(&requests).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		responses.InternalServerError(c, "Failed to fetch approval requests")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "", gin.H{"requests": requests})
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		responses.BadRequest(c, "Invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}
