package team

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JayPadhiyar-42/scorepact/internal/middleware"
	"github.com/JayPadhiyar-42/scorepact/pkg/responses"
)

// TeamController handles the minimal team surface this service owns.
type TeamController struct {
	repo TeamRepository
}

// NewTeamController creates a new team controller
func NewTeamController(repo TeamRepository) *TeamController {
	return &TeamController{repo: repo}
}

// CreateTeamRequest defines the payload for creating a team
type CreateTeamRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"max=2000"`
}

// AddMemberRequest defines the payload for adding a team member
type AddMemberRequest struct {
	UserID    uint   `json:"user_id" binding:"required"`
	Role      string `json:"role" binding:"omitempty,oneof=player captain vice_captain"`
	IsCaptain bool   `json:"is_captain"`
}

// CreateTeam creates a team with the caller as captain
func (tc *TeamController) CreateTeam(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}

	t := Team{
		Name:        req.Name,
		Description: req.Description,
		CreatedByID: userID,
	}
	if err := tc.repo.CreateTeam(&t); err != nil {
		responses.InternalServerError(c, "Failed to create team: "+err.Error())
		return
	}

	member := TeamMember{
		TeamID:    t.ID,
		UserID:    userID,
		Role:      "captain",
		IsCaptain: true,
		IsActive:  true,
		JoinedAt:  time.Now(),
	}
	if err := tc.repo.AddMember(&member); err != nil {
		responses.InternalServerError(c, "Failed to add captain: "+err.Error())
		return
	}

	responses.SendSuccess(c, http.StatusCreated, "Team created successfully", gin.H{"team": t})
}

// AddMember adds a member to a team; only the captain may do this
func (tc *TeamController) AddMember(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	teamID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	isCaptain, err := tc.repo.IsCaptain(teamID, userID)
	if err != nil {
		responses.InternalServerError(c, "Failed to check captaincy")
		return
	}
	if !isCaptain {
		responses.Forbidden(c, "Only the team captain can add members")
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}

	role := req.Role
	if role == "" {
		role = "player"
	}
	member := TeamMember{
		TeamID:    teamID,
		UserID:    req.UserID,
		Role:      role,
		IsCaptain: req.IsCaptain || role == "captain",
		IsActive:  true,
		JoinedAt:  time.Now(),
	}
	if err := tc.repo.AddMember(&member); err != nil {
		responses.InternalServerError(c, "Failed to add member: "+err.Error())
		return
	}

	responses.SendSuccess(c, http.StatusCreated, "Member added successfully", gin.H{"member": member})
}

// GetTeam returns a team by ID
func (tc *TeamController) GetTeam(c *gin.Context) {
	teamID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	t, err := tc.repo.GetTeamByID(teamID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", gin.H{"team": t})
}
