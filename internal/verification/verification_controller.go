package verification

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/JayPadhiyar-42/scorepact/internal/middleware"
	"github.com/JayPadhiyar-42/scorepact/pkg/responses"
	"github.com/JayPadhiyar-42/scorepact/pkg/rmiddleware"
)

type VerificationController struct {
	service *Service
	db      *gorm.DB
}

func NewVerificationController(service *Service, db *gorm.DB) *VerificationController {
	return &VerificationController{service: service, db: db}
}

type SubmitScoreRequest struct {
	TeamARuns    int   `json:"team_a_runs" binding:"min=0"`
	TeamAWickets int   `json:"team_a_wickets" binding:"min=0,max=10"`
	TeamBRuns    int   `json:"team_b_runs" binding:"min=0"`
	TeamBWickets int   `json:"team_b_wickets" binding:"min=0,max=10"`
	WinnerTeamID *uint `json:"winner_team_id"`
}

type VerifyRequest struct {
	Agree  bool   `json:"agree"`
	Reason string `json:"reason"`
}

type ResolveDisputeRequest struct {
	TeamARuns    int   `json:"team_a_runs" binding:"min=0"`
	TeamAWickets int   `json:"team_a_wickets" binding:"min=0,max=10"`
	TeamBRuns    int   `json:"team_b_runs" binding:"min=0"`
	TeamBWickets int   `json:"team_b_wickets" binding:"min=0,max=10"`
	WinnerTeamID *uint `json:"winner_team_id"`
}

// SubmitScore godoc
// @Summary Submit a final score for opponent verification
// @Tags verifications
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Param body body SubmitScoreRequest true "Proposed final scores"
// @Success 201 {object} responses.Response
// @Router /matches/{id}/verifications [post]
func (vc *VerificationController) SubmitScore(c *gin.Context) {
	matchID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		responses.BadRequest(c, "invalid match id")
		return
	}
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	var req SubmitScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}

	scores := ProposedScores{
		TeamARuns:    req.TeamARuns,
		TeamAWickets: req.TeamAWickets,
		TeamBRuns:    req.TeamBRuns,
		TeamBWickets: req.TeamBWickets,
		WinnerTeamID: req.WinnerTeamID,
	}

	v, err := vc.service.Submit(uint(matchID), userID, scores)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, 201, "score submitted for verification", v)
}

// Verify godoc
// @Summary Agree with or dispute a submitted score
// @Tags verifications
// @Security BearerAuth
// @Param id path int true "Verification ID"
// @Param body body VerifyRequest true "Verification response"
// @Success 200 {object} responses.Response
// @Router /verifications/{id}/respond [post]
func (vc *VerificationController) Verify(c *gin.Context) {
	verificationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		responses.BadRequest(c, "invalid verification id")
		return
	}
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}

	v, err := vc.service.Verify(uint(verificationID), userID, req.Agree, req.Reason)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}

	msg := "score verified"
	if !req.Agree {
		msg = "score disputed"
	}
	responses.SendSuccess(c, 200, msg, v)
}

// ResolveDispute godoc
// @Summary Resolve a disputed score with an authoritative result
// @Tags verifications
// @Security BearerAuth
// @Param id path int true "Verification ID"
// @Param body body ResolveDisputeRequest true "Authoritative final scores"
// @Success 200 {object} responses.Response
// @Router /verifications/{id}/resolve [post]
func (vc *VerificationController) ResolveDispute(c *gin.Context) {
	verificationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		responses.BadRequest(c, "invalid verification id")
		return
	}
	adminID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}
	if !rmiddleware.IsAdmin(c, vc.db) {
		responses.Forbidden(c, "only admins can resolve disputes")
		return
	}

	var req ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}

	scores := ProposedScores{
		TeamARuns:    req.TeamARuns,
		TeamAWickets: req.TeamAWickets,
		TeamBRuns:    req.TeamBRuns,
		TeamBWickets: req.TeamBWickets,
		WinnerTeamID: req.WinnerTeamID,
	}

	v, err := vc.service.ResolveDispute(uint(verificationID), adminID, scores)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, 200, "dispute resolved", v)
}

// GetMatchVerifications godoc
// @Summary List score verifications for a match
// @Tags verifications
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Success 200 {object} responses.Response
// @Router /matches/{id}/verifications [get]
func (vc *VerificationController) GetMatchVerifications(c *gin.Context) {
	matchID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		responses.BadRequest(c, "invalid match id")
		return
	}

	var list []ScoreVerification
	if err := vc.db.Where("match_id = ?", matchID).Order("created_at DESC").Find(&list).Error; err != nil {
		responses.InternalServerError(c, "failed to fetch verifications")
		return
	}
	responses.SendSuccess(c, 200, "verifications fetched", list)
}
