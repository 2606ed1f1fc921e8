package match

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JayPadhiyar-42/scorepact/internal/middleware"
	"github.com/JayPadhiyar-42/scorepact/internal/team"
	"github.com/JayPadhiyar-42/scorepact/pkg/responses"
)

// MatchController handles match read endpoints and creation by the
// scheduling side of the product.
type MatchController struct {
	repo     MatchRepository
	teamRepo team.TeamRepository
}

// NewMatchController creates a new match controller
func NewMatchController(repo MatchRepository, teamRepo team.TeamRepository) *MatchController {
	return &MatchController{repo: repo, teamRepo: teamRepo}
}

// CreateMatchRequest defines the request payload for scheduling a match
type CreateMatchRequest struct {
	TeamAID     uint      `json:"team_a_id" binding:"required"`
	TeamBID     uint      `json:"team_b_id" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

// MatchResponse wraps a match with its projected status.
type MatchResponse struct {
	Match           *Match      `json:"match"`
	EffectiveStatus MatchStatus `json:"effective_status"`
}

// CreateMatch schedules a match between two teams
func (mc *MatchController) CreateMatch(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	var req CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}

	if req.TeamAID == req.TeamBID {
		responses.BadRequest(c, "A match requires two distinct teams")
		return
	}
	for _, teamID := range []uint{req.TeamAID, req.TeamBID} {
		if _, err := mc.teamRepo.GetTeamByID(teamID); err != nil {
			responses.SendAppError(c, err)
			return
		}
	}

	m := Match{
		CreatedByUserID:      userID,
		TeamAID:              req.TeamAID,
		TeamBID:              req.TeamBID,
		ScheduledAt:          req.ScheduledAt,
		Status:               StatusScheduled,
		FinalScoreApprovedBy: ApproverSet{},
	}
	if err := mc.repo.CreateMatch(&m); err != nil {
		responses.InternalServerError(c, "Failed to create match: "+err.Error())
		return
	}

	responses.SendSuccess(c, http.StatusCreated, "Match scheduled successfully", gin.H{"match": m})
}

// GetMatchByID returns a match with its projected pending status
func (mc *MatchController) GetMatchByID(c *gin.Context) {
	matchID, ok := parseMatchID(c)
	if !ok {
		return
	}

	m, err := mc.repo.GetMatchByID(matchID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}

	responses.SendSuccess(c, http.StatusOK, "", mc.withProjection(m))
}

// GetMatches lists matches, optionally filtered by status
func (mc *MatchController) GetMatches(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	filters := map[string]interface{}{}
	if status := c.Query("status"); status != "" {
		filters["status = ?"] = status
	}

	matches, total, err := mc.repo.GetMatches(filters, page, pageSize)
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch matches")
		return
	}

	out := make([]MatchResponse, 0, len(matches))
	for i := range matches {
		out = append(out, mc.withProjection(&matches[i]))
	}
	responses.SendPaginated(c, http.StatusOK, "", out, total, page, pageSize)
}

func (mc *MatchController) withProjection(m *Match) MatchResponse {
	pending, err := mc.repo.PendingTransitions(m.ID)
	if err != nil {
		// Projection is presentation sugar; fall back to the stored status.
		log.Printf("match: pending-transition projection failed for match %d: %v", m.ID, err)
		pending = nil
	}
	return MatchResponse{Match: m, EffectiveStatus: EffectiveStatus(m, pending)}
}

func parseMatchID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		responses.BadRequest(c, "Invalid id parameter")
		return 0, false
	}
	return uint(id), true
}
