package scoring

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/JayPadhiyar-42/scorepact/internal/match"
	"github.com/JayPadhiyar-42/scorepact/internal/middleware"
	"github.com/JayPadhiyar-42/scorepact/internal/team"
	"github.com/JayPadhiyar-42/scorepact/pkg/apperr"
	"github.com/JayPadhiyar-42/scorepact/pkg/responses"
	"github.com/JayPadhiyar-42/scorepact/pkg/rmiddleware"
)

type ScoringController struct {
	db         *gorm.DB
	balls      BallRepository
	aggregator *Aggregator
	teams      team.TeamRepository
}

func NewScoringController(db *gorm.DB, balls BallRepository, aggregator *Aggregator, teams team.TeamRepository) *ScoringController {
	return &ScoringController{db: db, balls: balls, aggregator: aggregator, teams: teams}
}

type RecordBallRequest struct {
	Innings    int    `json:"innings" binding:"required,min=1,max=2"`
	Over       int    `json:"over" binding:"required,min=1"`
	Ball       int    `json:"ball" binding:"required,min=1"`
	StrikerID  uint   `json:"striker_id" binding:"required"`
	BowlerID   uint   `json:"bowler_id" binding:"required"`
	FielderID  *uint  `json:"fielder_id"`
	Runs       int    `json:"runs" binding:"min=0,max=7"`
	IsWide     bool   `json:"is_wide"`
	IsNoBall   bool   `json:"is_no_ball"`
	IsWicket   bool   `json:"is_wicket"`
	WicketType string `json:"wicket_type" binding:"omitempty,oneof=caught bowled run_out stumped other"`
}

// RecordBall godoc
// @Summary Append a ball event to a live match
// @Tags scoring
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Param body body RecordBallRequest true "Ball event"
// @Success 201 {object} responses.Response
// @Router /matches/{id}/balls [post]
func (sc *ScoringController) RecordBall(c *gin.Context) {
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

	var req RecordBallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}

	if err := sc.requireParticipantCaptain(uint(matchID), userID); err != nil {
		responses.SendAppError(c, err)
		return
	}

	event := &BallEvent{
		MatchID:    uint(matchID),
		Innings:    req.Innings,
		Over:       req.Over,
		Ball:       req.Ball,
		StrikerID:  req.StrikerID,
		BowlerID:   req.BowlerID,
		FielderID:  req.FielderID,
		Runs:       req.Runs,
		IsWide:     req.IsWide,
		IsNoBall:   req.IsNoBall,
		IsWicket:   req.IsWicket,
		WicketType: WicketType(req.WicketType),
	}
	if err := sc.balls.Append(event, userID); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, 201, "ball recorded", event)
}

// UndoLastBall godoc
// @Summary Undo the most recently recorded ball for a match
// @Tags scoring
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Success 200 {object} responses.Response
// @Router /matches/{id}/balls/last [delete]
func (sc *ScoringController) UndoLastBall(c *gin.Context) {
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

	if err := sc.requireParticipantCaptain(uint(matchID), userID); err != nil {
		responses.SendAppError(c, err)
		return
	}

	event, err := sc.balls.UndoLast(uint(matchID), userID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, 200, "ball undone", event)
}

// GetBalls godoc
// @Summary List all ball events for a match in order
// @Tags scoring
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Success 200 {object} responses.Response
// @Router /matches/{id}/balls [get]
func (sc *ScoringController) GetBalls(c *gin.Context) {
	matchID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		responses.BadRequest(c, "invalid match id")
		return
	}
	events, err := sc.balls.ListByMatch(uint(matchID))
	if err != nil {
		responses.InternalServerError(c, "failed to fetch ball events")
		return
	}
	responses.SendSuccess(c, 200, "ball events fetched", events)
}

// GetStats godoc
// @Summary Fetch aggregated per-player statistics for a match
// @Tags scoring
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Success 200 {object} responses.Response
// @Router /matches/{id}/stats [get]
func (sc *ScoringController) GetStats(c *gin.Context) {
	matchID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		responses.BadRequest(c, "invalid match id")
		return
	}

	var stats []PlayerStat
	if err := sc.db.Where("match_id = ?", matchID).Order("player_id ASC").Find(&stats).Error; err != nil {
		responses.InternalServerError(c, "failed to fetch stats")
		return
	}
	responses.SendSuccess(c, 200, "stats fetched", stats)
}

// RecomputeStats godoc
// @Summary Recompute per-player statistics from the ball-event stream
// @Tags scoring
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Success 200 {object} responses.Response
// @Router /matches/{id}/stats/recompute [post]
func (sc *ScoringController) RecomputeStats(c *gin.Context) {
	matchID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		responses.BadRequest(c, "invalid match id")
		return
	}
	if !rmiddleware.IsAdmin(c, sc.db) {
		responses.Forbidden(c, "only admins can force a stats recompute")
		return
	}

	if err := sc.aggregator.Aggregate(uint(matchID)); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, 200, "stats recomputed", nil)
}

// requireParticipantCaptain checks the user captains one of the two teams
// in the match.
func (sc *ScoringController) requireParticipantCaptain(matchID, userID uint) error {
	var m match.Match
	if err := sc.db.First(&m, matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Wrap(apperr.ErrNotFound, "match not found")
		}
		return err
	}
	for _, teamID := range []uint{m.TeamAID, m.TeamBID} {
		isCaptain, err := sc.teams.IsCaptain(teamID, userID)
		if err != nil {
			return err
		}
		if isCaptain {
			return nil
		}
	}
	return apperr.Wrap(apperr.ErrForbidden, "only a captain of a participating team can record balls")
}
