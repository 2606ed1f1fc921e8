package verification

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/JayPadhiyar-42/scorepact/internal/audit"
	"github.com/JayPadhiyar-42/scorepact/internal/match"
	"github.com/JayPadhiyar-42/scorepact/internal/models"
	"github.com/JayPadhiyar-42/scorepact/internal/notification"
	"github.com/JayPadhiyar-42/scorepact/internal/team"
	"github.com/JayPadhiyar-42/scorepact/pkg/apperr"
)

// StatsRecomputer triggers a best-effort stats recomputation after a match
// completes through the verification path.
type StatsRecomputer interface {
	Recompute(matchID uint) error
}

// Service owns the score-specific consensus path: submit, verify or dispute,
// and administrative dispute resolution.
type Service struct {
	db        *gorm.DB
	auditRepo audit.Recorder
	notifier  notification.Notifier
	stats     StatsRecomputer
	now       func() time.Time
}

// NewService creates a verification service.
func NewService(db *gorm.DB, auditRepo audit.Recorder, notifier notification.Notifier, stats StatsRecomputer) *Service {
	return &Service{
		db:        db,
		auditRepo: auditRepo,
		notifier:  notifier,
		stats:     stats,
		now:       time.Now,
	}
}

// Submit records one captain's final-score claim. Prior pending
// verifications are cancelled, the match's cached score fields are updated
// without touching its lifecycle status, and the submitter becomes the first
// entry of a fresh approver set: submission is implicit self-approval, so
// consensus starts at one of two, never zero.
func (s *Service) Submit(matchID, submitterID uint, scores ProposedScores) (*ScoreVerification, error) {
	var v *ScoreVerification
	var opponentCaptainID uint

	err := s.db.Transaction(func(tx *gorm.DB) error {
		m, err := loadMatch(tx, matchID)
		if err != nil {
			return err
		}

		submitterTeam, err := captainedParticipant(tx, m, submitterID)
		if err != nil {
			return err
		}
		if submitterTeam == 0 {
			return apperr.Wrap(apperr.ErrForbidden, "submitter is not a captain of either participating team")
		}

		if err := scores.Validate(m); err != nil {
			return err
		}

		opponent, err := teamCaptain(tx, m.OpponentTeamID(submitterTeam))
		if err != nil {
			return err
		}
		opponentCaptainID = opponent.UserID

		now := s.now()
		err = tx.Model(&ScoreVerification{}).
			Where("match_id = ? AND status = ?", matchID, StatusPending).
			Updates(map[string]interface{}{"status": StatusCancelled, "resolved_at": now}).Error
		if err != nil {
			return err
		}

		v = &ScoreVerification{
			MatchID:      matchID,
			SubmitterID:  submitterID,
			TeamARuns:    scores.TeamARuns,
			TeamAWickets: scores.TeamAWickets,
			TeamBRuns:    scores.TeamBRuns,
			TeamBWickets: scores.TeamBWickets,
			WinnerTeamID: scores.WinnerTeamID,
			Status:       StatusPending,
		}
		if err := tx.Create(v).Error; err != nil {
			return err
		}

		// Cache the claimed scores on the match; status stays untouched so a
		// live match keeps scoring while verification is in flight. A new
		// claim proposes new numbers, so the approver set restarts at the
		// submitter alone.
		m.TeamARuns = scores.TeamARuns
		m.TeamAWickets = scores.TeamAWickets
		m.TeamBRuns = scores.TeamBRuns
		m.TeamBWickets = scores.TeamBWickets
		m.FinalScoreApprovedBy = match.ApproverSet{submitterID}
		if err := tx.Save(m).Error; err != nil {
			return err
		}

		return s.auditRepo.Append(tx, &audit.Entry{
			MatchID: &matchID,
			Action:  audit.ActionScoreSubmitted,
			ActorID: submitterID,
			NewState: models.JSONMap{
				"verification_id": v.ID,
				"team_a":          fmt.Sprintf("%d/%d", scores.TeamARuns, scores.TeamAWickets),
				"team_b":          fmt.Sprintf("%d/%d", scores.TeamBRuns, scores.TeamBWickets),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(opponentCaptainID, "score_submitted",
		fmt.Sprintf("A final score was submitted for match %d and awaits your verification", matchID))
	return v, nil
}

// Verify records the opposing captain's agreement or dispute. Agreement
// behaves exactly like a final-score approval: the responder joins the
// approver set and two approvers complete the match. A dispute requires a
// reason and defers resolution to an admin; the match state is untouched.
func (s *Service) Verify(verificationID, responderID uint, agree bool, disputeReason string) (*ScoreVerification, error) {
	var v ScoreVerification
	var completed bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&v, verificationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Wrap(apperr.ErrNotFound, "score verification not found")
			}
			return err
		}
		if v.Status != StatusPending {
			return apperr.Wrap(apperr.ErrConflict, "score verification is already resolved")
		}

		m, err := loadMatch(tx, v.MatchID)
		if err != nil {
			return err
		}

		if err := validateResponder(tx, m, v.SubmitterID, responderID); err != nil {
			return err
		}

		now := s.now()
		if !agree {
			if len(strings.TrimSpace(disputeReason)) < MinDisputeReasonLen {
				return apperr.Wrapf(apperr.ErrValidation, "dispute reason must be at least %d characters", MinDisputeReasonLen)
			}
			if err := markStatus(tx, v.ID, StatusPending, StatusDisputed, responderID, now, disputeReason); err != nil {
				return err
			}
			v.Status = StatusDisputed
			v.DisputeReason = disputeReason
			v.ResolvedByID = &responderID
			v.ResolvedAt = &now

			return s.auditRepo.Append(tx, &audit.Entry{
				MatchID: &v.MatchID,
				Action:  audit.ActionScoreDisputed,
				ActorID: responderID,
				NewState: models.JSONMap{
					"verification_id": v.ID,
					"reason":          disputeReason,
				},
			})
		}

		if err := markStatus(tx, v.ID, StatusPending, StatusVerified, responderID, now, ""); err != nil {
			return err
		}
		v.Status = StatusVerified
		v.ResolvedByID = &responderID
		v.ResolvedAt = &now

		if err := s.auditRepo.Append(tx, &audit.Entry{
			MatchID: &v.MatchID,
			Action:  audit.ActionScoreVerified,
			ActorID: responderID,
			NewState: models.JSONMap{"verification_id": v.ID},
		}); err != nil {
			return err
		}

		completed, err = s.completeMatch(tx, m, &v, responderID, now, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	if completed {
		s.recomputeStats(v.MatchID)
	}
	s.notifier.Notify(v.SubmitterID, "score_"+string(v.Status),
		fmt.Sprintf("Your score submission for match %d is %s", v.MatchID, v.Status))
	return &v, nil
}

// ResolveDispute is the administrative escape hatch for irreconcilable
// claims: it sets authoritative scores and completes the match directly,
// bypassing captain consensus.
func (s *Service) ResolveDispute(verificationID, adminID uint, scores ProposedScores) (*ScoreVerification, error) {
	var v ScoreVerification

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&v, verificationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Wrap(apperr.ErrNotFound, "score verification not found")
			}
			return err
		}
		if v.Status != StatusDisputed {
			return apperr.Wrap(apperr.ErrConflict, "only a disputed verification can be resolved")
		}

		m, err := loadMatch(tx, v.MatchID)
		if err != nil {
			return err
		}
		if err := scores.Validate(m); err != nil {
			return err
		}

		now := s.now()
		res := tx.Model(&ScoreVerification{}).
			Where("id = ? AND status = ?", v.ID, StatusDisputed).
			Updates(map[string]interface{}{
				"status":         StatusFinal,
				"team_a_runs":    scores.TeamARuns,
				"team_a_wickets": scores.TeamAWickets,
				"team_b_runs":    scores.TeamBRuns,
				"team_b_wickets": scores.TeamBWickets,
				"winner_team_id": scores.WinnerTeamID,
				"resolved_by_id": adminID,
				"resolved_at":    now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Wrap(apperr.ErrConflict, "score verification was resolved concurrently")
		}

		v.Status = StatusFinal
		v.TeamARuns = scores.TeamARuns
		v.TeamAWickets = scores.TeamAWickets
		v.TeamBRuns = scores.TeamBRuns
		v.TeamBWickets = scores.TeamBWickets
		v.WinnerTeamID = scores.WinnerTeamID
		v.ResolvedByID = &adminID
		v.ResolvedAt = &now

		m.TeamARuns = scores.TeamARuns
		m.TeamAWickets = scores.TeamAWickets
		m.TeamBRuns = scores.TeamBRuns
		m.TeamBWickets = scores.TeamBWickets

		if err := s.auditRepo.Append(tx, &audit.Entry{
			MatchID: &v.MatchID,
			Action:  audit.ActionDisputeResolved,
			ActorID: adminID,
			NewState: models.JSONMap{
				"verification_id": v.ID,
				"team_a":          fmt.Sprintf("%d/%d", scores.TeamARuns, scores.TeamAWickets),
				"team_b":          fmt.Sprintf("%d/%d", scores.TeamBRuns, scores.TeamBWickets),
			},
		}); err != nil {
			return err
		}

		_, err = s.completeMatch(tx, m, &v, adminID, now, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recomputeStats(v.MatchID)
	return &v, nil
}

// completeMatch commits the final-score transition onto the match, carrying
// over the verification's winner. The approver set gates captain-consensus
// completion; an admin override bypasses the gate.
func (s *Service) completeMatch(tx *gorm.DB, m *match.Match, v *ScoreVerification, actorID uint, at time.Time, adminOverride bool) (bool, error) {
	if !adminOverride {
		m.FinalScoreApprovedBy.Add(actorID)
		if m.FinalScoreApprovedBy.Size() < 2 {
			return false, tx.Save(m).Error
		}
	}

	if m.Status == match.StatusCompleted {
		// Already completed through the approval path; just carry the winner.
		m.WinnerTeamID = v.WinnerTeamID
		return false, tx.Save(m).Error
	}

	prevStatus := m.Status
	if err := match.ApplyTransition(m, match.TransitionFinalScore, actorID, at); err != nil {
		return false, err
	}
	m.WinnerTeamID = v.WinnerTeamID
	if err := tx.Save(m).Error; err != nil {
		return false, err
	}

	err := s.auditRepo.Append(tx, &audit.Entry{
		MatchID:   &m.ID,
		Action:    audit.ActionMatchStatusChanged,
		ActorID:   actorID,
		PrevState: models.JSONMap{"status": string(prevStatus)},
		NewState:  models.JSONMap{"status": string(m.Status)},
	})
	return err == nil, err
}

// recomputeStats is a best-effort follow-up to completion; a failure never
// unwinds the already-committed transition.
func (s *Service) recomputeStats(matchID uint) {
	if s.stats == nil {
		return
	}
	if err := s.stats.Recompute(matchID); err != nil {
		// Aggregation can be re-run on demand.
		log.Printf("[verification] stats recompute for match %d failed: %v", matchID, err)
	}
}

// markStatus flips a verification between statuses with a guarded update so
// concurrent responders are serialized first-committer-wins.
func markStatus(tx *gorm.DB, id uint, from, to VerificationStatus, resolverID uint, at time.Time, reason string) error {
	updates := map[string]interface{}{
		"status":         to,
		"resolved_by_id": resolverID,
		"resolved_at":    at,
	}
	if reason != "" {
		updates["dispute_reason"] = reason
	}
	res := tx.Model(&ScoreVerification{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Wrap(apperr.ErrConflict, "score verification was resolved concurrently")
	}
	return nil
}

func validateResponder(tx *gorm.DB, m *match.Match, submitterID, responderID uint) error {
	if responderID == submitterID {
		return apperr.Wrap(apperr.ErrForbidden, "submitter cannot verify their own score")
	}
	responderTeam, err := captainedParticipant(tx, m, responderID)
	if err != nil {
		return err
	}
	if responderTeam == 0 {
		return apperr.Wrap(apperr.ErrForbidden, "responder is not a captain of either participating team")
	}
	submitterTeam, err := captainedParticipant(tx, m, submitterID)
	if err != nil {
		return err
	}
	if submitterTeam != 0 && submitterTeam == responderTeam {
		return apperr.Wrap(apperr.ErrForbidden, "responder must captain the opposing team")
	}
	return nil
}

func captainedParticipant(tx *gorm.DB, m *match.Match, userID uint) (uint, error) {
	for _, teamID := range []uint{m.TeamAID, m.TeamBID} {
		var member team.TeamMember
		err := tx.Where("team_id = ? AND user_id = ? AND is_active = ? AND (is_captain = ? OR role = ?)",
			teamID, userID, true, true, "captain").
			First(&member).Error
		if err == nil {
			return teamID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
	}
	return 0, nil
}

func teamCaptain(tx *gorm.DB, teamID uint) (*team.TeamMember, error) {
	var member team.TeamMember
	err := tx.Where("team_id = ? AND is_active = ? AND (is_captain = ? OR role = ?)",
		teamID, true, true, "captain").
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "opposing team has no active captain")
		}
		return nil, err
	}
	return &member, nil
}

func loadMatch(tx *gorm.DB, matchID uint) (*match.Match, error) {
	var m match.Match
	if err := tx.First(&m, matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "match not found")
		}
		return nil, err
	}
	return &m, nil
}
