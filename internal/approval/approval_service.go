package approval

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/JayPadhiyar-42/scorepact/internal/audit"
	"github.com/JayPadhiyar-42/scorepact/internal/match"
	"github.com/JayPadhiyar-42/scorepact/internal/models"
	"github.com/JayPadhiyar-42/scorepact/internal/notification"
	"github.com/JayPadhiyar-42/scorepact/internal/team"
	"github.com/JayPadhiyar-42/scorepact/internal/user"
	"github.com/JayPadhiyar-42/scorepact/pkg/apperr"
)

// StatsRecomputer triggers a best-effort stats recomputation after a match
// completes. Implemented by the scoring aggregator.
type StatsRecomputer interface {
	Recompute(matchID uint) error
}

// Service owns creation and resolution of two-party approval requests. All
// primary state changes run in one transaction; notification and stats
// recomputation happen after commit and never roll it back.
type Service struct {
	db        *gorm.DB
	auditRepo audit.Recorder
	notifier  notification.Notifier
	stats     StatsRecomputer
	now       func() time.Time
}

// NewService creates an approval service.
func NewService(db *gorm.DB, auditRepo audit.Recorder, notifier notification.Notifier, stats StatsRecomputer) *Service {
	return &Service{
		db:        db,
		auditRepo: auditRepo,
		notifier:  notifier,
		stats:     stats,
		now:       time.Now,
	}
}

// Create opens an approval request for a lifecycle transition. Any prior
// pending request of the same type for the match is superseded (cancelled),
// keeping at most one in flight. For final_score the requester's submission
// counts as their own approval, and approvals accumulate across supersession:
// when both captains end up requesting finalization the match completes on
// the second create, with no further response needed.
func (s *Service) Create(matchID uint, typ match.TransitionType, requesterID uint) (*ApprovalRequest, error) {
	if !typ.Valid() {
		return nil, apperr.Wrapf(apperr.ErrValidation, "unknown transition type %q", typ)
	}

	var req *ApprovalRequest
	var opponent *user.User
	var m *match.Match
	var completed bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		m, err = loadMatch(tx, matchID)
		if err != nil {
			return err
		}

		requesterTeam, err := captainedParticipant(tx, m, requesterID)
		if err != nil {
			return err
		}
		if requesterTeam == 0 {
			return apperr.Wrap(apperr.ErrForbidden, "requester is not a captain of either participating team")
		}

		// Validate the transition is requestable before creating the gate.
		if _, err := match.NextStatus(m.Status, typ); err != nil {
			return err
		}

		opponentCaptain, err := teamCaptain(tx, m.OpponentTeamID(requesterTeam))
		if err != nil {
			return err
		}
		opponent = &user.User{}
		if err := tx.First(opponent, opponentCaptain.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Wrap(apperr.ErrNotFound, "opponent captain user not found")
			}
			return err
		}

		now := s.now()
		if err := cancelPending(tx, matchID, typ, now); err != nil {
			return err
		}

		enabled, deadline := autoApproveDeadline(opponent, now)
		req = &ApprovalRequest{
			MatchID:            matchID,
			Type:               typ,
			RequesterID:        requesterID,
			Status:             StatusPending,
			AutoApproveEnabled: enabled,
			OpponentCaptainID:  opponentCaptain.UserID,
		}
		if enabled {
			req.AutoApproveAt = &deadline
		}
		if err := tx.Create(req).Error; err != nil {
			return err
		}

		if err := s.auditRepo.Append(tx, &audit.Entry{
			MatchID: &matchID,
			Action:  audit.ActionApprovalRequested,
			ActorID: requesterID,
			NewState: models.JSONMap{
				"request_id": req.ID,
				"type":       string(typ),
			},
		}); err != nil {
			return err
		}

		if typ != match.TransitionFinalScore {
			return nil
		}

		// The requester joins the approver set. If the opposing captain's
		// own earlier request put them in the set already, this create is
		// the second of two approvals: the match completes here and the
		// fresh request resolves with it.
		completed, err = s.commitTransition(tx, m, typ, requesterID, now, false)
		if err != nil {
			return err
		}
		if !completed {
			return nil
		}
		if err := markResolved(tx, req.ID, StatusApproved, opponent.ID, now, false); err != nil {
			return err
		}
		req.Status = StatusApproved
		req.ResolvedByID = &opponent.ID
		req.ResolvedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completed {
		s.afterResolution(req, m, true)
	} else {
		s.notifier.Notify(opponent.ID, "approval_requested",
			fmt.Sprintf("Approval requested for %s on match %d", req.Type, matchID))
	}
	return req, nil
}

// Respond resolves a pending request. Only the non-requesting captain (or an
// admin) may respond; a second resolution attempt yields Conflict. Approval
// commits the gated transition; rejection leaves the match status untouched
// (withdrawing only a final_score requester's self-approval) and the same
// transition can be re-requested.
func (s *Service) Respond(requestID, responderID uint, approve bool, isAdmin bool) (*ApprovalRequest, error) {
	var req ApprovalRequest
	var completed bool
	var m *match.Match

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&req, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Wrap(apperr.ErrNotFound, "approval request not found")
			}
			return err
		}
		if req.Status.Resolved() {
			return apperr.Wrap(apperr.ErrConflict, "approval request is already resolved")
		}

		var err error
		m, err = loadMatch(tx, req.MatchID)
		if err != nil {
			return err
		}

		if !isAdmin {
			if err := validateResponder(tx, m, &req, responderID); err != nil {
				return err
			}
		}

		status := StatusRejected
		if approve {
			status = StatusApproved
		}
		now := s.now()
		if err := markResolved(tx, req.ID, status, responderID, now, false); err != nil {
			return err
		}
		req.Status = status
		req.ResolvedByID = &responderID
		req.ResolvedAt = &now

		action := audit.ActionApprovalRejected
		if approve {
			action = audit.ActionApprovalApproved
		}
		if err := s.auditRepo.Append(tx, &audit.Entry{
			MatchID: &req.MatchID,
			Action:  action,
			ActorID: responderID,
			NewState: models.JSONMap{
				"request_id": req.ID,
				"type":       string(req.Type),
			},
		}); err != nil {
			return err
		}

		if !approve {
			// A rejected final_score requester's implicit self-approval is
			// withdrawn, so it cannot count toward a later consensus.
			if req.Type == match.TransitionFinalScore && m.FinalScoreApprovedBy.Remove(req.RequesterID) {
				return tx.Save(m).Error
			}
			return nil
		}
		completed, err = s.commitTransition(tx, m, req.Type, responderID, now, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterResolution(&req, m, completed)
	return &req, nil
}

// SweepResult reports what an auto-approval changed, for the sweeper's
// post-commit best-effort side effects.
type SweepResult struct {
	RequestID      uint
	MatchID        uint
	MatchCompleted bool
	NotifyUserID   uint
	ShouldNotify   bool
}

// AutoApprove resolves an expired pending request as if the opposing captain
// had approved, attributing the action to them with WasAutoApproved set. The
// caller bounds the transaction through ctx. Infrastructure failures are
// reported as transient so the sweep can retry them; domain failures are not.
func (s *Service) AutoApprove(ctx context.Context, requestID uint, now time.Time) (*SweepResult, error) {
	var result *SweepResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req ApprovalRequest
		if err := tx.First(&req, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Wrap(apperr.ErrNotFound, "approval request not found")
			}
			return classifyStorage(err)
		}
		if req.Status.Resolved() {
			return apperr.Wrap(apperr.ErrConflict, "approval request is already resolved")
		}
		if !req.AutoApproveEnabled || req.AutoApproveAt == nil || req.AutoApproveAt.After(now) {
			return apperr.Wrap(apperr.ErrConflict, "approval request is not due for auto-approval")
		}

		m, err := loadMatch(tx, req.MatchID)
		if err != nil {
			return classifyStorage(err)
		}

		resolver := req.OpponentCaptainID
		if err := markResolved(tx, req.ID, StatusAutoApproved, resolver, now, true); err != nil {
			return err
		}

		if err := s.auditRepo.Append(tx, &audit.Entry{
			MatchID:      &req.MatchID,
			Action:       audit.ActionApprovalAutoApproved,
			ActorID:      resolver,
			WasAutomatic: true,
			NewState: models.JSONMap{
				"request_id": req.ID,
				"type":       string(req.Type),
			},
		}); err != nil {
			return classifyStorage(err)
		}

		completed, err := s.commitTransition(tx, m, req.Type, resolver, now, true)
		if err != nil {
			return classifyStorage(err)
		}

		var opponent user.User
		shouldNotify := false
		if err := tx.First(&opponent, resolver).Error; err == nil {
			shouldNotify = opponent.NotifyOnAutoApprove
		}

		result = &SweepResult{
			RequestID:      req.ID,
			MatchID:        req.MatchID,
			MatchCompleted: completed,
			NotifyUserID:   resolver,
			ShouldNotify:   shouldNotify,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyFinalScoreApproval records one final-score approval on the match and
// applies the completion transition once two distinct approvers agree. Pure
// state manipulation; persistence is the caller's concern.
func applyFinalScoreApproval(m *match.Match, actorID uint, at time.Time) (bool, error) {
	m.FinalScoreApprovedBy.Add(actorID)
	if m.FinalScoreApprovedBy.Size() < 2 {
		return false, nil
	}
	if err := match.ApplyTransition(m, match.TransitionFinalScore, actorID, at); err != nil {
		return false, err
	}
	return true, nil
}

// commitTransition applies the gated transition to the match. For
// final_score the resolver joins the approver set and the match completes
// only at two distinct approvers; other types commit immediately. Returns
// whether the match reached completed.
func (s *Service) commitTransition(tx *gorm.DB, m *match.Match, typ match.TransitionType, actorID uint, at time.Time, automatic bool) (bool, error) {
	prevStatus := m.Status

	if typ == match.TransitionFinalScore {
		done, err := applyFinalScoreApproval(m, actorID, at)
		if err != nil {
			return false, err
		}
		if !done {
			// One of two approvals: the match sits at final_pending
			// (projected) until the second arrives.
			return false, tx.Save(m).Error
		}
	} else if err := match.ApplyTransition(m, typ, actorID, at); err != nil {
		return false, err
	}
	if err := tx.Save(m).Error; err != nil {
		return false, err
	}

	err := s.auditRepo.Append(tx, &audit.Entry{
		MatchID:      &m.ID,
		Action:       audit.ActionMatchStatusChanged,
		ActorID:      actorID,
		WasAutomatic: automatic,
		PrevState:    models.JSONMap{"status": string(prevStatus)},
		NewState:     models.JSONMap{"status": string(m.Status)},
	})
	if err != nil {
		return false, err
	}
	return m.Status == match.StatusCompleted, nil
}

// afterResolution runs the best-effort side effects of a resolution. These
// are deliberately outside the transaction: their failure is logged by the
// collaborators, never unwound into the committed transition.
func (s *Service) afterResolution(req *ApprovalRequest, m *match.Match, completed bool) {
	verb := "rejected"
	if req.Status == StatusApproved || req.Status == StatusAutoApproved {
		verb = "approved"
	}
	s.notifier.Notify(req.RequesterID, "approval_"+verb,
		fmt.Sprintf("Your %s request for match %d was %s", req.Type, req.MatchID, verb))

	if completed && s.stats != nil {
		if err := s.stats.Recompute(m.ID); err != nil {
			// Aggregation is retryable on demand; the completed transition stands.
			log.Printf("[approval] stats recompute for match %d failed: %v", m.ID, err)
		}
	}
}

// markResolved flips a pending request to a terminal status with a guarded
// update, so concurrent resolutions are decided by first-committer-wins and
// the loser sees Conflict.
func markResolved(tx *gorm.DB, requestID uint, status ApprovalStatus, resolverID uint, at time.Time, auto bool) error {
	res := tx.Model(&ApprovalRequest{}).
		Where("id = ? AND status = ?", requestID, StatusPending).
		Updates(map[string]interface{}{
			"status":            status,
			"resolved_by_id":    resolverID,
			"resolved_at":       at,
			"was_auto_approved": auto,
		})
	if res.Error != nil {
		return classifyStorage(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Wrap(apperr.ErrConflict, "approval request was resolved concurrently")
	}
	return nil
}

// cancelPending supersedes older pending requests of the same type.
func cancelPending(tx *gorm.DB, matchID uint, typ match.TransitionType, at time.Time) error {
	return tx.Model(&ApprovalRequest{}).
		Where("match_id = ? AND type = ? AND status = ?", matchID, typ, StatusPending).
		Updates(map[string]interface{}{
			"status":      StatusCancelled,
			"resolved_at": at,
		}).Error
}

// validateResponder enforces that only the non-requesting captain resolves.
func validateResponder(tx *gorm.DB, m *match.Match, req *ApprovalRequest, responderID uint) error {
	if responderID == req.RequesterID {
		return apperr.Wrap(apperr.ErrForbidden, "requester cannot resolve their own request")
	}
	responderTeam, err := captainedParticipant(tx, m, responderID)
	if err != nil {
		return err
	}
	if responderTeam == 0 {
		return apperr.Wrap(apperr.ErrForbidden, "responder is not a captain of either participating team")
	}
	requesterTeam, err := captainedParticipant(tx, m, req.RequesterID)
	if err != nil {
		return err
	}
	if requesterTeam != 0 && requesterTeam == responderTeam {
		return apperr.Wrap(apperr.ErrForbidden, "responder must captain the opposing team")
	}
	return nil
}

// captainedParticipant returns which participating team the user captains,
// or 0 when they captain neither.
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

// teamCaptain returns the active captain of a team.
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

// classifyStorage marks infrastructure-level failures transient so the
// auto-approval sweep can retry them with backoff. Domain errors carry their
// own kind and pass through untouched.
func classifyStorage(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrForbidden) ||
		errors.Is(err, apperr.ErrConflict) || errors.Is(err, apperr.ErrValidation) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%v: %w", err, apperr.ErrTransient)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return fmt.Errorf("%v: %w", err, apperr.ErrTransient)
}
