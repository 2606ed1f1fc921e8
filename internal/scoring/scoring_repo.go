package scoring

import (
	"errors"

	"gorm.io/gorm"

	"github.com/JayPadhiyar-42/scorepact/internal/audit"
	"github.com/JayPadhiyar-42/scorepact/internal/match"
	"github.com/JayPadhiyar-42/scorepact/pkg/apperr"
)

// BallRepository is the append-only store for ball events. Events extend a
// strictly ordered (innings, over, ball) sequence per match; the only
// removal is UndoLast, which pops the most recent event so the remaining
// prefix stays consistent.
type BallRepository interface {
	Append(event *BallEvent, actorID uint) error
	UndoLast(matchID uint, actorID uint) (*BallEvent, error)
	ListByMatch(matchID uint) ([]BallEvent, error)
}

type GormBallRepository struct {
	db        *gorm.DB
	auditRepo audit.Recorder
}

func NewGormBallRepository(db *gorm.DB, auditRepo audit.Recorder) *GormBallRepository {
	return &GormBallRepository{db: db, auditRepo: auditRepo}
}

// Append validates and stores a new ball event, updating the match's cached
// score snapshot in the same transaction.
func (r *GormBallRepository) Append(event *BallEvent, actorID uint) error {
	if err := validateEvent(event); err != nil {
		return err
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var m match.Match
		if err := tx.First(&m, event.MatchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Wrap(apperr.ErrNotFound, "match not found")
			}
			return err
		}

		if !m.InActiveInnings() {
			return apperr.Wrapf(apperr.ErrConflict, "match is %s, balls can only be recorded during an active innings", m.Status)
		}
		if event.Innings != m.CurrentInnings {
			return apperr.Wrapf(apperr.ErrValidation, "event innings %d does not match current innings %d", event.Innings, m.CurrentInnings)
		}

		// The new ordinal must strictly extend the stored sequence.
		last, err := lastEventTx(tx, event.MatchID)
		if err != nil {
			return err
		}
		if last != nil && event.Ordinal() <= last.Ordinal() {
			return apperr.Wrapf(apperr.ErrValidation,
				"ball (%d,%d,%d) does not extend the sequence after (%d,%d,%d)",
				event.Innings, event.Over, event.Ball, last.Innings, last.Over, last.Ball)
		}

		if err := tx.Create(event).Error; err != nil {
			return err
		}

		applySnapshot(&m, event, 1)
		if err := tx.Model(&m).Updates(snapshotColumns(&m)).Error; err != nil {
			return err
		}

		return r.auditRepo.Append(tx, &audit.Entry{
			MatchID: &event.MatchID,
			Action:  audit.ActionBallRecorded,
			ActorID: actorID,
			NewState: map[string]interface{}{
				"runs":       event.Runs,
				"is_wide":    event.IsWide,
				"is_no_ball": event.IsNoBall,
				"is_wicket":  event.IsWicket,
			},
			Innings: &event.Innings,
			Over:    &event.Over,
			Ball:    &event.Ball,
		})
	})
}

// UndoLast removes the most recent ball event for the match and reverses its
// effect on the cached score snapshot. Events are hard-deleted so the ordinal
// can be re-appended.
func (r *GormBallRepository) UndoLast(matchID uint, actorID uint) (*BallEvent, error) {
	var undone *BallEvent
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var m match.Match
		if err := tx.First(&m, matchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Wrap(apperr.ErrNotFound, "match not found")
			}
			return err
		}

		last, err := lastEventTx(tx, matchID)
		if err != nil {
			return err
		}
		if last == nil {
			return apperr.Wrap(apperr.ErrNotFound, "no ball events to undo")
		}

		if err := tx.Unscoped().Delete(&BallEvent{}, last.ID).Error; err != nil {
			return err
		}

		applySnapshot(&m, last, -1)
		if err := tx.Model(&m).Updates(snapshotColumns(&m)).Error; err != nil {
			return err
		}

		if err := r.auditRepo.Append(tx, &audit.Entry{
			MatchID: &matchID,
			Action:  audit.ActionBallUndone,
			ActorID: actorID,
			PrevState: map[string]interface{}{
				"runs":       last.Runs,
				"is_wide":    last.IsWide,
				"is_no_ball": last.IsNoBall,
				"is_wicket":  last.IsWicket,
			},
			Innings: &last.Innings,
			Over:    &last.Over,
			Ball:    &last.Ball,
		}); err != nil {
			return err
		}

		undone = last
		return nil
	})
	if err != nil {
		return nil, err
	}
	return undone, nil
}

func (r *GormBallRepository) ListByMatch(matchID uint) ([]BallEvent, error) {
	var events []BallEvent
	err := r.db.Where("match_id = ?", matchID).
		Order("innings ASC, over ASC, ball ASC").
		Find(&events).Error
	return events, err
}

func lastEventTx(tx *gorm.DB, matchID uint) (*BallEvent, error) {
	var last BallEvent
	err := tx.Where("match_id = ?", matchID).
		Order("innings DESC, over DESC, ball DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &last, nil
}

func validateEvent(e *BallEvent) error {
	if e.Innings < 1 || e.Innings > 2 {
		return apperr.Wrapf(apperr.ErrValidation, "innings must be 1 or 2, got %d", e.Innings)
	}
	if e.Over < 1 || e.Ball < 1 {
		return apperr.Wrap(apperr.ErrValidation, "over and ball are 1-indexed")
	}
	if e.Runs < 0 || e.Runs > 7 {
		return apperr.Wrapf(apperr.ErrValidation, "runs off the bat must be 0-7, got %d", e.Runs)
	}
	if e.IsWide && e.IsNoBall {
		return apperr.Wrap(apperr.ErrValidation, "a delivery cannot be both a wide and a no-ball")
	}
	if e.IsWicket {
		if !e.WicketType.Valid() {
			return apperr.Wrapf(apperr.ErrValidation, "invalid wicket type %q", e.WicketType)
		}
		needsFielder := e.WicketType == WicketCaught || e.WicketType == WicketRunOut || e.WicketType == WicketStumped
		if needsFielder && e.FielderID == nil {
			return apperr.Wrapf(apperr.ErrValidation, "wicket type %s requires a fielder", e.WicketType)
		}
	} else if e.WicketType != "" {
		return apperr.Wrap(apperr.ErrValidation, "wicket type given without a wicket")
	}
	return nil
}

// applySnapshot adjusts the match's cached score fields for one event.
// The first innings is always TeamA batting, the second TeamB. direction is
// +1 on append and -1 on undo.
func applySnapshot(m *match.Match, e *BallEvent, direction int) {
	totalRuns := e.Runs
	if e.IsWide || e.IsNoBall {
		totalRuns++ // extra penalty run
	}
	wickets := 0
	if e.IsWicket {
		wickets = 1
	}
	legalBalls := 0
	if e.IsLegal() {
		legalBalls = 1
	}

	if e.Innings == 1 {
		m.TeamARuns += direction * totalRuns
		m.TeamAWickets += direction * wickets
		m.TeamAOvers = adjustOvers(m.TeamAOvers, direction*legalBalls)
	} else {
		m.TeamBRuns += direction * totalRuns
		m.TeamBWickets += direction * wickets
		m.TeamBOvers = adjustOvers(m.TeamBOvers, direction*legalBalls)
	}
}

// adjustOvers shifts a whole-overs-plus-tenths figure by a number of legal
// balls, e.g. 1.5 plus one ball is 2.0, minus one ball is 1.4.
func adjustOvers(overs float32, balls int) float32 {
	total := BallsFromOvers(overs) + balls
	if total < 0 {
		total = 0
	}
	return OversFromBalls(total)
}

// OversFromBalls converts a legal-ball count to the display convention.
func OversFromBalls(balls int) float32 {
	return float32(balls/6) + float32(balls%6)/10
}

// BallsFromOvers is the inverse of OversFromBalls.
func BallsFromOvers(overs float32) int {
	whole := int(overs)
	rem := int(overs*10+0.5) - whole*10
	return whole*6 + rem
}

func snapshotColumns(m *match.Match) map[string]interface{} {
	return map[string]interface{}{
		"team_a_runs":    m.TeamARuns,
		"team_a_wickets": m.TeamAWickets,
		"team_a_overs":   m.TeamAOvers,
		"team_b_runs":    m.TeamBRuns,
		"team_b_wickets": m.TeamBWickets,
		"team_b_overs":   m.TeamBOvers,
	}
}
