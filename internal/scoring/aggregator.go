package scoring

import (
	"errors"
	"log"
	"sort"

	"gorm.io/gorm"

	"github.com/JayPadhiyar-42/scorepact/internal/audit"
	"github.com/JayPadhiyar-42/scorepact/internal/common"
	"github.com/JayPadhiyar-42/scorepact/internal/match"
	"github.com/JayPadhiyar-42/scorepact/pkg/apperr"
)

// Aggregator derives per-player statistics from a match's ball events. The
// result is a materialized recomputation: every run replaces all prior
// PlayerStat rows for the match, so re-running it is idempotent.
type Aggregator struct {
	db        *gorm.DB
	auditRepo audit.Recorder
}

func NewAggregator(db *gorm.DB, auditRepo audit.Recorder) *Aggregator {
	return &Aggregator{db: db, auditRepo: auditRepo}
}

// Recompute satisfies the StatsRecomputer contract used by the approval and
// verification services.
func (a *Aggregator) Recompute(matchID uint) error {
	return a.Aggregate(matchID)
}

// Aggregate replaces the match's PlayerStat rows with totals derived from
// its full ball-event stream. It fails fast on a non-completed match; a
// completed match with no events is a warning, not an error.
func (a *Aggregator) Aggregate(matchID uint) error {
	var m match.Match
	if err := a.db.First(&m, matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Wrap(apperr.ErrNotFound, "match not found")
		}
		return err
	}
	if m.Status != match.StatusCompleted {
		return apperr.Wrapf(apperr.ErrValidation, "cannot aggregate stats for match in status %s", m.Status)
	}

	var events []BallEvent
	if err := a.db.Where("match_id = ?", matchID).
		Order("innings ASC, over ASC, ball ASC").
		Find(&events).Error; err != nil {
		return err
	}
	if len(events) == 0 {
		log.Printf("[stats] match %d completed with no ball events, nothing to aggregate", matchID)
		return nil
	}

	stats := accumulate(matchID, events)

	return a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("match_id = ?", matchID).Delete(&PlayerStat{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&stats).Error; err != nil {
			return err
		}
		return a.auditRepo.Append(tx, aggregationAudit(matchID, len(events), len(stats)))
	})
}

// aggregationAudit attributes one replace-and-audit run to the system actor.
func aggregationAudit(matchID uint, events, players int) *audit.Entry {
	return &audit.Entry{
		MatchID:      &matchID,
		Action:       audit.ActionStatsAggregated,
		ActorID:      common.SystemActorID,
		WasAutomatic: true,
		NewState: map[string]interface{}{
			"events":  events,
			"players": players,
		},
	}
}

// accumulate streams the events in order and attributes each one's effects
// to its striker, bowler, and optional fielder. Returned rows are sorted by
// player id so repeated runs produce identical output.
func accumulate(matchID uint, events []BallEvent) []PlayerStat {
	acc := make(map[uint]*PlayerStat)
	get := func(playerID uint) *PlayerStat {
		s, ok := acc[playerID]
		if !ok {
			s = &PlayerStat{PlayerID: playerID, MatchID: matchID}
			acc[playerID] = s
		}
		return s
	}

	for i := range events {
		e := &events[i]
		striker := get(e.StrikerID)
		bowler := get(e.BowlerID)

		// Off-bat runs count for the striker and against the bowler
		// regardless of legality.
		striker.Runs += e.Runs
		bowler.RunsConceded += e.Runs
		if e.Runs == 4 || e.Runs == 6 {
			striker.Boundaries++
		}

		// Only a legal delivery counts a ball faced and a ball bowled.
		if e.IsLegal() {
			striker.BallsFaced++
			bowler.BallsBowled++
		}

		if e.IsWicket {
			switch e.WicketType {
			case WicketRunOut:
				if e.FielderID != nil {
					get(*e.FielderID).RunOuts++
				}
			case WicketStumped:
				if e.FielderID != nil {
					get(*e.FielderID).Stumpings++
				}
			default:
				bowler.Wickets++
				if e.WicketType == WicketCaught && e.FielderID != nil {
					get(*e.FielderID).Catches++
				}
			}
		}
	}

	stats := make([]PlayerStat, 0, len(acc))
	for _, s := range acc {
		s.OversBowled = OversFromBalls(s.BallsBowled)
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].PlayerID < stats[j].PlayerID })
	return stats
}
