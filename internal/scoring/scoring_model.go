package scoring

import (
	"github.com/JayPadhiyar-42/scorepact/internal/models"
	"github.com/JayPadhiyar-42/scorepact/internal/user"
)

// WicketType classifies how a batter was dismissed.
type WicketType string

const (
	WicketCaught  WicketType = "caught"
	WicketBowled  WicketType = "bowled"
	WicketRunOut  WicketType = "run_out"
	WicketStumped WicketType = "stumped"
	WicketOther   WicketType = "other"
)

func (w WicketType) Valid() bool {
	switch w {
	case WicketCaught, WicketBowled, WicketRunOut, WicketStumped, WicketOther:
		return true
	}
	return false
}

// BallEvent records every delivery bowled in a match. THIS IS THE CORE OF
// LIVE SCORING. Events are immutable once appended; the only removal is an
// explicit undo of the most recent event for the match.
type BallEvent struct {
	models.BaseModel
	MatchID uint `json:"match_id" gorm:"index:idx_ball_ordinal,unique;not null"`

	// Strict ordering key within a match. All 1-indexed.
	Innings int `json:"innings" gorm:"index:idx_ball_ordinal,unique;not null"`
	Over    int `json:"over" gorm:"index:idx_ball_ordinal,unique;not null"`
	Ball    int `json:"ball" gorm:"index:idx_ball_ordinal,unique;not null"`

	StrikerID uint       `json:"striker_id" gorm:"index;not null"`
	Striker   *user.User `json:"striker,omitempty" gorm:"foreignKey:StrikerID"`
	BowlerID  uint       `json:"bowler_id" gorm:"index;not null"`
	Bowler    *user.User `json:"bowler,omitempty" gorm:"foreignKey:BowlerID"`
	FielderID *uint      `json:"fielder_id,omitempty" gorm:"index"`
	Fielder   *user.User `json:"fielder,omitempty" gorm:"foreignKey:FielderID"`

	// Runs scored off the bat on this delivery (extras excluded).
	Runs int `json:"runs" gorm:"default:0"`

	IsWide     bool       `json:"is_wide" gorm:"default:false"`
	IsNoBall   bool       `json:"is_no_ball" gorm:"default:false"`
	IsWicket   bool       `json:"is_wicket" gorm:"default:false"`
	WicketType WicketType `json:"wicket_type,omitempty"`
}

// IsLegal reports whether the delivery counts toward the over.
func (b *BallEvent) IsLegal() bool {
	return !b.IsWide && !b.IsNoBall
}

// Ordinal returns a comparable position for the event within its match.
// Overs and balls stay comfortably below the packing bounds.
func (b *BallEvent) Ordinal() int64 {
	return int64(b.Innings)*1_000_000 + int64(b.Over)*1_000 + int64(b.Ball)
}

// PlayerStat holds a player's aggregated figures for one match. Rows are a
// materialized recomputation: aggregating a match discards and replaces all
// prior rows for it, so repeated runs are idempotent.
type PlayerStat struct {
	models.BaseModel
	PlayerID uint       `json:"player_id" gorm:"index:idx_player_match,unique;not null"`
	Player   *user.User `json:"player,omitempty" gorm:"foreignKey:PlayerID"`
	MatchID  uint       `json:"match_id" gorm:"index:idx_player_match,unique;not null"`

	// Batting.
	Runs       int `json:"runs" gorm:"default:0"`
	BallsFaced int `json:"balls_faced" gorm:"default:0"`
	Boundaries int `json:"boundaries" gorm:"default:0"`

	// Bowling. OversBowled uses the cricket display convention: whole overs
	// plus tenths for remainder balls, e.g. 10.2 is 10 overs and 2 balls.
	Wickets      int     `json:"wickets" gorm:"default:0"`
	BallsBowled  int     `json:"balls_bowled" gorm:"default:0"`
	OversBowled  float32 `json:"overs_bowled" gorm:"default:0.0"`
	RunsConceded int     `json:"runs_conceded" gorm:"default:0"`

	// Fielding.
	Catches   int `json:"catches" gorm:"default:0"`
	RunOuts   int `json:"run_outs" gorm:"default:0"`
	Stumpings int `json:"stumpings" gorm:"default:0"`
}
