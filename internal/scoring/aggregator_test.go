package scoring

import (
	"reflect"
	"testing"

	"github.com/JayPadhiyar-42/scorepact/internal/audit"
	"github.com/JayPadhiyar-42/scorepact/internal/common"
	"github.com/JayPadhiyar-42/scorepact/internal/match"
)

func ptr(id uint) *uint { return &id }

func newSnapshotMatch() *match.Match {
	return &match.Match{TeamAID: 10, TeamBID: 20}
}

func findStat(stats []PlayerStat, playerID uint) *PlayerStat {
	for i := range stats {
		if stats[i].PlayerID == playerID {
			return &stats[i]
		}
	}
	return nil
}

func TestAccumulateAttribution(t *testing.T) {
	// One over fragment: a boundary, a catch, then a wide with a scrambled
	// single off the bat.
	events := []BallEvent{
		{MatchID: 1, Innings: 1, Over: 1, Ball: 1, StrikerID: 1, BowlerID: 2, Runs: 4},
		{MatchID: 1, Innings: 1, Over: 1, Ball: 2, StrikerID: 1, BowlerID: 2, Runs: 0, IsWicket: true, WicketType: WicketCaught, FielderID: ptr(3)},
		{MatchID: 1, Innings: 1, Over: 1, Ball: 3, StrikerID: 1, BowlerID: 2, Runs: 1, IsWide: true},
	}

	stats := accumulate(1, events)

	striker := findStat(stats, 1)
	if striker == nil {
		t.Fatal("no stat row for striker")
	}
	if striker.BallsFaced != 2 {
		t.Errorf("balls faced = %d, want 2 (wide excluded)", striker.BallsFaced)
	}
	if striker.Runs != 5 {
		t.Errorf("striker runs = %d, want 5 (off-bat runs count regardless of legality)", striker.Runs)
	}
	if striker.Boundaries != 1 {
		t.Errorf("boundaries = %d, want 1", striker.Boundaries)
	}

	bowler := findStat(stats, 2)
	if bowler == nil {
		t.Fatal("no stat row for bowler")
	}
	if bowler.BallsBowled != 2 {
		t.Errorf("balls bowled = %d, want 2", bowler.BallsBowled)
	}
	if bowler.OversBowled != 0.2 {
		t.Errorf("overs bowled = %v, want 0.2", bowler.OversBowled)
	}
	if bowler.RunsConceded != 5 {
		t.Errorf("runs conceded = %d, want 5", bowler.RunsConceded)
	}
	if bowler.Wickets != 1 {
		t.Errorf("bowler wickets = %d, want 1 (caught credits the bowler)", bowler.Wickets)
	}

	fielder := findStat(stats, 3)
	if fielder == nil {
		t.Fatal("no stat row for fielder")
	}
	if fielder.Catches != 1 {
		t.Errorf("catches = %d, want 1", fielder.Catches)
	}
}

func TestAccumulateRunOutAndStumping(t *testing.T) {
	events := []BallEvent{
		{MatchID: 1, Innings: 1, Over: 1, Ball: 1, StrikerID: 1, BowlerID: 2, Runs: 1, IsWicket: true, WicketType: WicketRunOut, FielderID: ptr(3)},
		{MatchID: 1, Innings: 1, Over: 1, Ball: 2, StrikerID: 4, BowlerID: 2, Runs: 0, IsWicket: true, WicketType: WicketStumped, FielderID: ptr(5)},
		{MatchID: 1, Innings: 1, Over: 1, Ball: 3, StrikerID: 4, BowlerID: 2, Runs: 0, IsWicket: true, WicketType: WicketBowled},
	}

	stats := accumulate(1, events)

	bowler := findStat(stats, 2)
	if bowler.Wickets != 1 {
		t.Errorf("bowler wickets = %d, want 1 (only the bowled dismissal)", bowler.Wickets)
	}
	if got := findStat(stats, 3).RunOuts; got != 1 {
		t.Errorf("fielder run-outs = %d, want 1", got)
	}
	if got := findStat(stats, 5).Stumpings; got != 1 {
		t.Errorf("keeper stumpings = %d, want 1", got)
	}
}

func TestAccumulateIdempotent(t *testing.T) {
	events := []BallEvent{
		{MatchID: 7, Innings: 1, Over: 1, Ball: 1, StrikerID: 1, BowlerID: 2, Runs: 6},
		{MatchID: 7, Innings: 1, Over: 1, Ball: 2, StrikerID: 1, BowlerID: 2, Runs: 2, IsNoBall: true},
		{MatchID: 7, Innings: 2, Over: 1, Ball: 1, StrikerID: 2, BowlerID: 1, Runs: 1},
	}

	first := accumulate(7, events)
	second := accumulate(7, events)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated aggregation differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAccumulateSortedByPlayer(t *testing.T) {
	events := []BallEvent{
		{MatchID: 1, Innings: 1, Over: 1, Ball: 1, StrikerID: 9, BowlerID: 3, Runs: 1},
		{MatchID: 1, Innings: 1, Over: 1, Ball: 2, StrikerID: 5, BowlerID: 3, Runs: 0},
	}
	stats := accumulate(1, events)
	for i := 1; i < len(stats); i++ {
		if stats[i-1].PlayerID >= stats[i].PlayerID {
			t.Fatalf("rows not sorted by player id: %v then %v", stats[i-1].PlayerID, stats[i].PlayerID)
		}
	}
}

func TestOversConversion(t *testing.T) {
	cases := []struct {
		balls int
		overs float32
	}{
		{0, 0},
		{2, 0.2},
		{6, 1.0},
		{8, 1.2},
		{62, 10.2},
	}
	for _, c := range cases {
		if got := OversFromBalls(c.balls); got != c.overs {
			t.Errorf("OversFromBalls(%d) = %v, want %v", c.balls, got, c.overs)
		}
		if got := BallsFromOvers(c.overs); got != c.balls {
			t.Errorf("BallsFromOvers(%v) = %d, want %d", c.overs, got, c.balls)
		}
	}
}

func TestBallEventOrdinalOrdering(t *testing.T) {
	earlier := BallEvent{Innings: 1, Over: 20, Ball: 6}
	later := BallEvent{Innings: 2, Over: 1, Ball: 1}
	if earlier.Ordinal() >= later.Ordinal() {
		t.Error("second innings must order after any first-innings ball")
	}

	a := BallEvent{Innings: 1, Over: 3, Ball: 6}
	b := BallEvent{Innings: 1, Over: 4, Ball: 1}
	if a.Ordinal() >= b.Ordinal() {
		t.Error("next over must order after the previous over's last ball")
	}
}

func TestValidateEvent(t *testing.T) {
	valid := func() *BallEvent {
		return &BallEvent{MatchID: 1, Innings: 1, Over: 1, Ball: 1, StrikerID: 1, BowlerID: 2}
	}

	if err := validateEvent(valid()); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}

	e := valid()
	e.Innings = 3
	if err := validateEvent(e); err == nil {
		t.Error("innings 3 should be rejected")
	}

	e = valid()
	e.IsWide = true
	e.IsNoBall = true
	if err := validateEvent(e); err == nil {
		t.Error("wide and no-ball together should be rejected")
	}

	e = valid()
	e.IsWicket = true
	e.WicketType = WicketCaught
	if err := validateEvent(e); err == nil {
		t.Error("caught without a fielder should be rejected")
	}

	e = valid()
	e.WicketType = WicketBowled
	if err := validateEvent(e); err == nil {
		t.Error("wicket type without a wicket should be rejected")
	}

	e = valid()
	e.IsWicket = true
	e.WicketType = WicketBowled
	if err := validateEvent(e); err != nil {
		t.Errorf("bowled needs no fielder: %v", err)
	}
}

func TestApplySnapshotAppendAndUndo(t *testing.T) {
	m := newSnapshotMatch()
	e := &BallEvent{Innings: 1, Over: 1, Ball: 1, Runs: 4}

	applySnapshot(m, e, 1)
	if m.TeamARuns != 4 || m.TeamAOvers != 0.1 {
		t.Errorf("after append: runs=%d overs=%v", m.TeamARuns, m.TeamAOvers)
	}

	applySnapshot(m, e, -1)
	if m.TeamARuns != 0 || m.TeamAOvers != 0 || m.TeamAWickets != 0 {
		t.Errorf("undo did not restore the snapshot: runs=%d wickets=%d overs=%v",
			m.TeamARuns, m.TeamAWickets, m.TeamAOvers)
	}
}

func TestApplySnapshotExtrasAndInnings(t *testing.T) {
	m := newSnapshotMatch()

	// A wide adds the penalty run plus any off-bat runs and no legal ball.
	applySnapshot(m, &BallEvent{Innings: 1, Over: 1, Ball: 1, Runs: 1, IsWide: true}, 1)
	if m.TeamARuns != 2 {
		t.Errorf("wide total = %d, want 2", m.TeamARuns)
	}
	if m.TeamAOvers != 0 {
		t.Errorf("wide counted a legal ball: overs=%v", m.TeamAOvers)
	}

	// Second innings credits team B.
	applySnapshot(m, &BallEvent{Innings: 2, Over: 1, Ball: 1, Runs: 6, IsWicket: true, WicketType: WicketBowled}, 1)
	if m.TeamBRuns != 6 || m.TeamBWickets != 1 || m.TeamBOvers != 0.1 {
		t.Errorf("second innings snapshot wrong: runs=%d wickets=%d overs=%v",
			m.TeamBRuns, m.TeamBWickets, m.TeamBOvers)
	}
	if m.TeamARuns != 2 {
		t.Errorf("first-innings side changed: %d", m.TeamARuns)
	}
}

func TestAggregationAuditAttribution(t *testing.T) {
	e := aggregationAudit(7, 12, 4)

	if e.Action != audit.ActionStatsAggregated {
		t.Errorf("action = %s", e.Action)
	}
	if e.ActorID != common.SystemActorID || !e.WasAutomatic {
		t.Error("aggregation entries must carry the system actor with the automatic flag set")
	}
	if e.MatchID == nil || *e.MatchID != 7 {
		t.Error("entry lost its match reference")
	}
}
