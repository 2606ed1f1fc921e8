package approval

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/JayPadhiyar-42/scorepact/internal/audit"
	"github.com/JayPadhiyar-42/scorepact/pkg/apperr"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type fakeStore struct {
	due     []uint
	results map[uint]*SweepResult
	// errs holds per-request error sequences, popped one per attempt.
	errs  map[uint][]error
	calls map[uint]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		results: make(map[uint]*SweepResult),
		errs:    make(map[uint][]error),
		calls:   make(map[uint]int),
	}
}

func (s *fakeStore) DueRequests(now time.Time) ([]uint, error) {
	return s.due, nil
}

func (s *fakeStore) AutoApprove(ctx context.Context, requestID uint, now time.Time) (*SweepResult, error) {
	s.calls[requestID]++
	if queue := s.errs[requestID]; len(queue) > 0 {
		err := queue[0]
		s.errs[requestID] = queue[1:]
		return nil, err
	}
	if res, ok := s.results[requestID]; ok {
		return res, nil
	}
	return &SweepResult{RequestID: requestID}, nil
}

type fakeNotifier struct {
	sent []uint
}

func (n *fakeNotifier) Notify(userID uint, event, message string) {
	n.sent = append(n.sent, userID)
}

type fakeStats struct {
	recomputed []uint
	err        error
}

func (s *fakeStats) Recompute(matchID uint) error {
	s.recomputed = append(s.recomputed, matchID)
	return s.err
}

type fakeAudit struct {
	entries []*audit.Entry
}

func (a *fakeAudit) Append(tx *gorm.DB, e *audit.Entry) error {
	a.entries = append(a.entries, e)
	return nil
}

func (a *fakeAudit) AppendBestEffort(e *audit.Entry) {
	a.entries = append(a.entries, e)
}

func newTestSweeper(store SweepStore, clock Clock, notifier *fakeNotifier, stats *fakeStats) *Sweeper {
	sw := NewSweeper(store, clock, notifier, stats, &fakeAudit{}, SweeperConfig{
		Interval:    time.Minute,
		TxTimeout:   time.Second,
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    4 * time.Millisecond,
	}, log.New(io.Discard, "", 0))
	sw.sleep = func(time.Duration) {}
	return sw
}

func TestSweepResolvesDueRequests(t *testing.T) {
	store := newFakeStore()
	store.due = []uint{11, 12}
	store.results[11] = &SweepResult{RequestID: 11, MatchID: 1, NotifyUserID: 42, ShouldNotify: true}
	store.results[12] = &SweepResult{RequestID: 12, MatchID: 2, MatchCompleted: true}

	notifier := &fakeNotifier{}
	stats := &fakeStats{}
	sw := newTestSweeper(store, &fakeClock{now: time.Now()}, notifier, stats)

	sw.Sweep(context.Background())

	if store.calls[11] != 1 || store.calls[12] != 1 {
		t.Errorf("each due request should be resolved exactly once, calls=%v", store.calls)
	}
	if len(notifier.sent) != 1 || notifier.sent[0] != 42 {
		t.Errorf("expected one notification to user 42, got %v", notifier.sent)
	}
	if len(stats.recomputed) != 1 || stats.recomputed[0] != 2 {
		t.Errorf("expected stats recompute for match 2, got %v", stats.recomputed)
	}
}

func TestSweepIsolatesFailures(t *testing.T) {
	store := newFakeStore()
	store.due = []uint{1, 2, 3}
	// Request 2 fails non-transiently on every attempt; 1 and 3 succeed.
	store.errs[2] = []error{apperr.Wrap(apperr.ErrConflict, "already resolved")}

	sw := newTestSweeper(store, &fakeClock{now: time.Now()}, &fakeNotifier{}, &fakeStats{})
	sw.Sweep(context.Background())

	if store.calls[1] != 1 || store.calls[3] != 1 {
		t.Errorf("failure on request 2 must not abort 1 and 3, calls=%v", store.calls)
	}
	if store.calls[2] != 1 {
		t.Errorf("non-transient failure should not be retried, calls[2]=%d", store.calls[2])
	}
}

func TestRetryOnlyTransientErrors(t *testing.T) {
	store := newFakeStore()
	store.errs[5] = []error{
		apperr.Wrap(apperr.ErrTransient, "deadlock"),
		apperr.Wrap(apperr.ErrTransient, "deadlock"),
	}
	store.results[5] = &SweepResult{RequestID: 5}

	var delays []time.Duration
	sw := newTestSweeper(store, &fakeClock{now: time.Now()}, &fakeNotifier{}, &fakeStats{})
	sw.sleep = func(d time.Duration) { delays = append(delays, d) }

	res, err := sw.resolveWithRetry(context.Background(), 5, time.Now())
	if err != nil {
		t.Fatalf("expected success after transient retries, got %v", err)
	}
	if res.RequestID != 5 {
		t.Errorf("wrong result: %+v", res)
	}
	if store.calls[5] != 3 {
		t.Errorf("expected 3 attempts, got %d", store.calls[5])
	}
	if len(delays) != 2 || delays[1] != 2*delays[0] {
		t.Errorf("expected exponential backoff between attempts, got %v", delays)
	}
}

func TestRetriesExhaustLeaveRequestPending(t *testing.T) {
	store := newFakeStore()
	store.due = []uint{9}
	store.errs[9] = []error{
		apperr.Wrap(apperr.ErrTransient, "contention"),
		apperr.Wrap(apperr.ErrTransient, "contention"),
		apperr.Wrap(apperr.ErrTransient, "contention"),
	}

	recorder := &fakeAudit{}
	sw := newTestSweeper(store, &fakeClock{now: time.Now()}, &fakeNotifier{}, &fakeStats{})
	sw.auditRepo = recorder

	sw.Sweep(context.Background())

	if store.calls[9] != 3 {
		t.Errorf("expected exactly MaxAttempts attempts, got %d", store.calls[9])
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Action != audit.ActionApprovalSweepFailed {
		t.Errorf("exhausted transient failure should leave an audit entry, got %+v", recorder.entries)
	}
}

func TestNonTransientFailsImmediately(t *testing.T) {
	store := newFakeStore()
	store.errs[4] = []error{fmt.Errorf("schema broken")}

	sw := newTestSweeper(store, &fakeClock{now: time.Now()}, &fakeNotifier{}, &fakeStats{})

	_, err := sw.resolveWithRetry(context.Background(), 4, time.Now())
	if err == nil {
		t.Fatal("expected error")
	}
	if store.calls[4] != 1 {
		t.Errorf("non-transient error must not be retried, got %d attempts", store.calls[4])
	}
}

func TestStatsFailureDoesNotPanicOrBlock(t *testing.T) {
	store := newFakeStore()
	store.due = []uint{1}
	store.results[1] = &SweepResult{RequestID: 1, MatchID: 3, MatchCompleted: true}

	stats := &fakeStats{err: fmt.Errorf("aggregation unavailable")}
	sw := newTestSweeper(store, &fakeClock{now: time.Now()}, &fakeNotifier{}, stats)

	sw.Sweep(context.Background())

	if len(stats.recomputed) != 1 {
		t.Errorf("recompute should still be attempted, got %v", stats.recomputed)
	}
}
