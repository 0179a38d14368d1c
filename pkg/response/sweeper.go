package response

import (
	"context"
	"log/slog"
	"time"

	"github.com/jwebster45206/npc-engine/pkg/actor"
)

// Sweeper defaults.
const (
	DefaultActionTimeout      = 30 * time.Second
	DefaultMaxConversationAge = time.Hour
)

// Roster lists every character the sweeper should look after.
// *world.Office implements it.
type Roster interface {
	Characters() []*actor.Character
}

// SweepReport summarises one sweep.
type SweepReport struct {
	Completed int `json:"completed"`
	TimedOut  int `json:"timed_out"`
	Evicted   int `json:"evicted"`
	FollowUps int `json:"follow_ups"`
}

// Empty reports whether the sweep changed nothing.
func (r SweepReport) Empty() bool {
	return r == SweepReport{}
}

// Sweeper finishes due actions, clears stuck ones and runs housekeeping.
type Sweeper struct {
	processor *Processor
	roster    Roster
	followUps *FollowUpScheduler
	logger    *slog.Logger
	now       func() time.Time

	Timeout            time.Duration // busy longer than this is force-cleared
	MaxConversationAge time.Duration
}

// NewSweeper creates a sweeper. followUps may be nil.
func NewSweeper(p *Processor, roster Roster, followUps *FollowUpScheduler, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		processor:          p,
		roster:             roster,
		followUps:          followUps,
		logger:             logger,
		now:                time.Now,
		Timeout:            DefaultActionTimeout,
		MaxConversationAge: DefaultMaxConversationAge,
	}
}

// SetClock replaces the sweeper's time source.
func (s *Sweeper) SetClock(now func() time.Time) {
	s.now = now
}

// CompleteDue completes every active action whose duration has elapsed.
func (s *Sweeper) CompleteDue(ctx context.Context, now time.Time) int {
	n := 0
	for _, c := range s.roster.Characters() {
		a := c.ActiveAction()
		if a == nil || now.Before(a.DueAt()) {
			continue
		}
		if age := now.Sub(a.StartedAt); age > s.Timeout {
			continue
		}
		if s.processor.CompleteAction(ctx, c) {
			n++
		}
	}
	return n
}

// SweepTimeouts force-clears actions that have been running longer than
// Timeout.
func (s *Sweeper) SweepTimeouts(ctx context.Context, now time.Time) int {
	n := 0
	for _, c := range s.roster.Characters() {
		a := c.ActiveAction()
		if a == nil {
			continue
		}
		age := now.Sub(a.StartedAt)
		if age <= s.Timeout {
			continue
		}
		if s.processor.ForceClear(ctx, c, *a, age) {
			n++
		}
	}
	return n
}

// RunOnce performs one full sweep.
func (s *Sweeper) RunOnce(ctx context.Context) SweepReport {
	now := s.now()
	report := SweepReport{
		TimedOut:  s.SweepTimeouts(ctx, now),
		Completed: s.CompleteDue(ctx, now),
		Evicted:   s.processor.CleanupOldConversations(s.MaxConversationAge),
	}
	if s.followUps != nil {
		report.FollowUps = s.followUps.RunDue(ctx, now)
	}
	if !report.Empty() {
		s.logger.DebugContext(ctx, "Sweep finished",
			"completed", report.Completed,
			"timed_out", report.TimedOut,
			"evicted", report.Evicted,
			"follow_ups", report.FollowUps)
	}
	return report
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Sweeper started", "interval", interval.String(), "timeout", s.Timeout.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}
