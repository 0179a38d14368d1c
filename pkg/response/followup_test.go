package response

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jwebster45206/npc-engine/pkg/actor"
)

func newScheduler(t *testing.T, draw float64, events *eventLog) (*FollowUpScheduler, *actor.Character, *actor.Character) {
	t.Helper()
	office, alice, bob := newOffice(t)
	s := NewFollowUpScheduler(office, events, fixedRand{f: draw}, rate.NewLimiter(rate.Inf, 1), testLogger())
	s.SetClock(func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) })
	return s, alice, bob
}

func TestFollowUp_MaybeSchedule(t *testing.T) {
	tests := []struct {
		name   string
		traits []string
		draw   float64
		want   bool
	}{
		{"extrovert rolls low", []string{"Extroverted"}, 0.1, true},
		{"extrovert rolls high", []string{"Extroverted"}, 0.5, false},
		{"anxious", []string{"Anxious"}, 0.0, true},
		{"no follow-up traits", []string{"Grumpy"}, 0.0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, alice, _ := newScheduler(t, tt.draw, &eventLog{})
			alice.Personality = tt.traits

			_, got := s.MaybeSchedule(alice, "bob")
			if got != tt.want {
				t.Errorf("expected scheduled=%v, got %v", tt.want, got)
			}
			if tt.want && len(s.Pending()) != 1 {
				t.Errorf("expected 1 pending follow-up, got %d", len(s.Pending()))
			}
		})
	}
}

func TestFollowUp_RateLimited(t *testing.T) {
	office, alice, _ := newOffice(t)
	alice.Personality = []string{"Talkative"}
	s := NewFollowUpScheduler(office, nil, fixedRand{}, rate.NewLimiter(0, 1), testLogger())

	if _, ok := s.MaybeSchedule(alice, "bob"); !ok {
		t.Fatal("expected first follow-up to be scheduled")
	}
	if _, ok := s.MaybeSchedule(alice, "bob"); ok {
		t.Error("expected second follow-up to be rate limited")
	}
}

func TestFollowUp_Cancel(t *testing.T) {
	s, alice, bob := newScheduler(t, 0, &eventLog{})
	first := s.Schedule(alice.ID, bob.ID, "Oh, and one more thing!", time.Second)
	s.Schedule(alice.ID, bob.ID, "Anyway, where was I?", 2*time.Second)
	s.Schedule(bob.ID, alice.ID, "Was that okay?", 3*time.Second)

	if !s.Cancel(first) {
		t.Error("expected Cancel to find the follow-up")
	}
	if s.Cancel(first) {
		t.Error("expected second Cancel to report nothing removed")
	}
	if s.Cancel(uuid.New()) {
		t.Error("expected Cancel of an unknown id to fail")
	}
	if n := s.CancelFor(alice.ID); n != 1 {
		t.Errorf("expected 1 cancelled for alice, got %d", n)
	}
	pending := s.Pending()
	if len(pending) != 1 || pending[0].CharacterID != bob.ID {
		t.Errorf("expected only bob's follow-up to remain, got %+v", pending)
	}
}

func TestFollowUp_RunDue(t *testing.T) {
	events := &eventLog{}
	s, alice, bob := newScheduler(t, 0, events)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s.Schedule(alice.ID, bob.ID, "Oh, and one more thing!", time.Second)
	s.Schedule(bob.ID, alice.ID, "Was that okay?", time.Second)
	s.Schedule("ghost", alice.ID, "Boo.", time.Second)
	s.Schedule(alice.ID, bob.ID, "Later.", time.Hour)

	bob.StartAction(actor.NewActionIntent(actor.ActionRest, ""), actor.StateBusy, start)

	if n := s.RunDue(context.Background(), start.Add(5*time.Second)); n != 1 {
		t.Errorf("expected 1 delivered, got %d", n)
	}
	if !hasMemory(alice, "I added: Oh, and one more thing!") {
		t.Error("expected alice to remember her follow-up")
	}
	for _, m := range bob.ShortTermMemory() {
		if strings.HasPrefix(m.Content, "I added:") {
			t.Errorf("busy character should not follow up, got %q", m.Content)
		}
	}
	if got := events.names(); len(got) != 1 || got[0] != EventFollowUp {
		t.Errorf("expected one follow_up event, got %v", got)
	}
	if pending := s.Pending(); len(pending) != 1 || pending[0].Line != "Later." {
		t.Errorf("expected only the later follow-up to remain, got %+v", pending)
	}
}

func TestProcess_DialogueSchedulesFollowUp(t *testing.T) {
	office, alice, _ := newOffice(t)
	alice.Personality = []string{"Extroverted"}
	followUps := NewFollowUpScheduler(office, nil, fixedRand{}, nil, testLogger())
	p, err := NewProcessor(Options{
		World:     office,
		Generator: &stubGenerator{line: "Hey!"},
		FollowUps: followUps,
		Rand:      fixedRand{},
		Logger:    testLogger(),
	})
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}

	if !p.ProcessResponse(context.Background(), alice, Say("bob", "Morning"), nil) {
		t.Fatal("expected dialogue to succeed")
	}
	pending := followUps.Pending()
	if len(pending) != 1 {
		t.Fatalf("expected 1 follow-up, got %d", len(pending))
	}
	if pending[0].TargetID != "bob" || pending[0].Line != followUpLines["Extroverted"][0] {
		t.Errorf("unexpected follow-up %+v", pending[0])
	}
}
