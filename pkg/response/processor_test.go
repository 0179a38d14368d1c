package response

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/snapshot"
	"github.com/jwebster45206/npc-engine/pkg/world"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fixedRand struct{ f float64 }

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) Intn(int) int     { return 0 }

type stubGenerator struct {
	line  string
	err   error
	panic bool
	calls int
}

func (g *stubGenerator) GenerateResponse(_ context.Context, _ *actor.Character, _ string, _ *actor.Character, _ *snapshot.Snapshot) (string, error) {
	g.calls++
	if g.panic {
		panic("generator exploded")
	}
	return g.line, g.err
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) FireEvent(_ context.Context, name string, _ map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, name)
}

func (l *eventLog) names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// refusingWorld rejects every move and panics when asked to pick anything up.
type refusingWorld struct{ *world.Office }

func (refusingWorld) MoveCharacterTo(context.Context, *actor.Character, string) bool { return false }

func (refusingWorld) TakeObject(*actor.Character, string) error { panic("floor gave way") }

type fixture struct {
	office    *world.Office
	processor *Processor
	generator *stubGenerator
	events    *eventLog
	alice     *actor.Character
	bob       *actor.Character
	now       time.Time
}

func newOffice(t *testing.T) (*world.Office, *actor.Character, *actor.Character) {
	t.Helper()
	office := world.NewOffice()
	office.AddLocation(world.Location{ID: "desks", Name: "Desks", Type: world.LocationOpenPlan, Amenities: []string{"desk"}})
	office.AddLocation(world.Location{ID: "kitchen", Name: "Kitchen", Type: world.LocationKitchen, Center: actor.Position{X: 10, Y: 0}})
	office.AddLocation(world.Location{ID: "hall", Name: "Hallway", Type: world.LocationHallway, Center: actor.Position{X: 5, Y: 5}})
	office.AddObject(world.Object{ID: "stapler", Name: "Stapler", Location: "desks", Position: actor.Position{X: 1, Y: 1}, Portable: true})
	office.AddObject(world.Object{ID: "printer", Name: "Printer", Location: "desks", Position: actor.Position{X: 1, Y: 0}, Usable: true})

	alice, err := actor.NewCharacter(&actor.CharacterSpec{
		ID:       "alice",
		Name:     "Alice",
		Skills:   map[string]int{"writing": 3},
		Task:     &actor.Task{ID: "report", Name: "Quarterly report", RequiredLocation: "desks", RequiredSkill: "writing"},
		Location: "desks",
		MaxQueue: 2,
	})
	require.NoError(t, err)
	bob, err := actor.NewCharacter(&actor.CharacterSpec{
		ID:       "bob",
		Name:     "Bob",
		Location: "desks",
		Position: actor.Position{X: 1, Y: 0},
	})
	require.NoError(t, err)
	office.AddCharacter(alice)
	office.AddCharacter(bob)
	return office, alice, bob
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	office, alice, bob := newOffice(t)
	f := &fixture{
		office:    office,
		generator: &stubGenerator{line: "Sure did."},
		events:    &eventLog{},
		alice:     alice,
		bob:       bob,
		now:       time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	p, err := NewProcessor(Options{
		World:     office,
		Generator: f.generator,
		Events:    f.events,
		Rand:      fixedRand{},
		Logger:    testLogger(),
	})
	require.NoError(t, err)
	p.SetClock(func() time.Time { return f.now })
	f.processor = p
	return f
}

func hasMemory(c *actor.Character, content string) bool {
	for _, m := range c.ShortTermMemory() {
		if m.Content == content {
			return true
		}
	}
	return false
}

func TestNewProcessor_RequiresWorldAndGenerator(t *testing.T) {
	_, err := NewProcessor(Options{Generator: &stubGenerator{}})
	assert.Error(t, err)
	_, err = NewProcessor(Options{World: world.NewOffice()})
	assert.Error(t, err)
}

func TestProcess_WorkOn(t *testing.T) {
	f := newFixture(t)

	res := f.processor.Process(context.Background(), f.alice, Act(actor.NewActionIntent(actor.ActionWorkOn, "")), nil)

	require.True(t, res.Success)
	assert.Equal(t, OutcomeExecuted, res.Outcome)
	assert.InDelta(t, 16.0, f.alice.Task().Progress, 1e-9)
	assert.True(t, f.alice.IsBusy())
	assert.Equal(t, actor.StateWorking, f.alice.State())

	needs := f.alice.Needs()
	assert.InDelta(t, 7.0, needs.Energy, 1e-9)
	assert.InDelta(t, 3.0, needs.Stress, 1e-9)

	history := f.alice.History()
	require.Len(t, history, 1)
	assert.Equal(t, actor.ActionWorkOn, history[0].Intent.Type)
	assert.Equal(t, "desks", history[0].Location)
	assert.Equal(t, f.now, history[0].StartedAt)
	assert.Contains(t, f.events.names(), EventActionStarted)
}

func TestProcess_WorkOnCompletesTask(t *testing.T) {
	f := newFixture(t)
	f.alice.AdvanceTask(90)

	res := f.processor.Process(context.Background(), f.alice, Act(actor.NewActionIntent(actor.ActionWorkOn, "")), nil)

	require.True(t, res.Success)
	assert.True(t, f.alice.Task().Done())
	assert.Contains(t, f.events.names(), EventTaskCompleted)
}

func TestProcess_ConflictQueues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.True(t, f.processor.ProcessResponse(ctx, f.alice, Act(actor.NewActionIntent(actor.ActionWorkOn, "")), nil))

	res := f.processor.Process(ctx, f.alice, Act(actor.NewActionIntent(actor.ActionMoveTo, "kitchen")), nil)
	assert.True(t, res.Success)
	assert.Equal(t, OutcomeQueued, res.Outcome)
	assert.Equal(t, 1, f.alice.QueueLen())
	assert.Equal(t, "desks", f.alice.Location(), "queued move should not run yet")
	assert.Equal(t, actor.ActionWorkOn, f.alice.ActiveAction().Intent.Type)

	require.True(t, f.processor.ProcessResponse(ctx, f.alice, Act(actor.NewActionIntent(actor.ActionMoveTo, "hall")), nil))
	res = f.processor.Process(ctx, f.alice, Act(actor.NewActionIntent(actor.ActionMoveTo, "kitchen")), nil)
	assert.False(t, res.Success)
	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrQueueFull)
	assert.Equal(t, 2, f.alice.QueueLen())

	stats := f.processor.Stats()
	assert.Equal(t, 2, stats.Queued)
	assert.Equal(t, 1, stats.Rejected)
	assert.Contains(t, f.events.names(), EventActionRejected)
}

func TestProcess_Malformed(t *testing.T) {
	tests := []struct {
		name string
		resp Response
	}{
		{"missing type", Response{}},
		{"unknown type", Response{Type: "DANCE"}},
		{"action without intent", Response{Type: TypeAction}},
		{"unknown action", Response{Type: TypeAction, Action: &actor.ActionIntent{Type: "JUGGLE"}}},
		{"empty mixed", Response{Type: TypeMixed}},
		{"negative duration", Act(actor.ActionIntent{Type: actor.ActionRest, Duration: -time.Second})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			before := f.alice.View()

			res := f.processor.Process(context.Background(), f.alice, tt.resp, nil)

			assert.False(t, res.Success)
			assert.Equal(t, OutcomeMalformed, res.Outcome)
			assert.ErrorIs(t, res.Err, ErrMalformedResponse)
			assert.Equal(t, before, f.alice.View())
			assert.Empty(t, f.events.names())
			assert.Zero(t, f.generator.calls)
			assert.Equal(t, 1, f.processor.Stats().Malformed)
		})
	}
}

func TestProcess_NilCharacter(t *testing.T) {
	f := newFixture(t)
	res := f.processor.Process(context.Background(), nil, Idle("nothing"), nil)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrUnknownCharacter)
}

func TestProcess_ValidationFailureIdles(t *testing.T) {
	tests := []struct {
		name   string
		intent actor.ActionIntent
	}{
		{"not portable", actor.NewActionIntent(actor.ActionPickUp, "printer")},
		{"nothing held", actor.NewActionIntent(actor.ActionPutDown, "")},
		{"no coffee at desks", actor.NewActionIntent(actor.ActionDrinkCoffee, "")},
		{"already here", actor.NewActionIntent(actor.ActionMoveTo, "desks")},
		{"unknown place", actor.NewActionIntent(actor.ActionMoveTo, "moon")},
		{"unknown listener", actor.NewActionIntent(actor.ActionTalkTo, "zed")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			res := f.processor.Process(context.Background(), f.alice, Act(tt.intent), nil)

			assert.False(t, res.Success)
			assert.Equal(t, OutcomeRecovered, res.Outcome)
			assert.False(t, f.alice.IsBusy())
			assert.Equal(t, actor.StateIdle, f.alice.State())
			assert.Contains(t, f.events.names(), EventRecovery)
		})
	}
}

func TestProcess_ValidationFailureKeepsActiveAction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	work := actor.NewActionIntent(actor.ActionWorkOn, "")
	require.True(t, f.processor.ProcessResponse(ctx, f.alice, Act(work), nil))

	ok := f.processor.ProcessResponse(ctx, f.alice, Act(actor.NewActionIntent(actor.ActionPickUp, "printer")), nil)

	assert.False(t, ok)
	require.True(t, f.alice.IsBusy())
	assert.Equal(t, work.ID, f.alice.ActiveAction().Intent.ID)
	assert.Zero(t, f.alice.QueueLen())
}

func TestProcess_ExecutionFailureClearsBusy(t *testing.T) {
	office, alice, bob := newOffice(t)
	gen := &stubGenerator{line: "Never mind then."}
	events := &eventLog{}
	p, err := NewProcessor(Options{World: refusingWorld{office}, Generator: gen, Events: events, Rand: fixedRand{}, Logger: testLogger()})
	require.NoError(t, err)
	ctx := context.Background()

	res := p.Process(ctx, alice, Act(actor.NewActionIntent(actor.ActionMoveTo, "kitchen")), nil)
	assert.Equal(t, OutcomeRecovered, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrExecution)
	assert.False(t, alice.IsBusy())
	assert.Equal(t, "desks", alice.Location())
	assert.Empty(t, alice.History())

	res = p.Process(ctx, alice, Act(actor.NewActionIntent(actor.ActionPickUp, "stapler")), nil)
	assert.Equal(t, OutcomeRecovered, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrExecution)
	assert.False(t, alice.IsBusy())

	mixed := Response{Type: TypeMixed, Action: &actor.ActionIntent{Type: actor.ActionMoveTo, Target: "kitchen"}, Target: bob.ID, Dialogue: "Lunch?"}
	res = p.Process(ctx, alice, mixed, nil)
	assert.False(t, res.Success)
	assert.Equal(t, "Never mind then.", res.Line)
	assert.False(t, alice.IsBusy())
	assert.Equal(t, 3, p.Stats().Recovered)

	// the dialogue half still lands
	assert.True(t, hasMemory(alice, "Bob said: Lunch?"))
	assert.True(t, hasMemory(alice, "I told Bob: Never mind then."))
	assert.Contains(t, events.names(), EventDialogue)
}

func TestProcess_Dialogue(t *testing.T) {
	f := newFixture(t)

	res := f.processor.Process(context.Background(), f.alice, Say("bob", "Did you watch the game?"), nil)

	require.True(t, res.Success)
	assert.Equal(t, "Sure did.", res.Line)
	assert.True(t, hasMemory(f.alice, "Bob said: Did you watch the game?"))
	assert.True(t, hasMemory(f.alice, "I told Bob: Sure did."))
	assert.Contains(t, f.events.names(), EventDialogue)
	assert.False(t, f.alice.IsBusy())
}

func TestProcess_DialogueFallback(t *testing.T) {
	tests := []struct {
		name string
		gen  *stubGenerator
	}{
		{"error", &stubGenerator{err: errors.New("router down")}},
		{"empty", &stubGenerator{}},
		{"panic", &stubGenerator{panic: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			office, alice, _ := newOffice(t)
			p, err := NewProcessor(Options{World: office, Generator: tt.gen, Rand: fixedRand{}, Logger: testLogger()})
			require.NoError(t, err)

			res := p.Process(context.Background(), alice, Say("bob", "Hello"), nil)

			assert.True(t, res.Success)
			assert.Equal(t, fallbackLines[0], res.Line)
			assert.Equal(t, fallbackLines[0], p.GenerateResponse(context.Background(), alice, "Hello", nil, nil))
		})
	}
}

func TestProcess_DialogueUnknownTarget(t *testing.T) {
	f := newFixture(t)

	res := f.processor.Process(context.Background(), f.alice, Say("zed", "Hi"), nil)

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrUnknownCharacter)
	assert.Zero(t, f.generator.calls)
	assert.Equal(t, actor.StateIdle, f.alice.State())
}

func TestProcess_Mixed(t *testing.T) {
	f := newFixture(t)
	mixed := Response{
		Type:     TypeMixed,
		Action:   &actor.ActionIntent{Type: actor.ActionMoveTo, Target: "kitchen"},
		Target:   "bob",
		Dialogue: "Coffee?",
	}

	res := f.processor.Process(context.Background(), f.alice, mixed, nil)

	require.True(t, res.Success)
	assert.Equal(t, "kitchen", f.alice.Location())
	assert.Equal(t, actor.StateMoving, f.alice.State())
	assert.Equal(t, "Sure did.", res.Line)
	names := f.events.names()
	assert.Contains(t, names, EventActionStarted)
	assert.Contains(t, names, EventDialogue)
}

func TestProcess_Idle(t *testing.T) {
	f := newFixture(t)

	res := f.processor.Process(context.Background(), f.alice, Idle("nothing to do"), nil)
	assert.True(t, res.Success)
	assert.Equal(t, OutcomeIdle, res.Outcome)

	res = f.processor.Process(context.Background(), f.alice, Act(actor.ActionIntent{Type: actor.ActionIdle}), nil)
	assert.True(t, res.Success)
	assert.Equal(t, OutcomeIdle, res.Outcome)
	assert.False(t, f.alice.IsBusy())
}

func TestProcess_PickUpAndThrow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.True(t, f.processor.ProcessResponse(ctx, f.alice, Act(actor.NewActionIntent(actor.ActionPickUp, "stapler")), nil))
	assert.Equal(t, "stapler", f.alice.HeldItem())
	f.processor.CompleteAction(ctx, f.alice)

	require.True(t, f.processor.ProcessResponse(ctx, f.alice, Act(actor.NewActionIntent(actor.ActionThrow, "")), nil))
	assert.Empty(t, f.alice.HeldItem())
	obj, ok := f.office.GetObject("stapler")
	require.True(t, ok)
	assert.Equal(t, "desks", obj.Location)
	assert.Contains(t, f.events.names(), EventObjectThrown)
}

func TestCompleteAction_DrainsQueue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.True(t, f.processor.ProcessResponse(ctx, f.alice, Act(actor.NewActionIntent(actor.ActionWorkOn, "")), nil))
	require.True(t, f.processor.ProcessResponse(ctx, f.alice, Act(actor.NewActionIntent(actor.ActionMoveTo, "kitchen")), nil))

	assert.True(t, f.processor.CompleteAction(ctx, f.alice))

	assert.Equal(t, "kitchen", f.alice.Location())
	assert.Equal(t, actor.ActionMoveTo, f.alice.ActiveAction().Intent.Type)
	assert.Zero(t, f.alice.QueueLen())
	assert.Equal(t, 1, f.processor.Stats().Completed)

	f.processor.CompleteAction(ctx, f.alice)
	assert.False(t, f.processor.CompleteAction(ctx, f.alice), "nothing left to complete")
}

func TestCompleteAction_SkipsStaleQueuedAction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.True(t, f.processor.ProcessResponse(ctx, f.alice, Act(actor.NewActionIntent(actor.ActionWorkOn, "")), nil))
	require.True(t, f.processor.ProcessResponse(ctx, f.alice, Act(actor.NewActionIntent(actor.ActionMoveTo, "kitchen")), nil))
	// valid when queued, but alice will already be in the kitchen
	require.True(t, f.processor.ProcessResponse(ctx, f.alice, Act(actor.NewActionIntent(actor.ActionMoveTo, "kitchen")), nil))

	f.processor.CompleteAction(ctx, f.alice)
	require.Equal(t, actor.ActionMoveTo, f.alice.ActiveAction().Intent.Type)
	assert.Equal(t, 1, f.alice.QueueLen())

	f.processor.CompleteAction(ctx, f.alice)
	assert.False(t, f.alice.IsBusy())
	assert.Zero(t, f.alice.QueueLen())
	assert.Equal(t, 1, f.processor.Stats().Recovered)
}

func TestProcess_EventSinkPanicIsContained(t *testing.T) {
	office, alice, _ := newOffice(t)
	sink := world.EventSinkFunc(func(context.Context, string, map[string]any) { panic("sink down") })
	p, err := NewProcessor(Options{World: office, Generator: &stubGenerator{line: "ok"}, Events: sink, Logger: testLogger()})
	require.NoError(t, err)

	assert.True(t, p.ProcessResponse(context.Background(), alice, Act(actor.NewActionIntent(actor.ActionRest, "")), nil))
	assert.True(t, alice.IsBusy())
}

func TestParseResponse(t *testing.T) {
	r, err := ParseResponse([]byte(`{"type":"ACTION","action":{"type":"REST"}}`))
	require.NoError(t, err)
	require.NotNil(t, r.Action)
	assert.Equal(t, actor.DefaultDuration(actor.ActionRest), r.Action.Duration)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", r.Action.ID.String())

	_, err = ParseResponse([]byte(`{"type":`))
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = ParseResponse([]byte(`{"type":"MIXED"}`))
	assert.ErrorIs(t, err, ErrMalformedResponse)

	r, err = ParseResponse([]byte(`{"type":"DIALOGUE","target":"bob","dialogue":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeDialogue, r.Type)
	assert.Equal(t, "hi", r.Dialogue)
}
