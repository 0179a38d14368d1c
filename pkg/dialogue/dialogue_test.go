package dialogue

import (
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/analysis"
	"github.com/jwebster45206/npc-engine/pkg/conversation"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fixedRand always returns the same draw and the first index.
type fixedRand struct{ f float64 }

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) Intn(int) int     { return 0 }

func newCharacter(t *testing.T, id string, traits ...string) *actor.Character {
	t.Helper()
	c, err := actor.NewCharacter(&actor.CharacterSpec{ID: id, Name: strings.ToUpper(id[:1]) + id[1:], Personality: traits})
	if err != nil {
		t.Fatalf("failed to create character: %v", err)
	}
	return c
}

func TestFootballCorrectionChance(t *testing.T) {
	tests := []struct {
		name   string
		traits []string
		want   float64
	}{
		{"no traits", nil, 0.3},
		{"purist", []string{"European"}, 0.6},
		{"purist and pedantic", []string{"SoccerFan", "Pedantic"}, 0.8},
		{"everything leaning in", []string{"Purist", "Argumentative", "Passionate"}, 0.95},
		{"diplomatic purist", []string{"European", "Diplomatic"}, 0.4},
		{"polite only", []string{"Polite"}, 0.1},
		{"polite and diplomatic count once", []string{"Polite", "Diplomatic"}, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCharacter(t, "pat", tt.traits...)
			if got := FootballCorrectionChance(c); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %.2f, got %.2f", tt.want, got)
			}
		})
	}

	if got := FootballCorrectionChance(nil); got != FootballCorrectionBase {
		t.Errorf("expected base rate for nil character, got %.2f", got)
	}
}

func TestSportsPool_FootballCorrection(t *testing.T) {
	const message = "Did you watch the football game last night?"
	ctx := Context{Analysis: analysis.Analyze(message)}

	tests := []struct {
		name    string
		draw    float64
		traits  []string
		correct bool
	}{
		{"purist under the draw", 0, []string{"European"}, true},
		{"purist over the draw", 0.99, []string{"European"}, false},
		{"passionate without purist leaning", 0, []string{"Passionate"}, false},
		{"pedantic leans in", 0, []string{"Pedantic"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewSportsPool(fixedRand{f: tt.draw}, testLogger())
			got := pool.GenerateResponse(message, newCharacter(t, "pat", tt.traits...), ctx)
			if corrected := strings.HasPrefix(got, footballCorrections[0]); corrected != tt.correct {
				t.Errorf("expected correction=%v, got %q", tt.correct, got)
			}
		})
	}
}

func TestPools_AlwaysProduceALine(t *testing.T) {
	rng := NewRand(11)
	pools := append(NewRouter(rng, testLogger()).Pools(), NewGeneralPool(rng, testLogger()))
	characters := []*actor.Character{
		nil,
		newCharacter(t, "ann"),
		newCharacter(t, "bo", "Grumpy", "Introverted"),
		newCharacter(t, "cy", "Extroverted", "Humorous", "Foodie"),
		newCharacter(t, "di", "Formal", "Professional", "Polite"),
		newCharacter(t, "ed", "European", "Pedantic", "Anxious", "Sarcastic"),
	}
	messages := []string{
		"",
		"Did you see the game?",
		"I'm so hungry, want to grab pizza?",
		"The deadline is urgent, can you help me?",
		"I'm feeling really sad today",
		"Haha that meme was hilarious",
		"Bye, talk later!",
		"Hello!",
	}

	for _, pool := range pools {
		for _, c := range characters {
			for _, msg := range messages {
				for i := 0; i < 5; i++ {
					got := pool.GenerateResponse(msg, c, Context{Analysis: analysis.Analyze(msg)})
					if strings.TrimSpace(got) == "" {
						t.Fatalf("%s produced an empty line for %q", pool.Name(), msg)
					}
					if strings.Contains(got, "{") || strings.Contains(got, "  ") {
						t.Fatalf("%s produced an unfinished line %q", pool.Name(), got)
					}
				}
			}
		}
	}
}

func TestTemplate_FallbackOnEmptyBank(t *testing.T) {
	tp := &template{
		name:      "empty",
		rng:       fixedRand{},
		logger:    testLogger(),
		topicKey:  "casual",
		fallbacks: []string{"Safe line."},
	}
	if got := tp.GenerateResponse("anything", nil, Context{}); got != "Safe line." {
		t.Errorf("expected fallback line, got %q", got)
	}
}

func TestTidy(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Oh, hi.  how are you.  What's up?", "Oh, hi. How are you. What's up?"},
		{"Yes! great. . Anyway", "Yes! Great. Anyway"},
		{". leading", "leading"},
		{"Coffee? the coffee is bad .", "Coffee? The coffee is bad."},
	}
	for _, tt := range tests {
		if got := tidy(tt.in); got != tt.want {
			t.Errorf("tidy(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

type panicPool struct {
	name        PoolName
	panicMatch  bool
	panicAnswer bool
}

func (p panicPool) Name() PoolName { return p.name }
func (p panicPool) Priority() int  { return 0 }

func (p panicPool) Matches(analysis.Analysis, string) bool {
	if p.panicMatch {
		panic("matcher exploded")
	}
	return true
}

func (p panicPool) GenerateResponse(string, *actor.Character, Context) string {
	if p.panicAnswer {
		panic("pool exploded")
	}
	return ""
}

func TestRouter_Select(t *testing.T) {
	router := NewRouter(NewRand(3), testLogger())

	tests := []struct {
		message string
		want    PoolName
	}{
		{"Did you catch the football game last night?", PoolSports},
		{"Want to grab lunch before the meeting?", PoolFood},
		{"The quarterly report is due tomorrow", PoolWork},
		{"My dog learned a new trick this weekend", PoolPersonal},
		{"Haha that meme was hilarious", PoolBanter},
		{"Hmm, okay.", PoolGeneral},
		{"", PoolGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			res := router.Route(tt.message, nil, Context{}, nil)
			if res.Pool != tt.want {
				t.Errorf("expected %s, got %s", tt.want, res.Pool)
			}
			if res.Response == "" {
				t.Error("expected a response")
			}
		})
	}
}

func TestRouter_FallbackConfidence(t *testing.T) {
	router := NewRouter(NewRand(3), testLogger())
	res := router.Route("", nil, Context{}, nil)
	if res.Confidence != ConfidenceFallback {
		t.Errorf("expected fallback confidence, got %.2f", res.Confidence)
	}
	res = router.Route("Did you catch the football game last night?", nil, Context{}, nil)
	if res.Confidence < 0.6 {
		t.Errorf("expected matched confidence of at least 0.6, got %.2f", res.Confidence)
	}
}

func TestRouter_PersonalityBias(t *testing.T) {
	router := NewRouter(NewRand(5), testLogger())
	if res := router.Route("Hmm, okay.", newCharacter(t, "cy", "Extroverted"), Context{}, nil); res.Pool != PoolBanter {
		t.Errorf("expected extroverted small talk to go to banter, got %s", res.Pool)
	}
	if res := router.Route("Hmm, okay.", newCharacter(t, "bo", "Introverted"), Context{}, nil); res.Pool != PoolGeneral {
		t.Errorf("expected general, got %s", res.Pool)
	}
}

func TestRouter_Continuity(t *testing.T) {
	router := NewRouter(NewRand(5), testLogger())
	record := &conversation.Record{
		State:  conversation.StateActive,
		Routes: []conversation.RouteDecision{{Pool: string(PoolFood)}},
	}
	res := router.Route("Hmm, okay.", nil, Context{}, record)
	if res.Pool != PoolFood || res.Confidence != ConfidenceContinuity {
		t.Errorf("expected follow-up to stay with food, got %s (%.2f)", res.Pool, res.Confidence)
	}

	record.State = conversation.StateWindingDown
	if res := router.Route("Hmm, okay.", nil, Context{}, record); res.Pool != PoolGeneral {
		t.Errorf("expected no continuity once winding down, got %s", res.Pool)
	}
}

func TestRouter_RecoversFromPoolFailures(t *testing.T) {
	rng := NewRand(9)

	t.Run("panicking generator", func(t *testing.T) {
		router := NewRouterWithPools(rng, testLogger(), NewGeneralPool(rng, testLogger()), panicPool{name: "boom", panicAnswer: true})
		res := router.Route("hello there", nil, Context{}, nil)
		if res.Confidence != ConfidenceEmergency {
			t.Errorf("expected emergency confidence, got %.2f", res.Confidence)
		}
		found := false
		for _, line := range emergencyLines {
			if res.Response == line {
				found = true
			}
		}
		if !found {
			t.Errorf("expected an emergency line, got %q", res.Response)
		}
	})

	t.Run("nil random source", func(t *testing.T) {
		router := NewRouterWithPools(nil, testLogger(), NewGeneralPool(nil, testLogger()), panicPool{name: "boom", panicAnswer: true})
		res := router.Route("hello there", nil, Context{}, nil)
		if res.Confidence != ConfidenceEmergency || res.Response == "" {
			t.Errorf("expected an emergency line, got %q at %.2f", res.Response, res.Confidence)
		}
	})

	t.Run("empty generator", func(t *testing.T) {
		router := NewRouterWithPools(rng, testLogger(), NewGeneralPool(rng, testLogger()), panicPool{name: "quiet"})
		if res := router.Route("hello there", nil, Context{}, nil); res.Response == "" {
			t.Error("expected an emergency line for an empty reply")
		}
	})

	t.Run("panicking matcher", func(t *testing.T) {
		router := NewRouterWithPools(rng, testLogger(), NewGeneralPool(rng, testLogger()), panicPool{name: "boom", panicMatch: true})
		res := router.Route("hello there", nil, Context{}, nil)
		if res.Pool != PoolGeneral {
			t.Errorf("expected general after a matcher panic, got %s", res.Pool)
		}
	})
}

func TestNewRand_Reproducible(t *testing.T) {
	a, b := NewRand(42), NewRand(42)
	for i := 0; i < 20; i++ {
		if a.Intn(100) != b.Intn(100) || a.Float64() != b.Float64() {
			t.Fatal("expected identical sequences for identical seeds")
		}
	}
	if NewRand(1).Intn(0) != 0 {
		t.Error("expected Intn(0) to return 0")
	}
}
