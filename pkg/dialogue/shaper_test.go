package dialogue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/npc-engine/pkg/analysis"
	"github.com/jwebster45206/npc-engine/pkg/conversation"
)

func TestShaper_Shape(t *testing.T) {
	quiet := NewShaper(fixedRand{f: 0.99})

	tests := []struct {
		name   string
		traits []string
		in     string
		want   string
	}{
		{"no traits only capitalizes", nil, "sure thing.", "Sure thing."},
		{"grumpy drops enthusiasm", []string{"Grumpy"}, "Oh my gosh, yes! That's great!", "Yes. That's great."},
		{"introverted keeps first sentence", []string{"Introverted"}, "First sentence. Second one.", "First sentence."},
		{"extroverted exclaims", []string{"Extroverted"}, "That sounds fun.", "That sounds fun!"},
		{"formal expands contractions", []string{"Formal"}, "I can't go, it's late.", "I cannot go, it is late."},
		{"professional softens language", []string{"Professional"}, "That damn printer.", "That darn printer."},
		{"polite softens language", []string{"Polite"}, "That damn printer.", "That darn printer."},
		{"introverted runs before extroverted", []string{"Extroverted", "Introverted"}, "Hello there. How are you.", "Hello there!"},
		{"grumpy runs before introverted", []string{"Introverted", "Grumpy"}, "Wow! Great news. I love it.", "Great news."},
		{"empty stays empty", []string{"Extroverted"}, "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCharacter(t, "sam", tt.traits...)
			if tt.traits == nil {
				c = nil
			}
			if got := quiet.Shape(tt.in, c); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestShaper_Insertions(t *testing.T) {
	eager := NewShaper(fixedRand{f: 0})

	tests := []struct {
		name   string
		traits []string
		in     string
		want   string
	}{
		{"anxious hedges", []string{"Anxious"}, "Sure.", "Um, sure. I hope that's okay."},
		{"anxious keeps I", []string{"Anxious"}, "I can do it.", "Um, I can do it. I hope that's okay."},
		{"polite thanks", []string{"Polite"}, "Sounds good.", "Sounds good. Thank you."},
		{"polite does not double thanks", []string{"Polite"}, "Thanks, sounds good.", "Thanks, sounds good."},
		{"sarcastic", []string{"Sarcastic"}, "Another meeting.", "Another meeting. Great."},
		{"humorous quip", []string{"Humorous"}, "Sure.", "Sure. " + quips[0]},
		{"extroverted enthusiasm", []string{"Extroverted"}, "Sure.", "Oh, totally! Sure!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eager.Shape(tt.in, newCharacter(t, "sam", tt.traits...)); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRuleGenerator_Generate(t *testing.T) {
	rng := NewRand(21)
	conv := conversation.NewManager(conversation.DefaultConfig(), rng, testLogger())
	g := NewDefaultGenerator(rng, conv, testLogger())

	alice := newCharacter(t, "alice", "Extroverted")
	bob := newCharacter(t, "bob")

	reply, err := g.Generate(context.Background(), alice, "Did you catch the football game last night?", bob, nil)
	require.NoError(t, err)
	assert.Equal(t, PoolSports, reply.Pool)
	assert.Equal(t, "alice|bob", reply.Key)
	assert.NotEmpty(t, reply.Text)
	assert.Equal(t, analysis.TypeQuestion, reply.Analysis.Type)

	record, ok := conv.Get("alice|bob")
	require.True(t, ok)
	assert.Equal(t, 1, record.TurnCount)
	require.Len(t, record.Messages, 2)
	assert.Equal(t, "bob", record.Messages[0].Speaker)
	assert.Equal(t, "alice", record.Messages[1].Speaker)
	assert.Equal(t, reply.Text, record.Messages[1].Text)
	last, ok := record.LastRoute()
	require.True(t, ok)
	assert.Equal(t, string(PoolSports), last.Pool)

	opener, err := g.GenerateResponse(context.Background(), alice, "", bob, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, opener)
	record, _ = conv.Get("alice|bob")
	assert.Equal(t, 1, record.TurnCount, "openers do not count as turns")
}

func TestRuleGenerator_Errors(t *testing.T) {
	rng := NewRand(1)
	g := NewDefaultGenerator(rng, conversation.NewManager(conversation.DefaultConfig(), rng, testLogger()), testLogger())

	_, err := g.GenerateResponse(context.Background(), nil, "hello", nil, nil)
	assert.ErrorIs(t, err, ErrNoCharacter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.GenerateResponse(ctx, newCharacter(t, "alice"), "hello", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRuleGenerator_Reproducible(t *testing.T) {
	run := func() []string {
		rng := NewRand(77)
		g := NewDefaultGenerator(rng, conversation.NewManager(conversation.DefaultConfig(), rng, testLogger()), testLogger())
		alice := newCharacter(t, "alice", "Humorous", "Polite")
		bob := newCharacter(t, "bob")
		var lines []string
		for _, msg := range []string{"Hey!", "Want to grab lunch?", "The deadline is tomorrow", "Bye, talk later!"} {
			line, err := g.GenerateResponse(context.Background(), alice, msg, bob, nil)
			require.NoError(t, err)
			lines = append(lines, line)
		}
		return lines
	}
	assert.Equal(t, run(), run())
}
