package dialogue

import (
	"log/slog"
	"strings"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/analysis"
)

// GeneralPriority sorts the general pool after every specialized pool.
const GeneralPriority = 100

// GeneralPool answers anything no specialized pool claims, including
// conversation openers.
type GeneralPool struct {
	template
}

// NewGeneralPool creates the general pool.
func NewGeneralPool(rng Rand, logger *slog.Logger) *GeneralPool {
	gp := &GeneralPool{}
	gp.template = template{
		name:      PoolGeneral,
		priority:  GeneralPriority,
		rng:       orRand(rng),
		logger:    orDefault(logger),
		bank:      generalBank,
		topicKey:  "statement",
		fallbacks: []string{"I see.", "That's interesting.", "Huh, okay."},
		detect:    detectGeneral,
		personalityKey: func(c *actor.Character) string {
			if c.Mood().IsNegative() && c.HasAnyTrait("Grumpy", "Anxious") {
				return "distracted"
			}
			return ""
		},
	}
	gp.template.overlay = gp.greetingOverlay
	return gp
}

// Matches always reports true.
func (gp *GeneralPool) Matches(analysis.Analysis, string) bool { return true }

func detectGeneral(message string, a analysis.Analysis) triggers {
	t := triggers{flags: map[string]bool{}}
	switch {
	case strings.TrimSpace(message) == "":
		t.key = "opener"
	case a.Type == analysis.TypeConversationEnder:
		t.key = "farewell"
	case a.Type == analysis.TypeGreeting:
		t.key = "greeting"
	case a.Cues.Gratitude:
		t.key = "gratitude"
	case a.Cues.Apology:
		t.key = "apology"
	case a.Type == analysis.TypeQuestion:
		t.key = "question"
	case a.Type == analysis.TypeRequest:
		t.key = "request"
	}
	return t
}

// greetingOverlay adds the speaker's name to greetings from characters
// who are warm about it.
func (gp *GeneralPool) greetingOverlay(line string, t triggers, c *actor.Character, ctx Context) string {
	if t.key != "greeting" || c == nil || ctx.Speaker == nil || ctx.Speaker.Name == "" {
		return line
	}
	if !c.HasAnyTrait("Extroverted", "Polite", "Friendly") {
		return line
	}
	return "Hi " + ctx.Speaker.Name + "! " + line
}

var generalBank = bank{
	openings: map[string][]phrase{
		"opener": {
			p("Hey."),
			p("Oh, hi."),
			pt("Hey there!", "Extroverted", "Friendly"),
			pt("Hm.", "Introverted", "Grumpy"),
		},
		"greeting": {
			p("Hey!"),
			p("Hi."),
			pt("Good morning.", "Formal", "Professional"),
			pt("Oh. Hi.", "Grumpy", "Introverted"),
		},
		"farewell": {
			p("Okay."),
			p("Alright."),
		},
		"gratitude": {
			p("Of course."),
			p("No problem."),
			pt("Anytime!", "Extroverted", "Helpful"),
		},
		"apology": {
			p("Oh, don't worry about it."),
			p("It's fine, really."),
			pt("Whatever.", "Grumpy"),
		},
		"question": {
			p("Hmm."),
			p("Good question."),
			pt("Let me think about that.", "Analytical", "Formal"),
		},
		"request": {
			p("Sure."),
			p("I can try."),
			pt("If I must.", "Grumpy", "Lazy"),
		},
		"distracted": {
			p("Sorry."),
			p("Hm?"),
		},
		anyKey: {
			p("Oh,"),
			p("Well,"),
		},
	},
	cores: map[string][]phrase{
		"opener": {
			p("I didn't see you come into {place}"),
			p("how's your day going so far"),
			pt("it's good to see a friendly face in {place}", "Extroverted", "Friendly"),
		},
		"greeting": {
			p("good to see you"),
			p("how's it going"),
			pt("I was hoping someone would stop by", "Extroverted", "Lonely"),
		},
		"farewell": {
			p("talk to you later"),
			p("catch you around"),
			pt("have a good one", "Polite", "Friendly"),
		},
		"gratitude": {
			p("happy to help"),
			p("it was nothing"),
		},
		"apology": {
			p("these things happen"),
			p("no harm done"),
		},
		"question": {
			p("I'm honestly not sure"),
			p("I'd have to check on that"),
			p("I think so, but don't quote me"),
		},
		"request": {
			p("let me see what I can do"),
			p("give me a minute and I'll get on it"),
		},
		"distracted": {
			p("my head is somewhere else right now"),
			p("I'm a little all over the place today"),
		},
		"statement": {
			p("that makes sense"),
			p("I hadn't thought of it that way"),
			p("fair point"),
			pt("interesting, go on", "Curious", "Extroverted"),
		},
	},
	transitions: []phrase{
		p(""),
		p(""),
		p("Anyway."),
	},
	closings: map[string][]phrase{
		"farewell": {
			p("See you."),
			p("Bye for now."),
		},
		"opener": {
			p("What's up?"),
			p("Need anything?"),
		},
		anyKey: {
			p("What about you?"),
			p("Anyway."),
			pt("Tell me more!", "Extroverted", "Curious"),
			pt("Okay.", "Introverted", "Grumpy"),
		},
	},
}
