package dialogue

import (
	"log/slog"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/analysis"
)

var (
	banterVocabulary = keywordMatcher(
		"lol", "haha", "lmao", "joke", "funny", "hilarious", "movie", "show", "series", "episode",
		"netflix", "music", "concert", "podcast", "weather", "rain", "snow", "sunny", "hot", "cold",
		"party", "happy hour", "gossip", "drama", "meme",
	)
	weatherRe       = keywordMatcher("weather", "rain", "raining", "snow", "sunny", "hot", "cold", "freezing", "humid", "storm")
	entertainmentRe = keywordMatcher("movie", "show", "series", "episode", "netflix", "music", "concert", "podcast", "album", "book")
	gossipRe        = keywordMatcher("gossip", "drama", "heard that", "did you hear", "rumor", "apparently", "happy hour", "party")
)

// BanterPool handles jokes, small talk and light office chatter.
type BanterPool struct {
	template
}

// NewBanterPool creates the banter pool.
func NewBanterPool(rng Rand, logger *slog.Logger) *BanterPool {
	bp := &BanterPool{}
	bp.template = template{
		name:      PoolBanter,
		priority:  5,
		rng:       orRand(rng),
		logger:    orDefault(logger),
		bank:      banterBank,
		topicKey:  "casual",
		fallbacks: []string{"Ha, fair enough.", "You're not wrong.", "Classic office life."},
		detect:    detectBanter,
		personalityKey: func(c *actor.Character) string {
			switch {
			case c.HasAnyTrait("Humorous"):
				return "joke"
			case c.HasAnyTrait("Sarcastic"):
				return "sarcasm"
			case c.HasAnyTrait("Extroverted", "Gossip"):
				return "gossip"
			}
			return ""
		},
	}
	bp.template.overlay = bp.laughOverlay
	return bp
}

func (bp *BanterPool) Matches(a analysis.Analysis, message string) bool {
	return a.Cues.Humor || a.Cues.Sarcasm || a.Cues.Compliment ||
		a.HasTopic(analysis.TopicEntertainment) ||
		a.HasTopic(analysis.TopicWeather) ||
		a.HasTopic(analysis.TopicSocial) ||
		banterVocabulary.MatchString(message)
}

func detectBanter(message string, a analysis.Analysis) triggers {
	t := triggers{flags: map[string]bool{}}
	t.flags["humor"] = a.Cues.Humor
	switch {
	case a.Cues.Compliment:
		t.key = "compliment"
	case a.Cues.Sarcasm:
		t.key = "sarcasm"
	case a.Cues.Humor:
		t.key = "joke"
	case weatherRe.MatchString(message) || a.HasTopic(analysis.TopicWeather):
		t.key = "weather"
	case entertainmentRe.MatchString(message) || a.HasTopic(analysis.TopicEntertainment):
		t.key = "entertainment"
	case gossipRe.MatchString(message) || a.HasTopic(analysis.TopicSocial):
		t.key = "gossip"
	}
	return t
}

// laughOverlay has characters who enjoy a joke react to one before replying.
func (bp *BanterPool) laughOverlay(line string, t triggers, c *actor.Character, _ Context) string {
	if !t.flag("humor") || c == nil {
		return line
	}
	switch {
	case c.HasAnyTrait("Humorous", "Extroverted"):
		return pickString(bp.rng, []string{"Haha!", "Ha, good one!", "Okay, that got me."}) + " " + line
	case c.HasAnyTrait("Grumpy"):
		return "Hilarious. " + line
	}
	return line
}

var banterBank = bank{
	openings: map[string][]phrase{
		"joke": {
			p("Ha!"),
			p("Oh, stop."),
			pt("Okay, okay.", "Humorous"),
		},
		"sarcasm": {
			p("Oh, sure."),
			p("Right."),
			pt("Wow, groundbreaking.", "Sarcastic"),
		},
		"compliment": {
			p("Aw, thanks!"),
			p("Oh, stop it."),
			pt("Thank you, that's very kind.", "Polite", "Formal"),
			pt("Finally, someone noticed.", "Sarcastic", "Humorous"),
		},
		"weather": {
			p("I know, right?"),
			pt("Don't get me started.", "Grumpy"),
		},
		"entertainment": {
			p("Oh, I've heard about that."),
			pi("Oh, I love that!", IntensityHigh),
		},
		"gossip": {
			p("Ooh."),
			pt("Wait, tell me everything.", "Extroverted", "Gossip"),
			pt("I don't want to know.", "Introverted", "Professional"),
		},
		anyKey: {
			p("Ha,"),
			p("Well,"),
		},
	},
	cores: map[string][]phrase{
		"joke": {
			p("you should do stand-up at the next all-hands"),
			p("that's the best thing I've heard all day"),
			pt("I'd laugh harder but the printer already used up my patience", "Humorous", "Sarcastic"),
		},
		"sarcasm": {
			p("because that always goes so well"),
			p("what could possibly go wrong"),
		},
		"compliment": {
			p("you just made my day"),
			p("I'll take that, thanks"),
		},
		"weather": {
			p("the weather has been all over the place lately"),
			p("I forgot my umbrella again, naturally"),
			pt("at least the office has no windows to remind me", "Grumpy", "Sarcastic"),
		},
		"entertainment": {
			p("I keep meaning to start it"),
			p("I binged the whole thing last weekend"),
			pt("no spoilers, I'm only halfway through", "Anxious", "Polite"),
		},
		"gossip": {
			p("I heard something about that too"),
			p("this office never runs out of drama"),
		},
		"casual": {
			p("never a dull moment around here"),
			p("this place keeps things interesting"),
			pt("the coffee machine and I are on a break", "Humorous"),
		},
	},
	transitions: []phrase{
		p(""),
		p("Seriously."),
		pt("Anyway, back to pretending to work.", "Humorous", "Sarcastic"),
	},
	closings: map[string][]phrase{
		"gossip": {
			p("You didn't hear it from me."),
		},
		anyKey: {
			p("Right?"),
			p("What about you?"),
			pt("Good times.", "Extroverted", "Humorous"),
			pt("Anyway.", "Grumpy", "Introverted"),
		},
	},
}
