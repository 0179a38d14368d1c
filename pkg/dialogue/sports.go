package dialogue

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/analysis"
)

var (
	sportsVocabulary = keywordMatcher(
		"game", "match", "football", "soccer", "basketball", "baseball", "hockey", "tennis",
		"golf", "playoffs", "league", "championship", "world cup", "super bowl", "score",
		"team", "coach", "season", "stadium", "goal", "touchdown", "fantasy league",
	)
	sportNames = []string{"football", "soccer", "basketball", "baseball", "hockey", "tennis", "golf", "cricket", "rugby"}
	sportName  = regexp.MustCompile(`(?i)\b(` + strings.Join(sportNames, "|") + `)\b`)
	footballRe = regexp.MustCompile(`(?i)\bfootball\b`)
	wonRe      = keywordMatcher("won", "win", "winning", "victory", "champions", "clutch", "comeback")
	lostRe     = keywordMatcher("lost", "lose", "losing", "choked", "blew it", "robbed", "relegated")
)

// Traits that make a character care about what "football" means.
var (
	puristTraits      = []string{"European", "Purist", "SoccerFan", "SoccerPurist"}
	pedanticTraits    = []string{"Pedantic", "Argumentative"}
	passionateTraits  = []string{"Passionate", "Opinionated"}
	diplomaticTraits  = []string{"Polite", "Diplomatic"}
	correctionLeaning = append(append([]string{}, puristTraits...), "Pedantic")
)

// FootballCorrectionBase is the correction probability before traits.
const FootballCorrectionBase = 0.3

var footballCorrections = []string{
	"You mean soccer? Or football, as most of the world calls it.",
	"Just to be clear, the one played with feet, right?",
	"Football, as in actual football, I hope.",
	"Ah, by football I assume you mean the American kind.",
}

// SportsPool handles sports talk.
type SportsPool struct {
	template
}

// NewSportsPool creates the sports pool.
func NewSportsPool(rng Rand, logger *slog.Logger) *SportsPool {
	sp := &SportsPool{}
	sp.template = template{
		name:      PoolSports,
		priority:  1,
		rng:       orRand(rng),
		logger:    orDefault(logger),
		bank:      sportsBank,
		topicKey:  "casual",
		fallbacks: []string{"Sports, huh? Can't say I caught the score.", "I should really follow the games more.", "Big game coming up, I hear."},
		detect:    detectSports,
		personalityKey: func(c *actor.Character) string {
			switch {
			case c.HasAnyTrait("Passionate", "Competitive"):
				return "excited"
			case c.HasAnyTrait("Grumpy", "Pessimistic"):
				return "disappointed"
			case c.HasAnyTrait("Argumentative", "Opinionated"):
				return "debate"
			}
			return ""
		},
		vars: func(t triggers, _ *actor.Character, _ Context) map[string]string {
			if t.subtype == "" {
				return map[string]string{"{subtype}": "the game"}
			}
			return map[string]string{"{subtype}": t.subtype}
		},
	}
	sp.template.overlay = sp.footballOverlay
	return sp
}

func (sp *SportsPool) Matches(a analysis.Analysis, message string) bool {
	return a.HasTopic(analysis.TopicSports) || sportsVocabulary.MatchString(message)
}

func detectSports(message string, a analysis.Analysis) triggers {
	t := triggers{flags: map[string]bool{}}
	if m := sportName.FindStringSubmatch(message); m != nil {
		t.subtype = strings.ToLower(m[1])
	}
	t.flags["mentionsFootball"] = footballRe.MatchString(message)

	switch {
	case wonRe.MatchString(message):
		t.key = "celebrate"
	case lostRe.MatchString(message):
		t.key = "disappointed"
	case a.Type == analysis.TypeQuestion:
		t.key = "question"
	case a.Sentiment.IsPositive() || a.HasEmotion(analysis.EmotionExcitement):
		t.key = "excited"
	case a.Sentiment.IsNegative():
		t.key = "disappointed"
	}
	return t
}

// FootballCorrectionChance is the probability that c corrects an ambiguous
// "football", clamped to [0,1].
func FootballCorrectionChance(c *actor.Character) float64 {
	p := FootballCorrectionBase
	if c == nil {
		return p
	}
	if c.HasAnyTrait(puristTraits...) {
		p += 0.3
	}
	if c.HasAnyTrait(pedanticTraits...) {
		p += 0.2
	}
	if c.HasAnyTrait(passionateTraits...) {
		p += 0.15
	}
	if c.HasAnyTrait(diplomaticTraits...) {
		p -= 0.2
	}
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

func (sp *SportsPool) footballOverlay(line string, t triggers, c *actor.Character, _ Context) string {
	if !t.flag("mentionsFootball") || c == nil || !c.HasAnyTrait(correctionLeaning...) {
		return line
	}
	if !chance(sp.rng, FootballCorrectionChance(c)) {
		return line
	}
	return pickString(sp.rng, footballCorrections) + " " + line
}

var sportsBank = bank{
	openings: map[string][]phrase{
		"excited": {
			pi("Oh, absolutely!", IntensityHigh),
			pi("Yes!", IntensityHigh),
			p("Oh nice!"),
			pt("Let's go!", "Extroverted", "Passionate"),
		},
		"celebrate": {
			p("What a result!"),
			pi("Unbelievable!", IntensityHigh),
			pt("Told you so!", "Opinionated", "Argumentative"),
		},
		"disappointed": {
			p("Ugh, don't remind me."),
			p("Oof."),
			pt("Typical.", "Grumpy", "Pessimistic"),
		},
		"question": {
			p("Good question."),
			p("Hmm, let me think."),
		},
		"debate": {
			p("Okay, hear me out."),
			pt("I'll die on this hill.", "Argumentative", "Opinionated"),
		},
		anyKey: {
			p("Oh,"),
			pt("Honestly,", "Opinionated", "Sarcastic"),
		},
	},
	cores: map[string][]phrase{
		"excited": {
			p("{subtype} is going to be a good one"),
			p("I've been looking forward to {subtype} all week"),
			pi("I am way too invested in {subtype} this year", IntensityHigh),
		},
		"celebrate": {
			p("that was one for the highlight reel"),
			p("that comeback made my whole week"),
			pt("the defense finally showed up", "Competitive", "Passionate"),
		},
		"disappointed": {
			p("that was painful to watch"),
			p("I can't believe how they played"),
			pi("I'm still not over that ending", IntensityHigh),
		},
		"question": {
			p("I think the odds are pretty even for {subtype}"),
			p("I haven't checked the standings lately"),
			pt("statistically the home side has the edge", "Analytical", "Pedantic"),
		},
		"debate": {
			p("the real problem is the coaching"),
			p("people overrate the star players every season"),
		},
		"casual": {
			p("I caught a bit of {subtype} the other night"),
			p("the office fantasy league is getting intense"),
			pt("I mostly watch for the snacks", "Humorous"),
		},
	},
	transitions: []phrase{
		p(""),
		p("Half the office was talking about it."),
		p("Anyway."),
		pt("Not that I'm keeping score or anything.", "Humorous", "Sarcastic"),
	},
	closings: map[string][]phrase{
		"question": {
			p("What do you think?"),
			p("Who are you backing?"),
		},
		anyKey: {
			p("Are you watching?"),
			p("We should catch the next one together."),
			pt("Not that it matters.", "Grumpy"),
			pt("We should do a watch party!", "Extroverted"),
		},
	},
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
