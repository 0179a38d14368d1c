package dialogue

import (
	"log/slog"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/analysis"
)

var (
	personalVocabulary = keywordMatcher(
		"family", "kids", "wife", "husband", "partner", "mom", "dad", "weekend", "vacation",
		"holiday", "birthday", "feeling", "feel", "tired", "stressed", "sick", "doctor",
		"home", "house", "dog", "cat", "wedding", "how are you", "how's it going", "how have you been",
	)
	checkInRe = keywordMatcher("how are you", "how's it going", "how have you been", "you okay", "are you alright", "how was your weekend")
	troubleRe = keywordMatcher("sick", "stressed", "tired", "sad", "worried", "lonely", "breakup", "funeral", "hospital", "burnout", "overwhelmed")
	newsRe    = keywordMatcher("engaged", "pregnant", "wedding", "new house", "promotion", "vacation", "birthday", "puppy", "kitten")
)

// sensitivePrivacy is the privacy level below which heavy topics are
// steered somewhere quieter.
const sensitivePrivacy = 4

// PersonalPool handles personal check-ins and life updates.
type PersonalPool struct {
	template
}

// NewPersonalPool creates the personal pool.
func NewPersonalPool(rng Rand, logger *slog.Logger) *PersonalPool {
	pp := &PersonalPool{}
	pp.template = template{
		name:      PoolPersonal,
		priority:  4,
		rng:       orRand(rng),
		logger:    orDefault(logger),
		bank:      personalBank,
		topicKey:  "casual",
		fallbacks: []string{"Thanks for asking.", "Life's been a bit of everything lately.", "I appreciate you checking in."},
		detect:    detectPersonal,
		personalityKey: func(c *actor.Character) string {
			switch {
			case c.HasAnyTrait("Empathetic", "Kind", "Caring"):
				return "support"
			case c.HasAnyTrait("Introverted", "Private", "Reserved"):
				return "deflect"
			case c.HasAnyTrait("Extroverted", "Talkative"):
				return "share"
			}
			return ""
		},
		vars: func(_ triggers, c *actor.Character, _ Context) map[string]string {
			if c == nil {
				return map[string]string{"{mood}": actor.MoodNeutral.Describe()}
			}
			return map[string]string{"{mood}": c.Mood().Describe()}
		},
	}
	pp.template.overlay = pp.privacyOverlay
	return pp
}

func (pp *PersonalPool) Matches(a analysis.Analysis, message string) bool {
	return a.HasTopic(analysis.TopicPersonal) ||
		a.HasEmotion(analysis.EmotionSadness) ||
		a.HasEmotion(analysis.EmotionFear) ||
		personalVocabulary.MatchString(message)
}

func detectPersonal(message string, a analysis.Analysis) triggers {
	t := triggers{flags: map[string]bool{}}
	t.flags["sensitive"] = troubleRe.MatchString(message) ||
		a.HasEmotion(analysis.EmotionSadness) ||
		a.HasEmotion(analysis.EmotionFear)

	switch {
	case t.flags["sensitive"]:
		t.key = "support"
	case checkInRe.MatchString(message):
		t.key = "checkin"
	case newsRe.MatchString(message) || a.Type == analysis.TypeInformationSharing:
		t.key = "congratulate"
	case a.Sentiment.IsPositive():
		t.key = "share"
	}
	return t
}

// privacyOverlay steers heavy topics away from crowded spaces and lets a
// bad mood leak into check-in replies.
func (pp *PersonalPool) privacyOverlay(line string, t triggers, c *actor.Character, ctx Context) string {
	if t.flag("sensitive") && ctx.Snapshot != nil && ctx.Snapshot.Perception.Privacy < sensitivePrivacy {
		return line + " " + pickString(pp.rng, []string{
			"Maybe we can talk somewhere a bit quieter?",
			"Want to grab a room so we can talk properly?",
		})
	}
	if t.key == "checkin" && c != nil && c.Mood().IsNegative() && c.HasAnyTrait("Honest", "Anxious", "Grumpy") {
		return line + " Honestly, I'm " + c.Mood().Describe() + "."
	}
	return line
}

var personalBank = bank{
	openings: map[string][]phrase{
		"support": {
			p("Oh no."),
			p("I'm sorry to hear that."),
			pt("Oh, that's rough, I'm really sorry.", "Empathetic", "Kind", "Caring"),
			pt("That stinks.", "Grumpy"),
		},
		"checkin": {
			p("Oh, thanks for asking!"),
			p("Hey, not bad."),
			pt("Fine.", "Grumpy", "Introverted"),
		},
		"congratulate": {
			p("Oh wow!"),
			pi("No way, that's amazing!", IntensityHigh),
			pt("Congratulations.", "Formal", "Professional"),
		},
		"share": {
			p("Oh, that's lovely."),
			pt("Love that!", "Extroverted"),
		},
		"deflect": {
			p("Oh, you know."),
			p("Eh."),
		},
		anyKey: {
			p("Well,"),
			p("Hmm,"),
		},
	},
	cores: map[string][]phrase{
		"support": {
			p("if you need to take a break, I can cover for a bit"),
			p("that's a lot to deal with on top of work"),
			pt("please don't feel like you have to push through it alone", "Empathetic", "Kind", "Caring"),
		},
		"checkin": {
			p("I'm {mood}, all things considered"),
			p("it's been a long week but I'm hanging in there"),
			pt("can't complain, well, I could, but I won't", "Humorous", "Grumpy"),
		},
		"congratulate": {
			p("that's really great news"),
			p("you must be thrilled"),
			pt("we should celebrate with cake in the break room", "Extroverted", "Foodie"),
		},
		"share": {
			p("I had a pretty relaxing weekend myself"),
			p("my dog learned a new trick, so that's my big news"),
			pt("I've finally started that pottery class I keep talking about", "Extroverted", "Talkative"),
		},
		"deflect": {
			p("same old, same old"),
			p("nothing too exciting on my end"),
		},
		"casual": {
			p("it's nice to chat about something other than work"),
			p("I've been trying to get out more on weekends"),
		},
	},
	transitions: []phrase{
		p(""),
		p("Really."),
		pt("No pressure.", "Polite", "Empathetic"),
	},
	closings: map[string][]phrase{
		"support": {
			p("I'm here if you want to talk."),
			p("Let me know if there's anything I can do."),
		},
		"checkin": {
			p("How about you?"),
			p("And you?"),
		},
		anyKey: {
			p("How have you been?"),
			p("What's new with you?"),
			pt("Anyway.", "Introverted", "Private"),
		},
	},
}
