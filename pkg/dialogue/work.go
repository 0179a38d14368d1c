package dialogue

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/analysis"
)

var (
	workVocabulary = keywordMatcher(
		"work", "project", "deadline", "meeting", "meetings", "boss", "report", "task", "email",
		"client", "manager", "presentation", "slides", "spreadsheet", "review", "budget",
		"standup", "sprint", "ticket", "promotion", "overtime", "quarterly",
	)
	deadlineRe = keywordMatcher("deadline", "due", "asap", "urgent", "by friday", "end of day", "eod", "overdue")
	meetingRe  = keywordMatcher("meeting", "meetings", "standup", "call", "sync", "presentation")
	techRe     = keywordMatcher("bug", "server", "deploy", "build", "code", "laptop", "crash", "outage", "database")
)

// WorkPool handles shop talk.
type WorkPool struct {
	template
}

// NewWorkPool creates the work pool.
func NewWorkPool(rng Rand, logger *slog.Logger) *WorkPool {
	wp := &WorkPool{}
	wp.template = template{
		name:      PoolWork,
		priority:  3,
		rng:       orRand(rng),
		logger:    orDefault(logger),
		bank:      workBank,
		topicKey:  "casual",
		fallbacks: []string{"Work is work, I suppose.", "Let me get back to you on that.", "I'll look into it."},
		detect:    detectWork,
		personalityKey: func(c *actor.Character) string {
			switch {
			case c.HasAnyTrait("Workaholic", "Ambitious", "Organized"):
				return "progress"
			case c.HasAnyTrait("Lazy", "Grumpy"):
				return "complain"
			case c.HasAnyTrait("Helpful", "Polite"):
				return "help"
			}
			return ""
		},
		vars: func(_ triggers, c *actor.Character, _ Context) map[string]string {
			if c != nil {
				if task := c.Task(); task != nil {
					return map[string]string{"{progress}": fmt.Sprintf("%.0f%%", task.Progress)}
				}
			}
			return map[string]string{"{progress}": "about halfway"}
		},
	}
	wp.template.overlay = wp.urgencyOverlay
	return wp
}

func (wp *WorkPool) Matches(a analysis.Analysis, message string) bool {
	return a.HasTopic(analysis.TopicWork) || workVocabulary.MatchString(message)
}

func detectWork(message string, a analysis.Analysis) triggers {
	t := triggers{flags: map[string]bool{}}
	switch {
	case a.Urgency == analysis.LevelHigh || deadlineRe.MatchString(message):
		t.key = "deadline"
		t.intensity = IntensityHigh
	case a.Type == analysis.TypeRequest:
		t.key = "help"
	case techRe.MatchString(message):
		t.key = "tech"
	case meetingRe.MatchString(message):
		t.key = "meeting"
	case a.Type == analysis.TypeComplaint || a.Sentiment.IsNegative():
		t.key = "complain"
	case a.Type == analysis.TypeQuestion:
		t.key = "progress"
	}
	t.flags["urgent"] = a.Urgency == analysis.LevelHigh
	return t
}

func (wp *WorkPool) urgencyOverlay(line string, t triggers, c *actor.Character, _ Context) string {
	if !t.flag("urgent") {
		return line
	}
	if c != nil && c.HasAnyTrait("Anxious") {
		return line + " Oh no, okay, let's prioritize this."
	}
	return line + " Let's prioritize this."
}

var workBank = bank{
	openings: map[string][]phrase{
		"deadline": {
			p("Right, okay."),
			pi("Oh, that's tight.", IntensityHigh),
			pt("Deep breaths.", "Anxious"),
			pt("Noted.", "Formal", "Professional"),
		},
		"help": {
			p("Sure thing."),
			p("Of course."),
			pt("Fine.", "Grumpy"),
		},
		"tech": {
			p("Ah, that again."),
			pt("Classic.", "Sarcastic"),
		},
		"meeting": {
			p("Oh, the meeting."),
			pt("Another one?", "Grumpy", "Sarcastic"),
		},
		"complain": {
			p("I hear you."),
			p("Yeah."),
		},
		anyKey: {
			p("Well,"),
			p("So,"),
		},
	},
	cores: map[string][]phrase{
		"deadline": {
			p("I can have my part done by end of day"),
			p("we'll need to cut a few corners to make it"),
			pi("I'm clearing my afternoon for this", IntensityHigh),
		},
		"help": {
			p("I can take a look after I finish {task}"),
			p("send it over and I'll check it"),
			pt("happy to help however I can", "Helpful", "Polite"),
		},
		"tech": {
			p("have you tried turning it off and on again"),
			p("I think IT is already on it"),
			pt("I'd bet it's a caching issue", "Analytical", "Pedantic"),
		},
		"meeting": {
			p("I have it on my calendar"),
			p("this could probably have been an email"),
			pt("I'll prepare a few talking points", "Organized", "Professional"),
		},
		"complain": {
			p("this quarter has been a lot"),
			p("everyone's stretched pretty thin"),
			pt("nobody reads the documentation anyway", "Grumpy", "Sarcastic"),
		},
		"progress": {
			p("I'm {progress} through {task}"),
			p("{task} is coming along"),
		},
		"casual": {
			p("it's been a busy week"),
			p("I'm just trying to keep my inbox under control"),
		},
	},
	transitions: []phrase{
		p(""),
		p("Either way."),
		pt("Honestly.", "Sarcastic", "Grumpy"),
	},
	closings: map[string][]phrase{
		"help": {
			p("Just ping me."),
		},
		"deadline": {
			p("Let me know if anything changes."),
			p("We've got this."),
		},
		anyKey: {
			p("How's your side going?"),
			p("Let me know if you need anything."),
			pt("Back to it, I guess.", "Grumpy", "Introverted"),
		},
	},
}
