package dialogue

import (
	"log/slog"
	"strings"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/analysis"
)

var (
	foodVocabulary = keywordMatcher(
		"food", "lunch", "dinner", "breakfast", "eat", "eating", "hungry", "starving", "snack",
		"snacks", "coffee", "espresso", "latte", "tea", "pizza", "sandwich", "donut", "donuts",
		"cake", "cookies", "restaurant", "takeout", "delivery", "kitchen", "fridge", "microwave",
	)
	coffeeRe = keywordMatcher("coffee", "espresso", "latte", "caffeine", "cappuccino")
	hungryRe = keywordMatcher("hungry", "starving", "famished", "lunch", "snack")
	foodItem = keywordMatcher("pizza", "sandwich", "donut", "donuts", "cake", "cookies", "salad", "tacos", "sushi", "burrito", "soup", "bagels")
)

// FoodPool handles food and drink talk.
type FoodPool struct {
	template
}

// NewFoodPool creates the food pool.
func NewFoodPool(rng Rand, logger *slog.Logger) *FoodPool {
	fp := &FoodPool{}
	fp.template = template{
		name:      PoolFood,
		priority:  2,
		rng:       orRand(rng),
		logger:    orDefault(logger),
		bank:      foodBank,
		topicKey:  "casual",
		fallbacks: []string{"I could eat.", "Food sounds good right about now.", "Is there anything left in the kitchen?"},
		detect:    detectFood,
		personalityKey: func(c *actor.Character) string {
			switch {
			case c.HasAnyTrait("Foodie"):
				return "praise"
			case c.HasAnyTrait("HealthConscious"):
				return "healthy"
			case c.HasAnyTrait("Grumpy"):
				return "complain"
			}
			return ""
		},
		vars: func(t triggers, _ *actor.Character, _ Context) map[string]string {
			if t.subtype == "" {
				return map[string]string{"{subtype}": "food"}
			}
			return nil
		},
	}
	fp.template.overlay = fp.needsOverlay
	return fp
}

func (fp *FoodPool) Matches(a analysis.Analysis, message string) bool {
	return a.HasTopic(analysis.TopicFood) || foodVocabulary.MatchString(message)
}

func detectFood(message string, a analysis.Analysis) triggers {
	t := triggers{flags: map[string]bool{}}
	if m := foodItem.FindString(message); m != "" {
		t.subtype = strings.ToLower(m)
	}
	t.flags["coffee"] = coffeeRe.MatchString(message)
	t.flags["hungry"] = hungryRe.MatchString(message)

	switch {
	case a.Type == analysis.TypeQuestion || a.Cues.Invitation:
		t.key = "invite"
	case t.flags["coffee"]:
		t.key = "coffee"
	case a.Sentiment.IsNegative() || a.Type == analysis.TypeComplaint:
		t.key = "complain"
	case a.Sentiment.IsPositive():
		t.key = "praise"
	case t.flags["hungry"]:
		t.key = "hungry"
	}
	return t
}

// needsOverlay lets a character's own hunger or fatigue show through.
func (fp *FoodPool) needsOverlay(line string, t triggers, c *actor.Character, _ Context) string {
	if c == nil {
		return line
	}
	needs := c.Needs()
	switch {
	case needs.Hunger < actor.LowNeedThreshold:
		return line + " " + pickString(fp.rng, []string{"I'm starving, honestly.", "My stomach has been growling all morning."})
	case t.flag("coffee") && needs.Energy < actor.LowNeedThreshold:
		return line + " " + pickString(fp.rng, []string{"I could really use a coffee myself.", "I'm running on fumes."})
	}
	return line
}

var foodBank = bank{
	openings: map[string][]phrase{
		"invite": {
			p("Ooh, yes."),
			p("Sure."),
			pt("Absolutely!", "Extroverted", "Foodie"),
			pt("I suppose.", "Grumpy", "Introverted"),
		},
		"coffee": {
			p("Coffee?"),
			pi("Coffee, yes, please!", IntensityHigh),
		},
		"praise": {
			p("Oh, that sounds good."),
			pi("Oh my gosh, yes!", IntensityHigh),
		},
		"complain": {
			p("Ugh."),
			p("Tell me about it."),
		},
		anyKey: {
			p("Mm,"),
			p("Oh,"),
		},
	},
	cores: map[string][]phrase{
		"invite": {
			p("I'd be up for some {subtype}"),
			p("I was just thinking about lunch"),
			pt("let me grab my wallet", "Extroverted", "Foodie"),
		},
		"coffee": {
			p("the coffee machine is my best friend today"),
			p("I've already had two cups and it's not enough"),
			pt("the break room coffee is basically brown water", "Sarcastic", "Grumpy"),
		},
		"praise": {
			p("{subtype} always hits the spot"),
			p("that place downstairs does it really well"),
			pt("good {subtype} is an art form", "Foodie"),
		},
		"complain": {
			p("someone keeps stealing food from the fridge"),
			p("the microwave line is ridiculous at noon"),
			pt("the office snacks have gone downhill", "Grumpy"),
		},
		"hungry": {
			p("I skipped breakfast and I regret it"),
			p("I could eat pretty much anything right now"),
		},
		"healthy": {
			p("I've been trying to eat a bit better lately"),
			p("I brought a salad, which I'm already regretting"),
		},
		"casual": {
			p("I've been craving {subtype} all day"),
			p("the kitchen smelled amazing earlier"),
			pt("I have a snack drawer for emergencies", "Anxious", "Organized"),
		},
	},
	transitions: []phrase{
		p(""),
		p("Honestly."),
		pt("No judgment.", "Polite", "Humorous"),
	},
	closings: map[string][]phrase{
		"invite": {
			p("Want to head over around noon?"),
			p("Count me in."),
		},
		anyKey: {
			p("What are you having?"),
			p("Have you eaten yet?"),
			pt("Anyway.", "Introverted", "Grumpy"),
		},
	},
}
