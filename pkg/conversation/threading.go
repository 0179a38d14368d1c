package conversation

import (
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/analysis"
)

var signOffs = map[string][]string{
	"Grumpy": {
		"Anyway, I need to get back to it.",
		"Right. Work won't do itself.",
	},
	"Extroverted": {
		"This was fun, let's catch up again soon!",
		"Love chatting, but I should probably go do actual work!",
	},
	"Introverted": {
		"I should get back to my desk.",
		"I'm going to head back now.",
	},
	"Humorous": {
		"I'd stay, but my inbox is staging a revolt.",
		"Duty calls. Well, duty emails.",
	},
	"Polite": {
		"It was lovely talking with you.",
		"Thank you for the chat, I should get going.",
	},
	"Formal": {
		"I must return to my work now.",
		"Thank you for your time.",
	},
	"Anxious": {
		"Oh, I should really get back before anyone notices.",
	},
}

var defaultSignOffs = []string{
	"Well, I should get going.",
	"Anyway, back to work for me.",
	"Good talking to you.",
}

// signOffTraitOrder fixes which trait's lines win when a character has
// several.
var signOffTraitOrder = []string{"Grumpy", "Formal", "Polite", "Humorous", "Extroverted", "Introverted", "Anxious"}

func signOffsFor(c *actor.Character) []string {
	if c == nil {
		return defaultSignOffs
	}
	for _, trait := range signOffTraitOrder {
		if c.HasTrait(trait) {
			return signOffs[trait]
		}
	}
	return defaultSignOffs
}

var topicShifts = map[analysis.Topic][]string{
	analysis.TopicWork: {
		"Anyway, enough about work. Any plans for the weekend?",
		"Let's talk about something other than work for a second.",
	},
	analysis.TopicFood: {
		"Speaking of which, has anyone fixed the coffee machine yet?",
	},
	analysis.TopicSports: {
		"Anyway, how's your week going otherwise?",
	},
	analysis.TopicWeather: {
		"Enough weather talk. How are things on your team?",
	},
}

var defaultTopicShifts = []string{
	"Oh, changing the subject, did you hear about the new coffee machine?",
	"By the way, how's that project of yours coming along?",
	"Anyway, seen anything good on TV lately?",
}

func topicShiftsFor(r Record) []string {
	if n := len(r.Topics); n > 0 {
		if lines, ok := topicShifts[r.Topics[n-1]]; ok {
			return lines
		}
	}
	return defaultTopicShifts
}
