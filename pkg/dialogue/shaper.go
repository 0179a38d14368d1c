package dialogue

import (
	"regexp"
	"strings"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/textfilter"
)

// Insertion probabilities for the stochastic shaping steps.
const (
	enthusiasmChance = 0.3
	quipChance       = 0.25
	politeChance     = 0.4
	hedgeChance      = 0.4
	sarcasmChance    = 0.3
)

var (
	firstSentence = regexp.MustCompile(`^.*?[.!?](?:\s|$)`)
	enthusiasm    = regexp.MustCompile(`(?i)^(?:oh my gosh|wow|yes|absolutely|oh nice|let's go)[,!.]*\s*`)
	sentenceEnd   = regexp.MustCompile(`[.]\s*$`)
	thanksRe      = regexp.MustCompile(`(?i)\b(?:thanks|thank you|please)\b`)
)

var (
	enthusiasmLines = []string{"Oh, totally!", "Ooh!", "Oh, for sure!"}
	quips           = []string{"At least that's what the coffee machine tells me.", "Don't quote me, I'm only on my second coffee.", "I'll put it in my memoir."}
	politeLines     = []string{"Thank you.", "Thanks for mentioning it."}
	hedges          = []string{"Um, ", "I think ", "Maybe "}
	anxiousTails    = []string{"I hope that's okay.", "Sorry if that's weird."}
	sarcasms        = []string{"Great.", "Fantastic.", "Living the dream."}
)

// shapingStep rewrites a line for characters with any of its traits.
type shapingStep struct {
	traits []string
	apply  func(s *Shaper, text string) string
}

// Shaper post-processes a reply for a character's personality. Steps run
// in a fixed order and each sees the previous step's output.
type Shaper struct {
	rng    Rand
	filter *textfilter.Filter
	steps  []shapingStep
}

// NewShaper creates a shaper drawing from rng.
func NewShaper(rng Rand) *Shaper {
	s := &Shaper{rng: orRand(rng), filter: textfilter.New()}
	s.steps = []shapingStep{
		{traits: []string{"Grumpy"}, apply: (*Shaper).grumpy},
		{traits: []string{"Introverted"}, apply: (*Shaper).introverted},
		{traits: []string{"Extroverted"}, apply: (*Shaper).extroverted},
		{traits: []string{"Humorous"}, apply: (*Shaper).humorous},
		{traits: []string{"Formal", "Professional"}, apply: (*Shaper).formal},
		{traits: []string{"Polite"}, apply: (*Shaper).polite},
		{traits: []string{"Anxious"}, apply: (*Shaper).anxious},
		{traits: []string{"Sarcastic"}, apply: (*Shaper).sarcastic},
	}
	return s
}

// Shape applies every step matching c's traits.
func (s *Shaper) Shape(text string, c *actor.Character) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}
	if c != nil {
		for _, step := range s.steps {
			if c.HasAnyTrait(step.traits...) {
				text = strings.TrimSpace(step.apply(s, text))
			}
		}
	}
	return textfilter.UpperFirst(multiSpace.ReplaceAllString(text, " "))
}

func (s *Shaper) grumpy(text string) string {
	if flat := enthusiasm.ReplaceAllString(text, ""); flat != "" {
		text = flat
	}
	return strings.ReplaceAll(text, "!", ".")
}

func (s *Shaper) introverted(text string) string {
	if m := firstSentence.FindString(text); m != "" {
		return m
	}
	return text
}

func (s *Shaper) extroverted(text string) string {
	text = sentenceEnd.ReplaceAllString(text, "!")
	if chance(s.rng, enthusiasmChance) {
		text = pickString(s.rng, enthusiasmLines) + " " + text
	}
	return text
}

func (s *Shaper) humorous(text string) string {
	if chance(s.rng, quipChance) {
		return text + " " + pickString(s.rng, quips)
	}
	return text
}

func (s *Shaper) formal(text string) string {
	return s.filter.Formalize(text)
}

func (s *Shaper) polite(text string) string {
	text = s.filter.Clean(text)
	if !thanksRe.MatchString(text) && chance(s.rng, politeChance) {
		text += " " + pickString(s.rng, politeLines)
	}
	return text
}

func (s *Shaper) anxious(text string) string {
	if chance(s.rng, hedgeChance) {
		text = pickString(s.rng, hedges) + lowerFirst(text)
	}
	if chance(s.rng, hedgeChance) {
		text += " " + pickString(s.rng, anxiousTails)
	}
	return text
}

func (s *Shaper) sarcastic(text string) string {
	if chance(s.rng, sarcasmChance) {
		return text + " " + pickString(s.rng, sarcasms)
	}
	return text
}

// lowerFirst lowercases a leading capital unless it starts the pronoun "I".
func lowerFirst(s string) string {
	if s == "" || s == "I" || strings.HasPrefix(s, "I ") || strings.HasPrefix(s, "I'") {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
