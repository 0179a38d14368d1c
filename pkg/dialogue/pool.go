package dialogue

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/analysis"
	"github.com/jwebster45206/npc-engine/pkg/conversation"
	"github.com/jwebster45206/npc-engine/pkg/snapshot"
)

// PoolName identifies a topic pool.
type PoolName string

const (
	PoolSports   PoolName = "sports"
	PoolFood     PoolName = "food"
	PoolWork     PoolName = "work"
	PoolPersonal PoolName = "personal"
	PoolBanter   PoolName = "banter"
	PoolGeneral  PoolName = "general"
)

// Context is what a pool knows beyond the message and the character.
// Every field may be zero.
type Context struct {
	Analysis analysis.Analysis
	Snapshot *snapshot.Snapshot
	Record   *conversation.Record
	Speaker  *actor.Character
}

// Pool is a phrase bank specialized to one conversational domain.
type Pool interface {
	Name() PoolName
	// Priority orders matching pools; lower wins.
	Priority() int
	Matches(a analysis.Analysis, message string) bool
	// GenerateResponse always returns a line. Failures produce one of the
	// pool's fallback lines.
	GenerateResponse(message string, c *actor.Character, ctx Context) string
}

var errNoCandidates = errors.New("no candidate phrases")

// Intensity scales how strongly a reply is worded.
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

// intensityOf derives intensity from the analysis alone.
func intensityOf(a analysis.Analysis) Intensity {
	switch {
	case a.Sentiment == analysis.SentimentVeryPositive,
		a.Sentiment == analysis.SentimentVeryNegative,
		a.Urgency == analysis.LevelHigh:
		return IntensityHigh
	case a.Sentiment != analysis.SentimentNeutral && a.Sentiment != "",
		a.Urgency == analysis.LevelMedium:
		return IntensityMedium
	default:
		return IntensityLow
	}
}

// phrase is one candidate part of a reply. Traits restrict it to characters
// carrying any of them; Intensity restricts it to replies of that strength.
type phrase struct {
	text      string
	traits    []string
	intensity Intensity
}

func p(text string) phrase { return phrase{text: text} }

func pt(text string, traits ...string) phrase { return phrase{text: text, traits: traits} }

func pi(text string, in Intensity) phrase { return phrase{text: text, intensity: in} }

func (ph phrase) eligible(c *actor.Character, in Intensity) bool {
	if ph.intensity != "" && ph.intensity != in {
		return false
	}
	if len(ph.traits) > 0 && (c == nil || !c.HasAnyTrait(ph.traits...)) {
		return false
	}
	return true
}

// anyKey holds phrases shared by every response type.
const anyKey = "*"

// bank is a pool's modular phrase set, keyed by response type.
type bank struct {
	openings    map[string][]phrase
	cores       map[string][]phrase
	transitions []phrase
	closings    map[string][]phrase
}

func (b bank) has(key string) bool {
	return len(b.cores[key]) > 0
}

// triggers is what a pool's own detector extracted from the message.
type triggers struct {
	key       string // response type implied by the message, if any
	intensity Intensity
	subtype   string
	flags     map[string]bool
}

func (t triggers) flag(name string) bool { return t.flags[name] }

// template is the four-stage generator every pool shares: detect triggers,
// choose a response type, assemble parts, apply overlays.
type template struct {
	name      PoolName
	priority  int
	rng       Rand
	logger    *slog.Logger
	bank      bank
	fallbacks []string
	topicKey  string

	detect         func(message string, a analysis.Analysis) triggers
	personalityKey func(c *actor.Character) string
	vars           func(t triggers, c *actor.Character, ctx Context) map[string]string
	overlay        func(line string, t triggers, c *actor.Character, ctx Context) string
}

func (tp *template) Name() PoolName { return tp.name }

func (tp *template) Priority() int { return tp.priority }

func (tp *template) GenerateResponse(message string, c *actor.Character, ctx Context) (line string) {
	defer func() {
		if r := recover(); r != nil {
			tp.logger.Error("Topic pool panicked, using fallback",
				"pool", tp.name,
				"panic", fmt.Sprint(r))
			line = tp.fallback()
		}
	}()

	var trig triggers
	if tp.detect != nil {
		trig = tp.detect(message, ctx.Analysis)
	}
	if trig.intensity == "" {
		trig.intensity = intensityOf(ctx.Analysis)
	}

	key := tp.chooseKey(trig, c)
	line, err := tp.assemble(key, trig.intensity, c)
	if err != nil {
		tp.logger.Warn("Topic pool could not assemble a reply",
			"pool", tp.name,
			"response_type", key,
			"error", err)
		return tp.fallback()
	}
	line = fill(line, tp.variables(trig, c, ctx))
	if tp.overlay != nil {
		line = tp.overlay(line, trig, c, ctx)
	}
	return tidy(line)
}

// chooseKey prefers the message's triggers, then the character's
// personality, then the pool's topic default.
func (tp *template) chooseKey(trig triggers, c *actor.Character) string {
	if trig.key != "" && tp.bank.has(trig.key) {
		return trig.key
	}
	if tp.personalityKey != nil && c != nil {
		if k := tp.personalityKey(c); k != "" && tp.bank.has(k) {
			return k
		}
	}
	return tp.topicKey
}

func (tp *template) assemble(key string, in Intensity, c *actor.Character) (string, error) {
	opening, err := tp.draw(tp.bank.openings[key], tp.bank.openings[anyKey], c, in)
	if err != nil {
		return "", fmt.Errorf("opening: %w", err)
	}
	core, err := tp.draw(tp.bank.cores[key], nil, c, in)
	if err != nil {
		return "", fmt.Errorf("core: %w", err)
	}
	transition, err := tp.draw(tp.bank.transitions, nil, c, in)
	if err != nil {
		return "", fmt.Errorf("transition: %w", err)
	}
	closing, err := tp.draw(tp.bank.closings[key], tp.bank.closings[anyKey], c, in)
	if err != nil {
		return "", fmt.Errorf("closing: %w", err)
	}
	return opening + " " + core + ". " + transition + " " + closing, nil
}

// draw picks uniformly from the eligible primary phrases, falling back to
// the shared set when none apply.
func (tp *template) draw(primary, shared []phrase, c *actor.Character, in Intensity) (string, error) {
	var candidates []string
	for _, set := range [][]phrase{primary, shared} {
		for _, ph := range set {
			if ph.eligible(c, in) {
				candidates = append(candidates, ph.text)
			}
		}
		if len(candidates) > 0 {
			break
		}
	}
	if len(candidates) == 0 {
		return "", errNoCandidates
	}
	return candidates[tp.rng.Intn(len(candidates))], nil
}

func (tp *template) fallback() string {
	if len(tp.fallbacks) == 0 {
		return "I see."
	}
	return tp.fallbacks[tp.rng.Intn(len(tp.fallbacks))]
}

func (tp *template) variables(trig triggers, c *actor.Character, ctx Context) map[string]string {
	vars := map[string]string{
		"{subtype}": trig.subtype,
		"{name}":    "there",
		"{place}":   "here",
		"{task}":    "my task",
	}
	if ctx.Speaker != nil && ctx.Speaker.Name != "" {
		vars["{name}"] = ctx.Speaker.Name
	}
	if ctx.Snapshot != nil && ctx.Snapshot.Perception.Location.Name != snapshot.UnknownLocationName && ctx.Snapshot.Perception.Location.Name != "" {
		vars["{place}"] = "the " + strings.ToLower(ctx.Snapshot.Perception.Location.Name)
	}
	if c != nil {
		if task := c.Task(); task != nil && task.Name != "" {
			vars["{task}"] = "the " + strings.ToLower(task.Name)
		}
	}
	if tp.vars != nil {
		for k, v := range tp.vars(trig, c, ctx) {
			vars[k] = v
		}
	}
	return vars
}

func fill(line string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, k, v)
	}
	return strings.NewReplacer(pairs...).Replace(line)
}

var (
	multiSpace   = regexp.MustCompile(`\s{2,}`)
	spaceBefore  = regexp.MustCompile(`\s+([.,!?])`)
	doubledPunct = regexp.MustCompile(`([.!?])\.+`)
	leadingPunct = regexp.MustCompile(`^[\s.,]+`)
	sentenceHead = regexp.MustCompile(`[.!?]\s+[a-z]`)
)

// tidy repairs the seams left by empty or punctuated parts.
func tidy(line string) string {
	line = multiSpace.ReplaceAllString(line, " ")
	line = spaceBefore.ReplaceAllString(line, "$1")
	line = doubledPunct.ReplaceAllString(line, "$1")
	line = leadingPunct.ReplaceAllString(line, "")
	line = sentenceHead.ReplaceAllStringFunc(line, strings.ToUpper)
	return strings.TrimSpace(line)
}

// keywordMatcher is a whole-word, case-insensitive trigger vocabulary.
func keywordMatcher(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}
