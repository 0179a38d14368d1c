// Package textfilter rewrites text into a workplace-appropriate register:
// profanity is softened and contractions can be expanded.
package textfilter

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// profanity maps a word to its office-safe substitute.
var profanity = map[string]string{
	"fuck":         "fudge",
	"fucking":      "flipping",
	"shit":         "shoot",
	"damn":         "darn",
	"goddamn":      "gosh-darn",
	"hell":         "heck",
	"ass":          "backside",
	"asshole":      "jerk",
	"bitch":        "jerk",
	"bastard":      "jerk",
	"crap":         "nonsense",
	"piss":         "tick",
	"pissed":       "ticked off",
	"dick":         "jerk",
	"dickhead":     "jerk",
	"prick":        "jerk",
	"douche":       "jerk",
	"douchebag":    "jerk",
	"motherfucker": "so-and-so",
	"dumbass":      "dummy",
	"jackass":      "jerk",
	"smartass":     "smarty-pants",
	"bullshit":     "baloney",
	"horseshit":    "nonsense",
	"shithead":     "jerk",
	"wtf":          "what on earth",
}

// contractions maps a contraction to its expanded form.
var contractions = map[string]string{
	"can't":     "cannot",
	"won't":     "will not",
	"don't":     "do not",
	"doesn't":   "does not",
	"didn't":    "did not",
	"isn't":     "is not",
	"aren't":    "are not",
	"wasn't":    "was not",
	"weren't":   "were not",
	"haven't":   "have not",
	"hasn't":    "has not",
	"hadn't":    "had not",
	"wouldn't":  "would not",
	"couldn't":  "could not",
	"shouldn't": "should not",
	"i'm":       "I am",
	"i've":      "I have",
	"i'll":      "I will",
	"i'd":       "I would",
	"you're":    "you are",
	"you've":    "you have",
	"you'll":    "you will",
	"we're":     "we are",
	"we've":     "we have",
	"we'll":     "we will",
	"they're":   "they are",
	"they've":   "they have",
	"they'll":   "they will",
	"it's":      "it is",
	"that's":    "that is",
	"there's":   "there is",
	"what's":    "what is",
	"let's":     "let us",
	"gonna":     "going to",
	"wanna":     "want to",
	"gotta":     "have to",
	"y'all":     "you all",
}

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// compile turns a word map into rules, longest word first so compound
// words are replaced before their parts.
func compile(words map[string]string) []rule {
	keys := make([]string, 0, len(words))
	for k := range words {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	rules := make([]rule, len(keys))
	for i, k := range keys {
		rules[i] = rule{
			pattern:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(k) + `\b`),
			replacement: words[k],
		}
	}
	return rules
}

// Filter holds the compiled word rules. It is safe for concurrent use.
type Filter struct {
	profanity    []rule
	contractions []rule
}

// New compiles a Filter.
func New() *Filter {
	return &Filter{
		profanity:    compile(profanity),
		contractions: compile(contractions),
	}
}

func apply(rules []rule, text string) string {
	for _, r := range rules {
		text = r.pattern.ReplaceAllStringFunc(text, func(match string) string {
			return MatchCase(match, r.replacement)
		})
	}
	return text
}

// Clean softens profanity, keeping the case pattern of each replaced word.
func (f *Filter) Clean(text string) string {
	return apply(f.profanity, text)
}

// ContainsProfanity reports whether Clean would change the text.
func (f *Filter) ContainsProfanity(text string) bool {
	for _, r := range f.profanity {
		if r.pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// ExpandContractions spells out contractions and casual run-together words.
func (f *Filter) ExpandContractions(text string) string {
	return apply(f.contractions, text)
}

// Formalize cleans profanity and expands contractions.
func (f *Filter) Formalize(text string) string {
	return f.ExpandContractions(f.Clean(text))
}

// MatchCase applies the case pattern of original to replacement. A
// replacement that starts with a capital (such as "I am") keeps it.
func MatchCase(original, replacement string) string {
	if original == "" || replacement == "" {
		return replacement
	}
	letters := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, original)

	switch {
	case len(letters) > 1 && strings.ToUpper(letters) == letters:
		return strings.ToUpper(replacement)
	case unicode.IsUpper([]rune(original)[0]):
		return UpperFirst(replacement)
	default:
		return replacement
	}
}

// UpperFirst capitalizes the first letter of s and leaves the rest alone.
func UpperFirst(s string) string {
	for i, r := range s {
		if unicode.IsLetter(r) {
			n := i + utf8.RuneLen(r)
			return s[:i] + cases.Upper(language.English).String(s[i:n]) + s[n:]
		}
	}
	return s
}
