package actor

import (
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// MemoryKind distinguishes internal thoughts from things that were said.
type MemoryKind string

const (
	MemoryThought  MemoryKind = "thought"
	MemoryDialogue MemoryKind = "dialogue"
)

// Importance is the coarse score that drives short- to long-term promotion.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceNormal Importance = "normal"
	ImportanceHigh   Importance = "high"
)

const (
	DefaultShortTermCap = 10
	DefaultLongTermCap  = 50
)

var urgentKeywords = []string{
	"urgent", "important", "emergency", "deadline", "asap", "critical",
	"fired", "promotion", "promoted", "layoff", "boss", "meeting", "immediately",
}

var emotionalKeywords = []string{
	"love", "hate", "angry", "sad", "happy", "excited", "upset", "worried",
	"scared", "frustrated", "thrilled", "annoyed", "nervous", "proud", "lonely",
}

var (
	urgentPattern    = keywordPattern(urgentKeywords)
	emotionalPattern = keywordPattern(emotionalKeywords)
)

func keywordPattern(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// ScoreImportance classifies content by keyword scan: urgent words mark it
// high, emotional words normal, anything else low.
func ScoreImportance(content string) Importance {
	if urgentPattern.MatchString(content) {
		return ImportanceHigh
	}
	if emotionalPattern.MatchString(content) {
		return ImportanceNormal
	}
	return ImportanceLow
}

// MemoryEntry is one remembered thought or line of dialogue.
type MemoryEntry struct {
	ID         string     `json:"id"`
	Kind       MemoryKind `json:"kind"`
	Content    string     `json:"content"`
	Timestamp  time.Time  `json:"timestamp"`
	Importance Importance `json:"importance"`
}

// NewMemoryEntry builds an entry with a time-sortable ID and a computed
// importance score.
func NewMemoryEntry(kind MemoryKind, content string, at time.Time) MemoryEntry {
	return MemoryEntry{
		ID:         ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String(),
		Kind:       kind,
		Content:    content,
		Timestamp:  at,
		Importance: ScoreImportance(content),
	}
}

// Memory is a two-tier log. Short-term memory is FIFO-bounded; entries
// evicted from it are copied to long-term memory only when their importance
// is high. Long-term memory is itself bounded, oldest evicted first.
type Memory struct {
	shortTerm []MemoryEntry
	longTerm  []MemoryEntry
	shortCap  int
	longCap   int
}

// NewMemory creates a memory with the given caps; non-positive caps fall back
// to the defaults.
func NewMemory(shortCap, longCap int) *Memory {
	if shortCap <= 0 {
		shortCap = DefaultShortTermCap
	}
	if longCap <= 0 {
		longCap = DefaultLongTermCap
	}
	return &Memory{
		shortTerm: make([]MemoryEntry, 0, shortCap),
		longTerm:  make([]MemoryEntry, 0),
		shortCap:  shortCap,
		longCap:   longCap,
	}
}

// Add appends an entry to short-term memory. When the cap is exceeded the
// oldest entry is evicted and returned; promoted reports whether it was
// copied into long-term memory.
func (m *Memory) Add(e MemoryEntry) (evicted *MemoryEntry, promoted bool) {
	m.shortTerm = append(m.shortTerm, e)
	if len(m.shortTerm) <= m.shortCap {
		return nil, false
	}

	oldest := m.shortTerm[0]
	m.shortTerm = append([]MemoryEntry(nil), m.shortTerm[1:]...)
	if oldest.Importance == ImportanceHigh {
		m.promote(oldest)
		promoted = true
	}
	return &oldest, promoted
}

func (m *Memory) promote(e MemoryEntry) {
	m.longTerm = append(m.longTerm, e)
	if over := len(m.longTerm) - m.longCap; over > 0 {
		m.longTerm = append([]MemoryEntry(nil), m.longTerm[over:]...)
	}
}

// ShortTerm returns a copy of short-term memory, most recent last.
func (m *Memory) ShortTerm() []MemoryEntry {
	return append([]MemoryEntry(nil), m.shortTerm...)
}

// LongTerm returns a copy of long-term memory, most recent last.
func (m *Memory) LongTerm() []MemoryEntry {
	return append([]MemoryEntry(nil), m.longTerm...)
}

// Recent returns up to n of the most recent short-term entries.
func (m *Memory) Recent(n int) []MemoryEntry {
	if n <= 0 || len(m.shortTerm) == 0 {
		return nil
	}
	if n > len(m.shortTerm) {
		n = len(m.shortTerm)
	}
	return append([]MemoryEntry(nil), m.shortTerm[len(m.shortTerm)-n:]...)
}

// Search returns entries from both tiers whose content contains keyword,
// long-term first.
func (m *Memory) Search(keyword string) []MemoryEntry {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return nil
	}
	var out []MemoryEntry
	for _, tier := range [][]MemoryEntry{m.longTerm, m.shortTerm} {
		for _, e := range tier {
			if strings.Contains(strings.ToLower(e.Content), keyword) {
				out = append(out, e)
			}
		}
	}
	return out
}

// Caps returns the short- and long-term capacities.
func (m *Memory) Caps() (short, long int) {
	return m.shortCap, m.longCap
}
