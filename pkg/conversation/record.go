// Package conversation tracks per-pair conversation state: turn counts,
// topic history, sticky sentiment and a lifecycle that is re-evaluated on
// every turn.
package conversation

import (
	"sort"
	"strings"
	"time"

	"github.com/jwebster45206/npc-engine/pkg/analysis"
)

// Lifecycle is where a conversation is headed.
type Lifecycle string

const (
	StateActive         Lifecycle = "active"
	StateTopicExhausted Lifecycle = "topic_exhausted"
	StateWindingDown    Lifecycle = "winding_down"
	StateEnding         Lifecycle = "ending"
)

// Key identifies a conversation by its participants regardless of order.
// A single participant (a monologue) keys by its own id.
func Key(a, b string) string {
	if b == "" || a == b {
		return a
	}
	if a == "" {
		return b
	}
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

// Participants splits a key back into its participant ids.
func Participants(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, "|")
}

// Message is one line in a conversation.
type Message struct {
	Speaker   string               `json:"speaker"`
	Text      string               `json:"text"`
	At        time.Time            `json:"at"`
	Type      analysis.MessageType `json:"type,omitempty"`
	Sentiment analysis.Sentiment   `json:"sentiment,omitempty"`
}

// RouteDecision records which pool answered a turn.
type RouteDecision struct {
	Pool       string    `json:"pool"`
	Confidence float64   `json:"confidence"`
	At         time.Time `json:"at"`
}

// Record is the state of one conversation. Values handed out by the
// Manager are copies.
type Record struct {
	Key          string             `json:"key"`
	Participants []string           `json:"participants"`
	StartedAt    time.Time          `json:"started_at"`
	LastActivity time.Time          `json:"last_activity"`
	TurnCount    int                `json:"turn_count"`
	Topics       []analysis.Topic   `json:"topics,omitempty"` // most recent last
	SeenTopics   []analysis.Topic   `json:"seen_topics,omitempty"` // every distinct topic, first seen first
	Sentiment    analysis.Sentiment `json:"sentiment"`
	State        Lifecycle          `json:"state"`
	Messages     []Message          `json:"messages,omitempty"`
	Routes       []RouteDecision    `json:"routes,omitempty"`
}

func (r *Record) clone() Record {
	out := *r
	out.Participants = append([]string(nil), r.Participants...)
	out.Topics = append([]analysis.Topic(nil), r.Topics...)
	out.SeenTopics = append([]analysis.Topic(nil), r.SeenTopics...)
	out.Messages = append([]Message(nil), r.Messages...)
	out.Routes = append([]RouteDecision(nil), r.Routes...)
	return out
}

// HasTopic reports whether the topic is in the recorded history.
func (r Record) HasTopic(t analysis.Topic) bool {
	return containsTopic(r.Topics, t)
}

// DistinctTopics counts every distinct topic the conversation has touched,
// including ones trimmed from the recent history.
func (r Record) DistinctTopics() int {
	seen := make(map[analysis.Topic]struct{}, len(r.SeenTopics)+len(r.Topics))
	for _, t := range r.SeenTopics {
		seen[t] = struct{}{}
	}
	for _, t := range r.Topics {
		seen[t] = struct{}{}
	}
	return len(seen)
}

func (r *Record) addSeen(topics []analysis.Topic) {
	for _, t := range topics {
		if !containsTopic(r.SeenTopics, t) {
			r.SeenTopics = append(r.SeenTopics, t)
		}
	}
}

func containsTopic(ts []analysis.Topic, t analysis.Topic) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}

// LastRoute returns the most recent routing decision.
func (r Record) LastRoute() (RouteDecision, bool) {
	if len(r.Routes) == 0 {
		return RouteDecision{}, false
	}
	return r.Routes[len(r.Routes)-1], true
}

// trimTail keeps the newest max entries.
func trimTail[T any](s []T, max int) []T {
	if max <= 0 || len(s) <= max {
		return s
	}
	return append([]T(nil), s[len(s)-max:]...)
}
