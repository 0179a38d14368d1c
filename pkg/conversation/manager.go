package conversation

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/analysis"
)

// Rand is the random source used for threading effects.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Config holds lifecycle thresholds, threading chances and history caps.
type Config struct {
	TopicShiftThreshold int     // turns after which a topic may be exhausted
	EndThreshold        int     // turns after which a conversation winds down
	TopicShiftChance    float64 // chance of appending a topic shift past TopicShiftThreshold
	SignOffChance       float64 // chance of appending a sign-off past EndThreshold
	MaxMessages         int
	MaxTopics           int
	MaxRoutes           int
	SentimentDecay      time.Duration // 0 disables decay
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		TopicShiftThreshold: 8,
		EndThreshold:        15,
		TopicShiftChance:    0.3,
		SignOffChance:       0.2,
		MaxMessages:         50,
		MaxTopics:           10,
		MaxRoutes:           20,
		SentimentDecay:      10 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TopicShiftThreshold <= 0 {
		c.TopicShiftThreshold = d.TopicShiftThreshold
	}
	if c.EndThreshold <= 0 {
		c.EndThreshold = d.EndThreshold
	}
	if c.TopicShiftChance < 0 {
		c.TopicShiftChance = 0
	}
	if c.SignOffChance < 0 {
		c.SignOffChance = 0
	}
	if c.MaxMessages <= 0 {
		c.MaxMessages = d.MaxMessages
	}
	if c.MaxTopics <= 0 {
		c.MaxTopics = d.MaxTopics
	}
	if c.MaxRoutes <= 0 {
		c.MaxRoutes = d.MaxRoutes
	}
	return c
}

// Manager owns every conversation record. Records are only mutated through
// its methods; callers always receive copies.
type Manager struct {
	mu      sync.Mutex
	records map[string]*Record
	locks   map[string]*pairLock
	cfg     Config
	rng     Rand
	logger  *slog.Logger
	now     func() time.Time
}

// NewManager creates an empty store.
func NewManager(cfg Config, rng Rand, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		records: make(map[string]*Record),
		locks:   make(map[string]*pairLock),
		cfg:     cfg.withDefaults(),
		rng:     rng,
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock replaces the time source.
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Config returns the active configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

func (m *Manager) newRecord(key string) *Record {
	now := m.now()
	return &Record{
		Key:          key,
		Participants: Participants(key),
		StartedAt:    now,
		LastActivity: now,
		Sentiment:    analysis.SentimentNeutral,
		State:        StateActive,
	}
}

// Create starts a fresh record for the pair, replacing any existing one.
func (m *Manager) Create(a, b string) Record {
	key := Key(a, b)
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.newRecord(key)
	m.records[key] = r
	return r.clone()
}

// GetOrCreate returns the pair's record, creating it on first contact.
func (m *Manager) GetOrCreate(a, b string) Record {
	key := Key(a, b)
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[key]
	if !ok {
		r = m.newRecord(key)
		m.records[key] = r
		m.logger.Debug("Conversation started", "conversation", key)
	}
	return m.view(r)
}

// Get returns a record by key.
func (m *Manager) Get(key string) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[key]
	if !ok {
		return Record{}, false
	}
	return m.view(r), true
}

// view copies a record, applying sentiment decay.
func (m *Manager) view(r *Record) Record {
	out := r.clone()
	if m.decayed(r) {
		out.Sentiment = analysis.SentimentNeutral
	}
	return out
}

func (m *Manager) decayed(r *Record) bool {
	return m.cfg.SentimentDecay > 0 && m.now().Sub(r.LastActivity) > m.cfg.SentimentDecay
}

// Evict removes a record. It returns false if there was none.
func (m *Manager) Evict(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[key]; !ok {
		return false
	}
	delete(m.records, key)
	return true
}

type pairLock struct {
	mu   sync.Mutex
	refs int // holders plus waiters
}

// Lock serializes processing for one conversation. The returned function
// releases it. A key's mutex is dropped once nobody holds or waits on it.
func (m *Manager) Lock(key string) (unlock func()) {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &pairLock{}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			m.mu.Lock()
			l.refs--
			if l.refs == 0 && m.locks[key] == l {
				delete(m.locks, key)
			}
			m.mu.Unlock()
		})
	}
}

// TurnResult is the outcome of recording an incoming message.
type TurnResult struct {
	Record    Record
	Lifecycle Lifecycle
	Changed   bool // lifecycle differs from the previous turn
}

// RecordTurn appends an incoming message, updates topics and sentiment,
// increments the turn count and re-evaluates the lifecycle.
func (m *Manager) RecordTurn(key, speaker, message string, a analysis.Analysis) TurnResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[key]
	if !ok {
		r = m.newRecord(key)
		m.records[key] = r
	}
	if m.decayed(r) {
		r.Sentiment = analysis.SentimentNeutral
	}

	now := m.now()
	r.LastActivity = now
	r.TurnCount++
	r.Messages = trimTail(append(r.Messages, Message{
		Speaker:   speaker,
		Text:      message,
		At:        now,
		Type:      a.Type,
		Sentiment: a.Sentiment,
	}), m.cfg.MaxMessages)
	r.Topics = trimTail(append(r.Topics, a.Topics...), m.cfg.MaxTopics)
	r.addSeen(a.Topics)
	if a.Sentiment != "" && a.Sentiment != analysis.SentimentNeutral {
		r.Sentiment = a.Sentiment
	}

	prev := r.State
	r.State = m.evaluate(r, a)
	if r.State != prev {
		m.logger.Debug("Conversation lifecycle changed",
			"conversation", key,
			"from", prev,
			"to", r.State,
			"turns", r.TurnCount)
	}
	return TurnResult{Record: r.clone(), Lifecycle: r.State, Changed: r.State != prev}
}

// RecordReply appends an outgoing line and the routing decision that
// produced it. Replies do not count as turns.
func (m *Manager) RecordReply(key, speaker, reply string, route RouteDecision) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[key]
	if !ok {
		r = m.newRecord(key)
		m.records[key] = r
	}
	now := m.now()
	if route.At.IsZero() {
		route.At = now
	}
	r.LastActivity = now
	r.Messages = trimTail(append(r.Messages, Message{Speaker: speaker, Text: reply, At: now}), m.cfg.MaxMessages)
	if route.Pool != "" {
		r.Routes = trimTail(append(r.Routes, route), m.cfg.MaxRoutes)
	}
}

// Evaluate computes the lifecycle for a record given the latest message.
// It does not modify the record.
func (m *Manager) Evaluate(r Record, a analysis.Analysis) Lifecycle {
	return m.evaluate(&r, a)
}

func (m *Manager) evaluate(r *Record, a analysis.Analysis) Lifecycle {
	switch {
	case a.Type == analysis.TypeConversationEnder:
		return StateEnding
	case r.TurnCount > m.cfg.EndThreshold:
		return StateWindingDown
	case r.TurnCount > m.cfg.TopicShiftThreshold && r.DistinctTopics() <= 1:
		return StateTopicExhausted
	default:
		return StateActive
	}
}

// Thread may append a sign-off or a topic shift to an outgoing reply,
// depending on how long the conversation has run.
func (m *Manager) Thread(reply string, r Record, c *actor.Character) string {
	if m.rng == nil || r.State == StateEnding {
		return reply
	}
	if r.TurnCount > m.cfg.EndThreshold && m.rng.Float64() < m.cfg.SignOffChance {
		return join(reply, pick(m.rng, signOffsFor(c)))
	}
	if r.TurnCount > m.cfg.TopicShiftThreshold && m.rng.Float64() < m.cfg.TopicShiftChance {
		return join(reply, pick(m.rng, topicShiftsFor(r)))
	}
	return reply
}

func join(reply, extra string) string {
	if reply == "" {
		return extra
	}
	if extra == "" {
		return reply
	}
	return reply + " " + extra
}

func pick(rng Rand, lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return lines[rng.Intn(len(lines))]
}

// Stats summarizes the store.
type Stats struct {
	Total        int               `json:"total"`
	ByLifecycle  map[Lifecycle]int `json:"by_lifecycle"`
	PoolUsage    map[string]int    `json:"pool_usage"`
	TotalTurns   int               `json:"total_turns"`
	AverageTurns float64           `json:"average_turns"`
	Oldest       time.Time         `json:"oldest,omitempty"`
}

// Stats reports counts across all records.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Stats{
		Total:       len(m.records),
		ByLifecycle: make(map[Lifecycle]int),
		PoolUsage:   make(map[string]int),
	}
	for _, r := range m.records {
		s.ByLifecycle[r.State]++
		s.TotalTurns += r.TurnCount
		for _, route := range r.Routes {
			s.PoolUsage[route.Pool]++
		}
		if s.Oldest.IsZero() || r.StartedAt.Before(s.Oldest) {
			s.Oldest = r.StartedAt
		}
	}
	if s.Total > 0 {
		s.AverageTurns = float64(s.TotalTurns) / float64(s.Total)
	}
	return s
}

// CleanupOldConversations evicts records idle for longer than maxAge that
// are no longer active. It returns the number evicted; a second call with
// no intervening activity evicts nothing.
func (m *Manager) CleanupOldConversations(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	evicted := 0
	for key, r := range m.records {
		if r.State == StateActive {
			continue
		}
		if now.Sub(r.LastActivity) > maxAge {
			delete(m.records, key)
			evicted++
		}
	}
	if evicted > 0 {
		m.logger.Info("Evicted stale conversations", "count", evicted, "remaining", len(m.records))
	}
	return evicted
}
