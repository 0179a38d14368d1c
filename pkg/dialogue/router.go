package dialogue

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/analysis"
	"github.com/jwebster45206/npc-engine/pkg/conversation"
)

// Routing confidences.
const (
	ConfidenceFallback   = 0.3
	ConfidenceBias       = 0.5
	ConfidenceContinuity = 0.4
	ConfidenceEmergency  = 0.0
	minMatchedConfidence = 0.6
)

var emergencyLines = []string{"I see.", "That's interesting.", "Hmm, right."}

// RouteResult is the router's decision and the line the chosen pool produced.
type RouteResult struct {
	Pool       PoolName `json:"pool"`
	Confidence float64  `json:"confidence"`
	Response   string   `json:"response"`
}

// Router picks the topic pool that answers a message.
type Router struct {
	pools   []Pool // specialized pools, by priority
	general Pool
	rng     Rand
	logger  *slog.Logger
}

// NewRouter creates a router over the standard pools.
func NewRouter(rng Rand, logger *slog.Logger) *Router {
	logger = orDefault(logger)
	return NewRouterWithPools(rng, logger, NewGeneralPool(rng, logger),
		NewSportsPool(rng, logger),
		NewFoodPool(rng, logger),
		NewWorkPool(rng, logger),
		NewPersonalPool(rng, logger),
		NewBanterPool(rng, logger),
	)
}

// NewRouterWithPools creates a router over custom pools. general answers
// when nothing else matches.
func NewRouterWithPools(rng Rand, logger *slog.Logger, general Pool, pools ...Pool) *Router {
	sorted := append([]Pool(nil), pools...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})
	return &Router{
		pools:   sorted,
		general: general,
		rng:     orRand(rng),
		logger:  orDefault(logger),
	}
}

// Pools returns the specialized pools in priority order.
func (rt *Router) Pools() []Pool {
	return append([]Pool(nil), rt.pools...)
}

// Route selects a pool for message and generates its reply. record, when
// non-nil, overrides ctx.Record. Route never fails; pool failures produce
// an emergency line.
func (rt *Router) Route(message string, c *actor.Character, ctx Context, record *conversation.Record) (res RouteResult) {
	defer func() {
		if r := recover(); r != nil {
			rt.logger.Error("Router panicked, using emergency line",
				"panic", fmt.Sprint(r))
			res = RouteResult{Pool: PoolGeneral, Confidence: ConfidenceEmergency, Response: pickString(rt.rng, emergencyLines)}
		}
	}()

	if record != nil {
		ctx.Record = record
	}
	if ctx.Analysis.Type == "" {
		ctx.Analysis = analysis.Analyze(message)
	}

	pool, confidence := rt.Select(message, c, ctx)
	response, ok := rt.generate(pool, message, c, ctx)
	if !ok {
		return RouteResult{Pool: pool.Name(), Confidence: ConfidenceEmergency, Response: pickString(rt.rng, emergencyLines)}
	}
	return RouteResult{Pool: pool.Name(), Confidence: confidence, Response: response}
}

// Select returns the pool that should answer and the router's confidence
// in that choice. Among matching pools the lowest priority wins.
func (rt *Router) Select(message string, c *actor.Character, ctx Context) (Pool, float64) {
	a := ctx.Analysis
	if strings.TrimSpace(message) != "" {
		for _, pool := range rt.pools {
			if rt.matches(pool, a, message) {
				return pool, max(a.Confidence, minMatchedConfidence)
			}
		}
		if pool := rt.continuity(a, ctx.Record); pool != nil {
			return pool, ConfidenceContinuity
		}
		if c != nil && c.HasAnyTrait("Extroverted", "Humorous") && a.IsCasualChat() {
			if pool := rt.byName(PoolBanter); pool != nil {
				return pool, ConfidenceBias
			}
		}
	}
	return rt.general, ConfidenceFallback
}

// continuity keeps a short follow-up like "yeah, totally" with the pool
// that answered the previous turn while the conversation is still live.
func (rt *Router) continuity(a analysis.Analysis, record *conversation.Record) Pool {
	if record == nil || record.State != conversation.StateActive {
		return nil
	}
	if a.Type != analysis.TypeShortStatement && a.Type != analysis.TypeExclamation {
		return nil
	}
	last, ok := record.LastRoute()
	if !ok {
		return nil
	}
	return rt.byName(PoolName(last.Pool))
}

func (rt *Router) byName(name PoolName) Pool {
	for _, pool := range rt.pools {
		if pool.Name() == name {
			return pool
		}
	}
	return nil
}

func (rt *Router) matches(pool Pool, a analysis.Analysis, message string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			rt.logger.Warn("Topic pool matcher panicked",
				"pool", pool.Name(),
				"panic", fmt.Sprint(r))
			ok = false
		}
	}()
	return pool.Matches(a, message)
}

func (rt *Router) generate(pool Pool, message string, c *actor.Character, ctx Context) (line string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			rt.logger.Error("Topic pool failed",
				"pool", pool.Name(),
				"panic", fmt.Sprint(r))
			line, ok = "", false
		}
	}()
	line = pool.GenerateResponse(message, c, ctx)
	return line, strings.TrimSpace(line) != ""
}
