package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/miappbora/bora-tutor/internal/bus"
	"github.com/miappbora/bora-tutor/internal/cache"
	"github.com/miappbora/bora-tutor/internal/embedding"
	"github.com/miappbora/bora-tutor/internal/lexicon"
	"github.com/miappbora/bora-tutor/internal/llm"
	"github.com/miappbora/bora-tutor/internal/metrics"
	apperrors "github.com/miappbora/bora-tutor/internal/pkg/errors"
	"github.com/miappbora/bora-tutor/internal/pkg/hash"
	"github.com/miappbora/bora-tutor/internal/pkg/logger"
)

// Generator produces answer text from a message transcript. Implemented
// by the llm provider chain.
type Generator interface {
	Generate(ctx context.Context, messages []llm.Message, opts llm.Options) (string, llm.Outcome, error)
}

// Config holds pipeline tuning parameters.
type Config struct {
	DefaultTopK       int
	MaxTopK           int
	MinSimilarity     float64
	MaxExamples       int
	FastMaxExamples   int
	HistoryWindow     int
	CacheTTL time.Duration

	// DisableEnrichment turns off the example top-up lookups. Off by
	// default so a zero Config enriches like the other defaults.
	DisableEnrichment bool
	Temperature       float64
	MaxTokens         int
	FastMaxTokens     int
}

// Pipeline answers lexicon questions by retrieving relevant entries,
// assembling a textual context, and generating an answer with the
// provider chain. Every external boundary except generation absorbs
// failures into empty results; generation fails loud unless the outage
// policy tolerates it.
type Pipeline struct {
	store     lexicon.Store
	embedder  embedding.Embedder
	generator Generator
	cache     cache.Cache
	events    bus.Bus
	cfg       Config
	log       *logger.Logger
	now       func() time.Time
}

// NewPipeline wires the pipeline from its collaborators. events may be
// nil when no bus is configured.
func NewPipeline(store lexicon.Store, embedder embedding.Embedder, generator Generator, resultCache cache.Cache, events bus.Bus, cfg Config, log *logger.Logger) *Pipeline {
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 10
	}
	if cfg.MaxTopK <= 0 {
		cfg.MaxTopK = 50
	}
	if cfg.MinSimilarity <= 0 {
		cfg.MinSimilarity = 0.7
	}
	if cfg.MaxExamples <= 0 {
		cfg.MaxExamples = 3
	}
	if cfg.FastMaxExamples <= 0 {
		cfg.FastMaxExamples = 1
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 3
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 120 * time.Second
	}

	return &Pipeline{
		store:     store,
		embedder:  embedder,
		generator: generator,
		cache:     resultCache,
		events:    events,
		cfg:       cfg,
		log:       log.WithComponent("rag-pipeline"),
		now:       time.Now,
	}
}

// Answer runs the full pipeline for one request.
func (p *Pipeline) Answer(ctx context.Context, req Request) (*Result, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, apperrors.ValidationError("query must not be empty")
	}

	topK := req.TopK
	if topK <= 0 {
		topK = p.cfg.DefaultTopK
	}
	if topK > p.cfg.MaxTopK {
		topK = p.cfg.MaxTopK
	}
	minSim := req.MinSimilarity
	if minSim <= 0 {
		minSim = p.cfg.MinSimilarity
	}

	timings := metrics.NewTimingsWithClock(p.now)
	counters := metrics.NewCounters()
	stopTotal := timings.Track("total")
	log := p.log.WithQuery(query)

	key := cacheKey(req, topK, minSim)
	if cached := p.cacheLookup(ctx, key, timings); cached != nil {
		counters.Set("cache_hit", 1)
		stopTotal()
		cached.Timings = timings.Map()
		for name, v := range counters.Map() {
			cached.Counters[name] = v
		}
		log.Debug("answer served from cache", "key", key)
		return cached, nil
	}
	counters.Set("cache_hit", 0)

	stopEmbed := timings.Track("embedding")
	vector, err := p.embedder.Embed(ctx, query)
	stopEmbed()
	if err != nil || len(vector) == 0 {
		if err != nil {
			log.Warn("embedding failed, returning fallback answer", "error", err)
		}
		return p.finish(ctx, key, emptyResult(timings, counters, stopTotal), log), nil
	}

	stopRetrieval := timings.Track("retrieval")
	hits, err := p.store.Search(ctx, lexicon.SearchParams{
		Vector:        vector,
		TopK:          topK,
		MinSimilarity: minSim,
		Category:      req.Category,
	})
	stopRetrieval()
	if err != nil {
		// Search failure and empty result are treated the same.
		log.Warn("vector search failed", "error", err)
		hits = nil
	}

	stopExact := timings.Track("exact_match")
	record, err := p.store.FindExact(ctx, query)
	stopExact()
	if err != nil {
		log.Warn("exact-match lookup failed", "error", err)
		record = nil
	}
	hits = mergeExact(hits, record, topK)
	counters.Set("hits", len(hits))

	stopGrouping := timings.Track("grouping")
	groups := groupHits(hits)
	maxExamples := p.cfg.MaxExamples
	if req.Fast {
		maxExamples = p.cfg.FastMaxExamples
	}
	enr := &enricher{
		store:       p.store,
		maxExamples: maxExamples,
		fast:        req.Fast,
		enabled:     !p.cfg.DisableEnrichment,
	}
	enr.enrich(ctx, groups, counters)
	stopGrouping()
	counters.Set("groups", len(groups))

	stopContext := timings.Track("context")
	contextBlock := renderContext(groups)
	stopContext()

	maxTokens := p.cfg.MaxTokens
	if req.Fast && p.cfg.FastMaxTokens > 0 {
		maxTokens = p.cfg.FastMaxTokens
	}
	messages := llm.BuildMessages(query, contextBlock, req.History, p.cfg.HistoryWindow)

	stopGeneration := timings.Track("generation")
	text, outcome, err := p.generator.Generate(ctx, messages, llm.Options{
		Temperature: p.cfg.Temperature,
		MaxTokens:   maxTokens,
	})
	stopGeneration()
	if err != nil {
		return nil, err
	}

	answer := postProcess(text)
	if outcome == llm.OutcomeHeuristic || answer == "" {
		answer = heuristicAnswer(contextBlock)
		counters.Set("fallback_used", 1)
	}

	stopTotal()
	result := &Result{
		Answer:   answer,
		Results:  hits,
		Timings:  timings.Map(),
		Counters: counters.Map(),
	}
	return p.finish(ctx, key, result, log), nil
}

// Retrieve runs the retrieval half of the pipeline only: embed, search,
// exact-match boost. Used by the lexicon search endpoint, which wants
// ranked hits without generation. Boundary failures are absorbed the
// same way Answer absorbs them.
func (p *Pipeline) Retrieve(ctx context.Context, req Request) ([]lexicon.Hit, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, apperrors.ValidationError("query must not be empty")
	}

	topK := req.TopK
	if topK <= 0 {
		topK = p.cfg.DefaultTopK
	}
	if topK > p.cfg.MaxTopK {
		topK = p.cfg.MaxTopK
	}
	minSim := req.MinSimilarity
	if minSim <= 0 {
		minSim = p.cfg.MinSimilarity
	}
	log := p.log.WithQuery(query)

	vector, err := p.embedder.Embed(ctx, query)
	if err != nil || len(vector) == 0 {
		if err != nil {
			log.Warn("embedding failed", "error", err)
		}
		return []lexicon.Hit{}, nil
	}

	hits, err := p.store.Search(ctx, lexicon.SearchParams{
		Vector:        vector,
		TopK:          topK,
		MinSimilarity: minSim,
		Category:      req.Category,
	})
	if err != nil {
		log.Warn("vector search failed", "error", err)
		hits = nil
	}

	record, err := p.store.FindExact(ctx, query)
	if err != nil {
		log.Warn("exact-match lookup failed", "error", err)
		record = nil
	}
	return mergeExact(hits, record, topK), nil
}

// cacheLookup reads the result cache, timing the lookup even on a miss.
func (p *Pipeline) cacheLookup(ctx context.Context, key string, timings *metrics.Timings) *Result {
	stop := timings.Track("cache_lookup")
	defer stop()

	if p.cache == nil {
		return nil
	}
	data, ok := p.cache.Get(ctx, key)
	if !ok {
		return nil
	}

	var cached Result
	if err := json.Unmarshal(data, &cached); err != nil {
		p.log.Warn("discarding undecodable cache entry", "key", key, "error", err)
		return nil
	}
	if cached.Counters == nil {
		cached.Counters = make(map[string]int)
	}
	return &cached
}

// emptyResult builds the degraded result used when no embedding is
// available: no retrieval, heuristic empty-context answer.
func emptyResult(timings *metrics.Timings, counters *metrics.Counters, stopTotal func()) *Result {
	counters.Set("hits", 0)
	counters.Set("groups", 0)
	counters.Set("fallback_used", 1)
	stopTotal()
	return &Result{
		Answer:   heuristicAnswer(emptyContextSentinel),
		Results:  []lexicon.Hit{},
		Timings:  timings.Map(),
		Counters: counters.Map(),
	}
}

// finish stores the result in the cache and publishes the answered
// event. Both are best-effort.
func (p *Pipeline) finish(ctx context.Context, key string, result *Result, log *logger.Logger) *Result {
	if p.cache != nil {
		data, err := json.Marshal(result)
		if err == nil {
			err = p.cache.Put(ctx, key, data, p.cfg.CacheTTL)
		}
		if err != nil {
			log.Warn("failed to cache answer", "key", key, "error", err)
		}
	}

	if p.events != nil {
		event := bus.Event{
			ID:        hash.SHA256Short([]byte(fmt.Sprintf("%s:%d", key, p.now().UnixNano())), 16),
			Type:      "query.answered",
			Source:    "bora-tutor",
			Timestamp: p.now().Unix(),
			Payload: map[string]any{
				"cache_key": key,
				"hits":      len(result.Results),
				"counters":  result.Counters,
			},
		}
		if err := p.events.Publish(ctx, bus.TopicQueryAnswered, event); err != nil {
			log.Debug("failed to publish answered event", "error", err)
		}
	}

	return result
}
