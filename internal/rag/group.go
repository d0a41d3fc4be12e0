package rag

import (
	"context"
	"sort"

	"github.com/miappbora/bora-tutor/internal/lexicon"
	"github.com/miappbora/bora-tutor/internal/metrics"
)

// groupHits partitions hits by headword, keeping first-seen order until
// the final sort. Each group's best similarity is the maximum over its
// members, and example pairs carried by member hits are collected with
// dedup.
func groupHits(hits []lexicon.Hit) []*Group {
	byHeadword := make(map[string]*Group)
	var order []string

	for _, h := range hits {
		g, ok := byHeadword[h.Headword]
		if !ok {
			g = &Group{Headword: h.Headword}
			byHeadword[h.Headword] = g
			order = append(order, h.Headword)
		}

		g.Hits = append(g.Hits, h)
		if h.Similarity > g.BestSimilarity {
			g.BestSimilarity = h.Similarity
		}
		if g.Gloss == "" && h.Gloss != "" {
			g.Gloss = h.Gloss
			g.PartOfSpeech = h.PartOfSpeech
		}
		if h.Kind == lexicon.KindExample && h.Example != nil {
			addExample(g, *h.Example)
		}
	}

	groups := make([]*Group, 0, len(order))
	for _, hw := range order {
		groups = append(groups, byHeadword[hw])
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].BestSimilarity > groups[j].BestSimilarity
	})
	return groups
}

// addExample appends a pair unless an identical one is already present.
func addExample(g *Group, pair lexicon.ExamplePair) {
	for _, e := range g.Examples {
		if e == pair {
			return
		}
	}
	g.Examples = append(g.Examples, pair)
}

// enricher tops up group examples from the lexicon store under a call
// budget.
type enricher struct {
	store       lexicon.Store
	maxExamples int
	fast        bool
	enabled     bool
}

// enrich backfills examples for each group up to the cap. Fast mode and
// disabled enrichment skip the extra lookups entirely; either way every
// group is capped afterward. Lookup failures are absorbed as empty
// results.
func (e *enricher) enrich(ctx context.Context, groups []*Group, counters *metrics.Counters) {
	for _, g := range groups {
		if e.enabled && !e.fast && len(g.Examples) < e.maxExamples {
			e.topUp(ctx, g, counters)
		}
		if len(g.Examples) > e.maxExamples {
			g.Examples = g.Examples[:e.maxExamples]
		}
		counters.Inc("examples", len(g.Examples))
	}
}

func (e *enricher) topUp(ctx context.Context, g *Group, counters *metrics.Counters) {
	record, err := e.store.FindExact(ctx, g.Headword)
	counters.Inc("enrichment_lookups", 1)
	if err != nil || record == nil {
		return
	}

	limit := e.maxExamples - len(g.Examples)
	pairs, err := e.store.ExamplesFor(ctx, record.ID, limit)
	counters.Inc("enrichment_lookups", 1)
	if err != nil {
		return
	}
	for _, p := range pairs {
		if len(g.Examples) >= e.maxExamples {
			break
		}
		addExample(g, p)
	}
}
