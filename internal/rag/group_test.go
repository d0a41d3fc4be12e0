package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/miappbora/bora-tutor/internal/lexicon"
	"github.com/miappbora/bora-tutor/internal/metrics"
)

func TestGroupHits_CollectsAndDedupsExamples(t *testing.T) {
	pair := lexicon.ExamplePair{SourceText: "hola", TargetText: "bora-hola"}
	hits := []lexicon.Hit{
		{ID: 1, Kind: lexicon.KindLemma, Headword: "hola", Gloss: "hello", Similarity: 0.9},
		{ID: 2, Kind: lexicon.KindExample, Headword: "hola", Example: &pair, Similarity: 0.85},
		{ID: 3, Kind: lexicon.KindExample, Headword: "hola", Example: &pair, Similarity: 0.84},
	}

	groups := groupHits(hits)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	g := groups[0]
	if len(g.Examples) != 1 {
		t.Errorf("got %d examples, want 1 after dedup", len(g.Examples))
	}
	if g.Gloss != "hello" {
		t.Errorf("group gloss = %q, want hello", g.Gloss)
	}
	if g.BestSimilarity != 0.9 {
		t.Errorf("best similarity = %v, want 0.9", g.BestSimilarity)
	}
}

func TestEnricher_TopsUpToCap(t *testing.T) {
	store := &fakeStore{
		exact: map[string]*lexicon.HeadwordRecord{
			"hola": {ID: 5, Headword: "hola", Gloss: "hello"},
		},
		examples: map[int64][]lexicon.ExamplePair{
			5: {
				{SourceText: "a", TargetText: "1"},
				{SourceText: "b", TargetText: "2"},
				{SourceText: "c", TargetText: "3"},
				{SourceText: "d", TargetText: "4"},
			},
		},
	}

	groups := []*Group{{
		Headword: "hola",
		Examples: []lexicon.ExamplePair{{SourceText: "existing", TargetText: "x"}},
	}}
	counters := metrics.NewCounters()

	enr := &enricher{store: store, maxExamples: 3, enabled: true}
	enr.enrich(context.Background(), groups, counters)

	if got := len(groups[0].Examples); got != 3 {
		t.Errorf("got %d examples, want 3", got)
	}
	if counters.Get("enrichment_lookups") != 2 {
		t.Errorf("enrichment_lookups = %d, want 2", counters.Get("enrichment_lookups"))
	}
	if counters.Get("examples") != 3 {
		t.Errorf("examples = %d, want 3", counters.Get("examples"))
	}
}

func TestEnricher_FastModeSkipsLookups(t *testing.T) {
	store := &fakeStore{
		exact: map[string]*lexicon.HeadwordRecord{
			"hola": {ID: 5, Headword: "hola"},
		},
	}
	groups := []*Group{{
		Headword: "hola",
		Examples: []lexicon.ExamplePair{
			{SourceText: "a", TargetText: "1"},
			{SourceText: "b", TargetText: "2"},
		},
	}}
	counters := metrics.NewCounters()

	enr := &enricher{store: store, maxExamples: 1, fast: true, enabled: true}
	enr.enrich(context.Background(), groups, counters)

	if store.exactCalls != 0 || store.exampleCalls != 0 {
		t.Errorf("store called (%d exact, %d examples), want none in fast mode",
			store.exactCalls, store.exampleCalls)
	}
	if got := len(groups[0].Examples); got != 1 {
		t.Errorf("got %d examples, want 1", got)
	}
}

func TestMergeExact(t *testing.T) {
	record := &lexicon.HeadwordRecord{ID: 3, Headword: "sol", PartOfSpeech: "n", Gloss: "sun"}

	t.Run("injects synthetic hit", func(t *testing.T) {
		hits := []lexicon.Hit{
			{ID: 9, Kind: lexicon.KindSubentry, Headword: "solar", Similarity: 0.8},
		}
		merged := mergeExact(hits, record, 10)
		if len(merged) != 2 {
			t.Fatalf("got %d hits, want 2", len(merged))
		}
		if !merged[0].Synthetic() || merged[0].Similarity != 1.0 {
			t.Errorf("top hit = %+v, want synthetic sim 1.0", merged[0])
		}
	})

	t.Run("skips when lemma already present", func(t *testing.T) {
		hits := []lexicon.Hit{
			{ID: 3, Kind: lexicon.KindLemma, Headword: "sol", Similarity: 0.97},
		}
		merged := mergeExact(hits, record, 10)
		if len(merged) != 1 {
			t.Errorf("got %d hits, want 1", len(merged))
		}
	})

	t.Run("truncates back to topK", func(t *testing.T) {
		hits := []lexicon.Hit{
			{ID: 1, Kind: lexicon.KindSubentry, Headword: "a", Similarity: 0.9},
			{ID: 2, Kind: lexicon.KindSubentry, Headword: "b", Similarity: 0.8},
		}
		merged := mergeExact(hits, record, 2)
		if len(merged) != 2 {
			t.Fatalf("got %d hits, want 2", len(merged))
		}
		if merged[1].Headword != "a" {
			t.Errorf("second hit = %q, want a (lowest score dropped)", merged[1].Headword)
		}
	})

	t.Run("nil record is a no-op", func(t *testing.T) {
		hits := []lexicon.Hit{{ID: 1, Headword: "a"}}
		if merged := mergeExact(hits, nil, 10); len(merged) != 1 {
			t.Errorf("got %d hits, want 1", len(merged))
		}
	})
}

func TestHeuristicAnswer(t *testing.T) {
	t.Run("empty context", func(t *testing.T) {
		if got := heuristicAnswer(emptyContextSentinel); got != emptyContextAnswer {
			t.Errorf("got %q, want empty-context message", got)
		}
	})

	t.Run("templated from context", func(t *testing.T) {
		groups := []*Group{
			{
				Headword:       "abrazar",
				PartOfSpeech:   "v",
				Gloss:          "to hug",
				BestSimilarity: 1.0,
				Hits:           []lexicon.Hit{{ID: lexicon.SyntheticID, Kind: lexicon.KindLemma}},
				Examples: []lexicon.ExamplePair{
					{SourceText: "Te abrazo fuerte.", TargetText: "majtsíva"},
				},
			},
			{
				Headword:       "abrazo",
				Gloss:          "hug",
				BestSimilarity: 0.8,
				Hits:           []lexicon.Hit{{ID: 2, Kind: lexicon.KindSubentry}},
			},
		}
		block := renderContext(groups)

		got := heuristicAnswer(block)
		for _, want := range []string{"Phrase: abrazar", "Translation: to hug", "majtsíva", "Alternatives: abrazo"} {
			if !strings.Contains(got, want) {
				t.Errorf("answer missing %q:\n%s", want, got)
			}
		}
	})
}
