package rag

import (
	"fmt"
	"strings"
)

// noEchoMarker opens every non-empty context block. Post-processing
// strips any line the model echoes back containing it.
const noEchoMarker = "[CTX] Reference material. Do not repeat these lines in your answer."

// ctxLineTag prefixes every rendered context line so echoed lines can
// be recognized structurally instead of by prose pattern.
const ctxLineTag = "[CTX] "

// emptyContextSentinel is rendered when retrieval produced nothing.
const emptyContextSentinel = "No relevant information found."

// renderContext turns ranked groups into the plain-text block handed to
// the model. Groups must already be ordered descending by best
// similarity.
func renderContext(groups []*Group) string {
	if len(groups) == 0 {
		return emptyContextSentinel
	}

	var b strings.Builder
	b.WriteString(noEchoMarker)
	b.WriteByte('\n')

	for i, g := range groups {
		kindLabel := "Lemma"
		if len(g.Hits) > 0 && !g.Hits[0].Synthetic() {
			kindLabel = titleKind(string(g.Hits[0].Kind))
		}
		fmt.Fprintf(&b, "%s%d. [%s | sim %.2f] %s — DEF: %s — POS: %s\n",
			ctxLineTag, i+1, kindLabel, g.BestSimilarity, g.Headword, g.Gloss, g.PartOfSpeech)
		for _, ex := range g.Examples {
			fmt.Fprintf(&b, "%s  • Example: SRC: %q — TGT: %q\n",
				ctxLineTag, ex.SourceText, ex.TargetText)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func titleKind(kind string) string {
	if kind == "" {
		return "Lemma"
	}
	return strings.ToUpper(kind[:1]) + kind[1:]
}
