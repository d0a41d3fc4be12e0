package rag

import (
	"fmt"
	"strings"
)

// emptyContextAnswer is returned when generation is unavailable and
// retrieval produced nothing to build a heuristic answer from.
const emptyContextAnswer = "I do not have enough information in the lexicon to answer that. Try asking about a specific Bora or Spanish word."

type contextEntry struct {
	headword string
	gloss    string
	pairs    []pair
}

type pair struct {
	source string
	target string
}

// heuristicAnswer builds a rule-based answer from the rendered context
// block when no provider yields text. It parses the tagged context
// lines back into entries and templates a short phrase/translation
// answer, so the caller always has non-empty text to return.
func heuristicAnswer(contextBlock string) string {
	entries := parseContext(contextBlock)
	if len(entries) == 0 {
		return emptyContextAnswer
	}

	var b strings.Builder
	first := entries[0]
	fmt.Fprintf(&b, "Phrase: %s\n", first.headword)
	fmt.Fprintf(&b, "Translation: %s\n", first.gloss)

	if len(first.pairs) > 0 {
		p := first.pairs[0]
		fmt.Fprintf(&b, "Usage: %q means %q.\n", p.source, p.target)
	} else {
		b.WriteString("Usage: no example sentence is recorded for this entry.\n")
	}

	if len(entries) > 1 {
		var alts []string
		for _, e := range entries[1:] {
			alts = append(alts, e.headword)
			if len(alts) == 3 {
				break
			}
		}
		fmt.Fprintf(&b, "Alternatives: %s", strings.Join(alts, ", "))
	}

	return strings.TrimSpace(b.String())
}

// parseContext reads the structured context lines back into entries.
// At most 3 example pairs are kept per entry.
func parseContext(block string) []contextEntry {
	var entries []contextEntry

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimPrefix(line, ctxLineTag)
		if strings.Contains(line, "Do not repeat") {
			continue
		}
		trimmed := strings.TrimSpace(line)

		if src, tgt, ok := parseExampleLine(trimmed); ok {
			if len(entries) == 0 {
				continue
			}
			last := &entries[len(entries)-1]
			if len(last.pairs) < 3 {
				last.pairs = append(last.pairs, pair{source: src, target: tgt})
			}
			continue
		}

		if hw, gloss, ok := parseGroupLine(trimmed); ok {
			entries = append(entries, contextEntry{headword: hw, gloss: gloss})
		}
	}

	return entries
}

// parseGroupLine extracts the headword and gloss from a rendered group
// line of the form "1. [Lemma | sim 0.92] word — DEF: gloss — POS: n".
func parseGroupLine(line string) (headword, gloss string, ok bool) {
	end := strings.Index(line, "] ")
	if end < 0 || !strings.Contains(line, "| sim ") {
		return "", "", false
	}
	rest := line[end+2:]

	defIdx := strings.Index(rest, " — DEF: ")
	if defIdx < 0 {
		return "", "", false
	}
	headword = rest[:defIdx]
	rest = rest[defIdx+len(" — DEF: "):]

	if posIdx := strings.Index(rest, " — POS: "); posIdx >= 0 {
		rest = rest[:posIdx]
	}
	return headword, rest, true
}

// parseExampleLine extracts the pair from a rendered example line of
// the form `• Example: SRC: "..." — TGT: "..."`.
func parseExampleLine(line string) (source, target string, ok bool) {
	const prefix = "• Example: SRC: "
	if !strings.HasPrefix(line, prefix) {
		return "", "", false
	}
	rest := line[len(prefix):]

	sep := strings.Index(rest, " — TGT: ")
	if sep < 0 {
		return "", "", false
	}
	source = strings.Trim(rest[:sep], `"`)
	target = strings.Trim(rest[sep+len(" — TGT: "):], `"`)
	return source, target, true
}
