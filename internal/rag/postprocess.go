package rag

import "strings"

// postProcess removes context lines the model echoed back and collapses
// blank lines. Echoed lines are recognized by the structural tag every
// rendered context line carries.
func postProcess(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ctxLineTag) || strings.Contains(trimmed, noEchoMarker) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
