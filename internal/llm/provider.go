// Package llm provides the answer generation provider chain.
package llm

import (
	"context"
	"errors"
	"time"
)

// ErrProviderUnavailable signals that a provider could not produce text:
// transport failure, rate limit, timeout, or an empty completion.
var ErrProviderUnavailable = errors.New("llm provider unavailable")

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Options tunes one completion call.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Provider produces a completion for a message list.
// Implementations wrap every failure mode in ErrProviderUnavailable so the
// chain can treat providers uniformly.
type Provider interface {
	// Name identifies the provider family, e.g. "openai".
	Name() string

	// Complete generates text for the messages.
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}

// Config configures the provider chain.
type Config struct {
	// Provider selects the primary family: "openai" or "huggingface".
	Provider string

	// AllowFallback permits falling through to the alternate provider.
	AllowFallback bool

	// TolerateOutage enables the heuristic answer path when every
	// provider fails. When false, exhaustion is terminal.
	TolerateOutage bool

	OpenAIKey   string
	OpenAIModel string
	HFKey       string
	HFModel     string
	HFBaseURL   string

	Temperature   float64
	MaxTokens     int
	FastMaxTokens int
	Timeout       time.Duration
}
