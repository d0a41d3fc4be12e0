package llm

import (
	"context"
	"errors"

	apperrors "github.com/miappbora/bora-tutor/internal/pkg/errors"
	"github.com/miappbora/bora-tutor/internal/pkg/logger"
)

// Outcome reports which path produced the answer.
type Outcome string

const (
	// OutcomePrimary means the configured primary provider answered.
	OutcomePrimary Outcome = "primary"
	// OutcomeFallback means the alternate provider answered after the
	// primary failed.
	OutcomeFallback Outcome = "fallback"
	// OutcomeHeuristic means every provider failed and the caller should
	// compose an answer from retrieved context alone.
	OutcomeHeuristic Outcome = "heuristic"
)

// Chain tries providers in order and degrades according to policy.
type Chain struct {
	primary        Provider
	alternate      Provider
	allowFallback  bool
	tolerateOutage bool
	log            *logger.Logger
}

// NewChain builds the provider chain from config. The configured
// provider goes first; the other family becomes the alternate.
func NewChain(cfg Config, log *logger.Logger) *Chain {
	openaiProv := NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel, cfg.Timeout)
	hfProv := NewHFProvider(cfg.HFKey, cfg.HFModel, cfg.HFBaseURL, cfg.Timeout)

	var primary, alternate Provider
	switch cfg.Provider {
	case "huggingface":
		primary, alternate = hfProv, openaiProv
	default:
		primary, alternate = openaiProv, hfProv
	}

	return &Chain{
		primary:        primary,
		alternate:      alternate,
		allowFallback:  cfg.AllowFallback,
		tolerateOutage: cfg.TolerateOutage,
		log:            log.WithComponent("llm-chain"),
	}
}

// NewChainWith builds a chain from explicit providers. alternate may
// be nil.
func NewChainWith(primary, alternate Provider, allowFallback, tolerateOutage bool, log *logger.Logger) *Chain {
	return &Chain{
		primary:        primary,
		alternate:      alternate,
		allowFallback:  allowFallback,
		tolerateOutage: tolerateOutage,
		log:            log.WithComponent("llm-chain"),
	}
}

// Generate runs the chain until a provider yields text. When every
// provider is unavailable it either signals the heuristic path or
// returns a terminal error, depending on the outage policy.
func (c *Chain) Generate(ctx context.Context, messages []Message, opts Options) (string, Outcome, error) {
	text, err := c.primary.Complete(ctx, messages, opts)
	if err == nil {
		return text, OutcomePrimary, nil
	}
	if !errors.Is(err, ErrProviderUnavailable) {
		return "", "", err
	}
	c.log.Warn("primary provider unavailable",
		"provider", c.primary.Name(),
		"error", err)

	if c.allowFallback && c.alternate != nil {
		text, err = c.alternate.Complete(ctx, messages, opts)
		if err == nil {
			return text, OutcomeFallback, nil
		}
		if !errors.Is(err, ErrProviderUnavailable) {
			return "", "", err
		}
		c.log.Warn("fallback provider unavailable",
			"provider", c.alternate.Name(),
			"error", err)
	}

	if c.tolerateOutage {
		return "", OutcomeHeuristic, nil
	}
	return "", "", apperrors.ProviderUnavailableError(c.primary.Name(), err)
}
