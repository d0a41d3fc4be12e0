package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	apperrors "github.com/miappbora/bora-tutor/internal/pkg/errors"
	"github.com/miappbora/bora-tutor/internal/pkg/logger"
)

// scriptedProvider returns fixed output or fails as unavailable.
type scriptedProvider struct {
	name  string
	text  string
	fail  bool
	calls int
}

func (p *scriptedProvider) Name() string { return p.name }

func (p *scriptedProvider) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	p.calls++
	if p.fail {
		return "", fmt.Errorf("%w: %s is down", ErrProviderUnavailable, p.name)
	}
	return p.text, nil
}

func testMessages() []Message {
	return []Message{
		{Role: RoleSystem, Content: "system"},
		{Role: RoleUser, Content: "question"},
	}
}

func TestChain_PrimarySucceeds(t *testing.T) {
	primary := &scriptedProvider{name: "openai", text: "primary answer"}
	alternate := &scriptedProvider{name: "huggingface", text: "alternate answer"}

	chain := NewChainWith(primary, alternate, true, true, logger.Default())
	text, outcome, err := chain.Generate(context.Background(), testMessages(), Options{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "primary answer" || outcome != OutcomePrimary {
		t.Errorf("got (%q, %v), want (primary answer, primary)", text, outcome)
	}
	if alternate.calls != 0 {
		t.Errorf("alternate called %d times, want 0", alternate.calls)
	}
}

func TestChain_FallsBackToAlternate(t *testing.T) {
	primary := &scriptedProvider{name: "openai", fail: true}
	alternate := &scriptedProvider{name: "huggingface", text: "alternate answer"}

	chain := NewChainWith(primary, alternate, true, false, logger.Default())
	text, outcome, err := chain.Generate(context.Background(), testMessages(), Options{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "alternate answer" || outcome != OutcomeFallback {
		t.Errorf("got (%q, %v), want (alternate answer, fallback)", text, outcome)
	}
}

func TestChain_FallbackDeniedFailsLoud(t *testing.T) {
	primary := &scriptedProvider{name: "openai", fail: true}
	alternate := &scriptedProvider{name: "huggingface", text: "never used"}

	chain := NewChainWith(primary, alternate, false, false, logger.Default())
	_, _, err := chain.Generate(context.Background(), testMessages(), Options{})
	if err == nil {
		t.Fatal("Generate() error = nil, want provider unavailable")
	}
	if !apperrors.IsProviderUnavailable(err) {
		t.Errorf("error = %v, want PROVIDER_UNAVAILABLE", err)
	}
	if alternate.calls != 0 {
		t.Errorf("alternate called %d times with fallback denied, want 0", alternate.calls)
	}
}

func TestChain_TotalOutageToleratedSignalsHeuristic(t *testing.T) {
	primary := &scriptedProvider{name: "openai", fail: true}
	alternate := &scriptedProvider{name: "huggingface", fail: true}

	chain := NewChainWith(primary, alternate, true, true, logger.Default())
	text, outcome, err := chain.Generate(context.Background(), testMessages(), Options{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "" || outcome != OutcomeHeuristic {
		t.Errorf("got (%q, %v), want empty text with heuristic outcome", text, outcome)
	}
}

func TestChain_TotalOutageDeniedIsTerminal(t *testing.T) {
	primary := &scriptedProvider{name: "openai", fail: true}
	alternate := &scriptedProvider{name: "huggingface", fail: true}

	chain := NewChainWith(primary, alternate, true, false, logger.Default())
	_, _, err := chain.Generate(context.Background(), testMessages(), Options{})
	if !apperrors.IsProviderUnavailable(err) {
		t.Errorf("error = %v, want PROVIDER_UNAVAILABLE", err)
	}
}

func TestChain_NonOutageErrorPropagates(t *testing.T) {
	sentinel := errors.New("context canceled")
	primary := &failWith{err: sentinel}
	alternate := &scriptedProvider{name: "huggingface", text: "never used"}

	chain := NewChainWith(primary, alternate, true, true, logger.Default())
	_, _, err := chain.Generate(context.Background(), testMessages(), Options{})
	if !errors.Is(err, sentinel) {
		t.Errorf("error = %v, want %v passed through", err, sentinel)
	}
	if alternate.calls != 0 {
		t.Errorf("alternate called %d times for non-outage error, want 0", alternate.calls)
	}
}

type failWith struct {
	err error
}

func (p *failWith) Name() string { return "failing" }

func (p *failWith) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	return "", p.err
}
