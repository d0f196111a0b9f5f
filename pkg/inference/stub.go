package inference

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"
)

// StubBackend is a deterministic stand-in for a native inference library.
// It tokenizes on whitespace, "generates" by cycling a fixed vocabulary
// seeded from the prompt, and simulates compute with configurable per-token
// delays. It exists so the harness is exercisable end to end without model
// weights; timing figures it produces measure the harness, not a model.
type StubBackend struct {
	// PrefillDelayPerToken simulates batch prompt processing cost.
	PrefillDelayPerToken time.Duration
	// DecodeDelayPerToken simulates per-token generation cost.
	DecodeDelayPerToken time.Duration
	// EOSAfter ends generation after this many tokens (0 = never, the
	// engine's max-token cap applies).
	EOSAfter int

	vocab   []string
	seed    uint64
	emitted int
}

var stubVocab = strings.Fields(
	"the quick brown fox jumps over a lazy dog while measuring tokens per second on device")

// NewStubBackend returns a stub with the given simulated delays.
func NewStubBackend(prefillPerToken, decodePerToken time.Duration, eosAfter int) *StubBackend {
	return &StubBackend{
		PrefillDelayPerToken: prefillPerToken,
		DecodeDelayPerToken:  decodePerToken,
		EOSAfter:             eosAfter,
		vocab:                stubVocab,
	}
}

// Tokenize maps whitespace-separated words onto synthetic token ids.
func (b *StubBackend) Tokenize(text string) ([]int, error) {
	words := strings.Fields(text)
	tokens := make([]int, len(words))
	h := fnv.New64a()
	for i, w := range words {
		h.Write([]byte(w))
		tokens[i] = int(h.Sum64() % 50_000)
	}
	b.seed = h.Sum64()
	b.emitted = 0
	return tokens, nil
}

// Detokenize renders generated token ids back into vocabulary words.
func (b *StubBackend) Detokenize(tokens []int) (string, error) {
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = b.vocab[t%len(b.vocab)]
	}
	return strings.Join(words, " "), nil
}

// Prefill simulates processing the whole prompt in one batch.
func (b *StubBackend) Prefill(ctx context.Context, tokens []int) error {
	return sleepCtx(ctx, time.Duration(len(tokens))*b.PrefillDelayPerToken)
}

// DecodeNext emits the next deterministic token.
func (b *StubBackend) DecodeNext(ctx context.Context) (int, bool, error) {
	if b.EOSAfter > 0 && b.emitted >= b.EOSAfter {
		return 0, true, nil
	}
	if err := sleepCtx(ctx, b.DecodeDelayPerToken); err != nil {
		return 0, false, err
	}
	token := int((b.seed + uint64(b.emitted)*2654435761) % 50_000)
	b.emitted++
	return token, false, nil
}

func (b *StubBackend) Close() error { return nil }

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// StubFactory is a BackendFactory producing StubBackends, ignoring the
// artifact content.
func StubFactory(prefillPerToken, decodePerToken time.Duration, eosAfter int) BackendFactory {
	return func(string) (Backend, error) {
		return NewStubBackend(prefillPerToken, decodePerToken, eosAfter), nil
	}
}
