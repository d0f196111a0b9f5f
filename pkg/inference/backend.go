// Package inference drives a local model through one prompt while a
// concurrent profiling session measures it. The actual token computation is
// delegated to a Backend, a capability interface any native inference
// library can satisfy.
package inference

import "context"

// Backend is the model-side capability interface consumed by the engine.
// Any implementation holding loaded weights is substitutable.
type Backend interface {
	// Tokenize converts prompt text into token ids.
	Tokenize(text string) ([]int, error)
	// Detokenize converts generated token ids back into text.
	Detokenize(tokens []int) (string, error)
	// Prefill processes all prompt tokens in one non-preemptible batch.
	Prefill(ctx context.Context, tokens []int) error
	// DecodeNext produces the next generated token, or eos=true when the
	// model signals end of sequence.
	DecodeNext(ctx context.Context) (token int, eos bool, err error)
	// Close releases backend resources.
	Close() error
}

// BackendFactory opens a backend over a resolved model artifact.
type BackendFactory func(artifactPath string) (Backend, error)
