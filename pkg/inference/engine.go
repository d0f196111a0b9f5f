package inference

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"InferenceHarness/pkg/profiling"
)

// State is the engine lifecycle state. State is carried on the engine
// instance and published through subscriptions, never through process-wide
// globals.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StatePrefilling
	StateDecoding
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StatePrefilling:
		return "prefilling"
	case StateDecoding:
		return "decoding"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the engine's half of a run record: phase timings, token counts,
// and output text. The profiler's Metrics snapshot is attached when the
// profiling session closed cleanly.
type Result struct {
	StartedAt time.Time

	PromptText   string
	PromptTokens int

	PrefillTime       time.Duration
	DecodeTime        time.Duration
	TotalTime         time.Duration
	FirstTokenLatency time.Duration

	GeneratedTokens int
	OutputText      string

	Cancelled bool

	Metrics *profiling.Metrics
}

// Engine owns the tokenize/prefill/decode/detokenize state machine for one
// prompt at a time. Runs on the same engine are serialized: a second Run
// while one is in flight fails with ErrBusy.
type Engine struct {
	modelDir string
	factory  BackendFactory
	profiler *profiling.Profiler

	mu        sync.Mutex
	state     State
	running   bool
	backend   Backend
	modelName string
	modelPath string
	listeners []func(State)
}

// NewEngine creates an unloaded engine. modelDir is the artifact search
// root; an empty dir resolves identifiers as literal paths.
func NewEngine(modelDir string, factory BackendFactory, profiler *profiling.Profiler) *Engine {
	return &Engine{
		modelDir: modelDir,
		factory:  factory,
		profiler: profiler,
		state:    StateUnloaded,
	}
}

// Subscribe registers a callback invoked on every state transition. The
// callback runs outside the engine lock on the transitioning goroutine.
func (e *Engine) Subscribe(fn func(State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// ModelName returns the loaded model identifier, empty before LoadModel.
func (e *Engine) ModelName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.modelName
}

// ModelSizeBytes returns the loaded artifact size, 0 when unknown.
func (e *Engine) ModelSizeBytes() int64 {
	e.mu.Lock()
	path := e.modelPath
	e.mu.Unlock()
	if path == "" {
		return 0
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	listeners := make([]func(State), len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()
	for _, fn := range listeners {
		fn(s)
	}
}

// resolveArtifact locates the model file for an identifier.
func (e *Engine) resolveArtifact(identifier string) (string, error) {
	candidates := []string{identifier}
	if e.modelDir != "" {
		candidates = []string{
			filepath.Join(e.modelDir, identifier),
			filepath.Join(e.modelDir, identifier+".gguf"),
			filepath.Join(e.modelDir, identifier+".bin"),
		}
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrModelNotFound, identifier)
}

// LoadModel resolves the artifact for identifier and hands it to the
// backend factory. Unloaded -> Loading -> Ready, or Failed on error.
func (e *Engine) LoadModel(identifier string) error {
	e.mu.Lock()
	if e.backend != nil {
		old := e.backend
		e.backend = nil
		e.mu.Unlock()
		old.Close()
	} else {
		e.mu.Unlock()
	}

	e.setState(StateLoading)

	path, err := e.resolveArtifact(identifier)
	if err != nil {
		e.setState(StateFailed)
		return err
	}

	backend, err := e.factory(path)
	if err != nil {
		e.setState(StateFailed)
		return fmt.Errorf("%w: %v", ErrBackendInit, err)
	}

	e.mu.Lock()
	e.backend = backend
	e.modelName = identifier
	e.modelPath = path
	e.mu.Unlock()
	e.setState(StateReady)
	return nil
}

// Run executes one instrumented inference. The profiling session brackets
// exactly the tokenize/prefill/decode/detokenize sequence and is closed on
// every exit path, so a failed run never leaks an active sampler.
//
// Cancellation via ctx stops after the in-flight token and returns the
// partial Result together with ErrCancelled: partial timing data remains
// informative and is not discarded. Cancellation landing inside the
// non-preemptible prefill batch ends the run the same way, with a
// prompt-only partial result and the engine back in Ready.
func (e *Engine) Run(ctx context.Context, prompt string, maxTokens int) (*Result, error) {
	e.mu.Lock()
	// The busy check comes first: mid-run state is Prefilling or Decoding,
	// and an overlapping caller must hear "busy", not "not loaded".
	if e.running {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: run already in flight", ErrBusy)
	}
	if e.state != StateReady && e.state != StateComplete {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: engine state %s", ErrModelNotLoaded, e.state)
	}
	e.running = true
	backend := e.backend
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	res := &Result{StartedAt: time.Now(), PromptText: prompt}

	if err := e.profiler.Start(); err != nil {
		return nil, err
	}
	stopped := false
	stopProfiling := func() {
		if stopped {
			return
		}
		stopped = true
		if m, err := e.profiler.Stop(); err == nil {
			res.Metrics = m
		}
	}
	defer stopProfiling()

	runStart := time.Now()

	tokens, err := backend.Tokenize(prompt)
	if err != nil {
		e.setState(StateFailed)
		return nil, fmt.Errorf("%w: %v", ErrTokenization, err)
	}
	res.PromptTokens = len(tokens)

	// Prefill: one non-preemptible batch. Cancellation granularity here is
	// the entire phase.
	e.setState(StatePrefilling)
	prefillStart := time.Now()
	if err := backend.Prefill(ctx, tokens); err != nil {
		if ctx.Err() != nil {
			res.Cancelled = true
			res.PrefillTime = time.Since(prefillStart)
			res.TotalTime = time.Since(runStart)
			stopProfiling()
			e.setState(StateReady)
			return res, fmt.Errorf("%w: during prefill", ErrCancelled)
		}
		e.setState(StateFailed)
		return nil, fmt.Errorf("%w: prefill: %v", ErrBackend, err)
	}
	res.PrefillTime = time.Since(prefillStart)

	// Decode: one token at a time, yielding between tokens so the sampler
	// runs and cancellation is observed.
	e.setState(StateDecoding)
	var generated []int
	decodeStart := time.Now()
	for len(generated) < maxTokens {
		if err := ctx.Err(); err != nil {
			res.Cancelled = true
			break
		}
		token, eos, err := backend.DecodeNext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				res.Cancelled = true
				break
			}
			e.setState(StateFailed)
			res.DecodeTime = time.Since(decodeStart)
			res.TotalTime = time.Since(runStart)
			return nil, fmt.Errorf("%w: decode: %v", ErrBackend, err)
		}
		if eos {
			break
		}
		if len(generated) == 0 {
			res.FirstTokenLatency = time.Since(decodeStart)
		}
		generated = append(generated, token)
	}
	res.DecodeTime = time.Since(decodeStart)
	res.GeneratedTokens = len(generated)

	text, err := backend.Detokenize(generated)
	if err != nil {
		e.setState(StateFailed)
		res.TotalTime = time.Since(runStart)
		return nil, fmt.Errorf("%w: detokenize: %v", ErrBackend, err)
	}
	res.OutputText = text
	res.TotalTime = time.Since(runStart)

	stopProfiling()

	if res.Cancelled {
		e.setState(StateReady)
		return res, fmt.Errorf("%w: after %d of %d tokens", ErrCancelled, res.GeneratedTokens, maxTokens)
	}

	e.setState(StateComplete)
	return res, nil
}

// Close releases the backend.
func (e *Engine) Close() error {
	e.mu.Lock()
	backend := e.backend
	e.backend = nil
	e.mu.Unlock()
	if backend != nil {
		return backend.Close()
	}
	return nil
}
