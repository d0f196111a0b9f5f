package inference

import "errors"

var (
	// ErrModelNotFound reports that no model artifact resolved for the
	// requested identifier.
	ErrModelNotFound = errors.New("model not found")

	// ErrModelNotLoaded reports a Run attempt on an engine that is not in
	// the Ready state.
	ErrModelNotLoaded = errors.New("model not loaded")

	// ErrBackendInit reports that the inference backend rejected a resolved
	// model artifact.
	ErrBackendInit = errors.New("backend initialization failed")

	// ErrTokenization reports a tokenizer failure on the prompt.
	ErrTokenization = errors.New("tokenization failed")

	// ErrBackend wraps an opaque backend failure during prefill or decode.
	ErrBackend = errors.New("backend inference error")

	// ErrCancelled reports a caller-initiated cancellation mid-run. The
	// partial result up to the cancellation point is still returned.
	ErrCancelled = errors.New("run cancelled")

	// ErrBusy reports a Run attempt while another run is in flight on the
	// same engine. Interleaved sampling sessions would corrupt sample
	// attribution, so concurrent runs are rejected rather than interleaved.
	ErrBusy = errors.New("engine busy")
)
