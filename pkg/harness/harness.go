// Package harness wires the sampler, energy estimator, profiler, engine,
// and recorder into the caller-facing measurement operation: run one prompt,
// get back one persisted run record.
package harness

import (
	"context"
	"errors"
	"fmt"
	"log"

	"InferenceHarness/pkg/config"
	"InferenceHarness/pkg/device"
	"InferenceHarness/pkg/energy"
	"InferenceHarness/pkg/inference"
	"InferenceHarness/pkg/profiling"
	"InferenceHarness/pkg/recording"
	"InferenceHarness/pkg/sampling"
)

// Harness owns one engine and its profiling session plumbing.
type Harness struct {
	cfg      *config.Config
	engine   *inference.Engine
	recorder *recording.Recorder
	store    recording.Store
	gpu      *sampling.GPUPower
	dev      device.Info
}

// New builds a harness from configuration. factory opens the inference
// backend over resolved model artifacts; pass inference.StubFactory output
// until a native backend is linked in.
func New(cfg *config.Config, factory inference.BackendFactory) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	proc := sampling.NewProcSampler()
	battery := sampling.NewSysfsBattery()

	model := energy.Model{
		BatteryCapacityJ: cfg.BatteryCapacityJ,
		AvgCPUPowerW:     cfg.AvgCPUPowerW,
	}
	var batteryReader sampling.BatteryReader = sampling.NoBattery{}
	if battery != nil {
		batteryReader = battery
	}
	est := energy.New(model, batteryReader, proc)

	opts := []profiling.Option{profiling.WithInterval(cfg.Interval)}
	var gpu *sampling.GPUPower
	if cfg.EnableGPU {
		if gpu = sampling.NewGPUPower(); gpu != nil {
			opts = append(opts, profiling.WithGPUPower(gpu))
		}
	}
	profiler := profiling.New(proc, sampling.NewSysfsThermal(), est, opts...)

	return &Harness{
		cfg:      cfg,
		engine:   inference.NewEngine(cfg.ModelDir, factory, profiler),
		recorder: recording.NewRecorder(store),
		store:    store,
		gpu:      gpu,
		dev:      device.Collect(),
	}, nil
}

func openStore(cfg *config.Config) (recording.Store, error) {
	switch cfg.StoreKind {
	case "json":
		return recording.NewFileStore(cfg.RunsDir())
	default:
		return recording.OpenSQLiteStore(cfg.DBPath())
	}
}

// Engine exposes the underlying engine for state subscriptions.
func (h *Harness) Engine() *inference.Engine { return h.engine }

// Store exposes the run record store.
func (h *Harness) Store() recording.Store { return h.store }

// LoadModel loads the configured or given model identifier.
func (h *Harness) LoadModel(identifier string) error {
	if identifier == "" {
		identifier = h.cfg.Model
	}
	if identifier == "" {
		return fmt.Errorf("%w: no model identifier configured", inference.ErrModelNotFound)
	}
	return h.engine.LoadModel(identifier)
}

// RunInference executes one instrumented run and persists the record. A
// cancelled run still produces a persisted record carrying the partial
// output, returned together with the cancellation error. A persistence
// failure is returned alongside the still-valid in-memory record.
func (h *Harness) RunInference(ctx context.Context, prompt, category string) (*recording.RunRecord, error) {
	if h.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.Timeout)
		defer cancel()
	}

	res, runErr := h.engine.Run(ctx, prompt, h.cfg.MaxTokens)
	if runErr != nil && !errors.Is(runErr, inference.ErrCancelled) {
		return nil, runErr
	}

	prov := recording.Provenance{
		ModelName:      h.engine.ModelName(),
		ModelSizeBytes: h.engine.ModelSizeBytes(),
		Device:         h.dev,
		Category:       category,
	}
	record, persistErr := h.recorder.Record(res, prov)
	if record == nil {
		return nil, persistErr
	}

	log.Printf("run %s: %d+%d tokens, %.2fs total, %.1f tok/s",
		record.ID, record.PromptTokens, record.GeneratedTokens,
		record.TotalTime, record.TokensPerSecond)

	if runErr != nil {
		return record, runErr
	}
	return record, persistErr
}

// Close releases the engine, store, and GPU sampler.
func (h *Harness) Close() error {
	err := h.engine.Close()
	if cerr := h.store.Close(); err == nil {
		err = cerr
	}
	if h.gpu != nil {
		h.gpu.Close()
	}
	return err
}
