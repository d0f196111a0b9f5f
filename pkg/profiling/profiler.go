// Package profiling orchestrates a resource sampling session concurrent
// with an inference run. Sampling runs in its own goroutine so that no read
// ever sits in the inference hot path and perturbs the latency being
// measured.
package profiling

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"InferenceHarness/pkg/energy"
	"InferenceHarness/pkg/sampling"
)

// DefaultInterval is the default sampling period. It trades measurement
// granularity against sampling overhead.
const DefaultInterval = 100 * time.Millisecond

// ErrMisuse reports a profiler lifecycle violation: Start while already
// sampling or Stop while idle. Either would corrupt the attribution of
// samples to runs, so it is always surfaced, never ignored.
var ErrMisuse = errors.New("profiler misuse")

// GPUPowerReader is an optional instantaneous GPU power probe.
type GPUPowerReader interface {
	PowerWatts() float64
}

// Profiler owns the Idle -> Sampling -> Idle session state machine. At most
// one session is active at a time.
type Profiler struct {
	interval time.Duration
	mem      sampling.MemoryReader
	thermal  sampling.ThermalReader
	energy   *energy.Estimator
	gpu      GPUPowerReader

	mu        sync.Mutex
	active    bool
	startTime time.Time
	samples   []Sample
	gpuSum    float64
	gpuCount  int
	stop      chan struct{}
	loopDone  chan struct{}
}

// Option configures a Profiler.
type Option func(*Profiler)

// WithInterval overrides the sampling interval.
func WithInterval(d time.Duration) Option {
	return func(p *Profiler) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithGPUPower enables per-tick GPU power sampling. A nil reader is ignored.
func WithGPUPower(r GPUPowerReader) Option {
	return func(p *Profiler) { p.gpu = r }
}

// New creates an idle profiler.
func New(mem sampling.MemoryReader, thermal sampling.ThermalReader, est *energy.Estimator, opts ...Option) *Profiler {
	p := &Profiler{
		interval: DefaultInterval,
		mem:      mem,
		thermal:  thermal,
		energy:   est,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start transitions Idle -> Sampling: clears the sample buffer, baselines
// the energy estimator, and launches the sampling loop.
func (p *Profiler) Start() error {
	p.mu.Lock()
	if p.active {
		p.mu.Unlock()
		return fmt.Errorf("%w: start while session active", ErrMisuse)
	}
	p.active = true
	p.startTime = time.Now()
	p.samples = p.samples[:0]
	p.gpuSum, p.gpuCount = 0, 0
	p.stop = make(chan struct{})
	p.loopDone = make(chan struct{})
	stop, loopDone := p.stop, p.loopDone
	p.mu.Unlock()

	p.energy.StartMonitoring()

	go p.loop(stop, loopDone)
	return nil
}

// loop appends one sample per tick until told to stop. It is bound to the
// session: Stop does not return until the loop has exited.
func (p *Profiler) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			mb := p.mem.MemoryMB()
			var gpuW float64
			if p.gpu != nil {
				gpuW = p.gpu.PowerWatts()
			}
			p.mu.Lock()
			p.samples = append(p.samples, Sample{Timestamp: time.Now(), MemoryMB: mb})
			if p.gpu != nil {
				p.gpuSum += gpuW
				p.gpuCount++
			}
			p.mu.Unlock()
		}
	}
}

// Stop transitions Sampling -> Idle: halts the loop, waits for it to
// terminate, closes the energy window, and reduces the buffer to a Metrics
// snapshot.
func (p *Profiler) Stop() (*Metrics, error) {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: stop while idle", ErrMisuse)
	}
	stop, loopDone := p.stop, p.loopDone
	p.mu.Unlock()

	close(stop)
	<-loopDone

	data := p.energy.StopMonitoring()
	thermal := p.thermal.Thermal()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = false

	peak, avg := reduceSamples(p.samples)
	m := &Metrics{
		StartTime:       p.startTime,
		EndTime:         time.Now(),
		PeakMemoryMB:    peak,
		AverageMemoryMB: avg,
		SampleCount:     len(p.samples),
		ThermalState:    thermal,
	}
	if data != nil {
		m.EstimatedEnergyJ = data.BatteryEnergyJ
		m.CPUEnergyJ = data.CPUEnergyJ
		m.BatteryDropFraction = data.BatteryDropFraction
		m.BatteryLevelAtStart = data.BatteryLevelAtStart
	}
	if p.gpu != nil && p.gpuCount > 0 {
		w := p.gpuSum / float64(p.gpuCount)
		m.AverageGPUPowerW = &w
	}
	return m, nil
}

// Active reports whether a sampling session is in progress.
func (p *Profiler) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}
