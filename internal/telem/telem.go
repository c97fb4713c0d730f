// Package telem publishes Tracker telemetry to one or more sinks (a
// time-series database, a live WebSocket feed) on a fixed period,
// concurrently, using a worker pool so a slow sink cannot stall the
// others.
package telem

import (
	"context"
	"log"
	"runtime"
	"time"

	"github.com/alitto/pond"
)

// Sample is one snapshot of named telemetry channels, taken under the
// Tracker's mutex.
type Sample struct {
	Time     time.Time
	Channels map[string]float64
}

// Source is implemented by anything that can produce a telemetry Sample
// on demand; the Tracker implements this.
type Source interface {
	Telemetry() Sample
}

// Sink receives telemetry samples. Implementations must not block the
// caller for long — Publisher dispatches each sink call on its own
// worker-pool task so one slow sink never delays another.
type Sink interface {
	PublishTelemetry(ctx context.Context, s Sample) error
}

// Publisher polls a Source on a fixed period and fans each sample out to
// every registered Sink concurrently.
type Publisher struct {
	source Source
	sinks  []Sink
	period time.Duration
	logger *log.Logger

	pool *pond.WorkerPool
}

// DefaultWorkerCount sizes the pool at 2*NumCPU, suited to I/O-bound sink
// fan-out.
func DefaultWorkerCount() int { return runtime.NumCPU() * 2 }

// NewPublisher builds a Publisher. logger defaults to log.Default() when
// nil.
func NewPublisher(source Source, period time.Duration, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.Default()
	}
	return &Publisher{source: source, period: period, logger: logger}
}

// AddSink registers a sink. Not safe to call concurrently with Run.
func (p *Publisher) AddSink(s Sink) { p.sinks = append(p.sinks, s) }

// Run polls and publishes until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) {
	n := DefaultWorkerCount()
	pool := pond.New(n, 0, pond.MinWorkers(n), pond.Context(ctx))
	p.pool = pool
	defer pool.StopAndWait()

	ticker := time.NewTicker(p.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sample := p.source.Telemetry()
			for _, sink := range p.sinks {
				sink := sink
				pool.Submit(func() {
					if err := sink.PublishTelemetry(ctx, sample); err != nil {
						p.logger.Printf("telem: sink publish failed: %v", err)
					}
				})
			}
		}
	}
}
