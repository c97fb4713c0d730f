package telem

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeSource struct {
	n int
}

func (f *fakeSource) Telemetry() Sample {
	f.n++
	return Sample{Time: time.Now(), Channels: map[string]float64{"n": float64(f.n)}}
}

type recordingSink struct {
	mu      sync.Mutex
	samples []Sample
}

func (r *recordingSink) PublishTelemetry(ctx context.Context, s Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
	return nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

func TestPublisherFansOutToAllSinks(t *testing.T) {
	src := &fakeSource{}
	pub := NewPublisher(src, 5*time.Millisecond, nil)
	sinkA := &recordingSink{}
	sinkB := &recordingSink{}
	pub.AddSink(sinkA)
	pub.AddSink(sinkB)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	pub.Run(ctx)

	if sinkA.count() == 0 {
		t.Errorf("sinkA received 0 samples, want at least 1")
	}
	if sinkB.count() == 0 {
		t.Errorf("sinkB received 0 samples, want at least 1")
	}
}
