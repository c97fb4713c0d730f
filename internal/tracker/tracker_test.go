package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/errorsource"
	"github.com/darkdragonsastro/trackcore/internal/mount"
	"github.com/darkdragonsastro/trackcore/internal/pid"
)

type scriptedSource struct {
	errs []errorsource.PointingError
	i    int
}

func (s *scriptedSource) AxisNames() (mount.AxisName, mount.AxisName) {
	return mount.Axis0, mount.Axis1
}

func (s *scriptedSource) ComputeError(ctx context.Context, retries int) (errorsource.PointingError, error) {
	if s.i >= len(s.errs) {
		s.i = len(s.errs) - 1
	}
	pe := s.errs[s.i]
	s.i++
	return pe, nil
}

type recordingMount struct {
	pos       mount.EncoderPositions
	limitAxis *mount.AxisName
	slews     int
}

func (m *recordingMount) AxisNames() (mount.AxisName, mount.AxisName) {
	return mount.Axis0, mount.Axis1
}
func (m *recordingMount) GetPosition(ctx context.Context, maxCacheAge float64) (mount.EncoderPositions, error) {
	return m.pos, nil
}
func (m *recordingMount) Slew(ctx context.Context, axis mount.AxisName, rate float64) (mount.SlewResult, error) {
	m.slews++
	if m.limitAxis != nil && axis == *m.limitAxis {
		return mount.SlewResult{}, &mount.AxisLimitError{Axis: axis}
	}
	return mount.SlewResult{AcceptedRate: rate}, nil
}
func (m *recordingMount) MaxSlewRates() mount.Axes[float64]  { return mount.Axes[float64]{10, 10} }
func (m *recordingMount) MaxSlewAccels() mount.Axes[float64] { return mount.Axes[float64]{5, 5} }
func (m *recordingMount) MaxSlewSteps() mount.Axes[float64]  { return mount.Axes[float64]{1, 1} }

func newTestPIDs(t *testing.T) mount.Axes[*pid.Controller] {
	t.Helper()
	gains := pid.Gains{P: 1, I: 1, D: 0, DerivFilterDepth: time.Second}
	c0, err := pid.New(gains, 0, nil, nil)
	if err != nil {
		t.Fatalf("pid.New() error = %v", err)
	}
	c1, err := pid.New(gains, 0, nil, nil)
	if err != nil {
		t.Fatalf("pid.New() error = %v", err)
	}
	var pids mount.Axes[*pid.Controller]
	pids.Set(mount.Axis0, c0)
	pids.Set(mount.Axis1, c1)
	return pids
}

func TestRunStopsOnStopFlag(t *testing.T) {
	src := &scriptedSource{errs: []errorsource.PointingError{errorsource.NewPointingError(1, 1)}}
	mnt := &recordingMount{}
	tr := New(mnt, src, newTestPIDs(t), DefaultConfig(), nil)

	done := make(chan struct{})
	var reason StopReason
	var runErr error
	go func() {
		reason, runErr = tr.Run(context.Background())
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	tr.Stop()
	<-done

	if runErr != nil {
		t.Fatalf("Run() error = %v", runErr)
	}
	if reason != StopFlagSet {
		t.Errorf("Run() reason = %v, want %v", reason, StopFlagSet)
	}
}

func TestRunStopsWhenConverged(t *testing.T) {
	src := &scriptedSource{errs: []errorsource.PointingError{errorsource.NewPointingError(0, 0)}}
	mnt := &recordingMount{}
	cfg := DefaultConfig()
	cfg.StopWhenConverged = true
	cfg.ConvergeMinIterations = 3
	tr := New(mnt, src, newTestPIDs(t), cfg, nil)

	reason, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if reason != StopConverged {
		t.Errorf("Run() reason = %v, want %v", reason, StopConverged)
	}
}

func TestRunStopsOnTimer(t *testing.T) {
	src := &scriptedSource{errs: []errorsource.PointingError{errorsource.NewPointingError(5, 5)}}
	mnt := &recordingMount{}
	cfg := DefaultConfig()
	cfg.StopOnTimer = true
	cfg.MaxRunTime = 10 * time.Millisecond
	tr := New(mnt, src, newTestPIDs(t), cfg, nil)

	reason, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if reason != StopTimerExpired {
		t.Errorf("Run() reason = %v, want %v", reason, StopTimerExpired)
	}
}

func TestRunResetsIntegratorOnAxisLimit(t *testing.T) {
	limitAxis := mount.Axis0
	src := &scriptedSource{errs: []errorsource.PointingError{errorsource.NewPointingError(5, 5)}}
	mnt := &recordingMount{limitAxis: &limitAxis}
	cfg := DefaultConfig()
	cfg.StopOnTimer = true
	cfg.MaxRunTime = 10 * time.Millisecond
	pids := newTestPIDs(t)
	tr := New(mnt, src, pids, cfg, nil)

	if _, err := tr.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := pids.Get(mount.Axis0).Integrator(); got != 0 {
		t.Errorf("axis0 integrator after repeated AxisLimitError = %v, want 0", got)
	}
}

func TestCallbackShortCircuitsCycle(t *testing.T) {
	src := &scriptedSource{errs: []errorsource.PointingError{errorsource.NewPointingError(5, 5)}}
	mnt := &recordingMount{}
	cfg := DefaultConfig()
	cfg.StopOnTimer = true
	cfg.MaxRunTime = 10 * time.Millisecond
	tr := New(mnt, src, newTestPIDs(t), cfg, nil)

	calls := 0
	tr.RegisterCallback(func(t *Tracker) bool {
		calls++
		return true
	})

	if _, err := tr.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if calls == 0 {
		t.Errorf("callback was never invoked")
	}
	if mnt.slews != 0 {
		t.Errorf("mount.Slew called %d times, want 0 since every cycle short-circuited", mnt.slews)
	}
}
