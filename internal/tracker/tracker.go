// Package tracker implements the control loop's main cycle: pull an error
// vector, update one PID per axis, command the mount, handle saturation,
// track convergence, and publish telemetry.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/angle"
	"github.com/darkdragonsastro/trackcore/internal/common/service"
	"github.com/darkdragonsastro/trackcore/internal/errorsource"
	"github.com/darkdragonsastro/trackcore/internal/eventbus"
	"github.com/darkdragonsastro/trackcore/internal/mount"
	"github.com/darkdragonsastro/trackcore/internal/pid"
	"github.com/darkdragonsastro/trackcore/internal/telem"
)

// Event topics published on Tracker.Events, when set.
const (
	TopicStopped   = "tracker.stopped"
	TopicConverged = "tracker.converged"
)

// StoppedEvent is published on TopicStopped when Run returns.
type StoppedEvent struct {
	Reason StopReason
	Err    error
}

// StopReason names why Run returned.
type StopReason string

const (
	StopFlagSet      StopReason = "stop flag set"
	StopConverged    StopReason = "converged"
	StopTimerExpired StopReason = "timer expired"
)

// defaultComputeErrorRetries bounds how many times a cycle retries a
// transient ErrorSource failure before treating it as no-signal.
const defaultComputeErrorRetries = 2

// ConvergeMaxErrorMagDefault is 50 arcseconds, the default convergence
// threshold.
const ConvergeMaxErrorMagDefault = 50.0 / 3600.0

// Config holds the Tracker's run-time tunables.
type Config struct {
	// StopWhenConverged enables the "converged" exit condition.
	StopWhenConverged bool
	// ConvergeMinIterations is how many consecutive low-error cycles
	// constitute convergence.
	ConvergeMinIterations int
	// ConvergeMaxErrorMag is the per-cycle error magnitude (degrees)
	// below which an iteration counts toward convergence.
	ConvergeMaxErrorMag float64
	// ConvergeErrorState, if non-nil, requires the error source to be in
	// this state for an iteration to count toward convergence.
	ConvergeErrorState *errorsource.State

	// StopOnTimer enables the "timer expired" exit condition.
	StopOnTimer bool
	// MaxRunTime bounds how long Run may execute when StopOnTimer is set.
	MaxRunTime time.Duration

	// ComputeErrorRetries is passed to ErrorSource.ComputeError each cycle.
	ComputeErrorRetries int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ConvergeMinIterations: 1,
		ConvergeMaxErrorMag:   ConvergeMaxErrorMagDefault,
		ComputeErrorRetries:   defaultComputeErrorRetries,
	}
}

// Callback is invoked once per cycle with the Tracker. Returning true
// skips the remainder of that cycle after telemetry is published.
type Callback func(t *Tracker) bool

// Snapshot is the telemetry the Tracker publishes each cycle.
type Snapshot struct {
	Time               time.Time
	NumIterations      int
	Rate               mount.Axes[float64]
	Error              mount.Axes[float64]
	ControllerIntegral mount.Axes[float64]
	ControllerOutput   mount.Axes[float64]
	ErrorValid         bool
}

// Tracker is the control loop's main cycle.
type Tracker struct {
	Mount  mount.Mount
	Source errorsource.ErrorSource
	PIDs   mount.Axes[*pid.Controller]
	Config Config

	// Events, if non-nil, receives TopicStopped/TopicConverged notifications.
	Events eventbus.EventBus

	now    func() time.Time
	logger *log.Logger

	callback Callback

	stopFlag   bool
	running    bool
	startTime  time.Time
	lowErrIt   int
	snapshot   Snapshot
	lastReason StopReason
	lastErr    error

	health *service.BaseService

	mu sync.Mutex
}

// New builds a Tracker. logger defaults to log.Default() when nil; now
// defaults to time.Now.
func New(mnt mount.Mount, source errorsource.ErrorSource, pids mount.Axes[*pid.Controller], cfg Config, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Default()
	}
	return &Tracker{Mount: mnt, Source: source, PIDs: pids, Config: cfg, now: time.Now, logger: logger, health: service.NewBaseService("tracker")}
}

// Health reports the tracker's current health status: healthy while Run is
// executing normally, unhealthy after Run returns with an error, degraded
// after a clean stop, and "unknown" (message "not started") before Run is
// ever called.
func (t *Tracker) Health() service.HealthStatus {
	return t.health.Health()
}

// RegisterCallback installs (or, with nil, removes) the per-cycle
// callback.
func (t *Tracker) RegisterCallback(cb Callback) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.callback = cb
}

// Stop requests that Run return at the next cycle boundary.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopFlag = true
}

func (t *Tracker) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}

// Running reports whether Run is currently executing.
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// LastResult reports the StopReason and error from the most recently
// completed Run call.
func (t *Tracker) LastResult() (StopReason, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastReason, t.lastErr
}

// Run executes the control loop until ctx is cancelled or a stop
// condition fires.
func (t *Tracker) Run(ctx context.Context) (reason StopReason, err error) {
	t.mu.Lock()
	t.stopFlag = false
	t.running = true
	t.startTime = t.clock()
	t.lowErrIt = 0
	t.mu.Unlock()
	t.health.SetHealthy("running")

	defer func() {
		t.mu.Lock()
		t.running = false
		t.lastReason = reason
		t.lastErr = err
		t.mu.Unlock()
		if err != nil {
			t.health.SetUnhealthy(err.Error())
		} else {
			t.health.SetDegraded(fmt.Sprintf("stopped: %s", reason))
		}
		if t.Events != nil {
			go t.Events.Publish(context.Background(), TopicStopped, StoppedEvent{Reason: reason, Err: err})
		}
	}()

	axis0, axis1 := t.Source.AxisNames()
	for _, axis := range [2]mount.AxisName{axis0, axis1} {
		if c := t.PIDs.Get(axis); c != nil {
			c.Reset()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		t.mu.Lock()
		stopRequested := t.stopFlag
		t.mu.Unlock()
		if stopRequested {
			return StopFlagSet, nil
		}

		if t.Config.StopWhenConverged && t.lowErrorIterations() >= t.Config.ConvergeMinIterations {
			if t.Events != nil {
				go t.Events.Publish(context.Background(), TopicConverged, t.snapshotForEvent())
			}
			return StopConverged, nil
		}
		if t.Config.StopOnTimer && t.clock().Sub(t.runStartTime()) > t.Config.MaxRunTime {
			return StopTimerExpired, nil
		}

		pe, err := t.Source.ComputeError(ctx, t.Config.ComputeErrorRetries)
		if err != nil {
			if errors.Is(err, errorsource.ErrNoSignal) {
				pe = errorsource.PointingError{}
			} else {
				return "", fmt.Errorf("tracker: compute error: %w", err)
			}
		}

		t.mu.Lock()
		cb := t.callback
		t.mu.Unlock()
		if cb != nil {
			if cb(t) {
				t.publishTelemetry(pe)
				t.incrementIterations()
				continue
			}
		}

		if !pe.Valid {
			t.publishTelemetry(pe)
			t.incrementIterations()
			continue
		}

		t.accountConvergence(pe)

		var rate, integral, out, errAxes mount.Axes[float64]
		errAxes.Set(axis0, pe.Axis0)
		errAxes.Set(axis1, pe.Axis1)
		for _, axis := range [2]mount.AxisName{axis0, axis1} {
			ctrl := t.PIDs.Get(axis)
			output := ctrl.Update(errAxes.Get(axis))
			out.Set(axis, output)

			result, err := t.Mount.Slew(ctx, axis, output)
			var limitErr *mount.AxisLimitError
			if errors.As(err, &limitErr) {
				ctrl.ResetIntegrator()
				rate.Set(axis, 0)
			} else if err != nil {
				return "", fmt.Errorf("tracker: slew axis %v: %w", axis, err)
			} else {
				rate.Set(axis, result.AcceptedRate)
				if result.LimitExceeded {
					ctrl.ClampIntegrator(result.AcceptedRate)
				}
			}
			integral.Set(axis, ctrl.Integrator())
		}

		t.mu.Lock()
		t.snapshot = Snapshot{
			Time:               t.clock(),
			NumIterations:      t.snapshot.NumIterations,
			Rate:               rate,
			Error:              errAxes,
			ControllerIntegral: integral,
			ControllerOutput:   out,
			ErrorValid:         true,
		}
		t.mu.Unlock()
		t.incrementIterations()
	}
}

// snapshotForEvent returns a copy of the current telemetry snapshot, for
// attaching to a TopicConverged event.
func (t *Tracker) snapshotForEvent() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot
}

func (t *Tracker) lowErrorIterations() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lowErrIt
}

func (t *Tracker) runStartTime() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startTime
}

func (t *Tracker) accountConvergence(pe errorsource.PointingError) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if pe.Magnitude > t.Config.ConvergeMaxErrorMag {
		t.lowErrIt = 0
		return
	}

	if t.Config.ConvergeErrorState == nil {
		t.lowErrIt++
		return
	}

	reporter, ok := t.Source.(errorsource.StateReporter)
	if ok && reporter.State() == *t.Config.ConvergeErrorState {
		t.lowErrIt++
	}
}

// publishTelemetry snapshots the current (possibly invalid) error state
// under the mutex, for the callback and invalid-error short-circuit paths.
func (t *Tracker) publishTelemetry(pe errorsource.PointingError) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshot.Time = t.clock()
	t.snapshot.ErrorValid = pe.Valid
	if pe.Valid {
		axis0, axis1 := t.Source.AxisNames()
		var errAxes mount.Axes[float64]
		errAxes.Set(axis0, pe.Axis0)
		errAxes.Set(axis1, pe.Axis1)
		t.snapshot.Error = errAxes
	}
}

func (t *Tracker) incrementIterations() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshot.NumIterations++
}

// Telemetry implements telem.Source: a copy-on-read snapshot of the
// Tracker's per-cycle channels.
func (t *Tracker) Telemetry() telem.Sample {
	t.mu.Lock()
	snap := t.snapshot
	t.mu.Unlock()

	axis0, axis1 := t.Source.AxisNames()
	channels := map[string]float64{
		"num_iterations": float64(snap.NumIterations),
	}
	for _, axis := range [2]mount.AxisName{axis0, axis1} {
		name := axis.String()
		channels["rate_"+name] = snap.Rate.Get(axis)
		channels["error_"+name] = angle.WrapError(snap.Error.Get(axis))
		channels["controller_int_"+name] = snap.ControllerIntegral.Get(axis)
		channels["controller_out_"+name] = snap.ControllerOutput.Get(axis)
	}
	return telem.Sample{Time: snap.Time, Channels: channels}
}
