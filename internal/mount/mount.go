// Package mount defines the abstract, rate-controlled two-axis mount
// contract the control core consumes. Wire protocols to specific hardware
// are explicitly out of scope; callers supply their own Mount
// implementation. SimMount, in this package, is the reference/test
// implementation used by this package's tests and by the trackerd demo.
package mount

import "context"

// AxisName identifies one of a mount's two rotational degrees of freedom.
// The control core treats the two axes symmetrically; only the concrete
// Mount implementation cares whether they mean azimuth/altitude or
// right-ascension/declination.
type AxisName int

const (
	Axis0 AxisName = iota
	Axis1
)

func (a AxisName) String() string {
	if a == Axis0 {
		return "axis0"
	}
	return "axis1"
}

// Axes is a two-slot container keyed by AxisName, replacing a
// string-keyed map to avoid allocation and stringly-typed bugs in the
// control hot path.
type Axes[T any] [2]T

// Get returns the value for axis.
func (a Axes[T]) Get(axis AxisName) T { return a[axis] }

// Set stores value for axis.
func (a *Axes[T]) Set(axis AxisName, value T) { a[axis] = value }

// EncoderPositions is a pair of raw encoder readings, one per axis, each
// in the Longitude wrap (degrees, [0, 360)).
type EncoderPositions = Axes[float64]

// SlewResult is returned by Mount.Slew.
type SlewResult struct {
	// AcceptedRate is the rate actually commanded after the mount's own
	// rate/accel/step limits were applied; magnitude may differ from the
	// requested rate.
	AcceptedRate float64
	// LimitExceeded is true if any limit clipped the requested rate.
	LimitExceeded bool
}

// AxisLimitError is returned when a commanded motion would cross a
// physical hard-stop. The Tracker handles it by resetting the offending
// axis's integrator to zero.
type AxisLimitError struct {
	Axis AxisName
}

func (e *AxisLimitError) Error() string {
	return "mount: axis " + e.Axis.String() + " limit exceeded (hard stop)"
}

// Mount is the abstract two-axis, rate-controlled telescope mount contract
// consumed by the Tracker and by error sources that need the mount's
// current encoder position. Concrete implementations own the wire protocol
// to real hardware; none ships in this package except SimMount.
type Mount interface {
	// AxisNames returns the two axes in canonical order.
	AxisNames() (AxisName, AxisName)

	// GetPosition reads the encoders. Implementations may return a cached
	// reading younger than maxCacheAge instead of a fresh one.
	GetPosition(ctx context.Context, maxCacheAge float64) (EncoderPositions, error)

	// Slew commands a signed rate (deg/s) on one axis, returning the
	// accepted rate and whether any limit clipped it. It returns an
	// *AxisLimitError if the command would cross a hard stop.
	Slew(ctx context.Context, axis AxisName, rateDegPerSec float64) (SlewResult, error)

	// MaxSlewRates returns each axis's maximum commandable rate (deg/s).
	MaxSlewRates() Axes[float64]
	// MaxSlewAccels returns each axis's maximum acceleration (deg/s^2).
	MaxSlewAccels() Axes[float64]
	// MaxSlewSteps returns each axis's maximum rate change per cycle (deg/s).
	MaxSlewSteps() Axes[float64]
}

// Predictor is an optional extension a Mount may implement to support a
// model-predictive controller. The baseline tracker never requires it.
type Predictor interface {
	// Predict forward-simulates the mount given a sequence of (time delta,
	// rate command) pairs, returning the resulting position and rate
	// trajectory.
	Predict(ctx context.Context, axis AxisName, tDeltas []float64, rateCommands []float64) (positions, rates []float64, err error)
}
