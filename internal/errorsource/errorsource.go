// Package errorsource implements the polymorphic pointing-error producers
// consumed by the Tracker: a blind ephemeris-based
// predictor, a camera-based optical detector, and a hybrid state machine
// that selects between them.
package errorsource

import (
	"context"
	"errors"
	"math"

	"github.com/darkdragonsastro/trackcore/internal/mount"
)

// ErrNoSignal is returned when an error source cannot produce a
// measurement this cycle.
var ErrNoSignal = errors.New("errorsource: no signal")

// State names which underlying source a HybridErrorSource last used.
type State int

const (
	StateBlind State = iota
	StateOptical
)

func (s State) String() string {
	if s == StateOptical {
		return "optical"
	}
	return "blind"
}

// PointingError is a two-axis angular error (degrees, WrappedError) plus
// its Euclidean-norm small-angle magnitude. The zero value with Valid
// false is the "no signal" sentinel.
type PointingError struct {
	Axis0     float64 // degrees
	Axis1     float64 // degrees
	Magnitude float64 // degrees
	Valid     bool
}

// NewPointingError builds a valid PointingError from two axis errors,
// computing the Euclidean-norm magnitude.
func NewPointingError(axis0, axis1 float64) PointingError {
	return PointingError{
		Axis0:     axis0,
		Axis1:     axis1,
		Magnitude: math.Hypot(axis0, axis1),
		Valid:     true,
	}
}

// ErrorSource is the abstract two-axis pointing-error producer consumed
// by the Tracker.
type ErrorSource interface {
	AxisNames() (mount.AxisName, mount.AxisName)
	// ComputeError produces the current pointing error, retrying up to
	// retries times on a recoverable empty-detection before giving up
	// with ErrNoSignal.
	ComputeError(ctx context.Context, retries int) (PointingError, error)
}

// StateReporter is implemented by error sources that track an internal
// mode the Tracker's convergence accounting can condition on.
type StateReporter interface {
	State() State
}
