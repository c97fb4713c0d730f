// Package pid implements the per-axis adaptive-gain PID controller: gains
// are derived once from a target bandwidth and damping factor, but the
// integral and derivative terms are computed every update from the actual
// measured inter-sample period, so loop dynamics stay correct under jitter
// in the calling cycle.
package pid

import (
	"errors"
	"log"
	"math"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/angle"
	"github.com/darkdragonsastro/trackcore/internal/filter"
)

// ErrMaxUpdatePeriodExceeded is logged (not returned) when the measured
// inter-sample period exceeds MaxUpdatePeriod; Update then returns the
// current integrator value without updating it.
var ErrMaxUpdatePeriodExceeded = errors.New("pid: max update period exceeded")

// Gains holds the four tunable PID coefficients.
type Gains struct {
	P                float64
	I                float64
	D                float64
	DerivFilterDepth time.Duration // must be > 0
}

// Validate checks the Gains invariants: I >= 0, filter depth > 0.
func (g Gains) Validate() error {
	if g.I < 0 {
		return errors.New("pid: integral gain must be >= 0")
	}
	if g.DerivFilterDepth <= 0 {
		return errors.New("pid: derivative_filter_depth must be > 0")
	}
	return nil
}

// FromBandwidth derives P and I from a target closed-loop bandwidth (Hz)
// and damping factor zeta, using the convention:
//
//	P = 4*zeta*B / (zeta + 1/(4*zeta))
//	I = 4*B^2 / (zeta + 1/(4*zeta))^2
func FromBandwidth(bandwidthHz, zeta float64, d float64, derivFilterDepth time.Duration) Gains {
	denom := zeta + 1/(4*zeta)
	return Gains{
		P:                4 * zeta * bandwidthHz / denom,
		I:                4 * bandwidthHz * bandwidthHz / (denom * denom),
		D:                d,
		DerivFilterDepth: derivFilterDepth,
	}
}

// FromIntegralGain derives P from a directly-specified integral gain I and
// damping factor zeta: P = 2*zeta*sqrt(I). Steady-state error for a
// quadratic-in-time target disturbance with acceleration `accel` is then
// 2*accel/I.
func FromIntegralGain(i, zeta, d float64, derivFilterDepth time.Duration) Gains {
	return Gains{
		P:                2 * zeta * math.Sqrt(i),
		I:                i,
		D:                d,
		DerivFilterDepth: derivFilterDepth,
	}
}

// Clock abstracts wall-clock reads so tests can use a virtual clock.
type Clock func() time.Time

// Controller is a single-axis adaptive-gain PID filter.
type Controller struct {
	gains           Gains
	maxUpdatePeriod time.Duration
	now             Clock
	logger          *log.Logger

	integrator  float64
	prevError   float64
	havePrev    bool
	lastUpdate  time.Time
	derivFilter *filter.MovingAverage
}

// New creates a Controller. maxUpdatePeriod bounds the inter-sample period
// the controller will trust; a zero value disables that check (useful in
// tests with a fixed-step virtual clock).
func New(gains Gains, maxUpdatePeriod time.Duration, now Clock, logger *log.Logger) (*Controller, error) {
	if err := gains.Validate(); err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		gains:           gains,
		maxUpdatePeriod: maxUpdatePeriod,
		now:             now,
		logger:          logger,
		derivFilter:     filter.New(gains.DerivFilterDepth),
	}, nil
}

// Gains returns the controller's current gain set.
func (c *Controller) Gains() Gains { return c.gains }

// Integrator returns the current integrator value (deg/s).
func (c *Controller) Integrator() float64 { return c.integrator }

// Update computes the next rate command (deg/s) for the given pointing
// error (degrees).
func (c *Controller) Update(errDeg float64) float64 {
	now := c.now()

	if !c.havePrev {
		c.prevError = errDeg
		c.lastUpdate = now
		c.havePrev = true
		return c.gains.P * errDeg
	}

	dt := now.Sub(c.lastUpdate)
	c.lastUpdate = now

	if c.maxUpdatePeriod > 0 && dt > c.maxUpdatePeriod {
		c.logger.Printf("pid: %v: dt %v exceeds max update period %v, holding integrator", ErrMaxUpdatePeriodExceeded, dt, c.maxUpdatePeriod)
		c.prevError = errDeg
		return c.integrator
	}

	dtSec := dt.Seconds()
	c.integrator += c.gains.I * errDeg * dtSec

	var derivTerm float64
	if dtSec > 0 {
		raw := (errDeg - c.prevError) / dtSec
		derivTerm = c.gains.D * c.derivFilter.Advance(raw, dt)
	}

	c.prevError = errDeg

	return c.gains.P*errDeg + c.integrator + derivTerm
}

// ClampIntegrator enforces anti-windup: when the mount reports the
// commanded rate was clipped, the integrator is clamped to the accepted
// rate's magnitude so it cannot keep growing while the actuator is
// saturated.
func (c *Controller) ClampIntegrator(maxRate float64) {
	c.integrator = angle.ClampMagnitude(c.integrator, maxRate)
}

// ResetIntegrator zeroes only the integrator, leaving the derivative
// filter and previous-error state intact. Used when the mount rejects a
// command for crossing a hard stop.
func (c *Controller) ResetIntegrator() {
	c.integrator = 0
}

// Reset clears all controller state, as done at the start of every
// Tracker.Run.
func (c *Controller) Reset() {
	c.integrator = 0
	c.prevError = 0
	c.havePrev = false
	c.lastUpdate = time.Time{}
	c.derivFilter.Reset()
}
