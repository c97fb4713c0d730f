package mount

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/angle"
)

// AxisLimits bounds one axis's motion: max rate, max acceleration, max
// per-call rate step, and an optional hard-stop range.
type AxisLimits struct {
	MaxRate  float64 // deg/s
	MaxAccel float64 // deg/s^2
	MaxStep  float64 // deg/s change allowed per Slew call
	MinPos   float64 // degrees; hard stop, ignored if Max <= Min
	MaxPos   float64 // degrees
}

// BacklashConfig models mechanical deadband on one axis: ApproachSign
// names the direction (+1/-1) considered the "preferred" approach; motion
// that reverses past the threshold must travel Amount degrees before the
// load actually moves. SimMount models the take-up as one tick of no load
// motion when motion in the non-preferred direction begins; the length of
// that pause does not depend on Amount, which only enables the model.
type BacklashConfig struct {
	Amount       float64 // degrees
	ApproachSign int     // +1 or -1
}

// SimMountConfig configures SimMount.
type SimMountConfig struct {
	Limits   Axes[AxisLimits]
	Backlash Axes[BacklashConfig]

	// PeriodicError is peak-to-peak sinusoidal tracking error (arcsec),
	// DriftRate a steady-state drift (arcsec/hour), and TrackingJitter RMS
	// random noise (arcsec) injected into GetPosition.
	PeriodicError  Axes[float64]
	DriftRate      Axes[float64]
	TrackingJitter Axes[float64]

	TickInterval time.Duration // actuation resolution; default 100ms
}

// DefaultSimMountConfig returns a permissive, ideal (no backlash, no
// jitter) two-axis mount: 8 deg/s max rate, 4 deg/s^2 accel, an 8 deg/s
// per-call rate step limit, no hard stops.
func DefaultSimMountConfig() SimMountConfig {
	lim := AxisLimits{MaxRate: 8, MaxAccel: 4, MaxStep: 8}
	return SimMountConfig{
		Limits:       Axes[AxisLimits]{lim, lim},
		TickInterval: 100 * time.Millisecond,
	}
}

// SimMount is a deterministic, rate-integrating simulated mount used for
// tests and demos. Actuation happens synchronously inside Slew (no
// background goroutine ticking it forward unasked), matching the control
// core's expectation that Slew is a blocking call on the control thread.
type SimMount struct {
	mu       sync.Mutex
	cfg      SimMountConfig
	rng      *rand.Rand
	epoch    time.Time
	pos      Axes[float64] // true encoder position, degrees
	rate     Axes[float64] // currently commanded rate, deg/s
	cached   Axes[float64]
	cacheAge time.Time
}

// NewSimMount creates a SimMount starting at the given encoder positions.
func NewSimMount(cfg SimMountConfig, start Axes[float64]) *SimMount {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 100 * time.Millisecond
	}
	return &SimMount{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(1)),
		epoch: time.Now(),
		pos:   start,
	}
}

func (m *SimMount) AxisNames() (AxisName, AxisName) { return Axis0, Axis1 }

func (m *SimMount) GetPosition(ctx context.Context, maxCacheAge float64) (EncoderPositions, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if maxCacheAge > 0 && !m.cacheAge.IsZero() && now.Sub(m.cacheAge).Seconds() < maxCacheAge {
		return m.cached, nil
	}

	var out Axes[float64]
	for _, ax := range []AxisName{Axis0, Axis1} {
		out.Set(ax, m.observedPosition(ax, now))
	}
	m.cached = out
	m.cacheAge = now
	return out, nil
}

// observedPosition adds the configured periodic error, drift, and jitter
// to the true position.
func (m *SimMount) observedPosition(ax AxisName, now time.Time) float64 {
	elapsedHours := now.Sub(m.epoch).Hours()
	pe := m.cfg.PeriodicError.Get(ax) / 3600.0
	drift := m.cfg.DriftRate.Get(ax) / 3600.0 * elapsedHours
	jitterSigma := m.cfg.TrackingJitter.Get(ax) / 3600.0

	const wormPeriodHours = 0.08333 // ~5 minutes
	periodic := pe / 2 * math.Sin(elapsedHours*2*math.Pi/wormPeriodHours)
	jitter := 0.0
	if jitterSigma > 0 {
		jitter = m.rng.NormFloat64() * jitterSigma
	}

	return angle.WrapLongitude(m.pos.Get(ax) + periodic + drift + jitter)
}

func (m *SimMount) Slew(ctx context.Context, axis AxisName, rateDegPerSec float64) (SlewResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lim := m.cfg.Limits.Get(axis)
	requested := rateDegPerSec

	accepted := angle.ClampMagnitude(requested, lim.MaxRate)

	if lim.MaxStep > 0 {
		prev := m.rate.Get(axis)
		delta := accepted - prev
		delta = angle.ClampMagnitude(delta, lim.MaxStep)
		accepted = prev + delta
	}

	limitExceeded := accepted != requested

	if lim.MaxPos > lim.MinPos {
		next := m.pos.Get(axis) + accepted*m.cfg.TickInterval.Seconds()
		if next > lim.MaxPos || next < lim.MinPos {
			return SlewResult{}, &AxisLimitError{Axis: axis}
		}
	}

	bl := m.cfg.Backlash.Get(axis)
	effective := accepted
	if bl.Amount > 0 && bl.ApproachSign != 0 {
		sign := 1
		if accepted < 0 {
			sign = -1
		}
		if sign != bl.ApproachSign && accepted != 0 && m.rate.Get(axis)*accepted <= 0 {
			// Reversing against the preferred approach direction: the
			// drive train must take up backlash before the load moves.
			// Model this as no motion for one tick while it's taken up.
			effective = 0
		}
	}

	m.pos.Set(axis, angle.WrapLongitude(m.pos.Get(axis)+effective*m.cfg.TickInterval.Seconds()))
	m.rate.Set(axis, accepted)

	return SlewResult{AcceptedRate: accepted, LimitExceeded: limitExceeded}, nil
}

func (m *SimMount) MaxSlewRates() Axes[float64] {
	return Axes[float64]{m.cfg.Limits[0].MaxRate, m.cfg.Limits[1].MaxRate}
}

func (m *SimMount) MaxSlewAccels() Axes[float64] {
	return Axes[float64]{m.cfg.Limits[0].MaxAccel, m.cfg.Limits[1].MaxAccel}
}

func (m *SimMount) MaxSlewSteps() Axes[float64] {
	return Axes[float64]{m.cfg.Limits[0].MaxStep, m.cfg.Limits[1].MaxStep}
}
