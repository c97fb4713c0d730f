package pid

import (
	"testing"
	"time"
)

// virtualClock lets tests advance time deterministically.
type virtualClock struct {
	t time.Time
}

func (v *virtualClock) now() time.Time          { return v.t }
func (v *virtualClock) advance(d time.Duration) { v.t = v.t.Add(d) }

func newTestController(t *testing.T, gains Gains, maxPeriod time.Duration, vc *virtualClock) *Controller {
	t.Helper()
	c, err := New(gains, maxPeriod, vc.now, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestFirstUpdateReturnsProportionalOnly(t *testing.T) {
	vc := &virtualClock{t: time.Unix(0, 0)}
	gains := Gains{P: 2, I: 40, D: 0, DerivFilterDepth: time.Second}
	c := newTestController(t, gains, 0, vc)

	got := c.Update(1.0)
	if want := 2.0; got != want {
		t.Errorf("first Update() = %v, want %v", got, want)
	}
	if c.Integrator() != 0 {
		t.Errorf("integrator after first Update() = %v, want 0", c.Integrator())
	}
}

func TestClampIntegratorBoundsMagnitude(t *testing.T) {
	vc := &virtualClock{t: time.Unix(0, 0)}
	gains := Gains{P: 2, I: 40, D: 0, DerivFilterDepth: time.Second}
	c := newTestController(t, gains, 0, vc)

	c.Update(1.0)
	vc.advance(50 * time.Millisecond)
	r := c.Update(1.0)

	c.ClampIntegrator(1.0)
	if mag := c.Integrator(); mag > 1.0 || mag < -1.0 {
		t.Errorf("integrator magnitude = %v after ClampIntegrator(1.0), want <= 1.0 (r=%v)", mag, r)
	}
}

func TestMaxUpdatePeriodExceededHoldsIntegrator(t *testing.T) {
	vc := &virtualClock{t: time.Unix(0, 0)}
	gains := Gains{P: 2, I: 40, D: 0, DerivFilterDepth: time.Second}
	maxPeriod := 100 * time.Millisecond
	c := newTestController(t, gains, maxPeriod, vc)

	c.Update(0.1)
	before := c.Integrator()

	vc.advance(5 * maxPeriod)
	got := c.Update(0.1)

	if got != before {
		t.Errorf("Update() after pause = %v, want unchanged integrator %v", got, before)
	}
	if c.Integrator() != before {
		t.Errorf("integrator after pause = %v, want unchanged %v", c.Integrator(), before)
	}
}

func TestResetClearsState(t *testing.T) {
	vc := &virtualClock{t: time.Unix(0, 0)}
	gains := Gains{P: 2, I: 40, D: 0, DerivFilterDepth: time.Second}
	c := newTestController(t, gains, 0, vc)

	c.Update(1.0)
	vc.advance(50 * time.Millisecond)
	c.Update(1.0)

	c.Reset()
	if c.Integrator() != 0 {
		t.Errorf("Integrator() after Reset() = %v, want 0", c.Integrator())
	}
	// First update after reset must again be proportional-only.
	got := c.Update(1.0)
	if want := gains.P; got != want {
		t.Errorf("Update() immediately after Reset() = %v, want %v", got, want)
	}
}

func TestResetIntegratorLeavesDerivativeStateIntact(t *testing.T) {
	vc := &virtualClock{t: time.Unix(0, 0)}
	gains := Gains{P: 2, I: 40, D: 1, DerivFilterDepth: time.Second}
	c := newTestController(t, gains, 0, vc)

	c.Update(1.0)
	vc.advance(50 * time.Millisecond)
	c.Update(1.0)

	c.ResetIntegrator()
	if c.Integrator() != 0 {
		t.Errorf("Integrator() after ResetIntegrator() = %v, want 0", c.Integrator())
	}

	vc.advance(50 * time.Millisecond)
	got := c.Update(1.0)
	// The integrator restarts from 0 and accumulates I*error*dt on this
	// update; the derivative term is near zero (error has not changed).
	// This is not a fresh first-update proportional-only reading.
	if want := gains.P*1.0 + gains.I*1.0*0.05; got-want > 1e-6 || got-want < -1e-6 {
		t.Errorf("Update() after ResetIntegrator() = %v, want ~%v (derivative near 0 since error held steady)", got, want)
	}
}

func TestFromBandwidthAndFromIntegralGainAgree(t *testing.T) {
	// Both gain conventions should be able to express the same operating
	// point: derive (P, I) from bandwidth, then re-derive P from that I and
	// confirm it round-trips, since both are just different ways to specify
	// the same gain set.
	bw, zeta := 1.0, 0.7071067811865476
	g := FromBandwidth(bw, zeta, 0, time.Second)
	g2 := FromIntegralGain(g.I, zeta, 0, time.Second)
	if diff := g.P - g2.P; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("FromIntegralGain(g.I, zeta) P = %v, want %v", g2.P, g.P)
	}
}

func TestStepResponseConvergesWithin50Arcsec(t *testing.T) {
	// Spec scenario 1 (simplified, open-loop on the controller alone): a
	// 1 degree initial error driven by P=2, I=40, D=0 at 20 Hz should settle
	// its rate output toward zero as the integrator absorbs the error.
	vc := &virtualClock{t: time.Unix(0, 0)}
	gains := Gains{P: 2, I: 40, D: 0, DerivFilterDepth: 200 * time.Millisecond}
	c := newTestController(t, gains, time.Second, vc)

	errDeg := 1.0
	dt := 50 * time.Millisecond
	rate := c.Update(errDeg)
	for i := 0; i < 80; i++ {
		vc.advance(dt)
		// Plant: error decays proportionally to commanded rate (toy model).
		errDeg -= rate * dt.Seconds()
		rate = c.Update(errDeg)
	}

	gotArcsec := errDeg * 3600
	if gotArcsec > 50 || gotArcsec < -50 {
		t.Errorf("|error| after settling = %v arcsec, want within +/-50", gotArcsec)
	}
}
