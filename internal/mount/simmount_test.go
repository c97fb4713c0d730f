package mount

import (
	"context"
	"testing"
)

func TestSlewRateSaturation(t *testing.T) {
	cfg := DefaultSimMountConfig()
	cfg.Limits.Set(Axis0, AxisLimits{MaxRate: 1.0, MaxAccel: 10, MaxStep: 10})
	m := NewSimMount(cfg, Axes[float64]{0, 0})

	res, err := m.Slew(context.Background(), Axis0, 5.0)
	if err != nil {
		t.Fatalf("Slew() error = %v", err)
	}
	if res.AcceptedRate != 1.0 {
		t.Errorf("AcceptedRate = %v, want 1.0", res.AcceptedRate)
	}
	if !res.LimitExceeded {
		t.Errorf("LimitExceeded = false, want true")
	}
}

func TestSlewStepLimit(t *testing.T) {
	cfg := DefaultSimMountConfig()
	cfg.Limits.Set(Axis0, AxisLimits{MaxRate: 10, MaxAccel: 10, MaxStep: 0.5})
	m := NewSimMount(cfg, Axes[float64]{0, 0})

	if _, err := m.Slew(context.Background(), Axis0, 0); err != nil {
		t.Fatalf("Slew() error = %v", err)
	}
	res, err := m.Slew(context.Background(), Axis0, 5.0)
	if err != nil {
		t.Fatalf("Slew() error = %v", err)
	}
	if res.AcceptedRate != 0.5 {
		t.Errorf("AcceptedRate = %v, want 0.5 (step-limited)", res.AcceptedRate)
	}
}

func TestSlewHardStopReturnsAxisLimitError(t *testing.T) {
	cfg := DefaultSimMountConfig()
	cfg.TickInterval = 1_000_000_000 // 1s, for a deterministic large step
	cfg.Limits.Set(Axis1, AxisLimits{MaxRate: 10, MaxAccel: 10, MaxStep: 10, MinPos: -10, MaxPos: 10})
	m := NewSimMount(cfg, Axes[float64]{0, 9.5})

	_, err := m.Slew(context.Background(), Axis1, 5.0)
	if err == nil {
		t.Fatalf("Slew() error = nil, want AxisLimitError")
	}
	var limErr *AxisLimitError
	if !isAxisLimitError(err, &limErr) {
		t.Fatalf("Slew() error = %v, want *AxisLimitError", err)
	}
	if limErr.Axis != Axis1 {
		t.Errorf("AxisLimitError.Axis = %v, want %v", limErr.Axis, Axis1)
	}
}

func isAxisLimitError(err error, out **AxisLimitError) bool {
	e, ok := err.(*AxisLimitError)
	if ok {
		*out = e
	}
	return ok
}

func TestGetPositionCaching(t *testing.T) {
	cfg := DefaultSimMountConfig()
	m := NewSimMount(cfg, Axes[float64]{10, 20})

	first, _ := m.GetPosition(context.Background(), 60)
	second, _ := m.GetPosition(context.Background(), 60)
	if first != second {
		t.Errorf("cached GetPosition() changed: %v != %v", first, second)
	}
}
