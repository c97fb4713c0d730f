package errorsource

import (
	"context"
	"testing"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/mount"
	"github.com/darkdragonsastro/trackcore/internal/mountmodel"
	"github.com/darkdragonsastro/trackcore/internal/target"
)

type fakeMount struct {
	pos mount.EncoderPositions
}

func (m *fakeMount) AxisNames() (mount.AxisName, mount.AxisName) { return mount.Axis0, mount.Axis1 }
func (m *fakeMount) GetPosition(ctx context.Context, maxCacheAge float64) (mount.EncoderPositions, error) {
	return m.pos, nil
}
func (m *fakeMount) Slew(ctx context.Context, axis mount.AxisName, rate float64) (mount.SlewResult, error) {
	return mount.SlewResult{AcceptedRate: rate}, nil
}
func (m *fakeMount) MaxSlewRates() mount.Axes[float64]  { return mount.Axes[float64]{10, 10} }
func (m *fakeMount) MaxSlewAccels() mount.Axes[float64] { return mount.Axes[float64]{5, 5} }
func (m *fakeMount) MaxSlewSteps() mount.Axes[float64]  { return mount.Axes[float64]{1, 1} }

func TestBlindErrorSourceComputesEncoderDifference(t *testing.T) {
	loc := mountmodel.Location{LatitudeDeg: 34.2, LongitudeDeg: -118.2, ElevationM: 300}
	model := mountmodel.New(mountmodel.Parameters{}, loc)

	fixedWhen := time.Date(2026, 6, 1, 6, 0, 0, 0, time.UTC)
	sky := mountmodel.SkyCoord{RADeg: 120, DecDeg: 15}
	tgt := target.NewFixedTarget(sky)

	wantEnc := model.WorldToMount(sky, mountmodel.East, fixedWhen)
	mnt := &fakeMount{pos: wantEnc}

	src := NewBlindErrorSource(mnt, model, tgt, mountmodel.East)
	src.now = func() time.Time { return fixedWhen }

	got, err := src.ComputeError(context.Background(), 0)
	if err != nil {
		t.Fatalf("ComputeError() error = %v", err)
	}
	if !got.Valid {
		t.Fatalf("ComputeError() Valid = false, want true")
	}
	if got.Magnitude > 1e-6 {
		t.Errorf("error magnitude = %v, want ~0 when mount sits exactly on target", got.Magnitude)
	}
}

func TestBlindErrorSourceAppliesOffset(t *testing.T) {
	loc := mountmodel.Location{LatitudeDeg: 34.2, LongitudeDeg: -118.2, ElevationM: 300}
	model := mountmodel.New(mountmodel.Parameters{}, loc)

	fixedWhen := time.Date(2026, 6, 1, 6, 0, 0, 0, time.UTC)
	sky := mountmodel.SkyCoord{RADeg: 120, DecDeg: 15}
	tgt := target.NewFixedTarget(sky)

	wantEnc := model.WorldToMount(sky, mountmodel.East, fixedWhen)
	mnt := &fakeMount{pos: wantEnc}

	src := NewBlindErrorSource(mnt, model, tgt, mountmodel.East)
	src.now = func() time.Time { return fixedWhen }
	src.Offset = func(motionAxis0, motionAxis1 float64) (float64, float64) {
		return 0.01, 0
	}

	got, err := src.ComputeError(context.Background(), 0)
	if err != nil {
		t.Fatalf("ComputeError() error = %v", err)
	}
	if got.Magnitude == 0 {
		t.Errorf("expected nonzero error once an offset perturbs the target, got 0")
	}
}
