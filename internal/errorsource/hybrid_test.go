package errorsource

import (
	"context"
	"testing"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/mountmodel"
	"github.com/darkdragonsastro/trackcore/internal/target"
)

func newTestHybrid(t *testing.T, keypoints []Keypoint) (*HybridErrorSource, *fakeMount) {
	t.Helper()
	loc := mountmodel.Location{LatitudeDeg: 34.2, LongitudeDeg: -118.2, ElevationM: 300}
	model := mountmodel.New(mountmodel.Parameters{}, loc)

	fixedWhen := time.Date(2026, 6, 1, 6, 0, 0, 0, time.UTC)
	sky := mountmodel.SkyCoord{RADeg: 120, DecDeg: 15}
	tgt := target.NewFixedTarget(sky)
	enc := model.WorldToMount(sky, mountmodel.East, fixedWhen)
	mnt := &fakeMount{pos: enc}

	blind := NewBlindErrorSource(mnt, model, tgt, mountmodel.East)
	blind.now = func() time.Time { return fixedWhen }

	cam := &fakeCamera{frame: Frame{Width: 100, Height: 100, Timestamp: fixedWhen}}
	det := &fakeDetector{keypoints: keypoints}
	optical := NewOpticalErrorSource(cam, det, 1.0, 1)

	return NewHybridErrorSource(blind, optical, 1.0, 3), mnt
}

func TestHybridStartsBlindAndSwitchesToOpticalOnLowDivergence(t *testing.T) {
	// A centered keypoint means zero optical error, i.e. zero divergence
	// from the mount's already-on-target blind prediction.
	h, _ := newTestHybrid(t, []Keypoint{{X: 50, Y: 50}})

	if h.State() != StateBlind {
		t.Fatalf("initial State() = %v, want blind", h.State())
	}

	got, err := h.ComputeError(context.Background(), 0)
	if err != nil {
		t.Fatalf("ComputeError() error = %v", err)
	}
	if h.State() != StateOptical {
		t.Errorf("State() after low-divergence optical signal = %v, want optical", h.State())
	}
	if got.Magnitude > 1e-6 {
		t.Errorf("magnitude = %v, want ~0", got.Magnitude)
	}
}

func TestHybridStaysBlindWhenOpticalHasNoSignal(t *testing.T) {
	h, _ := newTestHybrid(t, nil)

	got, err := h.ComputeError(context.Background(), 0)
	if err != nil {
		t.Fatalf("ComputeError() error = %v", err)
	}
	if h.State() != StateBlind {
		t.Errorf("State() = %v, want blind when optical never acquires signal", h.State())
	}
	if !got.Valid {
		t.Errorf("expected a valid blind fallback error, got invalid")
	}
}

func TestHybridFallsBackAfterMaxNoSignalFrames(t *testing.T) {
	h, _ := newTestHybrid(t, []Keypoint{{X: 50, Y: 50}})

	if _, err := h.ComputeError(context.Background(), 0); err != nil {
		t.Fatalf("first ComputeError() error = %v", err)
	}
	if h.State() != StateOptical {
		t.Fatalf("State() after acquiring = %v, want optical", h.State())
	}

	// Optical now loses signal for MaxOpticalNoSignalFrames cycles.
	h.Optical.Detector = &fakeDetector{}
	for i := 0; i < h.MaxOpticalNoSignalFrames-1; i++ {
		if _, err := h.ComputeError(context.Background(), 0); err == nil {
			t.Fatalf("cycle %d: expected ErrNoSignal while still within tolerance", i)
		}
		if h.State() != StateOptical {
			t.Fatalf("cycle %d: State() = %v, want still optical within tolerance", i, h.State())
		}
	}

	got, err := h.ComputeError(context.Background(), 0)
	if err != nil {
		t.Fatalf("final ComputeError() error = %v", err)
	}
	if h.State() != StateBlind {
		t.Errorf("State() after exceeding MaxOpticalNoSignalFrames = %v, want blind", h.State())
	}
	if !got.Valid {
		t.Errorf("expected a valid blind fallback error")
	}
}
