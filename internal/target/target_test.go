package target

import (
	"context"
	"testing"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/mountmodel"
)

func testModel() *mountmodel.Model {
	loc := mountmodel.Location{LatitudeDeg: 34.2, LongitudeDeg: -118.2, ElevationM: 300}
	return mountmodel.New(mountmodel.Parameters{}, loc)
}

func TestFixedTargetReturnsSamePosition(t *testing.T) {
	sky := mountmodel.SkyCoord{RADeg: 100, DecDeg: 20}
	tgt := NewFixedTarget(sky)
	model := testModel()
	when := time.Date(2026, 6, 1, 5, 0, 0, 0, time.UTC)

	pos, err := tgt.GetPosition(context.Background(), when, model, mountmodel.East)
	if err != nil {
		t.Fatalf("GetPosition() error = %v", err)
	}
	if pos.Sky != sky {
		t.Errorf("Sky = %+v, want %+v", pos.Sky, sky)
	}
	wantEnc := model.WorldToMount(sky, mountmodel.East, when)
	if pos.Encoders != wantEnc {
		t.Errorf("Encoders = %+v, want %+v", pos.Encoders, wantEnc)
	}
}

func TestSimulatedPassTargetInterpolatesAndClamps(t *testing.T) {
	start := mountmodel.SkyCoord{RADeg: 10, DecDeg: 0}
	end := mountmodel.SkyCoord{RADeg: 20, DecDeg: 10}
	t0 := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(10 * time.Minute)
	pass := NewSimulatedPassTarget(start, end, t0, t1)
	model := testModel()

	mid, err := pass.GetPosition(context.Background(), t0.Add(5*time.Minute), model, mountmodel.East)
	if err != nil {
		t.Fatalf("GetPosition() error = %v", err)
	}
	if got := mid.Sky.RADeg; got < 14.9 || got > 15.1 {
		t.Errorf("midpoint RA = %v, want ~15", got)
	}

	after, err := pass.GetPosition(context.Background(), t1.Add(time.Hour), model, mountmodel.East)
	if err != nil {
		t.Fatalf("GetPosition() error = %v", err)
	}
	if after.Sky != end {
		t.Errorf("past-end Sky = %+v, want clamped to %+v", after.Sky, end)
	}
}

func TestLerpLongitudeWrapsShortestPath(t *testing.T) {
	got := lerpLongitude(350, 10, 0.5)
	if got > 1 && got < 359 {
		t.Errorf("lerpLongitude(350, 10, 0.5) = %v, want near the 0/360 wrap (shortest path), not the long way around", got)
	}
}
