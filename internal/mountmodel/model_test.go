package mountmodel

import (
	"math"
	"testing"
	"time"
)

func TestRoundTripIdentity(t *testing.T) {
	loc := Location{LatitudeDeg: 34.2, LongitudeDeg: -118.2, ElevationM: 300}
	params := Parameters{Axis0Offset: 0, Axis1Offset: 0, PoleRotAxisLon: 0, PoleRotAngle: 0}
	m := New(params, loc)
	when := time.Date(2026, 6, 15, 7, 0, 0, 0, time.UTC)

	skies := []SkyCoord{
		{RADeg: 10, DecDeg: 20},
		{RADeg: 180, DecDeg: -45},
		{RADeg: 350, DecDeg: 60},
		{RADeg: 90, DecDeg: -10},
	}

	for _, sky := range skies {
		for _, side := range []MeridianSide{East, West} {
			enc := m.WorldToMount(sky, side, when)
			got := m.MountToWorld(enc, when)
			sep := AngularSeparation(sky, got)
			if sep > 1.0/3600.0 {
				t.Errorf("round trip for %+v side %v: separation = %v deg, want <= 1 arcsec", sky, side, sep)
			}
		}
	}
}

func TestFitRecoversKnownOffset(t *testing.T) {
	loc := Location{LatitudeDeg: 34.2, LongitudeDeg: -118.2, ElevationM: 300}
	truth := Parameters{Axis0Offset: 5, Axis1Offset: -3, PoleRotAxisLon: 2, PoleRotAngle: 1}
	m := New(truth, loc)

	when := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	skies := []SkyCoord{
		{RADeg: 20, DecDeg: 10}, {RADeg: 100, DecDeg: -20}, {RADeg: 200, DecDeg: 30},
		{RADeg: 300, DecDeg: 5}, {RADeg: 45, DecDeg: -40}, {RADeg: 135, DecDeg: 50},
	}

	var obs []Observation
	for i, sky := range skies {
		ts := when.Add(time.Duration(i) * time.Minute)
		enc := m.WorldToMount(sky, East, ts)
		obs = append(obs, Observation{Time: ts, Encoders: enc, Sky: sky})
	}

	fitted, err := Fit(loc, Parameters{}, obs)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	fittedModel := New(fitted, loc)
	for _, o := range obs {
		got := fittedModel.MountToWorld(o.Encoders, o.Time)
		if sep := AngularSeparation(got, o.Sky); sep > 0.1 {
			t.Errorf("fitted model residual = %v deg for %+v, want <= 0.1", sep, o.Sky)
		}
	}
}

func TestAngularSeparationZeroForSamePoint(t *testing.T) {
	a := SkyCoord{RADeg: 123, DecDeg: 45}
	if sep := AngularSeparation(a, a); math.Abs(sep) > 1e-9 {
		t.Errorf("AngularSeparation(a, a) = %v, want ~0", sep)
	}
}

func TestParametersValidate(t *testing.T) {
	bad := Parameters{Axis0Offset: 200}
	if err := bad.Validate(); err == nil {
		t.Errorf("Validate() on out-of-range parameter = nil, want error")
	}
}
