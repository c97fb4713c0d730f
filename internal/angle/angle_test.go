package angle

import "testing"

func TestWrapErrorRange(t *testing.T) {
	cases := []float64{0, 180, 180.0001, -180, -180.0001, 359, -359, 720, -720, 1e6}
	for _, v := range cases {
		w := WrapError(v)
		if w <= -180.0 || w > 180.0 {
			t.Errorf("WrapError(%v) = %v, want in (-180, 180]", v, w)
		}
	}
}

func TestWrapErrorIdempotent(t *testing.T) {
	for _, v := range []float64{0, 1, -1, 179.5, -179.5, 500, -500} {
		once := WrapError(v)
		twice := WrapError(once)
		if once != twice {
			t.Errorf("WrapError(WrapError(%v)) = %v, want %v", v, twice, once)
		}
	}
}

func TestWrapLongitudeRange(t *testing.T) {
	for _, v := range []float64{0, 359.999, 360, 360.5, -0.5, -360, 720} {
		w := WrapLongitude(v)
		if w < 0 || w >= 360 {
			t.Errorf("WrapLongitude(%v) = %v, want in [0, 360)", v, w)
		}
	}
}

func TestBlindRAWrapExample(t *testing.T) {
	// A mount sitting at RA 359 tracking a target at RA 1 should see a
	// -2 degree error, not the +358 a naive subtraction would give.
	mountRA, targetRA := 359.0, 1.0
	if got, want := WrapError(mountRA-targetRA), -2.0; got != want {
		t.Errorf("WrapError(mountRA-targetRA) = %v, want %v", got, want)
	}
}

func TestClampMagnitude(t *testing.T) {
	if got := ClampMagnitude(5, 1); got != 1 {
		t.Errorf("ClampMagnitude(5, 1) = %v, want 1", got)
	}
	if got := ClampMagnitude(-5, 1); got != -1 {
		t.Errorf("ClampMagnitude(-5, 1) = %v, want -1", got)
	}
	if got := ClampMagnitude(0.5, 1); got != 0.5 {
		t.Errorf("ClampMagnitude(0.5, 1) = %v, want 0.5", got)
	}
}
