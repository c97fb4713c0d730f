package filter

import "time"

import "testing"

func TestEmptyMeanIsZero(t *testing.T) {
	m := New(time.Second)
	if got := m.Mean(); got != 0 {
		t.Errorf("Mean() on empty filter = %v, want 0", got)
	}
}

func TestResetThenSingleAdvanceEqualsValue(t *testing.T) {
	m := New(time.Second)
	m.Advance(5, 2*time.Second)
	m.Reset()
	got := m.Advance(3, 100*time.Millisecond)
	if got != 3 {
		t.Errorf("Advance after reset = %v, want 3", got)
	}
}

func TestRetainedPeriodInvariant(t *testing.T) {
	m := New(500 * time.Millisecond)
	period := 100 * time.Millisecond
	for i := 0; i < 20; i++ {
		m.Advance(float64(i), period)
	}
	if m.total > m.maxDepth+period {
		t.Errorf("retained total %v exceeds maxDepth+newest %v", m.total, m.maxDepth+period)
	}
}

func TestMeanOfRetainedWindow(t *testing.T) {
	m := New(250 * time.Millisecond)
	period := 100 * time.Millisecond
	m.Advance(1, period) // total 100ms
	m.Advance(2, period) // total 200ms
	m.Advance(3, period) // total 300ms > 250ms, evict oldest -> retains {3,2}
	if got, want := m.Mean(), 2.5; got != want {
		t.Errorf("Mean() = %v, want %v", got, want)
	}
	if got := m.Len(); got != 2 {
		t.Errorf("Len() = %v, want 2", got)
	}
}

func TestNeverEvictsSoleNewestSample(t *testing.T) {
	m := New(10 * time.Millisecond)
	got := m.Advance(7, time.Second) // a single huge-period sample must survive
	if got != 7 {
		t.Errorf("Advance() = %v, want 7 (lone sample must be retained)", got)
	}
}
