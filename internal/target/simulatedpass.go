package target

import (
	"context"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/mountmodel"
)

// SimulatedPassTarget synthesizes a satellite-like overhead pass: linear
// interpolation in RA/Dec from Start to End over [StartTime, EndTime].
type SimulatedPassTarget struct {
	Start, End         mountmodel.SkyCoord
	StartTime, EndTime time.Time
}

func NewSimulatedPassTarget(start, end mountmodel.SkyCoord, startTime, endTime time.Time) *SimulatedPassTarget {
	return &SimulatedPassTarget{Start: start, End: end, StartTime: startTime, EndTime: endTime}
}

func (p *SimulatedPassTarget) GetPosition(ctx context.Context, t time.Time, model *mountmodel.Model, side mountmodel.MeridianSide) (Position, error) {
	frac := 0.0
	span := p.EndTime.Sub(p.StartTime).Seconds()
	if span > 0 {
		frac = t.Sub(p.StartTime).Seconds() / span
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	sky := mountmodel.SkyCoord{
		RADeg:  lerpLongitude(p.Start.RADeg, p.End.RADeg, frac),
		DecDeg: p.Start.DecDeg + (p.End.DecDeg-p.Start.DecDeg)*frac,
	}
	return positionFromSky(sky, t, model, side), nil
}

func (p *SimulatedPassTarget) ProcessSensorData(ctx context.Context) error { return nil }

// lerpLongitude interpolates an angle in [0, 360), taking the shorter way
// around the wraparound point.
func lerpLongitude(a, b, t float64) float64 {
	diff := b - a
	for diff > 180 {
		diff -= 360
	}
	for diff < -180 {
		diff += 360
	}
	v := a + diff*t
	for v < 0 {
		v += 360
	}
	for v >= 360 {
		v -= 360
	}
	return v
}
