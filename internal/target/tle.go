package target

import (
	"context"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/mountmodel"
)

// Propagator is the external collaborator that turns a TLE's orbital
// elements into a topocentric sky coordinate at a given time. Orbit
// propagation (SGP4 or otherwise) is explicitly out of scope for this
// module; callers supply their own implementation.
type Propagator interface {
	Propagate(ctx context.Context, t time.Time) (mountmodel.SkyCoord, error)
}

// TLETarget tracks a satellite via an externally supplied Propagator.
type TLETarget struct {
	prop Propagator
}

func NewTLETarget(prop Propagator) *TLETarget {
	return &TLETarget{prop: prop}
}

func (s *TLETarget) GetPosition(ctx context.Context, t time.Time, model *mountmodel.Model, side mountmodel.MeridianSide) (Position, error) {
	sky, err := s.prop.Propagate(ctx, t)
	if err != nil {
		return Position{}, err
	}
	return positionFromSky(sky, t, model, side), nil
}

func (s *TLETarget) ProcessSensorData(ctx context.Context) error { return nil }
