package target

import (
	"context"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/mountmodel"
)

// FixedTarget always reports the same sky coordinate, for static alignment
// tests and calibration sweeps.
type FixedTarget struct {
	Sky mountmodel.SkyCoord
}

func NewFixedTarget(sky mountmodel.SkyCoord) *FixedTarget {
	return &FixedTarget{Sky: sky}
}

func (f *FixedTarget) GetPosition(ctx context.Context, t time.Time, model *mountmodel.Model, side mountmodel.MeridianSide) (Position, error) {
	return positionFromSky(f.Sky, t, model, side), nil
}

func (f *FixedTarget) ProcessSensorData(ctx context.Context) error { return nil }
