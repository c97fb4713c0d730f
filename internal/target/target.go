// Package target implements the polymorphic target-position providers: a
// run's target can be specified as a TLE file, fixed RA/Dec, named star,
// named solar-system body, or a synthetic overhead pass.
package target

import (
	"context"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/mount"
	"github.com/darkdragonsastro/trackcore/internal/mountmodel"
)

// Position is a target's location at a point in time: the sky coordinate
// (RA/Dec) the provider reports, with no parallax correction applied (so
// SolarSystemTarget positions are geocentric), and the encoder positions the mount model derives from it — always
// consistent with each other via the same mount model at Time.
type Position struct {
	Time     time.Time
	Sky      mountmodel.SkyCoord
	Encoders mount.EncoderPositions
}

// ErrIndeterminate is returned when a target cannot currently produce a
// position (e.g. a camera target with no detection yet). It is a
// recognizable failure, not a panic/exception.
var ErrIndeterminate = indeterminateError("target: position indeterminate")

type indeterminateError string

func (e indeterminateError) Error() string { return string(e) }

// Target is the abstract target-position provider the Tracker's error
// sources consume.
type Target interface {
	// GetPosition returns the target's position at t.
	GetPosition(ctx context.Context, t time.Time, model *mountmodel.Model, side mountmodel.MeridianSide) (Position, error)
	// ProcessSensorData refreshes any cached sensor-derived state (a no-op
	// for ephemeris targets; re-reads the latest camera detection for
	// camera-fed targets).
	ProcessSensorData(ctx context.Context) error
}

func positionFromSky(sky mountmodel.SkyCoord, t time.Time, model *mountmodel.Model, side mountmodel.MeridianSide) Position {
	return Position{
		Time:     t,
		Sky:      sky,
		Encoders: model.WorldToMount(sky, side, t),
	}
}
