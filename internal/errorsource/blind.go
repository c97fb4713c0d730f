package errorsource

import (
	"context"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/angle"
	"github.com/darkdragonsastro/trackcore/internal/mount"
	"github.com/darkdragonsastro/trackcore/internal/mountmodel"
	"github.com/darkdragonsastro/trackcore/internal/target"
)

// motionSampleInterval is how far in the past the second target sample is
// taken to derive a motion-direction vector.
const motionSampleInterval = 10 * time.Second

// OffsetFunc perturbs the current target coordinate by a small correction.
// It receives the target's per-axis motion components and returns two
// offsets in degrees; targetSky adds the first (along) to RA and the second
// (cross) to Dec directly. The offsets are not rotated into the motion
// direction.
type OffsetFunc func(motionAxis0, motionAxis1 float64) (along, cross float64)

// BacklashCompensator is the optional Mount extension for removing
// backlash: given raw encoder positions and the axes whose
// motion-direction sign disagrees with the mount's last commanded
// direction, it returns backlash-corrected readings for those axes.
type BacklashCompensator interface {
	RemoveBacklash(ctx context.Context, pos mount.EncoderPositions, axes []mount.AxisName) (mount.EncoderPositions, error)
}

// RateReporter is the optional Mount extension exposing each axis's last
// commanded (aligned-slew) direction, used to detect a motion reversal that
// requires backlash correction.
type RateReporter interface {
	LastCommandedRates() mount.Axes[float64]
}

// BlindErrorSource predicts the pointing error from the target's ephemeris
// alone, with no camera feedback.
type BlindErrorSource struct {
	Mount  mount.Mount
	Model  *mountmodel.Model
	Target target.Target
	Side   mountmodel.MeridianSide

	// Offset, if non-nil, perturbs the target coordinate per step 3.
	Offset OffsetFunc

	// MaxCacheAge bounds how stale a cached mount encoder reading may be.
	MaxCacheAge float64

	now func() time.Time
}

// NewBlindErrorSource builds a BlindErrorSource. now defaults to time.Now.
func NewBlindErrorSource(mnt mount.Mount, model *mountmodel.Model, tgt target.Target, side mountmodel.MeridianSide) *BlindErrorSource {
	return &BlindErrorSource{Mount: mnt, Model: model, Target: tgt, Side: side, now: time.Now}
}

func (b *BlindErrorSource) clock() time.Time {
	if b.now != nil {
		return b.now()
	}
	return time.Now()
}

func (b *BlindErrorSource) AxisNames() (mount.AxisName, mount.AxisName) {
	return b.Mount.AxisNames()
}

// ComputeError predicts the pointing error from the target's sky position
// and the mount's encoders. retries is accepted for interface symmetry
// with OpticalErrorSource; BlindErrorSource has no transient failure mode
// to retry against.
func (b *BlindErrorSource) ComputeError(ctx context.Context, retries int) (PointingError, error) {
	now := b.clock()

	targetSky, motionAxis0, motionAxis1, err := b.targetSky(ctx, now)
	if err != nil {
		return PointingError{}, err
	}

	targetEncoders := b.Model.WorldToMount(targetSky, b.Side, now)

	mountPos, err := b.Mount.GetPosition(ctx, b.MaxCacheAge)
	if err != nil {
		return PointingError{}, err
	}

	if comp, ok := b.Mount.(BacklashCompensator); ok {
		axes := b.reversedAxes(motionAxis0, motionAxis1)
		if len(axes) > 0 {
			corrected, err := comp.RemoveBacklash(ctx, mountPos, axes)
			if err != nil {
				return PointingError{}, err
			}
			mountPos = corrected
		}
	}

	errAxis0 := angle.WrapError(mountPos.Get(mount.Axis0) - targetEncoders.Get(mount.Axis0))
	errAxis1 := angle.WrapError(mountPos.Get(mount.Axis1) - targetEncoders.Get(mount.Axis1))

	return NewPointingError(errAxis0, errAxis1), nil
}

// targetSky returns the (possibly offset-perturbed) target sky coordinate
// at now, along with the target's per-axis motion direction derived from
// a sample 10 seconds earlier. HybridErrorSource reuses this to compute
// the blind-predicted target position without duplicating the offset
// logic.
func (b *BlindErrorSource) targetSky(ctx context.Context, now time.Time) (sky mountmodel.SkyCoord, motionAxis0, motionAxis1 float64, err error) {
	posPast, err := b.Target.GetPosition(ctx, now.Add(-motionSampleInterval), b.Model, b.Side)
	if err != nil {
		return mountmodel.SkyCoord{}, 0, 0, err
	}
	posNow, err := b.Target.GetPosition(ctx, now, b.Model, b.Side)
	if err != nil {
		return mountmodel.SkyCoord{}, 0, 0, err
	}

	sky = posNow.Sky
	motionAxis0 = angle.WrapError(posNow.Encoders.Get(mount.Axis0) - posPast.Encoders.Get(mount.Axis0))
	motionAxis1 = angle.WrapError(posNow.Encoders.Get(mount.Axis1) - posPast.Encoders.Get(mount.Axis1))

	if b.Offset != nil {
		along, cross := b.Offset(motionAxis0, motionAxis1)
		sky.RADeg = angle.WrapLongitude(sky.RADeg + along)
		sky.DecDeg += cross
	}
	return sky, motionAxis0, motionAxis1, nil
}

// reversedAxes returns the axes where the target's motion direction
// disagrees in sign with the mount's last commanded rate. It returns nil
// if the mount does not report rates.
func (b *BlindErrorSource) reversedAxes(motionAxis0, motionAxis1 float64) []mount.AxisName {
	reporter, ok := b.Mount.(RateReporter)
	if !ok {
		return nil
	}
	last := reporter.LastCommandedRates()
	var axes []mount.AxisName
	if signDisagrees(motionAxis0, last.Get(mount.Axis0)) {
		axes = append(axes, mount.Axis0)
	}
	if signDisagrees(motionAxis1, last.Get(mount.Axis1)) {
		axes = append(axes, mount.Axis1)
	}
	return axes
}

func signDisagrees(a, b float64) bool {
	if a == 0 || b == 0 {
		return false
	}
	return (a > 0) != (b > 0)
}
