package errorsource

import (
	"context"
	"errors"

	"github.com/darkdragonsastro/trackcore/internal/angle"
	"github.com/darkdragonsastro/trackcore/internal/mount"
	"github.com/darkdragonsastro/trackcore/internal/mountmodel"
)

// HybridErrorSource is a two-state machine (BLIND, OPTICAL) that prefers
// the optical error source once its divergence from the blind prediction
// is small, and falls back to blind once optical signal is lost for long
// enough.
type HybridErrorSource struct {
	Blind   *BlindErrorSource
	Optical *OpticalErrorSource

	// MaxDivergence bounds how far the optical-derived target position may
	// disagree with the blind-predicted one (degrees) before the machine
	// trusts optical.
	MaxDivergence float64
	// MaxOpticalNoSignalFrames is how many consecutive optical no-detect
	// frames are tolerated in OPTICAL before falling back to BLIND.
	MaxOpticalNoSignalFrames int

	state State
}

// NewHybridErrorSource builds a HybridErrorSource starting in StateBlind.
func NewHybridErrorSource(blind *BlindErrorSource, optical *OpticalErrorSource, maxDivergence float64, maxOpticalNoSignalFrames int) *HybridErrorSource {
	return &HybridErrorSource{
		Blind:                    blind,
		Optical:                  optical,
		MaxDivergence:            maxDivergence,
		MaxOpticalNoSignalFrames: maxOpticalNoSignalFrames,
		state:                    StateBlind,
	}
}

func (h *HybridErrorSource) AxisNames() (mount.AxisName, mount.AxisName) {
	return h.Blind.AxisNames()
}

// State reports which source the last ComputeError call resolved to.
func (h *HybridErrorSource) State() State { return h.state }

// ComputeError runs the BLIND/OPTICAL state machine for one cycle.
func (h *HybridErrorSource) ComputeError(ctx context.Context, retries int) (PointingError, error) {
	blindErr, err := h.Blind.ComputeError(ctx, retries)
	if err != nil {
		return PointingError{}, err
	}

	opticalErr, optErr := h.Optical.ComputeError(ctx, retries)
	if optErr != nil {
		if !errors.Is(optErr, ErrNoSignal) {
			return PointingError{}, optErr
		}
		switch h.state {
		case StateBlind:
			return blindErr, nil
		default: // StateOptical
			if h.Optical.ConsecutiveNoDetectFrames() >= h.MaxOpticalNoSignalFrames {
				h.state = StateBlind
				return blindErr, nil
			}
			return PointingError{}, ErrNoSignal
		}
	}

	diverged, err := h.divergence(ctx, opticalErr)
	if err != nil {
		return PointingError{}, err
	}

	switch h.state {
	case StateBlind:
		if diverged < h.MaxDivergence {
			h.state = StateOptical
		}
	case StateOptical:
		if diverged > h.MaxDivergence {
			h.state = StateBlind
		}
	}

	if h.state == StateOptical {
		return opticalErr, nil
	}
	return blindErr, nil
}

// divergence computes the great-circle angle between the optical-derived
// target position (current mount encoders shifted back by the optical
// error vector) and the blind-predicted target position, both mapped
// through the shared mount model.
func (h *HybridErrorSource) divergence(ctx context.Context, opticalErr PointingError) (float64, error) {
	now := h.Blind.clock()

	mountPos, err := h.Blind.Mount.GetPosition(ctx, h.Blind.MaxCacheAge)
	if err != nil {
		return 0, err
	}

	var opticalTargetEnc mount.EncoderPositions
	opticalTargetEnc.Set(mount.Axis0, angle.WrapLongitude(mountPos.Get(mount.Axis0)-opticalErr.Axis0))
	opticalTargetEnc.Set(mount.Axis1, angle.WrapLongitude(mountPos.Get(mount.Axis1)-opticalErr.Axis1))
	opticalSky := h.Blind.Model.MountToWorld(opticalTargetEnc, now)

	blindSky, _, _, err := h.Blind.targetSky(ctx, now)
	if err != nil {
		return 0, err
	}

	return mountmodel.AngularSeparation(opticalSky, blindSky), nil
}
