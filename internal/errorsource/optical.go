package errorsource

import (
	"context"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/mount"
)

// Frame is one camera exposure, timestamped so a consumer can tell fresh
// frames from stale ones.
type Frame struct {
	Data      []byte
	Width     int
	Height    int
	Timestamp time.Time
}

// Camera is the external collaborator supplying frames. Acquisition
// hardware and its wire protocol are out of scope for this module;
// implementations decide how to buffer/drop stale frames internally.
type Camera interface {
	// GetFrame returns the newest available frame, waiting up to timeout
	// for one if none is immediately available.
	GetFrame(ctx context.Context, timeout time.Duration) (Frame, error)
}

// Keypoint is a detected blob centroid in raw pixel coordinates, origin at
// the frame's top-left corner, +X right, +Y down (the conventional image
// coordinate frame a detector works in).
type Keypoint struct {
	X, Y float64
	Area float64
}

// DetectParams configures a BlobDetector pass.
type DetectParams struct {
	MinArea         float64
	MaxArea         float64
	MinBlobDistance float64
}

// BlobDetector is the external collaborator performing blob detection on a
// frame.
type BlobDetector interface {
	Detect(ctx context.Context, frame Frame, params DetectParams) ([]Keypoint, error)
}

// AxisMapping assigns the camera's pixel X/Y directions to the mount's two
// axes, each with a sign, since the mapping depends on camera orientation
// relative to the mount.
type AxisMapping struct {
	XAxis mount.AxisName
	YAxis mount.AxisName
	XSign float64
	YSign float64
}

// DefaultAxisMapping maps pixel X to Axis0 and pixel Y to Axis1 with no
// sign flip.
func DefaultAxisMapping() AxisMapping {
	return AxisMapping{XAxis: mount.Axis0, YAxis: mount.Axis1, XSign: 1, YSign: 1}
}

// OpticalErrorSource derives the pointing error from blob detection on
// camera frames.
type OpticalErrorSource struct {
	Camera   Camera
	Detector BlobDetector

	PixelScaleArcsecPerPixel float64
	Binning                  int
	FrameTimeout             time.Duration
	DetectParams             DetectParams
	AxisMapping              AxisMapping
	Retries                  int

	axisNames [2]mount.AxisName

	consecutiveDetect   int
	consecutiveNoDetect int
}

// NewOpticalErrorSource builds an OpticalErrorSource that reports Axis0 and
// Axis1 from AxisNames() and uses DefaultAxisMapping().
func NewOpticalErrorSource(cam Camera, det BlobDetector, pixelScale float64, binning int) *OpticalErrorSource {
	return &OpticalErrorSource{
		Camera:                   cam,
		Detector:                 det,
		PixelScaleArcsecPerPixel: pixelScale,
		Binning:                  binning,
		AxisMapping:              DefaultAxisMapping(),
		axisNames:                [2]mount.AxisName{mount.Axis0, mount.Axis1},
	}
}

func (o *OpticalErrorSource) AxisNames() (mount.AxisName, mount.AxisName) {
	return o.axisNames[0], o.axisNames[1]
}

// ConsecutiveDetectFrames returns the current run length of successful
// detections.
func (o *OpticalErrorSource) ConsecutiveDetectFrames() int { return o.consecutiveDetect }

// ConsecutiveNoDetectFrames returns the current run length of failed
// detections.
func (o *OpticalErrorSource) ConsecutiveNoDetectFrames() int { return o.consecutiveNoDetect }

// ComputeError acquires a frame, runs blob detection, and converts the
// nearest-to-center keypoint into a two-axis pointing error.
func (o *OpticalErrorSource) ComputeError(ctx context.Context, retries int) (PointingError, error) {
	frame, err := o.Camera.GetFrame(ctx, o.FrameTimeout)
	if err != nil {
		return PointingError{}, ErrNoSignal
	}

	attempts := retries + 1
	var keypoints []Keypoint
	for i := 0; i < attempts; i++ {
		keypoints, err = o.Detector.Detect(ctx, frame, o.DetectParams)
		if err == nil && len(keypoints) > 0 {
			break
		}
	}
	if len(keypoints) == 0 {
		o.consecutiveNoDetect++
		o.consecutiveDetect = 0
		return PointingError{}, ErrNoSignal
	}

	best := nearestToCenter(keypoints, frame.Width, frame.Height)

	cx := float64(frame.Width) / 2
	cy := float64(frame.Height) / 2
	xDeg := (best.X - cx) * o.PixelScaleArcsecPerPixel * float64(o.Binning) / 3600
	yDeg := (cy - best.Y) * o.PixelScaleArcsecPerPixel * float64(o.Binning) / 3600

	var axis0Err, axis1Err float64
	if o.AxisMapping.XAxis == mount.Axis0 {
		axis0Err = xDeg * o.AxisMapping.XSign
		axis1Err = yDeg * o.AxisMapping.YSign
	} else {
		axis1Err = xDeg * o.AxisMapping.XSign
		axis0Err = yDeg * o.AxisMapping.YSign
	}

	o.consecutiveDetect++
	o.consecutiveNoDetect = 0

	return NewPointingError(axis0Err, axis1Err), nil
}

func nearestToCenter(keypoints []Keypoint, width, height int) Keypoint {
	cx := float64(width) / 2
	cy := float64(height) / 2
	best := keypoints[0]
	bestDist := dist2(best, cx, cy)
	for _, k := range keypoints[1:] {
		if d := dist2(k, cx, cy); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

func dist2(k Keypoint, cx, cy float64) float64 {
	dx := k.X - cx
	dy := k.Y - cy
	return dx*dx + dy*dy
}
