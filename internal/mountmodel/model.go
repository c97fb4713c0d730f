// Package mountmodel implements the encoder-to-celestial coordinate
// transform: the piecewise mapping from a mount's two raw encoder readings
// to right ascension/declination, its inverse, and a bounded least-squares
// fit of the four model parameters from observed (encoder, sky) pairs.
//
// The polar-rotation geometry is axis-generic rather than tied to a
// particular RA/Dec convention; sidereal time comes from internal/astro
// rather than a hand-rolled GMST polynomial.
package mountmodel

import (
	"math"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/angle"
	"github.com/darkdragonsastro/trackcore/internal/astro"
	"github.com/darkdragonsastro/trackcore/internal/mount"
)

// MeridianSide names which of the two encoder configurations pointing at
// a given sky coordinate is preferred, significant only for equatorial
// mounts.
type MeridianSide int

const (
	East MeridianSide = iota
	West
)

// Location is an observer's position on Earth.
type Location struct {
	LatitudeDeg  float64
	LongitudeDeg float64 // positive east
	ElevationM   float64
}

// Parameters are the four angles defining the mount-to-sky transform.
// All four must lie in (-180, 180].
type Parameters struct {
	Axis0Offset    float64 // degrees
	Axis1Offset    float64 // degrees
	PoleRotAxisLon float64 // degrees
	PoleRotAngle   float64 // degrees
}

// ParamSet pairs Parameters with the observing Location and a generation
// timestamp, for persistence.
type ParamSet struct {
	Params      Parameters
	Location    Location
	GeneratedAt time.Time
}

// Validate checks the (-180, 180] invariant on all four parameters.
func (p Parameters) Validate() error {
	for _, v := range []float64{p.Axis0Offset, p.Axis1Offset, p.PoleRotAxisLon, p.PoleRotAngle} {
		if v <= -180 || v > 180 {
			return errInvalidParameter
		}
	}
	return nil
}

// SkyCoord is an equatorial coordinate (J2000-ish; this core does not
// model precession or refraction).
type SkyCoord struct {
	RADeg  float64
	DecDeg float64
}

// Model wraps a ParamSet with the mount-to-world / world-to-mount
// transforms.
type Model struct {
	Params   Parameters
	Location Location
}

// New constructs a Model from a parameter set and observing location.
func New(params Parameters, loc Location) *Model {
	return &Model{Params: params, Location: loc}
}

// MountToWorld maps encoder positions to a sky coordinate at the given
// time.
func (m *Model) MountToWorld(enc mount.EncoderPositions, t time.Time) SkyCoord {
	e0 := angle.WrapLongitude(enc.Get(mount.Axis0) - m.Params.Axis0Offset)
	e1 := angle.WrapLongitude(enc.Get(mount.Axis1) - m.Params.Axis1Offset)

	var lon, lat float64
	if e1 < 180 {
		lon = 90 - e0
		lat = e1 - 90
	} else {
		lon = 270 - e0
		lat = 270 - e1
	}

	ha, dec := rotateToEquatorial(lon, lat, m.Params.PoleRotAxisLon, m.Params.PoleRotAngle)

	lst := astro.LocalSiderealTime(m.Location.LongitudeDeg, t)
	ra := angle.WrapLongitude(lst - ha)

	return SkyCoord{RADeg: ra, DecDeg: dec}
}

// WorldToMount is the inverse of MountToWorld, branching on the desired
// meridian side.
func (m *Model) WorldToMount(sky SkyCoord, side MeridianSide, t time.Time) mount.EncoderPositions {
	lst := astro.LocalSiderealTime(m.Location.LongitudeDeg, t)
	ha := angle.WrapError(lst - sky.RADeg)

	lon, lat := rotateFromEquatorial(ha, sky.DecDeg, m.Params.PoleRotAxisLon, m.Params.PoleRotAngle)

	var e0, e1 float64
	if side == East {
		e0 = 90 - lon
		e1 = lat + 90
	} else {
		e0 = 270 - lon
		e1 = 270 - lat
	}

	var out mount.EncoderPositions
	out.Set(mount.Axis0, angle.WrapLongitude(e0+m.Params.Axis0Offset))
	out.Set(mount.Axis1, angle.WrapLongitude(e1+m.Params.Axis1Offset))
	return out
}

// rotateToEquatorial rotates the instrument-pole spherical coordinate
// (lon, lat), both degrees, into hour-angle/declination by a single
// rotation about an axis in the equatorial plane at poleRotAxisLon,
// through poleRotAngle.
func rotateToEquatorial(lonDeg, latDeg, poleRotAxisLonDeg, poleRotAngleDeg float64) (haDeg, decDeg float64) {
	lon := lonDeg * math.Pi / 180
	lat := latDeg * math.Pi / 180
	axisLon := poleRotAxisLonDeg * math.Pi / 180
	rot := poleRotAngleDeg * math.Pi / 180

	// Cartesian on the instrument-pole sphere.
	x := math.Cos(lat) * math.Cos(lon)
	y := math.Cos(lat) * math.Sin(lon)
	z := math.Sin(lat)

	xr, yr, zr := rotateAboutEquatorialAxis(x, y, z, axisLon, rot)

	decDeg = math.Asin(clampUnit(zr)) * 180 / math.Pi
	haDeg = math.Atan2(yr, xr) * 180 / math.Pi
	return
}

// rotateFromEquatorial is rotateToEquatorial's inverse (rotate by -rot).
func rotateFromEquatorial(haDeg, decDeg, poleRotAxisLonDeg, poleRotAngleDeg float64) (lonDeg, latDeg float64) {
	ha := haDeg * math.Pi / 180
	dec := decDeg * math.Pi / 180
	axisLon := poleRotAxisLonDeg * math.Pi / 180
	rot := -poleRotAngleDeg * math.Pi / 180

	x := math.Cos(dec) * math.Cos(ha)
	y := math.Cos(dec) * math.Sin(ha)
	z := math.Sin(dec)

	xr, yr, zr := rotateAboutEquatorialAxis(x, y, z, axisLon, rot)

	latDeg = math.Asin(clampUnit(zr)) * 180 / math.Pi
	lonDeg = math.Atan2(yr, xr) * 180 / math.Pi
	return
}

// rotateAboutEquatorialAxis rotates the point (x,y,z) by angle rot about
// the axis lying in the x-y plane at longitude axisLon.
func rotateAboutEquatorialAxis(x, y, z, axisLon, rot float64) (xr, yr, zr float64) {
	// Rotate the frame so the rotation axis aligns with x, apply the
	// rotation in the y-z plane, then rotate back.
	ca, sa := math.Cos(axisLon), math.Sin(axisLon)
	x1 := ca*x + sa*y
	y1 := -sa*x + ca*y
	z1 := z

	cr, sr := math.Cos(rot), math.Sin(rot)
	y2 := cr*y1 - sr*z1
	z2 := sr*y1 + cr*z1

	xr = ca*x1 - sa*y2
	yr = sa*x1 + ca*y2
	zr = z2
	return
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// AngularSeparation returns the great-circle angle in degrees between two
// sky coordinates.
func AngularSeparation(a, b SkyCoord) float64 {
	ra1, dec1 := a.RADeg*math.Pi/180, a.DecDeg*math.Pi/180
	ra2, dec2 := b.RADeg*math.Pi/180, b.DecDeg*math.Pi/180
	dra := ra2 - ra1
	ddec := dec2 - dec1
	h := math.Sin(ddec/2)*math.Sin(ddec/2) + math.Cos(dec1)*math.Cos(dec2)*math.Sin(dra/2)*math.Sin(dra/2)
	return 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h)) * 180 / math.Pi
}

var errInvalidParameter = modelError("mountmodel: parameter out of (-180, 180] range")

type modelError string

func (e modelError) Error() string { return string(e) }
