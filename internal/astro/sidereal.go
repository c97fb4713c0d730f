// Package astro wraps the Julian-date and sidereal-time calculations the
// mount model needs, deferring to the soniakeys/meeus ecosystem library
// (already part of this pack via sixy6e-go-gsf's use of meeus/v3/julian)
// instead of re-deriving the GMST polynomial by hand.
package astro

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
)

// JulianDate returns the Julian day number for t (converted to UTC first).
func JulianDate(t time.Time) float64 {
	u := t.UTC()
	y, m, d := u.Date()
	dayFrac := float64(d) + (float64(u.Hour())+float64(u.Minute())/60+float64(u.Second())/3600)/24
	return julian.CalendarGregorianToJD(y, int(m), dayFrac)
}

// GreenwichMeanSiderealTime returns GMST in degrees [0, 360) for t.
func GreenwichMeanSiderealTime(t time.Time) float64 {
	jd := JulianDate(t)
	gmst := sidereal.Mean(jd) // unit.Time: Greenwich mean sidereal time
	return gmst.Angle().Deg()
}

// LocalSiderealTime returns LST in degrees [0, 360) at the given east
// longitude (degrees, positive east) and time.
func LocalSiderealTime(lonDeg float64, t time.Time) float64 {
	lst := GreenwichMeanSiderealTime(t) + lonDeg
	lst = mod360(lst)
	return lst
}

func mod360(deg float64) float64 {
	deg = mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func mod(a, b float64) float64 {
	m := a - b*float64(int(a/b))
	return m
}
