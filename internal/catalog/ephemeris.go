package catalog

import (
	"math"
	"time"
)

// SolarSystemBody identifies a sun/moon/planet target.
type SolarSystemBody string

const (
	BodySun     SolarSystemBody = "sun"
	BodyMoon    SolarSystemBody = "moon"
	BodyMercury SolarSystemBody = "mercury"
	BodyVenus   SolarSystemBody = "venus"
	BodyMars    SolarSystemBody = "mars"
	BodyJupiter SolarSystemBody = "jupiter"
	BodySaturn  SolarSystemBody = "saturn"
	BodyUranus  SolarSystemBody = "uranus"
	BodyNeptune SolarSystemBody = "neptune"
)

// SolarSystemPosition is a solar-system body's geocentric position at a
// point in time, as consumed by SolarSystemTarget.
type SolarSystemPosition struct {
	Body SolarSystemBody `json:"body"`

	// Geocentric equatorial coordinates (J2000).
	RA  float64 `json:"ra"`
	Dec float64 `json:"dec"`

	// Distance from Earth: AU for planets, km for the Moon.
	Distance float64 `json:"distance"`

	// Phase information (computed for the Moon only; the Sun reports fixed
	// values and planets leave these zero).
	Phase        float64 `json:"phase"`
	Illumination float64 `json:"illumination"`

	// Angular diameter in arcseconds.
	AngularDiameter float64 `json:"angular_diameter"`

	// Magnitude is the visual magnitude.
	Magnitude float64 `json:"magnitude"`
}

// Ephemeris computes low-precision solar-system body positions, good
// enough for mount pointing, not for occultation timing.
type Ephemeris struct {
	observer *Observer
}

// NewEphemeris creates a new ephemeris calculator for the given observer location.
func NewEphemeris(observer *Observer) *Ephemeris {
	return &Ephemeris{observer: observer}
}

// GetSunPosition calculates the Sun's position at the given time.
func (e *Ephemeris) GetSunPosition(t time.Time) SolarSystemPosition {
	ra, dec := approximateSunPosition(t)

	return SolarSystemPosition{
		Body:            BodySun,
		RA:              ra,
		Dec:             dec,
		Distance:        1.0, // 1 AU by definition
		Phase:           0,   // the Sun has no phase
		Illumination:    100,
		AngularDiameter: 1920, // ~32 arcminutes
		Magnitude:       -26.74,
	}
}

// GetMoonPosition calculates the Moon's position at the given time using a
// low-precision lunar theory, sufficient for pointing and planning.
func (e *Ephemeris) GetMoonPosition(t time.Time) SolarSystemPosition {
	jd := JulianDate(t)
	d := jd - J2000

	L := math.Mod(218.316+13.176396*d, 360)
	if L < 0 {
		L += 360
	}

	M := math.Mod(134.963+13.064993*d, 360)
	if M < 0 {
		M += 360
	}
	MRad := M * deg2rad

	F := math.Mod(93.272+13.229350*d, 360)
	if F < 0 {
		F += 360
	}
	FRad := F * deg2rad

	lambda := L + 6.289*math.Sin(MRad)
	lambdaRad := lambda * deg2rad

	beta := 5.128 * math.Sin(FRad)
	betaRad := beta * deg2rad

	dist := 385001 - 20905*math.Cos(MRad) // km

	epsRad := obliquity * deg2rad

	ra := math.Atan2(
		math.Sin(lambdaRad)*math.Cos(epsRad)-math.Tan(betaRad)*math.Sin(epsRad),
		math.Cos(lambdaRad),
	) * rad2deg
	if ra < 0 {
		ra += 360
	}

	dec := math.Asin(
		math.Sin(betaRad)*math.Cos(epsRad)+
			math.Cos(betaRad)*math.Sin(epsRad)*math.Sin(lambdaRad),
	) * rad2deg

	phase := MoonPhase(t)
	illumination := MoonIllumination(phase)

	angularDiam := 1873200 / dist // arcseconds, approx

	// Full moon: -12.7, dimmer toward new; approximated from illumination.
	magnitude := -12.7 + 2.5*math.Log10(1.0/(illumination/100.0+0.01))

	return SolarSystemPosition{
		Body:            BodyMoon,
		RA:              ra,
		Dec:             dec,
		Distance:        dist,
		Phase:           phase,
		Illumination:    illumination,
		AngularDiameter: angularDiam,
		Magnitude:       magnitude,
	}
}

// GetPlanetPosition calculates a planet's approximate position using
// simplified orbital elements - suitable for pointing, not precision
// ephemerides.
func (e *Ephemeris) GetPlanetPosition(body SolarSystemBody, t time.Time) SolarSystemPosition {
	jd := JulianDate(t)
	d := jd - J2000

	var L, a, ec, inc, omega, perihelion float64

	switch body {
	case BodyMercury:
		L = math.Mod(252.251+149474.0722*d/36525, 360)
		a = 0.38710
		ec = 0.20563
		inc = 7.005
		omega = 48.331
		perihelion = 77.456
	case BodyVenus:
		L = math.Mod(181.980+58519.2130*d/36525, 360)
		a = 0.72333
		ec = 0.00677
		inc = 3.395
		omega = 76.680
		perihelion = 131.533
	case BodyMars:
		L = math.Mod(355.433+19141.6964*d/36525, 360)
		a = 1.52368
		ec = 0.09340
		inc = 1.850
		omega = 49.558
		perihelion = 336.060
	case BodyJupiter:
		L = math.Mod(34.351+3036.3027*d/36525, 360)
		a = 5.20260
		ec = 0.04849
		inc = 1.303
		omega = 100.464
		perihelion = 14.331
	case BodySaturn:
		L = math.Mod(50.077+1223.5110*d/36525, 360)
		a = 9.55491
		ec = 0.05551
		inc = 2.489
		omega = 113.665
		perihelion = 93.057
	case BodyUranus:
		L = math.Mod(314.055+429.8640*d/36525, 360)
		a = 19.21845
		ec = 0.04630
		inc = 0.773
		omega = 74.006
		perihelion = 173.005
	case BodyNeptune:
		L = math.Mod(304.349+219.8833*d/36525, 360)
		a = 30.11039
		ec = 0.00899
		inc = 1.770
		omega = 131.784
		perihelion = 48.124
	default:
		return SolarSystemPosition{Body: body}
	}

	M := L - perihelion
	if M < 0 {
		M += 360
	}
	MRad := M * deg2rad

	E := M + ec*rad2deg*math.Sin(MRad)*(1+ec*math.Cos(MRad))
	ERad := E * deg2rad

	xv := a * (math.Cos(ERad) - ec)
	yv := a * math.Sqrt(1-ec*ec) * math.Sin(ERad)
	v := math.Atan2(yv, xv) * rad2deg
	r := math.Sqrt(xv*xv + yv*yv)

	lHelio := v + perihelion

	// Approximate geocentric conversion, assuming a circular Earth orbit.
	sunPos := e.GetSunPosition(t)
	sunLong := sunPos.RA

	xg := r*math.Cos(lHelio*deg2rad) + math.Cos(sunLong*deg2rad)
	yg := r*math.Sin(lHelio*deg2rad) + math.Sin(sunLong*deg2rad)
	zg := r * math.Sin(inc*deg2rad) * math.Sin((lHelio-omega)*deg2rad)

	epsRad := obliquity * deg2rad
	xe := xg
	ye := yg*math.Cos(epsRad) - zg*math.Sin(epsRad)
	ze := yg*math.Sin(epsRad) + zg*math.Cos(epsRad)

	ra := math.Atan2(ye, xe) * rad2deg
	if ra < 0 {
		ra += 360
	}
	dec := math.Atan2(ze, math.Sqrt(xe*xe+ye*ye)) * rad2deg

	dist := math.Sqrt(xg*xg + yg*yg + zg*zg)

	var mag float64
	switch body {
	case BodyMercury:
		mag = -0.4 + 5*math.Log10(dist*a)
	case BodyVenus:
		mag = -4.4 + 5*math.Log10(dist*a)
	case BodyMars:
		mag = -1.5 + 5*math.Log10(dist*a)
	case BodyJupiter:
		mag = -2.9 + 5*math.Log10(dist*a)
	case BodySaturn:
		mag = -0.5 + 5*math.Log10(dist*a)
	case BodyUranus:
		mag = 5.5 + 5*math.Log10(dist*a)
	case BodyNeptune:
		mag = 7.8 + 5*math.Log10(dist*a)
	}

	var baseSize float64 // arcseconds at 1 AU
	switch body {
	case BodyMercury:
		baseSize = 6.7
	case BodyVenus:
		baseSize = 16.7
	case BodyMars:
		baseSize = 9.4
	case BodyJupiter:
		baseSize = 46.9
	case BodySaturn:
		baseSize = 19.4 // disk only
	case BodyUranus:
		baseSize = 3.9
	case BodyNeptune:
		baseSize = 2.3
	}
	angularDiam := baseSize / dist

	return SolarSystemPosition{
		Body:            body,
		RA:              ra,
		Dec:             dec,
		Distance:        dist,
		AngularDiameter: angularDiam,
		Magnitude:       mag,
	}
}
