package target

import (
	"context"
	"fmt"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/catalog"
	"github.com/darkdragonsastro/trackcore/internal/mountmodel"
)

// starByName is the subset of *catalog.HipparcosCatalog this package
// depends on, narrowed to allow test doubles.
type starByName interface {
	GetByName(ctx context.Context, name string) (*catalog.Star, error)
}

// NamedStarTarget resolves a catalog star name once and tracks its fixed
// (J2000, no proper motion) sky coordinate thereafter.
type NamedStarTarget struct {
	catalog starByName
	name    string

	resolved bool
	sky      mountmodel.SkyCoord
}

func NewNamedStarTarget(c starByName, name string) *NamedStarTarget {
	return &NamedStarTarget{catalog: c, name: name}
}

func (n *NamedStarTarget) GetPosition(ctx context.Context, t time.Time, model *mountmodel.Model, side mountmodel.MeridianSide) (Position, error) {
	if !n.resolved {
		star, err := n.catalog.GetByName(ctx, n.name)
		if err != nil {
			return Position{}, fmt.Errorf("target: resolve star %q: %w", n.name, err)
		}
		n.sky = mountmodel.SkyCoord{RADeg: star.RA, DecDeg: star.Dec}
		n.resolved = true
	}
	return positionFromSky(n.sky, t, model, side), nil
}

func (n *NamedStarTarget) ProcessSensorData(ctx context.Context) error { return nil }

// solarSystemEphemeris is the subset of *catalog.Ephemeris this package
// depends on, narrowed to allow test doubles.
type solarSystemEphemeris interface {
	GetSunPosition(t time.Time) catalog.SolarSystemPosition
	GetMoonPosition(t time.Time) catalog.SolarSystemPosition
	GetPlanetPosition(body catalog.SolarSystemBody, t time.Time) catalog.SolarSystemPosition
}

// SolarSystemTarget tracks a named solar-system body (Sun, Moon, or a
// planet) by re-evaluating the ephemeris on every call, since these
// targets move measurably within a single tracking session.
type SolarSystemTarget struct {
	ephemeris solarSystemEphemeris
	body      catalog.SolarSystemBody
}

func NewSolarSystemTarget(e *catalog.Ephemeris, body catalog.SolarSystemBody) *SolarSystemTarget {
	return &SolarSystemTarget{ephemeris: e, body: body}
}

func (s *SolarSystemTarget) GetPosition(ctx context.Context, t time.Time, model *mountmodel.Model, side mountmodel.MeridianSide) (Position, error) {
	var pos catalog.SolarSystemPosition
	switch s.body {
	case catalog.BodySun:
		pos = s.ephemeris.GetSunPosition(t)
	case catalog.BodyMoon:
		pos = s.ephemeris.GetMoonPosition(t)
	default:
		pos = s.ephemeris.GetPlanetPosition(s.body, t)
	}
	sky := mountmodel.SkyCoord{RADeg: pos.RA, DecDeg: pos.Dec}
	return positionFromSky(sky, t, model, side), nil
}

func (s *SolarSystemTarget) ProcessSensorData(ctx context.Context) error { return nil }
