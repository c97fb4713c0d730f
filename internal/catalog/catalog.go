// Package catalog resolves named targets and solar-system bodies to sky
// coordinates for the pointing-control core: a Hipparcos star lookup by
// name (internal/target's NamedStarTarget) and a low-precision sun/moon/
// planet ephemeris (internal/target's SolarSystemTarget). It intentionally
// does not carry a deep-sky-object catalog, cone search, or a
// planetarium-style browsing surface — nothing in the control core looks
// an object up by sky region, only by name or by solar-system body.
package catalog

import (
	"context"
	"errors"
	"math"
)

var (
	// ErrCatalogNotLoaded is returned when querying a catalog that hasn't been loaded.
	ErrCatalogNotLoaded = errors.New("catalog not loaded")

	// ErrObjectNotFound is returned when an object is not found in the catalog.
	ErrObjectNotFound = errors.New("object not found")
)

// Star represents a star from the Hipparcos catalog.
type Star struct {
	// HIP is the Hipparcos catalog number.
	HIP int `json:"hip"`

	// RA is the right ascension in degrees (J2000).
	RA float64 `json:"ra"`

	// Dec is the declination in degrees (J2000).
	Dec float64 `json:"dec"`

	// VMag is the visual magnitude.
	VMag float64 `json:"vmag"`

	// BV is the B-V color index.
	BV float64 `json:"bv"`

	// Parallax in milliarcseconds.
	Parallax float64 `json:"parallax,omitempty"`

	// ProperMotionRA in milliarcseconds/year.
	ProperMotionRA float64 `json:"pm_ra,omitempty"`

	// ProperMotionDec in milliarcseconds/year.
	ProperMotionDec float64 `json:"pm_dec,omitempty"`

	// SpectralType is the spectral classification (e.g., "G2V").
	SpectralType string `json:"spectral_type,omitempty"`

	// Name is the common name if any (e.g., "Vega", "Polaris").
	Name string `json:"name,omitempty"`

	// Bayer is the Bayer designation (e.g., "Alpha Lyrae").
	Bayer string `json:"bayer,omitempty"`
}

// Distance returns the distance in parsecs based on parallax.
// Returns 0 if parallax is not available or invalid.
func (s *Star) Distance() float64 {
	if s.Parallax <= 0 {
		return 0
	}
	return 1000.0 / s.Parallax
}

// AbsoluteMagnitude calculates the absolute magnitude.
// Returns 0 if distance cannot be calculated.
func (s *Star) AbsoluteMagnitude() float64 {
	d := s.Distance()
	if d <= 0 {
		return 0
	}
	return s.VMag - 5*math.Log10(d) + 5
}

// StarCatalog resolves named stars, the only catalog lookup a Target
// needs. Concrete implementations own how the catalog is loaded.
type StarCatalog interface {
	// Load loads the catalog data.
	Load(ctx context.Context) error

	// IsLoaded returns true if the catalog has been loaded.
	IsLoaded() bool

	// GetByName returns a star by its common or Bayer name.
	GetByName(ctx context.Context, name string) (*Star, error)

	// Count returns the total number of stars in the catalog.
	Count() int

	// Name returns the catalog name.
	Name() string
}
