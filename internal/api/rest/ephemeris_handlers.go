package rest

import (
	"net/http"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/catalog"
	"github.com/gin-gonic/gin"
)

func (s *Server) getLocation(c *gin.Context) {
	c.JSON(http.StatusOK, s.skyState.Observer)
}

// SetLocationRequest updates the observer location used by the solar-system
// ephemeris and visibility calculations.
type SetLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Elevation *float64 `json:"elevation"`
}

func (s *Server) setLocation(c *gin.Context) {
	var req SetLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Latitude != nil {
		if *req.Latitude < -90 || *req.Latitude > 90 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "latitude must be between -90 and 90"})
			return
		}
		s.skyState.Observer.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		if *req.Longitude < -180 || *req.Longitude > 180 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "longitude must be between -180 and 180"})
			return
		}
		s.skyState.Observer.Longitude = *req.Longitude
	}
	if req.Elevation != nil {
		s.skyState.Observer.Elevation = *req.Elevation
	}

	c.JSON(http.StatusOK, s.skyState.Observer)
}

// MoonInfoResponse reports the moon's current position and phase.
type MoonInfoResponse struct {
	RA           float64 `json:"ra"`
	Dec          float64 `json:"dec"`
	Altitude     float64 `json:"altitude"`
	Azimuth      float64 `json:"azimuth"`
	Phase        float64 `json:"phase"`
	Illumination float64 `json:"illumination"`
	IsUp         bool    `json:"is_up"`
}

func (s *Server) getMoonInfo(c *gin.Context) {
	now := time.Now().UTC()
	ephemeris := catalog.NewEphemeris(&s.skyState.Observer)
	moonPos := ephemeris.GetMoonPosition(now)
	vis := catalog.CalculateVisibility(moonPos.RA, moonPos.Dec, &s.skyState.Observer, now, 0)
	phase := catalog.MoonPhase(now)

	c.JSON(http.StatusOK, MoonInfoResponse{
		RA:           moonPos.RA,
		Dec:          moonPos.Dec,
		Altitude:     vis.Coords.Altitude,
		Azimuth:      vis.Coords.Azimuth,
		Phase:        phase,
		Illumination: catalog.MoonIllumination(phase),
		IsUp:         vis.IsVisible,
	})
}

// SunInfoResponse reports the sun's current position.
type SunInfoResponse struct {
	RA       float64 `json:"ra"`
	Dec      float64 `json:"dec"`
	Altitude float64 `json:"altitude"`
	Azimuth  float64 `json:"azimuth"`
	IsUp     bool    `json:"is_up"`
}

func (s *Server) getSunInfo(c *gin.Context) {
	now := time.Now().UTC()
	ephemeris := catalog.NewEphemeris(&s.skyState.Observer)
	sunPos := ephemeris.GetSunPosition(now)
	vis := catalog.CalculateVisibility(sunPos.RA, sunPos.Dec, &s.skyState.Observer, now, 0)

	c.JSON(http.StatusOK, SunInfoResponse{
		RA:       sunPos.RA,
		Dec:      sunPos.Dec,
		Altitude: vis.Coords.Altitude,
		Azimuth:  vis.Coords.Azimuth,
		IsUp:     vis.Coords.Altitude > 0,
	})
}

// TwilightResponse reports today's twilight boundaries and the moon
// phase, the information an operator needs to plan an observing window.
type TwilightResponse struct {
	catalog.TwilightTimes
	MoonPhaseName string `json:"moon_phase_name"`
}

func (s *Server) getTwilight(c *gin.Context) {
	now := time.Now().UTC()
	times := catalog.CalculateTwilight(&s.skyState.Observer, now)
	phase := catalog.MoonPhase(now)

	c.JSON(http.StatusOK, TwilightResponse{
		TwilightTimes: times,
		MoonPhaseName: catalog.MoonPhaseName(phase),
	})
}
