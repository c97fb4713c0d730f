package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/device"
	"github.com/darkdragonsastro/trackcore/internal/mount"
	"github.com/darkdragonsastro/trackcore/internal/mountmodel"
	"github.com/gin-gonic/gin"
)

// ModelHandlers exposes CRUD over named mount-model parameter sets and a
// fit endpoint that derives a new one from observations.
type ModelHandlers struct {
	store *device.ParamStore
}

// NewModelHandlers wraps store.
func NewModelHandlers(store *device.ParamStore) *ModelHandlers {
	return &ModelHandlers{store: store}
}

func (h *ModelHandlers) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"param_sets": h.store.List()})
}

func (h *ModelHandlers) getActive(c *gin.Context) {
	set, err := h.store.Active()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, set)
}

func (h *ModelHandlers) setActive(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.SetActive(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	set, _ := h.store.Active()
	c.JSON(http.StatusOK, set)
}

func (h *ModelHandlers) get(c *gin.Context) {
	id := c.Param("id")
	set, err := h.store.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, set)
}

func (h *ModelHandlers) put(c *gin.Context) {
	id := c.Param("id")
	var set device.NamedParamSet
	if err := c.ShouldBindJSON(&set); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	set.ID = id

	if err := h.store.Put(&set); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, set)
}

func (h *ModelHandlers) delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Delete(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// FitRequest is a set of (timestamp, encoder pair, observed sky position)
// samples plus the observing location and an initial parameter guess to fit
// from.
type FitRequest struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Location     mountmodel.Location   `json:"location"`
	Initial      mountmodel.Parameters `json:"initial"`
	Observations []struct {
		Time   time.Time `json:"time"`
		Axis0  float64   `json:"axis0"`
		Axis1  float64   `json:"axis1"`
		RADeg  float64   `json:"ra_deg"`
		DecDeg float64   `json:"dec_deg"`
	} `json:"observations"`
}

// FitResponse reports the fitted parameters, or the best-effort parameters
// and residual stats if the fit did not converge.
type FitResponse struct {
	Params       mountmodel.Parameters `json:"params"`
	Converged    bool                  `json:"converged"`
	ResidualRMS  float64               `json:"residual_rms,omitempty"`
	ResidualMean float64               `json:"residual_mean,omitempty"`
	Error        string                `json:"error,omitempty"`
}

func (h *ModelHandlers) fit(c *gin.Context) {
	var req FitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	obs := make([]mountmodel.Observation, len(req.Observations))
	for i, o := range req.Observations {
		var enc mount.EncoderPositions
		enc.Set(mount.Axis0, o.Axis0)
		enc.Set(mount.Axis1, o.Axis1)
		obs[i] = mountmodel.Observation{
			Time:     o.Time,
			Encoders: enc,
			Sky:      mountmodel.SkyCoord{RADeg: o.RADeg, DecDeg: o.DecDeg},
		}
	}

	params, err := mountmodel.Fit(req.Location, req.Initial, obs)
	if err != nil {
		var noSolution *mountmodel.NoSolutionError
		if !errors.As(err, &noSolution) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, FitResponse{
			Params:       params,
			Converged:    false,
			ResidualRMS:  noSolution.ResidualRMS,
			ResidualMean: noSolution.ResidualMean,
			Error:        err.Error(),
		})
		return
	}

	if req.ID != "" {
		h.store.Put(&device.NamedParamSet{
			ID:   req.ID,
			Name: req.Name,
			ParamSet: mountmodel.ParamSet{
				Params:      params,
				Location:    req.Location,
				GeneratedAt: time.Now(),
			},
		})
	}

	c.JSON(http.StatusOK, FitResponse{Params: params, Converged: true})
}
