package mountmodel

import (
	"fmt"
	"math"
	"time"

	"github.com/darkdragonsastro/trackcore/internal/mount"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// Observation is one (timestamp, encoder pair, observed sky position)
// sample used to fit the four model parameters.
type Observation struct {
	Time     time.Time
	Encoders mount.EncoderPositions
	Sky      SkyCoord
}

// NoSolutionError is returned when the fit does not converge. It is
// surfaced directly to the caller; it is not a control-loop event.
type NoSolutionError struct {
	Status       optimize.Status
	ResidualRMS  float64
	ResidualMean float64
}

func (e *NoSolutionError) Error() string {
	return fmt.Sprintf("mountmodel: fit did not converge (status=%v, residual rms=%.4f deg)", e.Status, e.ResidualRMS)
}

// Fit solves the bounded nonlinear least-squares problem over the four
// model parameters, minimizing the sum of angular separations between
// predicted and observed sky coordinates, using gonum's derivative-free
// Nelder-Mead optimizer (the objective, built from great-circle
// separations and the piecewise encoder transform, is not naturally
// differentiable in closed form).
func Fit(loc Location, initial Parameters, obs []Observation) (Parameters, error) {
	objective := func(x []float64) float64 {
		p := paramsFromVector(x)
		m := New(p, loc)
		sum := 0.0
		for _, o := range obs {
			predicted := m.MountToWorld(o.Encoders, o.Time)
			sum += AngularSeparation(predicted, o.Sky)
		}
		return sum
	}

	problem := optimize.Problem{Func: objective}

	result, err := optimize.Minimize(problem, paramsToVector(initial), &optimize.Settings{
		MajorIterations: 2000,
	}, &optimize.NelderMead{})

	fitted := initial
	var status optimize.Status
	if result != nil {
		fitted = paramsFromVector(result.X)
		status = result.Status
	}

	residuals := make([]float64, len(obs))
	m := New(fitted, loc)
	for i, o := range obs {
		residuals[i] = AngularSeparation(m.MountToWorld(o.Encoders, o.Time), o.Sky)
	}
	rms := rmsOf(residuals)
	mean := stat.Mean(residuals, nil)

	converged := err == nil && status == optimize.Success
	if !converged {
		return fitted, &NoSolutionError{Status: status, ResidualRMS: rms, ResidualMean: mean}
	}

	if verr := fitted.Validate(); verr != nil {
		return fitted, &NoSolutionError{Status: status, ResidualRMS: rms, ResidualMean: mean}
	}

	return fitted, nil
}

func paramsToVector(p Parameters) []float64 {
	return []float64{p.Axis0Offset, p.Axis1Offset, p.PoleRotAxisLon, p.PoleRotAngle}
}

func paramsFromVector(x []float64) Parameters {
	return Parameters{
		Axis0Offset:    wrapParam(x[0]),
		Axis1Offset:    wrapParam(x[1]),
		PoleRotAxisLon: wrapParam(x[2]),
		PoleRotAngle:   wrapParam(x[3]),
	}
}

func wrapParam(v float64) float64 {
	for v <= -180 {
		v += 360
	}
	for v > 180 {
		v -= 360
	}
	return v
}

func rmsOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sumSq := 0.0
	for _, x := range v {
		sumSq += x * x
	}
	return math.Sqrt(sumSq / float64(len(v)))
}
