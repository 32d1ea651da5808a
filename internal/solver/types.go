package solver

import (
	"fmt"
)

// Options configures the inverter
type Options struct {
	Tolerance     float64 // absolute residual accepted as a root
	MaxIterations int     // secant steps before giving up
	Step          float64 // offset of the second starting point from the guess
}

// DefaultOptions returns default inverter configuration
func DefaultOptions() Options {
	return Options{
		Tolerance:     1e-9,
		MaxIterations: 100,
		Step:          0.25,
	}
}

// withDefaults fills zero fields from DefaultOptions
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.Step == 0 {
		o.Step = d.Step
	}
	return o
}

// Result describes a converged inversion
type Result struct {
	Input      float64
	Iterations int
	Residual   float64
}

// NoConvergenceError is returned when the inversion does not settle within the
// iteration budget or the secant stalls on a flat or discontinuous stretch.
type NoConvergenceError struct {
	Target     float64
	LastInput  float64
	Residual   float64
	Iterations int
	Stalled    bool
}

func (e *NoConvergenceError) Error() string {
	reason := fmt.Sprintf("no convergence after %d iterations", e.Iterations)
	if e.Stalled {
		reason = fmt.Sprintf("secant stalled after %d iterations", e.Iterations)
	}
	return fmt.Sprintf("invert target %.6f: %s (last input %.6f, residual %.3g)", e.Target, reason, e.LastInput, e.Residual)
}
