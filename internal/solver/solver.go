package solver

import (
	"context"
	"math"
)

// Func is a monotonic forward function to invert
type Func func(x float64) (float64, error)

// Inverter finds x such that fn(x) ≈ target using the secant method.
// The forward functions it serves are piecewise linear with few pieces, so the
// secant lands on the exact root once both points share the root's piece.
type Inverter struct {
	Options Options
}

// NewInverter creates an inverter; zero option fields take their defaults
func NewInverter(options Options) *Inverter {
	return &Inverter{Options: options.withDefaults()}
}

// NewDefaultInverter creates an inverter with default options
func NewDefaultInverter() *Inverter {
	return NewInverter(DefaultOptions())
}

// Invert returns the input whose image under fn is within tolerance of target,
// starting the search at guess.
func (inv *Inverter) Invert(ctx context.Context, fn Func, target, guess float64) (Result, error) {
	opts := inv.Options.withDefaults()

	residual := func(x float64) (float64, error) {
		y, err := fn(x)
		if err != nil {
			return 0, err
		}
		return y - target, nil
	}

	x0 := guess
	f0, err := residual(x0)
	if err != nil {
		return Result{}, err
	}
	if math.Abs(f0) < opts.Tolerance {
		return Result{Input: x0, Residual: f0}, nil
	}

	x1 := guess + opts.Step
	f1, err := residual(x1)
	if err != nil {
		return Result{}, err
	}

	for i := 1; i <= opts.MaxIterations; i++ {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		if math.Abs(f1) < opts.Tolerance {
			return Result{Input: x1, Iterations: i, Residual: f1}, nil
		}
		if f1 == f0 {
			return Result{}, &NoConvergenceError{
				Target:     target,
				LastInput:  x1,
				Residual:   f1,
				Iterations: i,
				Stalled:    true,
			}
		}

		x2 := x1 - f1*(x1-x0)/(f1-f0)
		f2, err := residual(x2)
		if err != nil {
			return Result{}, err
		}
		x0, f0 = x1, f1
		x1, f1 = x2, f2
	}

	return Result{}, &NoConvergenceError{
		Target:     target,
		LastInput:  x1,
		Residual:   f1,
		Iterations: opts.MaxIterations,
	}
}
