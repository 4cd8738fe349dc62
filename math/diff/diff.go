/*package diff contains centered finite difference estimates of derivatives
of scalar functions. The estimates converge as the square of the step size
and are what analytic gradients elsewhere in this module are validated
against.
*/
package diff

import (
	"fmt"
)

// Func is a scalar function of a coordinate vector. It may fail, e.g. when
// probed at a configuration it considers degenerate.
type Func func(x []float64) (float64, error)

// Derivative estimates the partial derivative of f at x with respect to
// coordinate i by centered differences with step h. x is restored to its
// original contents before returning.
func Derivative(f Func, x []float64, i int, h float64) (float64, error) {
	if i < 0 || i >= len(x) {
		return 0, fmt.Errorf(
			"Coordinate index %d is outside [0, %d).", i, len(x),
		)
	}
	if h <= 0 {
		return 0, fmt.Errorf("Step size %g is not positive.", h)
	}

	x0 := x[i]
	defer func() { x[i] = x0 }()

	x[i] = x0 + h
	fp, err := f(x)
	if err != nil {
		return 0, err
	}
	x[i] = x0 - h
	fm, err := f(x)
	if err != nil {
		return 0, err
	}
	return (fp - fm) / (2 * h), nil
}

// Gradient estimates the gradient of f at x by centered differences with
// step h and writes it into grad, which must have the same length as x.
func Gradient(f Func, x []float64, h float64, grad []float64) error {
	if len(grad) != len(x) {
		return fmt.Errorf(
			"Gradient buffer has length %d instead of %d.",
			len(grad), len(x),
		)
	}
	for i := range x {
		d, err := Derivative(f, x, i, h)
		if err != nil {
			return err
		}
		grad[i] = d
	}
	return nil
}
