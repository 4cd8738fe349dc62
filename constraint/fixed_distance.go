package constraint

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const distDOF = 6

// distEps is the default coincidence threshold. The test is scale
// invariant: a configuration fails when the separation drops below the
// threshold times the larger point magnitude, which is where forming
// P2 - P1 loses the separation direction to cancellation.
const distEps = 1e-12

// FixedDistance constrains the distance between two points to a fixed
// length: g = |P2 - P1| - Length.
type FixedDistance struct {
	// Length is the target separation.
	Length float64

	// Eps overrides the coincidence threshold when positive. The
	// separation is compared against Eps times the larger point
	// magnitude.
	Eps float64
}

// NewFixedDistance creates a fixed distance constraint with the given
// target separation.
func NewFixedDistance(length float64) *FixedDistance {
	return &FixedDistance{Length: length}
}

// NDOF returns 6: the x, y, z coordinates of P1 and P2.
func (fd *FixedDistance) NDOF() int { return distDOF }

// Eval returns the residual and its gradient at q = X + u.
func (fd *FixedDistance) Eval(X, u []float64) (float64, []float64, error) {
	J := make([]float64, distDOF)
	g, err := fd.EvalAt(X, u, J)
	if err != nil {
		return 0, nil, err
	}
	return g, J, nil
}

// EvalAt computes the residual at q = X + u and writes the gradient into J.
// The gradient of |P2 - P1| is the unit separation vector for P2 and its
// negation for P1.
func (fd *FixedDistance) EvalAt(X, u, J []float64) (float64, error) {
	if err := checkInput(X, u, J, distDOF); err != nil {
		return 0, err
	}
	p1 := node(X, u, 0)
	p2 := node(X, u, 1)

	e := r3.Sub(p2, p1)
	r := r3.Norm(e)

	eps := fd.Eps
	if eps <= 0 {
		eps = distEps
	}
	if r <= eps*math.Max(r3.Norm(p1), r3.Norm(p2)) {
		return 0, fmt.Errorf(
			"%w: points are coincident (separation %g).",
			ErrDegenerateGeometry, r,
		)
	}

	n := r3.Scale(1/r, e)
	setNode(J, 0, r3.Scale(-1, n))
	setNode(J, 1, n)

	return r - fd.Length, nil
}
