/*package constraint contains kernels for evaluating algebraic constraints
between small sets of nodes: the constraint residual and its exact gradient
with respect to the nodal coordinates.

Constraints are the element-level building blocks of a Lagrange multiplier or
penalty solver. The solver owns global degree of freedom numbering, assembly,
and iteration; this package only answers point queries at whatever
coordinates it is handed, so a single evaluator may be shared freely between
goroutines.
*/
package constraint

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrDegenerateGeometry is returned when the nodes defining a
	// constraint's geometry collapse (collinear or coincident points) and
	// the gradient direction stops being defined. Callers should treat the
	// current iterate as singular rather than retry with the same input.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrInvalidInput is returned for coordinate vectors of the wrong
	// length or containing non-finite values. It is reported before any
	// arithmetic is done.
	ErrInvalidInput = errors.New("invalid input")
)

// Constraint is a single scalar constraint g(q) = 0 on the coordinates of a
// fixed number of nodes. The evaluation point q is the componentwise sum of
// a reference configuration X and a displacement u, both ordered
// [x1, y1, z1, x2, y2, z2, ...].
type Constraint interface {
	// NDOF returns the number of scalar coordinates the constraint reads,
	// three per node.
	NDOF() int

	// Eval returns the residual g at q = X + u together with the gradient
	// of g with respect to each of the NDOF() coordinates.
	Eval(X, u []float64) (g float64, J []float64, err error)

	// EvalAt is Eval with the gradient written into J, which must have
	// length NDOF(). It does not allocate.
	EvalAt(X, u, J []float64) (g float64, err error)
}

// checkInput rejects coordinate and gradient slices which don't match the
// constraint's degree of freedom count and non-finite coordinates.
func checkInput(X, u, J []float64, ndof int) error {
	if len(X) != ndof || len(u) != ndof {
		return fmt.Errorf(
			"%w: got %d reference and %d displacement coordinates "+
				"for a constraint with %d degrees of freedom.",
			ErrInvalidInput, len(X), len(u), ndof,
		)
	}
	if len(J) != ndof {
		return fmt.Errorf(
			"%w: gradient buffer has length %d instead of %d.",
			ErrInvalidInput, len(J), ndof,
		)
	}
	for i := range X {
		if math.IsNaN(X[i]) || math.IsInf(X[i], 0) ||
			math.IsNaN(u[i]) || math.IsInf(u[i], 0) {
			return fmt.Errorf(
				"%w: non-finite coordinate at index %d.",
				ErrInvalidInput, i,
			)
		}
	}
	return nil
}

// node forms the current position of node i, q = X + u. The sum is exact:
// one float64 addition per coordinate, before anything is differentiated.
func node(X, u []float64, i int) r3.Vec {
	j := 3 * i
	return r3.Vec{X: X[j] + u[j], Y: X[j+1] + u[j+1], Z: X[j+2] + u[j+2]}
}

// setNode writes v into the three gradient components of node i.
func setNode(J []float64, i int, v r3.Vec) {
	j := 3 * i
	J[j], J[j+1], J[j+2] = v.X, v.Y, v.Z
}
