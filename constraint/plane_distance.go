package constraint

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const planeDOF = 12

// planeEps is the default degeneracy threshold. The test is scale
// invariant: a configuration fails when the sine of the angle between the
// two plane edges at P1 drops below the threshold.
const planeEps = 1e-12

// PlaneDistance constrains a point P4 to lie at a fixed signed distance
// from the plane through three other points P1, P2, P3. The residual is
//
//	g = dot(P4-P1, n) - Offset,  n = cross(P2-P1, P3-P1) normalized,
//
// so the sign convention follows the right hand rule on the plane edges.
// The twelve gradient components are evaluated in closed form, not by
// finite differences or an autodiff runtime.
type PlaneDistance struct {
	// Offset is the target signed distance. Zero constrains P4 onto the
	// plane itself.
	Offset float64

	// Eps overrides the degeneracy threshold when positive. The zero value
	// selects the default.
	Eps float64
}

// NewPlaneDistance creates a plane distance constraint with the given
// target signed distance.
func NewPlaneDistance(offset float64) *PlaneDistance {
	return &PlaneDistance{Offset: offset}
}

// NDOF returns 12: the x, y, z coordinates of P1 through P4.
func (pd *PlaneDistance) NDOF() int { return planeDOF }

// Eval returns the residual and its gradient at q = X + u. The gradient is
// ordered [x1, y1, z1, ..., x4, y4, z4], matching X and u.
func (pd *PlaneDistance) Eval(X, u []float64) (float64, []float64, error) {
	J := make([]float64, planeDOF)
	g, err := pd.EvalAt(X, u, J)
	if err != nil {
		return 0, nil, err
	}
	return g, J, nil
}

// EvalAt computes the residual at q = X + u and writes the gradient into J.
//
// The gradient is the chain rule applied through the cross product, the
// normalization, and the dot product. With e12 = P2-P1, e13 = P3-P1,
// e14 = P4-P1, c = cross(e12, e13), a = |c|, n = c/a, d = dot(e14, n), and
// w = e14 - d*n the in-plane part of e14, the quotient rule for n = c/a
// collapses to
//
//	dg/dP4 = n
//	dg/dP2 = cross(e13, w)/a
//	dg/dP3 = cross(w, e12)/a
//	dg/dP1 = -(dg/dP2 + dg/dP3 + dg/dP4)
//
// The P1 row uses the fact that the four point gradients of a rigid-motion
// invariant scalar sum to zero.
func (pd *PlaneDistance) EvalAt(X, u, J []float64) (float64, error) {
	if err := checkInput(X, u, J, planeDOF); err != nil {
		return 0, err
	}
	p1 := node(X, u, 0)
	p2 := node(X, u, 1)
	p3 := node(X, u, 2)
	p4 := node(X, u, 3)

	e12 := r3.Sub(p2, p1)
	e13 := r3.Sub(p3, p1)
	e14 := r3.Sub(p4, p1)

	c := r3.Cross(e12, e13)
	area := r3.Norm(c)

	eps := pd.Eps
	if eps <= 0 {
		eps = planeEps
	}
	if area <= eps*math.Sqrt(r3.Norm2(e12)*r3.Norm2(e13)) {
		return 0, fmt.Errorf(
			"%w: plane points are collinear or coincident "+
				"(parallelogram area %g).", ErrDegenerateGeometry, area,
		)
	}

	n := r3.Scale(1/area, c)
	d := r3.Dot(e14, n)

	w := r3.Sub(e14, r3.Scale(d, n))
	j2 := r3.Scale(1/area, r3.Cross(e13, w))
	j3 := r3.Scale(1/area, r3.Cross(w, e12))
	j4 := n
	j1 := r3.Scale(-1, r3.Add(j2, r3.Add(j3, j4)))

	setNode(J, 0, j1)
	setNode(J, 1, j2)
	setNode(J, 2, j3)
	setNode(J, 3, j4)

	return d - pd.Offset, nil
}
