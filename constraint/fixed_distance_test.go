package constraint

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/phil-mansfield/constrain/math/diff"
)

func TestFixedDistancePythagorean(t *testing.T) {
	X := []float64{0, 0, 0, 3, 4, 0}
	u := make([]float64, distDOF)

	fd := NewFixedDistance(5)
	g, J, err := fd.Eval(X, u)
	if err != nil {
		t.Fatal(err.Error())
	}

	if !almostEq(g, 0, 1e-15) {
		t.Errorf("Residual of %g instead of 0.", g)
	}
	expected := []float64{-0.6, -0.8, 0, 0.6, 0.8, 0}
	for i := range expected {
		if !almostEq(J[i], expected[i], 1e-15) {
			t.Errorf("J[%d] = %g instead of %g.", i, J[i], expected[i])
		}
	}
}

func TestFixedDistanceTranslate(t *testing.T) {
	fd := NewFixedDistance(1)
	X := []float64{0.3, -0.2, 0.9, -0.5, 0.6, 0.1}
	u := make([]float64, distDOF)

	g0, J0, err := fd.Eval(X, u)
	if err != nil {
		t.Fatal(err.Error())
	}

	for i := 0; i < 100; i++ {
		dx := [3]float64{
			rand.Float64()*20 - 10,
			rand.Float64()*20 - 10,
			rand.Float64()*20 - 10,
		}
		for p := 0; p < 2; p++ {
			u[3*p], u[3*p+1], u[3*p+2] = dx[0], dx[1], dx[2]
		}

		g, J, err := fd.Eval(X, u)
		if err != nil {
			t.Fatal(err.Error())
		}
		if !almostEq(g, g0, 1e-8) {
			t.Errorf(
				"%d) Residual of %g instead of %g with dx = %v",
				i+1, g, g0, dx,
			)
		}
		for k := range J {
			if !almostEq(J[k], J0[k], 1e-8) {
				t.Errorf(
					"%d) J[%d] = %g instead of %g with dx = %v",
					i+1, k, J[k], J0[k], dx,
				)
			}
		}
	}
}

func TestFixedDistanceFiniteDifference(t *testing.T) {
	fd := NewFixedDistance(0.5)
	u := make([]float64, distDOF)
	scratch := make([]float64, distDOF)
	f := func(q []float64) (float64, error) {
		return fd.EvalAt(q, u, scratch)
	}

	h := 1e-5
	grad := make([]float64, distDOF)
	for i := 0; i < 50; i++ {
		X := make([]float64, distDOF)
		for {
			for j := range X {
				X[j] = rand.Float64()*2 - 1
			}
			dx := X[3] - X[0]
			dy := X[4] - X[1]
			dz := X[5] - X[2]
			if dx*dx+dy*dy+dz*dz > 0.25 {
				break
			}
		}

		_, J, err := fd.Eval(X, u)
		if err != nil {
			t.Fatal(err.Error())
		}
		if err := diff.Gradient(f, X, h, grad); err != nil {
			t.Fatal(err.Error())
		}
		for k := range J {
			if !almostEq(J[k], grad[k], 1e-7) {
				t.Errorf(
					"%d) J[%d] = %g instead of the finite difference "+
						"estimate %g.", i+1, k, J[k], grad[k],
				)
			}
		}
	}
}

func TestFixedDistanceDegenerate(t *testing.T) {
	fd := NewFixedDistance(1)
	u := make([]float64, distDOF)

	degenerate := [][]float64{
		{0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
		{0, 0, 0, 0, 0, 0},
		// Far from the origin a tiny separation is cancellation noise,
		// even though it would pass an absolute threshold.
		{1e12, 1e12, 1e12, 1e12, 1e12, 1e12 + 1e-3},
	}
	for i, X := range degenerate {
		if _, _, err := fd.Eval(X, u); !errors.Is(err, ErrDegenerateGeometry) {
			t.Errorf("%d) Got %v instead of ErrDegenerateGeometry.", i+1, err)
		}
	}

	// A modest separation at the same magnitude is still resolvable.
	healthy := []float64{1e12, 1e12, 1e12, 1e12, 1e12, 1e12 + 10}
	g, _, err := fd.Eval(healthy, u)
	if err != nil {
		t.Fatal(err.Error())
	}
	if !almostEq(g, 9, 1e-3) {
		t.Errorf("Residual of %g instead of 9.", g)
	}
}

func TestFixedDistanceInvalidInput(t *testing.T) {
	fd := NewFixedDistance(1)
	X := []float64{0, 0, 0, 1, 0, 0}
	u := make([]float64, distDOF)

	if _, _, err := fd.Eval(X[:3], u); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Got %v instead of ErrInvalidInput.", err)
	}
	if _, err := fd.EvalAt(X, u, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Nil gradient buffer accepted.")
	}
}

func BenchmarkFixedDistanceEvalAt(b *testing.B) {
	fd := NewFixedDistance(1)
	X := []float64{0.3, -0.2, 0.9, -0.5, 0.6, 0.1}
	u := make([]float64, distDOF)
	J := make([]float64, distDOF)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if _, err := fd.EvalAt(X, u, J); err != nil {
			b.Fatal(err.Error())
		}
	}
}
