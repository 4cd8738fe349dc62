package constraint

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Set stacks constraints over a shared coordinate vector. It provides the
// residual/Jacobian pair a multiplier solver consumes, C(q) and B = dC/dq,
// without doing any solving itself: each constraint is mapped onto the
// indices of the shared vector it reads, and rows are evaluated
// independently.
type Set struct {
	ndof int
	cons []Constraint
	idx  [][]int
}

// NewSet creates an empty constraint set over a coordinate vector with the
// given number of scalar degrees of freedom.
func NewSet(ndof int) *Set {
	return &Set{ndof: ndof}
}

// NDOF returns the length of the shared coordinate vector.
func (s *Set) NDOF() int { return s.ndof }

// Len returns the number of constraints, which is the number of rows in
// Residual and Jacobian.
func (s *Set) Len() int { return len(s.cons) }

// Add appends c to the set, acting on the given coordinate indices of the
// shared vector. idx must contain c.NDOF() in-range indices; it is copied.
func (s *Set) Add(c Constraint, idx []int) error {
	if len(idx) != c.NDOF() {
		return fmt.Errorf(
			"%w: got %d coordinate indices for a constraint with %d "+
				"degrees of freedom.", ErrInvalidInput, len(idx), c.NDOF(),
		)
	}
	for _, i := range idx {
		if i < 0 || i >= s.ndof {
			return fmt.Errorf(
				"%w: coordinate index %d is outside [0, %d).",
				ErrInvalidInput, i, s.ndof,
			)
		}
	}
	s.cons = append(s.cons, c)
	s.idx = append(s.idx, append([]int(nil), idx...))
	return nil
}

// Residual returns the stacked residual vector C at q = X + u, one entry
// per constraint in insertion order.
func (s *Set) Residual(X, u []float64) (*mat.VecDense, error) {
	if err := s.check(X, u); err != nil {
		return nil, err
	}
	res := mat.NewVecDense(len(s.cons), nil)
	lx, lu, lj := s.scratch()
	for r, c := range s.cons {
		n := c.NDOF()
		s.gather(r, X, lx[:n])
		s.gather(r, u, lu[:n])
		g, err := c.EvalAt(lx[:n], lu[:n], lj[:n])
		if err != nil {
			return nil, fmt.Errorf("constraint %d: %w", r, err)
		}
		res.SetVec(r, g)
	}
	return res, nil
}

// Jacobian returns the Len() x NDOF() matrix B = dC/dq at q = X + u.
// Columns not read by a constraint are zero in its row.
func (s *Set) Jacobian(X, u []float64) (*mat.Dense, error) {
	if err := s.check(X, u); err != nil {
		return nil, err
	}
	B := mat.NewDense(len(s.cons), s.ndof, nil)
	lx, lu, lj := s.scratch()
	for r, c := range s.cons {
		n := c.NDOF()
		s.gather(r, X, lx[:n])
		s.gather(r, u, lu[:n])
		if _, err := c.EvalAt(lx[:n], lu[:n], lj[:n]); err != nil {
			return nil, fmt.Errorf("constraint %d: %w", r, err)
		}
		for k, i := range s.idx[r] {
			B.Set(r, i, lj[k])
		}
	}
	return B, nil
}

func (s *Set) check(X, u []float64) error {
	if len(s.cons) == 0 {
		return fmt.Errorf("%w: set has no constraints.", ErrInvalidInput)
	}
	if len(X) != s.ndof || len(u) != s.ndof {
		return fmt.Errorf(
			"%w: got %d reference and %d displacement coordinates for a "+
				"set with %d degrees of freedom.",
			ErrInvalidInput, len(X), len(u), s.ndof,
		)
	}
	return nil
}

// scratch allocates local coordinate and gradient buffers large enough for
// every constraint in the set. Buffers are per call, so concurrent
// Residual and Jacobian calls don't race.
func (s *Set) scratch() (lx, lu, lj []float64) {
	n := 0
	for _, c := range s.cons {
		if c.NDOF() > n {
			n = c.NDOF()
		}
	}
	buf := make([]float64, 3*n)
	return buf[0:n], buf[n : 2*n], buf[2*n : 3*n]
}

func (s *Set) gather(r int, q, dst []float64) {
	for k, i := range s.idx[r] {
		dst[k] = q[i]
	}
}
