package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/constrain/constraint"
	"github.com/phil-mansfield/constrain/math/diff"
)

const ExamplePlaneDistanceFile = `[PlaneDistance]

#######################
# Required Parameters #
#######################

# The current positions of the four nodes. P1, P2, and P3 define the plane,
# P4 is the constrained point. Each point is given as three repeated values,
# x, y, z.
P1 = 0
P1 = 0
P1 = 0
P2 = 1
P2 = 0
P2 = 0
P3 = 0
P3 = 1
P3 = 0
P4 = 0
P4 = 0
P4 = 2

# Alternatively, set PointFile to a whitespace-separated table whose first
# three columns are x, y, z and whose first four rows are P1 through P4.
# PointFile = path/to/points.txt

#######################
# Optional Parameters #
#######################

# Target signed distance of P4 from the plane. Default is 0.
# Offset = 0

# Cross-check the analytic gradient against centered finite differences and
# report the largest deviation. Default is false.
# FiniteDifference = true

# Step size used for the finite difference check. Default is 1e-6.
# Step = 1e-6
`

const ExampleFixedDistanceFile = `[FixedDistance]

#######################
# Required Parameters #
#######################

# The current positions of the two nodes, each given as three repeated
# values, x, y, z.
P1 = 0
P1 = 0
P1 = 0
P2 = 3
P2 = 4
P2 = 0

# Target separation of the two points.
Length = 5

#######################
# Optional Parameters #
#######################

# Cross-check the analytic gradient against centered finite differences and
# report the largest deviation. Default is false.
# FiniteDifference = true

# Step size used for the finite difference check. Default is 1e-6.
# Step = 1e-6
`

type PlaneDistanceConfig struct {
	P1, P2, P3, P4   []float64
	Offset           float64
	PointFile        string
	FiniteDifference bool
	Step             float64
}

type PlaneDistanceWrapper struct {
	PlaneDistance PlaneDistanceConfig
}

type FixedDistanceConfig struct {
	P1, P2           []float64
	Length           float64
	FiniteDifference bool
	Step             float64
}

type FixedDistanceWrapper struct {
	FixedDistance FixedDistanceConfig
}

func main() {
	var planeDistance, fixedDistance, exampleConfig string
	vars := map[string]*string{
		"PlaneDistance": &planeDistance,
		"FixedDistance": &fixedDistance,
		"ExampleConfig": &exampleConfig,
	}

	flag.StringVar(
		&planeDistance, "PlaneDistance", "",
		"Configuration file for [PlaneDistance] mode.",
	)
	flag.StringVar(
		&fixedDistance, "FixedDistance", "",
		"Configuration file for [FixedDistance] mode.",
	)
	flag.StringVar(
		&exampleConfig, "ExampleConfig", "",
		"Prints an example configuration file of the specified type to "+
			"stdout. Accepted arguments are 'PlaneDistance' and "+
			"'FixedDistance'.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	switch modeName {
	case "PlaneDistance":
		wrap := &PlaneDistanceWrapper{}
		if err := gcfg.ReadFileInto(wrap, planeDistance); err != nil {
			log.Fatal(err.Error())
		}
		planeDistanceMain(&wrap.PlaneDistance)
	case "FixedDistance":
		wrap := &FixedDistanceWrapper{}
		if err := gcfg.ReadFileInto(wrap, fixedDistance); err != nil {
			log.Fatal(err.Error())
		}
		fixedDistanceMain(&wrap.FixedDistance)
	case "ExampleConfig":
		switch exampleConfig {
		case "PlaneDistance":
			fmt.Println(ExamplePlaneDistanceFile)
		case "FixedDistance":
			fmt.Println(ExampleFixedDistanceFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. Only recognized " +
					"arguments are 'PlaneDistance' and 'FixedDistance'.",
			)
		}
	}
}

func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}
	for name, v := range vars {
		if *v != "" {
			setNames = append(setNames, name)
		}
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	} else if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The flags %v were all set. Only one flag may be set at a time.",
			setNames,
		)
	}
	return setNames[0], nil
}

func planeDistanceMain(con *PlaneDistanceConfig) {
	var X []float64
	if con.PointFile != "" {
		cols, err := table.ReadTable(con.PointFile, []int{0, 1, 2}, nil)
		if err != nil {
			log.Fatal(err.Error())
		}
		xs, ys, zs := cols[0], cols[1], cols[2]
		if len(xs) < 4 {
			log.Fatalf(
				"'PointFile' contains %d rows, but four points are needed.",
				len(xs),
			)
		}
		for i := 0; i < 4; i++ {
			X = append(X, xs[i], ys[i], zs[i])
		}
	} else {
		for i, p := range [][]float64{con.P1, con.P2, con.P3, con.P4} {
			if len(p) != 3 {
				log.Fatalf("'P%d' has %d values instead of 3.", i+1, len(p))
			}
			X = append(X, p...)
		}
	}

	pd := constraint.NewPlaneDistance(con.Offset)
	report(pd, X, con.FiniteDifference, con.Step)
}

func fixedDistanceMain(con *FixedDistanceConfig) {
	var X []float64
	for i, p := range [][]float64{con.P1, con.P2} {
		if len(p) != 3 {
			log.Fatalf("'P%d' has %d values instead of 3.", i+1, len(p))
		}
		X = append(X, p...)
	}

	fd := constraint.NewFixedDistance(con.Length)
	report(fd, X, con.FiniteDifference, con.Step)
}

func report(c constraint.Constraint, X []float64, fd bool, step float64) {
	u := make([]float64, c.NDOF())
	g, J, err := c.Eval(X, u)
	if err != nil {
		log.Fatal(err.Error())
	}

	fmt.Printf("g = %g\n", g)
	for p := 0; p < c.NDOF()/3; p++ {
		fmt.Printf(
			"dg/dP%d = (%g, %g, %g)\n", p+1, J[3*p], J[3*p+1], J[3*p+2],
		)
	}

	if !fd {
		return
	}
	if step <= 0 {
		step = 1e-6
	}

	scratch := make([]float64, c.NDOF())
	f := func(q []float64) (float64, error) {
		return c.EvalAt(q, u, scratch)
	}
	grad := make([]float64, c.NDOF())
	if err := diff.Gradient(f, X, step, grad); err != nil {
		log.Fatal(err.Error())
	}

	fmt.Printf(
		"max |analytic - finite difference| = %g\n",
		floats.Distance(J, grad, math.Inf(1)),
	)
}
