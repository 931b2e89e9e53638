package vec3

import (
	"math"
	"math/rand"
)

// Epsilon is the per-component tolerance used by Equal.
const Epsilon = 1e-5

// T is a point or free vector in world space.  Colors reuse the same type,
// with components in RGB order.
type T [3]float64

func (v T) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// IsZero reports whether every component is exactly zero.
func (v T) IsZero() bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

// Normalize returns v scaled to unit length.  The caller must ensure v is not
// (nearly) zero.
func Normalize(v T) T {
	l := v.Norm()
	return T{
		v[0] / l,
		v[1] / l,
		v[2] / l,
	}
}

func AddVV(a, b T) T {
	return T{
		a[0] + b[0],
		a[1] + b[1],
		a[2] + b[2],
	}
}

func SubVV(a, b T) T {
	return T{
		a[0] - b[0],
		a[1] - b[1],
		a[2] - b[2],
	}
}

func MulVS(a T, b float64) T {
	return T{
		a[0] * b,
		a[1] * b,
		a[2] * b,
	}
}

func DivVS(a T, b float64) T {
	return T{
		a[0] / b,
		a[1] / b,
		a[2] / b,
	}
}

// HProd is the componentwise (Hadamard) product.
func HProd(a, b T) T {
	return T{
		a[0] * b[0],
		a[1] * b[1],
		a[2] * b[2],
	}
}

func IProd(a, b T) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func CProd(a, b T) T {
	return T{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Equal compares a and b component by component within Epsilon.
func Equal(a, b T) bool {
	return math.Abs(a[0]-b[0]) <= Epsilon &&
		math.Abs(a[1]-b[1]) <= Epsilon &&
		math.Abs(a[2]-b[2]) <= Epsilon
}

// Reflect mirrors a about the plane with unit normal n.
func Reflect(a, n T) T {
	return SubVV(a, MulVS(n, 2*IProd(a, n)))
}

// UniformUnitDistribution draws a point uniformly from the unit ball,
// retrying until it is nonzero, and pushes it out to the unit sphere.
func UniformUnitDistribution(rng *rand.Rand) T {
	result := T{}
	for {
		result[0] = 2 * (rng.Float64() - 0.5)
		result[1] = 2 * (rng.Float64() - 0.5)
		result[2] = 2 * (rng.Float64() - 0.5)
		normSquared := result[0]*result[0] + result[1]*result[1] + result[2]*result[2]
		if normSquared <= 1.0 && normSquared != 0.0 {
			break
		}
	}
	return Normalize(result)
}
