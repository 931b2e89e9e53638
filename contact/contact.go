package contact

import (
	"math"

	"checkertrace/material"
	"checkertrace/ray"
	"checkertrace/vmath/vec3"
)

// SmallNumber stands in for zero in every comparison that would otherwise
// divide by, or test against, an exact zero.
const SmallNumber = 0.0001

// Contact records how a ray meets a piece of geometry.  When Hit is false the
// remaining fields are meaningless.
type Contact struct {
	Hit bool

	P   vec3.T
	N   vec3.T
	Mtl material.Material

	Reflected   ray.Ray
	Transmitted ray.Ray
}

func Miss() Contact {
	return Contact{}
}

// New fills a hit at point p with unit normal n for a ray travelling along
// unit direction u.
//
// The transmitted ray has zero direction (Start == End) under total internal
// reflection.
func New(p, n, u vec3.T, mtl material.Material) Contact {
	return Contact{
		Hit: true,
		P:   p,
		N:   n,
		Mtl: mtl,
		Reflected: ray.Ray{
			Start: p,
			End:   vec3.AddVV(p, vec3.Reflect(u, n)),
		},
		Transmitted: ray.Ray{
			Start: p,
			End:   vec3.AddVV(p, Refract(u, n, mtl.Refraction)),
		},
	}
}

// Refract bends unit direction u through a surface with unit normal n using
// refractive index ratio eta.  Returns the zero vector when no transmission
// is possible.
func Refract(u, n vec3.T, eta float64) vec3.T {
	cosI := vec3.IProd(u, n)
	k := 1 - eta*eta*(1-cosI*cosI)
	if k <= 0 {
		return vec3.T{}
	}
	return vec3.SubVV(vec3.MulVS(u, eta), vec3.MulVS(n, math.Sqrt(k)+eta*cosI))
}

// Distance is how far the contact point lies from origin.
func (c Contact) Distance(origin vec3.T) float64 {
	return vec3.SubVV(c.P, origin).Norm()
}

// Transmits reports whether the contact produced a usable transmitted ray.
func (c Contact) Transmits() bool {
	return !c.Transmitted.Slope().IsZero()
}
