// Package geometry holds the intersectable pieces of a scene: triangles,
// spheres, and composite shapes built out of them.
package geometry

import (
	"math"

	"checkertrace/contact"
	"checkertrace/material"
	"checkertrace/ray"
	"checkertrace/vmath/vec3"
)

// Geometry is anything a ray can be tested against.
//
// offset is the accumulated world position of the caller's ancestors.  The
// returned contact is in world coordinates.
type Geometry interface {
	RayInto(query ray.Ray, offset vec3.T) contact.Contact
}

// Triangle is a planar triangle with vertices given relative to Position.
type Triangle struct {
	Position vec3.T
	Mtl      material.Material

	V0, V1, V2 vec3.T

	// Plane and barycentric terms, fixed at construction.
	u, v        vec3.T
	n           vec3.T
	uu, uv, vv  float64
	denominator float64
	degenerate  bool
}

func NewTriangle(position vec3.T, mtl material.Material, v0, v1, v2 vec3.T) *Triangle {
	t := &Triangle{
		Position: position,
		Mtl:      mtl,
		V0:       v0,
		V1:       v1,
		V2:       v2,
	}

	t.u = vec3.SubVV(v1, v0)
	t.v = vec3.SubVV(v2, v0)
	n := vec3.CProd(t.u, t.v)
	if n.Norm() < contact.SmallNumber {
		t.degenerate = true
		return t
	}
	t.n = vec3.Normalize(n)

	t.uu = vec3.IProd(t.u, t.u)
	t.uv = vec3.IProd(t.u, t.v)
	t.vv = vec3.IProd(t.v, t.v)
	t.denominator = t.uv*t.uv - t.uu*t.vv
	if math.Abs(t.denominator) < contact.SmallNumber {
		t.degenerate = true
	}

	return t
}

// Normal is the unit plane normal, (v1-v0) x (v2-v0) normalized.
func (t *Triangle) Normal() vec3.T {
	return t.n
}

func (t *Triangle) Degenerate() bool {
	return t.degenerate
}

// Barycentric returns the (s, t) coordinates of world point p against the
// triangle placed at offset.  p is inside iff s >= 0, t >= 0, s+t <= 1.
func (t *Triangle) Barycentric(p, offset vec3.T) (float64, float64) {
	v0 := vec3.AddVV(vec3.AddVV(t.Position, offset), t.V0)
	w := vec3.SubVV(p, v0)
	wu := vec3.IProd(w, t.u)
	wv := vec3.IProd(w, t.v)
	s := (t.uv*wv - t.vv*wu) / t.denominator
	tt := (t.uv*wu - t.uu*wv) / t.denominator
	return s, tt
}

func (t *Triangle) RayInto(query ray.Ray, offset vec3.T) contact.Contact {
	if t.degenerate {
		return contact.Miss()
	}

	v0 := vec3.AddVV(vec3.AddVV(t.Position, offset), t.V0)
	p0 := query.Start
	d := query.Slope()

	nd := vec3.IProd(t.n, d)
	if math.Abs(nd) < contact.SmallNumber {
		return contact.Miss()
	}

	// m is measured in units of the unnormalized slope.  Hits closer than
	// SmallNumber are dropped along with those behind the origin.
	m := vec3.IProd(t.n, vec3.SubVV(v0, p0)) / nd
	if m < contact.SmallNumber {
		return contact.Miss()
	}

	p := vec3.AddVV(p0, vec3.MulVS(d, m))
	s, tt := t.Barycentric(p, offset)
	if s < 0 || tt < 0 || s+tt > 1 {
		return contact.Miss()
	}

	return contact.New(p, t.n, vec3.Normalize(d), t.Mtl)
}

// Shape is either a sphere or a composite of child geometry.
//
// A composite with a positive Radius first tests the ray against its bounding
// sphere and skips its children on a miss.
type Shape struct {
	Position vec3.T
	Mtl      material.Material
	Radius   float64

	// AmSphere makes the shape report sphere hits itself instead of
	// delegating to children.
	AmSphere bool

	// OnlyOneChild stops traversal at the first child hit.  Used for quads,
	// whose triangles can only both be hit by a ray in their plane.
	OnlyOneChild bool

	Children []Geometry
}

func NewSphere(position vec3.T, radius float64, mtl material.Material) *Shape {
	return &Shape{
		Position: position,
		Mtl:      mtl,
		Radius:   radius,
		AmSphere: true,
	}
}

// NewGroup makes an empty composite at position.  boundingRadius may be zero
// to disable the bounding-sphere test.
func NewGroup(position vec3.T, boundingRadius float64) *Shape {
	return &Shape{
		Position: position,
		Mtl:      material.Default(),
		Radius:   boundingRadius,
	}
}

func (s *Shape) Add(children ...Geometry) {
	s.Children = append(s.Children, children...)
}

func (s *Shape) RayInto(query ray.Ray, offset vec3.T) contact.Contact {
	if query.Length() < contact.SmallNumber {
		return contact.Miss()
	}

	u := query.Direction()
	p0 := query.Start
	position := vec3.AddVV(s.Position, offset)

	if s.Radius > 0 || s.AmSphere {
		deltaP := vec3.SubVV(position, p0)
		uDeltaP := vec3.IProd(u, deltaP)
		discriminant := uDeltaP*uDeltaP - vec3.IProd(deltaP, deltaP) + s.Radius*s.Radius
		if discriminant < 0 {
			return contact.Miss()
		}

		// The other root is on the far side of the sphere.
		near := uDeltaP - math.Sqrt(discriminant)
		if math.Abs(near) < contact.SmallNumber {
			return contact.Miss()
		}

		if s.AmSphere {
			if near < contact.SmallNumber {
				return contact.Miss()
			}
			p := vec3.AddVV(p0, vec3.MulVS(u, near))
			n := vec3.Normalize(vec3.SubVV(p, position))
			return contact.New(p, n, u, s.Mtl)
		}
	}

	return s.nearestChild(query, position)
}

func (s *Shape) nearestChild(query ray.Ray, position vec3.T) contact.Contact {
	result := contact.Miss()
	minDistance := -1.0
	for _, child := range s.Children {
		c := child.RayInto(query, position)
		if !c.Hit {
			continue
		}

		d := c.Distance(query.Start)
		if d < minDistance || minDistance < 0 {
			minDistance = d
			result = c
			if s.OnlyOneChild {
				return result
			}
		}
	}
	return result
}
