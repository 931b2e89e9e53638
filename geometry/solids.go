package geometry

import (
	"math"

	"checkertrace/contact"
	"checkertrace/material"
	"checkertrace/ray"
	"checkertrace/vmath/vec3"
)

// NewQuad builds a planar quadrilateral from four corners, given in order
// around the boundary relative to position.
func NewQuad(position vec3.T, mtl material.Material, p1, p2, p3, p4 vec3.T) *Shape {
	q := &Shape{
		Position:     position,
		Mtl:          mtl,
		OnlyOneChild: true,
	}
	q.Add(
		NewTriangle(vec3.T{}, mtl, p1, p2, p3),
		NewTriangle(vec3.T{}, mtl, p1, p3, p4),
	)
	return q
}

// NewTetrahedron builds the tetrahedron cut from a cube of the given edge
// size by slicing from a top corner through the diagonal of the bottom face.
func NewTetrahedron(position vec3.T, edgeSize float64, mtl material.Material) *Shape {
	t := NewGroup(position, math.Sqrt(3)*edgeSize/2)
	t.Mtl = mtl

	h := edgeSize / 2
	zero := vec3.T{}
	t.Add(
		// Bottom.
		NewTriangle(zero, mtl, vec3.T{-h, -h, -h}, vec3.T{h, -h, -h}, vec3.T{-h, -h, h}),
		// Back.
		NewTriangle(zero, mtl, vec3.T{-h, -h, -h}, vec3.T{h, -h, -h}, vec3.T{-h, h, -h}),
		// Left.
		NewTriangle(zero, mtl, vec3.T{-h, -h, -h}, vec3.T{-h, h, -h}, vec3.T{-h, -h, h}),
		// Front.
		NewTriangle(zero, mtl, vec3.T{-h, -h, h}, vec3.T{h, -h, -h}, vec3.T{-h, h, -h}),
	)
	return t
}

// NewCube builds an axis-aligned cube centered on position.
func NewCube(position vec3.T, edgeSize float64, mtl material.Material) *Shape {
	c := NewGroup(position, math.Sqrt(3)*edgeSize/2)
	c.Mtl = mtl

	h := edgeSize / 2
	zero := vec3.T{}
	c.Add(
		// Top.
		NewQuad(zero, mtl, vec3.T{-h, h, -h}, vec3.T{h, h, -h}, vec3.T{h, h, h}, vec3.T{-h, h, h}),
		// Bottom.
		NewQuad(zero, mtl, vec3.T{-h, -h, -h}, vec3.T{h, -h, -h}, vec3.T{h, -h, h}, vec3.T{-h, -h, h}),
		// Left.
		NewQuad(zero, mtl, vec3.T{-h, -h, -h}, vec3.T{-h, h, -h}, vec3.T{-h, h, h}, vec3.T{-h, -h, h}),
		// Right.
		NewQuad(zero, mtl, vec3.T{h, -h, -h}, vec3.T{h, h, -h}, vec3.T{h, h, h}, vec3.T{h, -h, h}),
		// Back.
		NewQuad(zero, mtl, vec3.T{-h, -h, -h}, vec3.T{h, -h, -h}, vec3.T{h, h, -h}, vec3.T{-h, h, -h}),
		// Front.
		NewQuad(zero, mtl, vec3.T{-h, -h, h}, vec3.T{h, -h, h}, vec3.T{h, h, h}, vec3.T{-h, h, h}),
	)
	return c
}

// CheckerBoard is a square board in the y=0 plane of its position, colored
// in alternating cells.
type CheckerBoard struct {
	Position vec3.T
	HalfSize float64
	Cells    *material.Checkerboard

	bounds *Shape
}

// NewCheckerBoard builds a board of numSquares x numSquares cells with the
// given total edge size.
func NewCheckerBoard(position vec3.T, edgeSize float64, numSquares int, light, dark material.Material) *CheckerBoard {
	h := edgeSize / 2
	return &CheckerBoard{
		Position: position,
		HalfSize: h,
		Cells:    material.NewCheckerboard(edgeSize/float64(numSquares), light, dark),
		bounds: NewQuad(position, material.Default(),
			vec3.T{-h, 0, -h},
			vec3.T{h, 0, -h},
			vec3.T{h, 0, h},
			vec3.T{-h, 0, h},
		),
	}
}

func (b *CheckerBoard) RayInto(query ray.Ray, offset vec3.T) contact.Contact {
	c := b.bounds.RayInto(query, offset)
	if !c.Hit {
		return c
	}

	// Measure from the board's near corner.
	center := vec3.AddVV(b.Position, offset)
	local := vec3.AddVV(vec3.SubVV(c.P, center), vec3.T{b.HalfSize, 0, b.HalfSize})
	return contact.New(c.P, c.N, query.Direction(), b.Cells.At(local[0], local[2]))
}
