// Package scene assembles the checkerboard world that the renderer traces.
package scene

import (
	"fmt"
	"math"

	"checkertrace/geometry"
	"checkertrace/material"
	"checkertrace/vmath/vec3"
)

type Light struct {
	Color    vec3.T
	Position vec3.T
}

// Scene is the immutable input to a render: one root geometry and the lights
// that illuminate it.
type Scene struct {
	Root   geometry.Geometry
	Lights []Light
}

// Empty returns a scene with nothing in it.
func Empty() *Scene {
	return &Scene{
		Root: geometry.NewGroup(vec3.T{}, 0),
	}
}

// Kind names something that can be placed on a square.
type Kind string

const (
	KindLight       Kind = "light"
	KindSphere      Kind = "sphere"
	KindCube        Kind = "cube"
	KindTetrahedron Kind = "tetrahedron"
)

// Builder collects placements and produces a Scene.  The zero value is not
// usable; call NewBuilder.
type Builder struct {
	root   *geometry.Shape
	lights []Light
}

// NewBuilder starts a scene containing only the checkerboard.
func NewBuilder() *Builder {
	b := &Builder{
		root: geometry.NewGroup(BoardPosition, math.Sqrt(3)*BoardHalfSize),
	}
	b.root.Add(geometry.NewCheckerBoard(vec3.T{}, BoardEdgeSize, NumSquares, material.WhiteSquare(), material.BlackSquare()))
	return b
}

// Place puts an object of the given kind on the named square.
func (b *Builder) Place(kind Kind, square string) error {
	p, err := ParseSquare(square)
	if err != nil {
		return fmt.Errorf("while placing %s: %w", kind, err)
	}

	switch kind {
	case KindLight:
		// Five squares above the board.
		pos := vec3.AddVV(vec3.AddVV(BoardPosition, vec3.T{0, 3.5 * SquareEdgeSize, 0}), p)
		b.lights = append(b.lights, Light{Color: material.White, Position: pos})
	case KindSphere:
		b.root.Add(geometry.NewSphere(p, SquareEdgeSize/2, material.Sphere()))
	case KindCube:
		b.root.Add(geometry.NewCube(p, SquareEdgeSize, material.Cube()))
	case KindTetrahedron:
		b.root.Add(geometry.NewTetrahedron(p, SquareEdgeSize, material.Tetrahedron()))
	default:
		return fmt.Errorf("unknown object kind %q", kind)
	}
	return nil
}

// AddLight adds a light at an arbitrary world position.
func (b *Builder) AddLight(l Light) {
	b.lights = append(b.lights, l)
}

// Build returns the finished scene.  The builder must not be used afterwards.
func (b *Builder) Build() *Scene {
	s := &Scene{
		Root:   b.root,
		Lights: b.lights,
	}
	b.root = nil
	b.lights = nil
	return s
}

// Default is the demonstration layout: a tetrahedron on b4, a sphere on d7, a
// cube on a7, and a white light over b6.
func Default() *Scene {
	b := NewBuilder()
	for _, p := range []struct {
		kind   Kind
		square string
	}{
		{KindLight, "b6"},
		{KindTetrahedron, "b4"},
		{KindSphere, "d7"},
		{KindCube, "a7"},
	} {
		if err := b.Place(p.kind, p.square); err != nil {
			panic(err)
		}
	}
	return b.Build()
}
