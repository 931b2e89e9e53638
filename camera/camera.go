// Package camera maps pixel coordinates on a flat screen into world space.
package camera

import (
	"fmt"

	"checkertrace/contact"
	"checkertrace/ray"
	"checkertrace/vmath/mat33"
	"checkertrace/vmath/vec3"
)

// View is a pinhole camera looking through a screen centered on LookAt.  One
// pixel spans one world unit along Right and Up.
type View struct {
	Position vec3.T
	LookAt   vec3.T

	Width, Height int

	// Orthonormal screen axes.  Up is corrected to be perpendicular to both
	// Right and the look direction.
	Right vec3.T
	Up    vec3.T

	// Columns are Right, Up and the unit look direction.
	screenToWorld mat33.T
}

// New builds a view.  up need not be perpendicular to the look direction, but
// must not be parallel to it.
func New(position, lookAt, up vec3.T, width, height int) (*View, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("bad viewport %dx%d", width, height)
	}

	look := vec3.SubVV(lookAt, position)
	if look.Norm() < contact.SmallNumber {
		return nil, fmt.Errorf("camera position %v coincides with look-at point", position)
	}

	right := vec3.CProd(look, up)
	if right.Norm() < contact.SmallNumber {
		return nil, fmt.Errorf("up vector %v is parallel to the look direction %v", up, look)
	}
	right = vec3.Normalize(right)
	correctedUp := vec3.Normalize(vec3.CProd(right, look))

	return &View{
		Position:      position,
		LookAt:        lookAt,
		Width:         width,
		Height:        height,
		Right:         right,
		Up:            correctedUp,
		screenToWorld: mat33.FromColumns(right, correctedUp, vec3.Normalize(look)),
	}, nil
}

// Default is the view over the board used by the command.
func Default() *View {
	v, err := New(vec3.T{0, 100, 200}, vec3.T{0, 0, -160}, vec3.T{0, 1, 0}, 500, 500)
	if err != nil {
		panic(err)
	}
	return v
}

func (v *View) bottomLeft() (float64, float64) {
	return -float64(v.Width) / 2, -float64(v.Height) / 2
}

// Target is the world point that pixel (col, row) looks at.  Row 0 is the
// bottom of the screen.
func (v *View) Target(col, row int) vec3.T {
	bottomX, bottomY := v.bottomLeft()
	screen := vec3.T{bottomX + float64(col), bottomY + float64(row), 0}
	return vec3.AddVV(v.LookAt, mat33.MulMV(v.screenToWorld, screen))
}

// Ray is the primary ray through pixel (col, row), with its target nudged by
// jitter.
func (v *View) Ray(col, row int, jitter vec3.T) ray.Ray {
	return ray.Ray{
		Start: v.Position,
		End:   vec3.AddVV(v.Target(col, row), jitter),
	}
}
