package material

import (
	"math"

	"checkertrace/vmath/vec3"
)

var (
	White = vec3.T{1, 1, 1}
	Black = vec3.T{0, 0, 0}
	Red   = vec3.T{1, 0, 0}
)

// Material describes how a surface responds to light under the Phong-style
// model used by the renderer.
//
// Transparency is how much of the transmitted ray's color is mixed in;
// (1,1,1) - Transparency is the opacity applied to the reflected ray.
type Material struct {
	Ambient      vec3.T
	Diffuse      vec3.T
	Specular     vec3.T
	Transparency vec3.T

	// Refraction is the refractive index ratio used for transmitted rays.
	Refraction float64
}

// Default is a black, opaque material with unit refraction.
func Default() Material {
	return Material{Refraction: 1}
}

func (m Material) Opacity() vec3.T {
	return vec3.SubVV(White, m.Transparency)
}

func Sphere() Material {
	return Material{
		Ambient:      Black,
		Diffuse:      vec3.MulVS(White, 0.1),
		Specular:     White,
		Transparency: Black,
		Refraction:   1,
	}
}

func Tetrahedron() Material {
	return Material{
		Ambient:      Black,
		Diffuse:      Black,
		Specular:     vec3.MulVS(White, 0.1),
		Transparency: White,
		Refraction:   2.0 / 3.0,
	}
}

func Cube() Material {
	return Material{
		Ambient:      vec3.MulVS(Red, 0.1),
		Diffuse:      vec3.MulVS(Red, 0.4),
		Specular:     Red,
		Transparency: Black,
		Refraction:   1,
	}
}

func WhiteSquare() Material {
	return Material{
		Ambient:      vec3.MulVS(White, 0.1),
		Diffuse:      vec3.MulVS(White, 0.5),
		Specular:     White,
		Transparency: Black,
		Refraction:   1,
	}
}

func BlackSquare() Material {
	return Material{
		Ambient:      Black,
		Diffuse:      vec3.MulVS(White, 0.1),
		Specular:     Black,
		Transparency: Black,
		Refraction:   1,
	}
}

// CheckerboardParity returns 0 for cells where floor(x/period) +
// floor(z/period) is even and 1 where it is odd.
func CheckerboardParity(period float64) func(x, z float64) int {
	return func(x, z float64) int {
		cellX := int64(math.Floor(x / period))
		cellZ := int64(math.Floor(z / period))
		return int((cellX + cellZ) & 1)
	}
}

// Checkerboard assigns one of two materials by grid cell.
type Checkerboard struct {
	Light, Dark Material
	parity      func(x, z float64) int
}

func NewCheckerboard(period float64, light, dark Material) *Checkerboard {
	return &Checkerboard{
		Light:  light,
		Dark:   dark,
		parity: CheckerboardParity(period),
	}
}

// At selects the material for planar coordinates (x, z), measured from the
// board's near corner.
func (c *Checkerboard) At(x, z float64) Material {
	if c.parity(x, z) == 0 {
		return c.Light
	}
	return c.Dark
}
