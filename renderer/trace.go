// Package renderer traces rays through a scene and samples a screen of
// pixels.
package renderer

import (
	"math"

	"checkertrace/contact"
	"checkertrace/ray"
	"checkertrace/scene"
	"checkertrace/vmath/vec3"
)

// AttenuationConstant is the distance scale of light falloff.  Light loses
// half its strength at a distance of sqrt(AttenuationConstant).
const AttenuationConstant = 100000.0

// Attenuation is the fraction of a light's color that survives a trip of
// distance d.  It is 1 at d = 0 and decreases toward 0.
func Attenuation(d float64) float64 {
	return AttenuationConstant / (AttenuationConstant + d*d)
}

// TraceRay returns the color seen along r.  depth bounds how many further
// reflection and transmission bounces are followed; at depth 0 only local
// lighting is computed.
func TraceRay(s *scene.Scene, r ray.Ray, depth int) vec3.T {
	if r.Length() < contact.SmallNumber {
		return vec3.T{}
	}

	c := s.Root.RayInto(r, vec3.T{})
	if !c.Hit {
		return vec3.T{}
	}

	color := illuminate(s, r, c)
	if depth <= 0 {
		return color
	}

	transparency := c.Mtl.Transparency
	if !transparency.IsZero() && transparency.Norm() > contact.SmallNumber && c.Transmits() {
		transmitted := TraceRay(s, c.Transmitted, depth-1)
		color = vec3.AddVV(color, vec3.HProd(transparency, transmitted))
	}

	opacity := c.Mtl.Opacity()
	if !opacity.IsZero() {
		reflected := TraceRay(s, c.Reflected, depth-1)
		color = vec3.AddVV(color, vec3.HProd(opacity, reflected))
	}

	return color
}

// illuminate sums the direct contribution of every light that can see c.
func illuminate(s *scene.Scene, r ray.Ray, c contact.Contact) vec3.T {
	viewDir := r.Direction()
	reflectDir := c.Reflected.Direction()
	specularWeight := math.Abs(vec3.IProd(viewDir, reflectDir))

	color := vec3.T{}
	for _, l := range s.Lights {
		shadow := ray.Ray{Start: c.P, End: l.Position}
		if blocked(s, shadow) {
			continue
		}

		d := shadow.Length()
		lc := vec3.MulVS(l.Color, Attenuation(d))

		color = vec3.AddVV(color, vec3.HProd(c.Mtl.Ambient, lc))
		if d >= contact.SmallNumber {
			diffuseWeight := math.Abs(vec3.IProd(c.N, shadow.Direction()))
			color = vec3.AddVV(color, vec3.MulVS(vec3.HProd(c.Mtl.Diffuse, lc), diffuseWeight))
		}
		color = vec3.AddVV(color, vec3.MulVS(vec3.HProd(c.Mtl.Specular, lc), specularWeight))
	}
	return color
}

// blocked reports whether the shadow ray hits something opaque.  Anything
// with nonzero transparency lets the whole light through.
func blocked(s *scene.Scene, shadow ray.Ray) bool {
	occluder := s.Root.RayInto(shadow, vec3.T{})
	return occluder.Hit && occluder.Mtl.Transparency.IsZero()
}
