package ray

import (
	"checkertrace/vmath/vec3"
)

// Ray is a directed line.  Start is the origin of the ray; End is any second
// point along it, used only to fix the direction, not a segment endpoint.
type Ray struct {
	Start vec3.T
	End   vec3.T
}

// Slope is the unnormalized direction End - Start.
func (r Ray) Slope() vec3.T {
	return vec3.SubVV(r.End, r.Start)
}

// Direction is the unit direction of the ray.  It is undefined when Start
// and End coincide.
func (r Ray) Direction() vec3.T {
	return vec3.Normalize(r.Slope())
}

func (r Ray) Length() float64 {
	return r.Slope().Norm()
}

// Eval returns Start + t*(End - Start).
func (r Ray) Eval(t float64) vec3.T {
	s := r.Slope()
	return vec3.T{
		r.Start[0] + t*s[0],
		r.Start[1] + t*s[1],
		r.Start[2] + t*s[2],
	}
}
