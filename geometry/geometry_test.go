package geometry

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"checkertrace/contact"
	"checkertrace/material"
	"checkertrace/ray"
	"checkertrace/vmath/vec3"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestSphereSymmetry(t *testing.T) {
	center := vec3.T{3, -2, 7}
	const radius = 5.0
	const centerDistance = 40.0

	axes := []vec3.T{
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
	}

	s := NewSphere(center, radius, material.Sphere())
	for _, axis := range axes {
		t.Run(fmt.Sprintf("axis %v", axis), func(t *testing.T) {
			start := vec3.SubVV(center, vec3.MulVS(axis, centerDistance))
			c := s.RayInto(ray.Ray{Start: start, End: center}, vec3.T{})
			if !c.Hit {
				t.Fatalf("Ray through center missed")
			}
			if got := c.Distance(start); math.Abs(got-(centerDistance-radius)) > 1e-9 {
				t.Errorf("Hit distance %v, want %v", got, centerDistance-radius)
			}
			if diff := cmp.Diff(c.N, vec3.MulVS(axis, -1), approx); diff != "" {
				t.Errorf("Bad normal; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestSphereMisses(t *testing.T) {
	s := NewSphere(vec3.T{0, 0, -10}, 1, material.Sphere())

	testCases := []struct {
		desc  string
		query ray.Ray
	}{
		{"passes beside", ray.Ray{Start: vec3.T{5, 0, 0}, End: vec3.T{5, 0, -1}}},
		{"points away", ray.Ray{Start: vec3.T{0, 0, 0}, End: vec3.T{0, 0, 1}}},
		{"starts inside", ray.Ray{Start: vec3.T{0, 0, -10}, End: vec3.T{0, 0, -11}}},
		{"zero length", ray.Ray{Start: vec3.T{0, 0, 0}, End: vec3.T{0, 0, 0}}},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if c := s.RayInto(tc.query, vec3.T{}); c.Hit {
				t.Errorf("Unexpected hit at %v", c.P)
			}
		})
	}
}

func TestSphereOffsetComposes(t *testing.T) {
	s := NewSphere(vec3.T{0, 0, -10}, 1, material.Sphere())
	offset := vec3.T{100, 0, 0}

	c := s.RayInto(ray.Ray{Start: vec3.T{100, 0, 0}, End: vec3.T{100, 0, -1}}, offset)
	if !c.Hit {
		t.Fatalf("Ray at offset sphere missed")
	}
	if diff := cmp.Diff(c.P, vec3.T{100, 0, -9}, approx); diff != "" {
		t.Errorf("Bad hit point; diff (-got +want)\n%s", diff)
	}
}

func TestTriangleCentroidAlwaysHits(t *testing.T) {
	rng := rand.New(rand.NewSource(487489))
	for i := 0; i < 500; i++ {
		v0 := vec3.MulVS(vec3.UniformUnitDistribution(rng), 10)
		v1 := vec3.MulVS(vec3.UniformUnitDistribution(rng), 10)
		v2 := vec3.MulVS(vec3.UniformUnitDistribution(rng), 10)
		tri := NewTriangle(vec3.T{}, material.Cube(), v0, v1, v2)
		if tri.Degenerate() {
			continue
		}

		centroid := vec3.DivVS(vec3.AddVV(vec3.AddVV(v0, v1), v2), 3)
		start := vec3.AddVV(centroid, vec3.MulVS(tri.Normal(), 20))

		c := tri.RayInto(ray.Ray{Start: start, End: centroid}, vec3.T{})
		if !c.Hit {
			t.Fatalf("Ray at centroid of %v %v %v missed", v0, v1, v2)
		}

		s, tt := tri.Barycentric(c.P, vec3.T{})
		if math.Abs(s-1.0/3.0) > 1e-4 || math.Abs(tt-1.0/3.0) > 1e-4 {
			t.Errorf("Centroid barycentrics (%v, %v), want (1/3, 1/3)", s, tt)
		}
	}
}

func TestTriangleContainment(t *testing.T) {
	tri := NewTriangle(vec3.T{}, material.Cube(), vec3.T{0, 0, 0}, vec3.T{1, 0, 0}, vec3.T{0, 0, 1})

	testCases := []struct {
		desc    string
		x, z    float64
		wantHit bool
	}{
		{"interior", 0.25, 0.25, true},
		{"near hypotenuse", 0.49, 0.49, true},
		{"past hypotenuse", 0.51, 0.51, false},
		{"negative x", -0.1, 0.5, false},
		{"negative z", 0.5, -0.1, false},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			c := tri.RayInto(ray.Ray{Start: vec3.T{tc.x, 5, tc.z}, End: vec3.T{tc.x, 4, tc.z}}, vec3.T{})
			if c.Hit != tc.wantHit {
				t.Errorf("Hit = %v, want %v", c.Hit, tc.wantHit)
			}
		})
	}
}

func TestTriangleRejections(t *testing.T) {
	tri := NewTriangle(vec3.T{}, material.Cube(), vec3.T{0, 0, 0}, vec3.T{1, 0, 0}, vec3.T{0, 0, 1})

	testCases := []struct {
		desc  string
		query ray.Ray
	}{
		{"parallel to plane", ray.Ray{Start: vec3.T{0.2, 1, 0.2}, End: vec3.T{1.2, 1, 0.2}}},
		{"behind origin", ray.Ray{Start: vec3.T{0.2, 1, 0.2}, End: vec3.T{0.2, 2, 0.2}}},
		{"origin on plane", ray.Ray{Start: vec3.T{0.2, 0, 0.2}, End: vec3.T{0.2, -1, 0.2}}},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if c := tri.RayInto(tc.query, vec3.T{}); c.Hit {
				t.Errorf("Unexpected hit at %v", c.P)
			}
		})
	}
}

func TestDegenerateTriangle(t *testing.T) {
	tri := NewTriangle(vec3.T{}, material.Cube(), vec3.T{0, 0, 0}, vec3.T{1, 0, 0}, vec3.T{2, 0, 0})
	if !tri.Degenerate() {
		t.Fatalf("Collinear triangle not flagged degenerate")
	}
	if c := tri.RayInto(ray.Ray{Start: vec3.T{1, 1, 0}, End: vec3.T{1, 0, 0}}, vec3.T{}); c.Hit {
		t.Errorf("Degenerate triangle reported a hit")
	}
}

func TestGroupKeepsNearest(t *testing.T) {
	far := NewSphere(vec3.T{0, 0, -20}, 1, material.Cube())
	near := NewSphere(vec3.T{0, 0, -10}, 1, material.Sphere())

	g := NewGroup(vec3.T{}, 0)
	g.Add(far, near)

	c := g.RayInto(ray.Ray{Start: vec3.T{}, End: vec3.T{0, 0, -1}}, vec3.T{})
	if !c.Hit {
		t.Fatalf("Ray through group missed")
	}
	if diff := cmp.Diff(c.P, vec3.T{0, 0, -9}, approx); diff != "" {
		t.Errorf("Group did not keep the nearest hit; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(c.Mtl, material.Sphere()); diff != "" {
		t.Errorf("Group reported the wrong material; diff (-got +want)\n%s", diff)
	}
}

func TestGroupBoundingSphereCulls(t *testing.T) {
	child := NewSphere(vec3.T{0, 0, 0}, 1, material.Sphere())

	// The bounding radius is deliberately too small to contain the child's
	// silhouette edge.
	g := NewGroup(vec3.T{0, 0, -10}, 0.5)
	g.Add(child)

	if c := g.RayInto(ray.Ray{Start: vec3.T{0.8, 0, 0}, End: vec3.T{0.8, 0, -1}}, vec3.T{}); c.Hit {
		t.Errorf("Ray outside bounding sphere reached children")
	}
	if c := g.RayInto(ray.Ray{Start: vec3.T{0, 0, 0}, End: vec3.T{0, 0, -1}}, vec3.T{}); !c.Hit {
		t.Errorf("Ray inside bounding sphere missed the child")
	}
}

func TestEmptyGroupMisses(t *testing.T) {
	g := NewGroup(vec3.T{}, 0)
	if c := g.RayInto(ray.Ray{Start: vec3.T{}, End: vec3.T{0, 0, -1}}, vec3.T{}); c.Hit {
		t.Errorf("Empty group reported a hit")
	}
}

func TestQuadStopsAtFirstTriangle(t *testing.T) {
	q := NewQuad(vec3.T{}, material.Cube(),
		vec3.T{-1, 0, -1}, vec3.T{1, 0, -1}, vec3.T{1, 0, 1}, vec3.T{-1, 0, 1})

	testCases := []struct {
		desc string
		x, z float64
	}{
		{"first triangle", 0.5, -0.5},
		{"second triangle", -0.5, 0.5},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			c := q.RayInto(ray.Ray{Start: vec3.T{tc.x, 3, tc.z}, End: vec3.T{tc.x, 2, tc.z}}, vec3.T{})
			if !c.Hit {
				t.Fatalf("Ray into quad missed")
			}
			if diff := cmp.Diff(c.P, vec3.T{tc.x, 0, tc.z}, approx); diff != "" {
				t.Errorf("Bad hit point; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestCubeFrontFace(t *testing.T) {
	c := NewCube(vec3.T{0, 0, -50}, 10, material.Cube())

	hit := c.RayInto(ray.Ray{Start: vec3.T{1, 2, 0}, End: vec3.T{1, 2, -1}}, vec3.T{})
	if !hit.Hit {
		t.Fatalf("Ray into cube missed")
	}
	if diff := cmp.Diff(hit.P, vec3.T{1, 2, -45}, approx); diff != "" {
		t.Errorf("Cube hit not on the front face; diff (-got +want)\n%s", diff)
	}
	if math.Abs(math.Abs(hit.N[2])-1) > 1e-9 {
		t.Errorf("Front face normal %v is not along z", hit.N)
	}
}

func TestTetrahedronHit(t *testing.T) {
	tet := NewTetrahedron(vec3.T{0, 0, -50}, 10, material.Tetrahedron())

	// Straight down: the slanted front face x+y+z = -5 (local) sits above
	// the bottom face here.
	hit := tet.RayInto(ray.Ray{Start: vec3.T{-4, 20, -54}, End: vec3.T{-4, 19, -54}}, vec3.T{})
	if !hit.Hit {
		t.Fatalf("Ray into tetrahedron missed")
	}
	if diff := cmp.Diff(hit.P, vec3.T{-4, 3, -54}, approx); diff != "" {
		t.Errorf("Bad hit point; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(hit.Mtl, material.Tetrahedron()); diff != "" {
		t.Errorf("Bad material; diff (-got +want)\n%s", diff)
	}
}

func TestCheckerBoardCells(t *testing.T) {
	board := NewCheckerBoard(vec3.T{0, 0, -160}, 320, 8, material.WhiteSquare(), material.BlackSquare())
	offset := vec3.T{0, 0, 0}

	materialAt := func(i, j int) material.Material {
		// Cell centers, measured from the near corner at (-160, 0, -320).
		x := -160 + (float64(i)+0.5)*40
		z := -320 + (float64(j)+0.5)*40
		c := board.RayInto(ray.Ray{Start: vec3.T{x, 10, z}, End: vec3.T{x, 9, z}}, offset)
		if !c.Hit {
			t.Fatalf("Ray into cell (%d,%d) missed", i, j)
		}
		return c.Mtl
	}

	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			if diff := cmp.Diff(materialAt(i, j), materialAt(i+2, j)); diff != "" {
				t.Errorf("Cells (%d,%d) and (%d,%d) differ; diff (-got +want)\n%s", i, j, i+2, j, diff)
			}
			if cmp.Equal(materialAt(i, j), materialAt(i+1, j)) {
				t.Errorf("Cells (%d,%d) and (%d,%d) match", i, j, i+1, j)
			}
		}
	}

	if diff := cmp.Diff(materialAt(0, 0), material.WhiteSquare()); diff != "" {
		t.Errorf("Corner cell should be light; diff (-got +want)\n%s", diff)
	}

	if c := board.RayInto(ray.Ray{Start: vec3.T{500, 10, 0}, End: vec3.T{500, 9, 0}}, offset); c.Hit {
		t.Errorf("Ray beside the board reported a hit")
	}
}

func TestCheckerBoardRefractsWithCellMaterial(t *testing.T) {
	light := material.Material{Transparency: material.White, Refraction: 1.2}
	dark := material.Material{Transparency: material.White, Refraction: 0.5}
	board := NewCheckerBoard(vec3.T{}, 80, 2, light, dark)

	testCases := []struct {
		name string
		x, z float64
		want material.Material
	}{
		{"light cell", -20, -25, light},
		{"dark cell", 20, -25, dark},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Down and sideways at 45 degrees.
			query := ray.Ray{Start: vec3.T{tc.x - 10, 10, tc.z}, End: vec3.T{tc.x - 9, 9, tc.z}}
			c := board.RayInto(query, vec3.T{})
			if !c.Hit {
				t.Fatalf("Ray into board missed")
			}
			if diff := cmp.Diff(c.Mtl, tc.want); diff != "" {
				t.Fatalf("Bad material; diff (-got +want)\n%s", diff)
			}

			want := contact.Refract(query.Direction(), c.N, tc.want.Refraction)
			if diff := cmp.Diff(c.Transmitted.Slope(), want, approx); diff != "" {
				t.Errorf("Transmitted ray ignores the cell's refraction; diff (-got +want)\n%s", diff)
			}
			if diff := cmp.Diff(c.Transmitted.Start, c.P); diff != "" {
				t.Errorf("Transmitted ray does not start at the hit; diff (-got +want)\n%s", diff)
			}
		})
	}
}
