package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMat4MulAppliesLeftFirst(t *testing.T) {
	s := NewMat4Scale(NewVec3(2, 2, 2))
	tr := NewMat4Translation(NewVec3(1, 0, 0))

	p := NewVec3(1, 1, 1).Transform(s.Mul(tr))
	assert.True(t, p.Compare(NewVec3(3, 2, 2), 1e-6), "got %v", p)

	p = NewVec3(1, 1, 1).Transform(tr.Mul(s))
	assert.True(t, p.Compare(NewVec3(4, 2, 2), 1e-6), "got %v", p)
}

func TestMat4Inverse(t *testing.T) {
	m := NewMat4EulerXYZ(0.3, -1.1, 0.7).Mul(NewMat4Translation(NewVec3(4, -2, 9)))
	assert.True(t, m.Mul(m.Inverse()).Compare(NewMat4Identity(), 1e-5))
	assert.True(t, NewMat4Scale(NewVec3(0, 1, 1)).Inverse().Compare(NewMat4Identity(), 0))
}

func TestMat4LookAt(t *testing.T) {
	eye := NewVec3(0, 0, 5)
	view := NewMat4LookAt(eye, NewVec3Zero(), NewVec3Up())

	// the target ends up straight ahead, down the negative z axis
	p := NewVec3Zero().Transform(view)
	assert.True(t, p.Compare(NewVec3(0, 0, -5), 1e-5), "got %v", p)
	p = NewVec3(1, 0, 0).Transform(view)
	assert.True(t, p.Compare(NewVec3(1, 0, -5), 1e-5), "got %v", p)
}

func TestMat4FrustumMatchesPerspective(t *testing.T) {
	// a symmetric frustum with half extent equal to near is a 90 degree perspective
	f := NewMat4Frustum(-1, 1, -1, 1, 1, 100)
	p := NewMat4Perspective(DegToRad(90), 1, 1, 100)
	assert.True(t, f.Compare(p, 1e-5))
}

func TestCanvasRayThroughCentre(t *testing.T) {
	view := NewMat4LookAt(NewVec3(0, 0, 10), NewVec3Zero(), NewVec3Up())
	proj := NewMat4Perspective(DegToRad(60), 1, 0.1, 100)
	ray := CanvasRay(NewVec2(50, 50), 100, 100, view, proj)
	assert.True(t, ray.Direction.Compare(NewVec3(0, 0, -1), 1e-4), "got %v", ray.Direction)
	assert.InDelta(t, 0, ray.Origin.X, 1e-4)
	assert.InDelta(t, 0, ray.Origin.Y, 1e-4)
}

func TestRayTriangleIntersect(t *testing.T) {
	a, b, c := NewVec3(-1, -1, 0), NewVec3(1, -1, 0), NewVec3(0, 1, 0)
	hit, ok := RayTriangleIntersect(Ray{Origin: NewVec3(0, 0, 5), Direction: NewVec3(0, 0, -1)}, a, b, c)
	assert.True(t, ok)
	assert.True(t, hit.Compare(NewVec3Zero(), 1e-6))

	_, ok = RayTriangleIntersect(Ray{Origin: NewVec3(5, 5, 5), Direction: NewVec3(0, 0, -1)}, a, b, c)
	assert.False(t, ok)

	// behind the origin
	_, ok = RayTriangleIntersect(Ray{Origin: NewVec3(0, 0, 5), Direction: NewVec3(0, 0, 1)}, a, b, c)
	assert.False(t, ok)
}

func TestBarycentric(t *testing.T) {
	a, b, c := NewVec3(0, 0, 0), NewVec3(1, 0, 0), NewVec3(0, 1, 0)
	assert.True(t, Barycentric(a, a, b, c).Compare(NewVec3(1, 0, 0), 1e-6))
	assert.True(t, Barycentric(b, a, b, c).Compare(NewVec3(0, 1, 0), 1e-6))
	assert.True(t, Barycentric(NewVec3(0.25, 0.25, 0), a, b, c).Compare(NewVec3(0.5, 0.25, 0.25), 1e-6))
}

func TestGeometryGenerateNormals(t *testing.T) {
	positions := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	normals := GeometryGenerateNormals(positions, []uint16{0, 1, 2})
	assert.Equal(t, []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}, normals)
}

func TestTransformLocal(t *testing.T) {
	tr := NewTransformAt(NewVec3(1, 2, 3))
	tr.SetScale(NewVec3(2, 2, 2))
	p := NewVec3(1, 0, 0).Transform(tr.GetLocal())
	assert.True(t, p.Compare(NewVec3(3, 2, 3), 1e-6), "got %v", p)

	child := NewTransformAt(NewVec3(0, 1, 0))
	child.SetParent(tr)
	p = NewVec3Zero().Transform(child.GetWorld())
	assert.True(t, p.Compare(NewVec3(1, 4, 3), 1e-6), "got %v", p)

	grandchild := NewTransformAt(NewVec3(1, 0, 0))
	grandchild.SetParent(child)
	p = NewVec3Zero().Transform(grandchild.GetWorld())
	assert.True(t, p.Compare(NewVec3(3, 4, 3), 1e-6), "got %v", p)

	var none *Transform
	assert.Equal(t, NewMat4Identity(), none.GetLocal())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 3, Clamp(7, 0, 3))
	assert.Equal(t, float32(0), Clamp[float32](-1, 0, 1))
}
