package metadata

import (
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle() *Geometry {
	return NewGeometry(gputypes.PrimitiveTopologyTriangleList, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint16{0, 1, 2})
}

func TestStateIDsAreUniqueAcrossCategories(t *testing.T) {
	seen := map[StateID]bool{}
	states := []State{triangle(), &Stage{}, &Layer{}, NewModes(), NewDepthBuf(), NewPhongMaterial(math.NewVec3One())}
	for _, s := range states {
		id := s.StateID()
		assert.NotZero(t, id)
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
		// stable once assigned
		assert.Equal(t, id, s.StateID())
	}
}

func TestRenderContextHash(t *testing.T) {
	a := NewRenderContext()
	a.Geometry = triangle()
	b := NewRenderContext()
	b.Geometry = triangle()

	// different instances, same shader relevant configuration
	assert.Equal(t, a.Hash(), b.Hash())
	assert.Len(t, strings.Split(a.Hash(), HashSeparator), 9, "billboard hash contributes its own separators")

	b.Geometry.Normals = []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}
	assert.NotEqual(t, a.Hash(), b.Hash())

	// state that does not affect shaders does not affect the hash
	c := NewRenderContext()
	c.Geometry = triangle()
	c.Modes.Transparent = true
	c.Stage.Priority = 3
	c.DepthBuf.DepthFunc = gputypes.CompareFunctionAlways
	assert.Equal(t, a.Hash(), c.Hash())

	c.Lights = NewLights(NewAmbientLight(math.NewVec3One(), 1), NewDirLight(math.NewVec3(0, 0, -1), math.NewVec3One(), 1, LightSpaceView))
	assert.NotEqual(t, a.Hash(), c.Hash())
}

func TestRenderContextHashWithEmptySlots(t *testing.T) {
	rc := &RenderContext{}
	assert.Equal(t, ";;;;;;", rc.Hash())
}

func TestLightsAmbientLastWins(t *testing.T) {
	lights := NewLights(
		NewAmbientLight(math.NewVec3(1, 0, 0), 1),
		NewDirLight(math.NewVec3(0, -1, 0), math.NewVec3One(), 1, LightSpaceWorld),
		NewAmbientLight(math.NewVec3(0, 1, 0), 0.5),
	)
	ambient, ok := lights.Ambient()
	require.True(t, ok)
	assert.Equal(t, math.NewVec3(0, 0.5, 0), ambient)

	_, ok = NewLights().Ambient()
	assert.False(t, ok)
	assert.Equal(t, "a,dw,a,", lights.Hash())
}

func TestShaderDigest(t *testing.T) {
	s := NewShader("glow.wgsl", "fn a() {}")
	first := s.Hash()
	assert.NotEmpty(t, first)
	assert.Equal(t, first, NewShader("", "fn a() {}").Hash())

	s.SetSource("fn b() {}")
	assert.NotEqual(t, first, s.Hash())
	assert.Empty(t, (&Shader{}).Hash())
}

func TestBillboardHash(t *testing.T) {
	assert.Equal(t, ";;", (&Billboard{}).Hash())
	assert.Equal(t, "a;s;", (&Billboard{Active: true, Spherical: true}).Hash())
}

func TestTransformNormalMatrix(t *testing.T) {
	tr := NewTransform(math.NewMat4Scale(math.NewVec3(2, 2, 2)))
	n := tr.NormalMatrix()
	assert.InDelta(t, 0.5, n.Data[0], 1e-6)

	tr.SetMatrix(math.NewMat4Identity())
	assert.True(t, tr.NormalMatrix().Compare(math.NewMat4Identity(), 1e-6))
}

func TestProgramValidity(t *testing.T) {
	ok := func(kind ProgramKind) *GPUProgram {
		return &GPUProgram{Kind: kind, Allocated: true, Compiled: true, Linked: true, Validated: true}
	}
	p := &Program{Draw: ok(ProgramKindDraw), PickObject: ok(ProgramKindPickObject), PickPrimitive: ok(ProgramKindPickPrimitive)}
	assert.True(t, p.Valid())
	assert.Empty(t, p.ErrorLog())

	p.PickObject = &GPUProgram{Kind: ProgramKindPickObject, Allocated: true, ErrorLog: []string{"unexpected token"}}
	assert.False(t, p.Valid())
	assert.Equal(t, []string{"pickObject: unexpected token"}, p.ErrorLog())
	assert.Equal(t, p.PickObject, p.Variant(ProgramKindPickObject))
}

func TestGeometryHelpers(t *testing.T) {
	g := triangle()
	assert.Equal(t, 1, g.TriangleCount())
	assert.Equal(t, 3, g.VertexCount())
	a, b, c := g.Triangle(0)
	assert.Equal(t, math.NewVec3(0, 0, 0), a)
	assert.Equal(t, math.NewVec3(1, 0, 0), b)
	assert.Equal(t, math.NewVec3(0, 1, 0), c)

	assert.Equal(t, "TriangleList", g.Hash())
	g.GenerateNormals()
	assert.Equal(t, math.NewVec3(0, 0, 1), g.Normal(1))
	assert.Equal(t, "TriangleList,n", g.Hash())
}

func TestGeometryTriangleIndexesWholeTriangles(t *testing.T) {
	quad := NewGeometry(gputypes.PrimitiveTopologyTriangleList,
		[]float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		[]uint16{0, 1, 2, 0, 2, 3})
	assert.Equal(t, 2, quad.TriangleCount())

	a, b, c := quad.Triangle(1)
	assert.Equal(t, math.NewVec3(0, 0, 0), a)
	assert.Equal(t, math.NewVec3(1, 1, 0), b)
	assert.Equal(t, math.NewVec3(0, 1, 0), c)

	quad.Indices = nil
	quad.Positions = append(quad.Positions[:9:9], 5, 5, 5, 6, 6, 6, 7, 7, 7)
	a, b, c = quad.Triangle(1)
	assert.Equal(t, math.NewVec3(5, 5, 5), a)
	assert.Equal(t, math.NewVec3(6, 6, 6), b)
	assert.Equal(t, math.NewVec3(7, 7, 7), c)
}

func TestRenderContextWithDefaults(t *testing.T) {
	defaults := NewRenderContext()
	modes := NewModes()
	rc := &RenderContext{Modes: modes}

	filled := rc.WithDefaults(defaults)
	assert.Same(t, modes, filled.Modes)
	assert.Same(t, defaults.Lights, filled.Lights)
	assert.Same(t, defaults.DepthBuf, filled.DepthBuf)
	assert.Equal(t, defaults.Material, filled.Material)
	assert.Nil(t, filled.Geometry)
	// the input is left alone
	assert.Nil(t, rc.Lights)
}
