package shadergen

import (
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func litContext() *metadata.RenderContext {
	rc := metadata.NewRenderContext()
	rc.Geometry = metadata.NewGeometry(gputypes.PrimitiveTopologyTriangleList, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint16{0, 1, 2})
	rc.Geometry.GenerateNormals()
	rc.Lights = metadata.NewLights(
		metadata.NewAmbientLight(math.NewVec3(1, 1, 1), 0.2),
		metadata.NewDirLight(math.NewVec3(0, 0, -1), math.NewVec3(1, 1, 1), 1, metadata.LightSpaceView),
		metadata.NewPointLight(math.NewVec3(0, 3, 0), math.NewVec3(1, 1, 1), 1, metadata.LightSpaceWorld),
	)
	return rc
}

func TestFeaturesOf(t *testing.T) {
	rc := litContext()
	rc.Clips = metadata.NewClips(metadata.Clip{Mode: metadata.ClipModeOutside})
	rc.Billboard = &metadata.Billboard{Active: true, Spherical: true}
	rc.Stationary = &metadata.Stationary{Active: true}

	f := FeaturesOf(rc)
	assert.True(t, f.Normals)
	assert.False(t, f.UV)
	assert.Equal(t, metadata.MaterialTypePhong, f.Material)
	assert.Equal(t, []renderer.LightFeature{
		{Type: metadata.LightTypeDirectional},
		{Type: metadata.LightTypePoint, World: true},
	}, f.Lights)
	assert.Equal(t, 1, f.Clips)
	assert.True(t, f.Billboard)
	assert.True(t, f.SphericalBillboard)
	assert.True(t, f.Stationary)
	assert.False(t, f.Custom)

	// a diffuse map without texture coordinates cannot be sampled
	phong := metadata.NewPhongMaterial(math.NewVec3(1, 1, 1))
	phong.DiffuseMap = metadata.NewTexture(1, 1, []uint8{0, 0, 0, 0})
	rc.Material = phong
	assert.False(t, FeaturesOf(rc).DiffuseMap)
	rc.Geometry.UV = []float32{0, 0, 1, 0, 0, 1}
	assert.True(t, FeaturesOf(rc).DiffuseMap)
}

func TestEqualHashesGiveEqualSources(t *testing.T) {
	a, b := litContext(), litContext()
	require.Equal(t, a.Hash(), b.Hash())
	sa, err := GenerateAll("p", a)
	require.NoError(t, err)
	sb, err := GenerateAll("p", b)
	require.NoError(t, err)
	assert.Equal(t, sa, sb)
}

func TestGenerateDraw(t *testing.T) {
	rc := litContext()
	src, err := Generate(metadata.ProgramKindDraw, "lit", FeaturesOf(rc))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(src, "// lit"))
	assert.Contains(t, src, "fn vs_main(in: VertexInput)")
	assert.Contains(t, src, "fn fs_main(in: VertexOutput)")
	assert.Contains(t, src, "@location(1) normal: vec3<f32>")
	assert.NotContains(t, src, "@location(2) uv")
	assert.Contains(t, src, "color: array<vec4<f32>, 2>")
	assert.Contains(t, src, "let l0 = normalize(-lights.dir[0].xyz);")
	assert.Contains(t, src, "let lp1 = (transforms.viewMatrix * vec4<f32>(lights.pos[1].xyz, 1.0)).xyz;")
	assert.Contains(t, src, "material.shininess", "phong adds a specular term")
	assert.NotContains(t, src, "clipped(")
	assert.NotContains(t, src, "mv[0] =")

	rc.Material = metadata.NewLambertMaterial(math.NewVec3(1, 0, 0))
	rc.Lights = metadata.NewLights()
	src, err = Generate(metadata.ProgramKindDraw, "lambert", FeaturesOf(rc))
	require.NoError(t, err)
	assert.NotContains(t, src, "material.shininess")
	assert.Contains(t, src, "color: array<vec4<f32>, 1>", "arrays are never empty")
}

func TestGenerateTransformsAndClips(t *testing.T) {
	f := renderer.ProgramFeatures{Clips: 2, Billboard: true, Stationary: true}
	src, err := Generate(metadata.ProgramKindPickObject, "pick", f)
	require.NoError(t, err)
	assert.Contains(t, src, "view[3] = vec4<f32>(0.0, 0.0, 0.0, 1.0);")
	assert.Contains(t, src, "mv[0] = vec4<f32>(1.0, 0.0, 0.0, mv[0].w);")
	assert.NotContains(t, src, "mv[1] =", "cylindrical billboards keep the up axis")
	assert.Contains(t, src, "mode: array<vec4<i32>, 2>")
	assert.Contains(t, src, "if (clipped(in.worldPos))")
	assert.Contains(t, src, "return pick.color;")

	src, err = Generate(metadata.ProgramKindPickPrimitive, "pick", renderer.ProgramFeatures{})
	require.NoError(t, err)
	assert.Contains(t, src, "@location(4) pickColor: vec4<f32>")
	assert.NotContains(t, src, "struct Clips")

	_, err = Generate(metadata.ProgramKind(9), "bad", f)
	assert.Error(t, err)
}

func TestGenerateAllUsesCustomDrawSource(t *testing.T) {
	rc := litContext()
	rc.Shader = metadata.NewShader("glow.wgsl", "@fragment fn fs_main() {}")
	s, err := GenerateAll("custom", rc)
	require.NoError(t, err)
	assert.True(t, s.Features.Custom)
	assert.Equal(t, rc.Shader.Source, s.Draw)
	assert.Equal(t, s.Draw, s.Source(metadata.ProgramKindDraw))
	assert.Contains(t, s.Source(metadata.ProgramKindPickObject), "pick.color")
	assert.Contains(t, s.Source(metadata.ProgramKindPickPrimitive), "in.pickColor")
}

func TestNagaCompiler(t *testing.T) {
	c := NewNagaCompiler()
	assert.True(t, c.Options.Validate)

	c.Options.Validate = false
	code, err := c.Compile("minimal", `
@vertex
fn main(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}
`)
	require.NoError(t, err)
	require.NotEmpty(t, code)
	assert.Equal(t, uint32(0x07230203), code[0])

	_, err = c.Compile("broken", "@vertex\nfn main( {\n}\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}
