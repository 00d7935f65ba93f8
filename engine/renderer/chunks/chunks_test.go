package chunks

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
	"github.com/spaghettifunk/anima/engine/renderer/renderertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registry struct {
	types map[string]renderer.ChunkType
	fail  error
}

func (r *registry) CreateChunkType(t renderer.ChunkType) error {
	if r.fail != nil {
		return r.fail
	}
	r.types[t.Name] = t
	return nil
}

func chunk(t *testing.T, name string, program *metadata.Program, state metadata.State) *renderer.Chunk {
	t.Helper()
	for _, ct := range Types() {
		if ct.Name == name {
			return renderer.NewChunk(1, &ct, program, state)
		}
	}
	require.FailNow(t, "no chunk type", name)
	return nil
}

func frame() (*renderertest.Device, *renderer.FrameContext) {
	device := renderertest.NewDevice(32, 16)
	return device, renderer.NewFrameContext(device)
}

func quad() *metadata.Geometry {
	g := metadata.NewGeometry(gputypes.PrimitiveTopologyTriangleList,
		[]float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		[]uint16{0, 1, 2, 0, 2, 3})
	g.GenerateNormals()
	return g
}

func TestRegister(t *testing.T) {
	r := &registry{types: make(map[string]renderer.ChunkType)}
	require.NoError(t, Register(r))
	assert.Len(t, r.types, 16)
	assert.True(t, r.types[renderer.ChunkDepthBuf].ProgramGlobal)
	assert.True(t, r.types[renderer.ChunkDraw].Unique)
	assert.Contains(t, r.types, metadata.MaterialTypePhong)
	assert.Contains(t, r.types, metadata.MaterialTypeLambert)

	boom := errors.New("boom")
	assert.ErrorIs(t, Register(&registry{fail: boom}), boom)
}

func TestProgramChunkBindsVariantPerPass(t *testing.T) {
	device, ctx := frame()
	program := &metadata.Program{
		Draw:          &metadata.GPUProgram{Handle: 1},
		PickObject:    &metadata.GPUProgram{Handle: 2},
		PickPrimitive: &metadata.GPUProgram{Handle: 3},
	}
	c := chunk(t, renderer.ChunkProgram, program, nil)

	ctx.TextureUnit = 1
	c.Drawer.Draw(ctx)
	c.Drawer.Draw(ctx)
	assert.Zero(t, ctx.TextureUnit)
	c.ObjectPicker.PickObject(ctx)
	c.PrimitivePicker.PickPrimitive(ctx)

	calls := device.Named("UseProgram")
	require.Len(t, calls, 3)
	assert.Equal(t, metadata.ProgramHandle(1), calls[0].Args[0])
	assert.Equal(t, metadata.ProgramHandle(2), calls[1].Args[0])
	assert.Equal(t, metadata.ProgramHandle(3), calls[2].Args[0])
	assert.Equal(t, 3, ctx.Stats.UseProgram)
}

func TestTransformChunksUsePickMatrices(t *testing.T) {
	device, ctx := frame()
	view := metadata.NewTransform(math.NewMat4Translation(math.NewVec3(1, 2, 3)))
	c := chunk(t, renderer.ChunkViewTransform, nil, view)

	c.Drawer.Draw(ctx)
	assert.Equal(t, view.Matrix(), device.Uniforms[renderer.UniformViewMatrix])
	assert.Contains(t, device.Uniforms, renderer.UniformViewNormalMatrix)

	pick := math.NewMat4Scale(math.NewVec3(2, 2, 2))
	ctx.PickViewMatrix = &pick
	c.ObjectPicker.PickObject(ctx)
	assert.Equal(t, pick, device.Uniforms[renderer.UniformViewMatrix])

	proj := metadata.NewIdentityTransform()
	p := chunk(t, renderer.ChunkProjTransform, nil, proj)
	p.PrimitivePicker.PickPrimitive(ctx)
	assert.Equal(t, proj.Matrix(), device.Uniforms[renderer.UniformProjMatrix])
	ctx.PickProjMatrix = &pick
	p.PrimitivePicker.PickPrimitive(ctx)
	assert.Equal(t, pick, device.Uniforms[renderer.UniformProjMatrix])
}

func TestModesChunkTogglesBlendOnce(t *testing.T) {
	device, ctx := frame()
	modes := metadata.NewModes()
	modes.Transparent = true
	modes.Backfaces = false
	c := chunk(t, renderer.ChunkModes, nil, modes)

	c.Drawer.Draw(ctx)
	c.Drawer.Draw(ctx)
	assert.True(t, ctx.Transparent)
	assert.True(t, ctx.BlendEnabled)
	assert.False(t, ctx.Backfaces)
	assert.Equal(t, []renderertest.Call{
		{Name: "Enable", Args: []interface{}{renderer.CapCullFace}},
		{Name: "CullFace", Args: []interface{}{gputypes.CullModeBack}},
		{Name: "Enable", Args: []interface{}{renderer.CapBlend}},
		{Name: "BlendState", Args: []interface{}{gputypes.BlendStateAlpha()}},
	}, device.Calls[:4])
	assert.Equal(t, 2, device.Count("Enable"))

	opaque := chunk(t, renderer.ChunkModes, nil, metadata.NewModes())
	opaque.Drawer.Draw(ctx)
	assert.False(t, ctx.Transparent)
	assert.False(t, ctx.BlendEnabled)
	assert.True(t, ctx.Backfaces)
	assert.Equal(t, 2, device.Count("Disable"))
}

func TestDepthStencilChunkSkipsRedundantCalls(t *testing.T) {
	device, ctx := frame()
	stencil := metadata.NewStencilBuf()
	stencil.Active = true
	stencil.Clear = true
	stencil.Front.Compare = gputypes.CompareFunctionEqual
	stencil.Front.Ref = 1
	pair := &metadata.DepthStencil{Depth: metadata.NewDepthBuf(), Stencil: stencil}
	c := chunk(t, renderer.ChunkDepthBuf, nil, pair)

	c.Drawer.Draw(ctx)
	assert.Equal(t, 1, device.Count("ClearDepth"), "clear depth starts unset")
	assert.Zero(t, device.Count("DepthFunc"))
	assert.Equal(t, 1, device.Count("Enable"))
	assert.Equal(t, 1, device.Count("StencilFunc"))
	assert.Zero(t, device.Count("StencilOp"))
	assert.Equal(t, 1, device.Count("Clear"))

	device.ResetCalls()
	c.ObjectPicker.PickObject(ctx)
	assert.Equal(t, []string{"Clear"}, names(device.Calls))

	device.ResetCalls()
	other := &metadata.DepthStencil{Depth: &metadata.DepthBuf{DepthFunc: gputypes.CompareFunctionLessEqual, ClearDepth: 1}}
	chunk(t, renderer.ChunkDepthBuf, nil, other).Drawer.Draw(ctx)
	assert.Equal(t, []string{"Disable", "DepthFunc", "DepthMask"}, names(device.Calls))
	assert.True(t, ctx.StencilTestEnabled, "pair without stencil leaves stencil state alone")
}

func names(calls []renderertest.Call) []string {
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Name)
	}
	return out
}

func TestColorBufChunk(t *testing.T) {
	device, ctx := frame()
	buf := metadata.NewColorBuf()
	buf.ColorMask = gputypes.ColorWriteMaskRed
	c := chunk(t, renderer.ChunkColorBuf, nil, buf)

	c.Drawer.Draw(ctx)
	assert.Equal(t, []string{"ColorMask"}, names(device.Calls))

	device.ResetCalls()
	ctx.Transparent = true
	c.Drawer.Draw(ctx)
	assert.Equal(t, []string{"Enable"}, names(device.Calls), "transparent objects keep blending")

	device.ResetCalls()
	buf.BlendEnabled = true
	buf.Blend = gputypes.BlendStateReplace()
	ctx.Blend = gputypes.BlendStateAlpha()
	c.Drawer.Draw(ctx)
	assert.Equal(t, []string{"BlendState"}, names(device.Calls))
}

func TestLightsChunkIndexesNonAmbientLights(t *testing.T) {
	device, ctx := frame()
	lights := metadata.NewLights(
		metadata.NewAmbientLight(math.NewVec3(1, 0, 0), 1),
		metadata.NewDirLight(math.NewVec3(0, 0, -1), math.NewVec3(1, 1, 1), 0.5, metadata.LightSpaceView),
		metadata.NewAmbientLight(math.NewVec3(0, 0.5, 0), 2),
		metadata.NewPointLight(math.NewVec3(0, 5, 0), math.NewVec3(0, 0, 1), 1, metadata.LightSpaceWorld),
	)
	chunk(t, renderer.ChunkLights, nil, lights).Drawer.Draw(ctx)

	assert.Equal(t, math.NewVec3(0, 1, 0), device.Uniforms[renderer.UniformAmbientColor])
	assert.Equal(t, math.NewVec3(0.5, 0.5, 0.5), device.Uniforms["lightColor[0]"])
	assert.Equal(t, math.NewVec3(0, 0, -1), device.Uniforms["lightDir[0]"])
	assert.Equal(t, math.NewVec3(0, 5, 0), device.Uniforms["lightPos[1]"])
	assert.Equal(t, math.NewVec3(1, 0, 0), device.Uniforms["lightAttenuation[1]"])
	assert.NotContains(t, device.Uniforms, "lightColor[2]")
}

func TestMaterialChunks(t *testing.T) {
	device, ctx := frame()
	phong := metadata.NewPhongMaterial(math.NewVec3(1, 0, 0))
	phong.DiffuseMap = metadata.NewTexture(1, 1, []uint8{255, 255, 255, 255})
	c := chunk(t, metadata.MaterialTypePhong, nil, phong)

	c.Drawer.Draw(ctx)
	c.Drawer.Draw(ctx)
	c.Drawer.Draw(ctx)
	assert.Equal(t, 1, device.Count("CreateTexture"))
	assert.Equal(t, 3, ctx.Stats.BindTexture)
	units := device.Named("BindTexture")
	assert.Equal(t, []interface{}{0, 1, 0}, []interface{}{units[0].Args[0], units[1].Args[0], units[2].Args[0]})
	assert.Equal(t, math.NewVec3(1, 0, 0), device.Uniforms[renderer.UniformMaterialDiffuse])
	assert.Equal(t, float32(30), device.Uniforms[renderer.UniformMaterialShininess])

	c.Restorer.Restore(device)
	assert.Zero(t, phong.DiffuseMap.Handle)

	lambert := metadata.NewLambertMaterial(math.NewVec3(0, 0, 1))
	chunk(t, metadata.MaterialTypeLambert, nil, lambert).Drawer.Draw(ctx)
	assert.Equal(t, math.NewVec3(0, 0, 1), device.Uniforms[renderer.UniformMaterialDiffuse])
}

func TestShaderChunks(t *testing.T) {
	device, ctx := frame()
	shader := metadata.NewShader("", "@vertex fn vs_main() {}")
	shader.Params["glow"] = float32(1)
	params := metadata.NewShaderParams()
	params.Params["glow"] = float32(2)
	params.Params["alpha"] = float32(0.5)

	chunk(t, renderer.ChunkShader, nil, shader).Drawer.Draw(ctx)
	chunk(t, renderer.ChunkShaderParams, nil, params).Drawer.Draw(ctx)

	calls := device.Named("SetUniform")
	require.Len(t, calls, 3)
	assert.Equal(t, "alpha", calls[1].Args[0], "params are applied in name order")
	assert.Equal(t, float32(2), device.Uniforms["glow"])

	device.ResetCalls()
	chunk(t, renderer.ChunkShader, nil, &metadata.Shader{Params: shader.Params}).Drawer.Draw(ctx)
	assert.Empty(t, device.Calls, "generated programs take no shader defaults")
}

func TestClipsAndViewportChunks(t *testing.T) {
	device, ctx := frame()
	clips := metadata.NewClips(metadata.Clip{Mode: metadata.ClipModeInside, Pos: math.NewVec3(0, 1, 0), Dir: math.NewVec3(0, 1, 0)})
	chunk(t, renderer.ChunkClips, nil, clips).ObjectPicker.PickObject(ctx)
	assert.Equal(t, int32(metadata.ClipModeInside), device.Uniforms["clipMode[0]"])

	viewport := metadata.NewViewport()
	v := chunk(t, renderer.ChunkViewport, nil, viewport)
	v.Drawer.Draw(ctx)
	viewport.AutoBoundary = false
	viewport.Boundary = [4]int32{1, 2, 3, 4}
	v.Drawer.Draw(ctx)
	calls := device.Named("Viewport")
	assert.Equal(t, []interface{}{int32(0), int32(0), int32(32), int32(16)}, calls[0].Args)
	assert.Equal(t, []interface{}{int32(1), int32(2), int32(3), int32(4)}, calls[1].Args)
}

func TestGeometryChunkUploadsOnce(t *testing.T) {
	device, ctx := frame()
	g := quad()
	c := chunk(t, renderer.ChunkGeometry, nil, g)

	c.Drawer.Draw(ctx)
	c.Drawer.Draw(ctx)
	c.ObjectPicker.PickObject(ctx)
	assert.Equal(t, 3, device.Count("CreateBuffer"), "positions, normals and indices")
	assert.True(t, g.Buffers.Uploaded)
	assert.Equal(t, 2, ctx.Stats.BindArray)
	assert.Equal(t, 3, device.Count("BindIndices"))

	// a second chunk on another program shares the uploaded buffers
	chunk(t, renderer.ChunkGeometry, &metadata.Program{ID: 4}, g).Drawer.Draw(ctx)
	assert.Equal(t, 3, device.Count("CreateBuffer"))

	c.Restorer.Restore(device)
	assert.False(t, g.Buffers.Uploaded)
	c.Drawer.Draw(ctx)
	assert.Equal(t, 6, device.Count("CreateBuffer"))
}

func TestGeometryChunkPickPrimitiveBuffers(t *testing.T) {
	device, ctx := frame()
	g := quad()
	c := chunk(t, renderer.ChunkGeometry, nil, g)

	c.PrimitivePicker.PickPrimitive(ctx)
	c.PrimitivePicker.PickPrimitive(ctx)
	require.Equal(t, 2, device.Count("CreateBuffer"))

	var positions, colors []float32
	for h, data := range device.Buffers {
		if len(data.([]float32)) == 18 {
			positions = device.Buffers[h].([]float32)
		} else {
			colors = device.Buffers[h].([]float32)
		}
	}
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 0, 0, 1, 1, 0, 0, 1, 0}, positions)
	require.Len(t, colors, 24)
	assert.InDelta(t, 1.0/255, colors[0], 1e-6)
	assert.InDelta(t, 2.0/255, colors[12], 1e-6)

	c.Destroyer.Destroy(device)
	assert.Empty(t, device.Buffers)
}

func TestDrawChunk(t *testing.T) {
	device, ctx := frame()
	g := quad()
	c := chunk(t, renderer.ChunkDraw, nil, g)
	require.True(t, c.Unique())

	c.Drawer.Draw(ctx)
	assert.Equal(t, 1, ctx.Stats.DrawElements)
	assert.Equal(t, []interface{}{gputypes.PrimitiveTopologyTriangleList, 6, gputypes.IndexFormatUint16}, device.Named("DrawElements")[0].Args)

	c.ObjectPicker.PickObject(ctx)
	c.ObjectPicker.PickObject(ctx)
	assert.Equal(t, 2, ctx.PickIndex)
	assert.Equal(t, renderer.PickColorVec4([4]uint8{2, 0, 0, 255}), device.Uniforms[renderer.UniformPickColor])

	c.PrimitivePicker.PickPrimitive(ctx)
	assert.Equal(t, []interface{}{gputypes.PrimitiveTopologyTriangleList, 0, 6}, device.Named("DrawArrays")[0].Args)

	lines := metadata.NewGeometry(gputypes.PrimitiveTopologyLineList, []float32{0, 0, 0, 1, 1, 1}, nil)
	l := chunk(t, renderer.ChunkDraw, nil, lines)
	l.PrimitivePicker.PickPrimitive(ctx)
	l.Drawer.Draw(ctx)
	calls := device.Named("DrawArrays")
	require.Len(t, calls, 2)
	assert.Equal(t, []interface{}{gputypes.PrimitiveTopologyLineList, 0, 2}, calls[1].Args)
}

func TestPickColorRoundTrip(t *testing.T) {
	for _, v := range []int{1, 255, 256, 65535, 1 << 20, 1<<24 + 7} {
		assert.Equal(t, v, renderer.DecodePickColor(renderer.EncodePickColor(v), true))
	}
	assert.Equal(t, 7, renderer.DecodePickColor(renderer.EncodePickColor(1<<24+7), false))
}
