package engine

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
	"github.com/spaghettifunk/anima/engine/systems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passCompiler struct{}

func (passCompiler) Compile(label, source string) ([]uint32, error) {
	return []uint32{0x07230203}, nil
}

func quad() *metadata.Geometry {
	g := metadata.NewGeometry(gputypes.PrimitiveTopologyTriangleList,
		[]float32{-1, -1, 0, 1, -1, 0, 1, 1, 0, -1, 1, 0},
		[]uint16{0, 1, 2, 0, 2, 3})
	g.GenerateNormals()
	return g
}

// newEngine initializes an engine on a 16x16 canvas. init runs as the game's
// initialize callback.
func newEngine(t *testing.T, assetDir string, init func(sm *systems.SystemManager) error) (*Engine, *Game) {
	t.Helper()
	config := core.DefaultEngineConfig()
	config.Width, config.Height = 16, 16
	config.LogLevel = "warn"
	config.ShaderDir = assetDir
	g := &Game{Config: config}
	g.FnInitialize = func() error {
		if init == nil {
			return nil
		}
		return init(g.SystemManager)
	}
	e, err := New(g)
	require.NoError(t, err)
	e.Compiler = passCompiler{}
	require.NoError(t, e.Initialize())
	return e, g
}

func buildQuad(sm *systems.SystemManager, id string, rc *metadata.RenderContext) error {
	if rc == nil {
		rc = &metadata.RenderContext{}
	}
	rc.Geometry = quad()
	_, err := sm.RendererSystem.BuildObject(rc, id)
	return err
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	config := core.DefaultEngineConfig()
	config.Width = 0
	_, err := New(&Game{Config: config})
	assert.ErrorIs(t, err, core.ErrConfig)
}

func TestRunFrames(t *testing.T) {
	var updates, renders int
	e, g := newEngine(t, "", func(sm *systems.SystemManager) error {
		return buildQuad(sm, "quad", nil)
	})
	g.FnUpdate = func(float64) error { updates++; return nil }
	g.FnRender = func(float64) error { renders++; return nil }

	assert.Error(t, (&Engine{}).Run(), "not initialized")

	e.Platform().MaxFrames = 3
	require.NoError(t, e.Run())
	assert.Equal(t, 3, updates)
	assert.Equal(t, 3, renders)
	// nothing changed after the first frame
	assert.Equal(t, uint64(1), g.SystemManager.RendererSystem.FrameCount())

	center := math.NewVec2(8, 8)
	hit := g.SystemManager.RendererSystem.Pick(metadata.PickParams{CanvasPos: &center})
	require.NotNil(t, hit)
	assert.Equal(t, "quad", hit.Entity)

	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, e.SavePNG(path))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())

	require.NoError(t, e.Shutdown())
}

func TestQuitStopsTheLoop(t *testing.T) {
	var updates int
	e, g := newEngine(t, "", nil)
	g.FnUpdate = func(float64) error { updates++; return nil }

	e.Quit()
	require.NoError(t, e.Run())
	assert.Zero(t, updates)
	require.NoError(t, e.Shutdown())
}

func TestResizeEvent(t *testing.T) {
	var resized [2]uint32
	e, g := newEngine(t, "", nil)
	g.FnOnResize = func(w, h uint32) error { resized = [2]uint32{w, h}; return nil }

	assert.True(t, e.Events().Fire(core.EVENT_CODE_RESIZED, nil, core.EventContext{U32: [4]uint32{32, 8}}))
	assert.Equal(t, [2]uint32{32, 8}, resized)
	w, h := e.GetFramebufferSize()
	assert.Equal(t, uint32(32), w)
	assert.Equal(t, uint32(8), h)
	dw, dh := e.Platform().Device.DrawingBufferSize()
	assert.Equal(t, 32, dw)
	assert.Equal(t, 8, dh)
	assert.True(t, g.SystemManager.RendererSystem.Dirty().Image)
	assert.Equal(t, float32(4), g.SystemManager.CameraSystem.GetDefault().Aspect)

	assert.False(t, e.Events().Fire(core.EVENT_CODE_RESIZED, nil, core.EventContext{U32: [4]uint32{32, 8}}), "same size")
	require.NoError(t, e.Shutdown())
}

func TestLoseContext(t *testing.T) {
	e, g := newEngine(t, "", func(sm *systems.SystemManager) error {
		return buildQuad(sm, "quad", nil)
	})
	require.NoError(t, e.Frame())
	object, ok := g.SystemManager.RendererSystem.Object("quad")
	require.True(t, ok)
	program := object.Program

	e.LoseContext()
	assert.True(t, g.SystemManager.RendererSystem.Dirty().Image)
	assert.Same(t, program, object.Program, "programs keep their identity")
	assert.True(t, program.Valid())

	require.NoError(t, e.Frame())
	center := math.NewVec2(8, 8)
	hit := g.SystemManager.RendererSystem.Pick(metadata.PickParams{CanvasPos: &center})
	require.NotNil(t, hit)
	assert.Equal(t, "quad", hit.Entity)
	require.NoError(t, e.Shutdown())
}

func TestShaderHotReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tint.wgsl")
	require.NoError(t, os.WriteFile(path, []byte("// v1"), 0o644))

	e, g := newEngine(t, dir, func(sm *systems.SystemManager) error {
		shader, err := sm.ShaderSystem.GetShader("tint")
		if err != nil {
			return err
		}
		if err := buildQuad(sm, "tinted", &metadata.RenderContext{Shader: shader}); err != nil {
			return err
		}
		return buildQuad(sm, "plain", nil)
	})
	rs := g.SystemManager.RendererSystem
	tinted, _ := rs.Object("tinted")
	plain, _ := rs.Object("plain")
	tintedHash, plainHash := tinted.Hash, plain.Hash

	require.NoError(t, os.WriteFile(path, []byte("// v2"), 0o644))
	assert.True(t, e.Events().Fire(core.EVENT_CODE_SHADER_SOURCE_CHANGED, nil, core.EventContext{Path: path}))

	tinted, ok := rs.Object("tinted")
	require.True(t, ok)
	assert.NotEqual(t, tintedHash, tinted.Hash)
	assert.Equal(t, "// v2", tinted.Program.Draw.Source)
	plain, _ = rs.Object("plain")
	assert.Equal(t, plainHash, plain.Hash)

	// an unchanged source is not handled
	assert.False(t, e.Events().Fire(core.EVENT_CODE_SHADER_SOURCE_CHANGED, nil, core.EventContext{Path: path}))
	require.NoError(t, e.Shutdown())
}

func TestMaterialHotReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paint.amt")
	require.NoError(t, os.WriteFile(path, []byte("type = \"lambert\"\n"), 0o644))

	e, g := newEngine(t, dir, func(sm *systems.SystemManager) error {
		material, err := sm.MaterialSystem.Acquire("paint")
		if err != nil {
			return err
		}
		return buildQuad(sm, "painted", &metadata.RenderContext{Material: material})
	})
	rs := g.SystemManager.RendererSystem
	require.NoError(t, e.Frame())
	object, _ := rs.Object("painted")
	lambert := object.State.Material.(*metadata.LambertMaterial)
	hash := object.Hash

	// same type: updated in place, no rebuild
	require.NoError(t, os.WriteFile(path, []byte("type = \"lambert\"\ndiffuse = [0.2, 0.4, 0.6]\n"), 0o644))
	e.reloadMaterial("paint")
	assert.True(t, rs.Dirty().Image)
	assert.False(t, rs.Dirty().StateOrder)
	assert.InDelta(t, 0.4, lambert.Color.Y, 1e-6)

	// another type selects another program
	require.NoError(t, os.WriteFile(path, []byte("type = \"phong\"\n"), 0o644))
	e.reloadMaterial("paint")
	object, ok := rs.Object("painted")
	require.True(t, ok)
	assert.IsType(t, &metadata.PhongMaterial{}, object.State.Material)
	assert.NotEqual(t, hash, object.Hash)
	assert.True(t, rs.Dirty().StateOrder)

	g.SystemManager.MaterialSystem.Release("paint")
	require.NoError(t, e.Shutdown())
}
