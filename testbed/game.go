package testbed

import (
	"fmt"

	"github.com/spaghettifunk/anima/engine"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/renderer/components"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
	"github.com/spaghettifunk/anima/engine/systems"
)

type TestGame struct {
	*engine.Game
}

// spinner drives the model transform of a cube from a scene node.
type spinner struct {
	node  *math.Transform
	model *metadata.Transform
}

type gameState struct {
	WorldCamera *components.Camera
	lights      *metadata.Lights

	spin     []spinner
	rotation float32

	hoveredObjectID string
}

// Object ids of the scene.
const (
	FloorID = "floor"
	CubeID  = "cube"
	GlassID = "glass"
)

func NewTestGame(config *core.EngineConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			Config: config,
			State:  &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

// Initialize builds a floor and two cubes, one of them transparent.
func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.SystemManager == nil {
		return fmt.Errorf("the engine is not yet initialized with all the system managers")
	}
	sm := g.SystemManager
	state := g.State.(*gameState)

	camera, err := sm.CameraSystem.Acquire("world")
	if err != nil {
		return err
	}
	camera.SetPosition(math.NewVec3(0, 3, 8))
	camera.SetTarget(math.NewVec3(0, 0.5, 0))
	state.WorldCamera = camera

	state.lights = metadata.NewLights(
		metadata.NewAmbientLight(math.NewVec3(0.1, 0.1, 0.15), 1),
		metadata.NewDirLight(math.NewVec3(-0.5, -1, -0.3), math.NewVec3(1, 1, 1), 0.9, metadata.LightSpaceWorld),
	)

	floor, err := sm.GeometrySystem.AcquireFromConfig(systems.GeneratePlaneConfig(12, 12, 4, 4, 3, 3, FloorID), true)
	if err != nil {
		return err
	}
	cube, err := sm.GeometrySystem.AcquireFromConfig(systems.GenerateCubeConfig(1.5, 1.5, 1.5, 1, 1, CubeID), true)
	if err != nil {
		return err
	}
	if _, err := sm.GeometrySystem.Acquire(CubeID); err != nil {
		return err
	}

	floorMaterial := metadata.NewLambertMaterial(math.NewVec3(0.4, 0.45, 0.4))
	floorModel := metadata.NewTransform(math.NewMat4EulerX(-math.PI / 2))
	if err := g.build(FloorID, floor, floorMaterial, floorModel, nil); err != nil {
		return err
	}

	cubeMaterial := metadata.NewPhongMaterial(math.NewVec3(0.8, 0.3, 0.2))
	cubeMaterial.DiffuseMap = sm.TextureSystem.GetDefaultTexture()
	cubeNode := math.NewTransformAt(math.NewVec3(-1.2, 0.75, 0))
	cubeModel := metadata.NewTransform(cubeNode.GetWorld())
	if err := g.build(CubeID, cube, cubeMaterial, cubeModel, nil); err != nil {
		return err
	}

	glassMaterial := metadata.NewPhongMaterial(math.NewVec3(0.2, 0.4, 0.9))
	glassMaterial.Alpha = 0.5
	glassModes := metadata.NewModes()
	glassModes.Transparent = true
	glassColor := metadata.NewColorBuf()
	glassColor.BlendEnabled = true
	glassNode := math.NewTransformAt(math.NewVec3(1.2, 0.75, 0.5))
	glassModel := metadata.NewTransform(glassNode.GetWorld())
	rc := &metadata.RenderContext{Modes: glassModes, ColorBuf: glassColor}
	if err := g.build(GlassID, cube, glassMaterial, glassModel, rc); err != nil {
		return err
	}

	state.spin = []spinner{{cubeNode, cubeModel}, {glassNode, glassModel}}
	return nil
}

func (g *TestGame) build(id string, geometry *metadata.Geometry, material metadata.Material, model *metadata.Transform, rc *metadata.RenderContext) error {
	state := g.State.(*gameState)
	if rc == nil {
		rc = &metadata.RenderContext{}
	}
	rc.Geometry = geometry
	rc.Material = material
	rc.Lights = state.lights
	rc.ModelTransform = model
	rc.ViewTransform = state.WorldCamera.ViewTransform()
	rc.ProjTransform = state.WorldCamera.ProjTransform()
	_, err := g.SystemManager.RendererSystem.BuildObject(rc, id)
	return err
}

// Update spins the cubes around their own vertical axis.
func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	state.rotation += float32(0.5 * deltaTime)
	for _, s := range state.spin {
		s.node.SetRotation(math.NewVec3(0, state.rotation, 0))
		s.model.SetMatrix(s.node.GetWorld())
	}
	state.WorldCamera.Update()
	g.SystemManager.RendererSystem.SetImageDirty()
	return nil
}

// Render reports which object sits in the middle of the canvas.
func (g *TestGame) Render(deltaTime float64) error {
	state := g.State.(*gameState)
	width, height := g.SystemManager.RendererSystem.Device().DrawingBufferSize()
	center := math.NewVec2(float32(width)/2, float32(height)/2)
	hit := g.SystemManager.RendererSystem.Pick(metadata.PickParams{CanvasPos: &center})
	id := ""
	if hit != nil {
		id = hit.Entity
	}
	if id != state.hoveredObjectID {
		core.LogInfo("object under the canvas centre: %q", id)
		state.hoveredObjectID = id
	}
	return nil
}

// OnResize only asks for a redraw, cameras follow the canvas through the
// camera system.
func (g *TestGame) OnResize(width uint32, height uint32) error {
	core.LogDebug("testbed canvas %dx%d", width, height)
	g.SystemManager.RendererSystem.SetImageDirty()
	return nil
}

func (g *TestGame) HoveredObject() string {
	return g.State.(*gameState).hoveredObjectID
}

func (g *TestGame) Shutdown() error {
	sm := g.SystemManager
	for _, id := range []string{FloorID, CubeID, GlassID} {
		sm.RendererSystem.RemoveObject(id)
	}
	sm.GeometrySystem.Release(FloorID)
	sm.GeometrySystem.Release(CubeID)
	sm.GeometrySystem.Release(CubeID)
	sm.CameraSystem.Release("world")
	return nil
}
