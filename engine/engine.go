package engine

import (
	"fmt"
	"image/png"
	"os"

	"github.com/spaghettifunk/anima/engine/assets"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/platform"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/shadergen"
	"github.com/spaghettifunk/anima/engine/resources"
	"github.com/spaghettifunk/anima/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *core.EngineConfig
	isRunning     bool
	platform      *platform.Platform
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	events        *core.EventBus
	metrics       *core.Metrics
	clock         *core.Clock
	lastTime      float64
	// Compiler overrides the WGSL compiler, mainly for tests.
	Compiler shadergen.Compiler
}

func New(g *Game) (*Engine, error) {
	if g.Config == nil {
		g.Config = core.DefaultEngineConfig()
	}
	if err := g.Config.Validate(); err != nil {
		return nil, err
	}
	level, err := core.ParseLogLevel(g.Config.LogLevel)
	if err != nil {
		return nil, err
	}
	core.SetLogLevel(level)

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError("%s", err)
		return nil, err
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       g.Config,
		platform:     platform.New(),
		assetManager: am,
		events:       core.NewEventBus(),
		metrics:      core.NewMetrics(),
		clock:        core.NewClock(),
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	if err := e.platform.Startup(e.config.Name, e.config.Width, e.config.Height); err != nil {
		return err
	}

	if e.config.ShaderDir != "" {
		if err := e.assetManager.Initialize(e.config.ShaderDir); err != nil {
			return err
		}
	}

	sm, err := systems.NewSystemManager(e.config, e.platform.Device, e.assetManager, e.Compiler)
	if err != nil {
		return err
	}
	e.systemManager = sm
	e.gameInstance.SystemManager = sm
	sm.CameraSystem.Resize(e.config.Width, e.config.Height)

	// register some events
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)
	e.events.Register(core.EVENT_CODE_CONTEXT_RESTORED, e, e.onContextRestored)
	e.events.Register(core.EVENT_CODE_SHADER_SOURCE_CHANGED, e, e.onShaderSourceChanged)

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.config.Width, e.config.Height); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	return nil
}

// Run drives the frame loop until the platform stops it.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine must be initialized before running")
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		if !e.platform.PumpMessages() {
			e.isRunning = false
			break
		}
		if err := e.Frame(); err != nil {
			return err
		}
	}
	return nil
}

// Frame runs a single update and render cycle.
func (e *Engine) Frame() error {
	e.clock.Update()
	currentTime := e.clock.Elapsed()
	delta := currentTime - e.lastTime
	frameStartTime := platform.GetAbsoluteTime()

	e.processAssetEvents()
	e.systemManager.Update()

	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(delta); err != nil {
			core.LogFatal("Game update failed, shutting down.")
			return err
		}
	}
	if e.gameInstance.FnRender != nil {
		if err := e.gameInstance.FnRender(delta); err != nil {
			core.LogFatal("Game render failed, shutting down.")
			return err
		}
	}
	e.systemManager.RendererSystem.Render(systems.RenderParams{})

	e.metrics.Update(platform.GetAbsoluteTime() - frameStartTime)
	e.lastTime = currentTime
	return nil
}

// processAssetEvents hands file changes seen by the watcher to the frame loop.
func (e *Engine) processAssetEvents() {
	for {
		select {
		case ev, ok := <-e.assetManager.Events():
			if !ok {
				return
			}
			if ev.Removed {
				continue
			}
			switch ev.Type {
			case resources.ResourceTypeShader:
				e.events.Fire(core.EVENT_CODE_SHADER_SOURCE_CHANGED, e, core.EventContext{Path: ev.Path})
			case resources.ResourceTypeImage:
				name := assets.AssetName(ev.Path)
				if err := e.systemManager.TextureSystem.Reload(name); err != nil {
					core.LogError("%s", err)
				}
			case resources.ResourceTypeMaterial:
				e.reloadMaterial(assets.AssetName(ev.Path))
			}
		default:
			return
		}
	}
}

// reloadMaterial applies an edited material file. Objects are rebuilt only
// when the material now selects a different program.
func (e *Engine) reloadMaterial(name string) {
	previous, _ := e.systemManager.MaterialSystem.Lookup(name)
	material, rebuild, err := e.systemManager.MaterialSystem.Reload(name)
	if err != nil {
		core.LogError("%s", err)
		return
	}
	if material == nil {
		return
	}
	e.systemManager.RendererSystem.SetImageDirty()
	if !rebuild {
		return
	}
	err = e.systemManager.RendererSystem.RebuildObjects(func(object *renderer.Object) bool {
		if object.State.Material != previous && object.State.Material != material {
			return false
		}
		// the snapshot is rebuilt, so it must hold the current state
		object.State.Material = material
		return true
	})
	if err != nil {
		core.LogError("rebuild after material change: %s", err.Error())
	}
}

// LoseContext simulates the device dropping its context and then coming back.
func (e *Engine) LoseContext() {
	e.events.Fire(core.EVENT_CODE_CONTEXT_LOST, e, core.EventContext{})
	e.platform.Device.LoseContext()
	e.events.Fire(core.EVENT_CODE_CONTEXT_RESTORED, e, core.EventContext{Data: e.platform.Device})
}

// Quit stops the frame loop after the current frame.
func (e *Engine) Quit() {
	e.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
}

// SavePNG writes the current canvas to path.
func (e *Engine) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, e.platform.Device.Image()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("%s", err)
		}
	}
	e.events.Shutdown()
	if err := e.assetManager.Shutdown(); err != nil {
		return err
	}
	if e.systemManager != nil {
		if err := e.systemManager.Shutdown(); err != nil {
			return err
		}
	}
	if err := e.platform.Shutdown(); err != nil {
		return err
	}
	return nil
}

func (e *Engine) Platform() *platform.Platform {
	return e.platform
}

func (e *Engine) Events() *core.EventBus {
	return e.events
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.config.Width, e.config.Height
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, context core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		e.platform.Quit()
		return true
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, context core.EventContext) bool {
	width, height := context.U32[0], context.U32[1]
	if width == 0 || height == 0 || (width == e.config.Width && height == e.config.Height) {
		return false
	}
	e.config.Width, e.config.Height = width, height
	core.LogDebug("Canvas resize: %d, %d", width, height)
	e.platform.Device.Resize(int(width), int(height))
	e.systemManager.CameraSystem.Resize(width, height)
	e.systemManager.RendererSystem.SetImageDirty()
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError("%s", err)
		}
	}
	return true
}

func (e *Engine) onContextRestored(code core.SystemEventCode, sender interface{}, context core.EventContext) bool {
	device, ok := context.Data.(renderer.Device)
	if !ok {
		core.LogError("wrong data associated with the event type `%d`", code)
		return false
	}
	e.systemManager.ContextRestored(device)
	return true
}

// onShaderSourceChanged reloads the shader at context.Path and rebuilds the
// objects drawing with it.
func (e *Engine) onShaderSourceChanged(code core.SystemEventCode, sender interface{}, context core.EventContext) bool {
	changed, err := e.systemManager.ShaderSystem.Reload(context.Path)
	if err != nil {
		core.LogError("%s", err)
	}
	if len(changed) == 0 {
		return false
	}
	err = e.systemManager.RendererSystem.RebuildObjects(func(object *renderer.Object) bool {
		for _, s := range changed {
			if object.State.Shader == s {
				return true
			}
		}
		return false
	})
	if err != nil {
		core.LogError("rebuild after shader change: %s", err.Error())
	}
	return true
}
