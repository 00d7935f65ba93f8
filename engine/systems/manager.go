package systems

import (
	"errors"

	"github.com/spaghettifunk/anima/engine/assets"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/chunks"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
	"github.com/spaghettifunk/anima/engine/renderer/shadergen"
)

type SystemManager struct {
	CameraSystem   *CameraSystem
	GeometrySystem *GeometrySystem
	JobSystem      *JobSystem
	ShaderSystem   *ShaderSystem
	TextureSystem  *TextureSystem
	MaterialSystem *MaterialSystem
	ProgramSystem  *ProgramSystem
	ChunkSystem    *ChunkSystem
	ObjectSystem   *ObjectSystem
	RendererSystem *RendererSystem
}

/**
 * @brief Creates every engine system on top of device. A nil compiler uses
 * the naga WGSL compiler.
 */
func NewSystemManager(config *core.EngineConfig, device renderer.Device, am *assets.AssetManager, compiler shadergen.Compiler) (*SystemManager, error) {
	js, err := NewJobSystem(2, 16)
	if err != nil {
		return nil, err
	}
	cs, err := NewCameraSystem(&CameraSystemConfig{
		MaxCameraCount: 100,
	})
	if err != nil {
		return nil, err
	}
	gs, err := NewGeometrySystem(&GeometrySystemConfig{
		MaxGeometryCount: 1000,
	}, device)
	if err != nil {
		return nil, err
	}
	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: 1000,
		MaxTextureSize:  2048,
	}, js, am, device)
	if err != nil {
		return nil, err
	}
	ms, err := NewMaterialSystem(&MaterialSystemConfig{
		MaxMaterialCount: 1000,
	}, am, ts)
	if err != nil {
		return nil, err
	}
	ssys, err := NewShaderSystem(&ShaderSystemConfig{
		MaxShaderCount: 512,
	}, am)
	if err != nil {
		return nil, err
	}
	ps, err := NewProgramSystem(&ProgramSystemConfig{
		MaxIdlePrograms: config.ProgramPoolSize,
	}, device, compiler)
	if err != nil {
		return nil, err
	}
	chs := NewChunkSystem(device)
	if err := chunks.Register(chs); err != nil {
		return nil, err
	}
	os := NewObjectSystem()
	rs, err := NewRendererSystem(&RendererSystemConfig{
		Transparent: config.Transparent,
	}, device, ps, chs, os)
	if err != nil {
		return nil, err
	}
	// pixels arriving for a texture change the image only
	ts.OnLoaded = func(string, *metadata.Texture) {
		rs.SetImageDirty()
	}

	return &SystemManager{
		CameraSystem:   cs,
		GeometrySystem: gs,
		JobSystem:      js,
		ShaderSystem:   ssys,
		TextureSystem:  ts,
		MaterialSystem: ms,
		ProgramSystem:  ps,
		ChunkSystem:    chs,
		ObjectSystem:   os,
		RendererSystem: rs,
	}, nil
}

// Update runs the callbacks of finished background jobs. Call once per frame
// before rendering.
func (sm *SystemManager) Update() {
	sm.JobSystem.Update()
}

// ContextRestored re-creates every device resource after a lost context.
func (sm *SystemManager) ContextRestored(device renderer.Device) {
	for _, ref := range sm.TextureSystem.RegisteredTextureTable {
		ref.texture.Handle = 0
	}
	sm.TextureSystem.DefaultTexture.Handle = 0
	sm.RendererSystem.ContextRestored(device)
}

func (sm *SystemManager) Shutdown() error {
	var errs []error
	// Background jobs finish before the systems they call back into go away.
	errs = append(errs, sm.JobSystem.Shutdown())
	errs = append(errs, sm.RendererSystem.Shutdown())
	errs = append(errs, sm.ChunkSystem.Shutdown())
	errs = append(errs, sm.ProgramSystem.Shutdown())
	errs = append(errs, sm.ShaderSystem.Shutdown())
	errs = append(errs, sm.MaterialSystem.Shutdown())
	errs = append(errs, sm.TextureSystem.Shutdown())
	errs = append(errs, sm.GeometrySystem.Shutdown())
	errs = append(errs, sm.CameraSystem.Shutdown())
	return errors.Join(errs...)
}
