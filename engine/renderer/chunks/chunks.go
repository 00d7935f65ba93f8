// Package chunks holds the state application units bound to each of an
// object's fifteen slots.
package chunks

import (
	"maps"
	"slices"

	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

/** @brief Anything chunk types can be registered with. */
type Registry interface {
	CreateChunkType(t renderer.ChunkType) error
}

// Types returns the descriptors of every built-in chunk type.
func Types() []renderer.ChunkType {
	return []renderer.ChunkType{
		{Name: renderer.ChunkProgram, New: newProgramChunk},
		{Name: renderer.ChunkModelTransform, New: newModelTransformChunk},
		{Name: renderer.ChunkViewTransform, New: newViewTransformChunk},
		{Name: renderer.ChunkProjTransform, New: newProjTransformChunk},
		{Name: renderer.ChunkModes, New: newModesChunk},
		{Name: renderer.ChunkShader, New: newShaderChunk},
		{Name: renderer.ChunkShaderParams, New: newShaderParamsChunk},
		// Depth and stencil configuration is global device state, there is
		// no need to re-apply it after a program switch.
		{Name: renderer.ChunkDepthBuf, ProgramGlobal: true, New: newDepthStencilChunk},
		{Name: renderer.ChunkColorBuf, New: newColorBufChunk},
		{Name: renderer.ChunkLights, New: newLightsChunk},
		{Name: metadata.MaterialTypePhong, New: newPhongMaterialChunk},
		{Name: metadata.MaterialTypeLambert, New: newLambertMaterialChunk},
		{Name: renderer.ChunkClips, New: newClipsChunk},
		{Name: renderer.ChunkViewport, New: newViewportChunk},
		{Name: renderer.ChunkGeometry, New: newGeometryChunk},
		{Name: renderer.ChunkDraw, Unique: true, New: newDrawChunk},
	}
}

// Register adds every built-in chunk type to r.
func Register(r Registry) error {
	for _, t := range Types() {
		if err := r.CreateChunkType(t); err != nil {
			return err
		}
	}
	return nil
}

// setUniforms applies params in name order so device call sequences are stable.
func setUniforms(device renderer.Device, params map[string]interface{}) {
	for _, name := range slices.Sorted(maps.Keys(params)) {
		device.SetUniform(name, params[name])
	}
}
