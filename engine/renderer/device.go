package renderer

import (
	"strconv"

	"github.com/gogpu/gputypes"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

type ClearMask uint32

const (
	ClearColorBit   ClearMask = 0x1
	ClearDepthBit   ClearMask = 0x2
	ClearStencilBit ClearMask = 0x4
)

/** @brief Device capabilities toggled by Enable and Disable. */
type Capability int

const (
	CapDepthTest Capability = iota
	CapCullFace
	CapBlend
	CapStencilTest
)

/** @brief Selects which face a stencil call configures. */
type StencilSide int

const (
	StencilFront StencilSide = iota
	StencilBack
)

type BufferKind int

const (
	/** @brief Vertex attribute data, []float32. */
	ArrayBuffer BufferKind = iota
	/** @brief Index data, []uint16. */
	ElementBuffer
)

/** @brief Vertex attribute locations shared by generated shaders and chunks. */
type Attribute int

const (
	AttributePosition Attribute = iota
	AttributeNormal
	AttributeUV
	AttributeColor
	AttributePickColor
)

/** @brief Uniform names shared by generated shaders and chunks. */
const (
	UniformModelMatrix       = "modelMatrix"
	UniformModelNormalMatrix = "modelNormalMatrix"
	UniformViewMatrix        = "viewMatrix"
	UniformViewNormalMatrix  = "viewNormalMatrix"
	UniformProjMatrix        = "projMatrix"
	UniformAmbientColor      = "ambientColor"
	UniformLightColor        = "lightColor"
	UniformLightDir          = "lightDir"
	UniformLightPos          = "lightPos"
	UniformLightAttenuation  = "lightAttenuation"
	UniformMaterialAmbient   = "materialAmbient"
	UniformMaterialDiffuse   = "materialDiffuse"
	UniformMaterialSpecular  = "materialSpecular"
	UniformMaterialEmissive  = "materialEmissive"
	UniformMaterialShininess = "materialShininess"
	UniformMaterialAlpha     = "materialAlpha"
	UniformDiffuseMap        = "diffuseMap"
	UniformClipMode          = "clipMode"
	UniformClipPos           = "clipPos"
	UniformClipDir           = "clipDir"
	UniformClippable         = "clippable"
	UniformPickColor         = "pickColor"
)

// IndexedUniform names the i'th element of an array uniform, e.g. "lightColor[2]".
func IndexedUniform(name string, i int) string {
	return name + "[" + strconv.Itoa(i) + "]"
}

/** @brief A non-ambient light as seen by a generated program. */
type LightFeature struct {
	Type  metadata.LightType
	World bool
}

/**
 * @brief What a generated program does, as derived from an object's state.
 * Devices that cannot run shader code emulate programs from this.
 */
type ProgramFeatures struct {
	Normals    bool
	UV         bool
	Colors     bool
	DiffuseMap bool
	// Material is the material type, empty for unlit programs.
	Material           string
	Lights             []LightFeature
	Clips              int
	Billboard          bool
	SphericalBillboard bool
	Stationary         bool
	// Custom is set when the draw variant comes from a user supplied module.
	Custom bool
}

/** @brief Describes one shader module handed to the device. */
type ProgramDesc struct {
	Kind     metadata.ProgramKind
	Label    string
	Source   string
	Code     []uint32
	Features ProgramFeatures
}

/**
 * @brief The graphics context the renderer drives. Calls are synchronous and
 * must come from the thread that owns the context. Handles are only valid
 * until the context is lost.
 */
type Device interface {
	DrawingBufferSize() (width, height int)
	Viewport(x, y, width, height int32)

	ClearColor(color gputypes.Color)
	ClearDepth(depth float32)
	ClearStencil(value uint32)
	Clear(mask ClearMask)

	Enable(capability Capability)
	Disable(capability Capability)
	DepthFunc(fn gputypes.CompareFunction)
	DepthMask(write bool)
	ColorMask(mask gputypes.ColorWriteMask)
	BlendState(state gputypes.BlendState)
	FrontFace(face gputypes.FrontFace)
	CullFace(mode gputypes.CullMode)
	StencilFunc(side StencilSide, fn gputypes.CompareFunction, ref, mask uint32)
	StencilOp(side StencilSide, sfail, dpfail, dppass gputypes.StencilOperation)

	CreateProgram(desc ProgramDesc) (metadata.ProgramHandle, error)
	DeleteProgram(handle metadata.ProgramHandle)
	UseProgram(handle metadata.ProgramHandle)
	SetUniform(name string, value interface{})

	CreateBuffer(kind BufferKind, data interface{}) (metadata.BufferHandle, error)
	DeleteBuffer(handle metadata.BufferHandle)
	BindAttribute(attribute Attribute, handle metadata.BufferHandle, size int)
	BindIndices(handle metadata.BufferHandle)
	DrawElements(topology gputypes.PrimitiveTopology, count int, format gputypes.IndexFormat)
	DrawArrays(topology gputypes.PrimitiveTopology, first, count int)

	CreateTexture(width, height uint32, pixels []uint8) (metadata.TextureHandle, error)
	DeleteTexture(handle metadata.TextureHandle)
	BindTexture(unit int, handle metadata.TextureHandle)
	MaxTextureUnits() int

	CreateRenderTarget(width, height int) (metadata.TargetHandle, error)
	DeleteRenderTarget(handle metadata.TargetHandle)
	// BindRenderTarget directs drawing into the target. Zero binds the canvas.
	BindRenderTarget(handle metadata.TargetHandle)
	// ReadPixel reads RGBA bytes from the bound target, origin top left.
	ReadPixel(x, y int) [4]uint8
}
