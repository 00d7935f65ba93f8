package metadata

import (
	"strings"

	"github.com/spaghettifunk/anima/engine/math"
)

// HashSeparator joins the state hashes that make up an object's program hash.
const HashSeparator = ";"

var (
	defaultDiffuse = math.NewVec3(1, 1, 1)
	defaultAmbient = math.NewVec3(0.2, 0.2, 0.2)
)

/**
 * @brief The state slots an object is built from. The scene layer assigns
 * slots and then calls BuildObject; the renderer snapshots the slots onto the
 * object so later assignments do not affect objects already built.
 *
 * A nil Geometry builds a non-visual object with no program and no chunks.
 */
type RenderContext struct {
	Geometry       *Geometry
	Material       Material
	Lights         *Lights
	Clips          *Clips
	Modes          *Modes
	ModelTransform *Transform
	ViewTransform  *Transform
	ProjTransform  *Transform
	Viewport       *Viewport
	Stage          *Stage
	Layer          *Layer
	Billboard      *Billboard
	Stationary     *Stationary
	ColorTarget    *RenderTarget
	DepthTarget    *RenderTarget
	Shader         *Shader
	ShaderParams   *ShaderParams
	StencilBuf     *StencilBuf
	ColorBuf       *ColorBuf
	DepthBuf       *DepthBuf
	Visibility     *Visibility
	Cull           *Cull
}

// NewRenderContext returns a context with a default state in every slot
// except Geometry.
func NewRenderContext() *RenderContext {
	return &RenderContext{
		Material:       NewPhongMaterial(defaultDiffuse),
		Lights:         NewLights(NewAmbientLight(defaultAmbient, 1)),
		Clips:          NewClips(),
		Modes:          NewModes(),
		ModelTransform: NewIdentityTransform(),
		ViewTransform:  NewIdentityTransform(),
		ProjTransform:  NewIdentityTransform(),
		Viewport:       NewViewport(),
		Stage:          &Stage{},
		Layer:          &Layer{},
		Billboard:      &Billboard{},
		Stationary:     &Stationary{},
		ColorTarget:    &RenderTarget{Kind: RenderTargetColor},
		DepthTarget:    &RenderTarget{Kind: RenderTargetDepth},
		Shader:         &Shader{},
		ShaderParams:   NewShaderParams(),
		StencilBuf:     NewStencilBuf(),
		ColorBuf:       NewColorBuf(),
		DepthBuf:       NewDepthBuf(),
		Visibility:     NewVisibility(),
		Cull:           &Cull{},
	}
}

// Hash joins the hashes of the states that affect shader generation. Two
// contexts with equal hashes can share one program. Empty slots hash to "".
func (rc *RenderContext) Hash() string {
	var parts [7]string
	if rc.Geometry != nil {
		parts[0] = rc.Geometry.Hash()
	}
	if rc.Shader != nil {
		parts[1] = rc.Shader.Hash()
	}
	if rc.Clips != nil {
		parts[2] = rc.Clips.Hash()
	}
	if rc.Material != nil {
		parts[3] = rc.Material.Hash()
	}
	if rc.Lights != nil {
		parts[4] = rc.Lights.Hash()
	}
	if rc.Billboard != nil {
		parts[5] = rc.Billboard.Hash()
	}
	if rc.Stationary != nil {
		parts[6] = rc.Stationary.Hash()
	}
	return strings.Join(parts[:], HashSeparator)
}

// WithDefaults returns a copy of rc whose empty slots are taken from
// defaults. Geometry is never filled in.
func (rc *RenderContext) WithDefaults(defaults *RenderContext) RenderContext {
	out := *rc
	if out.Material == nil {
		out.Material = defaults.Material
	}
	if out.Lights == nil {
		out.Lights = defaults.Lights
	}
	if out.Clips == nil {
		out.Clips = defaults.Clips
	}
	if out.Modes == nil {
		out.Modes = defaults.Modes
	}
	if out.ModelTransform == nil {
		out.ModelTransform = defaults.ModelTransform
	}
	if out.ViewTransform == nil {
		out.ViewTransform = defaults.ViewTransform
	}
	if out.ProjTransform == nil {
		out.ProjTransform = defaults.ProjTransform
	}
	if out.Viewport == nil {
		out.Viewport = defaults.Viewport
	}
	if out.Stage == nil {
		out.Stage = defaults.Stage
	}
	if out.Layer == nil {
		out.Layer = defaults.Layer
	}
	if out.Billboard == nil {
		out.Billboard = defaults.Billboard
	}
	if out.Stationary == nil {
		out.Stationary = defaults.Stationary
	}
	if out.ColorTarget == nil {
		out.ColorTarget = defaults.ColorTarget
	}
	if out.DepthTarget == nil {
		out.DepthTarget = defaults.DepthTarget
	}
	if out.Shader == nil {
		out.Shader = defaults.Shader
	}
	if out.ShaderParams == nil {
		out.ShaderParams = defaults.ShaderParams
	}
	if out.StencilBuf == nil {
		out.StencilBuf = defaults.StencilBuf
	}
	if out.ColorBuf == nil {
		out.ColorBuf = defaults.ColorBuf
	}
	if out.DepthBuf == nil {
		out.DepthBuf = defaults.DepthBuf
	}
	if out.Visibility == nil {
		out.Visibility = defaults.Visibility
	}
	if out.Cull == nil {
		out.Cull = defaults.Cull
	}
	return out
}
