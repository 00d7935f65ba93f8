package metadata

import "github.com/gogpu/gputypes"

type RenderTargetKind int

const (
	RenderTargetColor RenderTargetKind = iota
	RenderTargetDepth
)

/** @brief An off-screen target an object can be rendered into. */
type RenderTarget struct {
	StateBase
	Kind   RenderTargetKind
	Active bool
	Width  uint32
	Height uint32
	Handle TargetHandle
}

type StencilFace struct {
	gputypes.StencilFaceState
	Ref  uint32
	Mask uint32
}

func DefaultStencilFace() StencilFace {
	return StencilFace{
		StencilFaceState: gputypes.DefaultStencilFaceState(),
		Ref:              0,
		Mask:             0xff,
	}
}

type StencilBuf struct {
	StateBase
	Active bool
	/** @brief Clear the stencil buffer before drawing objects using this state. */
	Clear      bool
	ClearValue uint32
	Front      StencilFace
	Back       StencilFace
}

func NewStencilBuf() *StencilBuf {
	return &StencilBuf{
		Front: DefaultStencilFace(),
		Back:  DefaultStencilFace(),
	}
}

type ColorBuf struct {
	StateBase
	BlendEnabled bool
	Blend        gputypes.BlendState
	ColorMask    gputypes.ColorWriteMask
}

func NewColorBuf() *ColorBuf {
	return &ColorBuf{
		Blend:     gputypes.BlendStateAlpha(),
		ColorMask: gputypes.ColorWriteMaskAll,
	}
}

type DepthBuf struct {
	StateBase
	Active     bool
	DepthFunc  gputypes.CompareFunction
	ClearDepth float32
	/** @brief Whether depth writes are enabled. */
	DepthMask bool
}

func NewDepthBuf() *DepthBuf {
	return &DepthBuf{
		Active:     true,
		DepthFunc:  gputypes.CompareFunctionLess,
		ClearDepth: 1,
		DepthMask:  true,
	}
}

/**
 * @brief Pairs a depth and a stencil configuration so both are applied by
 * the single depth buffer slot of an object. Pairs are shared, one per
 * distinct (depth, stencil) combination.
 */
type DepthStencil struct {
	StateBase
	Depth   *DepthBuf
	Stencil *StencilBuf
}
