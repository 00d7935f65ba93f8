package metadata

import (
	"github.com/spaghettifunk/anima/engine/math"
)

/**
 * @brief A model, view or projection matrix. Changing the matrix does not
 * require the object to be rebuilt, only a redraw.
 */
type Transform struct {
	StateBase
	matrix      math.Mat4
	normal      math.Mat4
	normalDirty bool
}

func NewTransform(m math.Mat4) *Transform {
	return &Transform{matrix: m, normalDirty: true}
}

func NewIdentityTransform() *Transform {
	return NewTransform(math.NewMat4Identity())
}

func (t *Transform) Matrix() math.Mat4 {
	return t.matrix
}

func (t *Transform) SetMatrix(m math.Mat4) {
	t.matrix = m
	t.normalDirty = true
}

// NormalMatrix is the inverse transpose of the matrix, recomputed on demand.
func (t *Transform) NormalMatrix() math.Mat4 {
	if t.normalDirty {
		t.normal = t.matrix.NormalMatrix()
		t.normalDirty = false
	}
	return t.normal
}

/**
 * @brief Billboarding aligns an object with the view. Spherical billboards
 * face the eye on all axes, cylindrical ones keep their vertical axis.
 */
type Billboard struct {
	StateBase
	Active    bool
	Spherical bool
}

func (b *Billboard) Hash() string {
	hash := ";"
	if b.Active {
		hash = "a;"
	}
	if b.Spherical {
		return hash + "s;"
	}
	return hash + ";"
}

/** @brief Stationary objects ignore the translation of the view matrix (skyboxes). */
type Stationary struct {
	StateBase
	Active bool
}

func (s *Stationary) Hash() string {
	if s.Active {
		return "a"
	}
	return ""
}

type Viewport struct {
	StateBase
	/** @brief x, y, width, height in canvas pixels. */
	Boundary [4]int32
	/** @brief When set the viewport follows the drawing buffer size. */
	AutoBoundary bool
}

func NewViewport() *Viewport {
	return &Viewport{AutoBoundary: true}
}
