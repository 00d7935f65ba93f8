package metadata

import (
	"strconv"

	"github.com/spaghettifunk/anima/engine/math"
)

type ClipMode int

const (
	ClipModeDisabled ClipMode = iota
	/** @brief Discard fragments in front of the plane. */
	ClipModeOutside
	/** @brief Discard fragments behind the plane. */
	ClipModeInside
)

type Clip struct {
	Mode ClipMode
	Pos  math.Vec3
	Dir  math.Vec3
}

type Clips struct {
	StateBase
	Clips []Clip
}

func NewClips(clips ...Clip) *Clips {
	return &Clips{Clips: clips}
}

func (c *Clips) Hash() string {
	return strconv.Itoa(len(c.Clips))
}
