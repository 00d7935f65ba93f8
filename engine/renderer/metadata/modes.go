package metadata

import "github.com/gogpu/gputypes"

type Modes struct {
	StateBase
	Pickable    bool
	Clippable   bool
	Transparent bool
	/** @brief When false back faces are culled. */
	Backfaces bool
	FrontFace gputypes.FrontFace
}

func NewModes() *Modes {
	return &Modes{
		Pickable:  true,
		Clippable: true,
		Backfaces: true,
		FrontFace: gputypes.FrontFaceCCW,
	}
}

type Visibility struct {
	StateBase
	Visible bool
}

func NewVisibility() *Visibility {
	return &Visibility{Visible: true}
}

type Cull struct {
	StateBase
	Culled bool
}

/** @brief Stages render in ascending priority. */
type Stage struct {
	StateBase
	Priority int
}

/** @brief Within a stage and opacity bin, layers render in ascending priority. */
type Layer struct {
	StateBase
	Priority int
}
