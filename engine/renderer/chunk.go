package renderer

import (
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

/** @brief The fixed position of a chunk in an object's chunk list. */
type Slot int

const (
	SlotProgram Slot = iota
	SlotModelTransform
	SlotViewTransform
	SlotProjTransform
	SlotModes
	SlotShader
	SlotShaderParams
	SlotDepthBuf
	SlotColorBuf
	SlotLights
	SlotMaterial
	SlotClips
	SlotViewport
	SlotGeometry
	SlotDraw

	NumSlots = int(SlotDraw) + 1
)

var slotNames = [NumSlots]string{
	"program",
	"modelTransform",
	"viewTransform",
	"projTransform",
	"modes",
	"shader",
	"shaderParams",
	"depthBuf",
	"colorBuf",
	"lights",
	"material",
	"clips",
	"viewport",
	"geometry",
	"draw",
}

func (s Slot) String() string {
	return slotNames[s]
}

// Chunk type names for the fixed slots. The material slot uses the
// material's own type name instead.
const (
	ChunkProgram        = "program"
	ChunkModelTransform = "modelTransform"
	ChunkViewTransform  = "viewTransform"
	ChunkProjTransform  = "projTransform"
	ChunkModes          = "modes"
	ChunkShader         = "shader"
	ChunkShaderParams   = "shaderParams"
	ChunkDepthBuf       = "depthBuf"
	ChunkColorBuf       = "colorBuf"
	ChunkLights         = "lights"
	ChunkClips          = "clips"
	ChunkViewport       = "viewport"
	ChunkGeometry       = "geometry"
	ChunkDraw           = "draw"
)

/** @brief Applies state for a normal draw. */
type Drawer interface {
	Draw(ctx *FrameContext)
}

/** @brief Applies state for the object picking pass. */
type ObjectPicker interface {
	PickObject(ctx *FrameContext)
}

/** @brief Applies state for the triangle picking pass. */
type PrimitivePicker interface {
	PickPrimitive(ctx *FrameContext)
}

/** @brief Re-creates device resources after the context was lost. */
type Restorer interface {
	Restore(device Device)
}

/** @brief Frees device resources owned by the chunk when the pool drops it. */
type Destroyer interface {
	Destroy(device Device)
}

/**
 * @brief Describes a kind of chunk. New builds the behaviour bound to one
 * program and state; the value may implement any of Drawer, ObjectPicker,
 * PrimitivePicker, Restorer and Destroyer. Missing ones are skipped by the walk.
 */
type ChunkType struct {
	Name string
	// ProgramGlobal chunks are keyed by state alone and shared across programs.
	ProgramGlobal bool
	// Unique chunks are applied for every object, never de-duplicated.
	Unique bool
	New    func(program *metadata.Program, state metadata.State) interface{}
}

const (
	programIDMultiplier int64 = 100000000
	drawIDMultiplier    int64 = 100000
)

// ProgramChunkID is the id of the chunk binding program.
func ProgramChunkID(program *metadata.Program) int64 {
	return (int64(program.ID) + 1) * programIDMultiplier
}

// ChunkID derives the id of a chunk of type t for program and state. Draw
// chunks are scaled so they never equal the id of any other chunk.
func ChunkID(t *ChunkType, program *metadata.Program, state metadata.State) int64 {
	var id int64
	if t.ProgramGlobal {
		id = int64(state.StateID())
	} else {
		id = (int64(program.ID)+1)*programIDMultiplier + int64(state.StateID()) + 1
	}
	if t.Unique {
		id *= drawIDMultiplier
	}
	return id
}

/**
 * @brief A pooled unit of state application bound to one program and one
 * state. Owned by the chunk system, which counts its references.
 */
type Chunk struct {
	ID      int64
	Type    *ChunkType
	Program *metadata.Program
	State   metadata.State

	Drawer          Drawer
	ObjectPicker    ObjectPicker
	PrimitivePicker PrimitivePicker
	Restorer        Restorer
	Destroyer       Destroyer
}

func NewChunk(id int64, t *ChunkType, program *metadata.Program, state metadata.State) *Chunk {
	c := &Chunk{
		ID:      id,
		Type:    t,
		Program: program,
		State:   state,
	}
	c.bind()
	return c
}

func (c *Chunk) bind() {
	impl := c.Type.New(c.Program, c.State)
	c.Drawer, _ = impl.(Drawer)
	c.ObjectPicker, _ = impl.(ObjectPicker)
	c.PrimitivePicker, _ = impl.(PrimitivePicker)
	c.Restorer, _ = impl.(Restorer)
	c.Destroyer, _ = impl.(Destroyer)
}

// Rebind creates a fresh behaviour value, discarding any per-chunk device state.
func (c *Chunk) Rebind() {
	c.bind()
}

func (c *Chunk) Unique() bool {
	return c.Type.Unique
}
