package metadata

import (
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/spaghettifunk/anima/engine/math"
)

/**
 * @brief Device buffers holding a geometry's attributes. Filled lazily the
 * first time the geometry is drawn and dropped when the device is lost.
 */
type GeometryBuffers struct {
	Positions BufferHandle
	Normals   BufferHandle
	UV        BufferHandle
	Colors    BufferHandle
	Indices   BufferHandle
	Uploaded  bool
}

/**
 * @brief Represents actual geometry in the world. Attribute arrays are flat:
 * three floats per position and normal, two per uv and four per colour.
 */
type Geometry struct {
	StateBase
	/** @brief How indices are assembled into primitives. */
	Primitive gputypes.PrimitiveTopology
	Positions []float32
	Normals   []float32
	UV        []float32
	Colors    []float32
	Indices   []uint16
	Buffers   GeometryBuffers
}

func NewGeometry(primitive gputypes.PrimitiveTopology, positions []float32, indices []uint16) *Geometry {
	return &Geometry{
		Primitive: primitive,
		Positions: positions,
		Indices:   indices,
	}
}

// Hash summarises the attributes present and the primitive type.
func (g *Geometry) Hash() string {
	var b strings.Builder
	b.WriteString(g.Primitive.String())
	if len(g.Normals) > 0 {
		b.WriteString(",n")
	}
	if len(g.UV) > 0 {
		b.WriteString(",uv")
	}
	if len(g.Colors) > 0 {
		b.WriteString(",c")
	}
	return b.String()
}

func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

func (g *Geometry) Indexed() bool {
	return len(g.Indices) > 0
}

// ElementCount is the number of vertices a draw call processes.
func (g *Geometry) ElementCount() int {
	if g.Indexed() {
		return len(g.Indices)
	}
	return g.VertexCount()
}

// Element returns the vertex drawn at position i of the element sequence.
func (g *Geometry) Element(i int) int {
	if g.Indexed() {
		return int(g.Indices[i])
	}
	return i
}

// TriangleCount is zero for non triangle primitives.
func (g *Geometry) TriangleCount() int {
	if g.Primitive != gputypes.PrimitiveTopologyTriangleList {
		return 0
	}
	return g.ElementCount() / 3
}

// Triangle returns the positions of triangle i, made of elements 3i to 3i+2.
func (g *Geometry) Triangle(i int) (a, b, c math.Vec3) {
	e := i * 3
	return g.Position(g.Element(e)), g.Position(g.Element(e + 1)), g.Position(g.Element(e + 2))
}

func (g *Geometry) Position(v int) math.Vec3 {
	return math.NewVec3(g.Positions[v*3], g.Positions[v*3+1], g.Positions[v*3+2])
}

// Normal returns the normal of vertex v, or the zero vector when the geometry has none.
func (g *Geometry) Normal(v int) math.Vec3 {
	if len(g.Normals) < (v+1)*3 {
		return math.Vec3{}
	}
	return math.NewVec3(g.Normals[v*3], g.Normals[v*3+1], g.Normals[v*3+2])
}

func (g *Geometry) TexCoord(v int) math.Vec2 {
	if len(g.UV) < (v+1)*2 {
		return math.Vec2{}
	}
	return math.NewVec2(g.UV[v*2], g.UV[v*2+1])
}

// GenerateNormals fills in flat normals for triangle geometry without them.
func (g *Geometry) GenerateNormals() {
	if len(g.Normals) == 0 && g.Primitive == gputypes.PrimitiveTopologyTriangleList {
		indices := g.Indices
		if !g.Indexed() {
			indices = make([]uint16, g.VertexCount())
			for i := range indices {
				indices[i] = uint16(i)
			}
		}
		g.Normals = math.GeometryGenerateNormals(g.Positions, indices)
	}
}
