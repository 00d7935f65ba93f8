package systems

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

// DefaultGeometryName names the plane registered when the system starts.
const DefaultGeometryName = "default"

type GeometrySystemConfig struct {
	MaxGeometryCount uint32
}

/** @brief Attribute arrays describing a geometry to register. */
type GeometryConfig struct {
	Name      string
	Primitive gputypes.PrimitiveTopology
	Positions []float32
	Normals   []float32
	UV        []float32
	Colors    []float32
	Indices   []uint16
}

type geometryReference struct {
	referenceCount uint32
	autoRelease    bool
	geometry       *metadata.Geometry
}

/**
 * @brief Registers geometries by name and counts references to them. A
 * geometry acquired with autoRelease has its device buffers freed once the
 * last reference is released.
 */
type GeometrySystem struct {
	config          *GeometrySystemConfig
	device          renderer.Device
	defaultGeometry *metadata.Geometry
	registered      map[string]*geometryReference
}

/**
 * @brief Initializes the geometry system and creates the default geometry.
 *
 * @param config The configuration for this system.
 * @param device The device geometry buffers are freed on.
 */
func NewGeometrySystem(config *GeometrySystemConfig, device renderer.Device) (*GeometrySystem, error) {
	if config.MaxGeometryCount == 0 {
		err := fmt.Errorf("func NewGeometrySystem - config.MaxGeometryCount must be > 0: %w", core.ErrConfig)
		core.LogWarn("%s", err)
		return nil, err
	}
	gs := &GeometrySystem{
		config:     config,
		device:     device,
		registered: make(map[string]*geometryReference),
	}
	gs.defaultGeometry = gs.create(GeneratePlaneConfig(10, 10, 1, 1, 1, 1, DefaultGeometryName))
	return gs, nil
}

/** @brief Releases the device buffers of every registered geometry. */
func (gs *GeometrySystem) Shutdown() error {
	for name, ref := range gs.registered {
		gs.destroyGeometry(ref.geometry)
		delete(gs.registered, name)
	}
	gs.destroyGeometry(gs.defaultGeometry)
	return nil
}

/**
 * @brief Acquires an existing geometry by name.
 *
 * @param name The geometry name to acquire by.
 */
func (gs *GeometrySystem) Acquire(name string) (*metadata.Geometry, error) {
	if name == DefaultGeometryName {
		return gs.defaultGeometry, nil
	}
	ref, ok := gs.registered[name]
	if !ok {
		err := fmt.Errorf("func GeometrySystemAcquire cannot find geometry '%s'", name)
		core.LogError("%s", err)
		return nil, err
	}
	ref.referenceCount++
	return ref.geometry, nil
}

/**
 * @brief Registers and acquires a new geometry using the given config. A
 * config whose name is already registered acquires the existing geometry.
 *
 * @param config The geometry configuration.
 * @param autoRelease Indicates if the acquired geometry should be unloaded when its reference count reaches 0.
 */
func (gs *GeometrySystem) AcquireFromConfig(config GeometryConfig, autoRelease bool) (*metadata.Geometry, error) {
	if config.Name == "" || config.Name == DefaultGeometryName {
		return nil, fmt.Errorf("geometry name '%s' is reserved or empty", config.Name)
	}
	if ref, ok := gs.registered[config.Name]; ok {
		ref.referenceCount++
		return ref.geometry, nil
	}
	if uint32(len(gs.registered)) >= gs.config.MaxGeometryCount {
		err := fmt.Errorf("unable to obtain free slot for geometry. Adjust configuration to allow more space")
		core.LogError("%s", err)
		return nil, err
	}
	if len(config.Positions) == 0 || len(config.Positions)%3 != 0 {
		return nil, fmt.Errorf("geometry '%s' needs positions in groups of three", config.Name)
	}
	geometry := gs.create(config)
	gs.registered[config.Name] = &geometryReference{
		referenceCount: 1,
		autoRelease:    autoRelease,
		geometry:       geometry,
	}
	return geometry, nil
}

/**
 * @brief Releases a reference to the named geometry.
 */
func (gs *GeometrySystem) Release(name string) {
	ref, ok := gs.registered[name]
	if !ok {
		core.LogWarn("GeometrySystemRelease cannot release unknown geometry '%s'. Nothing was done.", name)
		return
	}
	if ref.referenceCount > 0 {
		ref.referenceCount--
	}
	if ref.referenceCount < 1 && ref.autoRelease {
		gs.destroyGeometry(ref.geometry)
		delete(gs.registered, name)
	}
}

func (gs *GeometrySystem) GetDefault() *metadata.Geometry {
	return gs.defaultGeometry
}

func (gs *GeometrySystem) create(config GeometryConfig) *metadata.Geometry {
	geometry := metadata.NewGeometry(config.Primitive, config.Positions, config.Indices)
	geometry.Normals = config.Normals
	geometry.UV = config.UV
	geometry.Colors = config.Colors
	geometry.GenerateNormals()
	return geometry
}

func (gs *GeometrySystem) destroyGeometry(geometry *metadata.Geometry) {
	b := geometry.Buffers
	if !b.Uploaded {
		return
	}
	for _, h := range []metadata.BufferHandle{b.Positions, b.Normals, b.UV, b.Colors, b.Indices} {
		if h != 0 {
			gs.device.DeleteBuffer(h)
		}
	}
	geometry.Buffers = metadata.GeometryBuffers{}
}

/**
 * @brief Generates configuration for plane geometries given the provided
 * parameters. The plane lies in the xy plane facing +z.
 *
 * @param width The overall width of the plane. Must be non-zero.
 * @param height The overall height of the plane. Must be non-zero.
 * @param xSegmentCount The number of segments along the x-axis in the plane. Must be non-zero.
 * @param ySegmentCount The number of segments along the y-axis in the plane. Must be non-zero.
 * @param tileX The number of times the texture should tile across the plane on the x-axis. Must be non-zero.
 * @param tileY The number of times the texture should tile across the plane on the y-axis. Must be non-zero.
 * @param name The name of the generated geometry.
 */
func GeneratePlaneConfig(width, height float32, xSegmentCount, ySegmentCount uint32, tileX, tileY float32, name string) GeometryConfig {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if xSegmentCount < 1 {
		core.LogWarn("xSegmentCount must be a positive number. Defaulting to one.")
		xSegmentCount = 1
	}
	if ySegmentCount < 1 {
		core.LogWarn("ySegmentCount must be a positive number. Defaulting to one.")
		ySegmentCount = 1
	}
	if tileX == 0 {
		core.LogWarn("tileX must be nonzero. Defaulting to one.")
		tileX = 1.0
	}
	if tileY == 0 {
		core.LogWarn("tileY must be nonzero. Defaulting to one.")
		tileY = 1.0
	}

	segments := xSegmentCount * ySegmentCount
	config := GeometryConfig{
		Name:      name,
		Primitive: gputypes.PrimitiveTopologyTriangleList,
		Positions: make([]float32, 0, segments*4*3), // 4 verts per segment
		Normals:   make([]float32, 0, segments*4*3),
		UV:        make([]float32, 0, segments*4*2),
		Indices:   make([]uint16, 0, segments*6), // 6 indices per segment
	}

	segWidth := width / float32(xSegmentCount)
	segHeight := height / float32(ySegmentCount)
	halfWidth := width * 0.5
	halfHeight := height * 0.5
	for y := uint32(0); y < ySegmentCount; y++ {
		for x := uint32(0); x < xSegmentCount; x++ {
			minX := (float32(x) * segWidth) - halfWidth
			minY := (float32(y) * segHeight) - halfHeight
			maxX := minX + segWidth
			maxY := minY + segHeight
			minUVX := (float32(x) / float32(xSegmentCount)) * tileX
			minUVY := (float32(y) / float32(ySegmentCount)) * tileY
			maxUVX := (float32(x+1) / float32(xSegmentCount)) * tileX
			maxUVY := (float32(y+1) / float32(ySegmentCount)) * tileY

			vOffset := uint16(len(config.Positions) / 3)
			config.Positions = append(config.Positions,
				minX, minY, 0,
				maxX, maxY, 0,
				minX, maxY, 0,
				maxX, minY, 0,
			)
			config.UV = append(config.UV,
				minUVX, minUVY,
				maxUVX, maxUVY,
				minUVX, maxUVY,
				maxUVX, minUVY,
			)
			for i := 0; i < 4; i++ {
				config.Normals = append(config.Normals, 0, 0, 1)
			}
			config.Indices = append(config.Indices, quadIndices(vOffset)...)
		}
	}
	return config
}

// cubeFaces lists for each face its four corners as signs of the half
// extents, followed by the face normal.
var cubeFaces = [6][5]math.Vec3{
	// Front
	{{X: -1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 0, Y: 0, Z: 1}},
	// Back
	{{X: 1, Y: -1, Z: -1}, {X: -1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: -1, Z: -1}, {X: 0, Y: 0, Z: -1}},
	// Left
	{{X: -1, Y: -1, Z: -1}, {X: -1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: -1}, {X: -1, Y: -1, Z: 1}, {X: -1, Y: 0, Z: 0}},
	// Right
	{{X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 0, Z: 0}},
	// Bottom
	{{X: 1, Y: -1, Z: 1}, {X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: -1, Y: -1, Z: 1}, {X: 0, Y: -1, Z: 0}},
	// Top
	{{X: -1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 0}},
}

// GenerateCubeConfig generates a box centred on the origin with four
// vertices per face so every face has its own normals and uvs.
func GenerateCubeConfig(width, height, depth, tileX, tileY float32, name string) GeometryConfig {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if depth == 0 {
		core.LogWarn("Depth must be nonzero. Defaulting to one.")
		depth = 1
	}
	if tileX == 0 {
		core.LogWarn("tileX must be nonzero. Defaulting to one.")
		tileX = 1.0
	}
	if tileY == 0 {
		core.LogWarn("tileY must be nonzero. Defaulting to one.")
		tileY = 1.0
	}

	config := GeometryConfig{
		Name:      name,
		Primitive: gputypes.PrimitiveTopologyTriangleList,
		Positions: make([]float32, 0, 4*6*3), // 4 verts per side, 6 sides
		Normals:   make([]float32, 0, 4*6*3),
		UV:        make([]float32, 0, 4*6*2),
		Indices:   make([]uint16, 0, 6*6), // 6 indices per side, 6 sides
	}
	half := math.NewVec3(width*0.5, height*0.5, depth*0.5)
	uvs := [4][2]float32{{0, 0}, {tileX, tileY}, {0, tileY}, {tileX, 0}}
	for _, face := range cubeFaces {
		vOffset := uint16(len(config.Positions) / 3)
		for i := 0; i < 4; i++ {
			p := face[i].Mul(half)
			config.Positions = append(config.Positions, p.X, p.Y, p.Z)
			config.Normals = append(config.Normals, face[4].X, face[4].Y, face[4].Z)
			config.UV = append(config.UV, uvs[i][0], uvs[i][1])
		}
		config.Indices = append(config.Indices, quadIndices(vOffset)...)
	}
	return config
}

// quadIndices returns two counter-clockwise triangles over the quad whose
// corners are laid out min, max, (min, max), (max, min).
func quadIndices(offset uint16) []uint16 {
	return []uint16{offset, offset + 1, offset + 2, offset, offset + 3, offset + 1}
}
