package systems

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/math"
	"github.com/spaghettifunk/anima/engine/renderer"
	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

// noChunk is never the id of a real chunk.
const noChunk int64 = -1 << 63

/** @brief Configuration for the renderer system. */
type RendererSystemConfig struct {
	/** @brief Clear to transparent black instead of the ambient colour. */
	Transparent bool
}

/** @brief Parameters of one Render call. */
type RenderParams struct {
	/** @brief Walk even when the image is not dirty. */
	Force bool
	/** @brief Keep the colour and depth of the previous frame. */
	NoClear bool
	/** @brief Leave transparent objects out. */
	OpaqueOnly bool
	/** @brief Index of the output pass, handed to the framebuffer hooks. */
	Pass int
}

/** @brief The invalidation cascade, in the order Render resolves it. */
type DirtyFlags struct {
	ObjectList bool
	StateOrder bool
	StateSort  bool
	Image      bool
}

/** @brief Reported by BuildObject when the object's program does not compile. */
type ShaderCompileError struct {
	ObjectID string
	Hash     string
	ErrorLog []string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("object %s: shader program for %q failed: %s", e.ObjectID, e.Hash, strings.Join(e.ErrorLog, "; "))
}

func (e *ShaderCompileError) Unwrap() error {
	return core.ErrShaderCompile
}

type depthStencilEntry struct {
	pair *metadata.DepthStencil
	refs int
}

type walkParams struct {
	clear       bool
	opaqueOnly  bool
	pass        int
	pickObject  bool
	pickSurface bool
	// object is the one redrawn by a surface pick
	object   *renderer.Object
	pickView *math.Mat4
	pickProj *math.Mat4
}

/**
 * @brief Schedules draw calls. Objects are built from render contexts into
 * chunk lists, kept sorted by state and drawn by walking their chunks while
 * skipping runs of chunks that were just applied.
 */
type RendererSystem struct {
	Config *RendererSystemConfig

	// BindOutputFramebuffer and UnbindOutputFramebuffer are called around
	// every normal walk with the pass index.
	BindOutputFramebuffer   func(pass int)
	UnbindOutputFramebuffer func(pass int)

	device        renderer.Device
	programSystem *ProgramSystem
	chunkSystem   *ChunkSystem
	objectSystem  *ObjectSystem

	defaults      *metadata.RenderContext
	objects       map[string]*renderer.Object
	objectList    []*renderer.Object
	pickList      []*renderer.Object
	depthStencils map[[2]metadata.StateID]*depthStencilEntry

	ambient    math.Vec3
	hasAmbient bool

	objectListDirty bool
	stateOrderDirty bool
	stateSortDirty  bool
	imageDirty      bool

	frameCtx    *renderer.FrameContext
	lastChunkID [renderer.NumSlots]int64
	clock       *core.Clock
	stats       renderer.FrameStats
	frameCount  uint64

	pickBuf      *renderer.RenderBuffer
	readPixelBuf *renderer.RenderBuffer
}

func NewRendererSystem(config *RendererSystemConfig, device renderer.Device, ps *ProgramSystem, cs *ChunkSystem, os *ObjectSystem) (*RendererSystem, error) {
	if device == nil {
		err := fmt.Errorf("NewRendererSystem - a device is required")
		core.LogError("%s", err)
		return nil, err
	}
	return &RendererSystem{
		Config:        config,
		device:        device,
		programSystem: ps,
		chunkSystem:   cs,
		objectSystem:  os,
		defaults:      metadata.NewRenderContext(),
		objects:       make(map[string]*renderer.Object),
		depthStencils: make(map[[2]metadata.StateID]*depthStencilEntry),
		frameCtx:      renderer.NewFrameContext(device),
		clock:         core.NewClock(),
	}, nil
}

/**
 * @brief Creates or updates the object objectID from the slots of rc. Empty
 * slots take default states; an empty geometry makes a non-visual object
 * without program or chunks.
 *
 * @return The object, or a *ShaderCompileError after which the object is gone.
 */
func (r *RendererSystem) BuildObject(rc *metadata.RenderContext, objectID string) (*renderer.Object, error) {
	object, exists := r.objects[objectID]
	if !exists {
		object = r.objectSystem.Get(objectID)
	}
	object.State = rc.WithDefaults(r.defaults)

	if object.State.Geometry == nil {
		r.releaseChunks(object)
		r.releaseProgram(object)
	} else {
		hash := object.State.Hash()
		if object.Program == nil || hash != object.Hash {
			r.releaseProgram(object)
			program, err := r.programSystem.Get(hash, &object.State)
			object.Program = program
			object.Hash = hash
			if err != nil {
				compileErr := &ShaderCompileError{ObjectID: objectID, Hash: hash, ErrorLog: program.ErrorLog()}
				core.LogError("%s", compileErr)
				if exists {
					r.RemoveObject(objectID)
				} else {
					r.releaseChunks(object)
					r.releaseProgram(object)
					r.objectSystem.Put(object)
				}
				return nil, compileErr
			}
		}
		if err := r.setChunks(object); err != nil {
			if exists {
				r.RemoveObject(objectID)
			} else {
				r.releaseChunks(object)
				r.releaseProgram(object)
				r.objectSystem.Put(object)
			}
			return nil, err
		}
	}

	if ambient, ok := object.State.Lights.Ambient(); ok {
		r.ambient = ambient
		r.hasAmbient = true
	}

	if !exists {
		r.objects[objectID] = object
		r.objectListDirty = true
	} else {
		r.stateOrderDirty = true
	}
	object.Compiled = true
	return object, nil
}

// setChunks rebuilds all chunks of object in slot order.
func (r *RendererSystem) setChunks(object *renderer.Object) error {
	s := &object.State
	slots := [renderer.NumSlots]struct {
		typeName string
		state    metadata.State
	}{
		renderer.SlotProgram:        {renderer.ChunkProgram, nil},
		renderer.SlotModelTransform: {renderer.ChunkModelTransform, s.ModelTransform},
		renderer.SlotViewTransform:  {renderer.ChunkViewTransform, s.ViewTransform},
		renderer.SlotProjTransform:  {renderer.ChunkProjTransform, s.ProjTransform},
		renderer.SlotModes:          {renderer.ChunkModes, s.Modes},
		renderer.SlotShader:         {renderer.ChunkShader, s.Shader},
		renderer.SlotShaderParams:   {renderer.ChunkShaderParams, s.ShaderParams},
		renderer.SlotDepthBuf:       {renderer.ChunkDepthBuf, nil},
		renderer.SlotColorBuf:       {renderer.ChunkColorBuf, s.ColorBuf},
		renderer.SlotLights:         {renderer.ChunkLights, s.Lights},
		renderer.SlotMaterial:       {s.Material.MaterialType(), s.Material},
		renderer.SlotClips:          {renderer.ChunkClips, s.Clips},
		renderer.SlotViewport:       {renderer.ChunkViewport, s.Viewport},
		renderer.SlotGeometry:       {renderer.ChunkGeometry, s.Geometry},
		renderer.SlotDraw:           {renderer.ChunkDraw, s.Geometry},
	}
	for i, slot := range slots {
		state := slot.state
		if renderer.Slot(i) == renderer.SlotDepthBuf {
			// released with the chunk that held the previous pair
			state = r.acquireDepthStencil(s.DepthBuf, s.StencilBuf)
		}
		if err := r.setChunk(object, renderer.Slot(i), slot.typeName, state); err != nil {
			if renderer.Slot(i) == renderer.SlotDepthBuf {
				r.releaseDepthStencil(state.(*metadata.DepthStencil))
			}
			return err
		}
	}
	return nil
}

func (r *RendererSystem) setChunk(object *renderer.Object, slot renderer.Slot, typeName string, state metadata.State) error {
	t, ok := r.chunkSystem.Type(typeName)
	if !ok {
		return fmt.Errorf("object %s slot %s: chunk %q: %w", object.ID, slot, typeName, core.ErrUnknownChunkType)
	}
	var id int64
	if slot == renderer.SlotProgram {
		id = renderer.ProgramChunkID(object.Program)
	} else {
		id = renderer.ChunkID(t, object.Program, state)
	}
	r.releaseChunk(object, slot)
	chunk, err := r.chunkSystem.Get(id, typeName, object.Program, state)
	if err != nil {
		return err
	}
	object.Chunks[slot] = chunk
	return nil
}

func (r *RendererSystem) releaseChunk(object *renderer.Object, slot renderer.Slot) {
	chunk := object.Chunks[slot]
	if chunk == nil {
		return
	}
	if slot == renderer.SlotDepthBuf {
		r.releaseDepthStencil(chunk.State.(*metadata.DepthStencil))
	}
	if err := r.chunkSystem.Put(chunk); err != nil {
		core.LogError("%s", err)
	}
	object.Chunks[slot] = nil
}

func (r *RendererSystem) releaseChunks(object *renderer.Object) {
	for i := range object.Chunks {
		r.releaseChunk(object, renderer.Slot(i))
	}
}

func (r *RendererSystem) releaseProgram(object *renderer.Object) {
	if object.Program == nil {
		return
	}
	if err := r.programSystem.Put(object.Program); err != nil {
		core.LogError("%s", err)
	}
	object.Program = nil
	object.Hash = ""
}

// acquireDepthStencil returns the shared pair for depth and stencil,
// creating it on first use.
func (r *RendererSystem) acquireDepthStencil(depth *metadata.DepthBuf, stencil *metadata.StencilBuf) *metadata.DepthStencil {
	key := [2]metadata.StateID{depth.StateID(), stencil.StateID()}
	entry, ok := r.depthStencils[key]
	if !ok {
		entry = &depthStencilEntry{pair: &metadata.DepthStencil{Depth: depth, Stencil: stencil}}
		r.depthStencils[key] = entry
	}
	entry.refs++
	return entry.pair
}

func (r *RendererSystem) releaseDepthStencil(pair *metadata.DepthStencil) {
	key := [2]metadata.StateID{pair.Depth.StateID(), pair.Stencil.StateID()}
	entry, ok := r.depthStencils[key]
	if !ok || entry.pair != pair {
		return
	}
	entry.refs--
	if entry.refs == 0 {
		delete(r.depthStencils, key)
	}
}

/**
 * @brief Removes objectID, releasing its chunks and program. Unknown ids
 * are ignored.
 */
func (r *RendererSystem) RemoveObject(objectID string) {
	object, ok := r.objects[objectID]
	if !ok {
		return
	}
	r.releaseChunks(object)
	r.releaseProgram(object)
	r.objectSystem.Put(object)
	delete(r.objects, objectID)
	r.objectListDirty = true
}

// Object returns the built object with the given id.
func (r *RendererSystem) Object(objectID string) (*renderer.Object, bool) {
	object, ok := r.objects[objectID]
	return object, ok
}

/**
 * @brief Rebuilds every object for which match returns true from its own
 * snapshot. Objects that fail to rebuild are removed; their errors are joined.
 */
func (r *RendererSystem) RebuildObjects(match func(object *renderer.Object) bool) error {
	var errs []error
	for _, id := range slices.Sorted(maps.Keys(r.objects)) {
		object := r.objects[id]
		if !match(object) {
			continue
		}
		state := object.State
		if _, err := r.BuildObject(&state, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

/**
 * @brief Resolves the dirty flags in order and walks the sorted object list
 * when the image is dirty or params.Force is set.
 */
func (r *RendererSystem) Render(params RenderParams) {
	if r.objectListDirty {
		r.buildObjectList()
		r.objectListDirty = false
		r.stateOrderDirty = true
	}
	if r.stateOrderDirty {
		r.makeSortKeys()
		r.stateOrderDirty = false
		r.stateSortDirty = true
	}
	if r.stateSortDirty {
		r.sortObjects()
		r.stateSortDirty = false
		r.imageDirty = true
	}
	if r.imageDirty || params.Force {
		r.renderObjectList(walkParams{
			clear:      !params.NoClear,
			opaqueOnly: params.OpaqueOnly,
			pass:       params.Pass,
		})
		r.frameCount++
		r.imageDirty = false
	}
}

func (r *RendererSystem) buildObjectList() {
	r.objectList = r.objectList[:0]
	for _, object := range r.objects {
		r.objectList = append(r.objectList, object)
	}
}

func (r *RendererSystem) makeSortKeys() {
	for _, object := range r.objectList {
		object.SortKey = renderer.ComputeSortKey(object)
	}
}

// sortObjects orders by sort key. Objects with equal keys are ordered by id.
func (r *RendererSystem) sortObjects() {
	slices.SortFunc(r.objectList, func(a, b *renderer.Object) int {
		if c := a.SortKey.Compare(b.SortKey); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func (r *RendererSystem) ambientColor() math.Vec3 {
	if !r.hasAmbient {
		return math.Vec3{}
	}
	return r.ambient
}

func (r *RendererSystem) renderObjectList(params walkParams) {
	d := r.device
	ctx := r.frameCtx
	ctx.Reset(d)
	ctx.Pass = params.pass
	ctx.BindOutputFramebuffer = r.BindOutputFramebuffer
	ctx.PickViewMatrix = params.pickView
	ctx.PickProjMatrix = params.pickProj
	ctx.AmbientColor = r.ambientColor()

	width, height := d.DrawingBufferSize()
	d.Viewport(0, 0, int32(width), int32(height))
	if r.Config.Transparent || params.pickObject || params.pickSurface {
		d.ClearColor(gputypes.Color{})
	} else {
		a := ctx.AmbientColor
		d.ClearColor(gputypes.Color{R: float64(a.X), G: float64(a.Y), B: float64(a.Z), A: 1})
	}
	ctx.ApplyDefaults()

	for i := range r.lastChunkID {
		r.lastChunkID[i] = noChunk
	}

	switch {
	case params.pickObject:
		d.Clear(renderer.ClearColorBit | renderer.ClearDepthBit)
		r.pickList = r.pickList[:0]
		for _, object := range r.objectList {
			if object.Skipped() || !object.Pickable() {
				continue
			}
			r.pickList = append(r.pickList, object)
			for i, chunk := range object.Chunks {
				if chunk == nil || chunk.ObjectPicker == nil {
					continue
				}
				if chunk.Unique() || r.lastChunkID[i] != chunk.ID {
					chunk.ObjectPicker.PickObject(ctx)
					r.lastChunkID[i] = chunk.ID
				}
			}
		}

	case params.pickSurface:
		d.Clear(renderer.ClearColorBit | renderer.ClearDepthBit)
		if params.object != nil {
			for _, chunk := range params.object.Chunks {
				if chunk != nil && chunk.PrimitivePicker != nil {
					chunk.PrimitivePicker.PickPrimitive(ctx)
				}
			}
		}

	default:
		r.clock.Start()
		if r.BindOutputFramebuffer != nil {
			r.BindOutputFramebuffer(params.pass)
		}
		if params.clear {
			d.Clear(renderer.ClearColorBit | renderer.ClearDepthBit)
		}
		for _, object := range r.objectList {
			if object.Skipped() {
				continue
			}
			if params.opaqueOnly && object.Transparent() {
				continue
			}
			for i, chunk := range object.Chunks {
				if chunk == nil || chunk.Drawer == nil {
					continue
				}
				if chunk.Unique() || r.lastChunkID[i] != chunk.ID {
					chunk.Drawer.Draw(ctx)
					r.lastChunkID[i] = chunk.ID
				}
			}
		}
		r.clock.Update()
		ctx.Stats.RenderTime = r.clock.Elapsed()
		r.clock.Stop()
		r.stats = ctx.Stats

		for unit := 0; unit < d.MaxTextureUnits(); unit++ {
			d.BindTexture(unit, 0)
		}
		if r.UnbindOutputFramebuffer != nil {
			r.UnbindOutputFramebuffer(params.pass)
		}
	}
}

/**
 * @brief Renders with Force into an off-screen buffer and reads back the
 * colours under the canvas positions in pixels.
 *
 * @param pixels Canvas x and y pairs.
 * @param colors Receives four bytes per position.
 * @param n The number of positions to read.
 */
func (r *RendererSystem) ReadPixels(pixels []int, colors []uint8, n int, opaqueOnly bool) error {
	if n < 0 || len(pixels) < n*2 || len(colors) < n*4 {
		return fmt.Errorf("readPixels of %d positions from %d coordinates into %d bytes: %w", n, len(pixels), len(colors), core.ErrBufferTooShort)
	}
	if r.readPixelBuf == nil {
		r.readPixelBuf = renderer.NewRenderBuffer(r.device, "readPixels-"+core.NewObjectID())
	}
	if err := r.readPixelBuf.Bind(); err != nil {
		return err
	}
	r.readPixelBuf.Clear()
	r.Render(RenderParams{Force: true, OpaqueOnly: opaqueOnly})
	for i := 0; i < n; i++ {
		color := r.readPixelBuf.Read(pixels[i*2], pixels[i*2+1])
		copy(colors[i*4:i*4+4], color[:])
	}
	r.readPixelBuf.Unbind()
	return nil
}

/**
 * @brief Moves every device resource onto device after the previous one lost
 * its context, then marks the image dirty.
 */
func (r *RendererSystem) ContextRestored(device renderer.Device) {
	r.device = device
	r.programSystem.Restore(device)
	r.chunkSystem.Restore(device)
	if r.pickBuf != nil {
		r.pickBuf.Restore(device)
	}
	if r.readPixelBuf != nil {
		r.readPixelBuf.Restore(device)
	}
	r.frameCtx.Reset(device)
	r.imageDirty = true
	core.LogInfo("renderer restored with %d objects", len(r.objects))
}

// SetImageDirty requests a redraw on the next Render, for state changes that
// do not require a rebuild, such as a new transform matrix.
func (r *RendererSystem) SetImageDirty() {
	r.imageDirty = true
}

func (r *RendererSystem) Dirty() DirtyFlags {
	return DirtyFlags{
		ObjectList: r.objectListDirty,
		StateOrder: r.stateOrderDirty,
		StateSort:  r.stateSortDirty,
		Image:      r.imageDirty,
	}
}

// Stats returns the counters of the last normal walk.
func (r *RendererSystem) Stats() renderer.FrameStats {
	return r.stats
}

func (r *RendererSystem) FrameCount() uint64 {
	return r.frameCount
}

// Objects returns the objects in draw order as of the last Render.
func (r *RendererSystem) Objects() []*renderer.Object {
	return r.objectList
}

func (r *RendererSystem) Device() renderer.Device {
	return r.device
}

func (r *RendererSystem) Shutdown() error {
	for _, id := range slices.Collect(maps.Keys(r.objects)) {
		r.RemoveObject(id)
	}
	if r.pickBuf != nil {
		r.pickBuf.Destroy()
	}
	if r.readPixelBuf != nil {
		r.readPixelBuf.Destroy()
	}
	return nil
}
