package renderer

import (
	"cmp"

	"github.com/spaghettifunk/anima/engine/renderer/metadata"
)

/**
 * @brief One drawable, roughly one draw call. State holds a snapshot of the
 * render context slots taken when the object was last built.
 */
type Object struct {
	ID       string
	State    metadata.RenderContext
	Hash     string
	Program  *metadata.Program
	Chunks   [NumSlots]*Chunk
	SortKey  SortKey
	Compiled bool
}

// Reset clears the object for reuse under id.
func (o *Object) Reset(id string) {
	*o = Object{ID: id}
}

// Pickable reports whether the object takes part in object picking.
func (o *Object) Pickable() bool {
	return o.State.Modes == nil || o.State.Modes.Pickable
}

func (o *Object) Transparent() bool {
	return o.State.Modes != nil && o.State.Modes.Transparent
}

// Skipped reports whether the walk leaves the object out entirely.
func (o *Object) Skipped() bool {
	if !o.Compiled || o.Program == nil {
		return true
	}
	if o.State.Cull != nil && o.State.Cull.Culled {
		return true
	}
	return o.State.Visibility != nil && !o.State.Visibility.Visible
}

/**
 * @brief Orders objects so that state changes are minimised: by stage,
 * opaque before transparent, by layer, then grouped by program, material
 * and geometry. Objects without a program come first.
 */
type SortKey struct {
	NoProgram bool
	Stage     int
	// Bin is 1 for opaque objects and 2 for transparent ones.
	Bin      int
	Layer    int
	Program  uint32
	Material metadata.StateID
	Geometry metadata.StateID
}

func ComputeSortKey(o *Object) SortKey {
	if o.Program == nil {
		return SortKey{NoProgram: true}
	}
	k := SortKey{Bin: 1, Program: o.Program.ID}
	if o.Transparent() {
		k.Bin = 2
	}
	if o.State.Stage != nil {
		k.Stage = o.State.Stage.Priority
	}
	if o.State.Layer != nil {
		k.Layer = o.State.Layer.Priority
	}
	if o.State.Material != nil {
		k.Material = o.State.Material.StateID()
	}
	if o.State.Geometry != nil {
		k.Geometry = o.State.Geometry.StateID()
	}
	return k
}

// Compare orders keys lexicographically.
func (k SortKey) Compare(other SortKey) int {
	if k.NoProgram != other.NoProgram {
		if k.NoProgram {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(k.Stage, other.Stage); c != 0 {
		return c
	}
	if c := cmp.Compare(k.Bin, other.Bin); c != 0 {
		return c
	}
	if c := cmp.Compare(k.Layer, other.Layer); c != 0 {
		return c
	}
	if c := cmp.Compare(k.Program, other.Program); c != 0 {
		return c
	}
	if c := cmp.Compare(k.Material, other.Material); c != 0 {
		return c
	}
	return cmp.Compare(k.Geometry, other.Geometry)
}

// Packed folds the key into one decimal number for logging. Large ids make
// neighbouring fields overlap, so it is not used for ordering.
func (k SortKey) Packed() int64 {
	if k.NoProgram {
		return -1
	}
	return (int64(k.Stage)+1)*1e16 +
		int64(k.Bin)*1e14 +
		(int64(k.Layer)+1)*1e13 +
		(int64(k.Program)+1)*1e8 +
		(int64(k.Material)+1)*1e4 +
		int64(k.Geometry)
}
